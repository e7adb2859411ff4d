package packing

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/cubewire/grib/errs"
	"github.com/cubewire/grib/format"
	"github.com/cubewire/grib/internal/bitio"
	"github.com/cubewire/grib/section"
)

// pngUnpacker decodes template 5.41: the scaled integers are the pixels
// of a PNG image carried in the data section. Grayscale images hold one
// sample per point at the coded depth; RGB and RGBA images spread wider
// integers across the channels, most significant first.
type pngUnpacker struct {
	s     scaler
	width uint8
}

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func newPNGUnpacker(t []byte) (Unpacker, error) {
	s, width, err := parseFieldTemplate(t, "PNG packing")
	if err != nil {
		return nil, err
	}

	return &pngUnpacker{s: s, width: width}, nil
}

func (u *pngUnpacker) Unpack(payload []byte, numPoints int) ([]float64, error) {
	out := make([]float64, numPoints)

	if u.width == 0 {
		for i := range out {
			out[i] = u.s.value(0)
		}

		return out, nil
	}

	img, err := decodePNG(payload)
	if err != nil {
		return nil, err
	}
	if img.width*img.height != numPoints {
		return nil, fmt.Errorf("%w: PNG image carries %d points, field has %d",
			errs.ErrMalformedSection, img.width*img.height, numPoints)
	}

	sampleBits := img.depth * img.channels
	rowBytes := (img.width*sampleBits + 7) / 8

	i := 0
	for row := range img.height {
		r := bitio.NewReader(img.raster[row*rowBytes : (row+1)*rowBytes])
		for range img.width {
			x, err := r.Read(sampleBits)
			if err != nil {
				return nil, err
			}
			out[i] = u.s.value(float64(x))
			i++
		}
	}

	return out, nil
}

type pngImage struct {
	raster   []byte // unfiltered scanlines, each padded to a whole octet
	width    int
	height   int
	depth    int
	channels int
}

func decodePNG(payload []byte) (*pngImage, error) {
	if !bytes.HasPrefix(payload, pngSignature) {
		return nil, fmt.Errorf("%w: data section is not a PNG stream", errs.ErrMalformedSection)
	}

	var (
		img  pngImage
		idat []byte
		seen bool
	)

	rest := payload[len(pngSignature):]
	for {
		if len(rest) < 8 {
			return nil, fmt.Errorf("%w: truncated PNG chunk header", errs.ErrMalformedSection)
		}
		size := int(binary.BigEndian.Uint32(rest[:4]))
		typ := string(rest[4:8])
		if len(rest) < 12+size {
			return nil, fmt.Errorf("%w: truncated PNG chunk %q", errs.ErrMalformedSection, typ)
		}
		data := rest[8 : 8+size]

		sum := crc32.NewIEEE()
		sum.Write(rest[4 : 8+size])
		if sum.Sum32() != binary.BigEndian.Uint32(rest[8+size:]) {
			return nil, fmt.Errorf("%w: PNG chunk %q fails its checksum", errs.ErrMalformedSection, typ)
		}
		rest = rest[12+size:]

		switch typ {
		case "IHDR":
			if size != 13 {
				return nil, fmt.Errorf("%w: PNG header is %d octets", errs.ErrMalformedSection, size)
			}
			img.width = int(binary.BigEndian.Uint32(data[0:4]))
			img.height = int(binary.BigEndian.Uint32(data[4:8]))
			img.depth = int(data[8])

			switch data[9] {
			case 0:
				img.channels = 1
			case 2:
				img.channels = 3
			case 6:
				img.channels = 4
			default:
				return nil, fmt.Errorf("%w: PNG colour type %d", errs.ErrUnsupportedPacking, data[9])
			}
			if data[10] != 0 || data[11] != 0 || data[12] != 0 {
				return nil, fmt.Errorf("%w: PNG compression/filter/interlace %d/%d/%d",
					errs.ErrUnsupportedPacking, data[10], data[11], data[12])
			}
			if img.width < 1 || img.height < 1 {
				return nil, fmt.Errorf("%w: %dx%d PNG image", errs.ErrMalformedSection, img.width, img.height)
			}
			seen = true
		case "IDAT":
			idat = append(idat, data...)
		case "IEND":
			if !seen {
				return nil, fmt.Errorf("%w: PNG stream has no header", errs.ErrMalformedSection)
			}

			return inflateRaster(&img, idat)
		}
	}
}

// inflateRaster decompresses the image data and reverses the per-row
// byte filters, leaving raw scanlines.
func inflateRaster(img *pngImage, idat []byte) (*pngImage, error) {
	zr, err := zlib.NewReader(bytes.NewReader(idat))
	if err != nil {
		return nil, fmt.Errorf("%w: PNG image data: %w", errs.ErrMalformedSection, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: PNG image data: %w", errs.ErrMalformedSection, err)
	}

	return unfilterRaw(img, raw)
}

// unfilterRaw reverses the per-row byte filters of a decompressed
// raster: one filter type octet per scanline, then the filtered bytes.
func unfilterRaw(img *pngImage, raw []byte) (*pngImage, error) {
	sampleBits := img.depth * img.channels
	rowBytes := (img.width*sampleBits + 7) / 8
	if len(raw) != img.height*(1+rowBytes) {
		return nil, fmt.Errorf("%w: PNG raster is %d octets, %dx%d image needs %d",
			errs.ErrMalformedSection, len(raw), img.width, img.height, img.height*(1+rowBytes))
	}

	// The left neighbour for filtering is one whole pixel back, at
	// least one octet.
	bpp := (sampleBits + 7) / 8

	img.raster = make([]byte, img.height*rowBytes)
	var prev []byte
	for y := range img.height {
		ft := raw[y*(1+rowBytes)]
		src := raw[y*(1+rowBytes)+1 : (y+1)*(1+rowBytes)]
		dst := img.raster[y*rowBytes : (y+1)*rowBytes]
		copy(dst, src)

		switch ft {
		case 0: // none
		case 1: // sub
			for i := bpp; i < len(dst); i++ {
				dst[i] += dst[i-bpp]
			}
		case 2: // up
			if prev != nil {
				for i := range dst {
					dst[i] += prev[i]
				}
			}
		case 3: // average
			for i := range dst {
				var left, up int
				if i >= bpp {
					left = int(dst[i-bpp])
				}
				if prev != nil {
					up = int(prev[i])
				}
				dst[i] += byte((left + up) / 2)
			}
		case 4: // paeth
			for i := range dst {
				var left, upLeft, up byte
				if i >= bpp {
					left = dst[i-bpp]
				}
				if prev != nil {
					up = prev[i]
					if i >= bpp {
						upLeft = prev[i-bpp]
					}
				}
				dst[i] += paeth(left, up, upLeft)
			}
		default:
			return nil, fmt.Errorf("%w: PNG filter type %d", errs.ErrMalformedSection, ft)
		}

		prev = dst
	}

	return img, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}

	return c
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

// pngPacker emits template 5.41. The quantized integers become a single
// unfiltered scanline at the narrowest depth PNG can express.
type pngPacker struct {
	q Quantization
}

func (p *pngPacker) Pack(values []float64) (*section.DataRepresentation, *section.Data, error) {
	q, err := quantize(values, p.q)
	if err != nil {
		return nil, nil, err
	}

	var payload []byte
	if q.width > 0 {
		sampleBits, colorType := pngLayout(q.width)
		q.width = uint8(sampleBits) //nolint:gosec
		payload, err = encodePNG(q.ints, sampleBits, colorType)
		if err != nil {
			return nil, nil, err
		}
	}

	dr := &section.DataRepresentation{
		TemplateNumber: format.PackingPNG,
		NumPacked:      uint32(len(values)), //nolint:gosec
		Template:       q.fieldTemplate(),
	}

	return dr, &section.Data{Payload: payload}, nil
}

// pngLayout maps a bit width onto a PNG sample layout: grayscale up to
// 16 bits, then RGB and RGBA with the integer split across channels.
func pngLayout(width uint8) (sampleBits int, colorType byte) {
	switch {
	case width <= 1:
		return 1, 0
	case width <= 2:
		return 2, 0
	case width <= 4:
		return 4, 0
	case width <= 8:
		return 8, 0
	case width <= 16:
		return 16, 0
	case width <= 24:
		return 24, 2
	default:
		return 32, 6
	}
}

func encodePNG(ints []uint32, sampleBits int, colorType byte) ([]byte, error) {
	channels := 1
	switch colorType {
	case 2:
		channels = 3
	case 6:
		channels = 4
	}

	w := bitio.NewWriter((len(ints)*sampleBits + 7) / 8)
	for _, v := range ints {
		w.WriteBits(uint64(v), sampleBits)
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write([]byte{0}) // filter: none
	zw.Write(w.Bytes())
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: deflate: %w", errs.ErrNotEncodable, err)
	}

	hdr := make([]byte, 0, 13)
	hdr = binary.BigEndian.AppendUint32(hdr, uint32(len(ints))) //nolint:gosec
	hdr = binary.BigEndian.AppendUint32(hdr, 1)
	hdr = append(hdr, byte(sampleBits/channels), colorType, 0, 0, 0)

	out := append([]byte{}, pngSignature...)
	out = appendChunk(out, "IHDR", hdr)
	out = appendChunk(out, "IDAT", buf.Bytes())
	out = appendChunk(out, "IEND", nil)

	return out, nil
}

func appendChunk(b []byte, typ string, data []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(data))) //nolint:gosec
	b = append(b, typ...)
	b = append(b, data...)

	sum := crc32.NewIEEE()
	sum.Write([]byte(typ))
	sum.Write(data)

	return binary.BigEndian.AppendUint32(b, sum.Sum32())
}
