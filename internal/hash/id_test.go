package hash

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	t.Run("empty input has the canonical xxHash64 value", func(t *testing.T) {
		assert.Equal(t, uint64(0xef46db3751d8e999), ID(""))
	})

	t.Run("deterministic", func(t *testing.T) {
		key := "0:1:8:accumulation over 6h"
		assert.Equal(t, ID(key), ID(key))
	})

	t.Run("distinct keys diverge", func(t *testing.T) {
		assert.NotEqual(t, ID("2:0:3:surface"), ID("2:0:3:sea_level"))
	})
}

func TestChecksum(t *testing.T) {
	// Checksum over octets and ID over the equivalent string are the
	// same hash; inventory lines and message bodies share one keyspace.
	line := "0:0:2:air_temperature:isobaric 50000 Pa"
	assert.Equal(t, ID(line), Checksum([]byte(line)))

	assert.Equal(t, uint64(0xef46db3751d8e999), Checksum(nil))
	assert.NotEqual(t, Checksum([]byte("GRIB")), Checksum([]byte("7777")))
}

func randBytes(n int) []byte {
	b := make([]byte, n)
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := range b {
		b[i] = byte(seededRand.Intn(256))
	}

	return b
}

func BenchmarkID(b *testing.B) {
	line := "12:103424:2:relative_humidity:height above ground 2 m"
	b.ResetTimer()
	for b.Loop() {
		ID(line)
	}
}

func BenchmarkChecksum(b *testing.B) {
	// Sized like a small single-field message.
	msg := randBytes(16 * 1024)
	b.SetBytes(int64(len(msg)))
	b.ResetTimer()
	for b.Loop() {
		Checksum(msg)
	}
}
