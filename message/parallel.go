package message

import (
	"cmp"
	"io"
	"runtime"
	"slices"
	"sync"
)

// Result pairs one message's decoded fields with its stream position.
// Err carries that message's decode failure alone; surrounding messages
// decode independently.
type Result struct {
	Grids []*PhysicalGrid
	Err   error

	Index  int
	Offset int64
}

// DecodeAll scans the stream and decodes every message in order.
//
// A message that frames but fails to decode lands in its Result with Err
// set and the walk continues. Scanning problems end the walk and are
// returned alongside the results gathered so far; callers that want to
// skip corrupt framing and keep going should drive a Scanner directly.
func DecodeAll(r io.ReaderAt) ([]Result, error) {
	var results []Result

	for raw, err := range NewScanner(r).Messages() {
		if err != nil {
			return results, err
		}

		grids, decErr := raw.Decode()
		results = append(results, Result{
			Grids:  grids,
			Err:    decErr,
			Index:  raw.Index,
			Offset: raw.Offset,
		})
	}

	return results, nil
}

// DecodeAllParallel is DecodeAll with the per-message decoding fanned
// out across workers. Results come back in stream order regardless of
// which worker finished first. Workers at or below zero means one per
// available CPU.
//
// Messages are independent once framed, so this scales until the stream
// read becomes the bottleneck.
func DecodeAllParallel(r io.ReaderAt, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	jobs := make(chan *Raw, workers)
	out := make(chan Result, workers)

	var wg sync.WaitGroup

	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()

			for raw := range jobs {
				grids, err := raw.Decode()
				out <- Result{Grids: grids, Err: err, Index: raw.Index, Offset: raw.Offset}
			}
		}()
	}

	var scanErr error
	go func() {
		defer close(jobs)

		for raw, err := range NewScanner(r).Messages() {
			if err != nil {
				scanErr = err

				return
			}
			jobs <- raw
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	var results []Result
	for res := range out {
		results = append(results, res)
	}

	slices.SortFunc(results, func(a, b Result) int {
		return cmp.Compare(a.Index, b.Index)
	})

	return results, scanErr
}
