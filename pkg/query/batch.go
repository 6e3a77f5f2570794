package query

import (
	"context"
	"sync"

	"github.com/seisview/seisview/pkg/assemble"
	"github.com/seisview/seisview/pkg/errors"
)

// defaultBatchWorkers bounds concurrent slice fetches. Slice payloads
// run into megabytes, so this stays well below typical server limits.
const defaultBatchWorkers = 8

// Range selects a run of line numbers along one dimension.
// Step <= 0 is treated as 1. Start and End are inclusive.
type Range struct {
	Dim   int
	Start int
	End   int
	Step  int
}

// Linenos expands the range into its line numbers.
func (r Range) Linenos() []int {
	step := max(r.Step, 1)
	var out []int
	for n := r.Start; n <= r.End; n += step {
		out = append(out, n)
	}
	return out
}

func (r Range) validate() error {
	if err := errors.ValidateDimension(r.Dim); err != nil {
		return err
	}
	if err := errors.ValidateLineno(r.Start); err != nil {
		return err
	}
	if r.End < r.Start {
		return errors.New(errors.ErrCodeInvalidLineno, "range end %d before start %d", r.End, r.Start)
	}
	return nil
}

// Result is one assembled slice out of a batch fetch.
type Result struct {
	Lineno int
	Slice  *assemble.Slice
}

// Batcher fetches and assembles a range of slices concurrently.
type Batcher struct {
	Client  *Client
	Workers int // worker pool size, <= 0 means defaultBatchWorkers
	Refresh bool
}

// Fetch retrieves every lineno in r and assembles each into a slice of
// shape0 x shape1 (pass 0, 0 to derive the shape from the manifest).
// Results come back in lineno order regardless of completion order. The
// first failure cancels the remaining work and is returned.
func (b *Batcher) Fetch(ctx context.Context, guid string, r Range, shape0, shape1 int) ([]Result, error) {
	if err := errors.ValidateGUID(guid); err != nil {
		return nil, err
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	if shape0 == 0 && shape1 == 0 {
		m, err := b.Client.FetchManifest(ctx, guid, b.Refresh)
		if err != nil {
			return nil, err
		}
		if shape0, shape1, err = m.SliceShape(r.Dim); err != nil {
			return nil, err
		}
	}
	if err := errors.ValidateShape(shape0, shape1); err != nil {
		return nil, err
	}

	linenos := r.Linenos()
	workers := b.Workers
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	workers = min(workers, len(linenos))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type item struct {
		idx   int
		slice *assemble.Slice
		err   error
	}
	jobs := make(chan int, workers*2)
	results := make(chan item, workers*2)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				tiles, err := b.Client.FetchTiles(ctx, guid, r.Dim, linenos[idx], b.Refresh)
				if err != nil {
					results <- item{idx: idx, err: err}
					continue
				}
				s, err := assemble.Assemble(tiles, shape0, shape1)
				results <- item{idx: idx, slice: s, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range linenos {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Result, len(linenos))
	var firstErr error
	for it := range results {
		if it.err != nil {
			if firstErr == nil {
				code := errors.GetCode(it.err)
				if code == "" {
					code = errors.ErrCodeNetwork
				}
				firstErr = errors.Wrap(code, it.err, "line %d", linenos[it.idx])
				cancel()
			}
			continue
		}
		out[it.idx] = Result{Lineno: linenos[it.idx], Slice: it.slice}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
