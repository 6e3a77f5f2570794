package query

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/seisview/seisview/pkg/errors"
)

// tileServer serves 1x2 slices whose values encode the requested lineno,
// so ordering assertions can tell results apart. Linenos present in fail
// get that status instead of a payload.
func tileServer(fail map[int]int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) == 2 && parts[1] == "manifest" {
			fmt.Fprint(w, `{"dimensions": [[10, 12, 14], [7], [0, 4]]}`)
			return
		}
		if len(parts) != 4 || parts[1] != "slice" {
			http.NotFound(w, r)
			return
		}
		lineno, err := strconv.Atoi(parts[3])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if code, ok := fail[lineno]; ok {
			w.WriteHeader(code)
			return
		}
		fmt.Fprintf(w, `{"tiles": [{"layout": {"initial_skip": 0, "chunk_size": 2, "iterations": 1, "substride": 2, "superstride": 2}, "v": [%d, %d]}]}`, lineno, lineno+1)
	}))
}

func TestRangeLinenos(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want []int
	}{
		{"single lineno", Range{Start: 5, End: 5}, []int{5}},
		{"default step", Range{Start: 1, End: 4}, []int{1, 2, 3, 4}},
		{"step two", Range{Start: 10, End: 14, Step: 2}, []int{10, 12, 14}},
		{"step overshoots end", Range{Start: 0, End: 5, Step: 4}, []int{0, 4}},
		{"negative step treated as one", Range{Start: 1, End: 3, Step: -2}, []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.Linenos()
			if len(got) != len(tt.want) {
				t.Fatalf("Linenos() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Linenos()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBatcherFetch(t *testing.T) {
	server := tileServer(nil)
	defer server.Close()

	b := &Batcher{Client: NewClient(server.URL, "", nil, time.Minute)}
	results, err := b.Fetch(context.Background(), "survey-a", Range{Dim: 0, Start: 10, End: 14, Step: 2}, 1, 2)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	want := []int{10, 12, 14}
	if len(results) != len(want) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(want))
	}
	for i, res := range results {
		if res.Lineno != want[i] {
			t.Errorf("results[%d].Lineno = %d, want %d", i, res.Lineno, want[i])
		}
		if res.Slice == nil {
			t.Fatalf("results[%d].Slice is nil", i)
		}
		if got := res.Slice.At(0, 0); got != float32(want[i]) {
			t.Errorf("results[%d].Slice.At(0, 0) = %v, want %v", i, got, float32(want[i]))
		}
	}
}

func TestBatcherFetchDerivesShape(t *testing.T) {
	server := tileServer(nil)
	defer server.Close()

	b := &Batcher{Client: NewClient(server.URL, "", nil, time.Minute)}
	results, err := b.Fetch(context.Background(), "survey-a", Range{Dim: 0, Start: 10, End: 10}, 0, 0)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	s0, s1 := results[0].Slice.Shape()
	if s0 != 1 || s1 != 2 {
		t.Errorf("Shape() = (%d, %d), want (1, 2) from the manifest", s0, s1)
	}
}

func TestBatcherFetchSingleWorker(t *testing.T) {
	server := tileServer(nil)
	defer server.Close()

	b := &Batcher{Client: NewClient(server.URL, "", nil, time.Minute), Workers: 1}
	results, err := b.Fetch(context.Background(), "survey-a", Range{Dim: 0, Start: 0, End: 3}, 1, 2)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	for i, res := range results {
		if res.Lineno != i {
			t.Errorf("results[%d].Lineno = %d, want %d", i, res.Lineno, i)
		}
	}
}

func TestBatcherFetchFirstError(t *testing.T) {
	server := tileServer(map[int]int{12: http.StatusNotFound})
	defer server.Close()

	b := &Batcher{Client: NewClient(server.URL, "", nil, time.Minute)}
	_, err := b.Fetch(context.Background(), "survey-a", Range{Dim: 0, Start: 10, End: 14, Step: 2}, 1, 2)
	if err == nil {
		t.Fatal("Fetch() expected error, got nil")
	}
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Fetch() code = %v, want %v", errors.GetCode(err), errors.ErrCodeNotFound)
	}
	if !strings.Contains(err.Error(), "line 12") {
		t.Errorf("Fetch() error %q does not name the failing line", err)
	}
}

func TestBatcherFetchValidation(t *testing.T) {
	b := &Batcher{Client: NewClient("http://example.com", "", nil, time.Minute)}
	ctx := context.Background()

	tests := []struct {
		name   string
		guid   string
		r      Range
		shape0 int
		shape1 int
		code   errors.Code
	}{
		{"bad guid", "", Range{Start: 0, End: 1}, 1, 2, errors.ErrCodeInvalidGUID},
		{"bad dim", "survey-a", Range{Dim: 7, Start: 0, End: 1}, 1, 2, errors.ErrCodeInvalidDimension},
		{"negative start", "survey-a", Range{Start: -1, End: 1}, 1, 2, errors.ErrCodeInvalidLineno},
		{"end before start", "survey-a", Range{Start: 5, End: 1}, 1, 2, errors.ErrCodeInvalidLineno},
		{"bad shape", "survey-a", Range{Start: 0, End: 1}, -1, 2, errors.ErrCodeInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Fetch(ctx, tt.guid, tt.r, tt.shape0, tt.shape1)
			if err == nil {
				t.Fatal("Fetch() expected error, got nil")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Fetch() code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestBatcherFetchContextCanceled(t *testing.T) {
	server := tileServer(nil)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &Batcher{Client: NewClient(server.URL, "", nil, time.Minute)}
	if _, err := b.Fetch(ctx, "survey-a", Range{Dim: 0, Start: 0, End: 10}, 1, 2); err == nil {
		t.Fatal("Fetch() expected error on canceled context, got nil")
	}
}
