package render

import (
	"strings"
	"testing"

	"github.com/seisview/seisview/pkg/errors"
)

func countBlocks(line string) int {
	return strings.Count(line, halfBlock)
}

func TestANSI(t *testing.T) {
	s := mustSlice(t, 4, 4, []float32{
		-2, -1, 1, 2,
		-1, 0, 0, 1,
		1, 0, 0, -1,
		2, 1, -1, -2,
	})

	out, err := ANSI(s, 4, 2)
	if err != nil {
		t.Fatalf("ANSI() error: %v", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	for i, line := range lines {
		if got := countBlocks(line); got != 4 {
			t.Errorf("line %d has %d cells, want 4", i, got)
		}
	}
}

func TestANSIDownsamples(t *testing.T) {
	data := make([]float32, 100*100)
	for i := range data {
		data[i] = float32(i%7) - 3
	}
	s := mustSlice(t, 100, 100, data)

	out, err := ANSI(s, 10, 5)
	if err != nil {
		t.Fatalf("ANSI() error: %v", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("len(lines) = %d, want 5", len(lines))
	}
	for i, line := range lines {
		if got := countBlocks(line); got != 10 {
			t.Errorf("line %d has %d cells, want 10", i, got)
		}
	}
}

func TestANSISmallerThanGrid(t *testing.T) {
	// A 3x2 slice in a huge viewport stays 3 sample rows by 2 columns:
	// two text rows, the last holding a lone top half.
	s := mustSlice(t, 3, 2, []float32{1, -1, 0, 0, -1, 1})

	out, err := ANSI(s, 80, 40)
	if err != nil {
		t.Fatalf("ANSI() error: %v", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	for i, line := range lines {
		if got := countBlocks(line); got != 2 {
			t.Errorf("line %d has %d cells, want 2", i, got)
		}
	}
}

func TestANSIDefaultViewport(t *testing.T) {
	data := make([]float32, 200*200)
	s := mustSlice(t, 200, 200, data)

	out, err := ANSI(s, 0, 0)
	if err != nil {
		t.Fatalf("ANSI() error: %v", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != defaultANSIRows {
		t.Errorf("len(lines) = %d, want %d", len(lines), defaultANSIRows)
	}
	if got := countBlocks(lines[0]); got != defaultANSICols {
		t.Errorf("line 0 has %d cells, want %d", got, defaultANSICols)
	}
}

func TestANSIOptionsApply(t *testing.T) {
	s := mustSlice(t, 2, 3, []float32{-2, 0, 2, 2, 0, -2})

	// Transpose flips the grid to 3 sample rows by 2 columns.
	out, err := ANSI(s, 10, 10, WithTranspose())
	if err != nil {
		t.Fatalf("ANSI() error: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if got := countBlocks(lines[0]); got != 2 {
		t.Errorf("line 0 has %d cells, want 2", got)
	}
}

func TestANSIErrors(t *testing.T) {
	if _, err := ANSI(nil, 10, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ANSI(nil) code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}

	s := mustSlice(t, 1, 2, []float32{1, 2})
	if _, err := ANSI(s, 10, 10, WithColormap("magma")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ANSI() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}
