package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/seisview/seisview/pkg/assemble"
	seisio "github.com/seisview/seisview/pkg/io"
)

// fixtureTiles builds a 2×3 matrix split into two column-block tiles:
//
//	1 2 | 3
//	4 5 | 6
func fixtureTiles() []assemble.Tile {
	return []assemble.Tile{
		{
			Layout: assemble.Layout{InitialSkip: 0, ChunkSize: 2, Iterations: 2, Substride: 2, Superstride: 3},
			V:      []float32{1, 2, 4, 5},
		},
		{
			Layout: assemble.Layout{InitialSkip: 2, ChunkSize: 1, Iterations: 2, Substride: 1, Superstride: 3},
			V:      []float32{3, 6},
		},
	}
}

// writeTilesFixture writes the fixture payload to dir and returns its path.
func writeTilesFixture(t *testing.T, dir string, tiles []assemble.Tile) string {
	t.Helper()
	path := filepath.Join(dir, "tiles.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := seisio.WriteTiles(tiles, f); err != nil {
		t.Fatalf("write tiles fixture: %v", err)
	}
	return path
}

func TestAssembleCommandToJSON(t *testing.T) {
	dir := t.TempDir()
	tilesPath := writeTilesFixture(t, dir, fixtureTiles())
	outPath := filepath.Join(dir, "matrix.json")

	c := New(io.Discard, LogInfo)
	cmd := c.assembleCommand()
	cmd.SetArgs([]string{tilesPath, "--shape0", "2", "--shape1", "3", "-o", outPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("assemble: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()

	s, err := seisio.ReadSlice(f)
	if err != nil {
		t.Fatalf("read matrix: %v", err)
	}

	if s0, s1 := s.Shape(); s0 != 2 || s1 != 3 {
		t.Fatalf("shape = %d×%d, want 2×3", s0, s1)
	}
	want := []float32{1, 2, 3, 4, 5, 6}
	for i, v := range s.Data() {
		if v != want[i] {
			t.Errorf("cell %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestAssembleCommandToPNG(t *testing.T) {
	dir := t.TempDir()
	tilesPath := writeTilesFixture(t, dir, fixtureTiles())
	outPath := filepath.Join(dir, "slice.png")

	c := New(io.Discard, LogInfo)
	cmd := c.assembleCommand()
	cmd.SetArgs([]string{tilesPath, "--shape0", "2", "--shape1", "3", "-o", outPath, "--scale", "2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("assemble: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Errorf("output does not look like a PNG (starts %q)", data[:min(8, len(data))])
	}
}

func TestAssembleCommandRequireCoverage(t *testing.T) {
	dir := t.TempDir()
	// Only the first tile: the last column is never written
	tilesPath := writeTilesFixture(t, dir, fixtureTiles()[:1])

	c := New(io.Discard, LogInfo)
	cmd := c.assembleCommand()
	cmd.SetArgs([]string{tilesPath, "--shape0", "2", "--shape1", "3", "--require-coverage", "-o", filepath.Join(dir, "out.json")})
	cmd.SetErr(io.Discard)
	cmd.SetOut(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Fatal("assemble with a coverage gap should fail under --require-coverage")
	}
}

func TestAssembleCommandMissingShape(t *testing.T) {
	dir := t.TempDir()
	tilesPath := writeTilesFixture(t, dir, fixtureTiles())

	c := New(io.Discard, LogInfo)
	cmd := c.assembleCommand()
	cmd.SetArgs([]string{tilesPath})
	cmd.SetErr(io.Discard)
	cmd.SetOut(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Fatal("assemble without shape flags should fail")
	}
}
