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

// writeMatrixFixture writes a small matrix to dir and returns its path.
func writeMatrixFixture(t *testing.T, dir string) string {
	t.Helper()
	s, err := assemble.NewSlice(2, 3, []float32{1, -2, 3, -4, 5, -6})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "matrix.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := seisio.WriteSlice(s, f); err != nil {
		t.Fatalf("write matrix fixture: %v", err)
	}
	return path
}

func TestRenderCommandDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	matrixPath := writeMatrixFixture(t, dir)

	c := New(io.Discard, LogInfo)
	cmd := c.renderCommand()
	cmd.SetArgs([]string{matrixPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	// Default output swaps the extension for .png
	outPath := filepath.Join(dir, "matrix.png")
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("default output missing: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output does not look like a PNG")
	}
}

func TestRenderCommandExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	matrixPath := writeMatrixFixture(t, dir)
	outPath := filepath.Join(dir, "custom.png")

	c := New(io.Discard, LogInfo)
	cmd := c.renderCommand()
	cmd.SetArgs([]string{matrixPath, "-o", outPath, "--colormap", "gray", "--scale", "3", "--flip"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("explicit output missing: %v", err)
	}
}

func TestRenderCommandBadColormap(t *testing.T) {
	dir := t.TempDir()
	matrixPath := writeMatrixFixture(t, dir)

	c := New(io.Discard, LogInfo)
	cmd := c.renderCommand()
	cmd.SetArgs([]string{matrixPath, "--colormap", "viridis"})
	cmd.SetErr(io.Discard)
	cmd.SetOut(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Fatal("render with unknown colormap should fail")
	}
}

func TestRenderCommandBadInput(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "not-a-matrix.json")
	if err := os.WriteFile(badPath, []byte("{\"nope\":"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	cmd := c.renderCommand()
	cmd.SetArgs([]string{badPath})
	cmd.SetErr(io.Discard)
	cmd.SetOut(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Fatal("render on malformed input should fail")
	}
}
