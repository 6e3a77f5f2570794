package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/seisview/seisview/pkg/assemble"
)

type tileOut struct {
	Layout assemble.Layout `json:"layout"`
	V      []float32       `json:"v"`
}

type payloadOut struct {
	Tiles []tileOut `json:"tiles"`
}

type sliceOut struct {
	Shape0 int       `json:"shape0"`
	Shape1 int       `json:"shape1"`
	Data   []float32 `json:"data"`
}

// WriteTiles encodes tiles as a service-format payload and writes it to w.
// The output can be re-read with [ReadTiles] for round-trip processing. A
// tile with a nil value buffer is written with an empty "v" array.
func WriteTiles(tiles []assemble.Tile, w io.Writer) error {
	out := payloadOut{Tiles: make([]tileOut, len(tiles))}
	for i, t := range tiles {
		v := t.V
		if v == nil {
			v = []float32{}
		}
		out.Tiles[i] = tileOut{Layout: t.Layout, V: v}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportTiles writes a tile payload to a JSON file at path.
// This is a convenience wrapper around [WriteTiles] for file-based output.
func ExportTiles(tiles []assemble.Tile, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTiles(tiles, f)
}

// WriteSlice encodes an assembled matrix and writes it to w.
// The output can be re-read with [ReadSlice].
func WriteSlice(s *assemble.Slice, w io.Writer) error {
	shape0, shape1 := s.Shape()
	out := sliceOut{Shape0: shape0, Shape1: shape1, Data: s.Data()}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportSlice writes an assembled matrix to a JSON file at path.
func ExportSlice(s *assemble.Slice, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSlice(s, f)
}
