package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/seisview/seisview/pkg/assemble"
	"github.com/seisview/seisview/pkg/errors"
)

// payload mirrors the service's tile response. Pointer fields distinguish
// absent keys from zero values during strict decoding.
type payload struct {
	Tiles *[]tileDTO `json:"tiles"`
}

type tileDTO struct {
	Layout *layoutDTO `json:"layout"`
	V      []float32  `json:"v"`
}

type layoutDTO struct {
	InitialSkip *int `json:"initial_skip"`
	ChunkSize   *int `json:"chunk_size"`
	Iterations  *int `json:"iterations"`
	Substride   *int `json:"substride"`
	Superstride *int `json:"superstride"`
}

type sliceDTO struct {
	Shape0 *int      `json:"shape0"`
	Shape1 *int      `json:"shape1"`
	Data   []float32 `json:"data"`
}

// ReadTiles decodes a tile payload from r.
//
// The input must be a JSON object with a "tiles" array; each tile must have
// a "layout" object carrying all five descriptor fields (initial_skip,
// chunk_size, iterations, substride, superstride) and may have a "v" value
// array. See the package documentation for the full format.
//
// ReadTiles returns a typed error if:
//   - The JSON is malformed (INVALID_INPUT)
//   - The "tiles" key or a tile's "layout" is absent (INVALID_INPUT,
//     INVALID_LAYOUT)
//   - A layout field is missing or not numeric (INVALID_LAYOUT, with the
//     field name in the message)
//
// Field signs and the spans layouts imply are not checked here; that is
// [assemble.Assemble]'s contract. ReadTiles does not close r.
func ReadTiles(r io.Reader) ([]assemble.Tile, error) {
	var data payload
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, decodeError(err, "tile payload")
	}
	if data.Tiles == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "payload has no tiles array")
	}

	tiles := make([]assemble.Tile, len(*data.Tiles))
	for i, td := range *data.Tiles {
		t, err := td.toTile(i)
		if err != nil {
			return nil, err
		}
		tiles[i] = t
	}
	return tiles, nil
}

// ImportTiles reads a tile payload from the file at path.
//
// ImportTiles opens the file, decodes it using [ReadTiles], and closes the
// file. Decoding errors are the same typed errors ReadTiles produces.
func ImportTiles(path string) ([]assemble.Tile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTiles(f)
}

// ReadSlice decodes an assembled matrix from r.
//
// The input must carry "shape0", "shape1", and a flat row-major "data"
// array whose length is shape0*shape1. Violations are INVALID_INPUT or
// INVALID_SHAPE. ReadSlice does not close r.
func ReadSlice(r io.Reader) (*assemble.Slice, error) {
	var data sliceDTO
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, decodeError(err, "matrix")
	}
	if data.Shape0 == nil || data.Shape1 == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix is missing shape0/shape1")
	}
	if data.Data == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix has no data array")
	}
	return assemble.NewSlice(*data.Shape0, *data.Shape1, data.Data)
}

// ImportSlice reads an assembled matrix from the file at path.
func ImportSlice(path string) (*assemble.Slice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSlice(f)
}

// toTile converts a decoded tile, rejecting any absent layout field.
func (td tileDTO) toTile(idx int) (assemble.Tile, error) {
	if td.Layout == nil {
		return assemble.Tile{}, errors.New(errors.ErrCodeInvalidLayout, "tile %d has no layout", idx)
	}

	l := td.Layout
	fields := []struct {
		name string
		val  *int
	}{
		{"initial_skip", l.InitialSkip},
		{"chunk_size", l.ChunkSize},
		{"iterations", l.Iterations},
		{"substride", l.Substride},
		{"superstride", l.Superstride},
	}
	for _, f := range fields {
		if f.val == nil {
			return assemble.Tile{}, errors.New(errors.ErrCodeInvalidLayout, "tile %d layout is missing %s", idx, f.name)
		}
	}

	return assemble.Tile{
		Layout: assemble.Layout{
			InitialSkip: *l.InitialSkip,
			ChunkSize:   *l.ChunkSize,
			Iterations:  *l.Iterations,
			Substride:   *l.Substride,
			Superstride: *l.Superstride,
		},
		V: td.V,
	}, nil
}

// decodeError maps a json decode failure to a typed error. Type mismatches
// inside a layout object become INVALID_LAYOUT so callers see the same code
// for "missing" and "not a number"; everything else is INVALID_INPUT.
func decodeError(err error, what string) error {
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		if strings.Contains(typeErr.Field, "layout") {
			return errors.Wrap(errors.ErrCodeInvalidLayout, err, "layout field %s is not numeric", typeErr.Field)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "field %s has wrong type", typeErr.Field)
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", what)
}
