// Package io provides JSON import and export for tile payloads and
// assembled matrices.
//
// # Overview
//
// This package is the boundary between seisview and the bytes it exchanges:
// the tile payloads a slice service produces, and the dense matrices the
// assembler emits. It exists for:
//
//   - Strict decoding of untrusted service responses into typed errors
//   - Offline workflows: save a payload once, reassemble and re-render freely
//   - Caching of fetched payloads and assembled matrices between runs
//   - Round-trip preservation: write then read yields identical data
//
// # Tile Payload Format
//
// The payload format is the slice service's wire format:
//
//	{
//	  "tiles": [
//	    {
//	      "layout": {
//	        "initial_skip": 0,
//	        "chunk_size": 3,
//	        "iterations": 2,
//	        "substride": 3,
//	        "superstride": 3
//	      },
//	      "v": [1, 2, 3, 4, 5, 6]
//	    }
//	  ]
//	}
//
// All five layout fields are required non-negative integers. The value
// buffer "v" may be omitted only when the layout reads nothing.
//
// # Matrix Format
//
// Assembled slices serialize as a flat row-major buffer plus its shape:
//
//	{
//	  "shape0": 2,
//	  "shape1": 3,
//	  "data": [1, 2, 3, 4, 5, 6]
//	}
//
// All three fields are required, and len(data) must equal shape0*shape1.
//
// # Strictness
//
// Layout descriptors drive raw buffer arithmetic downstream, so decoding is
// deliberately strict: a missing layout field or a non-numeric value is
// reported as a typed INVALID_LAYOUT error naming the field, never passed
// through as a silent zero. Missing fields are detected with pointer-typed
// intermediate structs, since a plain struct decode cannot tell an absent
// field from a zero one.
//
// # Import
//
// Use [ImportTiles] to read a payload from a file path, or [ReadTiles] to
// read from any io.Reader:
//
//	tiles, err := io.ImportTiles("payload.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// [ImportSlice] and [ReadSlice] do the same for saved matrices.
//
// # Export
//
// Use [ExportTiles] and [ExportSlice] to write files, or [WriteTiles] and
// [WriteSlice] to write to any io.Writer:
//
//	err := io.ExportSlice(s, "slice.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// All functions are safe to call concurrently. Readers return independent
// values; writers only read their inputs.
package io
