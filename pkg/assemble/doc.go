// Package assemble reconstructs dense 2D slices from strided tile fragments.
//
// # Overview
//
// Tiled slice services return one cross section of a volumetric cube as an
// ordered list of fragments. Each fragment (a [Tile]) carries a flat value
// buffer and a [Layout], a compact strided-copy descriptor saying where the
// values land in the final matrix. This package applies every fragment, in
// order, to a zero-initialized destination buffer and returns the result as
// a row-major [Slice].
//
// # Layouts
//
// A layout drives a pair of cursors. The destination cursor starts at
// InitialSkip, the source cursor at 0. Each of Iterations rounds copies
// ChunkSize contiguous elements and then advances the source cursor by
// Substride and the destination cursor by Superstride. The cursors move
// independently, which is what lets a single descriptor express row bands,
// interleaved columns, and the irregular edge fragments that tiled storage
// produces.
//
// All five fields are non-negative. A layout with Iterations or ChunkSize
// of zero reads and writes nothing.
//
// # Ordering
//
// Tiles are applied strictly in input order with no merging: when two tiles
// write the same destination offset, the later tile wins. Offsets no tile
// writes remain zero. Services rely on this when they re-send corrected
// fragments at the end of a response.
//
// # Errors
//
// [Assemble] validates every tile before touching the output buffer, so a
// failed call performs no partial work. Violations carry codes from
// [github.com/seisview/seisview/pkg/errors]: INVALID_LAYOUT for negative
// fields, INVALID_SHAPE for unusable target dimensions, OUT_OF_BOUNDS_SOURCE
// and OUT_OF_BOUNDS_DEST for reads or writes that would leave their buffers,
// and, when [WithFullCoverage] is requested, INCOMPLETE_COVERAGE for
// destinations left untouched.
//
// # Concurrency
//
// Assembly of one slice is a single synchronous pass; the ordering rule
// makes unordered parallel writes incorrect, and slices are small enough
// that a pass is memcpy-bound. Callers that want parallelism should fetch
// and assemble whole slices concurrently (see the query package's batch
// fetcher) rather than splitting one assembly.
package assemble
