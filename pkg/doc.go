// Package pkg provides the core libraries for Seisview slice processing.
//
// # Overview
//
// Seisview fetches seismic slices from a tile server, reassembles the
// strided tile payloads into dense matrices, and renders them as images
// or terminal previews. The pkg directory is organized into three areas:
//
//  1. Domain logic ([assemble], [query], [render]) - tile reassembly,
//     server access, and rasterization
//  2. Infrastructure ([cache], [io], [auth], [session], [httputil],
//     [integrations], [observability], [errors]) - caching, serialization,
//     credentials, and HTTP plumbing
//  3. Orchestration ([pipeline]) - the fetch → assemble → render flow
//     shared by the CLI and the demo server
//
// # Architecture
//
// The typical data flow through Seisview:
//
//	Tile server (HTTP JSON)
//	         ↓
//	    [query] package (fetch manifest + tile payloads)
//	         ↓
//	    [assemble] package (scatter tiles into a dense matrix)
//	         ↓
//	    [render] package (heatmap PNG or ANSI preview)
//
// Every stage result is cacheable: raw payloads under query keys, matrices
// and images under content-addressed keys ([cache.Keyer]).
//
// # Quick Start
//
// Fetch and render one slice:
//
//	import (
//	    "context"
//	    "github.com/seisview/seisview/pkg/cache"
//	    "github.com/seisview/seisview/pkg/pipeline"
//	    "github.com/seisview/seisview/pkg/query"
//	)
//
//	backend, _ := cache.NewFileCache("/tmp/seisview")
//	client := query.NewClient("http://localhost:8080", "", backend, cache.TTLQuery)
//	runner := pipeline.NewRunner(backend, nil, nil)
//
//	result, _ := runner.Execute(context.Background(), client, pipeline.Options{
//	    GUID:   "survey-guid",
//	    Dim:    0,
//	    Lineno: 1024,
//	})
//	os.WriteFile("slice.png", result.PNG, 0o644)
//
// # Main Packages
//
// [assemble] - Reassembles strided tiles into dense row-major matrices.
// The tile layout descriptor (initial skip, chunk size, iterations,
// strides) drives a scatter copy; overlaps resolve last-writer-wins and
// full-coverage checking is opt-in.
//
// [query] - HTTP client for the tile service: manifests, slice payloads,
// server config discovery, and a worker-pool [query.Batcher] for lineno
// ranges.
//
// [render] - Turns matrices into diverging-colormap heatmap rasters
// (PNG) or lipgloss half-block art for terminals.
//
// [pipeline] - Runs the full fetch → assemble → render sequence with
// per-stage caching and cache-hit reporting.
//
// [cache] - File, Redis, and null backends behind one interface, plus
// the key scheme ([cache.Keyer]) that makes slice and image entries
// content-addressed.
//
// [io] - The JSON wire codec for tile payloads and matrices, with
// strict decoding into typed errors.
//
// [auth] - OAuth2 device-code flow and HS256 shared-key tokens for the
// demo server.
//
// [session] - Persisted login state for the CLI.
//
// [integrations] - Shared HTTP client plumbing: retries, response
// caching, status mapping, rate-limit surfacing.
//
// [errors] - Typed errors with stable machine-readable codes.
//
// [observability] - Process-wide hooks for cache, HTTP, and pipeline
// events.
//
// [assemble]: https://pkg.go.dev/github.com/seisview/seisview/pkg/assemble
// [query]: https://pkg.go.dev/github.com/seisview/seisview/pkg/query
// [query.Batcher]: https://pkg.go.dev/github.com/seisview/seisview/pkg/query#Batcher
// [render]: https://pkg.go.dev/github.com/seisview/seisview/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/seisview/seisview/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/seisview/seisview/pkg/cache
// [cache.Keyer]: https://pkg.go.dev/github.com/seisview/seisview/pkg/cache#Keyer
// [io]: https://pkg.go.dev/github.com/seisview/seisview/pkg/io
// [auth]: https://pkg.go.dev/github.com/seisview/seisview/pkg/auth
// [session]: https://pkg.go.dev/github.com/seisview/seisview/pkg/session
// [httputil]: https://pkg.go.dev/github.com/seisview/seisview/pkg/httputil
// [integrations]: https://pkg.go.dev/github.com/seisview/seisview/pkg/integrations
// [observability]: https://pkg.go.dev/github.com/seisview/seisview/pkg/observability
// [errors]: https://pkg.go.dev/github.com/seisview/seisview/pkg/errors
package pkg
