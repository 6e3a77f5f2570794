// Package query provides the HTTP client for slice servers.
//
// # Overview
//
// A slice server exposes pre-cut seismic surveys: for a survey GUID and a
// (dimension, line number) pair it returns the tile payload that [assemble]
// turns back into a dense slice. This package covers the three endpoints
// a server exposes:
//
//	GET {base}/{guid}/slice/{dim}/{lineno}   tile payload
//	GET {base}/{guid}/manifest               survey manifest
//	GET {base}/config                        server configuration
//
// # Client Pattern
//
//	client := query.NewClient(baseURL, backend, token)
//	tiles, err := client.FetchTiles(ctx, "survey-a", 0, 150, false)
//
// Responses are cached via the backend (respecting refresh), transient
// failures are retried, and inputs are validated before any request is
// issued. All methods are safe for concurrent use.
//
// # Batch Fetching
//
// [Client.FetchBatch] fans a set of slice requests out over a worker pool
// and returns payloads in request order. The first failure cancels the
// remaining work.
//
// [assemble]: github.com/seisview/seisview/pkg/assemble
package query
