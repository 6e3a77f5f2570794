// Package integrations provides the shared HTTP plumbing for API clients.
//
// # Overview
//
// This package contains the low-level HTTP layer used by [query.Client]
// to talk to slice servers. It is deliberately unaware of the seismic
// domain: everything survey-specific lives in [query].
//
// # Client Pattern
//
// [Client] bundles the concerns every API client needs:
//
//	client := integrations.NewClient(backend, "seisview:", cache.TTLQuery, headers)
//	err := client.Get(ctx, url, &result)
//
// Clients handle:
//   - HTTP requests with retry for transient failures
//   - Response caching via [cache.Cache] (configurable TTL)
//   - Default headers (e.g. Authorization) merged per request
//   - Status code mapping to [ErrNotFound], [ErrUnauthorized], [ErrNetwork]
//
// # Rate Limiting
//
// A 429 response becomes a retryable error whose wait comes from the
// server's Retry-After header, so the retry loop backs off exactly as
// long as the server asked. When attempts run out the inner
// [errors.RateLimitedError] surfaces to the caller with the advised
// wait in seconds.
//
// [query.Client]: github.com/seisview/seisview/pkg/query.Client
// [query]: github.com/seisview/seisview/pkg/query
// [cache.Cache]: github.com/seisview/seisview/pkg/cache.Cache
// [errors.RateLimitedError]: github.com/seisview/seisview/pkg/errors.RateLimitedError
package integrations
