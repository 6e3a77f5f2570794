package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Tile payloads for long lines run into megabytes, so the timeout is
// generous compared to a typical JSON API client.
const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a survey or resource doesn't exist on the server.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned when the server rejects the request credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizeBaseURL converts a server URL to canonical form: surrounding
// whitespace and trailing slashes are removed so endpoint paths can be
// appended without doubling separators.
// Returns empty string if raw is empty.
func NormalizeBaseURL(raw string) string {
	s := strings.TrimSpace(raw)
	return strings.TrimRight(s, "/")
}

// EndpointURL builds a URL from a base and path segments.
// Each segment is percent-encoded, so survey GUIDs with unusual characters
// cannot break out of their path position.
func EndpointURL(base string, parts ...string) string {
	var b strings.Builder
	b.WriteString(NormalizeBaseURL(base))
	for _, p := range parts {
		b.WriteString("/")
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}
