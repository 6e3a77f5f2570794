package query

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/seisview/seisview/pkg/assemble"
	"github.com/seisview/seisview/pkg/buildinfo"
	"github.com/seisview/seisview/pkg/cache"
	"github.com/seisview/seisview/pkg/errors"
	"github.com/seisview/seisview/pkg/integrations"
	seisio "github.com/seisview/seisview/pkg/io"
)

// Client fetches tiles, manifests, and configuration from a slice server.
type Client struct {
	*integrations.Client
	baseURL string
}

// ClientConfig is the public configuration a slice server reports on
// /config. The CLI uses it to discover how to authenticate.
type ClientConfig struct {
	ClientID  string   `json:"client_id"`
	Authority string   `json:"authority"`
	Scopes    []string `json:"scopes,omitempty"`
}

// NewClient creates a client for the server at baseURL. token, when
// non-empty, is sent as a bearer Authorization header on every request.
// Responses are cached in backend (nil disables caching) for ttl.
func NewClient(baseURL, token string, backend cache.Cache, ttl time.Duration) *Client {
	headers := map[string]string{
		"User-Agent": "seisview/" + buildinfo.Version,
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(backend, "seisview:", ttl, headers),
		baseURL: integrations.NormalizeBaseURL(baseURL),
	}
}

// BaseURL returns the normalized server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SliceURL returns the tile endpoint for one slice.
func (c *Client) SliceURL(guid string, dim, lineno int) string {
	return integrations.EndpointURL(c.baseURL, guid, "slice", strconv.Itoa(dim), strconv.Itoa(lineno))
}

// ManifestURL returns the manifest endpoint for a survey.
func (c *Client) ManifestURL(guid string) string {
	return integrations.EndpointURL(c.baseURL, guid, "manifest")
}

// ConfigURL returns the server configuration endpoint.
func (c *Client) ConfigURL() string {
	return integrations.EndpointURL(c.baseURL, "config")
}

// FetchTilesRaw fetches the tiles payload for one slice and returns the
// raw response bytes without decoding or caching them. The pipeline uses
// this to cache payloads under its own stage keys.
func (c *Client) FetchTilesRaw(ctx context.Context, guid string, dim, lineno int) ([]byte, error) {
	if err := validateSliceRef(guid, dim, lineno); err != nil {
		return nil, err
	}
	data, err := c.GetBytes(ctx, c.SliceURL(guid, dim, lineno))
	if err != nil {
		return nil, wrapFetch(err, fmt.Sprintf("slice %s/%d/%d", guid, dim, lineno))
	}
	return data, nil
}

// FetchTiles fetches and decodes the tiles payload for one slice.
// Response bytes are cached; refresh bypasses the cached copy.
func (c *Client) FetchTiles(ctx context.Context, guid string, dim, lineno int, refresh bool) ([]assemble.Tile, error) {
	if err := validateSliceRef(guid, dim, lineno); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/slice/%d/%d", guid, dim, lineno)
	data, err := c.CachedBytes(ctx, key, refresh, func() ([]byte, error) {
		return c.GetBytes(ctx, c.SliceURL(guid, dim, lineno))
	})
	if err != nil {
		return nil, wrapFetch(err, fmt.Sprintf("slice %s/%d/%d", guid, dim, lineno))
	}
	return seisio.ReadTiles(bytes.NewReader(data))
}

// FetchManifest fetches the survey manifest. Responses are cached;
// refresh bypasses the cached copy.
func (c *Client) FetchManifest(ctx context.Context, guid string, refresh bool) (*Manifest, error) {
	if err := errors.ValidateGUID(guid); err != nil {
		return nil, err
	}
	var m Manifest
	err := c.Cached(ctx, guid+"/manifest", refresh, &m, func() error {
		return c.Get(ctx, c.ManifestURL(guid), &m)
	})
	if err != nil {
		return nil, wrapFetch(err, "manifest for "+guid)
	}
	if m.GUID == "" {
		m.GUID = guid
	}
	return &m, nil
}

// FetchConfig fetches the server's client configuration. Never cached:
// auth bootstrap must see the server's current settings.
func (c *Client) FetchConfig(ctx context.Context) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := c.Get(ctx, c.ConfigURL(), &cfg); err != nil {
		return nil, wrapFetch(err, "server config")
	}
	return &cfg, nil
}

func validateSliceRef(guid string, dim, lineno int) error {
	if err := errors.ValidateGUID(guid); err != nil {
		return err
	}
	if err := errors.ValidateDimension(dim); err != nil {
		return err
	}
	return errors.ValidateLineno(lineno)
}

// wrapFetch maps transport sentinels to coded errors. Rate limit errors
// pass through so callers can read RetryAfter.
func wrapFetch(err error, what string) error {
	var rl *errors.RateLimitedError
	switch {
	case stderrors.As(err, &rl):
		return err
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "timed out fetching %s", what)
	case stderrors.Is(err, integrations.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, "%s not found", what)
	case stderrors.Is(err, integrations.ErrUnauthorized):
		return errors.Wrap(errors.ErrCodeUnauthorized, err, "not authorized to fetch %s", what)
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "fetching %s", what)
	}
}
