// Package server implements the demo tile service.
//
// It speaks the same protocol as a production slice server - /config,
// survey manifests, tiled slice responses - but backs them with a
// deterministic synthetic wavefield instead of object storage, so demos
// and end-to-end tests need nothing provisioned.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/seisview/seisview/pkg/auth"
	"github.com/seisview/seisview/pkg/errors"
	seisio "github.com/seisview/seisview/pkg/io"
	"github.com/seisview/seisview/pkg/query"
)

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":8080"

	// DefaultTiles is how many fragments each slice response is split into.
	DefaultTiles = 4
)

// defaultShape is the cube served when none is configured: a small survey
// that still renders recognizably.
var defaultShape = [3]int{64, 64, 128}

// Config holds the server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Shape is the synthetic cube's dimensions (inline, crossline, depth).
	Shape [3]int

	// Tiles is the number of fragments per slice response.
	Tiles int

	// SignKey enables bearer auth when non-empty: tokens must verify as
	// HS256 against this key. /config and the device endpoints stay open.
	SignKey []byte

	// ApproveAfter is how long a demo device code stays pending before it
	// auto-approves. Zero means a couple of seconds.
	ApproveAfter time.Duration

	Logger *log.Logger
}

// Server serves the tile protocol from a synthetic wavefield.
type Server struct {
	cfg    Config
	logger *log.Logger
	grants *grantStore
}

// New creates a server, applying defaults for unset config fields.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Tiles == 0 {
		cfg.Tiles = DefaultTiles
	}
	for d, n := range cfg.Shape {
		if n < 1 {
			cfg.Shape[d] = defaultShape[d]
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	s := &Server{cfg: cfg, logger: cfg.Logger}
	if len(cfg.SignKey) > 0 {
		s.grants = newGrantStore(cfg.ApproveAfter)
	}
	return s
}

// Router builds the chi handler chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(s.recoverPanics)

	r.Get("/config", s.handleConfig)

	if s.grants != nil {
		r.Post("/auth/device/code", s.handleDeviceCode)
		r.Post("/auth/token", s.handleDeviceToken)
		r.Get("/auth/approve", s.handleApprove)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/{guid}/manifest", s.handleManifest)
		r.Get("/{guid}/slice/{dim}/{lineno}", s.handleSlice)
	})

	return r
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.logger.Info("serving tiles",
		"addr", s.cfg.Addr,
		"shape", fmt.Sprintf("%dx%dx%d", s.cfg.Shape[0], s.cfg.Shape[1], s.cfg.Shape[2]),
		"tiles", s.cfg.Tiles,
		"auth", len(s.cfg.SignKey) > 0)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	var cfg query.ClientConfig
	if s.grants != nil {
		cfg.ClientID = auth.DefaultClientID
		cfg.Authority = "http://" + r.Host + "/auth"
		cfg.Scopes = []string{"seisview.read"}
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	guid := chi.URLParam(r, "guid")
	if err := errors.ValidateGUID(guid); err != nil {
		writeError(w, http.StatusBadRequest, "invalid guid")
		return
	}

	field := NewWavefield(guid, s.cfg.Shape)
	writeJSON(w, http.StatusOK, query.Manifest{GUID: guid, Dimensions: field.Dimensions()})
}

func (s *Server) handleSlice(w http.ResponseWriter, r *http.Request) {
	guid := chi.URLParam(r, "guid")
	if err := errors.ValidateGUID(guid); err != nil {
		writeError(w, http.StatusBadRequest, "invalid guid")
		return
	}
	dim, err := strconv.Atoi(chi.URLParam(r, "dim"))
	if err != nil || errors.ValidateDimension(dim) != nil {
		writeError(w, http.StatusBadRequest, "dimension must be 0, 1, or 2")
		return
	}
	lineno, err := strconv.Atoi(chi.URLParam(r, "lineno"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lineno must be an integer")
		return
	}

	field := NewWavefield(guid, s.cfg.Shape)
	index := slices.Index(field.Dimensions()[dim], lineno)
	if index < 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("line %d not in dimension %d", lineno, dim))
		return
	}

	shape0, shape1 := field.SliceShape(dim)
	values := field.SliceValues(dim, index)
	tiles := SplitTiles(values, shape0, shape1, s.cfg.Tiles, field.seed^uint64(dim)<<32^uint64(lineno))

	w.Header().Set("Content-Type", "application/json")
	if err := seisio.WriteTiles(tiles, w); err != nil {
		s.logger.Error("write tiles", "guid", guid, "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
