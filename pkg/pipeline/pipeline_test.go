package pipeline

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/seisview/seisview/pkg/assemble"
	"github.com/seisview/seisview/pkg/cache"
	seisio "github.com/seisview/seisview/pkg/io"
	"github.com/seisview/seisview/pkg/query"
)

func TestValidateColormap(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"seismic", false},
		{"gray", false},
		{"grayscale", false},
		{"", false}, // empty means seismic
		{"viridis", true},
	}

	for _, tt := range tests {
		err := ValidateColormap(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateColormap(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateScale(t *testing.T) {
	tests := []struct {
		scale   int
		wantErr bool
	}{
		{0, false},
		{1, false},
		{MaxScale, false},
		{-1, true},
		{MaxScale + 1, true},
	}

	for _, tt := range tests {
		err := ValidateScale(tt.scale)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateScale(%d) error = %v, wantErr %v", tt.scale, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{GUID: "survey-a"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}

	// Check defaults were set
	if opts.Colormap != DefaultColormap {
		t.Errorf("Colormap should be %s, got %s", DefaultColormap, opts.Colormap)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %d, got %d", DefaultScale, opts.Scale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateForFetch(t *testing.T) {
	// Missing guid
	opts := Options{Dim: 0, Lineno: 10}
	if err := opts.ValidateForFetch(); err == nil {
		t.Error("Missing guid should fail")
	}

	// Dimension out of range
	opts = Options{GUID: "survey-a", Dim: 3}
	if err := opts.ValidateForFetch(); err == nil {
		t.Error("Dimension 3 should fail")
	}

	// Negative lineno
	opts = Options{GUID: "survey-a", Lineno: -1}
	if err := opts.ValidateForFetch(); err == nil {
		t.Error("Negative lineno should fail")
	}

	// Valid
	opts = Options{GUID: "survey-a", Dim: 2, Lineno: 0}
	if err := opts.ValidateForFetch(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
}

func TestOptionsValidateForAssemble(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForAssemble(); err == nil {
		t.Error("Zero shape should fail")
	}

	opts = Options{Shape0: 4, Shape1: -1}
	if err := opts.ValidateForAssemble(); err == nil {
		t.Error("Negative shape should fail")
	}

	opts = Options{Shape0: 4, Shape1: 3}
	if err := opts.ValidateForAssemble(); err != nil {
		t.Errorf("Valid shape should pass: %v", err)
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	opts := Options{Colormap: "viridis"}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("Unknown colormap should fail")
	}

	opts = Options{VMin: 2, VMax: -2}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("Inverted range should fail")
	}

	opts = Options{Colormap: "gray", Scale: 4, VMin: -1, VMax: 1}
	if err := opts.ValidateForRender(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
}

func TestOptionsHasExplicitRange(t *testing.T) {
	opts := Options{}
	if opts.HasExplicitRange() {
		t.Error("Zero bounds should mean auto range")
	}

	opts.VMax = 100
	if !opts.HasExplicitRange() {
		t.Error("Nonzero bound should mean explicit range")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{GUID: "survey-a", Dim: 1, Lineno: 11}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalColormap := opts.Colormap
	originalScale := opts.Scale

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.Colormap != originalColormap {
		t.Error("Colormap changed on second call")
	}
	if opts.Scale != originalScale {
		t.Error("Scale changed on second call")
	}
}

// pipelinePayload assembles into the 1x2 slice {{7, 9}}.
const pipelinePayload = `{
	"tiles": [
		{"layout": {"initial_skip": 0, "chunk_size": 2, "iterations": 1, "substride": 2, "superstride": 2}, "v": [7, 9]}
	]
}`

const pipelineManifest = `{
	"guid": "survey-a",
	"dimensions": [[10], [5], [0, 4]]
}`

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// newPipelineEnv starts a tile server and builds a runner and client that
// share one file cache, the way the CLI wires them.
func newPipelineEnv(t *testing.T) (*Runner, *query.Client, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/survey-a/manifest":
			io.WriteString(w, pipelineManifest)
		case "/survey-a/slice/0/10":
			io.WriteString(w, pipelinePayload)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	client := query.NewClient(server.URL, "", backend, time.Minute)
	runner := NewRunner(backend, nil, testLogger())
	t.Cleanup(func() { runner.Close() })
	return runner, client, &requests
}

func TestRunnerExecute(t *testing.T) {
	runner, client, _ := newPipelineEnv(t)

	opts := Options{GUID: "survey-a", Dim: 0, Lineno: 10}
	result, err := runner.Execute(context.Background(), client, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if result.Shape0 != 1 || result.Shape1 != 2 {
		t.Errorf("shape = (%d, %d), want (1, 2)", result.Shape0, result.Shape1)
	}
	if got := result.Slice.At(0, 1); got != 9 {
		t.Errorf("Slice.At(0, 1) = %v, want 9", got)
	}
	if !bytes.HasPrefix(result.PNG, []byte("\x89PNG")) {
		t.Errorf("PNG output missing or malformed (%d bytes)", len(result.PNG))
	}
	if result.PayloadHash == "" {
		t.Error("PayloadHash should be set")
	}
	if result.Stats.TileCount != 1 {
		t.Errorf("TileCount = %d, want 1", result.Stats.TileCount)
	}
	if result.CacheInfo.FetchHit || result.CacheInfo.AssembleHit || result.CacheInfo.RenderHit {
		t.Errorf("first run should miss every stage: %+v", result.CacheInfo)
	}
}

func TestRunnerExecuteCachesStages(t *testing.T) {
	runner, client, requests := newPipelineEnv(t)
	opts := Options{GUID: "survey-a", Dim: 0, Lineno: 10}

	first, err := runner.Execute(context.Background(), client, opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	baseline := requests.Load()

	second, err := runner.Execute(context.Background(), client, opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}

	if !second.CacheInfo.FetchHit || !second.CacheInfo.AssembleHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit every stage: %+v", second.CacheInfo)
	}
	if got := requests.Load(); got != baseline {
		t.Errorf("second run made %d extra requests", got-baseline)
	}
	if !bytes.Equal(first.PNG, second.PNG) {
		t.Error("cached PNG differs from rendered PNG")
	}
}

func TestRunnerExecuteRefresh(t *testing.T) {
	runner, client, requests := newPipelineEnv(t)
	opts := Options{GUID: "survey-a", Dim: 0, Lineno: 10}

	if _, err := runner.Execute(context.Background(), client, opts); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	baseline := requests.Load()

	opts.Refresh = true
	result, err := runner.Execute(context.Background(), client, opts)
	if err != nil {
		t.Fatalf("Execute() with refresh error: %v", err)
	}

	if result.CacheInfo.FetchHit {
		t.Error("refresh should bypass the payload cache")
	}
	// The refetched payload hashes the same, so the content-addressed
	// stages downstream still hit.
	if !result.CacheInfo.AssembleHit || !result.CacheInfo.RenderHit {
		t.Errorf("unchanged payload should hit downstream stages: %+v", result.CacheInfo)
	}
	if requests.Load() == baseline {
		t.Error("refresh should refetch from the server")
	}
}

func TestFetchFallsThroughCorruptCache(t *testing.T) {
	runner, client, requests := newPipelineEnv(t)
	opts := Options{GUID: "survey-a", Dim: 0, Lineno: 10}

	key := runner.Keyer.QueryKey(opts.GUID, opts.Dim, opts.Lineno, opts.QueryKeyOpts(client.BaseURL()))
	if err := runner.Cache.Set(context.Background(), key, []byte("not json"), cache.TTLQuery); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	tiles, hit, err := runner.FetchWithCacheInfo(context.Background(), client, opts)
	if err != nil {
		t.Fatalf("FetchWithCacheInfo() error: %v", err)
	}
	if hit {
		t.Error("corrupt cache entry should not count as a hit")
	}
	if len(tiles) != 1 {
		t.Fatalf("len(tiles) = %d, want 1", len(tiles))
	}
	if requests.Load() == 0 {
		t.Error("corrupt cache entry should fall through to the server")
	}
}

func TestAssembleStageCaches(t *testing.T) {
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	runner := NewRunner(backend, nil, testLogger())
	defer runner.Close()

	tiles, err := seisio.ReadTiles(strings.NewReader(pipelinePayload))
	if err != nil {
		t.Fatalf("ReadTiles() error: %v", err)
	}
	opts := Options{Shape0: 1, Shape1: 2}

	s, hit, err := runner.AssembleWithCacheInfo(context.Background(), tiles, opts)
	if err != nil {
		t.Fatalf("AssembleWithCacheInfo() error: %v", err)
	}
	if hit {
		t.Error("first assemble should miss")
	}
	if got := s.At(0, 0); got != 7 {
		t.Errorf("At(0, 0) = %v, want 7", got)
	}

	cached, hit, err := runner.AssembleWithCacheInfo(context.Background(), tiles, opts)
	if err != nil {
		t.Fatalf("second AssembleWithCacheInfo() error: %v", err)
	}
	if !hit {
		t.Error("second assemble should hit")
	}
	if got := cached.At(0, 1); got != 9 {
		t.Errorf("cached At(0, 1) = %v, want 9", got)
	}

	// A different shape is a different key
	opts = Options{Shape0: 2, Shape1: 1}
	if _, hit, err := runner.AssembleWithCacheInfo(context.Background(), tiles, opts); err != nil || hit {
		t.Errorf("changed shape should recompute: hit=%v err=%v", hit, err)
	}
}

func TestRenderStageCaches(t *testing.T) {
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	runner := NewRunner(backend, nil, testLogger())
	defer runner.Close()

	s, err := assemble.NewSlice(1, 2, []float32{-1, 1})
	if err != nil {
		t.Fatalf("NewSlice() error: %v", err)
	}

	png, hit, err := runner.RenderWithCacheInfo(context.Background(), s, Options{})
	if err != nil {
		t.Fatalf("RenderWithCacheInfo() error: %v", err)
	}
	if hit {
		t.Error("first render should miss")
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}

	cached, hit, err := runner.RenderWithCacheInfo(context.Background(), s, Options{})
	if err != nil {
		t.Fatalf("second RenderWithCacheInfo() error: %v", err)
	}
	if !hit {
		t.Error("second render should hit")
	}
	if !bytes.Equal(png, cached) {
		t.Error("cached PNG differs from rendered PNG")
	}

	// Different render options key separately
	if _, hit, err := runner.RenderWithCacheInfo(context.Background(), s, Options{Colormap: "gray"}); err != nil || hit {
		t.Errorf("changed colormap should re-render: hit=%v err=%v", hit, err)
	}
}

func TestRenderNilSlice(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())
	if _, _, err := runner.RenderWithCacheInfo(context.Background(), nil, Options{}); err == nil {
		t.Error("nil slice should fail")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	runner := NewRunner(nil, nil, testLogger())

	if _, err := runner.Execute(context.Background(), nil, Options{}); err == nil {
		t.Error("empty options should fail")
	}
	if _, err := runner.Execute(context.Background(), nil, Options{GUID: "survey-a", Dim: 5}); err == nil {
		t.Error("bad dimension should fail")
	}
	if _, err := runner.Execute(context.Background(), nil, Options{GUID: "survey-a", Shape0: 3}); err == nil {
		t.Error("half-specified shape should fail")
	}
}

func TestNewRunnerNilDefaults(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	if runner.Cache == nil || runner.Keyer == nil || runner.Logger == nil {
		t.Error("NewRunner should fill nil collaborators")
	}
	if err := runner.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
