// Package cli implements the beltflow command-line interface.
//
// Every command reads a layout file (JSON, see [layout.ReadJSON]) and an
// optional prototype catalog (TOML, see [layout.Catalog.Load]), builds a
// products engine over it, and reports, renders, edits or serves the
// result. The CLI is built using cobra and logs via charmbracelet/log.
//
// # Commands
//
//   - resolve: print what every object carries, as a table or JSON
//   - render: draw the products graph as DOT, SVG, PDF or PNG
//   - watch: edit a layout interactively and watch products update
//   - serve: answer resolve/render requests over HTTP
//   - cache: manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes one line per engine sweep.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beltflow/pkg/cache"
	"github.com/matzehuels/beltflow/pkg/layout"
	"github.com/matzehuels/beltflow/pkg/products"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "beltflow"

	// renderTTL is how long rendered artifacts stay cached.
	renderTTL = 7 * 24 * time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// catalogPath is the --catalog flag shared by every command.
	catalogPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Inputs
// =============================================================================

// catalog returns the default catalog extended with --catalog, if given.
func (c *CLI) catalog() (*layout.Catalog, error) {
	cat := layout.DefaultCatalog()
	if c.catalogPath == "" {
		return cat, nil
	}
	if err := cat.LoadFile(c.catalogPath); err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded catalog", "path", c.catalogPath, "prototypes", len(cat.Names()))
	return cat, nil
}

// openLayout reads a layout file ("-" for stdin) and attaches an engine to
// it. The raw bytes are returned for cache keys.
func (c *CLI) openLayout(ctx context.Context, path string, opts ...products.Option) (*layout.Grid, *products.Engine, []byte, error) {
	cat, err := c.catalog()
	if err != nil {
		return nil, nil, nil, err
	}
	raw, err := readInput(path)
	if err != nil {
		return nil, nil, nil, err
	}
	grid, err := layout.ReadJSON(bytes.NewReader(raw), cat)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	p := newProgress(loggerFromContext(ctx))
	opts = append([]products.Option{products.WithLogger(c.Logger)}, opts...)
	engine, err := products.ForGrid(grid, opts...)
	p.done(fmt.Sprintf("Wired %d objects into %d nodes", grid.Len(), engine.Graph().NodeCount()))
	if err := warnCycles(ctx, err); err != nil {
		return nil, nil, nil, err
	}
	return grid, engine, raw, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// =============================================================================
// Cache
// =============================================================================

// newCache picks the render cache backend: none, Redis, or the file cache
// under cacheDir.
func newCache(ctx context.Context, noCache bool, redisURL string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, redisURL, appName+":")
		if err != nil {
			return nil, err
		}
		return cache.Instrument(rc, "render"), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.Instrument(fc, "render"), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/beltflow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Output
// =============================================================================

// openOutput returns stdout for an empty path, else creates the file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
