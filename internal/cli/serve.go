package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/beltflow/pkg/buildinfo"
	"github.com/matzehuels/beltflow/pkg/cache"
	"github.com/matzehuels/beltflow/pkg/errors"
	"github.com/matzehuels/beltflow/pkg/layout"
	"github.com/matzehuels/beltflow/pkg/observability"
	"github.com/matzehuels/beltflow/pkg/products"
	"github.com/matzehuels/beltflow/pkg/render/nodelink"
)

const (
	maxLayoutBytes  = 8 << 20
	shutdownTimeout = 10 * time.Second
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	noCache  bool
	redisURL string
}

// serveCommand creates the serve command, an HTTP API over the engine.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve products resolution over HTTP",
		Long: `Serve exposes the engine as an HTTP API. Each request carries a layout
document as its body and is resolved independently.

  GET  /healthz       build information
  POST /v1/resolve    products of every object, as JSON
  POST /v1/dot        products graph as Graphviz DOT
  POST /v1/svg        products graph as SVG (cached)

The graph endpoints accept ?detailed=false and ?cluster=true.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the SVG cache")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "cache SVGs in Redis (redis://host:port/db)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cat, err := c.catalog()
	if err != nil {
		return err
	}
	store, err := newCache(ctx, opts.noCache, opts.redisURL)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newServer(cat, store, c.Logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSuccess("Serving on %s", opts.addr)
	printKeyValue("Version", buildinfo.Version)
	printKeyValue("Prototypes", strconv.Itoa(len(cat.Names())))
	switch {
	case opts.noCache:
		printKeyValue("Cache", "disabled")
	case opts.redisURL != "":
		printKeyValue("Cache", "redis")
	default:
		dir, _ := cacheDir()
		printKeyValue("Cache", dir)
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// =============================================================================
// Server
// =============================================================================

// server holds what request handlers share. Engines are per request.
type server struct {
	catalog *layout.Catalog
	cache   cache.Cache
	logger  *log.Logger
}

func newServer(cat *layout.Catalog, store cache.Cache, logger *log.Logger) *server {
	return &server{catalog: cat, cache: store, logger: logger}
}

// Routes returns the router with middleware installed.
func (s *server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/resolve", s.handleResolve)
		r.Post("/dot", s.handleDOT)
		r.Post("/svg", s.handleSVG)
	})
	return r
}

// observe logs every request and reports it to the HTTP hooks.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"elapsed", elapsed.Round(time.Microsecond))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *server) handleResolve(w http.ResponseWriter, r *http.Request) {
	engine, err := s.engine(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := engine.Snapshot()
	if err != nil && !onlyCycles(err) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotDoc(snap, engine.Err()))
}

func (s *server) handleDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

func (s *server) handleSVG(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := withLogger(r.Context(), s.logger)
	data, hit, err := renderArtifact(ctx, s.cache, dot, formatSVG)
	if err != nil {
		writeError(w, err)
		return
	}
	status := "miss"
	if hit {
		status = "hit"
	}
	w.Header().Set("X-Cache", status)
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(data)
}

// engine decodes the request body as a layout and wires an engine over it.
// Loops are not an error here; they are reported in the response.
func (s *server) engine(w http.ResponseWriter, r *http.Request) (*products.Engine, error) {
	grid, err := layout.ReadJSON(http.MaxBytesReader(w, r.Body, maxLayoutBytes), s.catalog)
	if err != nil {
		return nil, err
	}
	engine, err := products.ForGrid(grid, products.WithLogger(s.logger))
	if err != nil && !onlyCycles(err) {
		return nil, err
	}
	engine.Detach()
	return engine, nil
}

func (s *server) dot(w http.ResponseWriter, r *http.Request) (string, error) {
	opts := nodelink.Options{Detailed: true}
	q := r.URL.Query()
	for name, dst := range map[string]*bool{"detailed": &opts.Detailed, "cluster": &opts.Cluster} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return "", errors.New(errors.ErrCodeInvalidInput, "query %s: %q is not a boolean", name, v)
			}
			*dst = b
		}
	}

	engine, err := s.engine(w, r)
	if err != nil {
		return "", err
	}
	if _, err := engine.Products(); err != nil && !onlyCycles(err) {
		return "", err
	}
	return nodelink.ToDOT(engine.Graph(), opts), nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
			Code:    errors.ErrCodeInvalidInput,
			Message: fmt.Sprintf("layout exceeds %d bytes", tooLarge.Limit),
		})
		return
	}
	writeJSON(w, errors.HTTPStatus(err), errorBody{Code: errors.GetCode(err), Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
