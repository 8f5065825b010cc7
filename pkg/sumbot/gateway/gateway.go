// Package gateway serves the liveness endpoint.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jholhewres/sumbot/pkg/sumbot/config"
)

// greeting is the fixed body returned by GET /.
const greeting = "Hello, World!"

// Gateway is the liveness HTTP server. It exposes a single unauthenticated
// route: GET / returning a fixed greeting.
type Gateway struct {
	cfg    config.GatewayConfig
	server *http.Server
	logger *slog.Logger
}

// New creates a Gateway.
func New(cfg config.GatewayConfig, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Address == "" {
		cfg.Address = ":4999"
	}
	return &Gateway{
		cfg:    cfg,
		logger: logger.With("component", "gateway"),
	}
}

// Handler returns the route table.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", g.handleRoot)
	return mux
}

// Start starts the HTTP server in the background.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:    g.cfg.Address,
		Handler: g.Handler(),
	}

	go func() {
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.logger.Error("gateway server error", "error", err)
		}
	}()

	g.logger.Info("gateway running", "address", g.cfg.Address)
	return nil
}

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

func (g *Gateway) handleRoot(w http.ResponseWriter, r *http.Request) {
	// "/" is the mux catch-all; everything else is not a route.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fmt.Fprint(w, greeting)
}
