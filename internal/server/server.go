package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/bridge"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/host"
	handlers "github.com/GriffinCanCode/AgentOS/mcpview/internal/http"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/logging"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/mcpclient"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/policy"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/sandbox"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/theme"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/ui"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/ws"
)

// Route paths.
const (
	PathSocket    = "/view/ws"
	PathViews     = "/views"
	PathAssets    = "/assets/"
	PathResources = "/mcp/resources/"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	fetcher    *bridge.Fetcher
	mcp        *mcpclient.Session
}

// NewServer creates a new server instance. It verifies the sandbox runtime
// and connects to the configured MCP server before returning.
func NewServer(ctx context.Context, cfg *config.Config, view *config.View, version string) (*Server, error) {
	logCfg := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
	logCfg.Fields = map[string]string{"service": "mcpview", "version": version}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing mcpview server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("public_url", cfg.Server.URL()),
		zap.String("version", version),
	)

	if err := sandbox.SelfCheck(ctx); err != nil {
		return nil, fmt.Errorf("sandbox runtime self-check failed: %w", err)
	}
	logger.Info("Sandbox runtime verified")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(registry)

	fetcher := bridge.NewFetcher(bridge.FetcherConfig{
		Timeout:           cfg.Remote.Timeout,
		RequestsPerSecond: cfg.Remote.RequestsPerSecond,
		UserAgent:         cfg.Remote.UserAgent,
	}, logger.Component("fetch"))

	var allow policy.Allower
	if view.Policy != "" {
		cedar, err := policy.LoadCedarAllower(view.Policy)
		if err != nil {
			return nil, err
		}
		allow = cedar
		logger.Info("Remote access decided by Cedar policy", zap.String("policy", view.Policy))
	} else {
		logger.Info("Remote access decided by origin list", zap.Strings("origins", view.AllowedOrigins))
	}

	var resources *bridge.DirResolver
	if view.Resources != "" {
		resources = bridge.NewDirResolver(view.Resources)
	}

	var (
		resolver   bridge.Resolver
		toolCaller host.ToolCaller
		session    *mcpclient.Session
	)
	mcpCfg := mcpclient.Config{Command: view.MCP.Command, Args: view.MCP.Args, Endpoint: view.MCP.Endpoint}
	switch {
	case mcpCfg.Enabled():
		session, err = mcpclient.Dial(ctx, mcpCfg, version, logger.Logger)
		if err != nil {
			return nil, err
		}
		resolver, toolCaller = session, session
		logger.Info("Views resolved through MCP server")
	case view.Base != "":
		logger.Info("Views fetched from resolver base", zap.String("base", view.Base))
	case resources != nil:
		resolver = resources
		logger.Info("Views served from directory", zap.String("dir", resources.Root()))
	}

	sessionConfig := func() host.Config {
		return host.Config{
			Src:            view.Src,
			CSS:            theme.CSS{Raw: view.CSS, Variables: view.Variables},
			Layers:         view.Layers,
			ThemeLink:      view.Theme,
			Base:           view.Base,
			PublicURL:      cfg.Server.URL(),
			Resolver:       resolver,
			ToolCaller:     toolCaller,
			Allow:          allow,
			AllowedOrigins: view.AllowedOrigins,
			Fetcher:        fetcher,
			CancelStale:    view.CancelStale,
			Observer:       metrics,
		}
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger.Logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limits))
	}

	h := handlers.NewHandlers(handlers.Options{
		Version:   version,
		Resources: resources,
		Fetcher:   fetcher,
		Metrics:   metrics,
		Logger:    logger.Logger,
	})
	wsHandler := ws.NewHandler(ws.Options{
		Config:  sessionConfig,
		Logger:  logger.Logger,
		Tracker: metrics,
	})
	page, err := ui.Handler(ui.Page{
		Title:  "mcpview",
		Src:    view.Src,
		Socket: PathSocket,
		Views:  PathViews,
		Assets: PathAssets,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render host page: %w", err)
	}

	router.GET("/", page)
	router.StaticFS(PathAssets, ui.Assets())
	router.GET("/health", h.Health)
	router.GET(PathViews, h.ListViews)
	router.GET(PathResources+"*path", h.Resource)
	router.GET(PathSocket, wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	compressed, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip wrapper: %w", err)
	}
	gzipped := compressed(router)

	s := &Server{
		router:  router,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		fetcher: fetcher,
		mcp:     session,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The upgrade needs the raw connection.
			if r.URL.Path == PathSocket {
				router.ServeHTTP(w, r)
				return
			}
			gzipped.ServeHTTP(w, r)
		}),
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server
// fails.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// Close releases the MCP session and flushes the logger.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if s.mcp != nil {
		if err := s.mcp.Close(); err != nil {
			s.logger.Error("Failed to close MCP session", zap.Error(err))
			return fmt.Errorf("failed to close MCP session: %w", err)
		}
		s.logger.Info("Closed MCP session")
	}

	_ = s.logger.Sync()
	return nil
}
