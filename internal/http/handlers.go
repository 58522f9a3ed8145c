package http

import (
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/bridge"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/infrastructure/resilience"
)

// Handlers contains the HTTP handlers of the view host.
type Handlers struct {
	version   string
	resources *bridge.DirResolver
	catalog   *Catalog
	fetcher   *bridge.Fetcher
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// Options configures Handlers. Resources, Fetcher and Metrics are optional.
type Options struct {
	Version   string
	Resources *bridge.DirResolver
	Fetcher   *bridge.Fetcher
	Metrics   *monitoring.Metrics
	Logger    *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(opts Options) *Handlers {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		version:   opts.Version,
		resources: opts.Resources,
		fetcher:   opts.Fetcher,
		metrics:   opts.Metrics,
		logger:    logger.Named("http"),
	}
	if opts.Resources != nil {
		h.catalog = NewCatalog(opts.Resources.Root())
	}
	return h
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"service": "mcpview",
		"version": h.version,
	}
	if h.metrics != nil {
		body["uptime_seconds"] = int64(h.metrics.UptimeDuration() / time.Second)
		body["stats"] = h.metrics.Stats()
	}
	if h.fetcher != nil {
		breakers := make(map[string]string)
		open := 0
		for origin, state := range h.fetcher.Breakers() {
			breakers[origin] = state.String()
			if state == resilience.StateOpen {
				open++
			}
		}
		body["breakers"] = breakers
		if open > 0 {
			body["status"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, body)
}

// ListViews returns the catalog of documents in the resource directory.
func (h *Handlers) ListViews(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusOK, gin.H{"views": []View{}})
		return
	}
	views, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list views", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list views"})
		return
	}
	if views == nil {
		views = []View{}
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}

// Resource serves a file from the resource directory. It backs the default
// resolver base, so ui://app/a.css is fetched from <base>app/a.css.
func (h *Handlers) Resource(c *gin.Context) {
	if h.resources == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no resource directory"})
		return
	}

	rel := c.Param("path")
	blob, err := h.resources.Open(rel)
	if err != nil {
		if errors.Is(err, bridge.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		h.logger.Error("failed to read resource", zap.String("path", rel), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read resource"})
		return
	}

	etag := entityTag(blob.Data)
	c.Header("Cache-Control", "no-cache")
	c.Header("ETag", etag)
	c.Header("X-Content-Type-Options", "nosniff")
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, blob.Type, blob.Data)
}

// entityTag returns a strong validator for data.
func entityTag(data []byte) string {
	sum := blake2b.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
