/*
Package monitoring provides Prometheus metrics for the view host.

# Overview

Metrics collects HTTP request metrics through a Gin middleware and view
metrics through the host and WebSocket hooks: renders by outcome, sandbox
resource requests, tool calls and open sessions.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Feed view events
	cfg.Observer = metrics

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
*/
package monitoring
