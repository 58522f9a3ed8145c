// Package middleware provides the HTTP middleware of the view host.
//
// RequestID tags every request with a req_ ULID and AccessLog writes one zap
// line per request. CORS allows read-only cross-origin access to the catalog
// and resource endpoints without credentials. RateLimit applies a per-IP
// token bucket; GlobalRateLimit shares one bucket across clients. Both skip
// exempt path prefixes such as the WebSocket endpoint.
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
