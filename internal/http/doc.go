// Package http provides the HTTP handlers of the view host.
//
// Endpoints:
//   - Health: /health
//   - Catalog: /views lists the HTML documents of the resource directory
//   - Resources: /mcp/resources/*path serves the resource directory and backs
//     the default resolver base
//
// Example Usage:
//
//	handlers := http.NewHandlers(http.Options{Resources: bridge.NewDirResolver("views")})
//	router.GET("/views", handlers.ListViews)
//	router.GET("/mcp/resources/*path", handlers.Resource)
package http
