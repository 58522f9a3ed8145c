// Package server wires the view host together.
//
// Startup:
//  1. Build the logger from the logging settings
//  2. Run the sandbox runtime self-check
//  3. Create the metrics registry and the remote fetcher
//  4. Load the Cedar policy or use the origin list
//  5. Pick the ui:// resolver: MCP server, resolver base or directory
//  6. Register middleware and routes
//
// Routes:
//   - /              host page
//   - /assets/       host script and stylesheet
//   - /view/ws       view sessions
//   - /views         catalog
//   - /mcp/resources resource directory
//   - /health, /metrics
//
// Example Usage:
//
//	srv, err := server.NewServer(ctx, config.LoadOrDefault(), config.DefaultView(), "dev")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	err = srv.Run(ctx)
package server
