package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/mcpview/internal/server"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment.
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Server host")
	flag.StringVar(&cfg.Server.PublicURL, "public-url", cfg.Server.PublicURL, "Public base URL of the host")
	flag.StringVar(&cfg.ViewFile, "config", cfg.ViewFile, "View config file (TOML or YAML)")
	flag.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development mode (console logs)")
	src := flag.String("src", "", "Initial view URI (overrides the config file)")
	resources := flag.String("resources", "", "Resource directory (overrides the config file)")
	flag.Parse()

	view, err := config.LoadView(cfg.ViewFile)
	if err != nil {
		log.Fatalf("Failed to load view config: %v", err)
	}
	if *src != "" {
		view.Src = *src
	}
	if *resources != "" {
		view.Resources = *resources
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg, view, version)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	runErr := srv.Run(ctx)
	if err := srv.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}
