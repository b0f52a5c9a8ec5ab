package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/matstat/internal/infrastructure/config"
	"github.com/GriffinCanCode/matstat/internal/infrastructure/server"
)

func main() {
	configFile := flag.String("config", "", "YAML or TOML config file layered over env vars")
	port := flag.String("port", "", "Server port (overrides PORT)")
	host := flag.String("host", "", "Bind host (overrides HOST)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	dev := flag.Bool("dev", false, "Development mode (colored logs, debug level)")
	allowClear := flag.Bool("allow-clear", false, "Enable DELETE /stats/history")
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// flags override env and file
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *allowClear {
		cfg.History.AllowClear = true
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)
	if err := srv.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
