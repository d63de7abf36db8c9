package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ase-portfolio/webapp/internal/app"
	"github.com/ase-portfolio/webapp/internal/config"
)

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	if errRun := run(os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the server.
func run(args []string) error {
	// Secrets may live in a local .env during development.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("webapp", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", 0, "override the configured server port")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	resolved := *cfgPath
	if strings.TrimSpace(resolved) == "" {
		resolved = os.Getenv(config.EnvConfigPath)
	}

	cfg, errLoad := config.Load(config.ResolveConfigPath(resolved))
	if errLoad != nil {
		return errLoad
	}
	if *port != 0 {
		if *port < 0 || *port > 65535 {
			return fmt.Errorf("invalid port: %d", *port)
		}
		cfg.Port = *port
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.RunServer(ctx, cfg)
}
