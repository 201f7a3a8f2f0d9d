package main

import (
	"fmt"
	"os"

	"github.com/spec-kit/staff-roster/internal/config"
	"github.com/spec-kit/staff-roster/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := cfg.Logger
	if logCfg.Output == "" {
		logCfg.Output = "stderr"
	}
	logCfg.Name = "staffctl"
	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := newRootCmd(cfg, logger).Execute(); err != nil {
		os.Exit(1)
	}
}
