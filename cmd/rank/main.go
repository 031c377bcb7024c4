package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/racecard/internal/cardtool"
	"github.com/okian/racecard/pkg/logger"
)

const defaultTimeout = 30 * time.Second

func main() {
	var (
		file       = flag.String("file", "", "Race card document (.txt, .html, .htm or .pdf)")
		condition  = flag.String("condition", "Gd", "Track condition token or name")
		top        = flag.Int("top", 0, "Show only the first N runners")
		asJSON     = flag.Bool("json", false, "Print JSON instead of text lines")
		baseURL    = flag.String("url", "", "Rank through a running server")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout in server mode")
		configPath = flag.String("config", "", "YAML config with parser and scoring settings")
		logLevel   = flag.String("log-level", "warn", "Log level written to stderr")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Usage = func() { cardtool.ShowHelp(os.Stderr) }
	flag.Parse()

	if *help {
		cardtool.ShowHelp(os.Stdout)
		return
	}

	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithLevel(*logLevel)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &cardtool.Config{
		File:       *file,
		Condition:  *condition,
		Top:        *top,
		JSON:       *asJSON,
		URL:        *baseURL,
		Timeout:    *timeout,
		ConfigPath: *configPath,
	}
	if err := cardtool.Run(ctx, cfg, os.Stdout); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
