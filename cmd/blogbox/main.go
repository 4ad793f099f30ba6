package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrebq/blogbox/cmd/blogbox/serve"
	"github.com/andrebq/blogbox/cmd/blogbox/users"
	"github.com/andrebq/blogbox/internal/logutil"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	logLevel := "info"
	logFormat := "json"
	app := &cli.App{
		Name:  "blogbox",
		Usage: "User accounts and blog posts, served over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Minimum level of log messages (debug, info, warn, error)",
				EnvVars:     []string{"BLOGBOX_LOG_LEVEL"},
				Value:       logLevel,
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "Log output format (json or console)",
				EnvVars:     []string{"BLOGBOX_LOG_FORMAT"},
				Value:       logFormat,
				Destination: &logFormat,
			},
		},
		Before: func(ctx *cli.Context) error {
			return logutil.Setup(logLevel, logFormat, os.Stderr)
		},
		Commands: []*cli.Command{
			serve.Cmd(),
			users.Cmd(),
		},
	}
	// values from .env never override the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Unable to load .env file")
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
