package main

import (
	"context"
	"errors"
	"os"

	"github.com/personai/persona/internal/repositories"
	"github.com/personai/persona/internal/services"
	"github.com/personai/persona/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	configPath := "config.toml"
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	backend := services.NewBackendService(config.Backend.BaseURL, nil)
	groq := services.NewGroqService(config.Groq.BaseURL, nil)

	opts := RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Backend:    backend,
		Groq:       groq,
		Logger:     logger,
	}

	// Session store is best-effort at startup; 'persona setup' reports problems.
	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err == nil {
			opts.DB = db
			opts.Store = repositories.NewSessionRepository(db)
		} else {
			logger.Warn("failed to migrate session store", "error", err)
			db.Close()
		}
	} else {
		logger.Warn("failed to open session store", "error", err)
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "persona",
		Usage:    "Terminal client for the Persona productivity assistant",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the session store database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
