package main

import (
	"fmt"
	"io"
	"os"

	"github.com/artpar/gridpatch/bootstrap"
	"github.com/artpar/gridpatch/core/formatter"
	"github.com/artpar/gridpatch/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// openApp builds the application for a one-shot command. Logs go to stderr
// so command output can be piped.
func openApp(prompter ports.Prompter) (*bootstrap.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.Driver == "memory" {
		fmt.Fprintln(os.Stderr, "warning: memory driver, changes are discarded when the command exits")
	}

	app, err := bootstrap.NewFromConfig(cfg, bootstrap.Options{
		Version:    version,
		LogOutput:  os.Stderr,
		Registerer: prometheus.NewRegistry(),
		Prompter:   prompter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return app, nil
}

// closeApp releases the database without the server shutdown log lines.
func closeApp(app *bootstrap.App) {
	if app.DB != nil {
		app.DB.Close()
	}
}

func outputFormatter() (formatter.Formatter, error) {
	f, ok := formatter.Get(outputFormat)
	if !ok {
		return nil, fmt.Errorf("unknown format %q (available: %v)", outputFormat, formatter.List())
	}
	return f, nil
}

func formatOptions() formatter.FormatOptions {
	return formatter.FormatOptions{ShowKeys: showKeys, MaxWidth: maxWidth}
}

func printError(w io.Writer, err error) {
	if f, ferr := outputFormatter(); ferr == nil {
		f.FormatError(w, err)
		return
	}
	fmt.Fprintln(w, err)
}
