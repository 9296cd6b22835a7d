package main

import (
	"fmt"
	"os"

	"github.com/artpar/gridpatch/bootstrap"
	"github.com/artpar/gridpatch/config"
	"github.com/spf13/cobra"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the gridpatch HTTP API.

The server will:
  - Load configuration from gridpatch.yaml (or --config)
  - Or load configuration from GRIDPATCH_* environment variables
  - Resolve the table field from the document schema
  - Open the document store
  - Serve the table API, the live websocket feed and metrics

Destructive requests (remove row, remove column, clear) stay pending
until POST .../pending/confirm or .../pending/cancel.

Environment variables (for Docker deployments):
  GRIDPATCH_SCHEMA_PATH      - Schema file (required)
  GRIDPATCH_SCHEMA_FIELD     - Table field name (required)
  GRIDPATCH_DATABASE_DSN     - Database path (default: gridpatch.db)
  GRIDPATCH_SERVER_PORT      - Server port (default: 8080)
  GRIDPATCH_LOG_LEVEL        - Log level: debug, info, warn, error

Examples:
  gridpatch serve
  gridpatch serve --config /etc/gridpatch/gridpatch.yaml
  gridpatch serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	if !hasConfigFile && !config.HasEnvConfig() {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "No configuration found.")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Option 1: Create %s (see examples/gridpatch.yaml)\n", cfgFile)
		fmt.Fprintln(out, "Option 2: Set GRIDPATCH_SCHEMA_PATH and GRIDPATCH_SCHEMA_FIELD")
		return nil
	}

	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath: cfgFile,
		Version:    version,
		Watch:      hasConfigFile && hotReload,
	})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
