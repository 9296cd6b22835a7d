package main

import (
	"os"

	"github.com/artpar/gridpatch/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile      string
	outputFormat string
	showKeys     bool
	maxWidth     int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gridpatch",
	Short: "Structured table editor that commits every change as a patch",
	Long: `gridpatch edits a table field inside structured documents.

Every gesture (adding a row, editing a cell, reordering) is turned into
a minimal patch event and committed to the document store.

Quick start:
  gridpatch validate               # Check config and schema
  gridpatch doc create             # Create a document
  gridpatch table init <doc-id>    # Create a 1x1 table
  gridpatch serve                  # Start the HTTP API

Editing:
  gridpatch table add-row <doc-id>
  gridpatch table set <doc-id> <row> <cell> <text>
  gridpatch table reorder <doc-id> <from> <to>`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&showKeys, "keys", false, "show row keys in table output")
	rootCmd.PersistentFlags().IntVar(&maxWidth, "max-width", 40, "truncate table cells (0 = no limit)")
}
