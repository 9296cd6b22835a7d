package main

import (
	"fmt"
	"os"

	"github.com/artpar/gridpatch/adapters/sqlite"
	"github.com/artpar/gridpatch/bootstrap"
	"github.com/artpar/gridpatch/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and schema",
	Long: `Validate the gridpatch configuration and document schema.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - The schema parses and defines the configured document
  - The table field resolves to rows with a cells array
  - Database is writable (optional)

Examples:
  gridpatch validate
  gridpatch validate --config /etc/gridpatch/gridpatch.yaml --check-database`,
	RunE: runValidate,
}

var validateCheckDatabase bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Fprintf(out, "  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Fprintf(out, "  %s Config file exists\n", checkMark)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(out, "  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config syntax valid\n", checkMark)

	doc, shape, err := bootstrap.LoadSchema(cfg.Schema)
	if err != nil {
		fmt.Fprintf(out, "  %s Schema %s\n", crossMark, cfg.Schema.Path)
		return fmt.Errorf("schema error: %w", err)
	}
	fmt.Fprintf(out, "  %s Schema %s (document %q)\n", checkMark, cfg.Schema.Path, doc.Name)

	cells := "string cells"
	if shape.CellType.Structured {
		cells = fmt.Sprintf("structured %s cells", shape.CellType.Name)
	}
	fmt.Fprintf(out, "  %s Table field %s: %s rows, %s in %q\n", checkMark, cfg.Schema.Field, shape.RowTypeName, cells, shape.CellsFieldName)
	fmt.Fprintf(out, "  %s Database: %s (%s)\n", checkMark, cfg.Database.DSN, cfg.Database.Driver)

	if validateCheckDatabase && cfg.Database.Driver == "sqlite" {
		if err := checkDatabaseWritable(cfg.Database.DSN); err != nil {
			fmt.Fprintf(out, "  %s Database writable\n", crossMark)
			fmt.Fprintf(out, "      Error: %v\n", err)
		} else {
			fmt.Fprintf(out, "  %s Database writable\n", checkMark)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

func checkDatabaseWritable(dsn string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Migrate()
	return err
}

// loadConfig loads the config file (or GRIDPATCH_* variables) and resolves
// the schema path against the config file's directory.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfgFile); err == nil {
		cfg.Schema.Path = bootstrap.ResolvePath(cfgFile, cfg.Schema.Path)
	}
	return cfg, nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
