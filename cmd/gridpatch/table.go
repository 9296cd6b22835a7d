package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/artpar/gridpatch/adapters/cliprompt"
	"github.com/artpar/gridpatch/adapters/xlsx"
	"github.com/artpar/gridpatch/app"
	"github.com/artpar/gridpatch/bootstrap"
	"github.com/artpar/gridpatch/core/events"
	"github.com/artpar/gridpatch/domain/patch"
	"github.com/artpar/gridpatch/domain/table"
	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Edit the table of a document",
	Long: `Edit the configured table field of a document.

Each command commits one patch event and prints it. Row and cell
indexes start at 0. Removing rows or columns and clearing the table
ask for confirmation first (use --yes to skip).

Examples:
  gridpatch table show doc_1
  gridpatch table init doc_1
  gridpatch table add-row doc_1
  gridpatch table set doc_1 0 1 "Monthly"
  gridpatch table reorder doc_1 2 0
  gridpatch table remove-row doc_1 1 --yes
  gridpatch table export doc_1 pricing.xlsx`,
}

var tableShowCmd = &cobra.Command{
	Use:   "show <doc-id>",
	Short: "Show the table",
	Args:  cobra.ExactArgs(1),
	RunE:  runTableShow,
}

var tableInitCmd = &cobra.Command{
	Use:   "init <doc-id>",
	Short: "Create a table with one empty cell",
	Args:  cobra.ExactArgs(1),
	RunE: editRunner(func(ctx context.Context, a *bootstrap.App, args []string) (app.Result, error) {
		return a.Editor.Initialize(ctx, args[0])
	}),
}

var tableAddRowCmd = &cobra.Command{
	Use:   "add-row <doc-id>",
	Short: "Append an empty row",
	Args:  cobra.ExactArgs(1),
	RunE: editRunner(func(ctx context.Context, a *bootstrap.App, args []string) (app.Result, error) {
		return a.Editor.AddRow(ctx, args[0])
	}),
}

var tableAddColumnCmd = &cobra.Command{
	Use:   "add-column <doc-id>",
	Short: "Append an empty column",
	Args:  cobra.ExactArgs(1),
	RunE: editRunner(func(ctx context.Context, a *bootstrap.App, args []string) (app.Result, error) {
		return a.Editor.AddColumn(ctx, args[0])
	}),
}

var tableSetCmd = &cobra.Command{
	Use:   "set <doc-id> <row> <cell> <text>",
	Short: "Set the text of a string cell",
	Args:  cobra.ExactArgs(4),
	RunE: editRunner(func(ctx context.Context, a *bootstrap.App, args []string) (app.Result, error) {
		row, cell, err := cellArgs(args[1], args[2])
		if err != nil {
			return app.Result{}, err
		}
		return a.Editor.UpdateStringCell(ctx, args[0], args[3], row, cell)
	}),
}

var tablePatchCmd = &cobra.Command{
	Use:   "patch <doc-id> <row> <cell> <patch-file>",
	Short: "Apply a cell-relative patch to a structured cell",
	Long: `Apply a patch event addressed relative to one structured cell.

The patch file holds a JSON array of operations ("-" reads stdin):
  [{"type": "set", "path": ["amount"], "value": 42}]`,
	Args: cobra.ExactArgs(4),
	RunE: editRunner(func(ctx context.Context, a *bootstrap.App, args []string) (app.Result, error) {
		row, cell, err := cellArgs(args[1], args[2])
		if err != nil {
			return app.Result{}, err
		}
		nested, err := readPatch(args[3])
		if err != nil {
			return app.Result{}, err
		}
		return a.Editor.ReceiveNestedPatch(ctx, args[0], nested, row, cell)
	}),
}

var tableReorderCmd = &cobra.Command{
	Use:   "reorder <doc-id> <from> <to>",
	Short: "Move a row",
	Args:  cobra.ExactArgs(3),
	RunE: editRunner(func(ctx context.Context, a *bootstrap.App, args []string) (app.Result, error) {
		from, err := indexArg("from", args[1])
		if err != nil {
			return app.Result{}, err
		}
		to, err := indexArg("to", args[2])
		if err != nil {
			return app.Result{}, err
		}
		return a.Editor.ReorderRow(ctx, args[0], from, to)
	}),
}

var tableImportCmd = &cobra.Command{
	Use:   "import <doc-id> <file.xlsx>",
	Short: "Replace the table with a spreadsheet's cells",
	Args:  cobra.ExactArgs(2),
	RunE: editRunner(func(ctx context.Context, a *bootstrap.App, args []string) (app.Result, error) {
		f, err := os.Open(args[1])
		if err != nil {
			return app.Result{}, err
		}
		defer f.Close()

		matrix, err := xlsx.Import(f, sheetName)
		if err != nil {
			return app.Result{}, err
		}
		return a.Editor.Import(ctx, args[0], matrix)
	}),
}

var tableExportCmd = &cobra.Command{
	Use:   "export <doc-id> <file.xlsx>",
	Short: "Write the table to a spreadsheet",
	Args:  cobra.ExactArgs(2),
	RunE:  runTableExport,
}

var tableRemoveRowCmd = &cobra.Command{
	Use:   "remove-row <doc-id> <row>",
	Short: "Remove a row (asks for confirmation)",
	Args:  cobra.ExactArgs(2),
	RunE: confirmRunner(func(ctx context.Context, a *bootstrap.App, args []string) (table.Pending, error) {
		row, err := indexArg("row", args[1])
		if err != nil {
			return table.Pending{}, err
		}
		return a.Editor.RequestRemoveRow(ctx, args[0], row)
	}),
}

var tableRemoveColumnCmd = &cobra.Command{
	Use:   "remove-column <doc-id> <cell>",
	Short: "Remove a column (asks for confirmation)",
	Args:  cobra.ExactArgs(2),
	RunE: confirmRunner(func(ctx context.Context, a *bootstrap.App, args []string) (table.Pending, error) {
		cell, err := indexArg("cell", args[1])
		if err != nil {
			return table.Pending{}, err
		}
		return a.Editor.RequestRemoveColumn(ctx, args[0], cell)
	}),
}

var tableClearCmd = &cobra.Command{
	Use:   "clear <doc-id>",
	Short: "Remove the whole table (asks for confirmation)",
	Args:  cobra.ExactArgs(1),
	RunE: confirmRunner(func(ctx context.Context, a *bootstrap.App, args []string) (table.Pending, error) {
		return a.Editor.RequestClear(ctx, args[0])
	}),
}

var (
	assumeYes bool
	sheetName string
)

func init() {
	rootCmd.AddCommand(tableCmd)

	tableCmd.AddCommand(tableShowCmd)
	tableCmd.AddCommand(tableInitCmd)
	tableCmd.AddCommand(tableAddRowCmd)
	tableCmd.AddCommand(tableAddColumnCmd)
	tableCmd.AddCommand(tableSetCmd)
	tableCmd.AddCommand(tablePatchCmd)
	tableCmd.AddCommand(tableReorderCmd)
	tableCmd.AddCommand(tableImportCmd)
	tableCmd.AddCommand(tableExportCmd)
	tableCmd.AddCommand(tableRemoveRowCmd)
	tableCmd.AddCommand(tableRemoveColumnCmd)
	tableCmd.AddCommand(tableClearCmd)

	for _, c := range []*cobra.Command{tableRemoveRowCmd, tableRemoveColumnCmd, tableClearCmd} {
		c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation question")
	}
	for _, c := range []*cobra.Command{tableImportCmd, tableExportCmd} {
		c.Flags().StringVar(&sheetName, "sheet", "", "worksheet name (default: first sheet / table field)")
	}
}

func runTableShow(cmd *cobra.Command, args []string) error {
	f, err := outputFormatter()
	if err != nil {
		return err
	}

	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer closeApp(a)

	g, doc, err := a.Editor.Table(context.Background(), args[0])
	if err != nil {
		return err
	}
	if g.IsAbsent() && outputFormat == "table" {
		fmt.Fprintf(cmd.OutOrStdout(), "Document %s has no table (rev %d).\n\n", doc.ID, doc.Rev)
		fmt.Fprintf(cmd.OutOrStdout(), "Create one with: gridpatch table init %s\n", doc.ID)
		return nil
	}
	return f.FormatGrid(cmd.OutOrStdout(), g, a.Editor.Shape(), formatOptions())
}

func runTableExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer closeApp(a)

	g, _, err := a.Editor.Table(context.Background(), args[0])
	if err != nil {
		return err
	}

	sheet := sheetName
	if sheet == "" {
		sheet = a.Editor.Field()
	}

	var w io.Writer = cmd.OutOrStdout()
	if args[1] != "-" {
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := xlsx.Export(w, g, a.Editor.Shape(), sheet); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if args[1] != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Exported %d rows to %s\n", checkMark, len(g), args[1])
	}
	return nil
}

// editRunner wraps an editing gesture: it opens the app, runs the gesture
// and prints the committed patch.
func editRunner(run func(ctx context.Context, a *bootstrap.App, args []string) (app.Result, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		f, err := outputFormatter()
		if err != nil {
			return err
		}

		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		res, err := run(cmd.Context(), a, args)
		if err != nil {
			return err
		}
		if res.Diagnostic != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", res.Diagnostic)
		}
		return f.FormatPatch(cmd.OutOrStdout(), res.Patch, formatOptions())
	}
}

// confirmRunner wraps a destructive gesture. The terminal prompter resolves
// the request before it returns; the committed patch is read off the bus.
func confirmRunner(run func(ctx context.Context, a *bootstrap.App, args []string) (table.Pending, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		f, err := outputFormatter()
		if err != nil {
			return err
		}

		a, err := openApp(cliprompt.NewTerminal(assumeYes))
		if err != nil {
			return err
		}
		defer closeApp(a)

		var committed *events.Event
		unsubscribe := a.Bus.Subscribe(events.TablePatched, func(_ context.Context, e events.Event) error {
			committed = &e
			return nil
		})
		defer unsubscribe()

		p, err := run(cmd.Context(), a, args)
		if err != nil {
			return err
		}
		if committed == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Cancelled %s.\n", p.Action)
			return nil
		}
		return f.FormatPatch(cmd.OutOrStdout(), committed.Patch, formatOptions())
	}
}

func indexArg(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, s)
	}
	return n, nil
}

func cellArgs(row, cell string) (int, int, error) {
	r, err := indexArg("row", row)
	if err != nil {
		return 0, 0, err
	}
	c, err := indexArg("cell", cell)
	if err != nil {
		return 0, 0, err
	}
	return r, c, nil
}

func readPatch(path string) (patch.Event, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read patch: %w", err)
	}

	var e patch.Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	return e, nil
}
