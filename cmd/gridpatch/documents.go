package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/artpar/gridpatch/domain/patch"
	"github.com/artpar/gridpatch/ports"
	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:     "doc",
	Aliases: []string{"docs"},
	Short:   "Manage documents",
	Long: `Manage the documents that hold tables.

Examples:
  gridpatch doc list
  gridpatch doc create
  gridpatch doc create --id landing --body body.json`,
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	RunE:  runDocList,
}

var docCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a document",
	RunE:  runDocCreate,
}

var docHistoryCmd = &cobra.Command{
	Use:   "history <doc-id>",
	Short: "Show the committed patch events of a document (sqlite only)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocHistory,
}

// historian is implemented by stores that keep a patch log.
type historian interface {
	History(ctx context.Context, id string) ([]patch.Event, error)
}

var (
	docID       string
	docBodyFile string
)

func init() {
	rootCmd.AddCommand(docCmd)

	docCmd.AddCommand(docListCmd)
	docCmd.AddCommand(docCreateCmd)
	docCmd.AddCommand(docHistoryCmd)

	docCreateCmd.Flags().StringVar(&docID, "id", "", "document ID (generated when empty)")
	docCreateCmd.Flags().StringVar(&docBodyFile, "body", "", "JSON file with the initial body")
}

func runDocList(cmd *cobra.Command, args []string) error {
	f, err := outputFormatter()
	if err != nil {
		return err
	}

	app, err := openApp(nil)
	if err != nil {
		return err
	}
	defer closeApp(app)

	docs, err := app.Editor.Documents(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 && outputFormat == "table" {
		fmt.Fprintln(cmd.OutOrStdout(), "No documents found.")
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "Create one with: gridpatch doc create")
		return nil
	}
	return f.FormatDocuments(cmd.OutOrStdout(), docs, formatOptions())
}

func runDocCreate(cmd *cobra.Command, args []string) error {
	f, err := outputFormatter()
	if err != nil {
		return err
	}

	var body map[string]any
	if docBodyFile != "" {
		data, err := os.ReadFile(docBodyFile)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return fmt.Errorf("parse body: %w", err)
		}
	}

	app, err := openApp(nil)
	if err != nil {
		return err
	}
	defer closeApp(app)

	doc, err := app.Editor.CreateDocument(context.Background(), docID, body)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	if outputFormat == "table" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s Created document %s\n\n", checkMark, doc.ID)
	}
	return f.FormatDocuments(cmd.OutOrStdout(), []ports.Document{doc}, formatOptions())
}

func runDocHistory(cmd *cobra.Command, args []string) error {
	f, err := outputFormatter()
	if err != nil {
		return err
	}

	app, err := openApp(nil)
	if err != nil {
		return err
	}
	defer closeApp(app)

	h, ok := app.Store.(historian)
	if !ok {
		return fmt.Errorf("the %s driver keeps no patch log", app.Config.Database.Driver)
	}
	history, err := h.History(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	out := cmd.OutOrStdout()
	for i, e := range history {
		if outputFormat == "table" {
			fmt.Fprintf(out, "# rev %d\n", i+2)
		}
		if err := f.FormatPatch(out, e, formatOptions()); err != nil {
			return err
		}
	}
	return nil
}
