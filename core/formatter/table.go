package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/artpar/gridpatch/domain/patch"
	"github.com/artpar/gridpatch/domain/table"
	"github.com/artpar/gridpatch/ports"
)

// TableFormatter formats output as aligned text tables.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Description returns the formatter description.
func (f *TableFormatter) Description() string {
	return "Aligned text table output"
}

// FormatDocuments lists documents one per line.
func (f *TableFormatter) FormatDocuments(w io.Writer, docs []ports.Document, opts FormatOptions) error {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !opts.NoHeader {
		fmt.Fprintln(tw, "ID\tTYPE\tREV\tUPDATED")
	}
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.ID, d.Type, d.Rev, d.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

// FormatGrid draws the table with a row number column and one column per
// cell. Structured cells show their fields as compact JSON.
func (f *TableFormatter) FormatGrid(w io.Writer, g table.Grid, shape table.Shape, opts FormatOptions) error {
	if g.IsAbsent() {
		fmt.Fprintln(w, "No table.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !opts.NoHeader {
		headers := []string{"#"}
		if opts.ShowKeys {
			headers = append(headers, "KEY")
		}
		for c := 0; c < g.Columns(); c++ {
			headers = append(headers, "C"+strconv.Itoa(c))
		}
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}

	for r, row := range g {
		values := []string{strconv.Itoa(r)}
		if opts.ShowKeys {
			values = append(values, row.Key)
		}
		for _, cell := range row.Cells {
			values = append(values, f.formatCell(cell, opts.MaxWidth))
		}
		fmt.Fprintln(tw, strings.Join(values, "\t"))
	}

	return tw.Flush()
}

// FormatPatch prints one primitive per line.
func (f *TableFormatter) FormatPatch(w io.Writer, e patch.Event, opts FormatOptions) error {
	if e.IsEmpty() {
		fmt.Fprintln(w, "No changes.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !opts.NoHeader {
		fmt.Fprintln(tw, "OP\tPATH\tDETAIL")
	}
	for _, op := range e {
		path := op.Path.String()
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", op.Type, path, f.formatDetail(op, opts.MaxWidth))
	}
	return tw.Flush()
}

// FormatError formats an error message.
func (f *TableFormatter) FormatError(w io.Writer, err error) error {
	fmt.Fprintf(w, "Error: %s\n", err.Error())
	return nil
}

func (f *TableFormatter) formatCell(c table.Cell, maxWidth int) string {
	if !c.IsObject() {
		return f.truncate(c.Text(), maxWidth)
	}

	fields := c.Fields()
	delete(fields, patch.TypeAttr)
	if len(fields) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + f.formatValue(fields[k])
	}
	return f.truncate(strings.Join(parts, " "), maxWidth)
}

func (f *TableFormatter) formatDetail(op patch.Op, maxWidth int) string {
	switch op.Type {
	case patch.TypeSet:
		return f.truncate(f.formatValue(op.Value), maxWidth)
	case patch.TypeInsert:
		return f.truncate(fmt.Sprintf("%s %d item(s)", op.Position, len(op.Items)), maxWidth)
	default:
		return ""
	}
}

// formatValue formats a value for display.
func (f *TableFormatter) formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return "-"
	case string:
		return v
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

func (f *TableFormatter) truncate(s string, maxWidth int) string {
	if maxWidth > 3 && len(s) > maxWidth {
		return s[:maxWidth-3] + "..."
	}
	return s
}

func init() {
	Register(NewTableFormatter())
}
