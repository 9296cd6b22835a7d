package formatter

import (
	"encoding/json"
	"io"

	"github.com/artpar/gridpatch/domain/patch"
	"github.com/artpar/gridpatch/domain/table"
	"github.com/artpar/gridpatch/ports"
)

// JSONFormatter formats output as JSON. Patch events use the host wire
// format.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Description returns the formatter description.
func (f *JSONFormatter) Description() string {
	return "JSON output format"
}

// FormatDocuments formats document summaries as JSON.
func (f *JSONFormatter) FormatDocuments(w io.Writer, docs []ports.Document, opts FormatOptions) error {
	return f.encode(w, map[string]any{
		"count": len(docs),
		"data":  summarize(docs),
	}, opts)
}

// FormatGrid formats a table as JSON.
func (f *JSONFormatter) FormatGrid(w io.Writer, g table.Grid, shape table.Shape, opts FormatOptions) error {
	return f.encode(w, gridView(g, shape), opts)
}

// FormatPatch formats a patch event as a JSON array of primitives.
func (f *JSONFormatter) FormatPatch(w io.Writer, e patch.Event, opts FormatOptions) error {
	if e == nil {
		e = patch.Event{}
	}
	return f.encode(w, e, opts)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, map[string]any{
		"error": map[string]string{"message": err.Error()},
	}, FormatOptions{})
}

func (f *JSONFormatter) encode(w io.Writer, v any, opts FormatOptions) error {
	enc := json.NewEncoder(w)
	if !opts.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func init() {
	Register(NewJSONFormatter())
}
