package formatter

import (
	"fmt"
	"io"

	"github.com/artpar/gridpatch/domain/patch"
	"github.com/artpar/gridpatch/domain/table"
	"github.com/artpar/gridpatch/ports"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the formatter name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// Description returns the formatter description.
func (f *YAMLFormatter) Description() string {
	return "YAML output format"
}

// FormatDocuments formats document summaries as YAML.
func (f *YAMLFormatter) FormatDocuments(w io.Writer, docs []ports.Document, opts FormatOptions) error {
	return f.encode(w, map[string]any{
		"count": len(docs),
		"data":  summarize(docs),
	})
}

// FormatGrid formats a table as YAML.
func (f *YAMLFormatter) FormatGrid(w io.Writer, g table.Grid, shape table.Shape, opts FormatOptions) error {
	return f.encode(w, gridView(g, shape))
}

// FormatPatch formats a patch event as YAML, in the same shape as the JSON
// wire format.
func (f *YAMLFormatter) FormatPatch(w io.Writer, e patch.Event, opts FormatOptions) error {
	if e == nil {
		e = patch.Event{}
	}
	v, err := generic(e)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	return f.encode(w, v)
}

// FormatError formats an error as YAML.
func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, map[string]any{
		"error": map[string]string{"message": err.Error()},
	})
}

func (f *YAMLFormatter) encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	Register(NewYAMLFormatter())
}
