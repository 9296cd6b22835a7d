// Package table provides the grid value types of an editable table and the
// pure operations that turn table edits into document patches.
// This package has NO dependencies on I/O or external packages.
package table

import (
	"fmt"

	"github.com/artpar/gridpatch/domain/patch"
)

// CellType is the declared type shared by every cell of a table.
type CellType struct {
	// Name is the type name structured cells carry in _type ("string" for
	// plain cells).
	Name string

	// Structured is true when cells are objects rather than strings.
	Structured bool
}

// Shape is derived once from a schema descriptor and describes how rows and
// cells are stored.
type Shape struct {
	RowTypeName    string
	CellsFieldName string
	CellType       CellType
}

// Cell is either a string or a structured value (immutable value type).
type Cell struct {
	text   string
	fields map[string]any // nil for string cells
}

// StringCell returns a plain string cell.
func StringCell(s string) Cell {
	return Cell{text: s}
}

// ObjectCell returns a structured cell holding a copy of fields.
func ObjectCell(fields map[string]any) Cell {
	c := Cell{fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

// NewCell returns an empty cell of the given type. Every call returns a
// value that shares nothing with any other cell.
func NewCell(ct CellType) Cell {
	if ct.Structured {
		return ObjectCell(map[string]any{patch.TypeAttr: ct.Name})
	}
	return StringCell("")
}

// IsObject reports whether the cell is a structured value.
func (c Cell) IsObject() bool {
	return c.fields != nil
}

// Text returns the string value of a plain cell.
func (c Cell) Text() string {
	return c.text
}

// TypeName returns the _type of a structured cell.
func (c Cell) TypeName() string {
	name, _ := c.fields[patch.TypeAttr].(string)
	return name
}

// Fields returns a copy of a structured cell's attributes.
func (c Cell) Fields() map[string]any {
	if c.fields == nil {
		return nil
	}
	out := make(map[string]any, len(c.fields))
	for k, v := range c.fields {
		out[k] = v
	}
	return out
}

// Value returns the cell as a document value: a string or an object.
func (c Cell) Value() any {
	if c.IsObject() {
		return c.Fields()
	}
	return c.text
}

// Row is one keyed table row.
type Row struct {
	Type  string
	Key   string
	Cells []Cell

	// Extra holds row attributes other than _type, _key and the cells field.
	Extra map[string]any
}

// Grid is the whole table value. A nil or empty grid is absent.
type Grid []Row

// IsAbsent reports whether no table exists.
func (g Grid) IsAbsent() bool {
	return len(g) == 0
}

// Columns returns the column count, read from the first row.
func (g Grid) Columns() int {
	if g.IsAbsent() {
		return 0
	}
	return len(g[0].Cells)
}

// Clone returns a copy whose rows and cell lists can be modified without
// touching g.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = row
		out[i].Cells = append([]Cell(nil), row.Cells...)
	}
	return out
}

// Matrix returns the grid as rows of cell texts. Structured cells render as
// their _type.
func (g Grid) Matrix() [][]string {
	out := make([][]string, len(g))
	for i, row := range g {
		out[i] = make([]string, len(row.Cells))
		for j, c := range row.Cells {
			if c.IsObject() {
				out[i][j] = c.TypeName()
			} else {
				out[i][j] = c.Text()
			}
		}
	}
	return out
}

// Encode returns the grid as a document value. An absent grid encodes to nil.
func (g Grid) Encode(shape Shape) any {
	if g.IsAbsent() {
		return nil
	}
	rows := make([]any, len(g))
	for i, row := range g {
		rows[i] = row.Encode(shape)
	}
	return rows
}

// Encode returns the row as a document value.
func (r Row) Encode(shape Shape) map[string]any {
	out := make(map[string]any, len(r.Extra)+3)
	for k, v := range r.Extra {
		out[k] = v
	}
	out[patch.TypeAttr] = r.Type
	if r.Key != "" {
		out[patch.KeyAttr] = r.Key
	}
	cells := make([]any, len(r.Cells))
	for i, c := range r.Cells {
		cells[i] = c.Value()
	}
	out[shape.CellsFieldName] = cells
	return out
}

// Decode reads a grid from a document value. nil decodes to an absent grid.
func Decode(value any, shape Shape) (Grid, error) {
	if value == nil {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrMalformedTable, value)
	}

	g := make(Grid, len(items))
	for i, item := range items {
		row, err := decodeRow(item, shape)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedTable, i, err)
		}
		g[i] = row
	}
	return g, nil
}

func decodeRow(item any, shape Shape) (Row, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return Row{}, fmt.Errorf("expected object, got %T", item)
	}

	var row Row
	row.Type, _ = m[patch.TypeAttr].(string)
	row.Key, _ = m[patch.KeyAttr].(string)

	if raw, present := m[shape.CellsFieldName]; present && raw != nil {
		cells, ok := raw.([]any)
		if !ok {
			return Row{}, fmt.Errorf("%s: expected array, got %T", shape.CellsFieldName, raw)
		}
		row.Cells = make([]Cell, len(cells))
		for j, v := range cells {
			switch cv := v.(type) {
			case string:
				row.Cells[j] = StringCell(cv)
			case map[string]any:
				row.Cells[j] = ObjectCell(cv)
			default:
				return Row{}, fmt.Errorf("%s[%d]: expected string or object, got %T", shape.CellsFieldName, j, v)
			}
		}
	}

	for k, v := range m {
		if k == patch.TypeAttr || k == patch.KeyAttr || k == shape.CellsFieldName {
			continue
		}
		if row.Extra == nil {
			row.Extra = make(map[string]any)
		}
		row.Extra[k] = v
	}
	return row, nil
}
