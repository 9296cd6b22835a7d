package table

import (
	"fmt"

	"github.com/artpar/gridpatch/domain/patch"
)

// KeyGenerator produces row keys unique within a document.
type KeyGenerator interface {
	New() string
}

// Mutator turns table operations into patch events. Paths in the events it
// returns are relative to the table value.
//
// A Mutator holds no grid state: every operation takes the current grid as
// supplied by the host store and never modifies it.
type Mutator struct {
	shape Shape
	keys  KeyGenerator
}

// NewMutator creates a mutator for tables of the given shape.
func NewMutator(shape Shape, keys KeyGenerator) *Mutator {
	return &Mutator{shape: shape, keys: keys}
}

// Shape returns the table shape.
func (m *Mutator) Shape() Shape {
	return m.shape
}

// newRow builds a keyed row of cols independently constructed empty cells.
func (m *Mutator) newRow(cols int) Row {
	cells := make([]Cell, cols)
	for i := range cells {
		cells[i] = NewCell(m.shape.CellType)
	}
	return Row{
		Type:  m.shape.RowTypeName,
		Key:   m.keys.New(),
		Cells: cells,
	}
}

func (m *Mutator) replace(g Grid) patch.Event {
	return patch.From(patch.Set(g.Encode(m.shape)))
}

// Initialize creates a table of one row with one empty cell.
func (m *Mutator) Initialize() patch.Event {
	return m.replace(Grid{m.newRow(1)})
}

// AddRow appends a row with as many empty cells as the first row has.
// An absent grid is initialized instead.
func (m *Mutator) AddRow(g Grid) patch.Event {
	if g.IsAbsent() {
		return m.Initialize()
	}
	out := append(g.Clone(), m.newRow(g.Columns()))
	return m.replace(out)
}

// AddColumn appends an empty cell to every row. Row order and keys are kept.
// An absent grid is initialized instead.
func (m *Mutator) AddColumn(g Grid) patch.Event {
	if g.IsAbsent() {
		return m.Initialize()
	}
	out := g.Clone()
	for i := range out {
		out[i].Cells = append(out[i].Cells, NewCell(m.shape.CellType))
	}
	return m.replace(out)
}

// RemoveRow removes the row at index. Removing the last row clears the table.
func (m *Mutator) RemoveRow(g Grid, index int) (patch.Event, error) {
	if err := rowBounds("remove row", g, index); err != nil {
		return nil, err
	}
	out := make(Grid, 0, len(g)-1)
	out = append(out, g[:index]...)
	out = append(out, g[index+1:]...)
	if out.IsAbsent() {
		return m.Clear(), nil
	}
	return m.replace(out.Clone()), nil
}

// RemoveColumn removes the cell at index from every row. The index must be
// valid for every row. Removing the last column clears the table.
func (m *Mutator) RemoveColumn(g Grid, index int) (patch.Event, error) {
	if g.IsAbsent() {
		return nil, &BoundsError{Op: "remove column", Row: -1, Cell: index}
	}
	for r, row := range g {
		if index < 0 || index >= len(row.Cells) {
			return nil, &BoundsError{Op: "remove column", Row: r, Cell: index, Rows: len(g), Columns: g.Columns()}
		}
	}

	out := g.Clone()
	for i := range out {
		cells := out[i].Cells
		out[i].Cells = append(cells[:index:index], cells[index+1:]...)
	}
	if out.Columns() == 0 {
		return m.Clear(), nil
	}
	return m.replace(out), nil
}

// Clear removes the table value entirely. The field is unset, never set to
// an empty array.
func (m *Mutator) Clear() patch.Event {
	return patch.From(patch.Unset())
}

// UpdateStringCell replaces the text of one cell of a string table.
func (m *Mutator) UpdateStringCell(g Grid, text string, row, cell int) (patch.Event, error) {
	if m.shape.CellType.Structured {
		return nil, fmt.Errorf("update string cell: %w: cells are %q objects", ErrWrongCellType, m.shape.CellType.Name)
	}
	if err := cellBounds("update string cell", g, row, cell); err != nil {
		return nil, err
	}
	out := g.Clone()
	out[row].Cells[cell] = StringCell(text)
	return m.replace(out), nil
}

// UpdateStructuredCell re-scopes a patch event produced by a nested editor
// for one structured cell so it applies to the table value. Every path
// [p...] becomes [row, cellsField, cell, p...].
func (m *Mutator) UpdateStructuredCell(g Grid, nested patch.Event, row, cell int) (patch.Event, error) {
	if !m.shape.CellType.Structured {
		return nil, fmt.Errorf("update structured cell: %w: cells are strings", ErrWrongCellType)
	}
	if err := cellBounds("update structured cell", g, row, cell); err != nil {
		return nil, err
	}
	return nested.PrefixAll(
		patch.Index(cell),
		patch.Field(m.shape.CellsFieldName),
		patch.Index(row),
	), nil
}

// ReorderRow moves the row at oldIndex to newIndex. The move is expressed
// relative to row keys so it survives concurrent changes the host applies
// before committing: the row is unset by key, then inserted before (moving
// up) or after (moving down) the row currently at newIndex.
//
// Moves that are no-ops or involve unkeyed rows return an error matching
// ErrInvalidReorder and no event.
func (m *Mutator) ReorderRow(g Grid, oldIndex, newIndex int) (patch.Event, error) {
	if err := rowBounds("reorder row", g, oldIndex); err != nil {
		return nil, err
	}
	if err := rowBounds("reorder row", g, newIndex); err != nil {
		return nil, err
	}

	item, ref := g[oldIndex], g[newIndex]
	switch {
	case item.Key == "" || ref.Key == "":
		return nil, ErrMissingKey
	case oldIndex == newIndex:
		return nil, ErrNoopMove
	case item.Key == ref.Key:
		return nil, ErrSameKey
	}

	pos := patch.After
	if oldIndex > newIndex {
		pos = patch.Before
	}

	return patch.From(
		patch.Unset(patch.Key(item.Key)),
		patch.Insert([]any{item.Encode(m.shape)}, pos, patch.Key(ref.Key)),
	), nil
}

// Load replaces the table with a string matrix, e.g. from a spreadsheet.
// Ragged rows are padded to the widest row. An empty matrix clears the table.
func (m *Mutator) Load(matrix [][]string) (patch.Event, error) {
	if m.shape.CellType.Structured {
		return nil, fmt.Errorf("load: %w: cells are %q objects", ErrWrongCellType, m.shape.CellType.Name)
	}

	cols := 0
	for _, r := range matrix {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if len(matrix) == 0 || cols == 0 {
		return m.Clear(), nil
	}

	g := make(Grid, len(matrix))
	for i, texts := range matrix {
		row := m.newRow(cols)
		for j, text := range texts {
			row.Cells[j] = StringCell(text)
		}
		g[i] = row
	}
	return m.replace(g), nil
}

// Commit applies a confirmed destructive request.
func (m *Mutator) Commit(g Grid, p Pending) (patch.Event, error) {
	switch p.Action {
	case ActionRemoveRow:
		return m.RemoveRow(g, p.Index)
	case ActionRemoveColumn:
		return m.RemoveColumn(g, p.Index)
	case ActionClear:
		return m.Clear(), nil
	default:
		return nil, fmt.Errorf("commit: unknown action %d", p.Action)
	}
}
