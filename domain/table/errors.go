package table

import (
	"errors"
	"fmt"
)

// ErrOutOfRange indicates a row or cell index outside the current grid.
// It is an integration error; operations never clamp or skip.
var ErrOutOfRange = errors.New("index out of range")

// ErrInvalidReorder indicates a row move that is a no-op or cannot be
// expressed relative to row keys. No patch is emitted.
var ErrInvalidReorder = errors.New("invalid reorder")

// Reasons for an invalid reorder. All match ErrInvalidReorder with errors.Is.
var (
	ErrMissingKey = fmt.Errorf("%w: row has no key", ErrInvalidReorder)
	ErrNoopMove   = fmt.Errorf("%w: source and destination are the same position", ErrInvalidReorder)
	ErrSameKey    = fmt.Errorf("%w: source and destination rows share a key", ErrInvalidReorder)
)

// ErrWrongCellType indicates an edit that does not fit the table's cell type.
var ErrWrongCellType = errors.New("wrong cell type")

// ErrMalformedTable indicates a stored table value that does not decode.
var ErrMalformedTable = errors.New("malformed table")

// ErrNoPending indicates a confirm or cancel with no confirmation pending.
var ErrNoPending = errors.New("no confirmation pending")

// BoundsError reports an index outside the grid.
type BoundsError struct {
	Op      string
	Row     int // -1 when the operation does not address a row
	Cell    int // -1 when the operation does not address a cell
	Rows    int
	Columns int
}

func (e *BoundsError) Error() string {
	switch {
	case e.Cell < 0:
		return fmt.Sprintf("%s: row %d outside grid of %d rows", e.Op, e.Row, e.Rows)
	case e.Row < 0:
		return fmt.Sprintf("%s: column %d outside grid of %d columns", e.Op, e.Cell, e.Columns)
	default:
		return fmt.Sprintf("%s: cell (%d, %d) outside grid of %dx%d", e.Op, e.Row, e.Cell, e.Rows, e.Columns)
	}
}

func (e *BoundsError) Unwrap() error {
	return ErrOutOfRange
}

func rowBounds(op string, g Grid, row int) error {
	if row < 0 || row >= len(g) {
		return &BoundsError{Op: op, Row: row, Cell: -1, Rows: len(g), Columns: g.Columns()}
	}
	return nil
}

func cellBounds(op string, g Grid, row, cell int) error {
	if row < 0 || row >= len(g) || cell < 0 || cell >= len(g[row].Cells) {
		return &BoundsError{Op: op, Row: row, Cell: cell, Rows: len(g), Columns: g.Columns()}
	}
	return nil
}
