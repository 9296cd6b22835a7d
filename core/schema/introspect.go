package schema

import (
	"fmt"

	"github.com/artpar/gridpatch/domain/table"
)

// ResolveTable derives the table shape of a top-level document field.
func (d Document) ResolveTable(field string) (table.Shape, error) {
	f, ok := d.Field(field)
	if !ok {
		return table.Shape{}, NewConfigError(field, fmt.Errorf("document %q has no field %q", d.Name, field))
	}
	return ResolveTable(f, d.TypeSet())
}

// ResolveTable derives the row type name, the cells field name and the cell
// type from a table field. The field must be an array of exactly one object
// type, and that object must have a field that is an array of exactly one
// string or object type. The first such field is the cells field.
//
// ResolveTable is pure; it is safe to call on every render.
func ResolveTable(field Type, types TypeSet) (table.Shape, error) {
	arr, err := types.Deref(field)
	if err != nil {
		return table.Shape{}, NewConfigError(field.Name, err)
	}
	if !arr.IsArray() || len(arr.Of) != 1 {
		return table.Shape{}, NewConfigError(field.Name, ErrNotArrayOfObject)
	}

	row, err := types.Deref(arr.Of[0])
	if err != nil {
		return table.Shape{}, NewConfigError(field.Name, err)
	}
	if !row.IsObject() {
		return table.Shape{}, NewConfigError(field.Name, ErrNotArrayOfObject)
	}

	for _, f := range row.Fields {
		cells, err := types.Deref(f)
		if err != nil || !cells.IsArray() || len(cells.Of) != 1 {
			continue
		}
		cell, err := types.Deref(cells.Of[0])
		if err != nil {
			continue
		}
		if !cell.IsString() && !cell.IsObject() {
			continue
		}

		return table.Shape{
			RowTypeName:    row.TypeName(),
			CellsFieldName: f.Name,
			CellType: table.CellType{
				Name:       cell.TypeName(),
				Structured: cell.IsObject(),
			},
		}, nil
	}

	return table.Shape{}, NewConfigError(field.Name, ErrNoCellsField)
}
