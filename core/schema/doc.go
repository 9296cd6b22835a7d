/*
Package schema defines the descriptors for documents that carry an editable table.

A document type owns a list of fields. Every field is a Type: a builtin kind
(string, text, number, boolean, object, array) or a reference to a named type
declared under types.

# Document Definition

A document with a pricing table whose cells are plain strings:

	document: page
	title: Page

	fields:
	  - name: title
	    type: string
	  - name: pricing
	    title: Pricing table
	    type: array
	    of:
	      - type: tableRow

	types:
	  - name: tableRow
	    type: object
	    fields:
	      - name: cells
	        type: array
	        of:
	          - type: string

Cells may also be structured values. Point the cells array at an object type
and every cell in the table becomes { _type: <name>, ... }:

	types:
	  - name: priceCell
	    type: object
	    fields:
	      - { name: amount, type: number }
	      - { name: currency, type: string }

# Table Shape

ResolveTable inspects a field once and derives the row type name, the name of
the field that holds a row's cells, and the cell type. A field that is not an
array of exactly one object type, or whose row type has no array-of-one
string-or-object field, is a configuration error:

	shape, err := doc.ResolveTable("pricing")
	if errors.Is(err, schema.ErrNoCellsField) { ... }

# Parsing

Load documents from YAML:

	doc, err := schema.ParseFile("schemas/page.yaml")
	docs, err := schema.ParseDir("schemas/")

All documents are validated on parse. Invalid documents return an error.
*/
package schema
