package schema

import "fmt"

// maxDerefDepth bounds reference chains (a -> b -> c ...).
const maxDerefDepth = 16

// Document is the root definition of an editable document type.
type Document struct {
	// Name of the document type (e.g., "page").
	Name string `yaml:"document"`

	// Title is a human readable label.
	Title string `yaml:"title,omitempty"`

	// Description for documentation.
	Description string `yaml:"description,omitempty"`

	// Fields are the top-level fields of the document.
	Fields []Type `yaml:"fields"`

	// Types declares named types that fields and items may refer to.
	Types []Type `yaml:"types,omitempty"`
}

// TypeSet indexes named types by name.
type TypeSet map[string]Type

// TypeSet returns the document's named types indexed by name.
func (d Document) TypeSet() TypeSet {
	set := make(TypeSet, len(d.Types))
	for _, t := range d.Types {
		set[t.Name] = t
	}
	return set
}

// Field returns the top-level field with the given name.
func (d Document) Field(name string) (Type, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Type{}, false
}

// Deref follows references until it reaches a builtin kind.
// The returned type carries the name of the last named type in the chain;
// a title set on the referring type is kept.
func (s TypeSet) Deref(t Type) (Type, error) {
	seen := make(map[Kind]bool)
	out := t
	for depth := 0; out.IsReference(); depth++ {
		if depth >= maxDerefDepth || seen[out.Kind] {
			return Type{}, fmt.Errorf("type %q: reference cycle", t.Kind)
		}
		seen[out.Kind] = true

		named, ok := s[string(out.Kind)]
		if !ok {
			return Type{}, fmt.Errorf("unknown type %q", out.Kind)
		}
		title := out.Title
		out = named
		if title != "" {
			out.Title = title
		}
	}
	return out, nil
}
