package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile parses a document definition from a YAML file.
func ParseFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses a document definition from YAML bytes.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse yaml: %w", err)
	}

	if err := Validate(doc); err != nil {
		return Document{}, fmt.Errorf("validate document %q: %w", doc.Name, err)
	}

	return doc, nil
}

// ParseDir parses all document definitions from a directory, including subdirectories.
func ParseDir(dir string) ([]Document, error) {
	var docs []Document

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := ParseDir(path)
			if err != nil {
				return nil, err
			}
			docs = append(docs, sub...)
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		doc, err := ParseFile(path)
		if err != nil {
			return nil, err
		}

		docs = append(docs, doc)
	}

	return docs, nil
}

// Validate validates a document definition.
func Validate(doc Document) error {
	var errs []string

	if doc.Name == "" {
		errs = append(errs, "document name is required")
	} else if !isValidIdentifier(doc.Name) {
		errs = append(errs, fmt.Sprintf("document name %q is not a valid identifier", doc.Name))
	}

	if len(doc.Fields) == 0 {
		errs = append(errs, "document must have at least one field")
	}

	// Named types first so references can be checked against them
	types := make(TypeSet, len(doc.Types))
	for i, t := range doc.Types {
		switch {
		case t.Name == "":
			errs = append(errs, fmt.Sprintf("types[%d]: name is required", i))
			continue
		case !isValidIdentifier(t.Name):
			errs = append(errs, fmt.Sprintf("type name %q is not a valid identifier", t.Name))
		case Kind(t.Name).IsBuiltin():
			errs = append(errs, fmt.Sprintf("type name %q shadows a builtin type", t.Name))
		}
		if _, dup := types[t.Name]; dup {
			errs = append(errs, fmt.Sprintf("type %q declared more than once", t.Name))
		}
		types[t.Name] = t
	}

	for _, t := range doc.Types {
		errs = append(errs, validateType("type "+t.Name, t, types)...)
	}

	errs = append(errs, validateFields("document "+doc.Name, doc.Fields, types)...)

	for _, t := range doc.Types {
		if _, err := types.Deref(Type{Kind: Kind(t.Name)}); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// validateFields validates the fields of an object or document.
func validateFields(owner string, fields []Type, types TypeSet) []string {
	var errs []string
	seen := make(map[string]bool, len(fields))

	for i, f := range fields {
		if f.Name == "" {
			errs = append(errs, fmt.Sprintf("%s: fields[%d]: name is required", owner, i))
			continue
		}
		if !isValidIdentifier(f.Name) {
			errs = append(errs, fmt.Sprintf("%s: field name %q is not a valid identifier", owner, f.Name))
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Sprintf("%s: field %q declared more than once", owner, f.Name))
		}
		seen[f.Name] = true

		errs = append(errs, validateType(owner+"."+f.Name, f, types)...)
	}

	return errs
}

// validateType validates an inline type. References are not followed.
func validateType(where string, t Type, types TypeSet) []string {
	var errs []string

	switch {
	case t.Kind == "":
		return []string{fmt.Sprintf("%s: type is required", where)}
	case t.IsReference():
		if _, ok := types[string(t.Kind)]; !ok {
			errs = append(errs, fmt.Sprintf("%s: unknown type %q", where, t.Kind))
		}
		return errs
	}

	switch t.Kind {
	case KindArray:
		if len(t.Of) == 0 {
			errs = append(errs, fmt.Sprintf("%s: array type requires of", where))
		}
		for i, item := range t.Of {
			// Inline objects in arrays need a name; it becomes the item's _type.
			if item.Kind == KindObject && item.Name == "" {
				errs = append(errs, fmt.Sprintf("%s.of[%d]: object items require a name", where, i))
			}
			errs = append(errs, validateType(fmt.Sprintf("%s.of[%d]", where, i), item, types)...)
		}
	case KindObject:
		if len(t.Fields) == 0 {
			errs = append(errs, fmt.Sprintf("%s: object type requires fields", where))
		}
		errs = append(errs, validateFields(where, t.Fields, types)...)
	default:
		if len(t.Of) > 0 || len(t.Fields) > 0 {
			errs = append(errs, fmt.Sprintf("%s: %s type cannot declare of or fields", where, t.Kind))
		}
	}

	return errs
}

// isValidIdentifier checks if a string is a valid identifier.
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		if i == 0 {
			if !isLetter(c) && c != '_' {
				return false
			}
		} else {
			if !isLetter(c) && !isDigit(c) && c != '_' {
				return false
			}
		}
	}

	return true
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
