package schema

// Kind is the declared kind of a type. Any value that is not a builtin kind
// is a reference to a named type.
type Kind string

const (
	// Primitive kinds
	KindString  Kind = "string"
	KindText    Kind = "text" // multi-line string, stored as a JSON string
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"

	// Container kinds
	KindObject Kind = "object" // Requires Fields
	KindArray  Kind = "array"  // Requires Of
)

// Type describes a value in a document. Fields of an object are Types whose
// Name is the field name.
type Type struct {
	// Name is the field name (for fields) or the type name (for named and
	// inline object types).
	Name string `yaml:"name,omitempty"`

	// Title is a human readable label.
	Title string `yaml:"title,omitempty"`

	// Description for documentation.
	Description string `yaml:"description,omitempty"`

	// Kind is a builtin kind or the name of a type declared in the document.
	Kind Kind `yaml:"type"`

	// Of lists the item types of an array.
	Of []Type `yaml:"of,omitempty"`

	// Fields lists the fields of an object.
	Fields []Type `yaml:"fields,omitempty"`
}

// IsBuiltin reports whether the kind is one of the builtin kinds.
func (k Kind) IsBuiltin() bool {
	switch k {
	case KindString, KindText, KindNumber, KindBoolean, KindObject, KindArray:
		return true
	default:
		return false
	}
}

// JSONType returns the JSON type a value of this kind is stored as.
// References return an empty string; dereference them first.
func (k Kind) JSONType() string {
	switch k {
	case KindString, KindText:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return ""
	}
}

// IsReference reports whether the type refers to a named type.
func (t Type) IsReference() bool {
	return t.Kind != "" && !t.Kind.IsBuiltin()
}

// IsString reports whether values of the type are stored as strings.
func (t Type) IsString() bool {
	return t.Kind.JSONType() == "string"
}

// IsObject reports whether values of the type are objects.
func (t Type) IsObject() bool {
	return t.Kind == KindObject
}

// IsArray reports whether values of the type are arrays.
func (t Type) IsArray() bool {
	return t.Kind == KindArray
}

// TypeName returns the name values of this type carry in their _type
// attribute: the declared name, or the kind for unnamed primitives.
func (t Type) TypeName() string {
	if t.Name != "" {
		return t.Name
	}
	return string(t.Kind)
}

// Field returns the object field with the given name.
func (t Type) Field(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Type{}, false
}
