package patch

// Type is the kind of a patch primitive.
type Type string

const (
	TypeSet    Type = "set"
	TypeUnset  Type = "unset"
	TypeInsert Type = "insert"
)

// Position anchors inserted items relative to the item a path addresses.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

// Op is a single patch primitive (immutable value type).
type Op struct {
	Type     Type
	Path     Path
	Value    any      // set only
	Position Position // insert only
	Items    []any    // insert only
}

// Set replaces the value at path.
func Set(value any, path ...Segment) Op {
	return Op{Type: TypeSet, Path: Path(path), Value: value}
}

// Unset removes the value at path.
func Unset(path ...Segment) Op {
	return Op{Type: TypeUnset, Path: Path(path)}
}

// Insert places items before or after the array item at path.
func Insert(items []any, pos Position, path ...Segment) Op {
	return Op{Type: TypeInsert, Path: Path(path), Position: pos, Items: items}
}

// Prefix returns a copy of the op scoped one level deeper in the document.
func (o Op) Prefix(seg Segment) Op {
	o.Path = o.Path.Prefix(seg)
	return o
}

// Event is an ordered sequence of primitives applied atomically by the host.
type Event []Op

// From creates an event from the given primitives.
func From(ops ...Op) Event {
	return Event(ops)
}

// Prefix returns a copy of the event with every primitive scoped under seg.
func (e Event) Prefix(seg Segment) Event {
	out := make(Event, len(e))
	for i, op := range e {
		out[i] = op.Prefix(seg)
	}
	return out
}

// PrefixAll re-scopes the event by folding segs over it, innermost first.
// PrefixAll(Index(5), Field("cells"), Index(2)) turns path [a] into
// [2, cells, 5, a].
func (e Event) PrefixAll(segs ...Segment) Event {
	out := append(Event(nil), e...)
	for _, seg := range segs {
		out = out.Prefix(seg)
	}
	return out
}

// IsEmpty reports whether the event carries no primitives.
func (e Event) IsEmpty() bool {
	return len(e) == 0
}

// Types returns the primitive types in order, for logging and metrics.
func (e Event) Types() []string {
	types := make([]string, len(e))
	for i, op := range e {
		types[i] = string(op.Type)
	}
	return types
}
