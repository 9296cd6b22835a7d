// Package patch provides document patch value types and pure functions to
// compose, re-scope and apply them.
// This package has NO dependencies on I/O or external packages.
package patch

import (
	"strconv"
	"strings"
)

// SegmentKind identifies how a path segment addresses a value.
type SegmentKind int

const (
	// SegmentField addresses an object attribute by name.
	SegmentField SegmentKind = iota

	// SegmentIndex addresses an array item by position.
	// Negative positions count from the end (-1 is the last item).
	SegmentIndex

	// SegmentKey addresses an array item by its _key attribute.
	SegmentKey
)

// KeyAttr is the attribute array items are keyed by.
const KeyAttr = "_key"

// TypeAttr is the attribute structured values carry their type name in.
const TypeAttr = "_type"

// Segment is one step of a path (immutable value type).
type Segment struct {
	Kind  SegmentKind
	Field string
	Index int
	Key   string
}

// Field returns a segment addressing an object attribute.
func Field(name string) Segment {
	return Segment{Kind: SegmentField, Field: name}
}

// Index returns a segment addressing an array item by position.
func Index(i int) Segment {
	return Segment{Kind: SegmentIndex, Index: i}
}

// Key returns a segment addressing an array item by key.
func Key(key string) Segment {
	return Segment{Kind: SegmentKey, Key: key}
}

// String returns the segment in path notation.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	case SegmentKey:
		return `[_key==` + strconv.Quote(s.Key) + `]`
	default:
		return s.Field
	}
}

// Path addresses a value inside a document. An empty path addresses the
// whole value the patch is applied to.
type Path []Segment

// String returns the path in dotted notation, e.g. pricing[2].cells[5].amount.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.Kind == SegmentField && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Prefix returns a new path with seg prepended. p is not modified.
func (p Path) Prefix(seg Segment) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, seg)
	return append(out, p...)
}

// Equal reports whether two paths address the same value.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
