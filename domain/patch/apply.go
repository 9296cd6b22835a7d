package patch

import (
	"errors"
	"fmt"
)

var (
	// ErrPathNotFound indicates a path addresses a value that does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrTypeMismatch indicates a path segment does not fit the value it addresses
	// (e.g. a field segment on an array).
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidInsert indicates an insert whose path does not end in an array item.
	ErrInvalidInsert = errors.New("invalid insert")
)

// Apply applies the event to a JSON-like document value (map[string]any,
// []any, strings, numbers, booleans, nil) and returns the new value.
// The input is never modified. Either every primitive applies or the
// first error is returned.
//
// A nil result means the value is absent.
func Apply(doc any, e Event) (any, error) {
	out := doc
	for i, op := range e {
		next, err := applyOp(out, op)
		if err != nil {
			return doc, fmt.Errorf("op %d (%s %s): %w", i, op.Type, op.Path, err)
		}
		out = next
	}
	return out, nil
}

// Get returns the value at path.
func Get(doc any, path Path) (any, bool) {
	node := doc
	for _, seg := range path {
		switch seg.Kind {
		case SegmentField:
			m, ok := node.(map[string]any)
			if !ok {
				return nil, false
			}
			node, ok = m[seg.Field]
			if !ok {
				return nil, false
			}
		default:
			arr, ok := node.([]any)
			if !ok {
				return nil, false
			}
			i, ok := itemIndex(arr, seg)
			if !ok {
				return nil, false
			}
			node = arr[i]
		}
	}
	return node, true
}

func applyOp(doc any, op Op) (any, error) {
	switch op.Type {
	case TypeSet:
		return update(doc, op.Path, true, func(any) (any, error) {
			return op.Value, nil
		})

	case TypeUnset:
		if len(op.Path) == 0 {
			return nil, nil
		}
		last := op.Path[len(op.Path)-1]
		out, err := update(doc, op.Path[:len(op.Path)-1], false, func(parent any) (any, error) {
			return remove(parent, last)
		})
		if errors.Is(err, ErrPathNotFound) {
			return doc, nil
		}
		return out, err

	case TypeInsert:
		if len(op.Path) == 0 {
			return nil, fmt.Errorf("%w: empty path", ErrInvalidInsert)
		}
		last := op.Path[len(op.Path)-1]
		if last.Kind == SegmentField {
			return nil, fmt.Errorf("%w: path must end in an array item", ErrInvalidInsert)
		}
		if op.Position != Before && op.Position != After {
			return nil, fmt.Errorf("%w: position %q", ErrInvalidInsert, op.Position)
		}
		return update(doc, op.Path[:len(op.Path)-1], false, func(parent any) (any, error) {
			return insertItems(parent, last, op.Position, op.Items)
		})

	default:
		return nil, fmt.Errorf("unknown op type %q", op.Type)
	}
}

// update rebuilds the values along path, calling fn with the value at the
// end of it. With create set, missing object attributes are created.
func update(node any, path Path, create bool, fn func(any) (any, error)) (any, error) {
	if len(path) == 0 {
		return fn(node)
	}

	seg := path[0]
	switch seg.Kind {
	case SegmentField:
		m, ok := node.(map[string]any)
		if !ok {
			if node != nil || !create {
				return nil, notFoundOrMismatch(node, seg)
			}
			m = map[string]any{}
		}
		child, exists := m[seg.Field]
		if !exists && !create {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, seg)
		}
		newChild, err := update(child, path[1:], create, fn)
		if err != nil {
			return nil, err
		}
		out := copyMap(m)
		out[seg.Field] = newChild
		return out, nil

	default:
		arr, ok := node.([]any)
		if !ok {
			return nil, notFoundOrMismatch(node, seg)
		}
		i, ok := itemIndex(arr, seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, seg)
		}
		newChild, err := update(arr[i], path[1:], create, fn)
		if err != nil {
			return nil, err
		}
		out := append([]any(nil), arr...)
		out[i] = newChild
		return out, nil
	}
}

func remove(parent any, seg Segment) (any, error) {
	switch seg.Kind {
	case SegmentField:
		m, ok := parent.(map[string]any)
		if !ok {
			return nil, notFoundOrMismatch(parent, seg)
		}
		if _, exists := m[seg.Field]; !exists {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, seg)
		}
		out := copyMap(m)
		delete(out, seg.Field)
		return out, nil

	default:
		arr, ok := parent.([]any)
		if !ok {
			return nil, notFoundOrMismatch(parent, seg)
		}
		i, ok := itemIndex(arr, seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, seg)
		}
		out := make([]any, 0, len(arr)-1)
		out = append(out, arr[:i]...)
		return append(out, arr[i+1:]...), nil
	}
}

func insertItems(parent any, seg Segment, pos Position, items []any) (any, error) {
	arr, ok := parent.([]any)
	if !ok {
		return nil, notFoundOrMismatch(parent, seg)
	}
	i, ok := itemIndex(arr, seg)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, seg)
	}
	if pos == After {
		i++
	}

	out := make([]any, 0, len(arr)+len(items))
	out = append(out, arr[:i]...)
	out = append(out, items...)
	return append(out, arr[i:]...), nil
}

// itemIndex resolves an index or key segment against an array.
func itemIndex(arr []any, seg Segment) (int, bool) {
	switch seg.Kind {
	case SegmentIndex:
		i := seg.Index
		if i < 0 {
			i += len(arr)
		}
		return i, i >= 0 && i < len(arr)
	case SegmentKey:
		for i, item := range arr {
			if m, ok := item.(map[string]any); ok && m[KeyAttr] == seg.Key {
				return i, true
			}
		}
	}
	return 0, false
}

func notFoundOrMismatch(node any, seg Segment) error {
	if node == nil {
		return fmt.Errorf("%w: %s", ErrPathNotFound, seg)
	}
	return fmt.Errorf("%w: %s on %T", ErrTypeMismatch, seg, node)
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ApplyObject applies the event to a document body. Unsetting the root
// leaves an empty body; any other non-object result is a type mismatch.
func ApplyObject(body map[string]any, e Event) (map[string]any, error) {
	out, err := Apply(body, e)
	if err != nil {
		return nil, err
	}
	switch v := out.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, fmt.Errorf("document body must be an object, got %T: %w", out, ErrTypeMismatch)
	}
}
