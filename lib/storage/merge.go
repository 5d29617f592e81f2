package storage

import (
	"fmt"
	"github.com/ValentinKolb/kvfacade/lib/future"
	"github.com/ValentinKolb/kvfacade/lib/value"
)

// Insert merges v into the value stored at key and writes the result back.
// An absent key is treated as empty. See Merge for the rules.
//
// The read and the write are separate backend calls. A concurrent write to
// the same key between them is overwritten.
func (s *Storage) Insert(key string, v any) *future.Future[bool] {
	if key == "" {
		return reject[bool]("insert", invalidArgument("insert", "key must not be empty"))
	}

	incoming, err := value.Normalize(v)
	if err != nil {
		return reject[bool]("insert", invalidArgument("insert", "%v", err))
	}

	return s.modify("insert", key, func(existing any) (any, bool, error) {
		merged, err := Merge(existing, incoming)
		if err != nil {
			return nil, false, err
		}
		return merged, true, nil
	})
}

// Merge combines an existing and an incoming value. Both are expected in
// decoded form (see value.Decode and value.Normalize). The first matching
// rule wins:
//
//  1. an empty operand yields the other one
//  2. two strings are concatenated
//  3. two records are unioned, incoming fields win
//  4. an array absorbs another array (append all) or a single value of
//     the same JSON type as its first element
//
// Every other combination fails with a TypeMismatch error.
func Merge(existing, incoming any) (any, error) {
	ek, ik := value.Classify(existing), value.Classify(incoming)

	switch {
	case ek == value.KindEmpty:
		return incoming, nil

	case ik == value.KindEmpty:
		return existing, nil

	case ek == value.KindScalar && ik == value.KindScalar:
		a, okA := existing.(string)
		b, okB := incoming.(string)
		if okA && okB {
			return a + b, nil
		}

	case ek == value.KindRecord && ik == value.KindRecord:
		a, okA := existing.(map[string]any)
		b, okB := incoming.(map[string]any)
		if okA && okB {
			return union(a, b), nil
		}

	case ek == value.KindCollection:
		items, ok := existing.([]any)
		if !ok {
			break
		}
		if more, ok := incoming.([]any); ok {
			return append(append(make([]any, 0, len(items)+len(more)), items...), more...), nil
		}
		if value.JSONType(items[0]) == value.JSONType(incoming) {
			return append(append(make([]any, 0, len(items)+1), items...), incoming), nil
		}
	}

	return nil, &Error{
		Code:     RetCTypeMismatch,
		Msg:      fmt.Sprintf("cannot merge %s (%s) into %s (%s)", ik, value.JSONType(incoming), ek, value.JSONType(existing)),
		Existing: ek,
		Incoming: ik,
	}
}

// union returns a new record with the fields of a overlaid by the fields of b
func union(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
