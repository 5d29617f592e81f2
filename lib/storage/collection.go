package storage

import (
	"github.com/ValentinKolb/kvfacade/lib/backend"
	"github.com/ValentinKolb/kvfacade/lib/future"
	"github.com/ValentinKolb/kvfacade/lib/value"
	"slices"
	"time"
)

// idField identifies a record inside a collection
const idField = "id"

// Find looks up params in the value stored at key.
//
//   - a stored string is returned when it equals params
//   - a stored collection yields its first record matching every field of
//     params, or for a string params its first element loosely equal to it
//   - a stored record is returned when it matches every field of params
//
// No match and an absent key resolve to nil.
func (s *Storage) Find(key string, params any) *future.Future[any] {
	if key == "" {
		return reject[any]("find", invalidArgument("find", "key must not be empty"))
	}

	var (
		text   string
		filter map[string]any
	)
	switch {
	case value.IsString(params):
		n, _ := value.Normalize(params)
		text = n.(string)
	default:
		r, ok := value.AsRecord(params)
		if !ok {
			return reject[any]("find", invalidArgument("find", "params must be a string or a record, got %s", value.JSONType(params)))
		}
		filter = r
	}

	return finish("find", time.Now(), s.adapter.Get(key), func(l backend.Lookup) (any, error) {
		if !l.Loaded {
			return nil, nil
		}

		switch v := value.Decode(l.Value).(type) {
		case string:
			if filter == nil && v == text {
				return v, nil
			}
		case []any:
			for _, item := range v {
				if filter != nil {
					if r, ok := item.(map[string]any); ok && value.Matches(r, filter) {
						return r, nil
					}
				} else if !value.IsRecord(item) && !value.IsArray(item) && value.LooseEqual(item, text) {
					return item, nil
				}
			}
		case map[string]any:
			if filter != nil && value.Matches(v, filter) {
				return v, nil
			}
		}

		return nil, nil
	})
}

// Update replaces the collection element whose id equals the id of
// newRecord and that matches every field of criteria. Protected fields the
// new record omits or leaves empty keep their stored value. It resolves to
// true when an element was replaced; without a match the collection stays
// unchanged.
//
// A string newRecord is decoded first, so JSON text of a record is accepted.
func (s *Storage) Update(key string, criteria any, newRecord any) *future.Future[bool] {
	if key == "" {
		return reject[bool]("update", invalidArgument("update", "key must not be empty"))
	}

	where, ok := value.AsRecord(criteria)
	if !ok {
		return reject[bool]("update", invalidArgument("update", "criteria must be a record, got %s", value.JSONType(criteria)))
	}

	var record map[string]any
	switch {
	case value.IsString(newRecord):
		n, _ := value.Normalize(newRecord)
		record, _ = value.Decode(n.(string)).(map[string]any)
	case value.IsRecord(newRecord):
		if record, ok = value.AsRecord(newRecord); !ok {
			return reject[bool]("update", invalidArgument("update", "new record can't be encoded"))
		}
	default:
		return reject[bool]("update", invalidArgument("update", "new record must be a string or a record, got %s", value.JSONType(newRecord)))
	}

	return s.modify("update", key, func(stored any) (any, bool, error) {
		items, err := collection("update", key, stored)
		if err != nil || items == nil {
			return nil, false, err
		}

		id, ok := record[idField]
		if !ok {
			return nil, false, nil
		}

		i := indexOf(items, func(r map[string]any) bool {
			return value.Matches(r, where) && value.LooseEqual(r[idField], id)
		})
		if i < 0 {
			return nil, false, nil
		}

		items[i] = s.protect(items[i].(map[string]any), record)
		return items, true, nil
	})
}

// Remove deletes the first collection element whose id is loosely equal to
// id, keeping the order of the others. It resolves to true when an element
// was removed.
func (s *Storage) Remove(id any, key string) *future.Future[bool] {
	if key == "" {
		return reject[bool]("remove", invalidArgument("remove", "key must not be empty"))
	}

	return s.modify("remove", key, func(stored any) (any, bool, error) {
		items, err := collection("remove", key, stored)
		if err != nil || items == nil {
			return nil, false, err
		}

		i := indexOf(items, func(r map[string]any) bool {
			return value.LooseEqual(r[idField], id)
		})
		if i < 0 {
			return nil, false, nil
		}
		return slices.Delete(items, i, i+1), true, nil
	})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// collection returns stored as a collection. An absent or empty entry
// yields nil without error, any other non-collection is an InvalidKey error.
func collection(op string, key string, stored any) ([]any, error) {
	switch value.Classify(stored) {
	case value.KindEmpty:
		return nil, nil
	case value.KindCollection:
		return stored.([]any), nil
	default:
		return nil, invalidKey(op, key, stored, "a collection")
	}
}

// indexOf returns the index of the first record with an id that satisfies match
func indexOf(items []any, match func(map[string]any) bool) int {
	return slices.IndexFunc(items, func(item any) bool {
		r, ok := item.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := r[idField]; !ok {
			return false
		}
		return match(r)
	})
}

// protect returns record with the protected fields of stored filled in
// where record omits them or leaves them empty
func (s *Storage) protect(stored, record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	for _, field := range s.opts.ProtectedFields {
		if v, ok := out[field]; ok && !value.IsEmpty(v) {
			continue
		}
		if old, ok := stored[field]; ok {
			out[field] = old
		}
	}
	return out
}
