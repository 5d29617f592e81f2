package value

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// --------------------------------------------------------------------------
// Codec
// --------------------------------------------------------------------------

// Encode returns the storable text form of v. Strings are returned unchanged
// so they are not quoted twice, everything else is encoded as JSON.
func Encode(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	if IsString(v) {
		return indirect(reflect.ValueOf(v)).String(), nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cannot encode %T: %w", v, err)
	}
	return string(b), nil
}

// Decode turns stored text back into a logical value. Text holding a JSON
// array or object is parsed into []any or map[string]any. Anything else,
// including malformed JSON, is returned as the original string.
//
// Only structured text is promoted: a string such as "123" or "true" stays
// a string, which keeps Decode(Encode(s)) == s for every string s.
func Decode(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || (trimmed[0] != '[' && trimmed[0] != '{') {
		return s
	}

	var out any
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return s
	}
	return out
}

// Normalize converts a native Go value into the shape Decode produces:
// slices become []any, maps and structs become map[string]any and numbers
// become float64. Strings are returned unchanged, they are never parsed.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	if IsString(v) {
		return indirect(reflect.ValueOf(v)).String(), nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cannot normalize %T: %w", v, err)
	}

	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("cannot normalize %T: %w", v, err)
	}
	return out, nil
}

// AsRecord normalizes v and returns it as a record if it is one.
func AsRecord(v any) (map[string]any, bool) {
	n, err := Normalize(v)
	if err != nil {
		return nil, false
	}
	r, ok := n.(map[string]any)
	return r, ok
}
