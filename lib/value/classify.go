package value

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Kind
// --------------------------------------------------------------------------

// Kind is the closed set of shapes a logical value can take.
type Kind uint8

const (
	KindEmpty      Kind = iota // nil, "", "null", "undefined", [] or {}
	KindScalar                 // strings, numbers and booleans
	KindCollection             // ordered sequence (JSON array)
	KindRecord                 // string keyed mapping (JSON object)
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindScalar:
		return "Scalar"
	case KindCollection:
		return "Collection"
	case KindRecord:
		return "Record"
	default:
		return "Unknown"
	}
}

// Classify returns the Kind of v. Emptiness is checked first, so an empty
// array is KindEmpty and not KindCollection.
func Classify(v any) Kind {
	switch {
	case IsEmpty(v):
		return KindEmpty
	case IsArray(v):
		return KindCollection
	case IsRecord(v):
		return KindRecord
	default:
		return KindScalar
	}
}

// --------------------------------------------------------------------------
// Predicates
// --------------------------------------------------------------------------

// IsEmpty reports whether v means "nothing here". This is looser than a
// nil check: the strings "null" and "undefined" (any case) are empty too,
// as are arrays and objects without members.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return true
	}

	switch rv.Kind() {
	case reflect.String:
		s := rv.String()
		return s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "undefined")
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Struct:
		return exportedFields(rv.Type()) == 0
	default:
		return false
	}
}

// IsString reports whether v is a string (including named string types).
func IsString(v any) bool {
	if _, ok := v.(json.Number); ok {
		return false
	}
	rv := indirect(reflect.ValueOf(v))
	return rv.IsValid() && rv.Kind() == reflect.String
}

// IsArray reports whether v is an ordered sequence. Byte slices are not
// arrays, they encode as strings.
func IsArray(v any) bool {
	if _, ok := v.(json.RawMessage); ok {
		return false
	}
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Type().Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}

// IsRecord reports whether v is a string keyed mapping: a map with string
// keys or a struct.
func IsRecord(v any) bool {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Map:
		return rv.Type().Key().Kind() == reflect.String
	case reflect.Struct:
		return true
	default:
		return false
	}
}

// JSONType returns the JSON type name of v: null, string, number, boolean,
// array or object. Two values can be appended to the same array only if
// their JSON types match.
func JSONType(v any) string {
	if v == nil {
		return "null"
	}
	if _, ok := v.(json.Number); ok {
		return "number"
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return "null"
	}

	switch rv.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	}

	switch {
	case IsArray(v):
		return "array"
	case IsRecord(v):
		return "object"
	case rv.Kind() == reflect.Slice:
		return "string" // []byte
	default:
		return rv.Kind().String()
	}
}

// --------------------------------------------------------------------------
// Loose equality
// --------------------------------------------------------------------------

// LooseEqual compares two values the way record ids are compared: values of
// the same JSON type must be deeply equal, while numbers, booleans and
// numeric strings are compared by their numeric value (1 == "1").
func LooseEqual(a, b any) bool {
	na, err := Normalize(a)
	if err != nil {
		return false
	}
	nb, err := Normalize(b)
	if err != nil {
		return false
	}

	if reflect.DeepEqual(na, nb) {
		return true
	}

	ta, tb := JSONType(na), JSONType(nb)
	if ta == tb || !isPrimitive(ta) || !isPrimitive(tb) {
		return false
	}

	fa, okA := toNumber(na)
	fb, okB := toNumber(nb)
	return okA && okB && fa == fb
}

// Matches reports whether every field of filter is loosely equal to the
// same field of record. An empty filter matches every record.
func Matches(record map[string]any, filter map[string]any) bool {
	for field, want := range filter {
		got, ok := record[field]
		if !ok || !LooseEqual(got, want) {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func exportedFields(t reflect.Type) int {
	n := 0
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			n++
		}
	}
	return n
}

func isPrimitive(jsonType string) bool {
	return jsonType == "string" || jsonType == "number" || jsonType == "boolean"
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
