// Package value classifies and encodes the values held by the storage façade.
//
// Every value at rest is a string. Non-string values are written as JSON text
// and read back with Decode, which falls back to the raw string whenever the
// text is not a JSON array or object. Decode never fails.
//
// The classifier sorts values into a closed set of kinds:
//
//   - KindEmpty: nil, "", "null", "undefined" (any case), [] and {}
//   - KindScalar: strings, numbers and booleans
//   - KindCollection: arrays
//   - KindRecord: objects (maps with string keys, structs)
//
// The predicates work on decoded JSON as well as on native Go values, so a
// []int and a []any holding float64 values are both collections. Emptiness is
// intentionally loose, the string "null" counts as nothing, and callers
// validating arguments rely on that.
package value
