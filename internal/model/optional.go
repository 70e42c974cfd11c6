package model

import "encoding/json"

// Optional holds a field that only exists for some format versions.
// The zero value is absent.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns a present Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// Value returns the held value and whether it was present
func (o Optional[T]) Value() (T, bool) {
	return o.value, o.present
}

// Present reports whether the field was decoded
func (o Optional[T]) Present() bool {
	return o.present
}

// MarshalJSON renders absent fields as null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// RelativeOffset is an offset measured from a base position rather than
// from the start of the buffer
type RelativeOffset uint32

// Resolve converts the offset into an absolute position
func (o RelativeOffset) Resolve(base int) int {
	return base + int(o)
}
