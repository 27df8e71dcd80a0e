// Package optional holds a JSON field wrapper that tells "absent" apart from
// "null" in partial update bodies.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value records whether a key was present in the decoded object and, when it
// was, whether it carried null. Val is meaningful only when Set && !Null.
type Value[T any] struct {
	Set  bool
	Null bool
	Val  T
}

func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.Null = true
		var zero T
		v.Val = zero
		return nil
	}
	v.Null = false
	return json.Unmarshal(data, &v.Val)
}

// Of builds a present, non-null value.
func Of[T any](val T) Value[T] {
	return Value[T]{Set: true, Val: val}
}

// Null builds a present null value.
func Null[T any]() Value[T] {
	return Value[T]{Set: true, Null: true}
}

// Ptr returns nil for null and a pointer to a copy of Val otherwise.
func (v Value[T]) Ptr() *T {
	if v.Null {
		return nil
	}
	val := v.Val
	return &val
}
