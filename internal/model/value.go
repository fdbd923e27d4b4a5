package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Value is a node of a release document: a Scalar, an *Object or an *Array.
type Value interface {
	json.Marshaler
	isValue()
}

// Scalar holds a leaf value (string, number, bool).
type Scalar struct {
	V any
}

func (Scalar) isValue() {}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.V)
}

// String renders the scalar the way it would appear in a flat row.
func (s Scalar) String() string {
	switch v := s.V.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Object is an insertion-ordered JSON object.
type Object struct {
	keys   []string
	fields map[string]Value
}

func (*Object) isValue() {}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

// Set stores v under key, keeping the original position of existing keys.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.fields[key] = v
}

// Delete removes key.
func (o *Object) Delete(key string) {
	if _, ok := o.fields[key]; !ok {
		return
	}

	delete(o.fields, key)

	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)

	return out
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Reorder moves the given keys to the front, in the given order. Missing keys are ignored.
func (o *Object) Reorder(head ...string) {
	ordered := make([]string, 0, len(o.keys))
	seen := make(map[string]bool, len(head))

	for _, k := range head {
		if o.Has(k) && !seen[k] {
			ordered = append(ordered, k)
			seen[k] = true
		}
	}

	for _, k := range o.keys {
		if !seen[k] {
			ordered = append(ordered, k)
		}
	}

	o.keys = ordered
}

// EnsureObject returns the object under key, creating it when absent or not an object.
func (o *Object) EnsureObject(key string) *Object {
	if v, ok := o.fields[key]; ok {
		if child, ok := v.(*Object); ok {
			return child
		}
	}

	child := NewObject()
	o.Set(key, child)

	return child
}

// EnsureArray returns the array under key, creating it when absent or not an array.
func (o *Object) EnsureArray(key string) *Array {
	if v, ok := o.fields[key]; ok {
		if child, ok := v.(*Array); ok {
			return child
		}
	}

	child := &Array{}
	o.Set(key, child)

	return child
}

// Merge copies the fields of other into o. Nested objects are merged recursively;
// anything else is overwritten.
func (o *Object) Merge(other *Object) {
	for _, k := range other.keys {
		incoming := other.fields[k]

		if existing, ok := o.fields[k].(*Object); ok {
			if in, ok := incoming.(*Object); ok {
				existing.Merge(in)
				continue
			}
		}

		o.Set(k, incoming)
	}
}

// MarshalJSON implements json.Marshaler, preserving key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		val, err := o.fields[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Array is an ordered list of values.
type Array struct {
	Items []Value
}

func (*Array) isValue() {}

// Len returns the number of items.
func (a *Array) Len() int {
	return len(a.Items)
}

// Append adds v to the end of the array.
func (a *Array) Append(v Value) {
	a.Items = append(a.Items, v)
}

// Last returns the last item, or nil for an empty array.
func (a *Array) Last() Value {
	if len(a.Items) == 0 {
		return nil
	}

	return a.Items[len(a.Items)-1]
}

// Contains reports whether a scalar equal to s is already present.
func (a *Array) Contains(s Scalar) bool {
	for _, item := range a.Items {
		if sc, ok := item.(Scalar); ok && sc.String() == s.String() {
			return true
		}
	}

	return false
}

// MarshalJSON implements json.Marshaler.
func (a *Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('[')

	for i, item := range a.Items {
		if i > 0 {
			buf.WriteByte(',')
		}

		b, err := item.MarshalJSON()
		if err != nil {
			return nil, err
		}

		buf.Write(b)
	}

	buf.WriteByte(']')

	return buf.Bytes(), nil
}

// IsEmpty reports whether v carries no data: nil, an empty string, or an empty container.
func IsEmpty(v Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case Scalar:
		return IsEmptyRaw(t.V)
	case *Object:
		return t == nil || t.Len() == 0
	case *Array:
		return t == nil || t.Len() == 0
	default:
		return false
	}
}

// IsEmptyRaw reports whether a raw cell value should be skipped.
func IsEmptyRaw(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return len(bytes.TrimSpace(v)) == 0
	default:
		return false
	}
}

// FromRaw converts a raw cell value (as returned by a row source) into a document value.
// It returns false when the value is empty and must not be written.
func FromRaw(raw any) (Value, bool) {
	if IsEmptyRaw(raw) {
		return nil, false
	}

	switch v := raw.(type) {
	case Value:
		return v, true
	case []byte:
		return Scalar{V: string(v)}, true
	case time.Time:
		return Scalar{V: v.UTC().Format(time.RFC3339)}, true
	case *big.Int:
		return Scalar{V: json.Number(v.String())}, true
	case map[string]any:
		obj := NewObject()

		for _, k := range sortedKeys(v) {
			if child, ok := FromRaw(v[k]); ok {
				obj.Set(k, child)
			}
		}

		return obj, true
	case []any:
		arr := &Array{}

		for _, item := range v {
			if child, ok := FromRaw(item); ok {
				arr.Append(child)
			}
		}

		return arr, true
	default:
		return Scalar{V: v}, true
	}
}

// ToPlain converts a document value into plain Go maps and slices.
func ToPlain(v Value) any {
	switch t := v.(type) {
	case Scalar:
		return t.V
	case *Object:
		out := make(map[string]any, t.Len())
		for _, k := range t.keys {
			out[k] = ToPlain(t.fields[k])
		}

		return out
	case *Array:
		out := make([]any, 0, t.Len())
		for _, item := range t.Items {
			out = append(out, ToPlain(item))
		}

		return out
	default:
		return nil
	}
}

// Lookup walks a slash-separated path through objects. Arrays are not traversed.
func Lookup(root *Object, path string) (Value, bool) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return nil, false
	}

	var cur Value = root

	for _, seg := range segments {
		obj, ok := cur.(*Object)
		if !ok {
			return nil, false
		}

		cur, ok = obj.Get(seg)
		if !ok {
			return nil, false
		}
	}

	return cur, true
}
