package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a generic type to represent any JSON value.
// This can be nil, a string, a json.Number (or plain Go numeric),
// a bool, an Array, or an *Object.
type Value interface{}

// Array represents a JSON array, which is a slice of Values.
type Array []Value

// Object represents a JSON object with stable key order. Keys iterate in
// insertion order, which is what keeps a flattened field list stable across
// repeated editing sessions of the same document.
type Object struct {
	keys  []string
	items map[string]Value
}

// NewObject creates an empty ordered object.
func NewObject() *Object {
	return &Object{items: make(map[string]Value)}
}

// Len returns the number of keys in the object.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the object's keys in insertion order. The returned slice is
// shared with the object and must not be modified by the caller.
func (o *Object) Keys() []string {
	return o.keys
}

// Get returns the value stored under key, and whether the key exists.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.items[key]
	return v, ok
}

// Set stores a value under key. A new key is appended to the iteration
// order; an existing key keeps its original position.
func (o *Object) Set(key string, v Value) {
	if _, exists := o.items[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.items[key] = v
}

// Delete removes a key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if _, exists := o.items[key]; !exists {
		return false
	}
	delete(o.items, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// MarshalJSON encodes the object with its keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(o.items[key])
		if err != nil {
			return nil, fmt.Errorf("failed to encode value for key %q: %w", key, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FieldType classifies a JSON value into one of the closed set of tags
// produced by TypeOf.
type FieldType string

const (
	TypeNull    FieldType = "null"
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
)

// ParseFieldType converts a string tag back into a FieldType.
func ParseFieldType(s string) (FieldType, bool) {
	switch FieldType(s) {
	case TypeNull, TypeString, TypeNumber, TypeBoolean, TypeObject, TypeArray:
		return FieldType(s), true
	}
	return "", false
}

// FlattenedField is one addressable entry in a flattened document. A field
// list is produced by flatten.Flatten, edited in place by a consumer, and
// handed to unflatten.Unflatten to rebuild the document.
type FlattenedField struct {
	// Path is the full dotted/bracket address, unique within one list.
	Path string
	// Key is the final path segment: an object key, or "[i]" for array
	// elements.
	Key string
	// Value is the value at this address. For object fields and top-level
	// array fields the descendants travel as separate entries.
	Value Value
	// Type is the classification of Value.
	Type FieldType
	// Depth counts the container boundaries between this field and the
	// document root. Root fields have depth 0.
	Depth int
	// ParentPath is the address of the enclosing container, empty only at
	// depth 0.
	ParentPath string
	// IsArrayItem is true when Key is an array index rather than an object
	// key.
	IsArrayItem bool
	// ArrayIndex is the numeric index when IsArrayItem is true.
	ArrayIndex int
}

// MarshalJSON encodes the field with parentPath omitted at depth 0 and
// arrayIndex omitted for non-array items, matching the record layout the
// editing surface exchanges.
func (f FlattenedField) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, "path", f.Path, true); err != nil {
		return nil, err
	}
	if err := writeMember(&buf, "key", f.Key, false); err != nil {
		return nil, err
	}
	if err := writeMember(&buf, "value", f.Value, false); err != nil {
		return nil, err
	}
	if err := writeMember(&buf, "type", f.Type, false); err != nil {
		return nil, err
	}
	if err := writeMember(&buf, "depth", f.Depth, false); err != nil {
		return nil, err
	}
	if f.ParentPath != "" {
		if err := writeMember(&buf, "parentPath", f.ParentPath, false); err != nil {
			return nil, err
		}
	}
	if err := writeMember(&buf, "isArrayItem", f.IsArrayItem, false); err != nil {
		return nil, err
	}
	if f.IsArrayItem {
		if err := writeMember(&buf, "arrayIndex", f.ArrayIndex, false); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, name string, v interface{}, first bool) error {
	if !first {
		buf.WriteByte(',')
	}
	nameBytes, err := json.Marshal(name)
	if err != nil {
		return err
	}
	buf.Write(nameBytes)
	buf.WriteByte(':')
	valBytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode field member %q: %w", name, err)
	}
	buf.Write(valBytes)
	return nil
}

// Equal reports deep structural equality of two values: same container
// kinds, same object key order, same primitive values.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case *Object:
		bv, ok := b.(*Object)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		bKeys := bv.Keys()
		for i, key := range av.Keys() {
			if key != bKeys[i] {
				return false
			}
			left, _ := av.Get(key)
			right, _ := bv.Get(key)
			if !Equal(left, right) {
				return false
			}
		}
		return true
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
