package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// member is implemented by the descriptors stored in an OrderedMap.
type member[V any] interface {
	Name() string
	Equal(other V) bool
	validate() error
}

// Entry is a key/value pair used to build an OrderedMap with explicit keys.
type Entry[V member[V]] struct {
	Key   string
	Value V
}

// OrderedMap maps names to descriptors and iterates in insertion order.
// Every key equals the Name of the value stored under it. The zero value is
// an empty map.
type OrderedMap[V member[V]] struct {
	keys   []string
	values map[string]V
}

type (
	Fields  = OrderedMap[FieldDescriptor]
	Args    = OrderedMap[FunctionArgDescriptor]
	Methods = OrderedMap[FunctionDescriptor]
)

func newOrderedMap[V member[V]](entries []Entry[V]) (OrderedMap[V], error) {
	m := OrderedMap[V]{
		keys:   make([]string, 0, len(entries)),
		values: make(map[string]V, len(entries)),
	}
	var errs []error
	for _, e := range entries {
		if err := e.Value.validate(); err != nil {
			errs = append(errs, at(e.Key, err))
			continue
		}
		if name := e.Value.Name(); e.Key != name {
			errs = append(errs, newError(CodeDuplicateName, e.Key,
				fmt.Sprintf("key %q does not match name %q", e.Key, name)))
			continue
		}
		if _, dup := m.values[e.Key]; dup {
			errs = append(errs, newError(CodeDuplicateName, e.Key,
				fmt.Sprintf("name %q declared more than once", e.Key)))
			continue
		}
		m.keys = append(m.keys, e.Key)
		m.values[e.Key] = e.Value
	}
	if len(errs) > 0 {
		return OrderedMap[V]{}, joinErrors(errs)
	}
	return m, nil
}

func entriesOf[V member[V]](values []V) []Entry[V] {
	entries := make([]Entry[V], len(values))
	for i, v := range values {
		entries[i] = Entry[V]{Key: v.Name(), Value: v}
	}
	return entries
}

// NewFields keys each field by its name, keeping argument order.
func NewFields(fields ...FieldDescriptor) (Fields, error) {
	return newOrderedMap(entriesOf(fields))
}

// NewFieldsFromEntries builds fields from explicit key/value pairs.
func NewFieldsFromEntries(entries ...Entry[FieldDescriptor]) (Fields, error) {
	return newOrderedMap(entries)
}

// NewArgs keys each argument by its name, keeping argument order.
func NewArgs(args ...FunctionArgDescriptor) (Args, error) {
	return newOrderedMap(entriesOf(args))
}

// NewArgsFromEntries builds arguments from explicit key/value pairs.
func NewArgsFromEntries(entries ...Entry[FunctionArgDescriptor]) (Args, error) {
	return newOrderedMap(entries)
}

// NewMethods keys each function by its name, keeping argument order.
func NewMethods(methods ...FunctionDescriptor) (Methods, error) {
	return newOrderedMap(entriesOf(methods))
}

// NewMethodsFromEntries builds methods from explicit key/value pairs.
func NewMethodsFromEntries(entries ...Entry[FunctionDescriptor]) (Methods, error) {
	return newOrderedMap(entries)
}

// Len returns the number of entries.
func (m OrderedMap[V]) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m OrderedMap[V]) Keys() []string { return slices.Clone(m.keys) }

// Get returns the value stored under key.
func (m OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Values returns the values in insertion order.
func (m OrderedMap[V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// All iterates over the entries in insertion order.
func (m OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Equal reports whether both maps hold equal values under the same keys in
// the same order.
func (m OrderedMap[V]) Equal(other OrderedMap[V]) bool {
	if !slices.Equal(m.keys, other.keys) {
		return false
	}
	for _, k := range m.keys {
		if !m.values[k].Equal(other.values[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the map as a JSON object whose members appear in
// insertion order.
func (m OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// rawMember is one member of a JSON object in document order.
type rawMember struct {
	Key   string
	Value json.RawMessage
}

// decodeObjectMembers reads a JSON object keeping member order. Repeated keys
// are kept so the map constructors can reject them.
func decodeObjectMembers(data []byte) ([]rawMember, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}
	var members []rawMember
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err = dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		members = append(members, rawMember{Key: key, Value: raw})
	}
	if _, err = dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}

// decodeOrdered decodes a JSON object into an OrderedMap using decode for each
// member value. decode is expected to report errors under the member's name.
func decodeOrdered[V member[V]](data []byte, decode func([]byte) (V, error)) (OrderedMap[V], error) {
	members, err := decodeObjectMembers(data)
	if err != nil {
		return OrderedMap[V]{}, err
	}
	entries := make([]Entry[V], 0, len(members))
	var errs []error
	for _, mem := range members {
		v, err := decode(mem.Value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, Entry[V]{Key: mem.Key, Value: v})
	}
	if len(errs) > 0 {
		return OrderedMap[V]{}, joinErrors(errs)
	}
	return newOrderedMap(entries)
}
