// Package flatmap implements the ordered dotted-key string map that is the
// pipeline's canonical working representation of translatable text.
//
// A FlatMap behaves like a JSON object whose keys are dotted i18n keys
// ("footer.save") and whose values are source-language strings. Unlike a
// plain Go map it preserves insertion order, which keeps translation batches
// aligned with design-tree traversal order and makes cache snapshots diff
// cleanly in version control.
package flatmap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlatMap is an insertion-ordered map from dotted key to string value.
// The zero value is not usable; call New.
type FlatMap struct {
	keys   []string
	values map[string]string
}

// New returns an empty FlatMap.
func New() *FlatMap {
	return &FlatMap{values: make(map[string]string)}
}

// Set assigns value to key. A new key is appended to the iteration order;
// an existing key keeps its original position.
func (m *FlatMap) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it is present.
func (m *FlatMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *FlatMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes key, preserving the relative order of the remaining keys.
func (m *FlatMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *FlatMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m *FlatMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *FlatMap) Range(fn func(key, value string) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (m *FlatMap) Clone() *FlatMap {
	out := New()
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}
	return out
}

// Slice returns a new FlatMap holding the entries for the given keys, in the
// given order. Keys absent from m are skipped.
func (m *FlatMap) Slice(keys []string) *FlatMap {
	out := New()
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out.Set(k, v)
		}
	}
	return out
}

// Equal reports whether m and other hold the same entries in the same order.
func (m *FlatMap) Equal(other *FlatMap) bool {
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k || other.values[k] != m.values[k] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the map as a JSON object preserving insertion order.
func (m *FlatMap) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(value)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string values, preserving the key
// order of the document. Non-string values are rejected.
func (m *FlatMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected {, got %v", t)
	}

	m.keys = nil
	m.values = make(map[string]string)

	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %T", kt)
		}

		vt, err := dec.Token()
		if err != nil {
			return err
		}
		value, ok := vt.(string)
		if !ok {
			return fmt.Errorf("expected string value for key %q, got %T", key, vt)
		}

		m.Set(key, value)
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
