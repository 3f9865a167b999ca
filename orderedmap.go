package metaextractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"

	"github.com/goccy/go-yaml"
)

// OrderedMap is a string-keyed map that remembers insertion order.
// Catalog enumeration order must survive serialization (the emitted
// documents are diffed across runs), and Go maps do not guarantee any
// order, so table and foreign-key mappings use this type instead.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty ordered map.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{
		keys:   []string{},
		values: map[string]V{},
	}
}

// Set inserts or replaces a value. A replaced key keeps its original
// position.
func (m *OrderedMap[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = map[string]V{}
	}

	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}

	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	value, ok := m.values[key]
	return value, ok
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	return slices.Clone(m.keys)
}

// All iterates entries in insertion order.
func (m *OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, key := range m.keys {
			if !yield(key, m.values[key]) {
				return
			}
		}
	}
}

// MarshalJSON emits a JSON object with keys in insertion order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyData, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		buf.Write(keyData)
		buf.WriteByte(':')

		valueData, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}

		buf.Write(valueData)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, recording key order as it streams.
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil { // JSON null leaves the map empty
		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: %v", ErrExpectedMapping, tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("%w: %v", ErrInvalidMapKey, keyTok)
		}

		var value V
		if err := dec.Decode(&value); err != nil {
			return err
		}

		m.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	return nil
}

// MarshalYAML emits a yaml.MapSlice so goccy keeps insertion order.
func (m *OrderedMap[V]) MarshalYAML() (any, error) {
	items := make(yaml.MapSlice, 0, len(m.keys))
	for _, key := range m.keys {
		items = append(items, yaml.MapItem{Key: key, Value: m.values[key]})
	}

	return items, nil
}

// UnmarshalYAML reads a YAML mapping node. UseOrderedMap keeps nested
// mappings ordered so re-marshaling an entry value does not scramble it.
func (m *OrderedMap[V]) UnmarshalYAML(data []byte) error {
	var items yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(data, &items, yaml.UseOrderedMap()); err != nil {
		return err
	}

	for _, item := range items {
		key, ok := item.Key.(string)
		if !ok {
			return fmt.Errorf("%w: %v", ErrInvalidMapKey, item.Key)
		}

		raw, err := yaml.Marshal(item.Value)
		if err != nil {
			return err
		}

		var value V
		if err := yaml.Unmarshal(raw, &value); err != nil {
			return err
		}

		m.Set(key, value)
	}

	return nil
}
