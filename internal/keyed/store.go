// Package keyed implements the text key/value tag model shared by Vorbis
// comments, APE items, RIFF INFO chunks, and AIFF text chunks.
package keyed

import (
	"iter"
	"slices"
	"strings"
)

// Item is one stored entry.
type Item struct {
	Key   string
	Value string
}

// Store is an ordered multi-map of text items.
//
// Keys compare case-insensitively, matching Vorbis and APE rules; the
// spelling of the first insertion is kept. Order is preserved so that
// unchanged files serialize back byte-for-byte.
type Store struct {
	items []Item
}

// NewStore creates a store from existing items.
func NewStore(items ...Item) *Store {
	return &Store{items: slices.Clone(items)}
}

// All returns an iterator over every item in order.
//
// Example:
//
//	for key, value := range store.All() {
//		fmt.Printf("%s=%s\n", key, value)
//	}
func (s *Store) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, it := range s.items {
			if !yield(it.Key, it.Value) {
				return
			}
		}
	}
}

// Items returns a copy of the stored items.
func (s *Store) Items() []Item {
	return slices.Clone(s.items)
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.items)
}

// Get retrieves every value stored under key.
func (s *Store) Get(key string) []string {
	var out []string
	for _, it := range s.items {
		if strings.EqualFold(it.Key, key) {
			out = append(out, it.Value)
		}
	}
	return out
}

// First returns the first value stored under key.
func (s *Store) First(key string) (string, bool) {
	for _, it := range s.items {
		if strings.EqualFold(it.Key, key) {
			return it.Value, true
		}
	}
	return "", false
}

// FirstOf tries each key in turn and returns the first value found.
func (s *Store) FirstOf(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := s.First(k); ok {
			return v, true
		}
	}
	return "", false
}

// Set replaces every value of key. The new values take the position of the
// first existing entry, or are appended. No values removes the key.
func (s *Store) Set(key string, values ...string) {
	pos := slices.IndexFunc(s.items, func(it Item) bool { return strings.EqualFold(it.Key, key) })
	s.Delete(key)
	if len(values) == 0 {
		return
	}
	added := make([]Item, len(values))
	for i, v := range values {
		added[i] = Item{Key: key, Value: v}
	}
	if pos < 0 || pos > len(s.items) {
		s.items = append(s.items, added...)
		return
	}
	s.items = slices.Insert(s.items, pos, added...)
}

// Add appends one value without touching existing ones.
func (s *Store) Add(key, value string) {
	s.items = append(s.items, Item{Key: key, Value: value})
}

// Delete removes every value of key.
func (s *Store) Delete(key string) {
	s.items = slices.DeleteFunc(s.items, func(it Item) bool { return strings.EqualFold(it.Key, key) })
}

// Clone returns an independent copy.
func (s *Store) Clone() *Store {
	return NewStore(s.items...)
}
