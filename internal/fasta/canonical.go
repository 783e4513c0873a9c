package fasta

import "fmt"

// CanonicalPrefix is the stem for canonical query ids handed to external
// tools. The original ids are restored in all outputs.
const CanonicalPrefix = "user_query___seq_"

// IDMap is a bijection between original and canonical query ids.
type IDMap struct {
	toCanonical map[string]string
	toOriginal  map[string]string
}

// Canonical returns the canonical id for an original id.
func (m *IDMap) Canonical(original string) (string, bool) {
	id, ok := m.toCanonical[original]
	return id, ok
}

// Original returns the original id for a canonical id.
func (m *IDMap) Original(canonical string) (string, bool) {
	id, ok := m.toOriginal[canonical]
	return id, ok
}

// Canonicalize renames every record to user_query___seq_<n> by stable
// numbering in insertion order, returning the renamed store and the id map.
func Canonicalize(s *Store) (*Store, *IDMap) {
	out := NewStore()
	m := &IDMap{
		toCanonical: make(map[string]string, s.Len()),
		toOriginal:  make(map[string]string, s.Len()),
	}
	for i, id := range s.IDs() {
		canonical := fmt.Sprintf("%s%d", CanonicalPrefix, i+1)
		m.toCanonical[id] = canonical
		m.toOriginal[canonical] = id
		// Add cannot fail: canonical ids are unique by construction.
		out.Add(&Record{ID: canonical, Seq: s.Get(id).Seq})
	}
	return out, m
}
