package suite

import "github.com/roach88/suitecheck/internal/env"

// StaticModel is a Model backed by fixed per-category name tables.
type StaticModel struct {
	name  string
	names map[env.Category][]string
}

// NewStaticModel builds a model. Categories missing from names have no
// entities. An empty string in a name table marks an unnamed entity.
func NewStaticModel(name string, names map[env.Category][]string) *StaticModel {
	cp := make(map[env.Category][]string, len(names))
	for c, n := range names {
		cp[c] = append([]string(nil), n...)
	}
	return &StaticModel{name: name, names: cp}
}

// Name returns the model name.
func (m *StaticModel) Name() string { return m.name }

// Count returns the number of entities in category c.
func (m *StaticModel) Count(c env.Category) int { return len(m.names[c]) }

// ID2Name returns the name of entity idx in category c, or "" when the
// index is out of range or the entity is unnamed.
func (m *StaticModel) ID2Name(c env.Category, idx int) string {
	n := m.names[c]
	if idx < 0 || idx >= len(n) {
		return ""
	}
	return n[idx]
}
