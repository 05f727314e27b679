package env

import (
	"fmt"
	"sort"
)

// ObservationSpec is an ordered, immutable set of array specs keyed by name.
type ObservationSpec struct {
	names []string
	specs map[string]ArraySpec
}

// NewObservationSpec builds a spec from the given entries, preserving their
// order. Names must be non-empty and unique.
func NewObservationSpec(entries ...ArraySpec) (ObservationSpec, error) {
	s := ObservationSpec{
		names: make([]string, 0, len(entries)),
		specs: make(map[string]ArraySpec, len(entries)),
	}
	for i, e := range entries {
		if e.Name == "" {
			return ObservationSpec{}, fmt.Errorf("observation spec entry %d has an empty name", i)
		}
		if _, dup := s.specs[e.Name]; dup {
			return ObservationSpec{}, fmt.Errorf("observation spec has duplicate key %q", e.Name)
		}
		if err := checkShape(e.Name, e.Shape); err != nil {
			return ObservationSpec{}, fmt.Errorf("observation %w", err)
		}
		e.Shape = append([]int(nil), e.Shape...)
		s.names = append(s.names, e.Name)
		s.specs[e.Name] = e
	}
	return s, nil
}

// MustObservationSpec is like NewObservationSpec but panics on error.
// Use only with entries known to be valid.
func MustObservationSpec(entries ...ArraySpec) ObservationSpec {
	s, err := NewObservationSpec(entries...)
	if err != nil {
		panic(err)
	}
	return s
}

// Keys returns the spec keys in declaration order.
func (s ObservationSpec) Keys() []string {
	return append([]string(nil), s.names...)
}

// Get returns the spec for name.
func (s ObservationSpec) Get(name string) (ArraySpec, bool) {
	spec, ok := s.specs[name]
	return spec, ok
}

// Len returns the number of keys.
func (s ObservationSpec) Len() int { return len(s.names) }

// Observation is an ordered set of named arrays.
type Observation struct {
	names  []string
	arrays map[string]Array
}

// NewObservation builds an empty observation.
func NewObservation() Observation {
	return Observation{arrays: make(map[string]Array)}
}

// With returns a copy of the observation with name set to arr. Setting an
// existing name replaces the array and keeps its position.
func (o Observation) With(name string, arr Array) Observation {
	out := Observation{
		names:  append([]string(nil), o.names...),
		arrays: make(map[string]Array, len(o.arrays)+1),
	}
	for k, v := range o.arrays {
		out.arrays[k] = v
	}
	if _, ok := out.arrays[name]; !ok {
		out.names = append(out.names, name)
	}
	out.arrays[name] = arr
	return out
}

// Keys returns the observation keys in insertion order.
func (o Observation) Keys() []string {
	return append([]string(nil), o.names...)
}

// SortedKeys returns the keys in lexical order.
func (o Observation) SortedKeys() []string {
	keys := o.Keys()
	sort.Strings(keys)
	return keys
}

// Get returns the array stored under name.
func (o Observation) Get(name string) (Array, bool) {
	arr, ok := o.arrays[name]
	return arr, ok
}

// Len returns the number of arrays.
func (o Observation) Len() int { return len(o.names) }
