package rdf

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrURIAlreadyAssigned is returned when a resource URI is set twice.
	// A resource URI is final once assigned.
	ErrURIAlreadyAssigned = errors.New("rdf: resource already has a uri")

	// ErrResourceNotFound is reported by lookups for a missing resource.
	ErrResourceNotFound = errors.New("rdf: resource not found")
)

// Resource is a property bag keyed by predicate IRI. Value order within
// a predicate is preserved; first-value access matters for captions and
// notations.
type Resource struct {
	uri   string
	props map[string][]Value
}

// NewResource creates a resource. An empty uri leaves the resource
// blank; the uri can then be assigned exactly once via SetURI.
func NewResource(uri string) *Resource {
	return &Resource{uri: uri, props: make(map[string][]Value)}
}

func (r *Resource) URI() string { return r.uri }

// IsBlank reports whether the resource has no URI assigned yet.
func (r *Resource) IsBlank() bool { return r.uri == "" }

// SetURI assigns the resource URI. Assigning to a non-blank resource
// fails with ErrURIAlreadyAssigned.
func (r *Resource) SetURI(uri string) error {
	if r.uri != "" {
		return fmt.Errorf("%w: %s", ErrURIAlreadyAssigned, r.uri)
	}
	r.uri = uri
	return nil
}

// Get returns all values for predicate, in insertion order.
func (r *Resource) Get(predicate string) []Value {
	return r.props[predicate]
}

// GetFirst returns the first value for predicate.
func (r *Resource) GetFirst(predicate string) (Value, bool) {
	vals := r.props[predicate]
	if len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

// FirstRaw returns the raw form of the first value for predicate, or ""
// when the predicate is empty.
func (r *Resource) FirstRaw(predicate string) string {
	v, ok := r.GetFirst(predicate)
	if !ok {
		return ""
	}
	return v.Raw()
}

// Has reports whether predicate carries at least one value.
func (r *Resource) Has(predicate string) bool {
	return len(r.props[predicate]) > 0
}

// IsEmpty reports whether predicate carries no value.
func (r *Resource) IsEmpty(predicate string) bool {
	return !r.Has(predicate)
}

// HasInLanguage reports whether predicate has a literal tagged lang.
func (r *Resource) HasInLanguage(predicate, lang string) bool {
	for _, v := range r.props[predicate] {
		if lit, ok := v.(Literal); ok && lit.Lang == lang {
			return true
		}
	}
	return false
}

// FlatValue returns the raw form of the first value for predicate,
// preferring a literal in lang when lang is non-empty.
func (r *Resource) FlatValue(predicate, lang string) string {
	if lang != "" {
		for _, v := range r.props[predicate] {
			if lit, ok := v.(Literal); ok && lit.Lang == lang {
				return lit.Value
			}
		}
	}
	return r.FirstRaw(predicate)
}

// Set replaces all values of predicate with value.
func (r *Resource) Set(predicate string, value Value) {
	r.props[predicate] = []Value{value}
}

// Add appends value to predicate.
func (r *Resource) Add(predicate string, value Value) {
	r.props[predicate] = append(r.props[predicate], value)
}

// Unset removes all values of predicate.
func (r *Resource) Unset(predicate string) {
	delete(r.props, predicate)
}

// Predicates returns the predicate IRIs present, sorted for
// deterministic iteration.
func (r *Resource) Predicates() []string {
	out := make([]string, 0, len(r.props))
	for p := range r.props {
		if len(r.props[p]) > 0 {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
