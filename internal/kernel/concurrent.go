// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package kernel

import (
	"reflect"

	"github.com/hashicorp/go-multierror"
)

// Concurrent is the aggregate exception a Scope raises when one or more
// children fail (spec §4.4). It is built on
// hashicorp/go-multierror for the ordered collection of inner failures,
// with μSim's own type-set matcher layered on top in place of a literal
// generic `Concurrent[E1,...,En]` type (Design Notes §9: Go has no
// variadic type parameters to express that directly).
type Concurrent struct {
	inner *multierror.Error
}

// newConcurrent builds a Concurrent from an ordered slice of child
// failures. The slice must be non-empty; a Scope wraps even a single
// child failure in one.
func newConcurrent(errs []error) *Concurrent {
	c := &Concurrent{inner: &multierror.Error{}}
	for _, e := range errs {
		c.inner = multierror.Append(c.inner, e)
	}
	return c
}

func (c *Concurrent) Error() string { return c.inner.Error() }

// Errors returns the ordered set of inner exceptions, in the order they
// were collected by the owning Scope.
func (c *Concurrent) Errors() []error {
	out := make([]error, len(c.inner.Errors))
	copy(out, c.inner.Errors)
	return out
}

// Flattened removes nested Concurrent layers (spec §4.4: "flattened()
// that removes nested Concurrent layers"). Nesting is never collapsed
// automatically — spec §9 Open Questions: "the source does not
// auto-flatten; treat this as intended."
func (c *Concurrent) Flattened() *Concurrent {
	var flat []error
	var walk func(err error)
	walk = func(err error) {
		if nested, ok := err.(*Concurrent); ok {
			for _, e := range nested.Errors() {
				walk(e)
			}
			return
		}
		flat = append(flat, err)
	}
	for _, e := range c.Errors() {
		walk(e)
	}
	return newConcurrent(flat)
}

// Matches implements the type-level selector from spec §4.4.
func (c *Concurrent) Matches(exact bool, types ...error) bool {
	return MatchConcurrent(c, exact, types...)
}

// MatchConcurrent inspects err (expected to be a *Concurrent) against a
// set of sample error values, comparing by dynamic type only (spec's
// "modulo subtyping" is approximated by dynamic-type equality, the
// common case for the sentinel exception types this module defines).
// With exact=true the inner type set must equal {types} precisely
// (Concurrent[E1,...,En]); with exact=false every named type must be
// present but the aggregate may also carry others (Concurrent[E1,...,En,
// ...], "matches supersets"). An empty types list with exact=false always
// matches (Concurrent[...], "matches any").
func MatchConcurrent(err error, exact bool, types ...error) bool {
	c, ok := err.(*Concurrent)
	if !ok {
		return false
	}
	want := make(map[reflect.Type]bool, len(types))
	for _, t := range types {
		want[reflectType(t)] = true
	}
	got := make(map[reflect.Type]bool)
	for _, e := range c.Errors() {
		got[reflectType(e)] = true
	}
	if exact {
		if len(got) != len(want) {
			return false
		}
		for t := range got {
			if !want[t] {
				return false
			}
		}
		return true
	}
	for t := range want {
		if !got[t] {
			return false
		}
	}
	return true
}
