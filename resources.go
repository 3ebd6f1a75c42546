// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package usim

import (
	"context"

	"github.com/MaineKuehn/usim/internal/kernel"
)

// Resources is a named multi-commodity counter pool (spec §4.5): each
// commodity is claimed and released independently, with a single fair
// FIFO queue arbitrating contested claims across all commodities at
// once.
type Resources struct {
	r *kernel.Resources
}

// NewResources builds a Resources pool at full capacity.
func NewResources(capacities map[string]float64) *Resources {
	return &Resources{r: kernel.NewResources(capacities)}
}

// Available reports the current free amount of a commodity.
func (r *Resources) Available(commodity string) float64 { return r.r.Available(commodity) }

// Capacity reports the total amount of a commodity the pool was built
// with.
func (r *Resources) Capacity(commodity string) float64 { return r.r.Capacity(commodity) }

// Claim requests the given per-commodity amounts, blocking until they
// can all be granted at once. With strict set, a claim that cannot be
// satisfied right now fails immediately with ResourcesUnavailable instead
// of queueing.
func (r *Resources) Claim(ctx context.Context, amounts map[string]float64, strict bool) error {
	return r.r.Claim(ctx, amounts, strict)
}

// Release returns amounts to the pool, granting them to queued claims in
// strict arrival order.
func (r *Resources) Release(ctx context.Context, amounts map[string]float64) error {
	return r.r.Release(ctx, amounts)
}

// Borrow is the scoped-acquisition form of Claim/Release: it claims
// amounts, runs fn, and releases amounts again on every exit path from fn
// — including a cancellation or error (spec §5 "Resource discipline").
func (r *Resources) Borrow(ctx context.Context, amounts map[string]float64, strict bool, fn func(ctx context.Context) error) error {
	if err := r.Claim(ctx, amounts, strict); err != nil {
		return err
	}
	defer r.Release(ctx, amounts)
	return fn(ctx)
}

// Consume permanently removes amounts from the pool without ever being
// released (spec §4.5 "produce/consume for permanent transfer"). It never
// blocks: a request that cannot be satisfied right now fails immediately.
func (r *Resources) Consume(ctx context.Context, amounts map[string]float64) error {
	return r.r.Consume(ctx, amounts)
}

// Produce permanently adds amounts to the pool, waking any pending claims
// it now satisfies. A plain Resources pool has no fixed ceiling of its
// own: its tracked capacity grows to match.
func (r *Resources) Produce(ctx context.Context, amounts map[string]float64) error {
	return r.r.Produce(ctx, amounts, false)
}

// Capacities is a Resources pool with a fixed total capacity per
// commodity: Produce above that bound is an error (spec §4.5).
type Capacities struct {
	Resources
}

// NewCapacities builds a Capacities pool at full capacity.
func NewCapacities(capacities map[string]float64) *Capacities {
	return &Capacities{Resources: Resources{r: kernel.NewResources(capacities)}}
}

// Produce adds amounts to the pool, failing with ResourcesUnavailable if
// doing so would exceed the pool's fixed capacity for any commodity.
func (c *Capacities) Produce(ctx context.Context, amounts map[string]float64) error {
	return c.r.Produce(ctx, amounts, true)
}
