// Copyright 2026 The μSim Authors.
// Licensed under the AGPLv3, see LICENCE file for details.

package usim

import (
	"context"

	"github.com/MaineKuehn/usim/internal/kernel"
)

// Func is the body of a root or spawned task: a cooperative coroutine
// that suspends by calling Await (directly or via a primitive built on
// it) on the context it is handed.
type Func func(ctx context.Context) error

// RunOption configures a simulation run.
type RunOption func(*runConfig)

type runConfig struct {
	hasTill bool
	till    float64
	debug   bool
}

// Till sets an inclusive upper bound on virtual time: the run halts once
// both queues are drained or virtual time reaches t, whichever comes
// first.
func Till(t float64) RunOption {
	return func(c *runConfig) { c.hasTill = true; c.till = t }
}

// Debug enables the kernel's verbose trace/debug logging of task start,
// resumption and termination; it adds no extra assertions. It never
// changes observable scheduling behaviour.
func Debug() RunOption {
	return func(c *runConfig) { c.debug = true }
}

// Run starts a simulation: each root runs as a non-volatile child of an
// implicit root Scope. It blocks until the run halts, then reports the
// same aggregate outcome a Scope exit would: nil on a clean run, otherwise
// a *Concurrent wrapping every root that failed, even if only one did.
// Re-entering an already-completed Run's Kernel is impossible by
// construction — each call builds a fresh one.
func Run(roots []Func, opts ...RunOption) error {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var kopts []kernel.Option
	if cfg.debug {
		kopts = append(kopts, kernel.WithDebug())
	}
	k := kernel.New(kopts...)

	kroots := make([]kernel.Func, len(roots))
	for i, r := range roots {
		kroots[i] = kernel.Func(r)
	}
	return k.Run(kroots, cfg.hasTill, cfg.till)
}

func currentKernel(ctx context.Context) *kernel.Kernel {
	k, _, ok := kernel.TaskFromContext(ctx)
	if !ok {
		return nil
	}
	return k
}
