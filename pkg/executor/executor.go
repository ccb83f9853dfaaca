/*
Copyright © 2022 Bartłomiej Święcki (byo)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package executor gives pkg/streamassembler one place to reason about
// bounded concurrent task scheduling, instead of spinning up its own
// worker pool.
package executor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultCreateLimit is the number of blob encryption tasks allowed to
// run concurrently when a caller doesn't pick its own limit.
const DefaultCreateLimit = 20

// Executor runs blocking work under a concurrency bound, blocking the
// caller of SubmitBlocking until a slot frees up.
type Executor interface {
	// SubmitBlocking schedules f, blocking until a slot is available; it
	// does not stop waiting when ctx is done. If ctx is done by the time
	// the task starts, f is not run and the task's error is ctx.Err().
	// The error from f is the same error returned to the eventual Wait
	// of the underlying task group.
	SubmitBlocking(ctx context.Context, f func() error) error
	// Wait blocks until every submitted task has completed, returning
	// the first non-nil error any of them produced.
	Wait() error
}

// pool is an Executor backed by an errgroup.Group with a fixed
// concurrency limit — the idiomatic Go analogue of awaiting a batch of
// at most N in-flight tasks.
type pool struct {
	g *errgroup.Group
}

// New returns an Executor that never runs more than limit tasks at once.
// A limit <= 0 means unbounded, matching errgroup.SetLimit's own
// contract.
func New(limit int) Executor {
	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return &pool{g: g}
}

func (p *pool) SubmitBlocking(ctx context.Context, f func() error) error {
	p.g.Go(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		return f()
	})
	return nil
}

func (p *pool) Wait() error {
	return p.g.Wait()
}
