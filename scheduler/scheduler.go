// MIT License
//
// Copyright 2019 Burst Apps Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

// Package scheduler decouples where work runs from what the work does.
//
// Operations are classified by Class. An Assigner maps each Class to an
// Executor, which runs submitted tasks. Results are delivered through a
// Future, for a single result, or a Stream, for a live sequence.
package scheduler

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Class is the kind of work submitted to an Executor.
type Class int

const (
	// NetworkCall is a single request and response exchange with a node.
	NetworkCall Class = iota
	// Subscription is a long lived task which emits results until it is
	// cancelled.
	Subscription
)

func (c Class) String() string {
	switch c {
	case NetworkCall:
		return "network call"
	case Subscription:
		return "subscription"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Executor runs tasks. Submit must not block the caller until the task
// completes, unless documented otherwise. The ctx passed to the task is the
// ctx passed to Submit.
type Executor interface {
	Submit(ctx context.Context, task func(context.Context))
}

// ExecutorFunc adapts a function to an Executor.
type ExecutorFunc func(ctx context.Context, task func(context.Context))

// Submit calls f(ctx, task).
func (f ExecutorFunc) Submit(ctx context.Context, task func(context.Context)) {
	f(ctx, task)
}

// Assigner selects the Executor for each Class. Implementations must be safe
// for concurrent use.
type Assigner interface {
	Assign(Class) Executor
}

// AssignerFunc adapts a function to an Assigner.
type AssignerFunc func(Class) Executor

// Assign returns f(c).
func (f AssignerFunc) Assign(c Class) Executor { return f(c) }

// Go runs every task in its own goroutine.
var Go Executor = goExecutor{}

type goExecutor struct{}

func (goExecutor) Submit(ctx context.Context, task func(context.Context)) {
	go task(ctx)
}

// Immediate runs every task synchronously in the caller's goroutine, so
// results are available as soon as Submit returns. It is intended for
// deterministic tests of NetworkCall operations. Subscriptions must not run
// on it since they only return once cancelled.
var Immediate Executor = immediateExecutor{}

type immediateExecutor struct{}

func (immediateExecutor) Submit(ctx context.Context,
	task func(context.Context)) {
	task(ctx)
}

// Pool runs tasks in their own goroutines, with at most a fixed number
// running at once.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool returns a Pool running at most size tasks at once.
func NewPool(size int64) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(size)}
}

// Submit runs task once a slot is free. If ctx is done before then, task is
// run anyway with the done ctx so that it can report ctx.Err().
func (p *Pool) Submit(ctx context.Context, task func(context.Context)) {
	go func() {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			task(ctx)
			return
		}
		defer p.sem.Release(1)
		task(ctx)
	}()
}

// Static returns an Assigner which uses e for every Class.
func Static(e Executor) Assigner {
	return AssignerFunc(func(Class) Executor { return e })
}

// DefaultPoolSize is the size of the NetworkCall Pool of Default.
func DefaultPoolSize() int64 {
	return int64(4 * runtime.NumCPU())
}

// Default returns an Assigner which runs network calls on a Pool of
// DefaultPoolSize and subscriptions on Go.
func Default() Assigner {
	pool := NewPool(DefaultPoolSize())
	return AssignerFunc(func(c Class) Executor {
		if c == NetworkCall {
			return pool
		}
		return Go
	})
}
