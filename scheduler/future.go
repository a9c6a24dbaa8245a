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

package scheduler

import (
	"context"
	"sync"
)

// Future is the eventual result of a single asynchronous operation. It is
// resolved exactly once, either by the operation or by Cancel.
type Future[T any] struct {
	done   chan struct{}
	once   sync.Once
	cancel context.CancelFunc

	value T
	err   error
}

// Submit runs op on e and returns its Future. The ctx passed to op is
// cancelled when the Future is cancelled or when ctx is done.
func Submit[T any](ctx context.Context, e Executor,
	op func(context.Context) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{done: make(chan struct{}), cancel: cancel}
	e.Submit(ctx, func(ctx context.Context) {
		if err := ctx.Err(); err != nil {
			var zero T
			f.resolve(zero, err)
			return
		}
		f.resolve(op(ctx))
	})
	return f
}

// Resolved returns a Future already resolved with value and err.
func Resolved[T any](value T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), cancel: func() {}}
	f.resolve(value, err)
	return f
}

func (f *Future[T]) resolve(value T, err error) {
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
		f.cancel()
	})
}

// Done returns a channel which is closed once f is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until f is resolved or ctx is done and returns the result of
// f, or ctx.Err().
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel resolves f with context.Canceled, unless it is already resolved,
// and cancels the ctx of its operation.
func (f *Future[T]) Cancel() {
	var zero T
	f.resolve(zero, context.Canceled)
}
