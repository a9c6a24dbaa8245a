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
	"io"
)

// Stream is a live sequence of values produced by a long lived task.
//
// Once Cancel returns, Next delivers no further values.
type Stream[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	values chan T
	done   chan struct{}
	err    error
}

// Emit delivers a value to the consumer of a Stream. It blocks until the
// value is received and returns false if the Stream was cancelled instead,
// in which case the producer should return.
type Emit[T any] func(T) bool

// Produce runs produce on e and returns the Stream of values it emits. The
// Stream ends when produce returns. The ctx passed to produce is cancelled
// when the Stream is cancelled or when ctx is done.
func Produce[T any](ctx context.Context, e Executor,
	produce func(context.Context, Emit[T]) error) *Stream[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream[T]{
		ctx:    ctx,
		cancel: cancel,
		values: make(chan T),
		done:   make(chan struct{}),
	}
	e.Submit(ctx, func(ctx context.Context) {
		defer cancel()
		defer close(s.done)
		err := produce(ctx, s.emit)
		if err == nil {
			err = ctx.Err()
		}
		s.err = err
	})
	return s
}

func (s *Stream[T]) emit(v T) bool {
	select {
	case s.values <- v:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// Next blocks until the next value is available and returns it.
//
// If the Stream has ended, Next returns the error that ended it, or io.EOF.
// If the Stream was cancelled it returns the Stream's ctx.Err(). If ctx is
// done first it returns ctx.Err() and the Stream is unaffected.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	select {
	case v := <-s.values:
		if err := s.ctx.Err(); err != nil {
			return zero, err
		}
		return v, nil
	case <-s.done:
		return zero, s.Err()
	case <-s.ctx.Done():
		select {
		case <-s.done:
			return zero, s.Err()
		default:
			return zero, s.ctx.Err()
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Done returns a channel which is closed once the producer has returned.
func (s *Stream[T]) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that ended the Stream, or io.EOF if it ended
// normally. It returns nil while the producer is running.
func (s *Stream[T]) Err() error {
	select {
	case <-s.done:
	default:
		return nil
	}
	if s.err != nil {
		return s.err
	}
	return io.EOF
}

// Cancel stops the Stream. The producer's ctx is cancelled and no further
// values are delivered by Next.
func (s *Stream[T]) Cancel() {
	s.cancel()
}
