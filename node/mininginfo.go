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

package node

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/burst-apps-team/burstkit/scheduler"
)

// GetMiningInfo returns a Stream of the mining rounds of the node.
//
// The node is polled every MiningInfoInterval. The first MiningInfo is
// always emitted and afterwards only those that start a new round, see
// MiningInfo.SameRound. The Stream ends with the first error returned by
// the Transport. Cancel the Stream or ctx to stop polling.
func (s *Service) GetMiningInfo(
	ctx context.Context) *scheduler.Stream[MiningInfo] {
	id := uuid.New()
	log := s.log.WithField("subscription", id.String())
	req := Request{Type: "getMiningInfo"}
	return scheduler.Produce(ctx, s.Assigner.Assign(scheduler.Subscription),
		func(ctx context.Context, emit scheduler.Emit[MiningInfo]) error {
			s.metrics.subscriptions.Inc()
			defer s.metrics.subscriptions.Dec()
			log.Debug("mining info subscription started")
			defer log.Debug("mining info subscription stopped")

			ticker := time.NewTicker(s.MiningInfoInterval)
			defer ticker.Stop()

			var last *MiningInfo
			for {
				var mi MiningInfo
				if err := s.transport.Do(ctx, req, &mi); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					log.WithError(err).Debug("mining info subscription failed")
					return err
				}
				if last == nil || !last.SameRound(mi) {
					log.Debugf("new mining round at height %v", mi.Height)
					s.metrics.height.Set(float64(mi.Height))
					if !emit(mi) {
						return ctx.Err()
					}
					last = &mi
				}
				select {
				case <-ticker.C:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		})
}
