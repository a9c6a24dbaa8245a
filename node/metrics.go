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
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/burst-apps-team/burstkit/burst"
)

const metricsNamespace = "burstkit"

type metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	subscriptions prometheus.Gauge
	height        prometheus.Gauge
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "node",
			Name:      "requests_total",
			Help:      "Requests sent to the node by request type and result.",
		}, []string{"request_type", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "node",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests sent to the node.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"request_type"}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "node",
			Name:      "mining_info_subscriptions",
			Help:      "Running mining info subscriptions.",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "node",
			Name:      "mining_height",
			Help:      "Last height reported by a mining info subscription.",
		}),
	}
	if r == nil {
		return &m, nil
	}
	var err error
	if m.requests, err = register(r, m.requests); err != nil {
		return nil, err
	}
	if m.duration, err = register(r, m.duration); err != nil {
		return nil, err
	}
	if m.subscriptions, err = register(r, m.subscriptions); err != nil {
		return nil, err
	}
	if m.height, err = register(r, m.height); err != nil {
		return nil, err
	}
	return &m, nil
}

// register registers c with r, or returns the equal collector already
// registered, so that many Services may share a Registerer.
func register[C prometheus.Collector](r prometheus.Registerer, c C) (C, error) {
	err := r.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

func (m *metrics) observe(requestType string, err error, d time.Duration) {
	m.requests.WithLabelValues(requestType, resultLabel(err)).Inc()
	m.duration.WithLabelValues(requestType).Observe(d.Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, burst.ErrMalformedAttachment):
		return "malformed"
	case errors.Is(err, burst.ErrNotFound):
		return "not_found"
	case errors.Is(err, burst.ErrNodeRejected):
		return "rejected"
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "transport_error"
}
