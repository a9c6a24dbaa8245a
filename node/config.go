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
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/burst-apps-team/burstkit/burst"
	"github.com/burst-apps-team/burstkit/internal/log"
	"github.com/burst-apps-team/burstkit/scheduler"
)

// Defaults for Config.
const (
	DefaultEndpoint           = "http://localhost:8125"
	DefaultUserAgent          = "burstkit/" + Version
	DefaultTimeout            = 30 * time.Second
	DefaultMiningInfoInterval = time.Second
)

// Version of burstkit, reported in the default user agent.
const Version = "0.3.0"

// Config configures a Service. The zero value of every field selects its
// default.
type Config struct {
	// Endpoint is the base URL of the node, without the "/burst" path.
	Endpoint string
	// UserAgent is sent with every request.
	UserAgent string

	// Assigner selects where network calls and subscriptions run.
	// Defaults to scheduler.Default().
	Assigner scheduler.Assigner

	// Transport exchanges requests with the node. Defaults to an
	// HTTPTransport built from this Config.
	Transport Transport

	// Timeout bounds each HTTP request of the default Transport.
	Timeout time.Duration
	// RequestsPerSecond limits the request rate of the default
	// Transport. Zero means unlimited.
	RequestsPerSecond float64

	// MiningInfoInterval is the polling interval of GetMiningInfo.
	MiningInfoInterval time.Duration

	// Registerer registers the metrics of the Service. Metrics are
	// collected but not registered if nil.
	Registerer prometheus.Registerer

	// Log receives debug logs of requests and subscriptions.
	Log *logrus.Entry

	// Now is the clock used to timestamp generated transactions.
	Now func() time.Time
}

func (c *Config) setDefaults() error {
	if len(c.Endpoint) == 0 {
		c.Endpoint = DefaultEndpoint
	}
	c.Endpoint = strings.TrimSuffix(c.Endpoint, "/")
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: endpoint: %v", burst.ErrInvalidArgument, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint %q: scheme must be http or https",
			burst.ErrInvalidArgument, c.Endpoint)
	}
	if len(c.UserAgent) == 0 {
		c.UserAgent = DefaultUserAgent
	}
	if c.Assigner == nil {
		c.Assigner = scheduler.Default()
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: negative requests per second",
			burst.ErrInvalidArgument)
	}
	if c.MiningInfoInterval <= 0 {
		c.MiningInfoInterval = DefaultMiningInfoInterval
	}
	if c.Log == nil {
		c.Log = log.New("node").Entry
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

func (c Config) httpClient() *http.Client {
	return &http.Client{Timeout: c.Timeout}
}
