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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/burst-apps-team/burstkit/burst"
)

// APIPath is the path of the node API below the endpoint.
const APIPath = "/burst"

// maxResponseSize bounds the size of a response body read from a node.
const maxResponseSize = 32 << 20

// Request is a single call to the node API.
type Request struct {
	// Type is the requestType of the call, e.g. "getBlock".
	Type string
	// Params are the query parameters of the call, excluding requestType.
	Params url.Values
	// Post sends the Params as a form body instead of the query.
	Post bool
}

// secretParams are redacted from logs.
var secretParams = []string{"secretPhrase"}

func (req Request) String() string {
	if len(req.Params) == 0 {
		return req.Type
	}
	params := req.Params
	for _, k := range secretParams {
		if _, ok := params[k]; ok {
			params = cloneValues(params)
			params.Set(k, "REDACTED")
		}
	}
	return fmt.Sprintf("%v?%v", req.Type, params.Encode())
}

func cloneValues(v url.Values) url.Values {
	c := make(url.Values, len(v))
	for k, vals := range v {
		c[k] = append([]string(nil), vals...)
	}
	return c
}

// Transport exchanges Requests with a node.
//
// Do must unmarshal a successful response into result. Errors reported by
// the node must be returned as a *burst.NodeError, and any other failure
// must wrap burst.ErrTransport, unless ctx is done, in which case ctx.Err()
// is returned.
type Transport interface {
	Do(ctx context.Context, req Request, result interface{}) error
}

// TransportFunc adapts a function to a Transport.
type TransportFunc func(ctx context.Context, req Request,
	result interface{}) error

// Do calls f(ctx, req, result).
func (f TransportFunc) Do(ctx context.Context, req Request,
	result interface{}) error {
	return f(ctx, req, result)
}

// HTTPTransport is the Transport of the node HTTP API.
type HTTPTransport struct {
	url       string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	metrics   *metrics
	log       *logrus.Entry
}

// NewHTTPTransport returns an HTTPTransport for c.Endpoint, using the
// defaults of Config for any unset fields of c.
func NewHTTPTransport(c Config) (*HTTPTransport, error) {
	if err := c.setDefaults(); err != nil {
		return nil, err
	}
	m, err := newMetrics(c.Registerer)
	if err != nil {
		return nil, err
	}
	return newHTTPTransport(c, m), nil
}

func newHTTPTransport(c Config, m *metrics) *HTTPTransport {
	t := HTTPTransport{
		url:       c.Endpoint + APIPath,
		userAgent: c.UserAgent,
		client:    c.httpClient(),
		metrics:   m,
		log:       c.Log,
	}
	if c.RequestsPerSecond > 0 {
		size := int(c.RequestsPerSecond)
		if size < 1 {
			size = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(c.RequestsPerSecond), size)
	}
	return &t
}

// Do sends req to the node and unmarshals the response into result.
func (t *HTTPTransport) Do(ctx context.Context, req Request,
	result interface{}) (err error) {
	start := time.Now()
	defer func() {
		t.metrics.observe(req.Type, err, time.Since(start))
		if err != nil {
			t.log.WithError(err).Debugf("%v", req)
			return
		}
		t.log.Debugf("%v (%v)", req, time.Since(start))
	}()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %v: %v", burst.ErrTransport, req.Type, err)
		}
	}

	httpReq, err := t.newRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %v: %v", burst.ErrTransport, req.Type, err)
	}
	res, err := t.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v: %v", burst.ErrTransport, req.Type, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v: %v", burst.ErrTransport, req.Type, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%w: %v: http status %v",
			burst.ErrTransport, req.Type, res.Status)
	}
	return decodeResponse(req.Type, body, result)
}

func (t *HTTPTransport) newRequest(ctx context.Context,
	req Request) (*http.Request, error) {
	params := url.Values{"requestType": {req.Type}}
	for k, v := range req.Params {
		params[k] = v
	}
	var httpReq *http.Request
	var err error
	if req.Post {
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost,
			t.url, strings.NewReader(params.Encode()))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type",
			"application/x-www-form-urlencoded")
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet,
			t.url+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", t.userAgent)
	return httpReq, nil
}

// decodeResponse returns a *burst.NodeError if body holds an error envelope,
// and unmarshals body into result otherwise.
func decodeResponse(requestType string, body []byte,
	result interface{}) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("%w: %v: invalid JSON response",
			burst.ErrTransport, requestType)
	}
	if code := gjson.GetBytes(body, "errorCode"); code.Exists() {
		return &burst.NodeError{
			RequestType: requestType,
			Code:        int(code.Int()),
			Description: gjson.GetBytes(body, "errorDescription").String(),
		}
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: %v: %w", burst.ErrTransport, requestType, err)
	}
	return nil
}
