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

package srv

import (
	"errors"

	jrpc "github.com/AdamSLevy/jsonrpc2/v11"

	"github.com/burst-apps-team/burstkit/api"
	"github.com/burst-apps-team/burstkit/burst"
)

// nodeError translates an error returned by the node into an API error,
// using notFound for unknown entities.
func nodeError(err error, notFound jrpc.Error) jrpc.Error {
	switch {
	case errors.Is(err, burst.ErrMalformedAttachment):
		rerr := api.ErrorUnsupportedTransaction
		rerr.Data = err.Error()
		return rerr
	case errors.Is(err, burst.ErrNotFound):
		return notFound
	case errors.Is(err, burst.ErrNodeRejected):
		rerr := api.ErrorInvalidTransaction
		rerr.Message = "Node Rejected Request"
		rerr.Data = err.Error()
		return rerr
	}
	log.Errorf("node: %v", err)
	rerr := api.ErrorNodeUnavailable
	rerr.Data = err.Error()
	return rerr
}
