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

package burst

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when caller supplied parameters violate
	// a documented precondition. It is always returned synchronously.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedAttachment is returned when attachment wire data matches
	// no known variant, or more than one.
	ErrMalformedAttachment = errors.New("malformed attachment")

	// ErrNotFound is returned when the target of a lookup does not exist
	// on the node.
	ErrNotFound = errors.New("not found")

	// ErrTransport is returned when the node is unreachable, times out, or
	// returns a response envelope that cannot be decoded.
	ErrTransport = errors.New("transport failure")

	// ErrNodeRejected is returned when the node explicitly rejects a
	// request.
	ErrNodeRejected = errors.New("node rejected request")
)

// Error codes reported by the node API.
const (
	ErrorCodeNoOpenAPIPort   = 1
	ErrorCodeNotAllowed      = 2
	ErrorCodeMissingParam    = 3
	ErrorCodeIncorrectParam  = 4
	ErrorCodeUnknown         = 5
	ErrorCodeNotEnoughFunds  = 6
	ErrorCodeFeatureDisabled = 9
)

// NodeError is an error reported by the node in its response envelope.
//
// NodeError matches ErrNotFound when the node reports an unknown object and
// ErrNodeRejected otherwise.
type NodeError struct {
	RequestType string
	Code        int
	Description string
}

func (err *NodeError) Error() string {
	if len(err.RequestType) == 0 {
		return fmt.Sprintf("node error %v: %v", err.Code, err.Description)
	}
	return fmt.Sprintf("%v: node error %v: %v",
		err.RequestType, err.Code, err.Description)
}

// Is allows errors.Is(err, ErrNotFound) and errors.Is(err, ErrNodeRejected).
func (err *NodeError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return err.NotFound()
	case ErrNodeRejected:
		return !err.NotFound()
	}
	return false
}

// NotFound returns true if the node reported that the requested object does
// not exist.
func (err *NodeError) NotFound() bool {
	return err.Code == ErrorCodeUnknown
}
