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

// Package burst provides the value types shared by every layer of a Burst
// client: numeric IDs, account addresses with their Reed-Solomon string form,
// monetary values in planck, chain timestamps, and hex encoded byte types.
//
// All types are immutable values. Parsing functions return errors wrapping
// ErrInvalidArgument so that callers can branch on errors.Is.
//
// The error taxonomy used by the rest of the module also lives here: the
// attachment codec reports ErrMalformedAttachment, and the node facade reports
// ErrNotFound, ErrTransport and ErrNodeRejected, the latter two usually through
// a *NodeError carrying the node's own error code and description.
package burst
