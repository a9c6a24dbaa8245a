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

package api

import jrpc "github.com/AdamSLevy/jsonrpc2/v11"

var (
	ErrorBlockNotFound = jrpc.Error{Code: -32800, Message: "Block Not Found",
		Data: "block may not exist yet or may be out of range"}
	ErrorAccountNotFound = jrpc.Error{Code: -32801,
		Message: "Account Not Found",
		Data:    "account may never have been used"}
	ErrorTransactionNotFound = jrpc.Error{Code: -32802,
		Message: "Transaction Not Found",
		Data:    "no matching transaction id was found"}
	ErrorAccountNotWatched = jrpc.Error{Code: -32803,
		Message: "Account Not Watched",
		Data:    "account is not in the watch list of this daemon"}
	ErrorInvalidTransaction = jrpc.Error{Code: -32804,
		Message: "Invalid Transaction"}
	ErrorNotSynced = jrpc.Error{Code: -32805, Message: "Not Synced",
		Data: "no mining round has been observed yet"}
	ErrorNodeUnavailable = jrpc.Error{Code: -32806,
		Message: "Node Unavailable"}
	ErrorUnsupportedTransaction = jrpc.Error{Code: -32807,
		Message: "Unsupported Transaction",
		Data:    "transaction attachment cannot be represented"}
)
