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

import (
	jrpc "github.com/AdamSLevy/jsonrpc2/v11"

	"github.com/burst-apps-team/burstkit/burst"
)

// Params are validated by the daemon after being unmarshaled.
type Params interface {
	IsValid() error
}

// ParamsGetBlock selects a single block by either its height or its id.
type ParamsGetBlock struct {
	Height *uint32   `json:"height,omitempty"`
	ID     *burst.ID `json:"id,omitempty"`
}

func (p ParamsGetBlock) IsValid() error {
	if (p.Height == nil) == (p.ID == nil) {
		return jrpc.InvalidParams(`required: either "height" or "id"`)
	}
	return nil
}

// ParamsLimit bounds the number of returned items. The daemon rejects limits
// above its configured maximum.
type ParamsLimit struct {
	Limit uint64 `json:"limit,omitempty"`
}

// DefaultLimit is used when no limit is given.
const DefaultLimit = 10

func (p *ParamsLimit) IsValid() error {
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	return nil
}

type ParamsAccount struct {
	Address *burst.Address `json:"address"`
}

func (p ParamsAccount) IsValid() error {
	if p.Address == nil {
		return jrpc.InvalidParams(`required: "address"`)
	}
	return nil
}

type ParamsGetAccountTransactions struct {
	ParamsAccount
	ParamsLimit
}

func (p *ParamsGetAccountTransactions) IsValid() error {
	if err := p.ParamsAccount.IsValid(); err != nil {
		return err
	}
	return p.ParamsLimit.IsValid()
}

type ParamsGetTransaction struct {
	ID *burst.ID `json:"id"`
}

func (p ParamsGetTransaction) IsValid() error {
	if p.ID == nil {
		return jrpc.InvalidParams(`required: "id"`)
	}
	return nil
}

// ParamsBroadcastTransaction carries signed transaction bytes as hex.
type ParamsBroadcastTransaction struct {
	Tx burst.Bytes `json:"tx"`
}

func (p ParamsBroadcastTransaction) IsValid() error {
	if len(p.Tx) == 0 {
		return jrpc.InvalidParams(`required: "tx"`)
	}
	return nil
}
