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

package main

import (
	"github.com/burst-apps-team/burstkit/burst"
)

// Address is a pflag.Value for a burst.Address given as either a numeric
// account ID or an RS address.
type Address burst.Address

func (a *Address) Set(s string) error { return (*burst.Address)(a).Set(s) }
func (a Address) String() string      { return burst.Address(a).RS() }
func (Address) Type() string          { return "address" }

// Amount is a pflag.Value for a burst.Value given in BURST, e.g. 1.5.
type Amount burst.Value

func (a *Amount) Set(s string) error {
	v, err := burst.ParseValue(s)
	if err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}
func (a Amount) String() string { return burst.Value(a).String() }
func (Amount) Type() string     { return "amount" }

// PublicKey is a pflag.Value for a hex encoded burst.PublicKey.
type PublicKey burst.PublicKey

func (pk *PublicKey) Set(s string) error {
	b, err := burst.ParseBytes32(s)
	if err != nil {
		return err
	}
	*pk = PublicKey(b)
	return nil
}
func (pk PublicKey) String() string { return burst.PublicKey(pk).String() }
func (PublicKey) Type() string      { return "publickey" }
