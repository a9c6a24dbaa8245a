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
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
)

// AddressPrefix is the prefix of the human readable Reed-Solomon form of an
// Address.
const AddressPrefix = "BURST-"

// Address is an account address. Two Addresses are equal iff their IDs are
// equal, so Address may be used as a map key.
type Address struct {
	id ID
}

// NewAddress returns the Address of the account with the given numeric ID.
func NewAddress(id ID) Address {
	return Address{id: id}
}

// AddressFromPublicKey returns the Address of the account controlled by
// publicKey. The account ID is the first 8 bytes of the SHA256 hash of the
// public key, read as a little endian integer.
func AddressFromPublicKey(publicKey PublicKey) Address {
	hash := sha256.Sum256(publicKey[:])
	return NewAddress(ID(binary.LittleEndian.Uint64(hash[:8])))
}

// ParseAddress parses an address in Reed-Solomon form, with or without the
// "BURST-" prefix, or a numeric account ID in decimal form.
func ParseAddress(s string) (Address, error) {
	var adr Address
	if err := adr.Set(s); err != nil {
		return Address{}, err
	}
	return adr, nil
}

// Set parses s into adr. See ParseAddress.
func (adr *Address) Set(s string) error {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return fmt.Errorf("%w: empty address", ErrInvalidArgument)
	}
	if isDecimal(s) {
		var id ID
		if err := id.Set(s); err != nil {
			return err
		}
		adr.id = id
		return nil
	}
	if len(s) >= len(AddressPrefix) &&
		strings.EqualFold(s[:len(AddressPrefix)], AddressPrefix) {
		s = s[len(AddressPrefix):]
	}
	id, err := rsDecode(s)
	if err != nil {
		return fmt.Errorf("%w: address %q: %v", ErrInvalidArgument, s, err)
	}
	adr.id = id
	return nil
}

// ID returns the numeric account ID of adr.
func (adr Address) ID() ID {
	return adr.id
}

// RS returns the Reed-Solomon form of adr including the "BURST-" prefix.
func (adr Address) RS() string {
	return AddressPrefix + rsEncode(adr.id)
}

// String returns adr.RS().
func (adr Address) String() string {
	return adr.RS()
}

// MarshalJSON encodes adr as its numeric account ID in a JSON string.
func (adr Address) MarshalJSON() ([]byte, error) {
	return adr.id.MarshalJSON()
}

// UnmarshalJSON decodes a JSON string holding either a numeric account ID or
// a Reed-Solomon address, or a JSON number holding an account ID.
func (adr *Address) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] != '"' {
		return adr.id.UnmarshalJSON(data)
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%T: %w", adr, err)
	}
	if err := adr.Set(s); err != nil {
		return fmt.Errorf("%T: %w", adr, err)
	}
	return nil
}

func isDecimal(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
