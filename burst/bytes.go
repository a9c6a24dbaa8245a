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
	"encoding/hex"
	"fmt"
)

// Bytes implements json.Marshaler and json.Unmarshaler to encode and decode
// strings with hex encoded data, such as message payloads or AT code.
type Bytes []byte

// String returns the hex encoded data of b.
func (b Bytes) String() string {
	return hex.EncodeToString(b)
}

// UnmarshalJSON unmarshals a string of hex encoded data. An empty string
// results in a nil Bytes.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	data, err := unquote(data)
	if err != nil {
		return fmt.Errorf("%T: %w", b, err)
	}
	if len(data) == 0 {
		*b = nil
		return nil
	}
	buf := make(Bytes, hex.DecodedLen(len(data)))
	if _, err := hex.Decode(buf, data); err != nil {
		return fmt.Errorf("%T: %w", b, err)
	}
	*b = buf
	return nil
}

// MarshalJSON marshals b into hex encoded data.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return bytesMarshalJSON(b)
}

// Bytes32 implements json.Marshaler and json.Unmarshaler to encode and decode
// strings with exactly 32 bytes of hex encoded data.
type Bytes32 [32]byte

// PublicKey is the 32 byte public key of an account.
type PublicKey = Bytes32

// Hash is a 32 byte hash, such as a transaction's full hash or a generation
// signature.
type Hash = Bytes32

// NewBytes32 returns a Bytes32 with the first 32 bytes of data contained in
// s32. If s32 is shorter than 32 bytes the remaining bytes are zero.
func NewBytes32(s32 []byte) Bytes32 {
	var b32 Bytes32
	copy(b32[:], s32)
	return b32
}

// ParseBytes32 parses exactly 32 bytes of hex encoded data.
func ParseBytes32(s string) (Bytes32, error) {
	var b32 Bytes32
	if err := b32.set([]byte(s)); err != nil {
		return b32, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return b32, nil
}

// String returns the hex encoded data of b.
func (b Bytes32) String() string {
	return hex.EncodeToString(b[:])
}

// IsZero returns true if all bytes of b are zero.
func (b Bytes32) IsZero() bool {
	return b == Bytes32{}
}

// UnmarshalJSON unmarshals a string with exactly 32 bytes of hex encoded
// data.
func (b *Bytes32) UnmarshalJSON(data []byte) error {
	data, err := unquote(data)
	if err != nil {
		return fmt.Errorf("%T: %w", b, err)
	}
	if err := b.set(data); err != nil {
		return fmt.Errorf("%T: %w", b, err)
	}
	return nil
}

func (b *Bytes32) set(data []byte) error {
	if len(data) != len(b)*2 {
		return fmt.Errorf("invalid length")
	}
	if _, err := hex.Decode(b[:], data); err != nil {
		return err
	}
	return nil
}

// MarshalJSON marshals b into hex encoded data.
func (b Bytes32) MarshalJSON() ([]byte, error) {
	return bytesMarshalJSON(b[:])
}

// bytesMarshalJSON marshals b into hex encoded data.
func bytesMarshalJSON(b []byte) ([]byte, error) {
	l := hex.EncodedLen(len(b)) + 2
	data := make([]byte, l)
	hex.Encode(data[1:], b)
	data[0] = '"'
	data[len(data)-1] = '"'
	return data, nil
}

// unquote strips the quotes of a JSON string that does not contain escape
// sequences.
func unquote(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return nil, fmt.Errorf("expected JSON string")
	}
	return data[1 : len(data)-1], nil
}
