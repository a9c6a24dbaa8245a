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
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is the 64 bit unsigned numeric ID of a block, transaction, AT or
// account.
type ID uint64

// ParseID parses the canonical unsigned decimal form of an ID.
func ParseID(s string) (ID, error) {
	var id ID
	if err := id.Set(s); err != nil {
		return 0, err
	}
	return id, nil
}

// Set parses s into id.
func (id *ID) Set(s string) error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty ID", ErrInvalidArgument)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: invalid ID %q", ErrInvalidArgument, s)
		}
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid ID %q: %v",
			ErrInvalidArgument, s, err)
	}
	*id = ID(v)
	return nil
}

// String returns the unsigned decimal representation of id.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// MarshalJSON encodes id as a JSON string holding its decimal form, which is
// how the node represents IDs that do not fit into a JSON number losslessly.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes an ID from either a JSON string or a JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := numericString(data)
	if err != nil {
		return fmt.Errorf("%T: %w", id, err)
	}
	if err := id.Set(s); err != nil {
		return fmt.Errorf("%T: %w", id, err)
	}
	return nil
}

// numericString returns the contents of data, which must be a JSON string or
// a JSON number.
func numericString(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty JSON value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(data), nil
}
