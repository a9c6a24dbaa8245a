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
	"time"
)

// GenesisUnix is the Unix time of the Burst genesis block,
// 2014-08-11T02:00:00Z. Timestamps count seconds from this instant.
const GenesisUnix = 1407722400

// Timestamp is a number of seconds since the Burst genesis block.
type Timestamp uint32

// NewTimestamp converts t to a Timestamp. Times before the genesis block
// return 0 and sub-second precision is truncated.
func NewTimestamp(t time.Time) Timestamp {
	sec := t.Unix() - GenesisUnix
	if sec < 0 {
		return 0
	}
	return Timestamp(sec)
}

// Time returns ts as a time.Time in UTC.
func (ts Timestamp) Time() time.Time {
	return time.Unix(int64(ts)+GenesisUnix, 0).UTC()
}

// Unix returns ts as Unix time in seconds.
func (ts Timestamp) Unix() int64 {
	return int64(ts) + GenesisUnix
}

func (ts Timestamp) String() string {
	return strconv.FormatUint(uint64(ts), 10)
}

// MarshalJSON encodes ts as a JSON number.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint32(ts))
}

// UnmarshalJSON decodes ts from a JSON number or string.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	s, err := numericString(data)
	if err != nil {
		return fmt.Errorf("%T: %w", ts, err)
	}
	sec, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("%T: invalid timestamp: %w", ts, err)
	}
	*ts = Timestamp(sec)
	return nil
}
