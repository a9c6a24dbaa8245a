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
	"fmt"
	"strings"
)

// Notes: Account addresses are encoded as 17 symbols of a 32 symbol alphabet.
// The first 13 symbols hold the 64 bit account ID in base 32, least
// significant symbol first, and the last 4 symbols are Reed-Solomon parity
// over GF(32). The symbols are permuted by rsCodewordMap before being
// printed in groups of 4-4-4-5.

const (
	rsAlphabet     = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	rsDataLength   = 13
	rsCodewordSize = 17
)

var (
	rsGexp = [...]int{1, 2, 4, 8, 16, 5, 10, 20, 13, 26, 17, 7, 14, 28, 29,
		31, 27, 19, 3, 6, 12, 24, 21, 15, 30, 25, 23, 11, 22, 9, 18, 1}
	rsGlog = [...]int{0, 0, 1, 18, 2, 5, 19, 11, 3, 29, 6, 27, 20, 8, 12,
		23, 4, 10, 30, 17, 7, 22, 28, 26, 21, 25, 9, 16, 13, 14, 24, 15}
	rsCodewordMap = [rsCodewordSize]int{3, 2, 1, 0, 7, 6, 5, 4,
		13, 14, 15, 16, 12, 8, 9, 10, 11}
)

func gmult(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return rsGexp[(rsGlog[a]+rsGlog[b])%31]
}

// rsEncode returns the Reed-Solomon form of id without any prefix, e.g.
// "2222-2222-2222-22222" for 0.
func rsEncode(id ID) string {
	var codeword [rsCodewordSize]int
	for i := 0; i < rsDataLength; i++ {
		codeword[i] = int(uint64(id)>>(5*uint(i))) & 31
	}

	var p [4]int
	for i := rsDataLength - 1; i >= 0; i-- {
		fb := codeword[i] ^ p[3]
		p[3] = p[2] ^ gmult(30, fb)
		p[2] = p[1] ^ gmult(6, fb)
		p[1] = p[0] ^ gmult(9, fb)
		p[0] = gmult(17, fb)
	}
	copy(codeword[rsDataLength:], p[:])

	var sb strings.Builder
	sb.Grow(rsCodewordSize + 3)
	for i := 0; i < rsCodewordSize; i++ {
		sb.WriteByte(rsAlphabet[codeword[rsCodewordMap[i]]])
		if i&3 == 3 && i < rsDataLength {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// rsDecode parses the Reed-Solomon form of an ID, without any prefix. Dashes
// are ignored and letters are case insensitive.
func rsDecode(s string) (ID, error) {
	var codeword [rsCodewordSize]int
	var n int
	for _, r := range strings.ToUpper(s) {
		if r == '-' {
			continue
		}
		pos := strings.IndexRune(rsAlphabet, r)
		if pos < 0 {
			return 0, fmt.Errorf("invalid character %q", r)
		}
		if n >= rsCodewordSize {
			return 0, fmt.Errorf("codeword too long")
		}
		codeword[rsCodewordMap[n]] = pos
		n++
	}
	if n != rsCodewordSize {
		return 0, fmt.Errorf("codeword too short")
	}
	if !rsValid(codeword) {
		return 0, fmt.Errorf("checksum error")
	}
	// The most significant symbol only has room for 4 of its 5 bits.
	if codeword[rsDataLength-1] > 15 {
		return 0, fmt.Errorf("overflow")
	}
	var id uint64
	for i := rsDataLength - 1; i >= 0; i-- {
		id = id<<5 | uint64(codeword[i])
	}
	return ID(id), nil
}

func rsValid(codeword [rsCodewordSize]int) bool {
	var sum int
	for i := 1; i < 5; i++ {
		var t int
		for j := 0; j < 31; j++ {
			if j > 12 && j < 27 {
				continue
			}
			pos := j
			if j > 26 {
				pos -= 14
			}
			t ^= gmult(codeword[pos], rsGexp[(i*j)%31])
		}
		sum |= t
	}
	return sum == 0
}
