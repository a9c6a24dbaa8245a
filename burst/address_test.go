package burst_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/burst-apps-team/burstkit/burst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zeroAddressRS = "BURST-2222-2222-2222-22222"

var roundTripIDs = []burst.ID{
	0, 1, 31, 32, 1023, 1024,
	8152263283541346458,
	6502115112683865257,
	1 << 63,
	math.MaxInt64,
	math.MaxUint64,
}

func TestZeroAddress(t *testing.T) {
	require := require.New(t)
	adr := burst.NewAddress(0)
	require.Equal(zeroAddressRS, adr.RS())
	require.Equal(zeroAddressRS, adr.String())

	parsed, err := burst.ParseAddress(zeroAddressRS)
	require.NoError(err)
	require.Equal(adr, parsed)
}

func TestAddressRoundTrip(t *testing.T) {
	for _, id := range roundTripIDs {
		t.Run(id.String(), func(t *testing.T) {
			assert := assert.New(t)
			adr := burst.NewAddress(id)
			rs := adr.RS()
			assert.True(strings.HasPrefix(rs, burst.AddressPrefix), rs)
			assert.Len(rs, len("BURST-XXXX-XXXX-XXXX-XXXXX"))

			parsed, err := burst.ParseAddress(rs)
			if assert.NoError(err) {
				assert.Equal(id, parsed.ID())
				assert.Equal(adr, parsed)
			}

			// Without the prefix and in lower case.
			parsed, err = burst.ParseAddress(
				strings.ToLower(rs[len(burst.AddressPrefix):]))
			if assert.NoError(err) {
				assert.Equal(id, parsed.ID())
			}

			// Numeric form.
			parsed, err = burst.ParseAddress(id.String())
			if assert.NoError(err) {
				assert.Equal(id, parsed.ID())
			}
		})
	}
}

func TestParseAddressInvalid(t *testing.T) {
	valid := burst.NewAddress(8152263283541346458).RS()

	// Change a single symbol to another symbol of the alphabet. Four
	// parity symbols always detect a single symbol error.
	i := len(valid) - 1
	replacement := byte('2')
	if valid[i] == replacement {
		replacement = '3'
	}
	badChecksum := valid[:i] + string(replacement)

	invalid := []struct {
		Name string
		Adr  string
	}{
		{Name: "empty", Adr: ""},
		{Name: "checksum", Adr: badChecksum},
		{Name: "too short", Adr: "BURST-2222-2222-2222-2222"},
		{Name: "too long", Adr: "BURST-2222-2222-2222-222222"},
		{Name: "invalid symbol", Adr: "BURST-2222-2222-2222-2222O"},
		{Name: "negative", Adr: "-1"},
		{Name: "overflow", Adr: "18446744073709551616"},
	}
	for _, test := range invalid {
		t.Run(test.Name, func(t *testing.T) {
			_, err := burst.ParseAddress(test.Adr)
			assert.ErrorIs(t, err, burst.ErrInvalidArgument)
		})
	}
}

func TestAddressJSON(t *testing.T) {
	require := require.New(t)
	adr := burst.NewAddress(6502115112683865257)

	data, err := adr.MarshalJSON()
	require.NoError(err)
	require.Equal(`"6502115112683865257"`, string(data))

	for _, json := range []string{
		`"6502115112683865257"`,
		`6502115112683865257`,
		fmt.Sprintf("%q", adr.RS()),
	} {
		var parsed burst.Address
		require.NoErrorf(parsed.UnmarshalJSON([]byte(json)), "json: %v", json)
		require.Equal(adr, parsed)
	}

	var parsed burst.Address
	require.Error(parsed.UnmarshalJSON([]byte(`"BURST-2222"`)))
}

func TestAddressFromPublicKey(t *testing.T) {
	assert := assert.New(t)
	var pk burst.PublicKey
	a1 := burst.AddressFromPublicKey(pk)
	pk[0] = 1
	a2 := burst.AddressFromPublicKey(pk)
	assert.NotEqual(a1, a2)
	assert.Equal(a2, burst.AddressFromPublicKey(pk))
}

func TestAddressMapKey(t *testing.T) {
	m := map[burst.Address]int{}
	m[burst.NewAddress(5)] = 1
	adr, err := burst.ParseAddress(burst.NewAddress(5).RS())
	require.NoError(t, err)
	m[adr]++
	assert.Len(t, m, 1)
	assert.Equal(t, 2, m[burst.NewAddress(5)])
}
