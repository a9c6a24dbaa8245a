package burst_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/burst-apps-team/burstkit/burst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesJSON(t *testing.T) {
	require := require.New(t)
	b := burst.Bytes{0xde, 0xad, 0xbe, 0xef}
	data, err := json.Marshal(b)
	require.NoError(err)
	require.Equal(`"deadbeef"`, string(data))

	var parsed burst.Bytes
	require.NoError(json.Unmarshal(data, &parsed))
	require.Equal(b, parsed)

	require.NoError(json.Unmarshal([]byte(`""`), &parsed))
	require.Nil(parsed)

	require.Error(json.Unmarshal([]byte(`"xyz"`), &parsed))
	require.Error(json.Unmarshal([]byte(`5`), &parsed))
}

func TestBytes32JSON(t *testing.T) {
	require := require.New(t)
	b32 := burst.NewBytes32([]byte{1, 2, 3})
	data, err := json.Marshal(b32)
	require.NoError(err)
	require.Len(data, 66)

	var parsed burst.Bytes32
	require.NoError(json.Unmarshal(data, &parsed))
	require.Equal(b32, parsed)
	require.False(parsed.IsZero())

	require.Error(json.Unmarshal([]byte(`"0102"`), &parsed))

	_, err = burst.ParseBytes32("0102")
	require.ErrorIs(err, burst.ErrInvalidArgument)
	parsed, err = burst.ParseBytes32(b32.String())
	require.NoError(err)
	require.Equal(b32, parsed)
}

func TestNodeError(t *testing.T) {
	assert := assert.New(t)
	var err error = &burst.NodeError{RequestType: "getAccount",
		Code: burst.ErrorCodeUnknown, Description: "Unknown account"}
	assert.True(errors.Is(err, burst.ErrNotFound))
	assert.False(errors.Is(err, burst.ErrNodeRejected))
	assert.False(errors.Is(err, burst.ErrTransport))
	assert.EqualError(err, "getAccount: node error 5: Unknown account")

	err = &burst.NodeError{Code: burst.ErrorCodeIncorrectParam,
		Description: "Incorrect \"deadline\""}
	assert.False(errors.Is(err, burst.ErrNotFound))
	assert.True(errors.Is(err, burst.ErrNodeRejected))
}
