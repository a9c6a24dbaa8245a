package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burst-apps-team/burstkit/burst"
)

func TestAmount(t *testing.T) {
	var a Amount
	require.NoError(t, a.Set("1.5"))
	assert.Equal(t, burst.FromPlanck(150000000), burst.Value(a))
	assert.Equal(t, "1.50000000", a.String())
	assert.Error(t, a.Set("0.000000001"))
	assert.Error(t, a.Set("-1"))
}

func TestAddress(t *testing.T) {
	var a Address
	require.NoError(t, a.Set("6502115112683865257"))
	assert.Equal(t, burst.ID(6502115112683865257), burst.Address(a).ID())
	assert.Equal(t, "address", a.Type())
	assert.Error(t, a.Set("BURST-XXXX"))
}

func TestGenerateMultiOutArgs(t *testing.T) {
	require := require.New(t)
	cmd := &cobra.Command{}
	cmd.Flags().VarP(new(Amount), "amount", "a", "")

	require.NoError(generateMultiOutArgs(cmd, []string{"1001:1.5", "1002:2"}))
	require.Len(payments, 2)
	require.Equal(burst.FromPlanck(150000000), payments[burst.NewAddress(1001)])
	require.Equal(burst.FromBurst(2), payments[burst.NewAddress(1002)])

	require.Error(generateMultiOutArgs(cmd, []string{"1001:1", "1001:2"}))
	require.Error(generateMultiOutArgs(cmd, []string{"1001"}))
	require.Error(generateMultiOutArgs(cmd, nil))

	require.NoError(cmd.Flags().Set("amount", "3"))
	require.NoError(generateMultiOutArgs(cmd, []string{"1001", "1002"}))
	require.Equal([]burst.Address{burst.NewAddress(1001),
		burst.NewAddress(1002)}, addresses)
}
