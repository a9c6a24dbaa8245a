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

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burst-apps-team/burstkit/attachment"
	"github.com/burst-apps-team/burstkit/burst"
	"github.com/burst-apps-team/burstkit/node"
)

var (
	alice = burst.NewAddress(1001)
	bob   = burst.NewAddress(1002)
	carol = burst.NewAddress(1003)
)

func testBlock(height uint32) node.Block {
	b := node.Block{ID: burst.ID(height) + 5000, Height: height}
	if height > 0 {
		b.PreviousBlock = burst.ID(height) + 4999
	}
	return b
}

func payment(id burst.ID, height uint32, from, to burst.Address) node.Transaction {
	return node.Transaction{ID: id, Height: height, Sender: from, Recipient: &to}
}

func TestStateApply(t *testing.T) {
	require := require.New(t)
	s := NewState(3, nil)
	_, ok := s.SyncHeight()
	require.False(ok)

	for h := uint32(10); h < 15; h++ {
		require.NoError(s.Apply(testBlock(h), nil))
	}
	height, ok := s.SyncHeight()
	require.True(ok)
	require.Equal(uint32(14), height)

	_, ok = s.Block(11)
	require.False(ok, "block 11 should have been dropped")
	b, ok := s.Block(13)
	require.True(ok)
	require.Equal(uint32(13), b.Height)
	_, ok = s.Block(15)
	require.False(ok)

	b, ok = s.BlockByID(testBlock(12).ID)
	require.True(ok)
	require.Equal(uint32(12), b.Height)

	recent := s.RecentBlocks(10)
	require.Len(recent, 3)
	require.Equal(uint32(14), recent[0].Height)
	require.Equal(uint32(12), recent[2].Height)
	require.Len(s.RecentBlocks(1), 1)
}

func TestStateApplyNotSuccessor(t *testing.T) {
	s := NewState(10, nil)
	require.NoError(t, s.Apply(testBlock(10), nil))

	err := s.Apply(testBlock(12), nil)
	assert.ErrorIs(t, err, ErrNotSuccessor)

	fork := testBlock(11)
	fork.PreviousBlock = 1
	err = s.Apply(fork, nil)
	assert.ErrorIs(t, err, ErrNotSuccessor)

	height, _ := s.SyncHeight()
	assert.Equal(t, uint32(10), height)
}

func TestStateWatched(t *testing.T) {
	require := require.New(t)
	s := NewState(10, []burst.Address{bob, alice})
	require.Equal([]burst.Address{alice, bob}, s.Watched())

	tx := payment(1, 10, alice, carol)
	require.Equal([]burst.Address{alice}, s.Involved(tx))

	multi := node.Transaction{ID: 2, Height: 11, Sender: carol,
		Attachment: attachment.NewMultiOut([]attachment.Payment{
			{Recipient: bob, Amount: burst.FromBurst(1)},
			{Recipient: carol, Amount: burst.FromBurst(2)},
		})}
	require.Equal([]burst.Address{bob}, s.Involved(multi))

	same := node.Transaction{ID: 3, Height: 11, Sender: alice,
		Attachment: attachment.NewMultiOutSame(
			[]burst.Address{alice, bob})}
	require.Equal([]burst.Address{alice, bob}, s.Involved(same))

	require.Empty(s.Involved(payment(4, 11, carol, carol)))

	require.NoError(s.Apply(testBlock(10), []node.Transaction{tx}))
	require.NoError(s.Apply(testBlock(11), []node.Transaction{multi, same}))

	txs, ok := s.Transactions(alice, 10)
	require.True(ok)
	require.Len(txs, 2)
	require.Equal(burst.ID(3), txs[0].ID)
	require.Equal(burst.ID(1), txs[1].ID)

	txs, ok = s.Transactions(bob, 1)
	require.True(ok)
	require.Len(txs, 1)
	require.Equal(burst.ID(3), txs[0].ID)

	_, ok = s.Transactions(carol, 10)
	require.False(ok)

	s.Rollback(10)
	height, _ := s.SyncHeight()
	require.Equal(uint32(10), height)
	txs, _ = s.Transactions(alice, 10)
	require.Len(txs, 1)
	txs, _ = s.Transactions(bob, 10)
	require.Empty(txs)

	require.NoError(s.Apply(testBlock(11), nil))
}

func TestStateMiningInfo(t *testing.T) {
	s := NewState(1, nil)
	_, ok := s.MiningInfo()
	assert.False(t, ok)
	s.SetMiningInfo(node.MiningInfo{Height: 7})
	mi, ok := s.MiningInfo()
	assert.True(t, ok)
	assert.Equal(t, uint32(7), mi.Height)
}
