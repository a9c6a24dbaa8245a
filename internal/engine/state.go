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
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/burst-apps-team/burstkit/attachment"
	"github.com/burst-apps-team/burstkit/burst"
	"github.com/burst-apps-team/burstkit/node"
)

// ErrNotSuccessor is returned by State.Apply for a block which does not
// follow the last applied block.
var ErrNotSuccessor = errors.New("block does not follow last applied block")

// State holds the most recent blocks and every transaction seen in a synced
// block that involves a watched account. It is safe for concurrent use.
type State struct {
	mu sync.RWMutex

	size   int
	blocks []node.Block // Ascending height, consecutive.

	watched map[burst.Address][]node.Transaction

	mining    node.MiningInfo
	hasMining bool
}

// NewState returns a State which keeps the last size blocks and records the
// transactions of the watch accounts.
func NewState(size int, watch []burst.Address) *State {
	if size < 1 {
		size = 1
	}
	s := State{size: size,
		watched: make(map[burst.Address][]node.Transaction, len(watch))}
	for _, adr := range watch {
		s.watched[adr] = nil
	}
	return &s
}

// Watched returns the watched accounts ordered by ID.
func (s *State) Watched() []burst.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	adrs := make([]burst.Address, 0, len(s.watched))
	for adr := range s.watched {
		adrs = append(adrs, adr)
	}
	sort.Slice(adrs, func(i, j int) bool {
		return adrs[i].ID() < adrs[j].ID()
	})
	return adrs
}

// Involved returns the watched accounts which send or receive tx.
func (s *State) Involved(tx node.Transaction) []burst.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.involved(tx)
}

func (s *State) involved(tx node.Transaction) []burst.Address {
	var adrs []burst.Address
	add := func(adr burst.Address) {
		if _, ok := s.watched[adr]; !ok {
			return
		}
		for _, a := range adrs {
			if a == adr {
				return
			}
		}
		adrs = append(adrs, adr)
	}
	add(tx.Sender)
	if tx.Recipient != nil {
		add(*tx.Recipient)
	}
	switch a := tx.Attachment.(type) {
	case attachment.MultiOut:
		for _, p := range a.Recipients {
			add(p.Recipient)
		}
	case attachment.MultiOutSame:
		for _, adr := range a.Recipients {
			add(adr)
		}
	}
	return adrs
}

// SyncHeight returns the height of the last applied block and false if no
// block was applied yet.
func (s *State) SyncHeight() (uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.blocks) == 0 {
		return 0, false
	}
	return s.blocks[len(s.blocks)-1].Height, true
}

// Apply adds b, which must follow the last applied block, together with
// those of its txs which involve a watched account.
func (s *State) Apply(b node.Block, txs []node.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.blocks); n > 0 {
		last := s.blocks[n-1]
		if b.Height != last.Height+1 {
			return fmt.Errorf("%w: block %v: height %v, last %v",
				ErrNotSuccessor, b.ID, b.Height, last.Height)
		}
		if b.PreviousBlock != 0 && b.PreviousBlock != last.ID {
			return fmt.Errorf("%w: block %v: previous block %v, last %v",
				ErrNotSuccessor, b.ID, b.PreviousBlock, last.ID)
		}
	}
	s.blocks = append(s.blocks, b)
	if over := len(s.blocks) - s.size; over > 0 {
		s.blocks = append(s.blocks[:0:0], s.blocks[over:]...)
	}
	for _, tx := range txs {
		for _, adr := range s.involved(tx) {
			s.watched[adr] = append(s.watched[adr], tx)
		}
	}
	return nil
}

// Rollback removes all blocks above height, and the recorded transactions
// they contained.
func (s *State) Rollback(height uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.blocks), func(i int) bool {
		return s.blocks[i].Height > height
	})
	s.blocks = s.blocks[:i]
	for adr, txs := range s.watched {
		j := sort.Search(len(txs), func(j int) bool {
			return txs[j].Height > height
		})
		s.watched[adr] = txs[:j]
	}
}

// Block returns the block at height if it is among the recent blocks.
func (s *State) Block(height uint32) (node.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.blocks) == 0 || height < s.blocks[0].Height {
		return node.Block{}, false
	}
	i := int(height - s.blocks[0].Height)
	if i >= len(s.blocks) {
		return node.Block{}, false
	}
	return s.blocks[i], true
}

// BlockByID returns the block with the given id if it is among the recent
// blocks.
func (s *State) BlockByID(id burst.ID) (node.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.blocks) - 1; i >= 0; i-- {
		if s.blocks[i].ID == id {
			return s.blocks[i], true
		}
	}
	return node.Block{}, false
}

// RecentBlocks returns up to limit of the most recent blocks, newest first.
func (s *State) RecentBlocks(limit int) []node.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit > len(s.blocks) {
		limit = len(s.blocks)
	}
	blocks := make([]node.Block, limit)
	for i := range blocks {
		blocks[i] = s.blocks[len(s.blocks)-1-i]
	}
	return blocks
}

// Transactions returns up to limit of the most recent transactions
// involving adr, newest first, and false if adr is not watched.
func (s *State) Transactions(adr burst.Address,
	limit int) ([]node.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all, ok := s.watched[adr]
	if !ok {
		return nil, false
	}
	if limit > len(all) {
		limit = len(all)
	}
	txs := make([]node.Transaction, limit)
	for i := range txs {
		txs[i] = all[len(all)-1-i]
	}
	return txs, true
}

func (s *State) SetMiningInfo(mi node.MiningInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mining, s.hasMining = mi, true
}

// MiningInfo returns the last observed mining round.
func (s *State) MiningInfo() (node.MiningInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mining, s.hasMining
}
