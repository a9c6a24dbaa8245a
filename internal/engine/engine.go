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
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/nightlyone/lockfile"
	"golang.org/x/sync/errgroup"

	"github.com/burst-apps-team/burstkit/internal/flag"
	_log "github.com/burst-apps-team/burstkit/internal/log"
	"github.com/burst-apps-team/burstkit/node"
)

var (
	log      _log.Log
	svc      *node.Service
	_state   *State
	lockFile lockfile.Lockfile
)

func runIfNotDone(ctx context.Context, f func()) {
	select {
	case <-ctx.Done():
	default:
		f()
	}
}

const (
	// syncBatch is the number of blocks fetched concurrently while
	// syncing.
	syncBatch = 100
	// rollbackDepth is the number of blocks dropped when the node
	// reports a block that does not follow the last synced block.
	rollbackDepth = 10
)

// Start connects to the node and launches the main engine goroutine, which
// follows the mining rounds of the node and syncs each new block into the
// State. If ctx is done or if too many consecutive errors occur, the engine
// goroutine exits and done is closed. If done is closed before ctx is done,
// an error occurred. Start returns nil if the node cannot be reached or if
// another burstkitd holds flag.LockFile.
func Start(ctx context.Context) (done <-chan struct{}) {
	log = _log.New("engine")

	var err error
	lockFile, err = lockfile.New(flag.LockFile)
	if err != nil {
		log.Errorf("lockfile.New(%q): %v", flag.LockFile, err)
		return nil
	}
	if err = lockFile.TryLock(); err != nil {
		log.Errorf("lockFile.TryLock(): %v", err)
		return nil
	}
	// Always clean up the lockfile if Start fails.
	defer func() {
		if done == nil {
			unlock()
		}
	}()

	svc, err = node.New(flag.NodeConfig())
	if err != nil {
		log.Errorf("node.New(): %v", err)
		return nil
	}

	// Verify that the node is reachable.
	constants, err := svc.GetConstants(ctx).Await(ctx)
	if err != nil {
		runIfNotDone(ctx, func() {
			log.Errorf("getConstants: %v", err)
		})
		return nil
	}
	log.Infof("Connected to node %v, genesis block %v.",
		svc.Endpoint, constants.GenesisBlockID)

	_state = NewState(int(flag.CacheSize), flag.Watch)
	if len(flag.Watch) > 0 {
		log.Infof("Watching %v accounts.", len(flag.Watch))
	}
	resetSync()

	_done := make(chan struct{})
	go engine(ctx, _done)
	return _done
}

func unlock() {
	if err := lockFile.Unlock(); err != nil {
		log.Errorf("lockFile.Unlock(): %v", err)
	}
}

// Node returns the node.Service used by the engine.
func Node() *node.Service { return svc }

// GetState returns the State synced by the engine.
func GetState() *State { return _state }

func engine(ctx context.Context, done chan struct{}) {
	// Always remove the lockfile on exit.
	defer func() {
		unlock()
		sync, _ := GetSyncStatus()
		log.Infof("Synced to block height %v.", sync)
		close(done)
	}()

	// retries tracks the number of consecutive failed subscriptions.
	var retries int64
	for {
		progressed, err := follow(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Error(err)
		if progressed {
			retries = 0
		}
		if flag.ScanRetries > -1 && retries >= flag.ScanRetries {
			return
		}
		retries++
		log.Infof("Retrying in %v... (%v)", flag.MiningInfoInterval, retries)
		select {
		case <-time.After(flag.MiningInfoInterval):
		case <-ctx.Done():
			return
		}
	}
}

// follow syncs every new mining round until the subscription fails.
// progressed reports whether at least one round was synced.
func follow(ctx context.Context) (progressed bool, _ error) {
	rounds := svc.GetMiningInfo(ctx)
	defer rounds.Cancel()
	for {
		mi, err := rounds.Next(ctx)
		if err != nil {
			return progressed, fmt.Errorf("getMiningInfo: %w", err)
		}
		_state.SetMiningInfo(mi)
		if mi.Height == 0 {
			continue
		}
		// The round at mi.Height mines on top of the block before it.
		head := mi.Height - 1
		setNodeHeight(head)
		if err := syncTo(ctx, head); err != nil {
			return progressed, err
		}
		progressed = true
	}
}

type syncedBlock struct {
	block node.Block
	txs   []node.Transaction
}

// syncTo applies all blocks up to and including head.
func syncTo(ctx context.Context, head uint32) error {
	sync, started := getSync()
	if started && head < sync {
		log.Warnf("Node height %v is below sync height %v, rolling back.",
			head, sync)
		_state.Rollback(head)
		setSyncHeight(head)
		sync = head
	}
	start := sync + 1
	if !started {
		start = head
		if flag.StartScanHeight > 0 && flag.StartScanHeight <= head {
			start = flag.StartScanHeight
		}
		log.Infof("Syncing from block %v...", start)
	}

	for from := start; from <= head; {
		to := head
		if to-from >= syncBatch {
			to = from + syncBatch - 1
		}
		blocks, err := fetch(ctx, from, to)
		if err != nil {
			return err
		}
		for _, b := range blocks {
			err := _state.Apply(b.block, b.txs)
			if errors.Is(err, ErrNotSuccessor) {
				rollback := from - 1
				if rollback > rollbackDepth {
					rollback -= rollbackDepth
				} else {
					rollback = 0
				}
				log.Warnf("%v, rolling back to %v.", err, rollback)
				_state.Rollback(rollback)
				setSyncHeight(rollback)
				return syncTo(ctx, head)
			}
			if err != nil {
				return err
			}
			setSyncHeight(b.block.Height)
		}
		log.Debugf("Synced blocks %v to %v.", from, to)
		if to == head {
			break
		}
		from = to + 1
	}
	return nil
}

// fetch returns the blocks from heights from to to, in order, with the
// transactions of each which involve watched accounts.
func fetch(ctx context.Context, from, to uint32) ([]syncedBlock, error) {
	blocks := make([]syncedBlock, to-from+1)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range blocks {
		i := i
		height := from + uint32(i)
		g.Go(func() error {
			b, err := svc.GetBlockAtHeight(ctx, height).Await(ctx)
			if err != nil {
				return fmt.Errorf("getBlock %v: %w", height, err)
			}
			txs, err := watchedTransactions(ctx, b)
			if err != nil {
				return err
			}
			blocks[i] = syncedBlock{block: b, txs: txs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func watchedTransactions(ctx context.Context,
	b node.Block) ([]node.Transaction, error) {
	if len(_state.Watched()) == 0 {
		return nil, nil
	}
	var txs []node.Transaction
	for _, id := range b.Transactions {
		tx, err := svc.GetTransaction(ctx, id).Await(ctx)
		var aerr *node.AttachmentError
		if errors.As(err, &aerr) {
			// Classify by sender and recipient only.
			log.Warnf("Block %v: %v", b.Height, aerr)
			tx, err = aerr.Transaction, nil
		}
		if err != nil {
			return nil, fmt.Errorf("getTransaction %v: %w", id, err)
		}
		if adrs := _state.Involved(tx); len(adrs) > 0 {
			log.Infof("Block %v: transaction %v involves %v.",
				b.Height, tx.ID, adrs)
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

var (
	syncHeight, nodeHeight uint32
	syncStarted            bool
	heightMtx              = &sync.RWMutex{}
)

// GetSyncStatus is a threadsafe way to get the sync height and the current
// height of the node.
func GetSyncStatus() (sync, current uint32) {
	heightMtx.RLock()
	defer heightMtx.RUnlock()
	return syncHeight, nodeHeight
}

func getSync() (uint32, bool) {
	heightMtx.RLock()
	defer heightMtx.RUnlock()
	return syncHeight, syncStarted
}

func setSyncHeight(sync uint32) {
	heightMtx.Lock()
	defer heightMtx.Unlock()
	syncHeight, syncStarted = sync, true
}

func setNodeHeight(height uint32) {
	heightMtx.Lock()
	defer heightMtx.Unlock()
	nodeHeight = height
}

func resetSync() {
	heightMtx.Lock()
	defer heightMtx.Unlock()
	syncHeight, nodeHeight, syncStarted = 0, 0, false
}
