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
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burst-apps-team/burstkit/burst"
	"github.com/burst-apps-team/burstkit/internal/flag"
	_log "github.com/burst-apps-team/burstkit/internal/log"
	"github.com/burst-apps-team/burstkit/node"
	"github.com/burst-apps-team/burstkit/scheduler"
)

// chain is a node serving a chain of head+1 blocks. Block 7 holds a payment
// from alice to carol. With aliases, block 3 holds an alias assignment from
// bob to carol and block 4 one from alice to bob. Blocks at or above
// forkHeight get IDs derived from salt.
type chain struct {
	sync.Mutex
	head       uint32
	forkHeight uint32
	salt       burst.ID
	aliases    bool
}

func (c *chain) id(height uint32) burst.ID {
	id := burst.ID(height) + 5000
	if c.forkHeight > 0 && height >= c.forkHeight {
		id += c.salt
	}
	return id
}

func (c *chain) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.Lock()
	defer c.Unlock()
	r.ParseForm()
	switch r.Form.Get("requestType") {
	case "getConstants":
		fmt.Fprint(w, `{"genesisBlockId":"3444294670862540038"}`)
	case "getMiningInfo":
		fmt.Fprintf(w, `{"height":"%v","baseTarget":"100",`+
			`"generationSignature":"%064x"}`, c.head+1, uint64(c.id(c.head)))
	case "getBlock":
		height, err := strconv.ParseUint(r.Form.Get("height"), 10, 32)
		if err != nil || uint32(height) > c.head {
			fmt.Fprint(w, `{"errorCode":5,"errorDescription":"Unknown block"}`)
			return
		}
		h := uint32(height)
		var txs string
		switch {
		case h == 7:
			txs = `"77"`
		case h == 3 && c.aliases:
			txs = `"88"`
		case h == 4 && c.aliases:
			txs = `"89"`
		}
		var prev string
		if h > 0 {
			prev = fmt.Sprintf(`"previousBlock":"%v",`, c.id(h-1))
		}
		fmt.Fprintf(w, `{"block":"%v","height":%v,%v"transactions":[%v]}`,
			c.id(h), h, prev, txs)
	case "getTransaction":
		switch r.Form.Get("transaction") {
		case "88":
			fmt.Fprint(w, aliasAssignment(88, bob, carol))
			return
		case "89":
			fmt.Fprint(w, aliasAssignment(89, alice, bob))
			return
		}
		if r.Form.Get("transaction") != "77" {
			fmt.Fprint(w, `{"errorCode":5,"errorDescription":"Unknown transaction"}`)
			return
		}
		fmt.Fprintf(w, `{"transaction":"77","type":0,"subtype":0,`+
			`"sender":"%v","recipient":"%v","amountNQT":"100000000",`+
			`"feeNQT":"735000","height":7}`, alice.ID(), carol.ID())
	default:
		fmt.Fprint(w, `{"errorCode":1,"errorDescription":"Incorrect request"}`)
	}
}

func aliasAssignment(id burst.ID, from, to burst.Address) string {
	return fmt.Sprintf(`{"transaction":"%v","type":1,"subtype":1,`+
		`"sender":"%v","recipient":"%v","amountNQT":"0",`+
		`"feeNQT":"735000","attachment":{"version.AliasAssignment":1,`+
		`"alias":"burst","uri":"https://burstcoin.example"}}`,
		id, from.ID(), to.ID())
}

func (c *chain) setHead(head uint32) {
	c.Lock()
	defer c.Unlock()
	c.head = head
}

func setup(t *testing.T, c *chain) {
	srv := httptest.NewServer(c)
	t.Cleanup(srv.Close)

	log = _log.New("engine")
	var err error
	svc, err = node.New(node.Config{
		Endpoint:           srv.URL,
		Assigner:           scheduler.Static(scheduler.Go),
		MiningInfoInterval: time.Millisecond,
	})
	require.NoError(t, err)
	_state = NewState(100, []burst.Address{alice})
	resetSync()

	flag.StartScanHeight = 0
	t.Cleanup(func() { flag.StartScanHeight = 0 })
}

func TestSyncTo(t *testing.T) {
	require := require.New(t)
	c := &chain{head: 20}
	setup(t, c)
	flag.StartScanHeight = 5

	require.NoError(syncTo(context.Background(), 12))
	sync, _ := GetSyncStatus()
	require.Equal(uint32(12), sync)
	first := _state.RecentBlocks(100)
	require.Len(first, 8)
	require.Equal(uint32(5), first[len(first)-1].Height)

	txs, ok := _state.Transactions(alice, 10)
	require.True(ok)
	require.Len(txs, 1)
	require.Equal(burst.ID(77), txs[0].ID)

	// Node reorganizes from height 11 on.
	c.Lock()
	c.forkHeight, c.salt = 11, 1000
	c.Unlock()
	require.NoError(syncTo(context.Background(), 14))
	b, ok := _state.Block(12)
	require.True(ok)
	require.Equal(c.id(12), b.ID)
	b, ok = _state.Block(14)
	require.True(ok)
	require.Equal(c.id(13), b.PreviousBlock)

	// Node falls behind.
	require.NoError(syncTo(context.Background(), 9))
	sync, _ = GetSyncStatus()
	require.Equal(uint32(9), sync)
	_, ok = _state.Block(10)
	require.False(ok)
}

func TestSyncToUnsupportedAttachment(t *testing.T) {
	require := require.New(t)
	c := &chain{head: 8, aliases: true}
	setup(t, c)
	flag.StartScanHeight = 1

	require.NoError(syncTo(context.Background(), 8))
	sync, _ := GetSyncStatus()
	require.Equal(uint32(8), sync)

	txs, ok := _state.Transactions(alice, 10)
	require.True(ok)
	require.Len(txs, 2)
	require.Equal(burst.ID(77), txs[0].ID)
	require.Equal(burst.ID(89), txs[1].ID)
	require.Nil(txs[1].Attachment)
	require.Contains(txs[1].RawAttachment, "version.AliasAssignment")
}

func TestSyncToBatches(t *testing.T) {
	c := &chain{head: 2*syncBatch + 5}
	setup(t, c)
	flag.StartScanHeight = 1

	require.NoError(t, syncTo(context.Background(), c.head))
	height, ok := _state.SyncHeight()
	require.True(t, ok)
	require.Equal(t, c.head, height)
	require.Len(t, _state.RecentBlocks(1000), 100)
}

func TestSyncToError(t *testing.T) {
	c := &chain{head: 3}
	setup(t, c)
	flag.StartScanHeight = 1

	err := syncTo(context.Background(), 5)
	assert.ErrorIs(t, err, burst.ErrNotFound)
	sync, _ := GetSyncStatus()
	assert.Equal(t, uint32(0), sync)
}

func TestStart(t *testing.T) {
	require := require.New(t)
	c := &chain{head: 8}
	srv := httptest.NewServer(c)
	defer srv.Close()

	flag.NodeServer = srv.URL
	flag.LockFile = filepath.Join(t.TempDir(), "burstkitd.lock")
	flag.MiningInfoInterval = time.Millisecond
	flag.CacheSize = 50
	flag.Watch = flag.AddressList{alice}
	flag.StartScanHeight = 3
	flag.ScanRetries = 0
	defer func() {
		flag.Watch = nil
		flag.StartScanHeight = 0
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := Start(ctx)
	require.NotNil(done)
	require.NotNil(Node())

	waitSync := func(height uint32) {
		require.Eventually(func() bool {
			sync, current := GetSyncStatus()
			return sync == height && current == height
		}, 5*time.Second, time.Millisecond)
	}
	waitSync(8)
	c.setHead(10)
	waitSync(10)

	mi, ok := GetState().MiningInfo()
	require.True(ok)
	require.Equal(uint32(11), mi.Height)
	txs, _ := GetState().Transactions(alice, 10)
	require.Len(txs, 1)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		require.FailNow("engine did not stop")
	}
	require.NoFileExists(flag.LockFile)
}

func TestStartUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	flag.NodeServer = srv.URL
	flag.LockFile = filepath.Join(t.TempDir(), "burstkitd.lock")
	assert.Nil(t, Start(context.Background()))
	assert.NoFileExists(t, flag.LockFile)
}

func TestStartLocked(t *testing.T) {
	c := &chain{head: 8}
	srv := httptest.NewServer(c)
	defer srv.Close()
	flag.NodeServer = srv.URL

	// The test binary's parent process is alive and is not us.
	flag.LockFile = filepath.Join(t.TempDir(), "burstkitd.lock")
	require.NoError(t, os.WriteFile(flag.LockFile,
		[]byte(fmt.Sprintln(os.Getppid())), 0644))

	assert.Nil(t, Start(context.Background()))
	assert.FileExists(t, flag.LockFile)
}
