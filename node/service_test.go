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

package node_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burst-apps-team/burstkit/attachment"
	"github.com/burst-apps-team/burstkit/burst"
	"github.com/burst-apps-team/burstkit/node"
	"github.com/burst-apps-team/burstkit/scheduler"
	"github.com/burst-apps-team/burstkit/transaction"
)

// stub is a node that responds to each requestType with a fixed body.
type stub map[string]string

func (s stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != node.APIPath {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, ok := s[r.Form.Get("requestType")]
	if !ok {
		fmt.Fprint(w, `{"errorCode":1,"errorDescription":"Incorrect request"}`)
		return
	}
	fmt.Fprint(w, body)
}

func newService(t *testing.T, h http.Handler) *node.Service {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s, err := node.New(node.Config{
		Endpoint: srv.URL,
		Assigner: scheduler.Static(scheduler.Immediate),
	})
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	assert := assert.New(t)
	s, err := node.New(node.Config{})
	require.NoError(t, err)
	assert.Equal(node.DefaultEndpoint, s.Endpoint)
	assert.Equal(node.DefaultTimeout, s.Timeout)
	assert.Equal(node.DefaultMiningInfoInterval, s.MiningInfoInterval)
	assert.NotNil(s.Assigner)

	for _, endpoint := range []string{"localhost:8125", "ftp://node", "%"} {
		_, err := node.New(node.Config{Endpoint: endpoint})
		assert.ErrorIs(err, burst.ErrInvalidArgument, endpoint)
	}
	_, err = node.New(node.Config{RequestsPerSecond: -1})
	assert.ErrorIs(err, burst.ErrInvalidArgument)
}

const blockJSON = `{
	"block": "9934519016134226036",
	"height": 500000,
	"generator": "6502115112683865257",
	"generatorPublicKey": "25dd5b1c7b06738b9c4e6b2c3d8a47510f638d192e95a00b646e21839c7a1f42",
	"nonce": "123456789",
	"scoopNum": 2471,
	"timestamp": 125000000,
	"numberOfTransactions": 1,
	"totalAmountNQT": "100000000",
	"totalFeeNQT": "735000",
	"blockReward": "1246",
	"payloadLength": 176,
	"version": 3,
	"baseTarget": "69585",
	"previousBlock": "2001818911516212284",
	"transactions": ["3111352209683567313"]
}`

func TestGetBlock(t *testing.T) {
	require := require.New(t)
	var query string
	s := newService(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.RawQuery
			fmt.Fprint(w, blockJSON)
		}))

	b, err := s.GetBlock(context.Background(), 9934519016134226036).
		Await(context.Background())
	require.NoError(err)
	require.Equal("block=9934519016134226036&requestType=getBlock", query)
	require.Equal(burst.ID(9934519016134226036), b.ID)
	require.Equal(uint32(500000), b.Height)
	require.Equal(burst.ID(6502115112683865257), b.Generator.ID())
	require.Equal(uint64(123456789), b.Nonce)
	require.Equal(uint64(69585), b.BaseTarget)
	require.Equal(burst.FromBurst(1246), b.BlockReward)
	require.Equal(burst.FromPlanck(735000), b.TotalFee)
	require.Equal([]burst.ID{3111352209683567313}, b.Transactions)

	_, err = s.GetBlockAtHeight(context.Background(), 500000).
		Await(context.Background())
	require.NoError(err)
	require.Equal("height=500000&requestType=getBlock", query)

	_, err = s.GetBlockAtTimestamp(context.Background(), 125000000).
		Await(context.Background())
	require.NoError(err)
	require.Equal("requestType=getBlock&timestamp=125000000", query)
}

var errorTests = []struct {
	Name    string
	Handler http.HandlerFunc
	Err     error
	NotErr  error
}{{
	Name: "not found",
	Handler: func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errorCode":5,"errorDescription":"Unknown block"}`)
	},
	Err:    burst.ErrNotFound,
	NotErr: burst.ErrNodeRejected,
}, {
	Name: "rejected",
	Handler: func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errorCode":4,"errorDescription":"Incorrect \"block\""}`)
	},
	Err:    burst.ErrNodeRejected,
	NotErr: burst.ErrNotFound,
}, {
	Name: "http status",
	Handler: func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	},
	Err:    burst.ErrTransport,
	NotErr: burst.ErrNodeRejected,
}, {
	Name: "invalid JSON",
	Handler: func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"block":`)
	},
	Err:    burst.ErrTransport,
	NotErr: burst.ErrNotFound,
}, {
	Name: "unexpected JSON",
	Handler: func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"block":"not a number"}`)
	},
	Err:    burst.ErrTransport,
	NotErr: burst.ErrNotFound,
}}

func TestErrors(t *testing.T) {
	for _, test := range errorTests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			assert := assert.New(t)
			s := newService(t, test.Handler)
			_, err := s.GetBlock(context.Background(), 1).
				Await(context.Background())
			assert.ErrorIs(err, test.Err)
			assert.NotErrorIs(err, test.NotErr)
		})
	}

	t.Run("node error", func(t *testing.T) {
		s := newService(t, errorTests[0].Handler)
		_, err := s.GetBlock(context.Background(), 1).
			Await(context.Background())
		var nodeErr *burst.NodeError
		require.True(t, errors.As(err, &nodeErr))
		assert.Equal(t, "getBlock", nodeErr.RequestType)
		assert.Equal(t, burst.ErrorCodeUnknown, nodeErr.Code)
		assert.Equal(t, "Unknown block", nodeErr.Description)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		s, err := node.New(node.Config{
			Endpoint: srv.URL,
			Assigner: scheduler.Static(scheduler.Immediate),
		})
		require.NoError(t, err)
		_, err = s.GetConstants(context.Background()).
			Await(context.Background())
		assert.ErrorIs(t, err, burst.ErrTransport)
	})
}

func TestCancel(t *testing.T) {
	require := require.New(t)
	block := make(chan struct{})
	defer close(block)
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-block:
			case <-r.Context().Done():
			}
		}))
	defer srv.Close()
	s, err := node.New(node.Config{Endpoint: srv.URL})
	require.NoError(err)

	f := s.GetBlock(context.Background(), 1)
	f.Cancel()
	_, err = f.Await(context.Background())
	require.ErrorIs(err, context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	f = s.GetBlock(ctx, 1)
	cancel()
	_, err = f.Await(context.Background())
	require.ErrorIs(err, context.Canceled)
	require.NotErrorIs(err, burst.ErrTransport)
}

func TestSuggestFee(t *testing.T) {
	require := require.New(t)
	s := newService(t, stub{"suggestFee": `{"cheap":735000,"standard":1470000,"priority":2205000}`})
	fees, err := s.SuggestFee(context.Background()).
		Await(context.Background())
	require.NoError(err)
	require.Equal(node.FeeSuggestion{
		Cheap:    burst.FromPlanck(735000),
		Standard: burst.FromPlanck(1470000),
		Priority: burst.FromPlanck(2205000),
	}, fees)

	s = newService(t, stub{"suggestFee": `{"cheap":1470000,"standard":735000,"priority":2205000}`})
	_, err = s.SuggestFee(context.Background()).Await(context.Background())
	require.ErrorIs(err, burst.ErrTransport)
}

func TestGetTransaction(t *testing.T) {
	require := require.New(t)
	s := newService(t, stub{"getTransaction": `{
		"transaction": "3111352209683567313",
		"type": 0,
		"subtype": 0,
		"timestamp": 125000000,
		"deadline": 1440,
		"sender": "6502115112683865257",
		"recipient": "6502115112683865257",
		"amountNQT": "100000000",
		"feeNQT": "735000",
		"attachment": {"version.Message": 1, "message": "hello", "messageIsText": true}
	}`})
	tx, err := s.GetTransaction(context.Background(), 3111352209683567313).
		Await(context.Background())
	require.NoError(err)
	require.Equal(burst.ID(3111352209683567313), tx.ID)
	require.NotNil(tx.Recipient)
	require.Equal(attachment.NewMessage("hello"), tx.Attachment)

	s = newService(t, stub{"getTransaction": `{
		"transaction": "1",
		"attachment": {"version.Message": 1, "version.MultiOutCreation": 1}
	}`})
	_, err = s.GetTransactionByFullHash(context.Background(), burst.Hash{1}).
		Await(context.Background())
	require.ErrorIs(err, burst.ErrTransport)
	require.ErrorIs(err, burst.ErrMalformedAttachment)

	s = newService(t, stub{"getTransaction": `{
		"transaction": "88",
		"type": 1,
		"subtype": 1,
		"sender": "1001",
		"recipient": "1002",
		"attachment": {"version.AliasAssignment": 1, "alias": "burst"}
	}`})
	_, err = s.GetTransaction(context.Background(), 88).
		Await(context.Background())
	var aerr *node.AttachmentError
	require.ErrorAs(err, &aerr)
	require.ErrorIs(err, burst.ErrMalformedAttachment)
	tx = aerr.Transaction
	require.Equal(burst.ID(88), tx.ID)
	require.Equal(burst.NewAddress(1001), tx.Sender)
	require.Nil(tx.Attachment)
	require.Contains(tx.RawAttachment, "version.AliasAssignment")

	data, err := json.Marshal(tx)
	require.NoError(err)
	require.Contains(string(data), `"version.AliasAssignment":1`)
}

func TestLookups(t *testing.T) {
	require := require.New(t)
	s := newService(t, stub{
		"getBlockId":                     `{"block":"9934519016134226036"}`,
		"getBlocks":                      `{"blocks":[` + blockJSON + `,` + blockJSON + `]}`,
		"getAccountBlockIds":             `{"blockIds":["1","2"]}`,
		"getAccountTransactionIds":       `{"transactionIds":["3"]}`,
		"getAccountsWithRewardRecipient": `{"accounts":["4","5"]}`,
		"getRewardRecipient":             `{"rewardRecipient":"6502115112683865257"}`,
		"getATIds":                       `{"atIds":["7"]}`,
		"getAccountATs":                  `{"ats":[{"at":"7","name":"dice","machineCode":"00ff"}]}`,
		"getAccount":                     `{"account":"6502115112683865257","balanceNQT":"100"}`,
		"getTransactionBytes":            `{"unsignedTransactionBytes":"0010","transactionBytes":"0011","confirmations":3}`,
		"getConstants":                   `{"genesisBlockId":"3444294670862540038","maxBlockPayloadLength":44880,"transactionTypes":[{"value":0,"description":"Payment","subtypes":[{"value":0,"description":"Ordinary Payment"}]}]}`,
	})
	ctx := context.Background()
	adr := burst.NewAddress(6502115112683865257)

	id, err := s.GetBlockID(ctx, 500000).Await(ctx)
	require.NoError(err)
	require.Equal(burst.ID(9934519016134226036), id)

	blocks, err := s.GetBlocks(ctx, 0, 1).Await(ctx)
	require.NoError(err)
	require.Len(blocks, 2)

	ids, err := s.GetAccountBlockIDs(ctx, adr).Await(ctx)
	require.NoError(err)
	require.Equal([]burst.ID{1, 2}, ids)

	ids, err = s.GetAccountTransactionIDs(ctx, adr).Await(ctx)
	require.NoError(err)
	require.Equal([]burst.ID{3}, ids)

	adrs, err := s.GetAccountsWithRewardRecipient(ctx, adr).Await(ctx)
	require.NoError(err)
	require.Equal([]burst.Address{burst.NewAddress(4), burst.NewAddress(5)},
		adrs)

	rr, err := s.GetRewardRecipient(ctx, adr).Await(ctx)
	require.NoError(err)
	require.Equal(adr, rr)

	ids, err = s.GetATIDs(ctx).Await(ctx)
	require.NoError(err)
	require.Equal([]burst.ID{7}, ids)

	ats, err := s.GetAccountATs(ctx, adr).Await(ctx)
	require.NoError(err)
	require.Len(ats, 1)
	require.Equal("dice", ats[0].Name)
	require.Equal(burst.Bytes{0x00, 0xff}, ats[0].MachineCode)

	account, err := s.GetAccount(ctx, adr).Await(ctx)
	require.NoError(err)
	require.Equal(burst.FromPlanck(100), account.Balance)

	txBytes, err := s.GetTransactionBytes(ctx, 3).Await(ctx)
	require.NoError(err)
	require.Equal(burst.Bytes{0x00, 0x11}, txBytes.Signed)
	require.Equal(3, txBytes.Confirmations)

	constants, err := s.GetConstants(ctx).Await(ctx)
	require.NoError(err)
	require.Equal(burst.ID(3444294670862540038), constants.GenesisBlockID)
	require.Len(constants.TransactionTypes, 1)

	_, err = s.GetAT(ctx, 7).Await(ctx)
	require.ErrorIs(err, burst.ErrNodeRejected, "not stubbed")
}

func TestBroadcastTransaction(t *testing.T) {
	require := require.New(t)
	var method, txBytes string
	s := newService(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			txBytes = r.PostFormValue("transactionBytes")
			fmt.Fprint(w, `{"numberPeersSentTo":7,"transaction":"1","fullHash":"`+
				burst.Hash{}.String()+`"}`)
		}))
	peers, err := s.BroadcastTransaction(context.Background(),
		[]byte{0x01, 0xab}).Await(context.Background())
	require.NoError(err)
	require.Equal(7, peers)
	require.Equal(http.MethodPost, method)
	require.Equal("01ab", txBytes)
}

func TestSubmitNonce(t *testing.T) {
	require := require.New(t)
	var secret string
	result := `{"result":"success","deadline":"3600"}`
	s := newService(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			secret = r.PostFormValue("secretPhrase")
			fmt.Fprint(w, result)
		}))

	deadline, err := s.SubmitNonce(context.Background(), nil, "12345", 1).
		Await(context.Background())
	require.NoError(err)
	require.Equal(uint64(3600), deadline)
	require.Empty(secret)

	passphrase := "correct horse battery staple"
	result = `{"result":"deadline exceeds target deadline"}`
	_, err = s.SubmitNonce(context.Background(), &passphrase, "12345", 1).
		Await(context.Background())
	require.ErrorIs(err, burst.ErrNodeRejected)
	require.Equal(passphrase, secret)
}

func TestGenerate(t *testing.T) {
	require := require.New(t)
	now := time.Date(2019, time.June, 1, 12, 0, 0, 0, time.UTC)
	s, err := node.New(node.Config{
		Transport: node.TransportFunc(func(context.Context, node.Request,
			interface{}) error {
			return errors.New("unexpected request")
		}),
		Now: func() time.Time { return now },
	})
	require.NoError(err)

	h := transaction.Header{Fee: burst.FromPlanck(735000), Deadline: 1440}
	p := transaction.Params{Header: h,
		Recipient: burst.NewAddress(1), Amount: burst.FromBurst(1)}

	f, err := s.GenerateTransactionWithMessage(p, "hello")
	require.NoError(err)
	data, err := f.Await(context.Background())
	require.NoError(err)
	tx, err := transaction.Parse(data)
	require.NoError(err)
	require.Equal(burst.NewTimestamp(now), tx.Timestamp)
	require.Equal(attachment.NewMessage("hello"), tx.Attachment)

	p.Deadline = 0
	f, err = s.GenerateTransaction(p)
	require.ErrorIs(err, burst.ErrInvalidArgument)
	require.Nil(f)

	f, err = s.GenerateMultiOutSameTransaction(h, burst.FromBurst(1),
		[]burst.Address{burst.NewAddress(1)})
	require.ErrorIs(err, burst.ErrInvalidArgument)
	require.Nil(f)

	f, err = s.GenerateMultiOutTransaction(h, map[burst.Address]burst.Value{
		burst.NewAddress(1): burst.FromBurst(1),
		burst.NewAddress(2): burst.FromBurst(2),
	})
	require.NoError(err)
	data, err = f.Await(context.Background())
	require.NoError(err)
	tx, err = transaction.Parse(data)
	require.NoError(err)
	require.Equal(burst.FromBurst(3), tx.Amount)

	f, err = s.GenerateSetRewardRecipientTransaction(h, burst.NewAddress(1))
	require.NoError(err)
	_, err = f.Await(context.Background())
	require.NoError(err)
}

func TestMetrics(t *testing.T) {
	require := require.New(t)
	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(stub{"getATIds": `{"atIds":[]}`,
		"getTransaction": `{"transaction":"88","type":1,"subtype":1,` +
			`"attachment":{"version.AliasAssignment":1}}`})
	defer srv.Close()
	c := node.Config{
		Endpoint:   srv.URL,
		Assigner:   scheduler.Static(scheduler.Immediate),
		Registerer: reg,
	}
	s, err := node.New(c)
	require.NoError(err)
	_, err = node.New(c)
	require.NoError(err, "shared registerer")

	_, err = s.GetATIDs(context.Background()).Await(context.Background())
	require.NoError(err)
	_, err = s.GetAT(context.Background(), 1).Await(context.Background())
	require.Error(err)

	_, err = s.GetTransaction(context.Background(), 88).
		Await(context.Background())
	require.ErrorIs(err, burst.ErrMalformedAttachment)

	n, err := testutil.GatherAndCount(reg, "burstkit_node_requests_total")
	require.NoError(err)
	require.Equal(3, n, "one series per request type and result")

	results := map[string]string{}
	families, err := reg.Gather()
	require.NoError(err)
	for _, f := range families {
		if f.GetName() != "burstkit_node_requests_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			results[labels["request_type"]] = labels["result"]
		}
	}
	require.Equal(map[string]string{
		"getATIds":       "ok",
		"getAT":          "rejected",
		"getTransaction": "malformed",
	}, results)
}
