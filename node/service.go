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

// Package node is an asynchronous client of the Burst node API.
//
// Every operation of a Service is dispatched on the scheduler.Executor
// assigned to its scheduler.Class and delivers its result through a
// scheduler.Future, or a scheduler.Stream for live sequences.
package node

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/burst-apps-team/burstkit/burst"
	"github.com/burst-apps-team/burstkit/scheduler"
)

// Service is the facade of a node. It is safe for concurrent use.
type Service struct {
	Config
	transport Transport
	metrics   *metrics
	log       *logrus.Entry
}

// New returns a Service for the node of c, using the defaults of Config for
// any unset fields.
func New(c Config) (*Service, error) {
	if err := c.setDefaults(); err != nil {
		return nil, err
	}
	m, err := newMetrics(c.Registerer)
	if err != nil {
		return nil, err
	}
	s := Service{Config: c, metrics: m, log: c.Log}
	s.transport = c.Transport
	if s.transport == nil {
		s.transport = newHTTPTransport(c, m)
	}
	return &s, nil
}

// call submits req as a network call and resolves with extract applied to
// the response.
func call[R, T any](ctx context.Context, s *Service, req Request,
	extract func(*R) T) *scheduler.Future[T] {
	return scheduler.Submit(ctx, s.Assigner.Assign(scheduler.NetworkCall),
		func(ctx context.Context) (T, error) {
			var res R
			if err := s.transport.Do(ctx, req, &res); err != nil {
				var zero T
				return zero, err
			}
			return extract(&res), nil
		})
}

func self[T any](v *T) T { return *v }

func params(kv ...string) url.Values {
	v := make(url.Values, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

func indexParams(first, last int) url.Values {
	return params("firstIndex", strconv.Itoa(first),
		"lastIndex", strconv.Itoa(last))
}

// GetBlock returns the block with the given id.
func (s *Service) GetBlock(ctx context.Context,
	id burst.ID) *scheduler.Future[Block] {
	return call(ctx, s, Request{Type: "getBlock",
		Params: params("block", id.String())}, self[Block])
}

// GetBlockAtHeight returns the block at the given height.
func (s *Service) GetBlockAtHeight(ctx context.Context,
	height uint32) *scheduler.Future[Block] {
	return call(ctx, s, Request{Type: "getBlock",
		Params: params("height", strconv.FormatUint(uint64(height), 10))},
		self[Block])
}

// GetBlockAtTimestamp returns the last block generated at or before ts.
func (s *Service) GetBlockAtTimestamp(ctx context.Context,
	ts burst.Timestamp) *scheduler.Future[Block] {
	return call(ctx, s, Request{Type: "getBlock",
		Params: params("timestamp", ts.String())}, self[Block])
}

// GetBlockID returns the ID of the block at the given height.
func (s *Service) GetBlockID(ctx context.Context,
	height uint32) *scheduler.Future[burst.ID] {
	return call(ctx, s, Request{Type: "getBlockId",
		Params: params("height", strconv.FormatUint(uint64(height), 10))},
		func(res *struct {
			Block burst.ID `json:"block"`
		}) burst.ID {
			return res.Block
		})
}

// GetBlocks returns the blocks from index first to last, counted back from
// the last block.
func (s *Service) GetBlocks(ctx context.Context,
	first, last int) *scheduler.Future[[]Block] {
	return call(ctx, s, Request{Type: "getBlocks",
		Params: indexParams(first, last)},
		func(res *struct {
			Blocks []Block `json:"blocks"`
		}) []Block {
			return res.Blocks
		})
}

// GetConstants returns the protocol constants of the node.
func (s *Service) GetConstants(
	ctx context.Context) *scheduler.Future[Constants] {
	return call(ctx, s, Request{Type: "getConstants"}, self[Constants])
}

// GetAccount returns the account of adr.
func (s *Service) GetAccount(ctx context.Context,
	adr burst.Address) *scheduler.Future[Account] {
	return call(ctx, s, Request{Type: "getAccount",
		Params: params("account", adr.ID().String())}, self[Account])
}

// GetAccountATs returns the ATs created by adr.
func (s *Service) GetAccountATs(ctx context.Context,
	adr burst.Address) *scheduler.Future[[]AT] {
	return call(ctx, s, Request{Type: "getAccountATs",
		Params: params("account", adr.ID().String())},
		func(res *struct {
			ATs []AT `json:"ats"`
		}) []AT {
			return res.ATs
		})
}

// GetAccountBlockIDs returns the IDs of the blocks generated by adr.
func (s *Service) GetAccountBlockIDs(ctx context.Context,
	adr burst.Address) *scheduler.Future[[]burst.ID] {
	return call(ctx, s, Request{Type: "getAccountBlockIds",
		Params: params("account", adr.ID().String())},
		func(res *struct {
			BlockIDs []burst.ID `json:"blockIds"`
		}) []burst.ID {
			return res.BlockIDs
		})
}

// GetAccountBlocks returns the blocks generated by adr.
func (s *Service) GetAccountBlocks(ctx context.Context,
	adr burst.Address) *scheduler.Future[[]Block] {
	return call(ctx, s, Request{Type: "getAccountBlocks",
		Params: params("account", adr.ID().String())},
		func(res *struct {
			Blocks []Block `json:"blocks"`
		}) []Block {
			return res.Blocks
		})
}

// GetAccountTransactionIDs returns the IDs of the confirmed transactions
// sent or received by adr.
func (s *Service) GetAccountTransactionIDs(ctx context.Context,
	adr burst.Address) *scheduler.Future[[]burst.ID] {
	return call(ctx, s, Request{Type: "getAccountTransactionIds",
		Params: params("account", adr.ID().String())},
		func(res *struct {
			TransactionIDs []burst.ID `json:"transactionIds"`
		}) []burst.ID {
			return res.TransactionIDs
		})
}

// GetAccountTransactions returns the confirmed transactions sent or received
// by adr.
func (s *Service) GetAccountTransactions(ctx context.Context,
	adr burst.Address) *scheduler.Future[[]Transaction] {
	return call(ctx, s, Request{Type: "getAccountTransactions",
		Params: params("account", adr.ID().String())},
		func(res *struct {
			Transactions []Transaction `json:"transactions"`
		}) []Transaction {
			return res.Transactions
		})
}

// GetAccountsWithRewardRecipient returns the accounts which assigned adr as
// their reward recipient.
func (s *Service) GetAccountsWithRewardRecipient(ctx context.Context,
	adr burst.Address) *scheduler.Future[[]burst.Address] {
	return call(ctx, s, Request{Type: "getAccountsWithRewardRecipient",
		Params: params("account", adr.ID().String())},
		func(res *struct {
			Accounts []burst.Address `json:"accounts"`
		}) []burst.Address {
			return res.Accounts
		})
}

// GetRewardRecipient returns the reward recipient of adr.
func (s *Service) GetRewardRecipient(ctx context.Context,
	adr burst.Address) *scheduler.Future[burst.Address] {
	return call(ctx, s, Request{Type: "getRewardRecipient",
		Params: params("account", adr.ID().String())},
		func(res *struct {
			RewardRecipient burst.Address `json:"rewardRecipient"`
		}) burst.Address {
			return res.RewardRecipient
		})
}

// GetAT returns the AT with the given id.
func (s *Service) GetAT(ctx context.Context,
	id burst.ID) *scheduler.Future[AT] {
	return call(ctx, s, Request{Type: "getAT",
		Params: params("at", id.String())}, self[AT])
}

// GetATIDs returns the IDs of all ATs.
func (s *Service) GetATIDs(ctx context.Context) *scheduler.Future[[]burst.ID] {
	return call(ctx, s, Request{Type: "getATIds"},
		func(res *struct {
			ATIDs []burst.ID `json:"atIds"`
		}) []burst.ID {
			return res.ATIDs
		})
}

// GetTransaction returns the transaction with the given id.
func (s *Service) GetTransaction(ctx context.Context,
	id burst.ID) *scheduler.Future[Transaction] {
	return call(ctx, s, Request{Type: "getTransaction",
		Params: params("transaction", id.String())}, self[Transaction])
}

// GetTransactionByFullHash returns the transaction with the given full
// hash.
func (s *Service) GetTransactionByFullHash(ctx context.Context,
	hash burst.Hash) *scheduler.Future[Transaction] {
	return call(ctx, s, Request{Type: "getTransaction",
		Params: params("fullHash", hash.String())}, self[Transaction])
}

// GetTransactionBytes returns the raw bytes of the transaction with the
// given id.
func (s *Service) GetTransactionBytes(ctx context.Context,
	id burst.ID) *scheduler.Future[TransactionBytes] {
	return call(ctx, s, Request{Type: "getTransactionBytes",
		Params: params("transaction", id.String())}, self[TransactionBytes])
}

// SuggestFee returns the fees currently suggested by the node.
func (s *Service) SuggestFee(
	ctx context.Context) *scheduler.Future[FeeSuggestion] {
	return call(ctx, s, Request{Type: "suggestFee"}, self[FeeSuggestion])
}

// BroadcastTransaction broadcasts the signed transaction and resolves with
// the number of peers it was sent to.
func (s *Service) BroadcastTransaction(ctx context.Context,
	signed []byte) *scheduler.Future[int] {
	return call(ctx, s, Request{Type: "broadcastTransaction", Post: true,
		Params: params("transactionBytes", burst.Bytes(signed).String())},
		func(res *BroadcastResult) int {
			return res.NumberPeersSentTo
		})
}

// BroadcastTransactionResult is like BroadcastTransaction but resolves with
// the full response of the node.
func (s *Service) BroadcastTransactionResult(ctx context.Context,
	signed []byte) *scheduler.Future[BroadcastResult] {
	return call(ctx, s, Request{Type: "broadcastTransaction", Post: true,
		Params: params("transactionBytes", burst.Bytes(signed).String())},
		self[BroadcastResult])
}

// submitNonceResult is the response to submitNonce. Result is "success" or
// a description of why the nonce was rejected.
type submitNonceResult struct {
	Result   string  `json:"result"`
	Deadline numeric `json:"deadline"`
}

// SubmitNonceSuccess is the result of an accepted nonce.
const SubmitNonceSuccess = "success"

// SubmitNonce submits a nonce found for account and resolves with its
// deadline. If passphrase is not nil, it is sent for solo mining. A nonce
// rejected by the node resolves with a *burst.NodeError.
func (s *Service) SubmitNonce(ctx context.Context, passphrase *string,
	nonce string, account burst.ID) *scheduler.Future[uint64] {
	p := params("nonce", nonce, "accountId", account.String())
	if passphrase != nil {
		p.Set("secretPhrase", *passphrase)
	}
	req := Request{Type: "submitNonce", Post: true, Params: p}
	return scheduler.Submit(ctx, s.Assigner.Assign(scheduler.NetworkCall),
		func(ctx context.Context) (uint64, error) {
			var res submitNonceResult
			if err := s.transport.Do(ctx, req, &res); err != nil {
				return 0, err
			}
			if res.Result != SubmitNonceSuccess {
				return 0, &burst.NodeError{
					RequestType: req.Type,
					Code:        burst.ErrorCodeIncorrectParam,
					Description: fmt.Sprintf("nonce rejected: %v", res.Result),
				}
			}
			return uint64(res.Deadline), nil
		})
}
