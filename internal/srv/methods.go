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

package srv

import (
	"bytes"
	"encoding/json"
	"fmt"

	jrpc "github.com/AdamSLevy/jsonrpc2/v11"

	"github.com/burst-apps-team/burstkit/api"
	"github.com/burst-apps-team/burstkit/burst"
	"github.com/burst-apps-team/burstkit/internal/engine"
	"github.com/burst-apps-team/burstkit/internal/flag"
	"github.com/burst-apps-team/burstkit/node"
	"github.com/burst-apps-team/burstkit/scheduler"
)

// Replaced in tests.
var (
	getState      = engine.GetState
	getNode       = engine.Node
	getSyncStatus = engine.GetSyncStatus
)

var jrpcMethods = jrpc.MethodMap{
	"get-sync-status":   getSyncStatusMethod,
	"get-mining-info":   getMiningInfo,
	"get-block":         getBlock,
	"get-recent-blocks": getRecentBlocks,

	"get-account":              getAccount,
	"get-account-transactions": getAccountTransactions,
	"get-transaction":          getTransaction,

	"suggest-fee":           suggestFee,
	"broadcast-transaction": broadcastTransaction,

	"get-daemon-properties": getDaemonProperties,
}

func getSyncStatusMethod(data json.RawMessage) interface{} {
	if err := validate(data, nil); err != nil {
		return err
	}
	sync, current := getSyncStatus()
	return api.ResultGetSyncStatus{Sync: sync, Current: current}
}

func getMiningInfo(data json.RawMessage) interface{} {
	if err := validate(data, nil); err != nil {
		return err
	}
	mi, ok := getState().MiningInfo()
	if !ok {
		return api.ErrorNotSynced
	}
	return mi
}

func getBlock(data json.RawMessage) interface{} {
	var params api.ParamsGetBlock
	if err := validate(data, &params); err != nil {
		return err
	}

	state := getState()
	ctx, cancel := apiContext()
	defer cancel()
	var f *scheduler.Future[node.Block]
	if params.Height != nil {
		if b, ok := state.Block(*params.Height); ok {
			return b
		}
		f = getNode().GetBlockAtHeight(ctx, *params.Height)
	} else {
		if b, ok := state.BlockByID(*params.ID); ok {
			return b
		}
		f = getNode().GetBlock(ctx, *params.ID)
	}
	b, err := f.Await(ctx)
	if err != nil {
		return nodeError(err, api.ErrorBlockNotFound)
	}
	return b
}

func getRecentBlocks(data json.RawMessage) interface{} {
	var params api.ParamsLimit
	if err := validate(data, &params); err != nil {
		return err
	}
	if err := checkLimit(params); err != nil {
		return err
	}
	return getState().RecentBlocks(int(params.Limit))
}

func getAccount(data json.RawMessage) interface{} {
	var params api.ParamsAccount
	if err := validate(data, &params); err != nil {
		return err
	}
	ctx, cancel := apiContext()
	defer cancel()
	account, err := getNode().GetAccount(ctx, *params.Address).Await(ctx)
	if err != nil {
		return nodeError(err, api.ErrorAccountNotFound)
	}
	return account
}

func getAccountTransactions(data json.RawMessage) interface{} {
	var params api.ParamsGetAccountTransactions
	if err := validate(data, &params); err != nil {
		return err
	}
	if err := checkLimit(params.ParamsLimit); err != nil {
		return err
	}
	txs, ok := getState().Transactions(*params.Address, int(params.Limit))
	if !ok {
		return api.ErrorAccountNotWatched
	}
	return txs
}

func getTransaction(data json.RawMessage) interface{} {
	var params api.ParamsGetTransaction
	if err := validate(data, &params); err != nil {
		return err
	}
	ctx, cancel := apiContext()
	defer cancel()
	tx, err := getNode().GetTransaction(ctx, *params.ID).Await(ctx)
	if err != nil {
		return nodeError(err, api.ErrorTransactionNotFound)
	}
	return tx
}

func suggestFee(data json.RawMessage) interface{} {
	if err := validate(data, nil); err != nil {
		return err
	}
	ctx, cancel := apiContext()
	defer cancel()
	fee, err := getNode().SuggestFee(ctx).Await(ctx)
	if err != nil {
		return nodeError(err, api.ErrorNodeUnavailable)
	}
	return fee
}

func broadcastTransaction(data json.RawMessage) interface{} {
	var params api.ParamsBroadcastTransaction
	if err := validate(data, &params); err != nil {
		return err
	}
	ctx, cancel := apiContext()
	defer cancel()
	res, err := getNode().BroadcastTransactionResult(ctx, params.Tx).Await(ctx)
	if err != nil {
		return nodeError(err, api.ErrorInvalidTransaction)
	}
	log.Infof("Broadcast transaction %v to %v peers.",
		res.Transaction, res.NumberPeersSentTo)
	return res
}

func getDaemonProperties(data json.RawMessage) interface{} {
	if err := validate(data, nil); err != nil {
		return err
	}
	watched := getState().Watched()
	if watched == nil {
		watched = []burst.Address{}
	}
	return api.ResultGetDaemonProperties{
		Version:    flag.Revision,
		APIVersion: APIVersion,
		NodeServer: getNode().Endpoint,
		Watched:    watched,
		MaxLimit:   flag.APIMaxLimit,
	}
}

func validate(data json.RawMessage, params api.Params) error {
	if params == nil {
		if len(data) > 0 && string(data) != "null" {
			return jrpc.InvalidParams(`no "params" accepted`)
		}
		return nil
	}
	if len(data) == 0 || string(data) == "null" {
		return params.IsValid()
	}
	if err := unmarshalStrict(data, params); err != nil {
		return jrpc.InvalidParams(err.Error())
	}
	return params.IsValid()
}

func checkLimit(params api.ParamsLimit) error {
	if params.Limit > flag.APIMaxLimit {
		return jrpc.InvalidParams(
			fmt.Sprintf(`"limit" may not exceed %v`, flag.APIMaxLimit))
	}
	return nil
}

func unmarshalStrict(data []byte, v interface{}) error {
	b := bytes.NewBuffer(data)
	d := json.NewDecoder(b)
	d.DisallowUnknownFields()
	return d.Decode(v)
}
