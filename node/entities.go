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

package node

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/burst-apps-team/burstkit/attachment"
	"github.com/burst-apps-team/burstkit/burst"
)

// Block is a block as reported by the node.
type Block struct {
	ID                   burst.ID        `json:"block"`
	Height               uint32          `json:"height"`
	Generator            burst.Address   `json:"generator"`
	GeneratorPublicKey   burst.PublicKey `json:"generatorPublicKey"`
	Nonce                uint64          `json:"-"`
	ScoopNum             int             `json:"scoopNum"`
	Timestamp            burst.Timestamp `json:"timestamp"`
	NumberOfTransactions int             `json:"numberOfTransactions"`
	TotalAmount          burst.Value     `json:"totalAmountNQT"`
	TotalFee             burst.Value     `json:"totalFeeNQT"`
	// BlockReward is reported by the node in whole BURST.
	BlockReward         burst.Value `json:"-"`
	PayloadLength       int         `json:"payloadLength"`
	Version             int         `json:"version"`
	BaseTarget          uint64      `json:"-"`
	PreviousBlock       burst.ID    `json:"previousBlock,omitempty"`
	NextBlock           burst.ID    `json:"nextBlock,omitempty"`
	PayloadHash         burst.Hash  `json:"payloadHash"`
	GenerationSignature burst.Hash  `json:"generationSignature"`
	PreviousBlockHash   burst.Hash  `json:"previousBlockHash"`
	BlockSignature      burst.Bytes `json:"blockSignature"`
	Transactions        []burst.ID  `json:"transactions,omitempty"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	type block Block
	aux := struct {
		*block
		Nonce       numeric `json:"nonce"`
		BaseTarget  numeric `json:"baseTarget"`
		BlockReward numeric `json:"blockReward"`
	}{block: (*block)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("%T: %w", b, err)
	}
	b.Nonce = uint64(aux.Nonce)
	b.BaseTarget = uint64(aux.BaseTarget)
	reward, ok := burst.FromBurst(1).Mul(uint64(aux.BlockReward))
	if !ok {
		return fmt.Errorf("%T: block reward overflows", b)
	}
	b.BlockReward = reward
	return nil
}

func (b Block) MarshalJSON() ([]byte, error) {
	type block Block
	return json.Marshal(struct {
		block
		Nonce       string `json:"nonce"`
		BaseTarget  string `json:"baseTarget"`
		BlockReward string `json:"blockReward"`
	}{
		block:       block(b),
		Nonce:       strconv.FormatUint(b.Nonce, 10),
		BaseTarget:  strconv.FormatUint(b.BaseTarget, 10),
		BlockReward: strconv.FormatUint(b.BlockReward.Planck()/burst.PlanckPerBurst, 10),
	})
}

// Account is an account as reported by the node.
type Account struct {
	Account            burst.Address   `json:"account"`
	PublicKey          burst.PublicKey `json:"publicKey"`
	Balance            burst.Value     `json:"balanceNQT"`
	UnconfirmedBalance burst.Value     `json:"unconfirmedBalanceNQT"`
	ForgedBalance      burst.Value     `json:"forgedBalanceNQT"`
	Name               string          `json:"name,omitempty"`
	Description        string          `json:"description,omitempty"`
}

// AT is an automated transaction as reported by the node.
type AT struct {
	ID            burst.ID      `json:"at"`
	Creator       burst.Address `json:"creator"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Version       int           `json:"atVersion"`
	MachineCode   burst.Bytes   `json:"machineCode"`
	MachineData   burst.Bytes   `json:"machineData"`
	Balance       burst.Value   `json:"balanceNQT"`
	PrevBalance   burst.Value   `json:"prevBalanceNQT"`
	MinActivation burst.Value   `json:"minActivation"`
	NextBlock     uint32        `json:"nextBlock"`
	CreationBlock uint32        `json:"creationBlock"`
	Frozen        bool          `json:"frozen"`
	Running       bool          `json:"running"`
	Stopped       bool          `json:"stopped"`
	Finished      bool          `json:"finished"`
	Dead          bool          `json:"dead"`
}

// Transaction is a transaction as reported by the node.
type Transaction struct {
	ID                            burst.ID        `json:"transaction"`
	Type                          uint8           `json:"type"`
	Subtype                       uint8           `json:"subtype"`
	Version                       uint8           `json:"version"`
	Timestamp                     burst.Timestamp `json:"timestamp"`
	Deadline                      uint16          `json:"deadline"`
	Sender                        burst.Address   `json:"sender"`
	SenderPublicKey               burst.PublicKey `json:"senderPublicKey"`
	Recipient                     *burst.Address  `json:"recipient,omitempty"`
	Amount                        burst.Value     `json:"amountNQT"`
	Fee                           burst.Value     `json:"feeNQT"`
	ReferencedTransactionFullHash *burst.Hash     `json:"referencedTransactionFullHash,omitempty"`
	Signature                     burst.Bytes     `json:"signature"`
	SignatureHash                 burst.Hash      `json:"signatureHash"`
	FullHash                      burst.Hash      `json:"fullHash"`
	ECBlockID                     burst.ID        `json:"ecBlockId"`
	ECBlockHeight                 uint32          `json:"ecBlockHeight"`
	Block                         burst.ID        `json:"block,omitempty"`
	Height                        uint32          `json:"height,omitempty"`
	BlockTimestamp                burst.Timestamp `json:"blockTimestamp,omitempty"`
	Confirmations                 int             `json:"confirmations,omitempty"`

	// Attachment is nil if the transaction has none.
	Attachment attachment.Attachment `json:"-"`
	// RawAttachment holds the attachment as reported by the node when it
	// could not be decoded into an Attachment.
	RawAttachment attachment.Fields `json:"-"`
}

// AttachmentError is returned when the node reports a transaction whose
// attachment cannot be decoded. Transaction holds all other fields along
// with the RawAttachment.
type AttachmentError struct {
	Transaction Transaction
	Err         error
}

func (err *AttachmentError) Error() string {
	return fmt.Sprintf("transaction %v: %v", err.Transaction.ID, err.Err)
}

func (err *AttachmentError) Unwrap() error { return err.Err }

func (tx *Transaction) UnmarshalJSON(data []byte) error {
	type transaction Transaction
	aux := struct {
		*transaction
		Attachment attachment.Fields `json:"attachment"`
	}{transaction: (*transaction)(tx)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("%T: %w", tx, err)
	}
	a, err := attachment.Decode(aux.Attachment)
	if err != nil {
		tx.RawAttachment = aux.Attachment
		return &AttachmentError{Transaction: *tx, Err: err}
	}
	tx.Attachment = a
	return nil
}

func (tx Transaction) MarshalJSON() ([]byte, error) {
	type transaction Transaction
	f, err := attachment.Encode(tx.Attachment)
	if err != nil {
		return nil, err
	}
	if tx.Attachment == nil && len(tx.RawAttachment) > 0 {
		f = tx.RawAttachment
	}
	aux := struct {
		transaction
		Attachment attachment.Fields `json:"attachment,omitempty"`
	}{transaction: transaction(tx), Attachment: f}
	return json.Marshal(aux)
}

// TransactionBytes are the raw bytes of a transaction as reported by the
// node.
type TransactionBytes struct {
	Unsigned      burst.Bytes `json:"unsignedTransactionBytes"`
	Signed        burst.Bytes `json:"transactionBytes"`
	Confirmations int         `json:"confirmations"`
}

// Constants are the protocol constants reported by the node.
type Constants struct {
	GenesisBlockID            burst.ID              `json:"genesisBlockId"`
	GenesisAccount            burst.Address         `json:"genesisAccountId"`
	MaxBlockPayloadLength     int                   `json:"maxBlockPayloadLength"`
	MaxArbitraryMessageLength int                   `json:"maxArbitraryMessageLength"`
	TransactionTypes          []TransactionTypeInfo `json:"transactionTypes"`
}

// TransactionTypeInfo describes a transaction type supported by the node.
type TransactionTypeInfo struct {
	Value       uint8                    `json:"value"`
	Description string                   `json:"description"`
	Subtypes    []TransactionSubtypeInfo `json:"subtypes"`
}

// TransactionSubtypeInfo describes a transaction subtype supported by the
// node.
type TransactionSubtypeInfo struct {
	Value       uint8  `json:"value"`
	Description string `json:"description"`
}

// FeeSuggestion holds the fees suggested by the node for a transaction to be
// included in the next blocks with increasing priority.
//
// Cheap <= Standard <= Priority always holds.
type FeeSuggestion struct {
	Cheap    burst.Value `json:"cheap"`
	Standard burst.Value `json:"standard"`
	Priority burst.Value `json:"priority"`
}

func (fs *FeeSuggestion) UnmarshalJSON(data []byte) error {
	type feeSuggestion FeeSuggestion
	if err := json.Unmarshal(data, (*feeSuggestion)(fs)); err != nil {
		return fmt.Errorf("%T: %w", fs, err)
	}
	if fs.Cheap > fs.Standard || fs.Standard > fs.Priority {
		return fmt.Errorf("%T: fees out of order: %v, %v, %v",
			fs, fs.Cheap, fs.Standard, fs.Priority)
	}
	return nil
}

// MiningInfo is the state of the current mining round.
type MiningInfo struct {
	GenerationSignature burst.Hash `json:"generationSignature"`
	BaseTarget          uint64     `json:"-"`
	Height              uint32     `json:"-"`
	// TargetDeadline is zero if the node does not report one.
	TargetDeadline uint64 `json:"-"`
}

func (mi *MiningInfo) UnmarshalJSON(data []byte) error {
	type miningInfo MiningInfo
	aux := struct {
		*miningInfo
		BaseTarget     numeric `json:"baseTarget"`
		Height         numeric `json:"height"`
		TargetDeadline numeric `json:"targetDeadline"`
	}{miningInfo: (*miningInfo)(mi)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("%T: %w", mi, err)
	}
	if aux.Height > 1<<32-1 {
		return fmt.Errorf("%T: height overflows", mi)
	}
	mi.BaseTarget = uint64(aux.BaseTarget)
	mi.Height = uint32(aux.Height)
	mi.TargetDeadline = uint64(aux.TargetDeadline)
	return nil
}

func (mi MiningInfo) MarshalJSON() ([]byte, error) {
	type miningInfo MiningInfo
	return json.Marshal(struct {
		miningInfo
		BaseTarget     string `json:"baseTarget"`
		Height         string `json:"height"`
		TargetDeadline uint64 `json:"targetDeadline,omitempty"`
	}{
		miningInfo:     miningInfo(mi),
		BaseTarget:     strconv.FormatUint(mi.BaseTarget, 10),
		Height:         strconv.FormatUint(uint64(mi.Height), 10),
		TargetDeadline: mi.TargetDeadline,
	})
}

// SameRound returns true if mi and other describe the same mining round.
func (mi MiningInfo) SameRound(other MiningInfo) bool {
	return mi.Height == other.Height &&
		mi.BaseTarget == other.BaseTarget &&
		mi.GenerationSignature == other.GenerationSignature
}

// BroadcastResult is the response to a broadcast transaction.
type BroadcastResult struct {
	Transaction       burst.ID   `json:"transaction"`
	FullHash          burst.Hash `json:"fullHash"`
	NumberPeersSentTo int        `json:"numberPeersSentTo"`
}

// numeric is a uint64 that the node reports as either a JSON string or a
// JSON number.
type numeric uint64

func (n *numeric) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	if string(data) == "null" || len(data) == 0 {
		return nil
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%T: %w", n, err)
	}
	*n = numeric(v)
	return nil
}
