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

// Package transaction implements the unsigned Burst transaction and its
// binary layout.
//
// The Generate functions are pure: they validate their inputs, build a
// Transaction and return its unsigned bytes, ready for an external signer.
// No I/O is performed and no signature is computed.
package transaction

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/burst-apps-team/burstkit/attachment"
	"github.com/burst-apps-team/burstkit/burst"
)

// Layout constants.
const (
	Version       = 1
	SignatureSize = 64
	HeaderSize    = 176
)

// Deadline bounds in minutes.
const (
	MinDeadline = 1
	MaxDeadline = 1440
)

// Transaction is an unsigned transaction. Its type and subtype are determined
// by its Attachment.
type Transaction struct {
	Timestamp burst.Timestamp
	// Deadline is the number of minutes after Timestamp during which the
	// transaction may be included in a block.
	Deadline        uint16
	SenderPublicKey burst.PublicKey
	// Recipient is nil for transactions whose recipients are held by the
	// attachment and for AT creation.
	Recipient                     *burst.Address
	Amount                        burst.Value
	Fee                           burst.Value
	ReferencedTransactionFullHash burst.Hash
	Signature                     [SignatureSize]byte
	ECBlockHeight                 uint32
	ECBlockID                     burst.ID

	Attachment attachment.Attachment
}

// Kind returns the type, subtype and appendix flag of tx.
func (tx Transaction) Kind() (attachment.Kind, error) {
	return attachment.KindOf(tx.Attachment)
}

// Signed returns true if tx carries a non-zero signature.
func (tx Transaction) Signed() bool {
	return tx.Signature != [SignatureSize]byte{}
}

// hasRecipient reports whether transactions of kind k carry a top-level
// recipient.
func hasRecipient(k attachment.Kind) bool {
	switch k {
	case attachment.Kind{Type: attachment.TypePayment,
		Subtype: attachment.SubtypeMultiOut},
		attachment.Kind{Type: attachment.TypePayment,
			Subtype: attachment.SubtypeMultiOutSame},
		attachment.Kind{Type: attachment.TypeAT,
			Subtype: attachment.SubtypeATCreation}:
		return false
	}
	return true
}

// Validate returns an error wrapping burst.ErrInvalidArgument if tx cannot
// be serialized.
func (tx Transaction) Validate() error {
	k, err := tx.Kind()
	if err != nil {
		return fmt.Errorf("%w: %v", burst.ErrInvalidArgument, err)
	}
	if tx.Deadline < MinDeadline || tx.Deadline > MaxDeadline {
		return fmt.Errorf("%w: deadline %v not in [%v, %v]",
			burst.ErrInvalidArgument, tx.Deadline, MinDeadline, MaxDeadline)
	}
	if tx.Amount.Planck() > math.MaxInt64 {
		return fmt.Errorf("%w: amount out of range", burst.ErrInvalidArgument)
	}
	if tx.Fee.Planck() > math.MaxInt64 {
		return fmt.Errorf("%w: fee out of range", burst.ErrInvalidArgument)
	}
	if hasRecipient(k) != (tx.Recipient != nil) {
		if tx.Recipient == nil {
			return fmt.Errorf("%w: missing recipient",
				burst.ErrInvalidArgument)
		}
		return fmt.Errorf("%w: %v has no top-level recipient",
			burst.ErrInvalidArgument, tx.Attachment.Variant())
	}
	return nil
}

// MarshalBinary returns the bytes of tx, including its signature which is
// all zeros for an unsigned transaction.
func (tx Transaction) MarshalBinary() ([]byte, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	k, _ := tx.Kind()
	data := make([]byte, 0, HeaderSize)
	data = append(data, k.Type, Version<<4|k.Subtype)
	data = binary.LittleEndian.AppendUint32(data, uint32(tx.Timestamp))
	data = binary.LittleEndian.AppendUint16(data, tx.Deadline)
	data = append(data, tx.SenderPublicKey[:]...)
	var recipient burst.ID
	if tx.Recipient != nil {
		recipient = tx.Recipient.ID()
	}
	data = binary.LittleEndian.AppendUint64(data, uint64(recipient))
	data = binary.LittleEndian.AppendUint64(data, tx.Amount.Planck())
	data = binary.LittleEndian.AppendUint64(data, tx.Fee.Planck())
	data = append(data, tx.ReferencedTransactionFullHash[:]...)
	data = append(data, tx.Signature[:]...)
	data = binary.LittleEndian.AppendUint32(data, k.Flag)
	data = binary.LittleEndian.AppendUint32(data, tx.ECBlockHeight)
	data = binary.LittleEndian.AppendUint64(data, uint64(tx.ECBlockID))
	return attachment.AppendBinary(data, tx.Attachment)
}

// UnmarshalBinary parses the bytes of a version 1 transaction into tx. The
// Attachment is nil if data holds none.
func (tx *Transaction) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: transaction: %v bytes, need at least %v",
			burst.ErrInvalidArgument, len(data), HeaderSize)
	}
	typ := data[0]
	version, subtype := data[1]>>4, data[1]&0x0f
	if version != Version {
		return fmt.Errorf("%w: transaction: unsupported version %v",
			burst.ErrInvalidArgument, version)
	}
	le := binary.LittleEndian
	var t Transaction
	t.Timestamp = burst.Timestamp(le.Uint32(data[2:6]))
	t.Deadline = le.Uint16(data[6:8])
	copy(t.SenderPublicKey[:], data[8:40])
	recipient := burst.NewAddress(burst.ID(le.Uint64(data[40:48])))
	t.Amount = burst.FromPlanck(le.Uint64(data[48:56]))
	t.Fee = burst.FromPlanck(le.Uint64(data[56:64]))
	copy(t.ReferencedTransactionFullHash[:], data[64:96])
	copy(t.Signature[:], data[96:160])
	flags := le.Uint32(data[160:164])
	t.ECBlockHeight = le.Uint32(data[164:168])
	t.ECBlockID = burst.ID(le.Uint64(data[168:176]))

	a, err := attachment.ParseBinary(typ, subtype, flags, data[HeaderSize:])
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	t.Attachment = a
	if k, _ := t.Kind(); hasRecipient(k) {
		t.Recipient = &recipient
	}
	*tx = t
	return nil
}

// Parse returns the Transaction held by data.
func Parse(data []byte) (Transaction, error) {
	var tx Transaction
	if err := tx.UnmarshalBinary(data); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}
