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

package transaction

import (
	"fmt"
	"sort"

	"github.com/burst-apps-team/burstkit/attachment"
	"github.com/burst-apps-team/burstkit/burst"
)

// Recipient count bounds of multi-out transactions.
const (
	MinMultiOutRecipients     = 2
	MaxMultiOutRecipients     = 64
	MinMultiOutSameRecipients = 2
	MaxMultiOutSameRecipients = 128
)

// Header holds the fields common to every generated transaction.
type Header struct {
	SenderPublicKey burst.PublicKey
	Fee             burst.Value
	Deadline        uint16
	// Timestamp is normally the current time, see burst.NewTimestamp.
	Timestamp burst.Timestamp
	// ReferencedTransactionFullHash is optional.
	ReferencedTransactionFullHash burst.Hash
}

// Params holds the fields of a generated single recipient transaction.
type Params struct {
	Header
	Recipient burst.Address
	Amount    burst.Value
}

func (h Header) transaction(a attachment.Attachment) Transaction {
	return Transaction{
		Timestamp:                     h.Timestamp,
		Deadline:                      h.Deadline,
		SenderPublicKey:               h.SenderPublicKey,
		Fee:                           h.Fee,
		ReferencedTransactionFullHash: h.ReferencedTransactionFullHash,
		Attachment:                    a,
	}
}

func (p Params) transaction(a attachment.Attachment) Transaction {
	tx := p.Header.transaction(a)
	recipient := p.Recipient
	tx.Recipient = &recipient
	tx.Amount = p.Amount
	return tx
}

// GenerateSimple returns the unsigned bytes of an ordinary payment without
// attachment.
func GenerateSimple(p Params) ([]byte, error) {
	return p.transaction(nil).MarshalBinary()
}

// GenerateWithMessage returns the unsigned bytes of an ordinary payment with
// a plain text message.
func GenerateWithMessage(p Params, text string) ([]byte, error) {
	return p.transaction(attachment.NewMessage(text)).MarshalBinary()
}

// GenerateWithBinaryMessage returns the unsigned bytes of an ordinary payment
// with a binary message.
func GenerateWithBinaryMessage(p Params, msg []byte) ([]byte, error) {
	return p.transaction(attachment.NewBinaryMessage(msg)).MarshalBinary()
}

// GenerateWithEncryptedMessage returns the unsigned bytes of an ordinary
// payment with a message already encrypted for the recipient.
func GenerateWithEncryptedMessage(p Params,
	msg attachment.EncryptedData) ([]byte, error) {
	return p.transaction(attachment.NewEncryptedMessage(msg)).MarshalBinary()
}

// GenerateWithEncryptedMessageToSelf returns the unsigned bytes of an
// ordinary payment with a message already encrypted for the sender.
func GenerateWithEncryptedMessageToSelf(p Params,
	msg attachment.EncryptedData) ([]byte, error) {
	return p.transaction(attachment.NewEncryptToSelfMessage(msg)).
		MarshalBinary()
}

// NewMultiOut returns a multi-out transaction paying each recipient its
// amount. The outputs are ordered by recipient ID and the transaction amount
// is their sum.
//
// The number of recipients must be within [MinMultiOutRecipients,
// MaxMultiOutRecipients].
func NewMultiOut(h Header,
	recipients map[burst.Address]burst.Value) (Transaction, error) {
	if err := checkRecipients(len(recipients),
		MinMultiOutRecipients, MaxMultiOutRecipients); err != nil {
		return Transaction{}, err
	}
	payments := make([]attachment.Payment, 0, len(recipients))
	for adr, amount := range recipients {
		payments = append(payments,
			attachment.Payment{Recipient: adr, Amount: amount})
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].Recipient.ID() < payments[j].Recipient.ID()
	})
	var total burst.Value
	for _, p := range payments {
		var ok bool
		if total, ok = total.Add(p.Amount); !ok {
			return Transaction{}, fmt.Errorf("%w: total amount overflows",
				burst.ErrInvalidArgument)
		}
	}
	tx := h.transaction(attachment.NewMultiOut(payments))
	tx.Amount = total
	return tx, nil
}

// GenerateMultiOut returns the unsigned bytes of NewMultiOut.
func GenerateMultiOut(h Header,
	recipients map[burst.Address]burst.Value) ([]byte, error) {
	tx, err := NewMultiOut(h, recipients)
	if err != nil {
		return nil, err
	}
	return tx.MarshalBinary()
}

// NewMultiOutSame returns a multi-out transaction paying amount to each of
// the recipients, in the given order. The transaction amount is amount times
// the number of recipients.
//
// The number of recipients must be within [MinMultiOutSameRecipients,
// MaxMultiOutSameRecipients] and recipients must be distinct.
func NewMultiOutSame(h Header, amount burst.Value,
	recipients []burst.Address) (Transaction, error) {
	if err := checkRecipients(len(recipients),
		MinMultiOutSameRecipients, MaxMultiOutSameRecipients); err != nil {
		return Transaction{}, err
	}
	seen := make(map[burst.Address]struct{}, len(recipients))
	for _, adr := range recipients {
		if _, ok := seen[adr]; ok {
			return Transaction{}, fmt.Errorf("%w: duplicate recipient %v",
				burst.ErrInvalidArgument, adr)
		}
		seen[adr] = struct{}{}
	}
	total, ok := amount.Mul(uint64(len(recipients)))
	if !ok {
		return Transaction{}, fmt.Errorf("%w: total amount overflows",
			burst.ErrInvalidArgument)
	}
	tx := h.transaction(attachment.NewMultiOutSame(
		append([]burst.Address(nil), recipients...)))
	tx.Amount = total
	return tx, nil
}

// GenerateMultiOutSame returns the unsigned bytes of NewMultiOutSame.
func GenerateMultiOutSame(h Header, amount burst.Value,
	recipients []burst.Address) ([]byte, error) {
	tx, err := NewMultiOutSame(h, amount, recipients)
	if err != nil {
		return nil, err
	}
	return tx.MarshalBinary()
}

// GenerateCreateAT returns the unsigned bytes of an AT creation transaction.
// The Version of at is ignored. Its byte payloads and page counts are not
// interpreted.
func GenerateCreateAT(h Header, at attachment.ATCreation) ([]byte, error) {
	return h.transaction(attachment.NewATCreation(at)).MarshalBinary()
}

// GenerateSetRewardRecipient returns the unsigned bytes of a transaction
// assigning recipient as the reward recipient of the sender.
func GenerateSetRewardRecipient(h Header,
	recipient burst.Address) ([]byte, error) {
	p := Params{Header: h, Recipient: recipient}
	return p.transaction(attachment.NewRewardRecipientAssignment()).
		MarshalBinary()
}

func checkRecipients(n, min, max int) error {
	if n < min || n > max {
		return fmt.Errorf("%w: %v recipients, must be in [%v, %v]",
			burst.ErrInvalidArgument, n, min, max)
	}
	return nil
}
