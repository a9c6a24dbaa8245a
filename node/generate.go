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
	"github.com/burst-apps-team/burstkit/attachment"
	"github.com/burst-apps-team/burstkit/burst"
	"github.com/burst-apps-team/burstkit/scheduler"
	"github.com/burst-apps-team/burstkit/transaction"
)

// The Generate methods build unsigned transaction bytes locally, without
// contacting the node. Invalid parameters are reported synchronously with
// an error wrapping burst.ErrInvalidArgument. Otherwise the returned Future
// is already resolved with the bytes.
//
// The Timestamp of the given transaction.Header is replaced by the current
// time of the Service clock.

func (s *Service) generate(gen func() ([]byte, error)) (
	*scheduler.Future[[]byte], error) {
	data, err := gen()
	if err != nil {
		return nil, err
	}
	return scheduler.Resolved(data, nil), nil
}

func (s *Service) header(h transaction.Header) transaction.Header {
	h.Timestamp = burst.NewTimestamp(s.Now())
	return h
}

func (s *Service) stamp(p transaction.Params) transaction.Params {
	p.Header = s.header(p.Header)
	return p
}

// GenerateTransaction generates an ordinary payment.
func (s *Service) GenerateTransaction(
	p transaction.Params) (*scheduler.Future[[]byte], error) {
	p = s.stamp(p)
	return s.generate(func() ([]byte, error) {
		return transaction.GenerateSimple(p)
	})
}

// GenerateTransactionWithMessage generates an ordinary payment with a plain
// text message.
func (s *Service) GenerateTransactionWithMessage(p transaction.Params,
	text string) (*scheduler.Future[[]byte], error) {
	p = s.stamp(p)
	return s.generate(func() ([]byte, error) {
		return transaction.GenerateWithMessage(p, text)
	})
}

// GenerateTransactionWithBinaryMessage generates an ordinary payment with a
// binary message.
func (s *Service) GenerateTransactionWithBinaryMessage(p transaction.Params,
	msg []byte) (*scheduler.Future[[]byte], error) {
	p = s.stamp(p)
	return s.generate(func() ([]byte, error) {
		return transaction.GenerateWithBinaryMessage(p, msg)
	})
}

// GenerateTransactionWithEncryptedMessage generates an ordinary payment with
// a message encrypted for the recipient by the caller.
func (s *Service) GenerateTransactionWithEncryptedMessage(
	p transaction.Params,
	msg attachment.EncryptedData) (*scheduler.Future[[]byte], error) {
	p = s.stamp(p)
	return s.generate(func() ([]byte, error) {
		return transaction.GenerateWithEncryptedMessage(p, msg)
	})
}

// GenerateTransactionWithEncryptedMessageToSelf generates an ordinary
// payment with a message encrypted for the sender by the caller.
func (s *Service) GenerateTransactionWithEncryptedMessageToSelf(
	p transaction.Params,
	msg attachment.EncryptedData) (*scheduler.Future[[]byte], error) {
	p = s.stamp(p)
	return s.generate(func() ([]byte, error) {
		return transaction.GenerateWithEncryptedMessageToSelf(p, msg)
	})
}

// GenerateMultiOutTransaction generates a payment of each amount to its
// recipient.
func (s *Service) GenerateMultiOutTransaction(h transaction.Header,
	recipients map[burst.Address]burst.Value) (
	*scheduler.Future[[]byte], error) {
	h = s.header(h)
	return s.generate(func() ([]byte, error) {
		return transaction.GenerateMultiOut(h, recipients)
	})
}

// GenerateMultiOutSameTransaction generates a payment of amount to each of
// the distinct recipients.
func (s *Service) GenerateMultiOutSameTransaction(h transaction.Header,
	amount burst.Value, recipients []burst.Address) (
	*scheduler.Future[[]byte], error) {
	h = s.header(h)
	return s.generate(func() ([]byte, error) {
		return transaction.GenerateMultiOutSame(h, amount, recipients)
	})
}

// GenerateCreateATTransaction generates the creation of an AT.
func (s *Service) GenerateCreateATTransaction(h transaction.Header,
	at attachment.ATCreation) (*scheduler.Future[[]byte], error) {
	h = s.header(h)
	return s.generate(func() ([]byte, error) {
		return transaction.GenerateCreateAT(h, at)
	})
}

// GenerateSetRewardRecipientTransaction generates the assignment of
// recipient as the reward recipient of the sender.
func (s *Service) GenerateSetRewardRecipientTransaction(h transaction.Header,
	recipient burst.Address) (*scheduler.Future[[]byte], error) {
	h = s.header(h)
	return s.generate(func() ([]byte, error) {
		return transaction.GenerateSetRewardRecipient(h, recipient)
	})
}
