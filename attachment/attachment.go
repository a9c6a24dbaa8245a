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

// Package attachment implements the closed set of transaction attachments and
// their codecs.
//
// Every variant has a stable canonical name (Variant) and its own Version. On the wire (the
// node's JSON representation, see Fields) each variant is tagged by a
// "version.<Name>" key, so the variant of an attachment can be determined
// before any of its payload is read. Decode never guesses: field sets which
// match no variant, or more than one, are rejected with
// burst.ErrMalformedAttachment.
//
// The binary projection (AppendBinary, ParseBinary) is the layout used inside
// transaction bytes.
package attachment

import (
	"github.com/burst-apps-team/burstkit/burst"
)

// Attachment is implemented only by the variant types of this package:
// Message, BinaryMessage, EncryptedMessage, EncryptToSelfMessage,
// PublicKeyAnnouncement, RewardRecipientAssignment, MultiOut, MultiOutSame
// and ATCreation.
//
// Consumers should type switch over the variants and treat any other type as
// a programming error.
type Attachment interface {
	// Variant is the canonical name of the variant used in its version key.
	Variant() string

	version() uint8
}

// DefaultVersion is the version used by the constructors in this package.
const DefaultVersion = 1

// VersionKeyPrefix prefixes the canonical name of a variant to form the key
// of its version field.
const VersionKeyPrefix = "version."

// Canonical variant names.
const (
	NameMessage                   = "Message"
	NameEncryptedMessage          = "EncryptedMessage"
	NameEncryptToSelfMessage      = "EncryptToSelfMessage"
	NamePublicKeyAnnouncement     = "PublicKeyAnnouncement"
	NameRewardRecipientAssignment = "RewardRecipientAssignment"
	NameMultiOut                  = "MultiOutCreation"
	NameMultiOutSame              = "MultiSameOutCreation"
	NameATCreation                = "AutomatedTransactionsCreation"
)

// VersionKey returns the key of the version field of a, e.g.
// "version.RewardRecipientAssignment".
func VersionKey(a Attachment) string {
	return VersionKeyPrefix + a.Variant()
}

// Message is a plain text message.
//
// Message and BinaryMessage are both reported by the node as "Message".
type Message struct {
	Version uint8
	Text    string
}

// NewMessage returns a text Message.
func NewMessage(text string) Message {
	return Message{Version: DefaultVersion, Text: text}
}

// BinaryMessage is an arbitrary binary message. It shares its Variant with
// Message and is distinguished on the wire by its text flag being false.
type BinaryMessage struct {
	Version uint8
	Data    []byte
}

// NewBinaryMessage returns a BinaryMessage holding data.
func NewBinaryMessage(data []byte) BinaryMessage {
	return BinaryMessage{Version: DefaultVersion, Data: nilIfEmpty(data)}
}

// EncryptedData is a message that has already been encrypted by an external
// collaborator. It is carried opaquely.
type EncryptedData struct {
	Data   []byte
	Nonce  burst.Bytes32
	IsText bool
}

// EncryptedMessage is a message encrypted for the recipient, readable by the
// sender and the recipient.
type EncryptedMessage struct {
	Version uint8
	Message EncryptedData
}

// NewEncryptedMessage returns an EncryptedMessage holding msg.
func NewEncryptedMessage(msg EncryptedData) EncryptedMessage {
	msg.Data = nilIfEmpty(msg.Data)
	return EncryptedMessage{Version: DefaultVersion, Message: msg}
}

// EncryptToSelfMessage is a message encrypted with the sender's own key pair,
// readable only by the sender.
type EncryptToSelfMessage struct {
	Version uint8
	Message EncryptedData
}

// NewEncryptToSelfMessage returns an EncryptToSelfMessage holding msg.
func NewEncryptToSelfMessage(msg EncryptedData) EncryptToSelfMessage {
	msg.Data = nilIfEmpty(msg.Data)
	return EncryptToSelfMessage{Version: DefaultVersion, Message: msg}
}

// PublicKeyAnnouncement announces the public key of the recipient so that a
// new account becomes spendable.
type PublicKeyAnnouncement struct {
	Version   uint8
	PublicKey burst.PublicKey
}

// NewPublicKeyAnnouncement returns a PublicKeyAnnouncement of pk.
func NewPublicKeyAnnouncement(pk burst.PublicKey) PublicKeyAnnouncement {
	return PublicKeyAnnouncement{Version: DefaultVersion, PublicKey: pk}
}

// RewardRecipientAssignment assigns the recipient of the transaction as the
// reward recipient of the sender. It has no payload besides its version.
type RewardRecipientAssignment struct {
	Version uint8
}

// NewRewardRecipientAssignment returns a RewardRecipientAssignment.
func NewRewardRecipientAssignment() RewardRecipientAssignment {
	return RewardRecipientAssignment{Version: DefaultVersion}
}

// Payment is a single output of a MultiOut.
type Payment struct {
	Recipient burst.Address
	Amount    burst.Value
}

// MultiOut pays a distinct amount to each of its recipients.
type MultiOut struct {
	Version    uint8
	Recipients []Payment
}

// NewMultiOut returns a MultiOut paying to recipients in the given order.
func NewMultiOut(recipients []Payment) MultiOut {
	if len(recipients) == 0 {
		recipients = nil
	}
	return MultiOut{Version: DefaultVersion, Recipients: recipients}
}

// MultiOutSame pays the amount of its transaction, divided evenly, to each of
// its recipients.
type MultiOutSame struct {
	Version    uint8
	Recipients []burst.Address
}

// NewMultiOutSame returns a MultiOutSame paying to recipients in the given
// order.
func NewMultiOutSame(recipients []burst.Address) MultiOutSame {
	if len(recipients) == 0 {
		recipients = nil
	}
	return MultiOutSame{Version: DefaultVersion, Recipients: recipients}
}

// ATCreation creates an automated transaction. All byte payloads and page
// counts are carried without interpretation; validating them is the
// executing node's responsibility.
type ATCreation struct {
	Version             uint8
	Name                string
	Description         string
	CreationBytes       []byte
	Code                []byte
	Data                []byte
	DPages              int
	CSPages             int
	USPages             int
	MinActivationAmount burst.Value
}

// NewATCreation returns at with the default version.
func NewATCreation(at ATCreation) ATCreation {
	at.Version = DefaultVersion
	at.CreationBytes = nilIfEmpty(at.CreationBytes)
	at.Code = nilIfEmpty(at.Code)
	at.Data = nilIfEmpty(at.Data)
	return at
}

func (Message) Variant() string                   { return NameMessage }
func (BinaryMessage) Variant() string             { return NameMessage }
func (EncryptedMessage) Variant() string          { return NameEncryptedMessage }
func (EncryptToSelfMessage) Variant() string      { return NameEncryptToSelfMessage }
func (PublicKeyAnnouncement) Variant() string     { return NamePublicKeyAnnouncement }
func (RewardRecipientAssignment) Variant() string { return NameRewardRecipientAssignment }
func (MultiOut) Variant() string                  { return NameMultiOut }
func (MultiOutSame) Variant() string              { return NameMultiOutSame }
func (ATCreation) Variant() string                { return NameATCreation }

func (a Message) version() uint8                   { return a.Version }
func (a BinaryMessage) version() uint8             { return a.Version }
func (a EncryptedMessage) version() uint8          { return a.Version }
func (a EncryptToSelfMessage) version() uint8      { return a.Version }
func (a PublicKeyAnnouncement) version() uint8     { return a.Version }
func (a RewardRecipientAssignment) version() uint8 { return a.Version }
func (a MultiOut) version() uint8                  { return a.Version }
func (a MultiOutSame) version() uint8              { return a.Version }
func (a ATCreation) version() uint8                { return a.Version }

// Version returns the version of a.
func Version(a Attachment) uint8 {
	return a.version()
}

func nilIfEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
