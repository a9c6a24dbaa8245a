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

package attachment

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"unicode/utf8"

	"github.com/burst-apps-team/burstkit/burst"
)

// Transaction types and subtypes which are defined by an attachment.
const (
	TypePayment                      uint8 = 0
	SubtypeOrdinaryPayment           uint8 = 0
	SubtypeMultiOut                  uint8 = 1
	SubtypeMultiOutSame              uint8 = 2
	TypeMining                       uint8 = 20
	SubtypeRewardRecipientAssignment uint8 = 0
	TypeAT                           uint8 = 22
	SubtypeATCreation                uint8 = 0
)

// Appendix flags of the transaction header. Message-like attachments are
// appended to an ordinary payment and are signalled by their flag only.
const (
	FlagMessage               uint32 = 1 << 0
	FlagEncryptedMessage      uint32 = 1 << 1
	FlagPublicKeyAnnouncement uint32 = 1 << 2
	FlagEncryptToSelfMessage  uint32 = 1 << 3
)

const messageIsTextBit = 1 << 31

// Kind is the placement of an attachment within a transaction header.
type Kind struct {
	Type    uint8
	Subtype uint8
	// Flag is non-zero for appendix attachments.
	Flag uint32
}

// IsAppendix reports whether the attachment is appended to an ordinary
// payment rather than defining the transaction type.
func (k Kind) IsAppendix() bool {
	return k.Flag != 0
}

// KindOf returns the Kind of a. A nil Attachment is an ordinary payment.
func KindOf(a Attachment) (Kind, error) {
	switch a.(type) {
	case nil:
		return Kind{Type: TypePayment, Subtype: SubtypeOrdinaryPayment}, nil
	case Message, BinaryMessage:
		return Kind{Type: TypePayment, Subtype: SubtypeOrdinaryPayment,
			Flag: FlagMessage}, nil
	case EncryptedMessage:
		return Kind{Type: TypePayment, Subtype: SubtypeOrdinaryPayment,
			Flag: FlagEncryptedMessage}, nil
	case EncryptToSelfMessage:
		return Kind{Type: TypePayment, Subtype: SubtypeOrdinaryPayment,
			Flag: FlagEncryptToSelfMessage}, nil
	case PublicKeyAnnouncement:
		return Kind{Type: TypePayment, Subtype: SubtypeOrdinaryPayment,
			Flag: FlagPublicKeyAnnouncement}, nil
	case RewardRecipientAssignment:
		return Kind{Type: TypeMining,
			Subtype: SubtypeRewardRecipientAssignment}, nil
	case MultiOut:
		return Kind{Type: TypePayment, Subtype: SubtypeMultiOut}, nil
	case MultiOutSame:
		return Kind{Type: TypePayment, Subtype: SubtypeMultiOutSame}, nil
	case ATCreation:
		return Kind{Type: TypeAT, Subtype: SubtypeATCreation}, nil
	}
	return Kind{}, fmt.Errorf("%w: unknown variant %T",
		burst.ErrMalformedAttachment, a)
}

// AppendBinary appends the binary layout of a to dst. A nil Attachment
// appends nothing.
//
// All integers are little-endian. Variants must have a non-zero Version,
// since version 0 layouts omit the version byte and cannot be told apart.
func AppendBinary(dst []byte, a Attachment) ([]byte, error) {
	if a == nil {
		return dst, nil
	}
	if a.version() == 0 {
		return nil, fmt.Errorf("%w: %v: version 0 has no binary layout",
			burst.ErrInvalidArgument, a.Variant())
	}
	dst = append(dst, a.version())
	switch a := a.(type) {
	case Message:
		if !utf8.ValidString(a.Text) {
			return nil, fmt.Errorf("%w: %v: invalid UTF-8 text",
				burst.ErrInvalidArgument, a.Variant())
		}
		return appendMessage(dst, []byte(a.Text), true)
	case BinaryMessage:
		return appendMessage(dst, a.Data, false)
	case EncryptedMessage:
		return appendEncrypted(dst, a.Message)
	case EncryptToSelfMessage:
		return appendEncrypted(dst, a.Message)
	case PublicKeyAnnouncement:
		return append(dst, a.PublicKey[:]...), nil
	case RewardRecipientAssignment:
		return dst, nil
	case MultiOut:
		if len(a.Recipients) > math.MaxUint8 {
			return nil, fmt.Errorf("%w: %v: too many recipients",
				burst.ErrInvalidArgument, a.Variant())
		}
		dst = append(dst, uint8(len(a.Recipients)))
		for _, p := range a.Recipients {
			if p.Amount.Planck() > math.MaxInt64 {
				return nil, fmt.Errorf("%w: %v: amount out of range",
					burst.ErrInvalidArgument, a.Variant())
			}
			dst = binary.LittleEndian.AppendUint64(dst,
				uint64(p.Recipient.ID()))
			dst = binary.LittleEndian.AppendUint64(dst, p.Amount.Planck())
		}
		return dst, nil
	case MultiOutSame:
		if len(a.Recipients) > math.MaxUint8 {
			return nil, fmt.Errorf("%w: %v: too many recipients",
				burst.ErrInvalidArgument, a.Variant())
		}
		dst = append(dst, uint8(len(a.Recipients)))
		for _, adr := range a.Recipients {
			dst = binary.LittleEndian.AppendUint64(dst, uint64(adr.ID()))
		}
		return dst, nil
	case ATCreation:
		if len(a.Name) > math.MaxUint8 {
			return nil, fmt.Errorf("%w: %v: name longer than %v bytes",
				burst.ErrInvalidArgument, a.Variant(), math.MaxUint8)
		}
		if len(a.Description) > math.MaxUint16 {
			return nil, fmt.Errorf(
				"%w: %v: description longer than %v bytes",
				burst.ErrInvalidArgument, a.Variant(), math.MaxUint16)
		}
		dst = append(dst, uint8(len(a.Name)))
		dst = append(dst, a.Name...)
		dst = binary.LittleEndian.AppendUint16(dst, uint16(len(a.Description)))
		dst = append(dst, a.Description...)
		return append(dst, a.CreationBytes...), nil
	}
	return nil, fmt.Errorf("%w: unknown variant %T",
		burst.ErrMalformedAttachment, a)
}

func appendMessage(dst, msg []byte, isText bool) ([]byte, error) {
	if len(msg) >= messageIsTextBit {
		return nil, fmt.Errorf("%w: message too long", burst.ErrInvalidArgument)
	}
	length := uint32(len(msg))
	if isText {
		length |= messageIsTextBit
	}
	dst = binary.LittleEndian.AppendUint32(dst, length)
	return append(dst, msg...), nil
}

func appendEncrypted(dst []byte, msg EncryptedData) ([]byte, error) {
	dst, err := appendMessage(dst, msg.Data, msg.IsText)
	if err != nil {
		return nil, err
	}
	return append(dst, msg.Nonce[:]...), nil
}

// ParseBinary parses the attachment of a transaction with the given type,
// subtype and appendix flags from data, which must hold exactly the
// attachment region. A transaction carries at most one attachment. An
// ordinary payment without flags and without data has no attachment and
// parses to nil.
//
// The creation bytes of an ATCreation are opaque, so only its Name,
// Description and CreationBytes are recovered.
func ParseBinary(typ, subtype uint8, flags uint32, data []byte) (Attachment, error) {
	k := Kind{Type: typ, Subtype: subtype}
	if k != (Kind{Type: TypePayment, Subtype: SubtypeOrdinaryPayment}) &&
		flags != 0 {
		return nil, malformed("appendix flags %#x on type %v/%v",
			flags, typ, subtype)
	}
	if bits.OnesCount32(flags) > 1 {
		return nil, malformed("multiple appendix flags %#x", flags)
	}
	k.Flag = flags

	if k == (Kind{Type: TypePayment, Subtype: SubtypeOrdinaryPayment}) {
		if len(data) > 0 {
			return nil, malformed("%v bytes without attachment", len(data))
		}
		return nil, nil
	}

	r := reader{data: data}
	version := r.uint8()
	if r.err == nil && version == 0 {
		return nil, malformed("version 0")
	}
	var a Attachment
	switch k {
	case Kind{Type: TypePayment, Subtype: SubtypeOrdinaryPayment,
		Flag: FlagMessage}:
		msg, isText := r.message()
		if !isText {
			a = BinaryMessage{Version: version, Data: nilIfEmpty(msg)}
			break
		}
		if !utf8.Valid(msg) {
			return nil, malformed("%v: invalid UTF-8 text", NameMessage)
		}
		a = Message{Version: version, Text: string(msg)}
	case Kind{Type: TypePayment, Subtype: SubtypeOrdinaryPayment,
		Flag: FlagEncryptedMessage}:
		a = EncryptedMessage{Version: version, Message: r.encrypted()}
	case Kind{Type: TypePayment, Subtype: SubtypeOrdinaryPayment,
		Flag: FlagEncryptToSelfMessage}:
		a = EncryptToSelfMessage{Version: version, Message: r.encrypted()}
	case Kind{Type: TypePayment, Subtype: SubtypeOrdinaryPayment,
		Flag: FlagPublicKeyAnnouncement}:
		a = PublicKeyAnnouncement{Version: version, PublicKey: r.bytes32()}
	case Kind{Type: TypeMining, Subtype: SubtypeRewardRecipientAssignment}:
		a = RewardRecipientAssignment{Version: version}
	case Kind{Type: TypePayment, Subtype: SubtypeMultiOut}:
		mo := MultiOut{Version: version}
		for n := int(r.uint8()); n > 0 && r.err == nil; n-- {
			id := burst.ID(r.uint64())
			amount := burst.FromPlanck(r.uint64())
			mo.Recipients = append(mo.Recipients,
				Payment{Recipient: burst.NewAddress(id), Amount: amount})
		}
		a = mo
	case Kind{Type: TypePayment, Subtype: SubtypeMultiOutSame}:
		mos := MultiOutSame{Version: version}
		for n := int(r.uint8()); n > 0 && r.err == nil; n-- {
			mos.Recipients = append(mos.Recipients,
				burst.NewAddress(burst.ID(r.uint64())))
		}
		a = mos
	case Kind{Type: TypeAT, Subtype: SubtypeATCreation}:
		at := ATCreation{Version: version}
		at.Name = string(r.next(int(r.uint8())))
		at.Description = string(r.next(int(r.uint16())))
		at.CreationBytes = nilIfEmpty(append([]byte(nil), r.rest()...))
		a = at
	default:
		return nil, malformed("unknown transaction type %v/%v flags %#x",
			typ, subtype, flags)
	}
	if r.err != nil {
		return nil, r.err
	}
	if len(r.data) > 0 {
		return nil, malformed("%v trailing bytes", len(r.data))
	}
	return a, nil
}

// reader consumes little-endian values from data, recording the first
// short read.
type reader struct {
	data []byte
	err  error
}

func (r *reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.data) < n {
		r.err = malformed("need %v bytes, have %v", n, len(r.data))
		return nil
	}
	b := r.data[:n:n]
	r.data = r.data[n:]
	return b
}

func (r *reader) rest() []byte {
	return r.next(len(r.data))
}

func (r *reader) uint8() uint8 {
	if b := r.next(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) uint16() uint16 {
	if b := r.next(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *reader) uint32() uint32 {
	if b := r.next(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) uint64() uint64 {
	if b := r.next(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (r *reader) bytes32() burst.Bytes32 {
	var b32 burst.Bytes32
	copy(b32[:], r.next(len(b32)))
	return b32
}

func (r *reader) message() ([]byte, bool) {
	length := r.uint32()
	isText := length&messageIsTextBit != 0
	length &^= messageIsTextBit
	return append([]byte(nil), r.next(int(length))...), isText
}

func (r *reader) encrypted() EncryptedData {
	data, isText := r.message()
	return EncryptedData{
		Data:   nilIfEmpty(data),
		Nonce:  r.bytes32(),
		IsText: isText,
	}
}
