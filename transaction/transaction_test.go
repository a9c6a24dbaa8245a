package transaction_test

import (
	"testing"
	"time"

	"github.com/burst-apps-team/burstkit/attachment"
	"github.com/burst-apps-team/burstkit/burst"
	"github.com/burst-apps-team/burstkit/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	senderPublicKey = burst.NewBytes32([]byte{
		0x25, 0xdd, 0x5b, 0x1c, 0x7b, 0x06, 0x73, 0x8b,
		0x9c, 0x4e, 0x6b, 0x2c, 0x3d, 0x8a, 0x47, 0x51,
		0x0f, 0x63, 0x8d, 0x19, 0x2e, 0x95, 0xa0, 0x0b,
		0x64, 0x6e, 0x21, 0x83, 0x9c, 0x7a, 0x1f, 0x42})
	timestamp = burst.NewTimestamp(
		time.Date(2019, time.June, 1, 12, 0, 0, 0, time.UTC))
	header = transaction.Header{
		SenderPublicKey: senderPublicKey,
		Fee:             burst.FromPlanck(735000),
		Deadline:        1440,
		Timestamp:       timestamp,
	}
)

func mustParseValue(t *testing.T, s string) burst.Value {
	v, err := burst.ParseValue(s)
	require.NoError(t, err)
	return v
}

func addresses(n int) []burst.Address {
	adrs := make([]burst.Address, n)
	for i := range adrs {
		adrs[i] = burst.NewAddress(burst.ID(1000 + i))
	}
	return adrs
}

func TestGenerateSimple(t *testing.T) {
	require := require.New(t)
	// BURST-AAAA-BBBB-CCCC-DDDDD has an invalid checksum.
	_, err := burst.ParseAddress("BURST-AAAA-BBBB-CCCC-DDDDD")
	require.ErrorIs(err, burst.ErrInvalidArgument)
	rs := burst.NewAddress(6502115112683865257).RS()
	recipient, err := burst.ParseAddress(rs)
	require.NoError(err)

	h := header
	h.Fee = mustParseValue(t, "0.00735000")
	data, err := transaction.GenerateSimple(transaction.Params{
		Header:    h,
		Recipient: recipient,
		Amount:    mustParseValue(t, "1.00000000"),
	})
	require.NoError(err)
	require.Len(data, transaction.HeaderSize, "no attachment section")
	require.Equal(uint8(0), data[0], "type")
	require.Equal(uint8(transaction.Version<<4), data[1], "version/subtype")

	tx, err := transaction.Parse(data)
	require.NoError(err)
	require.Nil(tx.Attachment)
	require.False(tx.Signed())
	require.Equal(timestamp, tx.Timestamp)
	require.Equal(uint16(1440), tx.Deadline)
	require.Equal(senderPublicKey, tx.SenderPublicKey)
	require.NotNil(tx.Recipient)
	require.Equal(recipient, *tx.Recipient)
	require.Equal(rs, tx.Recipient.RS())
	require.Equal(uint64(100000000), tx.Amount.Planck())
	require.Equal(uint64(735000), tx.Fee.Planck())

	again, err := tx.MarshalBinary()
	require.NoError(err)
	require.Equal(data, again)
}

var generateTests = []struct {
	Name     string
	Generate func() ([]byte, error)
	Kind     attachment.Kind
	Recip    bool
}{{
	Name: "message",
	Generate: func() ([]byte, error) {
		return transaction.GenerateWithMessage(transaction.Params{
			Header: header, Recipient: burst.NewAddress(1),
			Amount: burst.FromBurst(1)}, "hello")
	},
	Kind: attachment.Kind{Flag: attachment.FlagMessage}, Recip: true,
}, {
	Name: "binary message",
	Generate: func() ([]byte, error) {
		return transaction.GenerateWithBinaryMessage(transaction.Params{
			Header: header, Recipient: burst.NewAddress(1)},
			[]byte{0, 1, 2})
	},
	Kind: attachment.Kind{Flag: attachment.FlagMessage}, Recip: true,
}, {
	Name: "encrypted message",
	Generate: func() ([]byte, error) {
		return transaction.GenerateWithEncryptedMessage(transaction.Params{
			Header: header, Recipient: burst.NewAddress(1)},
			attachment.EncryptedData{Data: make([]byte, 48),
				Nonce: senderPublicKey, IsText: true})
	},
	Kind: attachment.Kind{Flag: attachment.FlagEncryptedMessage}, Recip: true,
}, {
	Name: "encrypted message to self",
	Generate: func() ([]byte, error) {
		return transaction.GenerateWithEncryptedMessageToSelf(
			transaction.Params{Header: header,
				Recipient: burst.NewAddress(1)},
			attachment.EncryptedData{Data: make([]byte, 16),
				Nonce: senderPublicKey})
	},
	Kind:  attachment.Kind{Flag: attachment.FlagEncryptToSelfMessage},
	Recip: true,
}, {
	Name: "set reward recipient",
	Generate: func() ([]byte, error) {
		return transaction.GenerateSetRewardRecipient(header,
			burst.NewAddress(42))
	},
	Kind: attachment.Kind{Type: attachment.TypeMining,
		Subtype: attachment.SubtypeRewardRecipientAssignment},
	Recip: true,
}, {
	Name: "multi-out",
	Generate: func() ([]byte, error) {
		return transaction.GenerateMultiOut(header,
			map[burst.Address]burst.Value{
				burst.NewAddress(2): burst.FromBurst(2),
				burst.NewAddress(1): burst.FromBurst(1),
			})
	},
	Kind: attachment.Kind{Type: attachment.TypePayment,
		Subtype: attachment.SubtypeMultiOut},
}, {
	Name: "multi-out same",
	Generate: func() ([]byte, error) {
		return transaction.GenerateMultiOutSame(header, burst.FromBurst(1),
			addresses(3))
	},
	Kind: attachment.Kind{Type: attachment.TypePayment,
		Subtype: attachment.SubtypeMultiOutSame},
}, {
	Name: "create AT",
	Generate: func() ([]byte, error) {
		return transaction.GenerateCreateAT(header, attachment.ATCreation{
			Name:          "at",
			Description:   "test",
			CreationBytes: []byte{2, 0, 0, 0, 1, 0, 1, 0},
		})
	},
	Kind: attachment.Kind{Type: attachment.TypeAT,
		Subtype: attachment.SubtypeATCreation},
}}

func TestGenerate(t *testing.T) {
	for _, test := range generateTests {
		t.Run(test.Name, func(t *testing.T) {
			require := require.New(t)
			data, err := test.Generate()
			require.NoError(err)
			require.Greater(len(data), transaction.HeaderSize)

			tx, err := transaction.Parse(data)
			require.NoError(err)
			require.NotNil(tx.Attachment)
			kind, err := tx.Kind()
			require.NoError(err)
			require.Equal(test.Kind, kind)
			require.Equal(test.Recip, tx.Recipient != nil, "recipient")

			again, err := tx.MarshalBinary()
			require.NoError(err)
			require.Equal(data, again)
		})
	}
}

func TestGenerateMultiOut(t *testing.T) {
	for _, n := range []int{0, 1, 65} {
		recipients := make(map[burst.Address]burst.Value, n)
		for _, adr := range addresses(n) {
			recipients[adr] = burst.FromBurst(1)
		}
		_, err := transaction.GenerateMultiOut(header, recipients)
		assert.ErrorIsf(t, err, burst.ErrInvalidArgument, "%v recipients", n)
	}
	for _, n := range []int{2, 64} {
		recipients := make(map[burst.Address]burst.Value, n)
		for i, adr := range addresses(n) {
			recipients[adr] = burst.FromPlanck(uint64(i + 1))
		}
		data, err := transaction.GenerateMultiOut(header, recipients)
		if !assert.NoErrorf(t, err, "%v recipients", n) {
			continue
		}
		tx, err := transaction.Parse(data)
		if !assert.NoError(t, err) {
			continue
		}
		mo := tx.Attachment.(attachment.MultiOut)
		assert.Len(t, mo.Recipients, n)
		var total uint64
		for i, p := range mo.Recipients {
			assert.Equal(t, recipients[p.Recipient], p.Amount)
			if i > 0 {
				assert.Less(t, uint64(mo.Recipients[i-1].Recipient.ID()),
					uint64(p.Recipient.ID()), "ordered by ID")
			}
			total += p.Amount.Planck()
		}
		assert.Equal(t, total, tx.Amount.Planck())
		assert.Nil(t, tx.Recipient)
	}
}

func TestGenerateMultiOutSame(t *testing.T) {
	for _, n := range []int{0, 1, 129} {
		_, err := transaction.GenerateMultiOutSame(header,
			burst.FromBurst(1), addresses(n))
		assert.ErrorIsf(t, err, burst.ErrInvalidArgument, "%v recipients", n)
	}
	amount := mustParseValue(t, "12.34567890")
	for _, n := range []int{2, 128} {
		recipients := addresses(n)
		data, err := transaction.GenerateMultiOutSame(header, amount,
			recipients)
		if !assert.NoErrorf(t, err, "%v recipients", n) {
			continue
		}
		tx, err := transaction.Parse(data)
		if !assert.NoError(t, err) {
			continue
		}
		assert.Equal(t, attachment.NewMultiOutSame(recipients), tx.Attachment)
		assert.Equal(t, amount.Planck()*uint64(n), tx.Amount.Planck())

		// Every output in the attachment region encodes amount exactly:
		// the region holds only IDs and the shared amount is the
		// transaction amount divided by the recipient count.
		mos := tx.Attachment.(attachment.MultiOutSame)
		assert.Equal(t, amount.Planck(),
			tx.Amount.Planck()/uint64(len(mos.Recipients)))
	}

	dup := addresses(3)
	dup[2] = dup[0]
	_, err := transaction.GenerateMultiOutSame(header, amount, dup)
	assert.ErrorIs(t, err, burst.ErrInvalidArgument, "duplicate recipient")
}

func TestGenerateInvalid(t *testing.T) {
	assert := assert.New(t)
	p := transaction.Params{Header: header, Recipient: burst.NewAddress(1)}

	p.Deadline = 0
	_, err := transaction.GenerateSimple(p)
	assert.ErrorIs(err, burst.ErrInvalidArgument, "zero deadline")

	p.Deadline = 1441
	_, err = transaction.GenerateSimple(p)
	assert.ErrorIs(err, burst.ErrInvalidArgument, "long deadline")

	p.Deadline = 1
	p.Amount = burst.FromPlanck(1 << 63)
	_, err = transaction.GenerateSimple(p)
	assert.ErrorIs(err, burst.ErrInvalidArgument, "amount overflow")

	_, err = transaction.GenerateCreateAT(header, attachment.ATCreation{
		Name: string(make([]byte, 256))})
	assert.ErrorIs(err, burst.ErrInvalidArgument, "long AT name")

	_, err = transaction.GenerateWithMessage(
		transaction.Params{Header: header, Recipient: burst.NewAddress(1)},
		"\xff\xfe")
	assert.ErrorIs(err, burst.ErrInvalidArgument, "invalid UTF-8 message")

	_, err = transaction.GenerateMultiOut(header,
		map[burst.Address]burst.Value{
			burst.NewAddress(1): burst.FromPlanck(1 << 62),
			burst.NewAddress(2): burst.FromPlanck(1 << 62),
		})
	assert.ErrorIs(err, burst.ErrInvalidArgument, "total overflow")

	tx := transaction.Transaction{Deadline: 1,
		Attachment: attachment.NewMultiOutSame(addresses(2))}
	adr := burst.NewAddress(1)
	tx.Recipient = &adr
	_, err = tx.MarshalBinary()
	assert.ErrorIs(err, burst.ErrInvalidArgument, "multi-out recipient")
}

func TestParseInvalid(t *testing.T) {
	assert := assert.New(t)
	data, err := transaction.GenerateSimple(transaction.Params{
		Header: header, Recipient: burst.NewAddress(1)})
	assert.NoError(err)

	_, err = transaction.Parse(data[:transaction.HeaderSize-1])
	assert.ErrorIs(err, burst.ErrInvalidArgument, "short")

	bad := append([]byte(nil), data...)
	bad[1] = 2 << 4
	_, err = transaction.Parse(bad)
	assert.ErrorIs(err, burst.ErrInvalidArgument, "version")

	_, err = transaction.Parse(append(data, 1))
	assert.ErrorIs(err, burst.ErrMalformedAttachment, "trailing bytes")
}
