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
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/burst-apps-team/burstkit/burst"
)

// Fields is the wire representation of an attachment: the key-value structure
// found under "attachment" in the node's transaction JSON. Binary payloads are
// hex encoded.
type Fields map[string]json.RawMessage

// Keys returns the sorted keys of f.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f Fields) set(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%v: %w", key, err)
	}
	f[key] = data
	return nil
}

// Wire field keys.
const (
	keyMessage              = "message"
	keyMessageIsText        = "messageIsText"
	keyEncryptedMessage     = "encryptedMessage"
	keyEncryptToSelfMessage = "encryptToSelfMessage"
	keyRecipientPublicKey   = "recipientPublicKey"
	keyRecipients           = "recipients"
	keyName                 = "name"
	keyDescription          = "description"
	keyCreationBytes        = "creationBytes"
	keyCode                 = "code"
	keyData                 = "data"
	keyDPages               = "dpages"
	keyCSPages              = "cspages"
	keyUSPages              = "uspages"
	keyMinActivationAmount  = "minActivationAmountNQT"
)

// encryptedData is the wire form of EncryptedData.
type encryptedData struct {
	Data   burst.Bytes   `json:"data"`
	Nonce  burst.Bytes32 `json:"nonce"`
	IsText bool          `json:"isText"`
}

// Encode returns the wire representation of a. Every variant includes its
// version key. A nil Attachment encodes to empty Fields.
func Encode(a Attachment) (Fields, error) {
	f := Fields{}
	if a == nil {
		return f, nil
	}
	var err error
	switch a := a.(type) {
	case Message:
		if !utf8.ValidString(a.Text) {
			return nil, fmt.Errorf("%w: %v: invalid UTF-8 text",
				burst.ErrInvalidArgument, a.Variant())
		}
		err = f.setAll(
			keyMessage, a.Text,
			keyMessageIsText, true)
	case BinaryMessage:
		err = f.setAll(
			keyMessage, burst.Bytes(a.Data),
			keyMessageIsText, false)
	case EncryptedMessage:
		err = f.set(keyEncryptedMessage, newEncryptedData(a.Message))
	case EncryptToSelfMessage:
		err = f.set(keyEncryptToSelfMessage, newEncryptedData(a.Message))
	case PublicKeyAnnouncement:
		err = f.set(keyRecipientPublicKey, a.PublicKey)
	case RewardRecipientAssignment:
	case MultiOut:
		recipients := make([][2]string, len(a.Recipients))
		for i, p := range a.Recipients {
			recipients[i] = [2]string{p.Recipient.ID().String(),
				strconv.FormatUint(p.Amount.Planck(), 10)}
		}
		err = f.set(keyRecipients, recipients)
	case MultiOutSame:
		recipients := make([]burst.ID, len(a.Recipients))
		for i, adr := range a.Recipients {
			recipients[i] = adr.ID()
		}
		err = f.set(keyRecipients, recipients)
	case ATCreation:
		err = f.setAll(
			keyName, a.Name,
			keyDescription, a.Description,
			keyCreationBytes, burst.Bytes(a.CreationBytes),
			keyCode, burst.Bytes(a.Code),
			keyData, burst.Bytes(a.Data),
			keyDPages, a.DPages,
			keyCSPages, a.CSPages,
			keyUSPages, a.USPages,
			keyMinActivationAmount, a.MinActivationAmount)
	default:
		return nil, fmt.Errorf("%w: unknown variant %T",
			burst.ErrMalformedAttachment, a)
	}
	if err != nil {
		return nil, fmt.Errorf("%v: %w", a.Variant(), err)
	}
	if err := f.set(VersionKey(a), a.version()); err != nil {
		return nil, err
	}
	return f, nil
}

func (f Fields) setAll(kv ...interface{}) error {
	for i := 0; i < len(kv); i += 2 {
		if err := f.set(kv[i].(string), kv[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON returns the JSON object holding f.
func (f Fields) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]json.RawMessage(f))
}

// Decode returns the Attachment represented by f. Empty Fields decode to a
// nil Attachment.
//
// The variant is selected by the single "version.<Name>" key present in f.
// Fields without a version key, with more than one version key, with an
// unknown name, or with missing, invalid or unexpected payload fields are
// rejected with burst.ErrMalformedAttachment.
func Decode(f Fields) (Attachment, error) {
	if len(f) == 0 {
		return nil, nil
	}
	var versionKeys []string
	for _, k := range f.Keys() {
		if strings.HasPrefix(k, VersionKeyPrefix) {
			versionKeys = append(versionKeys, k)
		}
	}
	switch len(versionKeys) {
	case 0:
		return nil, malformed("no version field in %v", f.Keys())
	case 1:
	default:
		return nil, malformed("ambiguous version fields %v", versionKeys)
	}
	versionKey := versionKeys[0]
	var version uint8
	if err := json.Unmarshal(f[versionKey], &version); err != nil {
		return nil, malformed("%v: %v", versionKey, err)
	}

	d := decoder{f: f, used: map[string]bool{versionKey: true}}
	var a Attachment
	switch name := versionKey[len(VersionKeyPrefix):]; name {
	case NameMessage:
		var isText bool
		d.get(keyMessageIsText, &isText)
		if isText {
			msg := Message{Version: version}
			d.get(keyMessage, &msg.Text)
			a = msg
		} else {
			var data burst.Bytes
			d.get(keyMessage, &data)
			a = BinaryMessage{Version: version, Data: nilIfEmpty(data)}
		}
	case NameEncryptedMessage:
		var data encryptedData
		d.get(keyEncryptedMessage, &data)
		a = EncryptedMessage{Version: version, Message: data.decode()}
	case NameEncryptToSelfMessage:
		var data encryptedData
		d.get(keyEncryptToSelfMessage, &data)
		a = EncryptToSelfMessage{Version: version, Message: data.decode()}
	case NamePublicKeyAnnouncement:
		pka := PublicKeyAnnouncement{Version: version}
		d.get(keyRecipientPublicKey, &pka.PublicKey)
		a = pka
	case NameRewardRecipientAssignment:
		a = RewardRecipientAssignment{Version: version}
	case NameMultiOut:
		var recipients [][]json.RawMessage
		d.get(keyRecipients, &recipients)
		mo := MultiOut{Version: version}
		for _, r := range recipients {
			if d.err == nil && len(r) != 2 {
				d.err = malformed("%v: entry of length %v",
					keyRecipients, len(r))
			}
			if d.err != nil {
				break
			}
			var p Payment
			d.unmarshal(keyRecipients, r[0], &p.Recipient)
			d.unmarshal(keyRecipients, r[1], &p.Amount)
			mo.Recipients = append(mo.Recipients, p)
		}
		a = mo
	case NameMultiOutSame:
		var recipients []burst.Address
		d.get(keyRecipients, &recipients)
		a = MultiOutSame{Version: version, Recipients: nilIfNoAddresses(recipients)}
	case NameATCreation:
		at := ATCreation{Version: version}
		var creationBytes, code, data burst.Bytes
		d.get(keyName, &at.Name)
		d.get(keyDescription, &at.Description)
		d.get(keyCreationBytes, &creationBytes)
		// The node only reports the fields above. The remaining fields
		// are present when encoded by this package.
		d.getOptional(keyCode, &code)
		d.getOptional(keyData, &data)
		d.getOptional(keyDPages, &at.DPages)
		d.getOptional(keyCSPages, &at.CSPages)
		d.getOptional(keyUSPages, &at.USPages)
		d.getOptional(keyMinActivationAmount, &at.MinActivationAmount)
		at.CreationBytes = nilIfEmpty(creationBytes)
		at.Code = nilIfEmpty(code)
		at.Data = nilIfEmpty(data)
		a = at
	default:
		return nil, malformed("unknown variant %q", name)
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return a, nil
}

// UnmarshalJSON decodes a JSON object into f.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("%T: %w", f, err)
	}
	*f = Fields(m)
	return nil
}

// decoder records the first error encountered and which keys were consumed
// so that unexpected keys can be rejected.
type decoder struct {
	f    Fields
	used map[string]bool
	err  error
}

func (d *decoder) get(key string, v interface{}) {
	if d.err != nil {
		return
	}
	raw, ok := d.f[key]
	if !ok {
		d.err = malformed("missing field %q", key)
		return
	}
	d.used[key] = true
	d.unmarshal(key, raw, v)
}

func (d *decoder) getOptional(key string, v interface{}) {
	if _, ok := d.f[key]; !ok {
		return
	}
	d.get(key, v)
}

func (d *decoder) unmarshal(key string, raw json.RawMessage, v interface{}) {
	if d.err != nil {
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		d.err = malformed("%v: %v", key, err)
	}
}

func (d *decoder) finish() error {
	if d.err != nil {
		return d.err
	}
	for _, k := range d.f.Keys() {
		if !d.used[k] {
			return malformed("unexpected field %q", k)
		}
	}
	return nil
}

func newEncryptedData(msg EncryptedData) encryptedData {
	return encryptedData{Data: msg.Data, Nonce: msg.Nonce, IsText: msg.IsText}
}

func (data encryptedData) decode() EncryptedData {
	return EncryptedData{
		Data:   nilIfEmpty(data.Data),
		Nonce:  data.Nonce,
		IsText: data.IsText,
	}
}

func nilIfNoAddresses(adrs []burst.Address) []burst.Address {
	if len(adrs) == 0 {
		return nil
	}
	return adrs
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %v", burst.ErrMalformedAttachment,
		fmt.Sprintf(format, args...))
}
