// Package serializer encodes values stored in the shared cache.
package serializer

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

type Serializer interface {
	Serialize(val interface{}) ([]byte, error)
	Deserialize(b []byte, val interface{}) error
}

var (
	JSON    Serializer = jsonSerializer{}
	MsgPack Serializer = msgpackSerializer{}
)

type jsonSerializer struct{}

func (jsonSerializer) Serialize(val interface{}) ([]byte, error) {
	return json.Marshal(val)
}

func (jsonSerializer) Deserialize(b []byte, val interface{}) error {
	return json.Unmarshal(b, val)
}

// msgpackSerializer honours json struct tags, so cached entities keep the
// field names they have on the wire.
type msgpackSerializer struct{}

func (msgpackSerializer) Serialize(val interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(val); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackSerializer) Deserialize(b []byte, val interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(val)
}
