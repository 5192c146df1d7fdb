package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// Document is a schemaless JSON object stored alongside the indexed columns of a record.
type Document map[string]interface{}

func (d Document) Get(key string) (interface{}, bool) {
	v, ok := d[key]
	return v, ok
}

// Clone returns a shallow copy; nested maps are copied one level deep.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	clone := make(Document, len(d))
	for k, v := range d {
		if m, ok := v.(map[string]interface{}); ok {
			nested := make(map[string]interface{}, len(m))
			for nk, nv := range m {
				nested[nk] = nv
			}
			v = nested
		}
		clone[k] = v
	}
	return clone
}

// Merge copies every key of src into d, replacing existing values.
func (d Document) Merge(src Document) {
	for k, v := range src {
		d[k] = v
	}
}

func (d *Document) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T", src)
	}
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.UseNumber()
	var doc map[string]interface{}
	if err := decoder.Decode(&doc); err != nil {
		return err
	}
	*d = ResolveNumbers(doc).(map[string]interface{})
	return nil
}

// Value encodes the document as a JSON string, which both jsonb and TEXT columns accept.
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ResolveNumbers walks v and replaces json.Number values with int64 when they
// are integral and float64 otherwise. Numbers that do not parse stay as strings.
func ResolveNumbers(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
				return int64(f)
			}
			return f
		}
		return val.String()
	case map[string]interface{}:
		for k, item := range val {
			val[k] = ResolveNumbers(item)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = ResolveNumbers(item)
		}
		return val
	default:
		return v
	}
}

// EncodeMsgpack stores the document as its JSON encoding so numbers keep
// their integer or float shape across the cache.
func (d Document) EncodeMsgpack(enc *msgpack.Encoder) error {
	v, err := d.Value()
	if err != nil {
		return err
	}
	return enc.EncodeString(v.(string))
}

func (d *Document) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}
	return d.Scan(s)
}
