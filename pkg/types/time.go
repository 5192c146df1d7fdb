package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Time is stored as milliseconds since the Unix epoch. The zero value is
// stored as NULL.
type Time struct {
	time.Time
}

func NewTime(t time.Time) Time {
	return Time{
		Time: t,
	}
}

func (t Time) Equal(other Time) bool {
	return t.Time.Equal(other.Time)
}

func (t *Time) UnmarshalJSON(b []byte) error {
	var timestamp int64
	err := json.Unmarshal(b, &timestamp)
	if err != nil {
		return err
	}
	if timestamp != 0 {
		t.Time = time.UnixMilli(timestamp)
	}
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("0"), nil
	}
	return []byte(fmt.Sprintf("%d", t.UnixMilli())), nil
}

func (t *Time) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case int64:
		t.Time = time.UnixMilli(v).UTC()
	case time.Time:
		t.Time = v
	case []byte:
		return t.Scan(string(v))
	case string:
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot scan %q", v)
		}
		t.Time = time.UnixMilli(ms).UTC()
	default:
		return fmt.Errorf("cannot scan %T", src)
	}
	return nil
}

func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.UnixMilli(), nil
}
