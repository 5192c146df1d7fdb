package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeJSON(t *testing.T) {
	tm, err := time.Parse(time.RFC3339Nano, "2006-01-02T15:04:05.999Z")
	assert.Nil(t, err)
	t1 := NewTime(tm)
	s, err := json.Marshal(t1)
	assert.Nil(t, err)
	assert.EqualValues(t, "1136214245999", string(s))

	var t2 Time
	assert.NoError(t, json.Unmarshal([]byte("1136214245999"), &t2))
	assert.True(t, t1.Equal(t2))
}

func TestTimeSQL(t *testing.T) {
	tm := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	v, err := NewTime(tm).Value()
	assert.NoError(t, err)
	assert.Equal(t, int64(1704067200000), v)

	v, err = Time{}.Value()
	assert.NoError(t, err)
	assert.Nil(t, v)

	var scanned Time
	assert.NoError(t, scanned.Scan(int64(1704067200000)))
	assert.True(t, scanned.Equal(NewTime(tm)))

	assert.NoError(t, scanned.Scan([]byte("1704067200000")))
	assert.True(t, scanned.Equal(NewTime(tm)))

	assert.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())

	assert.Error(t, scanned.Scan(1.5))
}
