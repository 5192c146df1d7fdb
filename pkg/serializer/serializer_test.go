package serializer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/eventsvc/db/entities"
	"github.com/webhookx-io/eventsvc/pkg/serializer"
	"github.com/webhookx-io/eventsvc/pkg/types"
)

func TestMsgPackEvent(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	event := &entities.Event{
		ID:         "2NQbU8bq3ZvU0eXwP7H6n3Zk1tB",
		Name:       "Launch",
		Schedule:   "2024-01-01",
		ScheduleAt: types.NewTime(at),
		Document: types.Document{
			"name":       "Launch",
			"schedule":   "2024-01-01",
			"rigor_rank": int64(3),
			"score":      1.5,
			"attendees":  []interface{}{"a", int64(2)},
			"files":      map[string]interface{}{"image": "/uploads/x.png"},
		},
	}

	b, err := serializer.MsgPack.Serialize(event)
	require.NoError(t, err)

	decoded := &entities.Event{}
	require.NoError(t, serializer.MsgPack.Deserialize(b, decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, event.Name, decoded.Name)
	assert.True(t, decoded.ScheduleAt.Equal(event.ScheduleAt))
	assert.Equal(t, event.Document, decoded.Document)
}

func TestJSON(t *testing.T) {
	b, err := serializer.JSON.Serialize(map[string]string{"a": "b"})
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, serializer.JSON.Deserialize(b, &v))
	assert.Equal(t, "b", v["a"])
}
