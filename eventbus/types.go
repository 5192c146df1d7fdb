package eventbus

import (
	"context"
	"encoding/json"
)

// EventCRUD is published after a record is written or deleted.
const EventCRUD = "crud"

type Handler func(v interface{})

type ClusteringHandler func(v []byte)

// EventBus delivers events in process and, for clustered stores, to the
// other nodes sharing the store.
type EventBus interface {
	ClusteringBroadcast(ctx context.Context, channel string, value Marshaler) error
	ClusteringSubscribe(channel string, handler ClusteringHandler)
	Broadcast(ctx context.Context, channel string, value interface{})
	Subscribe(channel string, handler Handler)
}

type Marshaler interface {
	Marshal() ([]byte, error)
}

type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// CrudData names a changed record. It carries no record body since NOTIFY
// payloads are limited to 8000 bytes.
type CrudData struct {
	Entity    string `json:"entity"`
	ID        string `json:"id"`
	Op        Op     `json:"op"`
	CacheName string `json:"cache_name"`
}

func (m *CrudData) Marshal() ([]byte, error) {
	return json.Marshal(m)
}
