package eventbus

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/webhookx-io/eventsvc/pkg/loglimiter"
	"github.com/webhookx-io/eventsvc/pkg/safe"
	"github.com/webhookx-io/eventsvc/pkg/tracing"
	"go.uber.org/zap"
)

const (
	channelName  = "eventsvc"
	pingInterval = 5 * time.Second
)

// envelope is the NOTIFY payload.
type envelope struct {
	Event string          `json:"event"`
	Time  int64           `json:"time"`
	Node  string          `json:"node"`
	Data  json.RawMessage `json:"data"`
}

// PostgresEventBus fans events out to the other nodes sharing a PostgreSQL
// database through LISTEN/NOTIFY. Its own notifications are ignored on
// receipt; local subscribers get them through the in-process bus.
type PostgresEventBus struct {
	*LocalEventBus

	ctx    context.Context
	cancel context.CancelFunc

	nodeID   string
	db       *sql.DB
	listener *pq.Listener
	log      *zap.SugaredLogger
	limiter  *loglimiter.Limiter

	mux      sync.RWMutex
	handlers map[string][]ClusteringHandler
}

func NewPostgresEventBus(nodeID string, dsn string, log *zap.SugaredLogger, db *sql.DB) *PostgresEventBus {
	ctx, cancel := context.WithCancel(context.Background())
	b := &PostgresEventBus{
		LocalEventBus: NewLocalEventBus(),
		ctx:           ctx,
		cancel:        cancel,
		nodeID:        nodeID,
		db:            db,
		log:           log.Named("eventbus"),
		limiter:       loglimiter.NewLimiter(time.Minute),
		handlers:      make(map[string][]ClusteringHandler),
	}
	b.listener = pq.NewListener(dsn, 100*time.Millisecond, time.Minute, b.onListenerEvent)
	return b
}

func (b *PostgresEventBus) onListenerEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
		if b.limiter.Allow("connection") {
			b.log.Warnf("listener connection lost: %v", err)
		}
	case pq.ListenerEventReconnected:
		b.log.Info("listener reconnected")
	}
}

func (b *PostgresEventBus) Start() error {
	safe.Go(func() {
		if err := b.listener.Listen(channelName); err != nil {
			b.log.Errorf("failed to listen on channel %s: %v", channelName, err)
			return
		}
		b.log.Infof(`listening on channel "%s"`, channelName)
	})
	safe.Go(b.receive)
	return nil
}

func (b *PostgresEventBus) Stop(ctx context.Context) error {
	b.cancel()
	_ = b.LocalEventBus.Stop(ctx)
	return b.listener.Close()
}

func (b *PostgresEventBus) receive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case n := <-b.listener.NotificationChannel():
			// nil after a reconnect; notifications sent meanwhile are lost
			if n == nil {
				continue
			}
			b.dispatch([]byte(n.Extra))
		case <-ticker.C:
			if err := b.listener.Ping(); err != nil && b.limiter.Allow("ping") {
				b.log.Errorf("failed to ping database: %v", err)
			}
		}
	}
}

func (b *PostgresEventBus) dispatch(payload []byte) {
	var e envelope
	if err := json.Unmarshal(payload, &e); err != nil {
		b.log.Warnf("failed to unmarshal notification: %s", err)
		return
	}
	if e.Node == b.nodeID {
		return
	}
	b.log.Debugf("received %s event from node %s", e.Event, e.Node)

	b.mux.RLock()
	handlers := b.handlers[e.Event]
	b.mux.RUnlock()
	for _, handler := range handlers {
		handler(e.Data)
	}
}

func (b *PostgresEventBus) ClusteringBroadcast(ctx context.Context, channel string, value Marshaler) error {
	ctx, span := tracing.Start(ctx, "bus.clustering_broadcast")
	defer span.End()

	b.Broadcast(ctx, channel, value)

	data, err := value.Marshal()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(envelope{
		Event: channel,
		Time:  time.Now().UnixMilli(),
		Node:  b.nodeID,
		Data:  data,
	})
	if err != nil {
		return err
	}
	if _, err = b.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", channelName, string(payload)); err != nil {
		b.log.Errorf("failed to notify %s event: %v", channel, err)
	}
	return err
}

func (b *PostgresEventBus) ClusteringSubscribe(channel string, handler ClusteringHandler) {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.handlers[channel] = append(b.handlers[channel], handler)
}
