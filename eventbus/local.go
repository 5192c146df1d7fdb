package eventbus

import (
	"context"

	evbus "github.com/asaskevich/EventBus"
	"github.com/webhookx-io/eventsvc/pkg/tracing"
)

// LocalEventBus delivers events within the process only. It serves
// single-node stores that have no notification channel.
type LocalEventBus struct {
	bus evbus.Bus
}

func NewLocalEventBus() *LocalEventBus {
	return &LocalEventBus{bus: evbus.New()}
}

func (b *LocalEventBus) Name() string {
	return "eventbus"
}

func (b *LocalEventBus) Start() error {
	return nil
}

func (b *LocalEventBus) Stop(ctx context.Context) error {
	b.bus.WaitAsync()
	return nil
}

func (b *LocalEventBus) ClusteringBroadcast(ctx context.Context, channel string, value Marshaler) error {
	b.Broadcast(ctx, channel, value)
	return nil
}

func (b *LocalEventBus) ClusteringSubscribe(channel string, handler ClusteringHandler) {
	// no other nodes
}

func (b *LocalEventBus) Broadcast(ctx context.Context, channel string, value interface{}) {
	_, span := tracing.Start(ctx, "bus.broadcast")
	defer span.End()

	b.bus.Publish(channel, value)
}

func (b *LocalEventBus) Subscribe(channel string, handler Handler) {
	_ = b.bus.SubscribeAsync(channel, handler, false)
}

// WaitAsync blocks until every asynchronous handler has returned.
func (b *LocalEventBus) WaitAsync() {
	b.bus.WaitAsync()
}
