package notify

import (
	"context"
	"log"
	"time"
)

// BrokerPublisher forwards a change to an external message broker. The
// queue package provides the RabbitMQ implementation.
type BrokerPublisher interface {
	PublishChange(ctx context.Context, change Change) error
}

// Fanout publishes each change to the in-process hub and, when a broker
// publisher is configured, forwards it to the broker from a goroutine so the
// committing operation never waits on broker I/O. Broker failures are
// logged and dropped — delivery is fire-and-forget from the engine's
// perspective.
type Fanout struct {
	hub    *Hub
	broker BrokerPublisher
}

// NewFanout builds a Fanout over the hub. broker may be nil, in which case
// only in-process subscribers receive changes.
func NewFanout(hub *Hub, broker BrokerPublisher) *Fanout {
	return &Fanout{hub: hub, broker: broker}
}

// Publish implements the engine's notifier contract.
func (f *Fanout) Publish(change Change) {
	f.hub.Publish(change)
	if f.broker == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := f.broker.PublishChange(ctx, change); err != nil {
			log.Printf("notify: broker publish failed: %v", err)
		}
	}()
}
