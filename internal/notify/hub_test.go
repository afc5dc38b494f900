package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/model"
)

func TestHub_RoutesByEventTopic(t *testing.T) {
	h := NewHub()
	a := h.Subscribe(1, 4)
	defer a.Close()
	b := h.Subscribe(2, 4)
	defer b.Close()

	h.Publish(Change{EventID: 1, RegistrationID: 7, Status: model.StatusApproved})

	select {
	case change := <-a.C:
		require.Equal(t, uint64(7), change.RegistrationID)
		require.Equal(t, model.StatusApproved, change.Status)
	default:
		t.Fatal("subscriber of event 1 received nothing")
	}
	select {
	case change := <-b.C:
		t.Fatalf("subscriber of event 2 received foreign change: %+v", change)
	default:
	}
}

func TestHub_CloseStopsDeliveryAndClosesChannel(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(1, 4)
	require.Equal(t, 1, h.SubscriberCount(1))

	sub.Close()
	require.Zero(t, h.SubscriberCount(1))

	// Publishing after Close must not panic on the closed channel.
	h.Publish(Change{EventID: 1})

	_, ok := <-sub.C
	require.False(t, ok, "channel must be closed after Close")

	// Close is idempotent.
	sub.Close()
}

func TestHub_PublishDropsWhenBufferFull(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(1, 1)
	defer sub.Close()

	h.Publish(Change{EventID: 1, RegistrationID: 1})
	// Buffer is full now; this one is dropped rather than blocking.
	done := make(chan struct{})
	go func() {
		h.Publish(Change{EventID: 1, RegistrationID: 2})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}

	change := <-sub.C
	require.Equal(t, uint64(1), change.RegistrationID)
	select {
	case change := <-sub.C:
		t.Fatalf("dropped change was delivered: %+v", change)
	default:
	}
}

func TestHub_ConcurrentSubscribePublishClose(t *testing.T) {
	h := NewHub()

	var wg, ready sync.WaitGroup
	subs := make([]*Subscription, 16)
	for i := 0; i < 16; i++ {
		wg.Add(2)
		ready.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := h.Subscribe(1, 2)
			subs[i] = sub
			ready.Done()
			for range sub.C {
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Publish(Change{EventID: 1, RegistrationID: uint64(j)})
			}
		}()
	}

	// Tear all subscriptions down while publishers may still be running.
	ready.Wait()
	for _, sub := range subs {
		sub.Close()
	}
	wg.Wait()
	require.Zero(t, h.SubscriberCount(1))
}

// recordingBroker captures forwarded changes.
type recordingBroker struct {
	mu      sync.Mutex
	changes []Change
}

func (b *recordingBroker) PublishChange(_ context.Context, change Change) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, change)
	return nil
}

func (b *recordingBroker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}

func TestFanout_DeliversToHubAndBroker(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(1, 4)
	defer sub.Close()
	broker := &recordingBroker{}
	f := NewFanout(h, broker)

	f.Publish(Change{EventID: 1, RegistrationID: 3})

	change := <-sub.C
	require.Equal(t, uint64(3), change.RegistrationID)

	require.Eventually(t, func() bool {
		return broker.count() == 1
	}, time.Second, 5*time.Millisecond, "broker forwarding is asynchronous")
}

func TestFanout_NilBroker(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(1, 4)
	defer sub.Close()
	f := NewFanout(h, nil)

	f.Publish(Change{EventID: 1, RegistrationID: 9})
	change := <-sub.C
	require.Equal(t, uint64(9), change.RegistrationID)
}
