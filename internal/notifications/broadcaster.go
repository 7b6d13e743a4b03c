// Package notifications fans the open-order count out to connected clients.
package notifications

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Relay carries counts between server replicas.
type Relay interface {
	PublishOpenCount(ctx context.Context, count int64) error
	SubscribeOpenCount(ctx context.Context) (<-chan int64, func() error, error)
}

// Broadcaster keeps the registry of local subscribers. Each subscriber gets a
// one-slot channel that always holds the newest count.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]chan int64
	nextID uint64
	closed bool

	relay Relay
	log   *zap.Logger
}

func NewBroadcaster(relay Relay, log *zap.Logger) *Broadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{
		subs:  make(map[uint64]chan int64),
		relay: relay,
		log:   log,
	}
}

// Subscribe registers a listener. The returned func unregisters it and
// closes the channel; calling it more than once is safe.
func (b *Broadcaster) Subscribe() (<-chan int64, func()) {
	ch := make(chan int64, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Broadcast publishes count through the relay, or delivers it locally when
// there is no relay or the relay fails.
func (b *Broadcaster) Broadcast(ctx context.Context, count int64) {
	if b.relay != nil {
		err := b.relay.PublishOpenCount(ctx, count)
		if err == nil {
			return
		}
		b.log.Warn("relay publish failed, delivering locally", zap.Error(err))
	}
	b.deliver(count)
}

// deliver never blocks: a stale value waiting in a subscriber's slot is
// replaced by the new one.
func (b *Broadcaster) deliver(count int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- count:
		default:
		}
	}
}

// Run relays counts received from other replicas (and this one) to local
// subscribers until ctx is done. Without a relay it just waits.
func (b *Broadcaster) Run(ctx context.Context) error {
	if b.relay == nil {
		<-ctx.Done()
		return nil
	}

	counts, unsubscribe, err := b.relay.SubscribeOpenCount(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := unsubscribe(); err != nil {
			b.log.Warn("failed to close relay subscription", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case count, ok := <-counts:
			if !ok {
				return nil
			}
			b.deliver(count)
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close disconnects every subscriber. Later subscriptions get a closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
