package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelay struct {
	ch         chan int64
	publishErr error
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{ch: make(chan int64, 8)}
}

func (r *fakeRelay) PublishOpenCount(_ context.Context, count int64) error {
	if r.publishErr != nil {
		return r.publishErr
	}
	r.ch <- count
	return nil
}

func (r *fakeRelay) SubscribeOpenCount(context.Context) (<-chan int64, func() error, error) {
	return r.ch, func() error { return nil }, nil
}

func receive(t *testing.T, ch <-chan int64) int64 {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for count")
		return 0
	}
}

func TestBroadcaster_LocalFanOut(t *testing.T) {
	b := NewBroadcaster(nil, nil)
	a, unsubA := b.Subscribe()
	c, unsubC := b.Subscribe()
	defer unsubA()
	defer unsubC()

	b.Broadcast(context.Background(), 3)

	assert.Equal(t, int64(3), receive(t, a))
	assert.Equal(t, int64(3), receive(t, c))
}

func TestBroadcaster_KeepsNewestWhenSlow(t *testing.T) {
	b := NewBroadcaster(nil, nil)
	ch, unsub := b.Subscribe()
	defer unsub()

	b.Broadcast(context.Background(), 1)
	b.Broadcast(context.Background(), 2)
	b.Broadcast(context.Background(), 5)

	assert.Equal(t, int64(5), receive(t, ch))
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra value %d", v)
	default:
	}
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster(nil, nil)
	ch, unsub := b.Subscribe()
	assert.Equal(t, 1, b.SubscriberCount())

	unsub()
	unsub()
	assert.Equal(t, 0, b.SubscriberCount())

	_, ok := <-ch
	assert.False(t, ok)

	b.Broadcast(context.Background(), 1)
}

func TestBroadcaster_ThroughRelay(t *testing.T) {
	relay := newFakeRelay()
	b := NewBroadcaster(relay, nil)
	ch, unsub := b.Subscribe()
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	b.Broadcast(context.Background(), 7)
	assert.Equal(t, int64(7), receive(t, ch))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestBroadcaster_RelayFailureFallsBack(t *testing.T) {
	relay := newFakeRelay()
	relay.publishErr = errors.New("redis down")
	b := NewBroadcaster(relay, nil)
	ch, unsub := b.Subscribe()
	defer unsub()

	b.Broadcast(context.Background(), 4)
	assert.Equal(t, int64(4), receive(t, ch))
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster(nil, nil)
	ch, unsub := b.Subscribe()
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)
	unsub()

	late, _ := b.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}
