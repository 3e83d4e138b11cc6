package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBrokerDelivers(t *testing.T) {
	b := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := b.Subscribe(ctx, "security.parameters.updated")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "security.parameters.updated", Message{Type: "updated"}))
	require.NoError(t, b.Publish(ctx, "other", Message{Type: "ignored"}))

	select {
	case payload := <-msgs:
		assert.JSONEq(t, `{"type":"updated","payload":null}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	select {
	case payload := <-msgs:
		t.Fatalf("unexpected message %s", payload)
	default:
	}
}

func TestMemoryBrokerCancelClosesSubscription(t *testing.T) {
	b := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())

	msgs, err := b.Subscribe(ctx, "c")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-msgs:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestMemoryBrokerClose(t *testing.T) {
	b := NewMemoryBroker()
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.Error(t, b.Publish(context.Background(), "c", "x"))
	_, err := b.Subscribe(context.Background(), "c")
	assert.Error(t, err)
}
