package chat

import (
	"encoding/json"
	"testing"

	"github.com/booktime/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainPayloads(s *Subscriber) []json.RawMessage {
	var payloads []json.RawMessage
	for {
		select {
		case p := <-s.Events():
			payloads = append(payloads, p)
		default:
			return payloads
		}
	}
}

func TestNotifier_RejectsNonStaff(t *testing.T) {
	n := NewNotifier(16, nil)

	sub, err := n.Subscribe(customer("John Smith"))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.Nil(t, sub)
	assert.Equal(t, 0, n.Len())
}

func TestNotifier_PublishReachesEachSubscriberOnce(t *testing.T) {
	n := NewNotifier(16, nil)

	first, err := n.Subscribe(staff("Adam Ford"))
	require.NoError(t, err)
	second, err := n.Subscribe(staff("Eve Jones"))
	require.NoError(t, err)

	n.Publish(json.RawMessage(`{"msg":"x"}`))

	for _, sub := range []*Subscriber{first, second} {
		payloads := drainPayloads(sub)
		require.Len(t, payloads, 1)
		assert.JSONEq(t, `{"msg":"x"}`, string(payloads[0]))
	}
}

func TestNotifier_NoHistoryForLateSubscribers(t *testing.T) {
	n := NewNotifier(16, nil)

	_, err := n.Subscribe(staff("Adam Ford"))
	require.NoError(t, err)

	n.Publish(json.RawMessage(`{"msg":"x"}`))

	late, err := n.Subscribe(staff("Eve Jones"))
	require.NoError(t, err)
	assert.Empty(t, drainPayloads(late))
}

func TestNotifier_UnsubscribeStopsDelivery(t *testing.T) {
	n := NewNotifier(16, nil)

	sub, err := n.Subscribe(staff("Adam Ford"))
	require.NoError(t, err)

	n.Unsubscribe(sub)
	n.Unsubscribe(sub) // idempotent

	n.Publish(json.RawMessage(`{"msg":"x"}`))
	assert.Empty(t, drainPayloads(sub))
	assert.Equal(t, 0, n.Len())

	select {
	case <-sub.Done():
	default:
		t.Fatal("unsubscribed subscriber should be closed")
	}
}
