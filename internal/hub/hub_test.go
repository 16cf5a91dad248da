package hub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlySubscribedTopics(t *testing.T) {
	h := New(nil)
	a := h.Register(4)
	b := h.Register(4)

	h.Subscribe(a, "srv.sessions.info", "srv.sess.info")
	h.Subscribe(b, "srv.sess.info")

	h.Publish("srv.sessions.info", "lobby-list")
	h.Publish("srv.sess.info", "event")
	h.Publish("srv.other.info", "noise")

	require.Equal(t, Envelope{Topic: "srv.sessions.info", Payload: "lobby-list"}, <-a)
	require.Equal(t, Envelope{Topic: "srv.sess.info", Payload: "event"}, <-a)
	require.Equal(t, Envelope{Topic: "srv.sess.info", Payload: "event"}, <-b)
	require.Empty(t, a)
	require.Empty(t, b)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := New(nil)
	sub := h.Register(4)
	h.Subscribe(sub, "srv.sess.info")
	h.Unsubscribe(sub, "srv.sess.info")

	h.Publish("srv.sess.info", "event")
	require.Empty(t, sub)
}

func TestRemoveClosesChannel(t *testing.T) {
	h := New(nil)
	sub := h.Register(1)
	h.Subscribe(sub, "srv.sess.info")
	h.Remove(sub)

	_, open := <-sub
	require.False(t, open)

	// Publishing after removal must not panic on the closed channel.
	h.Publish("srv.sess.info", "event")

	// Double removal is a no-op.
	h.Remove(sub)
}

func TestSlowSubscriberDropsMessage(t *testing.T) {
	h := New(nil)
	sub := h.Register(1)
	h.Subscribe(sub, "t")

	h.Publish("t", "first")
	h.Publish("t", "second") // buffer full, dropped

	require.Equal(t, "first", (<-sub).Payload)
	require.Empty(t, sub)
}
