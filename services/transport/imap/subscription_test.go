package imap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/customeros/warmup/interfaces"
)

func TestSubscriptionHandle_EmitThenUnsubscribe(t *testing.T) {
	h := &subscriptionHandle{
		events: make(chan interfaces.SubscriptionEvent, 1),
		done:   make(chan struct{}),
	}

	h.emit(interfaces.SubscriptionEvent{Kind: interfaces.EventNewMessage})

	select {
	case ev := <-h.Events():
		assert.Equal(t, interfaces.EventNewMessage, ev.Kind)
	default:
		t.Fatal("expected buffered event to be available")
	}

	h.Unsubscribe()
	h.Unsubscribe() // must not panic or double-close on repeat calls

	select {
	case <-h.done:
	case <-time.After(time.Second):
		t.Fatal("done channel was not closed")
	}
}

func TestSubscriptionHandle_EmitAfterUnsubscribeIsNoop(t *testing.T) {
	h := &subscriptionHandle{
		events: make(chan interfaces.SubscriptionEvent),
		done:   make(chan struct{}),
	}
	h.Unsubscribe()

	done := make(chan struct{})
	go func() {
		h.emit(interfaces.SubscriptionEvent{Kind: interfaces.EventNewMessage})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit should not block once unsubscribed")
	}
}
