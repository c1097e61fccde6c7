package notify

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Delivery
	err  error
}

func (s *recordingSender) SendOTPEmail(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Delivery{Email: email, Code: code})
	return s.err
}

func (s *recordingSender) Sent() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Delivery{}, s.sent...)
}

func TestDispatcherDeliversOffTheCallingGoroutine(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 8)
	d.Start()

	d.Enqueue(Delivery{Email: "b@x.com", Code: "123456"})
	d.Stop()

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "b@x.com", sent[0].Email)
	assert.Equal(t, "123456", sent[0].Code)
}

func TestDispatcherSwallowsSendFailures(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, 8)
	d.Start()

	// Enqueue never returns an error and never blocks; failures are
	// only observable in logs.
	d.Enqueue(Delivery{Email: "b@x.com", Code: "111111"})
	d.Enqueue(Delivery{Email: "c@x.com", Code: "222222"})
	d.Stop()

	assert.Len(t, sender.Sent(), 2)
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 1)
	// Not started: the buffered slot fills, the rest drop.

	d.Enqueue(Delivery{Email: "a@x.com", Code: "111111"})

	done := make(chan struct{})
	go func() {
		d.Enqueue(Delivery{Email: "b@x.com", Code: "222222"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}
