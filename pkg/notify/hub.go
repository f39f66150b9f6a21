package notify

import (
	"context"
	"sync"
)

const defaultBuffer = 64

// Hub is an in-process fan-out. Each subscriber owns a buffered channel;
// when it is full the event is dropped for that subscriber only.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[*Subscription]struct{}
	buffer  int
	dropped func(channel, event string)
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithBuffer sets the per-subscriber queue length.
func WithBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithDropHook is called whenever an event is dropped for a slow subscriber.
func WithDropHook(fn func(channel, event string)) HubOption {
	return func(h *Hub) { h.dropped = fn }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{subs: map[string]map[*Subscription]struct{}{}, buffer: defaultBuffer}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Publish encodes payload and broadcasts it on channel.
func (h *Hub) Publish(ctx context.Context, channel, event string, payload any) error {
	env, err := NewEnvelope(channel, event, payload)
	if err != nil {
		return err
	}
	h.Broadcast(env)
	return nil
}

// Broadcast delivers an already encoded envelope to every subscriber of its channel.
func (h *Hub) Broadcast(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[env.Channel] {
		select {
		case s.ch <- env:
		default:
			if h.dropped != nil {
				h.dropped(env.Channel, env.Event)
			}
		}
	}
}

// Subscribe registers a new subscriber on channel. The caller must Close it.
func (h *Hub) Subscribe(channel string) *Subscription {
	s := &Subscription{hub: h, channel: channel, ch: make(chan Envelope, h.buffer)}
	h.mu.Lock()
	if h.subs[channel] == nil {
		h.subs[channel] = map[*Subscription]struct{}{}
	}
	h.subs[channel][s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Subscribers returns the number of live subscriptions on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[channel])
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[s.channel]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.channel)
		}
	}
}

// Subscription is one binding to a channel.
type Subscription struct {
	hub     *Hub
	channel string
	ch      chan Envelope
	once    sync.Once
}

// Events yields envelopes until the subscription is closed.
func (s *Subscription) Events() <-chan Envelope { return s.ch }

// Close unbinds the subscription and closes its event channel. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		// remove takes the write lock, so no Broadcast is sending on ch when it closes
		s.hub.remove(s)
		close(s.ch)
	})
}
