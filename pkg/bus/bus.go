package bus

import (
	"context"
	"sync"

	"github.com/csyork/csbot/pkg/logger"
)

const queueSize = 100

// MessageBus carries inbound events to the single dispatch loop and outbound
// lines to the transport.
type MessageBus struct {
	inbound  chan InboundEvent
	outbound chan OutboundMessage
	done     chan struct{}
	doneOnce sync.Once
	closed   bool
	mu       sync.RWMutex
}

func NewMessageBus() *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundEvent, queueSize),
		outbound: make(chan OutboundMessage, queueSize),
		done:     make(chan struct{}),
	}
}

// PublishInbound queues ev for the dispatch loop. It blocks while the queue
// is full so no protocol event is dropped. Close releases a blocked
// publisher and the event is discarded; publishing after Close is a no-op.
func (mb *MessageBus) PublishInbound(ev InboundEvent) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	if mb.closed {
		return
	}
	select {
	case mb.inbound <- ev:
	case <-mb.done:
	}
}

// OfferInbound queues ev without blocking and reports whether it was queued.
// Code running on the dispatch loop must use it: blocking there on a full
// queue would wait for itself.
func (mb *MessageBus) OfferInbound(ev InboundEvent) bool {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	if mb.closed {
		return false
	}
	select {
	case mb.inbound <- ev:
		return true
	default:
		return false
	}
}

// ConsumeInbound returns the next inbound event and whether the read succeeded.
// The bool is false when the context is cancelled or the bus is closed.
func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundEvent, bool) {
	select {
	case ev, ok := <-mb.inbound:
		return ev, ok
	case <-ctx.Done():
		return InboundEvent{}, false
	}
}

// PublishOutbound queues msg for the transport. Delivery is fire-and-forget:
// when the queue is full the line is dropped and logged rather than stalling
// the dispatch loop.
func (mb *MessageBus) PublishOutbound(msg OutboundMessage) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	if mb.closed {
		return
	}
	select {
	case mb.outbound <- msg:
	default:
		logger.WarnCF("bus", "Outbound queue full, dropping message",
			map[string]any{
				"command": msg.Command,
				"target":  msg.Target,
			})
	}
}

// SubscribeOutbound returns the next outbound message and whether the read succeeded.
// The bool is false when the context is cancelled or the bus is closed.
func (mb *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg, ok := <-mb.outbound:
		return msg, ok
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}

// Close stops the bus. Consumers see a failed read once the queues drain.
func (mb *MessageBus) Close() {
	// release blocked publishers first; they hold the read lock
	mb.doneOnce.Do(func() { close(mb.done) })

	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.closed {
		return
	}
	mb.closed = true
	close(mb.inbound)
	close(mb.outbound)
}
