package actionbus

import (
	"context"
	"sync"

	"github.com/basket/tgt/internal/otel"
)

// Bus is the unbounded, FIFO, lossless action queue connecting the UI,
// AuthFsm, and Telegram client goroutines. It is a single queue with one
// logical consumer (the main loop); Send never blocks and never drops,
// so a growing backlog shows up as increasing Len rather than blocked
// producers.
type Bus struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Action
	closed  bool
	metrics *otel.Metrics
}

// New builds an empty Bus.
func New() *Bus {
	b := &Bus{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// SetMetrics attaches the OTel instruments Send/Recv report queue depth
// through. Optional; a Bus with none attached just skips recording.
func (b *Bus) SetMetrics(m *otel.Metrics) {
	b.mu.Lock()
	b.metrics = m
	b.mu.Unlock()
}

// Send enqueues an action. Safe for concurrent use by multiple producers
// (UiController, the TgClient completion handler, the tick generator,
// PlaybackWorker); actions from a single caller are delivered in the order
// Send was called (FIFO per-producer, "Ordering").
func (b *Bus) Send(a Action) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.queue = append(b.queue, a)
	b.cond.Signal()
	if b.metrics != nil {
		b.metrics.ActionsSent.Add(context.Background(), 1)
		b.metrics.ActionBusDepth.Add(context.Background(), 1)
	}
}

// Recv blocks until an action is available or the bus is closed, and
// returns (action, true) or (zero, false) on close.
func (b *Bus) Recv() (Action, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.queue) == 0 && !b.closed {
		b.cond.Wait()
	}
	if len(b.queue) == 0 {
		return Action{}, false
	}
	a := b.queue[0]
	b.queue = b.queue[1:]
	if b.metrics != nil {
		b.metrics.ActionBusDepth.Add(context.Background(), -1)
	}
	return a, true
}

// TryRecv returns the next queued action without blocking, or (zero,
// false) if the queue is currently empty.
func (b *Bus) TryRecv() (Action, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return Action{}, false
	}
	a := b.queue[0]
	b.queue = b.queue[1:]
	if b.metrics != nil {
		b.metrics.ActionBusDepth.Add(context.Background(), -1)
	}
	return a, true
}

// DrainAll pulls every currently-queued action, preserving FIFO order.
// The main loop uses this to process a full batch per tick without
// blocking once the queue empties ("main loop drains the channel
// until empty").
func (b *Bus) DrainAll() []Action {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil
	}
	out := b.queue
	b.queue = nil
	if b.metrics != nil {
		b.metrics.ActionBusDepth.Add(context.Background(), -int64(len(out)))
	}
	return out
}

// Len reports the current backlog size.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Close marks the bus closed; blocked Recv callers are woken and return
// false. Used on the SendError fatal shutdown path.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
}
