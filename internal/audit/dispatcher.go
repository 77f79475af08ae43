package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSinkTimeout applies when Config.SinkTimeout is zero.
const DefaultSinkTimeout = 5 * time.Second

// Config controls dispatcher buffering. With DropIfFull unset, Emit blocks
// until the buffer has room or the caller's ctx ends.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// SinkTimeout bounds each Sink.Emit through its ctx. Zero means
	// DefaultSinkTimeout.
	SinkTimeout time.Duration
	// Logger receives sink panics and the first drop after a quiet period.
	// Nil discards them.
	Logger *slog.Logger
}

// Dispatcher forwards audit events to a sink on one background goroutine so
// request paths never wait on sink I/O. A nil *Dispatcher is valid and
// discards everything.
type Dispatcher struct {
	cfg    Config
	sink   Sink
	logger *slog.Logger

	mu     sync.RWMutex // guards queue against send-after-close
	queue  chan Event
	closed bool
	done   chan struct{}

	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
	warned    atomic.Bool
}

func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = DefaultSinkTimeout
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := &Dispatcher{
		cfg:    cfg,
		sink:   sink,
		logger: logger,
		queue:  make(chan Event, cfg.BufferSize),
		done:   make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for event := range d.queue {
		if d.forward(event) {
			d.delivered.Add(1)
			d.warned.Store(false)
		}
	}
}

// forward hands one event to the sink. A panicking sink loses that event
// only. Sinks that honor ctx give up after SinkTimeout so a stuck consumer
// cannot wedge the loop and, behind it, every blocking Emit.
func (d *Dispatcher) forward(event Event) (ok bool) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SinkTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			d.failed.Add(1)
			d.logger.Error("audit sink panicked", "event_type", event.EventType, "panic", r)
			ok = false
		}
	}()
	d.sink.Emit(ctx, event)
	if ctx.Err() != nil {
		d.failed.Add(1)
		d.logger.Warn("audit sink timed out", "event_type", event.EventType, "timeout", d.cfg.SinkTimeout)
		return false
	}
	return true
}

func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- event:
		default:
			d.drop(event)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.drop(event)
	}
}

func (d *Dispatcher) drop(event Event) {
	d.dropped.Add(1)
	if d.warned.CompareAndSwap(false, true) {
		d.logger.Warn("audit buffer full, dropping events", "event_type", event.EventType, "buffer_size", d.cfg.BufferSize)
	}
}

// Close stops intake and blocks until every buffered event has been
// forwarded. Emit calls blocked on a full buffer must finish (or their ctx
// end) before Close can proceed.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Delivered reports how many events reached the sink without panicking.
func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}

// Failed reports how many events were lost to a panicking or timed-out sink.
func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}
