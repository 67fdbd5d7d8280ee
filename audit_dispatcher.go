package goSession

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// auditDispatcher decouples engine operations from sink latency: events are
// queued on a bounded channel and delivered by a single worker goroutine, so
// a slow sink can never stall a refresh or sign-in. Backpressure policy comes
// from AuditConfig: shed-and-count by default, block the emitter when
// DropIfFull is off.
type auditDispatcher struct {
	sink  AuditSink
	queue chan AuditEvent

	// blocking mirrors !AuditConfig.DropIfFull: a full queue stalls the
	// emitting operation instead of dropping the event.
	blocking bool

	// stop is closed by Close; emitters observe it and stop enqueueing.
	// drained is closed by the worker once the final queue drain finished.
	stop     chan struct{}
	drained  chan struct{}
	stopOnce sync.Once

	dropped atomic.Uint64
}

// newAuditDispatcher returns nil when auditing is disabled; a nil dispatcher
// is a valid no-op receiver for Emit, Close, and Dropped.
func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}

	d := &auditDispatcher{
		sink:     sink,
		queue:    make(chan AuditEvent, buffer),
		blocking: !cfg.DropIfFull,
		stop:     make(chan struct{}),
		drained:  make(chan struct{}),
	}

	go d.run()
	return d
}

func (d *auditDispatcher) run() {
	defer close(d.drained)

	ctx := context.Background()
	for {
		select {
		case event := <-d.queue:
			d.deliver(ctx, event)
		case <-d.stop:
			// Final drain: everything enqueued before the stop signal is
			// still delivered, then the worker exits.
			for {
				select {
				case event := <-d.queue:
					d.deliver(ctx, event)
				default:
					return
				}
			}
		}
	}
}

// deliver hands one event to the sink on a detached context: the request that
// produced the event may be long finished by the time the sink runs.
func (d *auditDispatcher) deliver(ctx context.Context, event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	d.sink.Emit(ctx, event)
}

// Emit enqueues one event for asynchronous delivery. After Close it is a
// no-op. In shed mode a full queue increments the drop counter; in blocking
// mode the caller waits until there is room, the caller's context ends, or
// the dispatcher stops.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}
	select {
	case <-d.stop:
		return
	default:
	}

	if !d.blocking {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close stops intake, waits for the worker to drain the queue, and returns.
// Safe to call more than once and from multiple goroutines.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		close(d.stop)
	})
	<-d.drained
}

// Dropped reports how many events were shed because the queue was full.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
