package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultQueueSize     = 1024
	defaultFlushDeadline = 5 * time.Second
)

// AsyncOptions configures remote log shipping.
type AsyncOptions struct {
	// BufferSize is the number of records held while the remote sink is slow.
	BufferSize int
	// FlushTimeout bounds Shutdown when its context has no deadline.
	FlushTimeout time.Duration
	// OnDrop is called for every record discarded because the queue is full.
	OnDrop func()
}

// pendingRecord is a record waiting for the shipper goroutine.
type pendingRecord struct {
	ctx     context.Context
	record  slog.Record
	handler slog.Handler
}

// shipper owns the queue shared by an AsyncHandler and its derived handlers.
type shipper struct {
	queue        chan pendingRecord
	flushTimeout time.Duration
	onDrop       func()

	closed  atomic.Bool
	dropped atomic.Uint64
	done    sync.WaitGroup
}

func newShipper(opts AsyncOptions) *shipper {
	size := opts.BufferSize
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := opts.FlushTimeout
	if timeout <= 0 {
		timeout = defaultFlushDeadline
	}
	s := &shipper{
		queue:        make(chan pendingRecord, size),
		flushTimeout: timeout,
		onDrop:       opts.OnDrop,
	}
	s.done.Go(s.loop)
	return s
}

func (s *shipper) loop() {
	for p := range s.queue {
		_ = p.handler.Handle(p.ctx, p.record)
	}
}

// offer queues a record without blocking. Request contexts are detached so
// a finished request does not cancel delivery of its log lines.
func (s *shipper) offer(ctx context.Context, r slog.Record, h slog.Handler) {
	if s.closed.Load() {
		return
	}
	select {
	case s.queue <- pendingRecord{ctx: context.WithoutCancel(ctx), record: r, handler: h}:
	default:
		s.dropped.Add(1)
		if s.onDrop != nil {
			s.onDrop()
		}
	}
}

func (s *shipper) close(ctx context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.flushTimeout)
		defer cancel()
	}
	close(s.queue)

	drained := make(chan struct{})
	go func() {
		s.done.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AsyncHandler ships records to a slow handler, such as Better Stack, off
// the request path. When the queue is full records are dropped and counted.
type AsyncHandler struct {
	shipper *shipper
	handler slog.Handler
}

// NewAsyncHandler starts the shipping goroutine for handler.
func NewAsyncHandler(handler slog.Handler, opts AsyncOptions) *AsyncHandler {
	return &AsyncHandler{shipper: newShipper(opts), handler: handler}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.handler.Enabled(ctx, r.Level) {
		h.shipper.offer(ctx, r.Clone(), h.handler)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{shipper: h.shipper, handler: h.handler.WithAttrs(attrs)}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{shipper: h.shipper, handler: h.handler.WithGroup(name)}
}

// Dropped returns the number of records discarded on a full queue.
func (h *AsyncHandler) Dropped() uint64 {
	if h == nil || h.shipper == nil {
		return 0
	}
	return h.shipper.dropped.Load()
}

// Shutdown stops accepting records and waits for the queue to drain.
func (h *AsyncHandler) Shutdown(ctx context.Context) error {
	if h == nil || h.shipper == nil {
		return nil
	}
	return h.shipper.close(ctx)
}
