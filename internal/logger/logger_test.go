package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garyellow/course-eligibility-go/internal/ctxutil"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()
			if got := ParseLevel(tt.level); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"level":"warning"`) {
		t.Errorf("warn record missing or mislabelled: %s", out)
	}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v (%s)", err, buf.String())
	}
	return entry
}

func TestLogger_JSONFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewWithWriter("info", &buf).Info("test message")

	entry := decode(t, &buf)
	for _, field := range []string{"timestamp", "level", "message"} {
		if _, ok := entry[field]; !ok {
			t.Errorf("JSON log missing required field %q", field)
		}
	}
	if entry["message"] != "test message" {
		t.Errorf("message = %v, want %q", entry["message"], "test message")
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want %q", entry["level"], "info")
	}
}

func TestLogger_Fields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(*Logger) *Logger
		key   string
		want  any
	}{
		{"module", func(l *Logger) *Logger { return l.WithModule("eligibility") }, "module", "eligibility"},
		{"request id", func(l *Logger) *Logger { return l.WithRequestID("req-123") }, "request_id", "req-123"},
		{"error", func(l *Logger) *Logger { return l.WithError(errors.New("boom")) }, "error", "boom"},
		{"field", func(l *Logger) *Logger { return l.WithField("matches", 3) }, "matches", float64(3)},
		{"fields", func(l *Logger) *Logger { return l.WithFields(map[string]any{"rule": "default"}) }, "rule", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.build(NewWithWriter("info", &buf)).Info("test message")
			entry := decode(t, &buf)
			if entry[tt.key] != tt.want {
				t.Errorf("%s = %v, want %v", tt.key, entry[tt.key], tt.want)
			}
		})
	}
}

func TestLogger_ContextValues(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithRequestID(context.Background(), "ctx-req-456")
	log.InfoContext(ctx, "test message")

	entry := decode(t, &buf)
	if entry["request_id"] != "ctx-req-456" {
		t.Errorf("request_id = %v, want %q", entry["request_id"], "ctx-req-456")
	}
}

func TestLogger_ShutdownWithoutRemote(t *testing.T) {
	t.Parallel()
	log := New("info")
	if log.RemoteEnabled() {
		t.Error("RemoteEnabled() = true without a token")
	}
	if err := log.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	var nilLogger *Logger
	if err := nilLogger.Shutdown(context.Background()); err != nil {
		t.Errorf("nil Shutdown() error = %v", err)
	}
}

// syncBuffer is a bytes.Buffer safe for the async worker goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestAsyncHandler_FlushOnShutdown(t *testing.T) {
	t.Parallel()
	var out syncBuffer
	h := NewAsyncHandler(slog.NewJSONHandler(&out, nil), AsyncOptions{BufferSize: 16, FlushTimeout: time.Second})
	log := slog.New(h.WithAttrs([]slog.Attr{slog.String("sink", "remote")}))

	for range 5 {
		log.Info("queued")
	}

	if err := h.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if n := strings.Count(out.String(), `"msg":"queued"`); n != 5 {
		t.Errorf("flushed %d records, want 5", n)
	}
	if !strings.Contains(out.String(), `"sink":"remote"`) {
		t.Errorf("attributes lost: %s", out.String())
	}

	// Records after shutdown are dropped, and a second shutdown is a no-op.
	log.Info("late")
	if err := h.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
	if strings.Contains(out.String(), "late") {
		t.Error("record written after shutdown")
	}
}

// gate blocks Handle until released, so the async queue fills up.
type gate struct {
	slog.Handler
	release chan struct{}
}

func (g gate) Handle(ctx context.Context, r slog.Record) error {
	<-g.release
	return g.Handler.Handle(ctx, r)
}

func TestAsyncHandler_DropsWhenQueueFull(t *testing.T) {
	t.Parallel()
	var out syncBuffer
	release := make(chan struct{})
	var reported atomic.Int64

	h := NewAsyncHandler(gate{Handler: slog.NewJSONHandler(&out, nil), release: release}, AsyncOptions{
		BufferSize:   2,
		FlushTimeout: time.Second,
		OnDrop:       func() { reported.Add(1) },
	})
	log := slog.New(h)

	// The shipper blocks on its first record, so the queue fills and later
	// records are dropped.
	logged := 0
	for h.Dropped() < 3 && logged < 200 {
		log.Info("Eligibility evaluated", "i", logged)
		logged++
		time.Sleep(time.Millisecond)
	}
	close(release)

	if err := h.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if h.Dropped() < 3 {
		t.Fatalf("Dropped() = %d, want at least 3", h.Dropped())
	}
	if uint64(reported.Load()) != h.Dropped() {
		t.Errorf("OnDrop called %d times, Dropped() = %d", reported.Load(), h.Dropped())
	}
	delivered := strings.Count(out.String(), "Eligibility evaluated")
	if uint64(delivered)+h.Dropped() != uint64(logged) {
		t.Errorf("delivered %d + dropped %d != logged %d", delivered, h.Dropped(), logged)
	}
}

func TestAsyncHandler_DetachesRequestContext(t *testing.T) {
	t.Parallel()
	var out syncBuffer
	h := NewAsyncHandler(ctxCheckHandler{Handler: slog.NewJSONHandler(&out, nil)}, AsyncOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	slog.New(h).InfoContext(ctx, "HTTP request completed")
	cancel()

	if err := h.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if strings.Contains(out.String(), `"ctx_err"`) {
		t.Errorf("shipper saw a cancelled request context: %s", out.String())
	}
}

// ctxCheckHandler records a ctx_err attribute when the context is done.
type ctxCheckHandler struct{ slog.Handler }

func (c ctxCheckHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx.Err() != nil {
		r.AddAttrs(slog.String("ctx_err", ctx.Err().Error()))
	}
	return c.Handler.Handle(ctx, r)
}
