package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// TxManager runs every transaction under one mutex, which makes check-then-write sequences atomic.
type TxManager struct {
	mu sync.Mutex
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// PassthroughTxManager runs fn directly so tests can exercise the storage-level conflict guard.
type PassthroughTxManager struct{}

func (PassthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (PassthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (PassthroughTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Emitted is one captured notification.
type Emitted struct {
	Event   string
	Payload domain.AppointmentEvent
}

// Notifier records emitted events.
type Notifier struct {
	mu     sync.Mutex
	events []Emitted
}

func (n *Notifier) Emit(_ context.Context, event string, payload domain.AppointmentEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, Emitted{Event: event, Payload: payload})
}

// Events returns a copy of the captured events.
func (n *Notifier) Events() []Emitted {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Emitted(nil), n.events...)
}

// Logger discards output but keeps it for assertions.
type Logger struct {
	mu    sync.Mutex
	Lines []string
}

func (l *Logger) Info(format string, v ...interface{})  { l.add("INFO", format, v...) }
func (l *Logger) Warn(format string, v ...interface{})  { l.add("WARN", format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.add("ERROR", format, v...) }

func (l *Logger) add(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lines = append(l.Lines, level+" "+fmt.Sprintf(format, v...))
}
