package remotelog

import (
	"context"
	"sync"
)

// MemorySink накапливает события в памяти, используется в тестах.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Log(_ context.Context, stack Stack, level Level, pkg Package, message string) {
	stack, level, pkg = normalize(stack, level, pkg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{
		Stack:   string(stack),
		Level:   string(level),
		Package: string(pkg),
		Message: message,
	})
}

// Events возвращает копию накопленных событий.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// NopSink отбрасывает все события.
type NopSink struct{}

func (NopSink) Log(context.Context, Stack, Level, Package, string) {}
