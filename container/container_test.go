package container

import (
	"fmt"
	"sync"
	"testing"
)

// greeter is the interface fixture used by assignability tests.
type greeter interface {
	Greet() string
}

type consoleGreeter struct {
	name string
}

func (g *consoleGreeter) Greet() string { return "hello from " + g.name }

type shoutGreeter struct {
	name string
}

func (g *shoutGreeter) Greet() string { return "HELLO FROM " + g.name }

// teardownLog records teardown order across goroutines.
type teardownLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *teardownLog) add(name string) {
	l.mu.Lock()
	l.entries = append(l.entries, name)
	l.mu.Unlock()
}

func (l *teardownLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// tracked is a component fixture with an observable destroy hook.
type tracked struct {
	name      string
	log       *teardownLog
	failClose bool
}

func (t *tracked) Close() error {
	t.log.add(t.name)
	if t.failClose {
		return fmt.Errorf("close of %s failed", t.name)
	}
	return nil
}

// constructing returns a constructor producing a fixed instance.
func constructing(v any) Constructor {
	return func(*Deps) (any, error) { return v, nil }
}

// newFinalized builds a manager from declarations and finalizes it.
func newFinalized(t *testing.T, decls ...*Declaration) *Manager {
	t.Helper()
	m := NewManager()
	if err := m.Declare(decls...); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := m.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return m
}
