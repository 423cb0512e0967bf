package container

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/bloomkit/bloom/errors"
)

func TestSingletonResolvesToSameInstance(t *testing.T) {
	log := &teardownLog{}
	built := 0
	m := newFinalized(t,
		Unit[*tracked]("db", Construct(func(*Deps) (any, error) {
			built++
			return &tracked{name: "db", log: log}, nil
		})),
	)

	a, err := Resolve[*tracked](context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Resolve[*tracked](context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("singleton resolved to distinct instances")
	}
	if built != 1 {
		t.Errorf("constructor ran %d times, want 1", built)
	}
}

func TestSingletonConstructedOnceUnderConcurrency(t *testing.T) {
	log := &teardownLog{}
	var mu sync.Mutex
	built := 0
	m := newFinalized(t,
		Unit[*tracked]("db", Construct(func(*Deps) (any, error) {
			mu.Lock()
			built++
			mu.Unlock()
			return &tracked{name: "db", log: log}, nil
		})),
	)

	const workers = 16
	instances := make([]*tracked, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Resolve[*tracked](context.Background(), m)
			if err != nil {
				t.Error(err)
				return
			}
			instances[i] = v
		}(i)
	}
	wg.Wait()

	if built != 1 {
		t.Errorf("constructor ran %d times, want 1", built)
	}
	for i := 1; i < workers; i++ {
		if instances[i] != instances[0] {
			t.Fatal("concurrent resolutions observed different instances")
		}
	}
}

func TestRequestScopeSharingAndIsolation(t *testing.T) {
	log := &teardownLog{}
	m := newFinalized(t,
		Unit[*tracked]("session", Scoped(ScopeRequest),
			Construct(func(*Deps) (any, error) {
				return &tracked{name: "session", log: log}, nil
			})),
	)

	ctx1, tok1, err := m.EnterRequestScope(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	a, err := Resolve[*tracked](ctx1, m)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Resolve[*tracked](ctx1, m)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("resolutions within one request got distinct instances")
	}

	ctx2, tok2, err := m.EnterRequestScope(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	c, err := Resolve[*tracked](ctx2, m)
	if err != nil {
		t.Fatal(err)
	}
	if c == a {
		t.Error("distinct requests shared an instance")
	}

	if err := m.ExitRequestScope(tok1); err != nil {
		t.Errorf("exit 1: %v", err)
	}
	if err := m.ExitRequestScope(tok2); err != nil {
		t.Errorf("exit 2: %v", err)
	}
	if got := log.snapshot(); len(got) != 2 {
		t.Errorf("expected 2 teardowns, got %v", got)
	}
}

func TestRequestScopeInactive(t *testing.T) {
	m := newFinalized(t,
		Unit[*tracked]("session", Scoped(ScopeRequest),
			Construct(constructing(&tracked{name: "s", log: &teardownLog{}}))),
	)
	_, err := Resolve[*tracked](context.Background(), m)
	wantCode(t, err, errors.ErrCodeScopeInactive)
}

func TestTeardownReverseOrder(t *testing.T) {
	log := &teardownLog{}
	m := newFinalized(t,
		Unit[*tracked]("first", Scoped(ScopeRequest), WithQualifier("first"),
			Construct(func(*Deps) (any, error) {
				return &tracked{name: "first", log: log}, nil
			})),
		Unit[*tracked]("second", Scoped(ScopeRequest), WithQualifier("second"),
			Construct(func(*Deps) (any, error) {
				return &tracked{name: "second", log: log}, nil
			})),
	)

	ctx, tok, err := m.EnterRequestScope(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve[*tracked](ctx, m, Named("first")); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve[*tracked](ctx, m, Named("second")); err != nil {
		t.Fatal(err)
	}
	if err := m.ExitRequestScope(tok); err != nil {
		t.Fatalf("exit: %v", err)
	}

	got := log.snapshot()
	if len(got) != 2 || got[0] != "second" || got[1] != "first" {
		t.Errorf("teardown order = %v, want [second first]", got)
	}
}

func TestTeardownAggregatesFailures(t *testing.T) {
	log := &teardownLog{}
	m := newFinalized(t,
		Unit[*tracked]("bad", Scoped(ScopeRequest), WithQualifier("bad"),
			Construct(func(*Deps) (any, error) {
				return &tracked{name: "bad", log: log, failClose: true}, nil
			})),
		Unit[*tracked]("good", Scoped(ScopeRequest), WithQualifier("good"),
			Construct(func(*Deps) (any, error) {
				return &tracked{name: "good", log: log}, nil
			})),
	)

	ctx, tok, err := m.EnterRequestScope(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve[*tracked](ctx, m, Named("bad")); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve[*tracked](ctx, m, Named("good")); err != nil {
		t.Fatal(err)
	}

	exitErr := m.ExitRequestScope(tok)
	if exitErr == nil {
		t.Fatal("expected aggregate teardown error")
	}
	var te *errors.TeardownError
	if !stderrors.As(exitErr, &te) {
		t.Fatalf("expected TeardownError, got %T", exitErr)
	}
	if len(te.Failures) != 1 {
		t.Errorf("got %d failures, want 1", len(te.Failures))
	}
	// The failing hook must not prevent the remaining hooks from running.
	if got := log.snapshot(); len(got) != 2 {
		t.Errorf("not all hooks ran: %v", got)
	}
}

func TestExitRequestScopeIdempotent(t *testing.T) {
	log := &teardownLog{}
	m := newFinalized(t,
		Unit[*tracked]("session", Scoped(ScopeRequest),
			Construct(func(*Deps) (any, error) {
				return &tracked{name: "session", log: log}, nil
			})),
	)

	ctx, tok, err := m.EnterRequestScope(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve[*tracked](ctx, m); err != nil {
		t.Fatal(err)
	}
	if err := m.ExitRequestScope(tok); err != nil {
		t.Fatal(err)
	}
	if err := m.ExitRequestScope(tok); err != nil {
		t.Errorf("second exit should be a no-op, got %v", err)
	}
	if got := log.snapshot(); len(got) != 1 {
		t.Errorf("hooks ran %d times, want 1", len(got))
	}
}

func TestShutdownTearsDownSingletonsInReverse(t *testing.T) {
	log := &teardownLog{}
	m := newFinalized(t,
		Unit[*tracked]("db", WithQualifier("db"),
			Construct(func(*Deps) (any, error) {
				return &tracked{name: "db", log: log}, nil
			})),
		Unit[*tracked]("cache", WithQualifier("cache"),
			Construct(func(*Deps) (any, error) {
				return &tracked{name: "cache", log: log}, nil
			})),
	)

	if err := m.Startup(context.Background()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	got := log.snapshot()
	if len(got) != 2 || got[0] != "cache" || got[1] != "db" {
		t.Errorf("shutdown order = %v, want [cache db]", got)
	}
}
