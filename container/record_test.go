package container

import (
	"testing"

	"github.com/bloomkit/bloom/errors"
)

// permutations returns every ordering of the given markers.
func permutations(markers []Marker) [][]Marker {
	if len(markers) <= 1 {
		return [][]Marker{markers}
	}
	var out [][]Marker
	for i := range markers {
		rest := make([]Marker, 0, len(markers)-1)
		rest = append(rest, markers[:i]...)
		rest = append(rest, markers[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]Marker{markers[i]}, p...))
		}
	}
	return out
}

func wantConflict(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected a configuration conflict")
	}
	ce, ok := errors.AsContainerError(err)
	if !ok || ce.Code != errors.ErrCodeConfigurationConflict {
		t.Fatalf("expected %s, got %v", errors.ErrCodeConfigurationConflict, err)
	}
}

func TestClassificationOrderIndependent(t *testing.T) {
	markers := []Marker{
		Component(),
		Factory(),
		Configuration(),
		Construct(constructing(&consoleGreeter{name: "cfg"})),
	}
	for _, perm := range permutations(markers) {
		rec, _, err := Declare("cfg", TypeOf[*consoleGreeter](), perm...).finalize()
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if rec.kind != KindConfiguration {
			t.Errorf("got kind %s, want configuration", rec.kind)
		}
		if rec.scope != ScopeSingleton {
			t.Errorf("got scope %s, want singleton", rec.scope)
		}
	}
}

func TestHandlerFactoryIncomparable(t *testing.T) {
	markers := []Marker{
		Handler("GET", "/x"),
		Factory(),
		Construct(constructing(&consoleGreeter{})),
	}
	for _, perm := range permutations(markers) {
		_, _, err := Declare("bad", TypeOf[*consoleGreeter](), perm...).finalize()
		wantConflict(t, err)
	}
}

func TestHandlerForcesCallScope(t *testing.T) {
	rec, _, err := Declare("h", TypeOf[*consoleGreeter](),
		Handler("GET", "/greet"),
		Scoped(ScopeSingleton),
		Construct(constructing(&consoleGreeter{})),
	).finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if rec.scope != ScopeCall {
		t.Errorf("handler scope = %s, want call", rec.scope)
	}
	if rec.route == nil || rec.route.Path != "/greet" {
		t.Errorf("route not carried: %+v", rec.route)
	}
}

func TestConfigurationRejectsNonSingletonScope(t *testing.T) {
	_, _, err := Declare("cfg", TypeOf[*consoleGreeter](),
		Configuration(),
		Scoped(ScopeRequest),
		Construct(constructing(&consoleGreeter{})),
	).finalize()
	wantConflict(t, err)
}

func TestConflictingExplicitScopes(t *testing.T) {
	_, _, err := Declare("c", TypeOf[*consoleGreeter](),
		Scoped(ScopeRequest),
		Scoped(ScopeCall),
		Construct(constructing(&consoleGreeter{})),
	).finalize()
	wantConflict(t, err)
}

func TestTransactionalRequiresHandler(t *testing.T) {
	_, _, err := Declare("svc", TypeOf[*consoleGreeter](),
		Component(),
		Transactional(),
		Construct(constructing(&consoleGreeter{})),
	).finalize()
	wantConflict(t, err)
}

func TestMultipleConstructorsConflict(t *testing.T) {
	_, _, err := Declare("c", TypeOf[*consoleGreeter](),
		Construct(constructing(&consoleGreeter{})),
		Construct(constructing(&consoleGreeter{})),
	).finalize()
	wantConflict(t, err)
}

func TestMissingConstructorConflict(t *testing.T) {
	_, _, err := Declare("c", TypeOf[*consoleGreeter](), Component()).finalize()
	wantConflict(t, err)
}

func TestProvidesExpansion(t *testing.T) {
	rec, products, err := Declare("cfg", TypeOf[*consoleGreeter](),
		Configuration(),
		Construct(constructing(&consoleGreeter{name: "cfg"})),
		Provides[*tracked]("primaryStore", func(owner any, deps *Deps) (any, error) {
			return &tracked{name: "a"}, nil
		}, ProvidePrimary()),
		Provides[*tracked]("backupStore", func(owner any, deps *Deps) (any, error) {
			return &tracked{name: "b"}, nil
		}, ProvideQualifier("backup"), ProvideScoped(ScopeRequest)),
	).finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if rec.kind != KindConfiguration {
		t.Fatalf("kind = %s", rec.kind)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	if products[0].identity != "cfg.primaryStore" || products[1].identity != "cfg.backupStore" {
		t.Errorf("product identities: %s, %s", products[0].identity, products[1].identity)
	}
	if !products[0].primary {
		t.Error("primary flag not carried onto product")
	}
	if products[1].qualifier != "backup" || products[1].scope != ScopeRequest {
		t.Errorf("product metadata not carried: %+v", products[1])
	}
}

func TestDuplicateFactoryMethod(t *testing.T) {
	_, _, err := Declare("cfg", TypeOf[*consoleGreeter](),
		Factory(),
		Construct(constructing(&consoleGreeter{})),
		Provides[*tracked]("store", func(any, *Deps) (any, error) { return &tracked{}, nil }),
		Provides[*tracked]("store", func(any, *Deps) (any, error) { return &tracked{}, nil }),
	).finalize()
	wantConflict(t, err)
}

func TestProvidesOnPlainComponentConflict(t *testing.T) {
	_, _, err := Declare("c", TypeOf[*consoleGreeter](),
		Component(),
		Construct(constructing(&consoleGreeter{})),
		Provides[*tracked]("store", func(any, *Deps) (any, error) { return &tracked{}, nil }),
	).finalize()
	wantConflict(t, err)
}
