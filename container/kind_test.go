package container

import "testing"

func TestJoinKinds(t *testing.T) {
	tests := []struct {
		a, b Kind
		want Kind
		ok   bool
	}{
		{KindComponent, KindComponent, KindComponent, true},
		{KindComponent, KindHandler, KindHandler, true},
		{KindHandler, KindComponent, KindHandler, true},
		{KindComponent, KindFactory, KindFactory, true},
		{KindComponent, KindConfiguration, KindConfiguration, true},
		{KindFactory, KindConfiguration, KindConfiguration, true},
		{KindConfiguration, KindFactory, KindConfiguration, true},
		{KindFactory, KindFactory, KindFactory, true},
		{KindHandler, KindFactory, 0, false},
		{KindFactory, KindHandler, 0, false},
		{KindHandler, KindConfiguration, 0, false},
	}
	for _, tt := range tests {
		got, ok := joinKinds(tt.a, tt.b)
		if ok != tt.ok {
			t.Errorf("joinKinds(%s, %s) ok = %v, want %v", tt.a, tt.b, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("joinKinds(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestJoinKindsCommutative(t *testing.T) {
	kinds := []Kind{KindComponent, KindHandler, KindFactory, KindConfiguration}
	for _, a := range kinds {
		for _, b := range kinds {
			ab, okAB := joinKinds(a, b)
			ba, okBA := joinKinds(b, a)
			if okAB != okBA || (okAB && ab != ba) {
				t.Errorf("join not commutative for %s, %s", a, b)
			}
		}
	}
}

func TestScopeValid(t *testing.T) {
	for _, s := range []Scope{ScopeSingleton, ScopeRequest, ScopeCall} {
		if !s.valid() {
			t.Errorf("scope %s should be valid", s)
		}
	}
	if Scope("session").valid() {
		t.Error("unknown scope accepted")
	}
}
