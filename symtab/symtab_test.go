package symtab

import (
	"sync"
	"testing"
)

func TestInternAssignsStableIDs(t *testing.T) {
	tab := New()
	a := tab.Intern("foo")
	b := tab.Intern("bar")
	c := tab.Intern("foo")
	if a != c {
		t.Fatalf("Intern(\"foo\") = %d then %d, want stable id", a, c)
	}
	if a == b {
		t.Fatalf("distinct names got the same id %d", a)
	}
}

func TestInternIsAppendOnly(t *testing.T) {
	tab := New()
	for i, name := range []string{"a", "b", "c"} {
		if got := tab.Intern(name); int(got) != i {
			t.Errorf("Intern(%q) = %d, want %d", name, got, i)
		}
	}
	if tab.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tab.Len())
	}
}

func TestLookupMissing(t *testing.T) {
	tab := New()
	tab.Intern("known")
	if _, ok := tab.Lookup("unknown"); ok {
		t.Fatalf("Lookup found an id for a name never interned")
	}
	if id, ok := tab.Lookup("known"); !ok || tab.Name(id) != "known" {
		t.Fatalf("Lookup/Name round trip failed for %q", "known")
	}
}

func TestNamePanicsOnUnknownID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Name to panic on an unassigned id")
		}
	}()
	New().Name(ID(42))
}

func TestCloneIsIndependent(t *testing.T) {
	tab := New()
	tab.Intern("shared")
	clone := tab.Clone()
	tab.Intern("only-in-original")
	if _, ok := clone.Lookup("only-in-original"); ok {
		t.Fatalf("clone observed a name interned into the original after cloning")
	}
	if _, ok := clone.Lookup("shared"); !ok {
		t.Fatalf("clone missing name interned before cloning")
	}
}

func TestInternConcurrentSameName(t *testing.T) {
	tab := New()
	var wg sync.WaitGroup
	ids := make([]ID, 64)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = tab.Intern("concurrent")
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[0] {
			t.Fatalf("concurrent Intern of same name produced different ids: %v", ids)
		}
	}
}
