package runtime

import (
	"testing"

	"mettatron/value"
)

func TestCompileParsesWithoutEvaluating(t *testing.T) {
	res := Compile("(= (double $x) (* $x 2))")
	if !res.Ok {
		t.Fatalf("expected Ok, got diagnostics %v", res.Diagnostics)
	}
	if len(res.Values) != 1 {
		t.Fatalf("expected 1 top-level form, got %d", len(res.Values))
	}
}

func TestCompileReportsParseErrors(t *testing.T) {
	res := Compile("(+ 1 2")
	if res.Ok {
		t.Fatal("expected Ok=false for unbalanced input")
	}
	if len(res.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
}

func TestEvalFreshEnvironment(t *testing.T) {
	got := Eval("(+ 1 2)")
	if len(got) != 1 || !value.Equal(got[0], value.NewLong(3)) {
		t.Fatalf("got %v, want [3]", got)
	}
}

func TestStateRunIsMonotone(t *testing.T) {
	s := New()
	s1 := s.Run("(+ 1 1)")
	s2 := s1.Run("(+ 2 2)")

	if len(s2.Outputs()) != 2 {
		t.Fatalf("expected 2 accumulated outputs, got %d", len(s2.Outputs()))
	}
	if !value.Equal(s2.Outputs()[0], value.NewLong(2)) {
		t.Fatalf("first output changed: %v", s2.Outputs()[0])
	}
	if !value.Equal(s2.Outputs()[1], value.NewLong(4)) {
		t.Fatalf("second output wrong: %v", s2.Outputs()[1])
	}
	// s1 is untouched by building s2 from it.
	if len(s1.Outputs()) != 1 {
		t.Fatalf("s1 was mutated: %v", s1.Outputs())
	}
}

func TestStateRunSplitEquivalentToCombined(t *testing.T) {
	combined := New().Run("(+ 1 1)").Run("(+ 2 2)")
	split := New().Run("(+ 1 1)")
	split = split.Run("(+ 2 2)")

	co, so := combined.Outputs(), split.Outputs()
	if len(co) != len(so) {
		t.Fatalf("output length mismatch: %d vs %d", len(co), len(so))
	}
	for i := range co {
		if !value.Equal(co[i], so[i]) {
			t.Fatalf("output %d differs: %v vs %v", i, co[i], so[i])
		}
	}
}

func TestExchangeRecordShape(t *testing.T) {
	s := New().Run("!(add-atom &self (Human Socrates))")
	rec := s.Exchange()
	if len(rec.Environment) != 1 {
		t.Fatalf("expected 1 fact in environment, got %v", rec.Environment)
	}
	if rec.Environment[0] != "(Human Socrates)" {
		t.Fatalf("unexpected printed fact: %q", rec.Environment[0])
	}
}
