package mork

import (
	"testing"

	"mettatron/symtab"
	"mettatron/value"
)

func roundTrip(t *testing.T, v value.Value) value.Value {
	t.Helper()
	syms := symtab.New()
	encoded := Encode(v, syms, NewConversionContext())
	decoded, err := Decode(encoded, syms)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return decoded
}

func TestRoundTripLiterals(t *testing.T) {
	cases := []value.Value{
		value.NewLong(42),
		value.NewLong(-7),
		value.NewFloat(3.5),
		value.NewString("hi"),
		value.NewUri("https://example.com"),
		value.NewBool(true),
		value.NewBool(false),
		value.NewUnit(),
		value.NewAtom("double"),
	}
	for _, v := range cases {
		got := roundTrip(t, v)
		if !value.Equal(got, v) {
			t.Errorf("round trip of %s produced %s", value.Print(v), value.Print(got))
		}
	}
}

func TestRoundTripSExprSharesAtomEncoding(t *testing.T) {
	syms := symtab.New()
	a := value.NewSExpr(value.NewAtom("f"), value.NewAtom("x"))
	b := value.NewSExpr(value.NewAtom("f"), value.NewAtom("y"))

	encA := Encode(a, syms, NewConversionContext())
	encB := Encode(b, syms, NewConversionContext())

	if len(encA) != len(encB) {
		t.Fatalf("same-shaped atoms should encode to same-length bytes")
	}
	// Up to the point where "x" vs "y" diverge, the bytes must be
	// identical: both intern "f" the same way and share the SExpr/arity
	// tags.
	common := 0
	for common < len(encA) && encA[common] == encB[common] {
		common++
	}
	if common == 0 {
		t.Fatalf("expected a shared byte prefix for same-shaped SExprs")
	}
}

func TestRoundTripIsStructurallyEquivalentForVariables(t *testing.T) {
	original := value.NewSExpr(
		value.NewAtom("double"),
		value.NewVariable("$x"),
		value.NewVariable("$x"),
	)
	decoded := roundTrip(t, original)
	if !value.StructurallyEquivalent(decoded, original) {
		t.Fatalf("decode(encode(v)) not structurally equivalent to v: got %s", value.Print(decoded))
	}
}

func TestAlphaEquivalentExpressionsShareKeyPrefix(t *testing.T) {
	syms := symtab.New()
	v1 := value.NewSExpr(value.NewAtom("double"), value.NewVariable("$x"), value.NewVariable("$x"))
	v2 := value.NewSExpr(value.NewAtom("double"), value.NewVariable("$y"), value.NewVariable("$y"))

	enc1 := Encode(v1, syms, NewConversionContext())
	enc2 := Encode(v2, syms, NewConversionContext())

	if string(enc1) != string(enc2) {
		t.Fatalf("alpha-equivalent expressions should encode identically, got %v vs %v", enc1, enc2)
	}
}

func TestDistinctVariablesEncodeDistinctBindingGraphs(t *testing.T) {
	syms := symtab.New()
	shared := value.NewSExpr(value.NewAtom("p"), value.NewVariable("$x"), value.NewVariable("$x"))
	distinct := value.NewSExpr(value.NewAtom("p"), value.NewVariable("$x"), value.NewVariable("$y"))

	encShared := Encode(shared, syms, NewConversionContext())
	encDistinct := Encode(distinct, syms, NewConversionContext())

	if string(encShared) == string(encDistinct) {
		t.Fatalf("a repeated-variable binding graph must not collide with two distinct variables")
	}
}

func TestDecodeRejectsTruncatedBytes(t *testing.T) {
	syms := symtab.New()
	full := Encode(value.NewSExpr(value.NewAtom("f"), value.NewLong(1)), syms, NewConversionContext())
	if _, err := Decode(full[:len(full)-1], syms); err == nil {
		t.Fatalf("expected an error decoding truncated bytes")
	}
}

func TestRoundTripError(t *testing.T) {
	v := value.NewError(value.ErrDivideByZero, "divide by zero", value.NewLong(0))
	got := roundTrip(t, v)
	ge := got.(value.Error)
	if ge.ErrKind != value.ErrDivideByZero || ge.Message != "divide by zero" {
		t.Errorf("round trip of Error changed kind/message: %+v", ge)
	}
	if !value.Equal(ge.Offender, value.NewLong(0)) {
		t.Errorf("round trip lost the offending value: %+v", ge.Offender)
	}
}
