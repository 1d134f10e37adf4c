package dtype

import (
	"errors"
	"testing"
)

func TestTagOfRoundTrip(t *testing.T) {
	cases := []struct {
		tag Tag
		fn  func() Tag
	}{
		{Int, TagOf[int32]},
		{Long, TagOf[int64]},
		{Float, TagOf[float32]},
		{Double, TagOf[float64]},
		{String, TagOf[string]},
	}
	for _, c := range cases {
		if got := c.fn(); got != c.tag {
			t.Errorf("TagOf: got %q, want %q", got, c.tag)
		}
		if !c.tag.Valid() {
			t.Errorf("%q should be a valid tag", c.tag)
		}
	}
}

func TestTypeCastWidening(t *testing.T) {
	v := VariantFrom(int32(42))
	got, err := TypeCast[int64](v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}

	fv := VariantFrom(float32(1.5))
	gotf, err := TypeCast[float64](fv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotf != 1.5 {
		t.Errorf("got %v, want 1.5", gotf)
	}
}

func TestTypeCastRejectsStringNumeric(t *testing.T) {
	v := VariantFrom("hello")
	if _, err := TypeCast[int32](v); !errors.Is(err, ErrTypeCastFailed) {
		t.Errorf("expected ErrTypeCastFailed, got %v", err)
	}

	nv := VariantFrom(int32(7))
	if _, err := TypeCast[string](nv); !errors.Is(err, ErrTypeCastFailed) {
		t.Errorf("expected ErrTypeCastFailed, got %v", err)
	}
}

type countingVisitor struct{}

func (countingVisitor) VisitInt32() (string, error)   { return "int32", nil }
func (countingVisitor) VisitInt64() (string, error)   { return "int64", nil }
func (countingVisitor) VisitFloat32() (string, error) { return "float32", nil }
func (countingVisitor) VisitFloat64() (string, error) { return "float64", nil }
func (countingVisitor) VisitString() (string, error)  { return "string", nil }

func TestResolveDispatch(t *testing.T) {
	cases := map[Tag]string{
		Int:    "int32",
		Long:   "int64",
		Float:  "float32",
		Double: "float64",
		String: "string",
	}
	for tag, want := range cases {
		got, err := Resolve[string](tag, countingVisitor{})
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tag, err)
		}
		if got != want {
			t.Errorf("Resolve(%q): got %q, want %q", tag, got, want)
		}
	}
}

func TestResolveUnknownType(t *testing.T) {
	if _, err := Resolve[string]("bogus", countingVisitor{}); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
}

func TestAppendBytesDeterministic(t *testing.T) {
	v := VariantFrom(int64(256))
	a := v.AppendBytes(nil)
	b := v.AppendBytes(nil)
	if string(a) != string(b) {
		t.Errorf("AppendBytes not deterministic: %v vs %v", a, b)
	}
	if len(a) != 8 {
		t.Errorf("expected 8 bytes for int64, got %d", len(a))
	}
}
