package clscript

import "testing"

func TestTruthiness(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"bool true", NewBool(true), true},
		{"bool false", NewBool(false), false},
		{"nonzero int", NewInt(5), true},
		{"zero int", NewInt(0), false},
		{"nonzero float", NewFloat(0.5), true},
		{"zero float", NewFloat(0), false},
		{"nonempty string", NewString("x"), true},
		{"empty string", NewString(""), false},
		{"null", NewNull(), false},
		{"void", NewVoid(), false},
		{"null handle", NewHandle(nil), false},
		{"nonnull handle", NewHandle(&ObjectValue{}), true},
		{"array", NewArray(nil), true},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Errorf("%s: Truthy() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestEqualNumericCrossKind(t *testing.T) {
	if !NewInt(3).Equal(NewFloat(3.0)) {
		t.Errorf("expected int 3 to equal float 3.0")
	}
	if NewInt(3).Equal(NewFloat(3.5)) {
		t.Errorf("expected int 3 to not equal float 3.5")
	}
	if !NewNull().Equal(NewNull()) {
		t.Errorf("expected null to equal null")
	}
	if NewNull().Equal(NewInt(0)) {
		t.Errorf("expected null to not equal int 0")
	}
}

func TestEqualHandleIdentity(t *testing.T) {
	obj := &ObjectValue{TypeName: "Box", Fields: newFieldMap()}
	h1 := NewHandle(obj)
	h2 := NewHandle(obj)
	other := NewHandle(&ObjectValue{TypeName: "Box", Fields: newFieldMap()})
	if !h1.Equal(h2) {
		t.Errorf("expected two handles to the same object to compare equal")
	}
	if h1.Equal(other) {
		t.Errorf("expected handles to distinct objects to compare unequal")
	}
}

func TestInt32Truncation(t *testing.T) {
	v := NewInt(1 << 32)
	if v.Int32() != 0 {
		t.Errorf("expected overflow to truncate to 0, got %d", v.Int32())
	}
	v2 := NewInt(2147483648)
	if v2.Int32() != -2147483648 {
		t.Errorf("expected wraparound to the minimum int32, got %d", v2.Int32())
	}
}

func TestStringRendering(t *testing.T) {
	if NewInt(42).String() != "42" {
		t.Errorf("unexpected int rendering: %q", NewInt(42).String())
	}
	if NewBool(true).String() != "true" {
		t.Errorf("unexpected bool rendering: %q", NewBool(true).String())
	}
	if NewHandle(nil).String() != "null" {
		t.Errorf("unexpected null handle rendering: %q", NewHandle(nil).String())
	}
	arr := NewArray([]Value{NewInt(1), NewInt(2)})
	if arr.String() != "[1, 2]" {
		t.Errorf("unexpected array rendering: %q", arr.String())
	}
}

func TestWrapUnwrapNativeRoundTrip(t *testing.T) {
	type host struct{ n int }
	original := &host{n: 7}
	wrapped := wrapNative("host", original)
	got := unwrap(wrapped)
	back, ok := got.(*host)
	if !ok || back != original {
		t.Fatalf("expected unwrap(wrapNative(x)) to round-trip the same pointer, got %#v", got)
	}
}

func TestUnwrapThroughHandle(t *testing.T) {
	type host struct{ n int }
	original := &host{n: 7}
	nv := &NativeValue{TypeName: "host", Data: original}
	handle := NewHandle(nv)
	got := unwrap(handle)
	back, ok := got.(*host)
	if !ok || back != original {
		t.Fatalf("expected unwrap to follow a handle to its native referent, got %#v", got)
	}
}

func TestUnwrapPrimitivesRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want any
	}{
		{"null", NewNull(), nil},
		{"bool", NewBool(true), true},
		{"string", NewString("hi"), "hi"},
		{"int", NewInt(5), 5},
		{"float", NewFloat(1.5), 1.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := unwrap(c.v); got != c.want {
				t.Fatalf("unwrap(%s) = %#v, want %#v", c.name, got, c.want)
			}
		})
	}
}

func TestUnwrapArrayRoundTrip(t *testing.T) {
	arr := NewArray([]Value{NewInt(1), NewString("two"), NewBool(false)})
	got, ok := unwrap(arr).([]any)
	if !ok {
		t.Fatalf("expected unwrap of an array to return []any, got %#v", got)
	}
	want := []any{1, "two", false}
	if len(got) != len(want) {
		t.Fatalf("unwrap(array) = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unwrap(array)[%d] = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestWrapNativeUnwrapRoundTripPrimitives(t *testing.T) {
	cases := []any{nil, true, "hi", 5, 1.5}
	for _, c := range cases {
		wrapped := wrapNative("value", c)
		if got := unwrap(wrapped); got != c {
			t.Fatalf("unwrap(wrapNative(%#v)) = %#v, want %#v", c, got, c)
		}
	}
}
