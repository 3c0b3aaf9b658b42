package clscript

import (
	"context"
	"testing"
)

func runScript(t *testing.T, source, fn string, args []Value) Value {
	t.Helper()
	engine := NewEngine(Config{})
	script, err := engine.Load(source)
	if err != nil {
		t.Fatalf("Load(%q): %v", source, err)
	}
	result, err := script.Call(context.Background(), fn, args)
	if err != nil {
		t.Fatalf("Call(%q): %v", fn, err)
	}
	return result
}

func TestCounterClassConstructorAndIncrement(t *testing.T) {
	result := runScript(t, `
		class Counter {
			int value;
			Counter(int start) { value = start; }
			void inc() { value = value + 1; }
		}
		int main() {
			Counter c = new Counter(10);
			c.inc();
			c.inc();
			c.inc();
			return c.value;
		}
	`, "main", nil)
	if result.Kind() != KindInt || result.Int32() != 13 {
		t.Fatalf("expected 13, got %#v", result)
	}
}

func TestSwitchFallThrough(t *testing.T) {
	source := `
		int f(int x) {
			int r = 0;
			switch (x) {
			case 1:
			case 2:
				r = 20;
				break;
			case 3:
				r = 30;
				break;
			default:
				r = -1;
			}
			return r;
		}
	`
	cases := map[int64]int64{1: 20, 2: 20, 3: 30, 9: -1}
	for in, want := range cases {
		got := runScript(t, source, "f", []Value{NewInt(in)})
		if got.Int32() != int32(want) {
			t.Errorf("f(%d) = %d, want %d", in, got.Int32(), want)
		}
	}
}

func TestShortCircuitEvaluation(t *testing.T) {
	result := runScript(t, `
		int c = 0;
		bool sideEffect() {
			c = c + 1;
			return true;
		}
		int main() {
			bool unused = false && sideEffect();
			return c;
		}
	`, "main", nil)
	if result.Int32() != 0 {
		t.Fatalf("expected short-circuit to skip the side effect, got c=%d", result.Int32())
	}
}

func TestHandleAliasing(t *testing.T) {
	result := runScript(t, `
		class Box { int n; }
		int main() {
			Box a = new Box();
			a.n = 1;
			Box@ h;
			@h = @a;
			h.n = 9;
			return a.n;
		}
	`, "main", nil)
	if result.Int32() != 9 {
		t.Fatalf("expected handle aliasing to mutate the shared object, got %d", result.Int32())
	}
}

func TestArrayOperations(t *testing.T) {
	result := runScript(t, `
		int[] main() {
			int[] xs;
			xs.push(1);
			xs.push(2);
			xs.push(3);
			int s = xs.size();
			int idx = xs.find(2);
			xs.removeAt(0);
			int[] out;
			out.push(s);
			out.push(idx);
			out.push(xs.size());
			out.push(xs[0]);
			return out;
		}
	`, "main", nil)
	if result.Kind() != KindArray {
		t.Fatalf("expected an array result, got %#v", result)
	}
	elems := result.Array().Elements
	want := []int32{3, 1, 2, 2}
	if len(elems) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(elems))
	}
	for i, w := range want {
		if elems[i].Int32() != w {
			t.Errorf("element %d: got %d, want %d", i, elems[i].Int32(), w)
		}
	}
}

func TestArrayResizeReserveAndInsertAt(t *testing.T) {
	result := runScript(t, `
		int[] main() {
			int[] xs;
			xs.push(1);
			xs.push(2);
			xs.reserve(10);
			xs.resize(4);
			xs.insertAt(1, 9);
			int[] out;
			out.push(xs.size());
			out.push(xs[1]);
			out.push(xs[4]);
			xs.resize(2);
			out.push(xs.size());
			return out;
		}
	`, "main", nil)
	elems := result.Array().Elements
	want := []int32{5, 9, 0, 2}
	if len(elems) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(elems))
	}
	for i, w := range want {
		if elems[i].Int32() != w {
			t.Errorf("element %d: got %d, want %d", i, elems[i].Int32(), w)
		}
	}
}

func TestArrayEmptyAndAliases(t *testing.T) {
	result := runScript(t, `
		bool main() {
			int[] xs;
			bool before = xs.empty();
			xs.insertLast(1);
			bool after = xs.empty();
			xs.removeLast();
			return before && !after && xs.empty();
		}
	`, "main", nil)
	if !result.Bool() {
		t.Fatalf("expected empty()/insertLast()/removeLast() to behave as specified, got %#v", result)
	}
}

func TestStringMethods(t *testing.T) {
	result := runScript(t, `
		int[] main() {
			string s = "  Hello World  ";
			int[] out;
			out.push(s.toInt());
			out.push(s.findFirst("World"));
			return out;
		}
	`, "main", nil)
	elems := result.Array().Elements
	if elems[0].Int32() != 0 {
		t.Fatalf("expected toInt() on a non-numeric string to return 0, got %d", elems[0].Int32())
	}
	if elems[1].Int32() != 8 {
		t.Fatalf("expected findFirst to return the rune index 8, got %d", elems[1].Int32())
	}
}

func TestStringCaseSubstrAndTokens(t *testing.T) {
	result := runScript(t, `
		string main() {
			string s = "go is fun";
			string upper = s.toUpper();
			string token = s.getToken(1);
			string part = upper.substr(0, 2);
			return part + token + s.toLower();
		}
	`, "main", nil)
	if result.StringVal() != "GOisgo is fun" {
		t.Fatalf("unexpected combined string result: %q", result.StringVal())
	}
}

func TestStringEmptyAndLengthAliases(t *testing.T) {
	result := runScript(t, `
		bool main() {
			string s = "abc";
			return s.len() == s.length() && !s.empty() && "".empty();
		}
	`, "main", nil)
	if !result.Bool() {
		t.Fatalf("expected len()/length()/empty() to agree, got %#v", result)
	}
}

func TestNativeFunctionBridge(t *testing.T) {
	var captured string
	engine := NewEngine(Config{})
	engine.RegisterFunction("G_Print", func(args []Value) (Value, error) {
		if len(args) > 0 {
			captured = args[0].String()
		}
		return NewVoid(), nil
	})
	script, err := engine.Load(`
		void main() {
			G_Print("x=" + 3);
		}
	`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := script.Call(context.Background(), "main", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if captured != "x=3" {
		t.Fatalf("expected native bridge to receive %q, got %q", "x=3", captured)
	}
}

func TestRegisterClassProducesNativeValue(t *testing.T) {
	type Point struct{ X, Y int }
	engine := NewEngine(Config{})
	engine.RegisterClass("Point", func(args []Value) (any, error) {
		x, y := 0, 0
		if len(args) > 0 {
			x = args[0].Int()
		}
		if len(args) > 1 {
			y = args[1].Int()
		}
		return &Point{X: x, Y: y}, nil
	})
	script, err := engine.Load(`
		native main() {
			return Point(3, 4);
		}
	`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, err := script.Call(context.Background(), "main", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if p.Kind() != KindNative {
		t.Fatalf("expected a native value, got %#v", p)
	}
	pt, ok := unwrap(p).(*Point)
	if !ok || pt.X != 3 || pt.Y != 4 {
		t.Fatalf("unexpected native payload: %#v", unwrap(p))
	}
}

func TestEnumMemberResolutionAndAutoIncrement(t *testing.T) {
	result := runScript(t, `
		enum Color { Red, Green, Blue = 10, Purple }
		int main() {
			return Color::Purple;
		}
	`, "main", nil)
	if result.Int32() != 11 {
		t.Fatalf("expected auto-increment from an explicit value to yield 11, got %d", result.Int32())
	}
}

func TestRecursionLimitIsEnforced(t *testing.T) {
	engine := NewEngine(Config{RecursionLimit: 8})
	script, err := engine.Load(`
		int loop(int n) {
			return loop(n + 1);
		}
	`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err = script.Call(context.Background(), "loop", []Value{NewInt(0)})
	if err == nil {
		t.Fatalf("expected a recursion limit error")
	}
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("expected a *RuntimeError, got %T", err)
	}
}

func TestStepQuotaIsEnforced(t *testing.T) {
	engine := NewEngine(Config{StepQuota: 20})
	script, err := engine.Load(`
		int main() {
			int i = 0;
			while (true) {
				i = i + 1;
			}
			return i;
		}
	`)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err = script.Call(context.Background(), "main", nil)
	if err == nil {
		t.Fatalf("expected a step quota error")
	}
}

func TestGlobalClassTypedVariableDefaultConstructs(t *testing.T) {
	result := runScript(t, `
		class Point { int x; int y; }
		Point p;
		int main() {
			return p.x + p.y;
		}
	`, "main", nil)
	if result.Int32() != 0 {
		t.Fatalf("expected a default-constructed Point to zero its fields, got %d", result.Int32())
	}
}

func TestIntTruncationOnAssignment(t *testing.T) {
	result := runScript(t, `
		int main() {
			int x = 2147483647;
			x = x + 1;
			return x;
		}
	`, "main", nil)
	if result.Int32() != -2147483648 {
		t.Fatalf("expected 32-bit overflow to wrap, got %d", result.Int32())
	}
}
