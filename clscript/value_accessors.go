package clscript

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int32 returns the stored 32-bit integer, or 0 if v is not an Int.
func (v Value) Int32() int32 {
	if v.kind == KindInt {
		return v.data.(int32)
	}
	return 0
}

// Int returns Int32 widened to int, for convenience at call sites that
// need a platform int (array indices, loop counters).
func (v Value) Int() int { return int(v.Int32()) }

// Float64 returns the stored float, or 0 if v is not a Float.
func (v Value) Float64() float64 {
	if v.kind == KindFloat {
		return v.data.(float64)
	}
	return 0
}

// Bool returns the stored bool, or false if v is not a Bool.
func (v Value) Bool() bool {
	if v.kind == KindBool {
		return v.data.(bool)
	}
	return false
}

// StringVal returns the stored string, or "" if v is not a String.
func (v Value) StringVal() string {
	if v.kind == KindString {
		return v.data.(string)
	}
	return ""
}

// Object returns the wrapped *ObjectValue, or nil if v is not an Object.
func (v Value) Object() *ObjectValue {
	if v.kind != KindObject {
		return nil
	}
	return v.data.(*ObjectValue)
}

// Native returns the wrapped *NativeValue, or nil if v is not a Native.
func (v Value) Native() *NativeValue {
	if v.kind != KindNative {
		return nil
	}
	return v.data.(*NativeValue)
}

// Handle returns the wrapped *HandleValue, or nil if v is not a Handle.
func (v Value) Handle() *HandleValue {
	if v.kind != KindHandle {
		return nil
	}
	return v.data.(*HandleValue)
}

// Array returns the wrapped *ArrayValue, or nil if v is not an Array.
func (v Value) Array() *ArrayValue {
	if v.kind != KindArray {
		return nil
	}
	return v.data.(*ArrayValue)
}

// Function returns the wrapped *FunctionValue, or nil if v is not a
// Function.
func (v Value) Function() *FunctionValue {
	if v.kind != KindFunction {
		return nil
	}
	return v.data.(*FunctionValue)
}

// NativeFunction returns the wrapped *NativeFunctionValue, or nil if v is
// not a NativeFunction.
func (v Value) NativeFunction() *NativeFunctionValue {
	if v.kind != KindNativeFunction {
		return nil
	}
	return v.data.(*NativeFunctionValue)
}

// Truthy projects v onto a boolean condition: Bool uses its value; Int/
// Float are truthy iff non-zero; String iff non-empty; Null/Void are
// false; Handle truthy iff non-null; Array is always truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.Bool()
	case KindInt:
		return v.Int32() != 0
	case KindFloat:
		return v.Float64() != 0
	case KindString:
		return v.StringVal() != ""
	case KindNull, KindVoid:
		return false
	case KindHandle:
		return v.Handle().Ref != nil
	case KindArray:
		return true
	default:
		return true
	}
}

// Equal compares two values: handles compare by reference identity;
// ints/floats compare numerically with cross-kind promotion; strings/
// bools compare by value; objects compare by identity; null equals only
// null.
func (v Value) Equal(other Value) bool {
	if v.kind == KindNull || other.kind == KindNull {
		return v.kind == KindNull && other.kind == KindNull
	}
	if isNumericKind(v.kind) && isNumericKind(other.kind) {
		if v.kind == KindInt && other.kind == KindInt {
			return v.Int32() == other.Int32()
		}
		return v.asFloat() == other.asFloat()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.Bool() == other.Bool()
	case KindString:
		return v.StringVal() == other.StringVal()
	case KindVoid:
		return true
	case KindObject:
		return v.Object() == other.Object()
	case KindNative:
		return v.Native() == other.Native()
	case KindHandle:
		return v.Handle().Ref == other.Handle().Ref
	case KindArray:
		return v.Array() == other.Array()
	case KindFunction:
		return v.Function() == other.Function()
	case KindNativeFunction:
		return v.NativeFunction() == other.NativeFunction()
	default:
		return false
	}
}

func isNumericKind(k ValueKind) bool { return k == KindInt || k == KindFloat }

func (v Value) asFloat() float64 {
	if v.kind == KindInt {
		return float64(v.Int32())
	}
	return v.Float64()
}

// String renders v the way string-concatenation and explicit casts to
// string do.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindVoid:
		return ""
	case KindInt:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindString:
		return v.StringVal()
	case KindObject:
		return fmt.Sprintf("%s@%p", v.Object().TypeName, v.Object())
	case KindNative:
		return fmt.Sprintf("%s@%p", v.Native().TypeName, v.Native())
	case KindHandle:
		h := v.Handle()
		if h.Ref == nil {
			return "null"
		}
		switch r := h.Ref.(type) {
		case *ObjectValue:
			return fmt.Sprintf("%s@%p", r.TypeName, r)
		case *NativeValue:
			return fmt.Sprintf("%s@%p", r.TypeName, r)
		default:
			return "null"
		}
	case KindArray:
		parts := make([]string, len(v.Array().Elements))
		for i, el := range v.Array().Elements {
			parts[i] = el.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindFunction:
		return "<function " + v.Function().Name + ">"
	case KindNativeFunction:
		return "<native function " + v.NativeFunction().Name + ">"
	default:
		return ""
	}
}
