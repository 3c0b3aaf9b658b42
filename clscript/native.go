package clscript

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// NativeIndexable lets a host-registered native value support `obj[i]` and
// `obj[i] = v` without going through reflection, since indexing isn't a
// reflect-friendly operation for arbitrary Go types.
type NativeIndexable interface {
	Index(i int) (Value, error)
	SetIndex(i int, v Value) error
	Len() int
}

// NativeFieldSetter lets a host-registered native value support
// `obj.field = v` assignment. Without it, native values are read-only from
// script code: member reads fall back to reflection over Data, but writes
// have no safe reflective default (exported fields on a value receiver
// can't be mutated through a copy).
type NativeFieldSetter interface {
	SetField(name string, v Value) error
}

// wrapNative maps a host value onto the script's Value space: null/nil
// becomes Null, a bool/string/integer/float becomes the matching scalar
// Value, a []any or []Value becomes an Array of element-wise wrapped
// values, and anything else is opaque and wrapped as a Native named by
// typeName. This is the one wrap path every native-boundary helper in
// this file goes through, so wrapGoValue's reflection results and a
// host's explicit RegisterObject/RegisterClass calls agree on what
// "wrapped" means.
func wrapNative(typeName string, data any) Value {
	switch v := data.(type) {
	case nil:
		return NewNull()
	case Value:
		return v
	case bool:
		return NewBool(v)
	case string:
		return NewString(v)
	case int:
		return NewInt(int64(v))
	case int8:
		return NewInt(int64(v))
	case int16:
		return NewInt(int64(v))
	case int32:
		return NewInt(int64(v))
	case int64:
		return NewInt(v)
	case uint:
		return NewInt(int64(v))
	case uint8:
		return NewInt(int64(v))
	case uint16:
		return NewInt(int64(v))
	case uint32:
		return NewInt(int64(v))
	case uint64:
		return NewInt(int64(v))
	case float32:
		return NewFloat(float64(v))
	case float64:
		return NewFloat(v)
	case []Value:
		return NewArray(v)
	case []any:
		elems := make([]Value, len(v))
		for i, e := range v {
			elems[i] = wrapNative(typeName, e)
		}
		return NewArray(elems)
	default:
		return NewNative(&NativeValue{TypeName: typeName, Data: data})
	}
}

// unwrap is wrapNative's inverse: null maps back to nil, scalars map back
// to their Go type, arrays unwrap element-wise, a Handle unwraps through
// to its native referent (or nil for a null handle or an object handle,
// which has no host form), and anything else opaque held behind a Native
// returns the host value a RegisterObject/RegisterClass call stashed
// there.
func unwrap(v Value) any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool()
	case KindString:
		return v.StringVal()
	case KindInt:
		return v.Int()
	case KindFloat:
		return v.Float64()
	case KindArray:
		elems := v.Array().Elements
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = unwrap(e)
		}
		return out
	case KindNative:
		return v.Native().Data
	case KindHandle:
		if nv, ok := v.Handle().Ref.(*NativeValue); ok {
			return nv.Data
		}
		return nil
	default:
		return nil
	}
}

// nativeMember resolves a member access on a native value via reflection:
// a method named name is wrapped into a callable NativeFunctionValue; a
// struct field named name (after dereferencing one pointer level) is read
// directly. This is the idiomatic stand-in for the member lookup a native
// bridge performs against an opaque host object.
func (ev *evaluator) nativeMember(n *NativeValue, name string, pos Position) (Value, error) {
	rv := reflect.ValueOf(n.Data)

	if m := rv.MethodByName(name); m.IsValid() {
		return NewNativeFunction(n.TypeName+"."+name, func(args []Value) (Value, error) {
			return callReflectMethod(m, args)
		}), nil
	}

	fv := rv
	if fv.Kind() == reflect.Ptr {
		fv = fv.Elem()
	}
	if fv.Kind() == reflect.Struct {
		field := fv.FieldByName(name)
		if field.IsValid() && field.CanInterface() {
			return wrapGoValue(field.Interface()), nil
		}
	}

	return Value{}, ev.runtimeErr(pos, "unknown native member %q on %s", name, n.TypeName)
}

// callReflectMethod adapts a script call onto a reflected Go method:
// script Values are unwrapped into their nearest Go representation,
// positional arguments are passed through reflect.Value.Call, and the
// result (plus a trailing error return, if the method has one) is
// translated back into a Value.
func callReflectMethod(m reflect.Value, args []Value) (Value, error) {
	mt := m.Type()
	in := make([]reflect.Value, 0, len(args))
	for i := 0; i < mt.NumIn() && i < len(args); i++ {
		in = append(in, reflectArg(args[i], mt.In(i)))
	}
	out := m.Call(in)
	if len(out) == 0 {
		return NewVoid(), nil
	}
	last := out[len(out)-1]
	if last.Kind() == reflect.Interface && last.Type().Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		if !last.IsNil() {
			return Value{}, last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return NewVoid(), nil
	}
	return wrapGoValue(out[0].Interface()), nil
}

func reflectArg(v Value, want reflect.Type) reflect.Value {
	switch want.Kind() {
	case reflect.String:
		return reflect.ValueOf(v.String()).Convert(want)
	case reflect.Bool:
		return reflect.ValueOf(v.Truthy())
	case reflect.Float32, reflect.Float64:
		return reflect.ValueOf(toFloat64(v)).Convert(want)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return reflect.ValueOf(int64(toInt32Coerce(v))).Convert(want)
	default:
		if host := unwrap(v); host != nil {
			hv := reflect.ValueOf(host)
			if hv.Type().AssignableTo(want) {
				return hv
			}
		}
		return reflect.Zero(want)
	}
}

// wrapGoValue maps a reflected Go return value back into the script's
// Value space. It is just wrapNative with the type name inferred from the
// value itself, since a reflected return has no caller-supplied name to
// wrap it under.
func wrapGoValue(x any) Value {
	return wrapNative(fmt.Sprintf("%T", x), x)
}

// arrayMethod synthesizes the built-in methods exposed on every array
// value. push/pop/insertAt/removeAt/resize mutate arr.Elements in place, so
// every alias of the same *ArrayValue observes the change. reserve is a
// no-op since Elements is a plain Go slice with no separate capacity knob
// exposed to scripts.
func (ev *evaluator) arrayMethod(arr *ArrayValue, name string, pos Position) (Value, error) {
	switch name {
	case "size", "length":
		return NewNativeFunction(name, func(args []Value) (Value, error) {
			return NewInt(int64(len(arr.Elements))), nil
		}), nil
	case "empty":
		return NewNativeFunction("empty", func(args []Value) (Value, error) {
			return NewBool(len(arr.Elements) == 0), nil
		}), nil
	case "push", "insertLast":
		return NewNativeFunction(name, func(args []Value) (Value, error) {
			arr.Elements = append(arr.Elements, args...)
			return NewInt(int64(len(arr.Elements))), nil
		}), nil
	case "pop", "removeLast":
		return NewNativeFunction(name, func(args []Value) (Value, error) {
			if len(arr.Elements) == 0 {
				return NewNull(), nil
			}
			last := arr.Elements[len(arr.Elements)-1]
			arr.Elements = arr.Elements[:len(arr.Elements)-1]
			return last, nil
		}), nil
	case "resize":
		return NewNativeFunction("resize", func(args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, ev.runtimeErr(pos, "resize expects exactly one argument")
			}
			n := args[0].Int()
			if n < 0 {
				return Value{}, ev.runtimeErr(pos, "resize length %d must not be negative", n)
			}
			switch {
			case n <= len(arr.Elements):
				arr.Elements = arr.Elements[:n]
			default:
				for len(arr.Elements) < n {
					arr.Elements = append(arr.Elements, NewInt(0))
				}
			}
			return NewVoid(), nil
		}), nil
	case "reserve":
		return NewNativeFunction("reserve", func(args []Value) (Value, error) {
			return NewVoid(), nil
		}), nil
	case "insertAt":
		return NewNativeFunction("insertAt", func(args []Value) (Value, error) {
			if len(args) != 2 {
				return Value{}, ev.runtimeErr(pos, "insertAt expects exactly two arguments")
			}
			i := args[0].Int()
			if i < 0 || i > len(arr.Elements) {
				return Value{}, ev.runtimeErr(pos, "insertAt index %d out of range (length %d)", i, len(arr.Elements))
			}
			arr.Elements = append(arr.Elements[:i:i], append([]Value{args[1]}, arr.Elements[i:]...)...)
			return NewVoid(), nil
		}), nil
	case "removeAt":
		return NewNativeFunction("removeAt", func(args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, ev.runtimeErr(pos, "removeAt expects exactly one argument")
			}
			i := args[0].Int()
			if i < 0 || i >= len(arr.Elements) {
				return Value{}, ev.runtimeErr(pos, "removeAt index %d out of range (length %d)", i, len(arr.Elements))
			}
			removed := arr.Elements[i]
			arr.Elements = append(arr.Elements[:i], arr.Elements[i+1:]...)
			return removed, nil
		}), nil
	case "find":
		return NewNativeFunction("find", func(args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, ev.runtimeErr(pos, "find expects exactly one argument")
			}
			for i, el := range arr.Elements {
				if el.Equal(args[0]) {
					return NewInt(int64(i)), nil
				}
			}
			return NewInt(-1), nil
		}), nil
	default:
		return Value{}, ev.runtimeErr(pos, "unknown array member %q", name)
	}
}

// stringMethod synthesizes the built-in methods exposed on every string
// value. Strings are immutable Go values here, so every method returns a
// fresh result rather than mutating the receiver.
func (ev *evaluator) stringMethod(s string, name string, pos Position) (Value, error) {
	switch name {
	case "len", "length":
		return NewNativeFunction(name, func(args []Value) (Value, error) {
			return NewInt(int64(len([]rune(s)))), nil
		}), nil
	case "empty":
		return NewNativeFunction("empty", func(args []Value) (Value, error) {
			return NewBool(s == ""), nil
		}), nil
	case "toInt":
		return NewNativeFunction("toInt", func(args []Value) (Value, error) {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return NewInt(0), nil
			}
			return NewInt(n), nil
		}), nil
	case "toFloat":
		return NewNativeFunction("toFloat", func(args []Value) (Value, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return NewFloat(0), nil
			}
			return NewFloat(f), nil
		}), nil
	case "toUpper":
		return NewNativeFunction("toUpper", func(args []Value) (Value, error) {
			return NewString(strings.ToUpper(s)), nil
		}), nil
	case "toLower":
		return NewNativeFunction("toLower", func(args []Value) (Value, error) {
			return NewString(strings.ToLower(s)), nil
		}), nil
	case "getToken":
		return NewNativeFunction("getToken", func(args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, ev.runtimeErr(pos, "getToken expects exactly one argument")
			}
			tokens := strings.Fields(s)
			i := args[0].Int()
			if i < 0 || i >= len(tokens) {
				return Value{}, ev.runtimeErr(pos, "getToken index %d out of range (%d tokens)", i, len(tokens))
			}
			return NewString(tokens[i]), nil
		}), nil
	case "substr":
		return NewNativeFunction("substr", func(args []Value) (Value, error) {
			if len(args) < 1 || len(args) > 2 {
				return Value{}, ev.runtimeErr(pos, "substr expects one or two arguments")
			}
			runes := []rune(s)
			start := args[0].Int()
			if start < 0 || start > len(runes) {
				return Value{}, ev.runtimeErr(pos, "substr start %d out of range (length %d)", start, len(runes))
			}
			end := len(runes)
			if len(args) == 2 {
				n := args[1].Int()
				if n < 0 {
					return Value{}, ev.runtimeErr(pos, "substr length %d must not be negative", n)
				}
				if start+n < end {
					end = start + n
				}
			}
			return NewString(string(runes[start:end])), nil
		}), nil
	case "findFirst":
		return NewNativeFunction("findFirst", func(args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, ev.runtimeErr(pos, "findFirst expects exactly one argument")
			}
			sub := args[0].StringVal()
			byteIdx := strings.Index(s, sub)
			if byteIdx < 0 {
				return NewInt(-1), nil
			}
			return NewInt(int64(len([]rune(s[:byteIdx])))), nil
		}), nil
	default:
		return Value{}, ev.runtimeErr(pos, "unknown string member %q", name)
	}
}
