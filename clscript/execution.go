package clscript

import (
	"context"
	"fmt"
	"math"
)

// controlKind discriminates the result of executing a statement: normal
// fallthrough, or one of the three non-error control-flow signals the
// language's return/break/continue raise. Threading this sum type through
// execStmt's return value (rather than using panic/recover or Go errors
// for control flow) keeps Break/Continue/Return distinguishable from
// RuntimeError at every level of the call chain.
type controlKind int

const (
	ctrlNormal controlKind = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
)

type control struct {
	kind  controlKind
	value Value
}

var normalControl = control{kind: ctrlNormal}

// evaluator carries the per-invocation state of one Load or one Call:
// resource accounting (step count, recursion depth), the call stack used
// to render RuntimeError frames, and a context checked periodically for
// host-requested cancellation.
type evaluator struct {
	engine *Engine
	ctx    context.Context
	source string
	steps  int
	depth  int
	frames []StackFrame
}

func (ev *evaluator) tick(pos Position) error {
	ev.steps++
	quota := ev.engine.config.StepQuota
	if quota > 0 && ev.steps > quota {
		return ev.runtimeErr(pos, "step quota of %d exceeded", quota)
	}
	if ev.ctx != nil {
		select {
		case <-ev.ctx.Done():
			return ev.runtimeErr(pos, "%v", ev.ctx.Err())
		default:
		}
	}
	return nil
}

func (ev *evaluator) runtimeErr(pos Position, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Message:   fmt.Sprintf(format, args...),
		Pos:       pos,
		CodeFrame: formatCodeFrame(ev.source, pos),
		Frames:    append([]StackFrame(nil), ev.frames...),
	}
}

// execute runs the two-pass program-level registration described for
// Load: classes, enums, and functions are bound as globals first, then
// every top-level VarDecl's initializer runs against the now-complete
// global scope. This ordering is what lets a function defined earlier in
// the source call one defined later.
func (ev *evaluator) execute(prog *Program) error {
	global := ev.engine.global

	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ClassDecl:
			ev.engine.classes[decl.Name] = newClassInfo(decl)
		case *FuncDecl:
			global.define(decl.Name, NewFunction(&FunctionValue{Name: decl.Name, Decl: decl}))
		}
	}

	for name, ci := range ev.engine.classes {
		ci := ci
		global.define(name, NewNativeFunction(name, func(args []Value) (Value, error) {
			return ev.instantiateClassWithArgs(ci, args, ci.decl.Pos())
		}))
	}

	for _, d := range prog.Decls {
		decl, ok := d.(*EnumDecl)
		if !ok {
			continue
		}
		ei := &enumInfo{decl: decl, members: make(map[string]int32)}
		var next int32
		for _, v := range decl.Values {
			val := next
			if v.Value != nil {
				cv, err := ev.evalExpr(v.Value, global)
				if err != nil {
					return err
				}
				val = toInt32Coerce(cv)
			}
			ei.members[v.Name] = val
			ei.order = append(ei.order, v.Name)
			next = val + 1
		}
		ev.engine.enums[decl.Name] = ei
	}

	for _, d := range prog.Decls {
		vd, ok := d.(*VarDecl)
		if !ok {
			continue
		}
		val, err := ev.valueForVarDecl(vd, global)
		if err != nil {
			return err
		}
		global.define(vd.Name, val)
	}
	return nil
}

// valueForVarDecl computes the value a VarDecl binds, following the
// initializer / array-size / bare-array / class-default / primitive-zero
// ordering from the variable initialization rules.
func (ev *evaluator) valueForVarDecl(v *VarDecl, evalEnv *environment) (Value, error) {
	if v.Initializer != nil {
		return ev.evalExpr(v.Initializer, evalEnv)
	}
	if v.ArraySizeInit != nil {
		sizeVal, err := ev.evalExpr(v.ArraySizeInit, evalEnv)
		if err != nil {
			return Value{}, err
		}
		n := sizeVal.Int()
		if n < 0 {
			n = 0
		}
		var elemDefault Value
		if v.Type != nil && v.Type.TemplateArg != nil {
			d, err := ev.zeroValueForType(v.Type.TemplateArg, v.position)
			if err != nil {
				return Value{}, err
			}
			elemDefault = d
		} else {
			elemDefault = NewInt(0)
		}
		elems := make([]Value, n)
		for i := range elems {
			elems[i] = elemDefault
		}
		return NewArray(elems), nil
	}
	return ev.zeroValueForType(v.Type, v.position)
}

// zeroValueForType resolves the default value for a declared type: bare
// arrays default to empty, non-handle class types implicitly construct,
// handle types and unknown types default to a null handle, and primitives
// default to their zero value.
func (ev *evaluator) zeroValueForType(t *TypeRef, pos Position) (Value, error) {
	if t == nil {
		return NewInt(0), nil
	}
	if t.Name == "array" {
		return NewArray(nil), nil
	}
	if t.IsHandle {
		return NewHandle(nil), nil
	}
	switch t.Name {
	case "void":
		return NewVoid(), nil
	case "bool":
		return NewBool(false), nil
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return NewInt(0), nil
	case "float", "double":
		return NewFloat(0), nil
	case "string":
		return NewString(""), nil
	}
	if ci, ok := ev.engine.classes[t.Name]; ok {
		return ev.instantiateClassWithArgs(ci, nil, pos)
	}
	return NewHandle(nil), nil
}

// --- statements ---

func (ev *evaluator) execBlock(b *BlockStmt, env *environment) (control, error) {
	child := env.child()
	for _, s := range b.Stmts {
		c, err := ev.execStmt(s, child)
		if err != nil {
			return control{}, err
		}
		if c.kind != ctrlNormal {
			return c, nil
		}
	}
	return normalControl, nil
}

func (ev *evaluator) execStmt(stmt Statement, env *environment) (control, error) {
	if err := ev.tick(stmt.Pos()); err != nil {
		return control{}, err
	}
	switch s := stmt.(type) {
	case *BlockStmt:
		return ev.execBlock(s, env)
	case *VarDecl:
		val, err := ev.valueForVarDecl(s, env)
		if err != nil {
			return control{}, err
		}
		env.define(s.Name, val)
		return normalControl, nil
	case *ExprStmt:
		if _, err := ev.evalExpr(s.Expr, env); err != nil {
			return control{}, err
		}
		return normalControl, nil
	case *IfStmt:
		cond, err := ev.evalExpr(s.Condition, env)
		if err != nil {
			return control{}, err
		}
		if cond.Truthy() {
			return ev.execStmt(s.Then, env)
		}
		if s.Else != nil {
			return ev.execStmt(s.Else, env)
		}
		return normalControl, nil
	case *ForStmt:
		return ev.execFor(s, env)
	case *WhileStmt:
		return ev.execWhile(s, env)
	case *DoWhileStmt:
		return ev.execDoWhile(s, env)
	case *ReturnStmt:
		if s.Value == nil {
			return control{kind: ctrlReturn, value: NewVoid()}, nil
		}
		v, err := ev.evalExpr(s.Value, env)
		if err != nil {
			return control{}, err
		}
		return control{kind: ctrlReturn, value: v}, nil
	case *BreakStmt:
		return control{kind: ctrlBreak}, nil
	case *ContinueStmt:
		return control{kind: ctrlContinue}, nil
	case *SwitchStmt:
		return ev.execSwitch(s, env)
	default:
		return normalControl, nil
	}
}

func (ev *evaluator) execFor(s *ForStmt, env *environment) (control, error) {
	loopEnv := env.child()
	if s.Init != nil {
		if _, err := ev.execStmt(s.Init, loopEnv); err != nil {
			return control{}, err
		}
	}
	for {
		if s.Condition != nil {
			cond, err := ev.evalExpr(s.Condition, loopEnv)
			if err != nil {
				return control{}, err
			}
			if !cond.Truthy() {
				break
			}
		}
		c, err := ev.execStmt(s.Body, loopEnv)
		if err != nil {
			return control{}, err
		}
		if c.kind == ctrlBreak {
			break
		}
		if c.kind == ctrlReturn {
			return c, nil
		}
		if s.Update != nil {
			if _, err := ev.execStmt(s.Update, loopEnv); err != nil {
				return control{}, err
			}
		}
	}
	return normalControl, nil
}

func (ev *evaluator) execWhile(s *WhileStmt, env *environment) (control, error) {
	loopEnv := env.child()
	for {
		cond, err := ev.evalExpr(s.Condition, loopEnv)
		if err != nil {
			return control{}, err
		}
		if !cond.Truthy() {
			break
		}
		c, err := ev.execStmt(s.Body, loopEnv)
		if err != nil {
			return control{}, err
		}
		if c.kind == ctrlBreak {
			break
		}
		if c.kind == ctrlReturn {
			return c, nil
		}
	}
	return normalControl, nil
}

func (ev *evaluator) execDoWhile(s *DoWhileStmt, env *environment) (control, error) {
	loopEnv := env.child()
	for {
		c, err := ev.execStmt(s.Body, loopEnv)
		if err != nil {
			return control{}, err
		}
		if c.kind == ctrlBreak {
			break
		}
		if c.kind == ctrlReturn {
			return c, nil
		}
		cond, err := ev.evalExpr(s.Condition, loopEnv)
		if err != nil {
			return control{}, err
		}
		if !cond.Truthy() {
			break
		}
	}
	return normalControl, nil
}

// execSwitch implements C-style fall-through: once a case matches (or
// default is reached with nothing matched yet), every subsequent case
// body runs until a Break signal, regardless of its own value.
func (ev *evaluator) execSwitch(s *SwitchStmt, env *environment) (control, error) {
	tag, err := ev.evalExpr(s.Tag, env)
	if err != nil {
		return control{}, err
	}
	swEnv := env.child()
	matched := false
	for _, c := range s.Cases {
		if !matched {
			if c.Value == nil {
				matched = true
			} else {
				cv, err := ev.evalExpr(c.Value, swEnv)
				if err != nil {
					return control{}, err
				}
				if tag.Equal(cv) {
					matched = true
				}
			}
		}
		if !matched {
			continue
		}
		for _, stmt := range c.Body {
			ctl, err := ev.execStmt(stmt, swEnv)
			if err != nil {
				return control{}, err
			}
			switch ctl.kind {
			case ctrlBreak:
				return normalControl, nil
			case ctrlReturn, ctrlContinue:
				return ctl, nil
			}
		}
	}
	return normalControl, nil
}

// --- expressions ---

func (ev *evaluator) evalExpr(expr Expression, env *environment) (Value, error) {
	if err := ev.tick(expr.Pos()); err != nil {
		return Value{}, err
	}
	switch e := expr.(type) {
	case *IntLiteral:
		return NewInt(int64(e.Value)), nil
	case *FloatLiteral:
		return NewFloat(e.Value), nil
	case *StringLiteral:
		return NewString(e.Value), nil
	case *BoolLiteral:
		return NewBool(e.Value), nil
	case *NullLiteral:
		return NewNull(), nil
	case *Identifier:
		return ev.evalIdentifier(e, env)
	case *AssignExpr:
		return ev.evalAssign(e, env)
	case *HandleAssignExpr:
		return ev.evalHandleAssign(e, env)
	case *BinaryExpr:
		return ev.evalBinary(e, env)
	case *UnaryExpr:
		return ev.evalUnary(e, env)
	case *TernaryExpr:
		cond, err := ev.evalExpr(e.Condition, env)
		if err != nil {
			return Value{}, err
		}
		if cond.Truthy() {
			return ev.evalExpr(e.Then, env)
		}
		return ev.evalExpr(e.Else, env)
	case *CallExpr:
		return ev.evalCall(e, env)
	case *MemberExpr:
		return ev.evalMemberRead(e, env)
	case *IndexExpr:
		objVal, err := ev.evalExpr(e.Object, env)
		if err != nil {
			return Value{}, err
		}
		idxVal, err := ev.evalExpr(e.Index, env)
		if err != nil {
			return Value{}, err
		}
		return ev.indexGet(objVal, idxVal, e.position)
	case *NewExpr:
		return ev.instantiateClass(e.ClassName, e.Args, env, e.position)
	case *CastExpr:
		v, err := ev.evalExpr(e.Expr, env)
		if err != nil {
			return Value{}, err
		}
		return ev.castValue(v, e.TargetType), nil
	default:
		return Value{}, ev.runtimeErr(expr.Pos(), "unsupported expression")
	}
}

func (ev *evaluator) evalIdentifier(e *Identifier, env *environment) (Value, error) {
	if v, ok := env.get(e.Name); ok {
		return v, nil
	}
	return Value{}, ev.runtimeErr(e.position, "undefined identifier %q", e.Name)
}

func (ev *evaluator) evalArgs(exprs []Expression, env *environment) ([]Value, error) {
	args := make([]Value, 0, len(exprs))
	for _, e := range exprs {
		v, err := ev.evalExpr(e, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// deref follows a Handle to its referent, erroring on a null handle. Any
// other kind passes through unchanged.
func (ev *evaluator) deref(v Value, pos Position) (Value, error) {
	for v.Kind() == KindHandle {
		h := v.Handle()
		if h.Ref == nil {
			return Value{}, ev.runtimeErr(pos, "null handle dereference")
		}
		switch r := h.Ref.(type) {
		case *ObjectValue:
			v = NewObject(r)
		case *NativeValue:
			v = NewNative(r)
		default:
			return Value{}, ev.runtimeErr(pos, "null handle dereference")
		}
	}
	return v, nil
}

func (ev *evaluator) evalAssign(e *AssignExpr, env *environment) (Value, error) {
	var newVal Value
	if e.Op == tokenAssign {
		v, err := ev.evalExpr(e.Value, env)
		if err != nil {
			return Value{}, err
		}
		newVal = v
	} else {
		cur, err := ev.readLValueForCompound(e.Target, env, e.position)
		if err != nil {
			return Value{}, err
		}
		rhs, err := ev.evalExpr(e.Value, env)
		if err != nil {
			return Value{}, err
		}
		v, err := ev.applyBinaryOp(compoundBinOp(e.Op), cur, rhs, e.position)
		if err != nil {
			return Value{}, err
		}
		newVal = v
	}
	if err := ev.assignTo(e.Target, newVal, env, e.position); err != nil {
		return Value{}, err
	}
	return newVal, nil
}

// readLValueForCompound reads the current value of an assignment target
// for use by a compound operator. A bare identifier that has never been
// defined reads as Int(0), per the first-use allowance; any other target
// kind is read with full evaluation (and so errors normally if absent).
func (ev *evaluator) readLValueForCompound(target Expression, env *environment, pos Position) (Value, error) {
	if ident, ok := target.(*Identifier); ok {
		if v, found := env.get(ident.Name); found {
			return v, nil
		}
		return NewInt(0), nil
	}
	return ev.evalExpr(target, env)
}

func (ev *evaluator) assignTo(target Expression, val Value, env *environment, pos Position) error {
	switch t := target.(type) {
	case *Identifier:
		env.set(t.Name, val)
		return nil
	case *MemberExpr:
		return ev.assignMember(t, val, env, pos)
	case *IndexExpr:
		return ev.assignIndex(t, val, env, pos)
	default:
		return ev.runtimeErr(pos, "invalid assignment target")
	}
}

func (ev *evaluator) assignMember(t *MemberExpr, val Value, env *environment, pos Position) error {
	objVal, err := ev.evalExpr(t.Object, env)
	if err != nil {
		return err
	}
	target, err := ev.deref(objVal, pos)
	if err != nil {
		return err
	}
	switch target.Kind() {
	case KindObject:
		target.Object().Fields.Set(t.Member, val)
		return nil
	case KindNative:
		if setter, ok := target.Native().Data.(NativeFieldSetter); ok {
			return setter.SetField(t.Member, val)
		}
		return ev.runtimeErr(pos, "native value %s does not support field assignment", target.Native().TypeName)
	default:
		return ev.runtimeErr(pos, "invalid assignment target")
	}
}

func (ev *evaluator) assignIndex(t *IndexExpr, val Value, env *environment, pos Position) error {
	objVal, err := ev.evalExpr(t.Object, env)
	if err != nil {
		return err
	}
	idxVal, err := ev.evalExpr(t.Index, env)
	if err != nil {
		return err
	}
	target, err := ev.deref(objVal, pos)
	if err != nil {
		return err
	}
	switch target.Kind() {
	case KindArray:
		arr := target.Array()
		i := idxVal.Int()
		if i < 0 || i >= len(arr.Elements) {
			return ev.runtimeErr(pos, "array index %d out of range (length %d)", i, len(arr.Elements))
		}
		arr.Elements[i] = val
		return nil
	case KindNative:
		if ni, ok := target.Native().Data.(NativeIndexable); ok {
			return ni.SetIndex(idxVal.Int(), val)
		}
		return ev.runtimeErr(pos, "native value %s does not support indexed assignment", target.Native().TypeName)
	default:
		return ev.runtimeErr(pos, "cannot index-assign a %s", target.Kind())
	}
}

// evalHandleAssign implements the coercion rule for `@target = rhs`: a
// handle passes through as-is, null becomes a null handle, an object or
// native is wrapped fresh, and anything else becomes a null handle.
func (ev *evaluator) evalHandleAssign(e *HandleAssignExpr, env *environment) (Value, error) {
	rhs, err := ev.evalExpr(e.Value, env)
	if err != nil {
		return Value{}, err
	}
	var handleVal Value
	switch rhs.Kind() {
	case KindHandle:
		handleVal = rhs
	case KindObject:
		handleVal = NewHandle(rhs.Object())
	case KindNative:
		handleVal = NewHandle(rhs.Native())
	default:
		handleVal = NewHandle(nil)
	}
	if err := ev.assignTo(e.Target, handleVal, env, e.position); err != nil {
		return Value{}, err
	}
	return handleVal, nil
}

func (ev *evaluator) evalBinary(e *BinaryExpr, env *environment) (Value, error) {
	switch e.Op {
	case tokenAnd:
		l, err := ev.evalExpr(e.Left, env)
		if err != nil {
			return Value{}, err
		}
		if !l.Truthy() {
			return NewBool(false), nil
		}
		r, err := ev.evalExpr(e.Right, env)
		if err != nil {
			return Value{}, err
		}
		return NewBool(r.Truthy()), nil
	case tokenOr:
		l, err := ev.evalExpr(e.Left, env)
		if err != nil {
			return Value{}, err
		}
		if l.Truthy() {
			return NewBool(true), nil
		}
		r, err := ev.evalExpr(e.Right, env)
		if err != nil {
			return Value{}, err
		}
		return NewBool(r.Truthy()), nil
	}
	l, err := ev.evalExpr(e.Left, env)
	if err != nil {
		return Value{}, err
	}
	r, err := ev.evalExpr(e.Right, env)
	if err != nil {
		return Value{}, err
	}
	return ev.applyBinaryOp(e.Op, l, r, e.position)
}

func (ev *evaluator) applyBinaryOp(op TokenType, l, r Value, pos Position) (Value, error) {
	if op == tokenPlus && (l.Kind() == KindString || r.Kind() == KindString) {
		return NewString(l.String() + r.String()), nil
	}
	switch op {
	case tokenEQ:
		return NewBool(l.Equal(r)), nil
	case tokenNotEQ:
		return NewBool(!l.Equal(r)), nil
	}
	switch op {
	case tokenAmp, tokenPipe, tokenCaret, tokenShl, tokenShr:
		li, ri := toInt32Coerce(l), toInt32Coerce(r)
		var res int32
		switch op {
		case tokenAmp:
			res = li & ri
		case tokenPipe:
			res = li | ri
		case tokenCaret:
			res = li ^ ri
		case tokenShl:
			res = li << uint32(ri&31)
		case tokenShr:
			res = li >> uint32(ri&31)
		}
		return NewInt(int64(res)), nil
	}
	switch op {
	case tokenLT, tokenGT, tokenLTE, tokenGTE:
		lf, rf := toFloat64(l), toFloat64(r)
		var res bool
		switch op {
		case tokenLT:
			res = lf < rf
		case tokenGT:
			res = lf > rf
		case tokenLTE:
			res = lf <= rf
		case tokenGTE:
			res = lf >= rf
		}
		return NewBool(res), nil
	}
	lf, rf := toFloat64(l), toFloat64(r)
	var resf float64
	switch op {
	case tokenPlus:
		resf = lf + rf
	case tokenMinus:
		resf = lf - rf
	case tokenAsterisk:
		resf = lf * rf
	case tokenSlash:
		if rf == 0 {
			resf = 0
		} else {
			resf = lf / rf
		}
	case tokenPercent:
		if rf == 0 {
			resf = 0
		} else {
			resf = math.Mod(lf, rf)
		}
	default:
		return Value{}, ev.runtimeErr(pos, "unknown operator %q", op)
	}
	if l.Kind() == KindFloat {
		return NewFloat(resf), nil
	}
	return NewInt(int64(resf)), nil
}

var compoundOpMap = map[TokenType]TokenType{
	tokenPlusEq: tokenPlus, tokenMinusEq: tokenMinus, tokenStarEq: tokenAsterisk,
	tokenSlashEq: tokenSlash, tokenPercentEq: tokenPercent, tokenAmpEq: tokenAmp,
	tokenPipeEq: tokenPipe, tokenCaretEq: tokenCaret,
}

func compoundBinOp(op TokenType) TokenType { return compoundOpMap[op] }

func toFloat64(v Value) float64 {
	switch v.Kind() {
	case KindInt:
		return float64(v.Int32())
	case KindFloat:
		return v.Float64()
	case KindBool:
		if v.Bool() {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toInt32Coerce(v Value) int32 {
	switch v.Kind() {
	case KindInt:
		return v.Int32()
	case KindFloat:
		return int32(v.Float64())
	case KindBool:
		if v.Bool() {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (ev *evaluator) evalUnary(e *UnaryExpr, env *environment) (Value, error) {
	if e.Op == tokenInc || e.Op == tokenDec {
		return ev.evalIncDec(e, env)
	}
	if e.Op == tokenAt {
		v, err := ev.evalExpr(e.Operand, env)
		if err != nil {
			return Value{}, err
		}
		switch v.Kind() {
		case KindObject:
			return NewHandle(v.Object()), nil
		case KindNative:
			return NewHandle(v.Native()), nil
		case KindHandle:
			return v, nil
		default:
			return NewHandle(nil), nil
		}
	}
	v, err := ev.evalExpr(e.Operand, env)
	if err != nil {
		return Value{}, err
	}
	switch e.Op {
	case tokenMinus:
		if v.Kind() == KindFloat {
			return NewFloat(-v.Float64()), nil
		}
		return NewInt(int64(-toInt32Coerce(v))), nil
	case tokenBang:
		return NewBool(!v.Truthy()), nil
	case tokenTilde:
		return NewInt(int64(^toInt32Coerce(v))), nil
	default:
		return Value{}, ev.runtimeErr(e.position, "unknown unary operator %q", e.Op)
	}
}

func (ev *evaluator) evalIncDec(e *UnaryExpr, env *environment) (Value, error) {
	cur, err := ev.readLValueForCompound(e.Operand, env, e.position)
	if err != nil {
		return Value{}, err
	}
	var newVal Value
	if cur.Kind() == KindFloat {
		delta := 1.0
		if e.Op == tokenDec {
			delta = -1
		}
		newVal = NewFloat(cur.Float64() + delta)
	} else {
		delta := int32(1)
		if e.Op == tokenDec {
			delta = -1
		}
		newVal = NewInt(int64(toInt32Coerce(cur) + delta))
	}
	if err := ev.assignTo(e.Operand, newVal, env, e.position); err != nil {
		return Value{}, err
	}
	if e.Prefix {
		return newVal, nil
	}
	return cur, nil
}

func (ev *evaluator) evalCall(e *CallExpr, env *environment) (Value, error) {
	if member, ok := e.Callee.(*MemberExpr); ok {
		if _, isEnum := ev.enumOperand(member, env); !isEnum {
			recv, err := ev.evalExpr(member.Object, env)
			if err != nil {
				return Value{}, err
			}
			args, err := ev.evalArgs(e.Args, env)
			if err != nil {
				return Value{}, err
			}
			return ev.callMethod(recv, member.Member, args, e.position)
		}
	}
	fnVal, err := ev.evalExpr(e.Callee, env)
	if err != nil {
		return Value{}, err
	}
	args, err := ev.evalArgs(e.Args, env)
	if err != nil {
		return Value{}, err
	}
	return ev.callValue(fnVal, args, e.position)
}

// enumOperand reports whether member.Object names a registered enum,
// so callers can avoid treating `Enum::Member(...)` as a method call.
func (ev *evaluator) enumOperand(member *MemberExpr, env *environment) (string, bool) {
	ident, ok := member.Object.(*Identifier)
	if !ok {
		return "", false
	}
	if _, ok := ev.engine.enums[ident.Name]; ok {
		return ident.Name, true
	}
	return "", false
}

func (ev *evaluator) callValue(fnVal Value, args []Value, pos Position) (Value, error) {
	switch fnVal.Kind() {
	case KindNativeFunction:
		return ev.invokeNative(fnVal.NativeFunction(), args, pos)
	case KindFunction:
		return ev.callFunction(fnVal.Function(), args, pos)
	default:
		return Value{}, ev.runtimeErr(pos, "value is not callable")
	}
}

func (ev *evaluator) invokeNative(nf *NativeFunctionValue, args []Value, pos Position) (Value, error) {
	ev.frames = append(ev.frames, StackFrame{Function: nf.Name, Pos: pos})
	defer func() { ev.frames = ev.frames[:len(ev.frames)-1] }()
	v, err := nf.Fn(args)
	if err != nil {
		if re, ok := err.(*RuntimeError); ok {
			return Value{}, re
		}
		return Value{}, ev.runtimeErr(pos, "%v", err)
	}
	return v, nil
}

// callFunction invokes a script function. The frame's environment parents
// directly on the global environment, never on the caller's scope: script
// functions have no closures. When the function is bound to an object
// receiver, each field is copied into the frame by name so the body can
// read and write them as bare identifiers; on return, the frame's current
// values for those names are written back into the object.
func (ev *evaluator) callFunction(fn *FunctionValue, args []Value, pos Position) (Value, error) {
	limit := ev.engine.config.RecursionLimit
	ev.depth++
	defer func() { ev.depth-- }()
	if limit > 0 && ev.depth > limit {
		return Value{}, ev.runtimeErr(pos, "recursion limit of %d exceeded", limit)
	}

	ev.frames = append(ev.frames, StackFrame{Function: fn.Name, Pos: pos})
	defer func() { ev.frames = ev.frames[:len(ev.frames)-1] }()

	frame := newEnvironment(ev.engine.global)
	var thisObj *ObjectValue
	switch fn.This.Kind() {
	case KindObject:
		thisObj = fn.This.Object()
		frame.define("this", fn.This)
		for _, key := range thisObj.Fields.Keys() {
			v, _ := thisObj.Fields.Get(key)
			frame.define(key, v)
		}
	case KindNative:
		frame.define("this", fn.This)
	}

	for i, param := range fn.Decl.Params {
		if i < len(args) {
			frame.define(param.Name, args[i])
			continue
		}
		defVal, err := ev.zeroValueForType(param.Type, pos)
		if err != nil {
			return Value{}, err
		}
		frame.define(param.Name, defVal)
	}

	ctl, err := ev.execBlock(fn.Decl.Body, frame)
	if err != nil {
		return Value{}, err
	}

	if thisObj != nil {
		for _, key := range thisObj.Fields.Keys() {
			if v, ok := frame.vars[key]; ok {
				thisObj.Fields.Set(key, v)
			}
		}
	}

	if ctl.kind == ctrlReturn {
		return ctl.value, nil
	}
	return NewVoid(), nil
}

// callMethod implements the "dereference then dispatch" rule: a handle
// receiver is dereferenced first, getMember resolves the named member
// (binding `this` for class methods), and the result is invoked.
func (ev *evaluator) callMethod(recv Value, name string, args []Value, pos Position) (Value, error) {
	target := recv
	if recv.Kind() == KindHandle {
		d, err := ev.deref(recv, pos)
		if err != nil {
			return Value{}, err
		}
		target = d
	}
	member, err := ev.getMember(target, name, pos)
	if err != nil {
		return Value{}, err
	}
	switch member.Kind() {
	case KindFunction:
		return ev.callFunction(member.Function(), args, pos)
	case KindNativeFunction:
		return ev.invokeNative(member.NativeFunction(), args, pos)
	default:
		return Value{}, ev.runtimeErr(pos, "%q is not callable", name)
	}
}

func (ev *evaluator) evalMemberRead(e *MemberExpr, env *environment) (Value, error) {
	if ident, ok := e.Object.(*Identifier); ok {
		if ei, ok := ev.engine.enums[ident.Name]; ok {
			if val, ok := ei.members[e.Member]; ok {
				return NewInt(int64(val)), nil
			}
			return Value{}, ev.runtimeErr(e.position, "unknown enum member %q on %q", e.Member, ident.Name)
		}
	}
	objVal, err := ev.evalExpr(e.Object, env)
	if err != nil {
		return Value{}, err
	}
	return ev.getMember(objVal, e.Member, e.position)
}

// getMember resolves a named member against a value: object fields fall
// through to the owning class's methods, arrays and strings synthesize
// NativeFunction built-ins, and natives are resolved via reflection over
// the host value.
func (ev *evaluator) getMember(objVal Value, name string, pos Position) (Value, error) {
	switch objVal.Kind() {
	case KindHandle:
		d, err := ev.deref(objVal, pos)
		if err != nil {
			return Value{}, err
		}
		return ev.getMember(d, name, pos)
	case KindObject:
		obj := objVal.Object()
		if v, ok := obj.Fields.Get(name); ok {
			return v, nil
		}
		if ci, ok := ev.engine.classes[obj.TypeName]; ok {
			if m, ok := ci.methods[name]; ok {
				return NewFunction(&FunctionValue{Name: name, Decl: m, This: objVal}), nil
			}
		}
		return Value{}, ev.runtimeErr(pos, "unknown member %q on %s", name, obj.TypeName)
	case KindArray:
		return ev.arrayMethod(objVal.Array(), name, pos)
	case KindNative:
		return ev.nativeMember(objVal.Native(), name, pos)
	case KindString:
		return ev.stringMethod(objVal.StringVal(), name, pos)
	default:
		return Value{}, ev.runtimeErr(pos, "cannot access member %q on a %s", name, objVal.Kind())
	}
}

func (ev *evaluator) indexGet(objVal, idxVal Value, pos Position) (Value, error) {
	target, err := ev.deref(objVal, pos)
	if err != nil {
		return Value{}, err
	}
	switch target.Kind() {
	case KindArray:
		arr := target.Array()
		i := idxVal.Int()
		if i < 0 || i >= len(arr.Elements) {
			return Value{}, ev.runtimeErr(pos, "array index %d out of range (length %d)", i, len(arr.Elements))
		}
		return arr.Elements[i], nil
	case KindNative:
		if ni, ok := target.Native().Data.(NativeIndexable); ok {
			return ni.Index(idxVal.Int())
		}
		return Value{}, ev.runtimeErr(pos, "native value %s does not support indexed access", target.Native().TypeName)
	default:
		return Value{}, ev.runtimeErr(pos, "cannot index a %s", target.Kind())
	}
}

func (ev *evaluator) instantiateClass(className string, argExprs []Expression, env *environment, pos Position) (Value, error) {
	ci, ok := ev.engine.classes[className]
	if !ok {
		return Value{}, ev.runtimeErr(pos, "unknown class %q", className)
	}
	args, err := ev.evalArgs(argExprs, env)
	if err != nil {
		return Value{}, err
	}
	return ev.instantiateClassWithArgs(ci, args, pos)
}

// instantiateClassWithArgs builds a fresh Object, default-initializing
// each declared field by evaluating its VarDecl in the global environment
// (never the new object's own frame), then invokes the constructor if one
// is declared.
func (ev *evaluator) instantiateClassWithArgs(ci *classInfo, args []Value, pos Position) (Value, error) {
	obj := &ObjectValue{TypeName: ci.decl.Name, Fields: newFieldMap()}
	for _, field := range ci.fields {
		val, err := ev.valueForVarDecl(field, ev.engine.global)
		if err != nil {
			return Value{}, err
		}
		obj.Fields.Set(field.Name, val)
	}
	objVal := NewObject(obj)
	if ci.constructor != nil {
		fn := &FunctionValue{Name: ci.decl.Name, Decl: ci.constructor, This: objVal}
		if _, err := ev.callFunction(fn, args, pos); err != nil {
			return Value{}, err
		}
	}
	return objVal, nil
}

func (ev *evaluator) castValue(v Value, t *TypeRef) Value {
	switch t.Name {
	case "bool":
		return NewBool(v.Truthy())
	case "string":
		return NewString(v.String())
	case "float", "double":
		return NewFloat(toFloat64(v))
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return NewInt(int64(toInt32Coerce(v)))
	default:
		return v
	}
}
