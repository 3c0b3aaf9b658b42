package clscript

import "testing"

func mustParse(t *testing.T, source string) *Program {
	t.Helper()
	prog, err := parseProgram(source)
	if err != nil {
		t.Fatalf("parseProgram(%q): %v", source, err)
	}
	return prog
}

func TestParseVarDeclForms(t *testing.T) {
	prog := mustParse(t, `
		int a;
		int b = 5;
		int[] c(10);
	`)
	if len(prog.Decls) != 3 {
		t.Fatalf("expected 3 decls, got %d", len(prog.Decls))
	}

	v0 := prog.Decls[0].(*VarDecl)
	if v0.Name != "a" || v0.Initializer != nil || v0.ArraySizeInit != nil {
		t.Fatalf("unexpected bare decl: %+v", v0)
	}

	v1 := prog.Decls[1].(*VarDecl)
	if v1.Name != "b" || v1.Initializer == nil {
		t.Fatalf("expected initializer on b: %+v", v1)
	}

	v2 := prog.Decls[2].(*VarDecl)
	if v2.Name != "c" || v2.ArraySizeInit == nil || v2.Type.Name != "array" {
		t.Fatalf("expected array-size decl on c: %+v", v2)
	}
}

func TestParseFunctionVersusArraySizeAmbiguity(t *testing.T) {
	prog := mustParse(t, `
		int add(int a, int b) { return a + b; }
		int[] fixedSize(5);
	`)
	fn, ok := prog.Decls[0].(*FuncDecl)
	if !ok {
		t.Fatalf("expected a FuncDecl, got %T", prog.Decls[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected function decl: %+v", fn)
	}

	arr, ok := prog.Decls[1].(*VarDecl)
	if !ok {
		t.Fatalf("expected a VarDecl, got %T", prog.Decls[1])
	}
	if arr.ArraySizeInit == nil {
		t.Fatalf("expected an array size initializer: %+v", arr)
	}
}

func TestParseFunctionReturningArray(t *testing.T) {
	prog := mustParse(t, `int[] makeArray(int n) { return n; }`)
	fn, ok := prog.Decls[0].(*FuncDecl)
	if !ok {
		t.Fatalf("expected a FuncDecl, got %T", prog.Decls[0])
	}
	if fn.ReturnType.Name != "array" || fn.ReturnType.TemplateArg.Name != "int" {
		t.Fatalf("unexpected return type: %+v", fn.ReturnType)
	}
}

func TestParseClassWithConstructorAndDestructor(t *testing.T) {
	prog := mustParse(t, `
		class Widget {
			int id;
			Widget(int id) { this.id = id; }
			~Widget() {}
			void touch() { id = id + 1; }
		}
	`)
	cls, ok := prog.Decls[0].(*ClassDecl)
	if !ok {
		t.Fatalf("expected a ClassDecl, got %T", prog.Decls[0])
	}
	ci := newClassInfo(cls)
	if ci.constructor == nil {
		t.Fatalf("expected a constructor to be recognized")
	}
	if _, ok := ci.methods["~Widget"]; !ok {
		t.Fatalf("expected a destructor entry named ~Widget")
	}
	if _, ok := ci.methods["touch"]; !ok {
		t.Fatalf("expected a touch method")
	}
	if len(ci.fields) != 1 || ci.fields[0].Name != "id" {
		t.Fatalf("unexpected fields: %+v", ci.fields)
	}
}

func TestParseEnumDecl(t *testing.T) {
	prog := mustParse(t, `enum Color { Red, Green, Blue = 10, Purple }`)
	en, ok := prog.Decls[0].(*EnumDecl)
	if !ok {
		t.Fatalf("expected an EnumDecl, got %T", prog.Decls[0])
	}
	if len(en.Values) != 4 {
		t.Fatalf("expected 4 enum members, got %d", len(en.Values))
	}
	if en.Values[2].Name != "Blue" || en.Values[2].Value == nil {
		t.Fatalf("expected Blue to carry an explicit value expression")
	}
}

func TestParseFunctionalCast(t *testing.T) {
	prog := mustParse(t, `float f(int x) { return float(x); }`)
	fn := prog.Decls[0].(*FuncDecl)
	ret := fn.Body.Stmts[0].(*ReturnStmt)
	cast, ok := ret.Value.(*CastExpr)
	if !ok {
		t.Fatalf("expected float(x) to parse as a CastExpr, got %T", ret.Value)
	}
	if cast.TargetType.Name != "float" {
		t.Fatalf("unexpected cast target: %+v", cast.TargetType)
	}
}

func TestParseCallIsNotMisreadAsCast(t *testing.T) {
	prog := mustParse(t, `int f() { return helper(1, 2); }`)
	fn := prog.Decls[0].(*FuncDecl)
	ret := fn.Body.Stmts[0].(*ReturnStmt)
	call, ok := ret.Value.(*CallExpr)
	if !ok {
		t.Fatalf("expected helper(1, 2) to parse as a CallExpr, got %T", ret.Value)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 call args, got %d", len(call.Args))
	}
}

func TestParseHandleAssignment(t *testing.T) {
	prog := mustParse(t, `
		class Box { int n; }
		void f() {
			Box a = new Box();
			Box@ h;
			@h = @a;
		}
	`)
	fn := prog.Decls[1].(*FuncDecl)
	stmt := fn.Body.Stmts[2].(*ExprStmt)
	assign, ok := stmt.Expr.(*HandleAssignExpr)
	if !ok {
		t.Fatalf("expected a HandleAssignExpr, got %T", stmt.Expr)
	}
	if _, ok := assign.Target.(*Identifier); !ok {
		t.Fatalf("expected target to be an identifier, got %T", assign.Target)
	}
}

func TestParseSwitchFallThroughStructure(t *testing.T) {
	prog := mustParse(t, `
		int f(int x) {
			switch (x) {
			case 1:
			case 2:
				return 20;
			case 3:
				return 30;
			default:
				return 0;
			}
		}
	`)
	fn := prog.Decls[0].(*FuncDecl)
	sw := fn.Body.Stmts[0].(*SwitchStmt)
	if len(sw.Cases) != 4 {
		t.Fatalf("expected 4 cases, got %d", len(sw.Cases))
	}
	if len(sw.Cases[0].Body) != 0 {
		t.Fatalf("expected case 1 to have an empty body for fall-through, got %+v", sw.Cases[0].Body)
	}
	if sw.Cases[3].Value != nil {
		t.Fatalf("expected the default case to carry a nil Value")
	}
}

func TestParseDeclarationExpressionBacktrack(t *testing.T) {
	prog := mustParse(t, `
		class Counter { int value; }
		void f(Counter existing) {
			existing.value = existing.value + 1;
			int(existing.value);
		}
	`)
	if len(prog.Decls) != 2 {
		t.Fatalf("expected 2 top-level decls, got %d", len(prog.Decls))
	}
	fn := prog.Decls[1].(*FuncDecl)
	if _, ok := fn.Body.Stmts[1].(*ExprStmt); !ok {
		t.Fatalf("expected int(existing.value) to fall back to an expression statement, got %T", fn.Body.Stmts[1])
	}
}
