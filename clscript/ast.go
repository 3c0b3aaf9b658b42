package clscript

// Node is implemented by every AST node; Pos identifies where in the
// source text the node began, for diagnostics.
type Node interface {
	Pos() Position
}

// Statement is implemented by statement nodes.
type Statement interface {
	Node
	stmtNode()
}

// Expression is implemented by expression nodes.
type Expression interface {
	Node
	exprNode()
}

// Program is the root of a parsed source file: a sequence of top-level
// declarations.
type Program struct {
	Decls []TopLevelDecl
}

// TopLevelDecl is implemented by VarDecl, FuncDecl, ClassDecl, and
// EnumDecl.
type TopLevelDecl interface {
	Node
	topLevelNode()
}

// TypeRef names a declared type: a primitive keyword, a class/enum name,
// optionally qualified with a template argument (for arrays), const-ness,
// and handle-ness. Name == "array" with a non-nil TemplateArg denotes a
// typed array; handle-ness then applies to the array value itself.
type TypeRef struct {
	Name        string
	IsHandle    bool
	IsConst     bool
	TemplateArg *TypeRef
	position    Position
}

func (t *TypeRef) Pos() Position { return t.position }

// Param is a function or method parameter.
type Param struct {
	Type      *TypeRef
	Name      string
	Qualifier string // "", "in", "out", or "inout"
}

// VarDecl declares a variable, either at top level, inside a class body,
// or as a local statement.
type VarDecl struct {
	Type          *TypeRef
	Name          string
	Initializer   Expression
	ArraySizeInit Expression
	IsConst       bool
	position      Position
}

func (d *VarDecl) Pos() Position   { return d.position }
func (d *VarDecl) stmtNode()       {}
func (d *VarDecl) topLevelNode()   {}

// FuncDecl declares a free function or a class member function. A
// constructor is a member FuncDecl whose Name equals the owning class's
// name; a destructor's Name is "~" + className (parsed, never invoked).
type FuncDecl struct {
	ReturnType *TypeRef
	Name       string
	Params     []Param
	Body       *BlockStmt
	position   Position
}

func (d *FuncDecl) Pos() Position { return d.position }
func (d *FuncDecl) stmtNode()     {}
func (d *FuncDecl) topLevelNode() {}

// ClassDecl declares a class: a set of field and method members.
type ClassDecl struct {
	Name     string
	Members  []TopLevelDecl // *VarDecl or *FuncDecl
	position Position
}

func (d *ClassDecl) Pos() Position { return d.position }
func (d *ClassDecl) topLevelNode() {}

// EnumValue is one member of an EnumDecl, with an optional explicit value
// expression (defaulting to one more than the previous member's value).
type EnumValue struct {
	Name  string
	Value Expression
}

// EnumDecl declares an enum type and its named integer values.
type EnumDecl struct {
	Name     string
	Values   []EnumValue
	position Position
}

func (d *EnumDecl) Pos() Position { return d.position }
func (d *EnumDecl) topLevelNode() {}

// BlockStmt is a brace-delimited sequence of statements executed in a
// child environment.
type BlockStmt struct {
	Stmts    []Statement
	position Position
}

func (s *BlockStmt) Pos() Position { return s.position }
func (s *BlockStmt) stmtNode()     {}

// ExprStmt evaluates an expression for its side effects and discards the
// result.
type ExprStmt struct {
	Expr     Expression
	position Position
}

func (s *ExprStmt) Pos() Position { return s.position }
func (s *ExprStmt) stmtNode()     {}

// IfStmt is a conditional with an optional else branch (itself often
// another IfStmt, for "else if" chains).
type IfStmt struct {
	Condition Expression
	Then      Statement
	Else      Statement
	position  Position
}

func (s *IfStmt) Pos() Position { return s.position }
func (s *IfStmt) stmtNode()     {}

// ForStmt is a C-style for loop: init; condition; update.
type ForStmt struct {
	Init      Statement
	Condition Expression
	Update    Statement
	Body      Statement
	position  Position
}

func (s *ForStmt) Pos() Position { return s.position }
func (s *ForStmt) stmtNode()     {}

// WhileStmt is a pre-test loop.
type WhileStmt struct {
	Condition Expression
	Body      Statement
	position  Position
}

func (s *WhileStmt) Pos() Position { return s.position }
func (s *WhileStmt) stmtNode()     {}

// DoWhileStmt is a post-test loop.
type DoWhileStmt struct {
	Body      Statement
	Condition Expression
	position  Position
}

func (s *DoWhileStmt) Pos() Position { return s.position }
func (s *DoWhileStmt) stmtNode()     {}

// ReturnStmt exits the enclosing function, optionally carrying a value.
type ReturnStmt struct {
	Value    Expression
	position Position
}

func (s *ReturnStmt) Pos() Position { return s.position }
func (s *ReturnStmt) stmtNode()     {}

// BreakStmt exits the innermost enclosing loop or switch case.
type BreakStmt struct {
	position Position
}

func (s *BreakStmt) Pos() Position { return s.position }
func (s *BreakStmt) stmtNode()     {}

// ContinueStmt skips to the update clause of the innermost enclosing loop.
type ContinueStmt struct {
	position Position
}

func (s *ContinueStmt) Pos() Position { return s.position }
func (s *ContinueStmt) stmtNode()     {}

// SwitchCase is one `case Expr:` or `default:` clause of a SwitchStmt.
// Value is nil for the default clause.
type SwitchCase struct {
	Value Expression
	Body  []Statement
}

// SwitchStmt evaluates Tag once and scans Cases in order for C-style
// fall-through semantics.
type SwitchStmt struct {
	Tag      Expression
	Cases    []SwitchCase
	position Position
}

func (s *SwitchStmt) Pos() Position { return s.position }
func (s *SwitchStmt) stmtNode()     {}

// Identifier references a variable, function, class, or enum name.
type Identifier struct {
	Name     string
	position Position
}

func (e *Identifier) Pos() Position { return e.position }
func (e *Identifier) exprNode()     {}

// IntLiteral is an integer literal, already truncated to int32 range by
// the parser.
type IntLiteral struct {
	Value    int32
	position Position
}

func (e *IntLiteral) Pos() Position { return e.position }
func (e *IntLiteral) exprNode()     {}

// FloatLiteral is a floating-point literal.
type FloatLiteral struct {
	Value    float64
	position Position
}

func (e *FloatLiteral) Pos() Position { return e.position }
func (e *FloatLiteral) exprNode()     {}

// StringLiteral is a string literal with escapes already resolved.
type StringLiteral struct {
	Value    string
	position Position
}

func (e *StringLiteral) Pos() Position { return e.position }
func (e *StringLiteral) exprNode()     {}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	Value    bool
	position Position
}

func (e *BoolLiteral) Pos() Position { return e.position }
func (e *BoolLiteral) exprNode()     {}

// NullLiteral is the `null` literal.
type NullLiteral struct {
	position Position
}

func (e *NullLiteral) Pos() Position { return e.position }
func (e *NullLiteral) exprNode()     {}

// AssignExpr assigns Value to Target, optionally via a compound operator
// (e.g. "+=" computes Target + Value then assigns).
type AssignExpr struct {
	Target   Expression
	Op       TokenType
	Value    Expression
	position Position
}

func (e *AssignExpr) Pos() Position { return e.position }
func (e *AssignExpr) exprNode()     {}

// HandleAssignExpr assigns a handle: `@target = rhs`. The right-hand side
// is coerced per the handle-assignment rule (handle passes through, null
// becomes a null handle, an object/native is wrapped, anything else
// becomes a null handle).
type HandleAssignExpr struct {
	Target   Expression
	Value    Expression
	position Position
}

func (e *HandleAssignExpr) Pos() Position { return e.position }
func (e *HandleAssignExpr) exprNode()     {}

// BinaryExpr is a two-operand operator expression.
type BinaryExpr struct {
	Left     Expression
	Op       TokenType
	Right    Expression
	position Position
}

func (e *BinaryExpr) Pos() Position { return e.position }
func (e *BinaryExpr) exprNode()     {}

// UnaryExpr is a one-operand operator expression: -, !, ~, @, prefix/
// postfix ++/--.
type UnaryExpr struct {
	Op       TokenType
	Operand  Expression
	Prefix   bool
	position Position
}

func (e *UnaryExpr) Pos() Position { return e.position }
func (e *UnaryExpr) exprNode()     {}

// TernaryExpr is `cond ? then : else`.
type TernaryExpr struct {
	Condition Expression
	Then      Expression
	Else      Expression
	position  Position
}

func (e *TernaryExpr) Pos() Position { return e.position }
func (e *TernaryExpr) exprNode()     {}

// CallExpr invokes Callee with Args, evaluated left to right.
type CallExpr struct {
	Callee   Expression
	Args     []Expression
	position Position
}

func (e *CallExpr) Pos() Position { return e.position }
func (e *CallExpr) exprNode()     {}

// MemberExpr accesses a named member of Object: a field, a method
// reference, a synthesized array/string method, or (when Object is an
// Identifier naming an enum) an enum constant via `Enum::Member` syntax.
type MemberExpr struct {
	Object   Expression
	Member   string
	position Position
}

func (e *MemberExpr) Pos() Position { return e.position }
func (e *MemberExpr) exprNode()     {}

// IndexExpr accesses Object at Index: array bounds-checked access, or a
// native indexed-access delegate.
type IndexExpr struct {
	Object   Expression
	Index    Expression
	position Position
}

func (e *IndexExpr) Pos() Position { return e.position }
func (e *IndexExpr) exprNode()     {}

// NewExpr constructs a new instance of a declared class.
type NewExpr struct {
	ClassName string
	Args      []Expression
	position  Position
}

func (e *NewExpr) Pos() Position { return e.position }
func (e *NewExpr) exprNode()     {}

// CastExpr converts the value of Expr to TargetType.
type CastExpr struct {
	TargetType *TypeRef
	Expr       Expression
	position   Position
}

func (e *CastExpr) Pos() Position { return e.position }
func (e *CastExpr) exprNode()     {}
