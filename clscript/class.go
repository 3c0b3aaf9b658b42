package clscript

// classInfo is the resolved, ready-to-instantiate form of a ClassDecl: its
// field declarations (in source order, for default-construction) and its
// method table, keyed by name. A constructor is the method whose name
// equals the class name; a destructor (name "~"+class name) is recorded
// but never invoked, per the language's lack of automatic lifetime
// management.
type classInfo struct {
	decl        *ClassDecl
	fields      []*VarDecl
	methods     map[string]*FuncDecl
	constructor *FuncDecl
}

func newClassInfo(decl *ClassDecl) *classInfo {
	ci := &classInfo{decl: decl, methods: make(map[string]*FuncDecl)}
	for _, m := range decl.Members {
		switch member := m.(type) {
		case *VarDecl:
			ci.fields = append(ci.fields, member)
		case *FuncDecl:
			if member.Name == decl.Name {
				ci.constructor = member
				continue
			}
			ci.methods[member.Name] = member
		}
	}
	return ci
}

// enumInfo is the resolved form of an EnumDecl: each member name mapped to
// its integer value, in declaration order. Members without an explicit
// value expression default to one more than the previous member's value
// (zero for the first member).
type enumInfo struct {
	decl    *EnumDecl
	members map[string]int32
	order   []string
}
