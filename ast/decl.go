package ast

// Decl is a top-level or nested declaration: a variable, a function
// (possibly nested), or a class.
type Decl interface {
	Node
	declNode()
}

// TypeAnnotation is the syntactic spelling of a type, e.g. "int" or
// "[[int]]". It is resolved to a chocopytypes.ValueType by symtab and
// validated by check; see SPEC_FULL.md §0.
type TypeAnnotation interface {
	Node
	typeAnnotationNode()
}

// ClassType is a bare class name used as a type, e.g. "int" or "Animal".
type ClassType struct {
	base
	ClassName string `json:"className"`
}

func (c *ClassType) Kind() string          { return "ClassType" }
func (c *ClassType) typeAnnotationNode()   {}

// ListType is "[" ElementType "]".
type ListType struct {
	base
	ElementType TypeAnnotation `json:"elementType"`
}

func (l *ListType) Kind() string        { return "ListType" }
func (l *ListType) typeAnnotationNode() {}

// VarDef is "name : type = literal".
type VarDef struct {
	base
	Var     *TypedVar `json:"var"`
	Literal Expr      `json:"value"`
}

func (v *VarDef) Kind() string { return "VarDef" }
func (v *VarDef) declNode()    {}

// TypedVar is the "name : type" pair shared by VarDef, parameters, and
// for-loop targets-with-annotations (ChocoPy has no for-target
// annotation, but method/function params reuse this node).
type TypedVar struct {
	base
	Identifier *Identifier    `json:"identifier"`
	Type       TypeAnnotation `json:"type"`
}

func (t *TypedVar) Kind() string { return "TypedVar" }

// GlobalDecl is "global name" inside a function body.
type GlobalDecl struct {
	base
	Variable *Identifier `json:"variable"`
}

func (g *GlobalDecl) Kind() string { return "GlobalDecl" }
func (g *GlobalDecl) declNode()    {}

// NonLocalDecl is "nonlocal name" inside a nested function body.
type NonLocalDecl struct {
	base
	Variable *Identifier `json:"variable"`
}

func (n *NonLocalDecl) Kind() string { return "NonLocalDecl" }
func (n *NonLocalDecl) declNode()    {}

// FuncDef is a function or method definition, possibly nested inside
// another FuncDef (lexical nesting drives closure capture, §4.5).
type FuncDef struct {
	base
	Name         *Identifier `json:"name"`
	Params       []*TypedVar `json:"params"`
	ReturnType   TypeAnnotation `json:"returnType"` // nil means <None>
	Declarations []Decl      `json:"declarations"`
	Statements   []Stmt      `json:"statements"`
}

func (f *FuncDef) Kind() string { return "FuncDef" }
func (f *FuncDef) declNode()    {}

// ClassDef is "class Name(Super): ...".
type ClassDef struct {
	base
	Name         *Identifier `json:"name"`
	SuperClass   *Identifier `json:"superClass"`
	Declarations []Decl      `json:"declarations"`
}

func (c *ClassDef) Kind() string { return "ClassDef" }
func (c *ClassDef) declNode()    {}
