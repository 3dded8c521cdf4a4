package chocopytypes

// Symbol is the sum type stored in a Scope: either a ValueType (a
// variable/attribute/parameter), a *FunctionDefType (a function/method),
// a *ClassDefType (a class), or one of the global/nonlocal placeholders
// inserted by symtab and replaced by check (spec.md §3, SPEC_FULL.md §3).
type Symbol interface {
	symbol()
}

func (*ClassValueType) symbol() {}
func (*ListValueType) symbol()  {}

// FunctionDefType describes a declared function or method.
type FunctionDefType struct {
	Name       string
	ReturnType ValueType
	Params     []ValueType
	Scope      *Scope
	IsMethod   bool
}

func (*FunctionDefType) symbol() {}

// Matches reports whether two function signatures are structurally
// identical (used for override-signature checking, spec.md §4.2).
func (f *FunctionDefType) Matches(g *FunctionDefType) bool {
	if len(f.Params) != len(g.Params) {
		return false
	}
	if !Equal(f.ReturnType, g.ReturnType) {
		return false
	}
	for i := range f.Params {
		if !Equal(f.Params[i], g.Params[i]) {
			return false
		}
	}
	return true
}

// ClassDefType describes a declared class. Scope maps every member name
// (own and inherited) to a ValueType (attribute) or *FunctionDefType
// (method); InheritedMembers records which of those came from the
// super-class chain, letting callers iterate "this class's own
// contribution" separately (spec.md §3).
type ClassDefType struct {
	Name             string
	SuperName        string
	Scope            *Scope
	InheritedMembers map[string]Symbol
}

func (*ClassDefType) symbol() {}

// GlobalRef is a placeholder for "global x" pending resolution by check's
// declaration-analysis pass (spec.md §4.3).
type GlobalRef struct{ Name string }

func (GlobalRef) symbol() {}

// NonlocalRef is a placeholder for "nonlocal x" pending resolution.
type NonlocalRef struct{ Name string }

func (NonlocalRef) symbol() {}

// Scope is one level of nested lexical scope: program, class, function, or
// nested function. Scopes form a tree rooted at the program scope; Parent
// is nil only for that root (spec.md §3 invariant (i)).
type Scope struct {
	Parent *Scope
	Kind   ScopeKind
	Names  map[string]Symbol
	// Owner names the ClassDef/FuncDef this scope belongs to, empty for
	// the program scope.
	Owner string
}

// ScopeKind distinguishes the program, class, and function scopes; a
// nested function's scope is also a FunctionScope.
type ScopeKind int

const (
	ProgramScope ScopeKind = iota
	ClassScope
	FunctionScope
)

// NewScope creates an empty scope nested under parent.
func NewScope(parent *Scope, kind ScopeKind, owner string) *Scope {
	return &Scope{Parent: parent, Kind: kind, Names: make(map[string]Symbol), Owner: owner}
}

// Declare binds name to sym in this scope only, reporting false if name is
// already bound here (duplicate-declaration detection is per-scope,
// spec.md §4.2).
func (s *Scope) Declare(name string, sym Symbol) bool {
	if _, exists := s.Names[name]; exists {
		return false
	}
	s.Names[name] = sym
	return true
}

// Lookup searches this scope and its ancestors, returning the symbol and
// the scope it was found in, or (nil, nil) if unbound anywhere.
func (s *Scope) Lookup(name string) (Symbol, *Scope) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.Names[name]; ok {
			return sym, sc
		}
	}
	return nil, nil
}

// LookupLocal searches only this scope, not its ancestors.
func (s *Scope) LookupLocal(name string) (Symbol, bool) {
	sym, ok := s.Names[name]
	return sym, ok
}

// Root walks to the program scope at the top of the parent chain.
func (s *Scope) Root() *Scope {
	sc := s
	for sc.Parent != nil {
		sc = sc.Parent
	}
	return sc
}
