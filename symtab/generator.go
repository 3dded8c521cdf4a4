// Package symtab implements the Symbol Table Generator (spec.md §4.2): one
// pre-order walk over a parsed ast.Program that builds nested scopes and
// populates them with chocopytypes symbols.
//
// This mirrors go/ssa/create.go's "CREATE phase" split from the later
// build phase: symtab only declares what exists and in what scope, it does
// not validate annotated types or resolve global/nonlocal placeholders —
// that is check's Declaration Analyzer (spec.md §4.3).
package symtab

import (
	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/chocopy-lang/corec/diag"
)

// Result is the output of Generate: the program's root scope, the class
// hierarchy it populated, and any declaration errors found along the way.
type Result struct {
	Root  *chocopytypes.Scope
	Tree  *chocopytypes.HierarchyTree
	Errs  diag.List
}

// Generate runs the Symbol Table Generator over prog.
func Generate(prog *ast.Program) *Result {
	g := &generator{
		tree: chocopytypes.NewHierarchyTree(),
	}
	g.root = chocopytypes.NewScope(nil, chocopytypes.ProgramScope, "")
	seedBuiltins(g.tree, g.root)

	// Classes must be inserted in an order where each super-class is
	// already registered (HierarchyTree.AddClass's gate, spec.md §4.1).
	// The reference parser does not guarantee declaration order matches
	// inheritance order, so we resolve in dependency order here rather
	// than rejecting forward-referenced super-classes outright.
	g.declareClassesInOrder(prog.Declarations)

	for _, d := range prog.Declarations {
		switch d := d.(type) {
		case *ast.FuncDef:
			g.declareFunc(g.root, d)
		case *ast.VarDef:
			g.declareVar(g.root, d)
		case *ast.GlobalDecl, *ast.NonLocalDecl:
			g.errf(d.Loc(), "'global'/'nonlocal' declarations are only legal inside a function body")
		}
	}

	return &Result{Root: g.root, Tree: g.tree, Errs: g.errs}
}

type generator struct {
	tree *chocopytypes.HierarchyTree
	root *chocopytypes.Scope
	errs diag.List
}

func (g *generator) errf(loc ast.Location, format string, args ...any) {
	g.errs.Addf(loc, format, args...)
}

// declareClassesInOrder performs the class pass of the walk. Classes are
// processed in an order consistent with single-inheritance topology:
// repeatedly pick any not-yet-processed class whose super is already known
// to the tree, which handles both declaration-order and a few
// forward-referenced supers without otherwise changing spec.md §4.2's
// per-class checks.
func (g *generator) declareClassesInOrder(decls []ast.Decl) {
	pending := map[string]*ast.ClassDef{}
	var order []string
	for _, d := range decls {
		if c, ok := d.(*ast.ClassDef); ok {
			if _, dup := pending[c.Name.Name]; dup {
				g.errf(c.Loc(), "duplicate declaration of %q at the top level", c.Name.Name)
				continue
			}
			pending[c.Name.Name] = c
			order = append(order, c.Name.Name)
		}
	}
	done := map[string]bool{}
	progressed := true
	for len(pending) > 0 && progressed {
		progressed = false
		for _, name := range order {
			c, ok := pending[name]
			if !ok {
				continue
			}
			super := c.SuperClass.Name
			if super != "" && !g.tree.Contains(super) && !done[super] {
				continue // try again once super is registered
			}
			g.declareClass(c)
			done[name] = true
			delete(pending, name)
			progressed = true
		}
	}
	// Anything left over references an unknown or cyclic super-class.
	for _, name := range order {
		if c, ok := pending[name]; ok {
			g.errf(c.Loc(), "super-class %q of class %q is not defined", c.SuperClass.Name, name)
		}
	}
}

func (g *generator) declareClass(c *ast.ClassDef) {
	name := c.Name.Name
	superName := c.SuperClass.Name

	if _, exists := g.root.LookupLocal(name); exists {
		g.errf(c.Loc(), "duplicate declaration of %q at the top level", name)
		return
	}

	if superName == chocopytypes.IntT || superName == chocopytypes.BoolT || superName == chocopytypes.StrT {
		g.errf(c.Loc(), "class %q cannot extend special class %q", name, superName)
		return
	}
	superSym, _ := g.root.Lookup(superName)
	superClass, isClass := superSym.(*chocopytypes.ClassDefType)
	if superSym == nil || !isClass {
		g.errf(c.Loc(), "super-class %q of class %q is not a class", superName, name)
		return
	}

	g.tree.AddClass(name, superName)

	classScope := chocopytypes.NewScope(g.root, chocopytypes.ClassScope, name)
	cls := &chocopytypes.ClassDefType{
		Name:             name,
		SuperName:        superName,
		Scope:            classScope,
		InheritedMembers: map[string]chocopytypes.Symbol{},
	}
	g.root.Declare(name, cls)

	for _, d := range c.Declarations {
		switch d := d.(type) {
		case *ast.VarDef:
			g.declareAttr(cls, superClass, d)
		case *ast.FuncDef:
			g.declareMethod(cls, superClass, d)
		}
	}

	// Inherit every super-class member not shadowed by this class.
	for memberName, sym := range allMembers(superClass) {
		if _, shadowed := classScope.LookupLocal(memberName); !shadowed {
			classScope.Declare(memberName, sym)
			cls.InheritedMembers[memberName] = sym
		}
	}
}

// allMembers returns super's own scope bindings, i.e. everything visible
// in super (own + what it inherited), for use when the next subclass down
// inherits from it.
func allMembers(super *chocopytypes.ClassDefType) map[string]chocopytypes.Symbol {
	return super.Scope.Names
}

func (g *generator) declareAttr(cls *chocopytypes.ClassDefType, super *chocopytypes.ClassDefType, d *ast.VarDef) {
	name := d.Var.Identifier.Name
	if _, exists := cls.Scope.LookupLocal(name); exists {
		g.errf(d.Loc(), "attribute %q redefined in class %q", name, cls.Name)
		return
	}
	if sym, ok := super.Scope.LookupLocal(name); ok {
		if _, isFunc := sym.(*chocopytypes.FunctionDefType); isFunc {
			g.errf(d.Loc(), "attribute %q shadows a method of the same name in %q", name, super.Name)
			return
		}
	}
	cls.Scope.Declare(name, resolveAnnotation(d.Var.Type))
}

func (g *generator) declareMethod(cls *chocopytypes.ClassDefType, super *chocopytypes.ClassDefType, d *ast.FuncDef) {
	name := d.Name.Name
	if _, exists := cls.Scope.LookupLocal(name); exists {
		g.errf(d.Loc(), "method %q redefined in class %q", name, cls.Name)
		return
	}
	if len(d.Params) == 0 || d.Params[0].Type == nil {
		g.errf(d.Loc(), "method %q of class %q must take 'self' as its first parameter", name, cls.Name)
		return
	}
	if ct, ok := d.Params[0].Type.(*ast.ClassType); !ok || ct.ClassName != cls.Name {
		g.errf(d.Loc(), "first parameter of method %q must have type %q", name, cls.Name)
		return
	}

	// The method's own lexical scope skips straight to the program scope:
	// ChocoPy has no implicit bare-name access to sibling attributes or
	// methods (those require "self."), so the class scope must not sit on
	// the lexical parent chain that drives free-variable/nonlocal
	// resolution. cls.Scope remains the member namespace used by dot
	// lookups in check.
	fd := g.funcDefType(g.root, name, d, true)

	if name != "__init__" {
		if sym, ok := super.Scope.LookupLocal(name); ok {
			switch sym := sym.(type) {
			case *chocopytypes.FunctionDefType:
				// The overriding self parameter has type cls, not super;
				// every other parameter and the return type must match.
				want := *sym
				if len(want.Params) > 0 {
					want.Params = append([]chocopytypes.ValueType{fd.Params[0]}, sym.Params[1:]...)
				}
				if !fd.Matches(&want) {
					g.errf(d.Loc(), "method %q overrides %q with an incompatible signature", name, super.Name)
				}
			default:
				g.errf(d.Loc(), "method %q shadows attribute %q of %q", name, name, super.Name)
			}
		}
	}

	cls.Scope.Declare(name, fd)
}

func (g *generator) declareFunc(scope *chocopytypes.Scope, d *ast.FuncDef) *chocopytypes.FunctionDefType {
	name := d.Name.Name
	if _, exists := scope.LookupLocal(name); exists {
		g.errf(d.Loc(), "duplicate declaration of %q", name)
	}
	fd := g.funcDefType(scope, name, d, false)
	scope.Declare(name, fd)
	return fd
}

// funcDefType builds the FunctionDefType for d, recursing into its body to
// populate its own scope with parameters and nested declarations. It does
// not declare fd in scope; callers do that (class methods and top-level
// functions have slightly different duplicate-check semantics).
func (g *generator) funcDefType(parent *chocopytypes.Scope, name string, d *ast.FuncDef, isMethod bool) *chocopytypes.FunctionDefType {
	fnScope := chocopytypes.NewScope(parent, chocopytypes.FunctionScope, name)

	params := make([]chocopytypes.ValueType, 0, len(d.Params))
	for _, p := range d.Params {
		pt := resolveAnnotation(p.Type)
		params = append(params, pt)
		if !fnScope.Declare(p.Identifier.Name, pt) {
			g.errf(p.Loc(), "duplicate parameter %q in function %q", p.Identifier.Name, name)
		}
	}

	var ret chocopytypes.ValueType = chocopytypes.None
	if d.ReturnType != nil {
		ret = resolveAnnotation(d.ReturnType)
	}

	fd := &chocopytypes.FunctionDefType{
		Name:       name,
		ReturnType: ret,
		Params:     params,
		Scope:      fnScope,
		IsMethod:   isMethod,
	}

	for _, inner := range d.Declarations {
		switch inner := inner.(type) {
		case *ast.VarDef:
			g.declareVar(fnScope, inner)
		case *ast.FuncDef:
			g.declareFunc(fnScope, inner)
		case *ast.GlobalDecl:
			name := inner.Variable.Name
			if !fnScope.Declare(name, chocopytypes.GlobalRef{Name: name}) {
				g.errf(inner.Loc(), "duplicate declaration of %q", name)
			}
		case *ast.NonLocalDecl:
			name := inner.Variable.Name
			if !fnScope.Declare(name, chocopytypes.NonlocalRef{Name: name}) {
				g.errf(inner.Loc(), "duplicate declaration of %q", name)
			}
		}
	}

	return fd
}

func (g *generator) declareVar(scope *chocopytypes.Scope, d *ast.VarDef) {
	name := d.Var.Identifier.Name
	if scope.Kind == chocopytypes.ProgramScope {
		// Naming a variable after an existing class at the program level
		// is rejected (spec.md §4.2).
		if sym, _ := scope.Lookup(name); sym != nil {
			if _, isClass := sym.(*chocopytypes.ClassDefType); isClass {
				g.errf(d.Loc(), "variable %q shadows class %q", name, name)
				return
			}
		}
	}
	vt := resolveAnnotation(d.Var.Type)
	if !scope.Declare(name, vt) {
		g.errf(d.Loc(), "duplicate declaration of %q", name)
	}
}

// resolveAnnotation translates the parser's type syntax into a semantic
// ValueType. It never fails: an unknown class name is simply a
// ClassValueType naming it, flagged as an error later by check's
// Declaration Analyzer (spec.md §4.3), matching the two-pass split.
func resolveAnnotation(t ast.TypeAnnotation) chocopytypes.ValueType {
	switch t := t.(type) {
	case *ast.ClassType:
		switch t.ClassName {
		case chocopytypes.IntT:
			return chocopytypes.Int
		case chocopytypes.BoolT:
			return chocopytypes.Bool
		case chocopytypes.StrT:
			return chocopytypes.Str
		case chocopytypes.Object:
			return chocopytypes.ObjectT
		default:
			return chocopytypes.NewClassValueType(t.ClassName)
		}
	case *ast.ListType:
		return chocopytypes.NewListValueType(resolveAnnotation(t.ElementType))
	default:
		return chocopytypes.None
	}
}
