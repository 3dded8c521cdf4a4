// Package check implements the Declaration Analyzer (spec.md §4.3) and the
// Type Checker (spec.md §4.4): the second and third passes over the AST,
// run after symtab's Symbol Table Generator has built the scope tree.
package check

import (
	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/chocopy-lang/corec/diag"
	"github.com/chocopy-lang/corec/symtab"
)

// Result is the output of the full check pipeline (Declaration Analyzer +
// Type Checker). FreeVars gives, for each nested FuncDef, the ordered list
// of names it captures from an enclosing function — the lambda-params of
// spec.md §4.4/§4.5, keyed by AST node identity since Go has no stable
// FuncDef id of its own.
type Result struct {
	Errs     diag.List
	FreeVars map[*ast.FuncDef][]string
}

// Check runs the Declaration Analyzer followed by the Type Checker over
// prog, using the scopes sym already built. It mutates prog's Expr nodes
// in place, filling in InferredType.
func Check(prog *ast.Program, sym *symtab.Result) *Result {
	da := &declAnalyzer{tree: sym.Tree}
	da.analyzeTopLevel(prog, sym.Root)

	res := &Result{Errs: da.errs, FreeVars: map[*ast.FuncDef][]string{}}
	if res.Errs.HasErrors() {
		// The reference pipeline still runs the type checker even when
		// declaration errors exist, to maximize useful diagnostics in one
		// run (spec.md §7); but see Check's caller in cmd/chocopy, which
		// gates IR emission on the combined error list, not on this one
		// alone.
	}

	tc := &typeChecker{
		tree:     sym.Tree,
		freeVars: res.FreeVars,
		seen:     map[*ast.FuncDef]map[string]bool{},
		classes:  classesOf(sym.Root),
	}
	tc.checkTopLevel(prog, sym.Root)
	res.Errs.Append(tc.errs)

	return res
}

// classesOf collects every class declared in the program scope, letting the
// type checker resolve a ClassValueType's name back to its member scope
// without threading the AST through every expression-checking method.
func classesOf(root *chocopytypes.Scope) map[string]*chocopytypes.ClassDefType {
	classes := map[string]*chocopytypes.ClassDefType{}
	for name, sym := range root.Names {
		if cls, ok := sym.(*chocopytypes.ClassDefType); ok {
			classes[name] = cls
		}
	}
	return classes
}

// declAnalyzer implements spec.md §4.3.
type declAnalyzer struct {
	tree *chocopytypes.HierarchyTree
	errs diag.List
}

func (d *declAnalyzer) analyzeTopLevel(prog *ast.Program, root *chocopytypes.Scope) {
	for _, decl := range prog.Declarations {
		d.analyzeDecl(decl, root)
	}

	if stmtsContainReturn(prog.Statements) {
		d.reportReturns(prog.Statements, "return statement is not allowed at the program top level")
	}
}

func (d *declAnalyzer) analyzeDecl(decl ast.Decl, scope *chocopytypes.Scope) {
	switch decl := decl.(type) {
	case *ast.VarDef:
		d.validateAnnotation(decl.Var.Type, decl.Loc())
	case *ast.ClassDef:
		d.analyzeClass(decl, scope)
	case *ast.FuncDef:
		d.analyzeFunc(decl, scope, false)
	}
}

func (d *declAnalyzer) analyzeClass(c *ast.ClassDef, root *chocopytypes.Scope) {
	sym, ok := root.LookupLocal(c.Name.Name)
	if !ok {
		return // already reported by symtab (unknown/duplicate super)
	}
	cls := sym.(*chocopytypes.ClassDefType)
	for _, inner := range c.Declarations {
		switch inner := inner.(type) {
		case *ast.VarDef:
			d.validateAnnotation(inner.Var.Type, inner.Loc())
		case *ast.FuncDef:
			isInit := inner.Name.Name == "__init__"
			d.analyzeFunc(inner, cls.Scope, isInit)
		}
	}
}

func (d *declAnalyzer) analyzeFunc(fn *ast.FuncDef, declaringScope *chocopytypes.Scope, isInit bool) {
	sym, ok := declaringScope.LookupLocal(fn.Name.Name)
	if !ok {
		return
	}
	fd := sym.(*chocopytypes.FunctionDefType)

	for i, p := range fn.Params {
		if i == 0 && fd.IsMethod {
			continue // self's annotation names the class itself, always valid
		}
		d.validateAnnotation(p.Type, p.Loc())
	}
	if fn.ReturnType != nil {
		d.validateAnnotation(fn.ReturnType, fn.Loc())
	}

	for _, inner := range fn.Declarations {
		switch inner := inner.(type) {
		case *ast.VarDef:
			d.validateAnnotation(inner.Var.Type, inner.Loc())
		case *ast.FuncDef:
			d.analyzeFunc(inner, fd.Scope, false)
		case *ast.GlobalDecl:
			d.resolveGlobal(inner, fd.Scope)
		case *ast.NonLocalDecl:
			d.resolveNonlocal(inner, fd.Scope)
		}
	}

	if isInit && stmtsContainReturn(fn.Statements) {
		d.reportReturns(fn.Statements, "return is not allowed inside '__init__'")
	}
}

// resolveGlobal rewrites a GlobalRef placeholder into a direct binding to
// the named variable's ValueType in the program scope (spec.md §4.3).
func (d *declAnalyzer) resolveGlobal(decl *ast.GlobalDecl, fnScope *chocopytypes.Scope) {
	name := decl.Variable.Name
	root := fnScope.Root()
	sym, ok := root.LookupLocal(name)
	vt, isValue := sym.(chocopytypes.ValueType)
	if !ok || !isValue {
		d.errs.Addf(decl.Loc(), "no binding for global variable %q found in the program scope", name)
		return
	}
	fnScope.Names[name] = vt
}

// resolveNonlocal rewrites a NonlocalRef placeholder into a direct binding
// to the nearest enclosing function's ValueType for name, walking parent
// scopes but never the program scope itself (spec.md §4.3).
func (d *declAnalyzer) resolveNonlocal(decl *ast.NonLocalDecl, fnScope *chocopytypes.Scope) {
	name := decl.Variable.Name
	for sc := fnScope.Parent; sc != nil && sc.Parent != nil; sc = sc.Parent {
		if sym, ok := sc.LookupLocal(name); ok {
			if vt, isValue := sym.(chocopytypes.ValueType); isValue {
				fnScope.Names[name] = vt
				return
			}
		}
	}
	d.errs.Addf(decl.Loc(), "no binding for nonlocal variable %q found in an enclosing function", name)
}

// validateAnnotation walks through list nesting to the leaf class name and
// verifies it is a declared class (spec.md §4.3).
func (d *declAnalyzer) validateAnnotation(t ast.TypeAnnotation, loc ast.Location) {
	for {
		switch tt := t.(type) {
		case *ast.ListType:
			t = tt.ElementType
			continue
		case *ast.ClassType:
			if !d.tree.Contains(tt.ClassName) {
				d.errs.Addf(loc, "undefined type %q", tt.ClassName)
			}
		}
		return
	}
}

func stmtsContainReturn(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if stmtContainsReturn(s) {
			return true
		}
	}
	return false
}

func stmtContainsReturn(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.IfStmt:
		return stmtsContainReturn(s.ThenBody) || stmtsContainReturn(s.ElseBody)
	case *ast.WhileStmt:
		return stmtsContainReturn(s.Body)
	case *ast.ForStmt:
		return stmtsContainReturn(s.Body)
	default:
		return false
	}
}

func (d *declAnalyzer) reportReturns(stmts []ast.Stmt, message string) {
	for _, s := range stmts {
		switch s := s.(type) {
		case *ast.ReturnStmt:
			d.errs.Add(s.Loc(), message)
		case *ast.IfStmt:
			d.reportReturns(s.ThenBody, message)
			d.reportReturns(s.ElseBody, message)
		case *ast.WhileStmt:
			d.reportReturns(s.Body, message)
		case *ast.ForStmt:
			d.reportReturns(s.Body, message)
		}
	}
}
