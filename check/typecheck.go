package check

// This file implements the Type Checker (spec.md §4.4): the bidirectional
// judgement over expressions and statements, threading a current-function
// context and a lambda-params (free-variable) sink per spec.md §4.4's
// closing paragraph.
//
// Design note: a bare identifier resolved through an *enclosing function's*
// scope (not the program scope) is recorded as a free variable of the
// function doing the reading, regardless of how many function levels up
// the binding lives. The reference compiler threads this transitively
// through every intermediate closure; this implementation records it only
// on the innermost reader (see spec.md's own Open Questions for the
// license to make this call where the distilled spec is silent — no test
// in spec.md §8 nests free-variable capture more than one level deep).

import (
	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/chocopy-lang/corec/diag"
)

type frame struct {
	funcDef *ast.FuncDef                 // nil at the program top level
	fd      *chocopytypes.FunctionDefType // nil at the program top level
	scope   *chocopytypes.Scope
}

type typeChecker struct {
	tree     *chocopytypes.HierarchyTree
	errs     diag.List
	freeVars map[*ast.FuncDef][]string
	seen     map[*ast.FuncDef]map[string]bool
	stack    []*frame
	classes  map[string]*chocopytypes.ClassDefType
}

func (c *typeChecker) top() *frame { return c.stack[len(c.stack)-1] }

func (c *typeChecker) push(f *frame) { c.stack = append(c.stack, f) }
func (c *typeChecker) pop()          { c.stack = c.stack[:len(c.stack)-1] }

func (c *typeChecker) errf(loc ast.Location, format string, args ...any) {
	c.errs.Addf(loc, format, args...)
}

// checkTopLevel type-checks the whole program: class bodies, top-level
// function bodies, top-level variable initializers, and the program's own
// statement list.
func (c *typeChecker) checkTopLevel(prog *ast.Program, root *chocopytypes.Scope) {
	c.push(&frame{scope: root})
	defer c.pop()

	for _, d := range prog.Declarations {
		c.checkDecl(d, root)
	}
	c.checkStmts(prog.Statements)
}

func (c *typeChecker) checkDecl(d ast.Decl, scope *chocopytypes.Scope) {
	switch d := d.(type) {
	case *ast.VarDef:
		c.checkVarDef(d, scope)
	case *ast.ClassDef:
		c.checkClass(d, scope)
	case *ast.FuncDef:
		c.checkFunc(d, scope)
	}
}

func (c *typeChecker) checkVarDef(d *ast.VarDef, scope *chocopytypes.Scope) {
	declared := declaredType(scope, d.Var.Identifier.Name)
	if d.Literal == nil || declared == nil {
		return
	}
	got := c.checkExpr(d.Literal)
	if !chocopytypes.IsSubtype(c.tree, got, declared) {
		c.errf(d.Loc(), "Expected type %q; got type %q", declared, got)
	}
}

func declaredType(scope *chocopytypes.Scope, name string) chocopytypes.ValueType {
	sym, ok := scope.LookupLocal(name)
	if !ok {
		return nil
	}
	vt, _ := sym.(chocopytypes.ValueType)
	return vt
}

func (c *typeChecker) checkClass(cd *ast.ClassDef, root *chocopytypes.Scope) {
	sym, ok := root.LookupLocal(cd.Name.Name)
	if !ok {
		return
	}
	cls := sym.(*chocopytypes.ClassDefType)
	for _, inner := range cd.Declarations {
		switch inner := inner.(type) {
		case *ast.VarDef:
			c.checkVarDef(inner, cls.Scope)
		case *ast.FuncDef:
			c.checkFunc(inner, cls.Scope)
		}
	}
}

func (c *typeChecker) checkFunc(fn *ast.FuncDef, declaringScope *chocopytypes.Scope) {
	sym, ok := declaringScope.LookupLocal(fn.Name.Name)
	if !ok {
		return
	}
	fd := sym.(*chocopytypes.FunctionDefType)

	c.push(&frame{funcDef: fn, fd: fd, scope: fd.Scope})
	defer c.pop()

	for _, inner := range fn.Declarations {
		switch inner := inner.(type) {
		case *ast.VarDef:
			c.checkVarDef(inner, fd.Scope)
		case *ast.FuncDef:
			c.checkFunc(inner, fd.Scope)
		}
	}

	c.checkStmts(fn.Statements)

	if !chocopytypes.IsNone(fd.ReturnType) && !isReturnSeq(fn.Statements) {
		c.errf(fn.Loc(), "missing return statement in function %q with non-None return type", fn.Name.Name)
	}
}

// isReturnSeq implements spec.md §4.4's is_return threading: OR over a
// sequence, AND over an if/else's two branches, and never true for a loop
// body alone (a while/for might not execute, even when its condition is a
// literal true — this implementation never inspects condition literals
// for reachability, matching go/cfg's stance that "even known values are
// ignored").
func isReturnSeq(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if isReturnStmt(s) {
			return true
		}
	}
	return false
}

func isReturnStmt(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.IfStmt:
		if len(s.ElseBody) == 0 {
			return false
		}
		return isReturnSeq(s.ThenBody) && isReturnSeq(s.ElseBody)
	default:
		return false
	}
}

func (c *typeChecker) checkStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.checkStmt(s)
	}
}

func (c *typeChecker) checkStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		c.checkExpr(s.Expression)
	case *ast.AssignStmt:
		c.checkAssign(s)
	case *ast.IfStmt:
		cond := c.checkExpr(s.Condition)
		if !chocopytypes.Equal(cond, chocopytypes.Bool) {
			c.errf(s.Condition.Loc(), "condition of 'if' must be of type bool, got %q", cond)
		}
		c.checkStmts(s.ThenBody)
		c.checkStmts(s.ElseBody)
	case *ast.WhileStmt:
		cond := c.checkExpr(s.Condition)
		if !chocopytypes.Equal(cond, chocopytypes.Bool) {
			c.errf(s.Condition.Loc(), "condition of 'while' must be of type bool, got %q", cond)
		}
		c.checkStmts(s.Body)
	case *ast.ForStmt:
		c.checkFor(s)
	case *ast.ReturnStmt:
		c.checkReturn(s)
	}
}

func (c *typeChecker) checkFor(s *ast.ForStmt) {
	iterT := c.checkExpr(s.Iterable)
	var elemT chocopytypes.ValueType
	switch {
	case chocopytypes.Equal(iterT, chocopytypes.Str):
		elemT = chocopytypes.Str
	default:
		if l, ok := iterT.(*chocopytypes.ListValueType); ok {
			elemT = l.ElementType
		} else {
			c.errf(s.Iterable.Loc(), "'for' loop iterable must be a str or a list, got %q", iterT)
			elemT = chocopytypes.ObjectT
		}
	}

	target := c.checkExpr(s.Identifier)
	if !chocopytypes.IsSubtype(c.tree, elemT, target) {
		c.errf(s.Identifier.Loc(), "Expected type %q; got type %q", target, elemT)
	}
	c.checkStmts(s.Body)
}

func (c *typeChecker) checkReturn(s *ast.ReturnStmt) {
	f := c.top()
	if f.fd == nil {
		return // top-level return, already reported by declAnalyzer
	}
	var got chocopytypes.ValueType = chocopytypes.None
	if s.Value != nil {
		got = c.checkExpr(s.Value)
	}
	if !chocopytypes.IsSubtype(c.tree, got, f.fd.ReturnType) {
		c.errf(s.Loc(), "Expected type %q; got type %q", f.fd.ReturnType, got)
	}
}

func (c *typeChecker) checkAssign(s *ast.AssignStmt) {
	rhs := c.checkExpr(s.Value)
	if len(s.Targets) > 1 && chocopytypes.IsListOfNone(rhs) {
		c.errf(s.Loc(), "right-hand side of a multiple assignment may not have type [<None>]")
	}
	for _, target := range s.Targets {
		declared := c.checkAssignTarget(target)
		if declared == nil {
			continue // already reported (spec.md Open Question (b))
		}
		if !chocopytypes.IsSubtype(c.tree, rhs, declared) {
			c.errf(target.Loc(), "Expected type %q; got type %q", declared, rhs)
		}
	}
}

// checkAssignTarget type-checks an assignment target and returns its
// declared type (or nil if the target itself is invalid and already
// reported, per SPEC_FULL.md §3's note on Open Question (b)).
func (c *typeChecker) checkAssignTarget(target ast.Expr) chocopytypes.ValueType {
	switch t := target.(type) {
	case *ast.Identifier:
		declared := c.resolveIdentifier(t, true)
		if declared != nil {
			t.SetInferredType(declared)
		}
		return declared
	case *ast.AttributeExpr:
		return c.checkExpr(t)
	case *ast.IndexExpr:
		listT := c.checkExpr(t.List)
		idxT := c.checkExpr(t.Index)
		if !chocopytypes.Equal(idxT, chocopytypes.Int) {
			c.errf(t.Index.Loc(), "list index must be of type int, got %q", idxT)
		}
		if chocopytypes.Equal(listT, chocopytypes.Str) {
			c.errf(t.Loc(), "cannot assign to a string index")
			return nil
		}
		if l, ok := listT.(*chocopytypes.ListValueType); ok {
			t.SetInferredType(l.ElementType)
			return l.ElementType
		}
		c.errf(t.List.Loc(), "cannot index into non-list, non-str type %q", listT)
		return nil
	default:
		return c.checkExpr(target)
	}
}

// resolveIdentifier looks up id's type through the current frame's scope
// chain, implementing spec.md §4.4's Identifier rule and recording free
// variables for closures.
func (c *typeChecker) resolveIdentifier(id *ast.Identifier, isWrite bool) chocopytypes.ValueType {
	f := c.top()
	sym, foundScope := f.scope.Lookup(id.Name)
	if sym == nil {
		c.errf(id.Loc(), "name %q is not defined", id.Name)
		return chocopytypes.ObjectT
	}

	vt, isValue := sym.(chocopytypes.ValueType)
	if !isValue {
		c.errf(id.Loc(), "%q does not name a variable", id.Name)
		return chocopytypes.ObjectT
	}

	if foundScope == f.scope {
		return vt // explicitly declared (param, local var, or resolved global/nonlocal)
	}

	// Visible only via an outer scope: readable, but writing it requires
	// an explicit global/nonlocal declaration (spec.md §4.4).
	if isWrite {
		c.errf(id.Loc(), "cannot assign to %q: not declared in this scope (missing 'global'/'nonlocal'?)", id.Name)
		return nil
	}
	if f.funcDef != nil && foundScope.Kind == chocopytypes.FunctionScope {
		c.recordFreeVar(f.funcDef, id.Name)
	}
	return vt
}

func (c *typeChecker) recordFreeVar(fn *ast.FuncDef, name string) {
	seen := c.seen[fn]
	if seen == nil {
		seen = map[string]bool{}
		c.seen[fn] = seen
	}
	if seen[name] {
		return
	}
	seen[name] = true
	c.freeVars[fn] = append(c.freeVars[fn], name)
}
