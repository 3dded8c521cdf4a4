package build_test

import (
	"testing"

	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/check"
	"github.com/chocopy-lang/corec/ir"
	"github.com/chocopy-lang/corec/ir/build"
	"github.com/chocopy-lang/corec/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }
func classType(name string) *ast.ClassType { return &ast.ClassType{ClassName: name} }
func typedVar(name, typ string) *ast.TypedVar {
	return &ast.TypedVar{Identifier: ident(name), Type: classType(typ)}
}
func intLit(v int32) *ast.IntegerLiteral { return &ast.IntegerLiteral{Value: v} }
func boolLit(v bool) *ast.BoolLiteral    { return &ast.BoolLiteral{Value: v} }

// buildProgram runs the full symtab -> check -> build pipeline (the
// sequence cmd/chocopy's compileFile drives), requiring every pass to
// report no errors before handing prog to the builder.
func buildProgram(t *testing.T, prog *ast.Program) *ir.Module {
	t.Helper()
	sym := symtab.Generate(prog)
	require.False(t, sym.Errs.HasErrors(), "symtab errors: %s", sym.Errs.String())
	chk := check.Check(prog, sym)
	require.False(t, chk.Errs.HasErrors(), "check errors: %s", chk.Errs.String())
	return build.Build(prog, sym, chk)
}

// TestBuildMainLowersPrintCallToRuntimeExternal covers spec.md §8 scenario
// 1 ("print(1 + 2)" -> stdout "3"): the builder must lower the bare
// "print" call to an external rt.print call, not attempt to resolve it as
// a user-declared function (there is no ast.FuncDef for a built-in).
func TestBuildMainLowersPrintCallToRuntimeExternal(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Stmt{
			&ast.ExprStmt{Expression: &ast.CallExpr{
				Function: ident("print"),
				Args:     []ast.Expr{&ast.BinaryExpr{Left: intLit(1), Operator: "+", Right: intLit(2)}},
			}},
		},
	}
	mod := buildProgram(t, prog)

	main := mod.Function(findFunc(t, mod, "$main"))
	require.NotEmpty(t, main.Blocks)

	found := false
	for _, blk := range main.Blocks {
		for _, instr := range blk.Instructions {
			if instr.Op == ir.OpCall && instr.CallKind == ir.CallExternal && instr.Symbol == build.RuntimePrint {
				found = true
			}
		}
	}
	assert.True(t, found, "expected a CallExternal to %s somewhere in $main", build.RuntimePrint)
}

func findFunc(t *testing.T, mod *ir.Module, name string) ir.FuncID {
	t.Helper()
	for _, fn := range mod.Functions {
		if fn.Name == name {
			return fn.ID
		}
	}
	t.Fatalf("no function named %s in module", name)
	return 0
}

// TestBuildClassLayoutIncludesDeclaredAttrAndMethod covers spec.md §8
// scenario 2's class shape: a declared attribute occupies a slot beyond
// ir.HeaderWords, and a declared method is reachable by name through the
// dispatch table.
func TestBuildClassLayoutIncludesDeclaredAttrAndMethod(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.ClassDef{
				Name:       ident("A"),
				SuperClass: ident("object"),
				Declarations: []ast.Decl{
					&ast.VarDef{Var: typedVar("x", "int"), Literal: intLit(0)},
					&ast.FuncDef{
						Name:       ident("f"),
						Params:     []*ast.TypedVar{typedVar("self", "A")},
						ReturnType: classType("int"),
						Statements: []ast.Stmt{
							&ast.ReturnStmt{Value: &ast.BinaryExpr{
								Left:     &ast.AttributeExpr{Object: ident("self"), Member: ident("x")},
								Operator: "+",
								Right:    intLit(1),
							}},
						},
					},
				},
			},
		},
	}
	mod := buildProgram(t, prog)

	cls := mod.ClassByName("A")
	require.NotNil(t, cls)
	require.Len(t, cls.Attrs, 1)
	assert.Equal(t, "x", cls.Attrs[0].Name)
	assert.Equal(t, ir.HeaderWords+1, cls.SizeWords())

	slot := cls.MethodSlot("f")
	require.GreaterOrEqual(t, slot, 0)
	assert.Equal(t, "$METHOD$A.f", cls.Methods[slot].Name)
	// self occupies Params[0] per the uniform calling convention.
	require.NotEmpty(t, cls.Methods[slot].Params)
	assert.Equal(t, "self", cls.Methods[slot].Params[0].Name)
}

// TestBuildClosureCapturesFreeVariable covers spec.md §8 scenario 4: a
// nested function reading an enclosing local gets a synthesized closure
// class with exactly that local as a captured attribute.
func TestBuildClosureCapturesFreeVariable(t *testing.T) {
	inner := &ast.FuncDef{
		Name:       ident("inner"),
		ReturnType: classType("int"),
		Statements: []ast.Stmt{
			&ast.ReturnStmt{Value: ident("x")},
		},
	}
	outer := &ast.FuncDef{
		Name:       ident("outer"),
		ReturnType: classType("int"),
		Declarations: []ast.Decl{
			&ast.VarDef{Var: typedVar("x", "int"), Literal: intLit(7)},
			inner,
		},
		Statements: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.CallExpr{Function: ident("inner")}},
		},
	}
	prog := &ast.Program{
		Declarations: []ast.Decl{outer},
		Statements: []ast.Stmt{
			&ast.ExprStmt{Expression: &ast.CallExpr{
				Function: ident("print"),
				Args:     []ast.Expr{&ast.CallExpr{Function: ident("outer")}},
			}},
		},
	}
	mod := buildProgram(t, prog)

	var closureCls *ir.Class
	for _, cls := range mod.Classes {
		if cls.IsAnon {
			closureCls = cls
		}
	}
	require.NotNil(t, closureCls, "expected a synthesized closure class for inner")
	require.Len(t, closureCls.Attrs, 1)
	assert.Equal(t, "x", closureCls.Attrs[0].Name)

	innerFn := mod.Function(findFunc(t, mod, "$outer.inner"))
	require.NotEmpty(t, innerFn.Params)
	assert.Equal(t, ".closure", innerFn.Params[0].Name)
}

// TestBuildListIndexEmitsBoundsGuard covers spec.md §8 scenario 3: every
// list index read routes through a guard block calling error.OOB.
func TestBuildListIndexEmitsBoundsGuard(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.VarDef{
				Var:     &ast.TypedVar{Identifier: ident("l"), Type: &ast.ListType{ElementType: classType("int")}},
				Literal: &ast.ListExpr{Elements: []ast.Expr{intLit(1), intLit(2), intLit(3)}},
			},
		},
		Statements: []ast.Stmt{
			&ast.ExprStmt{Expression: &ast.CallExpr{
				Function: ident("print"),
				Args:     []ast.Expr{&ast.IndexExpr{List: ident("l"), Index: intLit(5)}},
			}},
		},
	}
	mod := buildProgram(t, prog)

	main := mod.Function(findFunc(t, mod, "$main"))
	found := false
	for _, blk := range main.Blocks {
		for _, instr := range blk.Instructions {
			if instr.Op == ir.OpCall && instr.CallKind == ir.CallExternal && instr.Symbol == build.ErrorOOB {
				found = true
			}
		}
	}
	assert.True(t, found, "expected a CallExternal to %s guarding the index read", build.ErrorOOB)
}

// TestBuildDivisionEmitsDivGuard covers spec.md §8 scenario 6: "//" and
// "%" route through a guard block calling error.Div.
func TestBuildDivisionEmitsDivGuard(t *testing.T) {
	prog := &ast.Program{
		Statements: []ast.Stmt{
			&ast.ExprStmt{Expression: &ast.CallExpr{
				Function: ident("print"),
				Args:     []ast.Expr{&ast.BinaryExpr{Left: intLit(1), Operator: "//", Right: intLit(0)}},
			}},
		},
	}
	mod := buildProgram(t, prog)

	main := mod.Function(findFunc(t, mod, "$main"))
	found := false
	for _, blk := range main.Blocks {
		for _, instr := range blk.Instructions {
			if instr.Op == ir.OpCall && instr.CallKind == ir.CallExternal && instr.Symbol == build.ErrorDiv {
				found = true
			}
		}
	}
	assert.True(t, found, "expected a CallExternal to %s guarding the division", build.ErrorDiv)
}

// TestBuildMethodCallOnNullableReceiverEmitsNoneGuard covers spec.md §8
// scenario 2 ("a:A = None; print(a.f())" must route through error.None):
// every method-call dispatch through a statically class-typed but
// possibly-None receiver is preceded by a null-check guard block.
func TestBuildMethodCallOnNullableReceiverEmitsNoneGuard(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.ClassDef{
				Name:       ident("A"),
				SuperClass: ident("object"),
				Declarations: []ast.Decl{
					&ast.FuncDef{
						Name:       ident("f"),
						Params:     []*ast.TypedVar{typedVar("self", "A")},
						ReturnType: classType("int"),
						Statements: []ast.Stmt{
							&ast.ReturnStmt{Value: intLit(1)},
						},
					},
				},
			},
			&ast.VarDef{Var: typedVar("a", "A"), Literal: &ast.NoneLiteral{}},
		},
		Statements: []ast.Stmt{
			&ast.ExprStmt{Expression: &ast.CallExpr{
				Function: ident("print"),
				Args: []ast.Expr{&ast.MethodCallExpr{
					Method: &ast.AttributeExpr{Object: ident("a"), Member: ident("f")},
				}},
			}},
		},
	}
	mod := buildProgram(t, prog)

	main := mod.Function(findFunc(t, mod, "$main"))
	found := false
	for _, blk := range main.Blocks {
		for _, instr := range blk.Instructions {
			if instr.Op == ir.OpCall && instr.CallKind == ir.CallExternal && instr.Symbol == build.ErrorNone {
				found = true
			}
		}
	}
	assert.True(t, found, "expected a CallExternal to %s guarding the method call's receiver", build.ErrorNone)
}

// TestBuildExhaustiveIfElseReturnLeavesNoBlockUnterminated covers a
// function whose only statement is an if/else where both branches
// return: the join block lowerIfStmt opens after the branch is reached by
// zero live paths, but must still end in Ret or Br per spec.md §3's "every
// BasicBlock ends in exactly one control-flow instruction" invariant.
func TestBuildExhaustiveIfElseReturnLeavesNoBlockUnterminated(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.ClassDef{
				Name:       ident("A"),
				SuperClass: ident("object"),
				Declarations: []ast.Decl{
					&ast.FuncDef{
						Name:       ident("f"),
						Params:     []*ast.TypedVar{typedVar("self", "A")},
						ReturnType: classType("int"),
						Statements: []ast.Stmt{
							&ast.IfStmt{
								Condition: boolLit(true),
								ThenBody:  []ast.Stmt{&ast.ReturnStmt{Value: intLit(1)}},
								ElseBody:  []ast.Stmt{&ast.ReturnStmt{Value: intLit(2)}},
							},
						},
					},
				},
			},
		},
	}
	mod := buildProgram(t, prog)

	cls := mod.ClassByName("A")
	require.NotNil(t, cls)
	slot := cls.MethodSlot("f")
	require.GreaterOrEqual(t, slot, 0)
	fn := cls.Methods[slot]

	for _, blk := range fn.Blocks {
		require.NotEmpty(t, blk.Instructions, "block %s has no instructions, left unterminated", blk.Label)
		last := blk.Instructions[len(blk.Instructions)-1]
		assert.Contains(t, []ir.Op{ir.OpRet, ir.OpBr}, last.Op, "block %s does not end in Ret/Br", blk.Label)
	}
}
