package check_test

import (
	"testing"

	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/check"
	"github.com/chocopy-lang/corec/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func classType(name string) *ast.ClassType { return &ast.ClassType{ClassName: name} }

func listType(elem ast.TypeAnnotation) *ast.ListType { return &ast.ListType{ElementType: elem} }

func typedVar(name, typ string) *ast.TypedVar {
	return &ast.TypedVar{Identifier: ident(name), Type: classType(typ)}
}

func intLit(v int32) *ast.IntegerLiteral { return &ast.IntegerLiteral{Value: v} }
func boolLit(v bool) *ast.BoolLiteral    { return &ast.BoolLiteral{Value: v} }

func runCheck(t *testing.T, prog *ast.Program) *check.Result {
	t.Helper()
	sym := symtab.Generate(prog)
	require.False(t, sym.Errs.HasErrors(), "symtab errors: %s", sym.Errs.String())
	return check.Check(prog, sym)
}

func TestVarDefLiteralMatchesDeclaredType(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.VarDef{Var: typedVar("x", "int"), Literal: intLit(5)},
		},
	}
	res := runCheck(t, prog)
	assert.False(t, res.Errs.HasErrors(), res.Errs.String())
}

func TestVarDefLiteralMismatchIsError(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.VarDef{Var: typedVar("x", "int"), Literal: boolLit(true)},
		},
	}
	res := runCheck(t, prog)
	assert.True(t, res.Errs.HasErrors())
}

func TestBinaryArithmeticOnInts(t *testing.T) {
	expr := &ast.BinaryExpr{Left: intLit(1), Operator: "+", Right: intLit(2)}
	prog := &ast.Program{Statements: []ast.Stmt{&ast.ExprStmt{Expression: expr}}}
	res := runCheck(t, prog)
	require.False(t, res.Errs.HasErrors(), res.Errs.String())
	assert.Equal(t, "int", expr.InferredType().String())
}

func TestBinaryArithmeticRejectsBoolOperands(t *testing.T) {
	expr := &ast.BinaryExpr{Left: boolLit(true), Operator: "+", Right: intLit(2)}
	prog := &ast.Program{Statements: []ast.Stmt{&ast.ExprStmt{Expression: expr}}}
	res := runCheck(t, prog)
	assert.True(t, res.Errs.HasErrors())
}

func TestIfExprCommonSupertype(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.ClassDef{Name: ident("Animal"), SuperClass: ident("object")},
			&ast.ClassDef{Name: ident("Dog"), SuperClass: ident("Animal")},
			&ast.ClassDef{Name: ident("Cat"), SuperClass: ident("Animal")},
		},
		Statements: []ast.Stmt{
			&ast.ExprStmt{Expression: &ast.IfExpr{
				Condition: boolLit(true),
				ThenExpr:  &ast.CallExpr{Function: ident("Dog")},
				ElseExpr:  &ast.CallExpr{Function: ident("Cat")},
			}},
		},
	}
	res := runCheck(t, prog)
	assert.False(t, res.Errs.HasErrors(), res.Errs.String())
}

func TestListLiteralElementInference(t *testing.T) {
	lit := &ast.ListExpr{Elements: []ast.Expr{intLit(1), intLit(2), intLit(3)}}
	prog := &ast.Program{Statements: []ast.Stmt{&ast.ExprStmt{Expression: lit}}}
	res := runCheck(t, prog)
	require.False(t, res.Errs.HasErrors(), res.Errs.String())
	assert.Equal(t, "[int]", lit.InferredType().String())
}

func TestIndexIntoListRequiresIntIndex(t *testing.T) {
	idx := &ast.IndexExpr{
		List:  &ast.ListExpr{Elements: []ast.Expr{intLit(1)}},
		Index: boolLit(true),
	}
	prog := &ast.Program{Statements: []ast.Stmt{&ast.ExprStmt{Expression: idx}}}
	res := runCheck(t, prog)
	assert.True(t, res.Errs.HasErrors())
}

func TestMissingReturnIsError(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.FuncDef{
				Name:       ident("f"),
				ReturnType: classType("int"),
				Statements: []ast.Stmt{
					&ast.ExprStmt{Expression: &ast.CallExpr{Function: ident("print"), Args: []ast.Expr{intLit(1)}}},
				},
			},
		},
	}
	res := runCheck(t, prog)
	assert.True(t, res.Errs.HasErrors())
}

func TestReturnInBothBranchesSatisfiesMissingReturnCheck(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.FuncDef{
				Name:       ident("f"),
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
	}
	res := runCheck(t, prog)
	assert.False(t, res.Errs.HasErrors(), res.Errs.String())
}

func TestNestedFunctionCapturesEnclosingLocal(t *testing.T) {
	inner := &ast.FuncDef{
		Name: ident("inner"),
		Statements: []ast.Stmt{
			&ast.ReturnStmt{Value: ident("x")},
		},
	}
	outer := &ast.FuncDef{
		Name: ident("outer"),
		Declarations: []ast.Decl{
			&ast.VarDef{Var: typedVar("x", "int"), Literal: intLit(0)},
			inner,
		},
		Statements: []ast.Stmt{
			&ast.ExprStmt{Expression: &ast.CallExpr{Function: ident("inner")}},
		},
	}
	inner.ReturnType = classType("int")
	prog := &ast.Program{Declarations: []ast.Decl{outer}}

	res := runCheck(t, prog)
	require.False(t, res.Errs.HasErrors(), res.Errs.String())
	assert.Equal(t, []string{"x"}, res.FreeVars[inner])
}

func TestAssignToOuterLocalWithoutNonlocalIsError(t *testing.T) {
	inner := &ast.FuncDef{
		Name: ident("inner"),
		Statements: []ast.Stmt{
			&ast.AssignStmt{Targets: []ast.Expr{ident("x")}, Value: intLit(1)},
		},
	}
	outer := &ast.FuncDef{
		Name: ident("outer"),
		Declarations: []ast.Decl{
			&ast.VarDef{Var: typedVar("x", "int"), Literal: intLit(0)},
			inner,
		},
	}
	prog := &ast.Program{Declarations: []ast.Decl{outer}}

	res := runCheck(t, prog)
	assert.True(t, res.Errs.HasErrors())
}

func TestNonlocalDeclAllowsAssignment(t *testing.T) {
	inner := &ast.FuncDef{
		Name: ident("inner"),
		Declarations: []ast.Decl{
			&ast.NonLocalDecl{Variable: ident("x")},
		},
		Statements: []ast.Stmt{
			&ast.AssignStmt{Targets: []ast.Expr{ident("x")}, Value: intLit(1)},
		},
	}
	outer := &ast.FuncDef{
		Name: ident("outer"),
		Declarations: []ast.Decl{
			&ast.VarDef{Var: typedVar("x", "int"), Literal: intLit(0)},
			inner,
		},
	}
	prog := &ast.Program{Declarations: []ast.Decl{outer}}

	res := runCheck(t, prog)
	assert.False(t, res.Errs.HasErrors(), res.Errs.String())
}

func TestMethodCallOnClassInstance(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.ClassDef{
				Name:       ident("Counter"),
				SuperClass: ident("object"),
				Declarations: []ast.Decl{
					&ast.FuncDef{
						Name:       ident("get"),
						Params:     []*ast.TypedVar{typedVar("self", "Counter")},
						ReturnType: classType("int"),
						Statements: []ast.Stmt{&ast.ReturnStmt{Value: intLit(0)}},
					},
				},
			},
			&ast.VarDef{Var: typedVar("c", "Counter")},
		},
		Statements: []ast.Stmt{
			&ast.AssignStmt{Targets: []ast.Expr{ident("c")}, Value: &ast.CallExpr{Function: ident("Counter")}},
			&ast.ExprStmt{Expression: &ast.MethodCallExpr{
				Method: &ast.AttributeExpr{Object: ident("c"), Member: ident("get")},
			}},
		},
	}
	res := runCheck(t, prog)
	assert.False(t, res.Errs.HasErrors(), res.Errs.String())
}

func TestAttributeUsedAsFirstClassValueIsError(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.ClassDef{
				Name:       ident("Counter"),
				SuperClass: ident("object"),
				Declarations: []ast.Decl{
					&ast.FuncDef{
						Name:       ident("get"),
						Params:     []*ast.TypedVar{typedVar("self", "Counter")},
						ReturnType: classType("int"),
						Statements: []ast.Stmt{&ast.ReturnStmt{Value: intLit(0)}},
					},
				},
			},
			&ast.VarDef{Var: typedVar("c", "Counter")},
		},
		Statements: []ast.Stmt{
			&ast.ExprStmt{Expression: &ast.AttributeExpr{Object: ident("c"), Member: ident("get")}},
		},
	}
	res := runCheck(t, prog)
	assert.True(t, res.Errs.HasErrors())
}

func TestListTypeAnnotationRoundTrip(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.VarDef{
				Var:     &ast.TypedVar{Identifier: ident("xs"), Type: listType(classType("int"))},
				Literal: &ast.ListExpr{Elements: []ast.Expr{intLit(1)}},
			},
		},
	}
	res := runCheck(t, prog)
	assert.False(t, res.Errs.HasErrors(), res.Errs.String())
}
