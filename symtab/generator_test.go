package symtab_test

import (
	"testing"

	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/chocopy-lang/corec/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func classType(name string) *ast.ClassType { return &ast.ClassType{ClassName: name} }

func typedVar(name, typ string) *ast.TypedVar {
	return &ast.TypedVar{Identifier: ident(name), Type: classType(typ)}
}

func TestGenerateBuiltinsSeeded(t *testing.T) {
	prog := &ast.Program{}
	res := symtab.Generate(prog)
	require.False(t, res.Errs.HasErrors())

	for _, name := range []string{"object", "int", "bool", "str"} {
		sym, ok := res.Root.LookupLocal(name)
		require.True(t, ok, name)
		_, isClass := sym.(*chocopytypes.ClassDefType)
		assert.True(t, isClass)
	}
	_, ok := res.Root.LookupLocal("print")
	assert.True(t, ok)
}

func TestGenerateClassAndAttribute(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.ClassDef{
				Name:       ident("Animal"),
				SuperClass: ident("object"),
				Declarations: []ast.Decl{
					&ast.VarDef{Var: typedVar("name", "str")},
				},
			},
		},
	}
	res := symtab.Generate(prog)
	require.False(t, res.Errs.HasErrors(), res.Errs.String())

	sym, ok := res.Root.LookupLocal("Animal")
	require.True(t, ok)
	cls := sym.(*chocopytypes.ClassDefType)
	attr, ok := cls.Scope.LookupLocal("name")
	require.True(t, ok)
	assert.Equal(t, "str", attr.(chocopytypes.ValueType).String())
}

func TestGenerateDuplicateTopLevelIsError(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.VarDef{Var: typedVar("x", "int")},
			&ast.VarDef{Var: typedVar("x", "int")},
		},
	}
	res := symtab.Generate(prog)
	assert.True(t, res.Errs.HasErrors())
}

func TestGenerateUnknownSuperClassIsError(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.ClassDef{Name: ident("Dog"), SuperClass: ident("Animal")},
		},
	}
	res := symtab.Generate(prog)
	assert.True(t, res.Errs.HasErrors())
}

func TestGenerateNestedFunctionGetsOwnScope(t *testing.T) {
	prog := &ast.Program{
		Declarations: []ast.Decl{
			&ast.FuncDef{
				Name: ident("outer"),
				Declarations: []ast.Decl{
					&ast.VarDef{Var: typedVar("x", "int")},
					&ast.FuncDef{Name: ident("inner")},
				},
			},
		},
	}
	res := symtab.Generate(prog)
	require.False(t, res.Errs.HasErrors())

	sym, _ := res.Root.LookupLocal("outer")
	outer := sym.(*chocopytypes.FunctionDefType)
	innerSym, ok := outer.Scope.LookupLocal("inner")
	require.True(t, ok)
	inner := innerSym.(*chocopytypes.FunctionDefType)
	assert.Equal(t, outer.Scope, inner.Scope.Parent)
}
