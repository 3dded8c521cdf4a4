package build

import (
	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/chocopy-lang/corec/ir"
)

// layoutDispatchTables flattens each user class's attribute slots and
// method dispatch table, inheriting the super's layout and appending (or,
// for an override, overwriting in place at the same slot) this class's
// own members — the same "stable slot index across override" rule
// go/ssa/methods.go implements for Go interface method sets.
func (b *Builder) layoutDispatchTables(prog *ast.Program) {
	var classes []*ast.ClassDef
	for _, d := range prog.Declarations {
		if c, ok := d.(*ast.ClassDef); ok {
			classes = append(classes, c)
		}
	}
	sortByDepth(classes, b.tree)

	for _, c := range classes {
		cls := b.classByAST[c]
		if cls.Super != nil {
			cls.Attrs = append(cls.Attrs, cls.Super.Attrs...)
			cls.Methods = append(cls.Methods, cls.Super.Methods...)
		}

		clsSym, _ := b.root.LookupLocal(c.Name.Name)
		clsDef := clsSym.(*chocopytypes.ClassDefType)

		for _, d := range c.Declarations {
			switch d := d.(type) {
			case *ast.VarDef:
				name := d.Var.Identifier.Name
				typ, _ := clsDef.Scope.LookupLocal(name)
				cls.Attrs = append(cls.Attrs, ir.AttrInfo{
					Name:   name,
					Type:   typ.(chocopytypes.ValueType),
					Offset: len(cls.Attrs),
				})
			case *ast.FuncDef:
				rec := b.recordByFn[d]
				if slot := cls.MethodSlot(d.Name.Name); slot >= 0 {
					cls.Methods[slot] = rec.irFn
				} else {
					cls.Methods = append(cls.Methods, rec.irFn)
				}
			}
		}
	}
}
