package build

import (
	"fmt"

	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/chocopy-lang/corec/ir"
)

// declareFunctions walks every top-level FuncDef, every class method, and
// every nested FuncDef, allocating an ir.Function skeleton (name,
// signature) for each — the "CREATE" half of the declare/lower split
// (see build.go's doc comment).
func (b *Builder) declareFunctions(prog *ast.Program) {
	for _, d := range prog.Declarations {
		switch d := d.(type) {
		case *ast.FuncDef:
			sym, _ := b.root.LookupLocal(d.Name.Name)
			fd := sym.(*chocopytypes.FunctionDefType)
			b.declareOne(d, fd, "$"+d.Name.Name, nil, nil)
			b.topFuncs[d.Name.Name] = b.recordByFn[d].irFn.ID
		case *ast.ClassDef:
			b.declareMethods(d)
		}
	}
}

func (b *Builder) declareMethods(c *ast.ClassDef) {
	cls := b.classByAST[c]
	var clsSym *chocopytypes.ClassDefType
	if sym, ok := b.root.LookupLocal(c.Name.Name); ok {
		clsSym = sym.(*chocopytypes.ClassDefType)
	}
	for _, d := range c.Declarations {
		fn, ok := d.(*ast.FuncDef)
		if !ok {
			continue
		}
		sym, ok := clsSym.Scope.LookupLocal(fn.Name.Name)
		if !ok {
			continue // inherited, not redeclared here
		}
		fd, ok := sym.(*chocopytypes.FunctionDefType)
		if !ok {
			continue
		}
		name := fmt.Sprintf("$METHOD$%s.%s", c.Name.Name, fn.Name.Name)
		b.declareOne(fn, fd, name, cls, nil)
	}
}

// declareOne allocates the skeleton for fn and recurses into any FuncDefs
// nested in its body, qualifying their names "$<outer>.<inner>" per
// spec.md §4.5's naming scheme.
func (b *Builder) declareOne(fn *ast.FuncDef, fd *chocopytypes.FunctionDefType, name string, ownerClass *ir.Class, parent *ast.FuncDef) {
	params := make([]ir.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ir.Param{Name: p.Identifier.Name, Type: fd.Params[i]}
	}

	irFn := &ir.Function{
		Name:       name,
		Params:     params,
		ReturnType: fd.ReturnType,
		IsMethod:   fd.IsMethod,
	}
	b.mod.AddFunction(irFn)

	rec := &methodRecord{fn: fn, fd: fd, scope: fd.Scope, irFn: irFn, class: ownerClass}
	b.recordByFn[fn] = rec

	for _, inner := range fn.Declarations {
		innerFn, ok := inner.(*ast.FuncDef)
		if !ok {
			continue
		}
		sym, ok := fd.Scope.LookupLocal(innerFn.Name.Name)
		if !ok {
			continue
		}
		innerFD := sym.(*chocopytypes.FunctionDefType)
		innerName := name + "." + innerFn.Name.Name
		b.declareOne(innerFn, innerFD, innerName, nil, fn)
	}
}

// declareClosures synthesizes one capture-record class per nested FuncDef
// that has a non-empty free-variable set (spec.md §4.5): attributes are
// pointer slots (addresses into the enclosing frame), one per captured
// name in first-discovery order, matching check.Result.FreeVars exactly.
func (b *Builder) declareClosures(prog *ast.Program) {
	for fn, names := range b.freeVars {
		if len(names) == 0 {
			continue
		}
		rec, ok := b.recordByFn[fn]
		if !ok {
			continue
		}
		enclosing := enclosingScopeOf(rec)
		cls := &ir.Class{
			Name:    ".closure" + rec.irFn.Name,
			TypeTag: b.newTypeTag(),
			IsAnon:  true,
		}
		for i, name := range names {
			typ := lookupEnclosingType(enclosing, name)
			cls.Attrs = append(cls.Attrs, ir.AttrInfo{Name: name, Type: typ, Offset: i})
		}
		b.mod.AddClass(cls)
		b.closureClass[fn] = cls
		cls.Methods = []*ir.Function{rec.irFn}
		rec.irFn.ClosureOf = cls

		// The closure object is the function's hidden first argument,
		// ahead of its declared parameters (spec.md §4.5's call convention
		// for closures, mirroring how self leads a method's parameter list).
		receiver := ir.Param{Name: ".closure", Type: chocopytypes.NewClassValueType(cls.Name)}
		rec.irFn.Params = append([]ir.Param{receiver}, rec.irFn.Params...)
	}
}

// enclosingScopeOf returns the lexical scope one level up from rec's own
// function scope — the frame whose locals rec's free variables resolve
// against.
func enclosingScopeOf(rec *methodRecord) *chocopytypes.Scope {
	return rec.scope.Parent
}

func lookupEnclosingType(scope *chocopytypes.Scope, name string) chocopytypes.ValueType {
	sym, _ := scope.Lookup(name)
	if vt, ok := sym.(chocopytypes.ValueType); ok {
		return vt
	}
	return chocopytypes.ObjectT
}
