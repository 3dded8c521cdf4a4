// Package build implements the IR Builder (spec.md §4.5) — nicknamed
// "LightWalker" after original_source's LightWalker AST visitor that
// performs the equivalent lowering in the reference compiler. It turns a
// fully typed ast.Program (after symtab.Generate and check.Check have
// both run without hard errors) into an ir.Module: class layouts and
// dispatch tables, closure records, and SSA-ish function bodies.
//
// The declare/lower split mirrors golang.org/x/tools/go/ssa's own
// two-phase package building (a CREATE pass that allocates every
// *ssa.Function skeleton so calls can reference each other regardless of
// declaration order, followed by a BUILD pass that lowers bodies) —
// see go/ssa/create.go and go/ssa/builder.go.
package build

import (
	"github.com/google/uuid"

	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/check"
	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/chocopy-lang/corec/ir"
	"github.com/chocopy-lang/corec/symtab"
)

// External runtime symbols called via ir.CallExternal. These name C
// runtime entry points (spec.md's Non-goals exclude the C runtime itself
// as a collaborator to implement; the IR only needs to name them).
const (
	RuntimeAllocObject = "rt.alloc_object"
	RuntimeBoxInt      = "rt.box_int"
	RuntimeBoxBool     = "rt.box_bool"
	RuntimeConcatStr   = "rt.concat_str"
	RuntimeConcatList  = "rt.concat_list"
	RuntimeAllocList   = "rt.alloc_list"
	RuntimePrint       = "rt.print"
	RuntimeInput       = "rt.input"
	RuntimeLen         = "rt.len"
	ErrorNone          = "error.None"
	ErrorOOB           = "error.OOB"
	ErrorDiv           = "error.Div"
)

// methodRecord pairs an AST method/function with its declared signature
// and lexical scope, resolved once during the declare pass and consulted
// during lowering.
type methodRecord struct {
	fn    *ast.FuncDef
	fd    *chocopytypes.FunctionDefType
	scope *chocopytypes.Scope
	irFn  *ir.Function
	class *ir.Class // nil for non-methods
}

// Builder holds all state threaded through the declare and lower passes.
type Builder struct {
	mod  *ir.Module
	tree *chocopytypes.HierarchyTree
	root *chocopytypes.Scope

	freeVars map[*ast.FuncDef][]string

	classByAST map[*ast.ClassDef]*ir.Class
	recordByFn map[*ast.FuncDef]*methodRecord

	// closureClass maps a nested FuncDef with a non-empty free-variable set
	// to its synthesized capture-record class.
	closureClass map[*ast.FuncDef]*ir.Class

	// topFuncs resolves a top-level function's source name to its FuncID;
	// top-level names are unique (symtab's duplicate check), so this needs
	// no further qualification at call sites.
	topFuncs map[string]ir.FuncID

	nextTypeTag int
}

// Build lowers prog into a Module. sym and chk must be the results of
// running symtab.Generate and check.Check over prog without hard errors;
// Build does not re-validate — it is an internal-compiler-error (package
// diag's ICE) to call it otherwise.
func Build(prog *ast.Program, sym *symtab.Result, chk *check.Result) *ir.Module {
	b := &Builder{
		mod:          ir.NewModule(uuid.NewString()),
		tree:         sym.Tree,
		root:         sym.Root,
		freeVars:     chk.FreeVars,
		classByAST:   map[*ast.ClassDef]*ir.Class{},
		recordByFn:   map[*ast.FuncDef]*methodRecord{},
		closureClass: map[*ast.FuncDef]*ir.Class{},
		topFuncs:     map[string]ir.FuncID{},
	}

	b.declareBuiltinClasses()
	b.declareUserClasses(prog)
	b.declareGlobals(prog)
	b.declareFunctions(prog)
	b.declareClosures(prog)
	b.layoutDispatchTables(prog)

	for _, rec := range b.recordByFn {
		b.lowerFunction(rec)
	}
	b.lowerMain(prog)

	return b.mod
}

func (b *Builder) newTypeTag() int {
	t := b.nextTypeTag
	b.nextTypeTag++
	return t
}

// declareBuiltinClasses seeds the four primitive classes plus the single
// generic list runtime class (original_source's Class.hpp models lists as
// one boxed-element array object regardless of element type, rather than
// monomorphizing a class per element type — this implementation follows
// that, since ChocoPy element types are erased at the object-layout level
// the same way Java/Python lists are).
func (b *Builder) declareBuiltinClasses() {
	b.mod.AddClass(&ir.Class{Name: chocopytypes.Object, TypeTag: b.newTypeTag()})
	b.mod.AddClass(&ir.Class{
		Name: chocopytypes.IntT, TypeTag: b.newTypeTag(),
		Attrs: []ir.AttrInfo{{Name: "value", Type: chocopytypes.Int, Offset: 0}},
	})
	b.mod.AddClass(&ir.Class{
		Name: chocopytypes.BoolT, TypeTag: b.newTypeTag(),
		Attrs: []ir.AttrInfo{{Name: "value", Type: chocopytypes.Bool, Offset: 0}},
	})
	b.mod.AddClass(&ir.Class{
		Name: chocopytypes.StrT, TypeTag: b.newTypeTag(),
		Attrs: []ir.AttrInfo{
			{Name: "length", Type: chocopytypes.Int, Offset: 0},
			{Name: "chars", Type: chocopytypes.Int, Offset: 1}, // first byte of a variable-length run
		},
	})
	b.mod.AddClass(&ir.Class{
		Name:    ".list",
		TypeTag: b.newTypeTag(),
		Attrs: []ir.AttrInfo{
			{Name: "length", Type: chocopytypes.Int, Offset: 0},
			{Name: "items", Type: chocopytypes.ObjectT, Offset: 1}, // first of a variable-length run
		},
	})
}

// declareUserClasses allocates one ir.Class per user ast.ClassDef, in an
// order where every super-class is already allocated (sorted by
// HierarchyTree depth, ties broken by declaration order — the tree is
// already known acyclic since symtab.Generate succeeded).
func (b *Builder) declareUserClasses(prog *ast.Program) {
	var classes []*ast.ClassDef
	for _, d := range prog.Declarations {
		if c, ok := d.(*ast.ClassDef); ok {
			classes = append(classes, c)
		}
	}
	sortByDepth(classes, b.tree)

	for _, c := range classes {
		super := b.mod.ClassByName(c.SuperClass.Name)
		cls := &ir.Class{
			Name:    c.Name.Name,
			TypeTag: b.newTypeTag(),
			Super:   super,
		}
		b.mod.AddClass(cls)
		b.classByAST[c] = cls
	}
}

// sortByDepth is an insertion sort (class counts are small, and we need
// only a simple stable ordering — not worth pulling in sort for this).
func sortByDepth(classes []*ast.ClassDef, tree *chocopytypes.HierarchyTree) {
	for i := 1; i < len(classes); i++ {
		j := i
		for j > 0 && tree.Depth(classes[j-1].Name.Name) > tree.Depth(classes[j].Name.Name) {
			classes[j-1], classes[j] = classes[j], classes[j-1]
			j--
		}
	}
}

func (b *Builder) declareGlobals(prog *ast.Program) {
	for _, d := range prog.Declarations {
		v, ok := d.(*ast.VarDef)
		if !ok {
			continue
		}
		sym, ok := b.root.LookupLocal(v.Var.Identifier.Name)
		if !ok {
			continue
		}
		vt := sym.(chocopytypes.ValueType)
		b.mod.Globals = append(b.mod.Globals, &ir.Global{Name: v.Var.Identifier.Name, Type: vt})
	}
}
