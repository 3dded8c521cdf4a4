package build

import (
	"fmt"

	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/chocopy-lang/corec/ir"
)

// bindingKind distinguishes how a name is addressed within a function
// body during lowering.
type bindingKind int

const (
	bindLocal   bindingKind = iota // an alloca owned by this function
	bindCapture                    // a slot in the closure receiver (Params[0])
	bindGlobal                     // a module-level Global
)

type binding struct {
	kind     bindingKind
	addr     ir.ValueID // bindLocal: the alloca's result
	capIndex int        // bindCapture: attr offset in the closure receiver's class
	typ      chocopytypes.ValueType
}

// callable is what a bare function-valued name resolves to at a call
// site: always a statically known FuncID (ChocoPy has no first-class
// function values passed between variables), plus an optional receiver
// value for closures.
type callable struct {
	id       ir.FuncID
	receiver ir.Value // nil for a plain function/top-level call
}

// fb ("function builder") lowers one ast.FuncDef's body into rec.irFn,
// playing the role go/ssa/builder.go's per-Function builder state plays.
type fb struct {
	b        *Builder
	rec      *methodRecord
	fn       *ir.Function
	cur      *ir.BasicBlock
	bindings     map[string]binding
	callables    map[string]callable
	blockN       int
	receiverAddr ir.ValueID
}

func (b *Builder) lowerFunction(rec *methodRecord) {
	f := &fb{
		b:         b,
		rec:       rec,
		fn:        rec.irFn,
		bindings:  map[string]binding{},
		callables: map[string]callable{},
	}
	f.cur = f.fn.AddBlock("entry")
	f.bindParams()
	f.bindLocalsAndNested()

	for _, s := range rec.fn.Statements {
		f.lowerStmt(s)
	}
	f.ensureTerminated()
}

// lowerMain synthesizes the program's entry function from the top-level
// var initializers and statement list, ending with the literal exit
// syscall (spec.md §4.5; the concrete asm text is an opaque payload for
// the external RISC-V emitter, itself out of scope per spec.md's
// Non-goals).
func (b *Builder) lowerMain(prog *ast.Program) {
	irFn := &ir.Function{Name: "$main", ReturnType: chocopytypes.None}
	b.mod.AddFunction(irFn)

	f := &fb{b: b, rec: &methodRecord{irFn: irFn, scope: b.root}, fn: irFn, bindings: map[string]binding{}, callables: map[string]callable{}}
	f.cur = f.fn.AddBlock("entry")

	for _, d := range prog.Declarations {
		v, ok := d.(*ast.VarDef)
		if !ok || v.Literal == nil {
			continue
		}
		val := f.lowerExpr(v.Literal)
		f.cur.Emit(ir.NewStore(ir.GlobalRef{Name: v.Var.Identifier.Name, Typ: f.declaredGlobalType(v.Var.Identifier.Name)}, val))
	}
	for _, s := range prog.Statements {
		f.lowerStmt(s)
	}
	f.cur.Emit(ir.NewAsm("li a7, 93\nli a0, 0\necall"))
	f.cur.Emit(ir.NewRet(nil))
}

func (f *fb) declaredGlobalType(name string) chocopytypes.ValueType {
	sym, _ := f.b.root.LookupLocal(name)
	vt, _ := sym.(chocopytypes.ValueType)
	return vt
}

func (f *fb) nextBlock(label string) *ir.BasicBlock {
	f.blockN++
	return f.fn.AddBlock(fmt.Sprintf("%s%d", label, f.blockN))
}

// bindParams allocas every declared parameter (including self and, for a
// closure function, the synthesized receiver at index 0) and stores its
// incoming value, giving every parameter addressable storage uniformly
// with local variables (the same "decompose to allocas" strategy
// go/ssa's Function.addParamObj/emitted prologue uses before any later
// lifting pass).
func (f *fb) bindParams() {
	closureCls := f.b.closureClass[f.rec.fn]
	offset := 0
	if closureCls != nil {
		offset = 1 // Params[0] is the receiver, not a source-level name
		receiverType := f.fn.Params[0].Type
		addr := f.alloca(receiverType)
		f.cur.Emit(ir.NewStore(ir.Ref{ID: addr}, ir.ParamRef{Index: 0, Typ: receiverType}))
		f.receiverAddr = addr

		for i, name := range f.b.freeVars[f.rec.fn] {
			attr := closureCls.Attrs[i]
			f.bindings[name] = binding{kind: bindCapture, capIndex: i, typ: attr.Type}
		}
	}

	if f.rec.fn == nil {
		return
	}
	for i, p := range f.rec.fn.Params {
		irParam := f.fn.Params[i+offset]
		addr := f.alloca(irParam.Type)
		f.cur.Emit(ir.NewStore(ir.Ref{ID: addr}, ir.ParamRef{Index: i + offset, Typ: irParam.Type}))
		f.bindings[p.Identifier.Name] = binding{kind: bindLocal, addr: addr, typ: irParam.Type}
	}
}

func (f *fb) alloca(typ chocopytypes.ValueType) ir.ValueID {
	instr := ir.NewAlloca(typ)
	f.cur.Emit(instr)
	return instr.Result
}

// bindLocalsAndNested allocas every VarDef declared directly in this
// function, storing its initializer, and constructs a closure record
// (when the nested function captures anything) or registers a direct
// callable (when it doesn't) for every nested FuncDef — spec.md §4.5's
// "a def statement materializes its callee immediately" rule.
func (f *fb) bindLocalsAndNested() {
	if f.rec.fn == nil {
		return
	}
	for _, d := range f.rec.fn.Declarations {
		switch d := d.(type) {
		case *ast.VarDef:
			typ := f.declaredLocalType(d.Var.Identifier.Name)
			addr := f.alloca(typ)
			f.bindings[d.Var.Identifier.Name] = binding{kind: bindLocal, addr: addr, typ: typ}
			if d.Literal != nil {
				val := f.lowerExpr(d.Literal)
				f.cur.Emit(ir.NewStore(ir.Ref{ID: addr}, val))
			}
		case *ast.FuncDef:
			innerRec := f.b.recordByFn[d]
			names := f.b.freeVars[d]
			if len(names) == 0 {
				f.callables[d.Name.Name] = callable{id: innerRec.irFn.ID}
				continue
			}
			cls := f.b.closureClass[d]
			obj := f.buildClosureRecord(cls, names)
			f.callables[d.Name.Name] = callable{id: innerRec.irFn.ID, receiver: obj}
		}
	}
}

func (f *fb) declaredLocalType(name string) chocopytypes.ValueType {
	sym, _ := f.rec.scope.LookupLocal(name)
	vt, _ := sym.(chocopytypes.ValueType)
	return vt
}

// buildClosureRecord allocates an instance of cls and, for each captured
// name, stores the *address* of this function's own alloca for that name
// into the corresponding attribute slot — the captured variable remains
// addressable through the closure for as long as this frame is live
// (spec.md §4.5; ChocoPy does not allow a closure to outlive its creating
// call, so this never dangles).
func (f *fb) buildClosureRecord(cls *ir.Class, names []string) ir.Value {
	alloc := ir.NewCallExternal(RuntimeAllocObject, nil, chocopytypes.NewClassValueType(cls.Name))
	f.cur.Emit(alloc)
	obj := alloc.Ref()

	for i, name := range names {
		bind, ok := f.bindings[name]
		if !ok {
			continue // captured a capture of our own; look up via this frame's receiver instead
		}
		var addrVal ir.Value
		switch bind.kind {
		case bindLocal:
			addrVal = ir.Ref{ID: bind.addr, Typ: bind.typ}
		case bindCapture:
			addrVal = f.loadCaptureAddr(bind)
		}
		slot := ir.NewGEP(obj, i, bind.typ)
		f.cur.Emit(slot)
		f.cur.Emit(ir.NewStore(slot.Ref(), addrVal))
	}
	return obj
}

// loadCaptureAddr returns the address a bindCapture binding refers to,
// for re-forwarding it into a deeper nested closure's own record.
func (f *fb) loadCaptureAddr(bind binding) ir.Value {
	receiver := ir.Ref{ID: f.receiverAddr}
	recv := f.cur.Emit(ir.NewLoad(receiver, f.fn.Params[0].Type))
	slot := ir.NewGEP(recv.Ref(), bind.capIndex, bind.typ)
	f.cur.Emit(slot)
	addr := f.cur.Emit(ir.NewLoad(slot.Ref(), bind.typ))
	return addr.Ref()
}

// ensureTerminated closes off any block still reached at the end of a
// function body. spec.md §4.5's Returns rule is unconditional on
// reachability, not gated on the declared return type: a function whose
// every explicit return is nested inside an exhaustive if/else (is_return
// = true, so check never flags a missing return) still leaves its join
// block open, since lowerIfStmt's branchToIfOpen only skips emitting a
// branch when the predecessor block itself already ended in Ret/Br — the
// *successor* join block is still a distinct, unterminated BasicBlock
// reached by zero or more of those paths falling through. Every such block
// gets a synthetic trailing return, typed None when the function declares
// none, otherwise a null value of its own declared return type (never
// actually executed at runtime, since every real path already returned).
func (f *fb) ensureTerminated() {
	if len(f.cur.Instructions) > 0 {
		last := f.cur.Instructions[len(f.cur.Instructions)-1]
		if last.Op == ir.OpRet || last.Op == ir.OpBr {
			return
		}
	}
	if chocopytypes.IsNone(f.fn.ReturnType) {
		f.cur.Emit(ir.NewRet(nil))
		return
	}
	f.cur.Emit(ir.NewRet(ir.Constant{Kind: ir.ConstNone, Typ: f.fn.ReturnType}))
}
