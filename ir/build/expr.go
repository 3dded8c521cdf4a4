package build

import (
	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/chocopy-lang/corec/diag"
	"github.com/chocopy-lang/corec/ir"
)

func (f *fb) lowerExpr(e ast.Expr) ir.Value {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		return ir.Constant{Kind: ir.ConstInt, Int: e.Value, Typ: chocopytypes.Int}
	case *ast.BoolLiteral:
		return ir.Constant{Kind: ir.ConstBool, Bool: e.Value, Typ: chocopytypes.Bool}
	case *ast.StringLiteral:
		return ir.Constant{Kind: ir.ConstStr, Str: e.Value, Typ: chocopytypes.Str}
	case *ast.NoneLiteral:
		return ir.Constant{Kind: ir.ConstNone, Typ: chocopytypes.None}
	case *ast.Identifier:
		addr := f.addressOf(e.Name)
		load := f.cur.Emit(ir.NewLoad(addr, e.InferredType()))
		return load.Ref()
	case *ast.BinaryExpr:
		return f.lowerBinary(e)
	case *ast.UnaryExpr:
		return f.lowerUnary(e)
	case *ast.IfExpr:
		return f.lowerIfExpr(e)
	case *ast.IndexExpr:
		return f.lowerIndexRead(e)
	case *ast.ListExpr:
		return f.lowerListExpr(e)
	case *ast.CallExpr:
		return f.lowerCall(e)
	case *ast.MethodCallExpr:
		return f.lowerMethodCall(e)
	case *ast.AttributeExpr:
		return f.lowerAttributeRead(e)
	default:
		return ir.Constant{Kind: ir.ConstNone, Typ: chocopytypes.None}
	}
}

// addressOf returns the storage address bound to name, resolving local
// allocas, closure-captured addresses, and globals uniformly.
func (f *fb) addressOf(name string) ir.Value {
	if b, ok := f.bindings[name]; ok {
		switch b.kind {
		case bindLocal:
			return ir.Ref{ID: b.addr, Typ: b.typ}
		case bindCapture:
			return f.loadCaptureAddr(b)
		}
	}
	return ir.GlobalRef{Name: name, Typ: f.declaredGlobalType(name)}
}

// box materializes a heap-boxed copy of val when it flows into an
// object-typed slot but is carried unboxed (spec.md §4.5's boxing
// policy): every int/bool is unboxed by default, boxed only at the
// boundary where the static target type widens to object.
func (f *fb) box(val ir.Value, target chocopytypes.ValueType) ir.Value {
	cv, ok := target.(*chocopytypes.ClassValueType)
	if !ok || cv.ClassName != chocopytypes.Object {
		return val
	}
	srcCV, ok := val.Type().(*chocopytypes.ClassValueType)
	if !ok {
		return val
	}
	switch srcCV.ClassName {
	case chocopytypes.IntT:
		call := ir.NewCallExternal(RuntimeBoxInt, []ir.Value{val}, chocopytypes.ObjectT)
		f.cur.Emit(call)
		return call.Ref()
	case chocopytypes.BoolT:
		call := ir.NewCallExternal(RuntimeBoxBool, []ir.Value{val}, chocopytypes.ObjectT)
		f.cur.Emit(call)
		return call.Ref()
	default:
		return val
	}
}

func (f *fb) classOf(t chocopytypes.ValueType) *ir.Class {
	cv, ok := t.(*chocopytypes.ClassValueType)
	if !ok {
		return nil
	}
	return f.b.mod.ClassByName(cv.ClassName)
}

func (f *fb) lowerBinary(e *ast.BinaryExpr) ir.Value {
	left := f.lowerExpr(e.Left)
	right := f.lowerExpr(e.Right)

	switch e.Operator {
	case "+":
		if chocopytypes.Equal(e.Left.InferredType(), chocopytypes.Str) {
			call := ir.NewCallExternal(RuntimeConcatStr, []ir.Value{left, right}, chocopytypes.Str)
			f.cur.Emit(call)
			return call.Ref()
		}
		if e.Left.InferredType().IsListType() {
			call := ir.NewCallExternal(RuntimeConcatList, []ir.Value{left, right}, e.InferredType())
			f.cur.Emit(call)
			return call.Ref()
		}
		return f.emitArith(ir.OpAdd, left, right)

	case "-":
		return f.emitArith(ir.OpSub, left, right)
	case "*":
		return f.emitArith(ir.OpMul, left, right)
	case "//":
		return f.emitDivGuarded(ir.OpDiv, left, right)
	case "%":
		return f.emitDivGuarded(ir.OpRem, left, right)

	case "==", "!=":
		pred := ir.PredEQ
		if e.Operator == "!=" {
			pred = ir.PredNE
		}
		cmp := ir.NewICmp(pred, left, right, chocopytypes.Bool)
		f.cur.Emit(cmp)
		return cmp.Ref()

	case "<":
		return f.emitCmp(ir.PredLT, left, right)
	case "<=":
		return f.emitCmp(ir.PredLE, left, right)
	case ">":
		return f.emitCmp(ir.PredGT, left, right)
	case ">=":
		return f.emitCmp(ir.PredGE, left, right)

	case "and":
		return f.lowerShortCircuit(e, true)
	case "or":
		return f.lowerShortCircuit(e, false)

	case "is":
		cmp := ir.NewICmp(ir.PredEQ, left, right, chocopytypes.Bool)
		f.cur.Emit(cmp)
		return cmp.Ref()

	default:
		return ir.Constant{Kind: ir.ConstNone, Typ: chocopytypes.None}
	}
}

func (f *fb) emitArith(op ir.Op, l, r ir.Value) ir.Value {
	instr := ir.NewBinOp(op, chocopytypes.Int, l, r)
	f.cur.Emit(instr)
	return instr.Ref()
}

func (f *fb) emitCmp(pred ir.Predicate, l, r ir.Value) ir.Value {
	instr := ir.NewICmp(pred, l, r, chocopytypes.Bool)
	f.cur.Emit(instr)
	return instr.Ref()
}

// emitDivGuarded emits a division-by-zero check ahead of an OpDiv/OpRem,
// calling the runtime's Div error on a zero divisor (spec.md §4.5's guard
// block rule, the same shape as emitBoundsCheck's OOB guard).
func (f *fb) emitDivGuarded(op ir.Op, l, r ir.Value) ir.Value {
	isZero := ir.NewICmp(ir.PredEQ, r, ir.Constant{Kind: ir.ConstInt, Typ: chocopytypes.Int}, chocopytypes.Bool)
	f.cur.Emit(isZero)

	okBlk := f.nextBlock("div.ok")
	errBlk := f.nextBlock("div.zero")
	f.cur.Emit(ir.NewBr(isZero.Ref(), errBlk.ID, okBlk.ID))
	f.cur.AddEdge(okBlk)
	f.cur.AddEdge(errBlk)

	f.cur = errBlk
	f.cur.Emit(ir.NewCallExternal(ErrorDiv, nil, chocopytypes.None))
	f.cur.Emit(ir.NewRet(nil))

	f.cur = okBlk
	instr := ir.NewBinOp(op, chocopytypes.Int, l, r)
	f.cur.Emit(instr)
	return instr.Ref()
}

// lowerShortCircuit implements "and"/"or" with a branch-and-merge instead
// of evaluating both operands unconditionally, the same shape
// go/ssa/builder.go's logicalBinop gives &&/|| — a phi over the two
// reachable paths rather than a boolean AND/OR instruction.
func (f *fb) lowerShortCircuit(e *ast.BinaryExpr, isAnd bool) ir.Value {
	left := f.lowerExpr(e.Left)
	leftEnd := f.cur

	rhsBlk := f.nextBlock("shortcircuit.rhs")
	joinBlk := f.nextBlock("shortcircuit.end")
	if isAnd {
		f.cur.Emit(ir.NewBr(left, rhsBlk.ID, joinBlk.ID))
	} else {
		f.cur.Emit(ir.NewBr(left, joinBlk.ID, rhsBlk.ID))
	}
	f.cur.AddEdge(rhsBlk)
	f.cur.AddEdge(joinBlk)

	f.cur = rhsBlk
	right := f.lowerExpr(e.Right)
	rightEnd := f.cur
	f.cur.Emit(ir.NewBr(nil, joinBlk.ID, joinBlk.ID))
	f.cur.AddEdge(joinBlk)

	f.cur = joinBlk
	phi := ir.NewPHI(chocopytypes.Bool, []ir.PHIIncoming{
		{Value: left, From: leftEnd.ID},
		{Value: right, From: rightEnd.ID},
	})
	f.cur.Emit(phi)
	return phi.Ref()
}

func (f *fb) lowerUnary(e *ast.UnaryExpr) ir.Value {
	operand := f.lowerExpr(e.Operand)
	switch e.Operator {
	case "-":
		instr := &ir.Instruction{Op: ir.OpNeg, Type: chocopytypes.Int, Operands: []ir.Value{operand}}
		f.cur.Emit(instr)
		return instr.Ref()
	case "not":
		instr := &ir.Instruction{Op: ir.OpNot, Type: chocopytypes.Bool, Operands: []ir.Value{operand}}
		f.cur.Emit(instr)
		return instr.Ref()
	default:
		return ir.Constant{Kind: ir.ConstNone, Typ: chocopytypes.None}
	}
}

func (f *fb) lowerIfExpr(e *ast.IfExpr) ir.Value {
	cond := f.lowerExpr(e.Condition)

	thenBlk := f.nextBlock("ifexpr.then")
	elseBlk := f.nextBlock("ifexpr.else")
	joinBlk := f.nextBlock("ifexpr.end")
	f.cur.Emit(ir.NewBr(cond, thenBlk.ID, elseBlk.ID))
	f.cur.AddEdge(thenBlk)
	f.cur.AddEdge(elseBlk)

	f.cur = thenBlk
	thenVal := f.box(f.lowerExpr(e.ThenExpr), e.InferredType())
	thenEnd := f.cur
	f.cur.Emit(ir.NewBr(nil, joinBlk.ID, joinBlk.ID))
	f.cur.AddEdge(joinBlk)

	f.cur = elseBlk
	elseVal := f.box(f.lowerExpr(e.ElseExpr), e.InferredType())
	elseEnd := f.cur
	f.cur.Emit(ir.NewBr(nil, joinBlk.ID, joinBlk.ID))
	f.cur.AddEdge(joinBlk)

	f.cur = joinBlk
	phi := ir.NewPHI(e.InferredType(), []ir.PHIIncoming{
		{Value: thenVal, From: thenEnd.ID},
		{Value: elseVal, From: elseEnd.ID},
	})
	f.cur.Emit(phi)
	return phi.Ref()
}

func (f *fb) lowerIndexRead(e *ast.IndexExpr) ir.Value {
	list := f.lowerExpr(e.List)
	f.emitNullCheck(list)
	idx := f.lowerExpr(e.Index)
	f.emitBoundsCheck(list, idx)

	gep := ir.NewGEP(list, 1, e.InferredType())
	gep.Operands = append(gep.Operands, idx)
	f.cur.Emit(gep)
	load := ir.NewLoad(gep.Ref(), e.InferredType())
	f.cur.Emit(load)
	return load.Ref()
}

func (f *fb) lowerListExpr(e *ast.ListExpr) ir.Value {
	lengthConst := ir.Constant{Kind: ir.ConstInt, Int: int32(len(e.Elements)), Typ: chocopytypes.Int}
	alloc := ir.NewCallExternal(RuntimeAllocList, []ir.Value{lengthConst}, e.InferredType())
	f.cur.Emit(alloc)
	obj := alloc.Ref()

	elemType := chocopytypes.ObjectT
	if l, ok := e.InferredType().(*chocopytypes.ListValueType); ok {
		elemType = l.ElementType
	}

	for i, el := range e.Elements {
		val := f.box(f.lowerExpr(el), elemType)
		gep := ir.NewGEP(obj, 1, elemType)
		gep.Operands = append(gep.Operands, ir.Constant{Kind: ir.ConstInt, Int: int32(i), Typ: chocopytypes.Int})
		f.cur.Emit(gep)
		f.cur.Emit(ir.NewStore(gep.Ref(), val))
	}
	return obj
}

// lowerCall resolves a bare-name call to the three global built-ins first
// (print/len/input, seeded by symtab.seedBuiltins directly into the root
// scope rather than as an ast.FuncDef — spec.md §1's `len(object) -> int`,
// `print(object) -> <None>`, `input() -> str` are realized as external
// runtime calls, never as an ir.Function of their own), then to a nested/
// top-level function binding, then to a class constructor (mirroring
// check.checkCall's own resolution order, spec.md §4.4).
func (f *fb) lowerCall(e *ast.CallExpr) ir.Value {
	name := e.Function.Name

	switch name {
	case "print":
		arg := f.box(f.lowerExpr(e.Args[0]), chocopytypes.ObjectT)
		call := ir.NewCallExternal(RuntimePrint, []ir.Value{arg}, chocopytypes.None)
		f.cur.Emit(call)
		return call.Ref()
	case "len":
		arg := f.box(f.lowerExpr(e.Args[0]), chocopytypes.ObjectT)
		call := ir.NewCallExternal(RuntimeLen, []ir.Value{arg}, chocopytypes.Int)
		f.cur.Emit(call)
		return call.Ref()
	case "input":
		call := ir.NewCallExternal(RuntimeInput, nil, chocopytypes.Str)
		f.cur.Emit(call)
		return call.Ref()
	}

	if c, ok := f.callables[name]; ok {
		return f.emitDirectCall(c, e.Args, e.InferredType())
	}
	if id, ok := f.b.topFuncs[name]; ok {
		return f.emitDirectCall(callable{id: id}, e.Args, e.InferredType())
	}

	cls := f.b.mod.ClassByName(name)
	if cls == nil {
		panic(diag.ICE("lowerCall: %q resolves to no builtin, callable, or class (check should have rejected this)", name))
	}
	alloc := ir.NewCallExternal(RuntimeAllocObject, nil, e.InferredType())
	f.cur.Emit(alloc)
	obj := alloc.Ref()

	if slot := cls.MethodSlot("__init__"); slot >= 0 {
		initFn := cls.Methods[slot]
		args := f.lowerArgs(e.Args, initFn.Params[1:])
		call := ir.NewCallDirect(initFn.ID, append([]ir.Value{obj}, args...), chocopytypes.None)
		f.cur.Emit(call)
	}
	return obj
}

func (f *fb) emitDirectCall(c callable, astArgs []ast.Expr, retType chocopytypes.ValueType) ir.Value {
	fn := f.b.mod.Function(c.id)
	paramOffset := 0
	if c.receiver != nil {
		paramOffset = 1
	}
	args := f.lowerArgs(astArgs, fn.Params[paramOffset:])
	if c.receiver != nil {
		args = append([]ir.Value{c.receiver}, args...)
	}
	call := ir.NewCallDirect(c.id, args, retType)
	f.cur.Emit(call)
	return call.Ref()
}

func (f *fb) lowerMethodCall(e *ast.MethodCallExpr) ir.Value {
	obj := f.lowerExpr(e.Method.Object)
	f.emitNullCheck(obj)
	cls := f.classOf(e.Method.Object.InferredType())
	slot := cls.MethodSlot(e.Method.Member.Name)
	if slot < 0 {
		panic(diag.ICE("lowerMethodCall: class %q has no dispatch slot for %q (check should have rejected this)", cls.Name, e.Method.Member.Name))
	}
	fn := cls.Methods[slot]

	args := f.lowerArgs(e.Args, fn.Params[1:])
	call := ir.NewCallVirtual(obj, slot, args, e.InferredType())
	f.cur.Emit(call)
	return call.Ref()
}

func (f *fb) lowerArgs(astArgs []ast.Expr, params []ir.Param) []ir.Value {
	args := make([]ir.Value, len(astArgs))
	for i, a := range astArgs {
		v := f.lowerExpr(a)
		if i < len(params) {
			v = f.box(v, params[i].Type)
		}
		args[i] = v
	}
	return args
}

func (f *fb) lowerAttributeRead(e *ast.AttributeExpr) ir.Value {
	obj := f.lowerExpr(e.Object)
	f.emitNullCheck(obj)
	cls := f.classOf(e.Object.InferredType())
	idx := attrOffset(cls, e.Member.Name)

	gep := ir.NewGEP(obj, idx, e.InferredType())
	f.cur.Emit(gep)
	load := ir.NewLoad(gep.Ref(), e.InferredType())
	f.cur.Emit(load)
	return load.Ref()
}
