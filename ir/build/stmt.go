package build

import (
	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/chocopy-lang/corec/ir"
)

func (f *fb) lowerStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		f.lowerExpr(s.Expression)
	case *ast.AssignStmt:
		f.lowerAssign(s)
	case *ast.IfStmt:
		f.lowerIfStmt(s)
	case *ast.WhileStmt:
		f.lowerWhile(s)
	case *ast.ForStmt:
		f.lowerFor(s)
	case *ast.ReturnStmt:
		f.lowerReturn(s)
	}
}

func (f *fb) lowerAssign(s *ast.AssignStmt) {
	val := f.lowerExpr(s.Value)
	for _, target := range s.Targets {
		f.store(target, val)
	}
}

// store writes val to the address named by target, whatever shape that
// target takes (identifier, attribute, or index expression).
func (f *fb) store(target ast.Expr, val ir.Value) {
	switch t := target.(type) {
	case *ast.Identifier:
		addr := f.addressOf(t.Name)
		val = f.box(val, t.InferredType())
		f.cur.Emit(ir.NewStore(addr, val))
	case *ast.AttributeExpr:
		obj := f.lowerExpr(t.Object)
		f.emitNullCheck(obj)
		cls := f.classOf(t.Object.InferredType())
		idx := attrOffset(cls, t.Member.Name)
		gep := ir.NewGEP(obj, idx, t.InferredType())
		f.cur.Emit(gep)
		val = f.box(val, t.InferredType())
		f.cur.Emit(ir.NewStore(gep.Ref(), val))
	case *ast.IndexExpr:
		list := f.lowerExpr(t.List)
		f.emitNullCheck(list)
		idx := f.lowerExpr(t.Index)
		f.emitBoundsCheck(list, idx)
		slot := ir.NewGEP(list, 1, t.InferredType())
		slot.Operands = append(slot.Operands, idx)
		f.cur.Emit(slot)
		val = f.box(val, t.InferredType())
		f.cur.Emit(ir.NewStore(slot.Ref(), val))
	}
}

func (f *fb) lowerIfStmt(s *ast.IfStmt) {
	cond := f.lowerExpr(s.Condition)
	thenBlk := f.nextBlock("if.then")
	elseBlk := f.nextBlock("if.else")
	joinBlk := f.nextBlock("if.end")

	f.cur.Emit(ir.NewBr(cond, thenBlk.ID, elseBlk.ID))
	f.cur.AddEdge(thenBlk)
	f.cur.AddEdge(elseBlk)

	f.cur = thenBlk
	for _, st := range s.ThenBody {
		f.lowerStmt(st)
	}
	f.branchToIfOpen(joinBlk)

	f.cur = elseBlk
	for _, st := range s.ElseBody {
		f.lowerStmt(st)
	}
	f.branchToIfOpen(joinBlk)

	f.cur = joinBlk
}

// branchToIfOpen terminates the current block with an unconditional
// branch to dest, unless the block already ended in a return (e.g. both
// branches of an if/else returned, spec.md §4.4's is_return rule).
func (f *fb) branchToIfOpen(dest *ir.BasicBlock) {
	if len(f.cur.Instructions) > 0 {
		if op := f.cur.Instructions[len(f.cur.Instructions)-1].Op; op == ir.OpRet || op == ir.OpBr {
			return
		}
	}
	f.cur.Emit(ir.NewBr(nil, dest.ID, dest.ID))
	f.cur.AddEdge(dest)
}

func (f *fb) lowerWhile(s *ast.WhileStmt) {
	condBlk := f.nextBlock("while.cond")
	bodyBlk := f.nextBlock("while.body")
	endBlk := f.nextBlock("while.end")

	f.branchToIfOpen(condBlk)

	f.cur = condBlk
	cond := f.lowerExpr(s.Condition)
	f.cur.Emit(ir.NewBr(cond, bodyBlk.ID, endBlk.ID))
	f.cur.AddEdge(bodyBlk)
	f.cur.AddEdge(endBlk)

	f.cur = bodyBlk
	for _, st := range s.Body {
		f.lowerStmt(st)
	}
	f.cur.Emit(ir.NewBr(nil, condBlk.ID, condBlk.ID))
	f.cur.AddEdge(condBlk)

	f.cur = endBlk
}

// lowerFor desugars the for-loop into an index-driven while (spec.md
// §4.4's str/list iteration rule): the condition compares the index with
// the iterable's length word, and the body reads each element with a
// direct GEP and load, without a separate bounds-check block.
func (f *fb) lowerFor(s *ast.ForStmt) {
	iterable := f.lowerExpr(s.Iterable)
	f.emitNullCheck(iterable)
	idxAddr := f.alloca(chocopytypes.Int)
	f.cur.Emit(ir.NewStore(ir.Ref{ID: idxAddr}, ir.Constant{Kind: ir.ConstInt, Int: 0, Typ: chocopytypes.Int}))

	condBlk := f.nextBlock("for.cond")
	bodyBlk := f.nextBlock("for.body")
	endBlk := f.nextBlock("for.end")

	f.branchToIfOpen(condBlk)

	f.cur = condBlk
	idx := f.cur.Emit(ir.NewLoad(ir.Ref{ID: idxAddr}, chocopytypes.Int))
	length := f.cur.Emit(ir.NewGEP(iterable, 0, chocopytypes.Int))
	lengthVal := f.cur.Emit(ir.NewLoad(length.Ref(), chocopytypes.Int))
	cmp := f.cur.Emit(ir.NewICmp(ir.PredLT, idx.Ref(), lengthVal.Ref(), chocopytypes.Bool))
	f.cur.Emit(ir.NewBr(cmp.Ref(), bodyBlk.ID, endBlk.ID))
	f.cur.AddEdge(bodyBlk)
	f.cur.AddEdge(endBlk)

	f.cur = bodyBlk
	elemType := s.Identifier.InferredType()
	elem := f.cur.Emit(ir.NewGEP(iterable, 1, elemType))
	elem.Operands = append(elem.Operands, idx.Ref())
	elemVal := f.cur.Emit(ir.NewLoad(elem.Ref(), elemType))
	f.cur.Emit(ir.NewStore(f.addressOf(s.Identifier.Name), elemVal.Ref()))

	for _, st := range s.Body {
		f.lowerStmt(st)
	}
	nextIdx := f.cur.Emit(ir.NewBinOp(ir.OpAdd, chocopytypes.Int, idx.Ref(), ir.Constant{Kind: ir.ConstInt, Int: 1, Typ: chocopytypes.Int}))
	f.cur.Emit(ir.NewStore(ir.Ref{ID: idxAddr}, nextIdx.Ref()))
	f.cur.Emit(ir.NewBr(nil, condBlk.ID, condBlk.ID))
	f.cur.AddEdge(condBlk)

	f.cur = endBlk
}

func (f *fb) lowerReturn(s *ast.ReturnStmt) {
	var val ir.Value
	if s.Value != nil {
		val = f.lowerExpr(s.Value)
		val = f.box(val, f.fn.ReturnType)
	}
	f.cur.Emit(ir.NewRet(val))
}

// emitNullCheck emits a call to the None runtime error if ptr is the null
// prototype-object pointer, guarding every attribute/method/index/for-loop
// dereference (spec.md §4.5: "insert null-check" ahead of any load through
// a potentially-null receiver), the same branch-to-error-block shape as
// emitBoundsCheck's OOB guard.
func (f *fb) emitNullCheck(ptr ir.Value) {
	isNone := f.cur.Emit(ir.NewICmp(ir.PredEQ, ptr, ir.Constant{Kind: ir.ConstNone, Typ: chocopytypes.ObjectT}, chocopytypes.Bool))

	okBlk := f.nextBlock("null.ok")
	errBlk := f.nextBlock("null.none")
	f.cur.Emit(ir.NewBr(isNone.Ref(), errBlk.ID, okBlk.ID))
	f.cur.AddEdge(okBlk)
	f.cur.AddEdge(errBlk)

	f.cur = errBlk
	f.cur.Emit(ir.NewCallExternal(ErrorNone, nil, chocopytypes.None))
	f.cur.Emit(ir.NewRet(nil))

	f.cur = okBlk
}

// emitBoundsCheck emits a call to the OOB runtime error if idx is outside
// [0, list.length) (spec.md §4.4/§4.5's guard-block rule for indexing).
func (f *fb) emitBoundsCheck(list, idx ir.Value) {
	lenSlot := f.cur.Emit(ir.NewGEP(list, 0, chocopytypes.Int))
	length := f.cur.Emit(ir.NewLoad(lenSlot.Ref(), chocopytypes.Int))
	lowOK := f.cur.Emit(ir.NewICmp(ir.PredGE, idx, ir.Constant{Kind: ir.ConstInt, Typ: chocopytypes.Int}, chocopytypes.Bool))
	highOK := f.cur.Emit(ir.NewICmp(ir.PredLT, idx, length.Ref(), chocopytypes.Bool))
	inBounds := f.cur.Emit(ir.NewBinOp(ir.OpAnd, chocopytypes.Bool, lowOK.Ref(), highOK.Ref()))

	okBlk := f.nextBlock("idx.ok")
	errBlk := f.nextBlock("idx.oob")
	f.cur.Emit(ir.NewBr(inBounds.Ref(), okBlk.ID, errBlk.ID))
	f.cur.AddEdge(okBlk)
	f.cur.AddEdge(errBlk)

	f.cur = errBlk
	f.cur.Emit(ir.NewCallExternal(ErrorOOB, nil, chocopytypes.None))
	f.cur.Emit(ir.NewRet(nil))

	f.cur = okBlk
}

func attrOffset(cls *ir.Class, name string) int {
	for _, a := range cls.Attrs {
		if a.Name == name {
			return a.Offset
		}
	}
	return -1
}
