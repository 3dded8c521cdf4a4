package ir

// This file collects small Instruction constructors, playing the role
// go/ssa/emit.go's emitXxx helpers play for *ssa.Function: one
// constructor per opcode shape so ir/build's lowering code reads as
// "emit an add" rather than hand-filling Instruction literals everywhere.

func NewRet(v Value) *Instruction {
	var ops []Value
	if v != nil {
		ops = []Value{v}
	}
	return &Instruction{Op: OpRet, Operands: ops}
}

func NewBr(cond Value, then, els BlockID) *Instruction {
	return &Instruction{Op: OpBr, Cond: cond, Then: then, Else: els}
}

func NewBinOp(op Op, typ ValueType, l, r Value) *Instruction {
	return &Instruction{Op: op, Type: typ, Operands: []Value{l, r}}
}

func NewICmp(pred Predicate, l, r Value, boolType ValueType) *Instruction {
	return &Instruction{Op: OpICmp, Pred: pred, Type: boolType, Operands: []Value{l, r}}
}

func NewAlloca(typ ValueType) *Instruction {
	return &Instruction{Op: OpAlloca, Type: typ}
}

func NewLoad(addr Value, typ ValueType) *Instruction {
	return &Instruction{Op: OpLoad, Type: typ, Operands: []Value{addr}}
}

func NewStore(addr, val Value) *Instruction {
	return &Instruction{Op: OpStore, Operands: []Value{addr, val}}
}

func NewGEP(base Value, fieldOffset int, typ ValueType) *Instruction {
	return &Instruction{Op: OpGEP, Type: typ, Operands: []Value{base}, FieldOffset: fieldOffset}
}

func NewCallDirect(callee FuncID, args []Value, typ ValueType) *Instruction {
	return &Instruction{Op: OpCall, CallKind: CallDirect, Callee: callee, Args: args, Type: typ}
}

func NewCallVirtual(receiver Value, slot int, args []Value, typ ValueType) *Instruction {
	return &Instruction{
		Op: OpCall, CallKind: CallVirtual, MethodSlot: slot,
		Operands: []Value{receiver}, Args: args, Type: typ,
	}
}

func NewCallExternal(symbol string, args []Value, typ ValueType) *Instruction {
	return &Instruction{Op: OpCall, CallKind: CallExternal, Symbol: symbol, Args: args, Type: typ}
}

func NewPHI(typ ValueType, incoming []PHIIncoming) *Instruction {
	return &Instruction{Op: OpPHI, Type: typ, Incoming: incoming}
}

func NewAsm(text string) *Instruction {
	return &Instruction{Op: OpAsm, AsmText: text}
}

func NewZExt(v Value, typ ValueType) *Instruction {
	return &Instruction{Op: OpZExt, Type: typ, Operands: []Value{v}}
}

func NewBitCast(v Value, typ ValueType) *Instruction {
	return &Instruction{Op: OpBitCast, Type: typ, Operands: []Value{v}}
}

func NewPtrToInt(v Value, typ ValueType) *Instruction {
	return &Instruction{Op: OpPtrToInt, Type: typ, Operands: []Value{v}}
}

func NewTrunc(v Value, typ ValueType) *Instruction {
	return &Instruction{Op: OpTrunc, Type: typ, Operands: []Value{v}}
}
