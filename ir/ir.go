// Package ir implements the IR data model of spec.md §4.5/§9: a typed
// SSA-like module of classes, dispatch tables, and functions lowered from
// package check's fully-typed AST by package build.
//
// Values are identified by small integer IDs scoped to their owning
// Function/Module rather than linked by pointer, mirroring spec.md §9's
// "cyclic ownership" design note (an Instruction referencing a BasicBlock
// that contains it, and a PHI referencing Instructions in predecessor
// blocks, is naturally cyclic as pointers but acyclic as arena indices).
// This plays the same role golang.org/x/tools/go/ssa's Value/Instruction
// interface pair does for *ssa.Function, but keyed by ID instead of by
// pointer identity.
package ir

import (
	"fmt"

	"github.com/chocopy-lang/corec/chocopytypes"
)

// ValueType is the semantic type carried by an IR Value or slot. The IR
// does not introduce its own type algebra distinct from chocopytypes:
// boxing/unboxing is a build-time lowering policy (spec.md §4.5), not a
// different type system, so every attribute, parameter, and Value simply
// carries its chocopytypes.ValueType through unchanged.
type ValueType = chocopytypes.ValueType

// ValueID identifies a Value within its owning Function's arena.
type ValueID int

// BlockID identifies a BasicBlock within its owning Function.
type BlockID int

// FuncID identifies a Function within its owning Module.
type FuncID int

// Module is the root of one compiled ChocoPy program (spec.md §4.5):
// every class (user-defined and synthesized closure/list class), every
// global variable, and every function (top-level, method, and nested),
// plus a BuildID that tags the output emitted for this compilation.
type Module struct {
	BuildID   string
	Classes   []*Class
	Globals   []*Global
	Functions []*Function

	classIndex map[string]int
	funcIndex  map[FuncID]int
}

// NewModule creates an empty Module tagged with buildID.
func NewModule(buildID string) *Module {
	return &Module{
		BuildID:    buildID,
		classIndex: map[string]int{},
		funcIndex:  map[FuncID]int{},
	}
}

// AddClass appends cls and indexes it by name for ClassByName lookups
// during dispatch-table construction.
func (m *Module) AddClass(cls *Class) {
	m.classIndex[cls.Name] = len(m.Classes)
	m.Classes = append(m.Classes, cls)
}

// ClassByName returns the class named name, or nil if none exists.
func (m *Module) ClassByName(name string) *Class {
	i, ok := m.classIndex[name]
	if !ok {
		return nil
	}
	return m.Classes[i]
}

// AddFunction appends fn, assigning it the next FuncID.
func (m *Module) AddFunction(fn *Function) FuncID {
	id := FuncID(len(m.Functions))
	fn.ID = id
	m.funcIndex[id] = len(m.Functions)
	m.Functions = append(m.Functions, fn)
	return id
}

// Function looks up a function by ID.
func (m *Module) Function(id FuncID) *Function {
	i, ok := m.funcIndex[id]
	if !ok {
		return nil
	}
	return m.Functions[i]
}

// Global is a module-level variable slot.
type Global struct {
	Name string
	Type ValueType
}

// AttrInfo describes one attribute slot in a Class's object layout: its
// declared name, semantic type, and word offset from the object header
// (spec.md §4.5's prototype-object layout).
type AttrInfo struct {
	Name   string
	Type   ValueType
	Offset int // in machine words, 0 is the first attribute after the header
}

// Class is a prototype object layout plus dispatch table: every
// user-declared class, the four built-ins (object/int/bool/str), the
// single synthesized ".list" class, and every synthesized closure-record class
// (spec.md §4.5's "anon" classes, one per FuncDef with a non-empty
// lambda-params set).
type Class struct {
	Name     string
	TypeTag  int // stable small integer used by runtime type checks/error messages
	Super    *Class
	Attrs    []AttrInfo
	Methods  []*Function // dispatch table, stable slot index across override (spec.md §4.5)
	IsAnon   bool         // a synthesized closure-record class, not user-declared
}

// HeaderWords is the fixed object-header size (type tag + dispatch-table
// pointer) every instance carries before its own attributes, matching
// original_source's Class.hpp object prologue.
const HeaderWords = 2

// SizeWords returns this class's total instance size in machine words:
// the fixed header plus every attribute slot (including inherited ones,
// already flattened into Attrs by build's layout pass). Derived rather
// than stored, so Attrs remains the single source of truth.
func (c *Class) SizeWords() int {
	return HeaderWords + len(c.Attrs)
}

// MethodSlot returns the dispatch-table index of the method named name,
// or -1 if the class has no such method.
func (c *Class) MethodSlot(name string) int {
	for i, fn := range c.Methods {
		if fn.Name == name {
			return i
		}
	}
	return -1
}

// Function is one compiled function, method, or closure body: a name, a
// parameter/return type signature, and the basic blocks implementing it
// (spec.md §4.5). Params[0] is the receiver for methods and closure
// thunks, matching ir/build's uniform calling convention.
type Function struct {
	ID         FuncID
	Name       string // "$f", "$METHOD$C.m", "$g.f" per spec.md §4.5's naming scheme
	Params     []Param
	ReturnType ValueType
	Blocks     []*BasicBlock
	IsMethod   bool
	// ClosureOf is non-nil when this Function is the body of a closure:
	// the synthesized Class holding its captured free variables.
	ClosureOf *Class

	nextValue ValueID
}

// Param is one formal parameter.
type Param struct {
	Name string
	Type ValueType
}

// NewValueID allocates the next unique ValueID scoped to this Function.
func (f *Function) NewValueID() ValueID {
	id := f.nextValue
	f.nextValue++
	return id
}

// AddBlock appends a new, empty BasicBlock owned by f and returns it.
func (f *Function) AddBlock(label string) *BasicBlock {
	b := &BasicBlock{ID: BlockID(len(f.Blocks)), Label: label, parent: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Block looks up a basic block owned by f by ID.
func (f *Function) Block(id BlockID) *BasicBlock {
	if int(id) < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return f.Blocks[id]
}

// BasicBlock is a straight-line sequence of Instructions ending in exactly
// one control-flow instruction (Br or Ret), with explicit predecessor and
// successor edges — the same shape as golang.org/x/tools/go/ssa's
// BasicBlock, keyed by BlockID rather than pointer.
type BasicBlock struct {
	ID           BlockID
	Label        string
	Instructions []*Instruction
	Preds, Succs []BlockID

	parent *Function
}

// Parent returns the Function owning b.
func (b *BasicBlock) Parent() *Function { return b.parent }

// Emit appends instr to b, assigning it a fresh ValueID if it produces a
// result (spec.md §4.5).
func (b *BasicBlock) Emit(instr *Instruction) *Instruction {
	if instr.HasResult() {
		instr.Result = b.parent.NewValueID()
	}
	instr.Block = b.ID
	b.Instructions = append(b.Instructions, instr)
	return instr
}

// AddEdge records b as predecessor of to and to as successor of b, used
// when build terminates b with a Br.
func (b *BasicBlock) AddEdge(to *BasicBlock) {
	b.Succs = append(b.Succs, to.ID)
	to.Preds = append(to.Preds, b.ID)
}

func (id ValueID) String() string { return fmt.Sprintf("%%t%d", id) }
func (id BlockID) String() string { return fmt.Sprintf("bb%d", id) }
