package ir_test

import (
	"testing"

	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/chocopy-lang/corec/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassSizeWordsIncludesHeaderAndAttrs(t *testing.T) {
	cls := &ir.Class{
		Name: "Animal",
		Attrs: []ir.AttrInfo{
			{Name: "name", Type: chocopytypes.Str, Offset: 0},
			{Name: "age", Type: chocopytypes.Int, Offset: 1},
		},
	}
	assert.Equal(t, ir.HeaderWords+2, cls.SizeWords())
}

func TestMethodSlotLookup(t *testing.T) {
	cls := &ir.Class{
		Name: "Animal",
		Methods: []*ir.Function{
			{Name: "speak"},
			{Name: "move"},
		},
	}
	assert.Equal(t, 0, cls.MethodSlot("speak"))
	assert.Equal(t, 1, cls.MethodSlot("move"))
	assert.Equal(t, -1, cls.MethodSlot("fly"))
}

func TestModuleAddClassAndFunction(t *testing.T) {
	m := ir.NewModule("build-1")
	cls := &ir.Class{Name: "Animal"}
	m.AddClass(cls)
	require.Equal(t, cls, m.ClassByName("Animal"))
	assert.Nil(t, m.ClassByName("Missing"))

	fn := &ir.Function{Name: "$f"}
	id := m.AddFunction(fn)
	assert.Equal(t, fn, m.Function(id))
	assert.Equal(t, id, fn.ID)
}

func TestBasicBlockEmitAssignsValueIDsOnlyWhenResultProduced(t *testing.T) {
	fn := &ir.Function{Name: "$f"}
	b := fn.AddBlock("entry")

	add := ir.NewBinOp(ir.OpAdd, chocopytypes.Int, ir.Constant{Kind: ir.ConstInt, Int: 1, Typ: chocopytypes.Int}, ir.Constant{Kind: ir.ConstInt, Int: 2, Typ: chocopytypes.Int})
	b.Emit(add)
	ret := ir.NewRet(add.Ref())
	b.Emit(ret)

	assert.Equal(t, ir.ValueID(0), add.Result)
	assert.Equal(t, ir.ValueID(0), ret.Result, "Ret has no result, Result stays at its zero value")
	assert.False(t, ret.HasResult())
	assert.True(t, add.HasResult())
	assert.Len(t, b.Instructions, 2)
}

func TestBasicBlockAddEdgeRecordsPredsAndSuccs(t *testing.T) {
	fn := &ir.Function{Name: "$f"}
	entry := fn.AddBlock("entry")
	then := fn.AddBlock("then")

	entry.AddEdge(then)

	assert.Equal(t, []ir.BlockID{then.ID}, entry.Succs)
	assert.Equal(t, []ir.BlockID{entry.ID}, then.Preds)
}

func TestFunctionNewValueIDIncrements(t *testing.T) {
	fn := &ir.Function{}
	a := fn.NewValueID()
	b := fn.NewValueID()
	assert.Equal(t, ir.ValueID(0), a)
	assert.Equal(t, ir.ValueID(1), b)
}
