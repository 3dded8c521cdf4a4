package chocopytypes_test

import (
	"testing"

	"github.com/chocopy-lang/corec/chocopytypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchyBootstrap(t *testing.T) {
	tree := chocopytypes.NewHierarchyTree()
	assert.True(t, tree.Contains(chocopytypes.Object))
	assert.True(t, tree.Contains(chocopytypes.IntT))
	assert.Equal(t, 0, tree.Depth(chocopytypes.Object))
	assert.Equal(t, 1, tree.Depth(chocopytypes.IntT))
	assert.Equal(t, 1, tree.Depth(chocopytypes.BoolT))
	assert.Equal(t, 1, tree.Depth(chocopytypes.StrT))
}

func TestCommonAncestor(t *testing.T) {
	tree := chocopytypes.NewHierarchyTree()
	tree.AddClass("Animal", chocopytypes.Object)
	tree.AddClass("Dog", "Animal")
	tree.AddClass("Cat", "Animal")
	tree.AddClass("Puppy", "Dog")

	assert.Equal(t, "Animal", tree.CommonAncestor("Dog", "Cat"))
	assert.Equal(t, "Animal", tree.CommonAncestor("Cat", "Dog"), "must be symmetric")
	assert.Equal(t, "Dog", tree.CommonAncestor("Puppy", "Dog"))
	assert.Equal(t, "Animal", tree.CommonAncestor("Puppy", "Cat"))
}

func TestIsSuperclass(t *testing.T) {
	tree := chocopytypes.NewHierarchyTree()
	tree.AddClass("Animal", chocopytypes.Object)
	tree.AddClass("Dog", "Animal")

	assert.True(t, tree.IsSuperclass("Dog", "Animal"))
	assert.True(t, tree.IsSuperclass("Dog", chocopytypes.Object))
	assert.True(t, tree.IsSuperclass("Dog", "Dog"), "reflexive")
	assert.False(t, tree.IsSuperclass("Animal", "Dog"))
}

func TestAddClassRequiresRegisteredSuper(t *testing.T) {
	tree := chocopytypes.NewHierarchyTree()
	require.Panics(t, func() { tree.AddClass("Dog", "Animal") })
}

func TestIsSubtypeSpecialCases(t *testing.T) {
	tree := chocopytypes.NewHierarchyTree()
	tree.AddClass("Animal", chocopytypes.Object)

	assert.False(t, chocopytypes.IsSubtype(tree, chocopytypes.Bool, chocopytypes.Int), "bool is not a subtype of int")
	assert.False(t, chocopytypes.IsSubtype(tree, chocopytypes.Int, chocopytypes.Bool))

	assert.True(t, chocopytypes.IsSubtype(tree, chocopytypes.None, chocopytypes.NewClassValueType("Animal")))
	assert.False(t, chocopytypes.IsSubtype(tree, chocopytypes.None, chocopytypes.Int), "None is not assignable to int")

	empty := chocopytypes.Empty
	listInt := chocopytypes.NewListValueType(chocopytypes.Int)
	assert.True(t, chocopytypes.IsSubtype(tree, empty, listInt))

	listNone := chocopytypes.NewListValueType(chocopytypes.None)
	listAnimal := chocopytypes.NewListValueType(chocopytypes.NewClassValueType("Animal"))
	assert.True(t, chocopytypes.IsSubtype(tree, listNone, listAnimal))

	listNoneOfInt := chocopytypes.NewListValueType(chocopytypes.None)
	assert.False(t, chocopytypes.IsSubtype(tree, listNoneOfInt, listInt), "[<None>] is not <: [int]")
}

func TestCommonSupertypeLists(t *testing.T) {
	tree := chocopytypes.NewHierarchyTree()
	tree.AddClass("Animal", chocopytypes.Object)
	tree.AddClass("Dog", "Animal")
	tree.AddClass("Cat", "Animal")

	listDog := chocopytypes.NewListValueType(chocopytypes.NewClassValueType("Dog"))
	listCat := chocopytypes.NewListValueType(chocopytypes.NewClassValueType("Cat"))

	got, ok := chocopytypes.CommonSupertype(tree, listDog, listCat)
	require.True(t, ok)
	assert.Equal(t, "[Animal]", got.String())

	// int and str share no ancestor but object, the top of the hierarchy.
	got, ok = chocopytypes.CommonSupertype(tree, chocopytypes.Int, chocopytypes.Str)
	require.True(t, ok)
	assert.Equal(t, chocopytypes.Object, got.String())
}
