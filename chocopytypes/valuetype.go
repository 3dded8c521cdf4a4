// Package chocopytypes defines the semantic type universe that symtab
// populates and check judges expressions against (spec.md §3). It is
// deliberately independent of package ast: a ValueType describes the
// *meaning* of a type annotation, not its syntax.
//
// The name avoids shadowing the standard library's go/types, the same way
// the teacher package (golang.org/x/tools/go/types) avoids colliding with
// it by living at a different import path.
package chocopytypes

import "fmt"

// Distinguished atom names. These four plus any user class name are the
// only legal ClassValueType.ClassName values; <None> and <Empty> are
// special markers that never appear as a class declaration.
const (
	Object = "object"
	IntT   = "int"
	BoolT  = "bool"
	StrT   = "str"
	NoneT  = "<None>"
	EmptyT = "<Empty>"
)

// ValueType is the type of a variable, parameter, attribute, or
// expression: either a ClassValueType or a ListValueType (spec.md §3).
type ValueType interface {
	fmt.Stringer
	// IsListType reports whether this is a ListValueType.
	IsListType() bool
	valueType()
}

// ClassValueType names a class, or one of the special atoms None/Empty.
type ClassValueType struct {
	ClassName string
}

func NewClassValueType(name string) *ClassValueType { return &ClassValueType{ClassName: name} }

func (c *ClassValueType) String() string    { return c.ClassName }
func (c *ClassValueType) IsListType() bool  { return false }
func (c *ClassValueType) valueType()        {}

// ListValueType is "[Element]".
type ListValueType struct {
	ElementType ValueType
}

func NewListValueType(elem ValueType) *ListValueType { return &ListValueType{ElementType: elem} }

func (l *ListValueType) String() string   { return "[" + l.ElementType.String() + "]" }
func (l *ListValueType) IsListType() bool { return true }
func (l *ListValueType) valueType()       {}

// Well-known singletons, safe to share since ValueType values are
// immutable once constructed.
var (
	Int    = NewClassValueType(IntT)
	Bool   = NewClassValueType(BoolT)
	Str    = NewClassValueType(StrT)
	None   = NewClassValueType(NoneT)
	Empty  = NewClassValueType(EmptyT)
	ObjectT = NewClassValueType(Object)
)

// IsNone reports whether t is the <None> atom.
func IsNone(t ValueType) bool {
	c, ok := t.(*ClassValueType)
	return ok && c.ClassName == NoneT
}

// IsListOfNone reports whether t is exactly [<None>].
func IsListOfNone(t ValueType) bool {
	l, ok := t.(*ListValueType)
	return ok && IsNone(l.ElementType)
}

// Equal reports structural equality of two ValueTypes.
func Equal(a, b ValueType) bool {
	switch a := a.(type) {
	case *ClassValueType:
		b, ok := b.(*ClassValueType)
		return ok && a.ClassName == b.ClassName
	case *ListValueType:
		b, ok := b.(*ListValueType)
		return ok && Equal(a.ElementType, b.ElementType)
	default:
		return false
	}
}
