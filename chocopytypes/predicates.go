package chocopytypes

// This file implements the sub-typing predicates of spec.md §3 over
// ValueType, lifting HierarchyTree's class-name relation to lists, None,
// and Empty. It plays the role the teacher's go/types/predicates.go plays
// for *types.Type: small, composable "is X" / "X <: Y" helpers.

// IsSubtype reports whether sub <: super under tree, implementing spec.md
// §3 (iv)-(vi):
//
//   - bool is never a subtype of int (and vice versa is also false);
//     int/bool/str are final.
//   - <Empty> <: [T] for every T.
//   - [<None>] <: [T] only when None <: T.
//   - <None> <: T for every T except int/bool/str.
//   - class <: class is the reflexive-transitive closure of extension.
func IsSubtype(tree *HierarchyTree, sub, super ValueType) bool {
	switch sub := sub.(type) {
	case *ListValueType:
		switch super := super.(type) {
		case *ListValueType:
			if IsListOfNone(sub) {
				return isAssignableNone(tree, super.ElementType)
			}
			return Equal(sub.ElementType, super.ElementType)
		case *ClassValueType:
			return super.ClassName == Object
		}
		return false

	case *ClassValueType:
		switch super := super.(type) {
		case *ListValueType:
			// <Empty> is a ClassValueType in this representation but acts
			// as the universal empty-list subtype.
			return sub.ClassName == EmptyT
		case *ClassValueType:
			if sub.ClassName == NoneT {
				return isAssignableNone(tree, super)
			}
			if sub.ClassName == EmptyT {
				return super.ClassName == Object
			}
			if !tree.Contains(sub.ClassName) || !tree.Contains(super.ClassName) {
				return sub.ClassName == super.ClassName
			}
			return tree.IsSuperclass(sub.ClassName, super.ClassName)
		}
	}
	return false
}

// isAssignableNone reports whether <None> <: t: every class type except
// int/bool/str, and no list type unless the caller has already unwrapped
// one level (None does not flow into [T] generically, only [<None>] does,
// handled separately in IsSubtype).
func isAssignableNone(_ *HierarchyTree, t ValueType) bool {
	c, ok := t.(*ClassValueType)
	if !ok {
		return false // t is a list type; None alone is not a list
	}
	switch c.ClassName {
	case IntT, BoolT, StrT:
		return false
	default:
		return true
	}
}

// CommonSupertype returns the least type both a and b are assignable to,
// used for list-literal element inference, "+"-on-lists, and if-expression
// result types (spec.md §4.4). Because object tops every ChocoPy type
// including int/bool/str (invariant (vi)), this never fails: ok is always
// true. Two list types yield a list of their elements' common supertype;
// the List-literal rule that collapses unequal lists of lists to object
// (spec.md §4.4) is applied by check's checkListExpr, not here.
func CommonSupertype(tree *HierarchyTree, a, b ValueType) (ValueType, bool) {
	if Equal(a, b) {
		return a, true
	}
	if IsSubtype(tree, a, b) {
		return b, true
	}
	if IsSubtype(tree, b, a) {
		return a, true
	}

	al, aIsList := a.(*ListValueType)
	bl, bIsList := b.(*ListValueType)
	if aIsList && bIsList {
		elem, _ := CommonSupertype(tree, al.ElementType, bl.ElementType)
		return NewListValueType(elem), true
	}

	ac, aIsClass := a.(*ClassValueType)
	bc, bIsClass := b.(*ClassValueType)
	if aIsClass && bIsClass && tree.Contains(ac.ClassName) && tree.Contains(bc.ClassName) {
		return NewClassValueType(tree.CommonAncestor(ac.ClassName, bc.ClassName)), true
	}

	// Mismatched shapes (a list vs. a scalar, or either operand naming an
	// unknown class already flagged elsewhere): object is always a valid
	// common supertype.
	return ObjectT, true
}
