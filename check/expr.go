package check

import (
	"github.com/chocopy-lang/corec/ast"
	"github.com/chocopy-lang/corec/chocopytypes"
)

// checkExpr implements the expression half of spec.md §4.4, filling in
// e's InferredType and returning it.
func (c *typeChecker) checkExpr(e ast.Expr) chocopytypes.ValueType {
	var t chocopytypes.ValueType
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		t = chocopytypes.Int
	case *ast.BoolLiteral:
		t = chocopytypes.Bool
	case *ast.StringLiteral:
		t = chocopytypes.Str
	case *ast.NoneLiteral:
		t = chocopytypes.None
	case *ast.Identifier:
		t = c.resolveIdentifier(e, false)
	case *ast.BinaryExpr:
		t = c.checkBinary(e)
	case *ast.UnaryExpr:
		t = c.checkUnary(e)
	case *ast.IfExpr:
		t = c.checkIfExpr(e)
	case *ast.IndexExpr:
		t = c.checkIndexRead(e)
	case *ast.ListExpr:
		t = c.checkListExpr(e)
	case *ast.CallExpr:
		t = c.checkCall(e)
	case *ast.MethodCallExpr:
		t = c.checkMethodCall(e)
	case *ast.AttributeExpr:
		t, _ = c.checkAttribute(e)
	default:
		t = chocopytypes.ObjectT
	}
	e.SetInferredType(t)
	return t
}

func (c *typeChecker) checkBinary(e *ast.BinaryExpr) chocopytypes.ValueType {
	left := c.checkExpr(e.Left)
	right := c.checkExpr(e.Right)

	switch e.Operator {
	case "+":
		if chocopytypes.Equal(left, chocopytypes.Int) && chocopytypes.Equal(right, chocopytypes.Int) {
			return chocopytypes.Int
		}
		if chocopytypes.Equal(left, chocopytypes.Str) && chocopytypes.Equal(right, chocopytypes.Str) {
			return chocopytypes.Str
		}
		if ll, ok1 := left.(*chocopytypes.ListValueType); ok1 {
			if rl, ok2 := right.(*chocopytypes.ListValueType); ok2 {
				elem, _ := chocopytypes.CommonSupertype(c.tree, ll.ElementType, rl.ElementType)
				return chocopytypes.NewListValueType(elem)
			}
		}
		c.errf(e.Loc(), "cannot apply '+' to types %q and %q", left, right)
		return chocopytypes.ObjectT

	case "-", "*", "//", "%":
		if !chocopytypes.Equal(left, chocopytypes.Int) || !chocopytypes.Equal(right, chocopytypes.Int) {
			c.errf(e.Loc(), "cannot apply %q to types %q and %q", e.Operator, left, right)
		}
		return chocopytypes.Int

	case "==", "!=":
		if !isPrimitive(left) || !chocopytypes.Equal(left, right) {
			c.errf(e.Loc(), "cannot compare types %q and %q with %q", left, right, e.Operator)
		}
		return chocopytypes.Bool

	case "<", "<=", ">", ">=":
		if !chocopytypes.Equal(left, chocopytypes.Int) || !chocopytypes.Equal(right, chocopytypes.Int) {
			c.errf(e.Loc(), "cannot apply %q to types %q and %q", e.Operator, left, right)
		}
		return chocopytypes.Bool

	case "and", "or":
		if !chocopytypes.Equal(left, chocopytypes.Bool) || !chocopytypes.Equal(right, chocopytypes.Bool) {
			c.errf(e.Loc(), "operands of %q must be bool, got %q and %q", e.Operator, left, right)
		}
		return chocopytypes.Bool

	case "is":
		if isPrimitive(left) || isPrimitive(right) {
			c.errf(e.Loc(), "'is' cannot be applied to int/bool/str operands")
		}
		return chocopytypes.Bool

	default:
		c.errf(e.Loc(), "unknown operator %q", e.Operator)
		return chocopytypes.ObjectT
	}
}

func isPrimitive(t chocopytypes.ValueType) bool {
	c, ok := t.(*chocopytypes.ClassValueType)
	return ok && (c.ClassName == chocopytypes.IntT || c.ClassName == chocopytypes.BoolT || c.ClassName == chocopytypes.StrT)
}

func (c *typeChecker) checkUnary(e *ast.UnaryExpr) chocopytypes.ValueType {
	operand := c.checkExpr(e.Operand)
	switch e.Operator {
	case "-":
		if !chocopytypes.Equal(operand, chocopytypes.Int) {
			c.errf(e.Loc(), "unary '-' requires int, got %q", operand)
		}
		return chocopytypes.Int
	case "not":
		if !chocopytypes.Equal(operand, chocopytypes.Bool) {
			c.errf(e.Loc(), "'not' requires bool, got %q", operand)
		}
		return chocopytypes.Bool
	default:
		c.errf(e.Loc(), "unknown unary operator %q", e.Operator)
		return chocopytypes.ObjectT
	}
}

func (c *typeChecker) checkIfExpr(e *ast.IfExpr) chocopytypes.ValueType {
	cond := c.checkExpr(e.Condition)
	if !chocopytypes.Equal(cond, chocopytypes.Bool) {
		c.errf(e.Condition.Loc(), "condition of if-expression must be bool, got %q", cond)
	}
	thenT := c.checkExpr(e.ThenExpr)
	elseT := c.checkExpr(e.ElseExpr)
	result, _ := chocopytypes.CommonSupertype(c.tree, thenT, elseT)
	return result
}

func (c *typeChecker) checkIndexRead(e *ast.IndexExpr) chocopytypes.ValueType {
	listT := c.checkExpr(e.List)
	idxT := c.checkExpr(e.Index)
	if !chocopytypes.Equal(idxT, chocopytypes.Int) {
		c.errf(e.Index.Loc(), "index must be of type int, got %q", idxT)
	}
	if chocopytypes.Equal(listT, chocopytypes.Str) {
		return chocopytypes.Str
	}
	if l, ok := listT.(*chocopytypes.ListValueType); ok {
		return l.ElementType
	}
	c.errf(e.List.Loc(), "cannot index into non-list, non-str type %q", listT)
	return chocopytypes.ObjectT
}

func (c *typeChecker) checkListExpr(e *ast.ListExpr) chocopytypes.ValueType {
	if len(e.Elements) == 0 {
		return chocopytypes.Empty
	}
	elem := c.checkExpr(e.Elements[0])
	for _, el := range e.Elements[1:] {
		t := c.checkExpr(el)
		_, elemIsList := elem.(*chocopytypes.ListValueType)
		_, tIsList := t.(*chocopytypes.ListValueType)
		if elemIsList && tIsList && !chocopytypes.Equal(elem, t) {
			elem = chocopytypes.ObjectT // lists of lists collapse unless element-wise equal
			continue
		}
		elem, _ = chocopytypes.CommonSupertype(c.tree, elem, t)
	}
	return chocopytypes.NewListValueType(elem)
}

// checkCall implements spec.md §4.4 Call: a bare name resolves first to a
// local/enclosing function binding, then to a class constructor.
func (c *typeChecker) checkCall(e *ast.CallExpr) chocopytypes.ValueType {
	name := e.Function.Name
	sym, _ := c.top().scope.Lookup(name)

	args := make([]chocopytypes.ValueType, len(e.Args))
	for i, a := range e.Args {
		args[i] = c.checkExpr(a)
	}

	switch sym := sym.(type) {
	case *chocopytypes.FunctionDefType:
		c.checkArgs(e.Loc(), sym.Params, args, "function "+name)
		return sym.ReturnType
	case *chocopytypes.ClassDefType:
		init, _ := sym.Scope.LookupLocal("__init__")
		if fd, ok := init.(*chocopytypes.FunctionDefType); ok {
			c.checkArgs(e.Loc(), fd.Params[1:], args, "constructor "+name)
		}
		return chocopytypes.NewClassValueType(name)
	default:
		c.errf(e.Loc(), "%q is not a function or class", name)
		return chocopytypes.ObjectT
	}
}

func (c *typeChecker) checkArgs(loc ast.Location, params, args []chocopytypes.ValueType, who string) {
	if len(params) != len(args) {
		c.errf(loc, "%s expects %d argument(s), got %d", who, len(params), len(args))
		return
	}
	for i, p := range params {
		if !chocopytypes.IsSubtype(c.tree, args[i], p) {
			c.errf(loc, "Expected type %q; got type %q", p, args[i])
		}
	}
}

// checkAttribute resolves obj.member, returning the member's type and
// whether it names a method (methods may only be used as the callee of a
// MethodCallExpr, spec.md §4.4 Attribute access).
func (c *typeChecker) checkAttribute(e *ast.AttributeExpr) (chocopytypes.ValueType, bool) {
	objT := c.checkExpr(e.Object)
	cls, ok := c.classOf(objT)
	if !ok {
		c.errf(e.Object.Loc(), "cannot access member %q: %q is not a class type", e.Member.Name, objT)
		return chocopytypes.ObjectT, false
	}
	sym, ok := cls.Scope.LookupLocal(e.Member.Name)
	if !ok {
		c.errf(e.Loc(), "class %q has no attribute %q", cls.Name, e.Member.Name)
		return chocopytypes.ObjectT, false
	}
	switch sym := sym.(type) {
	case chocopytypes.ValueType:
		return sym, false
	case *chocopytypes.FunctionDefType:
		c.errf(e.Loc(), "method %q may only be used as a method call, not as a first-class value", e.Member.Name)
		return chocopytypes.ObjectT, true
	default:
		return chocopytypes.ObjectT, false
	}
}

func (c *typeChecker) checkMethodCall(e *ast.MethodCallExpr) chocopytypes.ValueType {
	objT := c.checkExpr(e.Method.Object)
	cls, ok := c.classOf(objT)
	if !ok {
		c.errf(e.Method.Object.Loc(), "cannot call method %q: %q is not a class type", e.Method.Member.Name, objT)
		return chocopytypes.ObjectT
	}
	sym, ok := cls.Scope.LookupLocal(e.Method.Member.Name)
	if !ok {
		c.errf(e.Loc(), "class %q has no method %q", cls.Name, e.Method.Member.Name)
		return chocopytypes.ObjectT
	}
	fd, ok := sym.(*chocopytypes.FunctionDefType)
	if !ok {
		c.errf(e.Loc(), "%q is not a method", e.Method.Member.Name)
		return chocopytypes.ObjectT
	}

	e.Method.SetInferredType(fd.ReturnType)

	args := make([]chocopytypes.ValueType, len(e.Args))
	for i, a := range e.Args {
		args[i] = c.checkExpr(a)
	}
	c.checkArgs(e.Loc(), fd.Params[1:], args, "method "+fd.Name)
	return fd.ReturnType
}

func (c *typeChecker) classOf(t chocopytypes.ValueType) (*chocopytypes.ClassDefType, bool) {
	cv, ok := t.(*chocopytypes.ClassValueType)
	if !ok {
		return nil, false
	}
	cls, ok := c.classes[cv.ClassName]
	return cls, ok
}
