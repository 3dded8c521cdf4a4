package ast

import "github.com/chocopy-lang/corec/chocopytypes"

// Expr is any expression node. InferredType starts nil and is filled in by
// check (§4.4); ir/build reads it but never writes it.
type Expr interface {
	Node
	exprNode()
	// InferredType returns the type check recorded for this expression,
	// or nil before type checking has run.
	InferredType() chocopytypes.ValueType
	SetInferredType(chocopytypes.ValueType)
}

// exprBase is embedded by every expression node.
type exprBase struct {
	base
	Type chocopytypes.ValueType `json:"inferredType,omitempty"`
}

func (e *exprBase) exprNode() {}
func (e *exprBase) InferredType() chocopytypes.ValueType { return e.Type }
func (e *exprBase) SetInferredType(t chocopytypes.ValueType) { e.Type = t }

// Identifier is a bare name reference.
type Identifier struct {
	exprBase
	Name string `json:"name"`
}

func (i *Identifier) Kind() string { return "Identifier" }

// IntegerLiteral is an int literal.
type IntegerLiteral struct {
	exprBase
	Value int32 `json:"value"`
}

func (l *IntegerLiteral) Kind() string { return "IntegerLiteral" }

// BoolLiteral is True/False.
type BoolLiteral struct {
	exprBase
	Value bool `json:"value"`
}

func (l *BoolLiteral) Kind() string { return "BooleanLiteral" }

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	exprBase
	Value string `json:"value"`
}

func (l *StringLiteral) Kind() string { return "StringLiteral" }

// NoneLiteral is the literal "None".
type NoneLiteral struct {
	exprBase
}

func (l *NoneLiteral) Kind() string { return "NoneLiteral" }

// BinaryExpr is "left op right".
type BinaryExpr struct {
	exprBase
	Left     Expr   `json:"left"`
	Operator string `json:"operator"`
	Right    Expr   `json:"right"`
}

func (b *BinaryExpr) Kind() string { return "BinaryExpr" }

// UnaryExpr is "op operand" for "-" and "not".
type UnaryExpr struct {
	exprBase
	Operator string `json:"operator"`
	Operand  Expr   `json:"operand"`
}

func (u *UnaryExpr) Kind() string { return "UnaryExpr" }

// IfExpr is the ternary "thenExpr if condition else elseExpr".
type IfExpr struct {
	exprBase
	Condition Expr `json:"condition"`
	ThenExpr  Expr `json:"thenExpr"`
	ElseExpr  Expr `json:"elseExpr"`
}

func (i *IfExpr) Kind() string { return "IfExpr" }

// IndexExpr is "list[index]" / "str[index]".
type IndexExpr struct {
	exprBase
	List  Expr `json:"list"`
	Index Expr `json:"index"`
}

func (i *IndexExpr) Kind() string { return "IndexExpr" }

// ListExpr is a "[e1, e2, ...]" literal.
type ListExpr struct {
	exprBase
	Elements []Expr `json:"elements"`
}

func (l *ListExpr) Kind() string { return "ListExpr" }

// CallExpr is "function(args)" or "ClassName(args)" (constructor call).
type CallExpr struct {
	exprBase
	Function *Identifier `json:"function"`
	Args     []Expr      `json:"args"`
}

func (c *CallExpr) Kind() string { return "CallExpr" }

// MethodCallExpr is "receiver.method(args)".
type MethodCallExpr struct {
	exprBase
	Method *AttributeExpr `json:"method"`
	Args   []Expr         `json:"args"`
}

func (m *MethodCallExpr) Kind() string { return "MethodCallExpr" }

// AttributeExpr is "object.member" — an attribute read, or the callee half
// of a MethodCallExpr.
type AttributeExpr struct {
	exprBase
	Object       Expr        `json:"object"`
	Member       *Identifier `json:"member"`
}

func (a *AttributeExpr) Kind() string { return "AttributeExpr" }
