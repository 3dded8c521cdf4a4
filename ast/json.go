package ast

import (
	"encoding/json"
	"fmt"
)

// This file decodes the parser's JSON AST dump (SPEC_FULL.md §0's "AST
// input" contract) into the typed Node tree the rest of the compiler
// walks. The parser itself is out of scope (spec.md's Non-goals list it as
// an external collaborator); what's implemented here is the inverse of its
// documented output shape, not the grammar. encoding/json can decode every
// concrete struct directly via its own field tags, but Decl/Stmt/Expr/
// TypeAnnotation are interfaces, so each needs a "kind"-dispatching
// intermediate the way golang.org/x/tools/go/packages' JSON driver
// protocol peeks a discriminator field out of a json.RawMessage before
// picking a concrete Go type to decode into — there is no third-party
// polymorphic-JSON library anywhere in the retrieval pack, so this is
// deliberately plain encoding/json.

type kinded struct {
	Kind string `json:"kind"`
}

func (p *Program) UnmarshalJSON(data []byte) error {
	var raw struct {
		Location Location        `json:"location"`
		Decls    []json.RawMessage `json:"declarations"`
		Stmts    []json.RawMessage `json:"statements"`
		Errors   []SyntaxError   `json:"errors,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding Program: %w", err)
	}
	p.Location = raw.Location
	p.Errors = raw.Errors

	for _, d := range raw.Decls {
		decl, err := decodeDecl(d)
		if err != nil {
			return err
		}
		p.Declarations = append(p.Declarations, decl)
	}
	for _, s := range raw.Stmts {
		stmt, err := decodeStmt(s)
		if err != nil {
			return err
		}
		p.Statements = append(p.Statements, stmt)
	}
	return nil
}

func decodeDecl(raw json.RawMessage) (Decl, error) {
	var k kinded
	if err := json.Unmarshal(raw, &k); err != nil {
		return nil, fmt.Errorf("decoding Decl: %w", err)
	}
	switch k.Kind {
	case "VarDef":
		var v struct {
			base
			Var     *TypedVar       `json:"var"`
			Literal json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out := &VarDef{base: v.base, Var: v.Var}
		if len(v.Literal) > 0 && string(v.Literal) != "null" {
			lit, err := decodeExpr(v.Literal)
			if err != nil {
				return nil, err
			}
			out.Literal = lit
		}
		return out, nil
	case "FuncDef":
		var f struct {
			base
			Name         *Identifier       `json:"name"`
			Params       []*TypedVar       `json:"params"`
			ReturnType   json.RawMessage   `json:"returnType"`
			Declarations []json.RawMessage `json:"declarations"`
			Statements   []json.RawMessage `json:"statements"`
		}
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, err
		}
		out := &FuncDef{base: f.base, Name: f.Name, Params: f.Params}
		if len(f.ReturnType) > 0 && string(f.ReturnType) != "null" {
			rt, err := decodeTypeAnnotation(f.ReturnType)
			if err != nil {
				return nil, err
			}
			out.ReturnType = rt
		}
		for _, d := range f.Declarations {
			inner, err := decodeDecl(d)
			if err != nil {
				return nil, err
			}
			out.Declarations = append(out.Declarations, inner)
		}
		for _, s := range f.Statements {
			inner, err := decodeStmt(s)
			if err != nil {
				return nil, err
			}
			out.Statements = append(out.Statements, inner)
		}
		return out, nil
	case "ClassDef":
		var c struct {
			base
			Name         *Identifier       `json:"name"`
			SuperClass   *Identifier       `json:"superClass"`
			Declarations []json.RawMessage `json:"declarations"`
		}
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		out := &ClassDef{base: c.base, Name: c.Name, SuperClass: c.SuperClass}
		for _, d := range c.Declarations {
			inner, err := decodeDecl(d)
			if err != nil {
				return nil, err
			}
			out.Declarations = append(out.Declarations, inner)
		}
		return out, nil
	case "GlobalDecl":
		var g GlobalDecl
		if err := json.Unmarshal(raw, &g); err != nil {
			return nil, err
		}
		return &g, nil
	case "NonLocalDecl":
		var n NonLocalDecl
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("decodeDecl: unknown kind %q", k.Kind)
	}
}

func decodeStmt(raw json.RawMessage) (Stmt, error) {
	var k kinded
	if err := json.Unmarshal(raw, &k); err != nil {
		return nil, fmt.Errorf("decoding Stmt: %w", err)
	}
	switch k.Kind {
	case "ExprStmt":
		var e struct {
			stmtBase
			Expression json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(e.Expression)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{stmtBase: e.stmtBase, Expression: expr}, nil
	case "AssignStmt":
		var a struct {
			stmtBase
			Targets []json.RawMessage `json:"targets"`
			Value   json.RawMessage   `json:"value"`
		}
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		out := &AssignStmt{stmtBase: a.stmtBase}
		for _, t := range a.Targets {
			target, err := decodeExpr(t)
			if err != nil {
				return nil, err
			}
			out.Targets = append(out.Targets, target)
		}
		val, err := decodeExpr(a.Value)
		if err != nil {
			return nil, err
		}
		out.Value = val
		return out, nil
	case "IfStmt":
		var i struct {
			stmtBase
			Condition json.RawMessage   `json:"condition"`
			ThenBody  []json.RawMessage `json:"thenBody"`
			ElseBody  []json.RawMessage `json:"elseBody"`
		}
		if err := json.Unmarshal(raw, &i); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(i.Condition)
		if err != nil {
			return nil, err
		}
		out := &IfStmt{stmtBase: i.stmtBase, Condition: cond}
		if out.ThenBody, err = decodeStmts(i.ThenBody); err != nil {
			return nil, err
		}
		if out.ElseBody, err = decodeStmts(i.ElseBody); err != nil {
			return nil, err
		}
		return out, nil
	case "WhileStmt":
		var w struct {
			stmtBase
			Condition json.RawMessage   `json:"condition"`
			Body      []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Condition)
		if err != nil {
			return nil, err
		}
		out := &WhileStmt{stmtBase: w.stmtBase, Condition: cond}
		if out.Body, err = decodeStmts(w.Body); err != nil {
			return nil, err
		}
		return out, nil
	case "ForStmt":
		var f struct {
			stmtBase
			Identifier *Identifier       `json:"identifier"`
			Iterable   json.RawMessage   `json:"iterable"`
			Body       []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, err
		}
		iter, err := decodeExpr(f.Iterable)
		if err != nil {
			return nil, err
		}
		out := &ForStmt{stmtBase: f.stmtBase, Identifier: f.Identifier, Iterable: iter}
		if out.Body, err = decodeStmts(f.Body); err != nil {
			return nil, err
		}
		return out, nil
	case "ReturnStmt":
		var r struct {
			stmtBase
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		out := &ReturnStmt{stmtBase: r.stmtBase}
		if len(r.Value) > 0 && string(r.Value) != "null" {
			val, err := decodeExpr(r.Value)
			if err != nil {
				return nil, err
			}
			out.Value = val
		}
		return out, nil
	default:
		return nil, fmt.Errorf("decodeStmt: unknown kind %q", k.Kind)
	}
}

func decodeStmts(raws []json.RawMessage) ([]Stmt, error) {
	out := make([]Stmt, 0, len(raws))
	for _, r := range raws {
		s, err := decodeStmt(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeExpr(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var k kinded
	if err := json.Unmarshal(raw, &k); err != nil {
		return nil, fmt.Errorf("decoding Expr: %w", err)
	}
	switch k.Kind {
	case "Identifier":
		var i Identifier
		if err := json.Unmarshal(raw, &i); err != nil {
			return nil, err
		}
		return &i, nil
	case "IntegerLiteral":
		var l IntegerLiteral
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, err
		}
		return &l, nil
	case "BooleanLiteral":
		var l BoolLiteral
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, err
		}
		return &l, nil
	case "StringLiteral":
		var l StringLiteral
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, err
		}
		return &l, nil
	case "NoneLiteral":
		var l NoneLiteral
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, err
		}
		return &l, nil
	case "BinaryExpr":
		var b struct {
			exprBase
			Left     json.RawMessage `json:"left"`
			Operator string          `json:"operator"`
			Right    json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		left, err := decodeExpr(b.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(b.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{exprBase: b.exprBase, Left: left, Operator: b.Operator, Right: right}, nil
	case "UnaryExpr":
		var u struct {
			exprBase
			Operator string          `json:"operator"`
			Operand  json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, err
		}
		operand, err := decodeExpr(u.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{exprBase: u.exprBase, Operator: u.Operator, Operand: operand}, nil
	case "IfExpr":
		var i struct {
			exprBase
			Condition json.RawMessage `json:"condition"`
			ThenExpr  json.RawMessage `json:"thenExpr"`
			ElseExpr  json.RawMessage `json:"elseExpr"`
		}
		if err := json.Unmarshal(raw, &i); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(i.Condition)
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(i.ThenExpr)
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(i.ElseExpr)
		if err != nil {
			return nil, err
		}
		return &IfExpr{exprBase: i.exprBase, Condition: cond, ThenExpr: then, ElseExpr: els}, nil
	case "IndexExpr":
		var idx struct {
			exprBase
			List  json.RawMessage `json:"list"`
			Index json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(raw, &idx); err != nil {
			return nil, err
		}
		list, err := decodeExpr(idx.List)
		if err != nil {
			return nil, err
		}
		index, err := decodeExpr(idx.Index)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{exprBase: idx.exprBase, List: list, Index: index}, nil
	case "ListExpr":
		var l struct {
			exprBase
			Elements []json.RawMessage `json:"elements"`
		}
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, err
		}
		out := &ListExpr{exprBase: l.exprBase}
		for _, e := range l.Elements {
			el, err := decodeExpr(e)
			if err != nil {
				return nil, err
			}
			out.Elements = append(out.Elements, el)
		}
		return out, nil
	case "CallExpr":
		var c struct {
			exprBase
			Function *Identifier       `json:"function"`
			Args     []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		out := &CallExpr{exprBase: c.exprBase, Function: c.Function}
		for _, a := range c.Args {
			arg, err := decodeExpr(a)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, arg)
		}
		return out, nil
	case "MethodCallExpr":
		var m struct {
			exprBase
			Method json.RawMessage   `json:"method"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		methodExpr, err := decodeExpr(m.Method)
		if err != nil {
			return nil, err
		}
		attr, ok := methodExpr.(*AttributeExpr)
		if !ok {
			return nil, fmt.Errorf("decodeExpr: MethodCallExpr.method is %T, want AttributeExpr", methodExpr)
		}
		out := &MethodCallExpr{exprBase: m.exprBase, Method: attr}
		for _, a := range m.Args {
			arg, err := decodeExpr(a)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, arg)
		}
		return out, nil
	case "AttributeExpr":
		var a struct {
			exprBase
			Object json.RawMessage `json:"object"`
			Member *Identifier     `json:"member"`
		}
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(a.Object)
		if err != nil {
			return nil, err
		}
		return &AttributeExpr{exprBase: a.exprBase, Object: obj, Member: a.Member}, nil
	default:
		return nil, fmt.Errorf("decodeExpr: unknown kind %q", k.Kind)
	}
}

func decodeTypeAnnotation(raw json.RawMessage) (TypeAnnotation, error) {
	var k kinded
	if err := json.Unmarshal(raw, &k); err != nil {
		return nil, fmt.Errorf("decoding TypeAnnotation: %w", err)
	}
	switch k.Kind {
	case "ClassType":
		var c ClassType
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case "ListType":
		var l struct {
			base
			ElementType json.RawMessage `json:"elementType"`
		}
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, err
		}
		elem, err := decodeTypeAnnotation(l.ElementType)
		if err != nil {
			return nil, err
		}
		return &ListType{base: l.base, ElementType: elem}, nil
	default:
		return nil, fmt.Errorf("decodeTypeAnnotation: unknown kind %q", k.Kind)
	}
}

// UnmarshalJSON lets TypedVar's Type field (a TypeAnnotation interface)
// decode through the same dispatch as a standalone field.
func (t *TypedVar) UnmarshalJSON(data []byte) error {
	var raw struct {
		base
		Identifier *Identifier     `json:"identifier"`
		Type       json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.base = raw.base
	t.Identifier = raw.Identifier
	typ, err := decodeTypeAnnotation(raw.Type)
	if err != nil {
		return err
	}
	t.Type = typ
	return nil
}
