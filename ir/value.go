package ir

// Value is anything an Instruction may reference as an operand: another
// Instruction's result, a Param, or a Constant. Mirrors go/ssa's Value
// interface, but since every concrete operand already carries an
// identifying ValueID or is itself a self-describing constant, Value here
// is a thin marker rather than a method-bearing interface requiring a
// Parent()/Referrers() walk — ir/build never needs def-use chains, only
// forward references by ID.
type Value interface {
	Type() ValueType
	valueMarker()
}

// Ref is an operand referring to a prior Instruction's result within the
// same Function.
type Ref struct {
	ID  ValueID
	Typ ValueType
}

func (r Ref) Type() ValueType { return r.Typ }
func (Ref) valueMarker()      {}

// ParamRef is an operand referring to one of the owning Function's
// parameters (including the receiver, Params[0], for methods/closures).
type ParamRef struct {
	Index int
	Typ   ValueType
}

func (p ParamRef) Type() ValueType { return p.Typ }
func (ParamRef) valueMarker()      {}

// GlobalRef is an operand referring to a Module-level Global by name.
type GlobalRef struct {
	Name string
	Typ  ValueType
}

func (g GlobalRef) Type() ValueType { return g.Typ }
func (GlobalRef) valueMarker()      {}

// ConstKind tags the flavor of a Constant (spec.md §4.5's literal/boxing
// rules: every int/bool literal is representable unboxed, but a boxed
// copy is needed wherever an `object`-typed slot holds one).
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstStr
	ConstNone // the null prototype-object pointer
	// ConstBoxInt/ConstBoxBool name a heap-allocated boxed int/bool object.
	// ir/build does not produce them: its box() boxes a value flowing into
	// an object-typed slot with an external rt.box_int/rt.box_bool call.
	ConstBoxInt
	ConstBoxBool
)

// Constant is a literal operand: an unboxed int/bool/str value, the null
// pointer, or a request to materialize a boxed int/bool.
type Constant struct {
	Kind ConstKind
	Int  int32
	Bool bool
	Str  string
	Typ  ValueType
}

func (c Constant) Type() ValueType { return c.Typ }
func (Constant) valueMarker()      {}
