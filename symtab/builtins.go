package symtab

import "github.com/chocopy-lang/corec/chocopytypes"

// seedBuiltins pre-populates the program scope with object/int/bool/str
// and the three global built-in functions, before any user declaration is
// visited (spec.md §4.2). There is no process-wide registry (spec.md §9
// "Global state" design note): every *Program gets its own tree and scope.
func seedBuiltins(tree *chocopytypes.HierarchyTree, root *chocopytypes.Scope) {
	for _, name := range []string{chocopytypes.Object, chocopytypes.StrT, chocopytypes.IntT, chocopytypes.BoolT} {
		cls := &chocopytypes.ClassDefType{
			Name:             name,
			Scope:            chocopytypes.NewScope(root, chocopytypes.ClassScope, name),
			InheritedMembers: map[string]chocopytypes.Symbol{},
		}
		cls.Scope.Declare("__init__", &chocopytypes.FunctionDefType{
			Name:       "__init__",
			ReturnType: chocopytypes.None,
			Params:     []chocopytypes.ValueType{chocopytypes.NewClassValueType(name)},
			Scope:      chocopytypes.NewScope(cls.Scope, chocopytypes.FunctionScope, "__init__"),
			IsMethod:   true,
		})
		root.Declare(name, cls)
	}

	root.Declare("len", &chocopytypes.FunctionDefType{
		Name:       "len",
		ReturnType: chocopytypes.Int,
		Params:     []chocopytypes.ValueType{chocopytypes.ObjectT},
		Scope:      chocopytypes.NewScope(root, chocopytypes.FunctionScope, "len"),
	})
	root.Declare("print", &chocopytypes.FunctionDefType{
		Name:       "print",
		ReturnType: chocopytypes.None,
		Params:     []chocopytypes.ValueType{chocopytypes.ObjectT},
		Scope:      chocopytypes.NewScope(root, chocopytypes.FunctionScope, "print"),
	})
	root.Declare("input", &chocopytypes.FunctionDefType{
		Name:       "input",
		ReturnType: chocopytypes.Str,
		Params:     nil,
		Scope:      chocopytypes.NewScope(root, chocopytypes.FunctionScope, "input"),
	})
}
