package chocopytypes

// HierarchyTree maintains the single-inheritance DAG of declared classes
// and answers CommonAncestor/IsSuperclass (spec.md §4.1). It corresponds to
// the original's semantic::HierachyTree (SPEC_FULL.md §3); the bootstrap
// order (object, then str, int, bool) is preserved so that depth-based
// tie-breaks in CommonAncestor match the reference compiler exactly.
type HierarchyTree struct {
	super sllice
	depth map[string]int
	subs  map[string][]string
}

// sllice is a tiny deterministic map: class name -> super-class name, with
// "object" mapping to "" (no super). A plain map would do, but naming it
// makes the zero-super sentinel explicit at call sites.
type sllice map[string]string

// NewHierarchyTree returns a tree pre-seeded with object, str, int, bool,
// matching the original's constructor bootstrap order.
func NewHierarchyTree() *HierarchyTree {
	t := &HierarchyTree{
		super: sllice{Object: ""},
		depth: map[string]int{Object: 0},
		subs:  map[string][]string{},
	}
	t.AddClass(StrT, Object)
	t.AddClass(IntT, Object)
	t.AddClass(BoolT, Object)
	return t
}

// Contains reports whether class is a known class name.
func (t *HierarchyTree) Contains(class string) bool {
	_, ok := t.super[class]
	return ok
}

// AddClass registers class as a direct subclass of super. super must
// already be registered; this is the topological gate the symbol-table
// generator (§4.2) relies on when it rejects a class extending an
// as-yet-undeclared name.
func (t *HierarchyTree) AddClass(class, super string) {
	if _, ok := t.super[super]; !ok {
		panic("chocopytypes: AddClass(" + class + "): super-class " + super + " not registered")
	}
	if _, ok := t.super[class]; ok {
		panic("chocopytypes: AddClass(" + class + "): already registered")
	}
	t.super[class] = super
	t.depth[class] = t.depth[super] + 1
	t.subs[super] = append(t.subs[super], class)
}

// SuperOf returns the direct super-class of class, or "" for object.
func (t *HierarchyTree) SuperOf(class string) string { return t.super[class] }

// Depth returns class's distance from object (object itself is 0).
func (t *HierarchyTree) Depth(class string) int { return t.depth[class] }

// CommonAncestor returns the nearest class that is a super-class of both
// a and b, walking both chains to equal depth and then lock-stepping
// until the names agree (mirrors HierachyTree::common_ancestor).
func (t *HierarchyTree) CommonAncestor(a, b string) string {
	da, db := t.depth[a], t.depth[b]
	for da > db {
		a = t.super[a]
		da--
	}
	for db > da {
		b = t.super[b]
		db--
	}
	for a != b {
		a = t.super[a]
		b = t.super[b]
	}
	return a
}

// IsSuperclass reports whether super is a (reflexive) super-class of sub.
func (t *HierarchyTree) IsSuperclass(sub, super string) bool {
	if !t.Contains(sub) || !t.Contains(super) {
		return false
	}
	return t.CommonAncestor(sub, super) == super
}
