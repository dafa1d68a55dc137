package core

// Deps is an ordered dependency list attached to effect, memo and callback
// slots. A nil Deps means "no dependency list supplied" and is treated as
// always-unequal, forcing re-evaluation on every pass. An empty, non-nil
// Deps compares equal to itself and therefore never forces re-evaluation.
type Deps []any

// DepsEqual reports whether two dependency lists are shallowly equal. It
// returns false whenever either side is absent (nil), the lengths differ, or
// any pairwise element differs under Identical.
func DepsEqual(prev, next Deps) bool {
	if prev == nil || next == nil {
		return false
	}
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if !Identical(prev[i], next[i]) {
			return false
		}
	}
	return true
}

// Identical compares two values by identity / value equality. Values whose
// dynamic types are not comparable (slices, maps, functions) never compare
// equal, mirroring reference semantics.
func Identical(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
