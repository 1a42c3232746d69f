package ppscope

// ConditionContext is the set of branch conditions governing one position:
// every entry of True must hold and no entry of False may hold.
type ConditionContext struct {
	True  []Directive `json:"true"`
	False []Directive `json:"false"`
}

// ResolveContext walks backward from the last directive at or before offset and
// collects the conditions of every enclosing block, innermost level first in the
// walk but stored in source order. Directives of fully closed nested blocks are
// skipped by depth counting. ok is false when offset is not inside any block.
func ResolveContext(offset int, occs []Occurrence) (ctx ConditionContext, ok bool) {
	index := -1
	for i := len(occs) - 1; i >= 0; i-- {
		if occs[i].Start <= offset {
			index = i
			break
		}
	}
	if index < 0 {
		return ConditionContext{}, false
	}

	var trueSet, falseSet []Directive
	nesting := 0
	// Set once the walk passes an else/elseif of the current level: earlier
	// sibling branches were skipped and must not hold.
	elseNesting := false

	add := func(d Directive) {
		if elseNesting {
			falseSet = append(falseSet, d)
		} else {
			trueSet = append(trueSet, d)
		}
	}

	for ; index >= 0; index-- {
		d := occs[index].Directive
		switch d.Kind {
		case KindEndIf:
			nesting++
		case KindIf, KindIfDef:
			if nesting > 0 {
				nesting--
				continue
			}
			add(d)
			elseNesting = false
		case KindElseIf, KindElse:
			if nesting > 0 {
				continue
			}
			// else has no condition of its own; it only switches the level
			if d.Kind == KindElseIf || elseNesting {
				add(d)
			}
			elseNesting = true
		}
	}

	if len(trueSet) == 0 && len(falseSet) == 0 {
		return ConditionContext{}, false
	}
	reverse(trueSet)
	reverse(falseSet)
	return ConditionContext{True: trueSet, False: falseSet}, true
}

func reverse(ds []Directive) {
	for i, j := 0, len(ds)-1; i < j; i, j = i+1, j-1 {
		ds[i], ds[j] = ds[j], ds[i]
	}
}

// DefinedFunc resolves an ifdef identifier for a version.
type DefinedFunc func(identifier string, v Version) Tristate

// Tester checks a ConditionContext against versions.
type Tester struct {
	Evaluator Evaluator

	// FailureResult is returned as soon as any condition evaluates to Unknown.
	FailureResult bool

	// Defined is the extension point for ifdef. When nil, an ifdef in the
	// true set is always satisfied and an ifdef in the false set always fails,
	// since identifier definitions are not tracked.
	Defined DefinedFunc
}

// TestVersion reports whether v satisfies the context, returning failureResult
// when a condition cannot be evaluated.
func (c ConditionContext) TestVersion(v Version, failureResult bool) bool {
	return Tester{FailureResult: failureResult}.Test(c, v)
}

// Test reports whether v satisfies c.
func (t Tester) Test(c ConditionContext, v Version) bool {
trueLoop:
	for _, d := range c.True {
		switch d.Kind {
		case KindIf, KindElseIf:
			r := t.Evaluator.Evaluate(d.Condition, v)
			if r == Unknown {
				return t.FailureResult
			}
			if r == False {
				return false
			}
		case KindIfDef:
			if t.Defined == nil {
				continue
			}
			r := t.Defined(d.Identifier, v)
			if r == Unknown {
				return t.FailureResult
			}
			if r == False {
				return false
			}
		case KindElse:
			continue
		case KindEndIf:
			break trueLoop
		}
	}

	for _, d := range c.False {
		switch d.Kind {
		case KindIf, KindElseIf:
			r := t.Evaluator.Evaluate(d.Condition, v)
			if r == Unknown {
				return t.FailureResult
			}
			if r == True {
				return false
			}
		case KindIfDef:
			if t.Defined == nil {
				return false
			}
			r := t.Defined(d.Identifier, v)
			if r == Unknown {
				return t.FailureResult
			}
			if r == True {
				return false
			}
		case KindElse:
			return false
		case KindEndIf:
			return true
		}
	}

	return true
}
