package ppscope

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Tristate is the outcome of evaluating a condition.
type Tristate int8

const (
	Unknown Tristate = iota
	False
	True
)

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "unknown"
}

// MarshalText renders the state as a word.
func (t Tristate) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Or resolves the tristate, substituting fallback for Unknown.
func (t Tristate) Or(fallback bool) bool {
	if t == Unknown {
		return fallback
	}
	return t == True
}

func tristate(b bool) Tristate {
	if b {
		return True
	}
	return False
}

var comparisonPattern = regexp.MustCompile(`^MC\s*(==|!=|<=|>=|<|>)\s*(\S+)$`)

// Evaluator evaluates directive conditions against a Version. The zero value
// is ready to use; Logger receives a debug record for every unknown term.
type Evaluator struct {
	Logger *slog.Logger
}

// Evaluate evaluates cond against v with the default evaluator.
func Evaluate(cond string, v Version) Tristate {
	return Evaluator{}.Evaluate(cond, v)
}

// Evaluate parses cond as a chain of terms joined by && and ||, applied strictly
// left to right with no precedence: "a || b && c" is "(a || b) && c".
// Any unknown term makes the whole condition unknown.
func (e Evaluator) Evaluate(cond string, v Version) Tristate {
	terms, ops := splitChain(cond)

	results := make([]bool, len(terms))
	for i, term := range terms {
		r := e.evaluateTerm(term, v)
		if r == Unknown {
			e.debug("could not evaluate condition", "condition", cond, "term", strings.TrimSpace(term))
			return Unknown
		}
		results[i] = r == True
	}

	acc := results[0]
	for i, op := range ops {
		if op == "&&" {
			acc = acc && results[i+1]
		} else {
			acc = acc || results[i+1]
		}
	}
	return tristate(acc)
}

// splitChain splits on && and || keeping the operators in textual order.
// There is always one more term than operators.
func splitChain(cond string) (terms []string, ops []string) {
	rest := cond
	for {
		and := strings.Index(rest, "&&")
		or := strings.Index(rest, "||")
		idx, op := and, "&&"
		if idx < 0 || (or >= 0 && or < idx) {
			idx, op = or, "||"
		}
		if idx < 0 {
			terms = append(terms, rest)
			return terms, ops
		}
		terms = append(terms, rest[:idx])
		ops = append(ops, op)
		rest = rest[idx+2:]
	}
}

func (e Evaluator) evaluateTerm(raw string, v Version) Tristate {
	term := strings.TrimSpace(raw)
	if term == "" {
		return Unknown
	}
	if strings.HasPrefix(term, "MC") {
		return e.evaluateComparison(term, v)
	}

	negated := strings.HasPrefix(term, "!")
	loader := foldLoader(strings.TrimPrefix(term, "!"))
	if strings.Contains(loader, "fabric") || strings.Contains(loader, "forge") {
		return tristate(negated != (v.Loader == loader))
	}
	e.debug("unknown condition term", "term", term)
	return Unknown
}

func (e Evaluator) evaluateComparison(term string, v Version) Tristate {
	m := comparisonPattern.FindStringSubmatch(term)
	if m == nil {
		e.debug("malformed MC comparison", "term", term)
		return Unknown
	}
	op, rhsText := m[1], m[2]

	rhs, ok := comparisonValue(rhsText)
	if !ok {
		e.debug("malformed version number in MC comparison", "term", term, "value", rhsText)
		return Unknown
	}

	lhs := v.Numeric
	switch op {
	case "==":
		return tristate(lhs == rhs)
	case "!=":
		return tristate(lhs != rhs)
	case "<=":
		return tristate(lhs <= rhs)
	case ">=":
		return tristate(lhs >= rhs)
	case "<":
		return tristate(lhs < rhs)
	case ">":
		return tristate(lhs > rhs)
	}
	return Unknown
}

// comparisonValue accepts either a numeric key (11902) or a dotted version (1.19.2).
func comparisonValue(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if versionPattern.FindString(s) != s {
		return 0, false
	}
	return Comparable(s)
}

func (e Evaluator) debug(msg string, args ...any) {
	if e.Logger == nil {
		return
	}
	e.Logger.Debug(msg, args...)
}
