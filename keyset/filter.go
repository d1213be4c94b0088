package keyset

import (
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

type (
	// predicate is a single "column op value" comparison.
	predicate struct {
		Column   string
		Value    any
		Operator Operator
	}

	// conjunction joins predicates with AND.
	conjunction []predicate

	// filter is a disjunctive normal form: conjunctions joined with OR.
	//
	//	(A11 AND A12) OR (A21 AND A22 AND A23) OR ...
	filter []conjunction
)

func (p predicate) expression() clause.Expression {
	return clause.Expr{
		SQL:  fmt.Sprintf("%s %s ?", p.Column, p.Operator),
		Vars: []any{boundValue(p.Value)},
	}
}

// boundValue restores timestamps that went through JSON as strings, so the
// driver compares them as time values.
func boundValue(v any) any {
	var raw []byte
	switch vt := v.(type) {
	case string:
		raw = []byte(vt)
	case []byte:
		raw = vt
	default:
		return v
	}

	var ts time.Time
	if err := ts.UnmarshalText(raw); err != nil {
		return v
	}

	return ts
}

func (c conjunction) expression() clause.Expression {
	switch len(c) {
	case 0:
		return nil
	case 1:
		return c[0].expression()
	}

	exprs := make([]clause.Expression, 0, len(c))
	for _, p := range c {
		exprs = append(exprs, p.expression())
	}

	return clause.And(exprs...)
}

func (f filter) expression() clause.Expression {
	exprs := make([]clause.Expression, 0, len(f))
	for _, c := range f {
		if expr := c.expression(); expr != nil {
			exprs = append(exprs, expr)
		}
	}

	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		return clause.Or(exprs...)
	}
}
