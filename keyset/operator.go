package keyset

import "fmt"

// Operator compares a column against a bound value.
type Operator string

const (
	Greater Operator = ">"
	Less    Operator = "<"

	// equal only appears in expanded filters, never in a token.
	equal Operator = "="
)

func (o Operator) Valid() bool {
	return o == Greater || o == Less
}

func (o Operator) Direction() Direction {
	switch o {
	case Greater:
		return Ascending
	case Less:
		return Descending
	default:
		panic(fmt.Errorf("no direction for operator '%s'", o))
	}
}
