package keyset

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

func (d Direction) Valid() bool {
	return d == Ascending || d == Descending
}

// Operator returns the comparison that selects rows following a bound in
// this direction.
func (d Direction) Operator() Operator {
	switch d {
	case Ascending:
		return Greater
	case Descending:
		return Less
	default:
		panic(fmt.Errorf("no operator for direction '%s'", d))
	}
}

// Column is a single ORDER BY term.
type Column struct {
	Name      string
	Direction Direction
}

func Asc(name string) Column {
	return Column{Name: name, Direction: Ascending}
}

func Desc(name string) Column {
	return Column{Name: name, Direction: Descending}
}

// Column names are interpolated into SQL, so only identifier-like symbols
// are accepted.
var _columnNameCharset = append([]rune("_.`\""), lo.AlphanumericCharset...)

func (c Column) validate() error {
	if !c.Direction.Valid() {
		return fmt.Errorf("invalid sort direction '%s'", c.Direction)
	}
	if c.Name == "" || !lo.Every(_columnNameCharset, []rune(c.Name)) {
		return fmt.Errorf("invalid sort column '%s'", c.Name)
	}

	return nil
}

// Sort is an ordered list of ORDER BY terms.
type Sort []Column

// SQL renders the sort as "a ASC, b DESC".
func (s Sort) SQL() string {
	return strings.Join(lo.Map(s, func(c Column, _ int) string {
		return c.Name + " " + string(c.Direction)
	}), ", ")
}

func (s Sort) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(s.SQL())
}

func (s Sort) validate() error {
	if len(s) == 0 {
		return fmt.Errorf("empty sort")
	}

	for _, c := range s {
		if err := c.validate(); err != nil {
			return err
		}
	}

	return nil
}
