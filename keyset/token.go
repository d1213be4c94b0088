package keyset

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

var _encoding = base64.RawURLEncoding

// Bound is one (column, operator, value) triple of a Token.
type Bound struct {
	Column   string   `json:"c"`
	Value    any      `json:"v"`
	Operator Operator `json:"o"`
}

func (b Bound) equality() predicate {
	return predicate{Column: b.Column, Operator: equal, Value: b.Value}
}

// Token marks the position after which the next page starts. A nil or empty
// token is the start of the dataset.
type Token struct {
	bounds []Bound
}

func NewToken(bounds ...Bound) *Token {
	return &Token{bounds: bounds}
}

// DecodeToken parses a string produced by Token.String. An empty string
// yields a nil token.
func DecodeToken(s string) (*Token, error) {
	if s == "" {
		return nil, nil
	}

	raw, err := _encoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}

	var bounds []Bound
	if err = json.Unmarshal(raw, &bounds); err != nil {
		return nil, fmt.Errorf("malformed token payload: %w", err)
	}

	return &Token{bounds: bounds}, nil
}

func (t *Token) String() string {
	if t.IsEmpty() {
		return ""
	}

	raw, err := json.Marshal(t.bounds)
	if err != nil {
		panic(fmt.Errorf("cannot encode token: %w", err))
	}

	return _encoding.EncodeToString(raw)
}

func (t *Token) IsEmpty() bool {
	return t == nil || len(t.bounds) == 0
}

func (t *Token) Bounds() []Bound {
	if t == nil {
		return nil
	}

	return t.bounds
}

// Apply adds the seek condition to db.
func (t *Token) Apply(db *gorm.DB) *gorm.DB {
	expr := t.filter().expression()
	if expr == nil {
		return db
	}

	return db.Clauses(expr)
}

func (t *Token) filter() filter {
	if t.IsEmpty() {
		return nil
	}

	ret := make(filter, 0, len(t.bounds))
	for i, b := range t.bounds {
		c := make(conjunction, 0, i+1)
		c = append(c, lo.Map(t.bounds[:i], func(prev Bound, _ int) predicate {
			return prev.equality()
		})...)
		c = append(c, predicate(b))

		ret = append(ret, c)
	}

	return ret
}

// validate checks that the token was produced for the given sort.
func (t *Token) validate(sort Sort) error {
	if t.IsEmpty() {
		return nil
	}

	if len(t.bounds) != len(sort) {
		return fmt.Errorf("token has %d columns, sort has %d", len(t.bounds), len(sort))
	}

	for i, b := range t.bounds {
		if b.Column != sort[i].Name {
			return fmt.Errorf("unexpected token column '%s'", b.Column)
		}
		if !b.Operator.Valid() {
			return fmt.Errorf("invalid token operator '%s'", b.Operator)
		}
		if b.Operator.Direction() != sort[i].Direction {
			return fmt.Errorf("token operator '%s' does not match sort of '%s'", b.Operator, b.Column)
		}
	}

	return nil
}

var _ fmt.Stringer = (*Token)(nil)
