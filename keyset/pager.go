package keyset

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Pager holds the limit, position and sort of one page request.
type Pager struct {
	lookahead bool
	limit     int
	token     *Token
	sort      Sort
}

func New() *Pager {
	return &Pager{limit: DefaultLimit}
}

// Decode builds a pager from the raw limit and token of a request.
func Decode(limit int, rawToken string, sort ...Column) (*Pager, error) {
	token, err := DecodeToken(rawToken)
	if err != nil {
		return nil, err
	}

	return New().WithToken(token).WithLimit(limit).WithSort(sort...), nil
}

// WithLookahead makes Paginate fetch one extra row, so the last page can be
// detected without an empty trailing request.
func (p *Pager) WithLookahead() *Pager {
	if p == nil {
		p = New()
	}

	p.lookahead = true

	return p
}

// WithLimit sets the page size, clamped with NormalizeLimit.
func (p *Pager) WithLimit(limit int) *Pager {
	if p == nil {
		p = New()
	}

	p.limit = NormalizeLimit(limit)

	return p
}

func (p *Pager) WithToken(token *Token) *Pager {
	if p == nil {
		p = New()
	}

	p.token = token

	return p
}

// WithSort appends sort columns. A column that is already present is moved
// to the end with its new direction.
func (p *Pager) WithSort(columns ...Column) *Pager {
	if p == nil {
		p = New()
	}

	for _, c := range columns {
		p.sort = slices.DeleteFunc(p.sort, func(prev Column) bool {
			return prev.Name == c.Name
		})
		p.sort = append(p.sort, c)
	}

	return p
}

// Paginate applies sort, position and limit to db.
func (p *Pager) Paginate(db *gorm.DB) (*gorm.DB, error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	db = p.sort.Apply(db)
	db = p.token.Apply(db)

	return db.Limit(p.DatasetLimit()), nil
}

func (p *Pager) Limit() int {
	if p == nil {
		return 0
	}

	return p.limit
}

func (p *Pager) Lookahead() bool {
	return p != nil && p.lookahead
}

func (p *Pager) Token() *Token {
	if p == nil {
		return nil
	}

	return p.token
}

func (p *Pager) Sort() Sort {
	if p == nil {
		return nil
	}

	return p.sort
}

// DatasetLimit is the number of rows to query: Limit, plus one with
// lookahead.
func (p *Pager) DatasetLimit() int {
	return lo.Ternary(p.Lookahead(), p.Limit()+1, p.Limit())
}

func (p *Pager) validate() error {
	if p == nil {
		return fmt.Errorf("pager is nil")
	}

	if err := p.sort.validate(); err != nil {
		return err
	}

	return p.token.validate(p.sort)
}

// IsLastPage reports whether rows, as returned by a query built with
// Paginate, end the dataset.
func (p *Pager) IsLastPage(n int) bool {
	if p.Lookahead() {
		return n <= p.Limit()
	}

	return n < p.Limit()
}

// Getters extract the sort column values of a row.
//
//	keyset.Getters[Record]{
//		"created_at": func(r Record) any { return r.CreatedAt },
//		"seq":        func(r Record) any { return r.Seq },
//	}
type Getters[T any] map[string]func(T) any

// Next trims the lookahead row off rows and returns the token of the page
// that follows. The token is nil on the last page.
func Next[T any](p *Pager, rows []T, getters Getters[T]) ([]T, *Token, error) {
	if err := p.validate(); err != nil {
		return nil, nil, fmt.Errorf("cannot build next token: %w", err)
	}

	if p.IsLastPage(len(rows)) {
		return rows, nil, nil
	}
	if p.lookahead {
		rows = rows[:len(rows)-1]
	}

	last := lo.LastOrEmpty(rows)
	bounds := make([]Bound, 0, len(p.sort))
	for _, c := range p.sort {
		getter, ok := getters[c.Name]
		if !ok {
			return nil, nil, fmt.Errorf("no getter for sort column '%s'", c.Name)
		}

		bounds = append(bounds, Bound{
			Column:   c.Name,
			Value:    getter(last),
			Operator: c.Direction.Operator(),
		})
	}

	return rows, NewToken(bounds...), nil
}
