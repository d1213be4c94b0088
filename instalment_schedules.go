package gcpro

import (
	"context"
	"iter"
	"net/http"
	"time"
)

type InstalmentScheduleStatus string

const (
	InstalmentScheduleStatusPending        InstalmentScheduleStatus = "pending"
	InstalmentScheduleStatusActive         InstalmentScheduleStatus = "active"
	InstalmentScheduleStatusCreationFailed InstalmentScheduleStatus = "creation_failed"
	InstalmentScheduleStatusCompleted      InstalmentScheduleStatus = "completed"
	InstalmentScheduleStatusCancelled      InstalmentScheduleStatus = "cancelled"
	InstalmentScheduleStatusErrored        InstalmentScheduleStatus = "errored"
)

type IntervalUnit string

const (
	IntervalUnitWeekly  IntervalUnit = "weekly"
	IntervalUnitMonthly IntervalUnit = "monthly"
	IntervalUnitYearly  IntervalUnit = "yearly"
)

// InstalmentSchedule is a fixed set of payments collected under one mandate.
type InstalmentSchedule struct {
	ID            string                   `json:"id"`
	CreatedAt     time.Time                `json:"created_at"`
	Currency      string                   `json:"currency"`
	Name          string                   `json:"name"`
	Status        InstalmentScheduleStatus `json:"status"`
	TotalAmount   int                      `json:"total_amount"`
	PaymentErrors map[string][]FieldError  `json:"payment_errors,omitempty"`
	Metadata      Metadata                 `json:"metadata,omitempty"`
	Links         InstalmentScheduleLinks  `json:"links"`
}

type InstalmentScheduleLinks struct {
	Customer string   `json:"customer,omitempty"`
	Mandate  string   `json:"mandate,omitempty"`
	Payments []string `json:"payments,omitempty"`
}

// Instalment is one explicitly dated payment of a schedule.
type Instalment struct {
	Amount      int    `json:"amount"`
	ChargeDate  string `json:"charge_date,omitempty"`
	Description string `json:"description,omitempty"`
}

// InstalmentsSchedule generates payment dates from a start date and an
// interval.
type InstalmentsSchedule struct {
	Amounts      []int        `json:"amounts"`
	Interval     int          `json:"interval"`
	IntervalUnit IntervalUnit `json:"interval_unit"`
	StartDate    string       `json:"start_date,omitempty"`
	DayOfMonth   int          `json:"day_of_month,omitempty"`
}

type instalmentScheduleBase struct {
	Name             string   `json:"name"`
	Currency         string   `json:"currency"`
	TotalAmount      int      `json:"total_amount"`
	AppFee           int      `json:"app_fee,omitempty"`
	PaymentReference string   `json:"payment_reference,omitempty"`
	RetryIfPossible  bool     `json:"retry_if_possible,omitempty"`
	Metadata         Metadata `json:"metadata,omitempty"`
	Links            struct {
		Mandate string `json:"mandate"`
	} `json:"links"`
}

type InstalmentScheduleCreateWithDatesParams struct {
	instalmentScheduleBase
	Instalments []Instalment `json:"instalments"`
}

type InstalmentScheduleCreateWithScheduleParams struct {
	instalmentScheduleBase
	Instalments InstalmentsSchedule `json:"instalments"`
}

type InstalmentScheduleUpdateParams struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

type InstalmentScheduleCancelParams struct {
	Metadata Metadata `json:"metadata,omitempty"`
}

type InstalmentScheduleListParams struct {
	CursorParams
	CreatedAt *TimeFilter                `url:"created_at,omitempty"`
	Customer  string                     `url:"customer,omitempty"`
	Mandate   string                     `url:"mandate,omitempty"`
	Status    []InstalmentScheduleStatus `url:"status,comma,omitempty"`
}

type InstalmentScheduleListResult struct {
	InstalmentSchedules []InstalmentSchedule `json:"instalment_schedules"`
	Meta                ListMeta             `json:"meta"`
}

// InstalmentScheduleService wraps the /instalment_schedules endpoints.
type InstalmentScheduleService struct {
	client *Client
}

// NewInstalmentScheduleWithDates builds create params for explicitly dated
// instalments.
func NewInstalmentScheduleWithDates(mandate, name, currency string, instalments ...Instalment) InstalmentScheduleCreateWithDatesParams {
	p := InstalmentScheduleCreateWithDatesParams{Instalments: instalments}
	p.Name, p.Currency, p.Links.Mandate = name, currency, mandate
	for _, i := range instalments {
		p.TotalAmount += i.Amount
	}

	return p
}

// NewInstalmentScheduleWithSchedule builds create params for instalments
// spread over a regular interval.
func NewInstalmentScheduleWithSchedule(mandate, name, currency string, schedule InstalmentsSchedule) InstalmentScheduleCreateWithScheduleParams {
	p := InstalmentScheduleCreateWithScheduleParams{Instalments: schedule}
	p.Name, p.Currency, p.Links.Mandate = name, currency, mandate
	for _, amount := range schedule.Amounts {
		p.TotalAmount += amount
	}

	return p
}

func (b instalmentScheduleBase) validate() error {
	if b.Links.Mandate == "" {
		return missingParam("links.mandate")
	}
	if b.Name == "" {
		return missingParam("name")
	}

	return nil
}

func (s *InstalmentScheduleService) CreateWithDates(
	ctx context.Context,
	p InstalmentScheduleCreateWithDatesParams,
	opts ...RequestOption,
) (*InstalmentSchedule, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	return create(ctx, s.client, "/instalment_schedules", "instalment_schedules", p, s.Get, opts)
}

func (s *InstalmentScheduleService) CreateWithSchedule(
	ctx context.Context,
	p InstalmentScheduleCreateWithScheduleParams,
	opts ...RequestOption,
) (*InstalmentSchedule, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	return create(ctx, s.client, "/instalment_schedules", "instalment_schedules", p, s.Get, opts)
}

func (s *InstalmentScheduleService) List(ctx context.Context, p InstalmentScheduleListParams, opts ...RequestOption) (*InstalmentScheduleListResult, error) {
	ret := new(InstalmentScheduleListResult)
	err := s.client.execute(ctx, &request{method: http.MethodGet, path: "/instalment_schedules", query: p, opts: opts}, ret)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (s *InstalmentScheduleService) All(ctx context.Context, p InstalmentScheduleListParams, opts ...RequestOption) iter.Seq2[InstalmentSchedule, error] {
	return Iterate(ctx, s.pages(p, opts))
}

func (s *InstalmentScheduleService) Pages(
	ctx context.Context,
	p InstalmentScheduleListParams,
	opts ...RequestOption,
) iter.Seq[*PendingPage[InstalmentSchedule]] {
	return IteratePages(ctx, s.pages(p, opts))
}

func (s *InstalmentScheduleService) pages(p InstalmentScheduleListParams, opts []RequestOption) PageFetcher[InstalmentSchedule] {
	return func(ctx context.Context, after string) (*Page[InstalmentSchedule], error) {
		q := p
		q.After = after

		res, err := s.List(ctx, q, opts...)
		if err != nil {
			return nil, err
		}

		return &Page[InstalmentSchedule]{Items: res.InstalmentSchedules, Meta: res.Meta}, nil
	}
}

func (s *InstalmentScheduleService) Get(ctx context.Context, identity string, opts ...RequestOption) (*InstalmentSchedule, error) {
	return get[InstalmentSchedule](ctx, s.client, "/instalment_schedules/:identity", "instalment_schedules", identity, opts)
}

func (s *InstalmentScheduleService) Update(
	ctx context.Context,
	identity string,
	p InstalmentScheduleUpdateParams,
	opts ...RequestOption,
) (*InstalmentSchedule, error) {
	return update[InstalmentSchedule](ctx, s.client, "/instalment_schedules/:identity", "instalment_schedules", identity, p, opts)
}

// Cancel cancels the schedule and every payment of it that can still be
// cancelled.
func (s *InstalmentScheduleService) Cancel(
	ctx context.Context,
	identity string,
	p InstalmentScheduleCancelParams,
	opts ...RequestOption,
) (*InstalmentSchedule, error) {
	return action[InstalmentSchedule](ctx, s.client, "/instalment_schedules/:identity/actions/cancel", "instalment_schedules", identity, p, opts)
}
