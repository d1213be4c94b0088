package gcpro

import (
	"context"
	"iter"
	"net/http"
	"time"
)

type BlockType string

const (
	BlockTypeEmail       BlockType = "email"
	BlockTypeEmailDomain BlockType = "email_domain"
	BlockTypeBankAccount BlockType = "bank_account"
	BlockTypeBankName    BlockType = "bank_name"
)

type BlockReasonType string

const (
	BlockReasonIdentityFraud    BlockReasonType = "identity_fraud"
	BlockReasonNoIntentToPay    BlockReasonType = "no_intent_to_pay"
	BlockReasonUnfairChargeback BlockReasonType = "unfair_chargeback"
	BlockReasonOther            BlockReasonType = "other"
)

type BlockReferenceType string

const (
	BlockReferenceCustomer    BlockReferenceType = "customer"
	BlockReferenceBankAccount BlockReferenceType = "bank_account"
	BlockReferenceMandate     BlockReferenceType = "mandate"
)

// Block prevents mandates from being set up with a matching email, domain,
// bank account or bank name.
type Block struct {
	ID                string          `json:"id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Active            bool            `json:"active"`
	BlockType         BlockType       `json:"block_type"`
	ReasonType        BlockReasonType `json:"reason_type"`
	ReasonDescription string          `json:"reason_description,omitempty"`
	ResourceReference string          `json:"resource_reference"`
}

type BlockCreateParams struct {
	Active            *bool           `json:"active,omitempty"`
	BlockType         BlockType       `json:"block_type"`
	ReasonType        BlockReasonType `json:"reason_type"`
	ReasonDescription string          `json:"reason_description,omitempty"`
	ResourceReference string          `json:"resource_reference"`
}

type BlockByRefParams struct {
	Active            *bool              `json:"active,omitempty"`
	ReasonType        BlockReasonType    `json:"reason_type"`
	ReasonDescription string             `json:"reason_description,omitempty"`
	ReferenceType     BlockReferenceType `json:"reference_type"`
	ReferenceValue    string             `json:"reference_value"`
}

type BlockListParams struct {
	CursorParams
	Block      string          `url:"block,omitempty"`
	BlockType  BlockType       `url:"block_type,omitempty"`
	CreatedAt  *TimeFilter     `url:"created_at,omitempty"`
	ReasonType BlockReasonType `url:"reason_type,omitempty"`
	UpdatedAt  *TimeFilter     `url:"updated_at,omitempty"`
}

type BlockListResult struct {
	Blocks []Block  `json:"blocks"`
	Meta   ListMeta `json:"meta"`
}

// BlockService wraps the /blocks endpoints.
type BlockService struct {
	client *Client
}

func (s *BlockService) Create(ctx context.Context, p BlockCreateParams, opts ...RequestOption) (*Block, error) {
	if p.BlockType == "" {
		return nil, missingParam("block_type")
	}
	if p.ResourceReference == "" {
		return nil, missingParam("resource_reference")
	}

	return create(ctx, s.client, "/blocks", "blocks", p, s.Get, opts)
}

func (s *BlockService) Get(ctx context.Context, identity string, opts ...RequestOption) (*Block, error) {
	return get[Block](ctx, s.client, "/blocks/:identity", "blocks", identity, opts)
}

func (s *BlockService) List(ctx context.Context, p BlockListParams, opts ...RequestOption) (*BlockListResult, error) {
	ret := new(BlockListResult)
	err := s.client.execute(ctx, &request{method: http.MethodGet, path: "/blocks", query: p, opts: opts}, ret)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func (s *BlockService) All(ctx context.Context, p BlockListParams, opts ...RequestOption) iter.Seq2[Block, error] {
	return Iterate(ctx, s.pages(p, opts))
}

func (s *BlockService) Pages(ctx context.Context, p BlockListParams, opts ...RequestOption) iter.Seq[*PendingPage[Block]] {
	return IteratePages(ctx, s.pages(p, opts))
}

func (s *BlockService) pages(p BlockListParams, opts []RequestOption) PageFetcher[Block] {
	return func(ctx context.Context, after string) (*Page[Block], error) {
		q := p
		q.After = after

		res, err := s.List(ctx, q, opts...)
		if err != nil {
			return nil, err
		}

		return &Page[Block]{Items: res.Blocks, Meta: res.Meta}, nil
	}
}

func (s *BlockService) Disable(ctx context.Context, identity string, opts ...RequestOption) (*Block, error) {
	return action[Block](ctx, s.client, "/blocks/:identity/actions/disable", "blocks", identity, nil, opts)
}

func (s *BlockService) Enable(ctx context.Context, identity string, opts ...RequestOption) (*Block, error) {
	return action[Block](ctx, s.client, "/blocks/:identity/actions/enable", "blocks", identity, nil, opts)
}

// BlockByRef blocks everything linked to a customer, bank account or
// mandate. The response is not paginated.
func (s *BlockService) BlockByRef(ctx context.Context, p BlockByRefParams, opts ...RequestOption) ([]Block, error) {
	if p.ReferenceType == "" {
		return nil, missingParam("reference_type")
	}
	if p.ReferenceValue == "" {
		return nil, missingParam("reference_value")
	}

	var ret BlockListResult
	err := s.client.execute(ctx, &request{
		method: http.MethodPost,
		path:   "/blocks/block_by_ref",
		body:   wrapAction(p),
		opts:   opts,
	}, &ret)
	if err != nil {
		return nil, err
	}

	return ret.Blocks, nil
}
