package gcpro

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CursorParams are the pagination parameters shared by every list call.
// All and Pages overwrite After before each page request.
type CursorParams struct {
	After  string `url:"after,omitempty"`
	Before string `url:"before,omitempty"`
	// Limit is the page size. The API defaults to 50 and allows up to 500.
	Limit int `url:"limit,omitempty"`
}

// TimeFilter restricts a list by a timestamp field. Values are RFC 3339
// timestamps.
type TimeFilter struct {
	GT  string `url:"gt,omitempty"`
	GTE string `url:"gte,omitempty"`
	LT  string `url:"lt,omitempty"`
	LTE string `url:"lte,omitempty"`
}

// Metadata is the free-form key/value map most resources carry.
type Metadata map[string]string

// actionData is the body of "actions" endpoints.
type actionData struct {
	Data any `json:"data"`
}

func wrapAction(params any) actionData {
	if params == nil {
		return actionData{Data: struct{}{}}
	}

	return actionData{Data: params}
}

// call performs one request whose response wraps a single resource under key.
func call[T any](ctx context.Context, c *Client, r *request, key string) (*T, error) {
	var envelope map[string]json.RawMessage
	if err := c.execute(ctx, r, &envelope); err != nil {
		return nil, err
	}

	raw, ok := envelope[key]
	if !ok {
		return nil, fmt.Errorf("%s %s: response has no %q", r.method, r.path, key)
	}

	ret := new(T)
	if err := json.Unmarshal(raw, ret); err != nil {
		return nil, fmt.Errorf("%s %s: cannot decode %q: %w", r.method, r.path, key, err)
	}

	return ret, nil
}

// create posts an idempotent create request. When the API reports that the
// resource already exists for the idempotency key, the existing resource is
// fetched with get instead.
func create[T any](
	ctx context.Context,
	c *Client,
	path, key string,
	params any,
	get func(context.Context, string, ...RequestOption) (*T, error),
	opts []RequestOption,
) (*T, error) {
	ret, err := call[T](ctx, c, &request{
		method:     http.MethodPost,
		path:       path,
		body:       map[string]any{key: params},
		idempotent: true,
		opts:       opts,
	}, key)
	if err == nil {
		return ret, nil
	}

	if id, ok := conflictingResourceID(err); ok && c.resolveConflicts && get != nil {
		c.logger.Debug("resource already created, fetching it")
		return get(ctx, id, opts...)
	}

	return nil, err
}

// get fetches one resource by identity.
func get[T any](ctx context.Context, c *Client, template, key, identity string, opts []RequestOption) (*T, error) {
	path, err := expandPath(template, identity)
	if err != nil {
		return nil, err
	}

	return call[T](ctx, c, &request{method: http.MethodGet, path: path, opts: opts}, key)
}

// update sends a PUT with params wrapped under key.
func update[T any](ctx context.Context, c *Client, template, key, identity string, params any, opts []RequestOption) (*T, error) {
	path, err := expandPath(template, identity)
	if err != nil {
		return nil, err
	}

	return call[T](ctx, c, &request{
		method: http.MethodPut,
		path:   path,
		body:   map[string]any{key: params},
		opts:   opts,
	}, key)
}

// action posts to an ".../actions/<name>" endpoint.
func action[T any](ctx context.Context, c *Client, template, key, identity string, params any, opts []RequestOption) (*T, error) {
	path, err := expandPath(template, identity)
	if err != nil {
		return nil, err
	}

	return call[T](ctx, c, &request{
		method: http.MethodPost,
		path:   path,
		body:   wrapAction(params),
		opts:   opts,
	}, key)
}
