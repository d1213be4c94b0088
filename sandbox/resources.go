package sandbox

import "github.com/samber/lo"

// transition mutates a resource body when an action is performed. It
// returns false when the resource is not in a state that allows the action.
type transition func(body map[string]any) bool

type resource struct {
	prefix   string
	status   string
	defaults map[string]any
	actions  map[string]transition
}

// setStatus moves the resource to status to. With from given, the current
// status must be one of from; otherwise it must differ from to.
func setStatus(to string, from ...string) transition {
	return func(body map[string]any) bool {
		cur, _ := body["status"].(string)
		if len(from) > 0 && !lo.Contains(from, cur) {
			return false
		}
		if len(from) == 0 && cur == to {
			return false
		}

		body["status"] = to
		return true
	}
}

func setFlag(field string, to bool) transition {
	return func(body map[string]any) bool {
		if cur, _ := body[field].(bool); cur == to {
			return false
		}

		body[field] = to
		return true
	}
}

var _resources = map[string]resource{
	"creditors": {prefix: "CR", status: "active"},
	"customers": {prefix: "CU"},
	"mandates": {
		prefix: "MD",
		status: "pending_submission",
		actions: map[string]transition{
			"cancel":    setStatus("cancelled"),
			"reinstate": setStatus("active", "cancelled", "expired"),
		},
	},
	"payments": {
		prefix: "PM",
		status: "pending_submission",
		actions: map[string]transition{
			"cancel": setStatus("cancelled", "pending_submission", "pending_customer_approval"),
			"retry":  setStatus("pending_submission", "failed", "charged_back"),
		},
	},
	"payouts": {prefix: "PO", status: "pending"},
	"billing_requests": {
		prefix: "BRQ",
		status: "pending",
		actions: map[string]transition{
			"collect_customer_details": setStatus("pending", "pending"),
			"confirm_payer_details":    setStatus("ready_to_fulfil", "pending"),
			"fulfil":                   setStatus("fulfilled", "ready_to_fulfil", "pending"),
			"cancel":                   setStatus("cancelled", "pending", "ready_to_fulfil"),
			"notify":                   setStatus("pending", "pending"),
			"fallback":                 setStatus("pending", "pending"),
		},
	},
	"instalment_schedules": {
		prefix: "IS",
		status: "pending",
		actions: map[string]transition{
			"cancel": setStatus("cancelled", "pending", "active"),
		},
	},
	"blocks": {
		prefix:   "BLC",
		defaults: map[string]any{"active": true},
		actions: map[string]transition{
			"disable": setFlag("active", false),
			"enable":  setFlag("active", true),
		},
	},
	"verification_details": {prefix: "VD"},
	"outbound_payments": {
		prefix: "OUT",
		status: "pending_approval",
		actions: map[string]transition{
			"approve": setStatus("scheduled", "pending_approval"),
			"cancel":  setStatus("cancelled", "verifying", "pending_approval", "scheduled"),
		},
	},
}
