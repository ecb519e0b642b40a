package transport

import (
	"encoding/json"
	"strings"

	"github.com/nprokhorov/sgdns-discovery/internal/reconcile"
)

// reconciliationRequest is Trigger 2's shape (spec.md §6). ManualSync
// is a string, not a bool, matching the source's "true"/"false"
// literal comparison.
type reconciliationRequest struct {
	ManualSync   string `json:"manual_sync"`
	AsgName      string `json:"asg_name"`
	HostedZoneID string `json:"hosted_zone_id"`
	RecordName   string `json:"record_name"`
	RecordType   string `json:"record_type"`
	WhatIf       *bool  `json:"what_if"`
}

// ReconciliationInvocation is the decoded Trigger 2 request: either a
// single-record manual selector or a bulk sweep.
type ReconciliationInvocation struct {
	Manual   bool
	Selector reconcile.ManualSelector
	WhatIf   bool
}

// DecodeReconciliationInvocation implements spec.md §6 Trigger 2.
// whatIfDefault is the reconciliation_what_if environment default,
// overridden per-invocation by an explicit "what_if" field.
func DecodeReconciliationInvocation(raw []byte, whatIfDefault bool) (ReconciliationInvocation, *Response) {
	var req reconciliationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		resp := statusResponse(500, "malformed reconciliation invocation: "+err.Error())
		return ReconciliationInvocation{}, &resp
	}

	whatIf := whatIfDefault
	if req.WhatIf != nil {
		whatIf = *req.WhatIf
	}

	if strings.EqualFold(req.ManualSync, "true") {
		return ReconciliationInvocation{
			Manual: true,
			WhatIf: whatIf,
			Selector: reconcile.ManualSelector{
				SgName:     req.AsgName,
				ZoneID:     req.HostedZoneID,
				RecordName: req.RecordName,
				RecordType: req.RecordType,
			},
		}, nil
	}

	return ReconciliationInvocation{Manual: false, WhatIf: whatIf}, nil
}
