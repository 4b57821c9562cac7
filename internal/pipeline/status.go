package pipeline

import (
	"strings"
	"time"
)

// LeadStatus represents the lifecycle status of a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusDropped   LeadStatus = "dropped"
	LeadStatusConverted LeadStatus = "converted"
)

// ClientStatus represents the lifecycle status of a client.
type ClientStatus string

const (
	ClientStatusActive        ClientStatus = "active"
	ClientStatusNotEligible   ClientStatus = "notEligible"
	ClientStatusNotProceeding ClientStatus = "notProceeding"
	ClientStatusConverted     ClientStatus = "converted"
)

// ChangeReason markers stamped into status history so the activity feed can
// distinguish conversions from plain edits.
const (
	ChangeReasonConvertedFromLead = "converted_from_lead"
)

// Allowed status transitions. Terminal statuses map to an empty set.
var leadTransitions = map[LeadStatus]map[LeadStatus]bool{
	LeadStatusNew:       {LeadStatusDropped: true, LeadStatusConverted: true},
	LeadStatusDropped:   {},
	LeadStatusConverted: {},
}

var clientTransitions = map[ClientStatus]map[ClientStatus]bool{
	ClientStatusActive:        {ClientStatusNotEligible: true, ClientStatusNotProceeding: true, ClientStatusConverted: true},
	ClientStatusNotEligible:   {},
	ClientStatusNotProceeding: {},
	ClientStatusConverted:     {},
}

// StatusChange is the history record for a lead or client status transition.
type StatusChange struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Reason     string    `json:"reason,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

// IsTerminal reports whether the lead status admits no further transitions.
func (s LeadStatus) IsTerminal() bool {
	next, ok := leadTransitions[s]
	return ok && len(next) == 0
}

// IsTerminal reports whether the client status admits no further transitions.
func (s ClientStatus) IsTerminal() bool {
	next, ok := clientTransitions[s]
	return ok && len(next) == 0
}

// TransitionLead validates a lead status change and produces its history
// record. Dropping requires a reason; conversion does not.
func TransitionLead(current, target LeadStatus, reason string, now time.Time) (StatusChange, error) {
	next, ok := leadTransitions[current]
	if !ok {
		return StatusChange{}, ErrInvalidTransition
	}
	if len(next) == 0 {
		return StatusChange{}, ErrStatusTerminal
	}
	if !next[target] {
		return StatusChange{}, ErrInvalidTransition
	}
	if target == LeadStatusDropped && strings.TrimSpace(reason) == "" {
		return StatusChange{}, ErrReasonRequired
	}
	return StatusChange{
		FromStatus: string(current),
		ToStatus:   string(target),
		Reason:     reason,
		ChangedAt:  now,
	}, nil
}

// TransitionClient validates a client status change and produces its history
// record. The not-eligible and not-proceeding paths require a reason;
// conversion via case creation does not.
func TransitionClient(current, target ClientStatus, reason string, now time.Time) (StatusChange, error) {
	next, ok := clientTransitions[current]
	if !ok {
		return StatusChange{}, ErrInvalidTransition
	}
	if len(next) == 0 {
		return StatusChange{}, ErrStatusTerminal
	}
	if !next[target] {
		return StatusChange{}, ErrInvalidTransition
	}
	if target != ClientStatusConverted && strings.TrimSpace(reason) == "" {
		return StatusChange{}, ErrReasonRequired
	}
	return StatusChange{
		FromStatus: string(current),
		ToStatus:   string(target),
		Reason:     reason,
		ChangedAt:  now,
	}, nil
}
