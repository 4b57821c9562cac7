package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CallDirection represents whether a call was placed or received
type CallDirection string

const (
	CallDirectionOutbound CallDirection = "outbound"
	CallDirectionInbound  CallDirection = "inbound"
)

// CallLog represents one logged call against a lead, client or case.
// Exactly one of LeadID, ClientID and CaseID is set; each entity type keeps
// its own foreign key rather than a string-typed entity union.
type CallLog struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	LeadID          *uuid.UUID    `json:"lead_id,omitempty" db:"lead_id"`
	ClientID        *uuid.UUID    `json:"client_id,omitempty" db:"client_id"`
	CaseID          *uuid.UUID    `json:"case_id,omitempty" db:"case_id"`
	Direction       CallDirection `json:"direction" db:"direction"`
	DurationSeconds int           `json:"duration_seconds" db:"duration_seconds"`
	Outcome         NullString    `json:"outcome,omitempty" db:"outcome"`
	Notes           NullString    `json:"notes,omitempty" db:"notes"`
	CreatedByID     uuid.UUID     `json:"created_by_id" db:"created_by_id"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}

// Note represents a free-text note on a lead, client or case
type Note struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	LeadID      *uuid.UUID `json:"lead_id,omitempty" db:"lead_id"`
	ClientID    *uuid.UUID `json:"client_id,omitempty" db:"client_id"`
	CaseID      *uuid.UUID `json:"case_id,omitempty" db:"case_id"`
	Body        string     `json:"body" db:"body"`
	CreatedByID uuid.UUID  `json:"created_by_id" db:"created_by_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// StatusChangeRecord is a persisted lead/client status transition
type StatusChangeRecord struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	LeadID      *uuid.UUID `json:"lead_id,omitempty" db:"lead_id"`
	ClientID    *uuid.UUID `json:"client_id,omitempty" db:"client_id"`
	FromStatus  string     `json:"from_status" db:"from_status"`
	ToStatus    string     `json:"to_status" db:"to_status"`
	Reason      NullString `json:"reason,omitempty" db:"reason"`
	ChangedByID uuid.UUID  `json:"changed_by_id" db:"changed_by_id"`
	ChangedAt   time.Time  `json:"changed_at" db:"changed_at"`
}

// StageChangeRecord is a persisted case stage transition
type StageChangeRecord struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CaseID      uuid.UUID  `json:"case_id" db:"case_id"`
	FromStage   string     `json:"from_stage" db:"from_stage"`
	ToStage     string     `json:"to_stage" db:"to_stage"`
	Notes       NullString `json:"notes,omitempty" db:"notes"`
	ChangedByID uuid.UUID  `json:"changed_by_id" db:"changed_by_id"`
	ChangedAt   time.Time  `json:"changed_at" db:"changed_at"`
}

// CreateCallLogRequest represents the request to log a call
type CreateCallLogRequest struct {
	Direction       string  `json:"direction" binding:"required"`
	DurationSeconds int     `json:"duration_seconds"`
	Outcome         *string `json:"outcome,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// CreateNoteRequest represents the request to append a note
type CreateNoteRequest struct {
	Body string `json:"body" binding:"required"`
}

// Validate validates the CreateCallLogRequest
func (req *CreateCallLogRequest) Validate() error {
	direction := CallDirection(req.Direction)
	if direction != CallDirectionOutbound && direction != CallDirectionInbound {
		return errors.New("invalid direction: must be outbound or inbound")
	}
	if req.DurationSeconds < 0 {
		return errors.New("duration_seconds cannot be negative")
	}
	return nil
}
