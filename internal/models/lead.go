package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
	"github.com/gulfbridge/mortgage-crm-backend/pkg/validator"
)

// Lead represents a prospective contact before qualification
type Lead struct {
	ID                uuid.UUID           `json:"id" db:"id"`
	Name              string              `json:"name" db:"name"`
	Phone             string              `json:"phone" db:"phone"`
	Email             NullString          `json:"email,omitempty" db:"email"`
	Intent            NullString          `json:"intent,omitempty" db:"intent"`
	SourceID          *uuid.UUID          `json:"source_id,omitempty" db:"source_id"`
	Campaign          NullString          `json:"campaign,omitempty" db:"campaign"`
	Status            pipeline.LeadStatus `json:"status" db:"status"`
	AssignedToID      *uuid.UUID          `json:"assigned_to_id,omitempty" db:"assigned_to_id"`
	FirstResponseAt   NullTime            `json:"first_response_at,omitempty" db:"first_response_at"`
	SLABreached       bool                `json:"sla_breached" db:"sla_breached"`
	ConvertedClientID *uuid.UUID          `json:"converted_client_id,omitempty" db:"converted_client_id"`
	CreatedAt         time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" db:"updated_at"`
}

// LeadDetail is a lead with its activity history attached
type LeadDetail struct {
	Lead
	CallLogs      []CallLog            `json:"call_logs"`
	Notes         []Note               `json:"notes"`
	StatusChanges []StatusChangeRecord `json:"status_changes"`
}

// CreateLeadRequest represents the request to capture a lead
type CreateLeadRequest struct {
	Name     string  `json:"name" binding:"required"`
	Phone    string  `json:"phone" binding:"required"`
	Email    *string `json:"email,omitempty"`
	Intent   *string `json:"intent,omitempty"`
	SourceID *string `json:"source_id,omitempty"`
	Campaign *string `json:"campaign,omitempty"`
}

// DropLeadRequest represents the request to drop a lead
type DropLeadRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// LeadListFilter represents query parameters for listing leads
type LeadListFilter struct {
	Status   string
	SourceID string
	Search   string
	Page     int
	PageSize int
}

// Validate validates the CreateLeadRequest and normalizes the phone
// number and email in place.
func (req *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name cannot be blank")
	}
	contacts := validator.NewContactValidator()
	phone, err := contacts.ValidatePhone(req.Phone)
	if err != nil {
		return err
	}
	req.Phone = phone
	if req.Email != nil {
		email, err := contacts.ValidateEmail(*req.Email)
		if err != nil {
			return err
		}
		req.Email = &email
	}
	if req.SourceID != nil {
		if _, err := uuid.Parse(*req.SourceID); err != nil {
			return errors.New("invalid source_id")
		}
	}
	return nil
}
