package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
	"github.com/gulfbridge/mortgage-crm-backend/pkg/validator"
)

// Client represents a qualified lead with financial inputs captured
type Client struct {
	ID         uuid.UUID           `json:"id" db:"id"`
	Name       string              `json:"name" db:"name"`
	Phone      string              `json:"phone" db:"phone"`
	Email      NullString          `json:"email,omitempty" db:"email"`
	Residency  pipeline.Residency  `json:"residency_status" db:"residency_status"`
	Employment pipeline.Employment `json:"employment_status" db:"employment_status"`

	// Financial inputs. The derived DBR/LTV/max-loan figures are never
	// stored; they are recomputed from these four fields on every read.
	MonthlySalary          float64     `json:"monthly_salary" db:"monthly_salary"`
	MonthlyLiabilities     NullFloat64 `json:"monthly_liabilities,omitempty" db:"monthly_liabilities"`
	LoanAmount             NullFloat64 `json:"loan_amount,omitempty" db:"loan_amount"`
	EstimatedPropertyValue NullFloat64 `json:"estimated_property_value,omitempty" db:"estimated_property_value"`

	Status              pipeline.ClientStatus `json:"status" db:"status"`
	ConvertedFromLeadID *uuid.UUID            `json:"converted_from_lead_id,omitempty" db:"converted_from_lead_id"`
	AssignedToID        *uuid.UUID            `json:"assigned_to_id,omitempty" db:"assigned_to_id"`
	CreatedAt           time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at" db:"updated_at"`
}

// Eligibility is the derived view of a client's financial position.
// Nil figures mean "cannot be computed from the inputs entered so far",
// which is distinct from zero.
type Eligibility struct {
	EstimatedDBR  *float64 `json:"estimated_dbr"`
	EstimatedLTV  *float64 `json:"estimated_ltv"`
	MaxLoanAmount *float64 `json:"max_loan_amount"`
	DBRLimit      float64  `json:"dbr_limit"`
	LTVLimit      float64  `json:"ltv_limit"`
	DBRExceeded   bool     `json:"dbr_exceeded"`
	LTVExceeded   bool     `json:"ltv_exceeded"`
}

// Eligibility recomputes the derived figures from the client's inputs.
func (c *Client) Eligibility() Eligibility {
	e := Eligibility{
		EstimatedDBR:  pipeline.DBR(c.MonthlySalary, c.MonthlyLiabilities.Ptr()),
		EstimatedLTV:  pipeline.LTV(c.LoanAmount.Ptr(), c.EstimatedPropertyValue.Ptr()),
		MaxLoanAmount: pipeline.MaxLoan(c.MonthlySalary, c.MonthlyLiabilities.Ptr()),
		DBRLimit:      pipeline.DBRLimit(),
		LTVLimit:      pipeline.LTVLimit(c.Residency),
	}
	if e.EstimatedDBR != nil && *e.EstimatedDBR > e.DBRLimit {
		e.DBRExceeded = true
	}
	if e.EstimatedLTV != nil && *e.EstimatedLTV > e.LTVLimit {
		e.LTVExceeded = true
	}
	return e
}

// ClientDetail is a client with documents and history attached
type ClientDetail struct {
	Client
	Eligibility   Eligibility             `json:"eligibility"`
	Documents     []Document              `json:"documents"`
	MissingKinds  []pipeline.DocumentKind `json:"missing_document_kinds"`
	CallLogs      []CallLog               `json:"call_logs"`
	Notes         []Note                  `json:"notes"`
	StatusChanges []StatusChangeRecord    `json:"status_changes"`
}

// CreateClientRequest represents the request to create a client directly
// (without going through a lead)
type CreateClientRequest struct {
	Name                   string   `json:"name" binding:"required"`
	Phone                  string   `json:"phone" binding:"required"`
	Email                  *string  `json:"email,omitempty"`
	Residency              string   `json:"residency_status" binding:"required"`
	Employment             string   `json:"employment_status" binding:"required"`
	MonthlySalary          float64  `json:"monthly_salary" binding:"required,gt=0"`
	MonthlyLiabilities     *float64 `json:"monthly_liabilities,omitempty"`
	LoanAmount             *float64 `json:"loan_amount,omitempty"`
	EstimatedPropertyValue *float64 `json:"estimated_property_value,omitempty"`
}

// UpdateClientRequest represents the request to update client financials
type UpdateClientRequest struct {
	Name                   *string  `json:"name,omitempty"`
	Email                  *string  `json:"email,omitempty"`
	Residency              *string  `json:"residency_status,omitempty"`
	Employment             *string  `json:"employment_status,omitempty"`
	MonthlySalary          *float64 `json:"monthly_salary,omitempty"`
	MonthlyLiabilities     *float64 `json:"monthly_liabilities,omitempty"`
	LoanAmount             *float64 `json:"loan_amount,omitempty"`
	EstimatedPropertyValue *float64 `json:"estimated_property_value,omitempty"`
}

// MarkClientRequest represents the request for a terminal status transition
type MarkClientRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ClientListFilter represents query parameters for listing clients
type ClientListFilter struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

func validResidency(raw string) bool {
	switch pipeline.Residency(raw) {
	case pipeline.ResidencyUAENational, pipeline.ResidencyUAEResident, pipeline.ResidencyNonResident:
		return true
	}
	return false
}

func validEmployment(raw string) bool {
	switch pipeline.Employment(raw) {
	case pipeline.EmploymentSalaried, pipeline.EmploymentSelfEmployed:
		return true
	}
	return false
}

// Validate validates the CreateClientRequest and normalizes the phone
// number and email in place.
func (req *CreateClientRequest) Validate() error {
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
	if !validResidency(req.Residency) {
		return errors.New("invalid residency_status: must be uaeNational, uaeResident, or nonResident")
	}
	if !validEmployment(req.Employment) {
		return errors.New("invalid employment_status: must be salaried or selfEmployed")
	}
	if req.MonthlyLiabilities != nil && *req.MonthlyLiabilities < 0 {
		return errors.New("monthly_liabilities cannot be negative")
	}
	if req.LoanAmount != nil && *req.LoanAmount < 0 {
		return errors.New("loan_amount cannot be negative")
	}
	if req.EstimatedPropertyValue != nil && *req.EstimatedPropertyValue < 0 {
		return errors.New("estimated_property_value cannot be negative")
	}
	return nil
}

// Validate validates the UpdateClientRequest and normalizes the email
// in place.
func (req *UpdateClientRequest) Validate() error {
	if req.Email != nil {
		email, err := validator.NewContactValidator().ValidateEmail(*req.Email)
		if err != nil {
			return err
		}
		req.Email = &email
	}
	if req.Residency != nil && !validResidency(*req.Residency) {
		return errors.New("invalid residency_status")
	}
	if req.Employment != nil && !validEmployment(*req.Employment) {
		return errors.New("invalid employment_status")
	}
	if req.MonthlySalary != nil && *req.MonthlySalary <= 0 {
		return errors.New("monthly_salary must be greater than 0")
	}
	if req.MonthlyLiabilities != nil && *req.MonthlyLiabilities < 0 {
		return errors.New("monthly_liabilities cannot be negative")
	}
	if req.LoanAmount != nil && *req.LoanAmount < 0 {
		return errors.New("loan_amount cannot be negative")
	}
	if req.EstimatedPropertyValue != nil && *req.EstimatedPropertyValue < 0 {
		return errors.New("estimated_property_value cannot be negative")
	}
	return nil
}
