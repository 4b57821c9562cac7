package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
)

// RateType represents the pricing structure of a bank product
type RateType string

const (
	RateTypeFixed    RateType = "fixed"
	RateTypeVariable RateType = "variable"
)

// Case represents a mortgage application for a client
type Case struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CaseNumber string    `json:"case_number" db:"case_number"`
	ClientID   uuid.UUID `json:"client_id" db:"client_id"`

	CaseType        NullString `json:"case_type,omitempty" db:"case_type"`
	ServiceType     NullString `json:"service_type,omitempty" db:"service_type"`
	ApplicationType NullString `json:"application_type,omitempty" db:"application_type"`
	MortgageType    NullString `json:"mortgage_type,omitempty" db:"mortgage_type"`
	Emirate         NullString `json:"emirate,omitempty" db:"emirate"`
	TransactionType NullString `json:"transaction_type,omitempty" db:"transaction_type"`
	PropertyStatus  NullString `json:"property_status,omitempty" db:"property_status"`

	LoanAmount             float64 `json:"loan_amount" db:"loan_amount"`
	EstimatedPropertyValue float64 `json:"estimated_property_value" db:"estimated_property_value"`
	MortgageTermYears      int     `json:"mortgage_term_years" db:"mortgage_term_years"`
	MortgageTermMonths     int     `json:"mortgage_term_months" db:"mortgage_term_months"`

	// Bank product fields, copied onto the case when a product is selected
	BankName         NullString  `json:"bank_name,omitempty" db:"bank_name"`
	RateType         NullString  `json:"rate_type,omitempty" db:"rate_type"`
	RatePercent      NullFloat64 `json:"rate_percent,omitempty" db:"rate_percent"`
	FixedPeriodYears NullFloat64 `json:"fixed_period_years,omitempty" db:"fixed_period_years"`

	Stage        pipeline.Stage `json:"stage" db:"stage"`
	AssignedToID *uuid.UUID     `json:"assigned_to_id,omitempty" db:"assigned_to_id"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// LTV computes the case's loan-to-value from its own amounts.
func (c *Case) LTV() *float64 {
	return pipeline.LTV(&c.LoanAmount, &c.EstimatedPropertyValue)
}

// CaseDetail is a case with its checklist and history attached
type CaseDetail struct {
	Case
	EstimatedLTV     *float64                `json:"estimated_ltv"`
	BankForms        []BankForm              `json:"bank_forms"`
	MissingFormKinds []pipeline.BankFormKind `json:"missing_form_kinds"`
	CallLogs         []CallLog               `json:"call_logs"`
	Notes            []Note                  `json:"notes"`
	StageChanges     []StageChangeRecord     `json:"stage_changes"`
}

// CreateCaseRequest represents the request to open a case for a client.
// Loan amount and property value are both required up front so LTV is
// meaningful from day one.
type CreateCaseRequest struct {
	CaseType        *string `json:"case_type,omitempty"`
	ServiceType     *string `json:"service_type,omitempty"`
	ApplicationType *string `json:"application_type,omitempty"`
	MortgageType    *string `json:"mortgage_type,omitempty"`
	Emirate         *string `json:"emirate,omitempty"`
	TransactionType *string `json:"transaction_type,omitempty"`
	PropertyStatus  *string `json:"property_status,omitempty"`

	LoanAmount             float64 `json:"loan_amount" binding:"required,gt=0"`
	EstimatedPropertyValue float64 `json:"estimated_property_value" binding:"required,gt=0"`
	MortgageTermYears      int     `json:"mortgage_term_years" binding:"required,gt=0"`
	MortgageTermMonths     int     `json:"mortgage_term_months"`

	BankName         *string  `json:"bank_name,omitempty"`
	RateType         *string  `json:"rate_type,omitempty"`
	RatePercent      *float64 `json:"rate_percent,omitempty"`
	FixedPeriodYears *float64 `json:"fixed_period_years,omitempty"`
}

// AdvanceCaseRequest represents the request to advance a case one stage
type AdvanceCaseRequest struct {
	Notes string `json:"notes,omitempty"`
}

// CloseCaseRequest represents the decline/withdraw request body
type CloseCaseRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SetStageRequest represents the manual stage correction request
type SetStageRequest struct {
	Stage string `json:"stage" binding:"required"`
	Notes string `json:"notes,omitempty"`
}

// CaseListFilter represents query parameters for listing cases
type CaseListFilter struct {
	Stage    string
	ClientID string
	Search   string
	Page     int
	PageSize int
}

// Validate validates the CreateCaseRequest
func (req *CreateCaseRequest) Validate() error {
	if req.RateType != nil {
		rt := RateType(*req.RateType)
		if rt != RateTypeFixed && rt != RateTypeVariable {
			return errors.New("invalid rate_type: must be fixed or variable")
		}
	}
	if req.MortgageTermMonths < 0 || req.MortgageTermMonths > 11 {
		return errors.New("mortgage_term_months must be between 0 and 11")
	}
	if req.RatePercent != nil && (*req.RatePercent < 0 || *req.RatePercent > 100) {
		return errors.New("rate_percent must be between 0 and 100")
	}
	return nil
}
