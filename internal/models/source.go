package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source represents a lead acquisition channel (portal, referral partner,
// campaign landing page). Its SLA budget drives the informational
// response-time sweep.
type Source struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	Channel            string    `json:"channel" db:"channel"`
	ResponseSLAMinutes int       `json:"response_sla_minutes" db:"response_sla_minutes"`
	Active             bool      `json:"active" db:"active"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// CreateSourceRequest represents the request to register a source
type CreateSourceRequest struct {
	Name               string `json:"name" binding:"required"`
	Channel            string `json:"channel" binding:"required"`
	ResponseSLAMinutes int    `json:"response_sla_minutes" binding:"required,gt=0"`
}

// UpdateSourceRequest represents the request to update a source
type UpdateSourceRequest struct {
	Name               *string `json:"name,omitempty"`
	Channel            *string `json:"channel,omitempty"`
	ResponseSLAMinutes *int    `json:"response_sla_minutes,omitempty"`
	Active             *bool   `json:"active,omitempty"`
}

// Validate validates the CreateSourceRequest
func (req *CreateSourceRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name cannot be blank")
	}
	return nil
}

// BankProduct represents a mortgage product offered by a partner bank
type BankProduct struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	BankName         string      `json:"bank_name" db:"bank_name"`
	ProductName      string      `json:"product_name" db:"product_name"`
	RateType         RateType    `json:"rate_type" db:"rate_type"`
	RatePercent      float64     `json:"rate_percent" db:"rate_percent"`
	FixedPeriodYears NullFloat64 `json:"fixed_period_years,omitempty" db:"fixed_period_years"`
	MinLoanAmount    NullFloat64 `json:"min_loan_amount,omitempty" db:"min_loan_amount"`
	MaxLTV           NullFloat64 `json:"max_ltv,omitempty" db:"max_ltv"`
	Active           bool        `json:"active" db:"active"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// CreateBankProductRequest represents the request to register a bank product
type CreateBankProductRequest struct {
	BankName         string   `json:"bank_name" binding:"required"`
	ProductName      string   `json:"product_name" binding:"required"`
	RateType         string   `json:"rate_type" binding:"required"`
	RatePercent      float64  `json:"rate_percent" binding:"required,gt=0"`
	FixedPeriodYears *float64 `json:"fixed_period_years,omitempty"`
	MinLoanAmount    *float64 `json:"min_loan_amount,omitempty"`
	MaxLTV           *float64 `json:"max_ltv,omitempty"`
}

// Validate validates the CreateBankProductRequest
func (req *CreateBankProductRequest) Validate() error {
	rt := RateType(req.RateType)
	if rt != RateTypeFixed && rt != RateTypeVariable {
		return errors.New("invalid rate_type: must be fixed or variable")
	}
	if rt == RateTypeFixed && (req.FixedPeriodYears == nil || *req.FixedPeriodYears <= 0) {
		return errors.New("fixed_period_years is required for fixed rate products")
	}
	if req.MaxLTV != nil && (*req.MaxLTV <= 0 || *req.MaxLTV > 100) {
		return errors.New("max_ltv must be between 0 and 100")
	}
	return nil
}
