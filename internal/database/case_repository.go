package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
)

// CaseRepository handles database operations for mortgage cases
type CaseRepository struct {
	db DB
}

// NewCaseRepository creates a new CaseRepository
func NewCaseRepository(db DB) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `
	id, case_number, client_id, case_type, service_type, application_type,
	mortgage_type, emirate, transaction_type, property_status,
	loan_amount, estimated_property_value, mortgage_term_years, mortgage_term_months,
	bank_name, rate_type, rate_percent, fixed_period_years,
	stage, assigned_to_id, created_at, updated_at
`

// Create creates a new case
func (r *CaseRepository) Create(c *models.Case) error {
	query := `
		INSERT INTO cases (
			id, case_number, client_id, case_type, service_type, application_type,
			mortgage_type, emirate, transaction_type, property_status,
			loan_amount, estimated_property_value, mortgage_term_years, mortgage_term_months,
			bank_name, rate_type, rate_percent, fixed_period_years,
			stage, assigned_to_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		c.ID, c.CaseNumber, c.ClientID, c.CaseType, c.ServiceType, c.ApplicationType,
		c.MortgageType, c.Emirate, c.TransactionType, c.PropertyStatus,
		c.LoanAmount, c.EstimatedPropertyValue, c.MortgageTermYears, c.MortgageTermMonths,
		c.BankName, c.RateType, c.RatePercent, c.FixedPeriodYears,
		c.Stage, c.AssignedToID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}
	return nil
}

// GetByID retrieves a case by ID
func (r *CaseRepository) GetByID(caseID uuid.UUID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`

	c := &models.Case{}
	if err := r.db.Get(c, query, caseID); err != nil {
		return nil, err
	}
	return c, nil
}

// List retrieves a page of cases matching the filter plus the total count
func (r *CaseRepository) List(filter models.CaseListFilter) ([]models.Case, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Stage != "" {
		args = append(args, filter.Stage)
		where = append(where, fmt.Sprintf("stage = $%d", len(args)))
	}
	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(case_number ILIKE $%d OR bank_name ILIKE $%d)", n, n))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM cases WHERE `+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(
		`SELECT %s FROM cases WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		caseColumns, whereClause, len(args)-1, len(args),
	)

	cases := []models.Case{}
	if err := r.db.Select(&cases, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, total, nil
}

// ListByClient retrieves all cases for one client, newest first
func (r *CaseRepository) ListByClient(clientID uuid.UUID) ([]models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE client_id = $1 ORDER BY created_at DESC`

	cases := []models.Case{}
	if err := r.db.Select(&cases, query, clientID); err != nil {
		return nil, fmt.Errorf("failed to list client cases: %w", err)
	}
	return cases, nil
}

// UpdateStage moves a case to a new stage
func (r *CaseRepository) UpdateStage(caseID uuid.UUID, stage pipeline.Stage) error {
	result, err := r.db.Exec(
		`UPDATE cases SET stage = $2, updated_at = NOW() WHERE id = $1`,
		caseID, stage,
	)
	if err != nil {
		return fmt.Errorf("failed to update case stage: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// NextCaseNumber allocates the next display code for the given year,
// formatted MC-YYYY-NNNN. Uses a per-year sequence row so concurrent
// creations never collide.
func (r *CaseRepository) NextCaseNumber(year int) (string, error) {
	query := `
		INSERT INTO case_number_sequences (year, last_value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_value = case_number_sequences.last_value + 1
		RETURNING last_value
	`

	var seq int
	if err := r.db.QueryRow(query, year).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to allocate case number: %w", err)
	}
	return fmt.Sprintf("MC-%d-%04d", year, seq), nil
}
