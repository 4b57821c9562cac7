package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
)

// SourceRepository handles database operations for lead sources
type SourceRepository struct {
	db DB
}

// NewSourceRepository creates a new SourceRepository
func NewSourceRepository(db DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Create registers a new source
func (r *SourceRepository) Create(s *models.Source) error {
	query := `
		INSERT INTO sources (id, name, channel, response_sla_minutes, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(query, s.ID, s.Name, s.Channel, s.ResponseSLAMinutes, s.Active).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}
	return nil
}

// GetByID retrieves a source by ID
func (r *SourceRepository) GetByID(sourceID uuid.UUID) (*models.Source, error) {
	query := `
		SELECT id, name, channel, response_sla_minutes, active, created_at, updated_at
		FROM sources
		WHERE id = $1
	`

	s := &models.Source{}
	if err := r.db.Get(s, query, sourceID); err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves all sources
func (r *SourceRepository) List() ([]models.Source, error) {
	query := `
		SELECT id, name, channel, response_sla_minutes, active, created_at, updated_at
		FROM sources
		ORDER BY name ASC
	`

	sources := []models.Source{}
	if err := r.db.Select(&sources, query); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return sources, nil
}

// Update applies a partial update to a source
func (r *SourceRepository) Update(sourceID uuid.UUID, req *models.UpdateSourceRequest) error {
	query := `
		UPDATE sources
		SET name = COALESCE($2, name),
		    channel = COALESCE($3, channel),
		    response_sla_minutes = COALESCE($4, response_sla_minutes),
		    active = COALESCE($5, active),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, sourceID, req.Name, req.Channel, req.ResponseSLAMinutes, req.Active)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
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

// BankProductRepository handles database operations for bank products
type BankProductRepository struct {
	db DB
}

// NewBankProductRepository creates a new BankProductRepository
func NewBankProductRepository(db DB) *BankProductRepository {
	return &BankProductRepository{db: db}
}

const bankProductColumns = `
	id, bank_name, product_name, rate_type, rate_percent, fixed_period_years,
	min_loan_amount, max_ltv, active, created_at, updated_at
`

// Create registers a new bank product
func (r *BankProductRepository) Create(p *models.BankProduct) error {
	query := `
		INSERT INTO bank_products (
			id, bank_name, product_name, rate_type, rate_percent,
			fixed_period_years, min_loan_amount, max_ltv, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		p.ID, p.BankName, p.ProductName, p.RateType, p.RatePercent,
		p.FixedPeriodYears, p.MinLoanAmount, p.MaxLTV, p.Active,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bank product: %w", err)
	}
	return nil
}

// GetByID retrieves a bank product by ID
func (r *BankProductRepository) GetByID(productID uuid.UUID) (*models.BankProduct, error) {
	query := `SELECT ` + bankProductColumns + ` FROM bank_products WHERE id = $1`

	p := &models.BankProduct{}
	if err := r.db.Get(p, query, productID); err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves bank products, optionally only active ones
func (r *BankProductRepository) List(activeOnly bool) ([]models.BankProduct, error) {
	query := `SELECT ` + bankProductColumns + ` FROM bank_products`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY bank_name ASC, product_name ASC`

	products := []models.BankProduct{}
	if err := r.db.Select(&products, query); err != nil {
		return nil, fmt.Errorf("failed to list bank products: %w", err)
	}
	return products, nil
}

// Deactivate retires a bank product from selection
func (r *BankProductRepository) Deactivate(productID uuid.UUID) error {
	result, err := r.db.Exec(
		`UPDATE bank_products SET active = FALSE, updated_at = NOW() WHERE id = $1`,
		productID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate bank product: %w", err)
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
