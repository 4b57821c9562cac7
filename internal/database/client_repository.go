package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
)

// ClientRepository handles database operations for clients
type ClientRepository struct {
	db DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `
	id, name, phone, email, residency_status, employment_status,
	monthly_salary, monthly_liabilities, loan_amount, estimated_property_value,
	status, converted_from_lead_id, assigned_to_id, created_at, updated_at
`

// Create creates a new client
func (r *ClientRepository) Create(client *models.Client) error {
	query := `
		INSERT INTO clients (
			id, name, phone, email, residency_status, employment_status,
			monthly_salary, monthly_liabilities, loan_amount, estimated_property_value,
			status, converted_from_lead_id, assigned_to_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		client.ID, client.Name, client.Phone, client.Email,
		client.Residency, client.Employment,
		client.MonthlySalary, client.MonthlyLiabilities, client.LoanAmount,
		client.EstimatedPropertyValue, client.Status,
		client.ConvertedFromLeadID, client.AssignedToID,
	).Scan(&client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(clientID uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client := &models.Client{}
	if err := r.db.Get(client, query, clientID); err != nil {
		return nil, err
	}
	return client, nil
}

// List retrieves a page of clients matching the filter plus the total count
func (r *ClientRepository) List(filter models.ClientListFilter) ([]models.Client, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM clients WHERE `+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(
		`SELECT %s FROM clients WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		clientColumns, whereClause, len(args)-1, len(args),
	)

	clients := []models.Client{}
	if err := r.db.Select(&clients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

// Update applies a partial update to a client's identity and financial inputs
func (r *ClientRepository) Update(clientID uuid.UUID, req *models.UpdateClientRequest) error {
	query := `
		UPDATE clients
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    residency_status = COALESCE($4, residency_status),
		    employment_status = COALESCE($5, employment_status),
		    monthly_salary = COALESCE($6, monthly_salary),
		    monthly_liabilities = COALESCE($7, monthly_liabilities),
		    loan_amount = COALESCE($8, loan_amount),
		    estimated_property_value = COALESCE($9, estimated_property_value),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(
		query,
		clientID, req.Name, req.Email, req.Residency, req.Employment,
		req.MonthlySalary, req.MonthlyLiabilities, req.LoanAmount,
		req.EstimatedPropertyValue,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
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

// UpdateStatus moves a client to a new status
func (r *ClientRepository) UpdateStatus(clientID uuid.UUID, status pipeline.ClientStatus) error {
	result, err := r.db.Exec(
		`UPDATE clients SET status = $2, updated_at = NOW() WHERE id = $1`,
		clientID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update client status: %w", err)
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
