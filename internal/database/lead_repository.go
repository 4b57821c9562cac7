package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
)

// LeadRepository handles database operations for leads
type LeadRepository struct {
	db DB
}

// NewLeadRepository creates a new LeadRepository
func NewLeadRepository(db DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `
	id, name, phone, email, intent, source_id, campaign, status,
	assigned_to_id, first_response_at, sla_breached, converted_client_id,
	created_at, updated_at
`

// Create creates a new lead with status new
func (r *LeadRepository) Create(lead *models.Lead) error {
	query := `
		INSERT INTO leads (id, name, phone, email, intent, source_id, campaign, status, assigned_to_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		lead.ID, lead.Name, lead.Phone, lead.Email, lead.Intent,
		lead.SourceID, lead.Campaign, lead.Status, lead.AssignedToID,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// GetByID retrieves a lead by ID
func (r *LeadRepository) GetByID(leadID uuid.UUID) (*models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead := &models.Lead{}
	if err := r.db.Get(lead, query, leadID); err != nil {
		return nil, err
	}
	return lead, nil
}

// List retrieves a page of leads matching the filter, newest first,
// along with the total match count for pagination.
func (r *LeadRepository) List(filter models.LeadListFilter) ([]models.Lead, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.SourceID != "" {
		args = append(args, filter.SourceID)
		where = append(where, fmt.Sprintf("source_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM leads WHERE ` + whereClause
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(
		`SELECT %s FROM leads WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		leadColumns, whereClause, len(args)-1, len(args),
	)

	leads := []models.Lead{}
	if err := r.db.Select(&leads, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, total, nil
}

// UpdateStatus moves a lead to a new status
func (r *LeadRepository) UpdateStatus(leadID uuid.UUID, status pipeline.LeadStatus) error {
	result, err := r.db.Exec(
		`UPDATE leads SET status = $2, updated_at = NOW() WHERE id = $1`,
		leadID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
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

// LinkConvertedClient records the client a lead was converted into
func (r *LeadRepository) LinkConvertedClient(leadID, clientID uuid.UUID) error {
	_, err := r.db.Exec(
		`UPDATE leads SET converted_client_id = $2, updated_at = NOW() WHERE id = $1`,
		leadID, clientID,
	)
	if err != nil {
		return fmt.Errorf("failed to link converted client: %w", err)
	}
	return nil
}

// TouchFirstResponse stamps the first response time if not already set.
// Called when the first call log or note lands on a lead.
func (r *LeadRepository) TouchFirstResponse(leadID uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(
		`UPDATE leads SET first_response_at = $2 WHERE id = $1 AND first_response_at IS NULL`,
		leadID, at,
	)
	if err != nil {
		return fmt.Errorf("failed to stamp first response: %w", err)
	}
	return nil
}

// MarkSLABreaches flags new leads whose source response budget has elapsed
// without a first response. Returns the number of leads flagged.
func (r *LeadRepository) MarkSLABreaches(now time.Time) (int64, error) {
	query := `
		UPDATE leads l
		SET sla_breached = TRUE
		FROM sources s
		WHERE l.source_id = s.id
		  AND l.status = $1
		  AND l.sla_breached = FALSE
		  AND l.first_response_at IS NULL
		  AND l.created_at + (s.response_sla_minutes * INTERVAL '1 minute') < $2
	`

	result, err := r.db.Exec(query, pipeline.LeadStatusNew, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark SLA breaches: %w", err)
	}
	return result.RowsAffected()
}
