package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
)

// BankFormRepository handles database operations for case bank-form
// checklist entries
type BankFormRepository struct {
	db DB
}

// NewBankFormRepository creates a new BankFormRepository
func NewBankFormRepository(db DB) *BankFormRepository {
	return &BankFormRepository{db: db}
}

const bankFormColumns = `
	id, case_id, kind, status, file_key, file_name, uploaded_at, created_at, updated_at
`

// InitChecklist creates one missing placeholder row per required kind for a
// newly created case.
func (r *BankFormRepository) InitChecklist(caseID uuid.UUID) error {
	query := `
		INSERT INTO bank_forms (id, case_id, kind, status)
		VALUES ($1, $2, $3, $4)
	`

	for _, kind := range pipeline.RequiredBankFormKinds() {
		if _, err := r.db.Exec(query, uuid.New(), caseID, kind, pipeline.FormStatusMissing); err != nil {
			return fmt.Errorf("failed to init bank form checklist: %w", err)
		}
	}
	return nil
}

// GetByCase retrieves all bank form entries for a case in checklist order
func (r *BankFormRepository) GetByCase(caseID uuid.UUID) ([]models.BankForm, error) {
	query := `SELECT ` + bankFormColumns + ` FROM bank_forms WHERE case_id = $1 ORDER BY created_at ASC, id ASC`

	forms := []models.BankForm{}
	if err := r.db.Select(&forms, query, caseID); err != nil {
		return nil, fmt.Errorf("failed to list bank forms: %w", err)
	}
	return forms, nil
}

// GetByID retrieves one bank form entry
func (r *BankFormRepository) GetByID(formID uuid.UUID) (*models.BankForm, error) {
	query := `SELECT ` + bankFormColumns + ` FROM bank_forms WHERE id = $1`

	form := &models.BankForm{}
	if err := r.db.Get(form, query, formID); err != nil {
		return nil, err
	}
	return form, nil
}

// MarkUploaded flips a checklist entry to uploaded with its file reference.
// The catch-all kind gets a fresh row per upload instead of overwriting.
func (r *BankFormRepository) MarkUploaded(caseID uuid.UUID, kind pipeline.BankFormKind, fileKey, fileName string, at time.Time) (*models.BankForm, error) {
	if kind == pipeline.BankFormOther {
		form := &models.BankForm{}
		query := `
			INSERT INTO bank_forms (id, case_id, kind, status, file_key, file_name, uploaded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING ` + bankFormColumns

		if err := r.db.Get(form, query, uuid.New(), caseID, kind, pipeline.FormStatusUploaded, fileKey, fileName, at); err != nil {
			return nil, fmt.Errorf("failed to insert bank form: %w", err)
		}
		return form, nil
	}

	form := &models.BankForm{}
	query := `
		UPDATE bank_forms
		SET status = $3, file_key = $4, file_name = $5, uploaded_at = $6, updated_at = NOW()
		WHERE case_id = $1 AND kind = $2
		RETURNING ` + bankFormColumns

	if err := r.db.Get(form, query, caseID, kind, pipeline.FormStatusUploaded, fileKey, fileName, at); err != nil {
		return nil, fmt.Errorf("failed to mark bank form uploaded: %w", err)
	}
	return form, nil
}

// ResetToMissing clears an uploaded entry back to missing. Catch-all rows
// with no required slot are deleted instead.
func (r *BankFormRepository) ResetToMissing(formID uuid.UUID, kind pipeline.BankFormKind) error {
	if kind == pipeline.BankFormOther {
		if _, err := r.db.Exec(`DELETE FROM bank_forms WHERE id = $1`, formID); err != nil {
			return fmt.Errorf("failed to delete bank form: %w", err)
		}
		return nil
	}

	query := `
		UPDATE bank_forms
		SET status = $2, file_key = NULL, file_name = NULL, uploaded_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.Exec(query, formID, pipeline.FormStatusMissing); err != nil {
		return fmt.Errorf("failed to reset bank form: %w", err)
	}
	return nil
}
