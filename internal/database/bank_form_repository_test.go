package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
)

func TestInitBankFormChecklist(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBankFormRepository(&mockDatabase{db: db})
	caseID := uuid.New()

	// One placeholder row per required kind
	for range pipeline.RequiredBankFormKinds() {
		mock.ExpectExec(`INSERT INTO bank_forms`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, repo.InitChecklist(caseID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkBankFormUploaded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBankFormRepository(&mockDatabase{db: db})
	caseID := uuid.New()
	formID := uuid.New()
	now := time.Now()

	formRow := func(kind string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "case_id", "kind", "status", "file_key", "file_name",
			"uploaded_at", "created_at", "updated_at",
		}).AddRow(formID, caseID, kind, "uploaded", "uploads/cases/x.pdf", "kfs.pdf", now, now, now)
	}

	t.Run("Required Kind Updates In Place", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE bank_forms`).
			WithArgs(caseID, pipeline.BankFormKFS, pipeline.FormStatusUploaded, "uploads/cases/x.pdf", "kfs.pdf", now).
			WillReturnRows(formRow("kfs"))

		form, err := repo.MarkUploaded(caseID, pipeline.BankFormKFS, "uploads/cases/x.pdf", "kfs.pdf", now)
		require.NoError(t, err)
		assert.Equal(t, pipeline.BankFormKFS, form.Kind)
		assert.Equal(t, pipeline.FormStatusUploaded, form.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other Kind Inserts New Row", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO bank_forms`).
			WillReturnRows(formRow("other"))

		form, err := repo.MarkUploaded(caseID, pipeline.BankFormOther, "uploads/cases/y.pdf", "misc.pdf", now)
		require.NoError(t, err)
		assert.Equal(t, pipeline.BankFormOther, form.Kind)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestResetBankFormToMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBankFormRepository(&mockDatabase{db: db})
	formID := uuid.New()

	t.Run("Required Kind Resets", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bank_forms`).
			WithArgs(formID, pipeline.FormStatusMissing).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.ResetToMissing(formID, pipeline.BankFormKFS))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other Kind Deletes Row", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM bank_forms`).
			WithArgs(formID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.ResetToMissing(formID, pipeline.BankFormOther))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
