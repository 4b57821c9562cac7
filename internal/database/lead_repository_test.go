package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
)

func TestCreateLead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(&mockDatabase{db: db})

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		lead := &models.Lead{
			ID:     uuid.New(),
			Name:   "Sara Ahmed",
			Phone:  "+971501234567",
			Status: pipeline.LeadStatusNew,
		}

		mock.ExpectQuery(`INSERT INTO leads`).
			WithArgs(
				lead.ID, lead.Name, lead.Phone, sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), lead.Status, sqlmock.AnyArg(),
			).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		err := repo.Create(lead)
		require.NoError(t, err)
		assert.Equal(t, now, lead.CreatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		lead := &models.Lead{ID: uuid.New(), Name: "x", Phone: "y", Status: pipeline.LeadStatusNew}

		mock.ExpectQuery(`INSERT INTO leads`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(lead)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create lead")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListLeads(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(&mockDatabase{db: db})

	leadID := uuid.New()
	now := time.Now()

	leadRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "name", "phone", "email", "intent", "source_id", "campaign",
			"status", "assigned_to_id", "first_response_at", "sla_breached",
			"converted_client_id", "created_at", "updated_at",
		}).AddRow(
			leadID, "Sara Ahmed", "+971501234567", nil, nil, nil, nil,
			"new", nil, nil, false, nil, now, now,
		)
	}

	t.Run("With Status Filter", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads`).
			WithArgs("new").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery(`SELECT .+ FROM leads WHERE .+ ORDER BY created_at DESC`).
			WithArgs("new", 25, 0).
			WillReturnRows(leadRows())

		leads, total, err := repo.List(models.LeadListFilter{Status: "new", Page: 1, PageSize: 25})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, leads, 1)
		assert.Equal(t, leadID, leads[0].ID)
		assert.Equal(t, pipeline.LeadStatusNew, leads[0].Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("With Search", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads`).
			WithArgs("%sara%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery(`SELECT .+ FROM leads`).
			WithArgs("%sara%", 10, 10).
			WillReturnRows(leadRows())

		_, total, err := repo.List(models.LeadListFilter{Search: "sara", Page: 2, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateLeadStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(&mockDatabase{db: db})
	leadID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE leads SET status`).
			WithArgs(leadID, pipeline.LeadStatusConverted).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(leadID, pipeline.LeadStatusConverted)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE leads SET status`).
			WithArgs(leadID, pipeline.LeadStatusDropped).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(leadID, pipeline.LeadStatusDropped)
		assert.ErrorIs(t, err, sql.ErrNoRows)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkSLABreaches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLeadRepository(&mockDatabase{db: db})
	now := time.Now()

	mock.ExpectExec(`UPDATE leads l`).
		WithArgs(pipeline.LeadStatusNew, now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	flagged, err := repo.MarkSLABreaches(now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), flagged)

	assert.NoError(t, mock.ExpectationsWereMet())
}
