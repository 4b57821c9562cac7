package services

import (
	"context"
	"database/sql/driver"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gulfbridge/mortgage-crm-backend/internal/cache"
	"github.com/gulfbridge/mortgage-crm-backend/internal/database"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
)

var caseRows = []string{
	"id", "case_number", "client_id", "case_type", "service_type", "application_type",
	"mortgage_type", "emirate", "transaction_type", "property_status",
	"loan_amount", "estimated_property_value", "mortgage_term_years", "mortgage_term_months",
	"bank_name", "rate_type", "rate_percent", "fixed_period_years",
	"stage", "assigned_to_id", "created_at", "updated_at",
}

// timeCollector is a sqlmock argument that accepts any time.Time and
// records it for later assertions.
type timeCollector struct {
	seen *[]time.Time
}

func (c timeCollector) Match(v driver.Value) bool {
	ts, ok := v.(time.Time)
	if !ok {
		return false
	}
	*c.seen = append(*c.seen, ts)
	return true
}

func newCaseServiceTest(t *testing.T) (*CaseService, sqlmock.Sqlmock, *cache.ListCache) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := miniredis.RunT(t)
	listCache, err := cache.NewListCache(srv.Addr(), "", 0, 5*time.Minute)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mdb := &mockDatabase{db: db}
	svc := NewCaseService(
		database.NewCaseRepository(mdb),
		database.NewBankFormRepository(mdb),
		database.NewStageChangeRepository(mdb),
		database.NewCallLogRepository(mdb),
		database.NewNoteRepository(mdb),
		listCache,
		logger,
	)
	return svc, mock, listCache
}

func expectCaseFetch(mock sqlmock.Sqlmock, caseID, clientID uuid.UUID, stage pipeline.Stage, loan, value float64) {
	now := time.Now()
	mock.ExpectQuery(`SELECT(.|\n)+FROM cases WHERE id = \$1`).
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows(caseRows).AddRow(
			caseID, "MC-2025-0007", clientID, nil, nil, nil,
			nil, nil, nil, nil,
			loan, value, 25, 0,
			nil, nil, nil, nil,
			stage, nil, now, now,
		))
}

func TestAdvanceThroughEarlyStages(t *testing.T) {
	svc, mock, _ := newCaseServiceTest(t)
	ctx := context.Background()

	caseID := uuid.New()
	clientID := uuid.New()
	actorID := uuid.New()

	var stamps []time.Time
	collector := timeCollector{seen: &stamps}

	// A loan of 800k against a 1M valuation advances three times:
	// processing -> submitted -> underReview -> preApproved.
	steps := []struct {
		from pipeline.Stage
		to   pipeline.Stage
	}{
		{pipeline.StageProcessing, pipeline.StageSubmitted},
		{pipeline.StageSubmitted, pipeline.StageUnderReview},
		{pipeline.StageUnderReview, pipeline.StagePreApproved},
	}

	for _, step := range steps {
		expectCaseFetch(mock, caseID, clientID, step.from, 800000, 1000000)
		mock.ExpectExec(`UPDATE cases SET stage`).
			WithArgs(caseID, step.to).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO stage_changes`).
			WithArgs(sqlmock.AnyArg(), caseID, string(step.from), string(step.to), nil, actorID, collector).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c, err := svc.Advance(ctx, caseID, "", actorID)
		require.NoError(t, err)
		assert.Equal(t, step.to, c.Stage)

		ltv := c.LTV()
		require.NotNil(t, ltv)
		assert.InDelta(t, 80.0, *ltv, 0.0001)
	}

	require.Len(t, stamps, 3)
	assert.True(t, stamps[0].Before(stamps[1]))
	assert.True(t, stamps[1].Before(stamps[2]))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceFromTerminalRejected(t *testing.T) {
	svc, mock, _ := newCaseServiceTest(t)

	caseID := uuid.New()
	expectCaseFetch(mock, caseID, uuid.New(), pipeline.StageDisbursed, 800000, 1000000)

	_, err := svc.Advance(context.Background(), caseID, "", uuid.New())
	assert.ErrorIs(t, err, pipeline.ErrStageTerminal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclineRequiresReason(t *testing.T) {
	svc, mock, _ := newCaseServiceTest(t)

	caseID := uuid.New()
	expectCaseFetch(mock, caseID, uuid.New(), pipeline.StageValuation, 800000, 1000000)

	_, err := svc.Decline(context.Background(), caseID, "  ", uuid.New())
	assert.ErrorIs(t, err, pipeline.ErrReasonRequired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithdrawRecordsReason(t *testing.T) {
	svc, mock, _ := newCaseServiceTest(t)

	caseID := uuid.New()
	actorID := uuid.New()
	expectCaseFetch(mock, caseID, uuid.New(), pipeline.StageFOLReceived, 800000, 1000000)
	mock.ExpectExec(`UPDATE cases SET stage`).
		WithArgs(caseID, pipeline.StageWithdrawn).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO stage_changes`).
		WithArgs(sqlmock.AnyArg(), caseID, string(pipeline.StageFOLReceived), string(pipeline.StageWithdrawn),
			"client bought elsewhere", actorID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := svc.Withdraw(context.Background(), caseID, "client bought elsewhere", actorID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageWithdrawn, c.Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStageBackwardAllowed(t *testing.T) {
	svc, mock, _ := newCaseServiceTest(t)

	caseID := uuid.New()
	actorID := uuid.New()
	expectCaseFetch(mock, caseID, uuid.New(), pipeline.StageValuation, 800000, 1000000)
	mock.ExpectExec(`UPDATE cases SET stage`).
		WithArgs(caseID, pipeline.StageSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO stage_changes`).
		WithArgs(sqlmock.AnyArg(), caseID, string(pipeline.StageValuation), string(pipeline.StageSubmitted),
			"resubmission after bank error", actorID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := svc.SetStage(context.Background(), caseID, "submitted", "resubmission after bank error", actorID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageSubmitted, c.Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStageUnknownRejected(t *testing.T) {
	svc, _, _ := newCaseServiceTest(t)

	_, err := svc.SetStage(context.Background(), uuid.New(), "negotiating", "", uuid.New())
	assert.ErrorIs(t, err, pipeline.ErrUnknownStage)
}

func TestAdvanceInvalidatesCaseCache(t *testing.T) {
	svc, mock, listCache := newCaseServiceTest(t)
	ctx := context.Background()

	// Seed a cached page for cases and an unrelated entity.
	require.NoError(t, listCache.Set(ctx, "cases", "stage=processing&page=1", CasePage{Total: 4}))
	require.NoError(t, listCache.Set(ctx, "leads", "page=1", LeadPage{Total: 2}))

	caseID := uuid.New()
	actorID := uuid.New()
	expectCaseFetch(mock, caseID, uuid.New(), pipeline.StageProcessing, 800000, 1000000)
	mock.ExpectExec(`UPDATE cases SET stage`).
		WithArgs(caseID, pipeline.StageSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO stage_changes`).
		WithArgs(sqlmock.AnyArg(), caseID, string(pipeline.StageProcessing), string(pipeline.StageSubmitted),
			nil, actorID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.Advance(ctx, caseID, "", actorID)
	require.NoError(t, err)

	var casePage CasePage
	assert.ErrorIs(t, listCache.Get(ctx, "cases", "stage=processing&page=1", &casePage), cache.ErrMiss)

	var leadPage LeadPage
	assert.NoError(t, listCache.Get(ctx, "leads", "page=1", &leadPage))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCaseDetail(t *testing.T) {
	svc, mock, _ := newCaseServiceTest(t)

	caseID := uuid.New()
	clientID := uuid.New()
	actorID := uuid.New()
	now := time.Now()

	expectCaseFetch(mock, caseID, clientID, pipeline.StageUnderReview, 800000, 1000000)

	formRows := sqlmock.NewRows([]string{
		"id", "case_id", "kind", "status", "file_key", "file_name", "uploaded_at", "created_at", "updated_at",
	}).
		AddRow(uuid.New(), caseID, "kfs", "uploaded", "cases/key1", "kfs.pdf", now, now, now).
		AddRow(uuid.New(), caseID, "applicationForm", "missing", nil, nil, nil, now, now).
		AddRow(uuid.New(), caseID, "bankStatements", "missing", nil, nil, nil, now, now).
		AddRow(uuid.New(), caseID, "finalOfferLetter", "notApplicable", nil, nil, nil, now, now)
	mock.ExpectQuery(`SELECT(.|\n)+FROM bank_forms WHERE case_id = \$1`).
		WithArgs(caseID).
		WillReturnRows(formRows)

	mock.ExpectQuery(`SELECT(.|\n)+FROM call_logs`).
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "lead_id", "client_id", "case_id", "direction", "duration_seconds",
			"outcome", "notes", "created_by_id", "created_at",
		}))

	mock.ExpectQuery(`SELECT(.|\n)+FROM notes`).
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "lead_id", "client_id", "case_id", "body", "created_by_id", "created_at",
		}))

	mock.ExpectQuery(`SELECT(.|\n)+FROM stage_changes`).
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "case_id", "from_stage", "to_stage", "notes", "changed_by_id", "changed_at",
		}).
			AddRow(uuid.New(), caseID, "processing", "submitted", nil, actorID, now.Add(-2*time.Hour)).
			AddRow(uuid.New(), caseID, "submitted", "underReview", nil, actorID, now.Add(-time.Hour)))

	detail, err := svc.Get(caseID)
	require.NoError(t, err)

	require.NotNil(t, detail.EstimatedLTV)
	assert.InDelta(t, 80.0, *detail.EstimatedLTV, 0.0001)
	assert.Len(t, detail.BankForms, 4)

	// kfs is uploaded and finalOfferLetter waived; the two remaining
	// required kinds are reported missing.
	assert.Equal(t, []pipeline.BankFormKind{
		pipeline.BankFormApplication,
		pipeline.BankFormBankStatements,
	}, detail.MissingFormKinds)

	assert.Len(t, detail.StageChanges, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
