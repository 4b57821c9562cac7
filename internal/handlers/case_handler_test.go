package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gulfbridge/mortgage-crm-backend/internal/database"
	"github.com/gulfbridge/mortgage-crm-backend/internal/middleware"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
	"github.com/gulfbridge/mortgage-crm-backend/internal/services"
)

var testCaseColumns = []string{
	"id", "case_number", "client_id", "case_type", "service_type", "application_type",
	"mortgage_type", "emirate", "transaction_type", "property_status",
	"loan_amount", "estimated_property_value", "mortgage_term_years", "mortgage_term_months",
	"bank_name", "rate_type", "rate_percent", "fixed_period_years",
	"stage", "assigned_to_id", "created_at", "updated_at",
}

func setupCaseHandlerTest(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mdb := &mockDatabase{db: db}
	caseService := services.NewCaseService(
		database.NewCaseRepository(mdb),
		database.NewBankFormRepository(mdb),
		database.NewStageChangeRepository(mdb),
		database.NewCallLogRepository(mdb),
		database.NewNoteRepository(mdb),
		nil,
		logger,
	)
	handler := NewCaseHandler(caseService, nil, nil, logger)

	actorID := uuid.New()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID: actorID,
			Email:  "agent@gulfbridge.ae",
			Role:   "agent",
		})
		c.Next()
	})
	router.GET("/cases/stages", handler.Stages)
	router.POST("/cases/:id/advance", handler.Advance)
	router.POST("/cases/:id/decline", handler.Decline)
	router.PUT("/cases/:id/stage", handler.SetStage)

	return router, mock, actorID
}

func expectCaseRow(mock sqlmock.Sqlmock, caseID uuid.UUID, stage pipeline.Stage) {
	now := time.Now()
	mock.ExpectQuery(`SELECT(.|\n)+FROM cases WHERE id = \$1`).
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows(testCaseColumns).AddRow(
			caseID, "MC-2025-0012", uuid.New(), nil, nil, nil,
			nil, nil, nil, nil,
			750000, 1000000, 25, 0,
			nil, nil, nil, nil,
			stage, nil, now, now,
		))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAdvanceCase_Success(t *testing.T) {
	router, mock, actorID := setupCaseHandlerTest(t)

	caseID := uuid.New()
	expectCaseRow(mock, caseID, pipeline.StageProcessing)
	mock.ExpectExec(`UPDATE cases SET stage`).
		WithArgs(caseID, pipeline.StageSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO stage_changes`).
		WithArgs(sqlmock.AnyArg(), caseID, string(pipeline.StageProcessing), string(pipeline.StageSubmitted), nil, actorID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/cases/"+caseID.String()+"/advance", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, string(pipeline.StageSubmitted), body["stage"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceCase_TerminalStage(t *testing.T) {
	router, mock, _ := setupCaseHandlerTest(t)

	caseID := uuid.New()
	expectCaseRow(mock, caseID, pipeline.StageDisbursed)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/cases/"+caseID.String()+"/advance", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "STAGE_TERMINAL", body["code"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceCase_InvalidID(t *testing.T) {
	router, _, _ := setupCaseHandlerTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/cases/not-a-uuid/advance", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "INVALID_ID", body["code"])
}

func TestDeclineCase_WhitespaceReason(t *testing.T) {
	router, mock, _ := setupCaseHandlerTest(t)

	caseID := uuid.New()
	expectCaseRow(mock, caseID, pipeline.StageUnderReview)

	payload, _ := json.Marshal(map[string]string{"reason": "   "})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/cases/"+caseID.String()+"/decline", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "REASON_REQUIRED", body["code"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclineCase_MissingReason(t *testing.T) {
	router, _, _ := setupCaseHandlerTest(t)

	caseID := uuid.New()
	payload, _ := json.Marshal(map[string]string{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/cases/"+caseID.String()+"/decline", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "INVALID_REQUEST", body["code"])
}

func TestSetStage_UnknownStage(t *testing.T) {
	router, _, _ := setupCaseHandlerTest(t)

	caseID := uuid.New()
	payload, _ := json.Marshal(map[string]string{"stage": "negotiating"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/cases/"+caseID.String()+"/stage", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "INVALID_STAGE", body["code"])
}

func TestStagesEndpoint(t *testing.T) {
	router, _, _ := setupCaseHandlerTest(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/cases/stages", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	active, ok := body["active"].([]interface{})
	require.True(t, ok)
	assert.Len(t, active, 8)
	assert.Equal(t, "processing", active[0])
	assert.Equal(t, "folSigned", active[7])

	terminal, ok := body["terminal"].([]interface{})
	require.True(t, ok)
	assert.Len(t, terminal, 3)
}
