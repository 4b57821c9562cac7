package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gulfbridge/mortgage-crm-backend/internal/middleware"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/pipeline"
	"github.com/gulfbridge/mortgage-crm-backend/internal/services"
)

// CaseHandler handles case HTTP requests
type CaseHandler struct {
	caseService      *services.CaseService
	checklistService *services.ChecklistService
	activityService  *services.ActivityService
	logger           *logrus.Logger
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(
	caseService *services.CaseService,
	checklistService *services.ChecklistService,
	activityService *services.ActivityService,
	logger *logrus.Logger,
) *CaseHandler {
	return &CaseHandler{
		caseService:      caseService,
		checklistService: checklistService,
		activityService:  activityService,
		logger:           logger,
	}
}

// Stages returns the pipeline stage vocabulary, in order. Boards and
// dropdowns render from this instead of hardcoding stage names.
func (h *CaseHandler) Stages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active":   pipeline.ActiveStages(),
		"terminal": pipeline.TerminalStages(),
	})
}

// List returns a filtered page of cases
func (h *CaseHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	filter := models.CaseListFilter{
		Stage:    c.Query("stage"),
		ClientID: c.Query("client_id"),
		Search:   c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.caseService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     result.Items,
		"total":     result.Total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Get returns one case with checklist, history and derived LTV
func (h *CaseHandler) Get(c *gin.Context) {
	caseID, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.caseService.Get(caseID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Advance moves a case one stage forward
func (h *CaseHandler) Advance(c *gin.Context) {
	caseID, ok := parseID(c, "id")
	if !ok {
		return
	}

	// Body is optional: advancing without notes is the common path.
	var req models.AdvanceCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	updated, err := h.caseService.Advance(c.Request.Context(), caseID, req.Notes, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Decline closes a case as declined
func (h *CaseHandler) Decline(c *gin.Context) {
	h.closeOut(c, h.caseService.Decline)
}

// Withdraw closes a case as withdrawn
func (h *CaseHandler) Withdraw(c *gin.Context) {
	h.closeOut(c, h.caseService.Withdraw)
}

type caseCloseFn func(ctx context.Context, caseID uuid.UUID, reason string, actorID uuid.UUID) (*models.Case, error)

func (h *CaseHandler) closeOut(c *gin.Context, fn caseCloseFn) {
	caseID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.CloseCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	updated, err := fn(c.Request.Context(), caseID, req.Reason, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SetStage moves a case to an arbitrary stage (manual correction)
func (h *CaseHandler) SetStage(c *gin.Context) {
	caseID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.SetStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	updated, err := h.caseService.SetStage(c.Request.Context(), caseID, req.Stage, req.Notes, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UploadBankForms stores a batch of bank forms against a case. Multipart
// form: repeated "files" parts, with a parallel repeated "kinds" field
// declaring each file's kind.
func (h *CaseHandler) UploadBankForms(c *gin.Context) {
	caseID, ok := parseID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, err)
		return
	}

	fileHeaders := form.File["files"]
	kinds := form.Value["kinds"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "no_files",
			"code":  "NO_FILES",
		})
		return
	}
	if len(kinds) != len(fileHeaders) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "kind_mismatch",
			"details": "one kind must be declared per file",
			"code":    "KIND_MISMATCH",
		})
		return
	}

	files := make([]services.UploadedFile, 0, len(fileHeaders))
	for i, fh := range fileHeaders {
		if fh.Size > maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "file_too_large",
				"details": fh.Filename,
				"code":    "FILE_TOO_LARGE",
			})
			return
		}

		f, err := fh.Open()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}

		files = append(files, services.UploadedFile{
			Kind:        kinds[i],
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	userCtx := middleware.MustGetUserContext(c)
	updated, err := h.checklistService.UploadBankForms(c.Request.Context(), caseID, files, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"items": updated})
}

// DeleteBankForm removes an uploaded bank form
func (h *CaseHandler) DeleteBankForm(c *gin.Context) {
	formID, ok := parseID(c, "formId")
	if !ok {
		return
	}

	if err := h.checklistService.DeleteBankForm(c.Request.Context(), formID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadBankForm returns a short-lived download URL for a bank form
func (h *CaseHandler) DownloadBankForm(c *gin.Context) {
	formID, ok := parseID(c, "formId")
	if !ok {
		return
	}

	url, err := h.checklistService.PresignBankForm(c.Request.Context(), formID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// LogCall records a call on a case
func (h *CaseHandler) LogCall(c *gin.Context) {
	caseID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.CreateCallLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	cl, err := h.activityService.LogCall(services.EntityCase, caseID, &req, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

// AddNote appends a note to a case
func (h *CaseHandler) AddNote(c *gin.Context) {
	caseID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	note, err := h.activityService.AddNote(services.EntityCase, caseID, &req, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}
