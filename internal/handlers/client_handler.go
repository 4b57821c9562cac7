package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gulfbridge/mortgage-crm-backend/internal/middleware"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/services"
)

// maxUploadBytes caps a single uploaded file at 20 MiB
const maxUploadBytes = 20 << 20

// ClientHandler handles client HTTP requests
type ClientHandler struct {
	clientService    *services.ClientService
	caseService      *services.CaseService
	checklistService *services.ChecklistService
	activityService  *services.ActivityService
	logger           *logrus.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(
	clientService *services.ClientService,
	caseService *services.CaseService,
	checklistService *services.ChecklistService,
	activityService *services.ActivityService,
	logger *logrus.Logger,
) *ClientHandler {
	return &ClientHandler{
		clientService:    clientService,
		caseService:      caseService,
		checklistService: checklistService,
		activityService:  activityService,
		logger:           logger,
	}
}

// Create registers a client directly
func (h *ClientHandler) Create(c *gin.Context) {
	var req models.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// List returns a filtered page of clients
func (h *ClientHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	filter := models.ClientListFilter{
		Status:   c.Query("status"),
		Search:   c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.clientService.List(c.Request.Context(), filter)
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

// Get returns one client with eligibility, checklist and history
func (h *ClientHandler) Get(c *gin.Context) {
	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.clientService.Get(clientID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Update applies a partial edit to a client
func (h *ClientHandler) Update(c *gin.Context) {
	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), clientID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// Eligibility returns the client's derived DBR, LTV and maximum loan
func (h *ClientHandler) Eligibility(c *gin.Context) {
	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	eligibility, err := h.clientService.Eligibility(clientID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, eligibility)
}

// MarkNotEligible closes a client as not eligible
func (h *ClientHandler) MarkNotEligible(c *gin.Context) {
	h.closeOut(c, h.clientService.MarkNotEligible)
}

// MarkNotProceeding closes a client as not proceeding
func (h *ClientHandler) MarkNotProceeding(c *gin.Context) {
	h.closeOut(c, h.clientService.MarkNotProceeding)
}

type clientCloseFn func(ctx context.Context, clientID uuid.UUID, reason string, actorID uuid.UUID) (*models.Client, error)

func (h *ClientHandler) closeOut(c *gin.Context, fn clientCloseFn) {
	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.MarkClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	client, err := fn(c.Request.Context(), clientID, req.Reason, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// CreateCase opens a mortgage case for a client
func (h *ClientHandler) CreateCase(c *gin.Context) {
	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	newCase, err := h.clientService.CreateCase(c.Request.Context(), clientID, &req, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, newCase)
}

// ListCases returns all cases belonging to a client
func (h *ClientHandler) ListCases(c *gin.Context) {
	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	cases, err := h.caseService.ListByClient(clientID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cases})
}

// UploadDocument stores a single document against the client's checklist.
// Multipart form with a "file" part and a "kind" field.
func (h *ClientHandler) UploadDocument(c *gin.Context) {
	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "file_too_large",
			"code":  "FILE_TOO_LARGE",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	doc, err := h.checklistService.UploadDocument(c.Request.Context(), clientID, services.UploadedFile{
		Kind:        c.PostForm("kind"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// SetDocumentStatusRequest carries a manual checklist status
type SetDocumentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetDocumentStatus marks a document verified or notApplicable
func (h *ClientHandler) SetDocumentStatus(c *gin.Context) {
	docID, ok := parseID(c, "docId")
	if !ok {
		return
	}

	var req SetDocumentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	doc, err := h.checklistService.SetDocumentStatus(docID, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteDocument removes an uploaded document
func (h *ClientHandler) DeleteDocument(c *gin.Context) {
	docID, ok := parseID(c, "docId")
	if !ok {
		return
	}

	if err := h.checklistService.DeleteDocument(c.Request.Context(), docID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadDocument returns a short-lived download URL for a document
func (h *ClientHandler) DownloadDocument(c *gin.Context) {
	docID, ok := parseID(c, "docId")
	if !ok {
		return
	}

	url, err := h.checklistService.PresignDocument(c.Request.Context(), docID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// LogCall records a call on a client
func (h *ClientHandler) LogCall(c *gin.Context) {
	clientID, ok := parseID(c, "id")
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
	cl, err := h.activityService.LogCall(services.EntityClient, clientID, &req, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

// AddNote appends a note to a client
func (h *ClientHandler) AddNote(c *gin.Context) {
	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	note, err := h.activityService.AddNote(services.EntityClient, clientID, &req, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}
