package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gulfbridge/mortgage-crm-backend/internal/middleware"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/services"
)

// LeadHandler handles lead HTTP requests
type LeadHandler struct {
	leadService     *services.LeadService
	activityService *services.ActivityService
	logger          *logrus.Logger
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *services.LeadService, activityService *services.ActivityService, logger *logrus.Logger) *LeadHandler {
	return &LeadHandler{
		leadService:     leadService,
		activityService: activityService,
		logger:          logger,
	}
}

// pagination reads page/page_size query parameters with sane defaults
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "25"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 25
	}
	return page, pageSize
}

// Create captures a new lead
func (h *LeadHandler) Create(c *gin.Context) {
	var req models.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	lead, err := h.leadService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// List returns a filtered page of leads
func (h *LeadHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	filter := models.LeadListFilter{
		Status:   c.Query("status"),
		SourceID: c.Query("source_id"),
		Search:   c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.leadService.List(c.Request.Context(), filter)
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

// Get returns one lead with its activity history
func (h *LeadHandler) Get(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.leadService.Get(leadID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Drop moves a lead to the terminal dropped status
func (h *LeadHandler) Drop(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.DropLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	lead, err := h.leadService.Drop(c.Request.Context(), leadID, req.Reason, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// Convert qualifies a lead into a client
func (h *LeadHandler) Convert(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	client, err := h.leadService.Convert(c.Request.Context(), leadID, &req, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// LogCall records a call on a lead
func (h *LeadHandler) LogCall(c *gin.Context) {
	leadID, ok := parseID(c, "id")
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
	cl, err := h.activityService.LogCall(services.EntityLead, leadID, &req, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

// AddNote appends a note to a lead
func (h *LeadHandler) AddNote(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	userCtx := middleware.MustGetUserContext(c)
	note, err := h.activityService.AddNote(services.EntityLead, leadID, &req, userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}
