package handler

import (
	"errors"
	"net/http"
	"strconv"

	"trashbeta-service/internal/model"
	"trashbeta-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// actor resolves the authenticated caller from the gateway-provided
// X-User-ID header.
func (h *ReportHandler) actor(c *gin.Context) (*model.User, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	user, err := h.reportService.GetActor(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return user, true
}

func respondError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var authorization *service.AuthorizationError
	var notFound *service.NotFoundError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.As(err, &authorization):
		c.JSON(http.StatusForbidden, gin.H{"error": authorization.Message})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func reportID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return uuid.Nil, false
	}
	return id, true
}

// Handles POST /reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req model.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportService.Create(actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Trash report created successfully",
		"report":  report,
	})
}

// Handles GET /reports - reports created by the caller.
func (h *ReportHandler) GetUserReports(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	reports, err := h.reportService.ListForUser(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// Handles GET /reports/assigned - reports assigned to the caller.
func (h *ReportHandler) GetAssignedReports(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	reports, err := h.reportService.ListAssigned(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// Handles GET /reports/stats - admin dashboard counters.
func (h *ReportHandler) GetReportStats(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	stats, err := h.reportService.Stats(actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Handles GET /reports/:id
func (h *ReportHandler) GetReportByID(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	id, ok := reportID(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Handles GET /reports/track/:trackingId
func (h *ReportHandler) GetByTrackingID(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	report, err := h.reportService.GetByTrackingID(c.Param("trackingId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Handles GET /allReports - paginated, optionally filtered by category.
func (h *ReportHandler) GetAllReports(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if actor.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	response, err := h.reportService.ListAll(model.ListFilter{
		Category: model.Category(c.Query("category")),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Handles PUT /reports/:id/assign
func (h *ReportHandler) AssignReport(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, ok := reportID(c)
	if !ok {
		return
	}

	var req model.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.reportService.Assign(actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.AlreadyAssigned {
		c.JSON(http.StatusOK, gin.H{
			"message": "Report has already been assigned to " + result.AssigneeEmail,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Trash report priority and assignee updated",
		"report":  result.Report,
	})
}

// Handles PUT /reports/:id/status
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, ok := reportID(c)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportService.UpdateStatus(actor, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Trash report status updated",
		"report":  report,
	})
}

// Handles PUT /reports/:id/complete
func (h *ReportHandler) MarkComplete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, ok := reportID(c)
	if !ok {
		return
	}

	report, err := h.reportService.MarkComplete(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Handles DELETE /reports/:id
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, ok := reportID(c)
	if !ok {
		return
	}

	if err := h.reportService.Delete(actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trash report deleted"})
}
