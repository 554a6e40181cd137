package handler

import (
	"net/http"
	"time"

	"cadetbot/internal/middleware"
	"cadetbot/internal/repository"
	"cadetbot/internal/service"
	"cadetbot/pkg/pagination"
	"cadetbot/pkg/response"

	"github.com/gin-gonic/gin"
)

type MaintenanceHandler struct {
	maintenanceService service.MaintenanceService
	auditRepo          repository.AuditRepository
}

func NewMaintenanceHandler(maintenanceService service.MaintenanceService, auditRepo repository.AuditRepository) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService, auditRepo: auditRepo}
}

func (h *MaintenanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/maintenance", middleware.RequireAuth(), middleware.RequireRole("admin"))
	{
		admin.GET("/clear-status", h.ClearStatus)
		admin.GET("/audit", h.ListAudit)
	}
}

// ClearStatus reports the pending two-admin clear request, if any
func (h *MaintenanceHandler) ClearStatus(c *gin.Context) {
	status, err := h.maintenanceService.ClearStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	payload := gin.H{"approvers": status.Approvers}
	if !status.ExpiresAt.IsZero() {
		payload["expires_at"] = status.ExpiresAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payload))
}

// ListAudit pages through the audit trail, optionally filtered by ?action=
func (h *MaintenanceHandler) ListAudit(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.auditRepo.List(c.Request.Context(), c.Query("action"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}
