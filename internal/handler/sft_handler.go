package handler

import (
	"errors"
	"net/http"

	"cadetbot/internal/middleware"
	"cadetbot/internal/obs"
	"cadetbot/internal/service"
	"cadetbot/pkg/response"

	"github.com/gin-gonic/gin"
)

type SFTHandler struct {
	sftService service.SFTService
}

func NewSFTHandler(sftService service.SFTService) *SFTHandler {
	return &SFTHandler{sftService: sftService}
}

func (h *SFTHandler) RegisterRoutes(router *gin.RouterGroup) {
	sft := router.Group("/sft", middleware.RequireAuth(), middleware.RequireRole("admin"))
	{
		sft.GET("/window", h.GetWindow)
		sft.POST("/window", h.OpenWindow)
		sft.DELETE("/window", h.ClearWindow)
		sft.DELETE("/submissions", h.ClearSubmissions)
		sft.GET("/summary", h.GetSummary)
	}
}

type openWindowRequest struct {
	Date  string `json:"date" binding:"required"`
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// GetWindow returns the active SFT window, or 404 when none is open
func (h *SFTHandler) GetWindow(c *gin.Context) {
	window, err := h.sftService.GetActiveWindow(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	if window == nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "No active SFT window"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, window))
}

// OpenWindow opens a new active window, deactivating any previous one
func (h *SFTHandler) OpenWindow(c *gin.Context) {
	var req openWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.sftService.OpenWindow(c.Request.Context(), 0, req.Date, req.Start, req.End); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, req))
}

// ClearWindow closes the active window without opening another
func (h *SFTHandler) ClearWindow(c *gin.Context) {
	if err := h.sftService.ClearWindow(c.Request.Context(), 0); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"cleared": true}))
}

// ClearSubmissions drops every submission under the active window
func (h *SFTHandler) ClearSubmissions(c *gin.Context) {
	if err := h.sftService.ClearSubmissions(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"cleared": true}))
}

// GetSummary renders the roster report for ?date=DDMMYY
func (h *SFTHandler) GetSummary(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "date query parameter is required"))
		return
	}
	instructor := c.DefaultQuery("instructor", "")
	salutation := c.DefaultQuery("salutation", "Sir")

	report, err := h.sftService.GenerateSummary(c.Request.Context(), date, instructor, salutation)
	if err != nil {
		var validationErr *service.SummaryValidationError
		if errors.As(err, &validationErr) {
			obs.SummaryValidationFailures.Inc()
			c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, validationErr.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	obs.SummariesGenerated.Inc()
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"report": report}))
}
