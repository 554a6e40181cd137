package handler

import (
	"net/http"

	"cadetbot/internal/middleware"
	"cadetbot/internal/service"
	"cadetbot/pkg/pagination"
	"cadetbot/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService      service.UserService
	dashboardService service.DashboardService
	importService    service.ImportService
}

// NewUserHandler sets up the routing dependencies for roster endpoints
func NewUserHandler(
	userService service.UserService,
	dashboardService service.DashboardService,
	importService service.ImportService,
) *UserHandler {
	return &UserHandler{
		userService:      userService,
		dashboardService: dashboardService,
		importService:    importService,
	}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.Login)

	users := router.Group("/users", middleware.RequireAuth(), middleware.RequireRole("admin"))
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.POST("/import", h.ImportUsers)
	}
}

// Login authenticates a dashboard account and returns a JWT token
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	tokenRes, err := h.dashboardService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// ListUsers returns the roster page by page
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := pagination.Parse(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"users": users,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// CreateUser adds a single roster entry
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// ImportUsers loads the roster from an uploaded CSV file.
// With ?replace=true, users and medical records are cleared first.
func (h *UserHandler) ImportUsers(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "CSV file is required"))
		return
	}
	defer file.Close()

	clearFirst := c.Query("replace") == "true"
	result, err := h.importService.ImportUsers(c.Request.Context(), 0, file, clearFirst)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
