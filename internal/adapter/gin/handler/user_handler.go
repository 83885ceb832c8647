package handler

import (
	"errors"
	"net/http"
	"strconv"

	"user-fixture-service/internal/usecase/user"
	apperrors "user-fixture-service/pkg/errors"
	"user-fixture-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// AddUserRequest represents the HTTP request body for appending a user.
// Field rules other than the id's presence are checked by the usecase.
type AddUserRequest struct {
	ID    *int64 `json:"id" binding:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination *Pagination    `json:"pagination,omitempty"`
}

// Pagination represents pagination information
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// ValidateEmailResponse represents the HTTP response of an email check
type ValidateEmailResponse struct {
	Address string `json:"address"`
	Valid   bool   `json:"valid"`
}

// FormatNameRequest represents the HTTP request body for formatting a name
type FormatNameRequest struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// FormatNameResponse represents the HTTP response of a formatted name
type FormatNameResponse struct {
	FullName string `json:"full_name"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error      string            `json:"error"`
	Message    string            `json:"message,omitempty"`
	Violations map[string]string `json:"violations,omitempty"`
}

// AddUser handles POST /v1/users
func (h *UserHandler) AddUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.uc.AddUser(c.Request.Context(), user.AddUserRequest{
		ID:    *req.ID,
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		log.Warn("Gin AddUser failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id": resp.ID,
	})
}

// FetchUser handles GET /v1/users/:id
func (h *UserHandler) FetchUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Warn("Invalid user ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a valid number",
		})
		return
	}

	resp, err := h.uc.FetchUser(c.Request.Context(), user.FetchUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:          resp.ID,
		Name:        resp.Name,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
	})
}

// ListUsers handles GET /v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	// Malformed numbers fall back to the defaults applied by the usecase
	page, _ := strconv.ParseInt(c.Query("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Query: c.Query("query"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = UserResponse{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
		}
	}

	var pagination *Pagination
	if resp.Pagination != nil {
		pagination = &Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}

	c.JSON(http.StatusOK, ListUsersResponse{
		Users:      users,
		Pagination: pagination,
	})
}

// ValidateEmail handles GET /v1/emails/validate?address=
func (h *UserHandler) ValidateEmail(c *gin.Context) {
	resp, err := h.uc.ValidateEmail(c.Request.Context(), user.ValidateEmailRequest{Address: c.Query("address")})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ValidateEmailResponse{Address: resp.Address, Valid: resp.Valid})
}

// FormatName handles POST /v1/names/format
func (h *UserHandler) FormatName(c *gin.Context) {
	var req FormatNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.uc.FormatName(c.Request.Context(), user.FormatNameRequest{First: req.First, Last: req.Last})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, FormatNameResponse{FullName: resp.FullName})
}

// LoadConfig handles GET /v1/config
func (h *UserHandler) LoadConfig(c *gin.Context) {
	resp, err := h.uc.LoadConfig(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.Settings)
}

// handleError converts usecase errors to HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	switch {
	case errors.As(err, &ve):
		resp := ErrorResponse{Error: "invalid_input", Message: ve.Message}
		if len(ve.Violations) > 0 {
			resp.Violations = make(map[string]string, len(ve.Violations))
			for _, v := range ve.Violations {
				resp.Violations[v.Field] = v.Description
			}
		}
		c.JSON(http.StatusBadRequest, resp)
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	default:
		logger.WithContext(c.Request.Context(), h.log).Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
