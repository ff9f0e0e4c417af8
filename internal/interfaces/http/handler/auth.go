package handler

import (
	"strings"
	"time"

	appidentity "github.com/booktime/backend/internal/application/identity"
	"github.com/booktime/backend/internal/domain/identity"
	"github.com/booktime/backend/internal/interfaces/http/middleware"
	"github.com/booktime/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// AuthHandler serves login, registration and session endpoints
type AuthHandler struct {
	BaseHandler
	authService *appidentity.AuthService
	userRepo    identity.UserRepository
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *appidentity.AuthService, userRepo identity.UserRepository) *AuthHandler {
	return &AuthHandler{authService: authService, userRepo: userRepo}
}

// Routes returns the auth route group
func (h *AuthHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("auth", "/auth").
		POST("/login", h.Login).
		POST("/register", h.Register).
		POST("/refresh", h.Refresh).
		POST("/logout", h.Logout).
		GET("/me", h.Me)
}

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest carries signup fields
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Password  string `json:"password" binding:"required,min=8"`
}

// RefreshRequest carries the refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserResponse is the wire shape of a user
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Staff       bool       `json:"staff"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func toUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName(),
		Staff:       u.Staff,
		LastLoginAt: u.LastLoginAt,
	}
}

// Login authenticates a user and issues a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid login payload")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), appidentity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"user":   toUserResponse(result.User),
		"tokens": result.TokenPair,
	})
}

// Register creates a new customer account
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid registration payload")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), appidentity.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toUserResponse(user))
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid refresh payload")
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"tokens": tokens})
}

// Logout revokes the presented access token
func (h *AuthHandler) Logout(c *gin.Context) {
	authHeader := c.GetHeader(middleware.AuthHeaderKey)
	token := strings.TrimPrefix(authHeader, middleware.BearerPrefix)
	if token == "" || token == authHeader {
		h.Unauthorized(c, "Missing bearer token")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUserResponse(user))
}
