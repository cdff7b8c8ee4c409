package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"user-management-server/internal/auth"
	"user-management-server/internal/config"
	"user-management-server/internal/middleware"
	"user-management-server/internal/models"
	"user-management-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Manager *auth.SessionManager
	Keys    *auth.Keys
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, manager *auth.SessionManager, keys *auth.Keys) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Manager: manager, Keys: keys}
}

// handleAuthError maps core auth failures to HTTP responses. Every
// authentication failure is a uniform 401 with a bearer challenge;
// unavailable key material is a server-side fault.
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	if auth.IsAuthError(err) {
		utils.Unauthorized(c, err.Error())
		return
	}
	utils.InternalServerError(c, err.Error())
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,alphanum"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// Check if the email is already registered
	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.BadRequest(c, auth.ErrEmailTaken.Error())
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	// Check if the username is already registered
	if err := h.DB.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.BadRequest(c, auth.ErrUsernameTaken.Error())
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	utils.Created(c, "User registered successfully", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	TokenType    string               `json:"tokenType"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login, returning a token pair and the user profile.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	accessToken, refreshToken, user, err := h.Manager.Login(req.Username, req.Password)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		User:         user.Sanitize(),
	})
}

// TokenResponse represents a bare token pair, for machine clients that do
// not need the user profile.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
}

// Token handles the machine-client login variant.
func (h *AuthHandler) Token(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	accessToken, refreshToken, _, err := h.Manager.Login(req.Username, req.Password)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	utils.Success(c, "Token issued successfully", TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

// ValidateRequest represents the request body for access-token validation.
type ValidateRequest struct {
	AccessToken string `json:"accessToken" binding:"required"`
}

// Validate resolves an access token to its user.
func (h *AuthHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Manager.ResolveCurrentUser(req.AccessToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	utils.Success(c, "Token is valid", gin.H{"user": user.Sanitize()})
}

// RefreshRequest represents the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh rotates a refresh token and returns a new pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	accessToken, refreshToken, err := h.Manager.Refresh(req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	utils.Success(c, "Access token refreshed successfully", TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

// Logout revokes every active refresh token of the authenticated user.
// Already issued access tokens keep working until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Manager.Logout(user); err != nil {
		h.handleAuthError(c, err)
		return
	}

	utils.Success(c, "Logout successful. All refresh tokens have been revoked.", nil)
}

// PublicKey returns the PEM-encoded verification key.
func (h *AuthHandler) PublicKey(c *gin.Context) {
	pemBytes, err := h.Keys.PublicKeyPEM()
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}

	utils.Success(c, "Public key fetched successfully", gin.H{"publicKey": string(pemBytes)})
}
