package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"user-management-server/internal/auth"
	"user-management-server/internal/middleware"
	"user-management-server/internal/models"
	"user-management-server/internal/utils"
)

// UserHandler handles profile and admin user-administration requests.
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UpdateProfileRequest represents the request body for updating the own profile.
type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// UpdateProfile lets the authenticated user change their username, email
// and full name.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Email != "" && req.Email != user.Email {
		if taken, err := h.identityTaken(c, "email", req.Email, user.ID); err != nil || taken {
			return
		}
		user.Email = req.Email
	}
	if req.Username != "" && req.Username != user.Username {
		if taken, err := h.identityTaken(c, "username", req.Username, user.ID); err != nil || taken {
			return
		}
		user.Username = req.Username
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}

	if err := h.DB.Save(user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile: "+err.Error())
		return
	}

	utils.Success(c, "Profile updated successfully", user.Sanitize())
}

// identityTaken checks whether another user already holds the given
// username or email. It writes the error response itself when the value is
// taken or the lookup fails.
func (h *UserHandler) identityTaken(c *gin.Context, column, value string, selfID uint) (bool, error) {
	var existing models.User
	err := h.DB.Where(column+" = ? AND id != ?", value, selfID).First(&existing).Error
	if err == nil {
		if column == "email" {
			utils.BadRequest(c, auth.ErrEmailTaken.Error())
		} else {
			utils.BadRequest(c, auth.ErrUsernameTaken.Error())
		}
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return false, err
	}
	return false, nil
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword lets the authenticated user change their password after
// re-verifying the current one.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req ChangePasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !user.CheckPassword(req.CurrentPassword) {
		utils.BadRequest(c, "Current password is incorrect")
		return
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}
	if err := h.DB.Save(user).Error; err != nil {
		utils.InternalServerError(c, "Failed to change password: "+err.Error())
		return
	}

	utils.Success(c, "Password changed successfully", nil)
}

// ListUsersResponse represents the paginated user list for admins.
type ListUsersResponse struct {
	Users      []models.UserSanitized `json:"users"`
	Pagination Pagination             `json:"pagination"`
}

// Pagination describes a page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// ListUsers handles fetching a paginated user list (admin).
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	var total int64
	if err := h.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count users: "+err.Error())
		return
	}

	var users []models.User
	if err := h.DB.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", ListUsersResponse{
		Users:      sanitized,
		Pagination: Pagination{Page: page, Limit: limit, Total: total},
	})
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user by an
// admin. Pointer fields distinguish "not sent" from an explicit false.
type UpdateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	IsActive *bool  `json:"isActive"`
	IsAdmin  *bool  `json:"isAdmin"`
}

// UpdateUser handles updating a user by ID (admin). Activity and admin
// flags are fully client-suppliable here.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if req.Password != "" && len(req.Password) < 8 {
		utils.BadRequest(c, "Password must be at least 8 characters")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Email != "" && req.Email != user.Email {
		if taken, err := h.identityTaken(c, "email", req.Email, user.ID); err != nil || taken {
			return
		}
		user.Email = req.Email
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			utils.InternalServerError(c, "Failed to hash password: "+err.Error())
			return
		}
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "User updated successfully", user.Sanitize())
}
