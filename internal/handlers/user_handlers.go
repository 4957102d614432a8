package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"

	"github.com/mekelletech/recycle-golang/internal/middleware"
	"github.com/mekelletech/recycle-golang/internal/models"
)

// --- User Registration ---

// RegisterUserInput is separate from models.User so callers can never
// smuggle in an id or an is_active flag.
type RegisterUserInput struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=buyer seller"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

// Register is the handler for POST /v1/register.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	optional := func(s string) *string {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return &trimmed
		}
		return nil
	}

	query := `
		INSERT INTO users (username, email, password_hash, full_name, role, phone, address, city, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, TRUE)`
	res, err := h.DB.Exec(query,
		input.Username, input.Email, password.Hash, input.FullName, input.Role,
		optional(input.Phone), optional(input.Address), optional(input.City))
	if err != nil {
		// 1062 = duplicate key, the unique indexes on username/email.
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	userID, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"userId":  userID,
	})
}

// --- Login ---

type LoginInput struct {
	// Username also accepts the account email, matching the login form.
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	query := `
		SELECT user_id, username, email, password_hash, full_name, role, is_active
		FROM users
		WHERE username = ? OR email = ?`
	err := h.DB.QueryRow(query, input.Username, input.Username).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.FullName, &user.Role, &user.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := h.Tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"fullName": user.FullName,
			"role":     user.Role,
		},
	})
}

// --- Profile ---

// GetProfile is the handler for GET /v1/profile.
func (h *Handlers) GetProfile(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)

	var user models.User
	query := `
		SELECT user_id, username, email, full_name, role, is_active,
		       phone, address, city, created_at, updated_at
		FROM users WHERE user_id = ?`
	err := h.DB.QueryRow(query, ident.UserID).Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName, &user.Role, &user.IsActive,
		&user.Phone, &user.Address, &user.City, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type UpdateProfileInput struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
}

// UpdateProfile is the handler for PUT /v1/profile.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Build the SET clause from whichever fields were actually sent.
	querySet := "updated_at = ?"
	queryArgs := []interface{}{time.Now()}

	if input.FullName != nil {
		querySet += ", full_name = ?"
		queryArgs = append(queryArgs, *input.FullName)
	}
	if input.Email != nil {
		querySet += ", email = ?"
		queryArgs = append(queryArgs, *input.Email)
	}
	if input.Phone != nil {
		querySet += ", phone = ?"
		queryArgs = append(queryArgs, *input.Phone)
	}
	if input.Address != nil {
		querySet += ", address = ?"
		queryArgs = append(queryArgs, *input.Address)
	}
	if input.City != nil {
		querySet += ", city = ?"
		queryArgs = append(queryArgs, *input.City)
	}

	queryArgs = append(queryArgs, ident.UserID)
	_, err := h.DB.Exec("UPDATE users SET "+querySet+" WHERE user_id = ?", queryArgs...)
	if err != nil {
		// 1062 = duplicate key, the unique index on email.
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword is the handler for POST /v1/profile/password.
func (h *Handlers) ChangePassword(c *gin.Context) {
	ident, _ := middleware.GetIdentity(c)

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var currentHash string
	err := h.DB.QueryRow("SELECT password_hash FROM users WHERE user_id = ?", ident.UserID).Scan(&currentHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify password"})
		return
	}

	password := models.Password{Hash: currentHash}
	match, err := password.Matches(input.CurrentPassword)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	if err := password.Set(input.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	_, err = h.DB.Exec("UPDATE users SET password_hash = ?, updated_at = ? WHERE user_id = ?",
		password.Hash, time.Now(), ident.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
