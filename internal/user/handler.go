package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dastkala/dastkala-api/internal/auth"
)

const tokenTTL = 24 * time.Hour

func RegisterHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email, name and password are required"})
			return
		}
		role := strings.ToUpper(req.Role)
		if role == "" {
			role = auth.RoleBuyer
		}
		if role != auth.RoleBuyer && role != auth.RoleSeller {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
			return
		}
		hash, err := HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "hash error"})
			return
		}
		u := &User{
			ID:           uuid.NewString(),
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: hash,
			Role:         role,
		}
		if err := repo.Create(c.Request.Context(), u); err != nil {
			if err == ErrAlreadyExist {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create error"})
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

func LoginHandler(repo Repository, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		u, err := repo.GetByEmail(c.Request.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
		if err != nil || !CheckPassword(u.PasswordHash, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		token, err := auth.IssueToken(jwtSecret, u.ID, u.Role, tokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
			return
		}
		c.JSON(http.StatusOK, TokenResponse{Token: token, User: *u})
	}
}
