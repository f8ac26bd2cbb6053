package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AlaBenAicha/sahtee-sub002/internal/auth"
	"github.com/AlaBenAicha/sahtee-sub002/internal/db"
	"github.com/AlaBenAicha/sahtee-sub002/internal/models"

	"github.com/gin-gonic/gin"
)

var ctx = context.Background()

func Register(c *gin.Context) {
	var request struct {
		Username       string `json:"username"`
		Email          string `json:"email"`
		Role           string `json:"role"`
		OrganizationID string `json:"organizationId"`
		Password       string `json:"password"`
	}

	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	existingUser, err := models.FindUserByUsername(request.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if existingUser != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		return
	}

	user := models.User{
		Username:       request.Username,
		Email:          request.Email,
		Role:           request.Role,
		OrganizationID: request.OrganizationID,
	}

	if err := user.HashPassword(request.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if err := models.CreateUser(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully"})
}

func Login(c *gin.Context) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.BindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := models.FindUserByUsername(credentials.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := user.CheckPassword(credentials.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	jwtToken, err := auth.GenerateJWT(user.Username, user.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	db.RedisClient.Set(ctx, refreshToken, user.Username+"|"+user.OrganizationID, 24*time.Hour)

	c.JSON(http.StatusOK, gin.H{
		"token":         jwtToken,
		"refresh_token": refreshToken,
		"username":      user.Username,
		"role":          user.Role,
	})
}

func RefreshToken(c *gin.Context) {
	var request struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	value, err := db.RedisClient.Get(ctx, request.RefreshToken).Result()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	username, org := splitToken(value)
	newToken, err := auth.GenerateJWT(username, org)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": newToken})
}

func splitToken(value string) (string, string) {
	for i := 0; i < len(value); i++ {
		if value[i] == '|' {
			return value[:i], value[i+1:]
		}
	}
	return value, ""
}

func GetPermissions(c *gin.Context) {
	permissions := make(map[string]interface{})
	permissions["admin"] = []string{"ActionPlanEdit", "IncidentEdit", "RecommendationDecide", "SeedData"}
	permissions["user"] = []string{"ActionPlanEdit", "IncidentEdit"}
	c.JSON(http.StatusOK, gin.H{"permissions": permissions})
}
