package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bitbucket.org/vetadata/iga_backend/models"
	"bitbucket.org/vetadata/iga_backend/utils"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return c.ClientIP()
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}

		info, err := models.Login(c.Request.Context(), req.Email, req.Password,
			clientIP(c), c.Request.UserAgent())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"loggedOut": ok})
	}
}

func currentUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user, err := models.GetUser(c.Request.Context(), userId)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

func changePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		if err := models.ChangePassword(c.Request.Context(), userId, req.CurrentPassword, req.NewPassword); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"changed": true})
	}
}
