package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"tasknest/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type updateUserRequest struct {
	Email              *string `json:"email" binding:"omitempty,email"`
	Name               *string `json:"name" binding:"omitempty,min=1,max=255"`
	PasswordCredential *string `json:"password_credential" binding:"omitempty,min=6"`
}

type updatePreferenceRequest struct {
	Theme              *string `json:"theme" binding:"omitempty,oneof=light dark creative"`
	DefaultView        *string `json:"default_view" binding:"omitempty,oneof=list board"`
	EmailNotifications *bool   `json:"email_notifications"`
	InAppNotifications *bool   `json:"in_app_notifications"`
}

// handleGetUser 返回用户资料。
//
// GET /users/:user_id
func (s *Server) handleGetUser(c *gin.Context) {
	userID := c.Param("user_id")

	user, err := s.store.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		s.logger.Error("get user failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query user failed"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// handleUpdateUser 对用户资料执行部分更新。
//
// PUT /users/:user_id
func (s *Server) handleUpdateUser(c *gin.Context) {
	userID := c.Param("user_id")

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}

	changes := map[string]interface{}{}
	if req.Email != nil {
		changes["email"] = strings.TrimSpace(strings.ToLower(*req.Email))
	}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.PasswordCredential != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.PasswordCredential), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "hash password failed"})
			return
		}
		changes["password_hash"] = string(hash)
	}

	user, err := s.store.UpdateUser(c.Request.Context(), userID, changes)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoFields):
			c.JSON(http.StatusBadRequest, gin.H{"message": "No valid fields to update"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		case errors.Is(err, store.ErrConflict):
			c.JSON(http.StatusBadRequest, gin.H{"message": "User with this email already exists"})
		default:
			s.logger.Error("update user failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "update user failed"})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// handleGetPreferences 返回当前用户的展示偏好。
//
// GET /preferences
func (s *Server) handleGetPreferences(c *gin.Context) {
	userID := getUserID(c)

	pref, err := s.store.GetPreference(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User preferences not found"})
			return
		}
		s.logger.Error("get preferences failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query preferences failed"})
		return
	}

	c.JSON(http.StatusOK, pref)
}

// handleUpdatePreferences 对当前用户的展示偏好执行部分更新。
//
// PUT /preferences
func (s *Server) handleUpdatePreferences(c *gin.Context) {
	userID := getUserID(c)

	var req updatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}

	changes := map[string]interface{}{}
	if req.Theme != nil {
		changes["theme"] = *req.Theme
	}
	if req.DefaultView != nil {
		changes["default_view"] = *req.DefaultView
	}
	if req.EmailNotifications != nil {
		changes["email_notifications"] = *req.EmailNotifications
	}
	if req.InAppNotifications != nil {
		changes["in_app_notifications"] = *req.InAppNotifications
	}

	pref, err := s.store.UpdatePreference(c.Request.Context(), userID, changes)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoFields):
			c.JSON(http.StatusBadRequest, gin.H{"message": "No valid fields to update"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User preferences not found"})
		default:
			s.logger.Error("update preferences failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "update preferences failed"})
		}
		return
	}

	c.JSON(http.StatusOK, pref)
}
