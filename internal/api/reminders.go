package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"tasknest/internal/model"
	"tasknest/internal/store"

	"github.com/gin-gonic/gin"
)

type createReminderRequest struct {
	TaskID       string     `json:"task_id" binding:"required"`
	ReminderTime *time.Time `json:"reminder_time" binding:"required"`
}

type updateReminderRequest struct {
	TaskID       *string    `json:"task_id"`
	ReminderTime *time.Time `json:"reminder_time"`
}

// handleCreateReminder 在任务上创建提醒。
//
// POST /task_reminders
func (s *Server) handleCreateReminder(c *gin.Context) {
	var req createReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	userID := getUserID(c)

	reminder := model.TaskReminder{
		TaskID:       req.TaskID,
		ReminderTime: *req.ReminderTime,
	}

	if err := s.store.CreateReminder(c.Request.Context(), userID, &reminder); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		s.logger.Error("create reminder failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create reminder failed"})
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

// handleListReminders 返回提醒列表。
//
// GET /task_reminders?task_id=&reminder_time=&limit=&offset=
func (s *Server) handleListReminders(c *gin.Context) {
	userID := getUserID(c)

	filter := store.ReminderFilter{
		TaskID: c.Query("task_id"),
		Limit:  s.cfg.App.DefaultPageSize,
		Offset: 0,
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be a positive integer"})
			return
		}
		if limit > s.cfg.App.MaxPageSize {
			limit = s.cfg.App.MaxPageSize
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "offset must be a non-negative integer"})
			return
		}
		filter.Offset = offset
	}
	if raw := c.Query("reminder_time"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "reminder_time must be an RFC 3339 timestamp"})
			return
		}
		filter.ReminderTime = &at
	}

	reminders, err := s.store.ListReminders(c.Request.Context(), userID, filter)
	if err != nil {
		s.listError(c, err)
		return
	}

	c.JSON(http.StatusOK, reminders)
}

// handleGetReminder 返回提醒详情。
//
// GET /task_reminders/:reminder_id
func (s *Server) handleGetReminder(c *gin.Context) {
	reminderID := c.Param("reminder_id")

	reminder, err := s.store.GetReminder(c.Request.Context(), reminderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Reminder not found"})
			return
		}
		s.logger.Error("get reminder failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query reminder failed"})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// handleUpdateReminder 对提醒执行部分更新。
//
// PUT /task_reminders/:reminder_id
func (s *Server) handleUpdateReminder(c *gin.Context) {
	userID := getUserID(c)
	reminderID := c.Param("reminder_id")

	var req updateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}

	changes := map[string]interface{}{}
	if req.TaskID != nil {
		// 换绑任务前先校验目标任务归属于当前用户
		if _, err := s.store.GetTask(c.Request.Context(), userID, *req.TaskID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
				return
			}
			s.logger.Error("check task failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "query task failed"})
			return
		}
		changes["task_id"] = *req.TaskID
	}
	if req.ReminderTime != nil {
		changes["reminder_time"] = *req.ReminderTime
	}

	reminder, err := s.store.UpdateReminder(c.Request.Context(), reminderID, changes)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoFields):
			c.JSON(http.StatusBadRequest, gin.H{"message": "No valid fields to update"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Reminder not found"})
		default:
			s.logger.Error("update reminder failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "update reminder failed"})
		}
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// handleDeleteReminder 删除提醒。
//
// DELETE /task_reminders/:reminder_id
func (s *Server) handleDeleteReminder(c *gin.Context) {
	reminderID := c.Param("reminder_id")

	if err := s.store.DeleteReminder(c.Request.Context(), reminderID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Reminder not found"})
			return
		}
		s.logger.Error("delete reminder failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "delete reminder failed"})
		return
	}

	c.Status(http.StatusNoContent)
}
