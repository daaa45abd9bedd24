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

// createTaskRequest 创建任务的请求参数。
// 服务端负责补齐默认值：priority=low，is_completed=false。
type createTaskRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=255"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	CategoryID  *string    `json:"category_id"`
	IsCompleted *bool      `json:"is_completed"`
}

type updateTaskRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	CategoryID  *string    `json:"category_id"`
	IsCompleted *bool      `json:"is_completed"`
}

// handleCreateTask 创建任务。
//
// POST /tasks
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	userID := getUserID(c)

	priority := req.Priority
	if priority == "" {
		priority = "low"
	}
	isCompleted := false
	if req.IsCompleted != nil {
		isCompleted = *req.IsCompleted
	}

	task := model.Task{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    priority,
		CategoryID:  req.CategoryID,
		IsCompleted: isCompleted,
	}

	if err := s.store.CreateTask(c.Request.Context(), &task); err != nil {
		s.logger.Error("create task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create task failed"})
		return
	}

	c.JSON(http.StatusCreated, task)
}

// handleListTasks 返回任务列表。
//
// GET /tasks?query=&limit=&offset=&sort_by=&sort_order=&priority=&is_completed=
func (s *Server) handleListTasks(c *gin.Context) {
	userID := getUserID(c)

	q, ok := s.parseListQuery(c, "created_at")
	if !ok {
		return
	}

	filter := store.TaskFilter{ListQuery: q}
	if raw := c.Query("priority"); raw != "" {
		switch raw {
		case "low", "medium", "high":
			filter.Priority = raw
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": "priority must be low, medium or high"})
			return
		}
	}
	if raw := c.Query("is_completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "is_completed must be a boolean"})
			return
		}
		filter.IsCompleted = &completed
	}

	tasks, err := s.store.ListTasks(c.Request.Context(), userID, filter)
	if err != nil {
		s.listError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// handleGetTask 返回任务详情。
//
// GET /tasks/:task_id
func (s *Server) handleGetTask(c *gin.Context) {
	userID := getUserID(c)
	taskID := c.Param("task_id")

	task, err := s.store.GetTask(c.Request.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		s.logger.Error("get task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query task failed"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// handleUpdateTask 对任务执行部分更新。
//
// PUT /tasks/:task_id
func (s *Server) handleUpdateTask(c *gin.Context) {
	userID := getUserID(c)
	taskID := c.Param("task_id")

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.DueDate != nil {
		changes["due_date"] = *req.DueDate
	}
	if req.Priority != nil {
		changes["priority"] = *req.Priority
	}
	if req.CategoryID != nil {
		changes["category_id"] = *req.CategoryID
	}
	if req.IsCompleted != nil {
		changes["is_completed"] = *req.IsCompleted
	}

	task, err := s.store.UpdateTask(c.Request.Context(), userID, taskID, changes)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoFields):
			c.JSON(http.StatusBadRequest, gin.H{"message": "No valid fields to update"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		default:
			s.logger.Error("update task failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "update task failed"})
		}
		return
	}

	c.JSON(http.StatusOK, task)
}

// handleDeleteTask 删除任务及其提醒。
//
// DELETE /tasks/:task_id
func (s *Server) handleDeleteTask(c *gin.Context) {
	userID := getUserID(c)
	taskID := c.Param("task_id")

	if err := s.store.DeleteTask(c.Request.Context(), userID, taskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		s.logger.Error("delete task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "delete task failed"})
		return
	}

	c.Status(http.StatusNoContent)
}
