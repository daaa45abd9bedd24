package api

import (
	"errors"
	"log/slog"
	"net/http"

	"tasknest/internal/model"
	"tasknest/internal/store"

	"github.com/gin-gonic/gin"
)

type createCategoryRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=255"`
	ColorCode string `json:"color_code" binding:"required"`
}

type updateCategoryRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=255"`
	ColorCode *string `json:"color_code"`
}

// handleCreateCategory 创建分类。
//
// POST /categories
func (s *Server) handleCreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}
	userID := getUserID(c)

	category := model.Category{
		UserID:    userID,
		Name:      req.Name,
		ColorCode: req.ColorCode,
	}

	if err := s.store.CreateCategory(c.Request.Context(), &category); err != nil {
		s.logger.Error("create category failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create category failed"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// handleListCategories 返回分类列表。
//
// GET /categories?query=&limit=&offset=&sort_by=&sort_order=
func (s *Server) handleListCategories(c *gin.Context) {
	userID := getUserID(c)

	q, ok := s.parseListQuery(c, "created_at")
	if !ok {
		return
	}

	categories, err := s.store.ListCategories(c.Request.Context(), userID, q)
	if err != nil {
		s.listError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// handleGetCategory 返回分类详情。
//
// GET /categories/:category_id
func (s *Server) handleGetCategory(c *gin.Context) {
	userID := getUserID(c)
	categoryID := c.Param("category_id")

	category, err := s.store.GetCategory(c.Request.Context(), userID, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
			return
		}
		s.logger.Error("get category failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query category failed"})
		return
	}

	c.JSON(http.StatusOK, category)
}

// handleUpdateCategory 对分类执行部分更新。
//
// PUT /categories/:category_id
func (s *Server) handleUpdateCategory(c *gin.Context) {
	userID := getUserID(c)
	categoryID := c.Param("category_id")

	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindMessage(err)})
		return
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.ColorCode != nil {
		changes["color_code"] = *req.ColorCode
	}

	category, err := s.store.UpdateCategory(c.Request.Context(), userID, categoryID, changes)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoFields):
			c.JSON(http.StatusBadRequest, gin.H{"message": "No valid fields to update"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
		default:
			s.logger.Error("update category failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "update category failed"})
		}
		return
	}

	c.JSON(http.StatusOK, category)
}

// handleDeleteCategory 删除分类，引用它的任务回退为未分类。
//
// DELETE /categories/:category_id
func (s *Server) handleDeleteCategory(c *gin.Context) {
	userID := getUserID(c)
	categoryID := c.Param("category_id")

	if err := s.store.DeleteCategory(c.Request.Context(), userID, categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
			return
		}
		s.logger.Error("delete category failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "delete category failed"})
		return
	}

	c.Status(http.StatusNoContent)
}
