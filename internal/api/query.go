package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"tasknest/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// parseListQuery 解析列表接口共享的分页与排序参数。
//
// limit 必须是正整数（默认取配置值并受最大值约束），offset 必须非负，
// sort_order 只接受 asc / desc。任何非法取值都会直接写出 400 响应
// 并返回 ok=false，sort_by 的允许列表校验则留给 Store。
func (s *Server) parseListQuery(c *gin.Context, defaultSort string) (store.ListQuery, bool) {
	q := store.ListQuery{
		Query:     c.Query("query"),
		Limit:     s.cfg.App.DefaultPageSize,
		Offset:    0,
		SortBy:    defaultSort,
		SortOrder: "desc",
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be a positive integer"})
			return q, false
		}
		if limit > s.cfg.App.MaxPageSize {
			limit = s.cfg.App.MaxPageSize
		}
		q.Limit = limit
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "offset must be a non-negative integer"})
			return q, false
		}
		q.Offset = offset
	}

	if raw := c.Query("sort_by"); raw != "" {
		q.SortBy = raw
	}

	if raw := c.Query("sort_order"); raw != "" {
		order := strings.ToLower(strings.TrimSpace(raw))
		if order != "asc" && order != "desc" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "sort_order must be asc or desc"})
			return q, false
		}
		q.SortOrder = order
	}

	return q, true
}

// listError 把列表查询的存储层错误映射为响应。
func (s *Server) listError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrInvalidSort) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	s.logger.Error("list query failed", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed"})
}

// bindMessage 把 gin 的绑定错误整理成指明字段与约束的消息。
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("field %s failed on the %q constraint", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
