package store

import (
	"context"
	"errors"
	"time"

	"tasknest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCategory 生成 ID 与时间戳后插入分类。
func (s *Store) CreateCategory(ctx context.Context, category *model.Category) error {
	now := time.Now()
	category.ID = uuid.NewString()
	category.CreatedAt = now
	category.UpdatedAt = now
	return s.db.WithContext(ctx).Create(category).Error
}

// GetCategory 按 ID 查找分类，同时校验归属用户。
func (s *Store) GetCategory(ctx context.Context, userID, categoryID string) (*model.Category, error) {
	var category model.Category
	if err := s.db.WithContext(ctx).
		Where("category_id = ? AND user_id = ?", categoryID, userID).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// UpdateCategory 对分类执行部分更新，updated_at 强制刷新。
func (s *Store) UpdateCategory(ctx context.Context, userID, categoryID string, changes map[string]interface{}) (*model.Category, error) {
	updates := filterUpdates(categoryUpdatable, changes)
	if len(updates) == 0 {
		return nil, ErrNoFields
	}
	updates["updated_at"] = time.Now()

	if _, err := s.GetCategory(ctx, userID, categoryID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Category{}).
		Where("category_id = ? AND user_id = ?", categoryID, userID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetCategory(ctx, userID, categoryID)
}

// DeleteCategory 删除分类，并将引用它的任务的 category_id 置空。
func (s *Store) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("category_id = ? AND user_id = ?", categoryID, userID).Delete(&model.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&model.Task{}).
			Where("category_id = ? AND user_id = ?", categoryID, userID).
			Update("category_id", nil).Error
	})
}

// ListCategories 返回某个用户名下经过过滤、排序、分页的分类列表。
// 返回值始终是非 nil 切片，空结果序列化为 [] 而不是 null。
func (s *Store) ListCategories(ctx context.Context, userID string, query ListQuery) ([]model.Category, error) {
	order, err := query.orderClause(CategorySortColumns)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if query.Query != "" {
		q = q.Where("name LIKE ?", "%"+query.Query+"%")
	}

	categories := []model.Category{}
	if err := q.Order(order).Limit(query.Limit).Offset(query.Offset).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
