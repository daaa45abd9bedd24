package store

import (
	"context"
	"errors"
	"time"

	"tasknest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskFilter 是任务列表的查询条件。
type TaskFilter struct {
	ListQuery
	Priority    string // 等值过滤：low / medium / high，空串表示不过滤
	IsCompleted *bool  // 等值过滤：nil 表示不过滤
}

// CreateTask 生成 ID 与时间戳后插入任务，返回的就是构造出的实体本身。
func (s *Store) CreateTask(ctx context.Context, task *model.Task) error {
	now := time.Now()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now
	return s.db.WithContext(ctx).Create(task).Error
}

// GetTask 按 ID 查找任务，同时校验归属用户。
func (s *Store) GetTask(ctx context.Context, userID, taskID string) (*model.Task, error) {
	var task model.Task
	if err := s.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// UpdateTask 对任务执行部分更新。
//
// 只有变更集中出现且在允许列表内的字段会进入 SET 子句，
// updated_at 在每次成功更新时强制刷新。
func (s *Store) UpdateTask(ctx context.Context, userID, taskID string, changes map[string]interface{}) (*model.Task, error) {
	updates := filterUpdates(taskUpdatable, changes)
	if len(updates) == 0 {
		return nil, ErrNoFields
	}
	updates["updated_at"] = time.Now()

	if _, err := s.GetTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Task{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetTask(ctx, userID, taskID)
}

// DeleteTask 删除任务及其全部提醒。
func (s *Store) DeleteTask(ctx context.Context, userID, taskID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("task_id = ? AND user_id = ?", taskID, userID).Delete(&model.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("task_id = ?", taskID).Delete(&model.TaskReminder{}).Error
	})
}

// ListTasks 返回某个用户名下经过过滤、排序、分页的任务列表。
//
// 排序列与方向先经过允许列表校验再拼入 ORDER BY，
// limit/offset 只接受已解析过的整数。
// 返回值始终是非 nil 切片，空结果序列化为 [] 而不是 null。
func (s *Store) ListTasks(ctx context.Context, userID string, filter TaskFilter) ([]model.Task, error) {
	order, err := filter.orderClause(TaskSortColumns)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Query != "" {
		q = q.Where("name LIKE ?", "%"+filter.Query+"%")
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.IsCompleted != nil {
		q = q.Where("is_completed = ?", *filter.IsCompleted)
	}

	tasks := []model.Task{}
	if err := q.Order(order).Limit(filter.Limit).Offset(filter.Offset).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
