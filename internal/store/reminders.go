package store

import (
	"context"
	"errors"
	"time"

	"tasknest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderFilter 是提醒列表的查询条件。提醒没有用户可见的排序参数，
// 固定按提醒时间升序返回。
type ReminderFilter struct {
	TaskID       string     // 等值过滤：空串表示不过滤
	ReminderTime *time.Time // 等值过滤：nil 表示不过滤
	Limit        int
	Offset       int
}

// CreateReminder 校验任务归属后插入提醒。
func (s *Store) CreateReminder(ctx context.Context, userID string, reminder *model.TaskReminder) error {
	if _, err := s.GetTask(ctx, userID, reminder.TaskID); err != nil {
		return err
	}
	reminder.ID = uuid.NewString()
	return s.db.WithContext(ctx).Create(reminder).Error
}

// GetReminder 按 ID 查找提醒。
func (s *Store) GetReminder(ctx context.Context, reminderID string) (*model.TaskReminder, error) {
	var reminder model.TaskReminder
	if err := s.db.WithContext(ctx).
		Where("reminder_id = ?", reminderID).
		First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reminder, nil
}

// UpdateReminder 对提醒执行部分更新。
func (s *Store) UpdateReminder(ctx context.Context, reminderID string, changes map[string]interface{}) (*model.TaskReminder, error) {
	updates := filterUpdates(reminderUpdatable, changes)
	if len(updates) == 0 {
		return nil, ErrNoFields
	}

	if _, err := s.GetReminder(ctx, reminderID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.TaskReminder{}).
		Where("reminder_id = ?", reminderID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetReminder(ctx, reminderID)
}

// DeleteReminder 按 ID 删除提醒。
func (s *Store) DeleteReminder(ctx context.Context, reminderID string) error {
	res := s.db.WithContext(ctx).Where("reminder_id = ?", reminderID).Delete(&model.TaskReminder{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReminders 返回经过过滤、分页的提醒列表，限定在请求用户自己的任务上。
// 返回值始终是非 nil 切片，空结果序列化为 [] 而不是 null。
func (s *Store) ListReminders(ctx context.Context, userID string, filter ReminderFilter) ([]model.TaskReminder, error) {
	q := s.db.WithContext(ctx).Model(&model.TaskReminder{}).
		Joins("JOIN tasks ON tasks.task_id = task_reminders.task_id").
		Where("tasks.user_id = ?", userID)
	if filter.TaskID != "" {
		q = q.Where("task_reminders.task_id = ?", filter.TaskID)
	}
	if filter.ReminderTime != nil {
		q = q.Where("task_reminders.reminder_time = ?", *filter.ReminderTime)
	}

	reminders := []model.TaskReminder{}
	if err := q.Order("task_reminders.reminder_time ASC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}
