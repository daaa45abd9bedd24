package store

import (
	"context"
	"errors"
	"fmt"

	"tasknest/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// 持久化层的哨兵错误，由 handler 映射为 HTTP 状态码。
var (
	ErrNotFound    = errors.New("record not found")
	ErrConflict    = errors.New("duplicate key")
	ErrNoFields    = errors.New("no valid fields to update")
	ErrInvalidSort = errors.New("invalid sort parameter")
)

// Store 封装了所有实体的数据库操作。
//
// 它持有 GORM 连接池，在进程启动时显式构造，关闭时显式释放，
// 不依赖任何包级可变状态。
type Store struct {
	db *gorm.DB
}

// Open 连接 MySQL 并执行自动迁移。
//
// TranslateError 开启后，唯一索引冲突会被转换为 gorm.ErrDuplicatedKey，
// 这是注册接口判定邮箱重复的唯一依据（不做 SELECT 预检查）。
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent), // 关闭GORM调试日志
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// New 基于已有的 GORM 连接构造 Store 并执行自动迁移，主要用于测试。
func New(db *gorm.DB) (*Store, error) {
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.UserPreference{},
		&model.Task{},
		&model.Category{},
		&model.TaskReminder{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping 检查数据库连通性。
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

// Close 归还数据库连接池。
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListQuery 是所有列表接口共享的分页与排序参数。
//
// SortBy 必须出现在实体各自的允许列表中，SortOrder 只能是 asc / desc，
// 两者在拼入 ORDER BY 之前都会被校验，用户输入永远不会原样进入 SQL。
type ListQuery struct {
	Query     string // 针对文本字段的子串过滤（LIKE）
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// 各实体允许的排序列。键是外部参数名，值是实际列名。
var (
	TaskSortColumns = map[string]string{
		"name":       "name",
		"due_date":   "due_date",
		"created_at": "created_at",
	}
	CategorySortColumns = map[string]string{
		"name":       "name",
		"created_at": "created_at",
	}
	UserSortColumns = map[string]string{
		"name":       "name",
		"created_at": "created_at",
	}
)

// orderClause 将排序参数转换为安全的 ORDER BY 片段。
func (q ListQuery) orderClause(allowed map[string]string) (string, error) {
	column, ok := allowed[q.SortBy]
	if !ok {
		return "", fmt.Errorf("%w: sort_by %q", ErrInvalidSort, q.SortBy)
	}
	switch q.SortOrder {
	case "asc", "desc":
	default:
		return "", fmt.Errorf("%w: sort_order %q", ErrInvalidSort, q.SortOrder)
	}
	return column + " " + q.SortOrder, nil
}

// 各实体部分更新时允许变更的列。由 filterUpdates 统一消费，
// 不在列表中的字段即使出现在请求里也会被丢弃。
var (
	userUpdatable       = []string{"email", "name", "password_hash"}
	preferenceUpdatable = []string{"theme", "default_view", "email_notifications", "in_app_notifications"}
	taskUpdatable       = []string{"name", "description", "due_date", "priority", "category_id", "is_completed"}
	categoryUpdatable   = []string{"name", "color_code"}
	reminderUpdatable   = []string{"task_id", "reminder_time"}
)

// filterUpdates 按允许列表筛选变更字段，构造部分更新的 SET 集合。
func filterUpdates(allowed []string, changes map[string]interface{}) map[string]interface{} {
	updates := map[string]interface{}{}
	for _, field := range allowed {
		if v, ok := changes[field]; ok {
			updates[field] = v
		}
	}
	return updates
}
