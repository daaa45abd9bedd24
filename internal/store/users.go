package store

import (
	"context"
	"errors"
	"time"

	"tasknest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateUser 创建用户及其默认偏好，两者在同一事务内写入。
//
// 邮箱唯一性完全依赖存储层的唯一索引：并发注册时后到的事务
// 会收到重复键错误，这里将其转换为 ErrConflict。
func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (*model.User, *model.UserPreference, error) {
	now := time.Now()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	pref := &model.UserPreference{
		UserID:             user.ID,
		Theme:              "light",
		DefaultView:        "list",
		EmailNotifications: true,
		InAppNotifications: true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(pref).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrConflict
		}
		return nil, nil, err
	}
	return user, pref, nil
}

// GetUser 按 ID 查找用户。
func (s *Store) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail 按邮箱查找用户。
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser 对用户执行部分更新并返回更新后的记录。
func (s *Store) UpdateUser(ctx context.Context, userID string, changes map[string]interface{}) (*model.User, error) {
	updates := filterUpdates(userUpdatable, changes)
	if len(updates) == 0 {
		return nil, ErrNoFields
	}

	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return s.GetUser(ctx, userID)
}

// GetPreference 返回用户的展示偏好。
func (s *Store) GetPreference(ctx context.Context, userID string) (*model.UserPreference, error) {
	var pref model.UserPreference
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pref, nil
}

// UpdatePreference 对用户偏好执行部分更新并返回更新后的记录。
func (s *Store) UpdatePreference(ctx context.Context, userID string, changes map[string]interface{}) (*model.UserPreference, error) {
	updates := filterUpdates(preferenceUpdatable, changes)
	if len(updates) == 0 {
		return nil, ErrNoFields
	}

	if _, err := s.GetPreference(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.UserPreference{}).
		Where("user_id = ?", userID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetPreference(ctx, userID)
}
