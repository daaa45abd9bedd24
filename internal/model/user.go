package model

import "time"

// User 表示系统用户。
//
// ID 为服务端生成的 UUID 字符串，邮箱带唯一索引，
// 注册时的重复插入由数据库约束拦截。
type User struct {
	ID           string    `gorm:"column:user_id;primaryKey;type:varchar(36)" json:"user_id"` // 用户 ID (UUID)
	Email        string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`       // 邮箱（唯一）
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`                    // 显示名称
	PasswordHash string    `gorm:"not null" json:"-"`                                         // bcrypt 哈希，永不出现在响应中
	CreatedAt    time.Time `json:"created_at"`                                                // 创建时间

	Tasks      []Task     `gorm:"foreignKey:UserID" json:"-"`
	Categories []Category `gorm:"foreignKey:UserID" json:"-"`
}

// UserPreference 表示用户的展示偏好，与 User 一对一。
//
// 注册时随用户一起创建，使用文档化的默认值。
type UserPreference struct {
	UserID             string `gorm:"column:user_id;primaryKey;type:varchar(36)" json:"user_id"` // 所属用户 ID
	Theme              string `gorm:"type:varchar(16);default:light" json:"theme"`               // 主题: light / dark / creative
	DefaultView        string `gorm:"type:varchar(16);default:list" json:"default_view"`         // 默认视图: list / board
	EmailNotifications bool   `gorm:"default:true" json:"email_notifications"`                   // 邮件通知开关
	InAppNotifications bool   `gorm:"default:true" json:"in_app_notifications"`                  // 站内通知开关
}
