package model

import (
	"time"
)

// Task 表示一条待办任务。
//
// 任务归属于某个用户（UserID 不可变更），可选地挂在一个分类下。
// 每次修改都会刷新 UpdatedAt。
type Task struct {
	ID        string    `gorm:"column:task_id;primaryKey;type:varchar(36)" json:"task_id"` // 任务 ID (UUID)
	CreatedAt time.Time `json:"created_at"`                                                // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                                // 更新时间

	UserID      string     `gorm:"type:varchar(36);index;not null" json:"user_id"` // 所属用户 ID
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`         // 任务名称
	Description *string    `json:"description"`                                    // 描述（可空）
	DueDate     *time.Time `json:"due_date"`                                       // 截止时间（可空）
	Priority    string     `gorm:"type:varchar(16);default:low" json:"priority"`   // 优先级: low / medium / high
	CategoryID  *string    `gorm:"type:varchar(36)" json:"category_id"`            // 所属分类 ID（可空）
	IsCompleted bool       `gorm:"default:false" json:"is_completed"`              // 是否已完成

	Reminders []TaskReminder `gorm:"foreignKey:TaskID" json:"-"` // 关联的提醒列表
}

// Category 表示用户自定义的任务分类。
type Category struct {
	ID        string    `gorm:"column:category_id;primaryKey;type:varchar(36)" json:"category_id"` // 分类 ID (UUID)
	CreatedAt time.Time `json:"created_at"`                                                        // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                                        // 更新时间

	UserID    string `gorm:"type:varchar(36);index;not null" json:"user_id"` // 所属用户 ID
	Name      string `gorm:"type:varchar(255);not null" json:"name"`         // 分类名称
	ColorCode string `gorm:"type:varchar(16)" json:"color_code"`             // 颜色码（如 #FF8800）
}

// TaskReminder 表示任务上的一条提醒，一个任务可以有多条。
type TaskReminder struct {
	ID           string    `gorm:"column:reminder_id;primaryKey;type:varchar(36)" json:"reminder_id"` // 提醒 ID (UUID)
	TaskID       string    `gorm:"type:varchar(36);index;not null" json:"task_id"`                    // 所属任务 ID
	ReminderTime time.Time `gorm:"not null" json:"reminder_time"`                                     // 提醒时间
}
