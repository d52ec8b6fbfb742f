package models

import (
	"time"

	"gorm.io/gorm"
)

// 基础模型
type BaseModel struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 用户角色常量
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// 对象可见性常量
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)
