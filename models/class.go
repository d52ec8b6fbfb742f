package models

import "time"

// Class 班级模型
// 每个班级由一位教师独占拥有
type Class struct {
	BaseModel
	TeacherID uint   `gorm:"not null;index" json:"teacher_id"`
	Year      string `gorm:"not null" json:"year"`
	ClassName string `gorm:"not null" json:"class_name"`
	Subject   string `gorm:"not null" json:"subject"`
}

func (Class) TableName() string {
	return "classes"
}

// ClassMember 班级成员
// 复合唯一索引保证同一学生不能重复加入同一班级
type ClassMember struct {
	BaseModel
	ClassID   uint      `gorm:"not null;uniqueIndex:uniq_class_student" json:"class_id"`
	StudentID uint      `gorm:"not null;uniqueIndex:uniq_class_student" json:"student_id"`
	JoinedAt  time.Time `gorm:"not null" json:"joined_at"`
}

func (ClassMember) TableName() string {
	return "class_members"
}
