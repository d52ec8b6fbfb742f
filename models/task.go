package models

import "time"

// Task 任务模型
// 教师面向某个班级发布的任务，提交后按 points 奖励积分
type Task struct {
	BaseModel
	TeacherID     uint      `gorm:"not null;index" json:"teacher_id"`
	ClassID       uint      `gorm:"not null;index" json:"class_id"`
	Title         string    `gorm:"not null" json:"title"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	Points        int       `gorm:"not null" json:"points"`
	Deadline      time.Time `gorm:"not null" json:"deadline"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskSubmission 任务提交
// 复合唯一索引：每个学生对每个任务至多提交一次
type TaskSubmission struct {
	BaseModel
	TaskID        uint      `gorm:"not null;uniqueIndex:uniq_task_student" json:"task_id"`
	StudentID     uint      `gorm:"not null;uniqueIndex:uniq_task_student" json:"student_id"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	SubmittedAt   time.Time `gorm:"not null" json:"submitted_at"`
}

func (TaskSubmission) TableName() string {
	return "task_submissions"
}
