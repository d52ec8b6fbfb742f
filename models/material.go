package models

import "gorm.io/datatypes"

// LearningMaterial 学习资料
// 教师上传的资料记录，文件内容保存在对象存储中
type LearningMaterial struct {
	BaseModel
	TeacherID     uint           `gorm:"not null;index" json:"teacher_id"`
	Name          string         `gorm:"not null" json:"name"`
	FileType      string         `gorm:"not null" json:"file_type"`
	FileExtension string         `gorm:"not null;default:''" json:"file_extension"`
	FileURL       string         `gorm:"not null" json:"file_url"`
	Tags          datatypes.JSON `gorm:"type:jsonb" json:"tags"`
}

func (LearningMaterial) TableName() string {
	return "learning_materials"
}
