package models

// 每 100 经验升一级
const PetExpPerLevel = 100

// Pet 宠物模型
// 复合唯一索引：每个学生在每个班级至多领养一只宠物。
// Level 是 Experience 的派生缓存，两者必须一起写入。
type Pet struct {
	BaseModel
	StudentID   uint   `gorm:"not null;uniqueIndex:uniq_student_class_pet" json:"student_id"`
	ClassID     uint   `gorm:"not null;uniqueIndex:uniq_student_class_pet" json:"class_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
	ImageURL    string `gorm:"not null" json:"image_url"`
	Level       int    `gorm:"not null;default:1" json:"level"`
	Experience  int    `gorm:"not null;default:0" json:"experience"`
}

func (Pet) TableName() string {
	return "pets"
}

// LevelForExperience 等级换算：level = experience/100 + 1
func LevelForExperience(exp int) int {
	return exp/PetExpPerLevel + 1
}
