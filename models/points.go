package models

// UserPoints 积分台账
// 每个 (学生, 班级) 一行。TotalPoints 只增不减（提交任务奖励），
// SpentPoints 记录喂养宠物消耗的累计积分，可用余额 = Total - Spent。
type UserPoints struct {
	BaseModel
	StudentID   uint `gorm:"not null;uniqueIndex:uniq_student_class_points" json:"student_id"`
	ClassID     uint `gorm:"not null;uniqueIndex:uniq_student_class_points" json:"class_id"`
	TotalPoints int  `gorm:"not null;default:0" json:"total_points"`
	SpentPoints int  `gorm:"not null;default:0" json:"spent_points"`
}

func (UserPoints) TableName() string {
	return "user_points"
}

// Remaining 可用积分余额
func (p *UserPoints) Remaining() int {
	return p.TotalPoints - p.SpentPoints
}
