package models

// User 用户模型
// 存储教师和学生的账户信息，手机号唯一标识一个账户
type User struct {
	BaseModel
	Phone    string `gorm:"uniqueIndex;not null" json:"phone"`
	Name     string `gorm:"not null" json:"name"`
	School   string `gorm:"not null" json:"school"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash
	Role     string `gorm:"not null" json:"role"` // teacher 或 student
}

func (User) TableName() string {
	return "users"
}
