package models

// ObjectACLPolicy 对象访问控制策略
// 每个对象路径一行（如 /objects/uploads/xxx），owner 为用户ID的字符串形式。
// 策略缺失视为不可访问，而不是公开。
type ObjectACLPolicy struct {
	BaseModel
	ObjectPath string `gorm:"uniqueIndex;not null" json:"object_path"`
	Owner      string `gorm:"not null" json:"owner"`
	Visibility string `gorm:"not null" json:"visibility"` // public 或 private
}

func (ObjectACLPolicy) TableName() string {
	return "object_acl_policies"
}
