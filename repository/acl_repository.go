package repository

import (
	"github.com/learnpet/learnpet/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ACLRepository 对象 ACL 策略存取
// 策略落库而非进程内 map，重启和多实例下保持一致
type ACLRepository interface {
	Upsert(objectPath, owner, visibility string) error
	GetByPath(objectPath string) (*models.ObjectACLPolicy, error)
	DeleteByPath(objectPath string) error
}

type ACLRepositoryImpl struct {
	db *gorm.DB
}

func NewACLRepository(db *gorm.DB) ACLRepository {
	return &ACLRepositoryImpl{db: db}
}

func (r *ACLRepositoryImpl) Upsert(objectPath, owner, visibility string) error {
	policy := &models.ObjectACLPolicy{
		ObjectPath: objectPath,
		Owner:      owner,
		Visibility: visibility,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "object_path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"owner":      owner,
			"visibility": visibility,
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(policy).Error
}

func (r *ACLRepositoryImpl) GetByPath(objectPath string) (*models.ObjectACLPolicy, error) {
	var policy models.ObjectACLPolicy
	err := r.db.Where("object_path = ?", objectPath).First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *ACLRepositoryImpl) DeleteByPath(objectPath string) error {
	return r.db.Where("object_path = ?", objectPath).Delete(&models.ObjectACLPolicy{}).Error
}
