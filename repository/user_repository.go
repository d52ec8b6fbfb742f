package repository

import (
	"github.com/learnpet/learnpet/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	BaseRepository[models.User]
	GetByPhone(phone string) (*models.User, error)
	UpdateProfile(id uint, name, school string) (*models.User, error)
}

type UserRepositoryImpl struct {
	*BaseRepositoryImpl[models.User]
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.User](db),
	}
}

func (r *UserRepositoryImpl) GetByPhone(phone string) (*models.User, error) {
	var user models.User
	err := r.db.Where("phone = ?", phone).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile 仅更新姓名和学校，手机号与角色不可变
func (r *UserRepositoryImpl) UpdateProfile(id uint, name, school string) (*models.User, error) {
	result := r.db.Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "school": school})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(id)
}
