package repository

import (
	"errors"

	"github.com/learnpet/learnpet/models"

	"gorm.io/gorm"
)

type PetRepository interface {
	BaseRepository[models.Pet]
	GetByStudentAndClass(studentID, classID uint) (*models.Pet, error)
	GetByIDAndStudent(petID, studentID uint) (*models.Pet, error)
	ListByStudent(studentID uint) ([]*models.Pet, error)
	// Feed 单条 UPDATE 同时写经验和等级，等级由旧行经验值推导，
	// 保证 level == experience/100 + 1 在并发喂养下也成立
	Feed(petID uint, points int) (*models.Pet, error)
	// FeedSpending 扣减积分余额和增加经验在同一事务里提交，
	// 返回 false 表示余额不足（事务回滚，经验和余额都不变）
	FeedSpending(petID, studentID, classID uint, points int) (*models.Pet, bool, error)
}

type PetRepositoryImpl struct {
	*BaseRepositoryImpl[models.Pet]
}

func NewPetRepository(db *gorm.DB) PetRepository {
	return &PetRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Pet](db),
	}
}

func (r *PetRepositoryImpl) GetByStudentAndClass(studentID, classID uint) (*models.Pet, error) {
	var pet models.Pet
	err := r.db.Where("student_id = ? AND class_id = ?", studentID, classID).First(&pet).Error
	if err != nil {
		return nil, err
	}
	return &pet, nil
}

func (r *PetRepositoryImpl) GetByIDAndStudent(petID, studentID uint) (*models.Pet, error) {
	var pet models.Pet
	err := r.db.Where("id = ? AND student_id = ?", petID, studentID).First(&pet).Error
	if err != nil {
		return nil, err
	}
	return &pet, nil
}

func (r *PetRepositoryImpl) ListByStudent(studentID uint) ([]*models.Pet, error) {
	var pets []*models.Pet
	err := r.db.Where("student_id = ?", studentID).Order("created_at ASC").Find(&pets).Error
	return pets, err
}

// feedPet 右侧表达式引用的都是更新前的列值，
// 即 experience = experience + p, level = (experience + p)/100 + 1
func feedPet(db *gorm.DB, petID uint, points int) error {
	result := db.Model(&models.Pet{}).Where("id = ?", petID).
		UpdateColumns(map[string]interface{}{
			"experience": gorm.Expr("experience + ?", points),
			"level":      gorm.Expr("(experience + ?) / ? + 1", points, models.PetExpPerLevel),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PetRepositoryImpl) Feed(petID uint, points int) (*models.Pet, error) {
	if err := feedPet(r.db, petID, points); err != nil {
		return nil, err
	}
	return r.GetByID(petID)
}

var errInsufficientPoints = errors.New("insufficient points balance")

func (r *PetRepositoryImpl) FeedSpending(petID, studentID, classID uint, points int) (*models.Pet, bool, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		ok, err := spendPoints(tx, studentID, classID, points)
		if err != nil {
			return err
		}
		if !ok {
			return errInsufficientPoints
		}
		return feedPet(tx, petID, points)
	})
	if errors.Is(err, errInsufficientPoints) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	pet, err := r.GetByID(petID)
	if err != nil {
		return nil, false, err
	}
	return pet, true, nil
}
