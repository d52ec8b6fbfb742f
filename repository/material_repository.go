package repository

import (
	"encoding/json"

	"github.com/learnpet/learnpet/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MaterialRepository interface {
	BaseRepository[models.LearningMaterial]
	ListAll() ([]*models.LearningMaterial, error)
	ListByTags(tags []string) ([]*models.LearningMaterial, error)
	ListByTeacher(teacherID uint) ([]*models.LearningMaterial, error)
	GetOwned(id, teacherID uint) (*models.LearningMaterial, error)
	CountOwned(ids []uint, teacherID uint) (int64, error)
	DeleteBatch(ids []uint) error
}

type MaterialRepositoryImpl struct {
	*BaseRepositoryImpl[models.LearningMaterial]
}

func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &MaterialRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.LearningMaterial](db),
	}
}

func (r *MaterialRepositoryImpl) ListAll() ([]*models.LearningMaterial, error) {
	var materials []*models.LearningMaterial
	err := r.db.Order("created_at DESC").Find(&materials).Error
	return materials, err
}

// ListByTags 按标签筛选：jsonb 数组包含任一标签即命中
func (r *MaterialRepositoryImpl) ListByTags(tags []string) ([]*models.LearningMaterial, error) {
	var cond *gorm.DB
	for _, tag := range tags {
		encoded, err := json.Marshal([]string{tag})
		if err != nil {
			return nil, err
		}
		if cond == nil {
			cond = r.db.Where("tags @> ?", datatypes.JSON(encoded))
		} else {
			cond = cond.Or("tags @> ?", datatypes.JSON(encoded))
		}
	}
	var materials []*models.LearningMaterial
	err := r.db.Where(cond).Order("created_at DESC").Find(&materials).Error
	return materials, err
}

func (r *MaterialRepositoryImpl) ListByTeacher(teacherID uint) ([]*models.LearningMaterial, error) {
	var materials []*models.LearningMaterial
	err := r.db.Where("teacher_id = ?", teacherID).Order("created_at DESC").Find(&materials).Error
	return materials, err
}

func (r *MaterialRepositoryImpl) GetOwned(id, teacherID uint) (*models.LearningMaterial, error) {
	var material models.LearningMaterial
	err := r.db.Where("id = ? AND teacher_id = ?", id, teacherID).First(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *MaterialRepositoryImpl) CountOwned(ids []uint, teacherID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.LearningMaterial{}).
		Where("id IN ? AND teacher_id = ?", ids, teacherID).
		Count(&count).Error
	return count, err
}

func (r *MaterialRepositoryImpl) DeleteBatch(ids []uint) error {
	return r.db.Where("id IN ?", ids).Delete(&models.LearningMaterial{}).Error
}
