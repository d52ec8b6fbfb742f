package service

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/learnpet/learnpet/models"
	"github.com/learnpet/learnpet/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type MaterialService interface {
	Upload(teacherID uint, name, fileType, fileExtension, fileURL string, tags []string) (*models.LearningMaterial, error)
	List(tags []string) ([]*models.LearningMaterial, error)
	ListByTeacher(teacherID uint) ([]*models.LearningMaterial, error)
	Get(id uint) (*models.LearningMaterial, error)
	Delete(teacherID, id uint) error
	BatchDelete(teacherID uint, ids []uint) error
}

type MaterialServiceImpl struct {
	repo   repository.MaterialRepository
	logger *logrus.Logger
}

func NewMaterialService(repo repository.MaterialRepository, logger *logrus.Logger) MaterialService {
	return &MaterialServiceImpl{repo: repo, logger: logger}
}

// Upload 登记一条资料元数据，文件本体已经由对象存储直传完成。
// 扩展名缺省时从 URL 推断。
func (s *MaterialServiceImpl) Upload(teacherID uint, name, fileType, fileExtension, fileURL string, tags []string) (*models.LearningMaterial, error) {
	if name == "" || fileType == "" || fileURL == "" {
		return nil, fmt.Errorf("%w: name, file_type and file_url are required", ErrValidation)
	}
	if fileExtension == "" {
		fileExtension = strings.TrimPrefix(path.Ext(fileURL), ".")
	}
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}

	material := &models.LearningMaterial{
		TeacherID:     teacherID,
		Name:          name,
		FileType:      fileType,
		FileExtension: fileExtension,
		FileURL:       fileURL,
		Tags:          datatypes.JSON(encoded),
	}
	if err := s.repo.Create(material); err != nil {
		return nil, translateDBError(err)
	}
	s.logger.Infof("教师 %d 上传资料: %d %s", teacherID, material.ID, name)
	return material, nil
}

// List 资料库对双方角色都可见，tags 非空时按标签筛选
func (s *MaterialServiceImpl) List(tags []string) ([]*models.LearningMaterial, error) {
	if len(tags) > 0 {
		return s.repo.ListByTags(tags)
	}
	return s.repo.ListAll()
}

func (s *MaterialServiceImpl) ListByTeacher(teacherID uint) ([]*models.LearningMaterial, error) {
	return s.repo.ListByTeacher(teacherID)
}

func (s *MaterialServiceImpl) Get(id uint) (*models.LearningMaterial, error) {
	material, err := s.repo.GetByID(id)
	if err != nil {
		return nil, translateDBError(err)
	}
	return material, nil
}

// Delete 非上传者一律 not found，不暴露资料归属
func (s *MaterialServiceImpl) Delete(teacherID, id uint) error {
	if _, err := s.repo.GetOwned(id, teacherID); err != nil {
		return translateDBError(err)
	}
	if err := s.repo.Delete(id); err != nil {
		return translateDBError(err)
	}
	return nil
}

// BatchDelete 全有或全无：任一 id 不存在或不属于该教师则整批拒绝
func (s *MaterialServiceImpl) BatchDelete(teacherID uint, ids []uint) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: ids must not be empty", ErrValidation)
	}
	count, err := s.repo.CountOwned(ids, teacherID)
	if err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return fmt.Errorf("%w: some materials do not exist or are not yours", ErrNotFound)
	}
	if err := s.repo.DeleteBatch(ids); err != nil {
		return translateDBError(err)
	}
	s.logger.Infof("教师 %d 批量删除 %d 条资料", teacherID, len(ids))
	return nil
}
