package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/learnpet/learnpet/events"
	"github.com/learnpet/learnpet/models"
	"github.com/learnpet/learnpet/pkg/metrics"
	"github.com/learnpet/learnpet/repository"

	"github.com/sirupsen/logrus"
)

type PetService interface {
	Adopt(ctx context.Context, studentID, classID uint, name, description string) (*models.Pet, error)
	GetByClass(studentID, classID uint) (*models.Pet, error)
	ListMine(studentID uint) ([]*models.Pet, error)
	Feed(ctx context.Context, studentID, petID uint, points int) (*models.Pet, error)
	Advice(ctx context.Context, studentID, petID uint) (string, error)
}

type PetServiceImpl struct {
	petRepo   repository.PetRepository
	classRepo repository.ClassRepository
	userRepo  repository.UserRepository
	storage   StorageService
	ai        PetAI
	producer  EventPublisher
	logger    *logrus.Logger
}

func NewPetService(
	petRepo repository.PetRepository,
	classRepo repository.ClassRepository,
	userRepo repository.UserRepository,
	storage StorageService,
	ai PetAI,
	producer EventPublisher,
	logger *logrus.Logger,
) PetService {
	return &PetServiceImpl{
		petRepo:   petRepo,
		classRepo: classRepo,
		userRepo:  userRepo,
		storage:   storage,
		ai:        ai,
		producer:  producer,
		logger:    logger,
	}
}

// Adopt 领养流程：先生成形象再落库。
// AI 或上传失败时宠物不创建，整个操作对外表现为一次失败，不重试。
// 同班重复领养由 (student_id, class_id) 唯一索引兜底。
func (s *PetServiceImpl) Adopt(ctx context.Context, studentID, classID uint, name, description string) (*models.Pet, error) {
	if name == "" || description == "" {
		return nil, fmt.Errorf("%w: name and description are required", ErrValidation)
	}

	joined, err := s.classRepo.IsMember(classID, studentID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, fmt.Errorf("%w: not a member of this class", ErrForbidden)
	}
	if _, err := s.petRepo.GetByStudentAndClass(studentID, classID); err == nil {
		return nil, fmt.Errorf("%w: already adopted a pet in this class", ErrConflict)
	}

	imageData, err := s.ai.GeneratePetImage(ctx, name, description)
	if err != nil {
		return nil, err
	}
	imageURL, err := s.storage.UploadBytes(ctx, imageData, "image/png", ".png")
	if err != nil {
		return nil, err
	}
	// 宠物形象公开可读，owner 仍是领养学生
	if err := s.storage.SetPolicy(imageURL, strconv.FormatUint(uint64(studentID), 10), models.VisibilityPublic); err != nil {
		return nil, err
	}

	pet := &models.Pet{
		StudentID:   studentID,
		ClassID:     classID,
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		Level:       1,
		Experience:  0,
	}
	if err := s.petRepo.Create(pet); err != nil {
		return nil, translateDBError(err)
	}

	metrics.PetsAdoptedTotal.Inc()
	if s.producer != nil {
		s.producer.Publish(ctx, strconv.FormatUint(uint64(studentID), 10), events.EventPetAdopted, map[string]interface{}{
			"pet_id":     pet.ID,
			"student_id": studentID,
			"class_id":   classID,
		})
	}
	s.logger.Infof("学生 %d 在班级 %d 领养宠物: %d %s", studentID, classID, pet.ID, name)
	return pet, nil
}

func (s *PetServiceImpl) GetByClass(studentID, classID uint) (*models.Pet, error) {
	pet, err := s.petRepo.GetByStudentAndClass(studentID, classID)
	if err != nil {
		return nil, translateDBError(err)
	}
	return pet, nil
}

func (s *PetServiceImpl) ListMine(studentID uint) ([]*models.Pet, error) {
	return s.petRepo.ListByStudent(studentID)
}

// Feed 用积分喂养：扣余额和加经验在同一事务里提交。
// 扣减是条件更新，余额不足时零行受影响，不会出现负余额。
func (s *PetServiceImpl) Feed(ctx context.Context, studentID, petID uint, points int) (*models.Pet, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be a positive integer", ErrValidation)
	}

	pet, err := s.petRepo.GetByIDAndStudent(petID, studentID)
	if err != nil {
		return nil, translateDBError(err)
	}

	fed, ok, err := s.petRepo.FeedSpending(petID, studentID, pet.ClassID, points)
	if err != nil {
		return nil, translateDBError(err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: insufficient points balance", ErrValidation)
	}

	metrics.PetFeedsTotal.Inc()
	if s.producer != nil {
		s.producer.Publish(ctx, strconv.FormatUint(uint64(studentID), 10), events.EventPetFed, map[string]interface{}{
			"pet_id":     petID,
			"student_id": studentID,
			"class_id":   pet.ClassID,
			"points":     points,
			"level":      fed.Level,
			"experience": fed.Experience,
		})
	}
	s.logger.Infof("学生 %d 喂养宠物 %d: +%d 经验，当前 %d 级", studentID, petID, points, fed.Level)
	return fed, nil
}

// Advice 让宠物给主人一句鼓励
func (s *PetServiceImpl) Advice(ctx context.Context, studentID, petID uint) (string, error) {
	pet, err := s.petRepo.GetByIDAndStudent(petID, studentID)
	if err != nil {
		return "", translateDBError(err)
	}
	student, err := s.userRepo.GetByID(studentID)
	if err != nil {
		return "", translateDBError(err)
	}
	return s.ai.GeneratePetAdvice(ctx, student.Name, pet.Level, pet.Experience)
}
