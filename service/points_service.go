package service

import (
	"errors"
	"fmt"

	"github.com/learnpet/learnpet/models"
	"github.com/learnpet/learnpet/repository"
)

type PointsService interface {
	Get(studentID, classID uint) (*models.UserPoints, error)
}

type PointsServiceImpl struct {
	pointsRepo repository.PointsRepository
	classRepo  repository.ClassRepository
}

func NewPointsService(pointsRepo repository.PointsRepository, classRepo repository.ClassRepository) PointsService {
	return &PointsServiceImpl{pointsRepo: pointsRepo, classRepo: classRepo}
}

// Get 查询学生在某班级的积分台账。
// 没有台账记录的成员返回零值行，而不是 not found。
func (s *PointsServiceImpl) Get(studentID, classID uint) (*models.UserPoints, error) {
	joined, err := s.classRepo.IsMember(classID, studentID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, fmt.Errorf("%w: not a member of this class", ErrForbidden)
	}

	row, err := s.pointsRepo.Get(studentID, classID)
	if err != nil {
		if errors.Is(translateDBError(err), ErrNotFound) {
			return &models.UserPoints{StudentID: studentID, ClassID: classID}, nil
		}
		return nil, err
	}
	return row, nil
}
