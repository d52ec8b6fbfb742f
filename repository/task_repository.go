package repository

import (
	"github.com/learnpet/learnpet/models"

	"gorm.io/gorm"
)

type TaskRepository interface {
	BaseRepository[models.Task]
	ListByClass(classID uint) ([]*models.Task, error)
}

type TaskRepositoryImpl struct {
	*BaseRepositoryImpl[models.Task]
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &TaskRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Task](db),
	}
}

func (r *TaskRepositoryImpl) ListByClass(classID uint) ([]*models.Task, error) {
	var tasks []*models.Task
	err := r.db.Where("class_id = ?", classID).Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

type SubmissionRepository interface {
	BaseRepository[models.TaskSubmission]
	GetByTaskAndStudent(taskID, studentID uint) (*models.TaskSubmission, error)
	ListByTask(taskID uint) ([]*models.TaskSubmission, error)
	// CreateWithAward 提交落库和积分入账在同一事务里提交，
	// 要么都生效要么都回滚
	CreateWithAward(submission *models.TaskSubmission, classID uint, points int) error
}

type SubmissionRepositoryImpl struct {
	*BaseRepositoryImpl[models.TaskSubmission]
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &SubmissionRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.TaskSubmission](db),
	}
}

func (r *SubmissionRepositoryImpl) CreateWithAward(submission *models.TaskSubmission, classID uint, points int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return err
		}
		return awardPoints(tx, submission.StudentID, classID, points)
	})
}

func (r *SubmissionRepositoryImpl) GetByTaskAndStudent(taskID, studentID uint) (*models.TaskSubmission, error) {
	var submission models.TaskSubmission
	err := r.db.Where("task_id = ? AND student_id = ?", taskID, studentID).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepositoryImpl) ListByTask(taskID uint) ([]*models.TaskSubmission, error) {
	var submissions []*models.TaskSubmission
	err := r.db.Where("task_id = ?", taskID).Order("submitted_at DESC").Find(&submissions).Error
	return submissions, err
}
