package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/learnpet/learnpet/cache"
	"github.com/learnpet/learnpet/events"
	"github.com/learnpet/learnpet/models"
	"github.com/learnpet/learnpet/pkg/metrics"
	"github.com/learnpet/learnpet/repository"

	"github.com/sirupsen/logrus"
)

type TaskService interface {
	Publish(teacherID, classID uint, title, description string, points int, deadline time.Time, attachmentURL string) (*models.Task, error)
	ListByClass(actorID uint, actorRole string, classID uint) ([]*models.Task, error)
	Get(actorID uint, actorRole string, taskID uint) (*models.Task, error)
	Submit(ctx context.Context, studentID, taskID uint, description, attachmentURL string) (*models.TaskSubmission, error)
	ListSubmissions(teacherID, taskID uint) ([]*models.TaskSubmission, error)
	MySubmission(studentID, taskID uint) (*models.TaskSubmission, error)
}

type TaskServiceImpl struct {
	taskRepo       repository.TaskRepository
	submissionRepo repository.SubmissionRepository
	classRepo      repository.ClassRepository
	// 两者都可为 nil（未配置 Redis/Kafka 时）
	leaderboard *cache.LeaderboardCache
	producer    EventPublisher
	logger      *logrus.Logger
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	submissionRepo repository.SubmissionRepository,
	classRepo repository.ClassRepository,
	leaderboard *cache.LeaderboardCache,
	producer EventPublisher,
	logger *logrus.Logger,
) TaskService {
	return &TaskServiceImpl{
		taskRepo:       taskRepo,
		submissionRepo: submissionRepo,
		classRepo:      classRepo,
		leaderboard:    leaderboard,
		producer:       producer,
		logger:         logger,
	}
}

// Publish 只有班级的任课教师能向该班发布任务
func (s *TaskServiceImpl) Publish(teacherID, classID uint, title, description string, points int, deadline time.Time, attachmentURL string) (*models.Task, error) {
	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrValidation)
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be a positive integer", ErrValidation)
	}
	if deadline.IsZero() {
		return nil, fmt.Errorf("%w: deadline is required", ErrValidation)
	}

	class, err := s.classRepo.GetByID(classID)
	if err != nil {
		return nil, translateDBError(err)
	}
	if class.TeacherID != teacherID {
		return nil, fmt.Errorf("%w: only the class teacher can publish tasks", ErrForbidden)
	}

	task := &models.Task{
		TeacherID:     teacherID,
		ClassID:       classID,
		Title:         title,
		Description:   description,
		Points:        points,
		Deadline:      deadline,
		AttachmentURL: attachmentURL,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, translateDBError(err)
	}
	s.logger.Infof("教师 %d 向班级 %d 发布任务: %d %s", teacherID, classID, task.ID, title)
	return task, nil
}

// canViewClass 任务仅对任课教师和班级成员可见
func (s *TaskServiceImpl) canViewClass(actorID uint, actorRole string, class *models.Class) (bool, error) {
	if actorRole == models.RoleTeacher {
		return class.TeacherID == actorID, nil
	}
	return s.classRepo.IsMember(class.ID, actorID)
}

func (s *TaskServiceImpl) ListByClass(actorID uint, actorRole string, classID uint) ([]*models.Task, error) {
	class, err := s.classRepo.GetByID(classID)
	if err != nil {
		return nil, translateDBError(err)
	}
	ok, err := s.canViewClass(actorID, actorRole, class)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: not a member of this class", ErrForbidden)
	}
	return s.taskRepo.ListByClass(classID)
}

func (s *TaskServiceImpl) Get(actorID uint, actorRole string, taskID uint) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		return nil, translateDBError(err)
	}
	class, err := s.classRepo.GetByID(task.ClassID)
	if err != nil {
		return nil, translateDBError(err)
	}
	ok, err := s.canViewClass(actorID, actorRole, class)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: not a member of this class", ErrForbidden)
	}
	return task, nil
}

// Submit 提交即奖励：提交落库和积分入账在同一事务里提交。
// 重复提交在插入时被唯一索引拒绝，积分不会发生第二次累加。
func (s *TaskServiceImpl) Submit(ctx context.Context, studentID, taskID uint, description, attachmentURL string) (*models.TaskSubmission, error) {
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}

	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		return nil, translateDBError(err)
	}
	joined, err := s.classRepo.IsMember(task.ClassID, studentID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, fmt.Errorf("%w: not a member of this class", ErrForbidden)
	}
	if _, err := s.submissionRepo.GetByTaskAndStudent(taskID, studentID); err == nil {
		return nil, fmt.Errorf("%w: task already submitted", ErrConflict)
	}

	submission := &models.TaskSubmission{
		TaskID:        taskID,
		StudentID:     studentID,
		Description:   description,
		AttachmentURL: attachmentURL,
		SubmittedAt:   time.Now(),
	}
	if err := s.submissionRepo.CreateWithAward(submission, task.ClassID, task.Points); err != nil {
		return nil, translateDBError(err)
	}
	metrics.PointsAwardedTotal.WithLabelValues(strconv.FormatUint(uint64(task.ClassID), 10)).Add(float64(task.Points))

	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx, task.ClassID)
	}
	if s.producer != nil {
		key := strconv.FormatUint(uint64(studentID), 10)
		s.producer.Publish(ctx, key, events.EventTaskSubmitted, map[string]interface{}{
			"task_id":    taskID,
			"student_id": studentID,
			"class_id":   task.ClassID,
			"points":     task.Points,
		})
		s.producer.Publish(ctx, key, events.EventPointsAwarded, map[string]interface{}{
			"student_id": studentID,
			"class_id":   task.ClassID,
			"delta":      task.Points,
			"task_id":    taskID,
		})
	}

	s.logger.Infof("学生 %d 提交任务 %d，获得 %d 积分", studentID, taskID, task.Points)
	return submission, nil
}

func (s *TaskServiceImpl) ListSubmissions(teacherID, taskID uint) ([]*models.TaskSubmission, error) {
	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		return nil, translateDBError(err)
	}
	if task.TeacherID != teacherID {
		return nil, fmt.Errorf("%w: only the publishing teacher can view submissions", ErrForbidden)
	}
	return s.submissionRepo.ListByTask(taskID)
}

func (s *TaskServiceImpl) MySubmission(studentID, taskID uint) (*models.TaskSubmission, error) {
	if _, err := s.taskRepo.GetByID(taskID); err != nil {
		return nil, translateDBError(err)
	}
	submission, err := s.submissionRepo.GetByTaskAndStudent(taskID, studentID)
	if err != nil {
		return nil, translateDBError(err)
	}
	return submission, nil
}
