package service

import (
	"context"
	"fmt"

	"github.com/learnpet/learnpet/cache"
	"github.com/learnpet/learnpet/models"
	"github.com/learnpet/learnpet/repository"

	"github.com/sirupsen/logrus"
)

type ClassService interface {
	Create(teacherID uint, year, className, subject string) (*models.Class, error)
	ListByTeacher(teacherID uint) ([]*models.Class, error)
	ListAvailable() ([]*repository.ClassWithTeacher, error)
	Join(studentID, classID uint) (*models.ClassMember, error)
	ListJoined(studentID uint) ([]*repository.ClassWithTeacher, error)
	Detail(actorID uint, actorRole string, classID uint) (*models.Class, []*repository.ClassMemberInfo, error)
	RemoveMember(teacherID, classID, studentID uint) error
	Rankings(ctx context.Context, actorID uint, actorRole string, classID uint) ([]*repository.RankingRow, error)
}

type ClassServiceImpl struct {
	classRepo  repository.ClassRepository
	pointsRepo repository.PointsRepository
	// cache 为 nil 时排行榜直接走数据库
	leaderboard *cache.LeaderboardCache
	logger      *logrus.Logger
}

func NewClassService(classRepo repository.ClassRepository, pointsRepo repository.PointsRepository, leaderboard *cache.LeaderboardCache, logger *logrus.Logger) ClassService {
	return &ClassServiceImpl{
		classRepo:   classRepo,
		pointsRepo:  pointsRepo,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

func (s *ClassServiceImpl) Create(teacherID uint, year, className, subject string) (*models.Class, error) {
	if year == "" || className == "" || subject == "" {
		return nil, fmt.Errorf("%w: year, class_name and subject are required", ErrValidation)
	}
	class := &models.Class{
		TeacherID: teacherID,
		Year:      year,
		ClassName: className,
		Subject:   subject,
	}
	if err := s.classRepo.Create(class); err != nil {
		return nil, translateDBError(err)
	}
	s.logger.Infof("教师 %d 创建班级: %d %s", teacherID, class.ID, className)
	return class, nil
}

func (s *ClassServiceImpl) ListByTeacher(teacherID uint) ([]*models.Class, error) {
	return s.classRepo.ListByTeacher(teacherID)
}

func (s *ClassServiceImpl) ListAvailable() ([]*repository.ClassWithTeacher, error) {
	return s.classRepo.ListAllWithTeacher()
}

// Join 重复加入由 (class_id, student_id) 唯一索引兜底
func (s *ClassServiceImpl) Join(studentID, classID uint) (*models.ClassMember, error) {
	if _, err := s.classRepo.GetByID(classID); err != nil {
		return nil, translateDBError(err)
	}
	joined, err := s.classRepo.IsMember(classID, studentID)
	if err != nil {
		return nil, err
	}
	if joined {
		return nil, fmt.Errorf("%w: already a member of this class", ErrConflict)
	}
	member, err := s.classRepo.AddMember(classID, studentID)
	if err != nil {
		return nil, translateDBError(err)
	}
	return member, nil
}

func (s *ClassServiceImpl) ListJoined(studentID uint) ([]*repository.ClassWithTeacher, error) {
	return s.classRepo.ListJoinedByStudent(studentID)
}

// canViewClass 班级详情、任务、排行榜共用的访问规则：
// 任课教师本人，或已加入的学生
func (s *ClassServiceImpl) canViewClass(actorID uint, actorRole string, class *models.Class) (bool, error) {
	if actorRole == models.RoleTeacher {
		return class.TeacherID == actorID, nil
	}
	return s.classRepo.IsMember(class.ID, actorID)
}

func (s *ClassServiceImpl) Detail(actorID uint, actorRole string, classID uint) (*models.Class, []*repository.ClassMemberInfo, error) {
	class, err := s.classRepo.GetByID(classID)
	if err != nil {
		return nil, nil, translateDBError(err)
	}
	ok, err := s.canViewClass(actorID, actorRole, class)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: not a member of this class", ErrForbidden)
	}
	members, err := s.classRepo.ListMembers(classID)
	if err != nil {
		return nil, nil, err
	}
	return class, members, nil
}

func (s *ClassServiceImpl) RemoveMember(teacherID, classID, studentID uint) error {
	class, err := s.classRepo.GetByID(classID)
	if err != nil {
		return translateDBError(err)
	}
	if class.TeacherID != teacherID {
		return fmt.Errorf("%w: only the class teacher can remove members", ErrForbidden)
	}
	joined, err := s.classRepo.IsMember(classID, studentID)
	if err != nil {
		return err
	}
	if !joined {
		return fmt.Errorf("%w: student is not a member of this class", ErrNotFound)
	}
	return s.classRepo.RemoveMember(classID, studentID)
}

// Rankings 先查缓存，未命中再查库并回填。缓存故障时降级为直接读库。
func (s *ClassServiceImpl) Rankings(ctx context.Context, actorID uint, actorRole string, classID uint) ([]*repository.RankingRow, error) {
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

	if s.leaderboard != nil {
		cached, err := s.leaderboard.GetCachedTop(ctx, classID)
		if err != nil {
			s.logger.Warnf("读取班级 %d 排行榜缓存失败: %v", classID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	rows, err := s.pointsRepo.RankingsByClass(classID)
	if err != nil {
		return nil, err
	}
	if s.leaderboard != nil {
		if err := s.leaderboard.SetCachedTop(ctx, classID, rows); err != nil {
			s.logger.Warnf("写入班级 %d 排行榜缓存失败: %v", classID, err)
		}
	}
	return rows, nil
}
