package repository

import (
	"time"

	"github.com/learnpet/learnpet/models"

	"gorm.io/gorm"
)

// ClassWithTeacher 带教师姓名的班级视图
type ClassWithTeacher struct {
	ID          uint      `json:"id"`
	Year        string    `json:"year"`
	ClassName   string    `json:"class_name"`
	Subject     string    `json:"subject"`
	TeacherID   uint      `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	CreatedAt   time.Time `json:"created_at"`
	JoinedAt    time.Time `json:"joined_at,omitempty"`
}

// ClassMemberInfo 班级成员视图
type ClassMemberInfo struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	School   string    `json:"school"`
	JoinedAt time.Time `json:"joined_at"`
}

type ClassRepository interface {
	BaseRepository[models.Class]
	ListByTeacher(teacherID uint) ([]*models.Class, error)
	ListAllWithTeacher() ([]*ClassWithTeacher, error)
	ListJoinedByStudent(studentID uint) ([]*ClassWithTeacher, error)
	AddMember(classID, studentID uint) (*models.ClassMember, error)
	IsMember(classID, studentID uint) (bool, error)
	RemoveMember(classID, studentID uint) error
	ListMembers(classID uint) ([]*ClassMemberInfo, error)
}

type ClassRepositoryImpl struct {
	*BaseRepositoryImpl[models.Class]
}

func NewClassRepository(db *gorm.DB) ClassRepository {
	return &ClassRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Class](db),
	}
}

func (r *ClassRepositoryImpl) ListByTeacher(teacherID uint) ([]*models.Class, error) {
	var classes []*models.Class
	err := r.db.Where("teacher_id = ?", teacherID).Order("created_at DESC").Find(&classes).Error
	return classes, err
}

func (r *ClassRepositoryImpl) ListAllWithTeacher() ([]*ClassWithTeacher, error) {
	var rows []*ClassWithTeacher
	err := r.db.Table("classes").
		Select("classes.id, classes.year, classes.class_name, classes.subject, classes.teacher_id, users.name AS teacher_name, classes.created_at").
		Joins("LEFT JOIN users ON users.id = classes.teacher_id").
		Where("classes.deleted_at IS NULL").
		Order("classes.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *ClassRepositoryImpl) ListJoinedByStudent(studentID uint) ([]*ClassWithTeacher, error) {
	var rows []*ClassWithTeacher
	err := r.db.Table("class_members").
		Select("classes.id, classes.year, classes.class_name, classes.subject, classes.teacher_id, users.name AS teacher_name, classes.created_at, class_members.joined_at").
		Joins("LEFT JOIN classes ON classes.id = class_members.class_id").
		Joins("LEFT JOIN users ON users.id = classes.teacher_id").
		Where("class_members.student_id = ? AND class_members.deleted_at IS NULL", studentID).
		Order("class_members.joined_at DESC").
		Scan(&rows).Error
	return rows, err
}

// AddMember 依赖 (class_id, student_id) 唯一索引拒绝重复加入，
// 并发下两个请求同时通过应用层检查时由索引兜底
func (r *ClassRepositoryImpl) AddMember(classID, studentID uint) (*models.ClassMember, error) {
	member := &models.ClassMember{
		ClassID:   classID,
		StudentID: studentID,
		JoinedAt:  time.Now(),
	}
	if err := r.db.Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (r *ClassRepositoryImpl) IsMember(classID, studentID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ClassMember{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *ClassRepositoryImpl) RemoveMember(classID, studentID uint) error {
	return r.db.Where("class_id = ? AND student_id = ?", classID, studentID).
		Delete(&models.ClassMember{}).Error
}

func (r *ClassRepositoryImpl) ListMembers(classID uint) ([]*ClassMemberInfo, error) {
	var rows []*ClassMemberInfo
	err := r.db.Table("class_members").
		Select("users.id, users.name, users.phone, users.school, class_members.joined_at").
		Joins("LEFT JOIN users ON users.id = class_members.student_id").
		Where("class_members.class_id = ? AND class_members.deleted_at IS NULL", classID).
		Order("class_members.joined_at ASC").
		Scan(&rows).Error
	return rows, err
}
