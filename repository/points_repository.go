package repository

import (
	"github.com/learnpet/learnpet/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RankingRow 班级排行榜一行：无积分记录的成员 total_points 为 0
type RankingRow struct {
	StudentID   uint   `json:"student_id"`
	StudentName string `json:"student_name"`
	TotalPoints int    `json:"total_points"`
}

type PointsRepository interface {
	// Award 原子累加积分：单条 upsert 语句，防止并发提交丢失更新
	Award(studentID, classID uint, delta int) error
	// Spend 原子扣减余额，余额不足时返回 false
	Spend(studentID, classID uint, amount int) (bool, error)
	Get(studentID, classID uint) (*models.UserPoints, error)
	RankingsByClass(classID uint) ([]*RankingRow, error)
}

type PointsRepositoryImpl struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &PointsRepositoryImpl{db: db}
}

// awardPoints 生成
// INSERT ... ON CONFLICT (student_id, class_id)
// DO UPDATE SET total_points = user_points.total_points + EXCLUDED.total_points
// 供同包内的组合事务复用
func awardPoints(db *gorm.DB, studentID, classID uint, delta int) error {
	row := &models.UserPoints{StudentID: studentID, ClassID: classID, TotalPoints: delta}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "class_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_points": gorm.Expr("user_points.total_points + EXCLUDED.total_points"),
			"updated_at":   gorm.Expr("NOW()"),
		}),
	}).Create(row).Error
}

// spendPoints 条件更新：WHERE total_points - spent_points >= amount，
// 零行受影响即余额不足（或无台账记录）
func spendPoints(db *gorm.DB, studentID, classID uint, amount int) (bool, error) {
	result := db.Model(&models.UserPoints{}).
		Where("student_id = ? AND class_id = ? AND total_points - spent_points >= ?", studentID, classID, amount).
		Update("spent_points", gorm.Expr("spent_points + ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PointsRepositoryImpl) Award(studentID, classID uint, delta int) error {
	return awardPoints(r.db, studentID, classID, delta)
}

func (r *PointsRepositoryImpl) Spend(studentID, classID uint, amount int) (bool, error) {
	return spendPoints(r.db, studentID, classID, amount)
}

func (r *PointsRepositoryImpl) Get(studentID, classID uint) (*models.UserPoints, error) {
	var row models.UserPoints
	err := r.db.Where("student_id = ? AND class_id = ?", studentID, classID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *PointsRepositoryImpl) RankingsByClass(classID uint) ([]*RankingRow, error) {
	var rows []*RankingRow
	err := r.db.Table("class_members").
		Select("users.id AS student_id, users.name AS student_name, COALESCE(user_points.total_points, 0) AS total_points").
		Joins("LEFT JOIN users ON users.id = class_members.student_id").
		Joins("LEFT JOIN user_points ON user_points.student_id = class_members.student_id AND user_points.class_id = class_members.class_id").
		Where("class_members.class_id = ? AND class_members.deleted_at IS NULL", classID).
		Order("total_points DESC").
		Scan(&rows).Error
	return rows, err
}
