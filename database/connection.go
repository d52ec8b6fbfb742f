package database

import (
	"github.com/learnpet/learnpet/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) *gorm.DB {
	// TranslateError: 唯一索引冲突统一转换为 gorm.ErrDuplicatedKey，
	// 并发写入竞争由存储层约束兜底
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	return db
}
