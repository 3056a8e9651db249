package database

import (
	"fmt"
	"learnly_backend/internal/config"
	"learnly_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, mode string, forceMigrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认不自动迁移，需要 --migrate 显式触发
	if mode != "release" || forceMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}

// Migrate 同步全部表结构，测试环境用 sqlite 时也走这里
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.StudentProfile{},
		&model.Course{},
		&model.CourseUnit{},
		&model.CourseEnrollment{},
		&model.CourseUnitQuizQuestion{},
		&model.CourseUnitQuizAttempt{},
		&model.CompetenceQuestion{},
		&model.StudentCompetence{},
		&model.CoursePlacementQuestion{},
		&model.CoursePlacementAttempt{},
		&model.CoursePlacementAnswer{},
		&model.LearningPlan{},
		&model.LearningPlanTask{},
	)
}
