package database

import (
	"course_platform/internal/config"
	"course_platform/internal/model"
	"course_platform/pkg/logger"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := gormlogger.Warn
	if mode == "debug" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Log.Info("Database migration completed")
	return db, nil
}

// Migrate 注册联结表并自动迁移所有模型
func Migrate(db *gorm.DB) error {
	if err := SetupJoinTables(db); err != nil {
		return err
	}

	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Lecture{},
		&model.CourseLecture{},
		&model.CourseEnrollment{},
		&model.UserEnrolledCourse{},
		&model.CourseProgress{},
		&model.LectureProgress{},
		&model.CoursePurchase{},
	)
}

// SetupJoinTables binds the many2many associations to the explicit join
// models so preloads and set-union inserts hit the same tables.
func SetupJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&model.Course{}, "Lectures", &model.CourseLecture{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&model.Course{}, "EnrolledStudents", &model.CourseEnrollment{}); err != nil {
		return err
	}
	return db.SetupJoinTable(&model.User{}, "EnrolledCourses", &model.UserEnrolledCourse{})
}
