package repository

import (
	"context"
	"course_platform/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LectureRepository struct {
	DB *gorm.DB
}

func NewLectureRepository(db *gorm.DB) *LectureRepository {
	return &LectureRepository{DB: db}
}

// CreateInCourse 在同一事务中创建讲座并加入课程的讲座集合
func (r *LectureRepository) CreateInCourse(ctx context.Context, lecture *model.Lecture) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lecture).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.CourseLecture{CourseID: lecture.CourseID, LectureID: lecture.ID}).Error
	})
}

func (r *LectureRepository) FindByID(ctx context.Context, id uint) (*model.Lecture, error) {
	var lecture model.Lecture
	err := r.DB.WithContext(ctx).First(&lecture, id).Error
	if err != nil {
		return nil, err
	}
	return &lecture, nil
}

func (r *LectureRepository) FindByCourse(ctx context.Context, courseID uint) ([]model.Lecture, error) {
	var lectures []model.Lecture
	err := r.DB.WithContext(ctx).
		Joins("JOIN course_lectures ON course_lectures.lecture_id = lectures.id").
		Where("course_lectures.course_id = ?", courseID).
		Order("lectures.id ASC").
		Find(&lectures).Error
	return lectures, err
}

func (r *LectureRepository) Update(ctx context.Context, lecture *model.Lecture) error {
	return r.DB.WithContext(ctx).Save(lecture).Error
}

// DeleteWithMembership removes the lecture and every lecture-set entry that
// references it in one transaction.
func (r *LectureRepository) DeleteWithMembership(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Lecture{}, id).Error; err != nil {
			return err
		}
		return tx.Where("lecture_id = ?", id).Delete(&model.CourseLecture{}).Error
	})
}

// SetPreviewFreeByCourse 将课程集合中的所有讲座设为可免费预览
func (r *LectureRepository) SetPreviewFreeByCourse(ctx context.Context, courseID uint) error {
	sub := r.DB.Model(&model.CourseLecture{}).Select("lecture_id").Where("course_id = ?", courseID)
	return r.DB.WithContext(ctx).Model(&model.Lecture{}).
		Where("id IN (?)", sub).
		Update("is_preview_free", true).Error
}
