package repository

import (
	"context"
	"course_platform/internal/model"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(course).Error
}

func (r *CourseRepository) FindByID(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// FindDetails 加载课程及创建者、讲座、已报名学生
func (r *CourseRepository) FindDetails(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).
		Preload("Creator").
		Preload("Lectures").
		Preload("EnrolledStudents").
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Update 只更新课程自身字段，关联集合由专门的方法维护
func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(course).Error
}

func (r *CourseRepository) SetPublished(ctx context.Context, id uint, published bool) error {
	return r.DB.WithContext(ctx).Model(&model.Course{}).
		Where("id = ?", id).
		Update("is_published", published).Error
}

func (r *CourseRepository) FindByCreator(ctx context.Context, creatorID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Course, error) {
	var courses []model.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindPublished(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Preload("Creator", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "photo_url")
		}).
		Where("is_published = ?", true).
		Find(&courses).Error
	return courses, err
}

// Search 仅返回已发布课程；关键字对标题、副标题、分类做不区分大小写的子串匹配
func (r *CourseRepository) Search(ctx context.Context, criteria model.CourseSearch) ([]model.Course, error) {
	query := r.DB.WithContext(ctx).
		Preload("Creator", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "photo_url")
		}).
		Where("is_published = ?", true)

	if q := strings.TrimSpace(criteria.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(sub_title) LIKE ? OR LOWER(category) LIKE ?)",
			pattern, pattern, pattern)
	}

	if len(criteria.Categories) > 0 {
		query = query.Where("category IN ?", criteria.Categories)
	}

	switch criteria.PriceSort {
	case model.PriceSortAsc:
		query = query.Order("price ASC")
	case model.PriceSortDesc:
		query = query.Order("price DESC")
	default:
		query = query.Order("id ASC")
	}

	var courses []model.Course
	err := query.Find(&courses).Error
	return courses, err
}

// LectureIDs 读取课程当前的讲座集合
func (r *CourseRepository) LectureIDs(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.CourseLecture{}).
		Where("course_id = ?", courseID).
		Pluck("lecture_id", &ids).Error
	return ids, err
}

// EnsureLectureMembership inserts (courseID, lectureID) into the lecture set
// unless it is already present.
func (r *CourseRepository) EnsureLectureMembership(ctx context.Context, courseID, lectureID uint) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CourseLecture{CourseID: courseID, LectureID: lectureID}).Error
}

func (r *CourseRepository) AddEnrolledStudent(ctx context.Context, courseID, userID uint) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CourseEnrollment{CourseID: courseID, UserID: userID}).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
