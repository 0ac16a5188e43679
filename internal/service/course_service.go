package service

import (
	"context"
	"course_platform/internal/model"
	"course_platform/internal/util"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// CourseStore is the persistence the catalog needs for courses and their
// lecture/enrollment sets.
type CourseStore interface {
	Create(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uint) (*model.Course, error)
	FindDetails(ctx context.Context, id uint) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	SetPublished(ctx context.Context, id uint, published bool) error
	FindByCreator(ctx context.Context, creatorID uint) ([]model.Course, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Course, error)
	FindPublished(ctx context.Context) ([]model.Course, error)
	Search(ctx context.Context, criteria model.CourseSearch) ([]model.Course, error)
	LectureIDs(ctx context.Context, courseID uint) ([]uint, error)
	EnsureLectureMembership(ctx context.Context, courseID, lectureID uint) error
	AddEnrolledStudent(ctx context.Context, courseID, userID uint) error
}

type LectureStore interface {
	CreateInCourse(ctx context.Context, lecture *model.Lecture) error
	FindByID(ctx context.Context, id uint) (*model.Lecture, error)
	FindByCourse(ctx context.Context, courseID uint) ([]model.Lecture, error)
	Update(ctx context.Context, lecture *model.Lecture) error
	DeleteWithMembership(ctx context.Context, id uint) error
	SetPreviewFreeByCourse(ctx context.Context, courseID uint) error
}

type CourseService struct {
	Courses  CourseStore
	Lectures LectureStore
	Assets   AssetStore
}

func NewCourseService(courses CourseStore, lectures LectureStore, assets AssetStore) *CourseService {
	return &CourseService{
		Courses:  courses,
		Lectures: lectures,
		Assets:   assets,
	}
}

// notFoundOr 将 gorm 的记录不存在错误转换为 NotFoundError
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.NewNotFoundError(message)
	}
	return err
}

func (s *CourseService) CreateCourse(ctx context.Context, title, category string, ownerID uint) (*model.Course, error) {
	title = strings.TrimSpace(title)
	category = strings.TrimSpace(category)
	if title == "" || category == "" {
		return nil, util.NewValidationError("Course title and category is required")
	}

	course := &model.Course{
		Title:     title,
		Category:  category,
		CreatorID: ownerID,
	}
	if err := s.Courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	course, err := s.Courses.FindDetails(ctx, courseID)
	if err != nil {
		return nil, notFoundOr(err, "Course not found")
	}
	return course, nil
}

func (s *CourseService) ListCreatorCourses(ctx context.Context, ownerID uint) ([]model.Course, error) {
	return s.Courses.FindByCreator(ctx, ownerID)
}

func (s *CourseService) ListPublishedCourses(ctx context.Context) ([]model.Course, error) {
	return s.Courses.FindPublished(ctx)
}

// EditCourse applies patch and optionally swaps the thumbnail. The new
// thumbnail is uploaded before anything is written; the previous asset is
// released afterwards and a failure there is only logged.
func (s *CourseService) EditCourse(ctx context.Context, courseID uint, patch model.CoursePatch, thumbnail *FileUpload) (*model.Course, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, util.NewValidationError("Course title cannot be empty")
	}
	if patch.Category != nil && strings.TrimSpace(*patch.Category) == "" {
		return nil, util.NewValidationError("Course category cannot be empty")
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, util.NewValidationError("Course price cannot be negative")
	}

	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, notFoundOr(err, "Course not found")
	}

	var oldAssetID string
	if thumbnail != nil {
		url, key, err := uploadImage(ctx, s.Assets, util.PrefixThumbnails, thumbnail)
		if err != nil {
			return nil, err
		}
		oldAssetID = course.ThumbnailAssetID
		course.Thumbnail = url
		course.ThumbnailAssetID = key
	}

	patch.Apply(course)

	if err := s.Courses.Update(ctx, course); err != nil {
		return nil, err
	}

	releaseAsset(ctx, s.Assets, oldAssetID)
	return course, nil
}

func (s *CourseService) TogglePublish(ctx context.Context, courseID uint, publish bool) (*model.Course, error) {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, notFoundOr(err, "Course not found!")
	}

	if err := s.Courses.SetPublished(ctx, courseID, publish); err != nil {
		return nil, err
	}
	course.IsPublished = publish
	return course, nil
}

func (s *CourseService) Search(ctx context.Context, criteria model.CourseSearch) ([]model.Course, error) {
	categories := criteria.Categories[:0:0]
	for _, c := range criteria.Categories {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	criteria.Categories = categories

	switch criteria.PriceSort {
	case model.PriceSortNone, model.PriceSortAsc, model.PriceSortDesc:
	default:
		criteria.PriceSort = model.PriceSortNone
	}

	courses, err := s.Courses.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	return courses, nil
}

// AddLecture creates the lecture and its lecture-set entry together.
func (s *CourseService) AddLecture(ctx context.Context, courseID uint, title string) (*model.Lecture, error) {
	title = strings.TrimSpace(title)
	if title == "" || courseID == 0 {
		return nil, util.NewValidationError("Lecture title and course ID are required")
	}

	if _, err := s.Courses.FindByID(ctx, courseID); err != nil {
		return nil, notFoundOr(err, "Course not found")
	}

	lecture := &model.Lecture{
		Title:    title,
		CourseID: courseID,
	}
	if err := s.Lectures.CreateInCourse(ctx, lecture); err != nil {
		return nil, err
	}
	return lecture, nil
}

func (s *CourseService) ListCourseLectures(ctx context.Context, courseID uint) ([]model.Lecture, error) {
	if _, err := s.Courses.FindByID(ctx, courseID); err != nil {
		return nil, notFoundOr(err, "Course not found")
	}
	return s.Lectures.FindByCourse(ctx, courseID)
}

func (s *CourseService) GetLecture(ctx context.Context, lectureID uint) (*model.Lecture, error) {
	lecture, err := s.Lectures.FindByID(ctx, lectureID)
	if err != nil {
		return nil, notFoundOr(err, "Lecture not found")
	}
	return lecture, nil
}

// EditLecture updates the lecture and then makes sure the owning course's
// lecture set contains it.
func (s *CourseService) EditLecture(ctx context.Context, courseID, lectureID uint, patch model.LecturePatch) (*model.Lecture, error) {
	lecture, err := s.Lectures.FindByID(ctx, lectureID)
	if err != nil {
		return nil, notFoundOr(err, "Lecture not found!")
	}

	if lecture.CourseID == 0 {
		lecture.CourseID = courseID
	}
	if lecture.CourseID != courseID {
		return nil, util.NewNotFoundError("Lecture not found in this course")
	}

	patch.Apply(lecture)
	if err := s.Lectures.Update(ctx, lecture); err != nil {
		return nil, err
	}

	if err := s.EnsureLectureMembership(ctx, courseID, lecture.ID); err != nil && !util.IsNotFound(err) {
		return nil, err
	}
	return lecture, nil
}

// EnsureLectureMembership is an idempotent set-union insert of lectureID into
// the course's lecture set.
func (s *CourseService) EnsureLectureMembership(ctx context.Context, courseID, lectureID uint) error {
	if _, err := s.Courses.FindByID(ctx, courseID); err != nil {
		return notFoundOr(err, "Course not found")
	}
	return s.Courses.EnsureLectureMembership(ctx, courseID, lectureID)
}

// DeleteLecture releases the video asset (best effort) and removes the
// lecture together with every lecture-set entry referencing it.
func (s *CourseService) DeleteLecture(ctx context.Context, lectureID uint) error {
	lecture, err := s.Lectures.FindByID(ctx, lectureID)
	if err != nil {
		return notFoundOr(err, "lecture not found")
	}

	releaseAsset(ctx, s.Assets, lecture.AssetID)

	return s.Lectures.DeleteWithMembership(ctx, lectureID)
}
