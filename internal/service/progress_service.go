package service

import (
	"context"
	"course_platform/internal/model"
	"errors"

	"gorm.io/gorm"
)

type ProgressStore interface {
	FindByUserAndCourse(ctx context.Context, userID, courseID uint) (*model.CourseProgress, error)
	Save(ctx context.Context, progress *model.CourseProgress) error
}

// ProgressService 跟踪 (用户, 课程) 的讲座查看进度
type ProgressService struct {
	Courses  CourseStore
	Progress ProgressStore
}

func NewProgressService(courses CourseStore, progress ProgressStore) *ProgressService {
	return &ProgressService{
		Courses:  courses,
		Progress: progress,
	}
}

// GetProgress returns the course details with the stored progress. A missing
// progress record is reported as empty progress, not as an error.
func (s *ProgressService) GetProgress(ctx context.Context, userID, courseID uint) (*model.ProgressView, error) {
	course, err := s.Courses.FindDetails(ctx, courseID)
	if err != nil {
		return nil, notFoundOr(err, "Course not found")
	}

	view := &model.ProgressView{
		CourseDetails: course,
		Progress:      []model.LectureProgress{},
	}

	progress, err := s.Progress.FindByUserAndCourse(ctx, userID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, err
	}

	if progress.LectureProgress != nil {
		view.Progress = progress.LectureProgress
	}
	view.Completed = progress.Completed
	return view, nil
}

// RecordLectureViewed marks lectureID viewed, creating the record on first
// view, and recomputes completion against the course's current lecture set.
func (s *ProgressService) RecordLectureViewed(ctx context.Context, userID, courseID, lectureID uint) (*model.CourseProgress, error) {
	if _, err := s.Courses.FindByID(ctx, courseID); err != nil {
		return nil, notFoundOr(err, "Course not found")
	}

	progress, err := s.Progress.FindByUserAndCourse(ctx, userID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = &model.CourseProgress{
			UserID:   userID,
			CourseID: courseID,
		}
	} else if err != nil {
		return nil, err
	}

	progress.MarkViewed(lectureID)

	// 总讲座数每次从目录实时读取，不做缓存
	lectureIDs, err := s.Courses.LectureIDs(ctx, courseID)
	if err != nil {
		return nil, err
	}
	progress.Recompute(lectureIDs)

	if err := s.Progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// MarkCompleted overrides every recorded entry to viewed. Lectures without an
// entry are left untouched.
func (s *ProgressService) MarkCompleted(ctx context.Context, userID, courseID uint) (*model.CourseProgress, error) {
	return s.override(ctx, userID, courseID, true)
}

// MarkIncomplete overrides every recorded entry to not viewed.
func (s *ProgressService) MarkIncomplete(ctx context.Context, userID, courseID uint) (*model.CourseProgress, error) {
	return s.override(ctx, userID, courseID, false)
}

func (s *ProgressService) override(ctx context.Context, userID, courseID uint, viewed bool) (*model.CourseProgress, error) {
	progress, err := s.Progress.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, notFoundOr(err, "Course progress not found")
	}

	progress.SetAllViewed(viewed)

	if err := s.Progress.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}
