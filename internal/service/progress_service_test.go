package service

import (
	"context"
	"course_platform/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLectureViewed_AlgebraScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	const user = uint(42)

	course, err := f.courses.CreateCourse(ctx, "Algebra I", "Math", 1)
	require.NoError(t, err)
	l1, _ := f.courses.AddLecture(ctx, course.ID, "L1")
	l2, _ := f.courses.AddLecture(ctx, course.ID, "L2")

	progress, err := f.progress.RecordLectureViewed(ctx, user, course.ID, l1.ID)
	require.NoError(t, err)
	assert.False(t, progress.Completed)

	progress, err = f.progress.RecordLectureViewed(ctx, user, course.ID, l2.ID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	assert.Len(t, progress.LectureProgress, 2)
}

func TestRecordLectureViewed_RepeatViewDoesNotDuplicate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	course, _ := f.courses.CreateCourse(ctx, "A", "Math", 1)
	l1, _ := f.courses.AddLecture(ctx, course.ID, "L1")
	f.courses.AddLecture(ctx, course.ID, "L2")

	for i := 0; i < 3; i++ {
		progress, err := f.progress.RecordLectureViewed(ctx, 1, course.ID, l1.ID)
		require.NoError(t, err)
		assert.Len(t, progress.LectureProgress, 1)
		assert.False(t, progress.Completed)
	}
}

func TestRecordLectureViewed_DenominatorFollowsCatalog(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	const user = uint(5)

	course, _ := f.courses.CreateCourse(ctx, "A", "Math", 1)
	l1, _ := f.courses.AddLecture(ctx, course.ID, "L1")
	l2, _ := f.courses.AddLecture(ctx, course.ID, "L2")

	f.progress.RecordLectureViewed(ctx, user, course.ID, l1.ID)
	progress, err := f.progress.RecordLectureViewed(ctx, user, course.ID, l2.ID)
	require.NoError(t, err)
	require.True(t, progress.Completed)

	_, err = f.courses.AddLecture(ctx, course.ID, "L3")
	require.NoError(t, err)

	// 读取不重新计算，保持上次的结果
	view, err := f.progress.GetProgress(ctx, user, course.ID)
	require.NoError(t, err)
	assert.True(t, view.Completed)

	progress, err = f.progress.RecordLectureViewed(ctx, user, course.ID, l2.ID)
	require.NoError(t, err)
	assert.False(t, progress.Completed)
}

func TestRecordLectureViewed_RemovedLectureDoesNotCount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	course, _ := f.courses.CreateCourse(ctx, "A", "Math", 1)
	l1, _ := f.courses.AddLecture(ctx, course.ID, "L1")
	l2, _ := f.courses.AddLecture(ctx, course.ID, "L2")
	l3, _ := f.courses.AddLecture(ctx, course.ID, "L3")

	f.progress.RecordLectureViewed(ctx, 1, course.ID, l1.ID)
	f.progress.RecordLectureViewed(ctx, 1, course.ID, l2.ID)
	require.NoError(t, f.courses.DeleteLecture(ctx, l2.ID))

	// 已看 {l1, l2}，当前集合 {l1, l3}
	progress, err := f.progress.RecordLectureViewed(ctx, 1, course.ID, l1.ID)
	require.NoError(t, err)
	assert.False(t, progress.Completed)

	progress, err = f.progress.RecordLectureViewed(ctx, 1, course.ID, l3.ID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
}

func TestRecordLectureViewed_UnknownCourse(t *testing.T) {
	f := newFixture()
	_, err := f.progress.RecordLectureViewed(context.Background(), 1, 999, 1)
	assert.True(t, util.IsNotFound(err))
}

func TestGetProgress_NoRecordIsEmpty(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	course, _ := f.courses.CreateCourse(ctx, "A", "Math", 1)
	f.courses.AddLecture(ctx, course.ID, "L1")

	view, err := f.progress.GetProgress(ctx, 1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, view.CourseDetails.ID)
	assert.Len(t, view.CourseDetails.Lectures, 1)
	assert.NotNil(t, view.Progress)
	assert.Empty(t, view.Progress)
	assert.False(t, view.Completed)

	_, err = f.progress.GetProgress(ctx, 1, 999)
	assert.True(t, util.IsNotFound(err))
}

func TestMarkCompleted_OverridesOnlyRecordedEntries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	course, _ := f.courses.CreateCourse(ctx, "A", "Math", 1)
	l1, _ := f.courses.AddLecture(ctx, course.ID, "L1")
	f.courses.AddLecture(ctx, course.ID, "L2")
	f.courses.AddLecture(ctx, course.ID, "L3")

	f.progress.RecordLectureViewed(ctx, 1, course.ID, l1.ID)

	progress, err := f.progress.MarkCompleted(ctx, 1, course.ID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	// 未记录的讲座不会被补齐
	assert.Len(t, progress.LectureProgress, 1)

	progress, err = f.progress.MarkIncomplete(ctx, 1, course.ID)
	require.NoError(t, err)
	assert.False(t, progress.Completed)
	for _, lp := range progress.LectureProgress {
		assert.False(t, lp.Viewed)
	}
}

func TestMarkCompleted_WithoutRecordIsNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	course, _ := f.courses.CreateCourse(ctx, "A", "Math", 1)

	_, err := f.progress.MarkCompleted(ctx, 1, course.ID)
	assert.True(t, util.IsNotFound(err))

	_, err = f.progress.MarkIncomplete(ctx, 1, course.ID)
	assert.True(t, util.IsNotFound(err))
}
