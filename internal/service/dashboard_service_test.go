package service

import (
	"context"
	"course_platform/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeInstructorDashboard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	algebra := publishedCourse(t, f, "Algebra", 10)
	geometry := publishedCourse(t, f, "Geometry", 20)
	unsold := publishedCourse(t, f, "Calculus", 30)

	// 其他讲师的课程不计入
	other, err := f.courses.CreateCourse(ctx, "Other", "Art", 99)
	require.NoError(t, err)

	loc := time.FixedZone("UTC+8", 8*3600)
	at := func(ts time.Time) {
		f.store.now = func() time.Time { return ts }
	}

	// 北京时间 1 月 2 日 07:00 即 UTC 1 月 1 日 23:00
	at(time.Date(2024, 1, 2, 7, 0, 0, 0, loc))
	_, err = f.enrollment.ReconcileCompletedPayment(ctx, "cs_1", 1, algebra.ID, 10)
	require.NoError(t, err)

	at(time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC))
	_, err = f.enrollment.ReconcileCompletedPayment(ctx, "cs_2", 2, algebra.ID, 12)
	require.NoError(t, err)
	_, err = f.enrollment.ReconcileCompletedPayment(ctx, "cs_3", 1, geometry.ID, 20)
	require.NoError(t, err)
	_, err = f.enrollment.ReconcileCompletedPayment(ctx, "cs_4", 3, other.ID, 50)
	require.NoError(t, err)

	// 未完成的购买不计入
	_, err = f.purchases.InitiateCheckout(ctx, 4, geometry.ID)
	require.NoError(t, err)

	dashboard, err := f.dashboard.ComputeInstructorDashboard(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, dashboard.TotalCourses)
	assert.Equal(t, 3, dashboard.TotalStudents)
	assert.InDelta(t, 42.0, dashboard.TotalRevenue, 1e-9)
	assert.Len(t, dashboard.PurchasedCourse, 3)

	soldIDs := []uint{}
	for _, c := range dashboard.SoldCourses {
		soldIDs = append(soldIDs, c.ID)
	}
	assert.ElementsMatch(t, []uint{algebra.ID, geometry.ID}, soldIDs)
	assert.NotContains(t, soldIDs, unsold.ID)

	assert.Equal(t, []model.DailyRevenue{
		{Date: "2024-01-01", Value: 10},
		{Date: "2024-01-02", Value: 32},
	}, dashboard.DailyRevenue)
}

func TestComputeInstructorDashboard_NoCourses(t *testing.T) {
	f := newFixture()

	dashboard, err := f.dashboard.ComputeInstructorDashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, dashboard.TotalCourses)
	assert.Zero(t, dashboard.TotalRevenue)
	assert.NotNil(t, dashboard.DailyRevenue)
	assert.NotNil(t, dashboard.SoldCourses)
	assert.NotNil(t, dashboard.PurchasedCourse)
}
