package service

import (
	"context"
	"course_platform/internal/model"
	"course_platform/internal/util"
	"sort"
)

type DashboardService struct {
	Courses   CourseStore
	Purchases PurchaseStore
}

func NewDashboardService(courses CourseStore, purchases PurchaseStore) *DashboardService {
	return &DashboardService{
		Courses:   courses,
		Purchases: purchases,
	}
}

// ComputeInstructorDashboard aggregates completed purchases of the courses
// owned by instructorID. Each purchase counts once: the ledger is unique per
// session id.
func (s *DashboardService) ComputeInstructorDashboard(ctx context.Context, instructorID uint) (*model.InstructorDashboard, error) {
	courses, err := s.Courses.FindByCreator(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	dashboard := &model.InstructorDashboard{
		TotalCourses:    len(courses),
		PurchasedCourse: []model.CoursePurchase{},
		SoldCourses:     []model.Course{},
		DailyRevenue:    []model.DailyRevenue{},
	}
	if len(courses) == 0 {
		return dashboard, nil
	}

	courseIDs := make([]uint, 0, len(courses))
	for _, c := range courses {
		courseIDs = append(courseIDs, c.ID)
	}

	purchases, err := s.Purchases.FindCompletedByCourses(ctx, courseIDs)
	if err != nil {
		return nil, err
	}

	sold := make(map[uint]struct{})
	daily := make(map[string]float64)

	for _, p := range purchases {
		dashboard.TotalRevenue += p.Amount
		daily[p.CreatedAt.UTC().Format(util.DateFormat)] += p.Amount

		if _, seen := sold[p.CourseID]; !seen && p.Course != nil {
			sold[p.CourseID] = struct{}{}
			dashboard.SoldCourses = append(dashboard.SoldCourses, *p.Course)
		}
	}
	dashboard.PurchasedCourse = append(dashboard.PurchasedCourse, purchases...)
	// 学生数按已完成购买计数，同一学生购买多门课程分别计入
	dashboard.TotalStudents = len(purchases)

	for date, value := range daily {
		dashboard.DailyRevenue = append(dashboard.DailyRevenue, model.DailyRevenue{Date: date, Value: value})
	}
	sort.Slice(dashboard.DailyRevenue, func(i, j int) bool {
		return dashboard.DailyRevenue[i].Date < dashboard.DailyRevenue[j].Date
	})

	return dashboard, nil
}
