package model

// DailyRevenue 按 UTC 日期聚合的收入
type DailyRevenue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// InstructorDashboard 讲师仪表盘统计
// swagger:model InstructorDashboard
type InstructorDashboard struct {
	TotalCourses    int              `json:"totalCourses"`
	TotalStudents   int              `json:"totalStudents"`
	TotalRevenue    float64          `json:"totalRevenue"`
	PurchasedCourse []CoursePurchase `json:"purchasedCourse"`
	SoldCourses     []Course         `json:"soldCourses"`
	DailyRevenue    []DailyRevenue   `json:"dailyRevenue"`
}
