package app

import (
	"course_platform/internal/config"
	"course_platform/internal/middleware"
	"course_platform/internal/model"
	"course_platform/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	api := router.Group("/api/v1")
	auth := middleware.AuthMiddleware(&cfg.JWT)
	instructor := middleware.RoleMiddleware(model.Instructor)

	// 用户
	user := api.Group("/user")
	{
		user.POST("/register", c.auth.Register)
		user.POST("/login", c.auth.Login)
		user.GET("/logout", c.auth.Logout)
		user.GET("/profile", auth, c.user.GetProfile)
		user.PUT("/profile/update", auth, c.user.UpdateProfile)
	}

	// 课程与讲座
	course := api.Group("/course")
	{
		course.GET("/search", auth, c.course.SearchCourses)
		course.GET("/published-courses", c.course.GetPublishedCourses)
		course.POST("", auth, instructor, c.course.CreateCourse)
		course.GET("", auth, instructor, c.course.GetCreatorCourses)
		course.GET("/:courseId", auth, c.course.GetCourse)
		course.PUT("/:courseId", auth, instructor, c.course.EditCourse)
		course.PATCH("/:courseId", auth, instructor, c.course.TogglePublish)
		course.POST("/:courseId/lecture", auth, instructor, c.course.CreateLecture)
		course.GET("/:courseId/lecture", auth, c.course.GetCourseLectures)
		course.POST("/:courseId/lecture/:lectureId", auth, instructor, c.course.EditLecture)
		course.GET("/lecture/:lectureId", auth, c.course.GetLecture)
		course.DELETE("/lecture/:lectureId", auth, instructor, c.course.RemoveLecture)
	}

	// 学习进度
	progress := api.Group("/progress", auth)
	{
		progress.GET("/:courseId", c.progress.GetCourseProgress)
		progress.POST("/:courseId/lecture/:lectureId/view", c.progress.UpdateLectureProgress)
		progress.POST("/:courseId/complete", c.progress.MarkAsCompleted)
		progress.POST("/:courseId/incomplete", c.progress.MarkAsInCompleted)
	}

	// 购买。webhook 由签名鉴权，不走登录态
	purchase := api.Group("/purchase")
	{
		purchase.POST("/webhook", c.purchase.StripeWebhook)
		purchase.POST("/checkout/create-checkout-session", auth, c.purchase.CreateCheckoutSession)
		purchase.GET("/course/:courseId/detail-with-status", auth, c.purchase.GetCourseDetailWithPurchaseStatus)
		purchase.GET("", auth, instructor, c.purchase.GetAllPurchasedCourse)
		purchase.GET("/instructor/dashboard", auth, instructor, c.purchase.GetInstructorDashboard)
	}

	media := api.Group("/media", auth, instructor)
	{
		media.POST("/upload-video", c.media.UploadVideo)
	}
}
