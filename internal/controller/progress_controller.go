package controller

import (
	"course_platform/internal/service"
	"course_platform/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// GetCourseProgress godoc
// @Summary 获取课程学习进度
// @Tags 进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.ProgressView}
// @Failure 404 {object} util.Response
// @Router /api/v1/progress/{courseId} [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	view, err := c.ProgressService.GetProgress(ctx.Request.Context(), currentUserID(ctx), util.MustParseUint(ctx.Param("courseId")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// UpdateLectureProgress godoc
// @Summary 记录讲座已观看
// @Tags 进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Param   lectureId path int true "讲座ID"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Router /api/v1/progress/{courseId}/lecture/{lectureId}/view [post]
func (c *ProgressController) UpdateLectureProgress(ctx *gin.Context) {
	progress, err := c.ProgressService.RecordLectureViewed(ctx.Request.Context(),
		currentUserID(ctx),
		util.MustParseUint(ctx.Param("courseId")),
		util.MustParseUint(ctx.Param("lectureId")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Lecture progress updated successfully.", progress)
}

// MarkAsCompleted godoc
// @Summary 标记课程已完成
// @Tags 进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Router /api/v1/progress/{courseId}/complete [post]
func (c *ProgressController) MarkAsCompleted(ctx *gin.Context) {
	progress, err := c.ProgressService.MarkCompleted(ctx.Request.Context(), currentUserID(ctx), util.MustParseUint(ctx.Param("courseId")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Course marked as completed.", progress)
}

// MarkAsInCompleted godoc
// @Summary 标记课程未完成
// @Tags 进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Router /api/v1/progress/{courseId}/incomplete [post]
func (c *ProgressController) MarkAsInCompleted(ctx *gin.Context) {
	progress, err := c.ProgressService.MarkIncomplete(ctx.Request.Context(), currentUserID(ctx), util.MustParseUint(ctx.Param("courseId")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Course marked as incompleted.", progress)
}
