package controller

import (
	"course_platform/internal/model"
	"course_platform/internal/service"
	"course_platform/internal/util"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// CreateCourseRequest 创建课程请求
// swagger:model CreateCourseRequest
type CreateCourseRequest struct {
	CourseTitle string `json:"courseTitle"`
	Category    string `json:"category"`
}

// LectureRequest 创建或编辑讲座请求
// swagger:model LectureRequest
type LectureRequest struct {
	LectureTitle  *string          `json:"lectureTitle"`
	VideoInfo     *model.VideoInfo `json:"videoInfo"`
	IsPreviewFree *bool            `json:"isPreviewFree"`
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CreateCourseRequest true "课程标题与分类"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /api/v1/course [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Course title and category is required")
		return
	}

	course, err := c.CourseService.CreateCourse(ctx.Request.Context(), req.CourseTitle, req.Category, currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// SearchCourses godoc
// @Summary 搜索已发布课程
// @Tags 课程
// @Produce  json
// @Param   query query string false "标题/副标题/分类关键字"
// @Param   categories query string false "分类，逗号分隔"
// @Param   sortByPrice query string false "low 或 high"
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/v1/course/search [get]
func (c *CourseController) SearchCourses(ctx *gin.Context) {
	var categories []string
	for _, raw := range ctx.QueryArray("categories") {
		categories = append(categories, strings.Split(raw, ",")...)
	}

	courses, err := c.CourseService.Search(ctx.Request.Context(), model.CourseSearch{
		Query:      ctx.Query("query"),
		Categories: categories,
		PriceSort:  model.PriceSort(ctx.Query("sortByPrice")),
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetPublishedCourses godoc
// @Summary 已发布课程列表
// @Tags 课程
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/v1/course/published-courses [get]
func (c *CourseController) GetPublishedCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListPublishedCourses(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCreatorCourses godoc
// @Summary 当前讲师创建的课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/v1/course [get]
func (c *CourseController) GetCreatorCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListCreatorCourses(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// EditCourse godoc
// @Summary 编辑课程
// @Tags 课程
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Param   courseThumbnail formData file false "缩略图"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/v1/course/{courseId} [put]
func (c *CourseController) EditCourse(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))

	patch := model.CoursePatch{
		Title:       optionalForm(ctx, "courseTitle"),
		SubTitle:    optionalForm(ctx, "subTitle"),
		Description: optionalForm(ctx, "description"),
		Category:    optionalForm(ctx, "category"),
	}
	if level := optionalForm(ctx, "courseLevel"); level != nil {
		lv := model.CourseLevel(*level)
		patch.Level = &lv
	}
	if raw := optionalForm(ctx, "coursePrice"); raw != nil && *raw != "" {
		price, err := strconv.ParseFloat(*raw, 64)
		if err != nil {
			util.BadRequest(ctx, "Invalid course price")
			return
		}
		patch.Price = &price
	}

	thumbnail, closeFn, err := openUpload(ctx, "courseThumbnail")
	if err != nil {
		util.BadRequest(ctx, "invalid upload")
		return
	}
	defer closeFn()

	course, err := c.CourseService.EditCourse(ctx.Request.Context(), courseID, patch, thumbnail)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Course updated successfully.", course)
}

// GetCourse godoc
// @Summary 课程详情
// @Tags 课程
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/v1/course/{courseId} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CourseService.GetCourse(ctx.Request.Context(), util.MustParseUint(ctx.Param("courseId")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// TogglePublish godoc
// @Summary 发布或下架课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Param   publish query bool true "true 发布, false 下架"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/v1/course/{courseId} [patch]
func (c *CourseController) TogglePublish(ctx *gin.Context) {
	publish := util.ParseBool(ctx.Query("publish"))
	course, err := c.CourseService.TogglePublish(ctx.Request.Context(), util.MustParseUint(ctx.Param("courseId")), publish)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	status := "Unpublished"
	if publish {
		status = "Published"
	}
	util.SuccessMessage(ctx, "Course is "+status, course)
}

// CreateLecture godoc
// @Summary 新增讲座
// @Tags 讲座
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Param   body body LectureRequest true "讲座标题"
// @Success 201 {object} util.Response{data=model.Lecture}
// @Router /api/v1/course/{courseId}/lecture [post]
func (c *CourseController) CreateLecture(ctx *gin.Context) {
	var req LectureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.LectureTitle == nil {
		util.BadRequest(ctx, "Lecture title is required")
		return
	}

	lecture, err := c.CourseService.AddLecture(ctx.Request.Context(), util.MustParseUint(ctx.Param("courseId")), *req.LectureTitle)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, lecture)
}

// GetCourseLectures godoc
// @Summary 课程讲座列表
// @Tags 讲座
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Lecture}
// @Router /api/v1/course/{courseId}/lecture [get]
func (c *CourseController) GetCourseLectures(ctx *gin.Context) {
	lectures, err := c.CourseService.ListCourseLectures(ctx.Request.Context(), util.MustParseUint(ctx.Param("courseId")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lectures)
}

// EditLecture godoc
// @Summary 编辑讲座
// @Tags 讲座
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId path int true "课程ID"
// @Param   lectureId path int true "讲座ID"
// @Param   body body LectureRequest true "讲座字段"
// @Success 200 {object} util.Response{data=model.Lecture}
// @Router /api/v1/course/{courseId}/lecture/{lectureId} [post]
func (c *CourseController) EditLecture(ctx *gin.Context) {
	var req LectureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lecture, err := c.CourseService.EditLecture(ctx.Request.Context(),
		util.MustParseUint(ctx.Param("courseId")),
		util.MustParseUint(ctx.Param("lectureId")),
		model.LecturePatch{
			Title:         req.LectureTitle,
			Video:         req.VideoInfo,
			IsPreviewFree: req.IsPreviewFree,
		})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Lecture updated successfully.", lecture)
}

// GetLecture godoc
// @Summary 讲座详情
// @Tags 讲座
// @Produce  json
// @Security ApiKeyAuth
// @Param   lectureId path int true "讲座ID"
// @Success 200 {object} util.Response{data=model.Lecture}
// @Router /api/v1/course/lecture/{lectureId} [get]
func (c *CourseController) GetLecture(ctx *gin.Context) {
	lecture, err := c.CourseService.GetLecture(ctx.Request.Context(), util.MustParseUint(ctx.Param("lectureId")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lecture)
}

// RemoveLecture godoc
// @Summary 删除讲座
// @Tags 讲座
// @Produce  json
// @Security ApiKeyAuth
// @Param   lectureId path int true "讲座ID"
// @Success 200 {object} util.Response
// @Router /api/v1/course/lecture/{lectureId} [delete]
func (c *CourseController) RemoveLecture(ctx *gin.Context) {
	if err := c.CourseService.DeleteLecture(ctx.Request.Context(), util.MustParseUint(ctx.Param("lectureId"))); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Lecture removed successfully.", nil)
}

// optionalForm 表单字段存在时返回其值
func optionalForm(ctx *gin.Context, key string) *string {
	v, ok := ctx.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}
