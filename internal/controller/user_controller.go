package controller

import (
	"course_platform/internal/service"
	"course_platform/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 处理用户资料相关的HTTP请求
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{
		UserService: userService,
	}
}

// GetProfile godoc
// @Summary 获取当前用户资料
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/v1/user/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user, err := c.UserService.GetProfile(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UpdateProfile godoc
// @Summary 更新用户名与头像
// @Tags 用户
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   name formData string true "用户名"
// @Param   profilePhoto formData file true "头像"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/v1/user/profile/update [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	photo, closeFn, err := openUpload(ctx, "profilePhoto")
	if err != nil {
		util.BadRequest(ctx, "invalid upload")
		return
	}
	defer closeFn()

	user, err := c.UserService.UpdateProfile(ctx.Request.Context(), currentUserID(ctx), ctx.PostForm("name"), photo)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Profile updated successfully.", user)
}
