package controller

import (
	"course_platform/internal/service"
	"course_platform/internal/util"

	"github.com/gin-gonic/gin"
)

type MediaController struct {
	MediaService *service.MediaService
}

func NewMediaController(mediaService *service.MediaService) *MediaController {
	return &MediaController{MediaService: mediaService}
}

// UploadVideo godoc
// @Summary 上传讲座视频
// @Tags 媒体
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "视频文件"
// @Success 200 {object} util.Response{data=model.VideoInfo}
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response "存储服务异常"
// @Router /api/v1/media/upload-video [post]
func (c *MediaController) UploadVideo(ctx *gin.Context) {
	file, closeFn, err := openUpload(ctx, "file")
	if err != nil {
		util.BadRequest(ctx, "invalid upload")
		return
	}
	defer closeFn()

	info, err := c.MediaService.UploadVideo(ctx.Request.Context(), file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "File uploaded successfully.", info)
}
