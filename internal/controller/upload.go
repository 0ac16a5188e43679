package controller

import (
	"course_platform/internal/service"
	"course_platform/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// openUpload 打开表单文件字段，字段不存在时返回 nil
func openUpload(ctx *gin.Context, field string) (*service.FileUpload, func(), error) {
	header, err := ctx.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}

	upload := &service.FileUpload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      f,
	}
	return upload, func() { f.Close() }, nil
}

// currentUserID 返回已认证用户 ID，未认证时为 0
func currentUserID(ctx *gin.Context) uint {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
