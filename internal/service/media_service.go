package service

import (
	"context"
	"course_platform/internal/model"
	"course_platform/internal/util"
	"course_platform/pkg/logger"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

type MediaService struct {
	Assets AssetStore
	// Probe 读取视频元数据，默认使用 ffmpeg
	Probe func(path string) (*util.VideoInfo, error)
}

func NewMediaService(assets AssetStore) *MediaService {
	return &MediaService{
		Assets: assets,
		Probe:  util.GetVideoInfo,
	}
}

// UploadVideo 上传讲座视频。文件先落到临时目录以便探测时长，探测失败不影响上传
func (s *MediaService) UploadVideo(ctx context.Context, file *FileUpload) (*model.VideoInfo, error) {
	if file == nil {
		return nil, util.ErrFileRequired
	}
	if !util.HasAllowedExtension(file.Filename, util.AllowedVideoExtensions) {
		return nil, util.ErrInvalidVideoExt
	}

	tempDir := filepath.Join(os.TempDir(), "course_platform")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, err
	}
	tempPath := filepath.Join(tempDir, fmt.Sprintf("video_%d%s", time.Now().UnixNano(), filepath.Ext(file.Filename)))
	defer os.Remove(tempPath)

	if err := writeTemp(tempPath, file.Reader); err != nil {
		return nil, err
	}

	var duration float64
	if s.Probe != nil {
		info, err := s.Probe(tempPath)
		if err != nil {
			logger.Log.Warn("video probe failed", zap.String("file", file.Filename), zap.Error(err))
		} else {
			duration = info.Duration
		}
	}

	src, err := os.Open(tempPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// 扩展名之外再按文件头校验，容器格式无法识别时按二进制放行
	contentType, err := util.ValidateMimeType(src, []string{util.MimeVideo, util.MimeOctetStream})
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if file.ContentType == "" {
		file.ContentType = contentType
	}

	key := util.AssetKey(util.PrefixVideos, file.Filename)
	url, err := s.Assets.Upload(ctx, key, src, file.Size, file.ContentType)
	if err != nil {
		return nil, util.NewUpstreamError("failed to upload video", err)
	}

	return &model.VideoInfo{
		VideoURL: url,
		AssetID:  key,
		Duration: duration,
	}, nil
}

func writeTemp(path string, r io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, r)
	return err
}
