package model

// swagger:model Lecture
type Lecture struct {
	BaseModel
	Title         string  `gorm:"size:255;not null" json:"lectureTitle"`
	VideoURL      string  `gorm:"size:512" json:"videoUrl"`
	AssetID       string  `gorm:"size:255" json:"publicId"`
	Duration      float64 `gorm:"default:0" json:"duration"` // 视频时长（秒）
	IsPreviewFree bool    `gorm:"default:false" json:"isPreviewFree"`
	CourseID      uint    `gorm:"index" json:"courseId"`
}

func (Lecture) TableName() string {
	return "lectures"
}

// VideoInfo 上传后的视频引用
type VideoInfo struct {
	VideoURL string  `json:"videoUrl"`
	AssetID  string  `json:"publicId"`
	Duration float64 `json:"duration"`
}

// LecturePatch 讲座编辑字段，nil 表示不修改
type LecturePatch struct {
	Title         *string
	Video         *VideoInfo
	IsPreviewFree *bool
}

// Apply copies every non-nil field onto l. Empty video fields are ignored.
func (p LecturePatch) Apply(l *Lecture) {
	if p.Title != nil && *p.Title != "" {
		l.Title = *p.Title
	}
	if p.Video != nil {
		if p.Video.VideoURL != "" {
			l.VideoURL = p.Video.VideoURL
		}
		if p.Video.AssetID != "" {
			l.AssetID = p.Video.AssetID
		}
		if p.Video.Duration > 0 {
			l.Duration = p.Video.Duration
		}
	}
	if p.IsPreviewFree != nil {
		l.IsPreviewFree = *p.IsPreviewFree
	}
}
