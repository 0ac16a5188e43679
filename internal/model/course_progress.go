package model

// CourseProgress 用户在某课程上的学习进度，(user, course) 唯一
// swagger:model CourseProgress
type CourseProgress struct {
	BaseModel
	UserID          uint              `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"userId"`
	CourseID        uint              `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"courseId"`
	Completed       bool              `gorm:"default:false" json:"completed"`
	LectureProgress []LectureProgress `gorm:"foreignKey:ProgressID" json:"lectureProgress"`
}

func (CourseProgress) TableName() string {
	return "course_progresses"
}

// swagger:model LectureProgress
type LectureProgress struct {
	ID         uint `gorm:"primaryKey;autoIncrement" json:"-"`
	ProgressID uint `gorm:"uniqueIndex:idx_progress_lecture;not null" json:"-"`
	LectureID  uint `gorm:"uniqueIndex:idx_progress_lecture;not null" json:"lectureId"`
	Viewed     bool `gorm:"default:false" json:"viewed"`
}

func (LectureProgress) TableName() string {
	return "lecture_progresses"
}

// MarkViewed sets the viewed flag for lectureID, appending an entry when the
// lecture has not been seen before.
func (p *CourseProgress) MarkViewed(lectureID uint) {
	for i := range p.LectureProgress {
		if p.LectureProgress[i].LectureID == lectureID {
			p.LectureProgress[i].Viewed = true
			return
		}
	}
	p.LectureProgress = append(p.LectureProgress, LectureProgress{
		ProgressID: p.ID,
		LectureID:  lectureID,
		Viewed:     true,
	})
}

// SetAllViewed overrides the viewed flag of every entry already recorded.
func (p *CourseProgress) SetAllViewed(viewed bool) {
	for i := range p.LectureProgress {
		p.LectureProgress[i].Viewed = viewed
	}
	p.Completed = viewed
}

// Recompute derives Completed from the course's current lecture set: every
// current lecture must have a viewed entry. Entries for lectures no longer in
// the course are ignored.
func (p *CourseProgress) Recompute(currentLectureIDs []uint) {
	viewed := make(map[uint]bool, len(p.LectureProgress))
	for _, lp := range p.LectureProgress {
		if lp.Viewed {
			viewed[lp.LectureID] = true
		}
	}

	count := 0
	for _, id := range currentLectureIDs {
		if viewed[id] {
			count++
		}
	}

	p.Completed = len(currentLectureIDs) > 0 && count == len(currentLectureIDs)
}

// ProgressView 课程进度视图；无记录时 Progress 为空数组
type ProgressView struct {
	CourseDetails *Course           `json:"courseDetails"`
	Progress      []LectureProgress `json:"progress"`
	Completed     bool              `json:"completed"`
}
