package model

type CourseLevel string

const (
	Beginner CourseLevel = "beginner"
	Medium   CourseLevel = "medium"
	Advanced CourseLevel = "advanced"
)

// Course 课程。讲座集合与已报名学生集合均通过联结表维护，主键保证集合语义
// swagger:model Course
type Course struct {
	BaseModel
	Title            string      `gorm:"size:255;not null" json:"courseTitle"`
	SubTitle         string      `gorm:"size:255" json:"subTitle"`
	Description      string      `gorm:"type:text" json:"description"`
	Category         string      `gorm:"size:100;not null;index" json:"category"`
	Level            CourseLevel `gorm:"size:20" json:"courseLevel"`
	Price            float64     `gorm:"type:decimal(10,2);default:0" json:"coursePrice"`
	Thumbnail        string      `gorm:"size:255" json:"courseThumbnail"`
	ThumbnailAssetID string      `gorm:"size:255" json:"-"`
	IsPublished      bool        `gorm:"default:false;index" json:"isPublished"`
	CreatorID        uint        `gorm:"index;not null" json:"creatorId"`

	Creator          *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Lectures         []Lecture `gorm:"many2many:course_lectures;" json:"lectures"`
	EnrolledStudents []User    `gorm:"many2many:course_enrollments;" json:"enrolledStudents"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseLecture is one entry of a course's lecture set.
type CourseLecture struct {
	CourseID  uint `gorm:"primaryKey"`
	LectureID uint `gorm:"primaryKey;index"`
}

func (CourseLecture) TableName() string {
	return "course_lectures"
}

// CourseEnrollment is the course side of enrollment membership.
type CourseEnrollment struct {
	CourseID uint `gorm:"primaryKey"`
	UserID   uint `gorm:"primaryKey"`
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}

// CoursePatch 课程编辑字段，nil 表示不修改
type CoursePatch struct {
	Title       *string
	SubTitle    *string
	Description *string
	Category    *string
	Level       *CourseLevel
	Price       *float64
}

// Apply copies every non-nil field onto c.
func (p CoursePatch) Apply(c *Course) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.SubTitle != nil {
		c.SubTitle = *p.SubTitle
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
}

type PriceSort string

const (
	PriceSortNone PriceSort = ""
	PriceSortAsc  PriceSort = "low"
	PriceSortDesc PriceSort = "high"
)

// CourseSearch 课程搜索条件
type CourseSearch struct {
	Query      string
	Categories []string
	PriceSort  PriceSort
}
