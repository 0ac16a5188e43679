package model

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
)

// swagger:model User
type User struct {
	BaseModel
	Name         string   `gorm:"size:100;not null" json:"name"`
	Email        string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password     string   `gorm:"size:100;not null" json:"-"`
	Role         UserRole `gorm:"size:20;default:'student'" json:"role"`
	PhotoURL     string   `gorm:"size:255" json:"photoUrl"`
	PhotoAssetID string   `gorm:"size:255" json:"-"`

	EnrolledCourses []Course `gorm:"many2many:user_enrolled_courses;" json:"enrolledCourses,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserEnrolledCourse is the user side of enrollment membership.
type UserEnrolledCourse struct {
	UserID   uint `gorm:"primaryKey"`
	CourseID uint `gorm:"primaryKey"`
}

func (UserEnrolledCourse) TableName() string {
	return "user_enrolled_courses"
}
