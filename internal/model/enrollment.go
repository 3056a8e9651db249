package model

import "time"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// CourseEnrollment 学生在一门课程中的进度记录
// currentUnitOrder 只增不减，每次通过当前单元的测验恰好加1
// swagger:model CourseEnrollment
type CourseEnrollment struct {
	BaseModel
	UserID               uint             `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID             uint             `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"courseId"`
	Status               EnrollmentStatus `gorm:"size:20;default:'active'" json:"status"`
	CurrentUnitOrder     int              `gorm:"default:1" json:"currentUnitOrder"`
	LastQuizScore        int              `gorm:"default:0" json:"lastQuizScore"` // 0-100
	RecommendedStyle     LearningStyle    `gorm:"size:10;default:'Text'" json:"recommendedStyle"`
	PlacementScore       *int             `json:"placementScore"`       // 完成摸底测试前为 null
	PlacementCompletedAt *time.Time       `json:"placementCompletedAt"` // 完成摸底测试前为 null
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}
