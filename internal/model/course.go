package model

// swagger:model Course
type Course struct {
	BaseModel
	Name              string       `gorm:"size:255;not null" json:"name"`
	Subject           string       `gorm:"size:100;not null" json:"subject"`
	Description       string       `gorm:"type:text" json:"description"`
	DurationMinutes   int          `gorm:"default:0" json:"durationMinutes"`
	MinPassPercentage int          `gorm:"default:60" json:"minPassPercentage"` // 0-100
	IsActive          bool         `gorm:"default:true" json:"isActive"`
	Units             []CourseUnit `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"units,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseUnit 课程单元，order 从1开始连续递增
// swagger:model CourseUnit
type CourseUnit struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	Order       int    `gorm:"not null" json:"order"`
	Title       string `gorm:"size:255;not null" json:"title"`
	BaseContent string `gorm:"type:text" json:"baseContent"`
}

func (CourseUnit) TableName() string {
	return "course_units"
}
