package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// LearningStyle 学习风格：视觉型/文本型/练习型
type LearningStyle string

const (
	StyleVisual   LearningStyle = "Visual"
	StyleText     LearningStyle = "Text"
	StylePractice LearningStyle = "Practice"
)

func ValidLearningStyle(s string) bool {
	switch LearningStyle(s) {
	case StyleVisual, StyleText, StylePractice:
		return true
	}
	return false
}

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;default:'student'" json:"role"`
	Language  string    `gorm:"size:10;default:'en'" json:"language"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `json:"lastLogin"`
	LastSeen  time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// StudentProfile 学生画像，能力分数和偏好风格参与选课推荐
// swagger:model StudentProfile
type StudentProfile struct {
	BaseModel
	UserID              uint          `gorm:"uniqueIndex;not null" json:"userId"`
	CurrentLevel        string        `gorm:"size:20;default:'Beginner'" json:"currentLevel"`
	PreferredLanguage   string        `gorm:"size:30;default:'English'" json:"preferredLanguage"`
	LearningStyle       LearningStyle `gorm:"size:10;default:'Text'" json:"learningStyle"`
	LastCompetencyScore int           `gorm:"default:0" json:"lastCompetencyScore"`
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}
