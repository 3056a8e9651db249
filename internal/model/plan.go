package model

import "time"

type PlanStatus string

const (
	PlanActive   PlanStatus = "active"
	PlanArchived PlanStatus = "archived"
)

type PreferredTime string

const (
	TimeMorning   PreferredTime = "morning"
	TimeAfternoon PreferredTime = "afternoon"
	TimeEvening   PreferredTime = "evening"
	TimeAny       PreferredTime = "any"
)

func ValidPreferredTime(s string) bool {
	switch PreferredTime(s) {
	case TimeMorning, TimeAfternoon, TimeEvening, TimeAny:
		return true
	}
	return false
}

type PlanTaskType string

const (
	TaskStudy    PlanTaskType = "study"
	TaskPractice PlanTaskType = "practice"
	TaskReview   PlanTaskType = "review"
	TaskQuiz     PlanTaskType = "quiz"
)

type PlanTaskStatus string

const (
	TaskPending   PlanTaskStatus = "pending"
	TaskCompleted PlanTaskStatus = "completed"
	TaskSkipped   PlanTaskStatus = "skipped"
	TaskMissed    PlanTaskStatus = "missed"
)

// LearningPlan 学习计划。同一 (userId, courseId) 范围内至多一个 active 计划，
// 生成新计划时旧计划归档而非删除
// swagger:model LearningPlan
type LearningPlan struct {
	BaseModel
	UserID        uint          `gorm:"index;not null" json:"userId"`
	CourseID      *uint         `gorm:"index" json:"courseId"` // null 表示全局计划
	Goal          string        `gorm:"size:255;not null;default:'Follow my learning plan'" json:"goal"`
	Days          int           `gorm:"not null;default:14" json:"days"`         // 7-30
	DailyMinutes  int           `gorm:"not null;default:30" json:"dailyMinutes"` // 15-180
	PreferredTime PreferredTime `gorm:"size:20;default:'evening'" json:"preferredTime"`
	Status        PlanStatus    `gorm:"size:20;index;default:'active'" json:"status"`
}

func (LearningPlan) TableName() string {
	return "learning_plans"
}

// LearningPlanTask 计划中的单个任务。date 为本地日期 "2006-01-02"，
// 按天粒度调度，字符串比较即日期比较
// swagger:model LearningPlanTask
type LearningPlanTask struct {
	BaseModel
	PlanID      uint           `gorm:"index;not null" json:"planId"`
	CourseID    *uint          `json:"courseId"`
	UnitID      *uint          `json:"unitId"`
	UnitOrder   *int           `json:"unitOrder"`
	Date        string         `gorm:"size:10;index;not null" json:"date"`
	StartTime   string         `gorm:"size:5;not null;default:'19:00'" json:"startTime"` // HH:MM
	DurationMin int            `gorm:"not null;default:30" json:"durationMin"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Type        PlanTaskType   `gorm:"size:10;not null;default:'study'" json:"type"`
	Status      PlanTaskStatus `gorm:"size:10;index;not null;default:'pending'" json:"status"`
	CompletedAt *time.Time     `json:"completedAt"`
}

func (LearningPlanTask) TableName() string {
	return "learning_plan_tasks"
}
