package model

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// CourseUnitQuizQuestion 单元测验题，四选一
// swagger:model CourseUnitQuizQuestion
type CourseUnitQuizQuestion struct {
	BaseModel
	UnitID        uint       `gorm:"index;not null" json:"unitId"`
	QuestionText  string     `gorm:"type:text;not null" json:"questionText"`
	OptionA       string     `gorm:"size:500" json:"optionA"`
	OptionB       string     `gorm:"size:500" json:"optionB"`
	OptionC       string     `gorm:"size:500" json:"optionC"`
	OptionD       string     `gorm:"size:500" json:"optionD"`
	CorrectOption string     `gorm:"size:1;not null" json:"-"` // A/B/C/D，不下发给学生
	Explanation   string     `gorm:"type:text" json:"explanation,omitempty"`
	Difficulty    Difficulty `gorm:"size:10;index" json:"difficulty"`
}

func (CourseUnitQuizQuestion) TableName() string {
	return "course_unit_quiz_questions"
}

// CourseUnitQuizAttempt 一次提交中单题的作答记录，只写不改
type CourseUnitQuizAttempt struct {
	BaseModel
	EnrollmentID   uint   `gorm:"index;not null" json:"enrollmentId"`
	QuestionID     uint   `gorm:"index;not null" json:"questionId"`
	SelectedOption string `gorm:"size:1;not null" json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
}

func (CourseUnitQuizAttempt) TableName() string {
	return "course_unit_quiz_attempts"
}

// CoursePlacementQuestion 课程摸底题（2易/2中/1难）
// swagger:model CoursePlacementQuestion
type CoursePlacementQuestion struct {
	BaseModel
	CourseID      uint       `gorm:"index;not null" json:"courseId"`
	QuestionText  string     `gorm:"type:text;not null" json:"questionText"`
	OptionA       string     `gorm:"size:500" json:"optionA"`
	OptionB       string     `gorm:"size:500" json:"optionB"`
	OptionC       string     `gorm:"size:500" json:"optionC"`
	OptionD       string     `gorm:"size:500" json:"optionD"`
	CorrectOption string     `gorm:"size:1;not null" json:"-"`
	Explanation   string     `gorm:"type:text" json:"explanation,omitempty"`
	Difficulty    Difficulty `gorm:"size:10" json:"difficulty"`
}

func (CoursePlacementQuestion) TableName() string {
	return "course_placement_questions"
}

// CoursePlacementAttempt 摸底测试提交记录，每个 enrollment 至多一次有效记录
type CoursePlacementAttempt struct {
	UUIDBase
	EnrollmentID uint                    `gorm:"index;not null" json:"enrollmentId"`
	CourseID     uint                    `gorm:"index;not null" json:"courseId"`
	Score        int                     `json:"score"`
	CompletedAt  time.Time               `json:"completedAt"`
	Answers      []CoursePlacementAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
}

func (CoursePlacementAttempt) TableName() string {
	return "course_placement_attempts"
}

type CoursePlacementAnswer struct {
	BaseModel
	AttemptID      string `gorm:"index;type:varchar(36);not null" json:"attemptId"`
	QuestionID     uint   `gorm:"index;not null" json:"questionId"`
	SelectedOption string `gorm:"size:1;not null" json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
}

func (CoursePlacementAnswer) TableName() string {
	return "course_placement_answers"
}
