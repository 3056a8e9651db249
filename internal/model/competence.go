package model

// CompetenceQuestion 学科能力测试题，不挂在具体课程下，
// 按 subject/topic/difficulty 抽题
// swagger:model CompetenceQuestion
type CompetenceQuestion struct {
	BaseModel
	Subject       string     `gorm:"size:100;index;not null" json:"subject"`
	Topic         string     `gorm:"size:100;index;not null" json:"topic"`
	QuestionText  string     `gorm:"type:text;not null" json:"questionText"`
	OptionA       string     `gorm:"size:500" json:"optionA"`
	OptionB       string     `gorm:"size:500" json:"optionB"`
	OptionC       string     `gorm:"size:500" json:"optionC"`
	OptionD       string     `gorm:"size:500" json:"optionD"`
	CorrectOption string     `gorm:"size:1;not null" json:"-"`
	Explanation   string     `gorm:"type:text" json:"explanation,omitempty"`
	Difficulty    Difficulty `gorm:"size:10;index" json:"difficulty"`
	Source        string     `gorm:"size:10;default:'MANUAL'" json:"source"` // MANUAL | AI
	IsActive      bool       `gorm:"default:true;index" json:"isActive"`
}

func (CompetenceQuestion) TableName() string {
	return "competence_questions"
}

// StudentCompetence 每个 (user, subject) 一条最新的能力评估结果，提交即覆盖
// swagger:model StudentCompetence
type StudentCompetence struct {
	BaseModel
	UserID          uint    `gorm:"uniqueIndex:idx_competence_user_subject;not null" json:"userId"`
	Subject         string  `gorm:"size:100;uniqueIndex:idx_competence_user_subject;not null" json:"subject"`
	CompetenceScore int     `gorm:"not null" json:"competenceScore"` // 0-100，按难度加权
	CompetenceLevel string  `gorm:"size:20;not null" json:"competenceLevel"`
	ConfidenceScore float64 `json:"confidenceScore"` // 0-1
}

func (StudentCompetence) TableName() string {
	return "student_competences"
}
