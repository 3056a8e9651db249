package repository

import (
	"learnly_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompetenceRepository struct {
	DB *gorm.DB
}

func NewCompetenceRepository(db *gorm.DB) *CompetenceRepository {
	return &CompetenceRepository{DB: db}
}

// FindActiveQuestions 按条件抽题，subject/topic/difficulty 均可选
func (r *CompetenceRepository) FindActiveQuestions(subject, topic string, difficulty model.Difficulty, limit int) ([]model.CompetenceQuestion, error) {
	query := r.DB.Where("is_active = ?", true)
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var questions []model.CompetenceQuestion
	err := query.Order("created_at ASC, id ASC").Limit(limit).Find(&questions).Error
	return questions, err
}

func (r *CompetenceRepository) FindQuestionsByIDs(ids []uint) ([]model.CompetenceQuestion, error) {
	var questions []model.CompetenceQuestion
	err := r.DB.Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

func (r *CompetenceRepository) CreateQuestions(questions []model.CompetenceQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Create(&questions).Error
}

// UpsertStudentCompetence 每个 (user, subject) 只保留最新一条评估结果
func (r *CompetenceRepository) UpsertStudentCompetence(record *model.StudentCompetence) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "subject"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"competence_score", "competence_level", "confidence_score", "updated_at",
		}),
	}).Create(record).Error
}

func (r *CompetenceRepository) FindStudentCompetence(userID uint, subject string) (*model.StudentCompetence, error) {
	var record model.StudentCompetence
	err := r.DB.Where("user_id = ? AND subject = ?", userID, subject).First(&record).Error
	return &record, err
}
