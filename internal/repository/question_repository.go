package repository

import (
	"learnly_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) BulkCreate(questions []model.CourseUnitQuizQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.Create(&questions).Error
}

func (r *QuestionRepository) FindByUnitAndDifficulty(unitID uint, difficulty model.Difficulty) ([]model.CourseUnitQuizQuestion, error) {
	var questions []model.CourseUnitQuizQuestion
	err := r.DB.Where("unit_id = ? AND difficulty = ?", unitID, difficulty).Find(&questions).Error
	return questions, err
}

// FindByIDsAndUnit 只取属于该单元的题目，防止跨单元提交
func (r *QuestionRepository) FindByIDsAndUnit(ids []uint, unitID uint) ([]model.CourseUnitQuizQuestion, error) {
	var questions []model.CourseUnitQuizQuestion
	err := r.DB.Where("id IN ? AND unit_id = ?", ids, unitID).Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) CreateAttempts(attempts []model.CourseUnitQuizAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	return r.DB.Create(&attempts).Error
}
