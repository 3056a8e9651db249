package repository

import (
	"learnly_backend/internal/model"

	"gorm.io/gorm"
)

type PlacementRepository struct {
	DB *gorm.DB
}

func NewPlacementRepository(db *gorm.DB) *PlacementRepository {
	return &PlacementRepository{DB: db}
}

func (r *PlacementRepository) FindQuestionsByCourse(courseID uint) ([]model.CoursePlacementQuestion, error) {
	var questions []model.CoursePlacementQuestion
	err := r.DB.Where("course_id = ?", courseID).Order("created_at ASC").Find(&questions).Error
	return questions, err
}

// ReplaceQuestions 覆盖课程的摸底题集合，生成和删除在同一事务内
func (r *PlacementRepository) ReplaceQuestions(courseID uint, questions []model.CoursePlacementQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&model.CoursePlacementQuestion{}).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		return tx.Create(&questions).Error
	})
}

func (r *PlacementRepository) FindQuestionsByIDsAndCourse(ids []uint, courseID uint) ([]model.CoursePlacementQuestion, error) {
	var questions []model.CoursePlacementQuestion
	err := r.DB.Where("id IN ? AND course_id = ?", ids, courseID).Find(&questions).Error
	return questions, err
}

// CreateAttempt 写入提交记录和逐题作答，整体成功或整体失败
func (r *PlacementRepository) CreateAttempt(attempt *model.CoursePlacementAttempt, answers []model.CoursePlacementAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		if len(answers) == 0 {
			return nil
		}
		return tx.Create(&answers).Error
	})
}

func (r *PlacementRepository) CountAttempts(enrollmentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CoursePlacementAttempt{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&count).Error
	return count, err
}
