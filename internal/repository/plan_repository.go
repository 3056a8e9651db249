package repository

import (
	"learnly_backend/internal/model"

	"gorm.io/gorm"
)

type PlanRepository struct {
	DB *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{DB: db}
}

// scopeCourse 计划范围：courseID 为 nil 表示全局计划
func scopeCourse(db *gorm.DB, courseID *uint) *gorm.DB {
	if courseID == nil {
		return db.Where("course_id IS NULL")
	}
	return db.Where("course_id = ?", *courseID)
}

func (r *PlanRepository) FindByID(id uint) (*model.LearningPlan, error) {
	var plan model.LearningPlan
	err := r.DB.First(&plan, id).Error
	return &plan, err
}

func (r *PlanRepository) FindActive(userID uint, courseID *uint) (*model.LearningPlan, error) {
	var plan model.LearningPlan
	query := scopeCourse(r.DB.Where("user_id = ? AND status = ?", userID, model.PlanActive), courseID)
	err := query.Order("created_at DESC").First(&plan).Error
	return &plan, err
}

// CreateWithTasks 原子换班：归档同范围的旧 active 计划，再写入新计划及其任务
func (r *PlanRepository) CreateWithTasks(plan *model.LearningPlan, tasks []model.LearningPlanTask) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		archive := scopeCourse(
			tx.Model(&model.LearningPlan{}).Where("user_id = ? AND status = ?", plan.UserID, model.PlanActive),
			plan.CourseID,
		)
		if err := archive.Update("status", model.PlanArchived).Error; err != nil {
			return err
		}

		if err := tx.Create(plan).Error; err != nil {
			return err
		}

		for i := range tasks {
			tasks[i].PlanID = plan.ID
		}
		if len(tasks) == 0 {
			return nil
		}
		return tx.Create(&tasks).Error
	})
}
