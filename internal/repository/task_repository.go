package repository

import (
	"learnly_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) FindByID(id uint) (*model.LearningPlanTask, error) {
	var task model.LearningPlanTask
	err := r.DB.First(&task, id).Error
	return &task, err
}

func (r *TaskRepository) FindByPlan(planID uint) ([]model.LearningPlanTask, error) {
	var tasks []model.LearningPlanTask
	err := r.DB.Where("plan_id = ?", planID).
		Order("date ASC, start_time ASC, id ASC").
		Find(&tasks).Error
	return tasks, err
}

// FindByPlanForUpdate 行级锁读取，用于串行化并发的补课调度
func (r *TaskRepository) FindByPlanForUpdate(tx *gorm.DB, planID uint) ([]model.LearningPlanTask, error) {
	var tasks []model.LearningPlanTask
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("plan_id = ?", planID).
		Order("date ASC, start_time ASC, id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Save(task *model.LearningPlanTask) error {
	return r.DB.Save(task).Error
}

// CompletePendingQuizTask 测验通过后同步完成计划里对应单元的 quiz 任务，
// 没有匹配任务时是幂等空操作
func (r *TaskRepository) CompletePendingQuizTask(planID, courseID, unitID uint) error {
	now := time.Now()
	return r.DB.Model(&model.LearningPlanTask{}).
		Where("plan_id = ? AND course_id = ? AND unit_id = ? AND type = ? AND status = ?",
			planID, courseID, unitID, model.TaskQuiz, model.TaskPending).
		Updates(map[string]interface{}{
			"status":       model.TaskCompleted,
			"completed_at": now,
		}).
		Error
}
