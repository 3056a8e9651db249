package service

import (
	"learnly_backend/internal/model"
	"learnly_backend/internal/repository"
	"learnly_backend/internal/util"
	"learnly_backend/pkg/monitoring"
	"time"

	"gorm.io/gorm"
)

// PlanService 学习计划的生成、查询、补课调度与任务状态流转
type PlanService struct {
	DB             *gorm.DB
	PlanRepo       *repository.PlanRepository
	TaskRepo       *repository.TaskRepository
	CourseRepo     *repository.CourseRepository
	UnitRepo       *repository.UnitRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Progression    *ProgressionService
}

func NewPlanService(
	db *gorm.DB,
	planRepo *repository.PlanRepository,
	taskRepo *repository.TaskRepository,
	courseRepo *repository.CourseRepository,
	unitRepo *repository.UnitRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progression *ProgressionService,
) *PlanService {
	return &PlanService{
		DB:             db,
		PlanRepo:       planRepo,
		TaskRepo:       taskRepo,
		CourseRepo:     courseRepo,
		UnitRepo:       unitRepo,
		EnrollmentRepo: enrollmentRepo,
		Progression:    progression,
	}
}

type GeneratePlanRequest struct {
	CourseID      *uint  `json:"courseId"`
	Goal          string `json:"goal"`
	Days          int    `json:"days"`
	DailyMinutes  int    `json:"dailyMinutes"`
	PreferredTime string `json:"preferredTime"`
}

type PlanResponse struct {
	Plan     *model.LearningPlan      `json:"plan"`
	Tasks    []model.LearningPlanTask `json:"tasks"`
	Today    string                   `json:"today"`
	Stats    *PlanStats               `json:"stats,omitempty"`
	NextTask *model.LearningPlanTask  `json:"nextTask,omitempty"`
}

// GeneratePlan 生成新计划并原子地归档同范围旧计划。
// 课程计划从选课进度的当前单元排起，全局计划按天排通用学习任务
func (s *PlanService) GeneratePlan(userID uint, req GeneratePlanRequest) (*PlanResponse, error) {
	days := req.Days
	if days == 0 {
		days = 14
	}
	days = util.ClampInt(days, 7, 30)

	dailyMinutes := req.DailyMinutes
	if dailyMinutes == 0 {
		dailyMinutes = 30
	}
	dailyMinutes = util.ClampInt(dailyMinutes, 15, 180)

	preferred := model.TimeEvening
	if req.PreferredTime != "" {
		if !model.ValidPreferredTime(req.PreferredTime) {
			return nil, util.ErrInvalidInput
		}
		preferred = model.PreferredTime(req.PreferredTime)
	}

	today := todayLocal()
	goal := req.Goal

	var tasks []model.LearningPlanTask
	if req.CourseID != nil {
		course, err := s.CourseRepo.FindByID(*req.CourseID)
		if err != nil {
			return nil, util.ErrCourseNotFound
		}

		enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, course.ID)
		if err == gorm.ErrRecordNotFound {
			enrollment = &model.CourseEnrollment{
				UserID:           userID,
				CourseID:         course.ID,
				Status:           model.EnrollmentActive,
				CurrentUnitOrder: 1,
			}
			if err := s.EnrollmentRepo.Create(enrollment); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}

		units, err := s.UnitRepo.FindByCourse(course.ID)
		if err != nil {
			return nil, err
		}
		if len(units) == 0 {
			return nil, util.ErrCourseNoUnits
		}

		if goal == "" {
			goal = "Complete course: " + course.Name
		}

		tasks = buildCourseScheduleTasks(scheduleInput{
			CourseID:       course.ID,
			Units:          units,
			StartUnitOrder: enrollment.CurrentUnitOrder,
			StartDate:      today,
			Days:           days,
			DailyMinutes:   dailyMinutes,
			PreferredTime:  preferred,
		})
	} else {
		if goal == "" {
			goal = "Complete my enrolled courses"
		}
		tasks = buildGlobalTasks(today, days, dailyMinutes, preferred)
	}

	plan := &model.LearningPlan{
		UserID:        userID,
		CourseID:      req.CourseID,
		Goal:          goal,
		Days:          days,
		DailyMinutes:  dailyMinutes,
		PreferredTime: preferred,
		Status:        model.PlanActive,
	}

	if err := s.PlanRepo.CreateWithTasks(plan, tasks); err != nil {
		return nil, err
	}

	saved, err := s.TaskRepo.FindByPlan(plan.ID)
	if err != nil {
		return nil, err
	}

	stats := computeStats(saved, today)
	return &PlanResponse{
		Plan:     plan,
		Tasks:    saved,
		Today:    today,
		Stats:    &stats,
		NextTask: pickNextTask(saved, today),
	}, nil
}

// ActivePlan 读取范围内的活动计划。读取路径顺带做过期检测：
// 过去日期仍 pending 的任务落库为 missed，重复读取不再变化
func (s *PlanService) ActivePlan(userID uint, courseID *uint) (*PlanResponse, error) {
	today := todayLocal()

	plan, err := s.PlanRepo.FindActive(userID, courseID)
	if err == gorm.ErrRecordNotFound {
		return &PlanResponse{Plan: nil, Tasks: []model.LearningPlanTask{}, Today: today}, nil
	}
	if err != nil {
		return nil, err
	}

	tasks, err := s.TaskRepo.FindByPlan(plan.ID)
	if err != nil {
		return nil, err
	}

	for _, i := range applyMissedDetection(tasks, today) {
		if err := s.TaskRepo.Save(&tasks[i]); err != nil {
			return nil, err
		}
	}

	stats := computeStats(tasks, today)
	return &PlanResponse{
		Plan:     plan,
		Tasks:    tasks,
		Today:    today,
		Stats:    &stats,
		NextTask: pickNextTask(tasks, today),
	}, nil
}

type RescheduleResult struct {
	Plan       *model.LearningPlan      `json:"plan"`
	MovedCount int                      `json:"movedCount"`
	Tasks      []model.LearningPlanTask `json:"tasks"`
	Today      string                   `json:"today"`
	Stats      *PlanStats               `json:"stats"`
}

// Reschedule 把 missed 任务顺延到今天起第一个有容量的日期。
// 整个过程持行锁在单个事务内完成，任务只会被移动，不会增删
func (s *PlanService) Reschedule(userID uint, courseID *uint) (*RescheduleResult, error) {
	today := todayLocal()

	var result *RescheduleResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		plan, err := s.PlanRepo.FindActive(userID, courseID)
		if err == gorm.ErrRecordNotFound {
			return util.ErrPlanNotFound
		}
		if err != nil {
			return err
		}

		tasks, err := s.TaskRepo.FindByPlanForUpdate(tx, plan.ID)
		if err != nil {
			return err
		}

		dirty := make(map[int]bool)
		for _, i := range applyMissedDetection(tasks, today) {
			dirty[i] = true
		}

		moved := rebalanceMissed(tasks, tasksPerDay(plan.DailyMinutes), today)
		for _, i := range moved {
			dirty[i] = true
		}

		for i := range dirty {
			if err := tx.Save(&tasks[i]).Error; err != nil {
				return err
			}
		}

		stats := computeStats(tasks, today)
		result = &RescheduleResult{
			Plan:       plan,
			MovedCount: len(moved),
			Tasks:      tasks,
			Today:      today,
			Stats:      &stats,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.TasksRescheduled.Add(float64(result.MovedCount))
	return result, nil
}

// CompleteTask 完成任务并盖时间戳。quiz 类任务完成时同步选课进度，
// 同一任务重复完成不会重复推进
func (s *PlanService) CompleteTask(userID, taskID uint) (*model.LearningPlanTask, error) {
	task, plan, err := s.ownedTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status == model.TaskCompleted {
		return task, nil
	}

	now := time.Now()
	task.Status = model.TaskCompleted
	task.CompletedAt = &now
	if err := s.TaskRepo.Save(task); err != nil {
		return nil, err
	}

	if task.Type == model.TaskQuiz && task.CourseID != nil && task.UnitOrder != nil {
		if err := s.Progression.SyncQuizTaskCompletion(plan.UserID, *task.CourseID, *task.UnitOrder); err != nil {
			return nil, err
		}
	}

	return task, nil
}

// SkipTask 跳过任务。跳过不算完成，不推进任何课程进度
func (s *PlanService) SkipTask(userID, taskID uint) (*model.LearningPlanTask, error) {
	task, _, err := s.ownedTask(userID, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status == model.TaskSkipped {
		return task, nil
	}

	task.Status = model.TaskSkipped
	task.CompletedAt = nil
	if err := s.TaskRepo.Save(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *PlanService) ownedTask(userID, taskID uint) (*model.LearningPlanTask, *model.LearningPlan, error) {
	task, err := s.TaskRepo.FindByID(taskID)
	if err != nil {
		return nil, nil, util.ErrTaskNotFound
	}

	plan, err := s.PlanRepo.FindByID(task.PlanID)
	if err != nil {
		return nil, nil, util.ErrPlanNotFound
	}
	if plan.UserID != userID {
		return nil, nil, util.ErrPermissionDenied
	}
	return task, plan, nil
}
