package service

import (
	"fmt"
	"learnly_backend/internal/model"
	"learnly_backend/internal/util"
	"time"
)

// 学习计划的纯调度函数。日期一律是本地日 "2006-01-02" 字符串，
// 字符串比较等价于日期比较，所有调度都是天粒度

func todayLocal() string {
	return time.Now().Format(util.DateFormat)
}

func addDays(date string, days int) string {
	t, err := time.ParseInLocation(util.DateFormat, date, time.Local)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(util.DateFormat)
}

func startTimeFor(preferred model.PreferredTime) string {
	switch preferred {
	case model.TimeMorning:
		return "07:00"
	case model.TimeAfternoon:
		return "13:00"
	default:
		return "19:00"
	}
}

// tasksPerDay 每日任务容量：时间短就一项，否则两项
func tasksPerDay(dailyMinutes int) int {
	if dailyMinutes <= 35 {
		return 1
	}
	return 2
}

type scheduleInput struct {
	CourseID       uint
	Units          []model.CourseUnit
	StartUnitOrder int
	StartDate      string
	Days           int
	DailyMinutes   int
	PreferredTime  model.PreferredTime
}

// buildCourseScheduleTasks 生成确定性的按单元推进计划。
// 容量1：同一单元先学习日后测验日交替；容量2：同一天学习+测验，次日换下一单元。
// 单元耗尽后剩余天数排复习任务
func buildCourseScheduleTasks(in scheduleInput) []model.LearningPlanTask {
	perDay := tasksPerDay(in.DailyMinutes)
	startTime := startTimeFor(in.PreferredTime)

	var remaining []model.CourseUnit
	for _, u := range in.Units {
		if u.Order >= in.StartUnitOrder {
			remaining = append(remaining, u)
		}
	}

	courseID := in.CourseID
	tasks := make([]model.LearningPlanTask, 0, in.Days*perDay)
	unitIndex := 0

	for dayIndex := 0; dayIndex < in.Days; dayIndex++ {
		date := addDays(in.StartDate, dayIndex)

		if unitIndex >= len(remaining) {
			// 单元学完之后的天数用来复习
			reviewMin := in.DailyMinutes
			if reviewMin > 45 {
				reviewMin = 45
			}
			tasks = append(tasks, model.LearningPlanTask{
				CourseID:    &courseID,
				Date:        date,
				StartTime:   startTime,
				DurationMin: reviewMin,
				Title:       "REVIEW: Revise key concepts + flashcards",
				Type:        model.TaskReview,
				Status:      model.TaskPending,
			})
			continue
		}

		unit := remaining[unitIndex]
		unitID := unit.ID
		unitOrder := unit.Order

		if perDay == 1 {
			isStudyDay := dayIndex%2 == 0

			taskType := model.TaskQuiz
			title := fmt.Sprintf("QUIZ: Unit %d — %s", unit.Order, unit.Title)
			if isStudyDay {
				taskType = model.TaskStudy
				title = fmt.Sprintf("STUDY: Unit %d — %s", unit.Order, unit.Title)
			}

			tasks = append(tasks, model.LearningPlanTask{
				CourseID:    &courseID,
				UnitID:      &unitID,
				UnitOrder:   &unitOrder,
				Date:        date,
				StartTime:   startTime,
				DurationMin: in.DailyMinutes,
				Title:       title,
				Type:        taskType,
				Status:      model.TaskPending,
			})

			// 测验日排完才推进到下一个单元
			if !isStudyDay {
				unitIndex++
			}
			continue
		}

		studyMin := in.DailyMinutes * 65 / 100
		if studyMin < 20 {
			studyMin = 20
		}
		quizMin := in.DailyMinutes - studyMin
		if quizMin < 15 {
			quizMin = 15
		}

		tasks = append(tasks,
			model.LearningPlanTask{
				CourseID:    &courseID,
				UnitID:      &unitID,
				UnitOrder:   &unitOrder,
				Date:        date,
				StartTime:   startTime,
				DurationMin: studyMin,
				Title:       fmt.Sprintf("STUDY: Unit %d — %s", unit.Order, unit.Title),
				Type:        model.TaskStudy,
				Status:      model.TaskPending,
			},
			model.LearningPlanTask{
				CourseID:    &courseID,
				UnitID:      &unitID,
				UnitOrder:   &unitOrder,
				Date:        date,
				StartTime:   startTime,
				DurationMin: quizMin,
				Title:       fmt.Sprintf("QUIZ: Unit %d — %s", unit.Order, unit.Title),
				Type:        model.TaskQuiz,
				Status:      model.TaskPending,
			},
		)
		unitIndex++
	}

	return tasks
}

// buildGlobalTasks 无课程绑定的通用计划：每天一条学习任务
func buildGlobalTasks(startDate string, days, dailyMinutes int, preferred model.PreferredTime) []model.LearningPlanTask {
	startTime := startTimeFor(preferred)

	tasks := make([]model.LearningPlanTask, 0, days)
	for i := 0; i < days; i++ {
		tasks = append(tasks, model.LearningPlanTask{
			Date:        addDays(startDate, i),
			StartTime:   startTime,
			DurationMin: dailyMinutes,
			Title:       "STUDY: Continue your enrolled courses (next unit)",
			Type:        model.TaskStudy,
			Status:      model.TaskPending,
		})
	}
	return tasks
}

// applyMissedDetection 过期仍 pending 的任务标记为 missed。
// 返回状态变化的任务下标，重复执行不再产生变化
func applyMissedDetection(tasks []model.LearningPlanTask, today string) []int {
	var changed []int
	for i := range tasks {
		if tasks[i].Status == model.TaskPending && tasks[i].Date < today {
			tasks[i].Status = model.TaskMissed
			changed = append(changed, i)
		}
	}
	return changed
}

// rebalanceMissed 贪心首次适应：按原顺序把 missed 任务塞进今天起第一个
// pending 数低于容量的日期，恢复为 pending 并清除完成时间。
// 游标只前进不回退，任务只会被顺延，不会丢失
func rebalanceMissed(tasks []model.LearningPlanTask, capacityPerDay int, today string) []int {
	dateCounts := make(map[string]int)
	for i := range tasks {
		if tasks[i].Status == model.TaskPending {
			dateCounts[tasks[i].Date]++
		}
	}

	var moved []int
	cursor := today
	for i := range tasks {
		if tasks[i].Status != model.TaskMissed {
			continue
		}

		for dateCounts[cursor] >= capacityPerDay {
			cursor = addDays(cursor, 1)
		}

		tasks[i].Date = cursor
		tasks[i].Status = model.TaskPending
		tasks[i].CompletedAt = nil
		dateCounts[cursor]++
		moved = append(moved, i)
	}

	return moved
}

// PlanStats 计划的汇总统计
type PlanStats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	Completed    int `json:"completed"`
	Skipped      int `json:"skipped"`
	Missed       int `json:"missed"`
	CompletedPct int `json:"completedPct"`
	MissedPct    int `json:"missedPct"`
	TodayPending int `json:"todayPending"`
}

func computeStats(tasks []model.LearningPlanTask, today string) PlanStats {
	stats := PlanStats{Total: len(tasks)}

	for _, t := range tasks {
		switch t.Status {
		case model.TaskPending:
			stats.Pending++
			if t.Date == today {
				stats.TodayPending++
			}
		case model.TaskCompleted:
			stats.Completed++
		case model.TaskSkipped:
			stats.Skipped++
		case model.TaskMissed:
			stats.Missed++
		}
	}

	stats.CompletedPct = roundPct(stats.Completed, stats.Total)
	stats.MissedPct = roundPct(stats.Missed, stats.Total)

	return stats
}

// pickNextTask 今天起第一条 pending 任务
func pickNextTask(tasks []model.LearningPlanTask, today string) *model.LearningPlanTask {
	for i := range tasks {
		if tasks[i].Status == model.TaskPending && tasks[i].Date >= today {
			return &tasks[i]
		}
	}
	return nil
}
