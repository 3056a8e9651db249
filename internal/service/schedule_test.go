package service

import (
	"learnly_backend/internal/model"
	"testing"
	"time"
)

func makeUnits(n int) []model.CourseUnit {
	units := make([]model.CourseUnit, 0, n)
	for i := 0; i < n; i++ {
		units = append(units, model.CourseUnit{
			BaseModel: model.BaseModel{ID: uint(i + 1)},
			CourseID:  1,
			Order:     i + 1,
			Title:     "Unit",
		})
	}
	return units
}

func TestTasksPerDay(t *testing.T) {
	tests := []struct {
		minutes int
		want    int
	}{
		{15, 1},
		{35, 1},
		{36, 2},
		{180, 2},
	}
	for _, tt := range tests {
		if got := tasksPerDay(tt.minutes); got != tt.want {
			t.Errorf("tasksPerDay(%d) = %d, want %d", tt.minutes, got, tt.want)
		}
	}
}

func TestStartTimeFor(t *testing.T) {
	tests := []struct {
		preferred model.PreferredTime
		want      string
	}{
		{model.TimeMorning, "07:00"},
		{model.TimeAfternoon, "13:00"},
		{model.TimeEvening, "19:00"},
		{model.TimeAny, "19:00"},
	}
	for _, tt := range tests {
		if got := startTimeFor(tt.preferred); got != tt.want {
			t.Errorf("startTimeFor(%s) = %s, want %s", tt.preferred, got, tt.want)
		}
	}
}

func TestAddDays(t *testing.T) {
	if got := addDays("2026-08-30", 3); got != "2026-09-02" {
		t.Errorf("addDays crossed month wrong: %s", got)
	}
	if got := addDays("2026-08-30", 0); got != "2026-08-30" {
		t.Errorf("addDays(0) changed date: %s", got)
	}
}

// 容量1时同一单元先学习日后测验日交替，测验日之后才换单元
func TestBuildCourseScheduleCapacityOne(t *testing.T) {
	tasks := buildCourseScheduleTasks(scheduleInput{
		CourseID:       1,
		Units:          makeUnits(5),
		StartUnitOrder: 1,
		StartDate:      "2026-09-01",
		Days:           6,
		DailyMinutes:   30,
		PreferredTime:  model.TimeEvening,
	})

	if len(tasks) != 6 {
		t.Fatalf("expected 6 tasks (one per day), got %d", len(tasks))
	}

	wantTypes := []model.PlanTaskType{
		model.TaskStudy, model.TaskQuiz,
		model.TaskStudy, model.TaskQuiz,
		model.TaskStudy, model.TaskQuiz,
	}
	wantOrders := []int{1, 1, 2, 2, 3, 3}
	for i, task := range tasks {
		if task.Type != wantTypes[i] {
			t.Errorf("day %d: type = %s, want %s", i, task.Type, wantTypes[i])
		}
		if task.UnitOrder == nil || *task.UnitOrder != wantOrders[i] {
			t.Errorf("day %d: unitOrder = %v, want %d", i, task.UnitOrder, wantOrders[i])
		}
		if task.Date != addDays("2026-09-01", i) {
			t.Errorf("day %d: date = %s", i, task.Date)
		}
		if task.Status != model.TaskPending {
			t.Errorf("day %d: status = %s", i, task.Status)
		}
	}
}

// 容量2时同一天学习+测验，学习时长占65%，次日换下一单元
func TestBuildCourseScheduleCapacityTwo(t *testing.T) {
	tasks := buildCourseScheduleTasks(scheduleInput{
		CourseID:       1,
		Units:          makeUnits(10),
		StartUnitOrder: 1,
		StartDate:      "2026-09-01",
		Days:           3,
		DailyMinutes:   60,
		PreferredTime:  model.TimeMorning,
	})

	if len(tasks) != 6 {
		t.Fatalf("expected 6 tasks (two per day), got %d", len(tasks))
	}

	for day := 0; day < 3; day++ {
		study, quiz := tasks[day*2], tasks[day*2+1]
		if study.Type != model.TaskStudy || quiz.Type != model.TaskQuiz {
			t.Fatalf("day %d: types = %s,%s", day, study.Type, quiz.Type)
		}
		if study.Date != quiz.Date {
			t.Errorf("day %d: study and quiz on different dates", day)
		}
		if *study.UnitOrder != day+1 || *quiz.UnitOrder != day+1 {
			t.Errorf("day %d: unit orders = %d,%d, want %d", day, *study.UnitOrder, *quiz.UnitOrder, day+1)
		}
		if study.DurationMin != 39 {
			t.Errorf("day %d: study duration = %d, want 39", day, study.DurationMin)
		}
		if quiz.DurationMin != 21 {
			t.Errorf("day %d: quiz duration = %d, want 21", day, quiz.DurationMin)
		}
		if study.StartTime != "07:00" {
			t.Errorf("day %d: start time = %s", day, study.StartTime)
		}
	}
}

// 已推进的进度从当前单元排起，已通过的单元不再出现
func TestBuildCourseScheduleSkipsCompletedUnits(t *testing.T) {
	tasks := buildCourseScheduleTasks(scheduleInput{
		CourseID:       1,
		Units:          makeUnits(5),
		StartUnitOrder: 3,
		StartDate:      "2026-09-01",
		Days:           4,
		DailyMinutes:   30,
		PreferredTime:  model.TimeEvening,
	})

	for _, task := range tasks {
		if task.UnitOrder != nil && *task.UnitOrder < 3 {
			t.Errorf("scheduled unit %d below start order 3", *task.UnitOrder)
		}
	}
	if tasks[0].UnitOrder == nil || *tasks[0].UnitOrder != 3 {
		t.Errorf("first task should target unit 3")
	}
}

// 单元耗尽后剩余天数排复习任务，时长压到45分钟以内
func TestBuildCourseScheduleReviewTail(t *testing.T) {
	tasks := buildCourseScheduleTasks(scheduleInput{
		CourseID:       1,
		Units:          makeUnits(1),
		StartUnitOrder: 1,
		StartDate:      "2026-09-01",
		Days:           4,
		DailyMinutes:   60,
		PreferredTime:  model.TimeEvening,
	})

	// 第1天学完唯一的单元，其后全是复习
	var reviews int
	for _, task := range tasks {
		if task.Type == model.TaskReview {
			reviews++
			if task.DurationMin != 45 {
				t.Errorf("review duration = %d, want 45", task.DurationMin)
			}
			if task.UnitID != nil {
				t.Errorf("review task should not be bound to a unit")
			}
		}
	}
	if reviews != 3 {
		t.Errorf("expected 3 review days, got %d", reviews)
	}
}

// 10天30分钟、剩3个单元：6天学习/测验交替，之后4天复习收尾
func TestBuildCourseScheduleTenDayShape(t *testing.T) {
	tasks := buildCourseScheduleTasks(scheduleInput{
		CourseID:       1,
		Units:          makeUnits(3),
		StartUnitOrder: 1,
		StartDate:      "2026-09-01",
		Days:           10,
		DailyMinutes:   30,
		PreferredTime:  model.TimeEvening,
	})

	if len(tasks) != 10 {
		t.Fatalf("expected 10 tasks, got %d", len(tasks))
	}
	for i, task := range tasks {
		switch {
		case i < 6 && i%2 == 0:
			if task.Type != model.TaskStudy {
				t.Errorf("day %d: type = %s, want study", i, task.Type)
			}
		case i < 6:
			if task.Type != model.TaskQuiz {
				t.Errorf("day %d: type = %s, want quiz", i, task.Type)
			}
		default:
			if task.Type != model.TaskReview {
				t.Errorf("day %d: type = %s, want review", i, task.Type)
			}
		}
		if i < 6 {
			want := i/2 + 1
			if task.UnitOrder == nil || *task.UnitOrder != want {
				t.Errorf("day %d: unitOrder = %v, want %d", i, task.UnitOrder, want)
			}
		}
	}
}

func TestBuildGlobalTasks(t *testing.T) {
	tasks := buildGlobalTasks("2026-09-01", 7, 45, model.TimeAfternoon)

	if len(tasks) != 7 {
		t.Fatalf("expected 7 tasks, got %d", len(tasks))
	}
	for i, task := range tasks {
		if task.Type != model.TaskStudy {
			t.Errorf("task %d: type = %s", i, task.Type)
		}
		if task.CourseID != nil {
			t.Errorf("global task should not carry course binding")
		}
		if task.Date != addDays("2026-09-01", i) {
			t.Errorf("task %d: date = %s", i, task.Date)
		}
		if task.DurationMin != 45 || task.StartTime != "13:00" {
			t.Errorf("task %d: %d min at %s", i, task.DurationMin, task.StartTime)
		}
	}
}

func TestApplyMissedDetection(t *testing.T) {
	today := "2026-09-01"
	tasks := []model.LearningPlanTask{
		{Date: "2026-08-30", Status: model.TaskPending},
		{Date: "2026-08-31", Status: model.TaskCompleted},
		{Date: "2026-08-31", Status: model.TaskSkipped},
		{Date: today, Status: model.TaskPending},
		{Date: "2026-09-02", Status: model.TaskPending},
	}

	changed := applyMissedDetection(tasks, today)
	if len(changed) != 1 || changed[0] != 0 {
		t.Fatalf("changed = %v, want [0]", changed)
	}
	if tasks[0].Status != model.TaskMissed {
		t.Errorf("overdue pending task not marked missed")
	}
	if tasks[1].Status != model.TaskCompleted || tasks[2].Status != model.TaskSkipped {
		t.Errorf("completed/skipped tasks must not change")
	}
	if tasks[3].Status != model.TaskPending || tasks[4].Status != model.TaskPending {
		t.Errorf("today and future tasks must stay pending")
	}

	// 幂等：再跑一遍不应有任何变化
	if again := applyMissedDetection(tasks, today); len(again) != 0 {
		t.Errorf("second run changed %v, want none", again)
	}
}

func TestRebalanceMissedFirstFit(t *testing.T) {
	today := "2026-09-01"
	tasks := []model.LearningPlanTask{
		{Date: "2026-08-28", Status: model.TaskMissed, Title: "m1"},
		{Date: "2026-08-29", Status: model.TaskMissed, Title: "m2"},
		{Date: today, Status: model.TaskPending, Title: "p1"},
		{Date: "2026-09-02", Status: model.TaskPending, Title: "p2"},
	}

	moved := rebalanceMissed(tasks, 1, today)
	if len(moved) != 2 {
		t.Fatalf("moved %d tasks, want 2", len(moved))
	}

	// 今天和9/2都已满（容量1），missed 任务按顺序落到 9/3 和 9/4
	if tasks[0].Date != "2026-09-03" || tasks[0].Status != model.TaskPending {
		t.Errorf("m1 moved to %s (%s), want 2026-09-03 pending", tasks[0].Date, tasks[0].Status)
	}
	if tasks[1].Date != "2026-09-04" || tasks[1].Status != model.TaskPending {
		t.Errorf("m2 moved to %s (%s), want 2026-09-04 pending", tasks[1].Date, tasks[1].Status)
	}

	// 原有 pending 任务不动
	if tasks[2].Date != today || tasks[3].Date != "2026-09-02" {
		t.Errorf("existing pending tasks must not move")
	}
}

func TestRebalanceMissedRespectsCapacity(t *testing.T) {
	today := "2026-09-01"
	var tasks []model.LearningPlanTask
	for i := 0; i < 7; i++ {
		tasks = append(tasks, model.LearningPlanTask{Date: "2026-08-25", Status: model.TaskMissed})
	}

	rebalanceMissed(tasks, 2, today)

	counts := make(map[string]int)
	for _, task := range tasks {
		if task.Status != model.TaskPending {
			t.Fatalf("task left in status %s", task.Status)
		}
		if task.Date < today {
			t.Fatalf("task rescheduled into the past: %s", task.Date)
		}
		counts[task.Date]++
	}
	for date, n := range counts {
		if n > 2 {
			t.Errorf("date %s has %d tasks, capacity is 2", date, n)
		}
	}
}

// 任务不会丢失：重排前后任务总数和非 missed 任务状态保持不变
func TestRebalanceMissedNoTaskLoss(t *testing.T) {
	today := "2026-09-01"
	completedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	tasks := []model.LearningPlanTask{
		{Date: "2026-08-20", Status: model.TaskCompleted, CompletedAt: &completedAt},
		{Date: "2026-08-21", Status: model.TaskMissed},
		{Date: "2026-08-22", Status: model.TaskSkipped},
		{Date: "2026-08-23", Status: model.TaskMissed},
		{Date: "2026-09-05", Status: model.TaskPending},
	}

	before := len(tasks)
	rebalanceMissed(tasks, 2, today)

	if len(tasks) != before {
		t.Fatalf("task count changed: %d -> %d", before, len(tasks))
	}
	if tasks[0].Status != model.TaskCompleted || tasks[0].CompletedAt == nil {
		t.Errorf("completed task must keep its status and timestamp")
	}
	if tasks[2].Status != model.TaskSkipped {
		t.Errorf("skipped task must not change")
	}
	for _, task := range tasks {
		if task.Status == model.TaskMissed {
			t.Errorf("missed task left behind after rebalance")
		}
	}

	// 重排是幂等的：没有 missed 任务时再跑一遍什么都不动
	if again := rebalanceMissed(tasks, 2, today); len(again) != 0 {
		t.Errorf("second rebalance moved %d tasks, want 0", len(again))
	}
}

func TestComputeStats(t *testing.T) {
	today := "2026-09-01"
	tasks := []model.LearningPlanTask{
		{Date: today, Status: model.TaskPending},
		{Date: "2026-09-02", Status: model.TaskPending},
		{Date: "2026-08-30", Status: model.TaskCompleted},
		{Date: "2026-08-31", Status: model.TaskMissed},
	}

	stats := computeStats(tasks, today)
	if stats.Total != 4 || stats.Pending != 2 || stats.Completed != 1 || stats.Missed != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.TodayPending != 1 {
		t.Errorf("todayPending = %d, want 1", stats.TodayPending)
	}
	if stats.CompletedPct != 25 || stats.MissedPct != 25 {
		t.Errorf("pct = %d/%d, want 25/25", stats.CompletedPct, stats.MissedPct)
	}
}

func TestPickNextTask(t *testing.T) {
	today := "2026-09-01"
	tasks := []model.LearningPlanTask{
		{Date: "2026-08-30", Status: model.TaskPending, Title: "past"},
		{Date: "2026-09-02", Status: model.TaskCompleted, Title: "done"},
		{Date: "2026-09-03", Status: model.TaskPending, Title: "next"},
	}

	next := pickNextTask(tasks, today)
	if next == nil || next.Title != "next" {
		t.Fatalf("pickNextTask = %+v, want the 09-03 pending task", next)
	}

	if got := pickNextTask(nil, today); got != nil {
		t.Errorf("empty list should yield nil")
	}
}
