package service

import (
	"context"
	"encoding/json"
	"fmt"
	"learnly_backend/internal/model"
	"learnly_backend/internal/repository"
	"learnly_backend/internal/util"
	"learnly_backend/pkg/logger"
	"learnly_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	placementQuestionCount = 5
	unitQuizQuestionCount  = 3
	contentCacheTTL        = 24 * time.Hour
)

// ProgressionService 课程推进引擎：选课、摸底门禁、单元定位、测验判分与推进
type ProgressionService struct {
	CourseRepo     *repository.CourseRepository
	UnitRepo       *repository.UnitRepository
	EnrollmentRepo *repository.EnrollmentRepository
	QuestionRepo   *repository.QuestionRepository
	PlacementRepo  *repository.PlacementRepository
	ProfileRepo    *repository.ProfileRepository
	PlanRepo       *repository.PlanRepository
	TaskRepo       *repository.TaskRepository
	Generator      ContentGenerator
	Redis          *redis.Client
}

func NewProgressionService(
	courseRepo *repository.CourseRepository,
	unitRepo *repository.UnitRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	questionRepo *repository.QuestionRepository,
	placementRepo *repository.PlacementRepository,
	profileRepo *repository.ProfileRepository,
	planRepo *repository.PlanRepository,
	taskRepo *repository.TaskRepository,
	generator ContentGenerator,
	rdb *redis.Client,
) *ProgressionService {
	return &ProgressionService{
		CourseRepo:     courseRepo,
		UnitRepo:       unitRepo,
		EnrollmentRepo: enrollmentRepo,
		QuestionRepo:   questionRepo,
		PlacementRepo:  placementRepo,
		ProfileRepo:    profileRepo,
		PlanRepo:       planRepo,
		TaskRepo:       taskRepo,
		Generator:      generator,
		Redis:          rdb,
	}
}

type CourseSummary struct {
	CourseID          uint   `json:"courseId"`
	Name              string `json:"name"`
	Subject           string `json:"subject"`
	Description       string `json:"description,omitempty"`
	DurationMinutes   int    `json:"durationMinutes"`
	MinPassPercentage int    `json:"minPassPercentage"`
}

func summarize(course *model.Course) CourseSummary {
	return CourseSummary{
		CourseID:          course.ID,
		Name:              course.Name,
		Subject:           course.Subject,
		Description:       course.Description,
		DurationMinutes:   course.DurationMinutes,
		MinPassPercentage: course.MinPassPercentage,
	}
}

// QuestionView 下发给学生的题目，不携带正确答案
type QuestionView struct {
	ID           uint   `json:"id"`
	QuestionText string `json:"questionText"`
	OptionA      string `json:"optionA"`
	OptionB      string `json:"optionB"`
	OptionC      string `json:"optionC"`
	OptionD      string `json:"optionD"`
}

type AnswerInput struct {
	QuestionID     uint   `json:"questionId" binding:"required"`
	SelectedOption string `json:"selectedOption" binding:"required"`
}

// Enroll 创建或返回已有的选课记录。beginner 直接跳过摸底测试
func (s *ProgressionService) Enroll(userID, courseID uint, beginner bool) (*model.CourseEnrollment, bool, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, false, util.ErrCourseNotFound
	}

	existing, err := s.EnrollmentRepo.FindByUserAndCourse(userID, course.ID)
	if err == nil {
		// 已选课的学生补交 beginner 声明时，同样视为免摸底
		if beginner && existing.PlacementCompletedAt == nil {
			zero := 0
			now := time.Now()
			existing.PlacementScore = &zero
			existing.PlacementCompletedAt = &now
			if err := s.EnrollmentRepo.Save(existing); err != nil {
				return nil, false, err
			}
		}
		return existing, true, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	style := model.StyleText
	if profile, perr := s.ProfileRepo.FindByUserID(userID); perr == nil && profile.LearningStyle != "" {
		style = profile.LearningStyle
	}

	enrollment := &model.CourseEnrollment{
		UserID:           userID,
		CourseID:         course.ID,
		Status:           model.EnrollmentActive,
		CurrentUnitOrder: 1,
		RecommendedStyle: style,
	}
	if beginner {
		zero := 0
		now := time.Now()
		enrollment.PlacementScore = &zero
		enrollment.PlacementCompletedAt = &now
	}

	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		return nil, false, err
	}
	return enrollment, false, nil
}

type OutlineUnit struct {
	ID                  uint   `json:"id"`
	Title               string `json:"title"`
	Order               int    `json:"order"`
	Status              string `json:"status"` // locked/current/completed
	DurationMinEstimate int    `json:"durationMinEstimate"`
}

type OutlineResponse struct {
	Course     CourseSummary           `json:"course"`
	Enrollment *model.CourseEnrollment `json:"enrollment"`
	Units      []OutlineUnit           `json:"units"`
}

// Outline 课程大纲：每个单元标注 locked/current/completed
func (s *ProgressionService) Outline(userID, courseID uint) (*OutlineResponse, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}

	var enrollment *model.CourseEnrollment
	if e, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID); err == nil {
		enrollment = e
	}

	units, err := s.UnitRepo.FindByCourse(courseID)
	if err != nil {
		return nil, err
	}

	currentOrder := 1
	completed := false
	if enrollment != nil {
		currentOrder = enrollment.CurrentUnitOrder
		completed = enrollment.Status == model.EnrollmentCompleted
	}

	perUnitEstimate := 30
	if len(units) > 0 && course.DurationMinutes > 0 {
		perUnitEstimate = util.ClampInt(course.DurationMinutes/len(units), 10, 90)
	}

	outline := make([]OutlineUnit, 0, len(units))
	for _, u := range units {
		status := "locked"
		switch {
		case completed || u.Order < currentOrder:
			status = "completed"
		case u.Order == currentOrder:
			status = "current"
		}
		outline = append(outline, OutlineUnit{
			ID:                  u.ID,
			Title:               u.Title,
			Order:               u.Order,
			Status:              status,
			DurationMinEstimate: perUnitEstimate,
		})
	}

	return &OutlineResponse{Course: summarize(course), Enrollment: enrollment, Units: outline}, nil
}

type NextUnitResponse struct {
	PlacementRequired  bool           `json:"placementRequired,omitempty"`
	PlacementQuestions []QuestionView `json:"placementQuestions,omitempty"`

	Completed bool `json:"completed,omitempty"`

	Course           CourseSummary       `json:"course"`
	Unit             *OutlineUnit        `json:"unit,omitempty"`
	ExplanationText  string              `json:"explanationText,omitempty"`
	RecommendedStyle model.LearningStyle `json:"recommendedStyle,omitempty"`
	QuizQuestions    []QuestionView      `json:"quizQuestions,omitempty"`
	Flashcards       []Flashcard         `json:"flashcards,omitempty"`
}

// NextUnit 门禁顺序：未选课报错 → 摸底未完成先考摸底 → 定位当前单元
// （缺口先补生成再重查一次）→ 超过最大单元号则结课 → 其余情况视为内容生成中
func (s *ProgressionService) NextUnit(ctx context.Context, userID, courseID uint) (*NextUnitResponse, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, util.ErrNotEnrolled
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}

	if enrollment.PlacementCompletedAt == nil {
		questions, err := s.ensurePlacementQuestions(ctx, course)
		if err != nil {
			return nil, err
		}
		return &NextUnitResponse{
			PlacementRequired:  true,
			Course:             summarize(course),
			PlacementQuestions: placementViews(questions),
		}, nil
	}

	profile, _ := s.ProfileRepo.FindByUserID(userID)
	score := competenceScore(enrollment, profile)

	unit, err := s.UnitRepo.FindByCourseAndOrder(courseID, enrollment.CurrentUnitOrder)
	if err == gorm.ErrRecordNotFound {
		// 单元缺口，先尝试补生成再重查一次
		if genErr := s.ensureCourseUnits(ctx, course, score); genErr != nil {
			logger.Log.Warn("unit generation during next-unit lookup failed",
				zap.Uint("courseId", courseID), zap.Error(genErr))
		}
		unit, err = s.UnitRepo.FindByCourseAndOrder(courseID, enrollment.CurrentUnitOrder)
	}

	if err == gorm.ErrRecordNotFound {
		maxOrder, merr := s.UnitRepo.MaxOrder(courseID)
		if merr != nil {
			return nil, merr
		}
		if maxOrder > 0 && enrollment.CurrentUnitOrder > maxOrder {
			enrollment.Status = model.EnrollmentCompleted
			if err := s.EnrollmentRepo.Save(enrollment); err != nil {
				return nil, err
			}
			return &NextUnitResponse{Completed: true, Course: summarize(course)}, nil
		}
		return nil, util.ErrContentGenerating
	}
	if err != nil {
		return nil, err
	}

	style := enrollment.RecommendedStyle
	if style == "" && profile != nil {
		style = profile.LearningStyle
	}

	explanation, err := s.unitExplanation(ctx, ExplanationSpec{
		Subject:         course.Subject,
		UnitTitle:       unit.Title,
		BaseContent:     unit.BaseContent,
		CompetenceScore: score,
		LastQuizScore:   enrollment.LastQuizScore,
		LearningStyle:   style,
	}, unit.ID)
	if err != nil {
		return nil, err
	}

	if model.ValidLearningStyle(explanation.RecommendedStyle) {
		enrollment.RecommendedStyle = model.LearningStyle(explanation.RecommendedStyle)
		if err := s.EnrollmentRepo.Save(enrollment); err != nil {
			return nil, err
		}
	}

	difficulty := chooseDifficulty(score)
	quizQuestions, err := s.ensureUnitQuestions(ctx, course, unit, difficulty)
	if err != nil {
		return nil, err
	}

	flashcards, err := s.unitFlashcards(ctx, course.Subject, unit, score)
	if err != nil {
		return nil, err
	}

	return &NextUnitResponse{
		Course:           summarize(course),
		Unit:             &OutlineUnit{ID: unit.ID, Title: unit.Title, Order: unit.Order},
		ExplanationText:  explanation.ExplanationText,
		RecommendedStyle: enrollment.RecommendedStyle,
		QuizQuestions:    quizViews(quizQuestions),
		Flashcards:       flashcards,
	}, nil
}

type QuizSubmitResult struct {
	Score             int                 `json:"score"`
	Passed            bool                `json:"passed"`
	MinPassPercentage int                 `json:"minPassPercentage"`
	CurrentUnitOrder  int                 `json:"currentUnitOrder"`
	RecommendedStyle  model.LearningStyle `json:"recommendedStyle"`
}

// SubmitUnitQuiz 判分并推进进度。通过且提交的正是当前单元时 currentUnitOrder 加一；
// 通过但不在当前单元是记录在案的空操作（只记成绩不推进）；未通过则推荐练习型风格。
// 通过时顺带完成计划里对应的 quiz 任务
func (s *ProgressionService) SubmitUnitQuiz(userID, courseID, unitID uint, answers []AnswerInput) (*QuizSubmitResult, error) {
	if len(answers) == 0 {
		return nil, util.ErrNoValidAnswers
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}

	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, util.ErrNotEnrolled
	}

	unit, err := s.UnitRepo.FindByID(unitID)
	if err != nil || unit.CourseID != courseID {
		return nil, util.ErrUnitNotFound
	}

	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		if a.QuestionID > 0 {
			ids = append(ids, a.QuestionID)
		}
	}

	questions, err := s.QuestionRepo.FindByIDsAndUnit(ids, unitID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.CourseUnitQuizQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	correct := 0
	attempts := make([]model.CourseUnitQuizAttempt, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		selected := normalizeOption(a.SelectedOption)
		if selected == "" {
			continue
		}
		isCorrect := selected == q.CorrectOption
		if isCorrect {
			correct++
		}
		attempts = append(attempts, model.CourseUnitQuizAttempt{
			EnrollmentID:   enrollment.ID,
			QuestionID:     q.ID,
			SelectedOption: selected,
			IsCorrect:      isCorrect,
		})
	}

	if len(attempts) == 0 {
		return nil, util.ErrNoValidAnswers
	}

	if err := s.QuestionRepo.CreateAttempts(attempts); err != nil {
		return nil, err
	}

	score := quizScore(correct, len(attempts))
	enrollment.LastQuizScore = score

	passed := score >= course.MinPassPercentage
	if passed {
		if unit.Order == enrollment.CurrentUnitOrder {
			maxOrder, merr := s.UnitRepo.MaxOrder(courseID)
			if merr != nil {
				return nil, merr
			}
			advancePastUnit(enrollment, unit.Order, maxOrder)
		}
	} else {
		enrollment.RecommendedStyle = model.StylePractice
	}

	if err := s.EnrollmentRepo.Save(enrollment); err != nil {
		return nil, err
	}

	if passed {
		s.completeMatchingQuizTask(userID, courseID, unitID)
	}

	return &QuizSubmitResult{
		Score:             score,
		Passed:            passed,
		MinPassPercentage: course.MinPassPercentage,
		CurrentUnitOrder:  enrollment.CurrentUnitOrder,
		RecommendedStyle:  enrollment.RecommendedStyle,
	}, nil
}

// advancePastUnit 共享的幂等推进：进度未越过该单元时推到其后一个单元，
// 越过最大单元号即结课。两条入口（测验提交、计划任务完成）都走这里，
// 重复投递不会推进两次
func advancePastUnit(enrollment *model.CourseEnrollment, unitOrder, maxOrder int) bool {
	if enrollment.CurrentUnitOrder > unitOrder {
		return false
	}
	enrollment.CurrentUnitOrder = unitOrder + 1
	if maxOrder > 0 && enrollment.CurrentUnitOrder > maxOrder {
		enrollment.Status = model.EnrollmentCompleted
	}
	return true
}

// SyncQuizTaskCompletion 计划任务入口的进度同步，由 PlanService 在完成 quiz 任务时调用
func (s *ProgressionService) SyncQuizTaskCompletion(userID, courseID uint, unitOrder int) error {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	maxOrder, err := s.UnitRepo.MaxOrder(courseID)
	if err != nil {
		return err
	}

	if advancePastUnit(enrollment, unitOrder, maxOrder) {
		return s.EnrollmentRepo.Save(enrollment)
	}
	return nil
}

// completeMatchingQuizTask 测验通过后的跨组件同步，失败只记日志不影响判分结果
func (s *ProgressionService) completeMatchingQuizTask(userID, courseID, unitID uint) {
	plan, err := s.PlanRepo.FindActive(userID, &courseID)
	if err != nil {
		return
	}
	if err := s.TaskRepo.CompletePendingQuizTask(plan.ID, courseID, unitID); err != nil {
		logger.Log.Warn("failed to sync quiz task completion",
			zap.Uint("planId", plan.ID), zap.Uint("unitId", unitID), zap.Error(err))
	}
}

type PlacementTestResponse struct {
	Completed            bool           `json:"completed"`
	PlacementScore       *int           `json:"placementScore,omitempty"`
	PlacementCompletedAt *time.Time     `json:"placementCompletedAt,omitempty"`
	Questions            []QuestionView `json:"questions,omitempty"`
}

// PlacementTest 获取摸底测试；已完成时返回缓存的分数
func (s *ProgressionService) PlacementTest(ctx context.Context, userID, courseID uint) (*PlacementTestResponse, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}

	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, util.ErrNotEnrolled
	}

	if enrollment.PlacementCompletedAt != nil {
		return &PlacementTestResponse{
			Completed:            true,
			PlacementScore:       enrollment.PlacementScore,
			PlacementCompletedAt: enrollment.PlacementCompletedAt,
		}, nil
	}

	questions, err := s.ensurePlacementQuestions(ctx, course)
	if err != nil {
		return nil, err
	}

	return &PlacementTestResponse{Completed: false, Questions: placementViews(questions)}, nil
}

type PlacementSubmitResult struct {
	AlreadyCompleted bool                `json:"alreadyCompleted,omitempty"`
	Score            int                 `json:"score"`
	RecommendedStyle model.LearningStyle `json:"recommendedStyle,omitempty"`
}

// SubmitPlacement 摸底测试只判分一次：重复提交返回首次成绩，不新建提交记录。
// 判分落库之后的单元补生成失败只降级为"稍后重试"，不回滚摸底结果
func (s *ProgressionService) SubmitPlacement(ctx context.Context, userID, courseID uint, answers []AnswerInput) (*PlacementSubmitResult, error) {
	if len(answers) == 0 {
		return nil, util.ErrNoValidAnswers
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}

	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, util.ErrNotEnrolled
	}

	if enrollment.PlacementCompletedAt != nil {
		score := 0
		if enrollment.PlacementScore != nil {
			score = *enrollment.PlacementScore
		}
		return &PlacementSubmitResult{AlreadyCompleted: true, Score: score}, nil
	}

	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		if a.QuestionID > 0 {
			ids = append(ids, a.QuestionID)
		}
	}

	questions, err := s.PlacementRepo.FindQuestionsByIDsAndCourse(ids, courseID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.CoursePlacementQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	correct := 0
	placementAnswers := make([]model.CoursePlacementAnswer, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		selected := normalizeOption(a.SelectedOption)
		if selected == "" {
			continue
		}
		isCorrect := selected == q.CorrectOption
		if isCorrect {
			correct++
		}
		placementAnswers = append(placementAnswers, model.CoursePlacementAnswer{
			QuestionID:     q.ID,
			SelectedOption: selected,
			IsCorrect:      isCorrect,
		})
	}

	if len(placementAnswers) == 0 {
		return nil, util.ErrNoValidAnswers
	}

	score := quizScore(correct, len(placementAnswers))
	now := time.Now()

	attempt := &model.CoursePlacementAttempt{
		EnrollmentID: enrollment.ID,
		CourseID:     courseID,
		Score:        score,
		CompletedAt:  now,
	}
	if err := s.PlacementRepo.CreateAttempt(attempt, placementAnswers); err != nil {
		return nil, err
	}

	profile, _ := s.ProfileRepo.FindByUserID(userID)
	profileStyle := model.StyleText
	if profile != nil && profile.LearningStyle != "" {
		profileStyle = profile.LearningStyle
	}

	enrollment.PlacementScore = &score
	enrollment.PlacementCompletedAt = &now
	enrollment.RecommendedStyle = scoreToRecommendedStyle(score, profileStyle)
	if err := s.EnrollmentRepo.Save(enrollment); err != nil {
		return nil, err
	}

	// 摸底已落库，补生成失败不能让提交失败
	if err := s.ensureCourseUnits(ctx, course, score); err != nil {
		logger.Log.Warn("unit top-up after placement failed",
			zap.Uint("courseId", courseID), zap.Error(err))
	}

	return &PlacementSubmitResult{Score: score, RecommendedStyle: enrollment.RecommendedStyle}, nil
}

type EnrollmentItem struct {
	EnrollmentID     uint                   `json:"enrollmentId"`
	Status           model.EnrollmentStatus `json:"status"`
	CurrentUnitOrder int                    `json:"currentUnitOrder"`
	LastQuizScore    int                    `json:"lastQuizScore"`
	RecommendedStyle model.LearningStyle    `json:"recommendedStyle"`
	UpdatedAt        time.Time              `json:"updatedAt"`
	Course           *CourseSummary         `json:"course,omitempty"`
	User             *model.User            `json:"user,omitempty"`
	Profile          *model.StudentProfile  `json:"profile,omitempty"`
}

// MyEnrollments 学生自己的全部选课进度
func (s *ProgressionService) MyEnrollments(userID uint) ([]EnrollmentItem, error) {
	enrollments, err := s.EnrollmentRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	items := make([]EnrollmentItem, 0, len(enrollments))
	for _, e := range enrollments {
		item := EnrollmentItem{
			EnrollmentID:     e.ID,
			Status:           e.Status,
			CurrentUnitOrder: e.CurrentUnitOrder,
			LastQuizScore:    e.LastQuizScore,
			RecommendedStyle: e.RecommendedStyle,
			UpdatedAt:        e.UpdatedAt,
		}
		if course, err := s.CourseRepo.FindByID(e.CourseID); err == nil {
			summary := summarize(course)
			item.Course = &summary
		}
		items = append(items, item)
	}
	return items, nil
}

type CourseEnrollmentsResponse struct {
	Course   CourseSummary    `json:"course"`
	Students []EnrollmentItem `json:"students"`
}

// CourseEnrollments 管理端：课程的全部选课学生及画像
func (s *ProgressionService) CourseEnrollments(courseID uint, userRepo *repository.UserRepository) (*CourseEnrollmentsResponse, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}

	enrollments, err := s.EnrollmentRepo.FindByCourse(courseID)
	if err != nil {
		return nil, err
	}

	students := make([]EnrollmentItem, 0, len(enrollments))
	for _, e := range enrollments {
		item := EnrollmentItem{
			EnrollmentID:     e.ID,
			Status:           e.Status,
			CurrentUnitOrder: e.CurrentUnitOrder,
			LastQuizScore:    e.LastQuizScore,
			RecommendedStyle: e.RecommendedStyle,
			UpdatedAt:        e.UpdatedAt,
		}
		if user, err := userRepo.FindByID(e.UserID); err == nil {
			item.User = user
		}
		if profile, err := s.ProfileRepo.FindByUserID(e.UserID); err == nil {
			item.Profile = profile
		}
		students = append(students, item)
	}

	return &CourseEnrollmentsResponse{Course: summarize(course), Students: students}, nil
}

// ensureCourseUnits 按课程目标单元数补齐缺口。只生成差额，目标已满足时是空操作
func (s *ProgressionService) ensureCourseUnits(ctx context.Context, course *model.Course, competence int) error {
	existing, err := s.UnitRepo.FindByCourse(course.ID)
	if err != nil {
		return err
	}

	target := desiredUnitCount(course.DurationMinutes)
	if len(existing) >= target {
		return nil
	}

	titles := make([]string, 0, len(existing))
	for _, u := range existing {
		titles = append(titles, u.Title)
	}

	generated, err := s.Generator.GenerateUnits(ctx, UnitSpec{
		Subject:            course.Subject,
		CourseName:         course.Name,
		CourseDescription:  course.Description,
		ExistingUnitTitles: titles,
		CompetenceScore:    competence,
		Count:              target - len(existing),
	})
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("units").Inc()
		return err
	}
	if len(generated) == 0 {
		return nil
	}

	startOrder := len(existing) + 1
	units := make([]model.CourseUnit, 0, len(generated))
	for i, g := range generated {
		units = append(units, model.CourseUnit{
			CourseID:    course.ID,
			Order:       startOrder + i,
			Title:       g.Title,
			BaseContent: g.BaseContent,
		})
	}
	return s.UnitRepo.BulkCreate(units)
}

// ensurePlacementQuestions 摸底题不足5道时重新生成混合难度题集（2易/2中/1难）
func (s *ProgressionService) ensurePlacementQuestions(ctx context.Context, course *model.Course) ([]model.CoursePlacementQuestion, error) {
	existing, err := s.PlacementRepo.FindQuestionsByCourse(course.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= placementQuestionCount {
		return existing, nil
	}

	topic := course.Name + " placement test"
	var generated []GeneratedQuestion
	for _, batch := range []struct {
		difficulty model.Difficulty
		count      int
	}{
		{model.DifficultyEasy, 2},
		{model.DifficultyMedium, 2},
		{model.DifficultyHard, 1},
	} {
		qs, err := s.Generator.GenerateQuestions(ctx, QuestionSpec{
			Subject:         course.Subject,
			Topic:           topic,
			DifficultyLevel: batch.difficulty,
			Count:           batch.count,
		})
		if err != nil {
			monitoring.GenerationFailures.WithLabelValues("placement").Inc()
			return nil, err
		}
		generated = append(generated, qs...)
	}

	questions := make([]model.CoursePlacementQuestion, 0, len(generated))
	for i, q := range generated {
		difficulty := model.DifficultyHard
		if i < 2 {
			difficulty = model.DifficultyEasy
		} else if i < 4 {
			difficulty = model.DifficultyMedium
		}
		questions = append(questions, model.CoursePlacementQuestion{
			CourseID:      course.ID,
			QuestionText:  q.QuestionText,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
			Difficulty:    difficulty,
		})
	}

	if err := s.PlacementRepo.ReplaceQuestions(course.ID, questions); err != nil {
		return nil, err
	}

	return s.PlacementRepo.FindQuestionsByCourse(course.ID)
}

// ensureUnitQuestions 该难度下没有题库时现场生成3道并入库
func (s *ProgressionService) ensureUnitQuestions(ctx context.Context, course *model.Course, unit *model.CourseUnit, difficulty model.Difficulty) ([]model.CourseUnitQuizQuestion, error) {
	questions, err := s.QuestionRepo.FindByUnitAndDifficulty(unit.ID, difficulty)
	if err != nil {
		return nil, err
	}
	if len(questions) > 0 {
		return questions, nil
	}

	generated, err := s.Generator.GenerateQuestions(ctx, QuestionSpec{
		Subject:         course.Subject,
		Topic:           unit.Title,
		DifficultyLevel: difficulty,
		Count:           unitQuizQuestionCount,
	})
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("quiz").Inc()
		return nil, err
	}

	toCreate := make([]model.CourseUnitQuizQuestion, 0, len(generated))
	for _, q := range generated {
		toCreate = append(toCreate, model.CourseUnitQuizQuestion{
			UnitID:        unit.ID,
			QuestionText:  q.QuestionText,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
			Difficulty:    difficulty,
		})
	}
	if err := s.QuestionRepo.BulkCreate(toCreate); err != nil {
		return nil, err
	}

	return s.QuestionRepo.FindByUnitAndDifficulty(unit.ID, difficulty)
}

// unitExplanation 讲解文本带Redis缓存，同一单元同一水平一天内不重复生成
func (s *ProgressionService) unitExplanation(ctx context.Context, spec ExplanationSpec, unitID uint) (*ExplanationResult, error) {
	cacheKey := fmt.Sprintf("unit_explanation:%d:%s:%s", unitID, scoreToLevel(spec.CompetenceScore), spec.LearningStyle)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var result ExplanationResult
			if json.Unmarshal([]byte(cached), &result) == nil {
				return &result, nil
			}
		}
	}

	result, err := s.Generator.GenerateUnitExplanation(ctx, spec)
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("explanation").Inc()
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(result); err == nil {
			s.Redis.Set(ctx, cacheKey, data, contentCacheTTL)
		}
	}

	return result, nil
}

// unitFlashcards 闪卡同样走缓存
func (s *ProgressionService) unitFlashcards(ctx context.Context, subject string, unit *model.CourseUnit, competence int) ([]Flashcard, error) {
	cacheKey := fmt.Sprintf("unit_flashcards:%d:%s", unit.ID, scoreToLevel(competence))

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var cards []Flashcard
			if json.Unmarshal([]byte(cached), &cards) == nil {
				return cards, nil
			}
		}
	}

	cards, err := s.Generator.GenerateFlashcards(ctx, subject, unit.Title, competence)
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("flashcards").Inc()
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(cards); err == nil {
			s.Redis.Set(ctx, cacheKey, data, contentCacheTTL)
		}
	}

	return cards, nil
}

// normalizeOption 选项统一大写，只接受 A-D
func normalizeOption(raw string) string {
	switch raw {
	case "a", "A":
		return "A"
	case "b", "B":
		return "B"
	case "c", "C":
		return "C"
	case "d", "D":
		return "D"
	}
	return ""
}

func quizViews(questions []model.CourseUnitQuizQuestion) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, QuestionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
			OptionC:      q.OptionC,
			OptionD:      q.OptionD,
		})
	}
	return views
}

func placementViews(questions []model.CoursePlacementQuestion) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, QuestionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
			OptionC:      q.OptionC,
			OptionD:      q.OptionD,
		})
	}
	return views
}
