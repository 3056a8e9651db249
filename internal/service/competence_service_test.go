package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"learnly_backend/internal/model"
	"learnly_backend/internal/repository"
	"learnly_backend/internal/util"

	"gorm.io/gorm"
)

type competenceFixture struct {
	db        *gorm.DB
	svc       *CompetenceService
	generator *stubGenerator
}

func newCompetenceFixture(t *testing.T) *competenceFixture {
	t.Helper()
	db := newTestDB(t)
	generator := &stubGenerator{}
	svc := NewCompetenceService(
		repository.NewCompetenceRepository(db),
		repository.NewProfileRepository(db),
		generator,
	)
	return &competenceFixture{db: db, svc: svc, generator: generator}
}

func (f *competenceFixture) createQuestions(t *testing.T, subject string, difficulties []model.Difficulty) []model.CompetenceQuestion {
	t.Helper()
	questions := make([]model.CompetenceQuestion, 0, len(difficulties))
	for i, d := range difficulties {
		questions = append(questions, model.CompetenceQuestion{
			Subject:       subject,
			Topic:         "Basics",
			QuestionText:  fmt.Sprintf("Q%d", i+1),
			OptionA:       "right",
			OptionB:       "wrong",
			OptionC:       "wrong",
			OptionD:       "wrong",
			CorrectOption: "A",
			Difficulty:    d,
			IsActive:      true,
		})
	}
	if err := f.db.Create(&questions).Error; err != nil {
		t.Fatalf("create competence questions: %v", err)
	}
	return questions
}

// 难度加权：easy 1 分，medium 1.5 分，hard 2 分
func TestSubmitCompetenceWeightedScore(t *testing.T) {
	f := newCompetenceFixture(t)
	questions := f.createQuestions(t, "Math", []model.Difficulty{
		model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard,
	})

	// 答对 easy 和 hard（3 分），答错 medium，总分 4.5 → 67
	result, err := f.svc.Submit(1, "Math", []AnswerInput{
		{QuestionID: questions[0].ID, SelectedOption: "A"},
		{QuestionID: questions[1].ID, SelectedOption: "B"},
		{QuestionID: questions[2].ID, SelectedOption: "a"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.CompetenceScore != 67 {
		t.Errorf("score = %d, want 67", result.CompetenceScore)
	}
	if result.CompetenceLevel != "Intermediate" {
		t.Errorf("level = %s, want Intermediate", result.CompetenceLevel)
	}
	if result.ConfidenceScore < 0.66 || result.ConfidenceScore > 0.67 {
		t.Errorf("confidence = %f, want ~0.667", result.ConfidenceScore)
	}
}

// 同一 (user, subject) 重复提交覆盖旧记录，画像跟着最新分数走
func TestSubmitCompetenceUpsertsAndUpdatesProfile(t *testing.T) {
	f := newCompetenceFixture(t)
	questions := f.createQuestions(t, "Math", []model.Difficulty{
		model.DifficultyEasy, model.DifficultyEasy,
	})

	if _, err := f.svc.Submit(1, "Math", []AnswerInput{
		{QuestionID: questions[0].ID, SelectedOption: "A"},
		{QuestionID: questions[1].ID, SelectedOption: "A"},
	}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second, err := f.svc.Submit(1, "Math", []AnswerInput{
		{QuestionID: questions[0].ID, SelectedOption: "A"},
		{QuestionID: questions[1].ID, SelectedOption: "B"},
	})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.CompetenceScore != 50 {
		t.Errorf("second score = %d, want 50", second.CompetenceScore)
	}

	var count int64
	f.db.Model(&model.StudentCompetence{}).Where("user_id = ? AND subject = ?", 1, "Math").Count(&count)
	if count != 1 {
		t.Errorf("competence rows = %d, want 1 (upsert)", count)
	}

	record, err := repository.NewCompetenceRepository(f.db).FindStudentCompetence(1, "Math")
	if err != nil {
		t.Fatalf("find competence: %v", err)
	}
	if record.CompetenceScore != 50 {
		t.Errorf("stored score = %d, want 50", record.CompetenceScore)
	}

	profile, err := repository.NewProfileRepository(f.db).FindByUserID(1)
	if err != nil {
		t.Fatalf("find profile: %v", err)
	}
	if profile.LastCompetencyScore != 50 {
		t.Errorf("profile lastCompetencyScore = %d, want 50", profile.LastCompetencyScore)
	}
}

func TestSubmitCompetenceRejectsInvalidInput(t *testing.T) {
	f := newCompetenceFixture(t)

	if _, err := f.svc.Submit(1, "", []AnswerInput{{QuestionID: 1, SelectedOption: "A"}}); !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("empty subject: err = %v, want ErrInvalidInput", err)
	}
	if _, err := f.svc.Submit(1, "Math", nil); !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("no answers: err = %v, want ErrInvalidInput", err)
	}
	// 题目不存在或选项非法的作答全部被跳过
	if _, err := f.svc.Submit(1, "Math", []AnswerInput{
		{QuestionID: 9999, SelectedOption: "A"},
		{QuestionID: 1, SelectedOption: "X"},
	}); !errors.Is(err, util.ErrNoValidAnswers) {
		t.Errorf("invalid answers: err = %v, want ErrNoValidAnswers", err)
	}
}

func TestGetCompetenceTestFilters(t *testing.T) {
	f := newCompetenceFixture(t)
	f.createQuestions(t, "Math", []model.Difficulty{
		model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard,
	})
	f.createQuestions(t, "Physics", []model.Difficulty{model.DifficultyEasy})

	// 下线的题不抽
	inactive := f.createQuestions(t, "Math", []model.Difficulty{model.DifficultyEasy})
	f.db.Model(&inactive[0]).Update("is_active", false)

	questions, err := f.svc.GetTest("Math", "", "", 10)
	if err != nil {
		t.Fatalf("get test: %v", err)
	}
	if len(questions) != 3 {
		t.Errorf("got %d questions, want 3 active Math questions", len(questions))
	}

	hard, err := f.svc.GetTest("Math", "", "hard", 10)
	if err != nil {
		t.Fatalf("get hard: %v", err)
	}
	if len(hard) != 1 || hard[0].Difficulty != model.DifficultyHard {
		t.Errorf("hard filter returned %+v", hard)
	}

	if _, err := f.svc.GetTest("Math", "", "impossible", 5); !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("bad difficulty: err = %v, want ErrInvalidInput", err)
	}
}

func TestGenerateCompetenceQuestionsPersists(t *testing.T) {
	f := newCompetenceFixture(t)

	questions, err := f.svc.GenerateQuestions(context.Background(), "Math", "Fractions", model.DifficultyMedium, 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}
	for _, q := range questions {
		if q.Source != "AI" || !q.IsActive || q.Difficulty != model.DifficultyMedium {
			t.Errorf("question not normalized: %+v", q)
		}
	}

	var stored int64
	f.db.Model(&model.CompetenceQuestion{}).Count(&stored)
	if stored != 3 {
		t.Errorf("stored = %d, want 3", stored)
	}

	if _, err := f.svc.GenerateQuestions(context.Background(), "", "Fractions", model.DifficultyEasy, 3); !errors.Is(err, util.ErrInvalidInput) {
		t.Errorf("missing subject: err = %v, want ErrInvalidInput", err)
	}

	f.generator.failAll = true
	if _, err := f.svc.GenerateQuestions(context.Background(), "Math", "Decimals", model.DifficultyEasy, 2); !errors.Is(err, util.ErrContentGenerating) {
		t.Errorf("generator down: err = %v, want retryable ErrContentGenerating", err)
	}
	f.db.Model(&model.CompetenceQuestion{}).Count(&stored)
	if stored != 3 {
		t.Errorf("failed generation persisted questions: %d", stored)
	}
}

// 摸底分数缺失时，出题难度落到画像的最近能力分上
func TestNextUnitFallsBackToProfileCompetence(t *testing.T) {
	f := newProgressionFixture(t)
	course := f.createCourse(t, 120, 60)
	f.createUnits(t, course.ID, 4)

	competence := NewCompetenceService(
		repository.NewCompetenceRepository(f.db),
		repository.NewProfileRepository(f.db),
		f.generator,
	)
	cq := []model.CompetenceQuestion{
		{Subject: "Math", Topic: "Basics", QuestionText: "Q1", OptionA: "right", OptionB: "wrong", OptionC: "wrong", OptionD: "wrong", CorrectOption: "A", Difficulty: model.DifficultyHard, IsActive: true},
	}
	if err := f.db.Create(&cq).Error; err != nil {
		t.Fatalf("create competence question: %v", err)
	}
	if _, err := competence.Submit(1, "Math", []AnswerInput{{QuestionID: cq[0].ID, SelectedOption: "A"}}); err != nil {
		t.Fatalf("submit competence: %v", err)
	}

	// 摸底已标记完成但分数缺失的历史数据
	now := time.Now()
	enrollment := &model.CourseEnrollment{
		UserID:               1,
		CourseID:             course.ID,
		Status:               model.EnrollmentActive,
		CurrentUnitOrder:     1,
		RecommendedStyle:     model.StyleText,
		PlacementCompletedAt: &now,
	}
	if err := f.db.Create(enrollment).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}

	resp, err := f.svc.NextUnit(context.Background(), 1, course.ID)
	if err != nil {
		t.Fatalf("next unit: %v", err)
	}
	if resp.Unit == nil {
		t.Fatal("expected unit content")
	}

	// 画像能力分 100 → 难度选 hard
	if f.generator.lastQuestionSpec.DifficultyLevel != model.DifficultyHard {
		t.Errorf("quiz difficulty = %s, want hard from profile competence",
			f.generator.lastQuestionSpec.DifficultyLevel)
	}
	var hardCount int64
	f.db.Model(&model.CourseUnitQuizQuestion{}).Where("difficulty = ?", model.DifficultyHard).Count(&hardCount)
	if hardCount == 0 {
		t.Error("no hard quiz questions persisted")
	}
}
