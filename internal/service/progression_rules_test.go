package service

import (
	"learnly_backend/internal/model"
	"testing"
)

func TestChooseDifficulty(t *testing.T) {
	tests := []struct {
		score int
		want  model.Difficulty
	}{
		{0, model.DifficultyEasy},
		{39, model.DifficultyEasy},
		{40, model.DifficultyMedium},
		{69, model.DifficultyMedium},
		{70, model.DifficultyHard},
		{100, model.DifficultyHard},
	}
	for _, tt := range tests {
		if got := chooseDifficulty(tt.score); got != tt.want {
			t.Errorf("chooseDifficulty(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestChooseStyle(t *testing.T) {
	tests := []struct {
		name         string
		profileStyle model.LearningStyle
		lastScore    int
		want         model.LearningStyle
	}{
		{"低分强制练习型", model.StyleVisual, 49, model.StylePractice},
		{"中分文本型", model.StyleVisual, 74, model.StyleText},
		{"高分沿用画像", model.StyleVisual, 75, model.StyleVisual},
		{"高分无画像回退文本", "", 90, model.StyleText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chooseStyle(tt.profileStyle, tt.lastScore); got != tt.want {
				t.Errorf("chooseStyle(%s, %d) = %s, want %s", tt.profileStyle, tt.lastScore, got, tt.want)
			}
		})
	}
}

func TestScoreToRecommendedStyle(t *testing.T) {
	if got := scoreToRecommendedStyle(39, model.StyleVisual); got != model.StylePractice {
		t.Errorf("low placement score must force Practice, got %s", got)
	}
	if got := scoreToRecommendedStyle(40, model.StyleVisual); got != model.StyleVisual {
		t.Errorf("decent score should keep profile style, got %s", got)
	}
	if got := scoreToRecommendedStyle(80, ""); got != model.StyleText {
		t.Errorf("missing profile style should fall back to Text, got %s", got)
	}
}

func TestScoreToLevel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "Beginner"},
		{39, "Beginner"},
		{40, "Intermediate"},
		{70, "Advanced"},
	}
	for _, tt := range tests {
		if got := scoreToLevel(tt.score); got != tt.want {
			t.Errorf("scoreToLevel(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestDesiredUnitCount(t *testing.T) {
	tests := []struct {
		minutes int
		want    int
	}{
		{0, 6},     // 未设置时长
		{30, 4},    // 下限
		{180, 6},   // 180/30
		{200, 7},   // 四舍五入
		{1000, 12}, // 上限
	}
	for _, tt := range tests {
		if got := desiredUnitCount(tt.minutes); got != tt.want {
			t.Errorf("desiredUnitCount(%d) = %d, want %d", tt.minutes, got, tt.want)
		}
	}
}

func TestQuizScore(t *testing.T) {
	tests := []struct {
		correct, answered, want int
	}{
		{0, 5, 0},
		{3, 5, 60},
		{2, 3, 67},
		{5, 5, 100},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := quizScore(tt.correct, tt.answered); got != tt.want {
			t.Errorf("quizScore(%d, %d) = %d, want %d", tt.correct, tt.answered, got, tt.want)
		}
	}
}

func TestCompetenceScoreFallbackChain(t *testing.T) {
	placement := 85
	enrollment := &model.CourseEnrollment{PlacementScore: &placement}
	profile := &model.StudentProfile{LastCompetencyScore: 55}

	if got := competenceScore(enrollment, profile); got != 85 {
		t.Errorf("placement score should win, got %d", got)
	}
	if got := competenceScore(&model.CourseEnrollment{}, profile); got != 55 {
		t.Errorf("profile score should be the fallback, got %d", got)
	}
	if got := competenceScore(nil, nil); got != 0 {
		t.Errorf("no data should yield 0, got %d", got)
	}
}

func TestAdvancePastUnit(t *testing.T) {
	e := &model.CourseEnrollment{CurrentUnitOrder: 2, Status: model.EnrollmentActive}

	if !advancePastUnit(e, 2, 5) {
		t.Fatal("advance at current unit must succeed")
	}
	if e.CurrentUnitOrder != 3 {
		t.Errorf("currentUnitOrder = %d, want 3", e.CurrentUnitOrder)
	}

	// 幂等：同一单元重复投递不再推进
	if advancePastUnit(e, 2, 5) {
		t.Error("repeated advance for the same unit must be a no-op")
	}
	if e.CurrentUnitOrder != 3 {
		t.Errorf("currentUnitOrder changed on repeat: %d", e.CurrentUnitOrder)
	}

	// 越过最大单元号即结课
	e.CurrentUnitOrder = 5
	if !advancePastUnit(e, 5, 5) {
		t.Fatal("advance past last unit must succeed")
	}
	if e.Status != model.EnrollmentCompleted {
		t.Errorf("status = %s, want completed", e.Status)
	}
	if e.CurrentUnitOrder != 6 {
		t.Errorf("currentUnitOrder = %d, want 6", e.CurrentUnitOrder)
	}
}
