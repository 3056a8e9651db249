package service

import (
	"context"
	"math"

	"learnly_backend/internal/model"
	"learnly_backend/internal/repository"
	"learnly_backend/internal/util"
	"learnly_backend/pkg/logger"
	"learnly_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// competenceWeights 难题答对占更高权重
var competenceWeights = map[model.Difficulty]float64{
	model.DifficultyEasy:   1,
	model.DifficultyMedium: 1.5,
	model.DifficultyHard:   2,
}

// CompetenceService 学科能力测试：按难度加权判分，结果写入
// (user, subject) 的能力档案和学生画像，进度引擎的能力分数回退链从画像取值
type CompetenceService struct {
	Repo        *repository.CompetenceRepository
	ProfileRepo *repository.ProfileRepository
	Generator   ContentGenerator
}

func NewCompetenceService(
	repo *repository.CompetenceRepository,
	profileRepo *repository.ProfileRepository,
	generator ContentGenerator,
) *CompetenceService {
	return &CompetenceService{
		Repo:        repo,
		ProfileRepo: profileRepo,
		Generator:   generator,
	}
}

type CompetenceQuestionView struct {
	ID           uint             `json:"id"`
	QuestionText string           `json:"questionText"`
	OptionA      string           `json:"optionA"`
	OptionB      string           `json:"optionB"`
	OptionC      string           `json:"optionC"`
	OptionD      string           `json:"optionD"`
	Difficulty   model.Difficulty `json:"difficulty"`
}

// GetTest 抽一组能力测试题，不下发正确答案
func (s *CompetenceService) GetTest(subject, topic, difficulty string, count int) ([]CompetenceQuestionView, error) {
	if difficulty != "" && !validDifficulty(difficulty) {
		return nil, util.ErrInvalidInput
	}
	if count <= 0 {
		count = 5
	}
	count = util.ClampInt(count, 1, 20)

	questions, err := s.Repo.FindActiveQuestions(subject, topic, model.Difficulty(difficulty), count)
	if err != nil {
		return nil, err
	}

	views := make([]CompetenceQuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, CompetenceQuestionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
			OptionC:      q.OptionC,
			OptionD:      q.OptionD,
			Difficulty:   q.Difficulty,
		})
	}
	return views, nil
}

type CompetenceResult struct {
	Subject         string  `json:"subject"`
	CompetenceScore int     `json:"competenceScore"`
	CompetenceLevel string  `json:"competenceLevel"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

// Submit 加权判分：easy/medium/hard 分别计 1/1.5/2 分。
// 结果覆盖写入 (user, subject) 的能力档案，并同步到画像的最近能力分
func (s *CompetenceService) Submit(userID uint, subject string, answers []AnswerInput) (*CompetenceResult, error) {
	if subject == "" || len(answers) == 0 {
		return nil, util.ErrInvalidInput
	}

	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	questions, err := s.Repo.FindQuestionsByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.CompetenceQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var earned, total float64
	for _, a := range answers {
		question, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		selected := normalizeOption(a.SelectedOption)
		if selected == "" {
			continue
		}

		weight := competenceWeights[question.Difficulty]
		if weight == 0 {
			weight = 1
		}
		total += weight
		if selected == question.CorrectOption {
			earned += weight
		}
	}

	if total == 0 {
		return nil, util.ErrNoValidAnswers
	}

	score := int(math.Round(earned / total * 100))
	level := scoreToLevel(score)
	confidence := earned / total

	if err := s.Repo.UpsertStudentCompetence(&model.StudentCompetence{
		UserID:          userID,
		Subject:         subject,
		CompetenceScore: score,
		CompetenceLevel: level,
		ConfidenceScore: confidence,
	}); err != nil {
		return nil, err
	}

	profile, err := s.ProfileRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}
	profile.LastCompetencyScore = score
	if err := s.ProfileRepo.Save(profile); err != nil {
		return nil, err
	}

	logger.Log.Info("competence test evaluated",
		zap.Uint("userId", userID),
		zap.String("subject", subject),
		zap.Int("score", score),
		zap.String("level", level))

	return &CompetenceResult{
		Subject:         subject,
		CompetenceScore: score,
		CompetenceLevel: level,
		ConfidenceScore: confidence,
	}, nil
}

// GenerateQuestions 管理端按学科/主题/难度生成一批能力测试题并入库
func (s *CompetenceService) GenerateQuestions(ctx context.Context, subject, topic string, difficulty model.Difficulty, count int) ([]model.CompetenceQuestion, error) {
	if subject == "" || topic == "" || !validDifficulty(string(difficulty)) {
		return nil, util.ErrInvalidInput
	}
	if count <= 0 {
		count = 5
	}
	count = util.ClampInt(count, 1, 50)

	generated, err := s.Generator.GenerateQuestions(ctx, QuestionSpec{
		Subject:         subject,
		Topic:           topic,
		DifficultyLevel: difficulty,
		Count:           count,
	})
	if err != nil {
		monitoring.GenerationFailures.WithLabelValues("competence").Inc()
		return nil, err
	}

	questions := make([]model.CompetenceQuestion, 0, len(generated))
	for _, g := range generated {
		questions = append(questions, model.CompetenceQuestion{
			Subject:       subject,
			Topic:         topic,
			QuestionText:  g.QuestionText,
			OptionA:       g.OptionA,
			OptionB:       g.OptionB,
			OptionC:       g.OptionC,
			OptionD:       g.OptionD,
			CorrectOption: g.CorrectOption,
			Explanation:   g.Explanation,
			Difficulty:    difficulty,
			Source:        "AI",
			IsActive:      true,
		})
	}
	if err := s.Repo.CreateQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func validDifficulty(s string) bool {
	switch model.Difficulty(s) {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		return true
	}
	return false
}
