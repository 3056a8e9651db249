package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"learnly_backend/internal/config"
	"learnly_backend/internal/model"
	"learnly_backend/internal/util"
	"net/http"
	"strings"
)

// GeneratedQuestion 生成的四选一题目
type GeneratedQuestion struct {
	QuestionText  string `json:"questionText"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectOption string `json:"correctOption"`
	Explanation   string `json:"explanation"`
}

type QuestionSpec struct {
	Subject         string
	Topic           string
	DifficultyLevel model.Difficulty
	Count           int
}

type ExplanationSpec struct {
	Subject         string
	UnitTitle       string
	BaseContent     string
	CompetenceScore int
	LastQuizScore   int
	LearningStyle   model.LearningStyle
}

type ExplanationResult struct {
	ExplanationText  string `json:"explanationText"`
	RecommendedStyle string `json:"recommendedStyle"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type UnitSpec struct {
	Subject            string
	CourseName         string
	CourseDescription  string
	ExistingUnitTitles []string
	CompetenceScore    int
	Count              int
}

type GeneratedUnit struct {
	Title       string `json:"title"`
	BaseContent string `json:"baseContent"`
}

// ContentGenerator 外部内容生成服务的契约，调用方只依赖该接口
type ContentGenerator interface {
	GenerateQuestions(ctx context.Context, spec QuestionSpec) ([]GeneratedQuestion, error)
	GenerateUnitExplanation(ctx context.Context, spec ExplanationSpec) (*ExplanationResult, error)
	GenerateFlashcards(ctx context.Context, subject, unitTitle string, competenceScore int) ([]Flashcard, error)
	GenerateUnits(ctx context.Context, spec UnitSpec) ([]GeneratedUnit, error)
}

// AIService OpenAI兼容的聊天补全客户端。超时和模型选择来自配置，
// 失败统一包装为可重试错误，不影响已落库的状态
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: cfg.TimeoutSeconds},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) chatJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: "Return ONLY valid JSON. No markdown."},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

func retryable(err error) error {
	return fmt.Errorf("%w: %v", util.ErrContentGenerating, err)
}

// stripCodeFences 模型经常把JSON包在 ```json 围栏里，先剥掉
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// extractJSON 直接解析失败时，截取首个 [] 或 {} 片段再解析
func extractJSON(text string, v interface{}) error {
	cleaned := stripCodeFences(text)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	if start, end := strings.Index(cleaned, "["), strings.LastIndex(cleaned, "]"); start != -1 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err == nil {
			return nil
		}
	}

	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start != -1 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("model did not return valid JSON")
}

// normalizeCorrectOption 模型可能返回字母、下标或完整答案文本，统一归一到 A-D
func normalizeCorrectOption(raw string, options [4]string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))

	switch s {
	case "A", "B", "C", "D":
		return s
	case "0", "1", "2", "3":
		return string(rune('A' + s[0] - '0'))
	}

	for i, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), strings.TrimSpace(raw)) {
			return string(rune('A' + i))
		}
	}

	return ""
}

func validQuestion(q GeneratedQuestion) bool {
	if q.QuestionText == "" {
		return false
	}
	if q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" {
		return false
	}
	switch q.CorrectOption {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

func (s *AIService) GenerateQuestions(ctx context.Context, spec QuestionSpec) ([]GeneratedQuestion, error) {
	if spec.Subject == "" || spec.Topic == "" || spec.DifficultyLevel == "" {
		return nil, fmt.Errorf("generate questions: subject/topic/difficulty are required")
	}
	if spec.Count < 1 {
		return nil, fmt.Errorf("generate questions: count must be >= 1")
	}

	prompt := fmt.Sprintf(`You are an educational assessment expert.

Generate EXACTLY %d multiple-choice questions for:
- Subject: %s
- Topic: %s
- Difficulty: %s

Rules:
- Output MUST be a JSON array of length %d.
- Each item MUST match this shape:

{
  "questionText": "string",
  "optionA": "string",
  "optionB": "string",
  "optionC": "string",
  "optionD": "string",
  "correctOption": "A" | "B" | "C" | "D",
  "explanation": "string"
}

Return ONLY the JSON array.`, spec.Count, spec.Subject, spec.Topic, spec.DifficultyLevel, spec.Count)

	raw, err := s.chatJSON(ctx, prompt)
	if err != nil {
		return nil, retryable(err)
	}

	var questions []GeneratedQuestion
	if err := extractJSON(raw, &questions); err != nil {
		return nil, retryable(err)
	}

	for i := range questions {
		questions[i].CorrectOption = normalizeCorrectOption(questions[i].CorrectOption, [4]string{
			questions[i].OptionA, questions[i].OptionB, questions[i].OptionC, questions[i].OptionD,
		})
	}

	if len(questions) != spec.Count {
		return nil, retryable(fmt.Errorf("model returned %d questions, expected %d", len(questions), spec.Count))
	}
	for _, q := range questions {
		if !validQuestion(q) {
			return nil, retryable(fmt.Errorf("model returned invalid question objects"))
		}
	}

	return questions, nil
}

func (s *AIService) GenerateUnitExplanation(ctx context.Context, spec ExplanationSpec) (*ExplanationResult, error) {
	level := scoreToLevel(spec.CompetenceScore)
	style := chooseStyle(spec.LearningStyle, spec.LastQuizScore)

	prompt := fmt.Sprintf(`Create a teaching explanation for a student.

Context:
- Subject: %s
- Unit: %s
- Student level: %s
- Preferred style: %s
- Last quiz score: %d/100
- Reference content (may be empty): %s

Return JSON object exactly:
{
  "explanationText": "string",
  "recommendedStyle": "Visual" | "Text" | "Practice"
}

Return ONLY JSON.`, spec.Subject, spec.UnitTitle, level, style, spec.LastQuizScore, spec.BaseContent)

	raw, err := s.chatJSON(ctx, prompt)
	if err != nil {
		return nil, retryable(err)
	}

	var result ExplanationResult
	if err := extractJSON(raw, &result); err != nil {
		return nil, retryable(err)
	}

	result.ExplanationText = strings.TrimSpace(result.ExplanationText)
	if !model.ValidLearningStyle(result.RecommendedStyle) {
		result.RecommendedStyle = string(style)
	}

	return &result, nil
}

func (s *AIService) GenerateFlashcards(ctx context.Context, subject, unitTitle string, competenceScore int) ([]Flashcard, error) {
	level := scoreToLevel(competenceScore)

	prompt := fmt.Sprintf(`Generate 6 flashcards.

Context:
- Subject: %s
- Unit: %s
- Level: %s

Return ONLY a JSON array of 6 items:
[
  { "front": "string", "back": "string" }
]`, subject, unitTitle, level)

	raw, err := s.chatJSON(ctx, prompt)
	if err != nil {
		return nil, retryable(err)
	}

	var cards []Flashcard
	if err := extractJSON(raw, &cards); err != nil {
		return nil, retryable(err)
	}

	for _, card := range cards {
		if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
			return nil, retryable(fmt.Errorf("model returned invalid flashcards"))
		}
	}

	return cards, nil
}

func (s *AIService) GenerateUnits(ctx context.Context, spec UnitSpec) ([]GeneratedUnit, error) {
	if spec.Count <= 0 {
		return nil, nil
	}

	level := scoreToLevel(spec.CompetenceScore)

	var existing strings.Builder
	for _, t := range spec.ExistingUnitTitles {
		existing.WriteString("- " + t + "\n")
	}

	prompt := fmt.Sprintf(`You are designing a course outline.

Course:
- Name: %s
- Subject: %s
- Description: %s

Student level (from placement test): %s

Existing unit titles (do not repeat):
%s
Task:
Generate exactly %d NEW units continuing the course.

Return ONLY a JSON array like:
[
  { "title": "string", "baseContent": "string" }
]

Rules:
- No markdown.
- Do not include "Unit 2:" prefixes in the title.
- baseContent should be concise (bullets or short paragraphs) and good enough for lesson generation later.`,
		spec.CourseName, spec.Subject, spec.CourseDescription, level, existing.String(), spec.Count)

	raw, err := s.chatJSON(ctx, prompt)
	if err != nil {
		return nil, retryable(err)
	}

	var units []GeneratedUnit
	if err := extractJSON(raw, &units); err != nil {
		return nil, retryable(err)
	}

	// 模型偶尔会复读已有标题，大小写不敏感地去重
	seen := make(map[string]bool, len(spec.ExistingUnitTitles))
	for _, title := range spec.ExistingUnitTitles {
		seen[strings.ToLower(strings.TrimSpace(title))] = true
	}

	cleaned := make([]GeneratedUnit, 0, len(units))
	for _, u := range units {
		u.Title = strings.TrimSpace(u.Title)
		u.BaseContent = strings.TrimSpace(u.BaseContent)
		if len(u.Title) < 3 {
			continue
		}
		key := strings.ToLower(u.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, u)
	}

	if len(cleaned) > spec.Count {
		cleaned = cleaned[:spec.Count]
	}

	return cleaned, nil
}
