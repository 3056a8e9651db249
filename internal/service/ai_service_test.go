package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learnly_backend/internal/config"
	"learnly_backend/internal/model"
	"learnly_backend/internal/util"
)

// newChatServer 返回固定模型回复的假补全接口
func newChatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}

		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}

		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []struct {
				Message AIChatMessage `json:"message"`
			}{
				{Message: AIChatMessage{Role: "assistant", Content: content}},
			},
		})
	}))
}

func newAIClient(baseURL string) *AIService {
	return NewAIService(config.AIConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		Model:          "test-model",
		TimeoutSeconds: 5 * time.Second,
	})
}

const questionsJSON = `[
  {"questionText":"What is 2+2?","optionA":"4","optionB":"3","optionC":"5","optionD":"22","correctOption":"A","explanation":"basic addition"},
  {"questionText":"What is 3*3?","optionA":"6","optionB":"9","optionC":"3","optionD":"33","correctOption":"1","explanation":"index form"}
]`

func TestGenerateQuestionsFencedOutput(t *testing.T) {
	// 模型把JSON包在围栏里也要能解析，下标形式的答案归一为字母
	server := newChatServer(t, http.StatusOK, "```json\n"+questionsJSON+"\n```")
	defer server.Close()

	questions, err := newAIClient(server.URL).GenerateQuestions(context.Background(), QuestionSpec{
		Subject:         "Math",
		Topic:           "Arithmetic",
		DifficultyLevel: model.DifficultyEasy,
		Count:           2,
	})
	if err != nil {
		t.Fatalf("generate questions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions", len(questions))
	}
	if questions[0].CorrectOption != "A" {
		t.Errorf("q0 correctOption = %q", questions[0].CorrectOption)
	}
	if questions[1].CorrectOption != "B" {
		t.Errorf("q1 correctOption = %q, want index 1 normalized to B", questions[1].CorrectOption)
	}
}

func TestGenerateQuestionsCountMismatch(t *testing.T) {
	server := newChatServer(t, http.StatusOK, questionsJSON)
	defer server.Close()

	_, err := newAIClient(server.URL).GenerateQuestions(context.Background(), QuestionSpec{
		Subject:         "Math",
		Topic:           "Arithmetic",
		DifficultyLevel: model.DifficultyEasy,
		Count:           5,
	})
	if !errors.Is(err, util.ErrContentGenerating) {
		t.Errorf("err = %v, want retryable ErrContentGenerating", err)
	}
}

func TestGenerateQuestionsAPIError(t *testing.T) {
	server := newChatServer(t, http.StatusBadGateway, "")
	defer server.Close()

	_, err := newAIClient(server.URL).GenerateQuestions(context.Background(), QuestionSpec{
		Subject:         "Math",
		Topic:           "Arithmetic",
		DifficultyLevel: model.DifficultyEasy,
		Count:           2,
	})
	if !errors.Is(err, util.ErrContentGenerating) {
		t.Errorf("err = %v, want retryable ErrContentGenerating", err)
	}
}

func TestGenerateQuestionsRejectsBadSpec(t *testing.T) {
	svc := newAIClient("http://unused")
	if _, err := svc.GenerateQuestions(context.Background(), QuestionSpec{Topic: "x", DifficultyLevel: model.DifficultyEasy, Count: 1}); err == nil {
		t.Error("missing subject accepted")
	}
	if _, err := svc.GenerateQuestions(context.Background(), QuestionSpec{Subject: "x", Topic: "y", DifficultyLevel: model.DifficultyEasy}); err == nil {
		t.Error("zero count accepted")
	}
}

func TestGenerateUnitExplanationFallbackStyle(t *testing.T) {
	// 模型返回未知风格时退回服务端挑选的风格
	server := newChatServer(t, http.StatusOK, `{"explanationText":"  Fractions explained.  ","recommendedStyle":"Kinesthetic"}`)
	defer server.Close()

	result, err := newAIClient(server.URL).GenerateUnitExplanation(context.Background(), ExplanationSpec{
		Subject:         "Math",
		UnitTitle:       "Fractions",
		CompetenceScore: 80,
		LastQuizScore:   90,
		LearningStyle:   model.StyleVisual,
	})
	if err != nil {
		t.Fatalf("generate explanation: %v", err)
	}
	if result.ExplanationText != "Fractions explained." {
		t.Errorf("explanationText = %q, want trimmed", result.ExplanationText)
	}
	if result.RecommendedStyle != string(model.StyleVisual) {
		t.Errorf("recommendedStyle = %q, want fallback Visual", result.RecommendedStyle)
	}
}

func TestGenerateFlashcardsRejectsEmptyCards(t *testing.T) {
	server := newChatServer(t, http.StatusOK, `[{"front":"Q","back":""}]`)
	defer server.Close()

	_, err := newAIClient(server.URL).GenerateFlashcards(context.Background(), "Math", "Fractions", 50)
	if !errors.Is(err, util.ErrContentGenerating) {
		t.Errorf("err = %v, want retryable ErrContentGenerating", err)
	}
}

func TestGenerateUnitsFiltersAndTruncates(t *testing.T) {
	// 标题太短的条目丢弃，超出请求数量的截断
	server := newChatServer(t, http.StatusOK, `[
	  {"title":"Linear Equations","baseContent":"c1"},
	  {"title":"x","baseContent":"junk"},
	  {"title":"Quadratic Equations","baseContent":"c2"},
	  {"title":"Word Problems","baseContent":"c3"}
	]`)
	defer server.Close()

	units, err := newAIClient(server.URL).GenerateUnits(context.Background(), UnitSpec{
		Subject:    "Math",
		CourseName: "Algebra",
		Count:      2,
	})
	if err != nil {
		t.Fatalf("generate units: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	if units[0].Title != "Linear Equations" || units[1].Title != "Quadratic Equations" {
		t.Errorf("units = %+v", units)
	}
}

func TestGenerateUnitsSkipsExistingTitles(t *testing.T) {
	// 模型复读已有标题（大小写不同也算）时剔除，补位后面的新单元
	server := newChatServer(t, http.StatusOK, `[
	  {"title":"linear equations","baseContent":"dup"},
	  {"title":"Inequalities","baseContent":"c1"},
	  {"title":"Inequalities","baseContent":"self-dup"},
	  {"title":"Polynomials","baseContent":"c2"}
	]`)
	defer server.Close()

	units, err := newAIClient(server.URL).GenerateUnits(context.Background(), UnitSpec{
		Subject:            "Math",
		CourseName:         "Algebra",
		ExistingUnitTitles: []string{"Linear Equations"},
		Count:              3,
	})
	if err != nil {
		t.Fatalf("generate units: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	if units[0].Title != "Inequalities" || units[1].Title != "Polynomials" {
		t.Errorf("units = %+v", units)
	}
}

func TestGenerateUnitsZeroCount(t *testing.T) {
	units, err := newAIClient("http://unused").GenerateUnits(context.Background(), UnitSpec{Count: 0})
	if err != nil {
		t.Fatalf("zero count: %v", err)
	}
	if units != nil {
		t.Errorf("units = %v, want nil", units)
	}
}

func TestExtractJSONFragment(t *testing.T) {
	var out []Flashcard
	text := "Sure! Here are the cards:\n[{\"front\":\"a\",\"back\":\"b\"}]\nHope that helps."
	if err := extractJSON(text, &out); err != nil {
		t.Fatalf("extract fragment: %v", err)
	}
	if len(out) != 1 || out[0].Front != "a" {
		t.Errorf("out = %+v", out)
	}

	var obj ExplanationResult
	if err := extractJSON("prefix {\"explanationText\":\"t\",\"recommendedStyle\":\"Text\"} suffix", &obj); err != nil {
		t.Fatalf("extract object: %v", err)
	}
	if obj.ExplanationText != "t" {
		t.Errorf("obj = %+v", obj)
	}

	if err := extractJSON("no json here", &out); err == nil {
		t.Error("garbage accepted")
	}
}

func TestNormalizeCorrectOption(t *testing.T) {
	options := [4]string{"alpha", "beta", "gamma", "delta"}
	cases := []struct {
		raw  string
		want string
	}{
		{"A", "A"},
		{" b ", "B"},
		{"2", "C"},
		{"delta", "D"},
		{"Beta", "B"},
		{"epsilon", ""},
	}
	for _, tc := range cases {
		if got := normalizeCorrectOption(tc.raw, options); got != tc.want {
			t.Errorf("normalizeCorrectOption(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
