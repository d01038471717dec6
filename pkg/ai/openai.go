package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prova",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI requests",
	}, []string{"model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prova",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of AI request failures",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI client.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIClient implements Generator, Corrector and Suggester against the
// OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a new client using the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/provaboard/prova-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIClient{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// GenerateQuestion asks the model for a pre-filled question draft.
func (c *OpenAIClient) GenerateQuestion(parent context.Context, prompt, questionType string) (GeneratedQuestion, error) {
	content, err := c.complete(parent, "generate_question", generatorSystemPrompt(questionType), prompt)
	if err != nil {
		return GeneratedQuestion{}, err
	}

	var question GeneratedQuestion
	if err := json.Unmarshal([]byte(content), &question); err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "generate_question").Inc()
		return GeneratedQuestion{}, fmt.Errorf("parse generated question: %w", err)
	}

	if question.Difficulty < 1 || question.Difficulty > 5 {
		question.Difficulty = 3
	}

	return question, nil
}

// Correct grades an answer sheet against the exam's rubrics.
func (c *OpenAIClient) Correct(parent context.Context, input CorrectionInput) (CorrectionResult, error) {
	content, err := c.complete(parent, "correct_sheet", correctorSystemPrompt(), buildCorrectionPrompt(input))
	if err != nil {
		return CorrectionResult{}, err
	}

	var result CorrectionResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "correct_sheet").Inc()
		return CorrectionResult{}, fmt.Errorf("parse correction json: %w", err)
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 1 {
		result.Score = 1
	}

	return result, nil
}

// SuggestDescription proposes a job description for the given title and level.
func (c *OpenAIClient) SuggestDescription(parent context.Context, jobTitle, jobLevel string) (string, error) {
	prompt := fmt.Sprintf("Job title: %s\nSeniority level: %s\nReturn JSON.", jobTitle, jobLevel)
	content, err := c.complete(parent, "suggest_description", suggesterSystemPrompt(), prompt)
	if err != nil {
		return "", err
	}

	var payload struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "suggest_description").Inc()
		return "", fmt.Errorf("parse suggestion json: %w", err)
	}

	return strings.TrimSpace(payload.Description), nil
}

func (c *OpenAIClient) complete(parent context.Context, operation, systemPrompt, userPrompt string) (string, error) {
	ctx, span := c.tracer.Start(parent, "openai."+operation, trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(c.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func generatorSystemPrompt(questionType string) string {
	if questionType == "multipleChoice" {
		return "You author recruitment exam questions. Respond with a JSON object containing statement, options (array of " +
			"{description, correct} with exactly one correct entry), tags, and difficulty (1-5)."
	}
	return "You author recruitment exam questions. Respond with a JSON object containing statement, rubric (array of " +
		"{title, weight, max_text, avg_text, min_text, max_points}), tags, and difficulty (1-5)."
}

func correctorSystemPrompt() string {
	return "You grade candidate answer sheets against the provided rubrics. Respond with a JSON object containing score " +
		"(0-1), feedback, and an optional details object breaking down the score per question."
}

func suggesterSystemPrompt() string {
	return "You write concise job descriptions for recruitment exams. Respond with a JSON object containing a single " +
		"description field."
}

func buildCorrectionPrompt(input CorrectionInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Exam\n")
	builder.WriteString(input.ExamTitle)
	for i, question := range input.Questions {
		builder.WriteString(fmt.Sprintf("\n\n## Question %d (%s, weight %.2f)\n", i+1, question.Type, question.Weight))
		builder.WriteString(question.Statement)
		for _, criterion := range question.Rubric {
			builder.WriteString(fmt.Sprintf("\n- %s (%.1f pts): max=%s | avg=%s | min=%s",
				criterion.Title, criterion.MaxPoints, criterion.MaxText, criterion.AvgText, criterion.MinText))
		}
	}
	builder.WriteString("\n\n## Candidate Answers\n")
	builder.WriteString(input.Answers)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}
