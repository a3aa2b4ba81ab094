package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
	"github.com/bhargav676/intern/internal/config"
)

const (
	defaultModel       = "gemini-2.0-flash"
	defaultTemperature = 0.3
	defaultMaxTokens   = 256
	maxAttempts        = 3
)

const systemPrompt = `You advise owners of household water-quality sensors.
Given a reading and which metrics are out of range, reply with at most three
short plain-text sentences of practical remediation advice. No markdown.`

// GeminiAdvisor implements the Advisor interface using Google's Gemini API
type GeminiAdvisor struct {
	client  *genai.Client
	logger  *zap.Logger
	model   string
	timeout time.Duration
}

// NewGeminiAdvisor creates a new Gemini advisor
func NewGeminiAdvisor(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*GeminiAdvisor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &GeminiAdvisor{
		client:  client,
		logger:  logger,
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

// Prompt describes the reading for the model
func Prompt(r *entities.Reading, a entities.ReadingAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pH %s (%s), turbidity %s (%s), TDS %s (%s).",
		a.PH.Display, a.PH.Status,
		a.Turbidity.Display, a.Turbidity.Status,
		a.TDS.Display, a.TDS.Status)
	if msg := entities.AlertMessage(r, a); msg != "" {
		fmt.Fprintf(&b, " Problems: %s.", msg)
	}
	return b.String()
}

// Advise implements repositories.Advisor
func (g *GeminiAdvisor) Advise(ctx context.Context, reading *entities.Reading, assessment entities.ReadingAssessment) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(Prompt(reading, assessment), genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(defaultTemperature)),
		MaxOutputTokens:   defaultMaxTokens,
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var response *genai.GenerateContentResponse
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		response, err = g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err == nil {
			break
		}

		g.logger.Warn("Failed to generate advice, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt+1) * time.Second):
			}
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate advice: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("no advice generated")
	}

	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty advice generated")
	}
	return text, nil
}

// Fallback tries primary first and answers from secondary when it fails
type Fallback struct {
	Primary   repositories.Advisor
	Secondary repositories.Advisor
	Logger    *zap.Logger
}

// Advise implements repositories.Advisor
func (f Fallback) Advise(ctx context.Context, reading *entities.Reading, assessment entities.ReadingAssessment) (string, error) {
	advice, err := f.Primary.Advise(ctx, reading, assessment)
	if err == nil {
		return advice, nil
	}
	f.Logger.Warn("Primary advisor failed, using fallback", zap.Error(err))
	return f.Secondary.Advise(ctx, reading, assessment)
}
