package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/destiny-match/internal/models"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash"

var (
	ErrMissingAPIKey = errors.New("API key is missing, check your environment variables")
	ErrEmptyResponse = errors.New("no response content generated")
)

// Analyzer turns two profiles into a compatibility report.
type Analyzer interface {
	Analyze(ctx context.Context, a, b models.Profile) (*models.CompatibilityResult, error)
}

// generator is the subset of *genai.GenerativeModel used here.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Options struct {
	APIKey      string
	Model       string
	Temperature float32
}

type GeminiClient struct {
	client *genai.Client
	model  generator
	name   string
	logger *zap.Logger
}

func NewGeminiClient(ctx context.Context, opts Options, logger *zap.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(opts.Temperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = ResponseSchema()

	return &GeminiClient{
		client: client,
		model:  model,
		name:   opts.Model,
		logger: logger.Named("analysis"),
	}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// Analyze makes a single best-effort call. Callers decide what a failure means.
func (g *GeminiClient) Analyze(ctx context.Context, a, b models.Profile) (*models.CompatibilityResult, error) {
	prompt := BuildPrompt(a, b)

	g.logger.Info("requesting compatibility analysis", zap.String("model", g.name))

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	result, err := ParseResult(text)
	if err != nil {
		g.logger.Warn("model returned an unusable report", zap.Error(err), zap.Int("bytes", len(text)))
		return nil, err
	}

	g.logger.Info("compatibility analysis completed", zap.Int("match_score", result.MatchScore))
	return result, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return strings.TrimSpace(sb.String())
}

// Unconfigured stands in for the client when no API key was supplied.
type Unconfigured struct{}

func (Unconfigured) Analyze(context.Context, models.Profile, models.Profile) (*models.CompatibilityResult, error) {
	return nil, ErrMissingAPIKey
}
