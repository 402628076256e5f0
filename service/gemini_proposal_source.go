package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"fragrance-sampler/models"
	"fragrance-sampler/utils"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiProposalSource asks a Gemini model for bundle proposals.
// Its output is raw text and is never trusted.
type GeminiProposalSource struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGeminiProposalSource creates a new GeminiProposalSource.
// rps limits model calls per second across requests; zero or less disables the limit.
func NewGeminiProposalSource(ctx context.Context, apiKey, model string, rps float64, logger *zap.Logger) (*GeminiProposalSource, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &GeminiProposalSource{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}, nil
}

// Ensure GeminiProposalSource implements ProposalSourceInterface
var _ ProposalSourceInterface = (*GeminiProposalSource)(nil)

// ProduceProposals lists the request's catalog in a prompt and returns the model's answer text
func (s *GeminiProposalSource) ProduceProposals(ctx context.Context, req ProposalRequest) (string, error) {
	if req.Catalog == nil {
		return "", fmt.Errorf("no catalog in proposal request: %w", utils.ErrPermanent)
	}
	loaded, err := req.Catalog.LoadCandidates(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load catalog for prompt: %w", err)
	}
	items := models.NewCatalog(loaded).Items()
	if len(items) == 0 {
		return "", fmt.Errorf("empty catalog, nothing to propose: %w", utils.ErrPermanent)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	prompt := BuildProposalPrompt(req, items)
	s.logger.Debug("🤖 Requesting proposals from Gemini",
		zap.String("model", s.model),
		zap.Int("promptItems", min(len(items), maxPromptItems)),
		zap.String("budget", req.Budget.StringFixed(2)))

	result, err := s.client.Models.GenerateContent(ctx,
		s.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0.4),
		},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("Gemini returned no text")
	}

	s.logger.Debug("🤖 Gemini answered", zap.Int("chars", len(text)))
	return text, nil
}
