package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/justsurfingit/brand-theme-generator/internal/config"
	"github.com/justsurfingit/brand-theme-generator/internal/logger"
)

var errEmptyCompletion = errors.New("model returned no choices")

// LLMOptions tunes how completions are requested.
type LLMOptions struct {
	// Attempts bounds tries per completion on transport errors.
	Attempts int
	Backoff  time.Duration
	// ImageAsURL sends screenshots as data URLs instead of inline binary parts.
	ImageAsURL  bool
	Temperature float64
}

// LLMService is the chat completion boundary: a system instruction plus a text or
// text+image prompt in, free text out.
type LLMService struct {
	Vision llms.Model
	Text   llms.Model

	opts LLMOptions
	log  zerolog.Logger
}

// NewLLMService wraps already constructed models.
func NewLLMService(vision, text llms.Model, opts LLMOptions, log zerolog.Logger) *LLMService {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &LLMService{
		Vision: vision,
		Text:   text,
		opts:   opts,
		log:    logger.Component(log, "llm"),
	}
}

// NewLLMServiceFromConfig builds the provider clients named by cfg.
func NewLLMServiceFromConfig(ctx context.Context, cfg config.LLMConfig, log zerolog.Logger) (*LLMService, error) {
	opts := LLMOptions{Attempts: cfg.Attempts, Backoff: time.Second, Temperature: 0.2}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		vision, err := openai.New(openai.WithToken(cfg.OpenAIAPIKey), openai.WithModel(cfg.VisionModel))
		if err != nil {
			return nil, fmt.Errorf("create openai vision client: %w", err)
		}
		text, err := openai.New(openai.WithToken(cfg.OpenAIAPIKey), openai.WithModel(cfg.TextModel))
		if err != nil {
			return nil, fmt.Errorf("create openai text client: %w", err)
		}
		opts.ImageAsURL = true
		return NewLLMService(vision, text, opts, log), nil

	default:
		vision, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.GeminiAPIKey),
			googleai.WithDefaultModel(cfg.VisionModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create gemini vision client: %w", err)
		}
		text, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.GeminiAPIKey),
			googleai.WithDefaultModel(cfg.TextModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create gemini text client: %w", err)
		}
		return NewLLMService(vision, text, opts, log), nil
	}
}

// Complete runs a text-only completion on the text model.
func (s *LLMService) Complete(ctx context.Context, system, prompt string) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	return s.generate(ctx, s.Text, msgs)
}

// CompleteWithImage runs a multimodal completion on the vision model with a JPEG attached.
func (s *LLMService) CompleteWithImage(ctx context.Context, system, prompt string, jpeg []byte) (string, error) {
	var image llms.ContentPart = llms.BinaryPart("image/jpeg", jpeg)
	if s.opts.ImageAsURL {
		image = llms.ImageURLPart("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg))
	}
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{image, llms.TextContent{Text: prompt}},
		},
	}
	return s.generate(ctx, s.Vision, msgs)
}

func (s *LLMService) generate(ctx context.Context, model llms.Model, msgs []llms.MessageContent) (string, error) {
	var out string
	start := time.Now()
	err := retry(ctx, s.log, s.opts.Attempts, s.opts.Backoff, func() error {
		resp, err := model.GenerateContent(ctx, msgs, llms.WithTemperature(s.opts.Temperature))
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return permanent(errEmptyCompletion)
		}
		out = resp.Choices[0].Content
		return nil
	})
	if err != nil {
		return "", err
	}
	s.log.Debug().Dur("took", time.Since(start)).Int("chars", len(out)).Msg("completion received")
	return out, nil
}
