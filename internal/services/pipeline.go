package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/justsurfingit/brand-theme-generator/internal/extractor"
	"github.com/justsurfingit/brand-theme-generator/internal/logger"
	"github.com/justsurfingit/brand-theme-generator/internal/theme"
)

var (
	// ErrInvalidURL rejects a target before any browser work starts.
	ErrInvalidURL = errors.New("url must be an absolute http or https address")
	// ErrInvalidLayout rejects a layout preference outside Layouts.
	ErrInvalidLayout = errors.New("unknown layout")
	// ErrTokenStage wraps failures of the screenshot-to-tokens completion.
	ErrTokenStage = errors.New("design token extraction failed")
	// ErrTemplateStage wraps failures of the tokens-to-stylesheet completion.
	ErrTemplateStage = errors.New("stylesheet generation failed")
	// ErrNotFound is returned by lookups of stored templates and companies.
	ErrNotFound = errors.New("not found")
)

// Layouts the widget supports. The first is the default.
var Layouts = []string{"list", "grid", "compact"}

// StyleExtractor renders a URL into a StyleBundle.
type StyleExtractor interface {
	Extract(ctx context.Context, url string) (*extractor.StyleBundle, error)
}

// ChatCompleter is the chat completion boundary.
type ChatCompleter interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	CompleteWithImage(ctx context.Context, system, prompt string, jpeg []byte) (string, error)
}

// TemplatePayload is a finished theme.
type TemplatePayload struct {
	Name         string             `json:"name"`
	CSS          string             `json:"css"`
	FontURL      string             `json:"fontUrl"`
	Layout       string             `json:"layout"`
	DesignTokens theme.DesignTokens `json:"designTokens"`
	SourceURL    string             `json:"sourceUrl"`
	Debug        *Debug             `json:"debug,omitempty"`
}

// Debug carries the intermediate data behind a payload. It is diagnostic only.
type Debug struct {
	Extracted   extractor.StyleBundle `json:"extracted"`
	RawTokens   theme.DesignTokens    `json:"rawTokens"`
	Repairs     []string              `json:"repairs"`
	ModelLayout string                `json:"modelLayout,omitempty"`
}

// Pipeline turns a website into a themed stylesheet: extract styles, ask the vision model
// for tokens, repair them, then ask the text model for CSS built only from those tokens.
type Pipeline struct {
	extractor StyleExtractor
	llm       ChatCompleter
	log       zerolog.Logger
}

func NewPipeline(ex StyleExtractor, llm ChatCompleter, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		extractor: ex,
		llm:       llm,
		log:       logger.Component(log, "pipeline"),
	}
}

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// NormalizeLayout lowercases layout and applies the default for an empty value.
func NormalizeLayout(layout string) (string, error) {
	layout = strings.ToLower(strings.TrimSpace(layout))
	if layout == "" {
		return Layouts[0], nil
	}
	for _, l := range Layouts {
		if l == layout {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidLayout, layout)
}

// Generate runs the whole pipeline for one URL. Steps are strictly sequential.
func (p *Pipeline) Generate(ctx context.Context, rawURL, layout string) (*TemplatePayload, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	layout, err = NormalizeLayout(layout)
	if err != nil {
		return nil, err
	}
	log := p.log.With().Str("url", target.String()).Logger()
	start := time.Now()

	bundle, err := p.extractor.Extract(ctx, target.String())
	if err != nil {
		return nil, err
	}

	raw, err := p.extractTokens(ctx, target, bundle)
	if err != nil {
		log.Error().Err(err).Msg("token stage failed")
		return nil, err
	}

	tokens, repairs := theme.RepairWithReport(raw)
	if len(repairs) > 0 {
		log.Info().Strs("rules", repairs).Msg("design tokens repaired")
	}

	generated, err := p.generateStylesheet(ctx, target, layout, tokens)
	if err != nil {
		log.Error().Err(err).Msg("stylesheet stage failed")
		return nil, err
	}

	payload := &TemplatePayload{
		Name:         generated.Name,
		CSS:          theme.RootBlock(tokens) + "\n" + generated.CSS,
		FontURL:      generated.FontURL,
		Layout:       layout,
		DesignTokens: tokens,
		SourceURL:    target.String(),
		Debug: &Debug{
			Extracted:   bundle.WithoutScreenshot(),
			RawTokens:   raw,
			Repairs:     repairs,
			ModelLayout: generated.Layout,
		},
	}
	log.Info().Str("name", payload.Name).Str("layout", layout).Dur("took", time.Since(start)).Msg("template generated")
	return payload, nil
}

func (p *Pipeline) extractTokens(ctx context.Context, target *url.URL, bundle *extractor.StyleBundle) (theme.DesignTokens, error) {
	shot, err := base64.StdEncoding.DecodeString(bundle.ScreenshotBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode screenshot: %w", ErrTokenStage, err)
	}
	prompt := fmt.Sprintf(tokenUserPrompt, target.String(), buildStyleDigest(bundle))
	answer, err := p.llm.CompleteWithImage(ctx, tokenSystemPrompt, prompt, shot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenStage, err)
	}
	tokens, err := ParseTokens(answer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenStage, err)
	}
	return tokens, nil
}

func (p *Pipeline) generateStylesheet(ctx context.Context, target *url.URL, layout string, tokens theme.DesignTokens) (GeneratedTemplate, error) {
	system := fmt.Sprintf(templateSystemPrompt, cssVariableList())
	prompt := fmt.Sprintf(templateUserPrompt, siteDomain(target), layout, formatTokens(tokens))
	answer, err := p.llm.Complete(ctx, system, prompt)
	if err != nil {
		return GeneratedTemplate{}, fmt.Errorf("%w: %w", ErrTemplateStage, err)
	}
	generated, err := ParseTemplate(answer)
	if err != nil {
		return GeneratedTemplate{}, fmt.Errorf("%w: %w", ErrTemplateStage, err)
	}
	return generated, nil
}

func siteDomain(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
