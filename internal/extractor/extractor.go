// Package extractor renders a third-party page and pulls a normalized StyleBundle out of it.
package extractor

import (
	"context"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/justsurfingit/brand-theme-generator/internal/browser"
	"github.com/justsurfingit/brand-theme-generator/internal/logger"
)

//go:embed scripts/probe.js
var probeScript string

//go:embed scripts/consent.js
var consentScript string

//go:embed scripts/fonts_ready.js
var fontsReadyScript string

const (
	scrollDownScript = `window.scrollTo(0, Math.floor(document.body.scrollHeight / 2)); true`
	scrollTopScript  = `window.scrollTo(0, 0); true`
)

var (
	// ErrRenderTimeout means the site did not finish loading within the navigation timeout.
	ErrRenderTimeout = errors.New("site took too long to render")
	// ErrRenderFailed covers every other navigation or evaluation failure.
	ErrRenderFailed = errors.New("render failed")
)

// Config tunes extraction.
type Config struct {
	NavTimeout     time.Duration
	FontsTimeout   time.Duration
	ViewportWidth  int64
	ViewportHeight int64
	SettleDelay    time.Duration
	ScrollDelay    time.Duration
	JPEGQuality    int64
}

// DefaultConfig is a fixed desktop viewport so results do not depend on the caller.
func DefaultConfig() Config {
	return Config{
		NavTimeout:     15 * time.Second,
		FontsTimeout:   5 * time.Second,
		ViewportWidth:  1440,
		ViewportHeight: 900,
		SettleDelay:    time.Second,
		ScrollDelay:    400 * time.Millisecond,
		JPEGQuality:    80,
	}
}

// PagePool is the part of browser.Pool the extractor needs.
type PagePool interface {
	Acquire(ctx context.Context) (*browser.Lease, error)
	Release(lease *browser.Lease)
}

// Extractor turns URLs into StyleBundles.
type Extractor struct {
	pool PagePool
	cfg  Config
	log  zerolog.Logger
}

// New builds an Extractor. Timeouts and viewport left at zero take DefaultConfig values;
// delays are used as given so tests can run without sleeping.
func New(pool PagePool, cfg Config, log zerolog.Logger) *Extractor {
	def := DefaultConfig()
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = def.NavTimeout
	}
	if cfg.FontsTimeout <= 0 {
		cfg.FontsTimeout = def.FontsTimeout
	}
	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		cfg.ViewportWidth, cfg.ViewportHeight = def.ViewportWidth, def.ViewportHeight
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = def.JPEGQuality
	}
	return &Extractor{pool: pool, cfg: cfg, log: logger.Component(log, "extractor")}
}

// Outcome is the result of a best-effort step: it degrades the bundle when it fails but
// never aborts extraction.
type Outcome struct {
	Step   string `json:"step"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// IsTimeout reports whether err is a render timeout in any of its spellings.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRenderTimeout) || errors.Is(err, browser.ErrNavigationTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// Extract renders url and samples its styles. The page always goes back to the pool,
// including on failure.
func (e *Extractor) Extract(ctx context.Context, url string) (*StyleBundle, error) {
	log := e.log.With().Str("url", url).Logger()
	start := time.Now()

	lease, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire page: %w", ErrRenderFailed, err)
	}
	defer e.pool.Release(lease)
	page := lease.Page

	if err := page.SetViewport(ctx, e.cfg.ViewportWidth, e.cfg.ViewportHeight); err != nil {
		return nil, fmt.Errorf("%w: set viewport: %w", ErrRenderFailed, err)
	}
	// Fonts stay allowed: they are what we are trying to detect.
	if err := page.BlockResourceTypes(ctx, browser.ResourceMedia, browser.ResourceWebSocket); err != nil {
		return nil, fmt.Errorf("%w: request interception: %w", ErrRenderFailed, err)
	}

	if err := page.Navigate(ctx, url, e.cfg.NavTimeout); err != nil {
		if IsTimeout(err) {
			log.Warn().Err(err).Dur("timeout", e.cfg.NavTimeout).Msg("navigation timed out")
			return nil, fmt.Errorf("%w: %w", ErrRenderTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	var steps []Outcome
	steps = append(steps, e.waitForFonts(ctx, page))
	if err := sleep(ctx, e.cfg.SettleDelay); err != nil {
		return nil, err
	}
	steps = append(steps, e.dismissConsent(ctx, page))
	if err := sleep(ctx, e.cfg.SettleDelay); err != nil {
		return nil, err
	}
	steps = append(steps, e.triggerLazyContent(ctx, page))

	var raw rawProbe
	if err := page.Evaluate(ctx, probeScript, &raw); err != nil {
		return nil, fmt.Errorf("%w: style probe: %w", ErrRenderFailed, err)
	}

	shot, err := page.ScreenshotJPEG(ctx, e.cfg.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %w", ErrRenderFailed, err)
	}

	bundle := normalize(raw)
	bundle.ScreenshotBase64 = base64.StdEncoding.EncodeToString(shot)
	bundle.Steps = steps

	for _, s := range steps {
		if !s.OK {
			log.Debug().Str("step", s.Step).Str("detail", s.Detail).Msg("best-effort step degraded")
		}
	}
	log.Info().
		Int("roles", len(bundle.ComputedColors)).
		Int("colors", len(bundle.UniqueColors)).
		Int("ctas", len(bundle.CTAStyles)).
		Int("fonts", len(bundle.LoadedFonts)).
		Dur("took", time.Since(start)).
		Msg("styles extracted")

	return &bundle, nil
}

func (e *Extractor) waitForFonts(ctx context.Context, page browser.Page) Outcome {
	fctx, cancel := context.WithTimeout(ctx, e.cfg.FontsTimeout)
	defer cancel()

	var ready bool
	if err := page.Evaluate(fctx, fontsReadyScript, &ready); err != nil {
		return Outcome{Step: "fonts-ready", Detail: err.Error()}
	}
	if !ready {
		return Outcome{Step: "fonts-ready", Detail: "font loading API unavailable"}
	}
	return Outcome{Step: "fonts-ready", OK: true}
}

type consentResult struct {
	Clicked string `json:"clicked"`
	Removed int    `json:"removed"`
}

// dismissConsent clears cookie banners that would cover the screenshot and skew sampling.
func (e *Extractor) dismissConsent(ctx context.Context, page browser.Page) Outcome {
	var res consentResult
	if err := page.Evaluate(ctx, consentScript, &res); err != nil {
		return Outcome{Step: "consent", Detail: err.Error()}
	}
	switch {
	case res.Clicked != "":
		return Outcome{Step: "consent", OK: true, Detail: "clicked " + res.Clicked}
	case res.Removed > 0:
		return Outcome{Step: "consent", OK: true, Detail: fmt.Sprintf("removed %d overlays", res.Removed)}
	}
	return Outcome{Step: "consent", OK: true, Detail: "no overlay found"}
}

// triggerLazyContent scrolls down and back so lazy hero content renders before sampling.
func (e *Extractor) triggerLazyContent(ctx context.Context, page browser.Page) Outcome {
	for _, script := range []string{scrollDownScript, scrollTopScript} {
		var ignored bool
		if err := page.Evaluate(ctx, script, &ignored); err != nil {
			return Outcome{Step: "scroll", Detail: err.Error()}
		}
		if err := sleep(ctx, e.cfg.ScrollDelay); err != nil {
			return Outcome{Step: "scroll", Detail: err.Error()}
		}
	}
	return Outcome{Step: "scroll", OK: true}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
