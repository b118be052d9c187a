// Package browser owns the headless Chrome process used to render third-party sites and
// hands out tabs from it through a small, bounded pool.
package browser

import (
	"context"
	"time"
)

// Page is one browser tab. Implementations must tolerate Close being called more than once.
type Page interface {
	// SetViewport fixes the layout viewport in CSS pixels.
	SetViewport(ctx context.Context, width, height int64) error
	// BlockResourceTypes aborts requests of the given CDP resource types ("Media", "WebSocket", ...).
	BlockResourceTypes(ctx context.Context, types ...string) error
	// Navigate loads url and waits until the network is idle or timeout elapses.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// Evaluate runs a JavaScript expression, awaiting a returned promise, and decodes the result into out.
	Evaluate(ctx context.Context, expression string, out any) error
	// ScreenshotJPEG captures the current viewport.
	ScreenshotJPEG(ctx context.Context, quality int64) ([]byte, error)
	Close() error
}

// Browser is one live browser process.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Launcher starts a fresh browser process.
type Launcher func(ctx context.Context) (Browser, error)
