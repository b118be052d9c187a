package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// CDP resource types the extractor blocks.
const (
	ResourceMedia     = string(network.ResourceTypeMedia)
	ResourceWebSocket = string(network.ResourceTypeWebSocket)
)

// ErrNavigationTimeout is returned by Navigate when the page does not settle in time.
var ErrNavigationTimeout = errors.New("navigation timeout")

// ChromeLauncher returns a Launcher that starts headless Chrome. execPath may be empty to
// use whatever chromedp finds on the host.
//
// The sandbox is disabled so Chrome runs inside containers, and background throttling is off
// so timers behave the same in a hidden tab as in a visible one.
func ChromeLauncher(execPath string) Launcher {
	return func(ctx context.Context) (Browser, error) {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.NoSandbox,
			chromedp.DisableGPU,
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-background-timer-throttling", true),
			chromedp.Flag("disable-backgrounding-occluded-windows", true),
			chromedp.Flag("disable-renderer-backgrounding", true),
			chromedp.Flag("hide-scrollbars", true),
		)
		if execPath != "" {
			opts = append(opts, chromedp.ExecPath(execPath))
		}

		// The process outlives the request that launched it.
		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		started := make(chan error, 1)
		go func() { started <- chromedp.Run(browserCtx) }()

		select {
		case err := <-started:
			if err != nil {
				browserCancel()
				allocCancel()
				return nil, fmt.Errorf("launch chrome: %w", err)
			}
		case <-ctx.Done():
			browserCancel()
			allocCancel()
			return nil, ctx.Err()
		}

		return &chromeBrowser{ctx: browserCtx, cancel: browserCancel, allocCancel: allocCancel}, nil
	}
}

type chromeBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	once        sync.Once
}

func (b *chromeBrowser) NewPage(ctx context.Context) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	// The first Run attaches the target for the lifetime of the context it is given, so it
	// must be the tab context itself rather than a request-scoped child.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	if err := ctx.Err(); err != nil {
		cancel()
		return nil, err
	}
	return &chromePage{ctx: tabCtx, cancel: cancel}, nil
}

func (b *chromeBrowser) Close() error {
	var err error
	b.once.Do(func() {
		err = chromedp.Cancel(b.ctx)
		b.cancel()
		b.allocCancel()
	})
	return err
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// run executes actions on the tab while honouring the caller's ctx. Cancelling a child of
// the tab context aborts the actions without closing the tab.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *chromePage) SetViewport(ctx context.Context, width, height int64) error {
	return p.run(ctx, chromedp.EmulateViewport(width, height))
}

func (p *chromePage) BlockResourceTypes(ctx context.Context, types ...string) error {
	blocked := make(map[network.ResourceType]bool, len(types))
	for _, t := range types {
		blocked[network.ResourceType(t)] = true
	}

	chromedp.ListenTarget(p.ctx, func(ev any) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		// Listeners must not block the event loop.
		go func() {
			c := chromedp.FromContext(p.ctx)
			if c == nil || c.Target == nil {
				return
			}
			execCtx := cdp.WithExecutor(p.ctx, c.Target)
			if blocked[paused.ResourceType] {
				_ = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
				return
			}
			_ = fetch.ContinueRequest(paused.RequestID).Do(execCtx)
		}()
	})

	return p.run(ctx, fetch.Enable())
}

func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	listenCtx, stopListening := context.WithCancel(p.ctx)
	defer stopListening()

	// Only the main frame counts: an iframe going idle says nothing about the page.
	idle := make(chan struct{}, 1)
	var mainFrame atomic.Value
	chromedp.ListenTarget(listenCtx, func(ev any) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok || e.Name != "networkIdle" {
			return
		}
		if id, _ := mainFrame.Load().(cdp.FrameID); id == "" || e.FrameID != id {
			return
		}
		select {
		case idle <- struct{}{}:
		default:
		}
	})

	err := p.run(navCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(c context.Context) error {
			tree, err := page.GetFrameTree().Do(c)
			if err != nil {
				return err
			}
			mainFrame.Store(tree.Frame.ID)
			return nil
		}),
		chromedp.Navigate(url),
	)
	if err != nil {
		return navigationError(ctx, navCtx, url, err)
	}

	select {
	case <-idle:
		return nil
	case <-navCtx.Done():
		return navigationError(ctx, navCtx, url, navCtx.Err())
	}
}

func navigationError(parent, navCtx context.Context, url string, err error) error {
	if parent.Err() == nil && errors.Is(navCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrNavigationTimeout, url)
	}
	return fmt.Errorf("navigate %s: %w", url, err)
}

func (p *chromePage) Evaluate(ctx context.Context, expression string, out any) error {
	return p.run(ctx, chromedp.Evaluate(expression, out, func(ep *runtime.EvaluateParams) *runtime.EvaluateParams {
		return ep.WithAwaitPromise(true)
	}))
}

func (p *chromePage) ScreenshotJPEG(ctx context.Context, quality int64) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatJpeg).
			WithQuality(quality).
			Do(c)
		return err
	}))
	return buf, err
}

func (p *chromePage) Close() error {
	p.once.Do(p.cancel)
	return nil
}
