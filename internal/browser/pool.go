package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/justsurfingit/brand-theme-generator/internal/logger"
)

// ErrPoolClosed is returned by Acquire after Shutdown.
var ErrPoolClosed = errors.New("render pool is shut down")

// Pool defaults.
const (
	DefaultMaxPages    = 2
	DefaultRetireAfter = 50
)

// PoolConfig sizes the pool.
type PoolConfig struct {
	// MaxPages caps simultaneously checked-out pages on the one browser instance.
	MaxPages int
	// RetireAfter is the lifetime checkout count after which an instance is replaced
	// once its last page comes back.
	RetireAfter int
}

// Pool hands out pages from a single browser instance. A third caller waits for a page
// to come back instead of starting a second browser: Chrome is memory heavy and one
// process is the ceiling.
//
// Launching Chrome and opening tabs happen outside the lock, so Release and Stats never
// wait on the browser.
type Pool struct {
	launch Launcher
	cfg    PoolConfig
	log    zerolog.Logger

	mu         sync.Mutex
	current    *instance
	launching  bool
	generation int
	closed     bool
	changed    chan struct{}
}

type instance struct {
	browser    Browser
	generation int
	active     int
	requests   int
	retiring   bool
}

// Lease is a checked-out page. Return it with Pool.Release.
type Lease struct {
	Page       Page
	Generation int

	inst *instance
	once sync.Once
}

// Stats is a point-in-time view of the pool for health reporting.
type Stats struct {
	Live        bool `json:"live"`
	Launching   bool `json:"launching"`
	Generation  int  `json:"generation"`
	ActivePages int  `json:"activePages"`
	Requests    int  `json:"requests"`
	Retiring    bool `json:"retiring"`
}

// NewPool creates an empty pool; the browser is launched on first Acquire.
func NewPool(launch Launcher, cfg PoolConfig, log zerolog.Logger) *Pool {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.RetireAfter <= 0 {
		cfg.RetireAfter = DefaultRetireAfter
	}
	return &Pool{
		launch:  launch,
		cfg:     cfg,
		log:     logger.Component(log, "render_pool"),
		changed: make(chan struct{}),
	}
}

// Acquire returns a fresh page, launching a browser if none is live. It blocks while the
// live instance is at its page cap, draining for retirement or being launched by another
// caller. Launch failures are returned. An instance that cannot open a page is treated as
// crashed: it is retired and Acquire tries once more on a fresh instance.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	relaunched := false
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}

		inst := p.current
		if inst != nil && inst.retiring && inst.active == 0 {
			p.retireLocked(inst)
			inst = nil
		}

		if inst == nil && !p.launching {
			p.launching = true
			p.mu.Unlock()
			if err := p.launchInstance(ctx); err != nil {
				return nil, err
			}
			continue
		}

		if inst != nil && !inst.retiring && inst.active < p.cfg.MaxPages {
			p.reserveLocked(inst)
			p.mu.Unlock()

			lease, err := p.openPage(ctx, inst)
			if err == nil {
				return lease, nil
			}
			if relaunched || ctx.Err() != nil || errors.Is(err, ErrPoolClosed) {
				return nil, err
			}
			relaunched = true
			continue
		}

		wait := p.changed
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-wait:
		}
	}
}

// launchInstance starts a browser with p.launching set and installs it as current.
func (p *Pool) launchInstance(ctx context.Context) error {
	b, err := p.launch(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.launching = false
	defer p.broadcastLocked()

	if err != nil {
		p.log.Error().Err(err).Msg("browser launch failed")
		return fmt.Errorf("launch browser: %w", err)
	}
	if p.closed {
		if cerr := b.Close(); cerr != nil {
			p.log.Debug().Err(cerr).Msg("browser close failed")
		}
		return ErrPoolClosed
	}
	p.generation++
	p.current = &instance{browser: b, generation: p.generation}
	p.log.Info().Int("generation", p.generation).Msg("browser launched")
	return nil
}

// reserveLocked takes a page slot on inst before the tab is opened.
func (p *Pool) reserveLocked(inst *instance) {
	inst.active++
	inst.requests++
	if inst.requests >= p.cfg.RetireAfter {
		inst.retiring = true
		p.log.Info().
			Int("generation", inst.generation).
			Int("requests", inst.requests).
			Msg("browser scheduled for retirement")
	}
}

// openPage opens a tab on a reserved slot. On failure the slot is returned and the
// instance is retired, immediately if nothing else is checked out.
func (p *Pool) openPage(ctx context.Context, inst *instance) (*Lease, error) {
	page, err := inst.browser.NewPage(ctx)
	if err == nil {
		return &Lease{Page: page, Generation: inst.generation, inst: inst}, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	inst.active--
	inst.requests--
	if p.closed {
		return nil, ErrPoolClosed
	}
	if ctx.Err() == nil && !inst.retiring {
		inst.retiring = true
		p.log.Warn().Err(err).Int("generation", inst.generation).Msg("browser cannot open pages, retiring")
	}
	if inst.retiring && inst.active == 0 && p.current == inst {
		p.retireLocked(inst)
	}
	p.broadcastLocked()
	return nil, fmt.Errorf("open page: %w", err)
}

// Release closes the page and returns its slot. Releasing twice is a no-op.
func (p *Pool) Release(lease *Lease) {
	if lease == nil {
		return
	}
	lease.once.Do(func() {
		if err := lease.Page.Close(); err != nil {
			p.log.Debug().Err(err).Msg("page close failed")
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		inst := lease.inst
		inst.active--
		if inst.retiring && inst.active == 0 && p.current == inst {
			p.retireLocked(inst)
		}
		p.broadcastLocked()
	})
}

// retireLocked closes inst and, if it is current, forgets it. Close errors are logged only.
func (p *Pool) retireLocked(inst *instance) {
	if err := inst.browser.Close(); err != nil {
		p.log.Warn().Err(err).Int("generation", inst.generation).Msg("browser close failed")
	} else {
		p.log.Info().Int("generation", inst.generation).Int("requests", inst.requests).Msg("browser retired")
	}
	if p.current == inst {
		p.current = nil
	}
}

func (p *Pool) broadcastLocked() {
	close(p.changed)
	p.changed = make(chan struct{})
}

// Shutdown force-closes the live browser and fails pending and future Acquire calls.
// Outstanding pages die with the process. A launch in flight is closed when it completes.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.current != nil {
		p.retireLocked(p.current)
	}
	p.broadcastLocked()
}

// Stats reports the live instance.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Stats{Generation: p.generation, Launching: p.launching}
	}
	return Stats{
		Live:        true,
		Launching:   p.launching,
		Generation:  p.current.generation,
		ActivePages: p.current.active,
		Requests:    p.current.requests,
		Retiring:    p.current.retiring,
	}
}
