// Package pacing spaces out page fetches with randomized delays and decides
// when the browser session should be rotated.
package pacing

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"clustrmaps-go-crawler/pkg/logger"
)

// Range is an inclusive [Min, Max] delay window.
type Range struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

func (r Range) Validate() error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("negative delay %s..%s", r.Min, r.Max)
	}
	if r.Max < r.Min {
		return fmt.Errorf("delay max %s below min %s", r.Max, r.Min)
	}
	return nil
}

type Config struct {
	// after every listing or detail page fetch
	RequestDelay Range `yaml:"request_delay"`
	// after finishing one identity, before the next
	IdentityDelay Range `yaml:"identity_delay"`
	// between quitting and relaunching the browser
	RestartDelay Range `yaml:"restart_delay"`
	// rotate the session every RestartEvery identities; 0 never rotates
	RestartEvery int `yaml:"restart_every"`
}

func DefaultConfig() Config {
	return Config{
		RequestDelay:  Range{Min: 2 * time.Second, Max: 4 * time.Second},
		IdentityDelay: Range{Min: 10 * time.Second, Max: 20 * time.Second},
		RestartDelay:  Range{Min: 5 * time.Second, Max: 10 * time.Second},
		RestartEvery:  2,
	}
}

// NoDelay never sleeps and never rotates the session.
func NoDelay() Config { return Config{} }

func (c Config) Validate() error {
	for name, r := range map[string]Range{
		"request_delay":  c.RequestDelay,
		"identity_delay": c.IdentityDelay,
		"restart_delay":  c.RestartDelay,
	} {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.RestartEvery < 0 {
		return fmt.Errorf("restart_every must be non-negative, got %d", c.RestartEvery)
	}
	return nil
}

// LoadConfig reads a YAML pacing file on top of DefaultConfig. Durations use
// Go syntax ("2s", "1500ms").
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read pacing config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse pacing config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

type Controller struct {
	cfg   Config
	log   *logger.Logger
	sleep SleepFunc
	// returns a value in [0, n)
	int64n func(n int64) int64
}

type Option func(*Controller)

func WithSleep(fn SleepFunc) Option { return func(c *Controller) { c.sleep = fn } }

func WithLogger(l *logger.Logger) Option { return func(c *Controller) { c.log = l } }

func WithRand(fn func(n int64) int64) Option { return func(c *Controller) { c.int64n = fn } }

func New(cfg Config, opts ...Option) *Controller {
	c := &Controller{cfg: cfg, sleep: Sleep, int64n: rand.Int63n}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) Config() Config { return c.cfg }

// Pick returns a uniformly random duration in r.
func (c *Controller) Pick(r Range) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(c.int64n(int64(r.Max-r.Min)+1))
}

func (c *Controller) DelayBetweenRequests(ctx context.Context) (time.Duration, error) {
	return c.wait(ctx, c.cfg.RequestDelay)
}

func (c *Controller) DelayBetweenIdentities(ctx context.Context) (time.Duration, error) {
	d := c.Pick(c.cfg.IdentityDelay)
	if d <= 0 {
		return 0, nil
	}
	c.log.Infof("Waiting %.1f seconds...", d.Seconds())
	return d, c.sleep(ctx, d)
}

func (c *Controller) DelayBeforeRestart(ctx context.Context) (time.Duration, error) {
	return c.wait(ctx, c.cfg.RestartDelay)
}

// ShouldRestartSession reports whether the session is rotated after the
// identity at the zero-based index.
func (c *Controller) ShouldRestartSession(index int) bool {
	every := c.cfg.RestartEvery
	return every > 0 && index > 0 && index%every == 0
}

func (c *Controller) wait(ctx context.Context, r Range) (time.Duration, error) {
	d := c.Pick(r)
	if d <= 0 {
		return 0, nil
	}
	return d, c.sleep(ctx, d)
}
