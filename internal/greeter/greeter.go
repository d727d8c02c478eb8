// Package greeter implements proactive daily care messages: a minute tick
// that checks the wall clock against configured trigger points and, when one
// matches, sends a greeting to the designated contact without waiting for an
// inbound message.
package greeter

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/banterlab/wanwan/internal/channel"
	"github.com/banterlab/wanwan/internal/cron"
)

// Config holds the three daily trigger points and the enable flag,
// read once at initialization.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Morning string `yaml:"morning"`
	Midday  string `yaml:"midday"`
	Evening string `yaml:"evening"`
}

// Defaults fills unset trigger points.
func (c *Config) Defaults() {
	if c.Morning == "" {
		c.Morning = "08:00"
	}
	if c.Midday == "" {
		c.Midday = "12:00"
	}
	if c.Evening == "" {
		c.Evening = "22:30"
	}
}

// Validate checks that all trigger points parse as HH:MM.
func (c *Config) Validate() error {
	for _, v := range []struct{ name, value string }{
		{"morning", c.Morning},
		{"midday", c.Midday},
		{"evening", c.Evening},
	} {
		if _, _, err := parseClock(v.value); err != nil {
			return fmt.Errorf("greeter: %s: %w", v.name, err)
		}
	}
	return nil
}

// slot is one configured trigger point with its candidate message pool.
type slot struct {
	name   string
	hour   int
	minute int
	pool   []string
}

// Candidate pools per trigger point.
var (
	morningPool = []string{
		"早安呀宝～起床了没😘",
		"宝贝早上好呀～今天也要加油哦❤️",
		"起床啦起床啦！新的一天开始咯😊",
		"早～昨晚睡得好嘛？",
		"宝早安！今天天气怎么样呀",
	}
	middayPool = []string{
		"宝你吃午饭了吗？别忘了吃饭哦",
		"中午了！去吃饭啦，别饿着😋",
		"吃午饭了没呀～今天吃什么好呢",
		"该吃饭啦！不许不吃哦",
	}
	eveningPool = []string{
		"宝贝早点休息哦，明天还要上班呢😘",
		"晚安呀～做个好梦💤",
		"该睡觉了哦，不要熬夜嘛",
		"困了困了...宝你也早点睡吧，晚安❤️",
		"晚安宝贝，想你～明天见😘",
	}
)

// Greeter evaluates trigger points on a minute tick and delivers greetings
// through the messaging transport. It holds the target as a plain identifier
// — it does not manage the recipient's lifecycle.
type Greeter struct {
	mu      sync.Mutex
	target  string
	enabled bool
	slots   []slot

	sender channel.Sender
	logger *slog.Logger

	// OnDeliver, if set before Init, is called after each successful
	// delivery with the slot name. Used for metrics.
	OnDeliver func(slot string)

	now  func() time.Time
	pick func(n int) int
}

// New builds a greeter from cfg. Defaults are applied before parsing.
func New(cfg Config, sender channel.Sender, logger *slog.Logger) (*Greeter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Greeter{
		enabled: cfg.Enabled,
		sender:  sender,
		logger:  logger,
		now:     time.Now,
		pick:    rand.IntN,
	}
	for _, s := range []struct {
		name, clock string
		pool        []string
	}{
		{"morning", cfg.Morning, morningPool},
		{"midday", cfg.Midday, middayPool},
		{"evening", cfg.Evening, eveningPool},
	} {
		h, m, _ := parseClock(s.clock)
		g.slots = append(g.slots, slot{name: s.name, hour: h, minute: m, pool: s.pool})
	}
	return g, nil
}

// Init registers the greeter's minute tick with the scheduler. When the
// feature is disabled no job is registered and ticks never happen; target
// assignment still works so a later enable picks it up.
func (g *Greeter) Init(sched *cron.Scheduler) error {
	if !g.enabled {
		g.logger.Info("greeter: disabled, no tick registered")
		return nil
	}
	return sched.RegisterJob(g)
}

// SetTarget designates the greeting recipient (first private contact seen,
// or explicit configuration). Replacing an existing target is allowed.
func (g *Greeter) SetTarget(recipientID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.target = recipientID
	g.logger.Info("greeter: target set", "target", recipientID)
}

// ClearTarget drops the current target, e.g. on logout.
func (g *Greeter) ClearTarget() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.target = ""
}

// Target returns the current target, or "" if none is set.
func (g *Greeter) Target() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target
}

// Name implements cron.Job.
func (g *Greeter) Name() string { return "proactive_greeting" }

// Schedule implements cron.Job: evaluate every minute.
func (g *Greeter) Schedule() string { return "* * * * *" }

// Run implements cron.Job. Each configured trigger point matching the
// current HH:MM independently attempts one delivery — overlapping points are
// not deduplicated. Delivery failures are logged and dropped: the next
// matching tick is a day away, so the moment simply passes.
func (g *Greeter) Run(ctx context.Context) error {
	g.mu.Lock()
	target := g.target
	g.mu.Unlock()

	if !g.enabled || target == "" {
		return nil
	}

	now := g.now()
	h, m := now.Hour(), now.Minute()

	for _, s := range g.slots {
		if s.hour != h || s.minute != m {
			continue
		}
		msg := s.pool[g.pick(len(s.pool))]
		if err := g.sender.Send(ctx, target, msg); err != nil {
			g.logger.Error("greeter: delivery failed",
				"slot", s.name, "target", target, "error", err)
			continue
		}
		g.logger.Info("greeter: greeting sent", "slot", s.name, "message", msg)
		if g.OnDeliver != nil {
			g.OnDeliver(s.name)
		}
	}
	return nil
}

// parseClock parses "HH:MM" into hour and minute.
func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// Compile-time interface check.
var _ cron.Job = (*Greeter)(nil)
