// Package app wires the whole bot together: persistence, history, the LLM
// provider, the reply pipeline, proactive greetings, photo generation, the
// IM event handler, and the operational HTTP gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/banterlab/wanwan/internal/channel"
	"github.com/banterlab/wanwan/internal/config"
	"github.com/banterlab/wanwan/internal/cron"
	"github.com/banterlab/wanwan/internal/gateway"
	"github.com/banterlab/wanwan/internal/greeter"
	"github.com/banterlab/wanwan/internal/history"
	"github.com/banterlab/wanwan/internal/imbot"
	"github.com/banterlab/wanwan/internal/persist"
	"github.com/banterlab/wanwan/internal/photo"
	"github.com/banterlab/wanwan/internal/provider/openaicompat"
	"github.com/banterlab/wanwan/internal/reply"
)

// Options carry the pieces that come from outside the config file.
type Options struct {
	// Sender delivers outbound text. When nil, outbound messages are logged
	// and dropped, which keeps the process runnable without a transport.
	Sender channel.Sender

	// Images delivers photo bytes when the transport supports it.
	Images channel.ImageSender

	// Registry overrides the Prometheus registry. Nil uses the process
	// default.
	Registry *prometheus.Registry
}

// App is the assembled bot.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	handler  *imbot.Handler
	channels *channel.Dispatcher
	greeter  *greeter.Greeter
	sched    *cron.Scheduler
	gateway  *gateway.Server
	metrics  *gateway.Metrics
}

// New builds the full object graph from a validated config.
func New(cfg *config.Config, opts Options, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sender := opts.Sender
	if sender == nil {
		sender = logSender(logger)
	}
	channels := channel.NewDispatcher()
	if err := channels.Register(imbot.DefaultChannel, sender); err != nil {
		return nil, err
	}

	store, err := persist.New(cfg.DataDir, logger)
	if err != nil {
		return nil, err
	}
	hist := history.NewManager(store, cfg.History.MaxMessages, logger)

	llm, err := openaicompat.New(cfg.Provider, logger)
	if err != nil {
		return nil, err
	}

	var metrics *gateway.Metrics
	var observer reply.Observer
	if cfg.Gateway.Enabled {
		metrics = gateway.NewMetrics(opts.Registry)
		observer = metrics
	}

	orch := reply.NewOrchestrator(hist, llm, cfg.Character, logger, observer)

	g, err := greeter.New(cfg.Scheduler, sender, logger)
	if err != nil {
		return nil, err
	}
	if metrics != nil {
		g.OnDeliver = metrics.GreetingSent
	}

	sched := cron.NewScheduler(logger)
	if err := g.Init(sched); err != nil {
		return nil, err
	}

	photoClient, err := photo.NewClient(cfg.Photo, logger)
	if err != nil {
		return nil, err
	}
	photos := photo.NewService(photoClient, logger)

	var imObserver imbot.Observer
	if metrics != nil {
		imObserver = metrics
	}
	handler := imbot.NewHandler(orch, g, photos, channels, imbot.Options{
		TargetUser: cfg.TargetUser,
		SelfName:   cfg.Character.Name,
		Pace:       cfg.Pace(),
		Images:     opts.Images,
		Observer:   imObserver,
	}, logger)

	a := &App{
		cfg:      cfg,
		logger:   logger,
		handler:  handler,
		channels: channels,
		greeter:  g,
		sched:    sched,
		metrics:  metrics,
	}

	if cfg.Gateway.Enabled {
		srv, err := gateway.NewServer(cfg.Gateway, metrics, cfg.Character.Name, llm.ModelName(), logger)
		if err != nil {
			return nil, err
		}
		a.gateway = srv
	}

	return a, nil
}

// Handler returns the IM event handler for the platform adapter to call.
func (a *App) Handler() *imbot.Handler {
	return a.handler
}

// Channels returns the outbound dispatcher so adapters can register
// additional transports beyond the default one.
func (a *App) Channels() *channel.Dispatcher {
	return a.channels
}

// Start brings up the background pieces: the greeting tick and the HTTP
// gateway.
func (a *App) Start() error {
	if err := a.sched.Start(); err != nil {
		return fmt.Errorf("app: start scheduler: %w", err)
	}
	if a.gateway != nil {
		if err := a.gateway.Start(); err != nil {
			a.sched.Stop(context.Background()) //nolint:errcheck // already failing
			return err
		}
	}
	a.logger.Info("app started",
		"character", a.cfg.Character.Name,
		"model", a.cfg.Provider.Model,
		"scheduler", a.cfg.Scheduler.Enabled,
		"gateway", a.cfg.Gateway.Enabled)
	return nil
}

// Stop shuts everything down, collecting errors rather than stopping at the
// first one.
func (a *App) Stop(ctx context.Context) error {
	var errs []error
	if a.gateway != nil {
		if err := a.gateway.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.sched.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// logSender drops outbound messages into the log. It stands in when no IM
// transport is attached, so greetings and replies are still visible.
func logSender(logger *slog.Logger) channel.Sender {
	return channel.SenderFunc(func(_ context.Context, recipientID, text string) error {
		logger.Info("outbound message (no transport)", "recipient", recipientID, "text", text)
		return nil
	})
}
