// Package imbot is the thin layer between the IM platform adapter and the
// bot core. It decides which inbound events deserve a reply, routes photo
// requests, paces outbound text like a human typist, and leaves everything
// else to the reply pipeline.
package imbot

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/banterlab/wanwan/internal/channel"
	"github.com/banterlab/wanwan/internal/greeter"
	"github.com/banterlab/wanwan/internal/photo"
	"github.com/banterlab/wanwan/internal/reply"
)

// Observer is notified when an event is accepted for processing.
type Observer interface {
	MessageReceived()
}

// DefaultChannel is the channel name used when an event does not name one.
const DefaultChannel = "im"

// Handler routes normalized IM events.
type Handler struct {
	orch     *reply.Orchestrator
	greeter  *greeter.Greeter
	photos   *photo.Service
	channels *channel.Dispatcher
	images   channel.ImageSender
	logger   *slog.Logger

	observer   Observer
	targetUser string
	selfName   string
	defaultCh  string

	// pace simulates typing before each outbound text; sleep is swapped out
	// in tests.
	pace  bool
	sleep func(time.Duration)
}

// Options tune the handler.
type Options struct {
	// TargetUser restricts private replies to one contact name. Empty means
	// reply to everyone.
	TargetUser string
	// SelfName is the bot's display name, used to recognize group mentions.
	SelfName string
	// Pace enables human-like typing delays before outbound text.
	Pace bool
	// Images delivers photo bytes when the transport supports it.
	Images channel.ImageSender
	// Observer is notified per accepted event. May be nil.
	Observer Observer
	// DefaultChannel overrides where channel-less events are answered.
	DefaultChannel string
}

// NewHandler wires the event handler. greeter and photos may be nil when
// those features are not configured.
func NewHandler(orch *reply.Orchestrator, g *greeter.Greeter, photos *photo.Service, channels *channel.Dispatcher, opts Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	defaultCh := opts.DefaultChannel
	if defaultCh == "" {
		defaultCh = DefaultChannel
	}
	return &Handler{
		orch:       orch,
		greeter:    g,
		photos:     photos,
		channels:   channels,
		images:     opts.Images,
		logger:     logger,
		observer:   opts.Observer,
		targetUser: opts.TargetUser,
		selfName:   opts.SelfName,
		defaultCh:  defaultCh,
		pace:       opts.Pace,
		sleep:      time.Sleep,
	}
}

// Login is called by the adapter once the IM session is up. A configured
// target user becomes the proactive-greeting recipient immediately.
func (h *Handler) Login(userName string) {
	h.logger.Info("imbot: logged in", "self", userName)
	if userName != "" {
		h.selfName = userName
	}
	if h.greeter != nil && h.targetUser != "" {
		h.greeter.SetTarget(h.targetUser)
	}
}

// Logout is called when the IM session drops. Greetings stop until the next
// login or private message.
func (h *Handler) Logout(reason string) {
	h.logger.Info("imbot: logged out", "reason", reason)
	if h.greeter != nil {
		h.greeter.ClearTarget()
	}
}

// HandleEvent processes one inbound event. It never returns an error: every
// failure is logged and the event dropped, because the IM adapter has no
// sensible way to retry a conversation turn.
func (h *Handler) HandleEvent(ctx context.Context, ev Event) {
	if ev.FromSelf {
		return
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}
	ev = NewEvent(ev)

	if ev.Group {
		h.handleGroup(ctx, ev, text)
		return
	}
	h.handlePrivate(ctx, ev, text)
}

// handleGroup replies in a group only when the bot is addressed, so it does
// not butt into every conversation.
func (h *Handler) handleGroup(ctx context.Context, ev Event, text string) {
	if !ev.Mentioned && !strings.Contains(text, h.selfName) {
		return
	}
	clean := strings.TrimSpace(h.stripMention(text))
	if clean == "" {
		return
	}
	h.notify()
	h.logger.Info("imbot: group message",
		"event", ev.ID, "topic", ev.GroupTopic, "sender", ev.SenderName)

	// Group members share nothing with the private dialogue: each member
	// gets an isolated identity in the group context.
	out := h.orch.Reply(ctx, "group:"+ev.SenderName, clean)
	h.deliver(ctx, ev.Channel, ev.GroupID, "@"+ev.SenderName+" "+out)
}

func (h *Handler) handlePrivate(ctx context.Context, ev Event, text string) {
	if h.targetUser != "" && ev.SenderName != h.targetUser {
		h.logger.Debug("imbot: ignoring non-target sender", "sender", ev.SenderName)
		return
	}
	h.notify()
	h.logger.Info("imbot: private message", "event", ev.ID, "sender", ev.SenderName)

	// First private contact becomes the proactive-greeting recipient.
	if h.greeter != nil && h.greeter.Target() == "" {
		h.greeter.SetTarget(ev.SenderID)
	}

	if h.photos != nil {
		switch {
		case photo.IsScenePhotoRequest(text):
			h.deliverPhoto(ctx, ev, h.photos.ScenePhoto(ctx, text))
			return
		case photo.IsSelfieRequest(text):
			h.deliverPhoto(ctx, ev, h.photos.Selfie(ctx, text))
			return
		}
	}

	out := h.orch.Reply(ctx, ev.SenderID, text)
	h.deliver(ctx, ev.Channel, ev.SenderID, out)
}

// deliver paces and sends one outbound text on the event's channel.
func (h *Handler) deliver(ctx context.Context, channelName, recipientID, text string) {
	if channelName == "" {
		channelName = h.defaultCh
	}
	if h.pace {
		h.sleep(reply.TypingDelay(text, nil))
	}
	if err := h.channels.SendVia(ctx, channelName, recipientID, text); err != nil {
		h.logger.Error("imbot: send failed",
			"channel", channelName, "recipient", recipientID, "error", err)
	}
}

// deliverPhoto sends a photo reply: lead-in text, then the image with its
// caption when one was generated, or just the caption (the excuse) when not.
func (h *Handler) deliverPhoto(ctx context.Context, ev Event, r photo.Reply) {
	if r.Lead != "" {
		h.deliver(ctx, ev.Channel, ev.SenderID, r.Lead)
	}

	if r.ImageURL == "" || h.images == nil {
		h.deliver(ctx, ev.Channel, ev.SenderID, r.Caption)
		return
	}

	data, err := h.photos.Download(ctx, r.ImageURL)
	if err != nil {
		h.logger.Error("imbot: photo download failed", "error", err)
		h.deliver(ctx, ev.Channel, ev.SenderID, r.Caption)
		return
	}
	if err := h.images.SendImage(ctx, ev.SenderID, data, r.Caption); err != nil {
		h.logger.Error("imbot: image send failed", "recipient", ev.SenderID, "error", err)
	}
}

func (h *Handler) notify() {
	if h.observer != nil {
		h.observer.MessageReceived()
	}
}

// stripMention removes the "@self" prefix from a group message so the model
// only sees the actual question.
func (h *Handler) stripMention(text string) string {
	if h.selfName == "" {
		return text
	}
	re := regexp.MustCompile("@" + regexp.QuoteMeta(h.selfName) + `\s*`)
	return re.ReplaceAllString(text, "")
}
