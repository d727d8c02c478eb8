package imbot

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/banterlab/wanwan/internal/channel"
	"github.com/banterlab/wanwan/internal/greeter"
	"github.com/banterlab/wanwan/internal/history"
	"github.com/banterlab/wanwan/internal/persona"
	"github.com/banterlab/wanwan/internal/photo"
	"github.com/banterlab/wanwan/internal/provider"
	"github.com/banterlab/wanwan/internal/provider/providertest"
	"github.com/banterlab/wanwan/internal/reply"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newOrchestrator(t *testing.T, re string) *reply.Orchestrator {
	t.Helper()
	mock := &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{Content: re}, nil
		},
	}
	h := history.NewManager(nil, history.DefaultMaxLen, testLogger())
	return reply.NewOrchestrator(h, mock, persona.Character{}, testLogger(), nil)
}

func newChannels(t *testing.T) (*channel.Dispatcher, *channel.MockSender) {
	t.Helper()
	sender := &channel.MockSender{}
	channels := channel.NewDispatcher()
	if err := channels.Register(DefaultChannel, sender); err != nil {
		t.Fatalf("register channel: %v", err)
	}
	return channels, sender
}

func newHandler(t *testing.T, generated string, opts Options) (*Handler, *channel.MockSender) {
	t.Helper()
	channels, sender := newChannels(t)
	h := NewHandler(newOrchestrator(t, generated), nil, nil, channels, opts, testLogger())
	h.sleep = func(time.Duration) {}
	return h, sender
}

func TestHandlePrivateMessage(t *testing.T) {
	t.Parallel()

	h, sender := newHandler(t, "在呢在呢", Options{})
	h.HandleEvent(context.Background(), Event{SenderID: "u1", SenderName: "小明", Text: "在吗"})

	sends := sender.Sends()
	if len(sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(sends))
	}
	if sends[0].RecipientID != "u1" || sends[0].Text != "在呢在呢" {
		t.Errorf("send = %+v", sends[0])
	}
}

func TestHandleRoutesNamedChannel(t *testing.T) {
	t.Parallel()

	channels, imSender := newChannels(t)
	other := &channel.MockSender{}
	if err := channels.Register("web", other); err != nil {
		t.Fatalf("register channel: %v", err)
	}
	h := NewHandler(newOrchestrator(t, "来啦"), nil, nil, channels, Options{}, testLogger())
	h.sleep = func(time.Duration) {}

	h.HandleEvent(context.Background(), Event{Channel: "web", SenderID: "u1", SenderName: "小明", Text: "在吗"})

	if got := len(imSender.Sends()); got != 0 {
		t.Errorf("default channel got %d sends, want 0", got)
	}
	sends := other.Sends()
	if len(sends) != 1 || sends[0].RecipientID != "u1" {
		t.Fatalf("web channel sends = %+v, want one to u1", sends)
	}
}

func TestHandleDropsSelfAndEmpty(t *testing.T) {
	t.Parallel()

	h, sender := newHandler(t, "x", Options{})
	h.HandleEvent(context.Background(), Event{SenderID: "self", Text: "hi", FromSelf: true})
	h.HandleEvent(context.Background(), Event{SenderID: "u1", Text: "   "})

	if len(sender.Sends()) != 0 {
		t.Errorf("sends = %v, want none", sender.Sends())
	}
}

func TestHandleTargetUserFilter(t *testing.T) {
	t.Parallel()

	h, sender := newHandler(t, "x", Options{TargetUser: "小红"})
	h.HandleEvent(context.Background(), Event{SenderID: "u1", SenderName: "小明", Text: "你好"})
	if len(sender.Sends()) != 0 {
		t.Fatalf("non-target sender got a reply: %v", sender.Sends())
	}

	h.HandleEvent(context.Background(), Event{SenderID: "u2", SenderName: "小红", Text: "你好"})
	if len(sender.Sends()) != 1 {
		t.Errorf("target sender got %d replies, want 1", len(sender.Sends()))
	}
}

func TestHandleGroupRequiresMention(t *testing.T) {
	t.Parallel()

	h, sender := newHandler(t, "好呀", Options{SelfName: "晚晚"})

	ev := Event{SenderID: "u1", SenderName: "小明", Text: "随便聊聊", Group: true, GroupID: "g1"}
	h.HandleEvent(context.Background(), ev)
	if len(sender.Sends()) != 0 {
		t.Fatalf("unmentioned group message got a reply")
	}

	ev.Text = "@晚晚 今晚出来玩吗"
	ev.Mentioned = true
	h.HandleEvent(context.Background(), ev)

	sends := sender.Sends()
	if len(sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(sends))
	}
	if sends[0].RecipientID != "g1" {
		t.Errorf("group reply went to %q, want the group", sends[0].RecipientID)
	}
	if !strings.HasPrefix(sends[0].Text, "@小明 ") {
		t.Errorf("group reply %q must address the sender", sends[0].Text)
	}
}

func TestHandleGroupStripsMention(t *testing.T) {
	t.Parallel()

	mock := &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{Content: "嗯"}, nil
		},
	}
	hist := history.NewManager(nil, history.DefaultMaxLen, testLogger())
	orch := reply.NewOrchestrator(hist, mock, persona.Character{}, testLogger(), nil)

	channels, _ := newChannels(t)
	h := NewHandler(orch, nil, nil, channels, Options{SelfName: "晚晚"}, testLogger())
	h.sleep = func(time.Duration) {}

	h.HandleEvent(context.Background(), Event{
		SenderID: "u1", SenderName: "小明",
		Text: "@晚晚 你吃了吗", Group: true, GroupID: "g1", Mentioned: true,
	})

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("Complete called %d times", len(reqs))
	}
	last := reqs[0].Messages[len(reqs[0].Messages)-1]
	if last.Content != "你吃了吗" {
		t.Errorf("model saw %q, want mention stripped", last.Content)
	}

	// The group identity is isolated from any private dialogue with 小明.
	if hist.Len("group:小明") != 2 {
		t.Errorf("group identity history = %d entries, want 2", hist.Len("group:小明"))
	}
	if hist.Len("u1") != 0 {
		t.Errorf("private identity must stay untouched, has %d entries", hist.Len("u1"))
	}
}

func TestHandleArmsGreeterOnFirstPrivateMessage(t *testing.T) {
	t.Parallel()

	gsender := &channel.MockSender{}
	g, err := greeter.New(greeter.Config{Enabled: true}, gsender, testLogger())
	if err != nil {
		t.Fatalf("greeter.New: %v", err)
	}

	channels, _ := newChannels(t)
	h := NewHandler(newOrchestrator(t, "嗨"), g, nil, channels, Options{}, testLogger())
	h.sleep = func(time.Duration) {}

	h.HandleEvent(context.Background(), Event{SenderID: "u1", SenderName: "小明", Text: "早"})
	if g.Target() != "u1" {
		t.Errorf("greeter target = %q, want first private sender", g.Target())
	}

	// A second sender does not steal the slot.
	h.HandleEvent(context.Background(), Event{SenderID: "u2", SenderName: "小红", Text: "早"})
	if g.Target() != "u1" {
		t.Errorf("greeter target = %q, want original sender kept", g.Target())
	}
}

func TestLoginLogout(t *testing.T) {
	t.Parallel()

	g, err := greeter.New(greeter.Config{Enabled: true}, &channel.MockSender{}, testLogger())
	if err != nil {
		t.Fatalf("greeter.New: %v", err)
	}
	channels, _ := newChannels(t)
	h := NewHandler(newOrchestrator(t, "x"), g, nil, channels, Options{TargetUser: "小红"}, testLogger())

	h.Login("晚晚")
	if g.Target() != "小红" {
		t.Errorf("login did not arm configured target, got %q", g.Target())
	}

	h.Logout("connection lost")
	if g.Target() != "" {
		t.Errorf("logout did not clear target, got %q", g.Target())
	}
}

func TestHandleRoutesPhotoRequests(t *testing.T) {
	t.Parallel()

	// Disabled photo service: requests are answered with text excuses and
	// never reach the LLM.
	client, err := photo.NewClient(photo.Config{}, testLogger())
	if err != nil {
		t.Fatalf("photo.NewClient: %v", err)
	}
	photos := photo.NewService(client, testLogger())

	mock := &providertest.MockProvider{
		CompleteFunc: func(_ context.Context, _ provider.CompletionRequest) (provider.CompletionResponse, error) {
			return provider.CompletionResponse{Content: "不该打到这里"}, nil
		},
	}
	hist := history.NewManager(nil, history.DefaultMaxLen, testLogger())
	orch := reply.NewOrchestrator(hist, mock, persona.Character{}, testLogger(), nil)

	channels, sender := newChannels(t)
	h := NewHandler(orch, nil, photos, channels, Options{}, testLogger())
	h.sleep = func(time.Duration) {}

	h.HandleEvent(context.Background(), Event{SenderID: "u1", SenderName: "小明", Text: "发张自拍"})
	h.HandleEvent(context.Background(), Event{SenderID: "u1", SenderName: "小明", Text: "看看团团"})

	if mock.CompleteCalls() != 0 {
		t.Errorf("photo requests reached the LLM %d times", mock.CompleteCalls())
	}
	sends := sender.Sends()
	if len(sends) != 2 {
		t.Fatalf("sends = %d, want 2 excuses", len(sends))
	}
	for _, s := range sends {
		if s.Text == "" {
			t.Errorf("empty excuse sent: %+v", s)
		}
	}
}

type countingObserver struct{ n int }

func (c *countingObserver) MessageReceived() { c.n++ }

func TestHandleNotifiesObserver(t *testing.T) {
	t.Parallel()

	obs := &countingObserver{}
	h, _ := newHandler(t, "x", Options{Observer: obs})

	h.HandleEvent(context.Background(), Event{SenderID: "u1", SenderName: "a", Text: "hi"})
	h.HandleEvent(context.Background(), Event{SenderID: "u1", Text: "hi", FromSelf: true})

	if obs.n != 1 {
		t.Errorf("observer notified %d times, want 1 (accepted events only)", obs.n)
	}
}

func TestNewEventAssignsID(t *testing.T) {
	t.Parallel()

	ev := NewEvent(Event{Text: "hi"})
	if ev.ID == "" {
		t.Error("NewEvent left ID empty")
	}
	kept := NewEvent(Event{ID: "fixed", Text: "hi"})
	if kept.ID != "fixed" {
		t.Errorf("NewEvent replaced existing ID with %q", kept.ID)
	}
}
