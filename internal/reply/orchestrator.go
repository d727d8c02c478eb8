// Package reply builds outbound replies: it recognizes commands, extracts
// memorable facts from the inbound text, assembles the persona prompt with
// remembered facts and bounded history, and delegates generation to the
// LLM backend, always answering in character even when generation fails.
package reply

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/banterlab/wanwan/internal/history"
	"github.com/banterlab/wanwan/internal/persona"
	"github.com/banterlab/wanwan/internal/provider"
)

// In-character fallback replies, chosen by coarse failure classification.
// The raw error is logged with full detail but never shown to the user.
const (
	fallbackRateLimited = "等一下嘛，我脑子转不过来了😵‍💫"
	fallbackGeneric     = "啊...信号不太好的样子，你再说一遍？😅"
)

// Canned command responses.
const (
	confirmCleared = "好的，我把之前的聊天记录都忘掉啦～我们重新开始吧😊"
	helpText       = "🔧 可用命令\n/清除记忆 - 清空对话历史\n/状态 - 查看当前状态\n/帮助 - 显示此帮助"
)

// Observer receives pipeline events for metrics. All methods may be called
// concurrently; implementations must be cheap.
type Observer interface {
	ReplyGenerated()
	GenerationFailed(kind provider.Kind)
	CommandHandled(cmd Command)
	FactExtracted()
}

// nopObserver is used when no observer is wired.
type nopObserver struct{}

func (nopObserver) ReplyGenerated()                  {}
func (nopObserver) GenerationFailed(_ provider.Kind) {}
func (nopObserver) CommandHandled(_ Command)         {}
func (nopObserver) FactExtracted()                   {}

// Orchestrator runs the per-message reply pipeline.
type Orchestrator struct {
	history   *history.Manager
	llm       provider.Provider
	character persona.Character
	logger    *slog.Logger
	observer  Observer
	now       func() time.Time
}

// NewOrchestrator wires the pipeline. observer may be nil.
func NewOrchestrator(h *history.Manager, llm provider.Provider, c persona.Character, logger *slog.Logger, observer Observer) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	c.Defaults()
	return &Orchestrator{
		history:   h,
		llm:       llm,
		character: c,
		logger:    logger,
		observer:  observer,
		now:       time.Now,
	}
}

// Reply produces the outbound text for one inbound message. It always
// returns something sendable: a command response, a generated reply, or an
// in-character fallback.
//
// Facts and the user turn are recorded before generation, so the message
// that just arrived informs the very prompt that answers it, and a failure
// mid-generation still leaves the user's own words durably recorded.
//
// Two concurrent calls for the same user can interleave at the generation
// call; callers needing strict per-user ordering must serialize upstream.
func (o *Orchestrator) Reply(ctx context.Context, userID, input string) string {
	if cmd := ParseCommand(input); cmd != CmdNone {
		o.observer.CommandHandled(cmd)
		return o.handleCommand(cmd, userID)
	}

	o.extractFacts(userID, input)

	o.history.AddMessage(userID, history.RoleUser, input)

	system := persona.SystemPrompt(o.character, o.now()) + o.history.MemoryPrompt(userID)
	messages := append(
		[]provider.LLMMessage{{Role: provider.MessageRoleSystem, Content: system}},
		o.history.History(userID)...,
	)

	resp, err := o.llm.Complete(ctx, provider.CompletionRequest{Messages: messages})
	if err != nil {
		kind := provider.Classify(err)
		o.logger.Error("reply: generation failed",
			"user", userID, "kind", kind.String(), "error", err)
		o.observer.GenerationFailed(kind)
		if kind == provider.KindRateLimited {
			return fallbackRateLimited
		}
		return fallbackGeneric
	}

	o.history.AddMessage(userID, history.RoleAssistant, resp.Content)
	o.logger.Info("reply: generated",
		"user", userID, "tokens", resp.Usage.TotalTokens)
	o.observer.ReplyGenerated()
	return resp.Content
}

// extractFacts records every matching fact from the input. Isolated from
// the reply path: a panic inside extraction must never lose the reply.
func (o *Orchestrator) extractFacts(userID, input string) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("reply: fact extraction panicked", "user", userID, "panic", r)
		}
	}()

	for _, f := range history.ExtractFacts(input) {
		o.history.Remember(userID, f.Key, f.Value)
		o.observer.FactExtracted()
	}
}

// handleCommand answers a recognized command without touching dialogue state
// other than what the command itself asks for.
func (o *Orchestrator) handleCommand(cmd Command, userID string) string {
	switch cmd {
	case CmdClearHistory:
		o.history.ClearHistory(userID)
		return confirmCleared
	case CmdStatus:
		return fmt.Sprintf("📊 当前状态\n对话记录: %d条\n记住的信息: %d条\nAI模型: %s\n时间段: %s",
			o.history.Len(userID),
			len(o.history.Memory(userID)),
			o.llm.ModelName(),
			persona.TimePeriod(o.now()),
		)
	case CmdHelp:
		return helpText
	default:
		return ""
	}
}
