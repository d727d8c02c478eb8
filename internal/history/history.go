// Package history owns per-user conversation state: a bounded dialogue log
// and a long-term memory of remembered facts, both written through to the
// persist store on every mutation.
package history

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/banterlab/wanwan/internal/persist"
	"github.com/banterlab/wanwan/internal/provider"
)

// Backing table names in the persist store.
const (
	tableHistory = "chat_history"
	tableMemory  = "user_memory"
)

// DefaultMaxLen is the dialogue log cap applied when none is configured.
const DefaultMaxLen = 30

// Role identifies who produced a dialogue entry.
type Role string

// Role values.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one turn in a user's dialogue log. Immutable once created.
type Entry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Fact is a remembered key-value annotation about a user.
type Fact struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// memoryPromptHeader prefixes the rendered fact list injected into the
// system prompt.
const memoryPromptHeader = "\n## 你记住的关于对方的信息\n"

// Manager is the exclusive owner of the dialogue and memory tables.
// All methods are safe for concurrent use; each mutation is a single
// critical section covering the read-modify-write of its table.
type Manager struct {
	mu     sync.Mutex
	logs   map[string][]Entry
	memory map[string]map[string]Fact
	maxLen int
	store  *persist.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewManager loads both tables from store and returns a ready manager.
// Load failures are tolerated: the manager starts with empty tables and
// in-memory state stays authoritative even if persistence keeps failing.
func NewManager(store *persist.Store, maxLen int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	m := &Manager{
		logs:   make(map[string][]Entry),
		memory: make(map[string]map[string]Fact),
		maxLen: maxLen,
		store:  store,
		logger: logger,
		now:    time.Now,
	}

	if store != nil {
		if err := store.Load(tableHistory, &m.logs); err != nil {
			logger.Warn("history: loading dialogue table failed", "error", err)
		}
		if err := store.Load(tableMemory, &m.memory); err != nil {
			logger.Warn("history: loading memory table failed", "error", err)
		}
		logger.Info("history: loaded state",
			"users", len(m.logs), "memory_users", len(m.memory))
	}
	return m
}

// AddMessage appends a timestamped entry to the user's log, evicting the
// oldest entries beyond the configured cap, and persists the dialogue table.
func (m *Manager) AddMessage(userID string, role Role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := append(m.logs[userID], Entry{
		Role:      role,
		Content:   content,
		Timestamp: m.now(),
	})
	if over := len(log) - m.maxLen; over > 0 {
		log = append([]Entry(nil), log[over:]...)
	}
	m.logs[userID] = log

	m.saveHistory()
}

// History returns the user's log stripped of timestamps, oldest first,
// ready for inclusion in a completion request. Unknown users yield nil.
func (m *Manager) History(userID string) []provider.LLMMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logs[userID]
	if len(log) == 0 {
		return nil
	}
	out := make([]provider.LLMMessage, len(log))
	for i, e := range log {
		out[i] = provider.LLMMessage{Role: provider.MessageRole(e.Role), Content: e.Content}
	}
	return out
}

// RecentSummary returns the last count entries (or fewer), timestamps
// retained. count <= 0 defaults to 5.
func (m *Manager) RecentSummary(userID string, count int) []Entry {
	if count <= 0 {
		count = 5
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logs[userID]
	if len(log) > count {
		log = log[len(log)-count:]
	}
	out := make([]Entry, len(log))
	copy(out, log)
	return out
}

// Len returns the number of entries in the user's log.
func (m *Manager) Len(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs[userID])
}

// ClearHistory removes the user's log and persists. A no-op for unknown users.
func (m *Manager) ClearHistory(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.logs[userID]; !ok {
		return
	}
	delete(m.logs, userID)
	m.saveHistory()
}

// Remember upserts a fact about the user (last write wins) and persists the
// memory table.
func (m *Manager) Remember(userID, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	facts, ok := m.memory[userID]
	if !ok {
		facts = make(map[string]Fact)
		m.memory[userID] = facts
	}
	facts[key] = Fact{Value: value, UpdatedAt: m.now()}

	m.saveMemory()
	m.logger.Info("history: remembered fact", "user", userID, "key", key, "value", value)
}

// Memory returns a copy of the user's facts. Unknown users yield an empty map.
func (m *Manager) Memory(userID string) map[string]Fact {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Fact, len(m.memory[userID]))
	for k, v := range m.memory[userID] {
		out[k] = v
	}
	return out
}

// MemoryPrompt renders the user's facts as a bulleted section for direct
// concatenation onto the system prompt, or "" when nothing is remembered.
// Bullets are sorted by key so the prompt is stable across runs.
func (m *Manager) MemoryPrompt(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	facts := m.memory[userID]
	if len(facts) == 0 {
		return ""
	}

	keys := make([]string, 0, len(facts))
	for k := range facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(memoryPromptHeader)
	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(facts[k].Value)
	}
	return b.String()
}

// saveHistory persists the full dialogue table. Callers hold m.mu.
func (m *Manager) saveHistory() {
	if m.store == nil {
		return
	}
	if err := m.store.Save(tableHistory, m.logs); err != nil {
		m.logger.Error("history: persisting dialogue table failed", "error", err)
	}
}

// saveMemory persists the full memory table. Callers hold m.mu.
func (m *Manager) saveMemory() {
	if m.store == nil {
		return
	}
	if err := m.store.Save(tableMemory, m.memory); err != nil {
		m.logger.Error("history: persisting memory table failed", "error", err)
	}
}
