package history_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/banterlab/wanwan/internal/history"
	"github.com/banterlab/wanwan/internal/persist"
	"github.com/banterlab/wanwan/internal/provider"
)

func newStore(t *testing.T, dir string) *persist.Store {
	t.Helper()
	store, err := persist.New(dir, nil)
	if err != nil {
		t.Fatalf("persist.New: %v", err)
	}
	return store
}

func TestAddMessage_FIFOEviction(t *testing.T) {
	t.Parallel()

	const maxLen = 30
	m := history.NewManager(nil, maxLen, nil)

	total := maxLen + 13
	for i := 0; i < total; i++ {
		m.AddMessage("u1", history.RoleUser, fmt.Sprintf("msg-%d", i))
	}

	got := m.History("u1")
	if len(got) != maxLen {
		t.Fatalf("History length = %d, want %d", len(got), maxLen)
	}
	// The surviving entries are the last maxLen, in original order.
	for i, msg := range got {
		want := fmt.Sprintf("msg-%d", total-maxLen+i)
		if msg.Content != want {
			t.Errorf("History[%d] = %q, want %q", i, msg.Content, want)
		}
	}
}

func TestHistory_StripsTimestampsAndRoles(t *testing.T) {
	t.Parallel()

	m := history.NewManager(nil, 0, nil)
	m.AddMessage("u1", history.RoleUser, "你好")
	m.AddMessage("u1", history.RoleAssistant, "你好呀～")

	got := m.History("u1")
	if len(got) != 2 {
		t.Fatalf("History length = %d, want 2", len(got))
	}
	if got[0].Role != provider.MessageRoleUser || got[1].Role != provider.MessageRoleAssistant {
		t.Errorf("roles = %q, %q", got[0].Role, got[1].Role)
	}
}

func TestHistory_UnknownUser(t *testing.T) {
	t.Parallel()

	m := history.NewManager(nil, 0, nil)
	if got := m.History("nobody"); got != nil {
		t.Errorf("History(unknown) = %v, want nil", got)
	}
}

func TestRecentSummary(t *testing.T) {
	t.Parallel()

	m := history.NewManager(nil, 0, nil)
	for i := 0; i < 8; i++ {
		m.AddMessage("u1", history.RoleUser, fmt.Sprintf("msg-%d", i))
	}

	tests := []struct {
		name      string
		count     int
		wantLen   int
		wantFirst string
	}{
		{name: "default count", count: 0, wantLen: 5, wantFirst: "msg-3"},
		{name: "fewer than stored", count: 3, wantLen: 3, wantFirst: "msg-5"},
		{name: "more than stored", count: 20, wantLen: 8, wantFirst: "msg-0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := m.RecentSummary("u1", tt.count)
			if len(got) != tt.wantLen {
				t.Fatalf("RecentSummary length = %d, want %d", len(got), tt.wantLen)
			}
			if got[0].Content != tt.wantFirst {
				t.Errorf("RecentSummary[0] = %q, want %q", got[0].Content, tt.wantFirst)
			}
			if got[0].Timestamp.IsZero() {
				t.Error("RecentSummary entries must retain timestamps")
			}
		})
	}
}

func TestClearHistory(t *testing.T) {
	t.Parallel()

	m := history.NewManager(nil, 0, nil)
	m.AddMessage("u1", history.RoleUser, "hello")

	m.ClearHistory("u1")
	if got := m.History("u1"); len(got) != 0 {
		t.Errorf("History after clear = %v, want empty", got)
	}

	// Clearing a never-seen user is a no-op, not an error.
	m.ClearHistory("ghost")
	if got := m.History("ghost"); len(got) != 0 {
		t.Errorf("History(ghost) = %v, want empty", got)
	}
}

func TestRemember_OverwriteLaw(t *testing.T) {
	t.Parallel()

	m := history.NewManager(nil, 0, nil)

	m.Remember("u1", "名字", "小明")
	if got := m.Memory("u1")["名字"].Value; got != "小明" {
		t.Fatalf("Memory[名字] = %q, want 小明", got)
	}

	m.Remember("u1", "名字", "小红")
	mem := m.Memory("u1")
	if got := mem["名字"].Value; got != "小红" {
		t.Errorf("Memory[名字] after overwrite = %q, want 小红", got)
	}
	if len(mem) != 1 {
		t.Errorf("Memory size = %d, want 1 (overwrite, not append)", len(mem))
	}
}

func TestMemory_UnknownUser(t *testing.T) {
	t.Parallel()

	m := history.NewManager(nil, 0, nil)
	mem := m.Memory("nobody")
	if mem == nil || len(mem) != 0 {
		t.Errorf("Memory(unknown) = %v, want empty map", mem)
	}
}

func TestMemoryPrompt(t *testing.T) {
	t.Parallel()

	m := history.NewManager(nil, 0, nil)

	if got := m.MemoryPrompt("u1"); got != "" {
		t.Errorf("MemoryPrompt with no facts = %q, want empty", got)
	}

	m.Remember("u1", "名字", "小明")
	m.Remember("u1", "生日", "3月15日")
	m.Remember("u1", "宠物", "一只橘猫")

	prompt := m.MemoryPrompt("u1")
	if prompt == "" {
		t.Fatal("MemoryPrompt with facts should not be empty")
	}
	for _, want := range []string{"小明", "3月15日", "一只橘猫", "## 你记住的关于对方的信息"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("MemoryPrompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestPersistence_RestartRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	m1 := history.NewManager(newStore(t, dir), 0, nil)
	m1.AddMessage("u1", history.RoleUser, "我喜欢吃火锅")
	m1.AddMessage("u1", history.RoleAssistant, "那我们下次一起去吃呀")
	m1.AddMessage("u2", history.RoleUser, "hello")
	m1.Remember("u1", "喜欢的食物", "火锅")
	m1.ClearHistory("u2")

	// Simulated restart: a fresh manager over the same directory.
	m2 := history.NewManager(newStore(t, dir), 0, nil)

	got := m2.History("u1")
	if len(got) != 2 {
		t.Fatalf("History after restart = %d entries, want 2", len(got))
	}
	if got[0].Content != "我喜欢吃火锅" || got[1].Content != "那我们下次一起去吃呀" {
		t.Errorf("History order lost across restart: %+v", got)
	}
	if len(m2.History("u2")) != 0 {
		t.Error("cleared user reappeared after restart")
	}
	if got := m2.Memory("u1")["喜欢的食物"].Value; got != "火锅" {
		t.Errorf("Memory after restart = %q, want 火锅", got)
	}
}

func TestLen(t *testing.T) {
	t.Parallel()

	m := history.NewManager(nil, 0, nil)
	if m.Len("u1") != 0 {
		t.Error("Len of unknown user should be 0")
	}
	m.AddMessage("u1", history.RoleUser, "a")
	m.AddMessage("u1", history.RoleAssistant, "b")
	if got := m.Len("u1"); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
}
