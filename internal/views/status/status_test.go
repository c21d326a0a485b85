package status

import (
	"strings"
	"testing"

	"github.com/reaction-game/tui/internal/client"
)

func TestViewShowsSessionSummary(t *testing.T) {
	m := New()
	m.Width = 100
	m.Connected = true
	m.Phase = "waiting"
	m.Username = "alice"
	m.PlayerCount = 3
	m.Server = &client.ServerStatus{Status: "running", ActivePlayers: 3}

	v := m.View()
	for _, want := range []string{"Connected", "waiting", "alice", "3 online", "server: running"} {
		if !strings.Contains(v, want) {
			t.Errorf("status bar missing %q:\n%s", want, v)
		}
	}
}

func TestViewDisconnected(t *testing.T) {
	m := New()
	v := m.View()
	if !strings.Contains(v, "Connecting") {
		t.Error("status bar should show 'Connecting' when offline")
	}
	if strings.Contains(v, "server:") {
		t.Error("no server status before the probe answers")
	}
}
