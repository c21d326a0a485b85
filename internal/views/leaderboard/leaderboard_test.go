package leaderboard

import (
	"strings"
	"testing"

	"github.com/reaction-game/tui/internal/client"
)

func sample() []client.LeaderboardEntry {
	return []client.LeaderboardEntry{
		{PlayerID: "p1", Username: "alice", AvgTime: 0.25, RoundsPlayed: 4},
		{PlayerID: "p2", Username: "bob", AvgTime: 0.5, RoundsPlayed: 2},
	}
}

func TestBarsSettleOnTargets(t *testing.T) {
	m := New()
	m.SetEntries(sample())
	if !m.Animating() {
		t.Fatal("new bars should animate from zero")
	}
	for i := 0; i < 600 && m.Step(); i++ {
	}
	if m.Animating() {
		t.Fatal("bars did not settle")
	}
	if got := m.bars["p1"].pos; got != 0.5 {
		t.Errorf("alice bar = %v, want 0.5", got)
	}
	if got := m.bars["p2"].pos; got != 1 {
		t.Errorf("bob bar = %v, want 1", got)
	}
}

func TestSetEntriesKeepsExistingBars(t *testing.T) {
	m := New()
	m.SetEntries(sample())
	for m.Step() {
	}
	next := sample()
	next[0].AvgTime = 0.5
	m.SetEntries(next)
	if m.bars["p1"].pos != 0.5 {
		t.Errorf("existing bar should start from its settled length, got %v", m.bars["p1"].pos)
	}
	if m.bars["p1"].target != 1 {
		t.Errorf("target = %v, want 1", m.bars["p1"].target)
	}
}

func TestViewHighlightsAndPrompts(t *testing.T) {
	m := New()
	m.Width = 90
	m.SetEntries(sample())

	m.Current = "bob"
	v := m.View()
	for _, want := range []string{"alice", "bob", "0.250s", "0.500s"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(v, "Play a round") {
		t.Error("listed player should not get the prompt")
	}
	if m.Rank("bob") != 2 {
		t.Errorf("Rank(bob) = %d", m.Rank("bob"))
	}

	m.Current = "carol"
	if !strings.Contains(m.View(), "Play a round to appear on the leaderboard!") {
		t.Error("unlisted player should see the prompt")
	}
}

func TestViewEmpty(t *testing.T) {
	m := New()
	if !strings.Contains(m.View(), "No rounds played yet") {
		t.Error("empty leaderboard should say so")
	}
}
