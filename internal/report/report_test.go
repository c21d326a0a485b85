package report

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/reaction-game/tui/internal/client"
	"github.com/reaction-game/tui/internal/round"
)

type recordingSender struct {
	sent []client.PlayerClickPayload
	err  error
}

func (s *recordingSender) SendClick(p client.PlayerClickPayload) error {
	s.sent = append(s.sent, p)
	return s.err
}

func TestReportStampsClientNow(t *testing.T) {
	clickAt := time.Unix(1700000000, 0)
	clock := clockwork.NewFakeClockAt(clickAt.Add(1500 * time.Millisecond))
	s := &recordingSender{}

	err := New(s, clock).Report(round.ClickReport{
		Tag:       round.TagColorChange,
		ClickTime: clickAt,
		Outcome:   round.OutcomeHit,
	})
	if err != nil {
		t.Fatalf("Report() error: %v", err)
	}
	if len(s.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(s.sent))
	}
	p := s.sent[0]
	if p.ClientClick != 1700000000 {
		t.Errorf("ClientClick = %v", p.ClientClick)
	}
	if p.ClientNow != 1700000001.5 {
		t.Errorf("ClientNow = %v, want 1700000001.5", p.ClientNow)
	}
	if p.Position != nil {
		t.Errorf("Position = %v, want nil", p.Position)
	}
	if p.RoundType != string(round.TagColorChange) {
		t.Errorf("RoundType = %q", p.RoundType)
	}
}

func TestPayloadPosition(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tests := []struct {
		name string
		in   round.ClickReport
		want any
	}{
		{"point", round.ClickReport{Point: &round.Point{X: 0.3, Y: 0.6}}, client.Position{X: 0.3, Y: 0.6}},
		{"cell", round.ClickReport{Cell: &round.Cell{Row: 2, Col: 1}}, client.CellPosition{Row: 2, Col: 1}},
		{"none", round.ClickReport{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Payload(tt.in, now).Position; got != tt.want {
				t.Errorf("Position = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPayloadCarriesRegionAndBrightness(t *testing.T) {
	v := 64
	p := Payload(round.ClickReport{
		Tag:        round.TagBrightness,
		Region:     round.RegionBad,
		Brightness: &v,
	}, time.Now())
	if p.Region != "bad" {
		t.Errorf("Region = %q", p.Region)
	}
	if p.Brightness == nil || *p.Brightness != 64 {
		t.Errorf("Brightness = %v", p.Brightness)
	}
}

func TestReportDoesNotRetry(t *testing.T) {
	s := &recordingSender{err: client.ErrNotConnected}
	err := New(s, clockwork.NewFakeClock()).Report(round.ClickReport{Tag: round.TagClickBox})
	if !errors.Is(err, client.ErrNotConnected) {
		t.Errorf("Report() error = %v, want ErrNotConnected", err)
	}
	if len(s.sent) != 1 {
		t.Errorf("sent %d times, want exactly 1", len(s.sent))
	}
}
