package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDeriveHTTPBase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ws://localhost:5000/ws", "http://localhost:5000"},
		{"wss://game.example.com/socket.io", "https://game.example.com"},
		{"::bad::", "http://127.0.0.1:5000"},
		{"", "http://127.0.0.1:5000"},
	}
	for _, tt := range tests {
		if got := DeriveHTTPBase(tt.in); got != tt.want {
			t.Errorf("DeriveHTTPBase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetStatus(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"running","active_players":4,"current_round":{"type":"TicTacToeRound"}}`))
	}))
	defer srv.Close()

	s, err := NewHTTPClient(srv.URL+"/", "tok").GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus() error: %v", err)
	}
	if s.Status != "running" || s.ActivePlayers != 4 {
		t.Errorf("status = %+v", s)
	}
	if s.CurrentRound["type"] != "TicTacToeRound" {
		t.Errorf("current_round = %v", s.CurrentRound)
	}
	if auth != "Bearer tok" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestGetStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewHTTPClient(srv.URL, "").GetStatus(context.Background()); err == nil {
		t.Error("expected error for 503")
	}
}
