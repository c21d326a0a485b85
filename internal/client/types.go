// Package client provides WebSocket and HTTP clients for the reaction game
// server. Types mirror the server wire protocol.
package client

import (
	"encoding/json"
	"time"
)

// MessageType identifies the kind of WebSocket message.
type MessageType string

// Inbound.
const (
	MsgRegistrationStatus MessageType = "registration_status"
	MsgPlayerCount        MessageType = "player_count"
	MsgRoundStart         MessageType = "round_start"
	MsgRoundEnd           MessageType = "round_end"
	MsgClickResult        MessageType = "click_result"
	MsgError              MessageType = "error"
)

// Outbound.
const (
	MsgRegisterPlayer  MessageType = "register_player"
	MsgJoinWaitingRoom MessageType = "join_waiting_room"
	MsgPlayerClick     MessageType = "player_click"
)

// WSMessage is the envelope for all WebSocket messages.
type WSMessage struct {
	Type    MessageType     `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Inbound payloads ---

// RoundStartPayload announces a round. RoundData is decoded by the
// engine for RoundType.
type RoundStartPayload struct {
	RoundType string          `json:"round_type"`
	RoundData json.RawMessage `json:"round_data"`
}

// GameState is attached to a registration so a late joiner can enter a
// round already in progress.
type GameState struct {
	Status      string             `json:"status"`
	Leaderboard []LeaderboardEntry `json:"leaderboard,omitempty"`
	RoundType   string             `json:"round_type,omitempty"`
	RoundData   json.RawMessage    `json:"round_data,omitempty"`
}

// Round returns the in-progress round carried by the state, if any.
func (g *GameState) Round() (RoundStartPayload, bool) {
	if g == nil || g.RoundType == "" {
		return RoundStartPayload{}, false
	}
	return RoundStartPayload{RoundType: g.RoundType, RoundData: g.RoundData}, true
}

// RegistrationStatusPayload answers register_player.
type RegistrationStatusPayload struct {
	Success         bool       `json:"success"`
	PlayerID        string     `json:"player_id"`
	Username        string     `json:"username,omitempty"`
	RoundInProgress bool       `json:"round_in_progress"`
	GameState       *GameState `json:"game_state,omitempty"`
}

// PlayerCountPayload is broadcast when players join or leave.
type PlayerCountPayload struct {
	Count int `json:"count"`
}

// RoundResult is one player's outcome for a round.
type RoundResult struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	ReactionTime float64 `json:"reaction_time"`
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	PlayerID     string  `json:"player_id"`
	Username     string  `json:"username"`
	AvgTime      float64 `json:"avg_time"`
	RoundsPlayed int     `json:"rounds_played"`
}

// RoundEndPayload closes a round.
type RoundEndPayload struct {
	Results     map[string]RoundResult `json:"results"`
	Leaderboard []LeaderboardEntry     `json:"leaderboard"`
}

// ClickResultPayload is the server's immediate answer to player_click.
type ClickResultPayload struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	ReactionTime float64 `json:"reaction_time,omitempty"`
}

// --- Outbound payloads ---

// RegisterPlayerPayload requests registration under a username.
type RegisterPlayerPayload struct {
	Username string `json:"username"`
}

// PlayerClickPayload reports the interaction that resolved a round. Times
// are seconds since the Unix epoch. Position holds either a Position or a
// CellPosition.
type PlayerClickPayload struct {
	RoundType   string  `json:"round_type,omitempty"`
	ClientClick float64 `json:"client_click"`
	ClientNow   float64 `json:"client_now"`
	Position    any     `json:"position,omitempty"`
	Outcome     string  `json:"outcome,omitempty"`
	Region      string  `json:"region,omitempty"`
	Brightness  *int    `json:"brightness,omitempty"`
}

// Position is a surface-normalized click position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CellPosition is a board cell.
type CellPosition struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// EpochSeconds converts t to fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// --- HTTP response types ---

// ServerStatus is returned by /api/status.
type ServerStatus struct {
	Status        string         `json:"status"`
	ActivePlayers int            `json:"active_players"`
	CurrentRound  map[string]any `json:"current_round"`
}
