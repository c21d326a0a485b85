package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 10 * time.Second
	pongTimeout        = 60 * time.Second
	pingInterval       = 30 * time.Second
)

// ErrNotConnected is returned by the send methods while no connection is up.
var ErrNotConnected = errors.New("not connected")

// WSClient manages the WebSocket connection to the game server.
type WSClient struct {
	url   string
	token string

	mu      sync.Mutex
	writeMu sync.Mutex // serialises all conn writes (ping, game messages)
	conn    *websocket.Conn
	seq     uint64
	pingCtx context.CancelFunc // cancels the active ping goroutine
}

// NewWSClient creates a client that connects to the given WebSocket URL.
func NewWSClient(url, token string) *WSClient {
	return &WSClient{url: url, token: token}
}

// --- Bubble Tea messages ---

// WSConnectedMsg is sent when the WebSocket connects.
type WSConnectedMsg struct{}

// WSDisconnectedMsg is sent when the connection drops.
type WSDisconnectedMsg struct{ Err error }

// WSRegistrationMsg answers a register_player request.
type WSRegistrationMsg struct{ Payload RegistrationStatusPayload }

// WSPlayerCountMsg carries the number of players online.
type WSPlayerCountMsg struct{ Payload PlayerCountPayload }

// WSRoundStartMsg announces a new round.
type WSRoundStartMsg struct{ Payload RoundStartPayload }

// WSRoundEndMsg closes the current round.
type WSRoundEndMsg struct{ Payload RoundEndPayload }

// WSClickResultMsg is the server's verdict on our click.
type WSClickResultMsg struct{ Payload ClickResultPayload }

// WSErrorMsg wraps a server-side error.
type WSErrorMsg struct{ Raw json.RawMessage }

// Listen returns a Bubble Tea command that connects and reports
// WSConnectedMsg. It retries with exponential backoff until ctx is done.
func (c *WSClient) Listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		delay := reconnectBaseDelay
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			var header http.Header
			if c.token != "" {
				header = http.Header{"Authorization": []string{"Bearer " + c.token}}
			}
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
			if err != nil {
				log.Warn().Err(err).Dur("retry_in", delay).Msg("ws dial failed")
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(delay):
				}
				delay = min(delay*2, reconnectMaxDelay)
				continue
			}

			// Cancel any previous ping goroutine.
			c.mu.Lock()
			if c.pingCtx != nil {
				c.pingCtx()
			}
			pingCtx, pingCancel := context.WithCancel(ctx)
			c.conn = conn
			c.seq = 0
			c.pingCtx = pingCancel
			c.mu.Unlock()

			go c.pingLoop(pingCtx, conn)

			log.Info().Str("url", c.url).Msg("ws connected")
			return WSConnectedMsg{}
		}
	}
}

// ReadLoop returns a Bubble Tea command that reads until the next game
// message. Callers re-issue it after handling each message.
func (c *WSClient) ReadLoop(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return WSDisconnectedMsg{Err: ErrNotConnected}
		}

		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongTimeout))
			return nil
		})
		conn.SetReadDeadline(time.Now().Add(pongTimeout))

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				c.mu.Lock()
				if c.conn == conn {
					c.conn = nil
				}
				c.mu.Unlock()
				conn.Close()
				log.Info().Err(err).Msg("ws disconnected")
				return WSDisconnectedMsg{Err: err}
			}

			var msg WSMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Warn().Err(err).Msg("ws: undecodable message")
				continue
			}

			c.mu.Lock()
			c.seq = msg.Seq
			c.mu.Unlock()

			if teaMsg := c.dispatch(msg); teaMsg != nil {
				return teaMsg
			}
		}
	}
}

// pingLoop sends periodic pings on the given connection. It exits when the
// context is cancelled or the connection changes.
func (c *WSClient) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			cc := c.conn
			c.mu.Unlock()
			if cc != conn {
				return
			}
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// RegisterPlayer sends register_player.
func (c *WSClient) RegisterPlayer(username string) error {
	return c.send(MsgRegisterPlayer, RegisterPlayerPayload{Username: username})
}

// JoinWaitingRoom signals readiness for the next round.
func (c *WSClient) JoinWaitingRoom() error {
	return c.send(MsgJoinWaitingRoom, nil)
}

// SendClick sends player_click. It is sent once; delivery is the
// transport's concern.
func (c *WSClient) SendClick(p PlayerClickPayload) error {
	return c.send(MsgPlayerClick, p)
}

// Connected reports whether a connection is currently up.
func (c *WSClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Seq returns the last seen sequence number.
func (c *WSClient) Seq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Close drops the current connection, if any.
func (c *WSClient) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	if c.pingCtx != nil {
		c.pingCtx()
		c.pingCtx = nil
	}
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *WSClient) send(t MessageType, payload any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	msg := WSMessage{Type: t}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", t, err)
		}
		msg.Payload = raw
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("sending %s: %w", t, err)
	}
	log.Debug().Str("type", string(t)).Msg("ws sent")
	return nil
}

func (c *WSClient) dispatch(msg WSMessage) tea.Msg {
	switch msg.Type {
	case MsgRegistrationStatus:
		var p RegistrationStatusPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			return WSRegistrationMsg{Payload: p}
		}
	case MsgPlayerCount:
		var p PlayerCountPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			return WSPlayerCountMsg{Payload: p}
		}
	case MsgRoundStart:
		var p RoundStartPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			return WSRoundStartMsg{Payload: p}
		}
	case MsgRoundEnd:
		var p RoundEndPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			return WSRoundEndMsg{Payload: p}
		}
	case MsgClickResult:
		var p ClickResultPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			return WSClickResultMsg{Payload: p}
		}
	case MsgError:
		return WSErrorMsg{Raw: msg.Payload}
	}
	log.Debug().Str("type", string(msg.Type)).Msg("ws: unhandled message")
	return nil
}
