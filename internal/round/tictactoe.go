package round

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	boardSize             = 3
	defaultTicTacToeDelay = 3 * time.Second
)

// Board is a tic-tac-toe grid; "" marks an empty cell.
type Board [boardSize][boardSize]string

type ticTacToeConfig struct {
	Instructions string      `json:"instructions"`
	Delay        *float64    `json:"delay"`
	Board        [][]*string `json:"board"`
	MaxDuration  *float64    `json:"max_duration"`
}

// TicTacToe shows a static board after a delay. The first click on an
// empty cell resolves; occupied cells are ignored.
type TicTacToe struct {
	lifecycle
	delay   time.Duration
	board   Board
	clicked *Cell
}

func newTicTacToe(env Env, payload json.RawMessage) (Engine, error) {
	var cfg ticTacToeConfig
	if err := decodePayload(payload, &cfg); err != nil {
		return nil, err
	}
	board, err := parseBoard(cfg.Board)
	if err != nil {
		return nil, err
	}
	return &TicTacToe{
		lifecycle: newLifecycle(env, TagTicTacToe, cfg.Instructions, "Tic-Tac-Toe board will appear soon..."),
		delay:     seconds(cfg.Delay, defaultTicTacToeDelay),
		board:     board,
	}, nil
}

func parseBoard(rows [][]*string) (Board, error) {
	var b Board
	if rows == nil {
		return b, nil
	}
	if len(rows) != boardSize {
		return b, fmt.Errorf("board has %d rows, want %d", len(rows), boardSize)
	}
	for r, row := range rows {
		if len(row) != boardSize {
			return b, fmt.Errorf("board row %d has %d cells, want %d", r, len(row), boardSize)
		}
		for c, v := range row {
			if v != nil {
				b[r][c] = *v
			}
		}
	}
	return b, nil
}

// Board returns the displayed board.
func (t *TicTacToe) Board() Board { return t.board }

// Clicked returns the resolving cell, if any.
func (t *TicTacToe) Clicked() (Cell, bool) {
	if t.clicked == nil {
		return Cell{}, false
	}
	return *t.clicked, true
}

// Empty reports whether c is on the board and unoccupied.
func (t *TicTacToe) Empty(c Cell) bool {
	if c.Row < 0 || c.Row >= boardSize || c.Col < 0 || c.Col >= boardSize {
		return false
	}
	return t.board[c.Row][c.Col] == ""
}

func (t *TicTacToe) Start() Effect {
	t.schedule(timerArm, t.delay)
	return Effect{}
}

func (t *TicTacToe) Fire(ev TimerFired) Effect {
	if !t.accept(ev) || ev.Key != timerArm || t.phase != PhasePending {
		return Effect{}
	}
	t.arm(t.clock.Now(), "Find and click on the winning move for X!")
	return Effect{Cue: CueSuccess}
}

func (t *TicTacToe) Interact(in Interaction) Effect {
	if t.phase != PhaseArmed || in.Cell == nil || !t.Empty(*in.Cell) {
		return Effect{}
	}
	c := *in.Cell
	eff := t.resolve(ClickReport{ClickTime: in.At, Outcome: OutcomeHit, Cell: &c}, "Move submitted.", CueNone)
	if eff.Report != nil {
		t.clicked = &c
	}
	return eff
}
