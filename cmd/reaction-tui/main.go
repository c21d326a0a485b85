package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/reaction-game/tui/internal/app"
	"github.com/reaction-game/tui/internal/audio"
	"github.com/reaction-game/tui/internal/client"
	"github.com/reaction-game/tui/internal/config"
	"github.com/reaction-game/tui/internal/identity"
	"github.com/reaction-game/tui/internal/logging"
	"github.com/reaction-game/tui/internal/report"
	"github.com/reaction-game/tui/internal/round"
	"github.com/reaction-game/tui/internal/session"
)

func main() {
	cfgPath := flag.String("config", "", "Path to a YAML or TOML config file")
	wsURL := flag.String("url", "", "WebSocket URL of the game server (overrides config)")
	token := flag.String("token", "", "Auth token (if the server requires it)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *wsURL != "" {
		cfg.Server.URL = *wsURL
	}
	if *token != "" {
		cfg.Server.Token = *token
	}

	logFile, err := logging.Setup(cfg.Log.Level, cfg.LogFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("client exited")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	clock := clockwork.NewRealClock()

	ws := client.NewWSClient(cfg.Server.URL, cfg.Server.Token)
	defer ws.Close()
	httpClient := client.NewHTTPClient(client.DeriveHTTPBase(cfg.Server.URL), cfg.Server.Token)

	player := audio.NewPlayer(audio.Settings{Enabled: cfg.Audio.Enabled, Volume: cfg.Audio.Volume}, clock, nil)
	defer player.Close()

	sched := round.NewClockScheduler(clock, 64)
	ctrl := session.New(session.Deps{
		Outbound: ws,
		Reporter: report.New(ws, clock),
		Identity: identity.NewStore(cfg.ResolvedStateDir()),
		Sound:    player,
		Dispatcher: round.NewDispatcher(round.Env{
			Clock:     clock,
			Scheduler: sched,
			Rand:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
			Options:   cfg.RoundOptions(),
		}),
		Clock: clock,
	})
	defer ctrl.Close()

	log.Info().Str("url", cfg.Server.URL).Str("state_dir", cfg.ResolvedStateDir()).Msg("starting client")

	m := app.New(app.Options{
		WS:         ws,
		HTTP:       httpClient,
		Controller: ctrl,
		Timers:     sched.Events(),
	})
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
