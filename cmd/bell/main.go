package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/debt-notifier/internal/bus"
	"github.com/aliskhannn/debt-notifier/internal/config"
	"github.com/aliskhannn/debt-notifier/internal/presentation"
	"github.com/aliskhannn/debt-notifier/internal/tui"
	"github.com/aliskhannn/debt-notifier/pkg/client"
)

const logFile = "bell.log"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()

	// the terminal belongs to the tui.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to open log file")
	}
	defer f.Close()
	zlog.Logger = zlog.Logger.Output(f)

	cfg := config.Must()
	if cfg.Boundary.UserID == "" {
		zlog.Logger.Fatal().Msg("boundary.user_id is required")
	}

	api := client.New(cfg.Boundary.BackendURL)
	local := bus.New(0)

	presenter := presentation.NewPresenter(
		local,
		presentation.NewBell(api, cfg.Boundary.UserID),
		presentation.NewToastQueue(cfg.Presentation.ToastCap, cfg.Presentation.ToastDelay, nil),
	)

	go func() {
		if err := api.Relay(ctx, cfg.Boundary.UserID, local); err != nil && ctx.Err() == nil {
			zlog.Logger.Error().Err(err).Msg("live feed stopped")
		}
	}()

	go presenter.Run(ctx, tui.TickInterval)

	p := tea.NewProgram(tui.New(ctx, presenter), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		zlog.Logger.Error().Err(err).Msg("tui error")
	}
}
