package boundary

import (
	"context"
	"fmt"
	"time"

	"github.com/wb-go/wbf/zlog"
)

// DeviceConfig describes the boundary of one device.
type DeviceConfig struct {
	Version    string
	DeviceID   string
	BackendURL string
	Retention  time.Duration
	Store      RecordStore // nil means in memory
	Shell      map[string][]byte
}

// Device is a booted boundary. Its worker loops stop with the boot context.
type Device struct {
	Registration *Registration
	Client       *Client
	Monitor      *ConnectivityMonitor
	Tray         *Tray
	Windows      *Windows
}

// Start installs cfg.Version with its offline shell and wires the monitor to
// sync the boundary whenever the backend comes back.
func Start(ctx context.Context, cfg DeviceConfig) (*Device, error) {
	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("start boundary: empty device id")
	}

	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}

	d := &Device{Tray: NewTray(), Windows: NewWindows()}

	d.Registration = NewRegistration(ctx, Config{
		Store:     store,
		Renderer:  d.Tray,
		Windows:   d.Windows,
		Confirmer: NewHTTPConfirmer(cfg.BackendURL, cfg.DeviceID, nil),
		Retention: cfg.Retention,
	})
	d.Client = NewClient(d.Registration, cfg.DeviceID)
	d.Monitor = NewConnectivityMonitor(cfg.BackendURL, nil, d.Client.Sync)

	if _, err := d.Registration.Install(cfg.Version, cfg.Shell); err != nil {
		return nil, fmt.Errorf("start boundary: %w", err)
	}

	zlog.Logger.Info().
		Str("device_id", cfg.DeviceID).
		Str("version", cfg.Version).
		Int("shell_assets", len(cfg.Shell)).
		Msg("boundary started")

	return d, nil
}
