// Package setup wires configuration into the loggers, links, stores and tick
// sources used by the lock commands.
package setup

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/doorlock-protocol/doorlock-go/pkg/config"
	"github.com/doorlock-protocol/doorlock-go/pkg/discovery"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	"github.com/doorlock-protocol/doorlock-go/pkg/log"
	"github.com/doorlock-protocol/doorlock-go/pkg/tick"
)

// LoadConfig loads path, or returns the defaults when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// Logger builds the operational logger writing to w.
func Logger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// ProtocolLogger returns the protocol event sink: the capture file when
// configured, and the operational logger at debug level. The returned close
// function flushes the capture file.
func ProtocolLogger(cfg config.LogConfig, logger *slog.Logger) (log.Logger, func() error, error) {
	var sinks []log.Logger
	closeFn := func() error { return nil }

	if cfg.ProtocolFile != "" {
		fl, err := log.NewFileLogger(cfg.ProtocolFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create protocol logger: %w", err)
		}
		sinks = append(sinks, fl)
		closeFn = fl.Close
	}
	if logger != nil && logger.Enabled(context.Background(), slog.LevelDebug) {
		sinks = append(sinks, log.NewSlogAdapter(logger))
	}

	switch len(sinks) {
	case 0:
		return log.NoopLogger{}, closeFn, nil
	case 1:
		return sinks[0], closeFn, nil
	default:
		return log.NewMultiLogger(sinks...), closeFn, nil
	}
}

// Waiter returns a tick counter running at the configured interval.
func Waiter(cfg config.TickConfig) *tick.Counter {
	return tick.NewCounterWithInterval(tick.NewTicker(), cfg.Interval)
}

// Wrap applies the receive timeout and protocol logging to a raw link.
func Wrap(raw link.Link, cfg config.LinkConfig, plog log.Logger, role log.Role, port string) link.Link {
	return link.WithLogger(link.WithReceiveTimeout(raw, cfg.ReceiveTimeout), plog, role, port)
}

// OpenSerial opens the configured UART.
func OpenSerial(cfg config.LinkConfig) (*link.StreamLink, error) {
	return link.OpenSerial(cfg.Serial())
}

// DialBridge connects the front unit to a back unit's TCP bridge. When
// discovery is enabled or the address names no host, the bridge is located
// by mDNS.
func DialBridge(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*link.StreamLink, error) {
	address := cfg.Link.Address
	if cfg.Discovery.Enabled || address == "" || address[0] == ':' {
		browser := discovery.NewBrowser(discovery.BrowserConfig{
			BrowseTimeout: cfg.Discovery.Timeout,
			Interface:     cfg.Discovery.Interface,
		})
		svc, err := browser.Find(ctx, cfg.Discovery.UnitID)
		if err != nil {
			return nil, fmt.Errorf("failed to discover back unit: %w", err)
		}
		address = svc.Address()
		logger.Info("discovered back unit", "instance", svc.InstanceName, "address", address, "unit_id", svc.UnitID)
	}

	return link.Dial(ctx, link.DialConfig{
		Address:        address,
		ConnectTimeout: cfg.Link.ConnectTimeout,
		MaxAttempts:    cfg.Link.MaxAttempts,
		Logger:         logger,
	})
}

// Bridge is a listening back unit bridge, advertised by mDNS when enabled.
type Bridge struct {
	*link.Bridge
	advertiser *discovery.Advertiser
	UnitID     string
}

// ListenBridge opens the back unit's TCP bridge.
func ListenBridge(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Bridge, error) {
	lb, err := link.Listen(cfg.Link.Address)
	if err != nil {
		return nil, err
	}
	b := &Bridge{Bridge: lb, UnitID: cfg.Discovery.UnitID}
	if b.UnitID == "" {
		b.UnitID = uuid.NewString()
	}
	if !cfg.Discovery.Enabled {
		return b, nil
	}

	b.advertiser = discovery.NewAdvertiser(discovery.AdvertiserConfig{
		Interface: cfg.Discovery.Interface,
		TTL:       discovery.DefaultTTL,
		Logger:    logger,
	})
	info := &discovery.BridgeInfo{
		UnitID: b.UnitID,
		Name:   cfg.Discovery.Name,
		Port:   uint16(lb.Port()),
	}
	if err := b.advertiser.Advertise(ctx, info); err != nil {
		lb.Close()
		return nil, err
	}
	return b, nil
}

// Close stops advertising and closes the listener.
func (b *Bridge) Close() error {
	if b.advertiser != nil {
		b.advertiser.Stop()
	}
	return b.Bridge.Close()
}
