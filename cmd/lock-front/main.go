// Command lock-front runs the front unit: the keypad and display side of the
// door lock. Keys are typed at a readline prompt and the display is rendered
// to the terminal.
//
// Usage:
//
//	lock-front [flags]
//
// Examples:
//
//	# Talk to the back unit over a UART
//	lock-front -port /dev/ttyUSB0
//
//	# Connect to a back unit bridge found by mDNS
//	lock-front -transport tcp -discover
//
//	# Capture the protocol for lock-log
//	lock-front -port /dev/ttyUSB0 -protocol-log front.dlog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/doorlock-protocol/doorlock-go/internal/console"
	"github.com/doorlock-protocol/doorlock-go/internal/setup"
	"github.com/doorlock-protocol/doorlock-go/pkg/config"
	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	dlog "github.com/doorlock-protocol/doorlock-go/pkg/log"
	"github.com/doorlock-protocol/doorlock-go/pkg/protocol"
)

// keypadBuffer is how many typed keys may wait for the dispatcher.
const keypadBuffer = 32

func main() {
	flags := setup.BindFlags(flag.CommandLine)
	flag.Parse()

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "lock-front: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *setup.Flags) error {
	cfg, err := flags.Load(flag.CommandLine)
	if err != nil {
		return err
	}

	keypad := hal.NewChannelKeypad(keypadBuffer)
	defer keypad.Close()

	con, err := console.New("front> ", keypad)
	if err != nil {
		return err
	}

	logger, err := setup.Logger(cfg.Log, con.Stdout())
	if err != nil {
		return err
	}
	plog, closeCapture, err := setup.ProtocolLogger(cfg.Log, logger)
	if err != nil {
		return err
	}
	defer closeCapture()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	raw, err := openLink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer raw.Close()
	port := raw.Name()
	logger.Info("link open", "transport", cfg.Link.Transport, "port", port)

	front, err := protocol.NewFront(protocol.FrontConfig{
		Link:           setup.Wrap(raw, cfg.Link, plog, dlog.RoleFront, port),
		Keypad:         keypad,
		Display:        hal.NewTerminalDisplay(con.Stdout()),
		Waiter:         setup.Waiter(cfg.Tick),
		Threshold:      cfg.Lockout.Threshold,
		AlarmTicks:     cfg.Lockout.AlarmTicks,
		UnlockTicks:    cfg.Door.UnlockTicks,
		HoldTicks:      cfg.Door.HoldTicks,
		LockTicks:      cfg.Door.LockTicks,
		MessageHold:    cfg.Front.MessageHold,
		Logger:         logger,
		ProtocolLogger: plog,
	})
	if err != nil {
		return err
	}
	front.OnStateChange(func(from, to protocol.FrontState) {
		logger.Info("state changed", "from", from, "to", to)
	})

	con.Handle("status", "Show dispatcher state and failed attempts", func([]string) {
		fmt.Fprintf(con.Stdout(), "State: %s  Failures: %d/%d\n", front.State(), front.Failures(), cfg.Lockout.Threshold)
	})
	go con.Run(ctx, cancel)

	done := make(chan error, 1)
	go func() { done <- front.Run(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig)
	case <-ctx.Done():
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			logger.Error("front unit stopped", "error", err)
			return err
		}
	}

	cancel()
	logger.Info("shutting down")
	return nil
}

// openLink opens the stream link selected by cfg.
func openLink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*link.StreamLink, error) {
	switch cfg.Link.Transport {
	case config.TransportSerial:
		return setup.OpenSerial(cfg.Link)
	case config.TransportTCP:
		return setup.DialBridge(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("transport %q needs both units in one process; use lock-sim", cfg.Link.Transport)
	}
}
