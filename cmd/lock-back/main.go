// Command lock-back runs the back unit: the credential store and the door
// actuator side of the door lock. The actuator and buzzer are simulated and
// report every command in the log.
//
// With the serial transport the unit serves one UART until shutdown. With the
// tcp transport it listens on a bridge address, optionally advertised by
// mDNS, and serves one front unit connection at a time.
//
// Usage:
//
//	lock-back [flags]
//
// Examples:
//
//	# Serve a UART with a file-backed store
//	lock-back -config back.yaml -port /dev/ttyUSB1
//
//	# Serve a TCP bridge and advertise it
//	lock-back -transport tcp -address :7015 -discover
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

	"github.com/doorlock-protocol/doorlock-go/internal/setup"
	"github.com/doorlock-protocol/doorlock-go/pkg/config"
	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	dlog "github.com/doorlock-protocol/doorlock-go/pkg/log"
	"github.com/doorlock-protocol/doorlock-go/pkg/protocol"
	"github.com/doorlock-protocol/doorlock-go/pkg/store"
	"github.com/doorlock-protocol/doorlock-go/pkg/tick"
)

func main() {
	flags := setup.BindFlags(flag.CommandLine)
	flag.Parse()

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "lock-back: %v\n", err)
		os.Exit(1)
	}
}

// unit holds what outlives a single link session.
type unit struct {
	cfg      *config.Config
	logger   *slog.Logger
	plog     dlog.Logger
	store    store.Store
	actuator hal.Actuator
	buzzer   hal.Buzzer
	waiter   tick.Waiter
}

func run(flags *setup.Flags) error {
	cfg, err := flags.Load(flag.CommandLine)
	if err != nil {
		return err
	}

	logger, err := setup.Logger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	plog, closeCapture, err := setup.ProtocolLogger(cfg.Log, logger)
	if err != nil {
		return err
	}
	defer closeCapture()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(ctx, cfg.Store.Options())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	u := &unit{
		cfg:      cfg,
		logger:   logger,
		plog:     plog,
		store:    st,
		actuator: hal.NewRecordingActuator(logger),
		buzzer:   hal.NewRecordingBuzzer(logger),
		waiter:   setup.Waiter(cfg.Tick),
	}
	logger.Info("back unit starting", "store", cfg.Store.Kind, "base_address", fmt.Sprintf("0x%04X", cfg.Store.BaseAddress))

	switch cfg.Link.Transport {
	case config.TransportSerial:
		sl, err := setup.OpenSerial(cfg.Link)
		if err != nil {
			return err
		}
		defer sl.Close()
		err = u.serve(ctx, sl)
		if errors.Is(err, context.Canceled) {
			logger.Info("shutting down")
			return nil
		}
		return err
	case config.TransportTCP:
		return u.listen(ctx)
	default:
		return fmt.Errorf("transport %q needs both units in one process; use lock-sim", cfg.Link.Transport)
	}
}

// listen accepts front unit connections one after another until ctx is done.
func (u *unit) listen(ctx context.Context) error {
	bridge, err := setup.ListenBridge(ctx, u.cfg, u.logger)
	if err != nil {
		return err
	}
	defer bridge.Close()
	u.logger.Info("bridge listening", "address", bridge.Addr().String(), "unit_id", bridge.UnitID, "advertised", u.cfg.Discovery.Enabled)

	for {
		sl, err := bridge.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				u.logger.Info("shutting down")
				return nil
			}
			return err
		}
		u.logger.Info("front unit connected", "remote", sl.Name())

		err = u.serve(ctx, sl)
		sl.Close()
		if ctx.Err() != nil {
			u.logger.Info("shutting down")
			return nil
		}
		u.logger.Warn("front unit disconnected", "remote", sl.Name(), "error", err)
	}
}

// serve runs a back dispatcher on one link until the link fails or ctx is
// done.
func (u *unit) serve(ctx context.Context, sl *link.StreamLink) error {
	back, err := protocol.NewBack(protocol.BackConfig{
		Link:           setup.Wrap(sl, u.cfg.Link, u.plog, dlog.RoleBack, sl.Name()),
		Store:          u.store,
		Actuator:       u.actuator,
		Buzzer:         u.buzzer,
		Waiter:         u.waiter,
		BaseAddress:    u.cfg.Store.BaseAddress,
		Threshold:      u.cfg.Lockout.Threshold,
		AlarmTicks:     u.cfg.Lockout.AlarmTicks,
		Door:           u.cfg.Door.Sequencer(),
		Logger:         u.logger,
		ProtocolLogger: u.plog,
	})
	if err != nil {
		return err
	}

	if back.Vault().Provisioned(ctx) {
		u.logger.Info("credential present; the front unit replaces it at startup")
	} else {
		u.logger.Info("no credential stored")
	}

	back.OnStateChange(func(from, to protocol.BackState) {
		if to == protocol.BackWaitAction {
			s := back.Status()
			u.logger.Info("round finished", "from", from, "door_cycles", s.DoorCycles, "alarms", s.AlarmActivations, "desyncs", s.Desyncs)
		}
	})
	return back.Run(ctx)
}
