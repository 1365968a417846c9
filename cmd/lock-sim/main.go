// Command lock-sim runs the front and back units in one process, joined by an
// in-memory link. Keys come from a script or from a readline prompt.
//
// Usage:
//
//	lock-sim [flags]
//
// Examples:
//
//	# Create a credential, open the door, then fail three times
//	lock-sim -script "12345#12345# +12345# +00000# 00000# 00000#"
//
//	# Walk through every feature with a random credential
//	lock-sim -demo
//
//	# Type keys interactively with a slow, realistic tick
//	lock-sim -tick 1s
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doorlock-protocol/doorlock-go/internal/console"
	"github.com/doorlock-protocol/doorlock-go/internal/setup"
	"github.com/doorlock-protocol/doorlock-go/pkg/config"
	"github.com/doorlock-protocol/doorlock-go/pkg/credential"
	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	dlog "github.com/doorlock-protocol/doorlock-go/pkg/log"
	"github.com/doorlock-protocol/doorlock-go/pkg/protocol"
	"github.com/doorlock-protocol/doorlock-go/pkg/store"
)

const pollInterval = 10 * time.Millisecond

var (
	configFile  = flag.String("config", "", "Configuration file path (YAML)")
	script      = flag.String("script", "", "Keys to press, e.g. \"12345#12345#+12345#\"; interactive when empty")
	demo        = flag.Bool("demo", false, "Run a scripted tour with a random credential: create, open, change, open, lockout")
	tickFlag    = flag.Duration("tick", 20*time.Millisecond, "Tick interval")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
	protocolLog = flag.String("protocol-log", "", "Write a protocol capture (.dlog) to this file")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lock-sim: %v\n", err)
		os.Exit(1)
	}
}

// sim is both units wired together.
type sim struct {
	front    *protocol.Front
	back     *protocol.Back
	actuator *hal.RecordingActuator
	buzzer   *hal.RecordingBuzzer
}

func loadConfig() (*config.Config, error) {
	cfg, err := setup.LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	cfg.Link.Transport = config.TransportPipe
	cfg.Tick.Interval = *tickFlag
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *protocolLog != "" {
		cfg.Log.ProtocolFile = *protocolLog
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *demo {
		tour, err := demoScript()
		if err != nil {
			return err
		}
		*script = tour
	}
	if *script != "" {
		keys, rejected := console.ParseKeys(*script)
		if len(rejected) > 0 {
			return fmt.Errorf("script contains keys the keypad does not have: %q", string(rejected))
		}
		keypad := hal.NewScriptedKeypad(keys...)
		return runScript(ctx, cancel, cfg, keypad)
	}
	return runInteractive(ctx, cancel, cfg)
}

// demoScript creates a random credential, opens the door with it, changes it
// to a second random credential, opens the door again and finally fails three
// times in a row to sound the alarm.
func demoScript() (string, error) {
	first, err := credential.Generate()
	if err != nil {
		return "", err
	}
	second, err := credential.Generate()
	if err != nil {
		return "", err
	}
	wrong := wrongFor(second)

	a, b, w := first.Reveal()+"#", second.Reveal()+"#", wrong.Reveal()+"#"
	return a + a + "+" + a + "-" + a + b + b + "+" + b + "+" + w + w + w, nil
}

// wrongFor returns a credential that differs from c in the first position.
func wrongFor(c credential.Credential) credential.Credential {
	wrong := c
	wrong[0] = '0' + (c[0]-'0'+1)%10
	return wrong
}

func runScript(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, keypad *hal.ScriptedKeypad) error {
	logger, err := setup.Logger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	s, done, closeSim, err := start(ctx, cfg, keypad, hal.NewTerminalDisplay(os.Stdout), logger)
	if err != nil {
		return err
	}
	defer closeSim()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	idle := 0
	for idle < 2 {
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if keypad.Remaining() == 0 && s.front.State() == protocol.FrontMenu && s.back.State() == protocol.BackWaitAction {
			idle++
		} else {
			idle = 0
		}
	}
	cancel()

	s.summary(ctx, os.Stdout)
	return nil
}

func runInteractive(ctx context.Context, cancel context.CancelFunc, cfg *config.Config) error {
	keypad := hal.NewChannelKeypad(32)
	defer keypad.Close()

	con, err := console.New("sim> ", keypad)
	if err != nil {
		return err
	}
	logger, err := setup.Logger(cfg.Log, con.Stdout())
	if err != nil {
		return err
	}

	s, done, closeSim, err := start(ctx, cfg, keypad, hal.NewTerminalDisplay(con.Stdout()), logger)
	if err != nil {
		return err
	}
	defer closeSim()

	con.Handle("status", "Show both units", func([]string) {
		s.summary(ctx, con.Stdout())
	})
	go con.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig)
	case <-ctx.Done():
	case err := <-done:
		return err
	}
	cancel()
	return nil
}

// start wires both units over a pipe and runs them. done receives the first
// dispatcher error other than cancellation.
func start(ctx context.Context, cfg *config.Config, keypad hal.Keypad, display hal.Display, logger *slog.Logger) (*sim, <-chan error, func(), error) {
	plog, closeCapture, err := setup.ProtocolLogger(cfg.Log, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := store.Open(ctx, cfg.Store.Options())
	if err != nil {
		closeCapture()
		return nil, nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	frontEnd, backEnd := link.Pipe()
	closeSim := func() {
		frontEnd.Close()
		backEnd.Close()
		st.Close()
		closeCapture()
	}

	s := &sim{
		actuator: hal.NewRecordingActuator(logger.With("unit", "back")),
		buzzer:   hal.NewRecordingBuzzer(logger.With("unit", "back")),
	}
	s.front, err = protocol.NewFront(protocol.FrontConfig{
		Link:           setup.Wrap(frontEnd, cfg.Link, plog, dlog.RoleFront, "pipe"),
		Keypad:         keypad,
		Display:        display,
		Waiter:         setup.Waiter(cfg.Tick),
		Threshold:      cfg.Lockout.Threshold,
		AlarmTicks:     cfg.Lockout.AlarmTicks,
		UnlockTicks:    cfg.Door.UnlockTicks,
		HoldTicks:      cfg.Door.HoldTicks,
		LockTicks:      cfg.Door.LockTicks,
		MessageHold:    cfg.Front.MessageHold,
		Logger:         logger.With("unit", "front"),
		ProtocolLogger: plog,
	})
	if err != nil {
		closeSim()
		return nil, nil, nil, err
	}
	s.back, err = protocol.NewBack(protocol.BackConfig{
		Link:           setup.Wrap(backEnd, cfg.Link, plog, dlog.RoleBack, "pipe"),
		Store:          st,
		Actuator:       s.actuator,
		Buzzer:         s.buzzer,
		Waiter:         setup.Waiter(cfg.Tick),
		BaseAddress:    cfg.Store.BaseAddress,
		Threshold:      cfg.Lockout.Threshold,
		AlarmTicks:     cfg.Lockout.AlarmTicks,
		Door:           cfg.Door.Sequencer(),
		Logger:         logger.With("unit", "back"),
		ProtocolLogger: plog,
	})
	if err != nil {
		closeSim()
		return nil, nil, nil, err
	}

	done := make(chan error, 2)
	for _, runner := range []func(context.Context) error{s.back.Run, s.front.Run} {
		go func() {
			if err := runner(ctx); err != nil && !errors.Is(err, context.Canceled) {
				done <- err
			}
		}()
	}
	return s, done, closeSim, nil
}

func (s *sim) summary(ctx context.Context, w io.Writer) {
	bs := s.back.Status()
	provisioned := "no"
	if s.back.Vault().Provisioned(context.WithoutCancel(ctx)) {
		provisioned = "yes"
	}
	fmt.Fprintln(w, "=== Simulation ===")
	fmt.Fprintf(w, "Front:       %s (failures %d)\n", s.front.State(), s.front.Failures())
	fmt.Fprintf(w, "Back:        %s (failures %d, desyncs %d)\n", bs.State, bs.Failures, bs.Desyncs)
	fmt.Fprintf(w, "Door:        %s, %d cycles\n", bs.Door, bs.DoorCycles)
	fmt.Fprintf(w, "Alarm:       %s, %d episodes, buzzer on %d times\n", bs.Alarm, bs.AlarmActivations, s.buzzer.Activations())
	fmt.Fprintf(w, "Actuator:    %d commands\n", len(s.actuator.Commands()))
	fmt.Fprintf(w, "Credential:  stored %s\n", provisioned)
}
