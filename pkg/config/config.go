// Package config loads the YAML configuration shared by the lock commands.
//
// Every field has a default (see Default), so a file only needs the values it
// changes:
//
//	link:
//	  transport: serial
//	  port: /dev/ttyUSB0
//	store:
//	  kind: file
//	  path: /var/lib/doorlock/eeprom.json
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/doorlock-protocol/doorlock-go/pkg/credential"
	"github.com/doorlock-protocol/doorlock-go/pkg/door"
	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	"github.com/doorlock-protocol/doorlock-go/pkg/lockout"
	"github.com/doorlock-protocol/doorlock-go/pkg/protocol"
	"github.com/doorlock-protocol/doorlock-go/pkg/store"
	"github.com/doorlock-protocol/doorlock-go/pkg/tick"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Transport names a link transport.
type Transport string

// Link transports.
const (
	TransportPipe   Transport = "pipe"
	TransportSerial Transport = "serial"
	TransportTCP    Transport = "tcp"
)

// Config is the complete configuration of a lock unit.
type Config struct {
	Link      LinkConfig      `yaml:"link"`
	Tick      TickConfig      `yaml:"tick"`
	Store     StoreConfig     `yaml:"store"`
	Door      DoorConfig      `yaml:"door"`
	Lockout   LockoutConfig   `yaml:"lockout"`
	Front     FrontConfig     `yaml:"front"`
	Log       LogConfig       `yaml:"log"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// LinkConfig selects the serial link between the units.
type LinkConfig struct {
	// Transport is pipe (single process), serial or tcp.
	Transport Transport `yaml:"transport"`

	// Port is the UART device for the serial transport.
	Port string `yaml:"port"`

	// BaudRate of the UART.
	BaudRate int `yaml:"baud_rate"`

	// Address is the bridge address for the tcp transport: the listen
	// address on the back unit, the dial address on the front unit. An
	// empty dial address uses discovery.
	Address string `yaml:"address"`

	// ReceiveTimeout turns a silent peer into a stalled round. It does not
	// apply to waits for a person at the peer unit. Zero waits forever.
	ReceiveTimeout time.Duration `yaml:"receive_timeout"`

	// ConnectTimeout bounds each tcp dial attempt.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// MaxAttempts limits tcp dial attempts; zero retries until shutdown.
	MaxAttempts int `yaml:"max_attempts"`
}

// TickConfig sets the timer period.
type TickConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// StoreConfig selects the credential store backend.
type StoreConfig struct {
	Kind        store.Kind `yaml:"kind"`
	Capacity    int        `yaml:"capacity"`
	Path        string     `yaml:"path"`
	BaseAddress uint16     `yaml:"base_address"`

	Redis store.RedisConfig `yaml:"redis"`
}

// DoorConfig sets the door cycle.
type DoorConfig struct {
	Duty        uint8 `yaml:"duty"`
	UnlockTicks int   `yaml:"unlock_ticks"`
	HoldTicks   int   `yaml:"hold_ticks"`
	LockTicks   int   `yaml:"lock_ticks"`
}

// LockoutConfig sets the retry policy.
type LockoutConfig struct {
	Threshold  int `yaml:"threshold"`
	AlarmTicks int `yaml:"alarm_ticks"`
}

// FrontConfig sets front unit presentation.
type FrontConfig struct {
	// MessageHold is how long transient messages stay on the display.
	MessageHold time.Duration `yaml:"message_hold"`
}

// LogConfig sets operational and protocol logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`

	// ProtocolFile receives a .dlog capture when set.
	ProtocolFile string `yaml:"protocol_file"`
}

// DiscoveryConfig controls mDNS discovery of the tcp bridge.
type DiscoveryConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interface string        `yaml:"interface"`
	UnitID    string        `yaml:"unit_id"`
	Name      string        `yaml:"name"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Default returns the configuration of the reference hardware.
func Default() *Config {
	return &Config{
		Link: LinkConfig{
			Transport:      TransportSerial,
			BaudRate:       link.DefaultBaudRate,
			Address:        fmt.Sprintf(":%d", link.DefaultBridgePort),
			ConnectTimeout: 5 * time.Second,
		},
		Tick: TickConfig{
			Interval: tick.DefaultInterval,
		},
		Store: StoreConfig{
			Kind:        store.KindMemory,
			Capacity:    store.DefaultCapacity,
			BaseAddress: credential.BaseAddress,
			Redis:       store.DefaultRedisConfig(),
		},
		Door: DoorConfig{
			Duty:        hal.MaxDuty,
			UnlockTicks: door.UnlockTicks,
			HoldTicks:   door.HoldTicks,
			LockTicks:   door.LockTicks,
		},
		Lockout: LockoutConfig{
			Threshold:  lockout.Threshold,
			AlarmTicks: lockout.AlarmTicks,
		},
		Front: FrontConfig{
			MessageHold: protocol.DefaultMessageHold,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Discovery: DiscoveryConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks the configuration for values the units cannot run with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	switch c.Link.Transport {
	case TransportPipe, TransportTCP:
	case TransportSerial:
		check(c.Link.BaudRate > 0, "link.baud_rate must be positive")
	default:
		check(false, "link.transport %q is not one of pipe, serial, tcp", c.Link.Transport)
	}
	check(c.Link.ReceiveTimeout >= 0, "link.receive_timeout must not be negative")
	check(c.Link.MaxAttempts >= 0, "link.max_attempts must not be negative")

	check(c.Tick.Interval > 0, "tick.interval must be positive")

	switch c.Store.Kind {
	case store.KindMemory:
	case store.KindFile:
		check(c.Store.Path != "", "store.path is required for the file store")
	case store.KindRedis:
		check(c.Store.Redis.URL != "", "store.redis.url is required for the redis store")
	default:
		check(false, "store.kind %q is not one of memory, file, redis", c.Store.Kind)
	}
	check(c.Store.Capacity > 0, "store.capacity must be positive")
	check(int(c.Store.BaseAddress)+credential.Length <= c.Store.Capacity,
		"store.base_address 0x%04X leaves no room for the credential", c.Store.BaseAddress)

	check(c.Door.Duty > 0 && c.Door.Duty <= hal.MaxDuty, "door.duty must be in 1..%d", hal.MaxDuty)
	check(c.Door.UnlockTicks > 0 && c.Door.HoldTicks > 0 && c.Door.LockTicks > 0,
		"door tick counts must be positive")

	check(c.Lockout.Threshold > 0, "lockout.threshold must be positive")
	check(c.Lockout.AlarmTicks > 0, "lockout.alarm_ticks must be positive")

	check(c.Front.MessageHold >= 0, "front.message_hold must not be negative")

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	check(c.Log.Format == "text" || c.Log.Format == "json", "log.format %q is not one of text, json", c.Log.Format)

	return errors.Join(errs...)
}

// SlogLevel returns the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: log.level %q is not one of debug, info, warn, error", ErrInvalid, l.Level)
	}
}

// Options returns the store options.
func (s StoreConfig) Options() store.Options {
	return store.Options{
		Kind:     s.Kind,
		Capacity: s.Capacity,
		Path:     s.Path,
		Redis:    s.Redis,
	}
}

// Sequencer returns the door sequencer settings. Actuator and Waiter are
// left for the caller.
func (d DoorConfig) Sequencer() door.Config {
	return door.Config{
		Duty:        d.Duty,
		UnlockTicks: d.UnlockTicks,
		HoldTicks:   d.HoldTicks,
		LockTicks:   d.LockTicks,
	}
}

// Serial returns the UART settings.
func (l LinkConfig) Serial() link.SerialConfig {
	return link.SerialConfig{Port: l.Port, BaudRate: l.BaudRate}
}
