package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/store"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, TransportSerial, cfg.Link.Transport)
	assert.Equal(t, 9600, cfg.Link.BaudRate)
	assert.Zero(t, cfg.Link.ReceiveTimeout)
	assert.Equal(t, time.Second, cfg.Tick.Interval)
	assert.Equal(t, uint16(0x0015), cfg.Store.BaseAddress)
	assert.Equal(t, 15, cfg.Door.UnlockTicks)
	assert.Equal(t, 3, cfg.Door.HoldTicks)
	assert.Equal(t, 15, cfg.Door.LockTicks)
	assert.Equal(t, 3, cfg.Lockout.Threshold)
	assert.Equal(t, 60, cfg.Lockout.AlarmTicks)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
link:
  transport: tcp
  address: 192.168.1.20:7015
  receive_timeout: 30s
tick:
  interval: 100ms
store:
  kind: redis
  redis:
    url: redis://cache:6379/2
lockout:
  alarm_ticks: 10
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, TransportTCP, cfg.Link.Transport)
	assert.Equal(t, "192.168.1.20:7015", cfg.Link.Address)
	assert.Equal(t, 30*time.Second, cfg.Link.ReceiveTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Tick.Interval)
	assert.Equal(t, store.KindRedis, cfg.Store.Kind)
	assert.Equal(t, "redis://cache:6379/2", cfg.Store.Redis.URL)
	assert.Equal(t, "doorlock:eeprom", cfg.Store.Redis.Key)
	assert.Equal(t, 10, cfg.Lockout.AlarmTicks)
	assert.Equal(t, 3, cfg.Lockout.Threshold)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"UnknownTransport", "link:\n  transport: carrier-pigeon\n"},
		{"FileWithoutPath", "store:\n  kind: file\n"},
		{"UnknownStore", "store:\n  kind: floppy\n"},
		{"BaseAddressPastEnd", "store:\n  capacity: 16\n  base_address: 0x0015\n"},
		{"ZeroDuty", "door:\n  duty: 0\n"},
		{"DutyOver100", "door:\n  duty: 150\n"},
		{"ZeroThreshold", "lockout:\n  threshold: 0\n"},
		{"NegativeTimeout", "link:\n  receive_timeout: -1s\n"},
		{"BadLevel", "log:\n  level: loud\n"},
		{"BadFormat", "log:\n  format: xml\n"},
		{"ZeroInterval", "tick:\n  interval: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "error = %v", err)
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("link: [unclosed"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalid))
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Tick.Interval = 0
	cfg.Lockout.AlarmTicks = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick.interval")
	assert.Contains(t, err.Error(), "lockout.alarm_ticks")
}

func TestLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Store.Kind = store.KindFile
	cfg.Store.Path = "/tmp/eeprom.json"
	cfg.Link.Port = "/dev/ttyUSB1"

	data, err := cfg.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "lock.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSectionConversions(t *testing.T) {
	cfg := Default()
	cfg.Store.Kind = store.KindFile
	cfg.Store.Path = "eeprom.json"

	opts := cfg.Store.Options()
	assert.Equal(t, store.KindFile, opts.Kind)
	assert.Equal(t, "eeprom.json", opts.Path)
	assert.Equal(t, store.DefaultCapacity, opts.Capacity)

	seq := cfg.Door.Sequencer()
	assert.Equal(t, hal.MaxDuty, seq.Duty)
	assert.Equal(t, 15, seq.UnlockTicks)

	serial := cfg.Link.Serial()
	assert.Equal(t, 9600, serial.BaudRate)
}
