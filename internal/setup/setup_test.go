package setup

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorlock-protocol/doorlock-go/pkg/config"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	"github.com/doorlock-protocol/doorlock-go/pkg/log"
	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("link:\n  transport: pipe\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.TransportPipe, cfg.Link.Transport)
}

func TestLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Logger(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	logger.Info("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	logger, err = Logger(config.LogConfig{Level: "warn", Format: "text"}, &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")

	_, err = Logger(config.LogConfig{Level: "loud"}, &buf)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestProtocolLoggerSinks(t *testing.T) {
	var buf bytes.Buffer
	info, err := Logger(config.LogConfig{Level: "info", Format: "text"}, &buf)
	require.NoError(t, err)
	debug, err := Logger(config.LogConfig{Level: "debug", Format: "text"}, &buf)
	require.NoError(t, err)

	plog, closeFn, err := ProtocolLogger(config.LogConfig{}, info)
	require.NoError(t, err)
	assert.IsType(t, log.NoopLogger{}, plog)
	require.NoError(t, closeFn())

	plog, _, err = ProtocolLogger(config.LogConfig{}, debug)
	require.NoError(t, err)
	assert.IsType(t, &log.SlogAdapter{}, plog)

	path := filepath.Join(t.TempDir(), "capture.dlog")
	plog, closeFn, err = ProtocolLogger(config.LogConfig{ProtocolFile: path}, debug)
	require.NoError(t, err)
	assert.IsType(t, &log.MultiLogger{}, plog)
	require.NoError(t, closeFn())
	assert.FileExists(t, path)
}

func TestWrapLogsBytes(t *testing.T) {
	a, b := link.Pipe()
	plog := &recordingLogger{}
	wrapped := Wrap(a, config.LinkConfig{}, plog, log.RoleFront, "pipe")

	ctx := context.Background()
	require.NoError(t, wrapped.SendByte(ctx, wire.ActionCreate))
	got, err := b.ReceiveByte(ctx)
	require.NoError(t, err)
	assert.Equal(t, wire.ActionCreate, got)
	assert.Len(t, plog.events, 1)
}

type recordingLogger struct {
	events []log.Event
}

func (r *recordingLogger) Log(e log.Event) {
	r.events = append(r.events, e)
}

func TestFlagsOverrideOnlyWhatIsSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("link:\n  port: /dev/ttyS1\n  baud_rate: 19200\n"), 0o600))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-config", path, "-port", "/dev/ttyUSB0", "-receive-timeout", "2s", "-discover"}))

	cfg, err := f.Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Link.Port)
	assert.Equal(t, 19200, cfg.Link.BaudRate, "file value kept when the flag is not set")
	assert.Equal(t, 2*time.Second, cfg.Link.ReceiveTimeout)
	assert.True(t, cfg.Discovery.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFlagsRejectInvalidOverride(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-transport", "carrier-pigeon"}))

	_, err := f.Load(fs)
	assert.ErrorIs(t, err, config.ErrInvalid)
}
