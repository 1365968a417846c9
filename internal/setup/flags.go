package setup

import (
	"flag"
	"time"

	"github.com/doorlock-protocol/doorlock-go/pkg/config"
)

// Flags holds the command-line overrides shared by the unit commands.
type Flags struct {
	ConfigFile     string
	Transport      string
	Port           string
	Address        string
	BaudRate       int
	ReceiveTimeout time.Duration
	Tick           time.Duration
	LogLevel       string
	ProtocolLog    string
	Discover       bool
	UnitID         string
}

// BindFlags registers the shared flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigFile, "config", "", "Configuration file path (YAML)")
	fs.StringVar(&f.Transport, "transport", "", "Link transport: serial, tcp")
	fs.StringVar(&f.Port, "port", "", "Serial device, e.g. /dev/ttyUSB0")
	fs.StringVar(&f.Address, "address", "", "TCP bridge address")
	fs.IntVar(&f.BaudRate, "baud", 0, "Serial baud rate")
	fs.DurationVar(&f.ReceiveTimeout, "receive-timeout", 0, "Abandon a round after this long without a byte (0 waits forever)")
	fs.DurationVar(&f.Tick, "tick", 0, "Tick interval")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.ProtocolLog, "protocol-log", "", "Write a protocol capture (.dlog) to this file")
	fs.BoolVar(&f.Discover, "discover", false, "Use mDNS to advertise or find the TCP bridge")
	fs.StringVar(&f.UnitID, "unit", "", "Back unit ID to advertise or look for")
	return f
}

// Load reads the configuration file and applies the flags that were set on
// the command line, then validates the result.
func (f *Flags) Load(fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := LoadConfig(f.ConfigFile)
	if err != nil {
		return nil, err
	}
	f.Apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overwrites cfg with every flag explicitly set on fs.
func (f *Flags) Apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "transport":
			cfg.Link.Transport = config.Transport(f.Transport)
		case "port":
			cfg.Link.Port = f.Port
		case "address":
			cfg.Link.Address = f.Address
		case "baud":
			cfg.Link.BaudRate = f.BaudRate
		case "receive-timeout":
			cfg.Link.ReceiveTimeout = f.ReceiveTimeout
		case "tick":
			cfg.Tick.Interval = f.Tick
		case "log-level":
			cfg.Log.Level = f.LogLevel
		case "protocol-log":
			cfg.Log.ProtocolFile = f.ProtocolLog
		case "discover":
			cfg.Discovery.Enabled = f.Discover
		case "unit":
			cfg.Discovery.UnitID = f.UnitID
		}
	})
}
