package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceType is the service type of a back unit's TCP bridge.
	ServiceType = "_doorlock._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default bridge port.
	DefaultPort = 7015

	// InstancePrefix starts every advertised instance name.
	InstancePrefix = "DOORLOCK-"
)

// TXT record key constants.
const (
	TXTKeyUnitID   = "id"   // Unit ID
	TXTKeyVersion  = "ver"  // Protocol version
	TXTKeyName     = "DN"   // Unit name (optional)
	TXTKeyBaudRate = "baud" // Serial baud rate behind the bridge (optional)
)

// ProtocolVersion is advertised in the ver TXT record.
const ProtocolVersion = 1

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second

	// DefaultTTL is the default DNS record TTL.
	DefaultTTL = 120 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// unitIDPrefixLen is how much of the unit ID goes into the instance name.
	unitIDPrefixLen = 8
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInvalidVersion      = errors.New("unsupported protocol version")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotFound            = errors.New("service not found")
	ErrNotAdvertising      = errors.New("not advertising")
)

// BridgeInfo describes an advertised back unit.
type BridgeInfo struct {
	// UnitID identifies the back unit.
	UnitID string

	// Name is a user-friendly unit name (optional).
	Name string

	// Port is the bridge TCP port (default: DefaultPort).
	Port uint16

	// Version is the protocol version (default: ProtocolVersion).
	Version uint8

	// BaudRate of the serial line behind the bridge (optional).
	BaudRate int
}

// InstanceName returns the mDNS instance name for the unit.
func (i *BridgeInfo) InstanceName() string {
	id := i.UnitID
	if len(id) > unitIDPrefixLen {
		id = id[:unitIDPrefixLen]
	}
	return InstancePrefix + id
}

// BridgeService is a discovered back unit.
type BridgeService struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string

	UnitID   string
	Name     string
	Version  uint8
	BaudRate int
}

// Address returns host:port for the first known address, falling back to
// the host name.
func (s *BridgeService) Address() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(host, strconv.Itoa(int(s.Port)))
}
