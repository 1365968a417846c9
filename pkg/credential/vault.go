package credential

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

// VaultConfig configures the back-unit credential vault.
type VaultConfig struct {
	Link  link.Link
	Store hal.Store

	// BaseAddress of the first digit (default: BaseAddress).
	BaseAddress uint16

	// Logger for debug output (optional).
	Logger *slog.Logger
}

// Vault owns the stored credential on the back unit.
type Vault struct {
	link   link.Link
	store  hal.Store
	base   uint16
	logger *slog.Logger
}

// NewVault creates a back-unit vault.
func NewVault(cfg VaultConfig) *Vault {
	if cfg.BaseAddress == 0 {
		cfg.BaseAddress = BaseAddress
	}
	return &Vault{
		link:   cfg.Link,
		store:  cfg.Store,
		base:   cfg.BaseAddress,
		logger: cfg.Logger,
	}
}

func (v *Vault) debugLog(msg string, args ...any) {
	if v.logger != nil {
		v.logger.Debug(msg, args...)
	}
}

// ReceiveAndCompare receives Length digits and compares each with the stored
// digit at the same position. Every received digit is acknowledged with SYNC
// whether or not it matched. It returns true only if all digits matched.
// The wait for the first digit is not subject to a receive timeout.
func (v *Vault) ReceiveAndCompare(ctx context.Context) (bool, error) {
	match := true
	for i := 0; i < Length; i++ {
		b, err := v.link.ReceiveByte(digitContext(ctx, i))
		if err != nil {
			return false, fmt.Errorf("receive digit %d: %w", i, err)
		}
		stored, err := v.store.Read(ctx, v.base+uint16(i))
		if err != nil {
			return false, fmt.Errorf("read digit %d: %w", i, err)
		}
		if byte(b) != stored {
			match = false
		}
		if err := v.link.SendByte(ctx, wire.Sync); err != nil {
			return false, fmt.Errorf("ack digit %d: %w", i, err)
		}
	}
	v.debugLog("vault: compared credential", "match", match)
	return match, nil
}

// Persist receives Length digits and writes them to consecutive store
// addresses from the base address, acknowledging each with SYNC. The store
// is written once the final digit has arrived, before that digit is
// acknowledged, so a stalled transfer leaves the stored credential intact.
// A transfer holding anything other than digits is acknowledged but not
// written, and Persist returns ErrInvalidCredential.
func (v *Vault) Persist(ctx context.Context) error {
	var digits Credential
	var invalid error
	for i := 0; i < Length; i++ {
		b, err := v.link.ReceiveByte(digitContext(ctx, i))
		if err != nil {
			return fmt.Errorf("receive digit %d: %w", i, err)
		}
		digits[i] = byte(b)
		if i == Length-1 {
			invalid = digits.Validate()
			if invalid == nil {
				if err := v.write(ctx, digits); err != nil {
					return err
				}
			}
		}
		if err := v.link.SendByte(ctx, wire.Sync); err != nil {
			return fmt.Errorf("ack digit %d: %w", i, err)
		}
	}
	if invalid != nil {
		v.debugLog("vault: transfer rejected, stored credential kept", "error", invalid)
		return invalid
	}
	v.debugLog("vault: credential persisted")
	return nil
}

// digitContext exempts the first digit from the receive timeout. The peer
// sends it once the person at the keypad has finished typing.
func digitContext(ctx context.Context, i int) context.Context {
	if i == 0 {
		return link.Unbounded(ctx)
	}
	return ctx
}

func (v *Vault) write(ctx context.Context, c Credential) error {
	for i, d := range c {
		if err := v.store.Write(ctx, v.base+uint16(i), d); err != nil {
			return fmt.Errorf("write digit %d: %w", i, err)
		}
	}
	return nil
}

// Load reads the stored credential. It returns ErrInvalidCredential if the
// store does not hold a complete credential, such as an erased store.
func (v *Vault) Load(ctx context.Context) (Credential, error) {
	var c Credential
	for i := range c {
		b, err := v.store.Read(ctx, v.base+uint16(i))
		if err != nil {
			return Credential{}, fmt.Errorf("read digit %d: %w", i, err)
		}
		c[i] = b
	}
	if err := c.Validate(); err != nil {
		return Credential{}, err
	}
	return c, nil
}

// Provisioned reports whether the store holds a complete credential.
func (v *Vault) Provisioned(ctx context.Context) bool {
	_, err := v.Load(ctx)
	return err == nil
}
