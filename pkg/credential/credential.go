package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Credential constants.
const (
	// Length is the number of digits in a credential.
	Length = 5

	// BaseAddress is the store address of the first credential digit.
	BaseAddress uint16 = 0x0015
)

// Credential errors.
var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrMismatch          = errors.New("credential entries do not match")
	ErrEntryFull         = errors.New("entry already complete")
	ErrNotDigit          = errors.New("symbol is not a digit")
)

// Credential is a complete 5-digit credential. Each element is an ASCII digit.
type Credential [Length]byte

// Parse parses a 5-digit string into a Credential.
func Parse(s string) (Credential, error) {
	s = strings.TrimSpace(s)
	if len(s) != Length {
		return Credential{}, fmt.Errorf("%w: must be %d digits", ErrInvalidCredential, Length)
	}
	var c Credential
	copy(c[:], s)
	if err := c.Validate(); err != nil {
		return Credential{}, err
	}
	return c, nil
}

// MustParse parses a credential string and panics on error.
// Use only in tests or when the credential is known to be valid.
func MustParse(s string) Credential {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Generate returns a random credential.
func Generate() (Credential, error) {
	var c Credential
	ten := big.NewInt(10)
	for i := range c {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return Credential{}, fmt.Errorf("failed to generate credential: %w", err)
		}
		c[i] = '0' + byte(n.Int64())
	}
	return c, nil
}

// Validate checks that every position holds an ASCII digit.
func (c Credential) Validate() error {
	for i, d := range c {
		if d < '0' || d > '9' {
			return fmt.Errorf("%w: position %d is not a digit", ErrInvalidCredential, i)
		}
	}
	return nil
}

// Equal compares two credentials position by position in constant time.
func (c Credential) Equal(other Credential) bool {
	return subtle.ConstantTimeCompare(c[:], other[:]) == 1
}

// Bytes returns the digits as a byte slice.
func (c Credential) Bytes() []byte {
	out := make([]byte, Length)
	copy(out, c[:])
	return out
}

// Reveal returns the digits in clear. Never log the result.
func (c Credential) Reveal() string {
	return string(c[:])
}

// String returns a masked form so credentials do not leak through fmt or
// structured logging.
func (c Credential) String() string {
	return strings.Repeat("*", Length)
}

// Entry accumulates the digits of a credential as they are typed.
type Entry struct {
	digits [Length]byte
	n      int
}

// Add appends one digit.
func (e *Entry) Add(d byte) error {
	if d < '0' || d > '9' {
		return ErrNotDigit
	}
	if e.n == Length {
		return ErrEntryFull
	}
	e.digits[e.n] = d
	e.n++
	return nil
}

// Len returns the number of digits entered so far.
func (e *Entry) Len() int {
	return e.n
}

// Complete reports whether all digits have been entered.
func (e *Entry) Complete() bool {
	return e.n == Length
}

// Credential returns the entered credential once the entry is complete.
func (e *Entry) Credential() (Credential, bool) {
	if !e.Complete() {
		return Credential{}, false
	}
	return Credential(e.digits), true
}

// Reset discards all entered digits.
func (e *Entry) Reset() {
	*e = Entry{}
}
