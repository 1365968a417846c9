package credential

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/hal/mocks"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

func newTestSession(keys string) (*Session, *hal.Screen, *link.PipeEnd, *link.PipeEnd) {
	front, back := link.Pipe()
	screen := hal.NewScreen()
	s := NewSession(SessionConfig{
		Keypad:  hal.NewScriptedKeypadString(keys),
		Display: screen,
		Link:    front,
	})
	return s, screen, front, back
}

// ackDigits acknowledges n digits from the back side and returns them.
func ackDigits(t *testing.T, back link.Link, n int) <-chan []byte {
	t.Helper()
	out := make(chan []byte, 1)
	go func() {
		var got []byte
		ctx := context.Background()
		for i := 0; i < n; i++ {
			b, err := back.ReceiveByte(ctx)
			if err != nil {
				break
			}
			got = append(got, byte(b))
			if err := back.SendByte(ctx, wire.Sync); err != nil {
				break
			}
		}
		out <- got
	}()
	return out
}

func TestCollectEntryRejectsControlKeys(t *testing.T) {
	s, screen, _, _ := newTestSession("1+2-3^#4x5" + "9#")

	c, err := s.CollectEntry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12345", c.Reveal())
	assert.Equal(t, "*****", screen.Row(0))
}

func TestCollectEntryWaitsForConfirm(t *testing.T) {
	k := hal.NewScriptedKeypadString("12345")
	s := NewSession(SessionConfig{Keypad: k, Display: hal.NewScreen()})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.CollectEntry(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "five digits without confirm must not complete")
}

func TestCollectEntryWithMockKeypad(t *testing.T) {
	keypad := mocks.NewMockKeypad(t)
	display := mocks.NewMockDisplay(t)

	keys := []wire.Symbol{'0', '0', wire.SymbolOpenDoor, '7', '0', '1', wire.SymbolConfirm}
	for _, k := range keys {
		keypad.EXPECT().ReadSymbol(mock.Anything).Return(k, nil).Once()
	}
	display.EXPECT().WriteChar(byte(MaskChar)).Times(5)

	s := NewSession(SessionConfig{Keypad: keypad, Display: display})
	c, err := s.CollectEntry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00701", c.Reveal())
}

func TestCollectEntryKeypadError(t *testing.T) {
	keypad := mocks.NewMockKeypad(t)
	boom := errors.New("keypad unplugged")
	keypad.EXPECT().ReadSymbol(mock.Anything).Return(wire.Symbol(0), boom).Once()

	s := NewSession(SessionConfig{Keypad: keypad, Display: mocks.NewMockDisplay(t)})
	_, err := s.CollectEntry(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCreateWithConfirmationMatch(t *testing.T) {
	s, screen, _, back := newTestSession("12345#12345#")
	digits := ackDigits(t, back, Length)

	c, err := s.CreateWithConfirmation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12345", c.Reveal())
	assert.Equal(t, []byte("12345"), <-digits)

	assert.True(t, screen.Contains(PromptEnter))
	assert.True(t, screen.Contains(PromptReenter))
	assert.True(t, screen.Contains(MsgEqual))
}

func TestCreateWithConfirmationMismatchSendsNothing(t *testing.T) {
	s, screen, front, _ := newTestSession("12345#12346#")

	_, err := s.CreateWithConfirmation(context.Background())
	assert.ErrorIs(t, err, ErrMismatch)
	assert.Empty(t, front.Sent())
	assert.True(t, screen.Contains(MsgNotEqual))
}

func TestCreateWithConfirmationAlwaysCollectsFreshConfirm(t *testing.T) {
	// First call mismatches; the second call must collect both entries again
	// rather than reuse the earlier confirm entry.
	s, _, front, back := newTestSession("11111#22222#" + "33333#33333#")

	_, err := s.CreateWithConfirmation(context.Background())
	require.ErrorIs(t, err, ErrMismatch)

	digits := ackDigits(t, back, Length)
	c, err := s.CreateWithConfirmation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "33333", c.Reveal())
	assert.Equal(t, []byte("33333"), <-digits)
	assert.Len(t, front.Sent(), Length)
}

func TestTransmitWaitsForSyncAndDiscardsNoise(t *testing.T) {
	front, back := link.Pipe()
	s := NewSession(SessionConfig{Link: front})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- s.Transmit(ctx, MustParse("24680")) }()

	var got strings.Builder
	for i := 0; i < Length; i++ {
		b, err := back.ReceiveByte(ctx)
		require.NoError(t, err)
		got.WriteByte(byte(b))

		// Only one digit is in flight until SYNC arrives.
		select {
		case err := <-done:
			t.Fatalf("Transmit returned early: %v", err)
		case <-time.After(5 * time.Millisecond):
		}

		require.NoError(t, back.SendByte(ctx, wire.Correct))
		require.NoError(t, back.SendByte(ctx, wire.Sync))
	}

	require.NoError(t, <-done)
	assert.Equal(t, "24680", got.String())
}

func TestTransmitLinkClosed(t *testing.T) {
	front, back := link.Pipe()
	back.Close()
	s := NewSession(SessionConfig{Link: front})

	err := s.Transmit(context.Background(), MustParse("11111"))
	assert.ErrorIs(t, err, link.ErrClosed)
}
