package door

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/hal/mocks"
	"github.com/doorlock-protocol/doorlock-go/pkg/tick"
)

func TestSequenceOrderAndDurations(t *testing.T) {
	act := hal.NewRecordingActuator(nil)
	rec := tick.NewRecorder()
	s := NewSequencer(Config{Actuator: act, Waiter: rec})

	var states []State
	s.OnStateChange(func(_, to State) { states = append(states, to) })

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []int{15, 3, 15}, rec.Waits())
	assert.Equal(t, []hal.DriveCommand{
		{Direction: hal.DirectionForward, Duty: 100},
		{Direction: hal.DirectionStop, Duty: 0},
		{Direction: hal.DirectionReverse, Duty: 100},
		{Direction: hal.DirectionStop, Duty: 0},
	}, act.Commands())
	assert.Equal(t, []State{StateUnlocking, StateHeld, StateLocking, StateLocked}, states)
	assert.Equal(t, StateLocked, s.State())
	assert.Equal(t, 1, s.Cycles())
	assert.Equal(t, 33, s.TotalTicks())
}

func TestSequenceWithMockActuator(t *testing.T) {
	act := mocks.NewMockActuator(t)
	first := act.EXPECT().Drive(hal.DirectionForward, uint8(60)).Once()
	hold := act.EXPECT().Drive(hal.DirectionStop, uint8(0)).Once().NotBefore(first)
	rev := act.EXPECT().Drive(hal.DirectionReverse, uint8(60)).Once().NotBefore(hold)
	act.EXPECT().Drive(hal.DirectionStop, uint8(0)).Once().NotBefore(rev)

	s := NewSequencer(Config{Actuator: act, Waiter: tick.NewRecorder(), Duty: 60})
	require.NoError(t, s.Run(context.Background()))
}

func TestSequenceNotReentrant(t *testing.T) {
	src := tick.NewManual()
	s := NewSequencer(Config{
		Actuator: hal.NewRecordingActuator(nil),
		Waiter:   tick.NewCounter(src),
	})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	require.Eventually(t, src.Running, time.Second, time.Millisecond)

	assert.True(t, s.Running())
	assert.ErrorIs(t, s.Run(context.Background()), ErrBusy)

	// Drive the remaining ticks of all three phases.
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				src.Tick()
				time.Sleep(100 * time.Microsecond)
			}
		}
	}()
	require.Eventually(t, func() bool { return s.Cycles() == 1 }, 5*time.Second, time.Millisecond)
	assert.False(t, s.Running())
}

func TestSequenceIgnoresCancellation(t *testing.T) {
	act := hal.NewRecordingActuator(nil)
	rec := tick.NewRecorder()
	s := NewSequencer(Config{Actuator: act, Waiter: rec})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))
	assert.Len(t, act.Commands(), 4)
	assert.Equal(t, 33, rec.Total())
}

type failingWaiter struct{ err error }

func (f failingWaiter) WaitTicks(context.Context, int) error { return f.err }

func TestSequenceWaiterFailureStopsActuator(t *testing.T) {
	act := hal.NewRecordingActuator(nil)
	boom := errors.New("timer fault")
	s := NewSequencer(Config{Actuator: act, Waiter: failingWaiter{boom}})

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []hal.Direction{hal.DirectionForward, hal.DirectionStop}, act.Directions())
	assert.Equal(t, StateLocked, s.State())
	assert.Equal(t, 0, s.Cycles())
}

func TestCustomDurations(t *testing.T) {
	rec := tick.NewRecorder()
	s := NewSequencer(Config{Actuator: hal.NewRecordingActuator(nil), Waiter: rec, UnlockTicks: 2, HoldTicks: 1, LockTicks: 2})
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []int{2, 1, 2}, rec.Waits())
}
