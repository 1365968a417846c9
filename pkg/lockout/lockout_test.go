package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/hal/mocks"
	"github.com/doorlock-protocol/doorlock-go/pkg/tick"
)

func TestTrackerThreshold(t *testing.T) {
	tr := NewTracker(0)
	assert.Equal(t, Threshold, tr.Threshold())

	assert.False(t, tr.RecordFailure())
	assert.False(t, tr.RecordFailure())
	assert.True(t, tr.RecordFailure())
	assert.Equal(t, 3, tr.Failures())
	assert.True(t, tr.Reached())

	// The count never exceeds the threshold.
	assert.True(t, tr.RecordFailure())
	assert.Equal(t, 3, tr.Failures())

	tr.Reset()
	assert.Equal(t, 0, tr.Failures())
	assert.False(t, tr.Reached())
}

func TestTrackerSuccessResets(t *testing.T) {
	tr := NewTracker(Threshold)
	tr.RecordFailure()
	tr.RecordFailure()
	tr.RecordSuccess()
	assert.Equal(t, 0, tr.Failures())

	// A success before the third failure means the next failures start over.
	assert.False(t, tr.RecordFailure())
	assert.False(t, tr.RecordFailure())
	assert.True(t, tr.RecordFailure())
}

func TestTrackerOnChange(t *testing.T) {
	tr := NewTracker(2)
	var changes [][2]int
	tr.OnChange(func(from, to int) { changes = append(changes, [2]int{from, to}) })

	tr.RecordFailure()
	tr.RecordFailure()
	tr.RecordFailure()
	tr.Reset()
	tr.Reset()

	assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 0}}, changes)
}

func TestAlarmSoundsForWindow(t *testing.T) {
	buzzer := hal.NewRecordingBuzzer(nil)
	rec := tick.NewRecorder()
	a := NewAlarm(AlarmConfig{Buzzer: buzzer, Waiter: rec})

	var states []AlarmState
	a.OnStateChange(func(_, to AlarmState) { states = append(states, to) })

	require.NoError(t, a.Sound(context.Background()))

	assert.Equal(t, []int{AlarmTicks}, rec.Waits())
	assert.Equal(t, []bool{true, false}, buzzer.Events())
	assert.Equal(t, AlarmSilent, a.State())
	assert.Equal(t, 1, a.Activations())
	assert.Equal(t, []AlarmState{AlarmSounding, AlarmSilent}, states)
}

func TestAlarmIgnoresCancellation(t *testing.T) {
	src := tick.NewManual()
	counter := tick.NewCounter(src)
	buzzer := mocks.NewMockBuzzer(t)
	buzzer.EXPECT().On().Once()
	buzzer.EXPECT().Off().Once()

	a := NewAlarm(AlarmConfig{Buzzer: buzzer, Waiter: counter, Ticks: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- a.Sound(ctx) }()

	require.Eventually(t, src.Running, time.Second, time.Millisecond)
	assert.Equal(t, AlarmSounding, a.State())
	select {
	case <-done:
		t.Fatal("alarm ended before its window")
	case <-time.After(10 * time.Millisecond):
	}

	src.Tick()
	src.Tick()
	require.NoError(t, <-done)
	assert.Equal(t, AlarmSilent, a.State())
}

func TestAlarmStateString(t *testing.T) {
	assert.Equal(t, "SILENT", AlarmSilent.String())
	assert.Equal(t, "SOUNDING", AlarmSounding.String())
	assert.Equal(t, "UNKNOWN", AlarmState(9).String())
}
