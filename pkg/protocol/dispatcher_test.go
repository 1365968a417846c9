package protocol

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorlock-protocol/doorlock-go/pkg/credential"
	"github.com/doorlock-protocol/doorlock-go/pkg/hal"
	"github.com/doorlock-protocol/doorlock-go/pkg/link"
	"github.com/doorlock-protocol/doorlock-go/pkg/lockout"
	"github.com/doorlock-protocol/doorlock-go/pkg/log"
	"github.com/doorlock-protocol/doorlock-go/pkg/store"
	"github.com/doorlock-protocol/doorlock-go/pkg/tick"
	"github.com/doorlock-protocol/doorlock-go/pkg/wire"
)

const stallAfter = 20 * time.Millisecond

type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(e log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureLogger) count(category log.Category) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Category == category {
			n++
		}
	}
	return n
}

// peer plays the other unit from the test goroutine.
type peer struct {
	t    *testing.T
	ctx  context.Context
	link link.Link
}

func newPeer(t *testing.T, l link.Link) *peer {
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	t.Cleanup(cancel)
	return &peer{t: t, ctx: ctx, link: l}
}

func (p *peer) expect(want wire.Byte) {
	p.t.Helper()
	got, err := p.link.ReceiveByte(p.ctx)
	require.NoError(p.t, err)
	require.Equal(p.t, want, got)
}

func (p *peer) send(b ...wire.Byte) {
	p.t.Helper()
	for _, x := range b {
		require.NoError(p.t, p.link.SendByte(p.ctx, x))
	}
}

// ackDigits receives n digits, acknowledging each with SYNC.
func (p *peer) ackDigits(n int) string {
	p.t.Helper()
	var got []byte
	for i := 0; i < n; i++ {
		b, err := p.link.ReceiveByte(p.ctx)
		require.NoError(p.t, err)
		require.True(p.t, b.IsDigit(), "got %s", b)
		got = append(got, byte(b))
		p.send(wire.Sync)
	}
	return string(got)
}

// sendDigits transmits digits, waiting for SYNC after each.
func (p *peer) sendDigits(digits string) {
	p.t.Helper()
	for i := 0; i < len(digits); i++ {
		p.send(wire.Byte(digits[i]))
		p.expect(wire.Sync)
	}
}

// stepAsync runs one dispatcher step in the background.
func stepAsync(step func(context.Context) error) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- step(context.Background())
	}()
	return done
}

func awaitStep(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("step did not complete")
	}
}

func newProvisionedFront(t *testing.T, stall bool, keys string, plog log.Logger) (*Front, *peer) {
	t.Helper()
	frontEnd, other := link.Pipe()
	var l link.Link = frontEnd
	if stall {
		l = link.WithReceiveTimeout(frontEnd, stallAfter)
	}
	f, err := NewFront(FrontConfig{
		Link:           l,
		Keypad:         hal.NewScriptedKeypadString(provision + keys),
		Display:        hal.NewScreen(),
		Waiter:         tick.NewRecorder(),
		ProtocolLogger: plog,
	})
	require.NoError(t, err)
	p := newPeer(t, other)

	done := stepAsync(f.Step)
	p.expect(wire.ActionCreate)
	awaitStep(t, done)

	done = stepAsync(f.Step)
	assert.Equal(t, "12345", p.ackDigits(5))
	awaitStep(t, done)
	require.Equal(t, FrontMenu, f.State())
	return f, p
}

func TestFrontStallAbandonsRound(t *testing.T) {
	plog := &captureLogger{}
	f, p := newProvisionedFront(t, true, "+12345#", plog)

	awaitStep(t, stepAsync(f.Step))
	p.expect(wire.ActionVerify)
	p.expect(wire.ModeOpen)
	require.Equal(t, FrontVerifyOpen, f.State())

	done := stepAsync(f.Step)
	p.ackDigits(5)
	// No verdict follows.
	awaitStep(t, done)

	assert.Equal(t, FrontMenu, f.State())
	assert.Zero(t, f.Failures())
	assert.Equal(t, 1, plog.count(log.CategoryError))
}

func TestFrontTreatsUnknownVerdictAsIncorrect(t *testing.T) {
	f, p := newProvisionedFront(t, false, "+12345#", nil)

	awaitStep(t, stepAsync(f.Step))
	p.expect(wire.ActionVerify)
	p.expect(wire.ModeOpen)

	done := stepAsync(f.Step)
	p.ackDigits(5)
	p.send(wire.Byte(0x42))
	p.expect(wire.AlarmDisable)
	awaitStep(t, done)

	assert.Equal(t, FrontVerifyOpen, f.State())
	assert.Equal(t, 1, f.Failures())
}

func TestFrontThirdFailureEnablesAlarm(t *testing.T) {
	f, p := newProvisionedFront(t, false, "-11111#22222#33333#", nil)

	awaitStep(t, stepAsync(f.Step))
	p.expect(wire.ActionVerify)
	p.expect(wire.ModeChange)

	for i, want := range []wire.Byte{wire.AlarmDisable, wire.AlarmDisable, wire.AlarmEnable} {
		done := stepAsync(f.Step)
		p.ackDigits(5)
		p.send(wire.Incorrect)
		p.expect(want)
		awaitStep(t, done)
		if i < 2 {
			assert.Equal(t, FrontVerifyChange, f.State())
		}
	}
	assert.Equal(t, FrontLockout, f.State())

	awaitStep(t, stepAsync(f.Step))
	assert.Equal(t, FrontMenu, f.State())
	assert.Zero(t, f.Failures())
}

func TestFrontDigitWaitsForSync(t *testing.T) {
	frontEnd, other := link.Pipe()
	f, err := NewFront(FrontConfig{
		Link:    frontEnd,
		Keypad:  hal.NewScriptedKeypadString(provision),
		Display: hal.NewScreen(),
		Waiter:  tick.NewRecorder(),
	})
	require.NoError(t, err)
	p := newPeer(t, other)

	awaitStep(t, stepAsync(f.Step))
	p.expect(wire.ActionCreate)

	done := stepAsync(f.Step)
	p.expect(wire.Byte('1'))

	// The second digit stays queued until SYNC arrives; other bytes are
	// discarded.
	p.send(wire.Correct)
	time.Sleep(stallAfter)
	assert.Len(t, frontEnd.Sent(), 2)

	p.send(wire.Sync)
	p.expect(wire.Byte('2'))
	p.send(wire.Sync)
	assert.Equal(t, "345", p.ackDigits(3))
	awaitStep(t, done)
	assert.Len(t, frontEnd.Sent(), 6)
}

type backRig struct {
	back     *Back
	peer     *peer
	buzzer   *hal.RecordingBuzzer
	actuator *hal.RecordingActuator
	ticks    *tick.Recorder
	store    *store.Memory
}

func newBackRig(t *testing.T, stall bool) *backRig {
	t.Helper()
	backEnd, other := link.Pipe()
	var l link.Link = backEnd
	if stall {
		l = link.WithReceiveTimeout(backEnd, stallAfter)
	}
	r := &backRig{
		peer:     newPeer(t, other),
		buzzer:   hal.NewRecordingBuzzer(nil),
		actuator: hal.NewRecordingActuator(nil),
		ticks:    tick.NewRecorder(),
		store:    store.NewMemory(store.DefaultCapacity),
	}
	for i, d := range []byte("12345") {
		require.NoError(t, r.store.Write(context.Background(), credential.BaseAddress+uint16(i), d))
	}

	var err error
	r.back, err = NewBack(BackConfig{
		Link:     l,
		Store:    r.store,
		Actuator: r.actuator,
		Buzzer:   r.buzzer,
		Waiter:   r.ticks,
	})
	require.NoError(t, err)
	return r
}

func (r *backRig) step(t *testing.T) {
	t.Helper()
	awaitStep(t, stepAsync(r.back.Step))
}

// enterVerify drives the back unit into VerifyOpen.
func (r *backRig) enterVerify(t *testing.T) {
	t.Helper()
	r.peer.send(wire.ActionVerify, wire.ModeOpen)
	r.step(t)
	r.step(t)
	require.Equal(t, BackVerifyOpen, r.back.State())
}

// fail submits a wrong credential and answers the verdict with cmd.
func (r *backRig) fail(t *testing.T, cmd wire.Byte) {
	t.Helper()
	done := stepAsync(r.back.Step)
	r.peer.sendDigits("99999")
	r.peer.expect(wire.Incorrect)
	r.peer.send(cmd)
	awaitStep(t, done)
}

func TestBackIgnoresUnknownAction(t *testing.T) {
	r := newBackRig(t, false)

	r.peer.send(wire.Byte(0x01))
	r.step(t)
	assert.Equal(t, BackWaitAction, r.back.State())

	r.peer.send(wire.ActionVerify)
	r.step(t)
	assert.Equal(t, BackCheckAction, r.back.State())
}

func TestBackIgnoresUnknownMode(t *testing.T) {
	r := newBackRig(t, false)

	r.peer.send(wire.ActionVerify, wire.Byte(0x42))
	r.step(t)
	r.step(t)
	assert.Equal(t, BackWaitAction, r.back.State())
	assert.Equal(t, wire.ModeUnknown, r.back.Status().Mode)
}

func TestBackAcksEveryDigitBeforeVerdict(t *testing.T) {
	r := newBackRig(t, false)
	r.enterVerify(t)

	done := stepAsync(r.back.Step)
	r.peer.sendDigits("12349")
	r.peer.expect(wire.Incorrect)
	r.peer.send(wire.AlarmDisable)
	awaitStep(t, done)

	assert.Equal(t, BackVerifyOpen, r.back.State())
	assert.Equal(t, 1, r.back.Status().Failures)
}

func TestBackFollowsAlarmEnableBelowThreshold(t *testing.T) {
	r := newBackRig(t, false)
	r.enterVerify(t)

	r.fail(t, wire.AlarmEnable)
	assert.Equal(t, BackAlarm, r.back.State())
	assert.Equal(t, 1, r.back.Status().Desyncs)

	r.step(t)
	status := r.back.Status()
	assert.Equal(t, BackWaitAction, status.State)
	assert.Equal(t, lockout.AlarmSilent, status.Alarm)
	assert.Equal(t, 1, status.AlarmActivations)
	assert.Zero(t, status.Failures)
	assert.Equal(t, []int{60}, r.ticks.Waits())
}

func TestBackFollowsAlarmDisableAtThreshold(t *testing.T) {
	r := newBackRig(t, false)
	r.enterVerify(t)

	for range 3 {
		r.fail(t, wire.AlarmDisable)
	}
	status := r.back.Status()
	assert.Equal(t, BackVerifyOpen, status.State)
	assert.Equal(t, 1, status.Desyncs)
	assert.Zero(t, status.Failures)
	assert.Zero(t, r.buzzer.Activations())
}

func TestBackStallAbandonsRound(t *testing.T) {
	r := newBackRig(t, true)

	r.peer.send(wire.ActionVerify)
	r.step(t)
	require.Equal(t, BackCheckAction, r.back.State())

	r.step(t)
	assert.Equal(t, BackWaitAction, r.back.State())
}

func TestBackIdleWaitIgnoresReceiveTimeout(t *testing.T) {
	r := newBackRig(t, true)

	done := stepAsync(r.back.Step)
	select {
	case err := <-done:
		t.Fatalf("idle wait returned early: %v", err)
	case <-time.After(5 * stallAfter):
	}

	r.peer.send(wire.ActionVerify)
	awaitStep(t, done)
	assert.Equal(t, BackCheckAction, r.back.State())
}

func TestBackPersistRejectsNonDigits(t *testing.T) {
	r := newBackRig(t, false)

	r.peer.send(wire.ActionCreate)
	r.step(t)
	require.Equal(t, BackCreateCredential, r.back.State())

	done := stepAsync(r.back.Step)
	r.peer.sendDigits(string([]byte{byte(wire.ActionVerify), byte(wire.ModeOpen), '1', '2', '3'}))
	awaitStep(t, done)

	assert.Equal(t, BackWaitAction, r.back.State())
	c, err := r.back.Vault().Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12345", c.Reveal())
}

func TestReceiveTimeoutSparesSlowTyping(t *testing.T) {
	frontEnd, backEnd := link.Pipe()
	keypad := hal.NewChannelKeypad(16)
	mem := store.NewMemory(store.DefaultCapacity)
	plog := &captureLogger{}

	front, err := NewFront(FrontConfig{
		Link:           link.WithReceiveTimeout(frontEnd, stallAfter),
		Keypad:         keypad,
		Display:        hal.NewScreen(),
		Waiter:         tick.NewRecorder(),
		ProtocolLogger: plog,
	})
	require.NoError(t, err)
	back, err := NewBack(BackConfig{
		Link:           link.WithReceiveTimeout(backEnd, stallAfter),
		Store:          mem,
		Actuator:       hal.NewRecordingActuator(nil),
		Buzzer:         hal.NewRecordingBuzzer(nil),
		Waiter:         tick.NewRecorder(),
		ProtocolLogger: plog,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = front.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = back.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		keypad.Close()
		wg.Wait()
	})

	// Each entry starts well after the peer's receive timeout.
	typeSlowly := func(keys string) {
		time.Sleep(5 * stallAfter)
		for _, s := range symbols(keys) {
			require.True(t, keypad.Press(s))
		}
	}

	typeSlowly("12345#")
	typeSlowly("12345#")
	require.Eventually(t, func() bool {
		c, err := back.Vault().Load(context.Background())
		return err == nil && c.Reveal() == "12345" &&
			front.State() == FrontMenu && back.State() == BackWaitAction
	}, waitFor, pollIn)

	typeSlowly("+")
	typeSlowly("12345#")
	require.Eventually(t, func() bool {
		return back.Status().DoorCycles == 1 &&
			front.State() == FrontMenu && back.State() == BackWaitAction
	}, waitFor, pollIn)

	assert.Zero(t, plog.count(log.CategoryError))
}

func TestBackCorrectRunsDoorAndReturns(t *testing.T) {
	r := newBackRig(t, false)
	r.enterVerify(t)

	done := stepAsync(r.back.Step)
	r.peer.sendDigits("12345")
	r.peer.expect(wire.Correct)
	awaitStep(t, done)
	assert.Equal(t, BackDoorSequence, r.back.State())

	r.step(t)
	status := r.back.Status()
	assert.Equal(t, BackWaitAction, status.State)
	assert.Equal(t, 1, status.DoorCycles)
	assert.Equal(t, []int{15, 3, 15}, r.ticks.Waits())
}
