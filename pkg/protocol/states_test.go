package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontStateString(t *testing.T) {
	tests := []struct {
		state FrontState
		want  string
	}{
		{FrontStart, "START"},
		{FrontCreateCredential, "CREATE_CREDENTIAL"},
		{FrontMenu, "MENU"},
		{FrontVerifyOpen, "VERIFY_OPEN"},
		{FrontVerifyChange, "VERIFY_CHANGE"},
		{FrontDoorCycle, "DOOR_CYCLE"},
		{FrontChangeCredential, "CHANGE_CREDENTIAL"},
		{FrontLockout, "LOCKOUT"},
		{FrontState(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestBackStateString(t *testing.T) {
	tests := []struct {
		state BackState
		want  string
	}{
		{BackWaitAction, "WAIT_ACTION"},
		{BackCreateCredential, "CREATE_CREDENTIAL"},
		{BackCheckAction, "CHECK_ACTION"},
		{BackVerifyOpen, "VERIFY_OPEN"},
		{BackVerifyChange, "VERIFY_CHANGE"},
		{BackDoorSequence, "DOOR_SEQUENCE"},
		{BackPersistCredential, "PERSIST_CREDENTIAL"},
		{BackAlarm, "ALARM"},
		{BackState(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestTransitionTablesCoverEveryState(t *testing.T) {
	for s := FrontStart; s <= FrontLockout; s++ {
		assert.NotEmpty(t, frontTransitions[s], "front %s has no exits", s)
	}
	for s := BackWaitAction; s <= BackAlarm; s++ {
		assert.NotEmpty(t, backTransitions[s], "back %s has no exits", s)
		if s != BackWaitAction {
			assert.Contains(t, backTransitions[s], BackWaitAction, "back %s cannot return to WaitAction", s)
		}
	}
}

func TestMachineRejectsInvalidTransition(t *testing.T) {
	m := newMachine(FrontStart, frontTransitions)

	err := m.transition(FrontDoorCycle, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, FrontStart, m.state())

	var seen []string
	m.observe(func(from, to FrontState, reason string) {
		seen = append(seen, from.String()+">"+to.String()+":"+reason)
	})
	require.NoError(t, m.transition(FrontCreateCredential, "create"))
	assert.Equal(t, FrontCreateCredential, m.state())
	assert.Equal(t, []string{"START>CREATE_CREDENTIAL:create"}, seen)
}
