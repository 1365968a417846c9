package protocol

// FrontState is a state of the front dispatcher.
type FrontState uint8

const (
	// FrontStart announces credential creation to the back unit.
	FrontStart FrontState = iota

	// FrontCreateCredential collects and confirms the initial credential.
	FrontCreateCredential

	// FrontMenu waits for the open-door or change key.
	FrontMenu

	// FrontVerifyOpen verifies the credential before a door cycle.
	FrontVerifyOpen

	// FrontVerifyChange verifies the credential before a change.
	FrontVerifyChange

	// FrontDoorCycle shows the door cycle in step with the back unit.
	FrontDoorCycle

	// FrontChangeCredential collects and confirms the replacement credential.
	FrontChangeCredential

	// FrontLockout waits out the alarm window.
	FrontLockout
)

// String returns the state name.
func (s FrontState) String() string {
	switch s {
	case FrontStart:
		return "START"
	case FrontCreateCredential:
		return "CREATE_CREDENTIAL"
	case FrontMenu:
		return "MENU"
	case FrontVerifyOpen:
		return "VERIFY_OPEN"
	case FrontVerifyChange:
		return "VERIFY_CHANGE"
	case FrontDoorCycle:
		return "DOOR_CYCLE"
	case FrontChangeCredential:
		return "CHANGE_CREDENTIAL"
	case FrontLockout:
		return "LOCKOUT"
	default:
		return "UNKNOWN"
	}
}

// frontTransitions lists the states reachable from each front state.
// A stalled link sends CreateCredential back to Start and every other
// non-Menu state back to Menu.
var frontTransitions = map[FrontState][]FrontState{
	FrontStart:            {FrontCreateCredential},
	FrontCreateCredential: {FrontMenu, FrontStart},
	FrontMenu:             {FrontVerifyOpen, FrontVerifyChange},
	FrontVerifyOpen:       {FrontDoorCycle, FrontLockout, FrontMenu},
	FrontVerifyChange:     {FrontChangeCredential, FrontLockout, FrontMenu},
	FrontDoorCycle:        {FrontMenu},
	FrontChangeCredential: {FrontMenu},
	FrontLockout:          {FrontMenu},
}

// BackState is a state of the back dispatcher.
type BackState uint8

const (
	// BackWaitAction waits for an action byte.
	BackWaitAction BackState = iota

	// BackCreateCredential stores the initial credential.
	BackCreateCredential

	// BackCheckAction reads the verification mode.
	BackCheckAction

	// BackVerifyOpen compares credentials before a door cycle.
	BackVerifyOpen

	// BackVerifyChange compares credentials before a change.
	BackVerifyChange

	// BackDoorSequence runs the door cycle.
	BackDoorSequence

	// BackPersistCredential stores the replacement credential.
	BackPersistCredential

	// BackAlarm sounds the alarm.
	BackAlarm
)

// String returns the state name.
func (s BackState) String() string {
	switch s {
	case BackWaitAction:
		return "WAIT_ACTION"
	case BackCreateCredential:
		return "CREATE_CREDENTIAL"
	case BackCheckAction:
		return "CHECK_ACTION"
	case BackVerifyOpen:
		return "VERIFY_OPEN"
	case BackVerifyChange:
		return "VERIFY_CHANGE"
	case BackDoorSequence:
		return "DOOR_SEQUENCE"
	case BackPersistCredential:
		return "PERSIST_CREDENTIAL"
	case BackAlarm:
		return "ALARM"
	default:
		return "UNKNOWN"
	}
}

// backTransitions lists the states reachable from each back state. Every
// state other than WaitAction may return to WaitAction.
var backTransitions = map[BackState][]BackState{
	BackWaitAction:        {BackCreateCredential, BackCheckAction},
	BackCreateCredential:  {BackWaitAction},
	BackCheckAction:       {BackVerifyOpen, BackVerifyChange, BackWaitAction},
	BackVerifyOpen:        {BackDoorSequence, BackAlarm, BackWaitAction},
	BackVerifyChange:      {BackPersistCredential, BackAlarm, BackWaitAction},
	BackDoorSequence:      {BackWaitAction},
	BackPersistCredential: {BackWaitAction},
	BackAlarm:             {BackWaitAction},
}
