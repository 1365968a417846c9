// Package protocol implements the front and back dispatchers: two blocking
// state machines that run the credential, verification and door protocol
// over a link.
//
// Front (keypad and display):
//
//	Start → CreateCredential → Menu
//	Menu → VerifyOpen → DoorCycle → Menu
//	Menu → VerifyChange → ChangeCredential → Menu
//	VerifyOpen, VerifyChange → Lockout → Menu   (third failure)
//
// Back (actuator, buzzer and store):
//
//	WaitAction → CreateCredential → WaitAction
//	WaitAction → CheckAction → VerifyOpen → DoorSequence → WaitAction
//	WaitAction → CheckAction → VerifyChange → PersistCredential → WaitAction
//	VerifyOpen, VerifyChange → Alarm → WaitAction
//
// Transitions are checked against explicit tables. Both machines loop until
// their context is cancelled or the link closes. A receive that times out
// (see link.WithReceiveTimeout) abandons the round: the front returns to Menu
// and the back to WaitAction.
package protocol
