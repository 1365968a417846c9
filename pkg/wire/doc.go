// Package wire defines the byte vocabulary of the doorlock serial protocol.
//
// The link between the front unit (keypad and display) and the back unit
// (actuator and credential store) carries single bytes only. There is no
// framing, checksum or retransmission: every byte either is a credential
// digit ('0'..'9') or one of the control values defined here.
//
// # Control Bytes
//
//   - Sync: per-byte acknowledgment sent by the receiver of a digit
//   - Correct / Incorrect: verdict after a verification
//   - ActionCreate / ActionVerify: first byte of every exchange
//   - ModeOpen / ModeChange: second byte of a verify exchange
//   - AlarmEnable / AlarmDisable: front's instruction after a failed verify
//
// The control values never collide with the ASCII digits, so a receiver can
// always tell a digit from a control byte.
//
// # Keypad Symbols
//
// Symbol models a key read from the front keypad: a digit or one of the
// control keys (open door, change credential, confirm, select).
package wire
