// Package credential implements the shared 5-digit credential and the
// sessions that move it between the two units.
//
// The front unit uses a Session to collect entries from the keypad, confirm a
// new credential and transmit it digit by digit. The back unit uses a Vault to
// compare a received credential against the store and to persist a new one.
// Every digit on the link is acknowledged with a SYNC byte before the next is
// sent.
package credential
