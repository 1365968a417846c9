// Package link implements the byte channel between the front and back units.
//
// A Link moves single bytes, in order and without loss, with at most one byte
// in flight per direction. Implementations:
//
//   - Pipe: an in-memory pair for tests and single-process simulation
//   - StreamLink: any io.ReadWriteCloser, used for UART (OpenSerial) and
//     TCP serial bridges (Listen, Dial)
//
// Wrappers add a receive timeout (WithReceiveTimeout) and protocol capture
// (WithLogger). Without a receive timeout a silent peer blocks the caller
// until its context is cancelled.
package link
