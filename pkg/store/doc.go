// Package store provides byte-addressed credential stores for the back unit.
//
// All stores emulate an erased EEPROM: a cell that was never written reads
// as Erased. Backends:
//
//   - Memory: process memory, for tests and simulation
//   - File: a JSON image rewritten atomically on every write
//   - Redis: a hash with one field per written address
package store
