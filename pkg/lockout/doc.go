// Package lockout implements the retry threshold and the alarm it triggers.
//
// Each unit keeps its own Tracker and advances it with the same verdicts:
// the front unit on receiving Incorrect, the back unit on sending it. The
// third consecutive failure in a round fires the threshold; the front unit
// then sends AlarmEnable and the back unit sounds its Alarm for AlarmTicks.
package lockout
