// Package hal defines the narrow hardware contracts the two units drive:
// keypad and display on the front, actuator, buzzer and credential store on
// the back.
//
// Simulated implementations live alongside the interfaces so that both units
// can run on a development machine. Mockery-generated mocks for unit tests
// live in hal/mocks.
package hal
