// Package emulator provides an in-process laser DAC.
//
// A Device holds the same state a real DAC reports (capabilities, playback
// status, buffer fullness, point rate) and answers framed commands the way
// firmware does: every command gets exactly one response, accepted commands
// move the status along the transition table in package dac, and rejected
// commands leave it untouched.
//
// Serve reads commands and writes responses on separate goroutines. Clients
// write a whole batch before reading any response, so a device that answered
// inline would stall on synchronous transports such as net.Pipe.
package emulator
