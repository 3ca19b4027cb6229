// Package dac models the state of an Ether Dream / Helios style laser DAC.
//
// A Dac is a value snapshot of the device's capabilities and current status
// as last reported by the device. An Addressed pairs a snapshot with the
// numeric identifier used to tell apart several DACs on one network segment.
//
// # Status State Machine
//
//	       PrepareStream          Begin
//	Idle ───────────────► Preparing ─────► Playing
//	 ▲                        │               │
//	 └──────── Stop ──────────┴───────────────┘
//
//	any ── EmergencyStop ──► EmergencyStopped ── ClearEmergencyStop ──► Idle
//
// PointRate and Data are accepted while Preparing or Playing and leave the
// status unchanged. Ping is accepted in any state.
//
// The device is the authority for these transitions. Sessions only record
// the status the device reports; Transition exists for device emulators and
// for tests that need the expected outcome of a command.
package dac
