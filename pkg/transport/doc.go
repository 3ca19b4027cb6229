// Package transport carries DAC protocol messages over a byte stream.
//
// The transport layer handles:
//   - Length-prefixed message framing with reusable read buffers
//   - TCP connections (Ether Dream style network DACs)
//   - Serial ports (USB/serial attached DACs)
//   - A small TCP server for hosting emulated DACs
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      CBOR Messages             │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│     TCP  │  Serial port        │
//	└────────────────────────────────┘
//
// Every connection is assigned a UUID that tags all protocol log events it
// produces. Reconnection and device discovery are left to callers.
package transport
