// Package wire defines the CBOR wire format of the DAC command protocol.
//
// Every message travels in one length-prefixed frame (see package
// transport). Payloads are CBOR (RFC 8949) maps with integer keys.
//
// # Commands
//
// Host to DAC. Key 1 carries the one-byte command code, the remaining keys
// carry the parameters of the variant that needs them:
//
//	{
//	  1: code,        // uint8, see CommandCode
//	  2: begin,       // Begin, for 'b'
//	  3: pointRate,   // PointRate, for 'q'
//	  4: points       // [Point...], for 'd'
//	}
//
// # Responses
//
// DAC to host, exactly one per command, in command order. The protocol has
// no sequence numbers: the echoed command code is the only correlation.
//
//	{
//	  1: ack,         // uint8, see Ack
//	  2: command,     // uint8, code of the command being answered
//	  3: status       // DacStatus
//	}
package wire
