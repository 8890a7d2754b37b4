// Package protocol owns the fixed-width command payload codec.
//
// Ownership boundary:
// - field and command schema definitions
// - payload encode/decode
// - schema registry keyed by peripheral, command, and direction
//
// The package performs no logging and no retries; errors go to the caller.
// Envelopes live in protocol/frame, static command tables in protocol/catalog.
package protocol
