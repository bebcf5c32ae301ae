// Package client implements the CLI side of the daemon protocol.
//
// A client performs single-shot exchanges against the daemon's Unix
// socket: dial, send one newline-delimited JSON envelope, read one
// envelope back, close. Dialing retries with exponential backoff so
// commands issued right after daemon startup do not fail spuriously.
package client
