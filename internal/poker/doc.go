// Package poker implements the session engine: every state transition of the
// estimation state machine, the expiry policy, short-code generation, vote
// statistics, the in-memory and file-backed stores, and the cleanup sweeper.
//
// The engine serializes all read-modify-write operations per session code, so
// concurrent votes, removals and heartbeats on the same session never corrupt
// it; operations on different codes run in parallel.
package poker
