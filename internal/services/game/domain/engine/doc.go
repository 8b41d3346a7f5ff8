// Package engine derives automatic game progress from the log.
//
// Advance runs an ordered table of phase checkers to a fixed point. When a
// checker fires, handlers registered before its event see the ending phase,
// a status entry is appended for the new phase, and handlers registered after
// the event see the new one. Every step takes a game value and returns a new
// one, so a pass can be recomputed from any snapshot.
package engine
