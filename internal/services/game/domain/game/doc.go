// Package game models the werewolf game aggregate.
//
// A game is a fixed roster of agents, the current phase status, and an
// append-only log. Every other piece of game state (who spoke, who voted, who
// was killed, which round a vote is in) is derived from that log by the pure
// readers in this package.
//
// The package holds:
//   - the aggregate value types (Game, Agent, Status, Entry, Log),
//   - the role to team classifier,
//   - the period-log extractor and the vote tally,
//   - and the viewer-filtered snapshot handed to players.
//
// All values are treated as immutable: helpers that "change" a game return a
// new value and never write through shared slices, so a computation can be
// thrown away and recomputed from the stored record at any time.
package game
