// Package lifecycle creates games from a set of players and summarizes
// finished ones into history records.
package lifecycle
