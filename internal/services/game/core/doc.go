// Package core holds game-agnostic helpers shared by the game service.
//
// Subpackages:
//   - filter: AIP-160 filters over finished-game history
package core
