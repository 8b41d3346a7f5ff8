// Package api contains the game service's transports.
//
// Subpackages:
//   - http: JSON handlers for the waiting pool, games, actions, history, and
//     the websocket watch stream
package api
