// Package storage defines the persistence contracts of the game service.
//
// Every write is conditional on the version the caller read. A write that
// loses the race returns ErrConflict and the caller recomputes from a fresh
// read; nothing in this package retries.
package storage
