// Package server runs the game service: the application operations over the
// game store, finalization of finished games, and the process runtime that
// serves them over HTTP next to a gRPC health endpoint.
//
// Every game mutation goes through one optimistic update loop. It reads the
// stored record, applies the change and the automatic advancement with a
// fresh random source, and swaps the result in only if nobody else wrote in
// between. Lost races are recomputed from the newer record.
package server
