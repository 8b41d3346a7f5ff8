// Package sqlite implements the game service stores on SQLite.
//
// Games are stored as one JSON record per row next to a version column; every
// update is a single conditional UPDATE on that version.
package sqlite
