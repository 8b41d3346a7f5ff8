// Package migrations embeds the SQL schema of the game store.
package migrations
