// Package storagetest holds the behavior every game store implementation
// must share.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/louisbranch/jinrou/internal/services/game/core/filter"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game/gametest"
	"github.com/louisbranch/jinrou/internal/services/game/domain/lifecycle"
	"github.com/louisbranch/jinrou/internal/services/game/storage"
)

// Opener returns a fresh, empty store owned by t.
type Opener func(t *testing.T) storage.Store

// Run exercises the storage contract against stores built by open.
func Run(t *testing.T, open Opener) {
	t.Run("players", func(t *testing.T) { testPlayers(t, open(t)) })
	t.Run("ready pool", func(t *testing.T) { testReadyPool(t, open(t)) })
	t.Run("create game", func(t *testing.T) { testCreateGame(t, open(t)) })
	t.Run("create game is atomic", func(t *testing.T) { testCreateGameAtomic(t, open(t)) })
	t.Run("swap game", func(t *testing.T) { testSwapGame(t, open(t)) })
	t.Run("release players", func(t *testing.T) { testReleasePlayers(t, open(t)) })
	t.Run("history", func(t *testing.T) { testHistory(t, open(t)) })
	t.Run("canceled context", func(t *testing.T) { testCanceledContext(t, open(t)) })
}

var joined = time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)

// Join inserts a ready player that arrived offset after a fixed instant.
func Join(t *testing.T, store storage.PlayerStore, userID string, offset time.Duration) storage.Player {
	t.Helper()
	player, err := store.PutPlayer(context.Background(), storage.Player{
		UserID:   userID,
		Name:     "Name of " + userID,
		Ready:    true,
		JoinedAt: joined.Add(offset),
	})
	if err != nil {
		t.Fatalf("put player %s: %v", userID, err)
	}
	return player
}

func wantErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
}

func testPlayers(t *testing.T, store storage.Store) {
	ctx := context.Background()

	if _, err := store.GetPlayer(ctx, "user-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing error = %v, want %v", err, storage.ErrNotFound)
	}

	player := Join(t, store, "user-1", 0)
	if player.Version != 1 {
		t.Fatalf("version = %d, want 1", player.Version)
	}
	if _, err := store.PutPlayer(ctx, storage.Player{UserID: "user-1", Name: "again"}); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("second insert error = %v, want %v", err, storage.ErrConflict)
	}

	got, err := store.GetPlayer(ctx, "user-1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if got.Name != "Name of user-1" || !got.Ready || !got.Idle() || !got.JoinedAt.Equal(joined) {
		t.Fatalf("player = %+v", got)
	}

	got.Ready = false
	updated, err := store.PutPlayer(ctx, got)
	if err != nil {
		t.Fatalf("update player: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("updated version = %d, want 2", updated.Version)
	}
	_, err = store.PutPlayer(ctx, got)
	wantErr(t, err, storage.ErrConflict)

	wantErr(t, store.DeletePlayer(ctx, "user-1", 1), storage.ErrConflict)
	if err := store.DeletePlayer(ctx, "user-1", 2); err != nil {
		t.Fatalf("delete player: %v", err)
	}
	_, err = store.GetPlayer(ctx, "user-1")
	wantErr(t, err, storage.ErrNotFound)
}

func testReadyPool(t *testing.T, store storage.Store) {
	ctx := context.Background()
	Join(t, store, "user-3", 3*time.Minute)
	Join(t, store, "user-1", time.Minute)
	Join(t, store, "user-2", 2*time.Minute)
	idle, err := store.PutPlayer(ctx, storage.Player{UserID: "user-4", Name: "idle", JoinedAt: joined})
	if err != nil {
		t.Fatalf("put idle player: %v", err)
	}
	if idle.Ready {
		t.Fatal("idle player should not be ready")
	}

	ready, err := store.ListReadyPlayers(ctx, 10)
	if err != nil {
		t.Fatalf("list ready: %v", err)
	}
	var ids []string
	for _, player := range ready {
		ids = append(ids, player.UserID)
	}
	if fmt.Sprint(ids) != "[user-1 user-2 user-3]" {
		t.Fatalf("ready = %v, want arrival order", ids)
	}

	limited, err := store.ListReadyPlayers(ctx, 2)
	if err != nil {
		t.Fatalf("list ready limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited len = %d, want 2", len(limited))
	}
	if _, err := store.ListReadyPlayers(ctx, 0); err == nil {
		t.Fatal("expected error for zero limit")
	}
}

func fixture(id string, users ...string) game.Game {
	roles := make([]game.Role, len(users))
	for i := range roles {
		roles[i] = game.RoleVillager
	}
	roles[len(roles)-1] = game.RoleWerewolf
	g := gametest.At(gametest.New(roles...), game.InitialStatus())
	g.ID = id
	for i := range g.Agents {
		g.Agents[i].UserID = users[i]
	}
	return g
}

func claimAll(t *testing.T, store storage.Store, users ...string) []storage.Player {
	t.Helper()
	var claims []storage.Player
	for _, user := range users {
		player, err := store.GetPlayer(context.Background(), user)
		if err != nil {
			t.Fatalf("get player %s: %v", user, err)
		}
		claims = append(claims, player)
	}
	return claims
}

func testCreateGame(t *testing.T, store storage.Store) {
	ctx := context.Background()
	Join(t, store, "user-1", 0)
	Join(t, store, "user-2", time.Second)

	g := fixture("game-a", "user-1", "user-2")
	record, err := store.CreateGame(ctx, g, claimAll(t, store, "user-1", "user-2"))
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if record.Version != 1 {
		t.Fatalf("version = %d, want 1", record.Version)
	}

	loaded, err := store.GetGame(ctx, "game-a")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if loaded.Version != 1 || loaded.Game.Status != g.Status || loaded.Game.Log.Len() != g.Log.Len() {
		t.Fatalf("loaded = %+v", loaded)
	}
	if len(loaded.Game.Agents) != 2 || loaded.Game.Agents[1].Role != game.RoleWerewolf {
		t.Fatalf("agents = %+v", loaded.Game.Agents)
	}

	for _, user := range []string{"user-1", "user-2"} {
		player, err := store.GetPlayer(ctx, user)
		if err != nil {
			t.Fatalf("get player: %v", err)
		}
		if player.GameID != "game-a" || player.Version != 2 {
			t.Fatalf("claimed player = %+v", player)
		}
	}
	ready, err := store.ListReadyPlayers(ctx, 10)
	if err != nil {
		t.Fatalf("list ready: %v", err)
	}
	if len(ready) != 0 {
		t.Fatalf("claimed players still ready: %+v", ready)
	}

	_, err = store.CreateGame(ctx, g, nil)
	wantErr(t, err, storage.ErrConflict)
	_, err = store.GetGame(ctx, "missing")
	wantErr(t, err, storage.ErrNotFound)
}

func testCreateGameAtomic(t *testing.T, store storage.Store) {
	ctx := context.Background()
	Join(t, store, "user-1", 0)
	Join(t, store, "user-2", time.Second)
	claims := claimAll(t, store, "user-1", "user-2")

	// user-2 changes between read and claim.
	moved := claims[1]
	moved.Ready = false
	if _, err := store.PutPlayer(ctx, moved); err != nil {
		t.Fatalf("update player: %v", err)
	}

	_, err := store.CreateGame(ctx, fixture("game-a", "user-1", "user-2"), claims)
	wantErr(t, err, storage.ErrConflict)

	_, err = store.GetGame(ctx, "game-a")
	wantErr(t, err, storage.ErrNotFound)
	first, err := store.GetPlayer(ctx, "user-1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if !first.Idle() || first.Version != 1 {
		t.Fatalf("first claim leaked: %+v", first)
	}
}

func testSwapGame(t *testing.T, store storage.Store) {
	ctx := context.Background()
	g := fixture("game-a", "user-1", "user-2")
	record, err := store.CreateGame(ctx, g, nil)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	next := gametest.At(record.Game, gametest.Status(1, game.PeriodDay, game.VotePhaseChat))
	swapped, err := store.SwapGame(ctx, next, record.Version)
	if err != nil {
		t.Fatalf("swap game: %v", err)
	}
	if swapped.Version != 2 {
		t.Fatalf("version = %d, want 2", swapped.Version)
	}

	_, err = store.SwapGame(ctx, next, record.Version)
	wantErr(t, err, storage.ErrConflict)

	missing := next
	missing.ID = "missing"
	_, err = store.SwapGame(ctx, missing, 1)
	wantErr(t, err, storage.ErrNotFound)

	loaded, err := store.GetGame(ctx, "game-a")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if loaded.Version != 2 || loaded.Game.Status.Period != game.PeriodDay {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func testReleasePlayers(t *testing.T, store storage.Store) {
	ctx := context.Background()
	Join(t, store, "user-1", 0)
	Join(t, store, "user-2", time.Second)
	record, err := store.CreateGame(ctx, fixture("game-a", "user-1", "user-2"), claimAll(t, store, "user-1", "user-2"))
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	unreleased, err := store.ListUnreleasedGames(ctx, 10)
	if err != nil {
		t.Fatalf("list unreleased: %v", err)
	}
	if len(unreleased) != 0 {
		t.Fatalf("running game listed as unreleased: %v", unreleased)
	}

	finished := record.Game.Finish(gametest.Epoch.Add(time.Hour), game.TeamVillager)
	if _, err := store.SwapGame(ctx, finished, record.Version); err != nil {
		t.Fatalf("swap finished game: %v", err)
	}
	unreleased, err = store.ListUnreleasedGames(ctx, 10)
	if err != nil {
		t.Fatalf("list unreleased: %v", err)
	}
	if fmt.Sprint(unreleased) != "[game-a]" {
		t.Fatalf("unreleased = %v, want [game-a]", unreleased)
	}

	released, err := store.ReleasePlayers(ctx, "game-a")
	if err != nil {
		t.Fatalf("release players: %v", err)
	}
	if released != 2 {
		t.Fatalf("released = %d, want 2", released)
	}
	player, err := store.GetPlayer(ctx, "user-1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if !player.Idle() || player.Ready || player.Version != 3 {
		t.Fatalf("released player = %+v", player)
	}

	again, err := store.ReleasePlayers(ctx, "game-a")
	if err != nil {
		t.Fatalf("release again: %v", err)
	}
	if again != 0 {
		t.Fatalf("second release = %d, want 0", again)
	}
	unreleased, err = store.ListUnreleasedGames(ctx, 10)
	if err != nil {
		t.Fatalf("list unreleased: %v", err)
	}
	if len(unreleased) != 0 {
		t.Fatalf("unreleased after release = %v", unreleased)
	}
}

func testHistory(t *testing.T, store storage.Store) {
	ctx := context.Background()
	for i, id := range []string{"game-a", "game-b"} {
		g := fixture(id, "user-1", "user-2").Finish(gametest.Epoch.Add(time.Duration(i+1)*time.Hour), game.TeamWerewolf)
		global, players, err := lifecycle.History(g)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		for range 2 {
			if err := store.PutHistory(ctx, global, players); err != nil {
				t.Fatalf("put history %s: %v", id, err)
			}
		}
	}

	records, err := store.ListPlayerHistory(ctx, "user-2", 10, filter.Condition{})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].GameID != "game-b" || records[1].GameID != "game-a" {
		t.Fatalf("order = %s, %s, want newest first", records[0].GameID, records[1].GameID)
	}
	if !records[0].Won || records[0].Role != game.RoleWerewolf || records[0].PlayerCount != 2 {
		t.Fatalf("record = %+v", records[0])
	}
	if !records[0].FinishedAt.Equal(gametest.Epoch.Add(2 * time.Hour)) {
		t.Fatalf("finished at = %v", records[0].FinishedAt)
	}

	limited, err := store.ListPlayerHistory(ctx, "user-1", 1, filter.Condition{})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Won {
		t.Fatalf("limited = %+v", limited)
	}
	later, err := filter.ParseHistoryFilter(`role = "werewolf" AND finished_at > "2026-03-01T21:30:00Z"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	filtered, err := store.ListPlayerHistory(ctx, "user-2", 10, later)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].GameID != "game-b" {
		t.Fatalf("filtered = %+v, want game-b only", filtered)
	}
	lost, err := filter.ParseHistoryFilter(`NOT won AND player_count = 2`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	losses, err := store.ListPlayerHistory(ctx, "user-2", 10, lost)
	if err != nil {
		t.Fatalf("list losses: %v", err)
	}
	if len(losses) != 0 {
		t.Fatalf("losses = %+v, want none", losses)
	}

	none, err := store.ListPlayerHistory(ctx, "user-9", 10, filter.Condition{})
	if err != nil {
		t.Fatalf("list unknown: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("unknown user history = %+v", none)
	}
}

func testCanceledContext(t *testing.T, store storage.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.GetGame(ctx, "game-a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("get game error = %v, want %v", err, context.Canceled)
	}
	if _, err := store.ListReadyPlayers(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("list ready error = %v, want %v", err, context.Canceled)
	}
}
