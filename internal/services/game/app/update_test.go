package server

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	apperrors "github.com/louisbranch/jinrou/internal/platform/errors"
	"github.com/louisbranch/jinrou/internal/services/game/domain/action"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/storage"
	"github.com/louisbranch/jinrou/internal/services/game/storage/memory"
	"golang.org/x/sync/errgroup"
)

// hookStore runs beforeSwap ahead of the first SwapGame call only. The hook
// may itself swap.
type hookStore struct {
	storage.Store
	fired      atomic.Bool
	beforeSwap func()
	swaps      atomic.Int64
}

func (s *hookStore) SwapGame(ctx context.Context, g game.Game, version int64) (storage.GameRecord, error) {
	s.swaps.Add(1)
	if s.beforeSwap != nil && s.fired.CompareAndSwap(false, true) {
		s.beforeSwap()
	}
	return s.Store.SwapGame(ctx, g, version)
}

// conflictStore loses every swap.
type conflictStore struct {
	storage.Store
	swaps atomic.Int64
}

func (s *conflictStore) SwapGame(context.Context, game.Game, int64) (storage.GameRecord, error) {
	s.swaps.Add(1)
	return storage.GameRecord{}, storage.ErrConflict
}

// releaseFailStore fails ReleasePlayers until healed.
type releaseFailStore struct {
	storage.Store
	failing atomic.Bool
}

func (s *releaseFailStore) ReleasePlayers(ctx context.Context, gameID string) (int, error) {
	if s.failing.Load() {
		return 0, fmt.Errorf("disk unavailable")
	}
	return s.Store.ReleasePlayers(ctx, gameID)
}

func TestLostRaceIsRecomputedFromFreshRecord(t *testing.T) {
	ctx := context.Background()
	store := &hookStore{Store: memory.New()}
	svc := newTestService(t, store)
	g := startGame(t, svc, store)

	var competing error
	store.beforeSwap = func() {
		// The same agent ends its turn concurrently and commits first.
		_, competing = svc.Submit(ctx, as(1), g.ID, action.Request{Kind: action.KindOver})
	}

	_, err := svc.Submit(ctx, as(1), g.ID, action.Request{Kind: action.KindOver})
	if competing != nil {
		t.Fatalf("competing submit: %v", competing)
	}
	wantCode(t, err, apperrors.CodeDuplicate)

	record, err := store.GetGame(ctx, g.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	overs := game.Filter(record.Game.Log.Entries(), func(entry game.Entry) bool {
		return entry.Kind == game.EntryOver && entry.Actor == 1
	})
	if len(overs) != 1 {
		t.Fatalf("over entries = %d, want exactly 1", len(overs))
	}
	if record.Version != 2 {
		t.Fatalf("version = %d, want 2", record.Version)
	}
}

func TestConcurrentSubmitsAllCommit(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newTestService(t, store, func(cfg *Config) { cfg.MaxUpdateAttempts = 64 })
	g := startGame(t, svc, store)

	var group errgroup.Group
	for n := 1; n <= 4; n++ {
		group.Go(func() error {
			_, err := svc.Submit(ctx, as(n), g.ID, action.Request{Kind: action.KindTalk, Content: fmt.Sprintf("from %d", n)})
			return err
		})
	}
	if err := group.Wait(); err != nil {
		t.Fatalf("concurrent submit: %v", err)
	}

	record, err := store.GetGame(ctx, g.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	talks := game.Filter(record.Game.Log.Entries(), game.OfKind(game.EntryTalk))
	if len(talks) != 4 {
		t.Fatalf("talk entries = %d, want 4", len(talks))
	}
	var last int64
	for _, entry := range record.Game.Log.Entries() {
		if entry.ID <= last {
			t.Fatalf("entry ids not increasing: %d after %d", entry.ID, last)
		}
		last = entry.ID
	}
	if record.Version != 5 {
		t.Fatalf("version = %d, want one write per submit", record.Version)
	}
}

func TestUpdateGivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	base := memory.New()
	g := startGame(t, newTestService(t, base), base)

	store := &conflictStore{Store: base}
	svc := newTestService(t, store, func(cfg *Config) { cfg.MaxUpdateAttempts = 3 })
	_, err := svc.Submit(ctx, as(1), g.ID, action.Request{Kind: action.KindTalk, Content: "hello"})
	wantCode(t, err, apperrors.CodeCommitFailed)
	if got := store.swaps.Load(); got != 3 {
		t.Fatalf("swaps = %d, want 3", got)
	}
}

func TestInvariantFailureIsNotRetried(t *testing.T) {
	ctx := context.Background()
	base := &hookStore{Store: memory.New()}
	g := startGame(t, newTestService(t, base), base)
	before := base.swaps.Load()

	var logged []string
	svc := newTestService(t, base, func(cfg *Config) {
		cfg.NewRand = func() (game.Rand, error) { return nil, nil }
		cfg.Logf = func(format string, args ...any) { logged = append(logged, fmt.Sprintf(format, args...)) }
	})
	_, err := svc.Submit(ctx, as(1), g.ID, action.Request{Kind: action.KindTalk, Content: "hello"})
	wantCode(t, err, apperrors.CodeInternal)
	if got := base.swaps.Load() - before; got != 0 {
		t.Fatalf("swaps = %d, want none", got)
	}
	if len(logged) == 0 {
		t.Fatal("invariant violation was not logged")
	}
}

func TestReconcileFinishesStuckGames(t *testing.T) {
	ctx := context.Background()
	store := &releaseFailStore{Store: memory.New()}
	svc := newTestService(t, store)
	g := startGame(t, svc, store)

	store.failing.Store(true)
	if _, err := svc.AbortGame(ctx, admin, g.ID); err != nil {
		t.Fatalf("abort: %v", err)
	}
	player, err := store.GetPlayer(ctx, user(1))
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if player.Idle() {
		t.Fatal("release should have failed")
	}

	store.failing.Store(false)
	done, err := svc.ReconcileFinished(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if done != 1 {
		t.Fatalf("reconciled = %d, want 1", done)
	}
	player, err = store.GetPlayer(ctx, user(1))
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if !player.Idle() {
		t.Fatalf("player still claimed: %+v", player)
	}
	records, err := svc.ListHistory(ctx, user(1), 10, "")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("history records = %d, want 1 after the repeated write", len(records))
	}

	done, err = svc.ReconcileFinished(ctx)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if done != 0 {
		t.Fatalf("second reconcile = %d, want 0", done)
	}
}
