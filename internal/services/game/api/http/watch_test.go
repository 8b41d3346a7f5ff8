package httpapi_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	httpapi "github.com/louisbranch/jinrou/internal/services/game/api/http"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
)

func dialWatch(ctx context.Context, t *testing.T, url, userID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	header.Set(httpapi.UserIDHeader, userID)
	return websocket.Dial(ctx, "ws"+strings.TrimPrefix(url, "http"), &websocket.DialOptions{HTTPHeader: header})
}

func TestWatchStreamsUntilFinished(t *testing.T) {
	srv := newServer(t)
	snapshot := createGame(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := dialWatch(ctx, t, srv.URL+"/v1/games/"+snapshot.ID+"/watch", "user-2")
	if err != nil {
		t.Fatalf("dial watch: %v", err)
	}
	defer conn.CloseNow()

	var first game.Snapshot
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		t.Fatalf("read first snapshot: %v", err)
	}
	if first.ID != snapshot.ID || first.Self != 2 || first.FinishedAt != nil {
		t.Fatalf("first snapshot = %+v", first)
	}

	resp := do(t, srv, http.MethodPost, "/v1/games/"+snapshot.ID+"/actions", "user-3", `{"kind":"talk","content":"anyone?"}`)
	wantStatus(t, resp, http.StatusOK)
	var next game.Snapshot
	if err := wsjson.Read(ctx, conn, &next); err != nil {
		t.Fatalf("read after talk: %v", err)
	}
	if len(next.Log) != len(first.Log)+1 {
		t.Fatalf("log len = %d, want %d", len(next.Log), len(first.Log)+1)
	}

	resp = do(t, srv, http.MethodPost, "/v1/games/"+snapshot.ID+"/abort", adminID, "")
	wantStatus(t, resp, http.StatusOK)
	var last game.Snapshot
	if err := wsjson.Read(ctx, conn, &last); err != nil {
		t.Fatalf("read after abort: %v", err)
	}
	if !last.WasAborted {
		t.Fatalf("last snapshot = %+v, want aborted", last)
	}
	_, _, err = conn.Read(ctx)
	if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure {
		t.Fatalf("close status = %v (%v), want normal closure", status, err)
	}
}

func TestWatchUnknownGame(t *testing.T) {
	srv := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := dialWatch(ctx, t, srv.URL+"/v1/games/missing/watch", "user-1")
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("response = %v, want 404", resp)
	}
}
