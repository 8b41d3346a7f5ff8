package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const defaultWatchInterval = time.Second

// watch upgrades to a websocket and pushes the caller's view of the game
// every time its log grows or it finishes. The stream ends with a normal
// closure once the game is finished.
func (h *handler) watch(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	gameID := r.PathValue("id")
	// Fail before upgrading so the client gets a regular error body.
	snapshot, err := h.svc.GetGame(r.Context(), caller, gameID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logf("watch %s: accept: %v", gameID, err)
		return
	}
	defer conn.CloseNow()
	ctx := conn.CloseRead(r.Context())

	ticker := time.NewTicker(h.watchInterval)
	defer ticker.Stop()
	type mark struct {
		entries  int
		finished bool
	}
	sent := mark{entries: -1}
	for {
		current := mark{entries: len(snapshot.Log), finished: snapshot.FinishedAt != nil}
		if current != sent {
			if err := wsjson.Write(ctx, conn, snapshot); err != nil {
				if !errors.Is(err, context.Canceled) {
					h.logf("watch %s: write: %v", gameID, err)
				}
				return
			}
			sent = current
		}
		if current.finished {
			conn.Close(websocket.StatusNormalClosure, "game finished")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		snapshot, err = h.svc.GetGame(ctx, caller, gameID)
		if err != nil {
			if ctx.Err() == nil {
				h.logf("watch %s: %v", gameID, err)
				conn.Close(websocket.StatusInternalError, "internal error")
			}
			return
		}
	}
}
