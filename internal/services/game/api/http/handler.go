package httpapi

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/jinrou/internal/platform/callertoken"
	apperrors "github.com/louisbranch/jinrou/internal/platform/errors"
	"github.com/louisbranch/jinrou/internal/platform/requestctx"
	"github.com/louisbranch/jinrou/internal/platform/timeouts"
	"github.com/louisbranch/jinrou/internal/services/game/domain/action"
	"github.com/louisbranch/jinrou/internal/services/game/domain/game"
	"github.com/louisbranch/jinrou/internal/services/game/domain/lifecycle"
	"github.com/louisbranch/jinrou/internal/services/game/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// UserIDHeader carries the authenticated caller.
const UserIDHeader = "X-Jinrou-User-ID"

// Service is the application surface the handlers call.
type Service interface {
	EnterPool(ctx context.Context, userID, name string, ready bool) (storage.Player, error)
	LeavePool(ctx context.Context, userID string) error
	CreateGame(ctx context.Context, userID string, table lifecycle.Table) (game.Snapshot, error)
	Submit(ctx context.Context, caller action.Caller, gameID string, req action.Request) (game.Snapshot, error)
	AbortGame(ctx context.Context, caller action.Caller, gameID string) (game.Snapshot, error)
	GetGame(ctx context.Context, caller action.Caller, gameID string) (game.Snapshot, error)
	ListHistory(ctx context.Context, userID string, limit int, filter string) ([]lifecycle.PlayerHistory, error)
}

// Config tunes the handler.
type Config struct {
	AdminUserIDs []string
	// Tokens, when set, requires a signed caller token in the Authorization
	// header instead of trusting UserIDHeader.
	Tokens         *callertoken.Config
	RequestTimeout time.Duration
	// WatchInterval is how often a watch stream polls for changes.
	WatchInterval time.Duration
	Logf          func(format string, args ...any)
}

type handler struct {
	svc           Service
	admins        []string
	tokens        *callertoken.Config
	watchInterval time.Duration
	logf          func(string, ...any)
}

// NewHandler routes the API onto svc.
func NewHandler(svc Service, cfg Config) http.Handler {
	h := &handler{svc: svc, tokens: cfg.Tokens, watchInterval: cfg.WatchInterval, logf: cfg.Logf}
	for _, admin := range cfg.AdminUserIDs {
		if admin = strings.TrimSpace(admin); admin != "" {
			h.admins = append(h.admins, admin)
		}
	}
	if h.logf == nil {
		h.logf = func(string, ...any) {}
	}
	if h.watchInterval <= 0 {
		h.watchInterval = defaultWatchInterval
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = timeouts.Request
	}

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v1/pool", h.enterPool)
	mux.HandleFunc("DELETE /v1/pool", h.leavePool)
	mux.HandleFunc("POST /v1/games", h.createGame)
	mux.HandleFunc("GET /v1/games/{id}", h.getGame)
	mux.HandleFunc("POST /v1/games/{id}/actions", h.submit)
	mux.HandleFunc("POST /v1/games/{id}/abort", h.abort)
	mux.HandleFunc("GET /v1/history", h.history)

	// Watch streams outlive the request timeout.
	root := http.NewServeMux()
	root.HandleFunc("GET /v1/games/{id}/watch", h.watch)
	root.Handle("/", withTimeout(mux, timeout))

	return otelhttp.NewHandler(h.identify(root), "jinrou.http")
}

// identify stores the caller in the request context and rejects anonymous
// requests.
func (h *handler) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, admin, err := h.caller(r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		admin = admin || slices.Contains(h.admins, userID)
		next.ServeHTTP(w, r.WithContext(requestctx.WithCaller(r.Context(), userID, admin)))
	})
}

func (h *handler) caller(r *http.Request) (string, bool, error) {
	if h.tokens != nil {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			return "", false, apperrors.New(apperrors.CodeUnauthenticated, "missing bearer token")
		}
		claims, err := callertoken.Verify(token, *h.tokens)
		if err != nil {
			return "", false, err
		}
		return claims.UserID, claims.Admin, nil
	}
	userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if userID == "" {
		return "", false, apperrors.New(apperrors.CodeUnauthenticated, "missing "+UserIDHeader+" header")
	}
	return userID, false, nil
}

func withTimeout(next http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFrom(r *http.Request) action.Caller {
	return action.Caller{
		UserID: requestctx.UserIDFromContext(r.Context()),
		Admin:  requestctx.IsAdmin(r.Context()),
	}
}

type enterPoolRequest struct {
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

type playerResponse struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Ready    bool      `json:"ready"`
	GameID   string    `json:"gameId,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (h *handler) enterPool(w http.ResponseWriter, r *http.Request) {
	var req enterPoolRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	player, err := h.svc.EnterPool(r.Context(), callerFrom(r).UserID, req.Name, req.Ready)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playerResponse{
		UserID:   player.UserID,
		Name:     player.Name,
		Ready:    player.Ready,
		GameID:   player.GameID,
		JoinedAt: player.JoinedAt,
	})
}

func (h *handler) leavePool(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.LeavePool(r.Context(), callerFrom(r).UserID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) createGame(w http.ResponseWriter, r *http.Request) {
	var table lifecycle.Table
	if err := decodeJSON(w, r, &table); err != nil {
		h.writeError(w, err)
		return
	}
	snapshot, err := h.svc.CreateGame(r.Context(), callerFrom(r).UserID, table)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/games/"+snapshot.ID)
	writeJSON(w, http.StatusCreated, snapshot)
}

func (h *handler) getGame(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.svc.GetGame(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	var req action.Request
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	snapshot, err := h.svc.Submit(r.Context(), callerFrom(r), r.PathValue("id"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *handler) abort(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.svc.AbortGame(r.Context(), callerFrom(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

type historyResponse struct {
	Games []lifecycle.PlayerHistory `json:"games"`
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, apperrors.New(apperrors.CodeInvalidRequest, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}
	records, err := h.svc.ListHistory(r.Context(), callerFrom(r).UserID, limit, r.URL.Query().Get("filter"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if records == nil {
		records = []lifecycle.PlayerHistory{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Games: records})
}
