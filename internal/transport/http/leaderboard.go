package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/fourline/server/internal/repository/postgres"
	"github.com/fourline/server/internal/repository/redis"
)

const (
	leaderboardCacheKey = "leaderboard"
	leaderboardCacheTTL = 30 * time.Second
	defaultLimit        = 10
	maxLimit            = 100
)

// LeaderboardHandler serves the win-count ranking, fronted by a short
// redis cache so a hot leaderboard doesn't hammer Postgres.
type LeaderboardHandler struct {
	Repo  *postgres.GameRepo
	Cache *redis.Cache
}

func NewLeaderboardHandler(repo *postgres.GameRepo, cache *redis.Cache) *LeaderboardHandler {
	return &LeaderboardHandler{Repo: repo, Cache: cache}
}

func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if cached, ok := h.Cache.Get(r.Context(), leaderboardCacheKey); ok {
		w.Write([]byte(cached))
		return
	}

	leaderboard, err := h.Repo.GetLeaderboard(defaultLimit)
	if err != nil {
		log.Printf("[HTTP] Failed to fetch leaderboard: %v", err)
		http.Error(w, "Failed to fetch leaderboard", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(leaderboard)
	if err != nil {
		http.Error(w, "Failed to encode leaderboard", http.StatusInternalServerError)
		return
	}

	h.Cache.Set(r.Context(), leaderboardCacheKey, string(payload), leaderboardCacheTTL)
	w.Write(payload)
}

// HistoryHandler serves a player's recent completed games.
type HistoryHandler struct {
	Repo *postgres.GameRepo
}

func NewHistoryHandler(repo *postgres.GameRepo) *HistoryHandler {
	return &HistoryHandler{Repo: repo}
}

func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLimit {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	history, err := h.Repo.GetPlayerHistory(username, limit)
	if err != nil {
		log.Printf("[HTTP] Failed to fetch history for %s: %v", username, err)
		http.Error(w, "Failed to fetch history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}
