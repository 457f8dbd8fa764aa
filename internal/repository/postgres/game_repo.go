package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fourline/server/internal/domain"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

// LeaderboardEntry is one row of the win-count ranking. The win rate is
// computed at query time from wins and games played.
type LeaderboardEntry struct {
	Username    string  `json:"username"`
	Wins        int     `json:"wins"`
	GamesPlayed int     `json:"games_played"`
	WinRate     float64 `json:"win_rate"`
}

// GameRecord is one persisted completed game.
type GameRecord struct {
	ID        int64     `json:"id"`
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Winner    *string   `json:"winner"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveGame records a completed game with its full ordered move log.
func (r *GameRepo) SaveGame(player1, player2 string, winner *string, moves []domain.Move) error {
	moveLog, err := json.Marshal(moves)
	if err != nil {
		return fmt.Errorf("failed to marshal move log: %v", err)
	}

	query := `
	INSERT INTO games(player1, player2, winner, moves)
	VALUES($1, $2, $3, $4);
	`
	if _, err := r.DB.Exec(query, player1, player2, winner, moveLog); err != nil {
		return fmt.Errorf("failed to insert game record: %v", err)
	}
	return nil
}

// RecordWin increments the winner's aggregate counters, creating the
// row if the player has never won before.
func (r *GameRepo) RecordWin(username string) error {
	query := `
	INSERT INTO leaderboard(username, wins, games_played)
	VALUES($1, 1, 1)
	ON CONFLICT (username)
	DO UPDATE SET wins = leaderboard.wins + 1, games_played = leaderboard.games_played + 1;
	`
	if _, err := r.DB.Exec(query, username); err != nil {
		return fmt.Errorf("failed to record win for %s: %v", username, err)
	}
	return nil
}

// GetLeaderboard returns the top players ordered by wins, then win rate.
func (r *GameRepo) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	query := `
	SELECT username, wins, games_played,
		CASE
			WHEN games_played > 0 THEN ROUND((wins::decimal / games_played) * 100, 1)
			ELSE 0
		END AS win_rate
	FROM leaderboard
	ORDER BY wins DESC, win_rate DESC
	LIMIT $1;
	`

	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %v", err)
	}
	defer rows.Close()

	leaderboard := []LeaderboardEntry{}
	for rows.Next() {
		var entry LeaderboardEntry
		if err := rows.Scan(&entry.Username, &entry.Wins, &entry.GamesPlayed, &entry.WinRate); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %v", err)
		}
		leaderboard = append(leaderboard, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard rows: %v", err)
	}
	return leaderboard, nil
}

// GetPlayerHistory returns a player's most recent completed games.
func (r *GameRepo) GetPlayerHistory(username string, limit int) ([]GameRecord, error) {
	query := `
	SELECT id, player1, player2, winner, created_at
	FROM games
	WHERE player1 = $1 OR player2 = $1
	ORDER BY created_at DESC
	LIMIT $2;
	`

	rows, err := r.DB.Query(query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %v", err)
	}
	defer rows.Close()

	history := []GameRecord{}
	for rows.Next() {
		var record GameRecord
		var winner sql.NullString
		if err := rows.Scan(&record.ID, &record.Player1, &record.Player2, &winner, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %v", err)
		}
		if winner.Valid {
			record.Winner = &winner.String
		}
		history = append(history, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game rows: %v", err)
	}
	return history, nil
}
