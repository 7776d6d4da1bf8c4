package model

import "time"

// Game is a scheduled contest supplied by the schedule source.
type Game struct {
	ID        string    `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	StartTime time.Time `json:"start_time"`
}

// GameLog is one historical stat outcome for a player, as returned by the
// historical stats source. Series are ordered most-recent-first.
type GameLog struct {
	GameID   string    `json:"game_id"`
	PlayedAt time.Time `json:"played_at"`
	Value    float64   `json:"value"`
}
