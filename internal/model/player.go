package model

import "time"

// Player is a player's profile and score as kept by the score ledger
type Player struct {
	ID        string    `json:"id" bson:"_id"`
	Nickname  string    `json:"nickname" bson:"nickname"`
	Score     int       `json:"score" bson:"score"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Dashboard is returned by GET /v1/me
type Dashboard struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Rank     int64  `json:"rank"` // -1 when the player has not scored since the mirror was built
}

// LeaderboardEntry represents a single leaderboard row
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}
