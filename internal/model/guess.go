package model

import "strings"

// RoundReward is the number of points a correct guess is worth
const RoundReward = 10

// GuessRequest is the request body for POST /v1/game/guess
type GuessRequest struct {
	Guess string `json:"guess"`
}

// GuessResult is returned after a guess is evaluated
type GuessResult struct {
	Correct bool   `json:"correct"`
	Score   int    `json:"score,omitempty"`  // New total, only set when correct
	Answer  string `json:"answer,omitempty"` // Revealed only when correct
}

// NormalizeGuess lower-cases and trims a guess or an expected answer
func NormalizeGuess(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
