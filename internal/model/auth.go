package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims are JWT claims identifying a player; the identity lives in Subject
type PlayerClaims struct {
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

// GuestRequest is the request body for guest sign-up
type GuestRequest struct {
	Nickname string `json:"nickname"`
}

// GuestResponse is returned after guest sign-up
type GuestResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
}
