package service

import "errors"

var (
	// ErrNotFound is returned when the catalog has no subject for an id
	ErrNotFound = errors.New("catalog subject not found")
	// ErrInvalidPayload is returned when the catalog answered with data we can't serve
	ErrInvalidPayload = errors.New("invalid catalog payload")
	// ErrUpstreamUnavailable is returned on network or HTTP failures talking to the catalog
	ErrUpstreamUnavailable = errors.New("catalog unavailable")
	// ErrUpstreamExhausted is returned when refilling gave up after too many failures
	ErrUpstreamExhausted = errors.New("catalog exhausted: no rounds available")
	// ErrCacheUnavailable is returned when the queue or round state store fails
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrLedgerUnavailable is returned when the score ledger write fails
	ErrLedgerUnavailable = errors.New("score ledger unavailable")
)
