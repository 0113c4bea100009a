package models

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid arguments")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")

	// Abuse-prevention denials, a closed set mirrored by the guard reasons.
	ErrRateLimited  = errors.New("rate limited")
	ErrInvalidEmail = errors.New("invalid email")
	ErrBotDetected  = errors.New("bot or shield denial")

	// ErrUpstream marks object-store / decision-engine / db transport failures.
	ErrUpstream = errors.New("upstream failure")
)
