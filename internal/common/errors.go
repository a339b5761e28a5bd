// Package common defines sentinel errors shared by the repository, service
// and HTTP layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrLoginTaken = errors.New("login already exists")

	// Service-level errors.
	ErrUnknownIdentity   = errors.New("unknown identity")
	ErrMergeIncompatible = errors.New("patch is incompatible with stored record")

	// Boundary errors.
	ErrInvalidArgument = errors.New("invalid argument")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
