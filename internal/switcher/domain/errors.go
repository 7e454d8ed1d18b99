package domain

import "errors"

// Exported error variables allow callers to use errors.Is() for error checking.
var (
	ErrInstallationNotFound = errors.New("osu! installation not found")
	ErrConfigCorrupted      = errors.New("config file is corrupted")
	ErrConfigWriteFailed    = errors.New("failed to write config file")
	ErrDatabaseEditFailed   = errors.New("failed to edit osu!.db")
	ErrRelaunchFailed       = errors.New("failed to relaunch osu!")
	ErrUserCancelled        = errors.New("cancelled by user")

	ErrServerEmpty   = errors.New("server cannot be empty")
	ErrServerInvalid = errors.New("server must be a domain (containing '.') or 'localhost'")
)
