package services

import (
	"errors"
	"fmt"
)

// ErrIneligible groups the soft failures of the registration engine: the
// request was valid but cannot be satisfied. Callers render these as user
// messages, everything else is a fault.
var ErrIneligible = errors.New("registration not possible")

var (
	ErrTeamNotFound       = ineligible("team not found")
	ErrRoleTaken          = ineligible("role is already taken")
	ErrTeamFull           = ineligible("team is full")
	ErrAlreadyOnTeam      = ineligible("player is already on this team")
	ErrIneligibleToCreate = ineligible("player already holds a solo team in every offered tournament")
)

var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrNoTournaments      = errors.New("at least one tournament is required")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentConflict = errors.New("tournament already exists")
	ErrRegistrationClosed = errors.New("tournament registration is closed")
	ErrStorageDisabled    = errors.New("roster export storage is not configured")
)

type ineligibleError struct {
	msg string
}

func (e *ineligibleError) Error() string { return e.msg }

func (e *ineligibleError) Unwrap() error { return ErrIneligible }

func ineligible(msg string) error {
	return &ineligibleError{msg: msg}
}

// ValidationError carries per-field messages for ErrValidationFailed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrValidationFailed, e.Fields)
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }
