package domain

import "errors"

var (
	ErrInvalidField         = errors.New("invalid or missing certificate field")
	ErrInconsistentEvidence = errors.New("evidence inconsistent with execution mode")
	ErrEvidenceUnavailable  = errors.New("evidence sample unavailable")
	ErrKeyUnavailable       = errors.New("signing key unavailable")
	ErrSigningFailure       = errors.New("signing operation failed")
)
