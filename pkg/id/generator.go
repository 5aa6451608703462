package id

import "github.com/google/uuid"

// Generator creates unique certificate IDs.
type Generator interface {
	New() string
}

type UUIDv4 struct{}

func (UUIDv4) New() string { return uuid.NewString() }
