package storage

import (
	"errors"

	"github.com/oxygenesis/wipecert/internal/domain"
)

var (
	ErrNotFound      = errors.New("certificate not found")
	ErrAlreadyExists = errors.New("certificate already exists")
)

// Repository persists signed certificate bundles. Bundles are immutable:
// there is no update operation, corrections are stored as new certificates.
type Repository interface {
	Save(b *domain.Bundle) error
	Get(id string) (*domain.Bundle, error)
	List() ([]*domain.Bundle, error)
	Close() error
}
