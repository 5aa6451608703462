package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver registration

	"github.com/oxygenesis/wipecert/internal/domain"
)

// SQLite is the durable certificate registry. The full bundle is stored as
// JSON alongside indexed columns for listing and audit queries.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates a registry database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS certificates (
			id        TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			method    TEXT NOT NULL,
			mode      TEXT NOT NULL,
			ts        TEXT NOT NULL,
			key_id    TEXT NOT NULL,
			bundle    TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_certificates_device ON certificates(device_id);
		CREATE INDEX IF NOT EXISTS idx_certificates_ts ON certificates(ts);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

func (s *SQLite) Save(b *domain.Bundle) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshaling bundle: %w", err)
	}
	c := &b.Certificate
	_, err = s.db.Exec(
		`INSERT INTO certificates (id, device_id, method, mode, ts, key_id, bundle) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.DeviceID, c.WipeMethod, string(c.ExecutionMode), c.Timestamp, b.Signature.KeyID, string(doc),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("inserting certificate: %w", err)
	}
	return nil
}

func (s *SQLite) Get(id string) (*domain.Bundle, error) {
	var doc string
	err := s.db.QueryRow(`SELECT bundle FROM certificates WHERE id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying certificate: %w", err)
	}
	var b domain.Bundle
	if err := json.Unmarshal([]byte(doc), &b); err != nil {
		return nil, fmt.Errorf("decoding stored bundle %s: %w", id, err)
	}
	return &b, nil
}

func (s *SQLite) List() ([]*domain.Bundle, error) {
	rows, err := s.db.Query(`SELECT bundle FROM certificates ORDER BY ts, id`)
	if err != nil {
		return nil, fmt.Errorf("listing certificates: %w", err)
	}
	defer rows.Close()

	var out []*domain.Bundle
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var b domain.Bundle
		if err := json.Unmarshal([]byte(doc), &b); err != nil {
			return nil, fmt.Errorf("decoding stored bundle: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error text.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

var _ Repository = (*SQLite)(nil)
