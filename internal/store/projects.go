package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gumanista/hate-2-action/internal/encryption"
)

// Project is an externally managed support project. The core treats it as
// read-only input and an embedding target.
type Project struct {
	ID           int64     `json:"project_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Website      string    `json:"website"`
	ContactEmail string    `json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProjectStore reads and writes projects. When an encryptor is configured,
// contact emails are stored as Fernet tokens.
type ProjectStore struct {
	db  *DB
	enc *encryption.Encryptor
}

// NewProjectStore creates a ProjectStore. enc may be nil to store contact
// data in plaintext.
func NewProjectStore(db *DB, enc *encryption.Encryptor) *ProjectStore {
	return &ProjectStore{db: db, enc: enc}
}

// Upsert inserts a project or refreshes an existing one by name, returning
// its id. Re-seeding the same reference data is safe.
func (s *ProjectStore) Upsert(ctx context.Context, p *Project) (int64, error) {
	contact, err := s.sealContact(p.ContactEmail)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (name, description, website, contact_email)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			website = EXCLUDED.website,
			contact_email = EXCLUDED.contact_email
		RETURNING project_id
	`, p.Name, p.Description, p.Website, contact).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert project %q: %w", p.Name, err)
	}
	return id, nil
}

// GetByIDs fetches projects for the given ids, preserving input order.
func (s *ProjectStore) GetByIDs(ctx context.Context, ids []int64) ([]Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Pool.Query(ctx, `
		SELECT project_id, name, description, website, contact_email, created_at
		FROM projects WHERE project_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("get projects: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]Project, len(ids))
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Website, &p.ContactEmail, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.ContactEmail = s.openContact(p.ContactEmail)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]Project, 0, len(byID))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *ProjectStore) sealContact(email string) (string, error) {
	if s.enc == nil || email == "" {
		return email, nil
	}
	tok, err := s.enc.Encrypt(email)
	if err != nil {
		return "", fmt.Errorf("encrypting contact email: %w", err)
	}
	return tok, nil
}

// openContact decrypts a stored contact email. Rows written before
// encryption was enabled decrypt unsuccessfully and are returned as stored.
func (s *ProjectStore) openContact(stored string) string {
	if s.enc == nil || stored == "" {
		return stored
	}
	plain, err := s.enc.Decrypt(stored)
	if err != nil {
		return stored
	}
	return plain
}
