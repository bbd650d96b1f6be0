package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/healthlog/healthlog/internal/model"
)

const providerColumns = "id, user_id, provider_name, provider_type, specialty, phone, email, office_address, notes, soft_deleted_at, created_at, updated_at"

// ProviderRepo encapsulates all database queries against the providers
// table. Providers are only ever soft-deleted because visits and
// medications keep foreign keys into them.
type ProviderRepo struct{ DB *sql.DB }

func NewProviderRepo(db *sql.DB) *ProviderRepo { return &ProviderRepo{DB: db} }

func scanProvider(row *sql.Row) (*model.Provider, error) {
	var p model.Provider
	err := row.Scan(&p.ID, &p.UserID, &p.ProviderName, &p.ProviderType, &p.Specialty,
		&p.Phone, &p.Email, &p.OfficeAddress, &p.Notes, &p.SoftDeletedAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a provider and reloads the generated id and timestamps.
func (r *ProviderRepo) Create(ctx context.Context, p *model.Provider) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO providers (user_id, provider_name, provider_type, specialty, phone, email, office_address, notes) VALUES (?,?,?,?,?,?,?,?)",
		p.UserID, p.ProviderName, p.ProviderType, p.Specialty, p.Phone, p.Email, p.OfficeAddress, p.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	row := r.DB.QueryRowContext(ctx,
		"SELECT "+providerColumns+" FROM providers WHERE id = ?", p.ID)
	loaded, err := scanProvider(row)
	if err != nil {
		return err
	}
	*p = *loaded
	return nil
}

// GetByIDAndUser fetches an active provider owned by userID. Absence and
// foreign ownership both yield ErrProviderNotFound.
func (r *ProviderRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.Provider, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+providerColumns+" FROM providers WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL", id, userID)
	return scanProvider(row)
}

// GetAnyByID fetches a provider by id, soft-deleted rows included. Used by
// medication views to resolve a linked provider and annotate its deletion
// state rather than hide the medication.
func (r *ProviderRepo) GetAnyByID(ctx context.Context, id uint64) (*model.Provider, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+providerColumns+" FROM providers WHERE id = ?", id)
	return scanProvider(row)
}

// ListActiveByUser returns the user's active providers ordered
// alphabetically by name.
func (r *ProviderRepo) ListActiveByUser(ctx context.Context, userID uint64) ([]*model.Provider, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+providerColumns+" FROM providers WHERE user_id = ? AND soft_deleted_at IS NULL ORDER BY provider_name ASC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Provider
	for rows.Next() {
		var p model.Provider
		if err := rows.Scan(&p.ID, &p.UserID, &p.ProviderName, &p.ProviderType, &p.Specialty,
			&p.Phone, &p.Email, &p.OfficeAddress, &p.Notes, &p.SoftDeletedAt,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Update persists the mutable columns of p, re-checking ownership and
// active status in the WHERE clause. Zero affected rows means the record
// vanished (or never belonged to the caller) and maps to not-found.
func (r *ProviderRepo) Update(ctx context.Context, p *model.Provider) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE providers
		 SET provider_name = ?, provider_type = ?, specialty = ?, phone = ?, email = ?, office_address = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL`,
		p.ProviderName, p.ProviderType, p.Specialty, p.Phone, p.Email, p.OfficeAddress, p.Notes, p.ID, p.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProviderNotFound
	}
	return nil
}

// SoftDelete stamps soft_deleted_at on an active provider owned by userID.
// A second call finds no active row and reports not-found.
func (r *ProviderRepo) SoftDelete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE providers SET soft_deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL",
		id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProviderNotFound
	}
	return nil
}
