package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/healthlog/healthlog/internal/model"
)

const visitColumns = "id, user_id, provider_id, visit_date, visit_time, visit_reason, status, soft_deleted_at, created_at, updated_at"

// VisitRepo encapsulates all database queries against the visits table.
type VisitRepo struct{ DB *sql.DB }

func NewVisitRepo(db *sql.DB) *VisitRepo { return &VisitRepo{DB: db} }

func scanVisitRow(v *model.Visit, scan func(...any) error) error {
	return scan(&v.ID, &v.UserID, &v.ProviderID, &v.VisitDate, &v.VisitTime,
		&v.VisitReason, &v.Status, &v.SoftDeletedAt, &v.CreatedAt, &v.UpdatedAt)
}

// Create inserts a visit and reloads the generated id and timestamps.
// New visits always start out scheduled.
func (r *VisitRepo) Create(ctx context.Context, v *model.Visit) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO visits (user_id, provider_id, visit_date, visit_time, visit_reason, status) VALUES (?,?,?,?,?,?)",
		v.UserID, v.ProviderID, v.VisitDate, v.VisitTime, v.VisitReason, v.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)

	row := r.DB.QueryRowContext(ctx, "SELECT "+visitColumns+" FROM visits WHERE id = ?", v.ID)
	var loaded model.Visit
	if err := scanVisitRow(&loaded, row.Scan); err != nil {
		return err
	}
	*v = loaded
	return nil
}

// GetByIDAndUser fetches an active visit owned by userID; absence and
// foreign ownership both yield ErrVisitNotFound.
func (r *VisitRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.Visit, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+visitColumns+" FROM visits WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL", id, userID)
	var v model.Visit
	if err := scanVisitRow(&v, row.Scan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVisitNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListByUser returns all active visits for a user, most recent date first.
func (r *VisitRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Visit, error) {
	return r.list(ctx,
		"SELECT "+visitColumns+" FROM visits WHERE user_id = ? AND soft_deleted_at IS NULL ORDER BY visit_date DESC",
		userID)
}

// ListByUserAndStatus returns active visits in a given status. Upcoming
// views want soonest-first (ascending=true), completed views want most
// recent first.
func (r *VisitRepo) ListByUserAndStatus(ctx context.Context, userID uint64, status string, ascending bool) ([]*model.Visit, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	return r.list(ctx,
		"SELECT "+visitColumns+" FROM visits WHERE user_id = ? AND status = ? AND soft_deleted_at IS NULL ORDER BY visit_date "+order,
		userID, status)
}

func (r *VisitRepo) list(ctx context.Context, q string, args ...any) ([]*model.Visit, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Visit
	for rows.Next() {
		var v model.Visit
		if err := scanVisitRow(&v, rows.Scan); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// Update persists the mutable columns of v, re-checking ownership and
// active status in the WHERE clause. Status-transition rules are enforced
// by the handler before the row is written.
func (r *VisitRepo) Update(ctx context.Context, v *model.Visit) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE visits
		 SET visit_date = ?, visit_time = ?, visit_reason = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL`,
		v.VisitDate, v.VisitTime, v.VisitReason, v.Status, v.ID, v.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVisitNotFound
	}
	return nil
}

// SoftDelete stamps soft_deleted_at on an active visit owned by userID.
func (r *VisitRepo) SoftDelete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE visits SET soft_deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL",
		id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVisitNotFound
	}
	return nil
}
