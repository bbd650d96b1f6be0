package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/healthlog/healthlog/internal/model"
)

const symptomColumns = "id, user_id, symptom_name, severity, onset_date, end_date, description, location_on_body, triggers, related_condition, related_medications, medications_taken, status, soft_deleted_at, created_at, updated_at"

// SymptomRepo encapsulates all database queries against the symptoms table.
type SymptomRepo struct{ DB *sql.DB }

func NewSymptomRepo(db *sql.DB) *SymptomRepo { return &SymptomRepo{DB: db} }

func scanSymptomRow(s *model.Symptom, scan func(...any) error) error {
	return scan(&s.ID, &s.UserID, &s.SymptomName, &s.Severity, &s.OnsetDate, &s.EndDate,
		&s.Description, &s.LocationOnBody, &s.Triggers, &s.RelatedCondition,
		&s.RelatedMedications, &s.MedicationsTaken, &s.Status, &s.SoftDeletedAt,
		&s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a symptom and reloads the generated id and timestamps.
func (r *SymptomRepo) Create(ctx context.Context, s *model.Symptom) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO symptoms (user_id, symptom_name, severity, onset_date, end_date, description, location_on_body, triggers, related_condition, related_medications, medications_taken, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.UserID, s.SymptomName, s.Severity, s.OnsetDate, s.EndDate, s.Description,
		s.LocationOnBody, s.Triggers, s.RelatedCondition, s.RelatedMedications,
		s.MedicationsTaken, s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	row := r.DB.QueryRowContext(ctx, "SELECT "+symptomColumns+" FROM symptoms WHERE id = ?", s.ID)
	var loaded model.Symptom
	if err := scanSymptomRow(&loaded, row.Scan); err != nil {
		return err
	}
	*s = loaded
	return nil
}

// GetByIDAndUser fetches an active symptom owned by userID; absence and
// foreign ownership both yield ErrSymptomNotFound.
func (r *SymptomRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.Symptom, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+symptomColumns+" FROM symptoms WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL", id, userID)
	var s model.Symptom
	if err := scanSymptomRow(&s, row.Scan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSymptomNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByUser returns all active symptoms for a user, newest onset first.
func (r *SymptomRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Symptom, error) {
	return r.list(ctx,
		"SELECT "+symptomColumns+" FROM symptoms WHERE user_id = ? AND soft_deleted_at IS NULL ORDER BY onset_date DESC",
		userID)
}

// ListByUserAndStatus returns active symptoms in a given status, newest
// onset first.
func (r *SymptomRepo) ListByUserAndStatus(ctx context.Context, userID uint64, status string) ([]*model.Symptom, error) {
	return r.list(ctx,
		"SELECT "+symptomColumns+" FROM symptoms WHERE user_id = ? AND status = ? AND soft_deleted_at IS NULL ORDER BY onset_date DESC",
		userID, status)
}

func (r *SymptomRepo) list(ctx context.Context, q string, args ...any) ([]*model.Symptom, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Symptom
	for rows.Next() {
		var s model.Symptom
		if err := scanSymptomRow(&s, rows.Scan); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Update persists the mutable columns of s, re-checking ownership and
// active status in the WHERE clause.
func (r *SymptomRepo) Update(ctx context.Context, s *model.Symptom) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE symptoms
		 SET symptom_name = ?, severity = ?, onset_date = ?, end_date = ?, description = ?, location_on_body = ?, triggers = ?, related_condition = ?, related_medications = ?, medications_taken = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL`,
		s.SymptomName, s.Severity, s.OnsetDate, s.EndDate, s.Description, s.LocationOnBody,
		s.Triggers, s.RelatedCondition, s.RelatedMedications, s.MedicationsTaken, s.Status,
		s.ID, s.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSymptomNotFound
	}
	return nil
}

// SoftDelete stamps soft_deleted_at on an active symptom owned by userID.
func (r *SymptomRepo) SoftDelete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE symptoms SET soft_deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL",
		id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSymptomNotFound
	}
	return nil
}
