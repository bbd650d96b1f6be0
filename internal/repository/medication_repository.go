package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/healthlog/healthlog/internal/model"
)

const medicationColumns = "id, user_id, prescribing_provider_id, prescribed_during_visit_id, medication_name, dosage, frequency, conditions_or_symptoms, prescribed_date, instructions, status, soft_deleted_at, created_at, updated_at"

// MedicationRepo encapsulates all database queries against the medications
// table.
type MedicationRepo struct{ DB *sql.DB }

func NewMedicationRepo(db *sql.DB) *MedicationRepo { return &MedicationRepo{DB: db} }

func scanMedicationRow(m *model.Medication, scan func(...any) error) error {
	return scan(&m.ID, &m.UserID, &m.PrescribingProviderID, &m.PrescribedDuringVisitID,
		&m.MedicationName, &m.Dosage, &m.Frequency, &m.ConditionsOrSymptoms,
		&m.PrescribedDate, &m.Instructions, &m.Status, &m.SoftDeletedAt,
		&m.CreatedAt, &m.UpdatedAt)
}

// Create inserts a medication and reloads the generated id and timestamps.
func (r *MedicationRepo) Create(ctx context.Context, m *model.Medication) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO medications (user_id, prescribing_provider_id, prescribed_during_visit_id, medication_name, dosage, frequency, conditions_or_symptoms, prescribed_date, instructions, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		m.UserID, m.PrescribingProviderID, m.PrescribedDuringVisitID, m.MedicationName,
		m.Dosage, m.Frequency, m.ConditionsOrSymptoms, m.PrescribedDate, m.Instructions, m.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)

	row := r.DB.QueryRowContext(ctx, "SELECT "+medicationColumns+" FROM medications WHERE id = ?", m.ID)
	var loaded model.Medication
	if err := scanMedicationRow(&loaded, row.Scan); err != nil {
		return err
	}
	*m = loaded
	return nil
}

// GetByIDAndUser fetches an active medication owned by userID; absence and
// foreign ownership both yield ErrMedicationNotFound.
func (r *MedicationRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.Medication, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+medicationColumns+" FROM medications WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL", id, userID)
	var m model.Medication
	if err := scanMedicationRow(&m, row.Scan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMedicationNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByUser returns all active medications for a user, newest first.
func (r *MedicationRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Medication, error) {
	return r.list(ctx,
		"SELECT "+medicationColumns+" FROM medications WHERE user_id = ? AND soft_deleted_at IS NULL ORDER BY created_at DESC",
		userID)
}

// ListByUserAndStatus returns active medications in a given status, newest
// first.
func (r *MedicationRepo) ListByUserAndStatus(ctx context.Context, userID uint64, status string) ([]*model.Medication, error) {
	return r.list(ctx,
		"SELECT "+medicationColumns+" FROM medications WHERE user_id = ? AND status = ? AND soft_deleted_at IS NULL ORDER BY created_at DESC",
		userID, status)
}

func (r *MedicationRepo) list(ctx context.Context, q string, args ...any) ([]*model.Medication, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Medication
	for rows.Next() {
		var m model.Medication
		if err := scanMedicationRow(&m, rows.Scan); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Update persists the mutable columns of m, re-checking ownership and
// active status in the WHERE clause.
func (r *MedicationRepo) Update(ctx context.Context, m *model.Medication) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE medications
		 SET prescribing_provider_id = ?, prescribed_during_visit_id = ?, medication_name = ?, dosage = ?, frequency = ?, conditions_or_symptoms = ?, prescribed_date = ?, instructions = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL`,
		m.PrescribingProviderID, m.PrescribedDuringVisitID, m.MedicationName, m.Dosage,
		m.Frequency, m.ConditionsOrSymptoms, m.PrescribedDate, m.Instructions, m.Status,
		m.ID, m.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMedicationNotFound
	}
	return nil
}

// SoftDelete stamps soft_deleted_at on an active medication owned by userID.
func (r *MedicationRepo) SoftDelete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE medications SET soft_deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ? AND soft_deleted_at IS NULL",
		id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMedicationNotFound
	}
	return nil
}
