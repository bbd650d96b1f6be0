package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/healthlog/healthlog/internal/model"
)

const visitSummaryColumns = "id, visit_id, new_diagnosis, follow_up_instructions, doctor_recommendations, patient_concerns_addressed, patient_concerns_not_addressed, visit_summary_notes, soft_deleted_at, created_at, updated_at"

// VisitSummaryRepo encapsulates queries against the visit_summaries table.
// Like visit prep, ownership is checked through the parent visit.
type VisitSummaryRepo struct{ DB *sql.DB }

func NewVisitSummaryRepo(db *sql.DB) *VisitSummaryRepo { return &VisitSummaryRepo{DB: db} }

func scanVisitSummary(row *sql.Row) (*model.VisitSummary, error) {
	var s model.VisitSummary
	err := row.Scan(&s.ID, &s.VisitID, &s.NewDiagnosis, &s.FollowUpInstructions,
		&s.DoctorRecommendations, &s.PatientConcernsAddressed, &s.PatientConcernsNotAddressed,
		&s.VisitSummaryNotes, &s.SoftDeletedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVisitSummaryNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a summary record and reloads the generated id and
// timestamps.
func (r *VisitSummaryRepo) Create(ctx context.Context, s *model.VisitSummary) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO visit_summaries (visit_id, new_diagnosis, follow_up_instructions, doctor_recommendations, patient_concerns_addressed, patient_concerns_not_addressed, visit_summary_notes)
		 VALUES (?,?,?,?,?,?,?)`,
		s.VisitID, s.NewDiagnosis, s.FollowUpInstructions, s.DoctorRecommendations,
		s.PatientConcernsAddressed, s.PatientConcernsNotAddressed, s.VisitSummaryNotes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)

	row := r.DB.QueryRowContext(ctx, "SELECT "+visitSummaryColumns+" FROM visit_summaries WHERE id = ?", s.ID)
	loaded, err := scanVisitSummary(row)
	if err != nil {
		return err
	}
	*s = *loaded
	return nil
}

// GetByVisitID fetches the active summary record for a visit, if any.
func (r *VisitSummaryRepo) GetByVisitID(ctx context.Context, visitID uint64) (*model.VisitSummary, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+visitSummaryColumns+" FROM visit_summaries WHERE visit_id = ? AND soft_deleted_at IS NULL", visitID)
	return scanVisitSummary(row)
}

// Update persists the mutable columns of s.
func (r *VisitSummaryRepo) Update(ctx context.Context, s *model.VisitSummary) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE visit_summaries
		 SET new_diagnosis = ?, follow_up_instructions = ?, doctor_recommendations = ?, patient_concerns_addressed = ?, patient_concerns_not_addressed = ?, visit_summary_notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND soft_deleted_at IS NULL`,
		s.NewDiagnosis, s.FollowUpInstructions, s.DoctorRecommendations,
		s.PatientConcernsAddressed, s.PatientConcernsNotAddressed, s.VisitSummaryNotes, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVisitSummaryNotFound
	}
	return nil
}

// SoftDeleteByVisitID stamps soft_deleted_at on the visit's active summary
// record.
func (r *VisitSummaryRepo) SoftDeleteByVisitID(ctx context.Context, visitID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE visit_summaries SET soft_deleted_at = CURRENT_TIMESTAMP WHERE visit_id = ? AND soft_deleted_at IS NULL",
		visitID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVisitSummaryNotFound
	}
	return nil
}
