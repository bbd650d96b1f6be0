package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/healthlog/healthlog/internal/model"
)

const visitPrepColumns = "id, visit_id, questions_to_ask, symptoms_to_discuss, conditions_to_discuss, medications_to_discuss, goals_for_visit, prep_summary_notes, soft_deleted_at, created_at, updated_at"

// VisitPrepRepo encapsulates queries against the visit_prep table. Prep
// records carry no user_id of their own; ownership is always checked
// through the parent visit before any call lands here.
type VisitPrepRepo struct{ DB *sql.DB }

func NewVisitPrepRepo(db *sql.DB) *VisitPrepRepo { return &VisitPrepRepo{DB: db} }

func scanVisitPrep(row *sql.Row) (*model.VisitPrep, error) {
	var p model.VisitPrep
	err := row.Scan(&p.ID, &p.VisitID, &p.QuestionsToAsk, &p.SymptomsToDiscuss,
		&p.ConditionsToDiscuss, &p.MedicationsToDiscuss, &p.GoalsForVisit,
		&p.PrepSummaryNotes, &p.SoftDeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVisitPrepNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a prep record and reloads the generated id and timestamps.
func (r *VisitPrepRepo) Create(ctx context.Context, p *model.VisitPrep) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO visit_prep (visit_id, questions_to_ask, symptoms_to_discuss, conditions_to_discuss, medications_to_discuss, goals_for_visit, prep_summary_notes)
		 VALUES (?,?,?,?,?,?,?)`,
		p.VisitID, p.QuestionsToAsk, p.SymptomsToDiscuss, p.ConditionsToDiscuss,
		p.MedicationsToDiscuss, p.GoalsForVisit, p.PrepSummaryNotes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	row := r.DB.QueryRowContext(ctx, "SELECT "+visitPrepColumns+" FROM visit_prep WHERE id = ?", p.ID)
	loaded, err := scanVisitPrep(row)
	if err != nil {
		return err
	}
	*p = *loaded
	return nil
}

// GetByVisitID fetches the active prep record for a visit, if any.
func (r *VisitPrepRepo) GetByVisitID(ctx context.Context, visitID uint64) (*model.VisitPrep, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+visitPrepColumns+" FROM visit_prep WHERE visit_id = ? AND soft_deleted_at IS NULL", visitID)
	return scanVisitPrep(row)
}

// Update persists the mutable columns of p.
func (r *VisitPrepRepo) Update(ctx context.Context, p *model.VisitPrep) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE visit_prep
		 SET questions_to_ask = ?, symptoms_to_discuss = ?, conditions_to_discuss = ?, medications_to_discuss = ?, goals_for_visit = ?, prep_summary_notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND soft_deleted_at IS NULL`,
		p.QuestionsToAsk, p.SymptomsToDiscuss, p.ConditionsToDiscuss, p.MedicationsToDiscuss,
		p.GoalsForVisit, p.PrepSummaryNotes, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVisitPrepNotFound
	}
	return nil
}

// SoftDeleteByVisitID stamps soft_deleted_at on the visit's active prep
// record.
func (r *VisitPrepRepo) SoftDeleteByVisitID(ctx context.Context, visitID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE visit_prep SET soft_deleted_at = CURRENT_TIMESTAMP WHERE visit_id = ? AND soft_deleted_at IS NULL",
		visitID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVisitPrepNotFound
	}
	return nil
}
