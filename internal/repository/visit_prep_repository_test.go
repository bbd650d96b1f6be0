package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthlog/healthlog/internal/model"
)

var visitPrepCols = []string{"id", "visit_id", "questions_to_ask", "symptoms_to_discuss",
	"conditions_to_discuss", "medications_to_discuss", "goals_for_visit", "prep_summary_notes",
	"soft_deleted_at", "created_at", "updated_at"}

func TestVisitPrepRepoCreateReloadsRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVisitPrepRepo(db)

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO visit_prep").
		WithArgs(uint64(7), nil, nil, nil, nil, nil, "ask about dosage").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery("FROM visit_prep WHERE id = \\?").
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows(visitPrepCols).
			AddRow(12, 7, nil, nil, nil, nil, nil, "ask about dosage", nil, now, now))

	p := &model.VisitPrep{VisitID: 7, PrepSummaryNotes: "ask about dosage"}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, uint64(12), p.ID)
	assert.Equal(t, uint64(7), p.VisitID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitPrepRepoGetByVisitIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVisitPrepRepo(db)

	mock.ExpectQuery("FROM visit_prep WHERE visit_id = \\? AND soft_deleted_at IS NULL").
		WithArgs(uint64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByVisitID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrVisitPrepNotFound)
}

func TestVisitPrepRepoSoftDeleteByVisitID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVisitPrepRepo(db)

	mock.ExpectExec("UPDATE visit_prep SET soft_deleted_at = CURRENT_TIMESTAMP").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE visit_prep SET soft_deleted_at = CURRENT_TIMESTAMP").
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SoftDeleteByVisitID(context.Background(), 7))
	assert.ErrorIs(t, repo.SoftDeleteByVisitID(context.Background(), 7), ErrVisitPrepNotFound)
}
