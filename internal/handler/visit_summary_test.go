package handler

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthlog/healthlog/internal/repository"
)

func newVisitSummaryHandler(t *testing.T) (*VisitSummaryHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewVisitSummaryHandler(
		repository.NewVisitSummaryRepo(db),
		repository.NewVisitRepo(db),
	), mock
}

func TestVisitSummaryCreateRejectedForScheduledVisit(t *testing.T) {
	h, mock := newVisitSummaryHandler(t)

	mock.ExpectQuery("FROM visits WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(4), testUserID).
		WillReturnRows(mockVisitRow(4, testUserID, 10, "scheduled"))

	c, rec := newTestCtx(t, http.MethodPost, "/v1/visit-summaries",
		`{"visit_id":4,"visit_summary_notes":"Doctor recommended rest"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot create visit summary for a scheduled visit. Visit must be completed first.",
		decodeBody(t, rec)["error"])
}

func TestVisitSummaryCreateDuplicate(t *testing.T) {
	h, mock := newVisitSummaryHandler(t)

	mock.ExpectQuery("FROM visits WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(4), testUserID).
		WillReturnRows(mockVisitRow(4, testUserID, 10, "completed"))
	mock.ExpectQuery("FROM visit_summaries WHERE visit_id = \\?").
		WithArgs(uint64(4)).
		WillReturnRows(mockVisitSummaryRow(1, 4, "existing notes"))

	c, rec := newTestCtx(t, http.MethodPost, "/v1/visit-summaries",
		`{"visit_id":4,"visit_summary_notes":"Doctor recommended rest"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Visit summary already exists for this visit", decodeBody(t, rec)["error"])
}

func TestVisitSummaryCreateSuccess(t *testing.T) {
	h, mock := newVisitSummaryHandler(t)

	mock.ExpectQuery("FROM visits WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(4), testUserID).
		WillReturnRows(mockVisitRow(4, testUserID, 10, "completed"))
	mock.ExpectQuery("FROM visit_summaries WHERE visit_id = \\?").
		WithArgs(uint64(4)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO visit_summaries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM visit_summaries WHERE id = \\?").
		WithArgs(uint64(1)).
		WillReturnRows(mockVisitSummaryRow(1, 4, "Doctor recommended rest"))

	c, rec := newTestCtx(t, http.MethodPost, "/v1/visit-summaries",
		`{"visit_id":4,"visit_summary_notes":"Doctor recommended rest"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Visit summary created successfully", decodeBody(t, rec)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitSummaryGetOmitsEmptyFields(t *testing.T) {
	h, mock := newVisitSummaryHandler(t)

	mock.ExpectQuery("FROM visits WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(4), testUserID).
		WillReturnRows(mockVisitRow(4, testUserID, 10, "completed"))
	mock.ExpectQuery("FROM visit_summaries WHERE visit_id = \\?").
		WithArgs(uint64(4)).
		WillReturnRows(mockVisitSummaryRow(1, 4, "Doctor recommended rest"))

	c, rec := newTestCtx(t, http.MethodGet, "/v1/visit-summaries/4", "")
	c.SetParamNames("visitId")
	c.SetParamValues("4")
	require.NoError(t, h.GetByVisit(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	// Unfilled sections are omitted rather than rendered as nulls.
	assert.NotContains(t, rec.Body.String(), "new_diagnosis")
	assert.Contains(t, rec.Body.String(), `"visit_summary_notes":"Doctor recommended rest"`)
}

func TestVisitSummaryUpdateMissingRecord(t *testing.T) {
	h, mock := newVisitSummaryHandler(t)

	mock.ExpectQuery("FROM visits WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(4), testUserID).
		WillReturnRows(mockVisitRow(4, testUserID, 10, "completed"))
	mock.ExpectQuery("FROM visit_summaries WHERE visit_id = \\?").
		WithArgs(uint64(4)).
		WillReturnError(sql.ErrNoRows)

	c, rec := newTestCtx(t, http.MethodPut, "/v1/visit-summaries/4",
		`{"visit_summary_notes":"Updated"}`)
	c.SetParamNames("visitId")
	c.SetParamValues("4")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Visit summary not found for this visit", decodeBody(t, rec)["error"])
}
