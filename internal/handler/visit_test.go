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

func newVisitHandler(t *testing.T) (*VisitHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	// Broker publishing stays off in tests.
	return NewVisitHandler(repository.NewVisitRepo(db), repository.NewProviderRepo(db), false), mock
}

func TestVisitUpdateCannotRevertCompleted(t *testing.T) {
	h, mock := newVisitHandler(t)

	mock.ExpectQuery("FROM visits WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(4), testUserID).
		WillReturnRows(mockVisitRow(4, testUserID, 10, "completed"))

	c, rec := newTestCtx(t, http.MethodPut, "/v1/visits/4", `{"status":"scheduled"}`)
	c.SetParamNames("id")
	c.SetParamValues("4")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot change a completed visit back to scheduled", decodeBody(t, rec)["error"])
	// No UPDATE may reach the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitUpdateCompletesScheduledVisit(t *testing.T) {
	h, mock := newVisitHandler(t)

	mock.ExpectQuery("FROM visits WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(4), testUserID).
		WillReturnRows(mockVisitRow(4, testUserID, 10, "scheduled"))
	mock.ExpectExec("UPDATE visits").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newTestCtx(t, http.MethodPut, "/v1/visits/4", `{"status":"completed"}`)
	c.SetParamNames("id")
	c.SetParamValues("4")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Visit updated successfully", decodeBody(t, rec)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitListDropsVisitsWithDeletedProvider(t *testing.T) {
	h, mock := newVisitHandler(t)

	mock.ExpectQuery("FROM visits WHERE user_id = \\?").
		WithArgs(testUserID).
		WillReturnRows(mockVisitRows(testUserID, []uint64{1, 2}, []uint64{10, 11}, "scheduled"))
	mock.ExpectQuery("FROM providers WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(10), testUserID).
		WillReturnRows(mockProviderRow(10, testUserID, "Dr. Chen", nil))
	mock.ExpectQuery("FROM providers WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(11), testUserID).
		WillReturnError(sql.ErrNoRows)

	c, rec := newTestCtx(t, http.MethodGet, "/v1/visits", "")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dr. Chen")
	// The visit whose provider is gone drops out silently.
	assert.Equal(t, 1, len(decodeBodyArray(t, rec)))
}

func TestVisitGetDeletedProvider(t *testing.T) {
	h, mock := newVisitHandler(t)

	mock.ExpectQuery("FROM visits WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(1), testUserID).
		WillReturnRows(mockVisitRow(1, testUserID, 10, "scheduled"))
	mock.ExpectQuery("FROM providers WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(10), testUserID).
		WillReturnError(sql.ErrNoRows)

	c, rec := newTestCtx(t, http.MethodGet, "/v1/visits/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Provider for this visit is no longer available", decodeBody(t, rec)["error"])
}

func TestVisitCreateRequiresOwnedActiveProvider(t *testing.T) {
	h, mock := newVisitHandler(t)

	mock.ExpectQuery("FROM providers WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(10), testUserID).
		WillReturnError(sql.ErrNoRows)

	c, rec := newTestCtx(t, http.MethodPost, "/v1/visits",
		`{"provider_id":10,"visit_date":"2026-09-10","visit_reason":"Annual checkup"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Provider not found or you do not have access to it", decodeBody(t, rec)["error"])
}

func TestVisitCreateRejectsBadTime(t *testing.T) {
	h, _ := newVisitHandler(t)

	c, rec := newTestCtx(t, http.MethodPost, "/v1/visits",
		`{"provider_id":10,"visit_date":"2026-09-10","visit_time":"25:99:00","visit_reason":"Checkup"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation failed", decodeBody(t, rec)["error"])
}
