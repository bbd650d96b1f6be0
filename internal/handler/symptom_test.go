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

func newSymptomHandler(t *testing.T) (*SymptomHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewSymptomHandler(repository.NewSymptomRepo(db)), mock
}

func TestSymptomCreateSeverityBounds(t *testing.T) {
	h, _ := newSymptomHandler(t)

	for _, severity := range []string{"0", "11", "-3"} {
		c, rec := newTestCtx(t, http.MethodPost, "/v1/symptoms",
			`{"symptom_name":"Headache","severity":`+severity+`,"onset_date":"2026-08-01"}`)
		require.NoError(t, h.Create(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "severity %s", severity)
		body := decodeBody(t, rec)
		assert.Equal(t, "validation failed", body["error"])
		fields := body["fields"].([]any)
		assert.Contains(t, fields[0], "severity must be between 1 and 10")
	}
}

func TestSymptomCreateSuccessDefaultsToActive(t *testing.T) {
	h, mock := newSymptomHandler(t)

	mock.ExpectExec("INSERT INTO symptoms").
		WithArgs(testUserID, "Headache", 7, sqlmock.AnyArg(), nil, nil, nil, nil, nil, nil, nil, "active").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("FROM symptoms WHERE id = \\?").
		WithArgs(uint64(3)).
		WillReturnRows(mockSymptomRow(3, testUserID, "Headache", 7, "active"))

	c, rec := newTestCtx(t, http.MethodPost, "/v1/symptoms",
		`{"symptom_name":"Headache","severity":7,"onset_date":"2026-08-01"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Symptom added successfully", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSymptomUpdateSeverityBounds(t *testing.T) {
	h, mock := newSymptomHandler(t)

	// Bounds are re-checked on update; the loaded row must not be written
	// back with an out-of-range value.
	mock.ExpectQuery("FROM symptoms WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(3), testUserID).
		WillReturnRows(mockSymptomRow(3, testUserID, "Headache", 7, "active"))

	c, rec := newTestCtx(t, http.MethodPut, "/v1/symptoms/3", `{"severity":11}`)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSymptomGetNotFoundConflatesOwnership(t *testing.T) {
	h, mock := newSymptomHandler(t)

	mock.ExpectQuery("FROM symptoms WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(99), testUserID).
		WillReturnError(sql.ErrNoRows)

	c, rec := newTestCtx(t, http.MethodGet, "/v1/symptoms/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Symptom not found or you do not have access to it", decodeBody(t, rec)["error"])
}

func TestSymptomStatusListOmitsStatusField(t *testing.T) {
	h, mock := newSymptomHandler(t)

	mock.ExpectQuery("FROM symptoms WHERE user_id = \\? AND status = \\?").
		WithArgs(testUserID, "active").
		WillReturnRows(mockSymptomRow(3, testUserID, "Headache", 7, "active"))

	c, rec := newTestCtx(t, http.MethodGet, "/v1/symptoms/active", "")
	require.NoError(t, h.ListActive(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	// Status is implied by the route on filtered views.
	assert.NotContains(t, rec.Body.String(), `"status"`)
	assert.Contains(t, rec.Body.String(), `"symptom_name":"Headache"`)
}
