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

func newMedicationHandler(t *testing.T) (*MedicationHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewMedicationHandler(
		repository.NewMedicationRepo(db),
		repository.NewProviderRepo(db),
		repository.NewVisitRepo(db),
	), mock
}

func TestMedicationGetAnnotatesDeletedProvider(t *testing.T) {
	h, mock := newMedicationHandler(t)

	providerID := uint64(10)
	deleted := testNow
	mock.ExpectQuery("FROM medications WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(3), testUserID).
		WillReturnRows(mockMedicationRow(3, testUserID, "Ibuprofen", &providerID))
	// The linked provider resolves even though it was soft-deleted; the
	// medication reports the deletion instead of hiding the link.
	mock.ExpectQuery("FROM providers WHERE id = \\?").
		WithArgs(providerID).
		WillReturnRows(mockProviderRow(10, testUserID, "Dr. Chen", &deleted))

	c, rec := newTestCtx(t, http.MethodGet, "/v1/medications/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Dr. Chen", body["provider_name"])
	assert.Equal(t, true, body["provider_deleted"])
}

func TestMedicationGetForeignProviderLinkHidden(t *testing.T) {
	h, mock := newMedicationHandler(t)

	providerID := uint64(10)
	mock.ExpectQuery("FROM medications WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(3), testUserID).
		WillReturnRows(mockMedicationRow(3, testUserID, "Ibuprofen", &providerID))
	mock.ExpectQuery("FROM providers WHERE id = \\?").
		WithArgs(providerID).
		WillReturnRows(mockProviderRow(10, 99, "Dr. Other", nil))

	c, rec := newTestCtx(t, http.MethodGet, "/v1/medications/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	_, present := body["provider_name"]
	assert.False(t, present)
	_, present = body["provider_deleted"]
	assert.False(t, present)
}

func TestMedicationCreateRejectsForeignProviderLink(t *testing.T) {
	h, mock := newMedicationHandler(t)

	mock.ExpectQuery("FROM providers WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(10), testUserID).
		WillReturnError(sql.ErrNoRows)

	c, rec := newTestCtx(t, http.MethodPost, "/v1/medications",
		`{"medication_name":"Ibuprofen","dosage":"10mg","frequency":"daily","conditions_or_symptoms":"headaches","prescribing_provider_id":10}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Provider not found or you do not have access to it", decodeBody(t, rec)["error"])
}

func TestMedicationCreateRejectsForeignVisitLink(t *testing.T) {
	h, mock := newMedicationHandler(t)

	mock.ExpectQuery("FROM visits WHERE id = \\? AND user_id = \\?").
		WithArgs(uint64(4), testUserID).
		WillReturnError(sql.ErrNoRows)

	c, rec := newTestCtx(t, http.MethodPost, "/v1/medications",
		`{"medication_name":"Ibuprofen","dosage":"10mg","frequency":"daily","conditions_or_symptoms":"headaches","prescribed_during_visit_id":4}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Visit not found or you do not have access to it", decodeBody(t, rec)["error"])
}

func TestMedicationCreateSuccess(t *testing.T) {
	h, mock := newMedicationHandler(t)

	mock.ExpectExec("INSERT INTO medications").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("FROM medications WHERE id = \\?").
		WithArgs(uint64(3)).
		WillReturnRows(mockMedicationRow(3, testUserID, "Ibuprofen", nil))

	c, rec := newTestCtx(t, http.MethodPost, "/v1/medications",
		`{"medication_name":"Ibuprofen","dosage":"10mg","frequency":"daily","conditions_or_symptoms":"headaches"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Medication added successfully", decodeBody(t, rec)["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicationCreateInvalidStatus(t *testing.T) {
	h, _ := newMedicationHandler(t)

	c, rec := newTestCtx(t, http.MethodPost, "/v1/medications",
		`{"medication_name":"Ibuprofen","dosage":"10mg","frequency":"daily","conditions_or_symptoms":"headaches","status":"paused"}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation failed", decodeBody(t, rec)["error"])
}
