package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testUserID uint64 = 1

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newTestCtx builds an authenticated echo context carrying an optional JSON
// body, the way requests arrive after the JWT middleware has run.
func newTestCtx(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", testUserID)
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeBodyArray(t *testing.T, rec *httptest.ResponseRecorder) []any {
	t.Helper()
	var out []any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// Shared sqlmock row builders. Column order mirrors the repository column
// lists.

var (
	testNow = time.Now().UTC().Truncate(time.Second)
	testDOB = time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)
)

func mockUserRow(id uint64, email, passwordHash string, conditions *string, deletedAt *time.Time) *sqlmock.Rows {
	cols := []string{"id", "email", "password_hash", "first_name", "last_name",
		"date_of_birth", "phone", "existing_conditions", "soft_deleted_at", "created_at", "updated_at"}
	return sqlmock.NewRows(cols).
		AddRow(id, email, passwordHash, "Pat", "Example", testDOB, nil, conditions, deletedAt, testNow, testNow)
}

func mockProviderRow(id, userID uint64, name string, deletedAt *time.Time) *sqlmock.Rows {
	cols := []string{"id", "user_id", "provider_name", "provider_type", "specialty",
		"phone", "email", "office_address", "notes", "soft_deleted_at", "created_at", "updated_at"}
	return sqlmock.NewRows(cols).
		AddRow(id, userID, name, "personal_doctor", nil, "555-0100", nil, nil, nil, deletedAt, testNow, testNow)
}

func mockVisitRow(id, userID, providerID uint64, status string) *sqlmock.Rows {
	cols := []string{"id", "user_id", "provider_id", "visit_date", "visit_time",
		"visit_reason", "status", "soft_deleted_at", "created_at", "updated_at"}
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(cols).
		AddRow(id, userID, providerID, date, nil, "Annual checkup", status, nil, testNow, testNow)
}

func mockVisitRows(userID uint64, ids, providerIDs []uint64, status string) *sqlmock.Rows {
	cols := []string{"id", "user_id", "provider_id", "visit_date", "visit_time",
		"visit_reason", "status", "soft_deleted_at", "created_at", "updated_at"}
	rows := sqlmock.NewRows(cols)
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	for i, id := range ids {
		rows.AddRow(id, userID, providerIDs[i], date, nil, "Annual checkup", status, nil, testNow, testNow)
	}
	return rows
}

func mockVisitPrepRow(id, visitID uint64, notes string) *sqlmock.Rows {
	cols := []string{"id", "visit_id", "questions_to_ask", "symptoms_to_discuss",
		"conditions_to_discuss", "medications_to_discuss", "goals_for_visit", "prep_summary_notes",
		"soft_deleted_at", "created_at", "updated_at"}
	return sqlmock.NewRows(cols).
		AddRow(id, visitID, nil, nil, nil, nil, nil, notes, nil, testNow, testNow)
}

func mockVisitSummaryRow(id, visitID uint64, notes string) *sqlmock.Rows {
	cols := []string{"id", "visit_id", "new_diagnosis", "follow_up_instructions",
		"doctor_recommendations", "patient_concerns_addressed", "patient_concerns_not_addressed",
		"visit_summary_notes", "soft_deleted_at", "created_at", "updated_at"}
	return sqlmock.NewRows(cols).
		AddRow(id, visitID, nil, nil, nil, nil, nil, notes, nil, testNow, testNow)
}

func mockMedicationRow(id, userID uint64, name string, providerID *uint64) *sqlmock.Rows {
	cols := []string{"id", "user_id", "prescribing_provider_id", "prescribed_during_visit_id",
		"medication_name", "dosage", "frequency", "conditions_or_symptoms", "prescribed_date",
		"instructions", "status", "soft_deleted_at", "created_at", "updated_at"}
	return sqlmock.NewRows(cols).
		AddRow(id, userID, providerID, nil, name, "10mg", "daily", "headaches", nil, nil, "taking", nil, testNow, testNow)
}

func mockSymptomRow(id, userID uint64, name string, severity int, status string) *sqlmock.Rows {
	cols := []string{"id", "user_id", "symptom_name", "severity", "onset_date", "end_date",
		"description", "location_on_body", "triggers", "related_condition", "related_medications",
		"medications_taken", "status", "soft_deleted_at", "created_at", "updated_at"}
	onset := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(cols).
		AddRow(id, userID, name, severity, onset, nil, nil, nil, nil, nil, nil, nil, status, nil, testNow, testNow)
}
