package model

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ddlEnumValues pulls the ENUM value list for one column of one table out
// of the reference DDL, so these tests fail when schema.sql drifts from
// the model constants.
func ddlEnumValues(t *testing.T, table, column string) []string {
	t.Helper()
	ddl, err := os.ReadFile("../../schema.sql")
	require.NoError(t, err)

	start := strings.Index(string(ddl), "CREATE TABLE "+table+" (")
	require.GreaterOrEqual(t, start, 0, "table %s not found in schema.sql", table)
	block := string(ddl)[start:]
	if end := strings.Index(block, "ENGINE"); end >= 0 {
		block = block[:end]
	}

	re := regexp.MustCompile(column + `\s+ENUM \(([^)]+)\)`)
	m := re.FindStringSubmatch(block)
	require.NotNil(t, m, "column %s.%s has no ENUM in schema.sql", table, column)

	var vals []string
	for _, part := range strings.Split(m[1], ",") {
		vals = append(vals, strings.Trim(strings.TrimSpace(part), "'"))
	}
	return vals
}

func TestProviderTypeEnumMatchesModel(t *testing.T) {
	want := []string{
		ProviderPersonalDoctor,
		ProviderWalkInClinic,
		ProviderEmergencyRoom,
		ProviderUrgentCare,
		ProviderSpecialist,
	}
	got := ddlEnumValues(t, "providers", "provider_type")
	assert.ElementsMatch(t, want, got)
	for _, v := range got {
		assert.True(t, ValidProviderType(v), "DDL allows %q but the model rejects it", v)
	}
}

func TestStatusEnumsMatchModel(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{SymptomActive, SymptomResolved, SymptomMonitoring},
		ddlEnumValues(t, "symptoms", "status"))
	assert.ElementsMatch(t,
		[]string{MedicationTaking, MedicationDiscontinued},
		ddlEnumValues(t, "medications", "status"))
	assert.ElementsMatch(t,
		[]string{VisitScheduled, VisitCompleted},
		ddlEnumValues(t, "visits", "status"))
}
