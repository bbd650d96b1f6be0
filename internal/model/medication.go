package model

import "time"

// Medication statuses. Stored as an ENUM column, default "taking".
const (
	MedicationTaking       = "taking"
	MedicationDiscontinued = "discontinued"
)

// ValidMedicationStatus reports whether s is a known medication status.
func ValidMedicationStatus(s string) bool {
	return s == MedicationTaking || s == MedicationDiscontinued
}

// Medication represents a row in the `medications` table. The prescribing
// provider and the originating visit are both optional links; when set they
// must reference records owned by the same user. A linked provider may be
// soft-deleted after the fact, in which case read views annotate the
// medication with a provider_deleted flag instead of hiding it.
type Medication struct {
	ID                      uint64     // medications.id
	UserID                  uint64     // medications.user_id
	PrescribingProviderID   *uint64    // medications.prescribing_provider_id (nullable)
	PrescribedDuringVisitID *uint64    // medications.prescribed_during_visit_id (nullable)
	MedicationName          string     // medications.medication_name
	Dosage                  string     // medications.dosage
	Frequency               string     // medications.frequency
	ConditionsOrSymptoms    string     // medications.conditions_or_symptoms
	PrescribedDate          *time.Time // medications.prescribed_date (nullable)
	Instructions            *string    // medications.instructions (nullable)
	Status                  string     // medications.status
	SoftDeletedAt           *time.Time // medications.soft_deleted_at (nullable)
	CreatedAt               time.Time  // medications.created_at
	UpdatedAt               time.Time  // medications.updated_at
}
