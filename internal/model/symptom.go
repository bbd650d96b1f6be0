package model

import "time"

// Symptom statuses. Stored as an ENUM column, default "active".
const (
	SymptomActive     = "active"
	SymptomResolved   = "resolved"
	SymptomMonitoring = "monitoring"
)

// ValidSymptomStatus reports whether s is a known symptom status.
func ValidSymptomStatus(s string) bool {
	return s == SymptomActive || s == SymptomResolved || s == SymptomMonitoring
}

// Severity bounds for symptoms, enforced at write time.
const (
	SeverityMin = 1
	SeverityMax = 10
)

// Symptom represents a row in the `symptoms` table. Severity is an integer
// between SeverityMin and SeverityMax inclusive. OnsetDate and EndDate are
// DATE columns read back as midnight UTC.
type Symptom struct {
	ID                 uint64     // symptoms.id
	UserID             uint64     // symptoms.user_id
	SymptomName        string     // symptoms.symptom_name
	Severity           int        // symptoms.severity (1..10)
	OnsetDate          time.Time  // symptoms.onset_date
	EndDate            *time.Time // symptoms.end_date (nullable)
	Description        *string    // symptoms.description (nullable)
	LocationOnBody     *string    // symptoms.location_on_body (nullable)
	Triggers           *string    // symptoms.triggers (nullable)
	RelatedCondition   *string    // symptoms.related_condition (nullable)
	RelatedMedications *string    // symptoms.related_medications (nullable)
	MedicationsTaken   *string    // symptoms.medications_taken (nullable)
	Status             string     // symptoms.status
	SoftDeletedAt      *time.Time // symptoms.soft_deleted_at (nullable)
	CreatedAt          time.Time  // symptoms.created_at
	UpdatedAt          time.Time  // symptoms.updated_at
}
