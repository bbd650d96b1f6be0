package model

import "time"

// Visit statuses. The transition is one-way: a completed visit can never
// go back to scheduled.
const (
	VisitScheduled = "scheduled"
	VisitCompleted = "completed"
)

// ValidVisitStatus reports whether s is a known visit status.
func ValidVisitStatus(s string) bool {
	return s == VisitScheduled || s == VisitCompleted
}

// Visit represents a clinic visit as stored in the `visits` table. Every
// visit belongs to a user and to one of that user's providers. VisitTime is
// kept as an HH:MM:SS string because the TIME column carries no date part.
// A visit has at most one prep record (valid while scheduled) and at most
// one summary record (valid once completed), both created lazily.
type Visit struct {
	ID            uint64     // visits.id
	UserID        uint64     // visits.user_id
	ProviderID    uint64     // visits.provider_id
	VisitDate     time.Time  // visits.visit_date
	VisitTime     *string    // visits.visit_time (nullable, "HH:MM:SS")
	VisitReason   string     // visits.visit_reason
	Status        string     // visits.status
	SoftDeletedAt *time.Time // visits.soft_deleted_at (nullable)
	CreatedAt     time.Time  // visits.created_at
	UpdatedAt     time.Time  // visits.updated_at
}
