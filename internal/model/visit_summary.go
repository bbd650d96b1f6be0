package model

import "time"

// VisitSummary is the one-to-one post-visit record for a visit
// (`visit_summaries` table, unique visit_id). The mirror image of
// VisitPrep: only the summary notes are required, and the record can be
// created and edited only once the parent visit is completed.
type VisitSummary struct {
	ID                          uint64     // visit_summaries.id
	VisitID                     uint64     // visit_summaries.visit_id (unique)
	NewDiagnosis                *string    // visit_summaries.new_diagnosis (nullable)
	FollowUpInstructions        *string    // visit_summaries.follow_up_instructions (nullable)
	DoctorRecommendations       *string    // visit_summaries.doctor_recommendations (nullable)
	PatientConcernsAddressed    *string    // visit_summaries.patient_concerns_addressed (nullable)
	PatientConcernsNotAddressed *string    // visit_summaries.patient_concerns_not_addressed (nullable)
	VisitSummaryNotes           string     // visit_summaries.visit_summary_notes
	SoftDeletedAt               *time.Time // visit_summaries.soft_deleted_at (nullable)
	CreatedAt                   time.Time  // visit_summaries.created_at
	UpdatedAt                   time.Time  // visit_summaries.updated_at
}
