package model

import "time"

// VisitPrep is the one-to-one pre-visit preparation record for a visit
// (`visit_prep` table, unique visit_id). Only the summary notes are
// required; the rest of the fields are optional talking points. Prep can
// be created and edited only while the parent visit is still scheduled.
type VisitPrep struct {
	ID                   uint64     // visit_prep.id
	VisitID              uint64     // visit_prep.visit_id (unique)
	QuestionsToAsk       *string    // visit_prep.questions_to_ask (nullable)
	SymptomsToDiscuss    *string    // visit_prep.symptoms_to_discuss (nullable)
	ConditionsToDiscuss  *string    // visit_prep.conditions_to_discuss (nullable)
	MedicationsToDiscuss *string    // visit_prep.medications_to_discuss (nullable)
	GoalsForVisit        *string    // visit_prep.goals_for_visit (nullable)
	PrepSummaryNotes     string     // visit_prep.prep_summary_notes
	SoftDeletedAt        *time.Time // visit_prep.soft_deleted_at (nullable)
	CreatedAt            time.Time  // visit_prep.created_at
	UpdatedAt            time.Time  // visit_prep.updated_at
}
