package model

import "time"

// Provider types accepted by the API. Stored as an ENUM column.
const (
	ProviderPersonalDoctor = "personal_doctor"
	ProviderWalkInClinic   = "walk_in_clinic"
	ProviderEmergencyRoom  = "emergency_room"
	ProviderUrgentCare     = "urgent_care"
	ProviderSpecialist     = "specialist"
)

// ValidProviderType reports whether t is one of the accepted provider types.
func ValidProviderType(t string) bool {
	switch t {
	case ProviderPersonalDoctor, ProviderWalkInClinic, ProviderEmergencyRoom,
		ProviderUrgentCare, ProviderSpecialist:
		return true
	}
	return false
}

// Provider represents a healthcare provider owned by a user, as stored in
// the `providers` table. Providers are referenced by visits (required) and
// medications (optional) and are only ever soft-deleted so that those
// references stay resolvable.
//
// Fields:
//
//	ID            – primary key identifier.
//	UserID        – owning user.
//	ProviderName  – display name.
//	ProviderType  – one of the Provider* constants above.
//	Specialty     – optional specialty.
//	Phone         – contact phone.
//	Email         – optional contact email.
//	OfficeAddress – optional address.
//	Notes         – optional free-text notes.
//	SoftDeletedAt – soft-delete timestamp (nil = active).
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Provider struct {
	ID            uint64     // providers.id
	UserID        uint64     // providers.user_id
	ProviderName  string     // providers.provider_name
	ProviderType  string     // providers.provider_type
	Specialty     *string    // providers.specialty (nullable)
	Phone         string     // providers.phone
	Email         *string    // providers.email (nullable)
	OfficeAddress *string    // providers.office_address (nullable)
	Notes         *string    // providers.notes (nullable)
	SoftDeletedAt *time.Time // providers.soft_deleted_at (nullable)
	CreatedAt     time.Time  // providers.created_at
	UpdatedAt     time.Time  // providers.updated_at
}
