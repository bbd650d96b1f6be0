package model

import "time"

// User represents an account record as stored in the `users` table.
// Passwords are never stored in plain text; PasswordHash holds a bcrypt
// digest. A non-nil SoftDeletedAt marks the account as deactivated: the
// row is kept forever and simply excluded from active-record queries.
//
// Fields:
//
//	ID                 – primary key identifier.
//	Email              – unique email address (unique across ALL rows,
//	                     including deactivated accounts).
//	PasswordHash       – bcrypt hashed password.
//	FirstName          – given name.
//	LastName           – family name.
//	DateOfBirth        – date of birth (DATE column, midnight UTC).
//	Phone              – optional phone number.
//	ExistingConditions – optional comma-separated condition list, parsed
//	                     on demand by the visit-prep conditions endpoint.
//	SoftDeletedAt      – deactivation timestamp (nil = active).
//	CreatedAt          – creation timestamp.
//	UpdatedAt          – last update timestamp.
type User struct {
	ID                 uint64     // users.id
	Email              string     // users.email
	PasswordHash       string     // users.password_hash
	FirstName          string     // users.first_name
	LastName           string     // users.last_name
	DateOfBirth        time.Time  // users.date_of_birth
	Phone              *string    // users.phone (nullable)
	ExistingConditions *string    // users.existing_conditions (nullable)
	SoftDeletedAt      *time.Time // users.soft_deleted_at (nullable)
	CreatedAt          time.Time  // users.created_at
	UpdatedAt          time.Time  // users.updated_at
}
