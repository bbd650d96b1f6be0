package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/healthlog/healthlog/internal/model"
)

const userColumns = "id, email, password_hash, first_name, last_name, date_of_birth, phone, existing_conditions, soft_deleted_at, created_at, updated_at"

// UserRepo encapsulates all database queries against the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.DateOfBirth, &u.Phone, &u.ExistingConditions, &u.SoftDeletedAt,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row and reloads the generated id and
// timestamps into u. A duplicate email maps to ErrEmailExists; email
// uniqueness is global, deactivated accounts still hold their address.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, date_of_birth, phone, existing_conditions) VALUES (?,?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.DateOfBirth, u.Phone, u.ExistingConditions)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)

	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", u.ID)
	loaded, err := scanUser(row)
	if err != nil {
		return err
	}
	*u = *loaded
	return nil
}

// GetByEmail fetches a user by normalized email regardless of deactivation
// state; login needs the row either way to tell "unknown account" apart
// from "deactivated account".
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", email)
	return scanUser(row)
}

// GetActiveByID fetches a user by id, excluding deactivated accounts.
func (r *UserRepo) GetActiveByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? AND soft_deleted_at IS NULL", id)
	return scanUser(row)
}

// EmailInUseByOther reports whether any account other than excludeID holds
// the given email, deactivated accounts included.
func (r *UserRepo) EmailInUseByOther(ctx context.Context, email string, excludeID uint64) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?", email, excludeID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateProfile persists the mutable profile columns of u. The caller is
// expected to have loaded the row and applied only the fields present in
// the request.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users
		 SET email = ?, first_name = ?, last_name = ?, date_of_birth = ?, phone = ?, existing_conditions = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND soft_deleted_at IS NULL`,
		u.Email, u.FirstName, u.LastName, u.DateOfBirth, u.Phone, u.ExistingConditions, u.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Deactivate soft-deletes the account. The guard on soft_deleted_at makes
// the operation race-safe: only one of several concurrent calls can flip
// the timestamp, the rest observe zero affected rows and report false.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET soft_deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND soft_deleted_at IS NULL", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// isDuplicateKey detects a MySQL duplicate-entry violation (error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
