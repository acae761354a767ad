package model

import "time"

// Staff roles.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// User represents a back-office account as stored in the `users` table.
// The json tags are omitted because these structs are used by the
// repository layer only; handlers expose their own view types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address used to sign in.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN or STAFF.
//  IsActive     – disabled accounts cannot sign in.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// StaffSession models an entry in the `staff_sessions` table.  The session
// id travels inside the signed cookie; only its SHA-256 hash is stored.
type StaffSession struct {
	ID        uint64     // staff_sessions.id
	UserID    uint64     // staff_sessions.user_id
	TokenHash string     // staff_sessions.token_hash
	ExpiresAt time.Time  // staff_sessions.expires_at
	RevokedAt *time.Time // staff_sessions.revoked_at (nullable)
	CreatedAt time.Time  // staff_sessions.created_at
}
