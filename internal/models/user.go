package models

// User represents a registered user account.
//
// A User is independent of any account; access to accounts is granted
// through Memberships (many-to-many).
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique).
	// Admins invite members by email.
	Email string

	// Subject is the external identity reference carried in the JWT "sub"
	// claim. It is issued at registration and never changes, so tokens stay
	// valid across profile edits.
	Subject string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}
