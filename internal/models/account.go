package models

// Account is the billing/grouping unit that owns events, payees and
// memberships. Deleting an account cascades to everything it owns.
type Account struct {
	// ID is the unique identifier for the account (UUID format).
	ID string

	// Name is the display name of the account (e.g., "Band fund").
	Name string

	// Description is an optional free-form description.
	Description string

	// Currency is the ISO 4217 currency code for all amounts under this
	// account (e.g., "HUF", "EUR"). Amounts are stored in the smallest
	// unit of this currency; no conversion is performed.
	Currency string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}
