package models

// Event is a single cost-sharing occasion with an income pool and a
// savings target. It owns zero or more payments.
//
// Invariant: Saving <= Income, on create and on every update.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// AccountID is the owning account.
	AccountID string

	// Name is the display name of the event (e.g., "March gig").
	Name string

	// Description is an optional free-form description.
	Description string

	// Income is the total money coming in for this event, in the
	// smallest currency unit. Never negative.
	Income int64

	// Saving is the part of the income withheld from allocation, in the
	// smallest currency unit. Never negative, never above Income.
	Saving int64

	// Delivery is the delivery date in "2006-01-02" format.
	Delivery string

	// CreatedAt is the Unix timestamp when the event was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}
