package models

// Payment is one payee's stake in one event: a weighted share count
// (factor) plus a fixed add-on (extra). The money actually owed is derived
// from these at read time, never stored.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// AccountID is the owning account.
	AccountID string

	// EventID is the event this payment belongs to.
	EventID string

	// PayeeID is the payee this payment belongs to.
	PayeeID string

	// Factor is how many portions the payee receives. Zero is valid: the
	// payee is then entitled to Extra only.
	Factor int64

	// Extra is a fixed add-on in the smallest currency unit, owed on top
	// of the factor-weighted share.
	Extra int64

	// CreatedAt is the Unix timestamp when the payment was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}
