// Package split coordinates an event edit session: a client-held working
// copy of the event's fields and payee entries that is only ever submitted
// as one atomic commit, never as incremental partial writes.
//
// Exactly one of {saving, portion} is "driven" (recomputed) at any time;
// the other is the field the user most recently edited and is steering.
// Editing income or any entry recomputes the driven field through the
// allocation engine. A recomputation that goes negative surfaces a
// validation failure naming the violated field and blocks the commit — the
// working copy stays editable with the attempted values visible.
package split

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peterszarvas94/moneyapp-sub000/internal/allocation"
	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
)

// Field names the two mutually driven monetary fields of a draft.
type Field string

const (
	FieldSaving  Field = "saving"
	FieldPortion Field = "portion"
)

var (
	// ErrSavingExceedsIncome is returned when a commit would store a
	// saving above the event's income.
	ErrSavingExceedsIncome = errors.New("saving cannot exceed income")

	// ErrNegativeAmount is returned for negative income, factor or extra
	// inputs.
	ErrNegativeAmount = errors.New("amounts cannot be negative")

	// ErrNameRequired is returned when the event has no name.
	ErrNameRequired = errors.New("event name is required")

	// ErrBadDelivery is returned when the delivery date is not a valid
	// YYYY-MM-DD date.
	ErrBadDelivery = errors.New("delivery must be a valid YYYY-MM-DD date")
)

// ValidationError reports a recomputation that went negative, naming the
// violated field. It blocks the draft from committing but does not destroy
// the working copy.
type ValidationError struct {
	Field Field
	Value decimal.Decimal
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s would become negative (%s)", e.Field, e.Value)
}

// Draft is the working copy of one event edit session. The zero value is
// not usable; construct with NewDraft or FromEvent.
type Draft struct {
	Name        string
	Description string
	Delivery    string

	income  int64
	steered Field // the user-edited field; the other one is recomputed
	saving  decimal.Decimal
	portion decimal.Decimal
	entries []allocation.Entry
}

// NewDraft starts an empty session for a new event: no entries, zero
// income, saving steered at zero, portion driven.
func NewDraft() *Draft {
	return &Draft{
		steered: FieldSaving,
		saving:  decimal.Zero,
		portion: decimal.Zero,
	}
}

// FromEvent starts an edit session over an existing event and its
// payments. The stored saving is the steered field until the user edits
// the portion.
func FromEvent(event *models.Event, payments []*models.Payment) *Draft {
	d := &Draft{
		Name:        event.Name,
		Description: event.Description,
		Delivery:    event.Delivery,
		income:      event.Income,
		steered:     FieldSaving,
		saving:      decimal.NewFromInt(event.Saving),
	}
	for _, p := range payments {
		d.entries = append(d.entries, allocation.Entry{
			PayeeID: p.PayeeID,
			Factor:  p.Factor,
			Extra:   p.Extra,
		})
	}
	d.recompute()
	return d
}

// Income returns the working income.
func (d *Draft) Income() int64 { return d.income }

// Saving returns the working saving (driven or steered).
func (d *Draft) Saving() decimal.Decimal { return d.saving }

// Portion returns the working portion (driven or steered).
func (d *Draft) Portion() decimal.Decimal { return d.portion }

// Entries returns a copy of the working payee entries.
func (d *Draft) Entries() []allocation.Entry {
	out := make([]allocation.Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// SetIncome updates the income and recomputes the driven field. The
// returned error, if any, is the validation failure to surface; the edit
// itself is applied either way.
func (d *Draft) SetIncome(income int64) error {
	d.income = income
	return d.recompute()
}

// SetEntry adds or updates the entry for a payee and recomputes the driven
// field.
func (d *Draft) SetEntry(payeeID string, factor, extra int64) error {
	for i := range d.entries {
		if d.entries[i].PayeeID == payeeID {
			d.entries[i].Factor = factor
			d.entries[i].Extra = extra
			return d.recompute()
		}
	}
	d.entries = append(d.entries, allocation.Entry{PayeeID: payeeID, Factor: factor, Extra: extra})
	return d.recompute()
}

// RemoveEntry drops a payee's entry and recomputes the driven field.
func (d *Draft) RemoveEntry(payeeID string) error {
	for i := range d.entries {
		if d.entries[i].PayeeID == payeeID {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			break
		}
	}
	return d.recompute()
}

// SteerSaving makes saving the steered field with the given value; the
// portion is recomputed from it.
func (d *Draft) SteerSaving(saving int64) error {
	d.steered = FieldSaving
	d.saving = decimal.NewFromInt(saving)
	return d.recompute()
}

// SteerPortion makes portion the steered field with the given value; the
// saving is recomputed from it.
func (d *Draft) SteerPortion(portion decimal.Decimal) error {
	d.steered = FieldPortion
	d.portion = portion
	return d.recompute()
}

// recompute derives the driven field from the steered one and reports a
// negative result as a ValidationError naming the driven field.
func (d *Draft) recompute() error {
	if d.steered == FieldPortion {
		d.saving = allocation.Saving(d.portion, d.entries, d.income)
		if d.saving.IsNegative() {
			return &ValidationError{Field: FieldSaving, Value: d.saving}
		}
		return nil
	}

	d.portion = allocation.Portion(d.saving.IntPart(), d.entries, d.income)
	if d.portion.IsNegative() {
		return &ValidationError{Field: FieldPortion, Value: d.portion}
	}
	return nil
}

// Commit is the validated outcome of a draft, ready for an all-or-nothing
// store write.
type Commit struct {
	Name        string
	Description string
	Delivery    string
	Income      int64
	Saving      int64
	Entries     []allocation.Entry
}

// Resolve validates the whole working copy and produces the commit plan.
// Nothing is persisted here; a failed resolve leaves the draft editable
// with the attempted values intact.
func (d *Draft) Resolve() (*Commit, error) {
	if d.Name == "" {
		return nil, ErrNameRequired
	}
	if _, err := time.Parse("2006-01-02", d.Delivery); err != nil {
		return nil, ErrBadDelivery
	}
	if d.income < 0 {
		return nil, fmt.Errorf("income: %w", ErrNegativeAmount)
	}
	for _, e := range d.entries {
		if e.Factor < 0 {
			return nil, fmt.Errorf("factor for payee %s: %w", e.PayeeID, ErrNegativeAmount)
		}
		if e.Extra < 0 {
			return nil, fmt.Errorf("extra for payee %s: %w", e.PayeeID, ErrNegativeAmount)
		}
	}

	if err := d.recompute(); err != nil {
		return nil, err
	}

	// Truncation only, so the stored saving never grows past what the
	// engine derived.
	saving := d.saving.RoundDown(0).IntPart()
	if saving < 0 {
		return nil, &ValidationError{Field: FieldSaving, Value: d.saving}
	}
	if saving > d.income {
		return nil, ErrSavingExceedsIncome
	}

	return &Commit{
		Name:        d.Name,
		Description: d.Description,
		Delivery:    d.Delivery,
		Income:      d.income,
		Saving:      saving,
		Entries:     d.Entries(),
	}, nil
}
