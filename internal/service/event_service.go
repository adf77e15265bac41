package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/peterszarvas94/moneyapp-sub000/internal/allocation"
	"github.com/peterszarvas94/moneyapp-sub000/internal/gate"
	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
	"github.com/peterszarvas94/moneyapp-sub000/internal/split"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage"
)

var errSavingXorPortion = errors.New("provide exactly one of saving and portion")

// EventEntryInput is one payee's stake as submitted by the client.
type EventEntryInput struct {
	PayeeID string `json:"payee_id"`
	Factor  int64  `json:"factor"`
	Extra   int64  `json:"extra"`
}

// EventView is the wire representation of an event. Portion is derived on
// every read, never stored.
type EventView struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Income      int64           `json:"income"`
	Saving      int64           `json:"saving"`
	Delivery    string          `json:"delivery"`
	Portion     decimal.Decimal `json:"portion"`
	CreatedAt   int64           `json:"created_at"`
}

// PaymentView is the wire representation of a payment, with the derived
// total joined in.
type PaymentView struct {
	ID      string          `json:"id"`
	PayeeID string          `json:"payee_id"`
	Factor  int64           `json:"factor"`
	Extra   int64           `json:"extra"`
	Total   decimal.Decimal `json:"total"`
}

type CreateEventRequest struct {
	AccountID   string `json:"account_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Income      int64  `json:"income"`
	// Exactly one of Saving and Portion must be set; it is the field the
	// user was steering, the other is derived.
	Saving   *int64            `json:"saving,omitempty"`
	Portion  *decimal.Decimal  `json:"portion,omitempty"`
	Delivery string            `json:"delivery"`
	Entries  []EventEntryInput `json:"entries"`
}

type CreateEventResponse struct {
	Event EventView `json:"event"`
}

type UpdateEventRequest struct {
	AccountID   string            `json:"account_id"`
	EventID     string            `json:"event_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Income      int64             `json:"income"`
	Saving      *int64            `json:"saving,omitempty"`
	Portion     *decimal.Decimal  `json:"portion,omitempty"`
	Delivery    string            `json:"delivery"`
	Entries     []EventEntryInput `json:"entries"`
}

type UpdateEventResponse struct {
	Event EventView `json:"event"`
}

type DeleteEventRequest struct {
	AccountID string `json:"account_id"`
	EventID   string `json:"event_id"`
}

type DeleteEventResponse struct{}

type GetEventRequest struct {
	AccountID string `json:"account_id"`
	EventID   string `json:"event_id"`
}

type GetEventResponse struct {
	Event    EventView     `json:"event"`
	Payments []PaymentView `json:"payments"`
}

type ListEventsRequest struct {
	AccountID string `json:"account_id"`
}

type ListEventsResponse struct {
	Events []EventView `json:"events"`
}

type ListPaymentsRequest struct {
	AccountID string `json:"account_id"`
	EventID   string `json:"event_id"`
}

type ListPaymentsResponse struct {
	Payments []PaymentView `json:"payments"`
}

// EventService implements event reads and the atomic edit commit. Writes
// run the submitted working copy through the split coordinator, then hand
// the resolved plan to the store for an all-or-nothing save.
type EventService struct {
	store storage.Store
	gate  *gate.Gate
}

// NewEventService creates a new EventService.
func NewEventService(store storage.Store, g *gate.Gate) *EventService {
	return &EventService{store: store, gate: g}
}

func eventView(e *models.Event, payments []allocation.Entry) EventView {
	return EventView{
		ID:          e.ID,
		AccountID:   e.AccountID,
		Name:        e.Name,
		Description: e.Description,
		Income:      e.Income,
		Saving:      e.Saving,
		Delivery:    e.Delivery,
		Portion:     allocation.Portion(e.Saving, payments, e.Income),
		CreatedAt:   e.CreatedAt,
	}
}

func entriesOf(payments []*models.Payment) []allocation.Entry {
	entries := make([]allocation.Entry, len(payments))
	for i, p := range payments {
		entries[i] = allocation.Entry{PayeeID: p.PayeeID, Factor: p.Factor, Extra: p.Extra}
	}
	return entries
}

// buildDraft assembles the coordinator's working copy from a submitted
// edit. Intermediate recompute failures are deliberately ignored; Resolve
// re-derives and validates the final state.
func buildDraft(name, description, delivery string, income int64, saving *int64, portion *decimal.Decimal, entries []EventEntryInput) (*split.Draft, error) {
	if (saving == nil) == (portion == nil) {
		return nil, errSavingXorPortion
	}

	d := split.NewDraft()
	d.Name = name
	d.Description = description
	d.Delivery = delivery
	d.SetIncome(income)
	for _, e := range entries {
		d.SetEntry(e.PayeeID, e.Factor, e.Extra)
	}

	if portion != nil {
		d.SteerPortion(*portion)
	} else {
		d.SteerSaving(*saving)
	}

	return d, nil
}

// checkPayees verifies every entry references a payee of this account.
func (s *EventService) checkPayees(ctx context.Context, accountID string, entries []allocation.Entry) error {
	for _, e := range entries {
		payee, err := s.store.GetPayee(ctx, e.PayeeID)
		if err != nil {
			return err
		}
		if payee.AccountID != accountID {
			return fmt.Errorf("payee %s: %w", e.PayeeID, storage.ErrNotFound)
		}
	}
	return nil
}

func (s *EventService) commit(ctx context.Context, accountID string, event *models.Event, d *split.Draft) (*models.Event, []allocation.Entry, error) {
	plan, err := d.Resolve()
	if err != nil {
		return nil, nil, err
	}

	if err := s.checkPayees(ctx, accountID, plan.Entries); err != nil {
		return nil, nil, err
	}

	event.AccountID = accountID
	event.Name = plan.Name
	event.Description = plan.Description
	event.Delivery = plan.Delivery
	event.Income = plan.Income
	event.Saving = plan.Saving

	payments := make([]*models.Payment, len(plan.Entries))
	for i, e := range plan.Entries {
		payments[i] = &models.Payment{PayeeID: e.PayeeID, Factor: e.Factor, Extra: e.Extra}
	}

	if err := s.store.SaveEventWithPayments(ctx, event, payments); err != nil {
		return nil, nil, err
	}

	return event, plan.Entries, nil
}

// Create validates a new event's working copy and commits the event with
// all of its payments atomically.
func (s *EventService) Create(ctx context.Context, req *connect.Request[CreateEventRequest]) (*connect.Response[CreateEventResponse], error) {
	grant, err := s.gate.AdminOnly(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	d, err := buildDraft(req.Msg.Name, req.Msg.Description, req.Msg.Delivery,
		req.Msg.Income, req.Msg.Saving, req.Msg.Portion, req.Msg.Entries)
	if err != nil {
		return nil, rpcError(err)
	}

	event, entries, err := s.commit(ctx, grant.AccountID, &models.Event{}, d)
	if err != nil {
		slog.Warn("CreateEvent rejected", "account_id", grant.AccountID, "error", err)
		return nil, rpcError(err)
	}

	slog.Info("Event created", "event_id", event.ID, "account_id", grant.AccountID,
		"income", event.Income, "saving", event.Saving)
	return connect.NewResponse(&CreateEventResponse{Event: eventView(event, entries)}), nil
}

// Update replaces an event's fields and its full payment set in one
// atomic commit. A failed commit leaves the stored rows untouched; the
// client keeps its working copy and may retry.
func (s *EventService) Update(ctx context.Context, req *connect.Request[UpdateEventRequest]) (*connect.Response[UpdateEventResponse], error) {
	grant, err := s.gate.AdminOnly(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	event, err := s.store.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		return nil, rpcError(err)
	}
	if event.AccountID != grant.AccountID {
		return nil, rpcError(storage.ErrNotFound)
	}

	d, err := buildDraft(req.Msg.Name, req.Msg.Description, req.Msg.Delivery,
		req.Msg.Income, req.Msg.Saving, req.Msg.Portion, req.Msg.Entries)
	if err != nil {
		return nil, rpcError(err)
	}

	event, entries, err := s.commit(ctx, grant.AccountID, event, d)
	if err != nil {
		slog.Warn("UpdateEvent rejected", "event_id", req.Msg.EventID, "error", err)
		return nil, rpcError(err)
	}

	slog.Info("Event updated", "event_id", event.ID, "account_id", grant.AccountID,
		"income", event.Income, "saving", event.Saving)
	return connect.NewResponse(&UpdateEventResponse{Event: eventView(event, entries)}), nil
}

// Delete removes an event and its payments.
func (s *EventService) Delete(ctx context.Context, req *connect.Request[DeleteEventRequest]) (*connect.Response[DeleteEventResponse], error) {
	grant, err := s.gate.AdminOnly(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	event, err := s.store.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		return nil, rpcError(err)
	}
	if event.AccountID != grant.AccountID {
		return nil, rpcError(storage.ErrNotFound)
	}

	if err := s.store.DeleteEvent(ctx, req.Msg.EventID); err != nil {
		return nil, rpcError(err)
	}

	slog.Info("Event deleted", "event_id", req.Msg.EventID, "account_id", grant.AccountID)
	return connect.NewResponse(&DeleteEventResponse{}), nil
}

// Get returns the read-only projection of an event and its payments, with
// the portion and per-payment totals derived fresh.
func (s *EventService) Get(ctx context.Context, req *connect.Request[GetEventRequest]) (*connect.Response[GetEventResponse], error) {
	grant, err := s.gate.Accessed(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	event, payments, err := s.eventWithPayments(ctx, grant.AccountID, req.Msg.EventID)
	if err != nil {
		return nil, rpcError(err)
	}

	entries := entriesOf(payments)
	return connect.NewResponse(&GetEventResponse{
		Event:    eventView(event, entries),
		Payments: paymentViews(event, payments),
	}), nil
}

// List returns all events of an account.
func (s *EventService) List(ctx context.Context, req *connect.Request[ListEventsRequest]) (*connect.Response[ListEventsResponse], error) {
	grant, err := s.gate.Accessed(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	events, err := s.store.ListEventsByAccount(ctx, grant.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	views := make([]EventView, len(events))
	for i, e := range events {
		payments, err := s.store.ListPaymentsByEvent(ctx, e.ID)
		if err != nil {
			return nil, rpcError(err)
		}
		views[i] = eventView(e, entriesOf(payments))
	}

	return connect.NewResponse(&ListEventsResponse{Events: views}), nil
}

// ListPayments returns the payment rows of one event with derived totals.
func (s *EventService) ListPayments(ctx context.Context, req *connect.Request[ListPaymentsRequest]) (*connect.Response[ListPaymentsResponse], error) {
	grant, err := s.gate.Accessed(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	event, payments, err := s.eventWithPayments(ctx, grant.AccountID, req.Msg.EventID)
	if err != nil {
		return nil, rpcError(err)
	}

	return connect.NewResponse(&ListPaymentsResponse{Payments: paymentViews(event, payments)}), nil
}

func (s *EventService) eventWithPayments(ctx context.Context, accountID, eventID string) (*models.Event, []*models.Payment, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if event.AccountID != accountID {
		return nil, nil, storage.ErrNotFound
	}

	payments, err := s.store.ListPaymentsByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	return event, payments, nil
}

func paymentViews(event *models.Event, payments []*models.Payment) []PaymentView {
	entries := entriesOf(payments)
	portion := allocation.Portion(event.Saving, entries, event.Income)

	views := make([]PaymentView, len(payments))
	for i, p := range payments {
		views[i] = PaymentView{
			ID:      p.ID,
			PayeeID: p.PayeeID,
			Factor:  p.Factor,
			Extra:   p.Extra,
			Total:   allocation.Total(portion, p.Factor, p.Extra),
		}
	}
	return views
}
