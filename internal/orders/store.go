package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/kashmkari-orderflow/internal/docstore"
)

// Store encapsulates order lifecycle operations on a document collection.
// Every read path goes through Normalize. There is no locking: two concurrent
// updates of the same order may lose one of them.
type Store struct {
	coll    docstore.Collection
	nowFunc func() time.Time
	newID   func() string
}

// NewStore creates a new orders Store.
func NewStore(coll docstore.Collection) *Store {
	return &Store{
		coll:    coll,
		nowFunc: time.Now,
		newID:   uuid.NewString,
	}
}

func (s *Store) now() time.Time { return s.nowFunc().UTC() }

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// Create assigns id and timestamps, evaluates priority, persists and returns the order.
func (s *Store) Create(ctx context.Context, in NewOrder) (Order, error) {
	now := s.now()
	items := in.ProductItems
	if items == nil {
		items = []ProductItem{}
	}

	o := Order{
		ID:            s.newID(),
		OrderNumber:   in.OrderNumber,
		OrderDate:     in.OrderDate,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		ProductItems:  items,
		Amount:        in.Amount,
		Notes:         in.Notes,
		CreatedAt:     now,
		LastUpdated:   now,
	}
	if o.OrderNumber == "" {
		o.OrderNumber = SynthesizeOrderNumber(o.ID)
	}
	o.IsHighPriority = IsHighPriority(o.Amount, o.Touchpoints)

	if err := s.coll.InsertOne(ctx, ToDocument(o)); err != nil {
		return Order{}, unavailable("insert order", err)
	}
	return o, nil
}

// Get fetches an order by id. Returns ErrNotFound if it does not exist.
func (s *Store) Get(ctx context.Context, id string) (Order, error) {
	doc, err := s.coll.FindByID(ctx, id)
	if err != nil {
		return Order{}, unavailable("find order", err)
	}
	if doc == nil {
		return Order{}, ErrNotFound
	}
	return Normalize(doc), nil
}

// List returns every order, newest first, narrowed by f.
func (s *Store) List(ctx context.Context, f Filter) ([]Order, error) {
	docs, err := s.coll.FindAll(ctx)
	if err != nil {
		return nil, unavailable("list orders", err)
	}
	out := make([]Order, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Normalize(doc))
	}
	SortNewestFirst(out)
	return f.Apply(out), nil
}

// Update merges the present fields of u into the stored order. Priority is recomputed
// from the new touchpoints and the stored amount only when u carries touchpoints.
// last_updated is always bumped.
func (s *Store) Update(ctx context.Context, id string, u Update) (Order, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}

	set := docstore.Document{
		fieldLastUpdated: FormatTimestamp(s.now()),
	}
	if u.Touchpoints != nil {
		set[fieldTouchpoints] = touchpointsDocument(*u.Touchpoints)
		set[fieldHighPriority] = IsHighPriority(current.Amount, *u.Touchpoints)
	}
	if u.Stages != nil {
		set[fieldStages] = stagesDocument(*u.Stages)
	}
	if u.Notes != nil {
		set[fieldNotes] = *u.Notes
	}
	if u.CustomReminder != nil {
		set[fieldCustomReminder] = customReminderDocument(*u.CustomReminder)
	}

	matched, err := s.coll.UpdateByID(ctx, id, set)
	if err != nil {
		return Order{}, unavailable("update order", err)
	}
	if !matched {
		// deleted between the read and the write
		return Order{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes one order. Returns ErrNotFound if nothing was removed.
func (s *Store) Delete(ctx context.Context, id string) error {
	deleted, err := s.coll.DeleteByID(ctx, id)
	if err != nil {
		return unavailable("delete order", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes every order in ids and reports how many existed.
func (s *Store) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	n, err := s.coll.DeleteMany(ctx, ids)
	if err != nil {
		return n, unavailable("bulk delete orders", err)
	}
	return n, nil
}

// Reminders rescans the full listing on every call; nothing about reminders is persisted.
func (s *Store) Reminders(ctx context.Context) ([]Reminder, error) {
	all, err := s.List(ctx, FilterNone)
	if err != nil {
		return nil, err
	}
	return ScanStale(all, s.now()), nil
}

// Analytics summarises the given month of the full listing.
func (s *Store) Analytics(ctx context.Context, year int, month time.Month) (MonthlyStats, error) {
	all, err := s.List(ctx, FilterNone)
	if err != nil {
		return MonthlyStats{}, err
	}
	return Summarize(all, year, month), nil
}

// Now exposes the store clock so callers derive defaults from the same time source.
func (s *Store) Now() time.Time { return s.now() }
