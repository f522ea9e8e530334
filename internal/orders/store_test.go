package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/kashmkari-orderflow/internal/docstore"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T) (*Store, *docstore.MemoryCollection, *testClock) {
	t.Helper()
	coll := docstore.NewMemoryCollection()
	clock := &testClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	s := NewStore(coll)
	s.nowFunc = clock.Now
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("order-%04d-0000", n)
	}
	return s, coll, clock
}

func sampleNewOrder(amount float64) NewOrder {
	return NewOrder{
		OrderDate:     "2024-06-01",
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
		ProductItems:  []ProductItem{{Name: "Shawl", Quantity: 1, SKU: "SH-1"}},
		Amount:        amount,
	}
}

func TestStore_CreateEvaluatesPriority(t *testing.T) {
	s, coll, clock := newTestStore(t)
	ctx := context.Background()

	big, err := s.Create(ctx, sampleNewOrder(750))
	require.NoError(t, err)
	assert.True(t, big.IsHighPriority)
	assert.Equal(t, "order-0001-0000", big.ID)
	assert.Equal(t, clock.now, big.CreatedAt)
	assert.Equal(t, big.CreatedAt, big.LastUpdated)

	small, err := s.Create(ctx, sampleNewOrder(100))
	require.NoError(t, err)
	assert.False(t, small.IsHighPriority)

	raw := coll.Raw(big.ID)
	assert.Equal(t, true, raw["is_high_priority"])
	assert.Equal(t, "2024-06-01T09:00:00Z", raw["created_at"])

	got, err := s.Get(ctx, big.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-order-00", got.OrderNumber)
	assert.Equal(t, big.ProductItems, got.ProductItems)
}

func TestStore_CreateSynthesizesMissingOrderNumber(t *testing.T) {
	s, coll, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sampleNewOrder(100))
	require.NoError(t, err)
	assert.Equal(t, "ORD-order-00", created.OrderNumber)
	assert.Equal(t, "ORD-order-00", coll.Raw(created.ID)["order_number"])

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	in := sampleNewOrder(100)
	in.OrderNumber = "K-1001"
	kept, err := s.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "K-1001", kept.OrderNumber)
}

func TestStore_GetNotFound(t *testing.T) {
	s, _, _ := newTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListSortsAndFilters(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	first, _ := s.Create(ctx, sampleNewOrder(900))
	clock.Advance(time.Hour)
	second, _ := s.Create(ctx, sampleNewOrder(50))
	clock.Advance(time.Hour)
	third, _ := s.Create(ctx, sampleNewOrder(60))

	_, err := s.Update(ctx, third.ID, Update{Stages: &Stages{Delivered: true}})
	require.NoError(t, err)

	all, err := s.List(ctx, FilterNone)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(all))

	pending, err := s.List(ctx, FilterPending)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID}, ids(pending))

	high, err := s.List(ctx, FilterHighPriority)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, ids(high))
}

func TestStore_NotesOnlyUpdateKeepsEverythingElse(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sampleNewOrder(750))
	require.NoError(t, err)
	tp := Touchpoints{WhatsApp: true, Notes: "asked for photos"}
	_, err = s.Update(ctx, created.ID, Update{Touchpoints: &tp, Stages: &Stages{Washing: true}})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	notes := "gift wrap"
	updated, err := s.Update(ctx, created.ID, Update{Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, "gift wrap", updated.Notes)
	assert.Equal(t, tp, updated.Touchpoints)
	assert.Equal(t, Stages{Washing: true}, updated.Stages)
	assert.True(t, updated.IsHighPriority)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock.now, updated.LastUpdated)
	assert.True(t, updated.LastUpdated.After(created.LastUpdated))
}

func TestStore_TouchpointsUpdateRecomputesPriority(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, sampleNewOrder(100))
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, Update{Touchpoints: &Touchpoints{WhatsApp: true, Email: true}})
	require.NoError(t, err)
	assert.False(t, updated.IsHighPriority)
	assert.True(t, updated.Touchpoints.Email)
}

func TestStore_StagesReplacedWholesale(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	created, _ := s.Create(ctx, sampleNewOrder(100))
	_, err := s.Update(ctx, created.ID, Update{Stages: &Stages{InEmbroidery: true, Washing: true}})
	require.NoError(t, err)
	updated, err := s.Update(ctx, created.ID, Update{Stages: &Stages{ReadyToDispatch: true}})
	require.NoError(t, err)
	assert.Equal(t, Stages{ReadyToDispatch: true}, updated.Stages)
}

func TestStore_UpdateNotFound(t *testing.T) {
	s, _, _ := newTestStore(t)
	notes := "x"
	_, err := s.Update(context.Background(), "missing", Update{Notes: &notes})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateNormalizesLegacyDocument(t *testing.T) {
	s, coll, _ := newTestStore(t)
	coll.Put(legacyDoc())

	notes := "follow up"
	got, err := s.Update(context.Background(), "0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0", Update{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "ORD-0f1e2d3c", got.OrderNumber)
	assert.Equal(t, []ProductItem{{Name: "Shawl", Quantity: 3, SKU: "SH-01"}}, got.ProductItems)
}

func TestStore_Delete(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Create(ctx, sampleNewOrder(10))
	b, _ := s.Create(ctx, sampleNewOrder(20))
	c, _ := s.Create(ctx, sampleNewOrder(30))

	require.NoError(t, s.Delete(ctx, a.ID))
	assert.ErrorIs(t, s.Delete(ctx, a.ID), ErrNotFound)

	n, err := s.BulkDelete(ctx, []string{"unknown"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = s.BulkDelete(ctx, []string{b.ID, c.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := s.List(ctx, FilterNone)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestStore_Reminders(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	stale, _ := s.Create(ctx, sampleNewOrder(45))
	clock.Advance(6 * 24 * time.Hour)
	_, _ = s.Create(ctx, sampleNewOrder(55))

	got, err := s.Reminders(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stale.ID, got[0].OrderID)
	assert.GreaterOrEqual(t, got[0].DaysSinceUpdate, 5)
	assert.Equal(t, 45.0, got[0].Amount)
}

func TestStore_Analytics(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	_, _ = s.Create(ctx, sampleNewOrder(700))

	stats, err := s.Analytics(ctx, 2024, time.June)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 1, stats.HighPriority)
}

type brokenCollection struct{ docstore.Collection }

var errConnRefused = errors.New("connection refused")

func (brokenCollection) InsertOne(context.Context, docstore.Document) error { return errConnRefused }
func (brokenCollection) FindAll(context.Context) ([]docstore.Document, error) {
	return nil, errConnRefused
}
func (brokenCollection) FindByID(context.Context, string) (docstore.Document, error) {
	return nil, errConnRefused
}
func (brokenCollection) DeleteByID(context.Context, string) (bool, error) {
	return false, errConnRefused
}

func TestStore_UnavailableWrapsCause(t *testing.T) {
	s := NewStore(brokenCollection{})
	ctx := context.Background()

	_, err := s.Create(ctx, sampleNewOrder(1))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, errConnRefused)

	_, err = s.List(ctx, FilterNone)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "x"), ErrUnavailable)

	_, err = s.Reminders(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}
