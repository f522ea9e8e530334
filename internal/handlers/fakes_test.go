package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/imrishuroy/kashmkari-orderflow/internal/docstore"
	"github.com/imrishuroy/kashmkari-orderflow/internal/email"
	"github.com/imrishuroy/kashmkari-orderflow/internal/idempotency"
)

type memIdempotency struct {
	mu   sync.Mutex
	recs map[string]idempotency.IdempotencyRecord
	now  time.Time

	doneErr error
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{recs: map[string]idempotency.IdempotencyRecord{}, now: time.Now()}
}

func (m *memIdempotency) CreateIfNotExists(_ context.Context, key, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[key]; ok {
		return false, nil
	}
	m.recs[key] = idempotency.IdempotencyRecord{
		IdempotencyKey: key,
		Status:         idempotency.StatusInProgress,
		RequestHash:    hash,
		ExpiresAt:      m.now.Add(time.Hour).Unix(),
	}
	return true, nil
}

func (m *memIdempotency) Get(_ context.Context, key string) (*idempotency.IdempotencyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memIdempotency) Reclaim(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.recs[key]
	if rec.Status != idempotency.StatusFailed && !rec.Expired(m.now) {
		return false, nil
	}
	rec.Status = idempotency.StatusInProgress
	rec.Note = ""
	m.recs[key] = rec
	return true, nil
}

func (m *memIdempotency) MarkDone(_ context.Context, key, orderID, body string, status int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doneErr != nil {
		return m.doneErr
	}
	rec := m.recs[key]
	rec.Status = idempotency.StatusDone
	rec.OrderID = orderID
	rec.ResponseBody = body
	rec.ResponseStatus = status
	m.recs[key] = rec
	return nil
}

func (m *memIdempotency) MarkFailed(_ context.Context, key, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.recs[key]
	rec.Status = idempotency.StatusFailed
	rec.Note = note
	m.recs[key] = rec
	return nil
}

func (m *memIdempotency) Now() time.Time { return m.now }

type fakeSender struct {
	sent []email.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "re_42", nil
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]float64
}

func (m *countingMetrics) Count(_ context.Context, name string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]float64{}
	}
	m.counts[name] += v
}

var errDown = errors.New("no reachable servers")

// flakyCollection fails inserts and listings while down is set.
type flakyCollection struct {
	*docstore.MemoryCollection
	down bool
}

func (f *flakyCollection) InsertOne(ctx context.Context, doc docstore.Document) error {
	if f.down {
		return errDown
	}
	return f.MemoryCollection.InsertOne(ctx, doc)
}

func (f *flakyCollection) FindAll(ctx context.Context) ([]docstore.Document, error) {
	if f.down {
		return nil, errDown
	}
	return f.MemoryCollection.FindAll(ctx)
}

func idempotencyRecordFor(key, body string, now time.Time) idempotency.IdempotencyRecord {
	return idempotency.IdempotencyRecord{
		IdempotencyKey: key,
		Status:         idempotency.StatusInProgress,
		RequestHash:    idempotency.HashRequest([]byte(body)),
		ExpiresAt:      now.Add(time.Hour).Unix(),
	}
}
