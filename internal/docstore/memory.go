package docstore

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryCollection keeps documents in process, in insertion order. It backs
// STORE_BACKEND=memory for local runs and the package tests of its callers.
type MemoryCollection struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]Document
}

func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{docs: map[string]Document{}}
}

func (c *MemoryCollection) InsertOne(_ context.Context, doc Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := doc.ID()
	if _, ok := c.docs[id]; ok {
		return fmt.Errorf("document %s already exists", id)
	}
	c.docs[id] = deepCopy(doc).(Document)
	c.order = append(c.order, id)
	return nil
}

func (c *MemoryCollection) FindByID(_ context.Context, id string) (Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	return deepCopy(doc).(Document), nil
}

func (c *MemoryCollection) FindAll(context.Context) ([]Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, deepCopy(c.docs[id]).(Document))
	}
	return out, nil
}

func (c *MemoryCollection) UpdateByID(_ context.Context, id string, set Document) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[id]
	if !ok {
		return false, nil
	}
	for k, v := range set {
		doc[k] = deepCopy(v)
	}
	return true, nil
}

func (c *MemoryCollection) DeleteByID(_ context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(id), nil
}

func (c *MemoryCollection) DeleteMany(_ context.Context, ids []string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, id := range uniqueIDs(ids) {
		if c.remove(id) {
			n++
		}
	}
	return n, nil
}

func (c *MemoryCollection) Close(context.Context) error { return nil }

// Put stores doc as-is, replacing any document with the same id. Useful for
// seeding documents in an older shape.
func (c *MemoryCollection) Put(doc Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := doc.ID()
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = deepCopy(doc).(Document)
}

// Raw returns the stored document without copying-in defaults, for assertions.
func (c *MemoryCollection) Raw(id string) Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil
	}
	return deepCopy(doc).(Document)
}

func (c *MemoryCollection) remove(id string) bool {
	if _, ok := c.docs[id]; !ok {
		return false
	}
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	return true
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case Document:
		out := make(Document, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
