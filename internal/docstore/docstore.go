// Package docstore holds the document collection backends orders are persisted in.
// Documents are schemaless maps keyed by their "id" attribute; schema enforcement
// belongs to the caller.
package docstore

import "context"

// KeyAttribute names the primary key every document carries.
const KeyAttribute = "id"

// Document is a single stored record.
type Document map[string]any

// ID returns the document key, or "" when missing or not a string.
func (d Document) ID() string {
	id, _ := d[KeyAttribute].(string)
	return id
}

// Collection is the contract the order store relies on.
//
// FindByID returns (nil, nil) when no document has the id. UpdateByID sets the given
// top-level fields and reports whether a document matched. DeleteMany never fails on
// unknown ids; it returns how many documents were removed.
type Collection interface {
	InsertOne(ctx context.Context, doc Document) error
	FindByID(ctx context.Context, id string) (Document, error)
	FindAll(ctx context.Context) ([]Document, error)
	UpdateByID(ctx context.Context, id string, set Document) (bool, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	Close(ctx context.Context) error
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
