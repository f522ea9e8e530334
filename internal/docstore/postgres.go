package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresCollection keeps each document as a JSONB row in the orders table.
// Field-set updates are a top-level JSONB merge (doc || patch).
type PostgresCollection struct {
	db *sql.DB
}

// OpenPostgres opens a pgx-backed *sql.DB and pings it.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresCollection, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresCollection(db), nil
}

func NewPostgresCollection(db *sql.DB) *PostgresCollection {
	return &PostgresCollection{db: db}
}

func (c *PostgresCollection) InsertOne(ctx context.Context, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, `INSERT INTO orders (id, doc) VALUES ($1, $2)`, doc.ID(), string(raw)); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (c *PostgresCollection) FindByID(ctx context.Context, id string) (Document, error) {
	var raw []byte
	err := c.db.QueryRowContext(ctx, `SELECT doc FROM orders WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	return decodeJSON(raw)
}

func (c *PostgresCollection) FindAll(ctx context.Context) ([]Document, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT doc FROM orders`)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		doc, err := decodeJSON(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return docs, nil
}

func (c *PostgresCollection) UpdateByID(ctx context.Context, id string, set Document) (bool, error) {
	patch, err := json.Marshal(set)
	if err != nil {
		return false, fmt.Errorf("marshal patch: %w", err)
	}
	res, err := c.db.ExecContext(ctx, `UPDATE orders SET doc = doc || $2::jsonb WHERE id = $1`, id, string(patch))
	if err != nil {
		return false, fmt.Errorf("update order: %w", err)
	}
	return affected(res)
}

func (c *PostgresCollection) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return affected(res)
}

func (c *PostgresCollection) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	query := `DELETE FROM orders WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete orders: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (c *PostgresCollection) Close(context.Context) error {
	return c.db.Close()
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func decodeJSON(raw []byte) (Document, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return Document(doc), nil
}
