// README: Quote store backed by PostgreSQL; the breakdown is kept as JSONB.
package quote

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "villaquote/internal/types"
)

type Store struct {
    db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
    return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, q *Quote) error {
    raw, err := json.Marshal(q.Breakdown)
    if err != nil {
        return fmt.Errorf("marshal breakdown: %w", err)
    }
    _, err = s.db.Exec(ctx, `
        INSERT INTO quotes (
            id, customer_name, total_price, breakdown, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
        string(q.ID),
        q.CustomerName,
        q.TotalPrice,
        raw,
        q.CreatedAt,
        q.UpdatedAt,
    )
    return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Quote, error) {
    row := s.db.QueryRow(ctx, `
        SELECT id, customer_name, total_price, breakdown, created_at, updated_at
        FROM quotes
        WHERE id = $1`, string(id),
    )
    q, err := scanQuote(row)
    if errors.Is(err, pgx.ErrNoRows) {
        return nil, ErrNotFound
    }
    return q, err
}

// UpdateTotal replaces the total and breakdown of an existing quote.
func (s *Store) UpdateTotal(ctx context.Context, q *Quote) (bool, error) {
    raw, err := json.Marshal(q.Breakdown)
    if err != nil {
        return false, fmt.Errorf("marshal breakdown: %w", err)
    }
    tag, err := s.db.Exec(ctx, `
        UPDATE quotes
        SET total_price = $1,
            breakdown = $2,
            updated_at = $3
        WHERE id = $4`,
        q.TotalPrice,
        raw,
        q.UpdatedAt,
        string(q.ID),
    )
    if err != nil {
        return false, err
    }
    return tag.RowsAffected() == 1, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*Quote, error) {
    rows, err := s.db.Query(ctx, `
        SELECT id, customer_name, total_price, breakdown, created_at, updated_at
        FROM quotes
        ORDER BY created_at DESC
        LIMIT $1`, limit,
    )
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*Quote
    for rows.Next() {
        q, err := scanQuote(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, q)
    }
    return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id types.ID) (bool, error) {
    tag, err := s.db.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, string(id))
    if err != nil {
        return false, err
    }
    return tag.RowsAffected() == 1, nil
}

func scanQuote(row pgx.Row) (*Quote, error) {
    var q Quote
    var raw []byte
    if err := row.Scan(&q.ID, &q.CustomerName, &q.TotalPrice, &raw, &q.CreatedAt, &q.UpdatedAt); err != nil {
        return nil, err
    }
    if err := json.Unmarshal(raw, &q.Breakdown); err != nil {
        return nil, fmt.Errorf("unmarshal breakdown of quote %s: %w", q.ID, err)
    }
    return &q, nil
}
