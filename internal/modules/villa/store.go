// README: Villa store backed by PostgreSQL.
package villa

import (
    "context"
    "errors"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
    db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
    return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id string) (*Villa, error) {
    var v Villa
    err := s.db.QueryRow(ctx, `
        SELECT id, name, weekday_price, friday_price, weekend_price, holiday_price, updated_at
        FROM villas
        WHERE id = $1`, id,
    ).Scan(
        &v.ID,
        &v.Name,
        &v.Rates.Weekday,
        &v.Rates.Friday,
        &v.Rates.Weekend,
        &v.Rates.Holiday,
        &v.UpdatedAt,
    )
    if errors.Is(err, pgx.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &v, nil
}

// Upsert inserts or replaces a villa's rate card.
func (s *Store) Upsert(ctx context.Context, v *Villa) error {
    return s.db.QueryRow(ctx, `
        INSERT INTO villas (id, name, weekday_price, friday_price, weekend_price, holiday_price, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            weekday_price = EXCLUDED.weekday_price,
            friday_price = EXCLUDED.friday_price,
            weekend_price = EXCLUDED.weekend_price,
            holiday_price = EXCLUDED.holiday_price,
            updated_at = NOW()
        RETURNING updated_at`,
        v.ID,
        v.Name,
        v.Rates.Weekday,
        v.Rates.Friday,
        v.Rates.Weekend,
        v.Rates.Holiday,
    ).Scan(&v.UpdatedAt)
}

func (s *Store) List(ctx context.Context) ([]*Villa, error) {
    rows, err := s.db.Query(ctx, `
        SELECT id, name, weekday_price, friday_price, weekend_price, holiday_price, updated_at
        FROM villas
        ORDER BY name`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*Villa
    for rows.Next() {
        var v Villa
        if err := rows.Scan(&v.ID, &v.Name, &v.Rates.Weekday, &v.Rates.Friday, &v.Rates.Weekend, &v.Rates.Holiday, &v.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, &v)
    }
    return out, rows.Err()
}
