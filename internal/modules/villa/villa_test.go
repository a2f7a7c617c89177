// README: Villa catalog tests; the Redis and Postgres cases skip without test infrastructure.
package villa

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"villaquote/internal/modules/calendar"
	"villaquote/internal/modules/pricing"
	"villaquote/internal/testutil"
)

type fakeRepo struct {
	mu     sync.Mutex
	villas map[string]Villa
	gets   int
}

func newFakeRepo(vs ...Villa) *fakeRepo {
	r := &fakeRepo{villas: map[string]Villa{}}
	for _, v := range vs {
		r.villas[v.ID] = v
	}
	return r
}

func (r *fakeRepo) Get(_ context.Context, id string) (*Villa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	v, ok := r.villas[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (r *fakeRepo) Upsert(_ context.Context, v *Villa) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.villas[v.ID] = *v
	return nil
}

func (r *fakeRepo) List(_ context.Context) ([]*Villa, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Villa, 0, len(r.villas))
	for _, v := range r.villas {
		v := v
		out = append(out, &v)
	}
	return out, nil
}

type recordingInvalidator struct {
	ids []string
	err error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, id string) error {
	r.ids = append(r.ids, id)
	return r.err
}

var seaside = Villa{
	ID:    "seaside",
	Name:  "Seaside Villa",
	Rates: pricing.VillaRates{Weekday: 400, Friday: 450, Weekend: 600, Holiday: 700},
}

func TestServiceUpsertValidates(t *testing.T) {
	svc := NewService(newFakeRepo(), &recordingInvalidator{}, nil)
	ctx := context.Background()

	cases := map[string]Villa{
		"missing id":   {Name: "x", Rates: seaside.Rates},
		"missing name": {ID: "x", Rates: seaside.Rates},
		"zero rate":    {ID: "x", Name: "x", Rates: pricing.VillaRates{Weekday: 1, Friday: 1, Weekend: 1}},
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			v := v
			require.ErrorIs(t, svc.Upsert(ctx, &v), ErrBadRequest)
		})
	}
}

func TestServiceUpsertInvalidatesCache(t *testing.T) {
	repo := newFakeRepo()
	inv := &recordingInvalidator{err: errors.New("redis down")}
	svc := NewService(repo, inv, nil)

	v := seaside
	v.ID = "  seaside "
	// An invalidation failure is logged, not returned.
	require.NoError(t, svc.Upsert(context.Background(), &v))
	require.Equal(t, []string{"seaside"}, inv.ids)

	got, err := svc.Get(context.Background(), "seaside")
	require.NoError(t, err)
	require.Equal(t, seaside.Rates, got.Rates)
}

func TestCacheReadThrough(t *testing.T) {
	rdb := testutil.SetupRedis(t, ratesKey("seaside"), ratesKey("unknown"))
	repo := newFakeRepo(seaside)
	cache := NewCache(rdb, repo, 0, nil)
	ctx := context.Background()

	rates, ok, err := cache.Rates(ctx, "seaside")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, seaside.Rates, rates)

	// Second lookup is served from Redis.
	_, _, err = cache.Rates(ctx, "seaside")
	require.NoError(t, err)
	require.Equal(t, 1, repo.gets)

	require.NoError(t, cache.Invalidate(ctx, "seaside"))
	_, _, err = cache.Rates(ctx, "seaside")
	require.NoError(t, err)
	require.Equal(t, 2, repo.gets)

	_, ok, err = cache.Rates(ctx, "unknown")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheFeedsPricing(t *testing.T) {
	rdb := testutil.SetupRedis(t, ratesKey("seaside"))
	cache := NewCache(rdb, newFakeRepo(seaside), 0, nil)
	svc := pricing.NewService(pricing.DefaultTables(), calendar.NewClassifier(calendar.DefaultHolidays()), cache, nil)

	b := svc.Estimate(context.Background(), pricing.Request{
		// Wednesday and Thursday nights.
		Villa: pricing.VillaSelection{Enabled: true, CheckIn: "2025-03-05", CheckOut: "2025-03-07", Rooms: 1, VillaID: "seaside"},
	})
	require.Equal(t, int64(800), b.Total)
}

func TestStoreUpsertGet(t *testing.T) {
	db := testutil.SetupDB(t, "villas")
	store := NewStore(db)
	ctx := context.Background()

	v := seaside
	require.NoError(t, store.Upsert(ctx, &v))
	require.False(t, v.UpdatedAt.IsZero())

	v.Rates.Weekday = 420
	require.NoError(t, store.Upsert(ctx, &v))

	got, err := store.Get(ctx, "seaside")
	require.NoError(t, err)
	require.Equal(t, int64(420), got.Rates.Weekday)
	require.Equal(t, "Seaside Villa", got.Name)

	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
