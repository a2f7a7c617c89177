// README: Quote service prices selections, persists quotes, and re-opens saved quotes for editing.
package quote

import (
    "context"
    "errors"
    "strings"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "villaquote/internal/modules/pricing"
    "villaquote/internal/types"
)

const (
    defaultListLimit = 50
    maxListLimit     = 200
)

type Pricing interface {
    Estimate(ctx context.Context, req pricing.Request) pricing.Breakdown
}

// Repository is the persistence the service needs; *Store implements it.
type Repository interface {
    Create(ctx context.Context, q *Quote) error
    Get(ctx context.Context, id types.ID) (*Quote, error)
    UpdateTotal(ctx context.Context, q *Quote) (bool, error)
    List(ctx context.Context, limit int) ([]*Quote, error)
    Delete(ctx context.Context, id types.ID) (bool, error)
}

type Service struct {
    store   Repository
    pricing Pricing
    codec   *Codec
    logger  *zap.Logger
    now     func() time.Time
}

func NewService(store Repository, pricing Pricing, codec *Codec, logger *zap.Logger) *Service {
    if logger == nil {
        logger = zap.NewNop()
    }
    return &Service{
        store:   store,
        pricing: pricing,
        codec:   codec,
        logger:  logger,
        now:     func() time.Time { return time.Now().UTC() },
    }
}

var (
    ErrNotFound   = errors.New("quote not found")
    ErrBadRequest = errors.New("bad request")
)

type CreateCommand struct {
    CustomerName string
    Selections   pricing.Request
    Lang         string
}

type UpdateCommand struct {
    ID         types.ID
    Selections pricing.Request
    Lang       string
}

// Calculate prices a selection set without saving it.
func (s *Service) Calculate(ctx context.Context, req pricing.Request) pricing.Breakdown {
    return s.pricing.Estimate(ctx, req)
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Quote, error) {
    name := strings.TrimSpace(cmd.CustomerName)
    if name == "" {
        return nil, ErrBadRequest
    }
    if err := cmd.Selections.Validate(); err != nil {
        return nil, err
    }
    b := s.pricing.Estimate(ctx, cmd.Selections)
    now := s.now()
    q := &Quote{
        ID:           newID(),
        CustomerName: name,
        TotalPrice:   b.Total,
        Breakdown:    s.codec.Encode(b, cmd.Lang),
        CreatedAt:    now,
        UpdatedAt:    now,
    }
    if err := s.store.Create(ctx, q); err != nil {
        return nil, err
    }
    s.logger.Info("quote created",
        zap.String("quote_id", string(q.ID)),
        zap.Int64("total", q.TotalPrice))
    return q, nil
}

// Update re-prices a loaded quote and stores the new total and breakdown.
func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*Quote, error) {
    if cmd.ID == "" {
        return nil, ErrBadRequest
    }
    if err := cmd.Selections.Validate(); err != nil {
        return nil, err
    }
    q, err := s.store.Get(ctx, cmd.ID)
    if err != nil {
        return nil, err
    }
    lang := cmd.Lang
    if lang == "" {
        lang = q.Breakdown.Lang
    }
    b := s.pricing.Estimate(ctx, cmd.Selections)
    previous := q.TotalPrice
    q.TotalPrice = b.Total
    q.Breakdown = s.codec.Encode(b, lang)
    q.UpdatedAt = s.now()

    ok, err := s.store.UpdateTotal(ctx, q)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, ErrNotFound
    }
    s.logger.Info("quote total updated",
        zap.String("quote_id", string(q.ID)),
        zap.Int64("previous_total", previous),
        zap.Int64("total", q.TotalPrice))
    return q, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Quote, error) {
    return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]*Quote, error) {
    if limit <= 0 {
        limit = defaultListLimit
    }
    if limit > maxListLimit {
        limit = maxListLimit
    }
    return s.store.List(ctx, limit)
}

func (s *Service) Delete(ctx context.Context, id types.ID) error {
    ok, err := s.store.Delete(ctx, id)
    if err != nil {
        return err
    }
    if !ok {
        return ErrNotFound
    }
    return nil
}

// Load rebuilds the selections of a saved quote, settles one calculation, and
// flags a total that no longer matches the stored one.
func (s *Service) Load(ctx context.Context, id types.ID) (*LoadResult, error) {
    q, err := s.store.Get(ctx, id)
    if err != nil {
        return nil, err
    }

    res := &LoadResult{Quote: q, State: LoadIdle}
    res.advance(LoadLoading)

    req, src, err := s.codec.Decode(q.Breakdown, q.CreatedAt)
    if err != nil {
        s.logger.Warn("quote breakdown could not be decoded",
            zap.String("quote_id", string(q.ID)), zap.Error(err))
        return nil, err
    }
    res.Selections = req
    res.Source = src
    res.advance(LoadFieldsApplied)

    res.Recomputed = s.pricing.Estimate(ctx, req)
    res.advance(LoadSettled)

    if res.Recomputed.Total != q.TotalPrice {
        res.TotalMismatch = true
        s.logger.Warn("recomputed quote total differs from stored total",
            zap.String("quote_id", string(q.ID)),
            zap.String("source", string(src)),
            zap.Int64("stored_total", q.TotalPrice),
            zap.Int64("recomputed_total", res.Recomputed.Total))
    }
    return res, nil
}

func (r *LoadResult) advance(to LoadState) {
    if !CanTransition(r.State, to) {
        panic("quote load: invalid transition " + string(r.State) + " -> " + string(to))
    }
    r.State = to
}

func newID() types.ID {
    return types.ID(uuid.NewString())
}
