// README: Villa service manages per-villa rate cards and keeps the rate cache coherent.
package villa

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

var ErrBadRequest = errors.New("bad request")

type Repository interface {
	Source
	Upsert(ctx context.Context, v *Villa) error
	List(ctx context.Context) ([]*Villa, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, villaID string) error
}

type Service struct {
	store  Repository
	cache  Invalidator
	logger *zap.Logger
}

func NewService(store Repository, cache Invalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cache: cache, logger: logger}
}

// Upsert saves a rate card. Every day class needs a positive rate.
func (s *Service) Upsert(ctx context.Context, v *Villa) error {
	v.ID = strings.TrimSpace(v.ID)
	v.Name = strings.TrimSpace(v.Name)
	if v.ID == "" || v.Name == "" {
		return ErrBadRequest
	}
	r := v.Rates
	if r.Weekday <= 0 || r.Friday <= 0 || r.Weekend <= 0 || r.Holiday <= 0 {
		return ErrBadRequest
	}
	if err := s.store.Upsert(ctx, v); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, v.ID); err != nil {
			// Stale rates live until the TTL expires.
			s.logger.Warn("villa cache invalidation failed", zap.String("villa_id", v.ID), zap.Error(err))
		}
	}
	s.logger.Info("villa rates saved", zap.String("villa_id", v.ID))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Villa, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Villa, error) {
	return s.store.List(ctx)
}
