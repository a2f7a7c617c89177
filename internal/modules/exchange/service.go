// README: Exchange service converts quote totals for display; it never feeds back into pricing.
package exchange

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type RateStore interface {
	SetRates(ctx context.Context, values map[string]decimal.Decimal, at time.Time) error
	Rates(ctx context.Context) (Rates, error)
}

type Service struct {
	store  RateStore
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store RateStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// UpdateRates validates and stores a full rate set pushed by the feeder.
func (s *Service) UpdateRates(ctx context.Context, values map[string]decimal.Decimal) error {
	if len(values) == 0 {
		return ErrBadRequest
	}
	clean := make(map[string]decimal.Decimal, len(values))
	for code, rate := range values {
		unit, err := parseCode(code)
		if err != nil {
			return err
		}
		if !rate.IsPositive() {
			return ErrBadRequest
		}
		clean[unit.String()] = rate
	}
	if err := s.store.SetRates(ctx, clean, s.now()); err != nil {
		return err
	}
	s.logger.Info("exchange rates updated", zap.Int("currencies", len(clean)))
	return nil
}

func (s *Service) Rates(ctx context.Context) (Rates, error) {
	return s.store.Rates(ctx)
}

// Convert converts a USD total and formats it for lang.
func (s *Service) Convert(ctx context.Context, totalUSD int64, code, lang string) (*Conversion, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	rates, err := s.store.Rates(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := Convert(totalUSD, code, rates)
	if err != nil {
		return nil, err
	}
	display, err := Format(amount, code, lang)
	if err != nil {
		return nil, err
	}
	rate := decimal.NewFromInt(1)
	if code != Base {
		rate = rates.Values[code]
	}
	return &Conversion{
		BaseAmount: totalUSD,
		Currency:   code,
		Rate:       rate,
		Amount:     amount,
		Display:    display,
	}, nil
}
