// README: Pricing service combines the component estimators into one quote breakdown.
package pricing

import (
	"context"

	"go.uber.org/zap"

	"villaquote/internal/modules/calendar"
)

// VillaCatalog resolves per-villa nightly rates. ok is false for unknown villas.
type VillaCatalog interface {
	Rates(ctx context.Context, villaID string) (rates VillaRates, ok bool, err error)
}

type Service struct {
	tables     Tables
	classifier *calendar.Classifier
	catalog    VillaCatalog
	logger     *zap.Logger
}

func NewService(tables Tables, classifier *calendar.Classifier, catalog VillaCatalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{tables: tables, classifier: classifier, catalog: catalog, logger: logger}
}

// Estimate computes every component and the total. Invalid components price at zero.
func (s *Service) Estimate(ctx context.Context, req Request) Breakdown {
	var b Breakdown
	var err error

	b.Villa = EstimateVilla(req.Villa, s.villaRates(ctx, req.Villa), s.classifier)
	if b.Vehicle, err = EstimateVehicle(req.Vehicle, s.tables); err != nil {
		s.logger.Error("vehicle rate table incomplete", zap.Error(err))
	}
	if b.Golf, err = EstimateGolf(req.Golf, s.tables, s.classifier); err != nil {
		s.logger.Error("golf rate table incomplete", zap.Error(err))
	}
	b.Guide = EstimateGuide(req.Guide, s.tables)
	b.FastTrack = EstimateFastTrack(req.FastTrack, s.tables)
	if b.Companion, err = EstimateCompanion(req.Companion, s.tables); err != nil {
		s.logger.Error("companion rate table incomplete", zap.Error(err))
	}

	b.sum()
	return b
}

func (s *Service) villaRates(ctx context.Context, sel VillaSelection) VillaRates {
	if !sel.Enabled || sel.VillaID == "" || s.catalog == nil {
		return s.tables.Villa
	}
	rates, ok, err := s.catalog.Rates(ctx, sel.VillaID)
	if err != nil {
		s.logger.Warn("villa catalog lookup failed, using default rates",
			zap.String("villa_id", sel.VillaID), zap.Error(err))
		return s.tables.Villa
	}
	if !ok {
		return s.tables.Villa
	}
	return rates
}
