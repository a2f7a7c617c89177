package quote

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"villaquote/internal/modules/calendar"
	"villaquote/internal/modules/labels"
	"villaquote/internal/modules/pricing"
)

func testPricing() *pricing.Service {
	return pricing.NewService(pricing.DefaultTables(), calendar.NewClassifier(calendar.DefaultHolidays()), nil, nil)
}

func fullRequest() pricing.Request {
	return pricing.Request{
		Villa: pricing.VillaSelection{Enabled: true, CheckIn: "2025-03-06", CheckOut: "2025-03-10", Rooms: 2},
		Vehicle: pricing.VehicleSelection{Enabled: true, Rows: []pricing.VehicleRow{
			{Date: "2025-03-06", Type: pricing.Vehicle7Seater, Route: pricing.RouteAirport},
			{Date: "2025-03-09", Type: pricing.Vehicle16Limousine, Route: pricing.RouteHoTram},
		}},
		Golf: pricing.GolfSelection{Enabled: true, Rows: []pricing.GolfRow{
			{Date: "2025-03-07", Course: pricing.CourseParadise, Players: 2},
			{Date: "2025-03-08", Course: pricing.CourseHoCham, Players: 4},
		}},
		Guide:     pricing.GuideSelection{Enabled: true, Days: 3, GroupSize: 6},
		FastTrack: pricing.FastTrackSelection{Enabled: true, Type: pricing.FastTrackRoundTrip, Persons: 3},
		Companion: pricing.CompanionSelection{Enabled: true, Rows: []pricing.CompanionRow{
			{Date: "2025-03-07", Count: 2, Hours: pricing.CompanionHours22},
			{Date: "2025-03-08", Count: 1, Hours: pricing.CompanionHours12},
		}},
	}
}

func TestRoundTripStructured(t *testing.T) {
	ctx := context.Background()
	svc := testPricing()
	codec := NewCodec(labels.MustLoad())

	cases := map[string]pricing.Request{
		"everything": fullRequest(),
		"empty":      {},
		"villa only with id": {
			Villa: pricing.VillaSelection{Enabled: true, CheckIn: "2025-01-01", CheckOut: "2025-01-03", Rooms: 1, VillaID: "v-42"},
		},
		"invalid components kept verbatim": {
			Villa:   pricing.VillaSelection{Enabled: true, CheckIn: "2025-03-10", CheckOut: "2025-03-01", Rooms: 1},
			Vehicle: pricing.VehicleSelection{Enabled: true, Rows: []pricing.VehicleRow{{Date: "2025-03-01", Type: pricing.Vehicle4Seater}}},
			Guide:   pricing.GuideSelection{Enabled: false, Days: 2, GroupSize: 8},
		},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			original := svc.Estimate(ctx, req)
			stored := codec.Encode(original, "en")
			require.NotNil(t, stored.Selections)

			raw, err := json.Marshal(stored)
			require.NoError(t, err)
			var reloaded StoredBreakdown
			require.NoError(t, json.Unmarshal(raw, &reloaded))

			decoded, src, err := codec.Decode(reloaded, time.Now())
			require.NoError(t, err)
			require.Equal(t, SourceStructured, src)
			require.Equal(t, req, decoded)
			require.Equal(t, original.Total, svc.Estimate(ctx, decoded).Total)
		})
	}
}

func TestRenderRegeneratesDescriptions(t *testing.T) {
	svc := testPricing()
	codec := NewCodec(labels.MustLoad())
	b := svc.Estimate(context.Background(), fullRequest())

	stored := codec.Encode(b, "en")
	require.Equal(t, stored.Components, codec.Render(b, "en"))

	villa := stored.Components[pricing.ComponentVilla]
	require.Equal(t, b.Villa.Price, villa.Price)
	require.Equal(t,
		"2025-03-06 ~ 2025-03-10 · 4 nights · 2 rooms | 03/06 Weekday $350 | 03/07 Friday $380 | 03/08 Weekend $500 | 03/09 Weekend $500",
		villa.Description)
	require.Equal(t, "3 days · 6 persons $480", stored.Components[pricing.ComponentGuide].Description)
	require.Equal(t, "round-trip · 3 persons $150", stored.Components[pricing.ComponentFastTrack].Description)

	ko := codec.Render(b, "ko")
	require.Equal(t, "왕복 · 3 명 $150", ko[pricing.ComponentFastTrack].Description)

	var total int64
	for _, c := range stored.Components {
		total += c.Price
	}
	require.Equal(t, stored.Total, total)
}

func TestDecodeLegacy(t *testing.T) {
	ctx := context.Background()
	svc := testPricing()
	codec := NewCodec(labels.MustLoad())
	req := fullRequest()
	original := svc.Estimate(ctx, req)

	for _, lang := range []string{"en", "ko", "vi"} {
		t.Run(lang, func(t *testing.T) {
			stored := codec.Encode(original, lang)
			stored.Selections = nil
			stored.Version = 1

			decoded, src, err := codec.Decode(stored, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			require.Equal(t, SourceLegacy, src)
			require.Equal(t, req, decoded)
			require.Equal(t, original.Total, svc.Estimate(ctx, decoded).Total)
		})
	}
}

func TestDecodeLegacyWithoutVillaHeader(t *testing.T) {
	codec := NewCodec(labels.MustLoad())
	stored := StoredBreakdown{
		Version: 1,
		Components: map[pricing.Component]StoredComponent{
			pricing.ComponentVilla: {Price: 700, Description: "03/03 Weekday $350 | 03/04 Weekday $350"},
			pricing.ComponentGolf:  {Price: 180, Description: "03/04 paradise 2 players $180"},
		},
		Total: 880,
	}

	decoded, _, err := codec.Decode(stored, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, pricing.VillaSelection{Enabled: true, CheckIn: "2025-03-03", CheckOut: "2025-03-05", Rooms: 1}, decoded.Villa)
	require.Equal(t, []pricing.GolfRow{{Date: "2025-03-04", Course: pricing.CourseParadise, Players: 2}}, decoded.Golf.Rows)
}

func TestDecodeLegacyYearRollover(t *testing.T) {
	codec := NewCodec(labels.MustLoad())
	stored := StoredBreakdown{
		Components: map[pricing.Component]StoredComponent{
			pricing.ComponentGolf: {Price: 220, Description: "01/04 paradise 2 players $220"},
		},
		Total: 220,
	}

	decoded, _, err := codec.Decode(stored, time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "2025-01-04", decoded.Golf.Rows[0].Date)
}

func TestDecodeLegacyUnparsable(t *testing.T) {
	codec := NewCodec(labels.MustLoad())
	stored := StoredBreakdown{
		Components: map[pricing.Component]StoredComponent{
			pricing.ComponentGuide: {Price: 240, Description: "guide for the whole family"},
		},
		Total: 240,
	}
	_, _, err := codec.Decode(stored, time.Now())
	require.ErrorIs(t, err, ErrUndecodable)
}
