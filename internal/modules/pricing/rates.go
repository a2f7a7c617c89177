// README: Rate tables for every priced component. Tables are values; nothing mutates them after construction.
package pricing

import (
	"errors"
	"fmt"

	"villaquote/internal/modules/calendar"
)

var ErrMissingRate = errors.New("missing rate table entry")

// GuideFreeGroupSize is the group size covered by the guide base rate.
const GuideFreeGroupSize = 4

type VillaRates struct {
	Weekday int64 `json:"weekday_price"`
	Friday  int64 `json:"friday_price"`
	Weekend int64 `json:"weekend_price"`
	Holiday int64 `json:"holiday_price"`
}

func (r VillaRates) For(class calendar.DayClass) int64 {
	switch class {
	case calendar.Holiday:
		return r.Holiday
	case calendar.Friday:
		return r.Friday
	case calendar.Weekend:
		return r.Weekend
	default:
		return r.Weekday
	}
}

type GolfRate struct {
	Weekday  int64
	Weekend  int64
	CaddyTip string
}

type Tables struct {
	Villa           VillaRates
	Vehicle         map[VehicleType]map[Route]int64
	Golf            map[Course]GolfRate
	GuideBase       int64
	GuideExtra      int64
	FastTrackPerson int64
	Companion       map[CompanionHours]int64
}

// DefaultTables returns the published USD rate card.
func DefaultTables() Tables {
	return Tables{
		Villa: VillaRates{Weekday: 350, Friday: 380, Weekend: 500, Holiday: 550},
		Vehicle: map[VehicleType]map[Route]int64{
			Vehicle4Seater:     {RouteCity: 80, RouteAirport: 60, RouteHoTram: 120, RouteVungTau: 90, RouteHoChiMinh: 150, RouteFullDay: 160},
			Vehicle7Seater:     {RouteCity: 100, RouteAirport: 70, RouteHoTram: 140, RouteVungTau: 110, RouteHoChiMinh: 170, RouteFullDay: 180},
			Vehicle9Limousine:  {RouteCity: 130, RouteAirport: 90, RouteHoTram: 170, RouteVungTau: 140, RouteHoChiMinh: 210, RouteFullDay: 220},
			Vehicle16Seater:    {RouteCity: 140, RouteAirport: 100, RouteHoTram: 190, RouteVungTau: 150, RouteHoChiMinh: 230, RouteFullDay: 240},
			Vehicle16Limousine: {RouteCity: 170, RouteAirport: 120, RouteHoTram: 220, RouteVungTau: 180, RouteHoChiMinh: 270, RouteFullDay: 280},
			Vehicle29Seater:    {RouteCity: 200, RouteAirport: 150, RouteHoTram: 260, RouteVungTau: 210, RouteHoChiMinh: 320, RouteFullDay: 330},
			Vehicle35Seater:    {RouteCity: 230, RouteAirport: 170, RouteHoTram: 290, RouteVungTau: 240, RouteHoChiMinh: 360, RouteFullDay: 370},
			Vehicle45Seater:    {RouteCity: 260, RouteAirport: 190, RouteHoTram: 320, RouteVungTau: 270, RouteHoChiMinh: 400, RouteFullDay: 420},
		},
		Golf: map[Course]GolfRate{
			CourseParadise: {Weekday: 90, Weekend: 110, CaddyTip: "caddy tip $15/player, paid on site"},
			CourseChouDuc:  {Weekday: 120, Weekend: 150, CaddyTip: "caddy tip $20/player, paid on site"},
			CourseHoCham:   {Weekday: 150, Weekend: 190, CaddyTip: "caddy tip $25/player, paid on site"},
		},
		GuideBase:       120,
		GuideExtra:      20,
		FastTrackPerson: 25,
		Companion: map[CompanionHours]int64{
			CompanionHours12: 220,
			CompanionHours22: 380,
		},
	}
}

func (t Tables) VehicleRate(typ VehicleType, route Route) (int64, error) {
	byRoute, ok := t.Vehicle[typ]
	if !ok {
		return 0, fmt.Errorf("%w: vehicle %s", ErrMissingRate, typ)
	}
	price, ok := byRoute[route]
	if !ok {
		return 0, fmt.Errorf("%w: vehicle %s route %s", ErrMissingRate, typ, route)
	}
	return price, nil
}

func (t Tables) GolfRate(course Course) (GolfRate, error) {
	r, ok := t.Golf[course]
	if !ok {
		return GolfRate{}, fmt.Errorf("%w: golf course %s", ErrMissingRate, course)
	}
	return r, nil
}

func (t Tables) CompanionRate(hours CompanionHours) (int64, error) {
	r, ok := t.Companion[hours]
	if !ok {
		return 0, fmt.Errorf("%w: companion %sh", ErrMissingRate, hours)
	}
	return r, nil
}

// Validate reports every enum combination without a table entry.
func (t Tables) Validate() error {
	var errs []error
	for _, typ := range VehicleTypes {
		for _, route := range Routes {
			if _, err := t.VehicleRate(typ, route); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, c := range Courses {
		if _, err := t.GolfRate(c); err != nil {
			errs = append(errs, err)
		}
	}
	for _, h := range CompanionBrackets {
		if _, err := t.CompanionRate(h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
