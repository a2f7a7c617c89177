// README: Quote selections per component, the calculation request, and the computed breakdown.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"villaquote/internal/modules/calendar"
)

var ErrInvalidSelection = errors.New("invalid selection")

type Component string

const (
	ComponentVilla     Component = "villa"
	ComponentVehicle   Component = "vehicle"
	ComponentGolf      Component = "golf"
	ComponentGuide     Component = "guide"
	ComponentFastTrack Component = "fast_track"
	ComponentCompanion Component = "companion"
)

// Components lists every priced component in display order.
var Components = []Component{
	ComponentVilla,
	ComponentVehicle,
	ComponentGolf,
	ComponentGuide,
	ComponentFastTrack,
	ComponentCompanion,
}

type VehicleType string

const (
	Vehicle4Seater     VehicleType = "4_seater"
	Vehicle7Seater     VehicleType = "7_seater"
	Vehicle9Limousine  VehicleType = "9_limousine"
	Vehicle16Seater    VehicleType = "16_seater"
	Vehicle16Limousine VehicleType = "16_limousine"
	Vehicle29Seater    VehicleType = "29_seater"
	Vehicle35Seater    VehicleType = "35_seater"
	Vehicle45Seater    VehicleType = "45_seater"
)

var VehicleTypes = []VehicleType{
	Vehicle4Seater, Vehicle7Seater, Vehicle9Limousine, Vehicle16Seater,
	Vehicle16Limousine, Vehicle29Seater, Vehicle35Seater, Vehicle45Seater,
}

type Route string

const (
	RouteCity      Route = "city"
	RouteAirport   Route = "airport"
	RouteHoTram    Route = "hotram"
	RouteVungTau   Route = "vungtau"
	RouteHoChiMinh Route = "hochiminh"
	RouteFullDay   Route = "fullday"
)

var Routes = []Route{RouteCity, RouteAirport, RouteHoTram, RouteVungTau, RouteHoChiMinh, RouteFullDay}

type Course string

const (
	CourseParadise Course = "paradise"
	CourseChouDuc  Course = "chouduc"
	CourseHoCham   Course = "hocham"
)

var Courses = []Course{CourseParadise, CourseChouDuc, CourseHoCham}

type FastTrackType string

const (
	FastTrackOneWay    FastTrackType = "oneway"
	FastTrackRoundTrip FastTrackType = "roundtrip"
)

type CompanionHours string

const (
	CompanionHours12 CompanionHours = "12"
	CompanionHours22 CompanionHours = "22"
)

var CompanionBrackets = []CompanionHours{CompanionHours12, CompanionHours22}

// Upper bounds on client-supplied quantities. A selection above a bound is
// invalid: estimators price it at zero and Request.Validate rejects it.
// At these sizes every product stays far below the int64 range.
const (
	MaxVillaNights = 366
	MaxRooms       = 50
	MaxPlayers     = 40
	MaxGuideDays   = 90
	MaxGroupSize   = 200
	MaxPersons     = 200
	MaxCompanions  = 50
)

type VillaSelection struct {
	Enabled  bool   `json:"enabled"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Rooms    int    `json:"rooms"`
	VillaID  string `json:"villa_id,omitempty"`
}

type VehicleRow struct {
	Date  string      `json:"date"`
	Type  VehicleType `json:"vehicle_type"`
	Route Route       `json:"route"`
}

type VehicleSelection struct {
	Enabled bool         `json:"enabled"`
	Rows    []VehicleRow `json:"rows"`
}

type GolfRow struct {
	Date    string `json:"date"`
	Course  Course `json:"course"`
	Players int    `json:"players"`
}

type GolfSelection struct {
	Enabled bool      `json:"enabled"`
	Rows    []GolfRow `json:"rows"`
}

type GuideSelection struct {
	Enabled   bool `json:"enabled"`
	Days      int  `json:"days"`
	GroupSize int  `json:"group_size"`
}

type FastTrackSelection struct {
	Enabled bool          `json:"enabled"`
	Type    FastTrackType `json:"type"`
	Persons int           `json:"persons"`
}

type CompanionRow struct {
	Date  string         `json:"date"`
	Count int            `json:"count"`
	Hours CompanionHours `json:"hours"`
}

type CompanionSelection struct {
	Enabled bool           `json:"enabled"`
	Rows    []CompanionRow `json:"rows"`
}

// Request is the full selection set a quote is computed from.
type Request struct {
	Villa     VillaSelection     `json:"villa"`
	Vehicle   VehicleSelection   `json:"vehicle"`
	Golf      GolfSelection      `json:"golf"`
	Guide     GuideSelection     `json:"guide"`
	FastTrack FastTrackSelection `json:"fast_track"`
	Companion CompanionSelection `json:"companion"`
}

// LineItem is one priced display row. Row indexes the selection row it came from;
// Date and Tag carry the day and its rate class where one applies.
type LineItem struct {
	Label string `json:"label"`
	Price int64  `json:"price"`
	Row   int    `json:"row"`
	Date  string `json:"date,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

type ComponentResult[S any] struct {
	Price   int64      `json:"price"`
	Details []string   `json:"details"`
	Items   []LineItem `json:"items,omitempty"`
	Raw     S          `json:"raw"`
}

type Breakdown struct {
	Villa     ComponentResult[VillaSelection]     `json:"villa"`
	Vehicle   ComponentResult[VehicleSelection]   `json:"vehicle"`
	Golf      ComponentResult[GolfSelection]      `json:"golf"`
	Guide     ComponentResult[GuideSelection]     `json:"guide"`
	FastTrack ComponentResult[FastTrackSelection] `json:"fast_track"`
	Companion ComponentResult[CompanionSelection] `json:"companion"`
	Total     int64                               `json:"total"`
}

// Price returns the computed price of one component.
func (b Breakdown) Price(c Component) int64 {
	switch c {
	case ComponentVilla:
		return b.Villa.Price
	case ComponentVehicle:
		return b.Vehicle.Price
	case ComponentGolf:
		return b.Golf.Price
	case ComponentGuide:
		return b.Guide.Price
	case ComponentFastTrack:
		return b.FastTrack.Price
	case ComponentCompanion:
		return b.Companion.Price
	}
	return 0
}

// Details returns the display lines of one component.
func (b Breakdown) Details(c Component) []string {
	switch c {
	case ComponentVilla:
		return b.Villa.Details
	case ComponentVehicle:
		return b.Vehicle.Details
	case ComponentGolf:
		return b.Golf.Details
	case ComponentGuide:
		return b.Guide.Details
	case ComponentFastTrack:
		return b.FastTrack.Details
	case ComponentCompanion:
		return b.Companion.Details
	}
	return nil
}

// Request returns the selections the breakdown was computed from.
func (b Breakdown) Request() Request {
	return Request{
		Villa:     b.Villa.Raw,
		Vehicle:   b.Vehicle.Raw,
		Golf:      b.Golf.Raw,
		Guide:     b.Guide.Raw,
		FastTrack: b.FastTrack.Raw,
		Companion: b.Companion.Raw,
	}
}

func (b *Breakdown) sum() {
	var total int64
	for _, c := range Components {
		total += b.Price(c)
	}
	b.Total = total
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(calendar.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatDate(t time.Time) string {
	return t.Format(calendar.DateLayout)
}

// nights counts the nights in [in, out) for dates without a time of day.
func nights(in, out time.Time) int {
	return int(out.Sub(in).Hours() / 24)
}

func NewVillaSelection(checkIn, checkOut time.Time, rooms int, villaID string) (VillaSelection, error) {
	if rooms < 1 || rooms > MaxRooms {
		return VillaSelection{}, fmt.Errorf("%w: villa rooms must be between 1 and %d", ErrInvalidSelection, MaxRooms)
	}
	if !checkOut.After(checkIn) {
		return VillaSelection{}, fmt.Errorf("%w: villa check-out must be after check-in", ErrInvalidSelection)
	}
	if nights(checkIn, checkOut) > MaxVillaNights {
		return VillaSelection{}, fmt.Errorf("%w: villa stay longer than %d nights", ErrInvalidSelection, MaxVillaNights)
	}
	return VillaSelection{
		Enabled:  true,
		CheckIn:  formatDate(checkIn),
		CheckOut: formatDate(checkOut),
		Rooms:    rooms,
		VillaID:  villaID,
	}, nil
}

func NewVehicleRow(date time.Time, typ VehicleType, route Route) (VehicleRow, error) {
	if !typ.valid() || !route.valid() {
		return VehicleRow{}, fmt.Errorf("%w: vehicle %q on route %q", ErrInvalidSelection, typ, route)
	}
	return VehicleRow{Date: formatDate(date), Type: typ, Route: route}, nil
}

func NewGolfRow(date time.Time, course Course, players int) (GolfRow, error) {
	if !course.valid() || players < 1 || players > MaxPlayers {
		return GolfRow{}, fmt.Errorf("%w: golf course %q with %d players", ErrInvalidSelection, course, players)
	}
	return GolfRow{Date: formatDate(date), Course: course, Players: players}, nil
}

func NewGuideSelection(days, groupSize int) (GuideSelection, error) {
	if days < 0 || days > MaxGuideDays || groupSize < 1 || groupSize > MaxGroupSize {
		return GuideSelection{}, fmt.Errorf("%w: guide %d days for %d persons", ErrInvalidSelection, days, groupSize)
	}
	return GuideSelection{Enabled: true, Days: days, GroupSize: groupSize}, nil
}

func NewFastTrackSelection(typ FastTrackType, persons int) (FastTrackSelection, error) {
	if !typ.valid() || persons < 0 || persons > MaxPersons {
		return FastTrackSelection{}, fmt.Errorf("%w: fast-track %q for %d persons", ErrInvalidSelection, typ, persons)
	}
	return FastTrackSelection{Enabled: true, Type: typ, Persons: persons}, nil
}

func NewCompanionRow(date time.Time, count int, hours CompanionHours) (CompanionRow, error) {
	if hours == "" {
		hours = CompanionHours12
	}
	if count < 1 || count > MaxCompanions || !hours.valid() {
		return CompanionRow{}, fmt.Errorf("%w: companion x%d for %sh", ErrInvalidSelection, count, hours)
	}
	return CompanionRow{Date: formatDate(date), Count: count, Hours: hours}, nil
}

func (v VehicleType) valid() bool {
	for _, t := range VehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

func (r Route) valid() bool {
	for _, x := range Routes {
		if x == r {
			return true
		}
	}
	return false
}

func (c Course) valid() bool {
	for _, x := range Courses {
		if x == c {
			return true
		}
	}
	return false
}

func (f FastTrackType) valid() bool {
	return f == FastTrackOneWay || f == FastTrackRoundTrip
}

func (h CompanionHours) valid() bool {
	return h == CompanionHours12 || h == CompanionHours22
}
