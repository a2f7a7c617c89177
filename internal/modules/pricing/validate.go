// README: Edge validation of a selection set; malformed values are rejected, incomplete ones still price at zero.
package pricing

import (
	"errors"
	"fmt"
)

// Validate rejects enabled selections that carry malformed input: unknown
// vehicle types, routes, courses, fast-track types or hour brackets,
// unparsable dates, negative quantities and quantities above their bound.
// Blank fields and empty date ranges are incomplete, not malformed; the
// estimators price those at zero.
func (r Request) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidSelection}, args...)...))
	}

	if v := r.Villa; v.Enabled {
		if !inRange(v.Rooms, 0, MaxRooms) {
			add("villa rooms %d outside 0..%d", v.Rooms, MaxRooms)
		}
		in, inOK := parseDate(v.CheckIn)
		out, outOK := parseDate(v.CheckOut)
		if v.CheckIn != "" && !inOK {
			add("villa check-in %q", v.CheckIn)
		}
		if v.CheckOut != "" && !outOK {
			add("villa check-out %q", v.CheckOut)
		}
		if inOK && outOK && nights(in, out) > MaxVillaNights {
			add("villa stay longer than %d nights", MaxVillaNights)
		}
	}

	if r.Vehicle.Enabled {
		for i, row := range r.Vehicle.Rows {
			if row.Type != "" && !row.Type.valid() {
				add("vehicle row %d: unknown vehicle type %q", i, row.Type)
			}
			if row.Route != "" && !row.Route.valid() {
				add("vehicle row %d: unknown route %q", i, row.Route)
			}
			if !blankOrDate(row.Date) {
				add("vehicle row %d: date %q", i, row.Date)
			}
		}
	}

	if r.Golf.Enabled {
		for i, row := range r.Golf.Rows {
			if row.Course != "" && !row.Course.valid() {
				add("golf row %d: unknown course %q", i, row.Course)
			}
			if !inRange(row.Players, 0, MaxPlayers) {
				add("golf row %d: players %d outside 0..%d", i, row.Players, MaxPlayers)
			}
			if !blankOrDate(row.Date) {
				add("golf row %d: date %q", i, row.Date)
			}
		}
	}

	if g := r.Guide; g.Enabled {
		if !inRange(g.Days, 0, MaxGuideDays) {
			add("guide days %d outside 0..%d", g.Days, MaxGuideDays)
		}
		if !inRange(g.GroupSize, 0, MaxGroupSize) {
			add("guide group size %d outside 0..%d", g.GroupSize, MaxGroupSize)
		}
	}

	if f := r.FastTrack; f.Enabled {
		if f.Type != "" && !f.Type.valid() {
			add("unknown fast-track type %q", f.Type)
		}
		if !inRange(f.Persons, 0, MaxPersons) {
			add("fast-track persons %d outside 0..%d", f.Persons, MaxPersons)
		}
	}

	if r.Companion.Enabled {
		for i, row := range r.Companion.Rows {
			if row.Hours != "" && !row.Hours.valid() {
				add("companion row %d: unknown hours %q", i, row.Hours)
			}
			if !inRange(row.Count, 0, MaxCompanions) {
				add("companion row %d: count %d outside 0..%d", i, row.Count, MaxCompanions)
			}
			if !blankOrDate(row.Date) {
				add("companion row %d: date %q", i, row.Date)
			}
		}
	}

	return errors.Join(errs...)
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}

func blankOrDate(s string) bool {
	if s == "" {
		return true
	}
	_, ok := parseDate(s)
	return ok
}
