// README: Per-component estimators. Each is a pure function of its selection, the rate tables, and the day classifier.
package pricing

import (
	"errors"
	"fmt"

	"villaquote/internal/modules/calendar"
)

func dayLabel(class calendar.DayClass) string {
	switch class {
	case calendar.Holiday:
		return "Holiday"
	case calendar.Friday:
		return "Friday"
	case calendar.Weekend:
		return "Weekend"
	default:
		return "Weekday"
	}
}

// EstimateVilla prices the nights in [CheckIn, CheckOut) and multiplies by rooms.
// Stays longer than MaxVillaNights are invalid and price at zero.
func EstimateVilla(sel VillaSelection, rates VillaRates, c *calendar.Classifier) ComponentResult[VillaSelection] {
	res := ComponentResult[VillaSelection]{Raw: sel}
	if !sel.Enabled || sel.Rooms < 1 || sel.Rooms > MaxRooms {
		return res
	}
	in, ok := parseDate(sel.CheckIn)
	if !ok {
		return res
	}
	out, ok := parseDate(sel.CheckOut)
	if !ok || !out.After(in) || nights(in, out) > MaxVillaNights {
		return res
	}

	var nightly int64
	items := make([]LineItem, 0, 8)
	for d, n := in, 0; d.Before(out); d, n = d.AddDate(0, 0, 1), n+1 {
		class := c.Classify(d)
		rate := rates.For(class)
		nightly += rate
		items = append(items, LineItem{
			Label: fmt.Sprintf("%s (%s)", d.Format("01/02"), dayLabel(class)),
			Price: rate,
			Row:   n,
			Date:  formatDate(d),
			Tag:   string(class),
		})
	}

	res.Price = nightly * int64(sel.Rooms)
	res.Items = items
	res.Details = make([]string, 0, len(items)+1)
	for _, it := range items {
		res.Details = append(res.Details, fmt.Sprintf("%s $%d", it.Label, it.Price))
	}
	if sel.Rooms > 1 {
		res.Details = append(res.Details, fmt.Sprintf("x %d rooms", sel.Rooms))
	}
	return res
}

// EstimateVehicle sums every complete row. Rows without type or route are skipped.
// Missing table entries are returned as an error; the row is excluded.
func EstimateVehicle(sel VehicleSelection, t Tables) (ComponentResult[VehicleSelection], error) {
	res := ComponentResult[VehicleSelection]{Raw: sel}
	if !sel.Enabled {
		return res, nil
	}
	var errs []error
	for i, row := range sel.Rows {
		if !row.Type.valid() || !row.Route.valid() {
			continue
		}
		price, err := t.VehicleRate(row.Type, row.Route)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res.Price += price
		label := fmt.Sprintf("%s %s %s", shortDate(row.Date), row.Type, row.Route)
		res.Items = append(res.Items, LineItem{Label: label, Price: price, Row: i, Date: row.Date})
		res.Details = append(res.Details, fmt.Sprintf("%s $%d", label, price))
	}
	return res, errors.Join(errs...)
}

// EstimateGolf charges the weekend rate on Saturdays, Sundays and holidays.
// The caddy tip is a display hint and never priced.
func EstimateGolf(sel GolfSelection, t Tables, c *calendar.Classifier) (ComponentResult[GolfSelection], error) {
	res := ComponentResult[GolfSelection]{Raw: sel}
	if !sel.Enabled {
		return res, nil
	}
	var errs []error
	for i, row := range sel.Rows {
		if !row.Course.valid() || row.Players < 1 || row.Players > MaxPlayers {
			continue
		}
		d, ok := parseDate(row.Date)
		if !ok {
			continue
		}
		rate, err := t.GolfRate(row.Course)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		perPlayer, class := rate.Weekday, "weekday"
		switch c.Classify(d) {
		case calendar.Weekend, calendar.Holiday:
			perPlayer, class = rate.Weekend, "weekend"
		}
		price := perPlayer * int64(row.Players)
		res.Price += price
		label := fmt.Sprintf("%s %s %s x %d", d.Format("01/02"), row.Course, class, row.Players)
		res.Items = append(res.Items, LineItem{Label: label, Price: price, Row: i, Date: row.Date, Tag: class})
		res.Details = append(res.Details, fmt.Sprintf("%s $%d (%s)", label, price, rate.CaddyTip))
	}
	return res, errors.Join(errs...)
}

func EstimateGuide(sel GuideSelection, t Tables) ComponentResult[GuideSelection] {
	res := ComponentResult[GuideSelection]{Raw: sel}
	if !sel.Enabled || sel.Days < 0 || sel.Days > MaxGuideDays || sel.GroupSize < 1 || sel.GroupSize > MaxGroupSize {
		return res
	}
	extra := max(0, sel.GroupSize-GuideFreeGroupSize)
	daily := t.GuideBase + t.GuideExtra*int64(extra)
	res.Price = daily * int64(sel.Days)
	if sel.Days > 0 {
		res.Items = []LineItem{{Label: fmt.Sprintf("guide %d persons", sel.GroupSize), Price: daily}}
		res.Details = []string{fmt.Sprintf("%d days x $%d (%d persons)", sel.Days, daily, sel.GroupSize)}
	}
	return res
}

func EstimateFastTrack(sel FastTrackSelection, t Tables) ComponentResult[FastTrackSelection] {
	res := ComponentResult[FastTrackSelection]{Raw: sel}
	if !sel.Enabled || !sel.Type.valid() || sel.Persons < 0 || sel.Persons > MaxPersons {
		return res
	}
	legs := int64(1)
	if sel.Type == FastTrackRoundTrip {
		legs = 2
	}
	res.Price = t.FastTrackPerson * int64(sel.Persons) * legs
	if sel.Persons > 0 {
		res.Items = []LineItem{{Label: string(sel.Type), Price: res.Price}}
		res.Details = []string{fmt.Sprintf("%s %d persons x $%d", sel.Type, sel.Persons, t.FastTrackPerson)}
	}
	return res
}

// EstimateCompanion defaults an unset bracket to 12 hours.
func EstimateCompanion(sel CompanionSelection, t Tables) (ComponentResult[CompanionSelection], error) {
	res := ComponentResult[CompanionSelection]{Raw: sel}
	if !sel.Enabled {
		return res, nil
	}
	var errs []error
	for i, row := range sel.Rows {
		hours := row.Hours
		if hours == "" {
			hours = CompanionHours12
		}
		if row.Count < 1 || row.Count > MaxCompanions || !hours.valid() {
			continue
		}
		rate, err := t.CompanionRate(hours)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		price := rate * int64(row.Count)
		res.Price += price
		label := fmt.Sprintf("%s %sh x %d", shortDate(row.Date), hours, row.Count)
		res.Items = append(res.Items, LineItem{Label: label, Price: price, Row: i, Date: row.Date, Tag: string(hours)})
		res.Details = append(res.Details, fmt.Sprintf("%s $%d", label, price))
	}
	return res, errors.Join(errs...)
}

func shortDate(s string) string {
	if d, ok := parseDate(s); ok {
		return d.Format("01/02")
	}
	return "-"
}
