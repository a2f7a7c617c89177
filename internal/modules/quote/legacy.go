// README: Best-effort parser for quotes saved before structured persistence. Only used when selections are absent.
package quote

import (
	"strconv"
	"strings"
	"time"

	"villaquote/internal/modules/calendar"
	"villaquote/internal/modules/labels"
	"villaquote/internal/modules/pricing"
)

// legacyLine is one description line split into tokens, separators removed.
type legacyLine []string

func splitLines(desc string) []legacyLine {
	if strings.TrimSpace(desc) == "" {
		return nil
	}
	parts := strings.Split(desc, strings.TrimSpace(DescriptionDelimiter))
	out := make([]legacyLine, 0, len(parts))
	for _, p := range parts {
		var toks legacyLine
		for _, f := range strings.Fields(p) {
			switch f {
			case "·", "~":
				continue
			}
			toks = append(toks, f)
		}
		if len(toks) > 0 {
			out = append(out, toks)
		}
	}
	return out
}

// monthDay returns the first MM/DD token.
func (ln legacyLine) monthDay() (time.Month, int, bool) {
	for _, tok := range ln {
		m, d, ok := strings.Cut(tok, "/")
		if !ok {
			continue
		}
		month, err1 := strconv.Atoi(m)
		day, err2 := strconv.Atoi(d)
		if err1 != nil || err2 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		return time.Month(month), day, true
	}
	return 0, 0, false
}

func (ln legacyLine) fullDates() []time.Time {
	var out []time.Time
	for _, tok := range ln {
		if t, err := time.Parse(calendar.DateLayout, tok); err == nil {
			out = append(out, t)
		}
	}
	return out
}

// countOf finds "<int> <unit phrase>" and returns the int.
func (ln legacyLine) countOf(unit string) (int, bool) {
	phrase := strings.Fields(unit)
	if len(phrase) == 0 {
		return 0, false
	}
	for i := 0; i+len(phrase) < len(ln); i++ {
		n, err := strconv.Atoi(ln[i])
		if err != nil {
			continue
		}
		match := true
		for j, w := range phrase {
			if ln[i+1+j] != w {
				match = false
				break
			}
		}
		if match {
			return n, true
		}
	}
	return 0, false
}

func (ln legacyLine) contains(phrase string) bool {
	return strings.Contains(" "+strings.Join(ln, " ")+" ", " "+phrase+" ")
}

func (ln legacyLine) has(word string) bool {
	for _, tok := range ln {
		if tok == word {
			return true
		}
	}
	return false
}

// yearAnchor resolves month/day tokens; months before the anchor month roll into the next year.
type yearAnchor struct {
	year  int
	month time.Month
}

func anchorAt(t time.Time) yearAnchor {
	return yearAnchor{year: t.Year(), month: t.Month()}
}

func (a yearAnchor) resolve(m time.Month, d int) (time.Time, bool) {
	y := a.year
	if m < a.month {
		y++
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Month() != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func parseLegacy(components map[pricing.Component]StoredComponent, all []labels.Labels, createdAt time.Time) (pricing.Request, int) {
	var req pricing.Request
	parsed := 0
	anchor := anchorAt(createdAt)
	lines := func(c pricing.Component) []legacyLine { return splitLines(components[c].Description) }

	if v, ok := legacyVilla(lines(pricing.ComponentVilla), all, anchor); ok {
		req.Villa = v
		parsed++
		if in, err := time.Parse(calendar.DateLayout, v.CheckIn); err == nil {
			anchor = anchorAt(in)
		}
	}
	if rows := legacyVehicles(lines(pricing.ComponentVehicle), anchor); len(rows) > 0 {
		req.Vehicle = pricing.VehicleSelection{Enabled: true, Rows: rows}
		parsed++
	}
	if rows := legacyGolf(lines(pricing.ComponentGolf), all, anchor); len(rows) > 0 {
		req.Golf = pricing.GolfSelection{Enabled: true, Rows: rows}
		parsed++
	}
	if g, ok := legacyGuide(lines(pricing.ComponentGuide), all); ok {
		req.Guide = g
		parsed++
	}
	if f, ok := legacyFastTrack(lines(pricing.ComponentFastTrack), all); ok {
		req.FastTrack = f
		parsed++
	}
	if rows := legacyCompanions(lines(pricing.ComponentCompanion), all, anchor); len(rows) > 0 {
		req.Companion = pricing.CompanionSelection{Enabled: true, Rows: rows}
		parsed++
	}
	return req, parsed
}

// legacyVilla reads the "in ~ out · N nights · R rooms" header, or failing
// that spans the per-night month/day lines.
func legacyVilla(lines []legacyLine, all []labels.Labels, anchor yearAnchor) (pricing.VillaSelection, bool) {
	if len(lines) == 0 {
		return pricing.VillaSelection{}, false
	}
	rooms := 1
	for _, l := range all {
		if n, ok := lines[0].countOf(l.Unit(labels.Rooms)); ok {
			rooms = n
			break
		}
	}
	if dates := lines[0].fullDates(); len(dates) >= 2 {
		v, err := pricing.NewVillaSelection(dates[0], dates[1], rooms, "")
		return v, err == nil
	}

	var first, last time.Time
	for _, ln := range lines {
		m, d, ok := ln.monthDay()
		if !ok {
			continue
		}
		t, ok := anchor.resolve(m, d)
		if !ok {
			continue
		}
		if first.IsZero() {
			first = t
		}
		last = t
	}
	if first.IsZero() {
		return pricing.VillaSelection{}, false
	}
	v, err := pricing.NewVillaSelection(first, last.AddDate(0, 0, 1), rooms, "")
	return v, err == nil
}

func legacyVehicles(lines []legacyLine, anchor yearAnchor) []pricing.VehicleRow {
	var rows []pricing.VehicleRow
	for _, ln := range lines {
		var typ pricing.VehicleType
		var route pricing.Route
		for _, t := range pricing.VehicleTypes {
			if ln.has(string(t)) {
				typ = t
			}
		}
		for _, r := range pricing.Routes {
			if ln.has(string(r)) {
				route = r
			}
		}
		date, ok := lineDate(ln, anchor)
		if !ok {
			continue
		}
		if row, err := pricing.NewVehicleRow(date, typ, route); err == nil {
			rows = append(rows, row)
		}
	}
	return rows
}

func legacyGolf(lines []legacyLine, all []labels.Labels, anchor yearAnchor) []pricing.GolfRow {
	var rows []pricing.GolfRow
	for _, ln := range lines {
		var course pricing.Course
		for _, c := range pricing.Courses {
			if ln.has(string(c)) {
				course = c
			}
		}
		date, ok := lineDate(ln, anchor)
		if !ok {
			continue
		}
		for _, l := range all {
			players, ok := ln.countOf(l.Unit(labels.Players))
			if !ok {
				continue
			}
			if row, err := pricing.NewGolfRow(date, course, players); err == nil {
				rows = append(rows, row)
				break
			}
		}
	}
	return rows
}

func legacyGuide(lines []legacyLine, all []labels.Labels) (pricing.GuideSelection, bool) {
	if len(lines) == 0 {
		return pricing.GuideSelection{}, false
	}
	for _, l := range all {
		days, ok1 := lines[0].countOf(l.Unit(labels.Days))
		group, ok2 := lines[0].countOf(l.Unit(labels.Persons))
		if !ok1 || !ok2 {
			continue
		}
		if g, err := pricing.NewGuideSelection(days, group); err == nil {
			return g, true
		}
	}
	return pricing.GuideSelection{}, false
}

func legacyFastTrack(lines []legacyLine, all []labels.Labels) (pricing.FastTrackSelection, bool) {
	if len(lines) == 0 {
		return pricing.FastTrackSelection{}, false
	}
	ln := lines[0]
	for _, l := range all {
		var typ pricing.FastTrackType
		switch {
		case ln.contains(l.FastTrackType(string(pricing.FastTrackRoundTrip))):
			typ = pricing.FastTrackRoundTrip
		case ln.contains(l.FastTrackType(string(pricing.FastTrackOneWay))):
			typ = pricing.FastTrackOneWay
		default:
			continue
		}
		persons, ok := ln.countOf(l.Unit(labels.Persons))
		if !ok {
			continue
		}
		if f, err := pricing.NewFastTrackSelection(typ, persons); err == nil {
			return f, true
		}
	}
	return pricing.FastTrackSelection{}, false
}

func legacyCompanions(lines []legacyLine, all []labels.Labels, anchor yearAnchor) []pricing.CompanionRow {
	var rows []pricing.CompanionRow
	for _, ln := range lines {
		date, ok := lineDate(ln, anchor)
		if !ok {
			continue
		}
		for _, l := range all {
			count, ok := ln.countOf(l.Unit(labels.Companions))
			if !ok {
				continue
			}
			hours := pricing.CompanionHours12
			if h, ok := ln.countOf(l.Unit(labels.Hours)); ok {
				hours = pricing.CompanionHours(strconv.Itoa(h))
			}
			if row, err := pricing.NewCompanionRow(date, count, hours); err == nil {
				rows = append(rows, row)
				break
			}
		}
	}
	return rows
}

func lineDate(ln legacyLine, anchor yearAnchor) (time.Time, bool) {
	m, d, ok := ln.monthDay()
	if !ok {
		return time.Time{}, false
	}
	return anchor.resolve(m, d)
}
