// README: Breakdown serializer/deserializer. Structured selections are authoritative; descriptions are regenerated display text.
package quote

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"villaquote/internal/modules/calendar"
	"villaquote/internal/modules/labels"
	"villaquote/internal/modules/pricing"
)

var ErrUndecodable = errors.New("stored breakdown has neither selections nor parsable descriptions")

type Codec struct {
	labels *labels.Bundle
}

func NewCodec(b *labels.Bundle) *Codec {
	return &Codec{labels: b}
}

// Encode always keeps the selections next to the rendered descriptions.
func (c *Codec) Encode(b pricing.Breakdown, lang string) StoredBreakdown {
	req := b.Request()
	l := c.labels.For(lang)
	return StoredBreakdown{
		Version:    BreakdownVersion,
		Lang:       l.Lang,
		Selections: &req,
		Components: c.Render(b, l.Lang),
		Total:      b.Total,
	}
}

// Render builds the per-component description cache for lang.
func (c *Codec) Render(b pricing.Breakdown, lang string) map[pricing.Component]StoredComponent {
	l := c.labels.For(lang)
	out := make(map[pricing.Component]StoredComponent, len(pricing.Components))
	for _, comp := range pricing.Components {
		lines := describe(b, comp, l)
		if len(lines) == 0 && b.Price(comp) == 0 {
			continue
		}
		out[comp] = StoredComponent{
			Price:       b.Price(comp),
			Description: strings.Join(lines, DescriptionDelimiter),
		}
	}
	return out
}

// Decode recovers the selection set. createdAt anchors the year of legacy
// month/day tokens when no villa stay is present.
func (c *Codec) Decode(sb StoredBreakdown, createdAt time.Time) (pricing.Request, Source, error) {
	if sb.Selections != nil {
		return *sb.Selections, SourceStructured, nil
	}
	req, parsed := parseLegacy(sb.Components, c.labels.All(), createdAt)
	if parsed == 0 && sb.Total > 0 {
		return pricing.Request{}, SourceLegacy, ErrUndecodable
	}
	return req, SourceLegacy, nil
}

func describe(b pricing.Breakdown, comp pricing.Component, l labels.Labels) []string {
	switch comp {
	case pricing.ComponentVilla:
		return describeVilla(b.Villa, l)
	case pricing.ComponentVehicle:
		lines := make([]string, 0, len(b.Vehicle.Items))
		for _, it := range b.Vehicle.Items {
			row := b.Vehicle.Raw.Rows[it.Row]
			lines = append(lines, fmt.Sprintf("%s %s %s $%d", monthDay(row.Date), row.Type, row.Route, it.Price))
		}
		return lines
	case pricing.ComponentGolf:
		lines := make([]string, 0, len(b.Golf.Items))
		for _, it := range b.Golf.Items {
			row := b.Golf.Raw.Rows[it.Row]
			lines = append(lines, fmt.Sprintf("%s %s %d %s $%d",
				monthDay(row.Date), row.Course, row.Players, l.Unit(labels.Players), it.Price))
		}
		return lines
	case pricing.ComponentGuide:
		g := b.Guide.Raw
		if b.Guide.Price == 0 {
			return nil
		}
		return []string{fmt.Sprintf("%d %s · %d %s $%d",
			g.Days, l.Unit(labels.Days), g.GroupSize, l.Unit(labels.Persons), b.Guide.Price)}
	case pricing.ComponentFastTrack:
		f := b.FastTrack.Raw
		if b.FastTrack.Price == 0 {
			return nil
		}
		return []string{fmt.Sprintf("%s · %d %s $%d",
			l.FastTrackType(string(f.Type)), f.Persons, l.Unit(labels.Persons), b.FastTrack.Price)}
	case pricing.ComponentCompanion:
		lines := make([]string, 0, len(b.Companion.Items))
		for _, it := range b.Companion.Items {
			row := b.Companion.Raw.Rows[it.Row]
			lines = append(lines, fmt.Sprintf("%s %d %s · %s %s $%d",
				monthDay(row.Date), row.Count, l.Unit(labels.Companions), it.Tag, l.Unit(labels.Hours), it.Price))
		}
		return lines
	}
	return nil
}

func describeVilla(r pricing.ComponentResult[pricing.VillaSelection], l labels.Labels) []string {
	if r.Price == 0 {
		return nil
	}
	lines := make([]string, 0, len(r.Items)+1)
	lines = append(lines, fmt.Sprintf("%s ~ %s · %d %s · %d %s",
		r.Raw.CheckIn, r.Raw.CheckOut, len(r.Items), l.Unit(labels.Nights), r.Raw.Rooms, l.Unit(labels.Rooms)))
	for _, it := range r.Items {
		lines = append(lines, fmt.Sprintf("%s %s $%d", monthDay(it.Date), l.DayClass(it.Tag), it.Price))
	}
	return lines
}

func monthDay(date string) string {
	t, err := time.Parse(calendar.DateLayout, date)
	if err != nil {
		return "-"
	}
	return t.Format("01/02")
}
