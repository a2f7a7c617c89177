// README: Line-oriented quote editor; each edit feeds the recalculation scheduler.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"villaquote/internal/modules/calendar"
	"villaquote/internal/modules/pricing"
	"villaquote/internal/modules/quote"
	"villaquote/internal/types"
)

var errUsage = errors.New("usage")

const helpText = `commands:
  villa <check-in> <check-out> <rooms> [villa-id]
  vehicle <date> <type> <route>
  golf <date> <course> <players>
  guide <days> <group-size>
  fasttrack <oneway|roundtrip> <persons>
  companion <date> <count> [12|22]
  off <component>          disable a component
  new                      start an empty quote
  load <quote-id>          re-open a saved quote
  save <customer name>     save (or re-save a loaded quote)
  list                     recent quotes
  quit`

type scheduler interface {
	Change(component pricing.Component, req pricing.Request) error
	BeginLoad() error
	EndLoad() error
}

type quotes interface {
	Create(ctx context.Context, cmd quote.CreateCommand) (*quote.Quote, error)
	Update(ctx context.Context, cmd quote.UpdateCommand) (*quote.Quote, error)
	Load(ctx context.Context, id types.ID) (*quote.LoadResult, error)
	List(ctx context.Context, limit int) ([]*quote.Quote, error)
}

type editor struct {
	req      pricing.Request
	sched    scheduler
	quotes   quotes
	out      io.Writer
	lang     string
	loadedID types.ID
}

func newEditor(sched scheduler, q quotes, out io.Writer, lang string) *editor {
	return &editor{sched: sched, quotes: q, out: out, lang: lang}
}

// exec runs one command line. done is true on quit.
func (e *editor) exec(ctx context.Context, line string) (done bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(e.out, helpText)
		return false, nil
	case "villa":
		return false, e.villa(args)
	case "vehicle":
		return false, e.vehicle(args)
	case "golf":
		return false, e.golf(args)
	case "guide":
		return false, e.guide(args)
	case "fasttrack":
		return false, e.fastTrack(args)
	case "companion":
		return false, e.companion(args)
	case "off":
		return false, e.off(args)
	case "new":
		e.req = pricing.Request{}
		e.loadedID = ""
		return false, e.sched.Change(pricing.ComponentVilla, e.req)
	case "load":
		return false, e.load(ctx, args)
	case "save":
		return false, e.save(ctx, args)
	case "list":
		return false, e.list(ctx)
	}
	return false, fmt.Errorf("unknown command %q (try help)", cmd)
}

func (e *editor) villa(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: villa <check-in> <check-out> <rooms> [villa-id]", errUsage)
	}
	in, err := parseDay(args[0])
	if err != nil {
		return err
	}
	out, err := parseDay(args[1])
	if err != nil {
		return err
	}
	rooms, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("rooms: %w", err)
	}
	villaID := ""
	if len(args) > 3 {
		villaID = args[3]
	}
	sel, err := pricing.NewVillaSelection(in, out, rooms, villaID)
	if err != nil {
		return err
	}
	e.req.Villa = sel
	return e.sched.Change(pricing.ComponentVilla, e.req)
}

func (e *editor) vehicle(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: vehicle <date> <type> <route>", errUsage)
	}
	date, err := parseDay(args[0])
	if err != nil {
		return err
	}
	row, err := pricing.NewVehicleRow(date, pricing.VehicleType(args[1]), pricing.Route(args[2]))
	if err != nil {
		return err
	}
	e.req.Vehicle.Enabled = true
	e.req.Vehicle.Rows = append(e.req.Vehicle.Rows, row)
	return e.sched.Change(pricing.ComponentVehicle, e.req)
}

func (e *editor) golf(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: golf <date> <course> <players>", errUsage)
	}
	date, err := parseDay(args[0])
	if err != nil {
		return err
	}
	players, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("players: %w", err)
	}
	row, err := pricing.NewGolfRow(date, pricing.Course(args[1]), players)
	if err != nil {
		return err
	}
	e.req.Golf.Enabled = true
	e.req.Golf.Rows = append(e.req.Golf.Rows, row)
	return e.sched.Change(pricing.ComponentGolf, e.req)
}

func (e *editor) guide(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: guide <days> <group-size>", errUsage)
	}
	days, err1 := strconv.Atoi(args[0])
	group, err2 := strconv.Atoi(args[1])
	if err := errors.Join(err1, err2); err != nil {
		return err
	}
	sel, err := pricing.NewGuideSelection(days, group)
	if err != nil {
		return err
	}
	e.req.Guide = sel
	return e.sched.Change(pricing.ComponentGuide, e.req)
}

func (e *editor) fastTrack(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: fasttrack <oneway|roundtrip> <persons>", errUsage)
	}
	persons, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("persons: %w", err)
	}
	sel, err := pricing.NewFastTrackSelection(pricing.FastTrackType(args[0]), persons)
	if err != nil {
		return err
	}
	e.req.FastTrack = sel
	return e.sched.Change(pricing.ComponentFastTrack, e.req)
}

func (e *editor) companion(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: companion <date> <count> [12|22]", errUsage)
	}
	date, err := parseDay(args[0])
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	var hours pricing.CompanionHours
	if len(args) == 3 {
		hours = pricing.CompanionHours(args[2])
	}
	row, err := pricing.NewCompanionRow(date, count, hours)
	if err != nil {
		return err
	}
	e.req.Companion.Enabled = true
	e.req.Companion.Rows = append(e.req.Companion.Rows, row)
	return e.sched.Change(pricing.ComponentCompanion, e.req)
}

func (e *editor) off(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: off <component>", errUsage)
	}
	c := pricing.Component(args[0])
	switch c {
	case pricing.ComponentVilla:
		e.req.Villa = pricing.VillaSelection{}
	case pricing.ComponentVehicle:
		e.req.Vehicle = pricing.VehicleSelection{}
	case pricing.ComponentGolf:
		e.req.Golf = pricing.GolfSelection{}
	case pricing.ComponentGuide:
		e.req.Guide = pricing.GuideSelection{}
	case pricing.ComponentFastTrack:
		e.req.FastTrack = pricing.FastTrackSelection{}
	case pricing.ComponentCompanion:
		e.req.Companion = pricing.CompanionSelection{}
	default:
		return fmt.Errorf("unknown component %q", args[0])
	}
	return e.sched.Change(c, e.req)
}

// load applies a saved quote one component at a time while the scheduler holds
// calculations back, then lets it settle on the restored selections.
func (e *editor) load(ctx context.Context, args []string) error {
	if e.quotes == nil {
		return errors.New("no quote store configured")
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: load <quote-id>", errUsage)
	}
	res, err := e.quotes.Load(ctx, types.ID(args[0]))
	if err != nil {
		return err
	}
	if err := e.sched.BeginLoad(); err != nil {
		return err
	}
	e.req = pricing.Request{}
	for _, c := range pricing.Components {
		setComponent(&e.req, res.Selections, c)
		if err := e.sched.Change(c, e.req); err != nil {
			return err
		}
	}
	if err := e.sched.EndLoad(); err != nil {
		return err
	}
	e.loadedID = res.Quote.ID
	if res.Quote.Breakdown.Lang != "" {
		e.lang = res.Quote.Breakdown.Lang
	}
	fmt.Fprintf(e.out, "loaded %s for %s (stored total $%d, source %s)\n",
		res.Quote.ID, res.Quote.CustomerName, res.DisplayTotal(), res.Source)
	if res.TotalMismatch {
		fmt.Fprintf(e.out, "note: current rates give $%d; re-save to update the stored total\n", res.Recomputed.Total)
	}
	return nil
}

func (e *editor) save(ctx context.Context, args []string) error {
	if e.quotes == nil {
		return errors.New("no quote store configured")
	}
	var (
		q   *quote.Quote
		err error
	)
	if e.loadedID != "" {
		q, err = e.quotes.Update(ctx, quote.UpdateCommand{ID: e.loadedID, Selections: e.req, Lang: e.lang})
	} else {
		q, err = e.quotes.Create(ctx, quote.CreateCommand{
			CustomerName: strings.Join(args, " "),
			Selections:   e.req,
			Lang:         e.lang,
		})
	}
	if err != nil {
		return err
	}
	e.loadedID = q.ID
	fmt.Fprintf(e.out, "saved %s total $%d\n", q.ID, q.TotalPrice)
	return nil
}

func (e *editor) list(ctx context.Context) error {
	if e.quotes == nil {
		return errors.New("no quote store configured")
	}
	qs, err := e.quotes.List(ctx, 20)
	if err != nil {
		return err
	}
	for _, q := range qs {
		fmt.Fprintf(e.out, "%s  %-20s $%-8d %s\n", q.ID, q.CustomerName, q.TotalPrice, q.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func setComponent(dst *pricing.Request, src pricing.Request, c pricing.Component) {
	switch c {
	case pricing.ComponentVilla:
		dst.Villa = src.Villa
	case pricing.ComponentVehicle:
		dst.Vehicle = src.Vehicle
	case pricing.ComponentGolf:
		dst.Golf = src.Golf
	case pricing.ComponentGuide:
		dst.Guide = src.Guide
	case pricing.ComponentFastTrack:
		dst.FastTrack = src.FastTrack
	case pricing.ComponentCompanion:
		dst.Companion = src.Companion
	}
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(calendar.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want yyyy-mm-dd", s)
	}
	return t, nil
}

func printBreakdown(w io.Writer, b pricing.Breakdown, settled bool) {
	for _, c := range pricing.Components {
		if b.Price(c) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-10s $%d\n", c, b.Price(c))
		for _, d := range b.Details(c) {
			fmt.Fprintf(w, "      %s\n", d)
		}
	}
	suffix := ""
	if settled {
		suffix = " (loaded)"
	}
	fmt.Fprintf(w, "  total      $%d%s\n", b.Total, suffix)
}
