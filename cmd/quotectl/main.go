// README: Interactive quote editor; edits are priced through the recalculation scheduler and saved quotes can be re-opened.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"villaquote/internal/config"
	"villaquote/internal/infra"
	"villaquote/internal/modules/calendar"
	"villaquote/internal/modules/labels"
	"villaquote/internal/modules/pricing"
	"villaquote/internal/modules/quote"
	"villaquote/internal/modules/recalc"
	"villaquote/internal/modules/villa"
)

func main() {
	offline := flag.Bool("offline", false, "price only; no database or cache")
	verbose := flag.Bool("v", false, "log to stdout")
	lang := flag.String("lang", "", "description language for saved quotes (en, ko, vi)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *lang == "" {
		*lang = cfg.Quote.DefaultLang
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = infra.NewLogger(cfg.Log.Level); err != nil {
			log.Fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		catalog pricing.VillaCatalog
		store   quote.Repository
	)
	if !*offline {
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("%v (use -offline to price without a database)", err)
		}
		defer db.Close()
		rdb := infra.NewRedis(cfg.Redis.Addr)
		defer rdb.Close()
		catalog = villa.NewCache(rdb, villa.NewStore(db), cfg.Villa.CacheTTL, logger)
		store = quote.NewStore(db)
	}

	engine := pricing.NewService(pricing.DefaultTables(), calendar.NewClassifier(calendar.DefaultHolidays()), catalog, logger)
	sched := recalc.New(engine, recalc.WithDelay(cfg.Recalc.Delay), recalc.WithLogger(logger))

	var qs quotes
	if store != nil {
		qs = quote.NewService(store, engine, quote.NewCodec(labels.MustLoad()), logger)
	}

	var mu sync.Mutex
	out := &syncWriter{mu: &mu, w: os.Stdout}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = sched.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		for r := range sched.Results() {
			mu.Lock()
			printBreakdown(os.Stdout, r.Breakdown, r.Settled)
			mu.Unlock()
		}
	}()

	ed := newEditor(sched, qs, out, *lang)
	fmt.Println(`quotectl: type "help" for commands`)
	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			// exec may block on the scheduler; the print lock is taken per
			// write and never held across it.
			done, err := ed.exec(ctx, line)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			}
			if done {
				break loop
			}
		}
	}
	stop()
	wg.Wait()
}

// syncWriter serialises editor output with the results printer.
type syncWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
