// README: Bench cases for the quote API; reference prices, save/load/re-save flow, DB/Redis checks, and throughput.
package main

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "os"
    "regexp"
    "strings"
    "sync"
    "time"

    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"
)

type Runner struct {
    cfg   Config
    httpc *http.Client
    db    *pgxpool.Pool
    redis *redis.Client
}

type Result struct {
    Name    string
    Status  string
    Latency time.Duration
    Note    string
}

type TestCase struct {
    Name  string
    Focus string
    Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
    return &Runner{
        cfg:   cfg,
        httpc: &http.Client{Timeout: 10 * time.Second},
    }
}

func (r *Runner) RunAll(ctx context.Context) []Result {
    if r.cfg.DSN != "" {
        if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
            r.db = db
        }
    }
    if r.cfg.RedisAddr != "" {
        r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
    }

    tests := r.cases()
    results := make([]Result, 0, len(tests))
    only := strings.ToLower(r.cfg.Only)

    for _, tc := range tests {
        if only != "" && !strings.Contains(strings.ToLower(tc.Name), only) {
            continue
        }
        res := tc.Run(ctx, r)
        res.Name = tc.Name
        results = append(results, res)
        fmt.Printf("%-7s %s", res.Status, tc.Name)
        if res.Latency > 0 {
            fmt.Printf(" (%s)", res.Latency)
        }
        if res.Note != "" {
            fmt.Printf(" - %s", res.Note)
        }
        fmt.Println()
    }

    if r.db != nil {
        r.db.Close()
    }
    if r.redis != nil {
        _ = r.redis.Close()
    }

    return results
}

func (r *Runner) cases() []TestCase {
    base := r.cfg.BaseURL
    return []TestCase{
        {
            Name:  "Env: Postgres connect",
            Focus: "DB reachable",
            Run: func(ctx context.Context, r *Runner) Result {
                if r.db == nil {
                    return Result{Status: "FAIL", Note: "db not configured"}
                }
                ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
                defer cancel()
                if err := r.db.Ping(ctx); err != nil {
                    return Result{Status: "FAIL", Note: err.Error()}
                }
                return Result{Status: "PASS"}
            },
        },
        {
            Name:  "Env: Redis connect",
            Focus: "Redis reachable",
            Run: func(ctx context.Context, r *Runner) Result {
                if r.redis == nil {
                    return Result{Status: "FAIL", Note: "redis not configured"}
                }
                ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
                defer cancel()
                if err := r.redis.Ping(ctx).Err(); err != nil {
                    return Result{Status: "FAIL", Note: err.Error()}
                }
                return Result{Status: "PASS"}
            },
        },
        {
            Name:  "Migration: apply (optional)",
            Focus: "apply migration SQL when asked",
            Run: func(ctx context.Context, r *Runner) Result {
                if !r.cfg.ApplyMigration {
                    return Result{Status: "SKIP", Note: "apply-migration=false"}
                }
                if r.db == nil {
                    return Result{Status: "FAIL", Note: "db not configured"}
                }
                sql, err := os.ReadFile(r.cfg.MigrationPath)
                if err != nil {
                    return Result{Status: "FAIL", Note: err.Error()}
                }
                for _, s := range splitSQL(string(sql)) {
                    if _, err := r.db.Exec(ctx, s); err != nil {
                        return Result{Status: "FAIL", Note: err.Error()}
                    }
                }
                return Result{Status: "PASS"}
            },
        },
        {
            Name:  "Migration: tables exist",
            Focus: "tables from the migration file exist",
            Run: func(ctx context.Context, r *Runner) Result {
                if r.db == nil {
                    return Result{Status: "FAIL", Note: "db not configured"}
                }
                tables, err := extractTables(r.cfg.MigrationPath)
                if err != nil {
                    return Result{Status: "FAIL", Note: err.Error()}
                }
                for _, t := range tables {
                    var exists bool
                    err := r.db.QueryRow(ctx,
                        "SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
                        t,
                    ).Scan(&exists)
                    if err != nil {
                        return Result{Status: "FAIL", Note: err.Error()}
                    }
                    if !exists {
                        return Result{Status: "FAIL", Note: "missing table: " + t}
                    }
                }
                return Result{Status: "PASS"}
            },
        },
        {
            Name:  "API: health",
            Focus: "API answers",
            Run: func(ctx context.Context, r *Runner) Result {
                start := time.Now()
                resp, err := r.httpc.Get(base + "/health")
                if err != nil {
                    return Result{Status: "FAIL", Note: err.Error()}
                }
                _ = resp.Body.Close()
                if resp.StatusCode != http.StatusOK {
                    return Result{Status: "FAIL", Note: fmt.Sprintf("status=%d", resp.StatusCode)}
                }
                return Result{Status: "PASS", Latency: time.Since(start)}
            },
        },

        // Reference prices from the published rate card.
        calcCase(base, "Pricing: villa Mon-Thu weekday nights", map[string]any{
            "villa": map[string]any{"enabled": true, "check_in": "2025-03-03", "check_out": "2025-03-06", "rooms": 1},
        }, 1050),
        calcCase(base, "Pricing: villa Friday + Saturday", map[string]any{
            "villa": map[string]any{"enabled": true, "check_in": "2025-03-07", "check_out": "2025-03-09", "rooms": 1},
        }, 880),
        calcCase(base, "Pricing: villa holiday override", map[string]any{
            "villa": map[string]any{"enabled": true, "check_in": "2025-01-01", "check_out": "2025-01-02", "rooms": 1},
        }, 550),
        calcCase(base, "Pricing: vehicle 7_seater city", map[string]any{
            "vehicle": map[string]any{"enabled": true, "rows": []any{
                map[string]any{"date": "2025-03-03", "vehicle_type": "7_seater", "route": "city"},
            }},
        }, 100),
        calcCase(base, "Pricing: golf paradise weekend", map[string]any{
            "golf": map[string]any{"enabled": true, "rows": []any{
                map[string]any{"date": "2025-03-08", "course": "paradise", "players": 2},
            }},
        }, 220),
        calcCase(base, "Pricing: golf paradise weekday", map[string]any{
            "golf": map[string]any{"enabled": true, "rows": []any{
                map[string]any{"date": "2025-03-05", "course": "paradise", "players": 2},
            }},
        }, 180),
        calcCase(base, "Pricing: fast-track roundtrip", map[string]any{
            "fast_track": map[string]any{"enabled": true, "type": "roundtrip", "persons": 3},
        }, 150),
        calcCase(base, "Pricing: fast-track oneway", map[string]any{
            "fast_track": map[string]any{"enabled": true, "type": "oneway", "persons": 3},
        }, 75),
        calcCase(base, "Pricing: companion 12h", map[string]any{
            "companion": map[string]any{"enabled": true, "rows": []any{
                map[string]any{"date": "2025-03-05", "count": 2, "hours": "12"},
            }},
        }, 440),
        calcCase(base, "Pricing: companion 22h", map[string]any{
            "companion": map[string]any{"enabled": true, "rows": []any{
                map[string]any{"date": "2025-03-05", "count": 2, "hours": "22"},
            }},
        }, 760),
        calcCase(base, "Pricing: invalid villa range prices at zero", map[string]any{
            "villa": map[string]any{"enabled": true, "check_in": "2025-03-06", "check_out": "2025-03-06", "rooms": 1},
        }, 0),

        // Quote flow
        {
            Name:  "Quote: save, load, re-save, delete",
            Focus: "round trip through persistence",
            Run: func(ctx context.Context, r *Runner) Result {
                return quoteFlow(ctx, r, base)
            },
        },
        httpCase("Quote: save without customer -> 400", http.MethodPost, base+"/api/quotes", map[string]any{
            "selections": map[string]any{},
        }, []int{400}),
        httpCase("Quote: load unknown -> 404", http.MethodGet, base+"/api/quotes/00000000-0000-0000-0000-000000000000/load", nil, []int{404}),
        httpCase("Quote: malformed id -> 400", http.MethodGet, base+"/api/quotes/abc", nil, []int{400}),
        httpCase("Quote: unknown vehicle type -> 400", http.MethodPost, base+"/api/quotes/calculate", map[string]any{
            "selections": map[string]any{"vehicle": map[string]any{"enabled": true, "rows": []any{
                map[string]any{"date": "2025-03-03", "vehicle_type": "tuktuk", "route": "city"},
            }}},
        }, []int{400}),
        httpCase("Quote: rooms over bound -> 400", http.MethodPost, base+"/api/quotes/calculate", map[string]any{
            "selections": map[string]any{"villa": map[string]any{"enabled": true, "check_in": "2025-03-03", "check_out": "2025-03-06", "rooms": 51}},
        }, []int{400}),

        // Exchange
        {
            Name:  "Exchange: push rates and convert",
            Focus: "display conversion leaves the USD total alone",
            Run: func(ctx context.Context, r *Runner) Result {
                return exchangeFlow(ctx, r, base)
            },
        },

        manualCase("Villa: cache invalidated on rate change", "PUT /api/villas/:id then check villa:<id>:rates is gone from Redis"),
        manualCase("Error: DB down -> 500", "stop Postgres and watch /api/quotes"),
        manualCase("Error: Redis down -> villa rates fall back to store", "stop Redis and price a villa with an id"),

        // Concurrency
        {
            Name:  "Concurrency: parallel re-saves of one quote",
            Focus: "every re-save succeeds and the last write wins",
            Run: func(ctx context.Context, r *Runner) Result {
                return concurrentResave(ctx, r, base)
            },
        },

        // Performance
        {
            Name:  "Perf: calculate throughput",
            Focus: "pure pricing under load",
            Run: func(ctx context.Context, r *Runner) Result {
                return perfLoad(ctx, r, base+"/api/quotes/calculate", map[string]any{
                    "selections": fullSelections(),
                })
            },
        },
    }
}

func fullSelections() map[string]any {
    return map[string]any{
        "villa":      map[string]any{"enabled": true, "check_in": "2025-03-06", "check_out": "2025-03-10", "rooms": 2},
        "guide":      map[string]any{"enabled": true, "days": 3, "group_size": 6},
        "fast_track": map[string]any{"enabled": true, "type": "roundtrip", "persons": 3},
        "golf": map[string]any{"enabled": true, "rows": []any{
            map[string]any{"date": "2025-03-07", "course": "hocham", "players": 4},
        }},
    }
}

// doJSON sends body and decodes the response into out when out is non-nil.
func doJSON(ctx context.Context, r *Runner, method, url string, body, out any, header ...string) (int, time.Duration, error) {
    var reader io.Reader
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil {
            return 0, 0, err
        }
        reader = bytes.NewReader(b)
    }
    req, err := http.NewRequestWithContext(ctx, method, url, reader)
    if err != nil {
        return 0, 0, err
    }
    req.Header.Set("Content-Type", "application/json")
    for i := 0; i+1 < len(header); i += 2 {
        req.Header.Set(header[i], header[i+1])
    }
    start := time.Now()
    resp, err := r.httpc.Do(req)
    if err != nil {
        return 0, 0, err
    }
    defer resp.Body.Close()
    latency := time.Since(start)
    if out != nil && resp.StatusCode < 300 {
        if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
            return resp.StatusCode, latency, err
        }
        return resp.StatusCode, latency, nil
    }
    _, _ = io.Copy(io.Discard, resp.Body)
    return resp.StatusCode, latency, nil
}

type moneyResp struct {
    Amount int64 `json:"amount"`
}

func calcCase(base, name string, selections map[string]any, want int64) TestCase {
    return TestCase{
        Name:  name,
        Focus: "POST /api/quotes/calculate",
        Run: func(ctx context.Context, r *Runner) Result {
            var out struct {
                Total moneyResp `json:"total"`
            }
            status, latency, err := doJSON(ctx, r, http.MethodPost, base+"/api/quotes/calculate", map[string]any{"selections": selections}, &out)
            if err != nil {
                return Result{Status: "FAIL", Note: err.Error()}
            }
            if status != http.StatusOK {
                return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
            }
            if out.Total.Amount != want {
                return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("total=%d want=%d", out.Total.Amount, want)}
            }
            return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("total=%d", out.Total.Amount)}
        },
    }
}

func httpCase(name, method, url string, body any, okStatuses []int) TestCase {
    return TestCase{
        Name:  name,
        Focus: "HTTP API",
        Run: func(ctx context.Context, r *Runner) Result {
            status, latency, err := doJSON(ctx, r, method, url, body, nil)
            if err != nil {
                return Result{Status: "FAIL", Note: err.Error()}
            }
            if contains(okStatuses, status) {
                return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
            }
            return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
        },
    }
}

func manualCase(name, note string) TestCase {
    return TestCase{
        Name:  name,
        Focus: "Manual",
        Run: func(ctx context.Context, r *Runner) Result {
            return Result{Status: "SKIP", Note: note}
        },
    }
}

type savedQuote struct {
    Quote struct {
        ID         string `json:"id"`
        TotalPrice int64  `json:"total_price"`
    } `json:"quote"`
}

func createQuote(ctx context.Context, r *Runner, base, name string) (savedQuote, error) {
    var q savedQuote
    status, _, err := doJSON(ctx, r, http.MethodPost, base+"/api/quotes", map[string]any{
        "customer_name": name,
        "lang":          "en",
        "selections":    fullSelections(),
    }, &q)
    if err != nil {
        return q, err
    }
    if status != http.StatusCreated {
        return q, fmt.Errorf("create status=%d", status)
    }
    return q, nil
}

func quoteFlow(ctx context.Context, r *Runner, base string) Result {
    start := time.Now()
    q, err := createQuote(ctx, r, base, "bench")
    if err != nil {
        return Result{Status: "FAIL", Note: err.Error()}
    }
    url := base + "/api/quotes/" + q.Quote.ID

    var loaded struct {
        Load struct {
            Source        string         `json:"source"`
            TotalMismatch bool           `json:"total_mismatch"`
            Selections    map[string]any `json:"selections"`
        } `json:"load"`
    }
    if status, _, err := doJSON(ctx, r, http.MethodGet, url+"/load", nil, &loaded); err != nil || status != http.StatusOK {
        return Result{Status: "FAIL", Note: fmt.Sprintf("load status=%d err=%v", status, err)}
    }
    if loaded.Load.Source != "structured" || loaded.Load.TotalMismatch {
        return Result{Status: "FAIL", Note: fmt.Sprintf("source=%s mismatch=%v", loaded.Load.Source, loaded.Load.TotalMismatch)}
    }

    sel := loaded.Load.Selections
    sel["guide"] = map[string]any{"enabled": false}
    var updated savedQuote
    if status, _, err := doJSON(ctx, r, http.MethodPut, url, map[string]any{"selections": sel}, &updated); err != nil || status != http.StatusOK {
        return Result{Status: "FAIL", Note: fmt.Sprintf("re-save status=%d err=%v", status, err)}
    }
    // Guide: 3 days * (120 + 2*20).
    if updated.Quote.TotalPrice != q.Quote.TotalPrice-480 {
        return Result{Status: "FAIL", Note: fmt.Sprintf("re-save total=%d want=%d", updated.Quote.TotalPrice, q.Quote.TotalPrice-480)}
    }

    if status, _, err := doJSON(ctx, r, http.MethodDelete, url, nil, nil); err != nil || status != http.StatusNoContent {
        return Result{Status: "FAIL", Note: fmt.Sprintf("delete status=%d err=%v", status, err)}
    }
    return Result{Status: "PASS", Latency: time.Since(start), Note: fmt.Sprintf("total=%d", q.Quote.TotalPrice)}
}

func exchangeFlow(ctx context.Context, r *Runner, base string) Result {
    status, _, err := doJSON(ctx, r, http.MethodPut, base+"/api/exchange/rates",
        map[string]any{"rates": map[string]string{"VND": "25000", "KRW": "1380"}}, nil,
        "X-Feeder-Token", r.cfg.FeederToken)
    if err != nil {
        return Result{Status: "FAIL", Note: err.Error()}
    }
    if status == http.StatusUnauthorized {
        return Result{Status: "PENDING", Note: "feeder token rejected"}
    }
    if status != http.StatusNoContent {
        return Result{Status: "FAIL", Note: fmt.Sprintf("push status=%d", status)}
    }

    var out struct {
        Total     moneyResp `json:"total"`
        Converted struct {
            Amount string `json:"amount"`
        } `json:"converted"`
    }
    status, latency, err := doJSON(ctx, r, http.MethodPost, base+"/api/quotes/calculate", map[string]any{
        "selections": map[string]any{"fast_track": map[string]any{"enabled": true, "type": "roundtrip", "persons": 3}},
        "currency":   "VND",
        "lang":       "vi",
    }, &out)
    if err != nil || status != http.StatusOK {
        return Result{Status: "FAIL", Note: fmt.Sprintf("convert status=%d err=%v", status, err)}
    }
    if out.Total.Amount != 150 || out.Converted.Amount != "3750000" {
        return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("total=%d converted=%s", out.Total.Amount, out.Converted.Amount)}
    }
    return Result{Status: "PASS", Latency: latency}
}

func concurrentResave(ctx context.Context, r *Runner, base string) Result {
    q, err := createQuote(ctx, r, base, "bench-concurrent")
    if err != nil {
        return Result{Status: "FAIL", Note: err.Error()}
    }
    url := base + "/api/quotes/" + q.Quote.ID
    defer doJSON(context.Background(), r, http.MethodDelete, url, nil, nil)

    var (
        wg   sync.WaitGroup
        mu   sync.Mutex
        succ int
    )
    for i := 0; i < r.cfg.Concurrency; i++ {
        wg.Add(1)
        go func(persons int) {
            defer wg.Done()
            sel := fullSelections()
            sel["fast_track"] = map[string]any{"enabled": true, "type": "oneway", "persons": persons}
            status, _, err := doJSON(ctx, r, http.MethodPut, url, map[string]any{"selections": sel}, nil)
            if err == nil && status == http.StatusOK {
                mu.Lock()
                succ++
                mu.Unlock()
            }
        }(i + 1)
    }
    wg.Wait()

    var got savedQuote
    if status, _, err := doJSON(ctx, r, http.MethodGet, url, nil, &got); err != nil || status != http.StatusOK {
        return Result{Status: "FAIL", Note: fmt.Sprintf("get status=%d err=%v", status, err)}
    }
    if succ != r.cfg.Concurrency {
        return Result{Status: "FAIL", Note: fmt.Sprintf("success=%d of %d", succ, r.cfg.Concurrency)}
    }
    return Result{Status: "PASS", Note: fmt.Sprintf("success=%d final_total=%d", succ, got.Quote.TotalPrice)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
    b, _ := json.Marshal(payload)
    end := time.Now().Add(r.cfg.Duration)
    var count int64
    var errCount int64
    var mu sync.Mutex
    wg := sync.WaitGroup{}

    for i := 0; i < r.cfg.Concurrency; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for time.Now().Before(end) {
                req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
                req.Header.Set("Content-Type", "application/json")
                resp, err := r.httpc.Do(req)
                if err != nil {
                    mu.Lock()
                    errCount++
                    mu.Unlock()
                    continue
                }
                io.Copy(io.Discard, resp.Body)
                resp.Body.Close()
                mu.Lock()
                count++
                mu.Unlock()
            }
        }()
    }
    wg.Wait()

    if count == 0 {
        return Result{Status: "FAIL", Note: "no requests completed"}
    }
    rps := float64(count) / r.cfg.Duration.Seconds()
    return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
    for _, i := range list {
        if i == v {
            return true
        }
    }
    return false
}

func extractTables(path string) ([]string, error) {
    b, err := os.ReadFile(path)
    if err != nil {
        return nil, err
    }
    re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
    matches := re.FindAllStringSubmatch(string(b), -1)
    tables := make([]string, 0, len(matches))
    for _, m := range matches {
        tables = append(tables, m[1])
    }
    return tables, nil
}

func splitSQL(sql string) []string {
    lines := strings.Split(sql, "\n")
    filtered := make([]string, 0, len(lines))
    for _, line := range lines {
        l := strings.TrimSpace(line)
        if strings.HasPrefix(l, "--") || l == "" {
            continue
        }
        filtered = append(filtered, line)
    }
    cleaned := strings.Join(filtered, "\n")
    parts := strings.Split(cleaned, ";")
    stmts := make([]string, 0, len(parts))
    for _, p := range parts {
        s := strings.TrimSpace(p)
        if s != "" {
            stmts = append(stmts, s)
        }
    }
    return stmts
}
