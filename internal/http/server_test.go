// README: HTTP surface tests over in-memory repositories.
package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	httptransport "villaquote/internal/http"
	"villaquote/internal/http/middleware"
	"villaquote/internal/modules/calendar"
	"villaquote/internal/modules/exchange"
	"villaquote/internal/modules/labels"
	"villaquote/internal/modules/pricing"
	"villaquote/internal/modules/quote"
	"villaquote/internal/types"
)

type memoryQuotes struct {
	mu     sync.Mutex
	quotes map[types.ID]quote.Quote
}

func (m *memoryQuotes) Create(_ context.Context, q *quote.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[q.ID] = *q
	return nil
}

func (m *memoryQuotes) Get(_ context.Context, id types.ID) (*quote.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return nil, quote.ErrNotFound
	}
	return &q, nil
}

func (m *memoryQuotes) UpdateTotal(_ context.Context, q *quote.Quote) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quotes[q.ID]; !ok {
		return false, nil
	}
	m.quotes[q.ID] = *q
	return true, nil
}

func (m *memoryQuotes) List(_ context.Context, limit int) ([]*quote.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*quote.Quote
	for _, q := range m.quotes {
		q := q
		out = append(out, &q)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryQuotes) Delete(_ context.Context, id types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quotes[id]; !ok {
		return false, nil
	}
	delete(m.quotes, id)
	return true, nil
}

type memoryRates struct {
	rates exchange.Rates
}

func (m *memoryRates) SetRates(_ context.Context, values map[string]decimal.Decimal, at time.Time) error {
	m.rates = exchange.Rates{Values: values, UpdatedAt: at}
	return nil
}

func (m *memoryRates) Rates(_ context.Context) (exchange.Rates, error) {
	return m.rates, nil
}

const feederToken = "feed-me"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := pricing.NewService(pricing.DefaultTables(), calendar.NewClassifier(calendar.DefaultHolidays()), nil, nil)
	quotes := quote.NewService(&memoryQuotes{quotes: map[types.ID]quote.Quote{}}, engine, quote.NewCodec(labels.MustLoad()), nil)
	fx := exchange.NewService(&memoryRates{}, nil)
	return httptransport.NewServer(httptransport.ServerDeps{
		Quote:       quotes,
		Exchange:    fx,
		FeederToken: feederToken,
	}).Routes()
}

func doRequest(h http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

var villaOnly = pricing.Request{
	// Thursday, Friday, Saturday nights: 350 + 380 + 500 = 1230.
	Villa: pricing.VillaSelection{Enabled: true, CheckIn: "2025-03-06", CheckOut: "2025-03-09", Rooms: 1},
}

func TestCalculate(t *testing.T) {
	h := newTestServer(t)

	w := doRequest(h, http.MethodPost, "/api/quotes/calculate", map[string]any{"selections": villaOnly})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Breakdown pricing.Breakdown `json:"breakdown"`
		Total     types.Money       `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, types.NewUSD(1230), resp.Total)
	require.Len(t, resp.Breakdown.Villa.Items, 3)

	w = doRequest(h, http.MethodPost, "/api/quotes/calculate", "not an object")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculateRejectsMalformedSelections(t *testing.T) {
	h := newTestServer(t)

	unknown := map[string]any{"vehicle": map[string]any{"enabled": true, "rows": []any{
		map[string]any{"date": "2025-03-06", "vehicle_type": "tuktuk", "route": "city"},
	}}}
	w := doRequest(h, http.MethodPost, "/api/quotes/calculate", map[string]any{"selections": unknown})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "tuktuk")

	atMax := villaOnly
	atMax.Villa.Rooms = pricing.MaxRooms
	w = doRequest(h, http.MethodPost, "/api/quotes/calculate", map[string]any{"selections": atMax})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	overMax := villaOnly
	overMax.Villa.Rooms = pricing.MaxRooms + 1
	w = doRequest(h, http.MethodPost, "/api/quotes/calculate", map[string]any{"selections": overMax})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = doRequest(h, http.MethodPost, "/api/quotes", map[string]any{"customer_name": "Tran", "selections": overMax})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	huge := map[string]any{"fast_track": map[string]any{"enabled": true, "type": "roundtrip", "persons": int64(1) << 58}}
	w = doRequest(h, http.MethodPost, "/api/quotes/calculate", map[string]any{"selections": huge})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestCalculateWithCurrency(t *testing.T) {
	h := newTestServer(t)

	body := map[string]any{"selections": villaOnly, "currency": "VND", "lang": "vi"}
	w := doRequest(h, http.MethodPost, "/api/quotes/calculate", body)
	require.Equal(t, http.StatusBadRequest, w.Code, "no rate pushed yet")

	rates := map[string]any{"rates": map[string]string{"VND": "25000"}}
	w = doRequest(h, http.MethodPut, "/api/exchange/rates", rates)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = doRequest(h, http.MethodPut, "/api/exchange/rates", rates, middleware.FeederTokenHeader, feederToken)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = doRequest(h, http.MethodPost, "/api/quotes/calculate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Total     types.Money         `json:"total"`
		Converted exchange.Conversion `json:"converted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(1230), resp.Total.Amount, "conversion never changes the USD total")
	require.Equal(t, "30750000", resp.Converted.Amount.String())
}

func TestQuoteLifecycle(t *testing.T) {
	h := newTestServer(t)

	w := doRequest(h, http.MethodPost, "/api/quotes", map[string]any{"customer_name": "", "selections": villaOnly})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(h, http.MethodPost, "/api/quotes", map[string]any{
		"customer_name": "Tran",
		"lang":          "en",
		"selections":    villaOnly,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Quote quote.Quote `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := string(created.Quote.ID)
	require.Equal(t, int64(1230), created.Quote.TotalPrice)

	w = doRequest(h, http.MethodGet, "/api/quotes/"+id+"/load", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var loaded struct {
		Load         quote.LoadResult `json:"load"`
		DisplayTotal types.Money      `json:"display_total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	require.Equal(t, villaOnly, loaded.Load.Selections)
	require.Equal(t, quote.LoadSettled, loaded.Load.State)
	require.Equal(t, int64(1230), loaded.DisplayTotal.Amount)

	edited := loaded.Load.Selections
	edited.Villa.Rooms = 2
	w = doRequest(h, http.MethodPut, "/api/quotes/"+id, map[string]any{"selections": edited})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Total types.Money `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, int64(2460), updated.Total.Amount)

	w = doRequest(h, http.MethodGet, "/api/quotes?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(h, http.MethodGet, "/api/quotes?limit=abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(h, http.MethodDelete, "/api/quotes/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(h, http.MethodGet, "/api/quotes/"+id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidQuoteID(t *testing.T) {
	h := newTestServer(t)
	for _, path := range []string{"/api/quotes/not-a-uuid", "/api/quotes/not-a-uuid/load"} {
		w := doRequest(h, http.MethodGet, path, nil)
		require.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestServer(t), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}
