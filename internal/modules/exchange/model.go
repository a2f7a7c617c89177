// README: Exchange-rate model for display-only conversion of USD quote totals.
package exchange

import (
    "errors"
    "time"

    "github.com/shopspring/decimal"
)

const Base = "USD"

var (
    ErrUnknownCurrency = errors.New("unknown currency")
    ErrNoRate          = errors.New("no exchange rate for currency")
    ErrBadRequest      = errors.New("bad request")
)

// Rates maps an ISO 4217 code to units of that currency per one USD.
type Rates struct {
    Values    map[string]decimal.Decimal `json:"values"`
    UpdatedAt time.Time                  `json:"updated_at"`
}

// Conversion is a converted total; the USD amount stays the source of truth.
type Conversion struct {
    BaseAmount int64           `json:"base_amount"`
    Currency   string          `json:"currency"`
    Rate       decimal.Decimal `json:"rate"`
    Amount     decimal.Decimal `json:"amount"`
    Display    string          `json:"display"`
}
