// README: Saved quote aggregate, its persisted breakdown, and the load state flow.
package quote

import (
    "time"

    "villaquote/internal/modules/pricing"
    "villaquote/internal/types"
)

// BreakdownVersion is bumped when the stored breakdown layout changes.
const BreakdownVersion = 2

// DescriptionDelimiter joins the display lines of one component.
const DescriptionDelimiter = " | "

type Quote struct {
    ID           types.ID        `json:"id"`
    CustomerName string          `json:"customer_name"`
    TotalPrice   int64           `json:"total_price"`
    Breakdown    StoredBreakdown `json:"breakdown"`
    CreatedAt    time.Time       `json:"created_at"`
    UpdatedAt    time.Time       `json:"updated_at"`
}

type StoredComponent struct {
    Price       int64  `json:"price"`
    Description string `json:"description"`
}

// StoredBreakdown is the persisted form of a breakdown. Selections is
// authoritative; Components descriptions are a display cache. Version 1 rows
// written before structured persistence carry descriptions only.
type StoredBreakdown struct {
    Version    int                                   `json:"version"`
    Lang       string                                `json:"lang,omitempty"`
    Selections *pricing.Request                      `json:"selections,omitempty"`
    Components map[pricing.Component]StoredComponent `json:"components"`
    Total      int64                                 `json:"total"`
}

type Source string

const (
    SourceStructured Source = "structured"
    SourceLegacy     Source = "legacy"
)

type LoadState string

const (
    LoadIdle          LoadState = "idle"
    LoadLoading       LoadState = "loading"
    LoadFieldsApplied LoadState = "fields_applied"
    LoadSettled       LoadState = "settled"
)

// AllowedTransitions represents the load flow as code.
var AllowedTransitions = map[LoadState][]LoadState{
    LoadIdle:          {LoadLoading},
    LoadLoading:       {LoadFieldsApplied},
    LoadFieldsApplied: {LoadSettled},
    LoadSettled:       {LoadLoading},
}

func CanTransition(from, to LoadState) bool {
    next, ok := AllowedTransitions[from]
    if !ok {
        return false
    }
    for _, s := range next {
        if s == to {
            return true
        }
    }
    return false
}

// LoadResult is what an editor needs to re-open a saved quote.
type LoadResult struct {
    Quote         *Quote            `json:"quote"`
    Selections    pricing.Request   `json:"selections"`
    Recomputed    pricing.Breakdown `json:"recomputed"`
    Source        Source            `json:"source"`
    State         LoadState         `json:"state"`
    TotalMismatch bool              `json:"total_mismatch"`
}

// DisplayTotal is the stored total; a fresh total only replaces it on re-save.
func (r LoadResult) DisplayTotal() int64 {
    return r.Quote.TotalPrice
}
