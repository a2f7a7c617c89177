// README: Villa catalog model; each villa may override the default nightly rates.
package villa

import (
    "errors"
    "time"

    "villaquote/internal/modules/pricing"
)

var ErrNotFound = errors.New("villa not found")

type Villa struct {
    ID        string             `json:"id"`
    Name      string             `json:"name"`
    Rates     pricing.VillaRates `json:"rates"`
    UpdatedAt time.Time          `json:"updated_at"`
}
