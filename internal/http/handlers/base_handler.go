// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"villaquote/internal/modules/exchange"
	"villaquote/internal/modules/pricing"
	"villaquote/internal/modules/quote"
	"villaquote/internal/modules/villa"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the UUIDs the quote service generates.
func isValidID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module sentinels to statuses. Anything unknown is
// attached to the context for the request logger and hidden from the client.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, quote.ErrBadRequest),
		errors.Is(err, pricing.ErrInvalidSelection),
		errors.Is(err, villa.ErrBadRequest),
		errors.Is(err, exchange.ErrBadRequest),
		errors.Is(err, exchange.ErrUnknownCurrency),
		errors.Is(err, exchange.ErrNoRate):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, quote.ErrNotFound), errors.Is(err, villa.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, quote.ErrUndecodable):
		_ = c.Error(err)
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
