// README: Exchange-rate handlers; the feeder pushes rates, clients read them.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"villaquote/internal/modules/exchange"
)

type ExchangeHandler struct {
	exchange *exchange.Service
}

func NewExchangeHandler(svc *exchange.Service) *ExchangeHandler {
	return &ExchangeHandler{exchange: svc}
}

type putRatesReq struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}

func (h *ExchangeHandler) PutRates(c *gin.Context) {
	var req putRatesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.exchange.UpdateRates(c.Request.Context(), req.Rates); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ExchangeHandler) GetRates(c *gin.Context) {
	rates, err := h.exchange.Rates(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"base": exchange.Base, "rates": rates.Values, "updated_at": rates.UpdatedAt})
}
