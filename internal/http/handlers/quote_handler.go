// README: Quote handlers for calculate, save, list, get, load, re-save, and delete.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"villaquote/internal/modules/exchange"
	"villaquote/internal/modules/pricing"
	"villaquote/internal/modules/quote"
	"villaquote/internal/types"
)

// Converter turns a USD total into a display currency.
type Converter interface {
	Convert(ctx context.Context, totalUSD int64, code, lang string) (*exchange.Conversion, error)
}

type QuoteHandler struct {
	quote *quote.Service
	fx    Converter
}

func NewQuoteHandler(svc *quote.Service, fx Converter) *QuoteHandler {
	return &QuoteHandler{quote: svc, fx: fx}
}

type calculateReq struct {
	Selections pricing.Request `json:"selections"`
	Currency   string          `json:"currency"`
	Lang       string          `json:"lang"`
}

type calculateResp struct {
	Breakdown pricing.Breakdown    `json:"breakdown"`
	Total     types.Money          `json:"total"`
	Converted *exchange.Conversion `json:"converted,omitempty"`
}

type saveQuoteReq struct {
	CustomerName string          `json:"customer_name"`
	Lang         string          `json:"lang"`
	Selections   pricing.Request `json:"selections"`
}

type quoteResp struct {
	Quote *quote.Quote `json:"quote"`
	Total types.Money  `json:"total"`
}

func (h *QuoteHandler) Calculate(c *gin.Context) {
	var req calculateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.Selections.Validate(); err != nil {
		writeServiceError(c, err)
		return
	}
	b := h.quote.Calculate(c.Request.Context(), req.Selections)
	resp := calculateResp{Breakdown: b, Total: types.NewUSD(b.Total)}
	if req.Currency != "" {
		if h.fx == nil {
			writeError(c, http.StatusBadRequest, "currency conversion unavailable")
			return
		}
		conv, err := h.fx.Convert(c.Request.Context(), b.Total, req.Currency, req.Lang)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		resp.Converted = conv
	}
	writeJSON(c, http.StatusOK, resp)
}

func (h *QuoteHandler) Create(c *gin.Context) {
	var req saveQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := h.quote.Create(c.Request.Context(), quote.CreateCommand{
		CustomerName: req.CustomerName,
		Selections:   req.Selections,
		Lang:         req.Lang,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, quoteResp{Quote: q, Total: types.NewUSD(q.TotalPrice)})
}

func (h *QuoteHandler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	quotes, err := h.quote.List(c.Request.Context(), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if quotes == nil {
		quotes = []*quote.Quote{}
	}
	writeJSON(c, http.StatusOK, gin.H{"quotes": quotes})
}

func (h *QuoteHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	q, err := h.quote.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, quoteResp{Quote: q, Total: types.NewUSD(q.TotalPrice)})
}

// Load returns the selections needed to re-open a quote in the editor.
func (h *QuoteHandler) Load(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	res, err := h.quote.Load(c.Request.Context(), types.ID(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"load":          res,
		"display_total": types.NewUSD(res.DisplayTotal()),
	})
}

func (h *QuoteHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	var req saveQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := h.quote.Update(c.Request.Context(), quote.UpdateCommand{
		ID:         types.ID(id),
		Selections: req.Selections,
		Lang:       req.Lang,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, quoteResp{Quote: q, Total: types.NewUSD(q.TotalPrice)})
}

func (h *QuoteHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid quote id")
		return
	}
	if err := h.quote.Delete(c.Request.Context(), types.ID(id)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
