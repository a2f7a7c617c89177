// README: Villa rate card handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"villaquote/internal/modules/pricing"
	"villaquote/internal/modules/villa"
)

type VillaHandler struct {
	villa *villa.Service
}

func NewVillaHandler(svc *villa.Service) *VillaHandler {
	return &VillaHandler{villa: svc}
}

type putVillaReq struct {
	Name  string             `json:"name"`
	Rates pricing.VillaRates `json:"rates"`
}

func (h *VillaHandler) List(c *gin.Context) {
	villas, err := h.villa.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if villas == nil {
		villas = []*villa.Villa{}
	}
	writeJSON(c, http.StatusOK, gin.H{"villas": villas})
}

func (h *VillaHandler) Get(c *gin.Context) {
	v, err := h.villa.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

func (h *VillaHandler) Put(c *gin.Context) {
	var req putVillaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v := &villa.Villa{ID: c.Param("id"), Name: req.Name, Rates: req.Rates}
	if err := h.villa.Upsert(c.Request.Context(), v); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}
