// Package pricing отдаёт каталог тарифов и цену докупки звонка.
package pricing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/accountable/internal/http/response"
	"github.com/magabrotheeeer/accountable/internal/models"
)

// Catalog — ответ GET /pricing.
type Catalog struct {
	Plans           []models.Plan `json:"plans"`
	TopUpPriceCents int           `json:"topup_price_cents"`
}

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Тарифы
// @Tags Pricing
// @Produce json
// @Success 200 {object} response.Response{data=Catalog}
// @Router /pricing [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(Catalog{
		Plans:           models.Plans(),
		TopUpPriceCents: models.TopUpPriceCents,
	}))
}
