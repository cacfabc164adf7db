// Package publicconfig отдаёт публичные реквизиты API для автонастройки клиента.
package publicconfig

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// Config — реквизиты, которые клиент сохраняет локально.
type Config struct {
	URL     string `json:"url"`
	AnonKey string `json:"anonKey"`
}

type Handler struct {
	log *slog.Logger
	cfg Config
}

// New создаёт Handler. Пустой URL означает, что автонастройка недоступна.
func New(log *slog.Logger, cfg Config) *Handler {
	return &Handler{log: log, cfg: cfg}
}

// ServeHTTP godoc
// @Summary Публичная конфигурация
// @Tags Functions
// @Produce json
// @Success 200 {object} Config
// @Failure 404 {object} map[string]string
// @Router /functions/v1/get-public-config [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.cfg.URL == "" {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "public config is not set"})
		return
	}
	render.JSON(w, r, h.cfg)
}
