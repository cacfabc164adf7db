// Package list отдаёт анонсы статей блога без текста.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/accountable/internal/http/response"
	"github.com/magabrotheeeer/accountable/internal/models"
)

type Service interface {
	List() []models.BlogPost
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статьи блога
// @Tags Blog
// @Produce json
// @Success 200 {object} response.Response{data=[]models.BlogPost}
// @Router /blog [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(h.service.List()))
}
