// Package signout реализует HTTP-обработчик выхода: отзывает текущую сессию.
package signout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/accountable/internal/http/middlewarectx"
	"github.com/magabrotheeeer/accountable/internal/http/response"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
)

// Service — клиент identity-сервиса.
type Service interface {
	SignOut(ctx context.Context, token string) error
}

// Handler обрабатывает POST /auth/signout. Требует JWTMiddleware.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выход
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /auth/signout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.signout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.SignOut(r.Context(), sess.Token); err != nil {
		log.Error("sign out failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not sign out"))
		return
	}

	log.Info("user signed out", slog.String("user_id", sess.UserID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"signed_out": true,
	}))
}
