// Package topup реализует HTTP-обработчик имитированной докупки звонков.
package topup

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/accountable/internal/http/middlewarectx"
	"github.com/magabrotheeeer/accountable/internal/http/response"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/models"
	"github.com/magabrotheeeer/accountable/internal/services/billing"
)

// Request — число докупаемых звонков.
type Request struct {
	Calls int `json:"calls" validate:"required,min=1,max=500"`
}

type Service interface {
	TopUp(ctx context.Context, userID string, calls int) (billing.Receipt, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Докупка звонков
// @Description Начисляет звонки по $0.50 за звонок. Оплата имитируется.
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Число звонков"
// @Success 200 {object} response.Response{data=billing.Receipt}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /billing/topup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.topup"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	receipt, err := h.service.TopUp(r.Context(), sess.UserID, req.Calls)
	switch {
	case errors.Is(err, models.ErrValidation):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Invalid(err))
		return
	case errors.Is(err, models.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("profile not found"))
		return
	case err != nil:
		log.Error("failed to top up", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not top up"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(receipt))
}
