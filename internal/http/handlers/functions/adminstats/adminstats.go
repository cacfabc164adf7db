// Package adminstats реализует admin RPC оператора: stats, tasks и verify_task.
//
// Ответы отдаются без общей обёртки response.Response: успешный вызов
// возвращает результат действия, ошибка возвращается как {"error": "..."}.
// 401 означает ошибку авторизации, 400 означает любую другую ошибку.
package adminstats

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/accountable/internal/http/middlewarectx"
	"github.com/magabrotheeeer/accountable/internal/http/response"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/metrics"
	"github.com/magabrotheeeer/accountable/internal/models"
	"github.com/magabrotheeeer/accountable/internal/services/admin"
)

// Request — тело вызова admin RPC.
type Request struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Action   string `json:"action,omitempty" example:"stats"`
	TaskID   string `json:"taskId,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// ErrorBody — тело ответа с ошибкой.
type ErrorBody struct {
	Error string `json:"error"`
}

// Service выполняет действия admin RPC.
type Service interface {
	Do(ctx context.Context, req admin.Request) (any, error)
}

// Handler обрабатывает POST /functions/v1/get-admin-stats.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Admin RPC
// @Description Статистика, список задач и подтверждение задачи. Доступ по паре логин/пароль оператора или по токену администратора.
// @Tags Functions
// @Accept json
// @Produce json
// @Param request body Request false "Учётные данные и действие"
// @Success 200 {object} models.AdminStats
// @Failure 400 {object} ErrorBody
// @Failure 401 {object} ErrorBody
// @Failure 429 {object} response.ErrorResponse
// @Router /functions/v1/get-admin-stats [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.functions.adminstats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorBody{Error: "invalid request body"})
		return
	}

	creds := admin.Credentials{Username: req.Username, Password: req.Password}
	if token, ok := middlewarectx.BearerToken(r); ok {
		creds.Token = token
	}

	res, err := h.service.Do(r.Context(), admin.Request{
		Credentials: creds,
		Action:      req.Action,
		TaskID:      req.TaskID,
		Notes:       req.Notes,
	})
	switch {
	case errors.Is(err, admin.ErrUnauthorized):
		metrics.AdminAuthFailures.Inc()
		log.Warn("admin authorization failed", slog.String("action", req.Action))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorBody{Error: "Unauthorized: Invalid credentials"})
		return
	case errors.Is(err, models.ErrValidation):
		log.Info("invalid admin request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorBody{Error: response.Invalid(err).Error})
		return
	case errors.Is(err, models.ErrNotFound):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorBody{Error: "task not found"})
		return
	case errors.Is(err, models.ErrConflict):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorBody{Error: "task is not pending"})
		return
	case err != nil:
		log.Error("admin action failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorBody{Error: "admin action failed"})
		return
	}

	render.JSON(w, r, res)
}
