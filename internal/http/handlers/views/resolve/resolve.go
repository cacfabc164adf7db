// Package resolve реализует разрешение адреса в представление для вызывающего.
//
// Идентичность вызывающего определяется так же, как в клиенте: пара
// заголовков администратора, затем токен сессии с профилем, иначе аноним.
// Ошибки чтения профиля не прерывают запрос, вызывающий считается анонимом.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/accountable/internal/http/middlewarectx"
	"github.com/magabrotheeeer/accountable/internal/http/response"
	"github.com/magabrotheeeer/accountable/internal/identity"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/metrics"
	"github.com/magabrotheeeer/accountable/internal/models"
	"github.com/magabrotheeeer/accountable/internal/services/admin"
	"github.com/magabrotheeeer/accountable/internal/services/views"
)

// Заголовки пары логин/пароль администратора.
const (
	AdminUserHeader     = "X-Admin-User"
	AdminPasswordHeader = "X-Admin-Password"
)

// HasAdminHeaders сообщает, предъявлена ли в запросе пара администратора.
// Такие запросы проходят через ограничитель частоты admin RPC.
func HasAdminHeaders(r *http.Request) bool {
	return r.Header.Get(AdminUserHeader) != "" || r.Header.Get(AdminPasswordHeader) != ""
}

// Resolver применяет маршруты и охрану представлений.
type Resolver interface {
	Resolve(path string, id identity.Identity) views.Result
}

// Profiles читает профиль пользователя.
type Profiles interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
}

// Admins проверяет права администратора.
type Admins interface {
	Authorize(ctx context.Context, c admin.Credentials) error
}

// Handler обрабатывает GET /views/resolve. Ожидает OptionalAuth перед собой.
type Handler struct {
	log      *slog.Logger
	resolver Resolver
	profiles Profiles
	admins   Admins
}

// New создаёт Handler.
func New(log *slog.Logger, resolver Resolver, profiles Profiles, admins Admins) *Handler {
	return &Handler{
		log:      log,
		resolver: resolver,
		profiles: profiles,
		admins:   admins,
	}
}

// ServeHTTP godoc
// @Summary Разрешение адреса
// @Description Сопоставляет адрес с маршрутом и применяет охрану представлений для текущей идентичности.
// @Tags Views
// @Produce json
// @Param path query string false "Адрес, например /dashboard или #/blog/2"
// @Param X-Admin-User header string false "Логин администратора"
// @Param X-Admin-Password header string false "Пароль администратора"
// @Success 200 {object} response.Response{data=views.Result}
// @Router /views/resolve [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.views.resolve"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := h.identify(r, log)
	res := h.resolver.Resolve(r.URL.Query().Get("path"), id)

	log.Debug("view resolved",
		slog.String("path", res.Path),
		slog.String("view", string(res.View)),
		slog.String("identity", res.Identity),
	)
	render.JSON(w, r, response.StatusOKWithData(res))
}

func (h *Handler) identify(r *http.Request, log *slog.Logger) identity.Identity {
	ctx := r.Context()

	if user := r.Header.Get(AdminUserHeader); user != "" {
		creds := admin.Credentials{Username: user, Password: r.Header.Get(AdminPasswordHeader)}
		if err := h.admins.Authorize(ctx, creds); err == nil {
			return identity.NewAdmin(identity.AdminSession{Username: user})
		}
		metrics.AdminAuthFailures.Inc()
		log.Info("admin headers rejected")
	}

	sess, ok := middlewarectx.SessionFrom(ctx)
	if !ok {
		return identity.NewAnonymous()
	}
	p, err := h.profiles.Get(ctx, sess.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return identity.FromProfile(models.DefaultProfile(sess.UserID, sess.Email, time.Now()), sess.Token)
	}
	if err != nil {
		log.Warn("failed to read profile, resolving as anonymous", sl.Err(err))
		return identity.NewAnonymous()
	}
	return identity.FromProfile(p, sess.Token)
}
