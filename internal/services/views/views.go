// Package views разрешает адрес в показываемое представление для вызывающего.
package views

import (
	"strconv"

	"github.com/magabrotheeeer/accountable/internal/guard"
	"github.com/magabrotheeeer/accountable/internal/identity"
	"github.com/magabrotheeeer/accountable/internal/metrics"
	"github.com/magabrotheeeer/accountable/internal/router"
)

// BlogIndex сообщает, существует ли статья блога.
type BlogIndex interface {
	Exists(id int) bool
}

// Result — ответ на разрешение адреса.
type Result struct {
	Requested string            `json:"requested"`
	Path      string            `json:"path"`
	View      router.View       `json:"view"`
	Params    map[string]string `json:"params"`
	Redirects []string          `json:"redirects"`
	Identity  string            `json:"identity"`
}

// Service применяет таблицу маршрутов и охрану представлений.
type Service struct {
	routes []router.Route
	blog   BlogIndex
}

// New создаёт Service с таблицей маршрутов приложения.
func New(blog BlogIndex) *Service {
	return &Service{routes: router.DefaultRoutes(), blog: blog}
}

// Resolve разрешает адрес для идентичности id.
// Статья блога с неизвестным id ведёт на главную.
func (s *Service) Resolve(path string, id identity.Identity) Result {
	res := guard.Resolve(s.routes, path, id)
	if res.View == router.ViewBlog && !s.postExists(res.Location) {
		nf := guard.NotFound()
		res = guard.Resolve(s.routes, nf.To, id)
		res.Requested = router.Normalize(path)
		res.Redirects = append([]string{nf.To}, res.Redirects...)
	}

	action := guard.Render
	if len(res.Redirects) > 0 {
		action = guard.Redirect
	}
	metrics.GuardDecisions.WithLabelValues(string(res.View), action.String()).Inc()

	redirects := res.Redirects
	if redirects == nil {
		redirects = []string{}
	}
	return Result{
		Requested: res.Requested,
		Path:      res.Location.Pathname,
		View:      res.View,
		Params:    res.Location.Params,
		Redirects: redirects,
		Identity:  id.Kind.String(),
	}
}

func (s *Service) postExists(loc router.Location) bool {
	raw, ok := loc.Param("id")
	if !ok {
		return false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}
	return s.blog.Exists(id)
}
