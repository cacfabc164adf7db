package router

import "strings"

// View — идентификатор представления приложения.
type View string

const (
	ViewLanding   View = "landing"
	ViewPricing   View = "pricing"
	ViewBlog      View = "blog"
	ViewSetup     View = "setup"
	ViewAuth      View = "auth"
	ViewDashboard View = "dashboard"
	ViewAdmin     View = "admin"
)

// Канонические адреса представлений без параметров.
const (
	PathLanding   = "/"
	PathPricing   = "/pricing"
	PathSetup     = "/setup"
	PathAuth      = "/auth"
	PathDashboard = "/dashboard"
	PathAdmin     = "/admin"
)

// Route связывает шаблон пути с представлением. Таблица маршрутов задаётся при старте.
type Route struct {
	Pattern string
	View    View
}

// Match — результат сопоставления адреса с таблицей маршрутов.
type Match struct {
	Route  Route
	View   View
	Params map[string]string
}

// DefaultRoutes возвращает таблицу маршрутов приложения в порядке приоритета.
func DefaultRoutes() []Route {
	return []Route{
		{Pattern: PathLanding, View: ViewLanding},
		{Pattern: PathPricing, View: ViewPricing},
		{Pattern: "/blog/:id", View: ViewBlog},
		{Pattern: PathSetup, View: ViewSetup},
		{Pattern: PathAuth, View: ViewAuth},
		{Pattern: PathDashboard, View: ViewDashboard},
		{Pattern: PathAdmin, View: ViewAdmin},
	}
}

// MatchRoute перебирает маршруты в порядке объявления и возвращает первый совпавший.
//
// Шаблон без параметров совпадает только при точном равенстве строк.
// Шаблон с параметрами совпадает, если число сегментов равно и все обычные
// сегменты равны на тех же позициях; параметры связываются по позиции.
// Частичных и префиксных совпадений нет.
func MatchRoute(routes []Route, path string) (Match, bool) {
	path = Normalize(path)
	for _, rt := range routes {
		if params, ok := matchPattern(rt.Pattern, path); ok {
			return Match{Route: rt, View: rt.View, Params: params}, true
		}
	}
	return Match{}, false
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	if !strings.Contains(pattern, ParamMarker) {
		if pattern == path {
			return map[string]string{}, true
		}
		return nil, false
	}

	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")
	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := make(map[string]string)
	for i, part := range patternParts {
		if name, ok := strings.CutPrefix(part, ParamMarker); ok {
			params[name] = pathParts[i]
			continue
		}
		if part != pathParts[i] {
			return nil, false
		}
	}
	return params, true
}
