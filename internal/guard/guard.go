// Package guard решает, показать представление или перенаправить, по текущей идентичности.
// Решение — чистая функция без побочных эффектов.
package guard

import (
	"github.com/magabrotheeeer/accountable/internal/identity"
	"github.com/magabrotheeeer/accountable/internal/router"
)

// Action — действие, которое нужно выполнить с представлением.
type Action int

const (
	// Render — показать запрошенное представление.
	Render Action = iota
	// Redirect — перейти по адресу Decision.To.
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "render"
}

// Decision — результат проверки доступа.
type Decision struct {
	Action Action
	To     string
}

func render() Decision { return Decision{Action: Render} }

func redirect(to string) Decision { return Decision{Action: Redirect, To: to} }

// Decide применяет таблицу политик доступа; срабатывает первое подходящее правило.
//
//	admin      — AdminSession или пользователь с ролью admin → показать, иначе → /dashboard
//	dashboard  — пользователь → показать, иначе → /auth
//	auth       — пользователь → /dashboard, AdminSession → /admin, аноним → показать
//	публичные  — показать всем
func Decide(view router.View, id identity.Identity) Decision {
	switch view {
	case router.ViewAdmin:
		if id.HasAdminRole() {
			return render()
		}
		return redirect(router.PathDashboard)
	case router.ViewDashboard:
		if id.IsUser() {
			return render()
		}
		return redirect(router.PathAuth)
	case router.ViewAuth:
		switch {
		case id.IsUser():
			return redirect(router.PathDashboard)
		case id.IsAdminSession():
			return redirect(router.PathAdmin)
		}
		return render()
	default:
		return render()
	}
}

// NotFound — решение для неизвестного адреса или отсутствующей записи.
func NotFound() Decision {
	return redirect(router.PathLanding)
}

// MaxRedirects ограничивает длину цепочки перенаправлений при разрешении адреса.
const MaxRedirects = 4

// Resolution — итог разрешения адреса с учётом всех перенаправлений.
type Resolution struct {
	Requested string
	Location  router.Location
	View      router.View
	Redirects []string
}

// Resolve сопоставляет адрес с таблицей маршрутов и следует перенаправлениям охраны,
// пока не получит показываемое представление. Неизвестный адрес ведёт на "/".
func Resolve(routes []router.Route, path string, id identity.Identity) Resolution {
	requested := router.Normalize(path)
	res := Resolution{Requested: requested}
	current := requested

	for hop := 0; ; hop++ {
		m, ok := router.MatchRoute(routes, current)
		var d Decision
		if ok {
			d = Decide(m.View, id)
		} else {
			d = NotFound()
		}
		if d.Action == Render {
			res.Location = router.Location{Pathname: current, Params: m.Params}
			res.View = m.View
			return res
		}
		if hop >= MaxRedirects {
			// цепочка не сошлась: показываем только публичную главную
			res.Location = router.Location{Pathname: router.PathLanding, Params: map[string]string{}}
			res.View = router.ViewLanding
			return res
		}
		res.Redirects = append(res.Redirects, d.To)
		current = router.Normalize(d.To)
	}
}
