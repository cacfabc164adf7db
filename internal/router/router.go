// Package router сопоставляет строку адреса с представлением и параметрами пути
// и оповещает подписчиков о каждой навигации.
//
// Маршруты проверяются в порядке объявления, выигрывает первый совпавший.
// Другого приоритета у маршрутов нет, поэтому порядок в таблице значим.
package router

import (
	"slices"
	"strings"
	"sync"
)

// ParamMarker — префикс именованного сегмента шаблона.
const ParamMarker = ":"

// fragmentMarker — маркер фрагмента, который отбрасывается при навигации.
const fragmentMarker = "#"

// Location — разобранный адрес одной навигации. После создания не изменяется.
type Location struct {
	Pathname string
	Params   map[string]string
}

// Param возвращает значение параметра пути.
func (l Location) Param(name string) (string, bool) {
	v, ok := l.Params[name]
	return v, ok
}

// Clone возвращает копию адреса с собственной картой параметров.
func (l Location) Clone() Location {
	return Location{Pathname: l.Pathname, Params: copyParams(l.Params)}
}

// Listener вызывается после каждой навигации.
type Listener func(Location)

// Router хранит текущий адрес и список подписчиков.
type Router struct {
	mu        sync.Mutex
	current   Location
	listeners map[int]Listener
	nextID    int
}

// New создаёт роутер с начальным адресом initial.
func New(initial string) *Router {
	return &Router{
		current:   Location{Pathname: Normalize(initial), Params: map[string]string{}},
		listeners: make(map[int]Listener),
	}
}

// Current возвращает последний разобранный адрес.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Clone()
}

// Navigate устанавливает адрес и синхронно оповещает подписчиков.
// Подписчики вызываются вне блокировки в порядке подписки.
func (r *Router) Navigate(path string) {
	r.NavigateWithParams(path, nil)
}

// NavigateWithParams устанавливает адрес вместе с уже извлечёнными параметрами.
func (r *Router) NavigateWithParams(path string, params map[string]string) {
	loc := Location{Pathname: Normalize(path), Params: copyParams(params)}

	r.mu.Lock()
	r.current = loc
	ids := make([]int, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	slices.Sort(ids)
	for _, id := range ids {
		r.mu.Lock()
		l, ok := r.listeners[id]
		r.mu.Unlock()
		if ok {
			l(loc.Clone())
		}
	}
}

// Subscribe регистрирует подписчика и возвращает функцию отписки.
// Повторный вызов функции отписки ничего не делает.
func (r *Router) Subscribe(l Listener) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = l
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

// Normalize приводит адрес к каноническому абсолютному виду:
// убирает маркер фрагмента, добавляет ведущий "/", убирает завершающий "/".
// Пустой адрес превращается в "/".
func Normalize(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, fragmentMarker)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func copyParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
