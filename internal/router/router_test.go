package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "/"},
		{in: "#", want: "/"},
		{in: "#/pricing", want: "/pricing"},
		{in: "pricing", want: "/pricing"},
		{in: "/dashboard/", want: "/dashboard"},
		{in: "/blog/3//", want: "/blog/3"},
		{in: " /auth ", want: "/auth"},
		{in: "/", want: "/"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestMatchRoute(t *testing.T) {
	routes := DefaultRoutes()

	tests := []struct {
		name       string
		path       string
		wantOK     bool
		wantView   View
		wantParams map[string]string
	}{
		{name: "landing", path: "/", wantOK: true, wantView: ViewLanding, wantParams: map[string]string{}},
		{name: "pricing", path: "/pricing", wantOK: true, wantView: ViewPricing, wantParams: map[string]string{}},
		{name: "blog post", path: "/blog/3", wantOK: true, wantView: ViewBlog, wantParams: map[string]string{"id": "3"}},
		{name: "blog with extra segment", path: "/blog/3/extra", wantOK: false},
		{name: "blog without id", path: "/blog", wantOK: false},
		{name: "fragment prefix", path: "#/admin", wantOK: true, wantView: ViewAdmin, wantParams: map[string]string{}},
		{name: "unknown", path: "/nowhere", wantOK: false},
		{name: "prefix is not a match", path: "/dashboard/tasks", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := MatchRoute(routes, tt.path)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantView, m.View)
			assert.Equal(t, tt.wantParams, m.Params)
		})
	}
}

func TestMatchRoute_FirstDeclaredWins(t *testing.T) {
	routes := []Route{
		{Pattern: "/items/:id", View: "param"},
		{Pattern: "/items/new", View: "literal"},
	}
	m, ok := MatchRoute(routes, "/items/new")
	require.True(t, ok)
	assert.Equal(t, View("param"), m.View)
	assert.Equal(t, "new", m.Params["id"])

	reversed := []Route{routes[1], routes[0]}
	m, ok = MatchRoute(reversed, "/items/new")
	require.True(t, ok)
	assert.Equal(t, View("literal"), m.View)
}

func TestMatchRoute_ParamsBindPositionally(t *testing.T) {
	routes := []Route{{Pattern: "/:org/projects/:project", View: "project"}}

	m, ok := MatchRoute(routes, "/acme/projects/rocket")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"org": "acme", "project": "rocket"}, m.Params)

	_, ok = MatchRoute(routes, "/acme/tasks/rocket")
	assert.False(t, ok)
}

func TestMatchRoute_Deterministic(t *testing.T) {
	routes := DefaultRoutes()
	paths := []string{"/", "/blog/7", "/blog", "/admin", "/x/y/z"}
	for _, p := range paths {
		first, firstOK := MatchRoute(routes, p)
		for i := 0; i < 10; i++ {
			again, ok := MatchRoute(routes, p)
			assert.Equal(t, firstOK, ok)
			assert.Equal(t, first, again)
		}
	}
}

func TestRouter_NavigateRoundTrip(t *testing.T) {
	r := New("")
	assert.Equal(t, "/", r.Current().Pathname)

	r.Navigate("/pricing")
	assert.Equal(t, "/pricing", r.Current().Pathname)

	r.Navigate("")
	assert.Equal(t, "/", r.Current().Pathname)
}

func TestRouter_SubscribeAndUnsubscribe(t *testing.T) {
	r := New("/")

	var first, second []string
	unsubFirst := r.Subscribe(func(l Location) { first = append(first, l.Pathname) })
	r.Subscribe(func(l Location) { second = append(second, l.Pathname) })

	r.Navigate("#/auth")
	unsubFirst()
	unsubFirst()
	r.Navigate("/dashboard")

	assert.Equal(t, []string{"/auth"}, first)
	assert.Equal(t, []string{"/auth", "/dashboard"}, second)
}

func TestRouter_ListenerMayNavigate(t *testing.T) {
	r := New("/")

	var seen []string
	r.Subscribe(func(l Location) {
		seen = append(seen, l.Pathname)
		if l.Pathname == "/dashboard" {
			r.Navigate("/auth")
		}
	})

	r.Navigate("/dashboard")

	assert.Equal(t, []string{"/dashboard", "/auth"}, seen)
	assert.Equal(t, "/auth", r.Current().Pathname)
}

func TestRouter_NavigateWithParamsCopies(t *testing.T) {
	r := New("/")
	params := map[string]string{"id": "3"}

	r.NavigateWithParams("/blog/3", params)
	params["id"] = "4"

	v, ok := r.Current().Param("id")
	require.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestRouter_CurrentIsACopy(t *testing.T) {
	r := New("/")
	r.NavigateWithParams("/blog/3", map[string]string{"id": "3"})

	loc := r.Current()
	loc.Params["id"] = "99"
	loc.Params["extra"] = "x"

	got := r.Current()
	assert.Equal(t, map[string]string{"id": "3"}, got.Params)
}

func TestRouter_ListenersGetOwnParams(t *testing.T) {
	r := New("/")
	var seen []string
	r.Subscribe(func(loc Location) {
		loc.Params["id"] = "mutated"
	})
	r.Subscribe(func(loc Location) {
		seen = append(seen, loc.Params["id"])
	})

	r.NavigateWithParams("/blog/3", map[string]string{"id": "3"})

	assert.Equal(t, []string{"3"}, seen)
	v, _ := r.Current().Param("id")
	assert.Equal(t, "3", v)
}
