package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/accountable/internal/identity"
	"github.com/magabrotheeeer/accountable/internal/router"
)

var (
	anon      = identity.NewAnonymous()
	user      = identity.NewUser(identity.UserInfo{ID: "u1", Email: "u@example.com"})
	adminUser = identity.NewUser(identity.UserInfo{ID: "u2", Email: "root@example.com", IsAdmin: true})
	adminSess = identity.NewAdmin(identity.AdminSession{Username: "admin", Password: "admin"})
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		view router.View
		id   identity.Identity
		want Decision
	}{
		{name: "anonymous dashboard", view: router.ViewDashboard, id: anon, want: Decision{Action: Redirect, To: "/auth"}},
		{name: "admin session dashboard", view: router.ViewDashboard, id: adminSess, want: Decision{Action: Redirect, To: "/auth"}},
		{name: "user dashboard", view: router.ViewDashboard, id: user, want: Decision{Action: Render}},

		{name: "anonymous admin", view: router.ViewAdmin, id: anon, want: Decision{Action: Redirect, To: "/dashboard"}},
		{name: "plain user admin", view: router.ViewAdmin, id: user, want: Decision{Action: Redirect, To: "/dashboard"}},
		{name: "admin user admin", view: router.ViewAdmin, id: adminUser, want: Decision{Action: Render}},
		{name: "admin session admin", view: router.ViewAdmin, id: adminSess, want: Decision{Action: Render}},

		{name: "anonymous auth", view: router.ViewAuth, id: anon, want: Decision{Action: Render}},
		{name: "user auth", view: router.ViewAuth, id: user, want: Decision{Action: Redirect, To: "/dashboard"}},
		{name: "admin session auth", view: router.ViewAuth, id: adminSess, want: Decision{Action: Redirect, To: "/admin"}},

		{name: "landing", view: router.ViewLanding, id: anon, want: Decision{Action: Render}},
		{name: "pricing", view: router.ViewPricing, id: user, want: Decision{Action: Render}},
		{name: "blog", view: router.ViewBlog, id: adminSess, want: Decision{Action: Render}},
		{name: "setup", view: router.ViewSetup, id: anon, want: Decision{Action: Render}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.view, tt.id))
		})
	}
}

func TestDecide_PublicViewsRenderForEveryone(t *testing.T) {
	public := []router.View{router.ViewLanding, router.ViewPricing, router.ViewBlog, router.ViewSetup}
	for _, v := range public {
		for _, id := range []identity.Identity{anon, user, adminUser, adminSess} {
			assert.Equal(t, Render, Decide(v, id).Action, "view %s kind %s", v, id.Kind)
		}
	}
}

func TestResolve(t *testing.T) {
	routes := router.DefaultRoutes()

	tests := []struct {
		name          string
		path          string
		id            identity.Identity
		wantPath      string
		wantView      router.View
		wantRedirects []string
	}{
		{name: "anonymous dashboard goes to auth", path: "#/dashboard", id: anon, wantPath: "/auth", wantView: router.ViewAuth, wantRedirects: []string{"/auth"}},
		{name: "plain user admin goes to dashboard", path: "/admin", id: user, wantPath: "/dashboard", wantView: router.ViewDashboard, wantRedirects: []string{"/dashboard"}},
		{name: "anonymous admin chains to auth", path: "/admin", id: anon, wantPath: "/auth", wantView: router.ViewAuth, wantRedirects: []string{"/dashboard", "/auth"}},
		{name: "admin session on auth", path: "/auth", id: adminSess, wantPath: "/admin", wantView: router.ViewAdmin, wantRedirects: []string{"/admin"}},
		{name: "unknown path", path: "/nowhere", id: user, wantPath: "/", wantView: router.ViewLanding, wantRedirects: []string{"/"}},
		{name: "blog post", path: "/blog/2", id: anon, wantPath: "/blog/2", wantView: router.ViewBlog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(routes, tt.path, tt.id)
			assert.Equal(t, tt.wantPath, res.Location.Pathname)
			assert.Equal(t, tt.wantView, res.View)
			assert.Equal(t, tt.wantRedirects, res.Redirects)
		})
	}
}

func TestResolve_StopsOnRedirectLoop(t *testing.T) {
	routes := []router.Route{
		{Pattern: "/dashboard", View: router.ViewDashboard},
		{Pattern: "/auth", View: router.ViewDashboard},
	}

	res := Resolve(routes, "/dashboard", anon)

	assert.Len(t, res.Redirects, MaxRedirects)
	assert.Equal(t, router.ViewLanding, res.View)
	assert.Equal(t, router.PathLanding, res.Location.Pathname)
	assert.Equal(t, Render, Decide(res.View, anon).Action)
}
