// ABOUTME: Integration tests for the TUI root model
// ABOUTME: Runs against the fake backend to check routing, guards and session expiry

package tui

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/materialhub/materialhub-cli/internal/catalog"
	"github.com/materialhub/materialhub-cli/internal/client"
	"github.com/materialhub/materialhub-cli/internal/fakeapi"
	"github.com/materialhub/materialhub-cli/internal/logger"
	"github.com/materialhub/materialhub-cli/internal/models"
	"github.com/materialhub/materialhub-cli/internal/recent"
	"github.com/materialhub/materialhub-cli/internal/router"
	"github.com/materialhub/materialhub-cli/internal/session"
	"github.com/materialhub/materialhub-cli/internal/storage"
	"github.com/materialhub/materialhub-cli/internal/tui/admin"
	"github.com/materialhub/materialhub-cli/internal/tui/icons"
	"github.com/materialhub/materialhub-cli/internal/tui/login"
	"github.com/materialhub/materialhub-cli/internal/tui/materials"
	"github.com/materialhub/materialhub-cli/internal/tui/menu"
	"github.com/materialhub/materialhub-cli/internal/tui/screen"
	"github.com/materialhub/materialhub-cli/internal/tui/upload"
)

func TestMain(m *testing.M) {
	os.Setenv(icons.EnvNerdFonts, "0")
	os.Exit(m.Run())
}

type harness struct {
	fake   *fakeapi.Server
	deps   Deps
	forced []router.Navigation
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{fake: fakeapi.New()}
	h.fake.Seed()
	srv := httptest.NewServer(h.fake.Handler())
	t.Cleanup(srv.Close)

	log := logger.Discard()
	store := storage.NewMemoryStore()
	sess := session.New(store, log)
	c := client.New(srv.URL, client.WithTokenSource(session.StoredToken(store)), client.WithLogger(log))
	nav := router.NewNavigator(router.DefaultTable(), sess, log)
	c.OnUnauthorized(func(ctx context.Context, _ *client.APIError) {
		_ = sess.ClearAuth(context.WithoutCancel(ctx))
		nav.ForceLogin()
	})
	nav.Subscribe(func(n router.Navigation) {
		if n.Forced {
			h.forced = append(h.forced, n)
		}
	})

	loader := catalog.NewLoader(c.Materials(), catalog.DefaultTTL)
	t.Cleanup(loader.Close)

	h.deps = Deps{
		Client:    c,
		Session:   sess,
		Navigator: nav,
		Catalogs:  loader,
		Recent:    recent.New(t.TempDir()),
		Logger:    log,
	}
	return h
}

func (h *harness) login(t *testing.T, username, password string) {
	t.Helper()
	ctx := context.Background()
	auth, err := h.deps.Client.Auth().Login(ctx, models.LoginRequest{Username: username, Password: password})
	require.NoError(t, err)
	require.NoError(t, h.deps.Session.SetAuth(ctx, auth))
}

func navigate(app *App, path string) {
	app.Update(screen.NavigateMsg{Path: path})
}

func TestApp_StartsAtHomeMenu(t *testing.T) {
	h := newHarness(t)
	app := New(context.Background(), h.deps)

	assert.Equal(t, router.RouteHome, app.current.Route.Name)
	assert.IsType(t, &menu.Menu{}, app.screen)
	view := app.View()
	assert.Contains(t, view, "Browse materials")
	assert.Contains(t, view, "guest")
}

func TestApp_BuildsScreenPerRoute(t *testing.T) {
	h := newHarness(t)
	h.login(t, fakeapi.DemoAdmin, fakeapi.DemoAdminPassword)
	app := New(context.Background(), h.deps)

	tests := []struct {
		path string
		want screen.Screen
	}{
		{router.MaterialsPath, &materials.List{}},
		{"/materials/1", &materials.Detail{}},
		{router.UploadPath, &upload.Upload{}},
		{router.AdminPath, &admin.Dashboard{}},
		{router.AdminMaterialsPath, &admin.Moderation{}},
		{router.AdminUsersPath, &admin.Users{}},
		{router.HomePath, &menu.Menu{}},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			navigate(app, tc.path)
			assert.IsType(t, tc.want, app.screen)
			assert.Empty(t, app.notice)
		})
	}
}

func TestApp_GuestUploadRedirectsToLogin(t *testing.T) {
	h := newHarness(t)
	app := New(context.Background(), h.deps)

	navigate(app, router.UploadPath)

	assert.Equal(t, router.RouteLogin, app.current.Route.Name)
	assert.Equal(t, router.UploadPath, app.current.Location.Get(router.RedirectParam))
	assert.IsType(t, &login.Login{}, app.screen)
	assert.Contains(t, app.notice, "Please log in")
	assert.Contains(t, app.View(), "You will continue to /upload")
}

func TestApp_MemberDeniedAdmin(t *testing.T) {
	h := newHarness(t)
	h.login(t, fakeapi.DemoUser, fakeapi.DemoUserPassword)
	app := New(context.Background(), h.deps)

	navigate(app, router.AdminUsersPath)

	assert.Equal(t, router.RouteHome, app.current.Route.Name)
	assert.Contains(t, app.notice, "Admin privileges are required")
}

func TestApp_LoggedInUserSkipsLogin(t *testing.T) {
	h := newHarness(t)
	h.login(t, fakeapi.DemoUser, fakeapi.DemoUserPassword)
	app := New(context.Background(), h.deps)

	navigate(app, router.LoginPath)

	assert.Equal(t, router.RouteHome, app.current.Route.Name)
	assert.Equal(t, "You are already logged in", app.notice)
}

func TestApp_UnknownPath(t *testing.T) {
	h := newHarness(t)
	app := New(context.Background(), h.deps)

	navigate(app, "/nowhere")

	assert.Equal(t, router.RouteHome, app.current.Route.Name)
	assert.Contains(t, app.notice, "no route matches")
}

func TestApp_LogoutClearsSessionAndRebuildsMenu(t *testing.T) {
	h := newHarness(t)
	h.login(t, fakeapi.DemoUser, fakeapi.DemoUserPassword)
	app := New(context.Background(), h.deps)
	require.Contains(t, app.View(), "Log out")

	app.Update(screen.LogoutMsg{})

	assert.False(t, h.deps.Session.IsAuthenticated())
	assert.Equal(t, "Logged out", app.notice)
	view := app.View()
	assert.Contains(t, view, "Log in")
	assert.NotContains(t, view, "Log out")
}

func TestApp_ExpiredSessionForcesLogin(t *testing.T) {
	h := newHarness(t)
	h.login(t, fakeapi.DemoUser, fakeapi.DemoUserPassword)
	app := New(context.Background(), h.deps)
	navigate(app, router.UploadPath)
	require.IsType(t, &upload.Upload{}, app.screen)

	h.fake.RevokeTokens()
	_, err := h.deps.Client.Auth().Me(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.Len(t, h.forced, 1)

	app.Update(navigatedMsg{nav: h.forced[0]})

	assert.False(t, h.deps.Session.IsAuthenticated())
	assert.Equal(t, router.RouteLogin, app.current.Route.Name)
	assert.IsType(t, &login.Login{}, app.screen)
	assert.Contains(t, app.notice, "session has ended")
}

func TestApp_ForcedLoginKeepsOpenLoginScreen(t *testing.T) {
	h := newHarness(t)
	app := New(context.Background(), h.deps)
	navigate(app, "/login?redirect=/upload")
	before := app.screen

	// A failed login attempt is a 401 too
	_, err := h.deps.Client.Auth().Login(context.Background(), models.LoginRequest{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	require.Len(t, h.forced, 1)

	app.Update(navigatedMsg{nav: h.forced[0]})

	assert.Same(t, before, app.screen)
	assert.Equal(t, router.UploadPath, app.current.Location.Get(router.RedirectParam))
}

func TestApp_StaleForcedNavigationIgnored(t *testing.T) {
	h := newHarness(t)
	app := New(context.Background(), h.deps)
	nav := h.deps.Navigator.ForceLogin()
	navigate(app, router.MaterialsPath)

	app.Update(navigatedMsg{nav: nav})

	assert.IsType(t, &materials.List{}, app.screen)
}

func TestApp_QuitKeys(t *testing.T) {
	h := newHarness(t)
	app := New(context.Background(), h.deps)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	navigate(app, router.LoginPath)
	assert.True(t, app.capturing(), "login form takes the q key")
}

func TestApp_QuitMsgFromScreen(t *testing.T) {
	h := newHarness(t)
	app := New(context.Background(), h.deps)

	_, cmd := app.Update(screen.QuitMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_HealthBanner(t *testing.T) {
	h := newHarness(t)
	app := New(context.Background(), h.deps)

	h.fake.SetHealthy(false)
	app.Update(app.checkHealth()())
	assert.Contains(t, app.View(), "Backend unreachable")

	h.fake.SetHealthy(true)
	app.Update(app.checkHealth()())
	assert.NotContains(t, app.View(), "Backend unreachable")
}

func TestApp_HeaderShowsUserAndRoute(t *testing.T) {
	h := newHarness(t)
	h.login(t, fakeapi.DemoAdmin, fakeapi.DemoAdminPassword)
	app := New(context.Background(), h.deps)
	navigate(app, router.AdminPath)

	header := app.renderHeader()
	assert.Contains(t, header, "Admin")
	assert.Contains(t, header, "admin (admin)")
}
