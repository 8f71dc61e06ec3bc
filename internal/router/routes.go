// ABOUTME: Route table of the client: names, path patterns and access requirements
// ABOUTME: Patterns are compiled and matched with gorilla/mux

package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
)

// Route names
const (
	RouteRoot           = "root"
	RouteHome           = "home"
	RouteMaterials      = "materials"
	RouteMaterialDetail = "material-detail"
	RouteUpload         = "upload"
	RouteLogin          = "login"
	RouteAdmin          = "admin"
	RouteAdminMaterials = "admin-materials"
	RouteAdminUsers     = "admin-users"
)

// Well-known paths
const (
	RootPath  = "/"
	HomePath  = "/home"
	LoginPath = "/login"

	MaterialsPath      = "/materials"
	UploadPath         = "/upload"
	AdminPath          = "/admin"
	AdminMaterialsPath = "/admin/materials"
	AdminUsersPath     = "/admin/users"
)

// RedirectParam is the login query parameter carrying the originally
// requested location
const RedirectParam = "redirect"

var (
	// ErrAdminRequiresAuth rejects a route that requires admin without auth
	ErrAdminRequiresAuth = errors.New("route requires admin but not auth")
	ErrDuplicateRoute    = errors.New("duplicate route name")
	ErrEmptyRoute        = errors.New("route name and path must be set")
)

// Route is one navigable location
type Route struct {
	Name          string
	Path          string // mux pattern, e.g. /materials/{id:[0-9]+}
	Title         string
	Redirect      string // when set, navigating here continues to this path
	RequiresAuth  bool
	RequiresAdmin bool
}

// DefaultRoutes returns the client's route table
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteRoot, Path: RootPath, Redirect: HomePath},
		{Name: RouteHome, Path: HomePath, Title: "Home"},
		{Name: RouteMaterials, Path: MaterialsPath, Title: "Materials"},
		{Name: RouteMaterialDetail, Path: "/materials/{id:[0-9]+}", Title: "Material"},
		{Name: RouteUpload, Path: UploadPath, Title: "Upload", RequiresAuth: true},
		{Name: RouteLogin, Path: LoginPath, Title: "Login"},
		{Name: RouteAdmin, Path: AdminPath, Title: "Admin", RequiresAuth: true, RequiresAdmin: true},
		{Name: RouteAdminMaterials, Path: AdminMaterialsPath, Title: "Moderation", RequiresAuth: true, RequiresAdmin: true},
		{Name: RouteAdminUsers, Path: AdminUsersPath, Title: "Users", RequiresAuth: true, RequiresAdmin: true},
	}
}

// Table is a validated, compiled route table
type Table struct {
	routes []Route
	byName map[string]Route
	mux    *mux.Router
}

// NewTable validates routes and compiles their patterns
func NewTable(routes []Route) (*Table, error) {
	t := &Table{
		routes: append([]Route(nil), routes...),
		byName: make(map[string]Route, len(routes)),
		mux:    mux.NewRouter(),
	}

	for _, r := range routes {
		if r.Name == "" || r.Path == "" {
			return nil, fmt.Errorf("%w: %+v", ErrEmptyRoute, r)
		}
		if r.RequiresAdmin && !r.RequiresAuth {
			return nil, fmt.Errorf("%w: %s", ErrAdminRequiresAuth, r.Name)
		}
		if _, dup := t.byName[r.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, r.Name)
		}
		route := t.mux.NewRoute().Name(r.Name).Path(r.Path)
		if err := route.GetError(); err != nil {
			return nil, fmt.Errorf("invalid path %q for route %s: %w", r.Path, r.Name, err)
		}
		t.byName[r.Name] = r
	}
	return t, nil
}

// MustTable is NewTable that panics, for tables fixed at compile time.
func MustTable(routes []Route) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
	return t
}

// DefaultTable compiles DefaultRoutes
func DefaultTable() *Table {
	return MustTable(DefaultRoutes())
}

// Routes returns the routes in declaration order
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Route looks a route up by name
func (t *Table) Route(name string) (Route, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// URL builds the path of a named route from name/value pairs
func (t *Table) URL(name string, pairs ...string) (string, error) {
	r := t.mux.Get(name)
	if r == nil {
		return "", fmt.Errorf("unknown route %q", name)
	}
	u, err := r.URLPath(pairs...)
	if err != nil {
		return "", err
	}
	return u.Path, nil
}

// Match is a resolved location
type Match struct {
	Route    Route
	Params   map[string]string
	Location Location
}

// Resolve finds the route for loc
func (t *Table) Resolve(loc Location) (Match, bool) {
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: loc.Path}}
	var rm mux.RouteMatch
	if !t.mux.Match(req, &rm) || rm.MatchErr != nil || rm.Route == nil {
		return Match{}, false
	}
	route, ok := t.byName[rm.Route.GetName()]
	if !ok {
		return Match{}, false
	}
	return Match{Route: route, Params: rm.Vars, Location: loc}, true
}

// Location is a path plus query, as navigated to
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation parses "/path?query". A missing leading slash is added and
// a trailing slash dropped.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: %w", raw, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return Location{}, fmt.Errorf("invalid location %q: must be a path", raw)
	}

	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}

	loc := Location{Path: p}
	if q := u.Query(); len(q) > 0 {
		loc.Query = q
	}
	return loc, nil
}

// MustLocation is ParseLocation that panics on error
func MustLocation(raw string) Location {
	loc, err := ParseLocation(raw)
	if err != nil {
		panic(err)
	}
	return loc
}

// String renders the full path. Slashes inside query values stay literal,
// so /login?redirect=/upload reads naturally.
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + strings.ReplaceAll(l.Query.Encode(), "%2F", "/")
}

// Get returns the first value of the query key
func (l Location) Get(key string) string {
	return l.Query.Get(key)
}
