// ABOUTME: Navigation guard deciding whether a resolved location may be entered
// ABOUTME: Pure function of the target route and the session state

package router

import (
	"net/url"

	"github.com/materialhub/materialhub-cli/internal/models"
)

// SessionView is the read side of the auth store the guard needs
type SessionView interface {
	IsAuthenticated() bool
	User() *models.User
}

// Decision is the guard's verdict. When Allow is false, navigation
// continues at Redirect.
type Decision struct {
	Allow    bool
	Redirect Location
	Reason   string
}

// Guard reasons
const (
	ReasonLoginRequired = "login required"
	ReasonAdminRequired = "admin privileges required"
	ReasonAlreadyLogged = "already logged in"
)

// Guard applies the access rules in order; the first that matches wins:
//  1. auth required and not authenticated: go to /login?redirect=<target>
//  2. admin required and the user is absent or not admin: go to /
//  3. target is /login while authenticated: go to /
//  4. otherwise allow
func Guard(target Match, s SessionView) Decision {
	authed := s != nil && s.IsAuthenticated()

	if target.Route.RequiresAuth && !authed {
		return Decision{
			Redirect: Location{Path: LoginPath, Query: url.Values{RedirectParam: {target.Location.String()}}},
			Reason:   ReasonLoginRequired,
		}
	}

	if target.Route.RequiresAdmin {
		var user *models.User
		if s != nil {
			user = s.User()
		}
		if user == nil || !user.IsAdmin {
			return Decision{Redirect: Location{Path: RootPath}, Reason: ReasonAdminRequired}
		}
	}

	if target.Location.Path == LoginPath && authed {
		return Decision{Redirect: Location{Path: RootPath}, Reason: ReasonAlreadyLogged}
	}

	return Decision{Allow: true}
}
