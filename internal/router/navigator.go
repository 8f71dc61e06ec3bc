// ABOUTME: Stateful navigator holding the current location
// ABOUTME: Runs route redirects and the guard before every move and notifies subscribers

package router

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// maxHops bounds redirect chains
const maxHops = 8

var (
	ErrNoRoute      = errors.New("no route matches")
	ErrRedirectLoop = errors.New("too many redirects")
	ErrNotNavigated = errors.New("navigator has no current location")
)

// Navigation describes a completed move
type Navigation struct {
	From      Location
	To        Location
	Requested Location
	Route     Route
	Params    map[string]string
	// Denied is set when the guard redirected away from the request
	Denied bool
	// Reason is the first guard reason, when Denied
	Reason string
	// Forced is set for ForceLogin
	Forced bool
}

// Navigator is safe for concurrent use
type Navigator struct {
	table   *Table
	session SessionView
	logger  *slog.Logger

	mu      sync.Mutex
	current *Match
	nextID  int
	subs    map[int]func(Navigation)
}

func NewNavigator(table *Table, session SessionView, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		table:   table,
		session: session,
		logger:  logger,
		subs:    make(map[int]func(Navigation)),
	}
}

// Table returns the route table
func (n *Navigator) Table() *Table {
	return n.table
}

// Resolve computes where a navigation to raw would land without moving.
func (n *Navigator) Resolve(raw string) (Navigation, error) {
	requested, err := ParseLocation(raw)
	if err != nil {
		return Navigation{}, err
	}

	nav := Navigation{Requested: requested}
	loc := requested
	for hop := 0; hop < maxHops; hop++ {
		m, ok := n.table.Resolve(loc)
		if !ok {
			return Navigation{}, fmt.Errorf("%w: %s", ErrNoRoute, loc)
		}

		if m.Route.Redirect != "" {
			next, err := ParseLocation(m.Route.Redirect)
			if err != nil {
				return Navigation{}, err
			}
			if next.Query == nil {
				next.Query = loc.Query
			}
			loc = next
			continue
		}

		d := Guard(m, n.session)
		if !d.Allow {
			if !nav.Denied {
				nav.Denied = true
				nav.Reason = d.Reason
			}
			n.logger.Debug("navigation redirected", "to", m.Location.String(), "redirect", d.Redirect.String(), "reason", d.Reason)
			loc = d.Redirect
			continue
		}

		nav.To = m.Location
		nav.Route = m.Route
		nav.Params = m.Params
		return nav, nil
	}
	return Navigation{}, fmt.Errorf("%w navigating to %s", ErrRedirectLoop, requested)
}

// Navigate moves to raw, following route redirects and guard decisions.
// Subscribers are notified after the move.
func (n *Navigator) Navigate(raw string) (Navigation, error) {
	nav, err := n.Resolve(raw)
	if err != nil {
		return Navigation{}, err
	}
	n.commit(&nav)
	return nav, nil
}

// ForceLogin moves to /login without consulting the guard
func (n *Navigator) ForceLogin() Navigation {
	loc := Location{Path: LoginPath}
	nav := Navigation{Requested: loc, To: loc, Forced: true}
	if m, ok := n.table.Resolve(loc); ok {
		nav.Route = m.Route
		nav.Params = m.Params
	}
	n.commit(&nav)
	return nav
}

// Reload re-runs the guard on the current location, e.g. after logout
func (n *Navigator) Reload() (Navigation, error) {
	cur, ok := n.Current()
	if !ok {
		return Navigation{}, ErrNotNavigated
	}
	return n.Navigate(cur.Location.String())
}

func (n *Navigator) commit(nav *Navigation) {
	n.mu.Lock()
	if n.current != nil {
		nav.From = n.current.Location
	}
	n.current = &Match{Route: nav.Route, Params: nav.Params, Location: nav.To}
	subs := make([]func(Navigation), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	n.logger.Debug("navigated", "from", nav.From.String(), "to", nav.To.String(), "route", nav.Route.Name, "forced", nav.Forced)
	for _, fn := range subs {
		fn(*nav)
	}
}

// Current returns the current location, if any navigation happened
func (n *Navigator) Current() (Match, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Match{}, false
	}
	return *n.current, true
}

// Subscribe registers fn for every completed navigation. The returned
// function removes it.
func (n *Navigator) Subscribe(fn func(Navigation)) (unsubscribe func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}
