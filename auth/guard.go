package auth

import "github.com/jrsteele09/gym-dashboard/sessions"

// Redirect targets used by the guard
const (
	LoginPath         = "/login"
	NotAuthorizedPath = "/not-authorized"
	LandingPath       = "/dashboard"
)

// State is the session state observed for one navigation attempt
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateNoPermission
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateNoPermission:
		return "no_permission"
	case StateAuthorized:
		return "authorized"
	}
	return "unknown"
}

// Action is what the caller should do with the navigation
type Action int

const (
	ActionWait Action = iota
	ActionRedirect
	ActionRender
)

// Decision is the outcome of a guard check. RedirectTo is set only for ActionRedirect.
type Decision struct {
	State      State
	Action     Action
	RedirectTo string
}

// SessionState is the read side of the session manager
type SessionState interface {
	Snapshot() sessions.Session
}

// Guard decides whether a route may be shown.
type Guard struct {
	session SessionState
}

func NewGuard(session SessionState) *Guard {
	return &Guard{session: session}
}

// Protected guards a view that needs a signed in user and, when permission is not empty,
// that capability. Views are rendered inside the authenticated layout.
func (g *Guard) Protected(permission string) Decision {
	snap := g.session.Snapshot()
	switch {
	case snap.Loading:
		return Decision{State: StateLoading, Action: ActionWait}
	case !snap.IsAuthenticated():
		return Decision{State: StateUnauthenticated, Action: ActionRedirect, RedirectTo: LoginPath}
	case permission != "" && !HasPermission(snap.User, permission):
		return Decision{State: StateNoPermission, Action: ActionRedirect, RedirectTo: NotAuthorizedPath}
	}
	return Decision{State: StateAuthorized, Action: ActionRender}
}

// PublicOnly guards the login, register and OTP views. Signed in users are sent to the
// landing page.
func (g *Guard) PublicOnly() Decision {
	snap := g.session.Snapshot()
	switch {
	case snap.Loading:
		return Decision{State: StateLoading, Action: ActionWait}
	case snap.IsAuthenticated():
		return Decision{State: StateAuthorized, Action: ActionRedirect, RedirectTo: LandingPath}
	}
	return Decision{State: StateUnauthenticated, Action: ActionRender}
}
