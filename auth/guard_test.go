package auth_test

import (
	"testing"

	"github.com/jrsteele09/gym-dashboard/auth"
	"github.com/jrsteele09/gym-dashboard/sessions"
	"github.com/jrsteele09/gym-dashboard/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeSessionState struct {
	session sessions.Session
}

func (f *fakeSessionState) Snapshot() sessions.Session { return f.session }

func signedIn(user *users.User) sessions.Session {
	return sessions.Session{User: user, Token: &oauth2.Token{AccessToken: "at-1"}}
}

func TestGuard_Protected(t *testing.T) {
	tests := []struct {
		name       string
		session    sessions.Session
		permission string
		expect     auth.Decision
	}{
		{
			name:    "loading waits",
			session: sessions.Session{Loading: true},
			expect:  auth.Decision{State: auth.StateLoading, Action: auth.ActionWait},
		},
		{
			name:    "no user goes to login",
			session: sessions.Session{},
			expect:  auth.Decision{State: auth.StateUnauthenticated, Action: auth.ActionRedirect, RedirectTo: "/login"},
		},
		{
			name:    "user without token goes to login",
			session: sessions.Session{User: &users.User{Role: users.RoleAdmin}},
			expect:  auth.Decision{State: auth.StateUnauthenticated, Action: auth.ActionRedirect, RedirectTo: "/login"},
		},
		{
			name:    "no permission required renders",
			session: signedIn(staff()),
			expect:  auth.Decision{State: auth.StateAuthorized, Action: auth.ActionRender},
		},
		{
			name:       "missing permission goes to not authorized",
			session:    signedIn(staff(auth.PermViewMembers)),
			permission: auth.PermEditMembers,
			expect:     auth.Decision{State: auth.StateNoPermission, Action: auth.ActionRedirect, RedirectTo: "/not-authorized"},
		},
		{
			name:       "granted permission renders",
			session:    signedIn(staff(auth.PermEditMembers)),
			permission: auth.PermEditMembers,
			expect:     auth.Decision{State: auth.StateAuthorized, Action: auth.ActionRender},
		},
		{
			name:       "admin renders",
			session:    signedIn(&users.User{Role: users.RoleAdmin}),
			permission: auth.PermViewReports,
			expect:     auth.Decision{State: auth.StateAuthorized, Action: auth.ActionRender},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := auth.NewGuard(&fakeSessionState{session: tt.session})
			require.Equal(t, tt.expect, guard.Protected(tt.permission))
		})
	}
}

func TestGuard_PublicOnly(t *testing.T) {
	state := &fakeSessionState{session: sessions.Session{Loading: true}}
	guard := auth.NewGuard(state)
	require.Equal(t, auth.ActionWait, guard.PublicOnly().Action)

	state.session = sessions.Session{}
	require.Equal(t, auth.Decision{State: auth.StateUnauthenticated, Action: auth.ActionRender}, guard.PublicOnly())

	state.session = signedIn(&users.User{Role: users.RoleMember})
	require.Equal(t, auth.Decision{State: auth.StateAuthorized, Action: auth.ActionRedirect, RedirectTo: "/dashboard"}, guard.PublicOnly())
}

func TestState_String(t *testing.T) {
	require.Equal(t, "no_permission", auth.StateNoPermission.String())
	require.Equal(t, "unknown", auth.State(99).String())
}
