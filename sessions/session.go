package sessions

import (
	"github.com/jrsteele09/gym-dashboard/users"
	"golang.org/x/oauth2"
)

// Session is a point-in-time copy of the operator session.
// User and Token are both set or both nil. The refresh token is only ever persisted,
// so Token.RefreshToken is always empty.
type Session struct {
	User    *users.User
	Token   *oauth2.Token
	Loading bool
}

func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != nil
}

// AccessToken returns the bearer token, or "" when logged out.
func (s Session) AccessToken() string {
	if s.Token == nil {
		return ""
	}
	return s.Token.AccessToken
}
