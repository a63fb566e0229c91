package jwt_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/gym-dashboard/token/jwt"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwtlib.MapClaims) string {
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("backend-only-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	exp := time.Unix(1760000000, 0)
	raw := signed(t, jwtlib.MapClaims{
		"sub":   "u-1",
		"email": "asha@gym.test",
		"role":  "staff",
		"iat":   exp.Add(-time.Hour).Unix(),
		"exp":   exp.Unix(),
	})

	claims, err := jwt.Inspect(raw)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.Sub)
	require.Equal(t, "asha@gym.test", claims.Email)
	require.Equal(t, "staff", claims.Role)
	require.True(t, exp.Equal(claims.Exp))
	require.True(t, exp.Add(-time.Hour).Equal(claims.Iat))
}

func TestExpiryFromToken(t *testing.T) {
	exp := time.Unix(1760000900, 0)

	got, err := jwt.ExpiryFromToken(signed(t, jwtlib.MapClaims{"sub": "u-1", "exp": exp.Unix()}))
	require.NoError(t, err)
	require.True(t, exp.Equal(got))

	_, err = jwt.ExpiryFromToken(signed(t, jwtlib.MapClaims{"sub": "u-1"}))
	require.ErrorIs(t, err, jwt.ErrNoExpiry)

	_, err = jwt.ExpiryFromToken("opaque-token")
	require.Error(t, err)

	_, err = jwt.ExpiryFromToken("  ")
	require.Error(t, err)
}
