package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/web-lizzard/review-genie/pkg/domain-errors"
)

var jwtService = NewJWTService("test-signing-key", "review-genie", "review-genie-api")

func Test_GenerateAndValidate(t *testing.T) {
	token, err := jwtService.GenerateAccessToken("ci-bot", "projects:write", time.Hour)
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ci-bot", claims.Subject)
	assert.Equal(t, "projects:write", claims.Scope)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_Rejections(t *testing.T) {
	expired, err := jwtService.GenerateAccessToken("ci-bot", "", -time.Hour)
	require.NoError(t, err)

	otherKey, err := NewJWTService("another-key", "review-genie", "review-genie-api").
		GenerateAccessToken("ci-bot", "", time.Hour)
	require.NoError(t, err)

	otherAudience, err := NewJWTService("test-signing-key", "review-genie", "someone-else").
		GenerateAccessToken("ci-bot", "", time.Hour)
	require.NoError(t, err)

	noSubject, err := jwtService.GenerateAccessToken("", "", time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "ci-bot"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct {
		token   string
		message string
	}{
		"garbage":         {"invalid-token-string", "invalid token"},
		"expired":         {expired, "token has expired"},
		"wrong key":       {otherKey, "invalid token"},
		"wrong audience":  {otherAudience, "invalid token"},
		"missing subject": {noSubject, "token has no subject"},
		"alg none":        {none, "invalid token"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := jwtService.ValidateToken(tc.token)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
			assert.ErrorContains(t, err, tc.message)
		})
	}
}

func Test_AdapterMapsClaims(t *testing.T) {
	token, err := jwtService.GenerateAccessToken("ci-bot", "projects:write", time.Hour)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ci-bot", claims.Subject)
	assert.Equal(t, "projects:write", claims.Scope)
	assert.NotEmpty(t, claims.JTI)
}
