package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiltepin/InsuranceAIPOCs/internal/auth"
	"github.com/xiltepin/InsuranceAIPOCs/internal/config"
	"github.com/xiltepin/InsuranceAIPOCs/internal/domain"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-tests",
		Issuer:    "policy-ocr-test",
		TokenTTL:  time.Hour,
	}
}

func TestIssuer_IssueAndValidate(t *testing.T) {
	iss := auth.NewIssuer(testAuthConfig())

	tok, err := iss.Issue("frontend", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Value)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	claims, err := iss.Validate(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "frontend", claims.Subject)
	assert.Equal(t, "policy-ocr-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestIssuer_Issue_RequiresSubjectAndSecret(t *testing.T) {
	_, err := auth.NewIssuer(testAuthConfig()).Issue("", time.Minute)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = auth.NewIssuer(&config.AuthConfig{Issuer: "x"}).Issue("svc", time.Minute)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIssuer_Validate_Rejects(t *testing.T) {
	cfg := testAuthConfig()
	iss := auth.NewIssuer(cfg)

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	base := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   "svc",
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{auth.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
	}

	expired := base()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongAud := base()
	wrongAud.Audience = jwt.ClaimStrings{"access"}
	wrongIssuer := base()
	wrongIssuer.Issuer = "someone-else"

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", sign(base(), jwt.SigningMethodHS256, []byte("other-secret"))},
		{"expired", sign(expired, jwt.SigningMethodHS256, []byte(cfg.JWTSecret))},
		{"wrong audience", sign(wrongAud, jwt.SigningMethodHS256, []byte(cfg.JWTSecret))},
		{"wrong issuer", sign(wrongIssuer, jwt.SigningMethodHS256, []byte(cfg.JWTSecret))},
		{"none algorithm", sign(base(), jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Validate(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
