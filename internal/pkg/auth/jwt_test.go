package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 7 * 24 * time.Hour,
		TokenIssuer:     "curriculum-test",
	})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestService()

	token, err := svc.Issue(42, 3, TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, "curriculum-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.NotNil(t, claims.NotBefore)
	assert.NotNil(t, claims.IssuedAt)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestService()

	pair, err := svc.GenerateTokenPair(7, 0)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, 15*time.Minute, pair.AccessExpiresIn)

	access, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, access.Type)

	refresh, err := svc.ValidateToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.Type)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))
}

func TestValidateToken_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := newTestService().WithClock(func() time.Time { return past })

	token, err := issuer.Issue(1, 0, TokenTypeAccess, 15*time.Minute)
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateToken_BadSignature(t *testing.T) {
	other := NewJWTService(JWTConfig{SecretKey: "other-secret", TokenIssuer: "curriculum-test"})
	token, err := other.Issue(1, 0, TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateToken_Tampered(t *testing.T) {
	svc := newTestService()
	token, err := svc.Issue(1, 0, TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.ValidateToken(tampered)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		Type: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "curriculum-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateToken_Malformed(t *testing.T) {
	svc := newTestService()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.ValidateToken(token)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid, token)
	}
}

func TestValidateToken_BadSubject(t *testing.T) {
	claims := &Claims{
		Type: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "curriculum-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("bearer xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, apperrors.ErrMissingToken)

	_, err = ExtractBearerToken("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, apperrors.ErrInvalidFormat)

	_, err = ExtractBearerToken("Bearer ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidFormat)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}
