package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/maano.go/internal/models"
)

const (
	testSecret   = "test-secret"
	testEmail    = "admin@maano.ai"
	testPassword = "admin123"
)

func newAuthFixture(t *testing.T) (*fixture, *Authenticator) {
	t.Helper()
	a := NewAuthenticator(testSecret, time.Hour, testEmail, testPassword)
	return newFixture(t, healthyAdapters(), WithAuth(a)), a
}

func login(t *testing.T, f *fixture) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/auth/login", map[string]any{"email": " Admin@Maano.ai ", "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeBody(t, w)["data"].(map[string]any)
	user := data["user"].(map[string]any)
	assert.Equal(t, "admin-1", user["id"])
	assert.Equal(t, "admin", user["role"])
	return data["token"].(string)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Empty(t, bearerToken(""))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("Bearer"))
}

func TestAuthDisabledPassesThrough(t *testing.T) {
	f := newFixture(t, healthyAdapters())
	w := f.do(t, http.MethodGet, "/models", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/auth/login", map[string]any{"email": testEmail, "password": testPassword})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f, _ := newAuthFixture(t)

	w := f.do(t, http.MethodGet, "/models", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing bearer token", decodeBody(t, w)["error"])

	w = f.do(t, http.MethodGet, "/v1/models", nil, "Authorization", "Bearer not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid token", decodeBody(t, w)["error"])

	w = f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginAndUseToken(t *testing.T) {
	f, _ := newAuthFixture(t)
	token := login(t, f)

	w := f.do(t, http.MethodGet, "/models", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/chat", map[string]any{"message": "hi", "modelId": "gpt-4"}, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	list, err := f.store.List(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "admin-1", list[0].UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f, _ := newAuthFixture(t)

	w := f.do(t, http.MethodPost, "/auth/login", map[string]any{"email": testEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/auth/login", map[string]any{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	a := NewAuthenticator(testSecret, time.Minute, testEmail, testPassword)
	token, _, err := a.Issue(models.User{ID: "u1"})
	require.NoError(t, err)

	claims, err := a.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)

	a.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = a.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	other := NewAuthenticator("other-secret", time.Minute, "", "")
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestHistoryIsScopedToUser(t *testing.T) {
	f, a := newAuthFixture(t)
	mine := login(t, f)
	theirs, _, err := a.Issue(models.User{ID: "someone-else"})
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/chat", map[string]any{"message": "private", "modelId": "gpt-4"}, "Authorization", "Bearer "+mine)
	require.Equal(t, http.StatusOK, w.Code)
	id := decodeBody(t, w)["data"].(map[string]any)["conversationId"].(string)

	w = f.do(t, http.MethodGet, "/history/"+id, nil, "Authorization", "Bearer "+theirs)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/history", nil, "Authorization", "Bearer "+theirs)
	require.Equal(t, http.StatusOK, w.Code)
	convs := decodeBody(t, w)["data"].(map[string]any)["conversations"].([]any)
	assert.Empty(t, convs)

	w = f.do(t, http.MethodGet, "/history/"+id, nil, "Authorization", "Bearer "+mine)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHistoryLimitCountsOnlyOwnRecords(t *testing.T) {
	f, a := newAuthFixture(t)
	mine := login(t, f)
	theirs, _, err := a.Issue(models.User{ID: "someone-else"})
	require.NoError(t, err)

	for _, tc := range []struct{ token, msg string }{
		{mine, "mine 1"},
		{mine, "mine 2"},
		{theirs, "theirs 1"},
		{theirs, "theirs 2"},
		{theirs, "theirs 3"},
	} {
		w := f.do(t, http.MethodPost, "/chat", map[string]any{"message": tc.msg, "modelId": "gpt-4"}, "Authorization", "Bearer "+tc.token)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := f.do(t, http.MethodGet, "/history?limit=2", nil, "Authorization", "Bearer "+mine)
	require.Equal(t, http.StatusOK, w.Code)
	convs := decodeBody(t, w)["data"].(map[string]any)["conversations"].([]any)
	require.Len(t, convs, 2)
	assert.Equal(t, "mine 2", convs[0].(map[string]any)["prompt"])
	assert.Equal(t, "mine 1", convs[1].(map[string]any)["prompt"])
}
