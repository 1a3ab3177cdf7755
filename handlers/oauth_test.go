package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectoasis/hydroflow/models"
)

// fakeProvider stands in for Google/GitHub with local endpoints.
func fakeProvider(t *testing.T, userJSON string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("code") != "good-code" {
			json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "provider-access-token",
			"refresh_token": "provider-refresh-token",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(userJSON))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func registerFakeProvider(t *testing.T, server *httptest.Server) {
	t.Helper()
	oauthProviders["test"] = oauthProvider{
		name:         "test",
		authURL:      server.URL + "/authorize",
		tokenURL:     server.URL + "/token",
		userInfoURL:  server.URL + "/user",
		scope:        "email",
		clientIDVar:  "TEST_CLIENT_ID",
		secretVar:    "TEST_CLIENT_SECRET",
		redirectPath: "/api/auth/test/callback",
	}
	t.Cleanup(func() { delete(oauthProviders, "test") })
	t.Setenv("TEST_CLIENT_ID", "client-id")
	t.Setenv("TEST_CLIENT_SECRET", "client-secret")
}

func TestOAuthCallbackCreatesAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FRONTEND_URL", "http://front.example")
	db := setupTestDB(t)
	registerFakeProvider(t, fakeProvider(t, `{"id": 424242, "email": "oauth@example.com"}`))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/test/callback?code=good-code", nil)
	w := httptest.NewRecorder()
	OAuthCallback("test")(w, req)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "http://front.example/oauth/callback?token=")

	var admin models.Admin
	require.NoError(t, db.First(&admin, "email = ?", "oauth@example.com").Error)
	assert.True(t, admin.IsAdmin)
	require.NotNil(t, admin.OAuthID)
	assert.Equal(t, "test:424242", *admin.OAuthID)
	require.NotNil(t, admin.AccessToken)
	assert.Equal(t, "provider-access-token", *admin.AccessToken)
	require.NotNil(t, admin.TokenExpiresAt)
}

func TestOAuthCallbackLinksExistingAccountByEmail(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := setupTestDB(t)
	existing := createTestAdmin(t, db, "linked@example.com", nil)
	registerFakeProvider(t, fakeProvider(t, `{"id": "string-id-7", "email": "linked@example.com"}`))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/test/callback?code=good-code", nil)
	w := httptest.NewRecorder()
	OAuthCallback("test")(w, req)
	require.Equal(t, http.StatusFound, w.Code)

	// no duplicate account; the provider identity attached to the old one
	var count int64
	require.NoError(t, db.Model(&models.Admin{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var admin models.Admin
	require.NoError(t, db.First(&admin, "id = ?", existing.ID).Error)
	require.NotNil(t, admin.OAuthID)
	assert.Equal(t, "test:string-id-7", *admin.OAuthID)
}

func TestOAuthCallbackFailsClosed(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := setupTestDB(t)
	registerFakeProvider(t, fakeProvider(t, `{"id": 1, "email": "x@example.com"}`))

	// bad code: provider refuses the exchange
	req := httptest.NewRequest(http.MethodGet, "/api/auth/test/callback?code=stolen", nil)
	w := httptest.NewRecorder()
	OAuthCallback("test")(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// missing code entirely
	req = httptest.NewRequest(http.MethodGet, "/api/auth/test/callback", nil)
	w = httptest.NewRecorder()
	OAuthCallback("test")(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Admin{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOAuthRedirect(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "google-client")
	req := httptest.NewRequest(http.MethodGet, "/api/auth/google", nil)
	w := httptest.NewRecorder()
	OAuthRedirect("google")(w, req)
	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	assert.Contains(t, loc, "accounts.google.com")
	assert.Contains(t, loc, "client_id=google-client")
	assert.Contains(t, loc, "response_type=code")
}

func TestOAuthRedirectUnconfigured(t *testing.T) {
	t.Setenv("GITHUB_CLIENT_ID", "")
	w := httptest.NewRecorder()
	OAuthRedirect("github")(w, httptest.NewRequest(http.MethodGet, "/api/auth/github", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestOAuthUnknownProvider(t *testing.T) {
	w := httptest.NewRecorder()
	OAuthRedirect("myspace")(w, httptest.NewRequest(http.MethodGet, "/api/auth/myspace", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	OAuthCallback("myspace")(w, httptest.NewRequest(http.MethodGet, "/api/auth/myspace/callback?code=x", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
