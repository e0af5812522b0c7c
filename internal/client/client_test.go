package client

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/atinyakov/portfolio-api/internal/middleware"
	"github.com/atinyakov/portfolio-api/internal/models"
	api "github.com/atinyakov/portfolio-api/internal/server/handler/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authRecorder collects the Authorization headers seen by the test server.
type authRecorder struct {
	mu   sync.Mutex
	seen []string
}

func (a *authRecorder) record(r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen = append(a.seen, r.Header.Get("Authorization"))
}

func (a *authRecorder) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.seen...)
}

// newTestAPI starts a TLS server with a minimal API surface and returns a
// Client that trusts it.
func newTestAPI(t *testing.T) (*Client, *TokenStore, *authRecorder) {
	t.Helper()
	seen := &authRecorder{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "Str0ng!Pass" {
			middleware.WriteJSON(w, http.StatusUnauthorized, middleware.ErrorBody{Error: "Invalid Credentials", Code: middleware.CodeInvalidCredentials})
			return
		}
		middleware.WriteJSON(w, http.StatusOK, api.LoginResponse{AccessToken: "tok-" + req.Email})
	})
	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		seen.record(r)
		var req api.SignupRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		middleware.WriteJSON(w, http.StatusCreated, api.SignupResponse{
			Message: "User Created Successful",
			User:    models.UserSummary{Email: req.Email, Role: models.RoleUser},
		})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		seen.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/profiles/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "p1" {
			middleware.WriteJSON(w, http.StatusNotFound, middleware.ErrorBody{Error: "Profile not found.", Code: middleware.CodeNotFound})
			return
		}
		middleware.WriteJSON(w, http.StatusOK, models.Profile{ID: "p1", Firstname: "Ada"})
	})
	mux.HandleFunc("GET /api/profiles/{id}/projects", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, []models.Project{{ID: "pr1", ProfileID: r.PathValue("id")}})
	})
	mux.HandleFunc("POST /api/contact", func(w http.ResponseWriter, r *http.Request) {
		var req api.ContactRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		middleware.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Email sent successfully."})
	})

	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	caFile := filepath.Join(dir, "ca.crt")
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(caFile, caPEM, 0o600))

	store := NewTokenStore(filepath.Join(dir, "token"))
	c, err := New(srv.URL+"/api/", caFile, store)
	require.NoError(t, err)
	return c, store, seen
}

func TestLoginStoresTokenAndLogoutClearsIt(t *testing.T) {
	c, store, seen := newTestAPI(t)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "a@x.com", "Str0ng!Pass"))
	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-a@x.com", token)

	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, []string{"Bearer tok-a@x.com"}, seen.all())

	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	assert.ErrorIs(t, c.Logout(ctx), ErrNotLoggedIn)
}

func TestLogin_APIError(t *testing.T) {
	c, store, _ := newTestAPI(t)

	err := c.Login(context.Background(), "a@x.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, middleware.CodeInvalidCredentials, apiErr.Code)
	assert.Equal(t, "Invalid Credentials", apiErr.Message)

	token, _ := store.Load()
	assert.Empty(t, token)
}

func TestSignup_SendsStoredToken(t *testing.T) {
	c, store, seen := newTestAPI(t)
	ctx := context.Background()

	user, err := c.Signup(ctx, api.SignupRequest{Email: "new@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", user.Email)

	require.NoError(t, store.Save("admin-token"))
	_, err = c.Signup(ctx, api.SignupRequest{Email: "other@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Bearer admin-token"}, seen.all())
}

func TestPublicReads(t *testing.T) {
	c, _, _ := newTestAPI(t)
	ctx := context.Background()

	p, err := c.Profile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Firstname)

	_, err = c.Profile(ctx, "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	projects, err := c.Projects(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p1", projects[0].ProfileID)

	msg, err := c.Contact(ctx, api.ContactRequest{SenderEmail: "v@y.com", ToProfileID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "Email sent successfully.", msg)
}

func TestNew_UntrustedServer(t *testing.T) {
	srv := httptest.NewTLSServer(http.NotFoundHandler())
	defer srv.Close()

	c, err := New(srv.URL, "", NewTokenStore(filepath.Join(t.TempDir(), "token")))
	require.NoError(t, err)
	_, err = c.Profile(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "certificate"), err.Error())
}

func TestNew_BadCAFile(t *testing.T) {
	_, err := New("https://localhost", filepath.Join(t.TempDir(), "missing.crt"), nil)
	assert.Error(t, err)
}

func TestTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewTokenStore(path)

	token, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Save("abc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear(), "clearing twice is fine")
}

func TestPrompter(t *testing.T) {
	var out strings.Builder
	p := NewPrompter(strings.NewReader("v@y.com\n Vic \nHi\nHello there\n"), &out)

	req := p.Contact("p1")
	assert.Equal(t, api.ContactRequest{
		SenderEmail: "v@y.com",
		SenderName:  "Vic",
		Subject:     "Hi",
		Message:     "Hello there",
		ToProfileID: "p1",
	}, req)
	assert.Contains(t, out.String(), "Your email: ")

	email, password := NewPrompter(strings.NewReader("a@x.com\n"), &out).Login()
	assert.Equal(t, "a@x.com", email)
	assert.Empty(t, password, "missing answers are empty")
}
