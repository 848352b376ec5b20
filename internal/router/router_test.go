package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"userauth/internal/auth"
	"userauth/internal/cache"
	"userauth/internal/handler"
	"userauth/internal/logger"
	"userauth/internal/model"
	"userauth/internal/repository"
	"userauth/internal/service"
	"userauth/internal/testutil"
)

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithCache(t, nil)
}

func newTestServerWithCache(t *testing.T, userCache *cache.Client) *testServer {
	t.Helper()
	gdb := testutil.NewSQLiteDB(t)

	userRepo := repository.NewUserRepository(gdb)
	tokenRepo := repository.NewAuthTokenRepository(gdb)
	jwtService := auth.NewJWTService("test-secret")

	userService := service.NewUserService(userRepo, userCache)
	sessionService := service.NewSessionService(userRepo, auth.NewTokenIssuer(jwtService, tokenRepo))
	gate := auth.NewGate(tokenRepo, userRepo)

	e := echo.New()
	Register(e, logger.Nop(), Handlers{
		Users:    handler.NewUserHandler(userService, sessionService),
		Sessions: handler.NewSessionHandler(sessionService),
		Home:     handler.NewHomeHandler(),
	}, gate)

	return &testServer{e: e, db: gdb}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, strings.NewReader(string(payload)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) signUp(t *testing.T, name, email, password string) (uint, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v2/users", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	user := body["user"].(map[string]interface{})
	return uint(user["id"].(float64)), body["token"].(string)
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v2/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(t, rec)["token"].(string)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "Jane", "a@x.com", "secret1")

	rec := s.do(t, http.MethodPost, "/api/v2/login", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "Welcome Jane 👍", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "a@x.com", user["email"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "PasswordHash")

	rec = s.do(t, http.MethodPost, "/api/v2/login", "", map[string]string{"email": "A@X.COM", "password": "secret1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v2/login", "", map[string]string{"email": "a@x.com", "password": "wrong_password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password ❌")

	rec = s.do(t, http.MethodPost, "/api/v2/login", "", map[string]string{"email": "nobody@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password ❌")
}

func TestLogin_FormEncoded(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "Jane", "a@x.com", "secret1")

	form := url.Values{"email": {"a@x.com"}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v2/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token")
}

func TestAuthGate(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUp(t, "Jane", "a@x.com", "secret1")

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "garbage token", header: "Bearer garbage", wantStatus: http.StatusUnauthorized, wantBody: "Token Doesn't Exist"},
		{name: "no header", header: "", wantStatus: http.StatusUnauthorized, wantBody: "Token Doesn't Exist"},
		{name: "malformed header", header: token, wantStatus: http.StatusUnauthorized, wantBody: "Token Doesn't Exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/api/v2/users", "/api/v2/home"} {
				req := httptest.NewRequest(http.MethodGet, path, nil)
				if tt.header != "" {
					req.Header.Set(echo.HeaderAuthorization, tt.header)
				}
				rec := httptest.NewRecorder()
				s.e.ServeHTTP(rec, req)

				assert.Equal(t, tt.wantStatus, rec.Code, path)
				assert.Contains(t, rec.Body.String(), tt.wantBody, path)
			}
		})
	}
}

func TestAuthGate_ResolvesLoggedInUser(t *testing.T) {
	s := newTestServer(t)
	janeID, _ := s.signUp(t, "Jane", "a@x.com", "secret1")
	s.signUp(t, "Bob", "b@x.com", "secret1")

	token := s.login(t, "a@x.com", "secret1")

	var tokenRow model.AuthToken
	require.NoError(t, s.db.Where("token_digest = ?", token).First(&tokenRow).Error)
	assert.Equal(t, janeID, tokenRow.UserID)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/v2/users/%d", janeID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", decode(t, rec)["user"].(map[string]interface{})["email"])
}

func TestAuthGate_OrphanedToken(t *testing.T) {
	s := newTestServer(t)
	janeID, token := s.signUp(t, "Jane", "a@x.com", "secret1")

	// Remove the user behind the gate's back, leaving the token row.
	require.NoError(t, s.db.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, s.db.Exec("DELETE FROM users WHERE id = ?", janeID).Error)
	require.NoError(t, s.db.Exec("PRAGMA foreign_keys = ON").Error)

	rec := s.do(t, http.MethodGet, "/api/v2/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestAuthGate_OrphanedTokenWithCachedUser(t *testing.T) {
	mr := miniredis.RunT(t)
	userCache := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = userCache.Close() })

	s := newTestServerWithCache(t, userCache)
	janeID, token := s.signUp(t, "Jane", "a@x.com", "secret1")

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/v2/users/%d", janeID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, mr.Exists(fmt.Sprintf("user:%d", janeID)))

	require.NoError(t, s.db.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, s.db.Exec("DELETE FROM users WHERE id = ?", janeID).Error)
	require.NoError(t, s.db.Exec("PRAGMA foreign_keys = ON").Error)

	rec = s.do(t, http.MethodGet, "/api/v2/home", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	janeID, _ := s.signUp(t, "Jane", "a@x.com", "secret1")
	token := s.login(t, "a@x.com", "secret1")

	rec := s.do(t, http.MethodDelete, "/api/v2/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logged Out!")

	var count int64
	require.NoError(t, s.db.Model(&model.AuthToken{}).Where("user_id = ?", janeID).Count(&count).Error)
	assert.Zero(t, count)

	rec = s.do(t, http.MethodDelete, "/api/v2/logout", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token Doesn't Exist")

	rec = s.do(t, http.MethodGet, "/api/v2/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token Doesn't Exist")
	assert.NotContains(t, rec.Body.String(), "Invalid token")
}

func TestLogout_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodDelete, "/api/v2/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_ReplacesPreviousToken(t *testing.T) {
	s := newTestServer(t)
	_, signUpToken := s.signUp(t, "Jane", "a@x.com", "secret1")

	first := s.login(t, "a@x.com", "secret1")
	assert.NotEqual(t, signUpToken, first)
	second := s.login(t, "a@x.com", "secret1")

	rec := s.do(t, http.MethodGet, "/api/v2/home", first, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v2/home", second, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"home":[]}`, rec.Body.String())

	var count int64
	require.NoError(t, s.db.Model(&model.AuthToken{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestV1Users(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/users", "", map[string]string{
		"name": "John", "email": "john@example.com", "password": "password", "password_confirmation": "password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "User created successfully 👍", body["message"])
	assert.NotContains(t, body, "token")
	id := uint(body["user"].(map[string]interface{})["id"].(float64))

	rec = s.do(t, http.MethodGet, "/api/v1/users", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["users"], 1)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", id), "", map[string]string{"name": "Jane"})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "User updated successfully 👍", body["message"])
	assert.Equal(t, "Jane", body["user"].(map[string]interface{})["name"])

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", id), "", map[string]string{"email": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["errors"])

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", id), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User deleted successfully ❌")

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/users/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUser_Validation(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "Jane", "a@x.com", "secret1")

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{name: "blank email", body: map[string]string{"name": "X", "email": "", "password": "secret1"}, want: "Email can't be blank"},
		{name: "duplicate email", body: map[string]string{"name": "X", "email": "A@x.com", "password": "secret1"}, want: "Email has already been taken"},
		{name: "short password", body: map[string]string{"name": "X", "email": "x@x.com", "password": "abc"}, want: "Password is too short (minimum is 6 characters)"},
		{name: "missing name", body: map[string]string{"email": "y@x.com", "password": "secret1"}, want: "Name can't be blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/api/v1/users", "/api/v2/users"} {
				rec := s.do(t, http.MethodPost, path, "", tt.body)
				assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, path)
				assert.Contains(t, decode(t, rec)["errors"], tt.want, path)
			}
		})
	}

	var count int64
	require.NoError(t, s.db.Model(&model.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestV2Users_GuardedExceptCreate(t *testing.T) {
	s := newTestServer(t)
	janeID, token := s.signUp(t, "Jane", "a@x.com", "secret1")
	userPath := fmt.Sprintf("/api/v2/users/%d", janeID)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v2/users"},
		{http.MethodGet, userPath},
		{http.MethodPut, userPath},
		{http.MethodPatch, userPath},
		{http.MethodDelete, userPath},
	} {
		rec := s.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}

	rec := s.do(t, http.MethodPatch, userPath, token, map[string]string{"name": "Janet"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, userPath, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, s.db.Model(&model.AuthToken{}).Count(&count).Error)
	assert.Zero(t, count)

	rec = s.do(t, http.MethodGet, "/api/v2/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token Doesn't Exist")
}
