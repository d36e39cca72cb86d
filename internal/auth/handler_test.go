package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookieName = "token"

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    *AccountResponse `json:"user"`
}

func newTestRouter(env *testEnv) http.Handler {
	handler := NewHandler(env.service, CookieOptions{Name: testCookieName, MaxAge: 24 * time.Hour})
	mw := NewMiddleware(env.service, testCookieName)

	r := chi.NewRouter()
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", handler.Signup)
		r.Post("/verify-email", handler.VerifyEmail)
		r.Post("/login", handler.Login)
		r.Post("/logout", handler.Logout)
		r.Post("/forgot-password", handler.ForgotPassword)
		r.Post("/reset-password/{token}", handler.ResetPassword)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)
			r.Get("/check-auth", handler.CheckAuth)
			r.Post("/resend-verification", handler.ResendVerification)
		})
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", testCookieName)
	return nil
}

func TestHandler_Signup(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)

	rec, resp := do(t, h, http.MethodPost, "/api/auth/signup", `{"email":"jane@example.com","name":"Jane","password":"pw"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "User created successfully", resp.Message)
	require.NotNil(t, resp.User)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.False(t, resp.User.IsVerified)

	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cookie.MaxAge)

	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "verification")
}

func TestHandler_Signup_Errors(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)
	env.signup(t, "taken@example.com", "Taken", "pw")

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"missing fields", `{"email":"jane@example.com"}`, http.StatusBadRequest, "All fields are required"},
		{"bad email", `{"email":"nope","name":"Jane","password":"pw"}`, http.StatusBadRequest, "Invalid email address"},
		{"duplicate", `{"email":"taken@example.com","name":"Jane","password":"pw"}`, http.StatusBadRequest, "User already exists"},
		{"bad json", `{`, http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := do(t, h, http.MethodPost, "/api/auth/signup", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestHandler_Signup_MailFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.err = assert.AnError
	h := newTestRouter(env)

	rec, resp := do(t, h, http.MethodPost, "/api/auth/signup", `{"email":"jane@example.com","name":"Jane","password":"pw"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error", resp.Message)
	sessionCookie(t, rec)
}

func TestHandler_VerifyEmail(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)
	env.signup(t, "jane@example.com", "Jane", "pw")
	code := env.mailer.code("jane@example.com")

	rec, resp := do(t, h, http.MethodPost, "/api/auth/verify-email", `{"code":"000000"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired verification code", resp.Message)

	// numeric codes are accepted too
	rec, resp = do(t, h, http.MethodPost, "/api/auth/verify-email", `{"code":`+code+`}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email verified successfully", resp.Message)
	require.NotNil(t, resp.User)
	assert.True(t, resp.User.IsVerified)
}

func TestHandler_LoginAndCheckAuth(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)
	env.signup(t, "jane@example.com", "Jane", "secret")

	rec, resp := do(t, h, http.MethodPost, "/api/auth/login", `{"email":"jane@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", resp.Message)

	rec, resp = do(t, h, http.MethodPost, "/api/auth/login", `{"email":"ghost@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", resp.Message)

	rec, resp = do(t, h, http.MethodPost, "/api/auth/login", `{"email":"jane@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged in successfully", resp.Message)
	cookie := sessionCookie(t, rec)

	rec, resp = do(t, h, http.MethodGet, "/api/auth/check-auth", "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.User)
	assert.Equal(t, "Jane", resp.User.Name)
}

func TestHandler_CheckAuth_Unauthorized(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)

	rec, resp := do(t, h, http.MethodGet, "/api/auth/check-auth", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized - no token provided", resp.Message)

	rec, resp = do(t, h, http.MethodGet, "/api/auth/check-auth", "", &http.Cookie{Name: testCookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized - invalid token", resp.Message)
}

func TestHandler_CheckAuth_BearerHeader(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)
	_, token := env.signup(t, "jane@example.com", "Jane", "pw")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check-auth", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Logout(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)
	_, token := env.signup(t, "jane@example.com", "Jane", "pw")
	cookie := &http.Cookie{Name: testCookieName, Value: token}

	rec, resp := do(t, h, http.MethodPost, "/api/auth/logout", "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", resp.Message)
	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	rec, _ = do(t, h, http.MethodGet, "/api/auth/check-auth", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// logging out without a session still succeeds and clears the cookie
	rec, _ = do(t, h, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	cleared = sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestHandler_ForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)
	env.signup(t, "jane@example.com", "Jane", "old")

	rec, resp := do(t, h, http.MethodPost, "/api/auth/forgot-password", `{"email":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email is required", resp.Message)

	rec, resp = do(t, h, http.MethodPost, "/api/auth/forgot-password", `{"email":"ghost@example.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", resp.Message)

	rec, resp = do(t, h, http.MethodPost, "/api/auth/forgot-password", `{"email":"jane@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password reset link sent to your email", resp.Message)
	token := env.mailer.resetToken("jane@example.com")

	rec, resp = do(t, h, http.MethodPost, "/api/auth/reset-password/"+token, `{"password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password is required", resp.Message)

	rec, resp = do(t, h, http.MethodPost, "/api/auth/reset-password/nope", `{"password":"new"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired reset token", resp.Message)

	rec, resp = do(t, h, http.MethodPost, "/api/auth/reset-password/"+token, `{"password":"new"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password reset successfully", resp.Message)

	rec, _ = do(t, h, http.MethodPost, "/api/auth/reset-password/"+token, `{"password":"newer"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/auth/login", `{"email":"jane@example.com","password":"new"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_ResendVerification(t *testing.T) {
	env := newTestEnv(t)
	h := newTestRouter(env)
	_, token := env.signup(t, "jane@example.com", "Jane", "pw")
	cookie := &http.Cookie{Name: testCookieName, Value: token}

	rec, resp := do(t, h, http.MethodPost, "/api/auth/resend-verification", "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Verification code sent", resp.Message)

	rec, _ = do(t, h, http.MethodPost, "/api/auth/verify-email", `{"code":"`+env.mailer.code("jane@example.com")+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = do(t, h, http.MethodPost, "/api/auth/resend-verification", "", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already verified", resp.Message)
}
