package auth

import (
	"net/http"
	"time"
)

// CookieOptions describes the session cookie
type CookieOptions struct {
	Name   string
	Secure bool // set in production, requires HTTPS
	MaxAge time.Duration
}

// SetSessionCookie writes the session token as an HTTP-only cookie
func SetSessionCookie(w http.ResponseWriter, opts CookieOptions, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		Expires:  time.Now().Add(opts.MaxAge),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetSessionTokenFromCookie reads the session token, http.ErrNoCookie when absent or empty
func GetSessionTokenFromCookie(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	if cookie.Value == "" {
		return "", http.ErrNoCookie
	}
	return cookie.Value, nil
}
