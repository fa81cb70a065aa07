package auth

import (
	"net/http"
	"time"
)

// CookieSettings carries the session cookie parameters from config.
type CookieSettings struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// SetSessionCookie stores the opaque session token in an HttpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, cs CookieSettings, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cs.Name,
		Value:    token,
		HttpOnly: true, // XSS protection
		Secure:   cs.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(cs.TTL.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, cs CookieSettings) {
	http.SetCookie(w, &http.Cookie{
		Name:     cs.Name,
		Value:    "",
		HttpOnly: true,
		Secure:   cs.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// TokenFromRequest extracts the session token from the request cookie.
// Returns "" when the cookie is absent.
func TokenFromRequest(r *http.Request, cookieName string) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
