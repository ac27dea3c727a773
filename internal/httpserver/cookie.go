package httpserver

import (
	"net/http"
	"time"
)

type CookieOptions struct {
	Name   string
	Domain string
	Secure bool
}

// Create builds the session cookie. A non-persistent cookie carries no
// expiry so the browser drops it when it closes.
func (o CookieOptions) Create(value string, expires time.Time, persistent bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if persistent {
		cookie.Expires = expires
	}
	return cookie
}

func (o CookieOptions) Delete() *http.Cookie {
	return &http.Cookie{
		Name:     o.Name,
		Value:    "",
		Path:     "/",
		Domain:   o.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
