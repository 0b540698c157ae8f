package handler

import (
	"net/http"
	"time"

	"flytrap/internal/auth"
	"flytrap/internal/config"
)

func refreshCookie(cfg config.CookieConfig, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     auth.RefreshTokenCookie,
		Value:    value,
		Path:     cfg.Path,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSiteMode(),
	}
}

// expiredRefreshCookie tells the browser to drop the refresh token right away.
func expiredRefreshCookie(cfg config.CookieConfig) *http.Cookie {
	cookie := refreshCookie(cfg, "", 0)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	return cookie
}
