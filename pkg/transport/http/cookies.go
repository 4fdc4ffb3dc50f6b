package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vorlage-dev/vorlage/pkg/auth"
)

// setSessionCookie issues the session cookie. The cookie is HttpOnly and
// SameSite=Lax; the value is the session id, which is the credential.
func (a *Adapter) setSessionCookie(w http.ResponseWriter, sessionID uuid.UUID) {
	cookie := &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    sessionID.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if a.cfg.SessionTTL > 0 {
		cookie.MaxAge = int(a.cfg.SessionTTL.Seconds())
	}
	http.SetCookie(w, cookie)
}

// clearSessionCookie expires the session cookie on the client.
func (a *Adapter) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
