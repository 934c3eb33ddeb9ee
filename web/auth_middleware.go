package web

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// basicAuth rejects requests whose credentials do not match the configured
// operator. The password is compared against a bcrypt hash.
func (h *RouteHandler) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || !h.validCredentials(user, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="ovh-sniper"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *RouteHandler) validCredentials(user, password string) bool {
	if subtle.ConstantTimeCompare([]byte(user), []byte(h.cfg.ControlUserName)) != 1 {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(h.cfg.ControlPasswordHash), []byte(password)) == nil
}
