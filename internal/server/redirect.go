package server

import (
	"net/http"
	"strings"
)

func (s *Service) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// redirectLocal redirects to target when it is a path on this site and to
// fallback otherwise.
func (s *Service) redirectLocal(w http.ResponseWriter, r *http.Request, target, fallback string) {
	if !isLocalPath(target) {
		target = fallback
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func isLocalPath(target string) bool {
	if !strings.HasPrefix(target, "/") {
		return false
	}
	// "//host" and "/\host" are treated as absolute by browsers
	return !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, `/\`)
}
