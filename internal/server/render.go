package server

import (
	"bytes"
	"net/http"

	"dmadmin/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	return s.renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

// renderTemplateStatus executes a page template into a buffer so a template
// error never leaves a half written page behind.
func (s *Service) renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) error {
	actor, authenticated := actorFromContext(r.Context())

	if setter, ok := data.(types.NavbarDataSetter); ok {
		setter.SetNavbarData(types.NavbarData{
			IsAuthenticated: authenticated,
			UserEmail:       actor.Email,
			Role:            actor.Role,
		})
	}

	// Error pages leave pending flashes for the next successful page
	if setter, ok := data.(types.FlashSetter); ok && status < http.StatusBadRequest {
		setter.SetFlashes(s.consumeFlashes(w, r))
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
