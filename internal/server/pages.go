package server

import (
	"net/http"

	"dmadmin/internal/declarations"
	"dmadmin/pkg/types"
)

type HomePageData struct {
	types.BasePageData
	Frameworks []string
}

type DeclarationPageData struct {
	types.BasePageData
	*declarations.View
}

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	data := &HomePageData{
		BasePageData: types.BasePageData{Title: "Admin"},
		Frameworks:   s.declarations.Frameworks(),
	}

	if err := s.renderTemplate(w, r, "page.home", data); err != nil {
		s.logger.WithError(err).Error("failed to render home page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
