package server

import (
	"fmt"
	"net/http"
	"net/url"

	"dmadmin/internal/declarations"
	"dmadmin/pkg/types"
)

func declarationPath(supplierID int, frameworkSlug string) string {
	return fmt.Sprintf("/suppliers/%d/edit/declarations/%s", supplierID, url.PathEscape(frameworkSlug))
}

func (s *Service) handleGetDeclaration(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	view, err := s.declarations.Load(r.Context(), supplierID, r.PathValue("framework"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.renderDeclaration(w, r, "page.declaration", view.Supplier.Name+" declaration", view)
}

func (s *Service) handleGetDeclarationSection(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	view, err := s.declarations.Section(r.Context(), supplierID, r.PathValue("framework"), r.PathValue("section"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.renderDeclaration(w, r, "page.declaration_section", view.Section.Name, view)
}

func (s *Service) renderDeclaration(w http.ResponseWriter, r *http.Request, templateName, title string, view *declarations.View) {
	data := &DeclarationPageData{
		BasePageData: types.BasePageData{Title: title},
		View:         view,
	}
	if err := s.renderTemplate(w, r, templateName, data); err != nil {
		s.logger.WithError(err).WithField("template", templateName).Error("failed to render declaration page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostDeclarationSection(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	frameworkSlug := r.PathValue("framework")

	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, types.NewValidationError("declaration", "invalid_form"))
		return
	}

	_, err = s.declarations.ApplySection(r.Context(), supplierID, frameworkSlug, r.PathValue("section"), r.PostForm, actor)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, declarationPath(supplierID, frameworkSlug), http.StatusSeeOther)
}
