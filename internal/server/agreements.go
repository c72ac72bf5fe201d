package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"dmadmin/pkg/types"
)

func signedAgreementPath(supplierID int, frameworkSlug, nextStatus string) string {
	path := fmt.Sprintf("/suppliers/%d/agreements/%s", supplierID, url.PathEscape(frameworkSlug))
	if nextStatus != "" {
		path += "?" + url.Values{"next_status": {nextStatus}}.Encode()
	}
	return path
}

func countersignedPath(supplierID int, frameworkSlug string) string {
	return fmt.Sprintf("/suppliers/%d/countersigned-agreements/%s", supplierID, url.PathEscape(frameworkSlug))
}

func (s *Service) handleGetSignedAgreement(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	view, err := s.agreements.Signed(r.Context(), supplierID, r.PathValue("framework"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	data := &types.SignedAgreementPageData{
		BasePageData:      types.BasePageData{Title: view.Supplier.Name + " framework agreement"},
		Supplier:          view.Supplier,
		Framework:         view.Framework,
		SupplierFramework: view.SupplierFramework,
		Lots:              view.Lots,
		AgreementURL:      view.URL,
		AgreementExt:      view.Extension,
		NextStatus:        r.URL.Query().Get("next_status"),
	}
	if err := s.renderTemplate(w, r, "page.signed_agreement", data); err != nil {
		s.logger.WithError(err).Error("failed to render signed agreement page")
		s.internalServerError(w)
	}
}

type agreementAction func(ctx context.Context, agreementID int, actor types.Actor) (*types.Agreement, error)

func (s *Service) handlePostAgreementOnHold(w http.ResponseWriter, r *http.Request) {
	s.agreementDecision(w, r, "The agreement for %s was put on hold.", s.agreements.PutOnHold)
}

func (s *Service) handlePostAgreementApprove(w http.ResponseWriter, r *http.Request) {
	s.agreementDecision(w, r, "The agreement for %s was approved. They will receive a countersigned version soon.", s.agreements.Approve)
}

// agreementDecision applies an on-hold or approve decision and moves on to
// the next agreement in the review queue. next_status is passed through
// unvalidated.
func (s *Service) agreementDecision(w http.ResponseWriter, r *http.Request, message string, decide agreementAction) {
	actor, _ := actorFromContext(r.Context())

	agreementID, err := pathInt(r, "agreementID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, types.NewValidationError("nameOfOrganisation", "invalid_form"))
		return
	}
	form := new(AgreementActionForm)
	if err := decoder.Decode(form, r.PostForm); err != nil {
		s.renderError(w, r, types.NewValidationError("nameOfOrganisation", "invalid_form"))
		return
	}

	agreement, err := decide(r.Context(), agreementID, actor)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.addFlash(w, r, "message", fmt.Sprintf(message, form.NameOfOrganisation))

	query := url.Values{"supplier_id": {strconv.Itoa(agreement.SupplierID)}}
	if status := r.URL.Query().Get("next_status"); status != "" {
		query.Set("status", status)
	}
	http.Redirect(w, r, fmt.Sprintf("/agreements/%s/next?%s", url.PathEscape(agreement.FrameworkSlug), query.Encode()), http.StatusSeeOther)
}

func (s *Service) handleGetNextAgreement(w http.ResponseWriter, r *http.Request) {
	frameworkSlug := r.PathValue("framework")
	status := r.URL.Query().Get("status")

	// Without a current supplier the queue starts from the beginning
	supplierID, _ := strconv.Atoi(r.URL.Query().Get("supplier_id"))

	next, err := s.agreements.Next(r.Context(), frameworkSlug, supplierID, status)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if next == nil {
		s.addFlash(w, r, "message", "There are no more agreements to review.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, signedAgreementPath(next.SupplierID, frameworkSlug, status), http.StatusSeeOther)
}

func (s *Service) handleGetAgreementDocument(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	location, err := s.agreements.DocumentURL(r.Context(), supplierID, r.PathValue("framework"), r.PathValue("document"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, location, http.StatusFound)
}

func (s *Service) handleGetLegacyAgreement(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	location, err := s.agreements.AgreementURL(r.Context(), supplierID, r.PathValue("framework"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, location, http.StatusFound)
}

func (s *Service) handleGetCountersignedAgreement(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	view, err := s.agreements.Countersigned(r.Context(), supplierID, r.PathValue("framework"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	data := &types.CountersignedAgreementPageData{
		BasePageData: types.BasePageData{Title: "Countersigned agreement"},
		Supplier:     view.Supplier,
		Framework:    view.Framework,
		Document:     view.Document,
	}
	if err := s.renderTemplate(w, r, "page.countersigned_agreement", data); err != nil {
		s.logger.WithError(err).Error("failed to render countersigned agreement page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostCountersignedAgreement(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	frameworkSlug := r.PathValue("framework")

	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := s.parseUploadForm(w, r); err != nil {
		s.renderError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	upload, err := formUpload(r, types.UploadCountersignedAgreement)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if upload == nil {
		if err := s.agreements.CheckCountersignable(r.Context(), supplierID, frameworkSlug); err != nil {
			s.renderError(w, r, err)
			return
		}
	} else {
		defer closeUpload(upload)

		_, err = s.agreements.UploadCountersigned(r.Context(), supplierID, frameworkSlug, upload, actor)

		var validationErr *types.ValidationError
		switch {
		case errors.As(err, &validationErr):
			s.addFlash(w, r, validationErr.Code, validationErr.Field)
		case err != nil:
			s.renderError(w, r, err)
			return
		default:
			s.addFlash(w, r, "upload_countersigned_agreement", types.UploadCountersignedAgreement)
		}
	}

	http.Redirect(w, r, countersignedPath(supplierID, frameworkSlug), http.StatusSeeOther)
}

// handleGetRemoveCountersignedAgreement asks for confirmation on the
// countersigned agreement page.
func (s *Service) handleGetRemoveCountersignedAgreement(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.addFlash(w, r, "remove_countersigned_agreement", types.UploadCountersignedAgreement)
	http.Redirect(w, r, countersignedPath(supplierID, r.PathValue("framework")), http.StatusSeeOther)
}

func (s *Service) handlePostRemoveCountersignedAgreement(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	frameworkSlug := r.PathValue("framework")

	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := s.agreements.RemoveCountersigned(r.Context(), supplierID, frameworkSlug, actor); err != nil {
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, countersignedPath(supplierID, frameworkSlug), http.StatusSeeOther)
}

// parseUploadForm parses a multipart form bounded by the configured upload
// size. Oversized bodies are a validation error.
func (s *Service) parseUploadForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSizeBytes)

	if err := r.ParseMultipartForm(s.config.MaxUploadSizeBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return types.NewValidationError("file", "file_too_large")
		}
		return types.NewValidationError("file", "invalid_form")
	}
	return nil
}

// formUpload returns the file posted in field, or nil when the field was
// left empty.
func formUpload(r *http.Request, field string) (*types.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s upload: %w", field, err)
	}
	if header.Filename == "" {
		file.Close()
		return nil, nil
	}

	return newUpload(field, file, header), nil
}

func newUpload(field string, file multipart.File, header *multipart.FileHeader) *types.Upload {
	return &types.Upload{
		Field:       field,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

func closeUpload(upload *types.Upload) {
	if c, ok := upload.Body.(io.Closer); ok {
		_ = c.Close()
	}
}
