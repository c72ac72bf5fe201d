package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"dmadmin/internal/documents"
	"dmadmin/internal/storage"
	"dmadmin/internal/uploads"
	"dmadmin/pkg/types"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

const (
	communicationsKind = "updates/communications"
	clarificationsKind = "updates/clarifications"
)

// communicationFields lists the upload fields of the communications form
// with the rule each must pass and where accepted files are stored.
var communicationFields = []struct {
	field string
	kind  string
	rule  documents.Rule
}{
	{field: types.UploadCommunication, kind: communicationsKind, rule: documents.PDFOrCSV},
	{field: types.UploadClarification, kind: clarificationsKind, rule: documents.PDFOnly},
}

func communicationsPath(frameworkSlug string) string {
	return "/communications/" + url.PathEscape(frameworkSlug)
}

func (s *Service) handleGetCommunications(w http.ResponseWriter, r *http.Request) {
	frameworkSlug := r.PathValue("framework")

	framework, err := s.api.GetFramework(r.Context(), frameworkSlug)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	communication, err := s.latestObject(r.Context(), documents.CommunicationsPrefix(frameworkSlug, communicationsKind))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	clarification, err := s.latestObject(r.Context(), documents.CommunicationsPrefix(frameworkSlug, clarificationsKind))
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	data := &types.CommunicationsPageData{
		BasePageData:  types.BasePageData{Title: framework.Name + " communications"},
		Framework:     framework,
		Communication: communication,
		Clarification: clarification,
	}
	if err := s.renderTemplate(w, r, "page.communications", data); err != nil {
		s.logger.WithError(err).Error("failed to render communications page")
		s.internalServerError(w)
	}
}

func (s *Service) latestObject(ctx context.Context, prefix string) (*types.StoredObject, error) {
	objects, err := s.communications.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	if len(objects) == 0 {
		return nil, nil
	}
	return &objects[0], nil
}

// handlePostCommunications stores whichever of the communication and
// clarification files were posted. Each file is validated and saved on its
// own; one being rejected never stops the other.
func (s *Service) handlePostCommunications(w http.ResponseWriter, r *http.Request) {
	frameworkSlug := r.PathValue("framework")

	if err := s.parseUploadForm(w, r); err != nil {
		s.renderError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var jobs []uploads.Job
	for _, f := range communicationFields {
		upload, err := formUpload(r, f.field)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		if upload == nil {
			continue
		}
		defer closeUpload(upload)

		jobs = append(jobs, uploads.Job{
			Upload: upload,
			Rule:   f.rule,
			Save:   s.saveCommunication(documents.CommunicationsPrefix(frameworkSlug, f.kind)),
		})
	}

	var (
		flashes   []types.Flash
		storeErrs []error
	)
	for _, outcome := range uploads.Process(r.Context(), jobs) {
		var validationErr *types.ValidationError
		switch {
		case outcome.OK():
			s.logger.WithFields(logrus.Fields{
				"framework": frameworkSlug,
				"path":      outcome.Path,
			}).Info("communication uploaded")
			flashes = append(flashes, types.Flash{Category: "upload_communication", Message: outcome.Field})
		case errors.As(outcome.Err, &validationErr):
			flashes = append(flashes, types.Flash{Category: validationErr.Code, Message: validationErr.Field})
		default:
			storeErrs = append(storeErrs, outcome.Err)
		}
	}
	if len(flashes) > 0 {
		s.addFlashes(w, r, flashes...)
	}

	// Files that were stored are still reported on the next page
	if len(storeErrs) > 0 {
		s.renderError(w, r, errors.Join(storeErrs...))
		return
	}

	http.Redirect(w, r, communicationsPath(frameworkSlug), http.StatusSeeOther)
}

// saveCommunication stores accepted files publicly under prefix. The content
// type comes from the file extension, never the client.
func (s *Service) saveCommunication(prefix string) uploads.SaveFunc {
	return func(ctx context.Context, upload *types.Upload) (string, error) {
		path := documents.CommunicationPath(prefix, upload.FileName)
		err := s.communications.Save(ctx, path, upload.Body, storage.SaveOptions{ACL: s3types.ObjectCannedACLPublicRead})
		if err != nil {
			return "", fmt.Errorf("failed to save %s: %w", path, err)
		}
		return path, nil
	}
}
