package server

import (
	"errors"
	"net/http"

	"dmadmin/internal/apiclient"
	"dmadmin/pkg/types"

	"github.com/sirupsen/logrus"
)

// statusFor maps an operation error onto the response status shown to the
// administrator. Data API errors keep their own status.
func statusFor(err error) int {
	var validationErr *types.ValidationError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	}

	if status := apiclient.StatusCode(err); status >= http.StatusBadRequest {
		return status
	}
	return http.StatusInternalServerError
}

func errorMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "There was a problem with your request."
	case http.StatusNotFound:
		return "Page could not be found."
	case http.StatusForbidden:
		return "You don't have permission to perform this action."
	case http.StatusServiceUnavailable:
		return "Sorry, we're experiencing technical difficulties. Please try again later."
	}
	return "Sorry, we're experiencing technical difficulties."
}

// renderError logs err and renders the error page with its mapped status.
func (s *Service) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	entry := s.logger.WithError(err).WithFields(logrus.Fields{
		"request_id": requestIDFrom(r.Context()),
		"path":       r.URL.Path,
		"status":     status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Info("request rejected")
	}

	data := &types.ErrorPageData{
		BasePageData: types.BasePageData{Title: http.StatusText(status)},
		Status:       status,
		Message:      errorMessage(status),
	}
	if err := s.renderTemplateStatus(w, r, status, "page.error", data); err != nil {
		s.logger.WithError(err).Error("failed to render error page")
		http.Error(w, errorMessage(status), status)
	}
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
