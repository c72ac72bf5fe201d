package server

import (
	"fmt"
	"net/http"

	"dmadmin/internal"
	"dmadmin/pkg/types"
)

const maxFlashes = 10

// addFlashes queues messages for the next rendered page, after any still
// pending from an earlier request. Call it once per response.
func (s *Service) addFlashes(w http.ResponseWriter, r *http.Request, flashes ...types.Flash) {
	pending := append(s.pendingFlashes(r), flashes...)
	if len(pending) > maxFlashes {
		pending = pending[len(pending)-maxFlashes:]
	}

	encoded, err := s.cookie.Encode(internal.COOKIE_FLASH_NAME, pending)
	if err != nil {
		s.logger.WithError(err).Error("failed to encode flash cookie")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_FLASH_NAME,
		Value:    encoded,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}

func (s *Service) addFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	s.addFlashes(w, r, types.Flash{Category: category, Message: message})
}

func (s *Service) pendingFlashes(r *http.Request) []types.Flash {
	cookie, err := r.Cookie(internal.COOKIE_FLASH_NAME)
	if err != nil {
		return nil
	}

	var flashes []types.Flash
	if err := s.cookie.Decode(internal.COOKIE_FLASH_NAME, cookie.Value, &flashes); err != nil {
		s.logger.WithError(err).Warn("discarding unreadable flash cookie")
		return nil
	}
	return flashes
}

// consumeFlashes returns the pending flashes and clears the cookie.
func (s *Service) consumeFlashes(w http.ResponseWriter, r *http.Request) []types.Flash {
	if _, err := r.Cookie(internal.COOKIE_FLASH_NAME); err != nil {
		return nil
	}

	flashes := s.pendingFlashes(r)
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_FLASH_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
	return flashes
}

var fieldLabels = map[string]string{
	types.UploadCommunication:          "Communication",
	types.UploadClarification:          "Clarification answers",
	types.UploadCountersignedAgreement: "Countersigned agreement",
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

// flashText is the banner shown for a flash. Flashes that drive inline page
// state, like a removal confirmation, have none.
func flashText(f types.Flash) string {
	switch f.Category {
	case "remove_countersigned_agreement":
		return ""
	case "upload_communication", "upload_countersigned_agreement":
		return fmt.Sprintf("%s file uploaded.", fieldLabel(f.Message))
	case "not_pdf", "not_pdf_or_csv", "not_zip":
		return fmt.Sprintf("%s: %s", fieldLabel(f.Message), fieldError(f.Category))
	}

	switch f.Message {
	case "user_moved":
		return "User moved to this supplier."
	case "user_not_moved":
		return "User not moved. No user has that email address."
	case "user_invited":
		return "User invited."
	}
	return f.Message
}

func flashClass(f types.Flash) string {
	switch f.Category {
	case "success", "upload_communication", "upload_countersigned_agreement":
		return "success"
	case "message":
		return "info"
	}
	return "error"
}

// fieldError is the inline message for a validation code.
func fieldError(code string) string {
	switch code {
	case "not_pdf":
		return "The file must be a PDF."
	case "not_pdf_or_csv":
		return "The file must be a PDF or CSV."
	case "not_zip":
		return "The file must be a ZIP archive."
	case "email_required":
		return "You must provide an email address."
	case "email_invalid":
		return "Please enter a valid email address."
	case "file_too_large":
		return "The file is too large."
	}
	return code
}
