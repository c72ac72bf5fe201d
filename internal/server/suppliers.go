package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"dmadmin/internal/utils"
	"dmadmin/pkg/types"

	"github.com/sirupsen/logrus"
)

func (s *Service) handleFindSuppliers(w http.ResponseWriter, r *http.Request) {
	query := new(FindSuppliersQuery)
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		s.renderError(w, r, types.NewValidationError("supplier_id", "invalid"))
		return
	}

	var suppliers []*types.Supplier
	if query.SupplierID != "" {
		supplierID, err := strconv.Atoi(query.SupplierID)
		if err != nil {
			s.renderError(w, r, types.ErrNotFound)
			return
		}
		supplier, err := s.api.GetSupplier(r.Context(), supplierID)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		suppliers = []*types.Supplier{supplier}
	} else {
		var err error
		suppliers, err = s.api.FindSuppliers(r.Context(), query.NamePrefix, query.DunsNumber)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
	}

	data := &types.SuppliersPageData{
		BasePageData:      types.BasePageData{Title: "Suppliers"},
		Suppliers:         suppliers,
		AgreementFileName: types.AgreementFileName,
		NamePrefix:        query.NamePrefix,
		DunsNumber:        query.DunsNumber,
		Frameworks:        s.declarations.Frameworks(),
	}
	if err := s.renderTemplate(w, r, "page.suppliers", data); err != nil {
		s.logger.WithError(err).Error("failed to render suppliers page")
		s.internalServerError(w)
	}
}

func (s *Service) handleGetSupplierName(w http.ResponseWriter, r *http.Request) {
	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	supplier, err := s.api.GetSupplier(r.Context(), supplierID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	data := &types.SupplierNamePageData{
		BasePageData: types.BasePageData{Title: "Change supplier name"},
		Supplier:     supplier,
	}
	if err := s.renderTemplate(w, r, "page.supplier_name", data); err != nil {
		s.logger.WithError(err).Error("failed to render supplier name page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostSupplierName(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, types.NewValidationError("new_supplier_name", "invalid_form"))
		return
	}

	form := new(SupplierNameForm)
	if err := decoder.Decode(form, r.PostForm); err != nil {
		s.renderError(w, r, types.NewValidationError("new_supplier_name", "invalid_form"))
		return
	}

	supplier, err := s.api.GetSupplier(r.Context(), supplierID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	err = s.api.UpdateSupplier(r.Context(), supplier.ID, types.SupplierUpdate{Name: form.Name}, actor.Email)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/suppliers?supplier_id="+strconv.Itoa(supplier.ID), http.StatusSeeOther)
}

// querySupplierID reads the required supplier_id query parameter. Missing or
// malformed values are NotFound.
func querySupplierID(r *http.Request) (int, error) {
	supplierID, err := strconv.Atoi(r.URL.Query().Get("supplier_id"))
	if err != nil {
		return 0, fmt.Errorf("supplier_id query parameter: %w", types.ErrNotFound)
	}
	return supplierID, nil
}

func (s *Service) handleGetSupplierUsers(w http.ResponseWriter, r *http.Request) {
	supplierID, err := querySupplierID(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.renderSupplierUsers(w, r, http.StatusOK, supplierID, &types.SupplierUsersPageData{})
}

// renderSupplierUsers renders the users page for a supplier, keeping any
// form values and field errors already set on data.
func (s *Service) renderSupplierUsers(w http.ResponseWriter, r *http.Request, status, supplierID int, data *types.SupplierUsersPageData) {
	supplier, err := s.api.GetSupplier(r.Context(), supplierID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	users, err := s.api.FindUsers(r.Context(), supplierID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	data.Title = supplier.Name + " users"
	data.Supplier = supplier
	data.Users = users
	if err := s.renderTemplateStatus(w, r, status, "page.supplier_users", data); err != nil {
		s.logger.WithError(err).Error("failed to render supplier users page")
		s.internalServerError(w)
	}
}

func (s *Service) handleGetSupplierServices(w http.ResponseWriter, r *http.Request) {
	supplierID, err := querySupplierID(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	supplier, err := s.api.GetSupplier(r.Context(), supplierID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	services, err := s.api.FindServices(r.Context(), supplierID, "")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	data := &types.SupplierServicesPageData{
		BasePageData: types.BasePageData{Title: supplier.Name + " services"},
		Supplier:     supplier,
		Services:     services,
	}
	if err := s.renderTemplate(w, r, "page.supplier_services", data); err != nil {
		s.logger.WithError(err).Error("failed to render supplier services page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostUnlockUser(w http.ResponseWriter, r *http.Request) {
	s.updateUser(w, r, types.UserUpdate{Locked: utils.BoolPtr(false)})
}

func (s *Service) handlePostActivateUser(w http.ResponseWriter, r *http.Request) {
	s.updateUser(w, r, types.UserUpdate{Active: utils.BoolPtr(true)})
}

func (s *Service) handlePostDeactivateUser(w http.ResponseWriter, r *http.Request) {
	s.updateUser(w, r, types.UserUpdate{Active: utils.BoolPtr(false)})
}

// updateUser applies update and returns to the posted source page, or to the
// user's supplier when no source was given.
func (s *Service) updateUser(w http.ResponseWriter, r *http.Request, update types.UserUpdate) {
	actor, _ := actorFromContext(r.Context())

	userID, err := pathInt(r, "userID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, types.NewValidationError("source", "invalid_form"))
		return
	}
	form := new(UserActionForm)
	if err := decoder.Decode(form, r.PostForm); err != nil {
		s.renderError(w, r, types.NewValidationError("source", "invalid_form"))
		return
	}

	user, err := s.api.UpdateUser(r.Context(), userID, update, actor.Email)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	fallback := "/suppliers"
	if user.Supplier != nil {
		fallback = supplierUsersPath(user.Supplier.SupplierID)
	}
	if form.Source != "" {
		s.redirectLocal(w, r, form.Source, fallback)
		return
	}
	http.Redirect(w, r, fallback, http.StatusSeeOther)
}

func supplierUsersPath(supplierID int) string {
	return "/suppliers/users?" + url.Values{"supplier_id": {strconv.Itoa(supplierID)}}.Encode()
}

func (s *Service) handlePostMoveUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, types.NewValidationError("user_to_move_email_address", "invalid_form"))
		return
	}
	form := new(MoveUserForm)
	if err := decoder.Decode(form, r.PostForm); err != nil {
		s.renderError(w, r, types.NewValidationError("user_to_move_email_address", "invalid_form"))
		return
	}
	form.Email = strings.TrimSpace(form.Email)

	if code := validEmail(form.Email); code != "" {
		s.renderSupplierUsers(w, r, http.StatusBadRequest, supplierID, &types.SupplierUsersPageData{
			MoveEmail:   form.Email,
			FieldErrors: map[string]string{"user_to_move_email_address": code},
		})
		return
	}

	if _, err := s.api.GetSupplier(r.Context(), supplierID); err != nil {
		s.renderError(w, r, err)
		return
	}

	user, err := s.api.UserByEmail(r.Context(), form.Email)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if user == nil {
		s.addFlash(w, r, "error", "user_not_moved")
		http.Redirect(w, r, supplierUsersPath(supplierID), http.StatusSeeOther)
		return
	}

	role := types.RoleSupplier
	_, err = s.api.UpdateUser(r.Context(), user.ID, types.UserUpdate{
		Active:     utils.BoolPtr(true),
		Role:       &role,
		SupplierID: utils.IntPtr(supplierID),
	}, actor.Email)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"supplier_id": supplierID,
		"actor":       actor.Email,
	}).Info("user moved to supplier")

	s.addFlash(w, r, "success", "user_moved")
	http.Redirect(w, r, supplierUsersPath(supplierID), http.StatusSeeOther)
}

func (s *Service) handlePostInviteUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	supplierID, err := pathInt(r, "supplierID")
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, types.NewValidationError("email_address", "invalid_form"))
		return
	}
	form := new(InviteUserForm)
	if err := decoder.Decode(form, r.PostForm); err != nil {
		s.renderError(w, r, types.NewValidationError("email_address", "invalid_form"))
		return
	}
	form.Email = strings.TrimSpace(form.Email)

	if code := validEmail(form.Email); code != "" {
		s.renderSupplierUsers(w, r, http.StatusBadRequest, supplierID, &types.SupplierUsersPageData{
			InviteEmail: form.Email,
			FieldErrors: map[string]string{"email_address": code},
		})
		return
	}

	supplier, err := s.api.GetSupplier(r.Context(), supplierID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	err = s.inviter.Invite(r.Context(), supplier, form.Email, s.rootURL(r), actor)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.addFlash(w, r, "success", "user_invited")
	http.Redirect(w, r, supplierUsersPath(supplierID), http.StatusSeeOther)
}

// rootURL is the site root the request arrived on, with a trailing slash.
func (s *Service) rootURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil && s.config.Environment == "development" {
		scheme = "http"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host + "/"
}
