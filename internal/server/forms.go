package server

import (
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"dmadmin/pkg/types"
)

type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type FindSuppliersQuery struct {
	SupplierID string `form:"supplier_id"`
	NamePrefix string `form:"supplier_name_prefix"`
	DunsNumber string `form:"supplier_duns_number"`
}

type SupplierNameForm struct {
	Name string `form:"new_supplier_name"`
}

type UserActionForm struct {
	Source string `form:"source"`
}

type InviteUserForm struct {
	Email string `form:"email_address"`
}

type MoveUserForm struct {
	Email string `form:"user_to_move_email_address"`
}

// AgreementActionForm is posted by the on-hold and approve buttons.
type AgreementActionForm struct {
	NameOfOrganisation string `form:"nameOfOrganisation"`
}

// validEmail reports a field error code for a submitted email address, or
// "" when it is acceptable.
func validEmail(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return "email_required"
	}
	if parsed, err := mail.ParseAddress(address); err != nil || parsed.Address != address {
		return "email_invalid"
	}
	return ""
}

// pathInt reads a numeric path parameter. Anything else is NotFound.
func pathInt(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, types.ErrNotFound
	}
	return id, nil
}
