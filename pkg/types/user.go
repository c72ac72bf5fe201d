package types

type Role string

const (
	RoleAdmin            Role = "admin"
	RoleAdminCCSCategory Role = "admin-ccs-category"
	RoleAdminCCSSourcing Role = "admin-ccs-sourcing"
	RoleSupplier         Role = "supplier"
	RoleBuyer            Role = "buyer"
)

type User struct {
	ID           int           `json:"id"`
	EmailAddress string        `json:"emailAddress"`
	Name         string        `json:"name"`
	Role         Role          `json:"role"`
	Active       bool          `json:"active"`
	Locked       bool          `json:"locked"`
	LoggedInAt   string        `json:"loggedInAt,omitempty"`
	Supplier     *UserSupplier `json:"supplier,omitempty"`
}

type UserSupplier struct {
	SupplierID int    `json:"supplierId"`
	Name       string `json:"name"`
}

// UserUpdate is a partial user update. Nil fields are not sent.
type UserUpdate struct {
	Active     *bool `json:"active,omitempty"`
	Locked     *bool `json:"locked,omitempty"`
	Role       *Role `json:"role,omitempty"`
	SupplierID *int  `json:"supplierId,omitempty"`
}

// Actor is the administrator performing a request.
type Actor struct {
	ID    string
	Email string
	Role  Role
}
