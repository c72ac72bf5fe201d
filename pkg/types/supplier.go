package types

type Supplier struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	DunsNumber  string            `json:"dunsNumber,omitempty"`
	Description string            `json:"description,omitempty"`
	Contacts    []SupplierContact `json:"contactInformation,omitempty"`
}

type SupplierContact struct {
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address1    string `json:"address1,omitempty"`
	City        string `json:"city,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
}

type SupplierUpdate struct {
	Name string `json:"name"`
}

type Service struct {
	ID            string `json:"id"`
	SupplierID    int    `json:"supplierId"`
	FrameworkSlug string `json:"frameworkSlug"`
	LotSlug       string `json:"lotSlug"`
	LotName       string `json:"lotName"`
	ServiceName   string `json:"serviceName"`
	Status        string `json:"status"`
}

// Lot is a distinct lot a supplier has applied for on a framework.
type Lot struct {
	Slug string
	Name string
}
