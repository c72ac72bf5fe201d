package types

type NavbarData struct {
	IsAuthenticated bool
	UserEmail       string
	Role            Role
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

// Flash is a one-shot message shown on the next rendered page. Category is
// the message kind, e.g. "success" or a validation code like "not_pdf".
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

type FlashSetter interface {
	SetFlashes(flashes []Flash)
}

type BasePageData struct {
	Title   string
	Navbar  NavbarData
	Flashes []Flash
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

func (d *BasePageData) SetFlashes(flashes []Flash) {
	d.Flashes = flashes
}

// HasFlash reports whether a flash with the given category and message is
// pending, for templates that render inline field errors.
func (d *BasePageData) HasFlash(category, message string) bool {
	for _, f := range d.Flashes {
		if f.Category == category && f.Message == message {
			return true
		}
	}
	return false
}

type LoginPageData struct {
	BasePageData
	Email string
	Error string
}

type ErrorPageData struct {
	BasePageData
	Status  int
	Message string
}

type SuppliersPageData struct {
	BasePageData
	Suppliers         []*Supplier
	AgreementFileName string
	NamePrefix        string
	DunsNumber        string
	// Frameworks with declaration manifests, for per framework links
	Frameworks []string
}

type SupplierNamePageData struct {
	BasePageData
	Supplier *Supplier
}

type SupplierUsersPageData struct {
	BasePageData
	Supplier    *Supplier
	Users       []*User
	InviteEmail string
	MoveEmail   string
	FieldErrors map[string]string
}

type SupplierServicesPageData struct {
	BasePageData
	Supplier *Supplier
	Services []*Service
}

type SignedAgreementPageData struct {
	BasePageData
	Supplier          *Supplier
	Framework         *Framework
	SupplierFramework *SupplierFramework
	Lots              []Lot
	AgreementURL      string
	AgreementExt      string
	NextStatus        string
}

type CountersignedAgreementPageData struct {
	BasePageData
	Supplier  *Supplier
	Framework *Framework
	Document  *CountersignedDocument
}

type CommunicationsPageData struct {
	BasePageData
	Framework     *Framework
	Communication *StoredObject
	Clarification *StoredObject
}
