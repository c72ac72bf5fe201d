package types

import "time"

type AgreementStatus string

const (
	AgreementStatusNone          AgreementStatus = ""
	AgreementStatusDraft         AgreementStatus = "draft"
	AgreementStatusSent          AgreementStatus = "sent"
	AgreementStatusApproved      AgreementStatus = "approved"
	AgreementStatusCountersigned AgreementStatus = "countersigned"
	AgreementStatusOnHold        AgreementStatus = "on-hold"
)

// Approved reports whether the agreement has already been approved for
// countersignature, countersigned agreements included.
func (s AgreementStatus) Approved() bool {
	return s == AgreementStatusApproved || s == AgreementStatusCountersigned
}

// Signed reports whether the supplier has moved past drafting. Agreements
// with no status or a draft cannot be countersigned.
func (s AgreementStatus) Signed() bool {
	return s != AgreementStatusNone && s != AgreementStatusDraft
}

func (s AgreementStatus) String() string {
	if s == AgreementStatusNone {
		return "none"
	}
	return string(s)
}

// SupplierFramework is a supplier's interest in a framework, including the
// current framework agreement if one has been returned.
type SupplierFramework struct {
	SupplierID        int             `json:"supplierId"`
	SupplierName      string          `json:"supplierName"`
	FrameworkSlug     string          `json:"frameworkSlug"`
	OnFramework       bool            `json:"onFramework"`
	AgreementReturned bool            `json:"agreementReturned"`
	AgreementID       *int            `json:"agreementId"`
	AgreementPath     string          `json:"agreementPath"`
	AgreementStatus   AgreementStatus `json:"agreementStatus"`
	CountersignedPath string          `json:"countersignedPath"`
	Declaration       Declaration     `json:"declaration"`
}

// OrganisationName is the supplier's name as given in its declaration.
func (sf *SupplierFramework) OrganisationName() string {
	if sf.Declaration == nil {
		return ""
	}
	name, _ := sf.Declaration["nameOfOrganisation"].(string)
	return name
}

type Agreement struct {
	ID                         int             `json:"id"`
	SupplierID                 int             `json:"supplierId"`
	FrameworkSlug              string          `json:"frameworkSlug"`
	Status                     AgreementStatus `json:"status"`
	SignedAgreementPath        string          `json:"signedAgreementPath,omitempty"`
	CountersignedAgreementPath string          `json:"countersignedAgreementPath,omitempty"`
	SignedAgreementPutOnHoldAt *time.Time      `json:"signedAgreementPutOnHoldAt,omitempty"`
	CountersignedAgreementAt   *time.Time      `json:"countersignedAgreementReturnedAt,omitempty"`
}

// AgreementUpdate is the patch body for an agreement. A nil
// CountersignedAgreementPath is sent as JSON null, clearing the path.
type AgreementUpdate struct {
	CountersignedAgreementPath *string `json:"countersignedAgreementPath"`
}

// CountersignedDocument describes a stored countersigned agreement.
type CountersignedDocument struct {
	DocumentName string
	LastModified time.Time
}
