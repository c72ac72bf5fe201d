package types

type FrameworkStatus string

const (
	FrameworkStatusComingSoon FrameworkStatus = "coming"
	FrameworkStatusOpen       FrameworkStatus = "open"
	FrameworkStatusPending    FrameworkStatus = "pending"
	FrameworkStatusStandstill FrameworkStatus = "standstill"
	FrameworkStatusLive       FrameworkStatus = "live"
	FrameworkStatusExpired    FrameworkStatus = "expired"
)

type Framework struct {
	ID                        int             `json:"id"`
	Slug                      string          `json:"slug"`
	Name                      string          `json:"name"`
	Framework                 string          `json:"framework"`
	Status                    FrameworkStatus `json:"status"`
	FrameworkAgreementVersion string          `json:"frameworkAgreementVersion,omitempty"`
}

// DeclarationsEditable reports whether administrators may change supplier
// declarations for the framework.
func (f *Framework) DeclarationsEditable() bool {
	switch f.Status {
	case FrameworkStatusPending, FrameworkStatusStandstill, FrameworkStatusLive:
		return true
	}
	return false
}

func (f *Framework) HasAgreement() bool {
	return f.FrameworkAgreementVersion != ""
}
