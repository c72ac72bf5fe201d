package types

import (
	"io"
	"time"
)

// Upload is a file posted with a request. Body is held in memory by the
// multipart parser and is rewound by validators before it is saved.
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// Upload destination categories
const (
	UploadCommunication          = "communication"
	UploadClarification          = "clarification"
	UploadCountersignedAgreement = "countersigned_agreement"
)

// Stored agreement document names
const (
	AgreementFileName   = "signed-framework-agreement.pdf"
	CounterpartFileName = "countersigned-framework-agreement.pdf"
)

// StoredObject describes an object held in a storage bucket.
type StoredObject struct {
	Path         string
	Size         int64
	LastModified time.Time
	ContentType  string
}
