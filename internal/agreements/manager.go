package agreements

import (
	"context"
	"fmt"
	"io"
	"time"

	"dmadmin/internal/documents"
	"dmadmin/internal/storage"
	"dmadmin/pkg/types"

	"github.com/sirupsen/logrus"
)

// API is the subset of the Data API the manager drives.
type API interface {
	GetSupplier(ctx context.Context, supplierID int) (*types.Supplier, error)
	GetFramework(ctx context.Context, frameworkSlug string) (*types.Framework, error)
	GetSupplierFrameworkInfo(ctx context.Context, supplierID int, frameworkSlug string) (*types.SupplierFramework, error)
	FindServices(ctx context.Context, supplierID int, frameworkSlug string) ([]*types.Service, error)
	GetFrameworkAgreement(ctx context.Context, agreementID int) (*types.Agreement, error)
	UpdateFrameworkAgreement(ctx context.Context, agreementID int, update types.AgreementUpdate, updatedBy string) (*types.Agreement, error)
	PutAgreementOnHold(ctx context.Context, agreementID int, updatedBy string) (*types.Agreement, error)
	ApproveAgreementForCountersignature(ctx context.Context, agreementID int, updatedBy, userID string) (*types.Agreement, error)
	FindFrameworkSuppliers(ctx context.Context, frameworkSlug string, agreementReturned bool, status string) ([]*types.SupplierFramework, error)
	CreateAuditEvent(ctx context.Context, event types.AuditEvent) error
}

// Bucket is the agreements document bucket.
type Bucket interface {
	GetKey(ctx context.Context, path string) (*types.StoredObject, error)
	Save(ctx context.Context, path string, body io.Reader, opts storage.SaveOptions) error
	Delete(ctx context.Context, path string) error
	SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

// auditPathKey holds the document path in countersigned agreement audit
// events, for uploads and removals alike.
const auditPathKey = "upload_countersigned_agreement"

type Manager struct {
	api       API
	bucket    Bucket
	logger    *logrus.Logger
	assetsURL string
	urlExpiry time.Duration

	now       func() time.Time
	pageCount func(io.ReadSeeker) (int, error)
}

func New(config *types.Config, logger *logrus.Logger, api API, bucket Bucket) *Manager {
	return &Manager{
		api:       api,
		bucket:    bucket,
		logger:    logger,
		assetsURL: config.AssetsURL,
		urlExpiry: time.Duration(config.SignedURLExpirySec) * time.Second,
		now:       time.Now,
		pageCount: pdfPageCount,
	}
}

// PutOnHold marks a returned agreement as on hold.
func (m *Manager) PutOnHold(ctx context.Context, agreementID int, actor types.Actor) (*types.Agreement, error) {
	agreement, err := m.api.PutAgreementOnHold(ctx, agreementID, actor.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to put agreement %d on hold: %w", agreementID, err)
	}

	m.logger.WithFields(logrus.Fields{
		"agreement_id": agreementID,
		"actor":        actor.Email,
	}).Info("agreement put on hold")

	return agreement, nil
}

// Approve approves an agreement for countersignature. Agreements that are
// already approved or countersigned are returned unchanged. The supplier
// must be on the framework.
func (m *Manager) Approve(ctx context.Context, agreementID int, actor types.Actor) (*types.Agreement, error) {
	agreement, err := m.api.GetFrameworkAgreement(ctx, agreementID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agreement %d: %w", agreementID, err)
	}

	sf, err := m.api.GetSupplierFrameworkInfo(ctx, agreement.SupplierID, agreement.FrameworkSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier %d framework %s: %w", agreement.SupplierID, agreement.FrameworkSlug, err)
	}
	if !sf.OnFramework {
		return nil, fmt.Errorf("supplier %d is not on %s: %w", agreement.SupplierID, agreement.FrameworkSlug, types.ErrNotFound)
	}

	if agreement.Status.Approved() {
		return agreement, nil
	}
	if !agreement.Status.Signed() {
		return nil, fmt.Errorf("agreement %d is %s: %w", agreementID, agreement.Status, types.ErrNotFound)
	}

	approved, err := m.api.ApproveAgreementForCountersignature(ctx, agreementID, actor.Email, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to approve agreement %d: %w", agreementID, err)
	}

	m.logger.WithFields(logrus.Fields{
		"agreement_id": agreementID,
		"actor":        actor.Email,
	}).Info("agreement approved for countersignature")

	return approved, nil
}

// CheckCountersignable returns NotFound unless a countersigned copy of the
// supplier's agreement may be uploaded or removed.
func (m *Manager) CheckCountersignable(ctx context.Context, supplierID int, frameworkSlug string) error {
	_, err := m.countersignable(ctx, supplierID, frameworkSlug)
	return err
}

// countersignable loads the supplier's framework interest and checks that a
// countersigned copy may be uploaded or removed.
func (m *Manager) countersignable(ctx context.Context, supplierID int, frameworkSlug string) (*types.SupplierFramework, error) {
	sf, err := m.api.GetSupplierFrameworkInfo(ctx, supplierID, frameworkSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier %d framework %s: %w", supplierID, frameworkSlug, err)
	}

	if !sf.OnFramework || !sf.AgreementStatus.Signed() || sf.AgreementID == nil {
		return nil, fmt.Errorf("supplier %d agreement for %s cannot be countersigned: %w", supplierID, frameworkSlug, types.ErrNotFound)
	}

	return sf, nil
}

type CountersignedView struct {
	Supplier  *types.Supplier
	Framework *types.Framework
	// Document is nil when no countersigned copy is stored.
	Document *types.CountersignedDocument
}

func (m *Manager) Countersigned(ctx context.Context, supplierID int, frameworkSlug string) (*CountersignedView, error) {
	supplier, err := m.api.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier %d: %w", supplierID, err)
	}

	framework, err := m.api.GetFramework(ctx, frameworkSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch framework %s: %w", frameworkSlug, err)
	}

	sf, err := m.countersignable(ctx, supplierID, frameworkSlug)
	if err != nil {
		return nil, err
	}

	view := &CountersignedView{Supplier: supplier, Framework: framework}

	obj, err := m.bucket.GetKey(ctx, sf.CountersignedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch countersigned agreement: %w", err)
	}
	if obj != nil {
		view.Document = &types.CountersignedDocument{
			DocumentName: documents.DocumentName(sf.CountersignedPath),
			LastModified: obj.LastModified,
		}
	}

	return view, nil
}

// UploadCountersigned stores a countersigned agreement PDF and records it
// against the supplier's agreement, approving the agreement first when
// needed. The stored path is returned.
func (m *Manager) UploadCountersigned(ctx context.Context, supplierID int, frameworkSlug string, upload *types.Upload, actor types.Actor) (string, error) {
	sf, err := m.countersignable(ctx, supplierID, frameworkSlug)
	if err != nil {
		return "", err
	}
	agreementID := *sf.AgreementID

	ok, err := documents.PDFOnly.Check(upload.Body)
	if err != nil {
		return "", fmt.Errorf("failed to inspect countersigned agreement: %w", err)
	}
	if !ok {
		return "", types.NewValidationError(types.UploadCountersignedAgreement, documents.PDFOnly.Code)
	}

	supplierName := sf.OrganisationName()
	if supplierName == "" {
		supplier, err := m.api.GetSupplier(ctx, supplierID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch supplier %d: %w", supplierID, err)
		}
		supplierName = supplier.Name
	}

	if !sf.AgreementStatus.Approved() {
		_, err := m.api.ApproveAgreementForCountersignature(ctx, agreementID, actor.Email, actor.ID)
		if err != nil {
			return "", fmt.Errorf("failed to approve agreement %d: %w", agreementID, err)
		}
	}

	entry := m.logger.WithFields(logrus.Fields{
		"supplier_id":  supplierID,
		"framework":    frameworkSlug,
		"agreement_id": agreementID,
	})

	pages, err := m.pageCount(upload.Body)
	if err != nil {
		entry.WithError(err).Warn("failed to count countersigned agreement pages")
	}
	if _, err := upload.Body.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind countersigned agreement: %w", err)
	}

	path := documents.TimestampedDocumentPath(frameworkSlug, supplierID, documents.CategoryAgreements, types.CounterpartFileName, m.now())
	err = m.bucket.Save(ctx, path, upload.Body, storage.SaveOptions{
		DownloadFileName: documents.DownloadFileName(supplierID, types.CounterpartFileName, supplierName),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store countersigned agreement: %w", err)
	}

	_, err = m.api.UpdateFrameworkAgreement(ctx, agreementID, types.AgreementUpdate{CountersignedAgreementPath: &path}, actor.Email)
	if err != nil {
		return "", fmt.Errorf("failed to set countersigned agreement path: %w", err)
	}

	data := map[string]any{auditPathKey: path}
	if pages > 0 {
		data["pageCount"] = pages
	}
	err = m.api.CreateAuditEvent(ctx, types.AuditEvent{
		Type:       types.AuditUploadCountersignedAgreement,
		User:       actor.Email,
		ObjectType: "suppliers",
		ObjectID:   fmt.Sprint(supplierID),
		Data:       data,
	})
	if err != nil {
		return "", fmt.Errorf("failed to audit countersigned agreement upload: %w", err)
	}

	entry.WithField("path", path).Info("countersigned agreement uploaded")

	return path, nil
}

// RemoveCountersigned clears the countersigned path from the agreement and
// then deletes the stored document. A missing path is a no-op.
func (m *Manager) RemoveCountersigned(ctx context.Context, supplierID int, frameworkSlug string, actor types.Actor) error {
	sf, err := m.countersignable(ctx, supplierID, frameworkSlug)
	if err != nil {
		return err
	}

	path := sf.CountersignedPath
	if path == "" {
		return nil
	}

	// The record must never reference a deleted object, so clear it first.
	_, err = m.api.UpdateFrameworkAgreement(ctx, *sf.AgreementID, types.AgreementUpdate{}, actor.Email)
	if err != nil {
		return fmt.Errorf("failed to clear countersigned agreement path: %w", err)
	}

	if err := m.bucket.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete countersigned agreement: %w", err)
	}

	err = m.api.CreateAuditEvent(ctx, types.AuditEvent{
		Type:       types.AuditDeleteCountersignedAgreement,
		User:       actor.Email,
		ObjectType: "suppliers",
		ObjectID:   fmt.Sprint(supplierID),
		Data:       map[string]any{auditPathKey: path},
	})
	if err != nil {
		return fmt.Errorf("failed to audit countersigned agreement removal: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"supplier_id": supplierID,
		"framework":   frameworkSlug,
		"path":        path,
	}).Info("countersigned agreement removed")

	return nil
}
