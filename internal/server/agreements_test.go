package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dmadmin/internal/agreements"
	"dmadmin/internal/storage"
	"dmadmin/pkg/types"

	"github.com/google/go-cmp/cmp"
)

type agreementsAPI struct {
	sf        *types.SupplierFramework
	updates   []types.AgreementUpdate
	audits    []types.AuditEvent
	approvals int
}

func (f *agreementsAPI) GetSupplier(ctx context.Context, supplierID int) (*types.Supplier, error) {
	return &types.Supplier{ID: supplierID, Name: "Acme Supplies"}, nil
}

func (f *agreementsAPI) GetFramework(ctx context.Context, frameworkSlug string) (*types.Framework, error) {
	return &types.Framework{Slug: frameworkSlug, Name: "G-Cloud 8", Status: types.FrameworkStatusLive}, nil
}

func (f *agreementsAPI) GetSupplierFrameworkInfo(ctx context.Context, supplierID int, frameworkSlug string) (*types.SupplierFramework, error) {
	return f.sf, nil
}

func (f *agreementsAPI) FindServices(ctx context.Context, supplierID int, frameworkSlug string) ([]*types.Service, error) {
	return nil, nil
}

func (f *agreementsAPI) GetFrameworkAgreement(ctx context.Context, agreementID int) (*types.Agreement, error) {
	return &types.Agreement{ID: agreementID, SupplierID: f.sf.SupplierID, FrameworkSlug: f.sf.FrameworkSlug, Status: f.sf.AgreementStatus}, nil
}

func (f *agreementsAPI) UpdateFrameworkAgreement(ctx context.Context, agreementID int, update types.AgreementUpdate, updatedBy string) (*types.Agreement, error) {
	f.updates = append(f.updates, update)
	return &types.Agreement{ID: agreementID}, nil
}

func (f *agreementsAPI) PutAgreementOnHold(ctx context.Context, agreementID int, updatedBy string) (*types.Agreement, error) {
	return &types.Agreement{ID: agreementID}, nil
}

func (f *agreementsAPI) ApproveAgreementForCountersignature(ctx context.Context, agreementID int, updatedBy, userID string) (*types.Agreement, error) {
	f.approvals++
	return &types.Agreement{ID: agreementID, Status: types.AgreementStatusApproved}, nil
}

func (f *agreementsAPI) FindFrameworkSuppliers(ctx context.Context, frameworkSlug string, agreementReturned bool, status string) ([]*types.SupplierFramework, error) {
	return nil, nil
}

func (f *agreementsAPI) CreateAuditEvent(ctx context.Context, event types.AuditEvent) error {
	f.audits = append(f.audits, event)
	return nil
}

type agreementsBucket struct {
	objects map[string]string
	deleted []string
}

func (f *agreementsBucket) GetKey(ctx context.Context, path string) (*types.StoredObject, error) {
	if _, ok := f.objects[path]; !ok {
		return nil, nil
	}
	return &types.StoredObject{Path: path}, nil
}

func (f *agreementsBucket) Save(ctx context.Context, path string, body io.Reader, opts storage.SaveOptions) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[path] = string(data)
	return nil
}

func (f *agreementsBucket) Delete(ctx context.Context, path string) error {
	delete(f.objects, path)
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *agreementsBucket) SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return "", nil
}

var testSourcing = types.Actor{ID: "123", Email: "sourcing@example.com", Role: types.RoleAdminCCSSourcing}

func newAgreementTestService(t *testing.T, status types.AgreementStatus, onFramework bool) (*Service, *agreementsAPI, *agreementsBucket) {
	t.Helper()

	agreementID := 20
	api := &agreementsAPI{sf: &types.SupplierFramework{
		SupplierID:        1234,
		FrameworkSlug:     "g-cloud-8",
		OnFramework:       onFramework,
		AgreementReturned: true,
		AgreementID:       &agreementID,
		AgreementStatus:   status,
		Declaration:       types.Declaration{"nameOfOrganisation": "Acme Ltd"},
	}}
	bucket := &agreementsBucket{objects: map[string]string{}}

	s := newTestService(t)
	s.agreements = agreements.New(s.config, s.logger, api, bucket)
	return s, api, bucket
}

func countersignedRequest(t *testing.T, files map[string][2]string) *http.Request {
	t.Helper()

	req := multipartRequest(t, "/suppliers/1234/countersigned-agreements/g-cloud-8", files)
	req.SetPathValue("supplierID", "1234")
	req.SetPathValue("framework", "g-cloud-8")
	return req.WithContext(withActor(req.Context(), testSourcing))
}

const countersignedPage = "/suppliers/1234/countersigned-agreements/g-cloud-8"

func TestPostCountersignedAgreement(t *testing.T) {
	s, api, bucket := newAgreementTestService(t, types.AgreementStatusSent, true)

	req := countersignedRequest(t, map[string][2]string{
		"countersigned_agreement": {"signed.pdf", "%PDF-1.4\ncountersigned"},
	})
	rec := httptest.NewRecorder()

	s.handlePostCountersignedAgreement(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != countersignedPage {
		t.Errorf("Location = %q", got)
	}

	if api.approvals != 1 {
		t.Errorf("approvals = %d, want 1", api.approvals)
	}
	if len(bucket.objects) != 1 {
		t.Fatalf("stored objects = %v, want one", bucket.objects)
	}
	for path, body := range bucket.objects {
		if !strings.HasPrefix(path, "g-cloud-8/agreements/1234/") || body != "%PDF-1.4\ncountersigned" {
			t.Errorf("stored %q = %q", path, body)
		}
	}
	if len(api.updates) != 1 || api.updates[0].CountersignedAgreementPath == nil {
		t.Errorf("updates = %+v, want the countersigned path set", api.updates)
	}
	if len(api.audits) != 1 || api.audits[0].Type != types.AuditUploadCountersignedAgreement {
		t.Errorf("audits = %+v, want one upload event", api.audits)
	}

	want := []types.Flash{{Category: "upload_countersigned_agreement", Message: "countersigned_agreement"}}
	if diff := cmp.Diff(want, s.pendingFlashes(nextRequest(rec, "/"))); diff != "" {
		t.Errorf("flashes mismatch (-want +got):\n%s", diff)
	}
}

func TestPostCountersignedAgreementRejectsNonPDF(t *testing.T) {
	s, api, bucket := newAgreementTestService(t, types.AgreementStatusSent, true)

	req := countersignedRequest(t, map[string][2]string{
		"countersigned_agreement": {"signed.pdf", "PK\x03\x04 not a pdf"},
	})
	rec := httptest.NewRecorder()

	s.handlePostCountersignedAgreement(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if len(bucket.objects) != 0 || len(api.updates) != 0 || len(api.audits) != 0 || api.approvals != 0 {
		t.Errorf("rejected upload changed state: objects=%v updates=%v audits=%v approvals=%d",
			bucket.objects, api.updates, api.audits, api.approvals)
	}

	want := []types.Flash{{Category: "not_pdf", Message: "countersigned_agreement"}}
	if diff := cmp.Diff(want, s.pendingFlashes(nextRequest(rec, "/"))); diff != "" {
		t.Errorf("flashes mismatch (-want +got):\n%s", diff)
	}
}

func TestPostCountersignedAgreementPreconditions(t *testing.T) {
	tests := []struct {
		name        string
		status      types.AgreementStatus
		onFramework bool
		files       map[string][2]string
	}{
		{name: "draft", status: types.AgreementStatusDraft, onFramework: true, files: map[string][2]string{"countersigned_agreement": {"signed.pdf", "%PDF-1.4"}}},
		{name: "none", status: types.AgreementStatusNone, onFramework: true, files: map[string][2]string{"countersigned_agreement": {"signed.pdf", "%PDF-1.4"}}},
		{name: "not on framework", status: types.AgreementStatusSent, files: map[string][2]string{"countersigned_agreement": {"signed.pdf", "%PDF-1.4"}}},
		{name: "draft without file", status: types.AgreementStatusDraft, onFramework: true},
		{name: "not on framework without file", status: types.AgreementStatusApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, api, bucket := newAgreementTestService(t, tt.status, tt.onFramework)

			rec := httptest.NewRecorder()
			s.handlePostCountersignedAgreement(rec, countersignedRequest(t, tt.files))

			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
			if len(bucket.objects) != 0 || len(api.updates) != 0 || len(api.audits) != 0 {
				t.Errorf("state changed: objects=%v updates=%v audits=%v", bucket.objects, api.updates, api.audits)
			}
		})
	}
}

func TestPostCountersignedAgreementWithoutFile(t *testing.T) {
	s, api, _ := newAgreementTestService(t, types.AgreementStatusApproved, true)

	rec := httptest.NewRecorder()
	s.handlePostCountersignedAgreement(rec, countersignedRequest(t, nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if flashCookie(rec) != nil {
		t.Error("flash set for an empty submission")
	}
	if len(api.updates) != 0 {
		t.Errorf("updates = %+v, want none", api.updates)
	}
}

func TestRemoveCountersignedAgreement(t *testing.T) {
	s, api, bucket := newAgreementTestService(t, types.AgreementStatusCountersigned, true)
	path := "g-cloud-8/agreements/1234/1234-countersigned-framework-agreement.pdf"
	api.sf.CountersignedPath = path
	bucket.objects[path] = "%PDF-1.4"

	req := httptest.NewRequest(http.MethodPost, "/suppliers/1234/countersigned-agreements-remove/g-cloud-8", nil)
	req.SetPathValue("supplierID", "1234")
	req.SetPathValue("framework", "g-cloud-8")
	req = req.WithContext(withActor(req.Context(), testSourcing))
	rec := httptest.NewRecorder()

	s.handlePostRemoveCountersignedAgreement(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != countersignedPage {
		t.Errorf("Location = %q", got)
	}
	if diff := cmp.Diff([]string{path}, bucket.deleted); diff != "" {
		t.Errorf("deleted mismatch (-want +got):\n%s", diff)
	}
	if len(api.updates) != 1 || api.updates[0].CountersignedAgreementPath != nil {
		t.Errorf("updates = %+v, want the path cleared", api.updates)
	}
	if len(api.audits) != 1 || api.audits[0].Type != types.AuditDeleteCountersignedAgreement {
		t.Errorf("audits = %+v, want one delete event", api.audits)
	}
}

func TestGetRemoveCountersignedAgreementAsksForConfirmation(t *testing.T) {
	s, _, _ := newAgreementTestService(t, types.AgreementStatusCountersigned, true)

	req := httptest.NewRequest(http.MethodGet, "/suppliers/1234/countersigned-agreements-remove/g-cloud-8", nil)
	req.SetPathValue("supplierID", "1234")
	req.SetPathValue("framework", "g-cloud-8")
	rec := httptest.NewRecorder()

	s.handleGetRemoveCountersignedAgreement(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	want := []types.Flash{{Category: "remove_countersigned_agreement", Message: "countersigned_agreement"}}
	if diff := cmp.Diff(want, s.pendingFlashes(nextRequest(rec, "/"))); diff != "" {
		t.Errorf("flashes mismatch (-want +got):\n%s", diff)
	}
}
