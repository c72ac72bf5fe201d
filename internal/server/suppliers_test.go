package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"dmadmin/internal/apiclient"
	"dmadmin/pkg/types"

	"github.com/google/go-cmp/cmp"
)

// dataAPI answers the Data API routes the supplier user handlers call and
// records the body of every POST.
type dataAPI struct {
	t      *testing.T
	user   string
	posted map[string]json.RawMessage
}

func (d *dataAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/suppliers/5":
		_, _ = io.WriteString(w, `{"suppliers": {"id": 5, "name": "Acme Cloud"}}`)
	case r.Method == http.MethodGet && r.URL.Path == "/suppliers/404":
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error": "supplier not found"}`)
	case r.Method == http.MethodGet && r.URL.Path == "/users" && r.URL.Query().Has("email_address"):
		if d.user == "" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error": "user not found"}`)
			return
		}
		_, _ = io.WriteString(w, `{"users": `+d.user+`}`)
	case r.Method == http.MethodGet && r.URL.Path == "/users":
		_, _ = io.WriteString(w, `{"users": []}`)
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/users/"):
		body, err := io.ReadAll(r.Body)
		if err != nil {
			d.t.Fatal(err)
		}
		d.posted[r.URL.Path] = body
		_, _ = io.WriteString(w, `{"users": {"id": 9, "emailAddress": "moved@example.com", "supplier": {"supplierId": 5}}}`)
	default:
		d.t.Errorf("unexpected Data API call %s %s", r.Method, r.URL)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func newSupplierTestService(t *testing.T, user string) (*Service, *dataAPI) {
	t.Helper()

	api := &dataAPI{t: t, user: user, posted: map[string]json.RawMessage{}}
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	s := newTestService(t)
	s.api = apiclient.New(ts.URL, "token", 5*time.Second)
	return s, api
}

func postForm(target string, form url.Values, actor types.Actor) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(withActor(req.Context(), actor))
}

var testAdmin = types.Actor{ID: "admin-1", Email: "admin@example.com", Role: types.RoleAdmin}

func TestMoveUser(t *testing.T) {
	s, api := newSupplierTestService(t, `{"id": 9, "emailAddress": "moved@example.com", "supplier": {"supplierId": 2}}`)

	req := postForm("/suppliers/5/move-existing-user", url.Values{"user_to_move_email_address": {" moved@example.com "}}, testAdmin)
	req.SetPathValue("supplierID", "5")
	rec := httptest.NewRecorder()

	s.handlePostMoveUser(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/suppliers/users?supplier_id=5" {
		t.Errorf("Location = %q", got)
	}

	var update struct {
		UpdatedBy string         `json:"updated_by"`
		Users     map[string]any `json:"users"`
	}
	if err := json.Unmarshal(api.posted["/users/9"], &update); err != nil {
		t.Fatalf("decode posted update: %v", err)
	}
	if update.UpdatedBy != "admin@example.com" {
		t.Errorf("updated_by = %q", update.UpdatedBy)
	}
	wantUser := map[string]any{"active": true, "role": "supplier", "supplierId": float64(5)}
	if diff := cmp.Diff(wantUser, update.Users); diff != "" {
		t.Errorf("user update mismatch (-want +got):\n%s", diff)
	}

	want := []types.Flash{{Category: "success", Message: "user_moved"}}
	if diff := cmp.Diff(want, s.pendingFlashes(nextRequest(rec, "/"))); diff != "" {
		t.Errorf("flashes mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveUserUnknownEmail(t *testing.T) {
	s, api := newSupplierTestService(t, "")

	req := postForm("/suppliers/5/move-existing-user", url.Values{"user_to_move_email_address": {"nobody@example.com"}}, testAdmin)
	req.SetPathValue("supplierID", "5")
	rec := httptest.NewRecorder()

	s.handlePostMoveUser(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if len(api.posted) != 0 {
		t.Errorf("posted = %v, want no updates", api.posted)
	}
	want := []types.Flash{{Category: "error", Message: "user_not_moved"}}
	if diff := cmp.Diff(want, s.pendingFlashes(nextRequest(rec, "/"))); diff != "" {
		t.Errorf("flashes mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveUserInvalidEmail(t *testing.T) {
	s, api := newSupplierTestService(t, "")

	req := postForm("/suppliers/5/move-existing-user", url.Values{"user_to_move_email_address": {"not-an-email"}}, testAdmin)
	req.SetPathValue("supplierID", "5")
	rec := httptest.NewRecorder()

	s.handlePostMoveUser(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Please enter a valid email address.") {
		t.Errorf("body missing field error:\n%s", body)
	}
	if !strings.Contains(body, `value="not-an-email"`) {
		t.Errorf("body does not keep the submitted address:\n%s", body)
	}
	if len(api.posted) != 0 {
		t.Errorf("posted = %v, want no updates", api.posted)
	}
}

func TestMoveUserUnknownSupplier(t *testing.T) {
	s, _ := newSupplierTestService(t, "")

	req := postForm("/suppliers/404/move-existing-user", url.Values{"user_to_move_email_address": {"moved@example.com"}}, testAdmin)
	req.SetPathValue("supplierID", "404")
	rec := httptest.NewRecorder()

	s.handlePostMoveUser(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateUserRedirects(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "source", source: "/suppliers/users?supplier_id=5&page=2", want: "/suppliers/users?supplier_id=5&page=2"},
		{name: "no source", want: "/suppliers/users?supplier_id=5"},
		{name: "external source", source: "https://evil.example.com/", want: "/suppliers/users?supplier_id=5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, api := newSupplierTestService(t, "")

			req := postForm("/suppliers/users/9/deactivate", url.Values{"source": {tt.source}}, testAdmin)
			req.SetPathValue("userID", "9")
			rec := httptest.NewRecorder()

			s.handlePostDeactivateUser(rec, req)

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.want {
				t.Errorf("Location = %q, want %q", got, tt.want)
			}
			if got := string(api.posted["/users/9"]); !strings.Contains(got, `"active":false`) {
				t.Errorf("posted update = %s, want active false", got)
			}
		})
	}
}

func TestSupplierUsersRequiresSupplierID(t *testing.T) {
	s, _ := newSupplierTestService(t, "")

	req := httptest.NewRequest(http.MethodGet, "/suppliers/users", nil)
	req = req.WithContext(withActor(req.Context(), testAdmin))
	rec := httptest.NewRecorder()

	s.handleGetSupplierUsers(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
