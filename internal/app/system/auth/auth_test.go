package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/authz"
	"github.com/dalemusser/redaid/internal/app/system/identity"
	"github.com/dalemusser/redaid/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// fakeRoles is an in-memory RoleLookup that counts its reads.
type fakeRoles struct {
	roles map[string]authz.Role
	err   error
	reads int
}

func (f *fakeRoles) RoleOf(ctx context.Context, email string) (authz.Role, bool, error) {
	f.reads++
	if f.err != nil {
		return "", false, f.err
	}
	r, ok := f.roles[email]
	return r, ok, nil
}

// tokens maps bearer tokens to emails; anything else is rejected.
func tokens(m map[string]string) identity.Verifier {
	return identity.VerifierFunc(func(ctx context.Context, tok string) (identity.Subject, error) {
		if email, ok := m[tok]; ok {
			return identity.Subject{UID: tok, Email: email}, nil
		}
		return identity.Subject{}, identity.ErrInvalidCredential
	})
}

func newGate(roles *fakeRoles) *auth.Gate {
	v := tokens(map[string]string{
		"admin-token":     "admin@x.com",
		"volunteer-token": "vol@x.com",
		"donor-token":     "donor@x.com",
		"ghost-token":     "ghost@x.com",
	})
	return auth.NewGate(v, roles, nil, zap.NewNop())
}

func defaultRoles() *fakeRoles {
	return &fakeRoles{roles: map[string]authz.Role{
		"admin@x.com": authz.Admin,
		"vol@x.com":   authz.Volunteer,
		"donor@x.com": authz.Donor,
	}}
}

// okHandler records that it ran and echoes the subject email.
func okHandler(ran *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*ran = true
		sub, _ := auth.CurrentSubject(r)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(sub.Email))
	})
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse body %q: %v", rec.Body.String(), err)
	}
	return body.Message
}

func TestRequireIdentity_NoHeader_Returns401(t *testing.T) {
	var ran bool
	h := newGate(defaultRoles()).RequireIdentity(okHandler(&ran))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/donation-requests", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Unauthorized Access" {
		t.Errorf("message: got %q", msg)
	}
	if ran {
		t.Error("handler must not run without a credential")
	}
}

func TestRequireIdentity_InvalidToken_Returns401(t *testing.T) {
	var ran bool
	h := newGate(defaultRoles()).RequireIdentity(okHandler(&ran))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if ran {
		t.Error("handler must not run with a rejected credential")
	}
}

func TestRequireIdentity_ValidToken_InjectsSubject(t *testing.T) {
	var ran bool
	h := newGate(defaultRoles()).RequireIdentity(okHandler(&ran))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer donor-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Body.String(); got != "donor@x.com" {
		t.Errorf("subject email: got %q", got)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		allowed []authz.Role
		want    int
	}{
		{"admin allowed", "admin-token", []authz.Role{authz.Admin}, http.StatusOK},
		{"volunteer denied on admin route", "volunteer-token", []authz.Role{authz.Admin}, http.StatusForbidden},
		{"donor denied on admin route", "donor-token", []authz.Role{authz.Admin}, http.StatusForbidden},
		{"volunteer allowed on admin|volunteer", "volunteer-token", []authz.Role{authz.Admin, authz.Volunteer}, http.StatusOK},
		{"unknown user denied", "ghost-token", []authz.Role{authz.Admin, authz.Volunteer}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roles := defaultRoles()
			g := newGate(roles)
			var ran bool
			h := g.RequireIdentity(g.RequireRole(tt.allowed...)(okHandler(&ran)))

			req := httptest.NewRequest("GET", "/stats", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
			if ran != (tt.want == http.StatusOK) {
				t.Errorf("handler ran = %v", ran)
			}
			if roles.reads != 1 {
				t.Errorf("expected exactly one role read, got %d", roles.reads)
			}
		})
	}
}

func TestRequireRole_LookupError_Returns500(t *testing.T) {
	roles := &fakeRoles{err: errors.New("connection reset")}
	g := newGate(roles)
	var ran bool
	h := g.RequireIdentity(g.RequireRole(authz.Admin)(okHandler(&ran)))

	req := httptest.NewRequest("GET", "/stats", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if ran {
		t.Error("handler must not run when the role cannot be read")
	}
}

func TestRequireSelf_Path(t *testing.T) {
	g := newGate(defaultRoles())

	r := chi.NewRouter()
	r.With(g.RequireIdentity, auth.RequireSelf(auth.FromPath("email"), nil)).
		Get("/users/{email}/role", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

	tests := []struct {
		path string
		want int
	}{
		{"/users/donor@x.com/role", http.StatusOK},
		{"/users/admin@x.com/role", http.StatusForbidden},
		{"/users/DONOR@x.com/role", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", tt.path, nil)
		req.Header.Set("Authorization", "Bearer donor-token")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: expected status %d, got %d", tt.path, tt.want, rec.Code)
		}
	}
}

func TestRequireSelf_Query(t *testing.T) {
	g := newGate(defaultRoles())
	var ran bool
	h := g.RequireIdentity(auth.RequireSelf(auth.FromQuery("email"), nil)(okHandler(&ran)))

	req := httptest.NewRequest("GET", "/donation-requests?email=someone@x.com", nil)
	req.Header.Set("Authorization", "Bearer donor-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Forbidden Access" {
		t.Errorf("message: got %q", msg)
	}
}

func TestRequireSelf_Body_RestoresBody(t *testing.T) {
	g := newGate(defaultRoles())
	var seen string
	h := g.RequireIdentity(auth.RequireSelf(auth.FromBody("email"), nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			seen = string(raw)
			w.WriteHeader(http.StatusOK)
		})))

	body := `{"email":"donor@x.com","name":"D"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer donor-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if seen != body {
		t.Errorf("handler saw body %q, want %q", seen, body)
	}
}

func TestRequireSelf_Body_OversizedIsForbidden(t *testing.T) {
	g := newGate(defaultRoles())
	var ran bool
	h := g.RequireIdentity(auth.RequireSelf(auth.FromBody("email"), nil)(okHandler(&ran)))

	body := `{"email":"donor@x.com","pad":"` + strings.Repeat("x", limits.MaxJSONBody) + `"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer donor-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if ran {
		t.Error("handler should not run for an oversized body")
	}
}

func TestRequireSelf_NoSubject_Returns401(t *testing.T) {
	var ran bool
	h := auth.RequireSelf(auth.FromQuery("email"), nil)(okHandler(&ran))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/?email=a@x.com", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
