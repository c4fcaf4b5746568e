// Package auth is the access gate in front of every protected route:
// identity first, then self-match or role-match, then the handler.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/redaid/internal/app/system/authz"
	"github.com/dalemusser/redaid/internal/app/system/identity"
	"github.com/dalemusser/redaid/internal/app/system/limits"
	"github.com/dalemusser/redaid/internal/app/system/metrics"
	"github.com/dalemusser/redaid/internal/app/system/respond"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-Subject helper                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const (
	subjectKey ctxKey = "subject"
	roleKey    ctxKey = "role"
)

// CurrentSubject returns the verified subject & "found?" flag.
func CurrentSubject(r *http.Request) (identity.Subject, bool) {
	s, ok := r.Context().Value(subjectKey).(identity.Subject)
	return s, ok
}

// CurrentRole returns the stored role resolved by RequireRole, if it ran.
func CurrentRole(r *http.Request) (authz.Role, bool) {
	role, ok := r.Context().Value(roleKey).(authz.Role)
	return role, ok
}

// WithSubject returns a copy of ctx carrying s. Tests use it to bypass
// token verification.
func WithSubject(ctx context.Context, s identity.Subject) context.Context {
	return context.WithValue(ctx, subjectKey, s)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Gate                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// RoleLookup resolves the stored role for an email. found=false means no
// user record exists.
type RoleLookup interface {
	RoleOf(ctx context.Context, email string) (role authz.Role, found bool, err error)
}

// Gate holds what the identity and role checks need.
type Gate struct {
	verifier identity.Verifier
	roles    RoleLookup
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewGate constructs a Gate. m may be nil.
func NewGate(v identity.Verifier, roles RoleLookup, m *metrics.Metrics, logger *zap.Logger) *Gate {
	return &Gate{verifier: v, roles: roles, metrics: m, log: logger}
}

// RequireIdentity verifies the bearer credential and injects the subject
// into the request context. Missing or rejected credentials stop the chain
// with 401; nothing downstream runs.
func (g *Gate) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := identity.BearerToken(r)
		if err != nil {
			g.metrics.IncAccessDenied("missing_credential")
			respond.Unauthorized(w)
			return
		}

		sub, err := g.verifier.Verify(r.Context(), tok)
		if err != nil {
			if !errors.Is(err, identity.ErrInvalidCredential) && !errors.Is(err, identity.ErrMissingCredential) {
				g.log.Warn("identity verification failed", zap.Error(err))
			}
			g.metrics.IncAccessDenied("invalid_credential")
			respond.Unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), sub)))
	})
}

// RequireRole ensures the subject's stored role is one of allowed.
// It reads the user record on every call; roles are never cached across
// requests.
func (g *Gate) RequireRole(allowed ...authz.Role) func(http.Handler) http.Handler {
	set := authz.Roles(allowed...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, ok := CurrentSubject(r)
			if !ok {
				respond.Unauthorized(w)
				return
			}

			role, found, err := g.roles.RoleOf(r.Context(), sub.Email)
			if err != nil {
				g.log.Error("role lookup failed", zap.String("email", sub.Email), zap.Error(err))
				respond.Message(w, http.StatusInternalServerError, respond.MsgInternal)
				return
			}
			if !found || !set.Has(role) {
				g.log.Debug("role check denied",
					zap.String("email", sub.Email),
					zap.String("role", role.String()),
					zap.Strings("allowed", set.Strings()))
				g.metrics.IncAccessDenied("role")
				respond.Forbidden(w)
				return
			}

			ctx := context.WithValue(r.Context(), roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Self-match                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// TargetSource names where a route's authoritative target email lives.
type TargetSource func(r *http.Request) string

// FromPath reads the target email from a chi URL parameter.
func FromPath(param string) TargetSource {
	return func(r *http.Request) string { return chi.URLParam(r, param) }
}

// FromQuery reads the target email from a query parameter.
func FromQuery(param string) TargetSource {
	return func(r *http.Request) string { return r.URL.Query().Get(param) }
}

// FromBody reads the target email from a top-level JSON body field.
// The body is restored afterwards so the handler can decode it again.
// Bodies over limits.MaxJSONBody yield no target.
func FromBody(field string) TargetSource {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, limits.MaxJSONBody+1))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil || len(raw) > limits.MaxJSONBody {
			return ""
		}
		var doc map[string]any
		if json.Unmarshal(raw, &doc) != nil {
			return ""
		}
		v, _ := doc[field].(string)
		return v
	}
}

// RequireSelf ensures the subject's email equals the target email named by
// src. Comparison is exact.
func RequireSelf(src TargetSource, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, ok := CurrentSubject(r)
			if !ok {
				respond.Unauthorized(w)
				return
			}
			if target := src(r); target == "" || target != sub.Email {
				m.IncAccessDenied("self_mismatch")
				respond.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelf is the package-level RequireSelf reporting denials to the
// gate's metrics.
func (g *Gate) RequireSelf(src TargetSource) func(http.Handler) http.Handler {
	return RequireSelf(src, g.metrics)
}
