// Package middleware contains the request authorization pipeline and the
// echo middleware that runs it on every request.
//
// The pipeline is a fixed, ordered chain of gates. Each gate classifies the
// request and either lets it continue or short-circuits with a redirect or a
// JSON denial. Ordering is significant: authentication must precede the
// account-status check, which must precede role checks, because later gates
// assume the identity is authenticated.
package middleware

import (
	"net/http"
	"strings"

	"salon-service/pkg/jwtutil"
)

// Request is the pipeline's view of an incoming request. Claims is nil when
// no valid session token accompanied the request.
type Request struct {
	Method string
	Path   string
	Claims *jwtutil.SessionClaims
}

// IsAPI reports whether the request targets an API route. API routes get
// JSON denials; page routes get redirects.
func (r *Request) IsAPI() bool {
	return r.Path == "/api" || strings.HasPrefix(r.Path, "/api/")
}

// Verdict is the outcome of a gate: allow, redirect, or a JSON denial.
type Verdict struct {
	Allowed    bool
	Status     int
	RedirectTo string
	Message    string
}

// Allow lets the request continue to the next gate or the handler.
func Allow() Verdict {
	return Verdict{Allowed: true}
}

// Redirect denies the request with a browser redirect.
func Redirect(url string) Verdict {
	return Verdict{Status: http.StatusFound, RedirectTo: url}
}

// DenyJSON denies the request with a JSON error body.
func DenyJSON(status int, message string) Verdict {
	return Verdict{Status: status, Message: message}
}

// Gate is one stage of the authorization pipeline. Gates never mutate state;
// they are pure request classifiers.
type Gate interface {
	Name() string
	Evaluate(req *Request) Verdict
}

// Pipeline runs its gates in order and stops at the first denial.
type Pipeline struct {
	gates []Gate
}

// NewPipeline builds the standard three-gate chain:
// authentication, account status, role/permission.
func NewPipeline() *Pipeline {
	return &Pipeline{
		gates: []Gate{
			AuthGate{},
			StatusGate{},
			RoleGate{},
		},
	}
}

// Evaluate classifies the request. The returned gate name identifies which
// gate denied; it is empty when the request is allowed.
func (p *Pipeline) Evaluate(req *Request) (Verdict, string) {
	for _, gate := range p.gates {
		verdict := gate.Evaluate(req)
		if !verdict.Allowed {
			return verdict, gate.Name()
		}
	}
	return Allow(), ""
}
