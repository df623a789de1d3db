package server

import (
	"context"
	"net/http"

	"github.com/attendly/go-workforce-server/tenant"
	"github.com/attendly/go-workforce-server/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyPayload stores the verified token payload
	ContextKeyPayload ContextKey = "token_payload"
	// ContextKeyTenant stores the resolved tenant context
	ContextKeyTenant ContextKey = "tenant_context"
)

func contextWithPayload(ctx context.Context, payload *token.Payload) context.Context {
	return context.WithValue(ctx, ContextKeyPayload, payload)
}

func contextWithTenant(ctx context.Context, tc *tenant.Context) context.Context {
	return context.WithValue(ctx, ContextKeyTenant, tc)
}

// PayloadFromRequest returns the verified token payload, or nil when the
// request is unauthenticated.
func PayloadFromRequest(r *http.Request) *token.Payload {
	payload, _ := r.Context().Value(ContextKeyPayload).(*token.Payload)
	return payload
}

// TenantFromRequest returns the resolved tenant context, or nil when the
// resolver passed the request through (unauthenticated or super admin).
func TenantFromRequest(r *http.Request) *tenant.Context {
	tc, _ := r.Context().Value(ContextKeyTenant).(*tenant.Context)
	return tc
}
