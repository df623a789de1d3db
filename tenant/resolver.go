package tenant

import (
	"context"

	"github.com/attendly/go-workforce-server/companies"
	errs "github.com/attendly/go-workforce-server/internal/errors"
	"github.com/attendly/go-workforce-server/token"
	"github.com/attendly/go-workforce-server/users"
	"github.com/pkg/errors"
)

// Context is the request-scoped company snapshot attached after resolution.
// It is derived per request and discarded at request end, never persisted.
type Context struct {
	ID                 string                       `json:"id"`
	Name               string                       `json:"name"`
	RegistrationCode   string                       `json:"registrationCode"`
	SubscriptionStatus companies.SubscriptionStatus `json:"subscriptionStatus,omitempty"`
	Settings           companies.Settings           `json:"settings"`
}

// Resolver derives the authenticated user's company context. It is
// authorization-adjacent: unauthenticated requests pass through untouched,
// authentication happens upstream.
type Resolver struct {
	companies companies.Repo
}

func NewResolver(companyRepo companies.Repo) (*Resolver, error) {
	if companyRepo == nil {
		return nil, errors.New("[NewResolver] company repo is required")
	}
	return &Resolver{companies: companyRepo}, nil
}

// Resolve returns the tenant context for the payload's company, or nil for
// unauthenticated requests and super admins (cross-tenant by design).
func (r *Resolver) Resolve(ctx context.Context, payload *token.Payload) (*Context, error) {
	if payload == nil {
		return nil, nil
	}
	if payload.Role == users.RoleSuperAdmin {
		return nil, nil
	}

	if payload.CompanyID == "" {
		return nil, errs.ErrMissingTenant
	}

	company, err := r.companies.GetByID(ctx, payload.CompanyID)
	if err != nil {
		// The company can vanish after token issuance (deleted tenant).
		if errors.Is(err, companies.ErrNotFound) {
			return nil, errs.ErrTenantNotFound
		}
		return nil, errors.Wrap(err, "[Resolver.Resolve] Companies.GetByID")
	}

	// A company without a subscription record passes; only an existing,
	// non-active subscription suspends tenant access. Flagged for product
	// clarification, preserved as-is until then.
	tc := &Context{
		ID:               company.ID,
		Name:             company.Name,
		RegistrationCode: company.RegistrationCode,
		Settings:         company.Settings,
	}
	if company.Subscription != nil {
		if company.Subscription.Status != companies.SubscriptionActive {
			return nil, errs.ErrSubscriptionInactive
		}
		tc.SubscriptionStatus = company.Subscription.Status
	}
	return tc, nil
}
