package postgres

import (
	"context"

	"github.com/attendly/go-workforce-server/companies"
	errs "github.com/attendly/go-workforce-server/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const (
	selectCompanySQL = `
		SELECT id, name, registration_code
		FROM companies
		WHERE id = $1`

	selectSubscriptionSQL = `
		SELECT company_id, plan_id, status, start_date, end_date, trial_end_at
		FROM subscriptions
		WHERE company_id = $1`

	selectSettingsSQL = `
		SELECT lateness_tolerance_minutes, overtime_rate_weekday, overtime_rate_weekend,
		       allow_wfh, wfh_clock_in_needs_location
		FROM company_settings
		WHERE company_id = $1`
)

var _ companies.Repo = (*CompanyRepo)(nil)

// CompanyRepo is the pgx-backed implementation of companies.Repo. It reads a
// company together with its subscription and settings; both are optional
// rows, and their absence is not an error.
type CompanyRepo struct {
	pool *pgxpool.Pool
}

func NewCompanyRepo(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*companies.Company, error) {
	var company companies.Company
	err := r.pool.QueryRow(ctx, selectCompanySQL, id).Scan(
		&company.ID, &company.Name, &company.RegistrationCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, companies.ErrNotFound
		}
		return nil, errs.Dependency(err, "select company")
	}

	var sub companies.Subscription
	var status string
	err = r.pool.QueryRow(ctx, selectSubscriptionSQL, id).Scan(
		&sub.CompanyID, &sub.PlanID, &status, &sub.StartDate, &sub.EndDate, &sub.TrialEndAt)
	switch {
	case err == nil:
		sub.Status = companies.SubscriptionStatus(status)
		company.Subscription = &sub
	case errors.Is(err, pgx.ErrNoRows):
		// No subscription record yet; the tenant resolver decides what
		// that means.
	default:
		return nil, errs.Dependency(err, "select subscription")
	}

	err = r.pool.QueryRow(ctx, selectSettingsSQL, id).Scan(
		&company.Settings.LatenessToleranceMinutes,
		&company.Settings.OvertimeRateWeekday,
		&company.Settings.OvertimeRateWeekend,
		&company.Settings.AllowWFH,
		&company.Settings.WFHClockInNeedsLocation)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.Dependency(err, "select company settings")
	}

	return &company, nil
}
