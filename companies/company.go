package companies

import "time"

// SubscriptionStatus mirrors the billing system's status values.
type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "TRIALING"
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
)

// Subscription is the company's billing state. The core reads only Status;
// everything else belongs to the billing collaborator.
type Subscription struct {
	CompanyID  string             `json:"companyId"`
	PlanID     string             `json:"planId"`
	Status     SubscriptionStatus `json:"status"`
	StartDate  time.Time          `json:"startDate,omitempty"`
	EndDate    *time.Time         `json:"endDate,omitempty"`
	TrialEndAt *time.Time         `json:"trialEndAt,omitempty"`
}

// Settings holds per-company workforce policy knobs.
type Settings struct {
	LatenessToleranceMinutes int     `json:"latenessToleranceMinutes"`
	OvertimeRateWeekday      float64 `json:"overtimeRateWeekday"`
	OvertimeRateWeekend      float64 `json:"overtimeRateWeekend"`
	AllowWFH                 bool    `json:"allowWfh"`
	WFHClockInNeedsLocation  bool    `json:"wfhClockInNeedsLocation"`
}

// Company is read-only from the core's perspective.
type Company struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	RegistrationCode string        `json:"registrationCode"`
	Subscription     *Subscription `json:"subscription,omitempty"` // nil when the company has no subscription record
	Settings         Settings      `json:"settings"`
}
