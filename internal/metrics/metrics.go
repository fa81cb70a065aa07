package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	applicationsSubmitted   metric.Int64Counter
	duplicateApplications   metric.Int64Counter
	contactsSubmitted       metric.Int64Counter
	usersRegistered         metric.Int64Counter
	logins                  metric.Int64Counter
	failedLogins            metric.Int64Counter
	dashboardViews          metric.Int64Counter
	notificationsDispatched metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.applicationsSubmitted, err = meter.Int64Counter(
		"admissions_service.applications.submitted",
		metric.WithDescription("Total number of applications submitted"),
		metric.WithUnit("{application}"),
	)
	if err != nil {
		return nil, err
	}

	m.duplicateApplications, err = meter.Int64Counter(
		"admissions_service.applications.duplicates_rejected",
		metric.WithDescription("Total number of duplicate application submissions rejected"),
		metric.WithUnit("{application}"),
	)
	if err != nil {
		return nil, err
	}

	m.contactsSubmitted, err = meter.Int64Counter(
		"admissions_service.contacts.submitted",
		metric.WithDescription("Total number of contact messages submitted"),
		metric.WithUnit("{contact}"),
	)
	if err != nil {
		return nil, err
	}

	m.usersRegistered, err = meter.Int64Counter(
		"admissions_service.users.registered",
		metric.WithDescription("Total number of users registered"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	m.logins, err = meter.Int64Counter(
		"admissions_service.logins.succeeded",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.failedLogins, err = meter.Int64Counter(
		"admissions_service.logins.failed",
		metric.WithDescription("Total number of failed logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.dashboardViews, err = meter.Int64Counter(
		"admissions_service.dashboard.views",
		metric.WithDescription("Total number of admin dashboard views"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.notificationsDispatched, err = meter.Int64Counter(
		"admissions_service.notifications.dispatched",
		metric.WithDescription("Total number of notification emails dispatched"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordApplicationSubmitted(ctx context.Context) {
	if m != nil && m.applicationsSubmitted != nil {
		m.applicationsSubmitted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordDuplicateApplication(ctx context.Context) {
	if m != nil && m.duplicateApplications != nil {
		m.duplicateApplications.Add(ctx, 1)
	}
}

func (m *Metrics) RecordContactSubmitted(ctx context.Context) {
	if m != nil && m.contactsSubmitted != nil {
		m.contactsSubmitted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordUserRegistered(ctx context.Context) {
	if m != nil && m.usersRegistered != nil {
		m.usersRegistered.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLogin(ctx context.Context) {
	if m != nil && m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m *Metrics) RecordFailedLogin(ctx context.Context) {
	if m != nil && m.failedLogins != nil {
		m.failedLogins.Add(ctx, 1)
	}
}

func (m *Metrics) RecordDashboardView(ctx context.Context) {
	if m != nil && m.dashboardViews != nil {
		m.dashboardViews.Add(ctx, 1)
	}
}

func (m *Metrics) RecordNotificationDispatched(ctx context.Context) {
	if m != nil && m.notificationsDispatched != nil {
		m.notificationsDispatched.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
