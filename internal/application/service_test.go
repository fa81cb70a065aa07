package application_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"admissions-service/internal/application"
	"admissions-service/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory application.Repository with the same dedup
// semantics as the database unique constraint.
type fakeRepo struct {
	apps   []*application.Application
	nextID int64
	clock  time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *fakeRepo) Create(_ context.Context, app *application.Application) (*application.Application, error) {
	for _, existing := range r.apps {
		if existing.Email == app.Email && existing.IDNumber == app.IDNumber {
			return nil, application.ErrDuplicate
		}
	}
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	app.ID = r.nextID
	app.CreatedAt = r.clock
	app.UpdatedAt = r.clock
	cp := *app
	r.apps = append(r.apps, &cp)
	return app, nil
}

func (r *fakeRepo) GetAll(_ context.Context) ([]application.Application, error) {
	sorted := make([]application.Application, 0, len(r.apps))
	for _, app := range r.apps {
		sorted = append(sorted, *app)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*application.Application, error) {
	for _, app := range r.apps {
		if app.ID == id {
			cp := *app
			return &cp, nil
		}
	}
	return nil, application.ErrNotFound
}

func (r *fakeRepo) FindByDedupKey(_ context.Context, email, idNumber string) (*application.Application, error) {
	for _, app := range r.apps {
		if app.Email == email && app.IDNumber == idNumber {
			cp := *app
			return &cp, nil
		}
	}
	return nil, application.ErrNotFound
}

func (r *fakeRepo) GetLatest(ctx context.Context, limit int) ([]application.Application, error) {
	all, _ := r.GetAll(ctx)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeRepo) Count(_ context.Context) (int, error) {
	return len(r.apps), nil
}

func (r *fakeRepo) Update(ctx context.Context, id int64, columns map[string]string) (*application.Application, error) {
	for _, app := range r.apps {
		if app.ID != id {
			continue
		}
		for col, value := range columns {
			switch col {
			case "name":
				app.Name = value
			case "email":
				app.Email = value
			case "phone":
				app.Phone = value
			case "id_number":
				app.IDNumber = value
			case "course":
				app.Course = value
			case "grades":
				app.Grades = value
			case "message":
				app.Message = value
			}
		}
		app.UpdatedAt = time.Now()
		cp := *app
		return &cp, nil
	}
	return nil, application.ErrNotFound
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	for i, app := range r.apps {
		if app.ID == id {
			r.apps = append(r.apps[:i], r.apps[i+1:]...)
			return nil
		}
	}
	return application.ErrNotFound
}

func (r *fakeRepo) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(r.apps))
	r.apps = nil
	return n, nil
}

type fakeMailer struct {
	sent []notify.Message
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	if m.fail {
		return fmt.Errorf("%w: smtp unreachable", notify.ErrDeliveryFailed)
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakePublisher struct {
	events []interface{}
}

func (p *fakePublisher) Publish(_ context.Context, event interface{}) error {
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

const adminEmail = "admissions@calebtech.example"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func newTestService(repo application.Repository, mailer notify.Mailer, publisher notify.Publisher) application.Service {
	return application.NewService(repo, mailer, publisher, adminEmail, testLogger())
}

func validApplication() *application.Application {
	return &application.Application{
		Name:     "Ann",
		Email:    "a@x.com",
		Phone:    "123",
		IDNumber: "ID1",
		Course:   "Software Engineering",
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := newFakeRepo()
		mailer := &fakeMailer{}
		publisher := &fakePublisher{}
		svc := newTestService(repo, mailer, publisher)

		created, err := svc.Submit(ctx, validApplication())
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		// admin alert then applicant confirmation
		require.Len(t, mailer.sent, 2)
		assert.Equal(t, adminEmail, mailer.sent[0].To)
		assert.Equal(t, "a@x.com", mailer.sent[0].From)
		assert.Equal(t, "New Application Received", mailer.sent[0].Subject)
		assert.Contains(t, mailer.sent[0].Body, "New application from Ann")
		assert.Equal(t, "a@x.com", mailer.sent[1].To)
		assert.Equal(t, "Application Received ✔️", mailer.sent[1].Subject)

		require.Len(t, publisher.events, 1)
		event, ok := publisher.events[0].(application.SubmittedEvent)
		require.True(t, ok)
		assert.Equal(t, created.ID, event.ApplicationID)
		assert.Equal(t, "a@x.com", event.Email)
	})

	t.Run("MissingRequiredFields", func(t *testing.T) {
		repo := newFakeRepo()
		mailer := &fakeMailer{}
		svc := newTestService(repo, mailer, nil)

		app := validApplication()
		app.Phone = ""
		app.IDNumber = ""

		_, err := svc.Submit(ctx, app)

		var validationErr *application.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.ElementsMatch(t, []string{"idNumber", "phone"}, validationErr.Fields)

		// nothing persisted, nothing sent
		count, _ := repo.Count(ctx)
		assert.Zero(t, count)
		assert.Empty(t, mailer.sent)
	})

	t.Run("DuplicateDedupKey", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, &fakeMailer{}, nil)

		_, err := svc.Submit(ctx, validApplication())
		require.NoError(t, err)

		_, err = svc.Submit(ctx, validApplication())
		assert.ErrorIs(t, err, application.ErrDuplicate)

		count, _ := repo.Count(ctx)
		assert.Equal(t, 1, count)
	})

	t.Run("SameEmailDifferentIDNumberIsAllowed", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, &fakeMailer{}, nil)

		_, err := svc.Submit(ctx, validApplication())
		require.NoError(t, err)

		second := validApplication()
		second.IDNumber = "ID2"
		_, err = svc.Submit(ctx, second)
		require.NoError(t, err)

		count, _ := repo.Count(ctx)
		assert.Equal(t, 2, count)
	})

	t.Run("NotificationFailureAbortsSubmission", func(t *testing.T) {
		repo := newFakeRepo()
		publisher := &fakePublisher{}
		svc := newTestService(repo, &fakeMailer{fail: true}, publisher)

		_, err := svc.Submit(ctx, validApplication())
		assert.ErrorIs(t, err, notify.ErrDeliveryFailed)

		count, _ := repo.Count(ctx)
		assert.Zero(t, count)
		assert.Empty(t, publisher.events)
	})

	t.Run("NilPublisherIsFine", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, &fakeMailer{}, nil)

		_, err := svc.Submit(ctx, validApplication())
		assert.NoError(t, err)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("PartialFieldReplace", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, &fakeMailer{}, nil)

		created, err := svc.Submit(ctx, validApplication())
		require.NoError(t, err)

		updated, err := svc.Update(ctx, created.ID, map[string]string{
			"course":  "Networking",
			"unknown": "ignored",
		})
		require.NoError(t, err)
		assert.Equal(t, "Networking", updated.Course)
		assert.Equal(t, "Ann", updated.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), &fakeMailer{}, nil)

		_, err := svc.Update(ctx, 999, map[string]string{"course": "Networking"})
		assert.ErrorIs(t, err, application.ErrNotFound)
	})
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{}, nil)

	for i := 0; i < 3; i++ {
		app := validApplication()
		app.IDNumber = fmt.Sprintf("ID%d", i)
		_, err := svc.Submit(ctx, app)
		require.NoError(t, err)
	}

	count, err := svc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// bulk delete of nothing is still a success with a zero count
	count, err = svc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
