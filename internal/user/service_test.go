package user_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"admissions-service/internal/application"
	"admissions-service/internal/contact"
	"admissions-service/internal/session"
	"admissions-service/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users  []*user.User
	nextID int64
	clock  time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) (*user.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return nil, user.ErrConflict
		}
	}
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	u.ID = r.nextID
	u.CreatedAt = r.clock
	u.UpdatedAt = r.clock
	cp := *u
	r.users = append(r.users, &cp)
	return u, nil
}

func (r *fakeUserRepo) GetAll(_ context.Context) ([]user.User, error) {
	sorted := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		sorted = append(sorted, *u)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, updated *user.User) error {
	for _, u := range r.users {
		if u.ID == updated.ID {
			for _, other := range r.users {
				if other.ID != updated.ID && (other.Email == updated.Email || other.Username == updated.Username) {
					return user.ErrConflict
				}
			}
			u.Username = updated.Username
			u.Email = updated.Email
			u.Role = updated.Role
			u.UpdatedAt = time.Now()
			return nil
		}
	}
	return user.ErrNotFound
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return user.ErrNotFound
}

// fakeApplicationRepo supplies only what the dashboard reads.
type fakeApplicationRepo struct {
	apps []application.Application
}

func (r *fakeApplicationRepo) Create(_ context.Context, app *application.Application) (*application.Application, error) {
	r.apps = append(r.apps, *app)
	return app, nil
}

func (r *fakeApplicationRepo) GetAll(_ context.Context) ([]application.Application, error) {
	return r.apps, nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, _ int64) (*application.Application, error) {
	return nil, application.ErrNotFound
}

func (r *fakeApplicationRepo) FindByDedupKey(_ context.Context, _, _ string) (*application.Application, error) {
	return nil, application.ErrNotFound
}

func (r *fakeApplicationRepo) GetLatest(_ context.Context, limit int) ([]application.Application, error) {
	if len(r.apps) > limit {
		return r.apps[:limit], nil
	}
	return r.apps, nil
}

func (r *fakeApplicationRepo) Count(_ context.Context) (int, error) {
	return len(r.apps), nil
}

func (r *fakeApplicationRepo) Update(_ context.Context, _ int64, _ map[string]string) (*application.Application, error) {
	return nil, application.ErrNotFound
}

func (r *fakeApplicationRepo) Delete(_ context.Context, _ int64) error { return nil }

func (r *fakeApplicationRepo) DeleteAll(_ context.Context) (int64, error) { return 0, nil }

type fakeContactRepo struct {
	contacts []contact.Contact
}

func (r *fakeContactRepo) Create(_ context.Context, c *contact.Contact) (*contact.Contact, error) {
	r.contacts = append(r.contacts, *c)
	return c, nil
}

func (r *fakeContactRepo) GetAll(_ context.Context) ([]contact.Contact, error) {
	return r.contacts, nil
}

func (r *fakeContactRepo) GetLatest(_ context.Context, limit int) ([]contact.Contact, error) {
	if len(r.contacts) > limit {
		return r.contacts[:limit], nil
	}
	return r.contacts, nil
}

func (r *fakeContactRepo) Count(_ context.Context) (int, error) {
	return len(r.contacts), nil
}

func newTestService(repo user.Repository, apps *fakeApplicationRepo, contacts *fakeContactRepo, store session.Store) user.Service {
	if apps == nil {
		apps = &fakeApplicationRepo{}
	}
	if contacts == nil {
		contacts = &fakeContactRepo{}
	}
	return user.NewService(repo, apps, contacts, store, 24*time.Hour)
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("RoleDefaultsToUser", func(t *testing.T) {
		store := session.NewMemoryStore()
		defer store.Close()
		svc := newTestService(newFakeUserRepo(), nil, nil, store)

		created, err := svc.Signup(ctx, user.SignupRequest{
			Username: "bob",
			Email:    "b@x.com",
			Password: "pw1234",
		})
		require.NoError(t, err)
		assert.Equal(t, user.RoleUser, created.Role)
		assert.NotEqual(t, "pw1234", created.PasswordHash)
		assert.NotEmpty(t, created.PasswordHash)
	})

	t.Run("AdminRoleIsKept", func(t *testing.T) {
		store := session.NewMemoryStore()
		defer store.Close()
		svc := newTestService(newFakeUserRepo(), nil, nil, store)

		created, err := svc.Signup(ctx, user.SignupRequest{
			Username: "root",
			Email:    "root@x.com",
			Password: "pw1234",
			Role:     user.RoleAdmin,
		})
		require.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, created.Role)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		store := session.NewMemoryStore()
		defer store.Close()
		svc := newTestService(newFakeUserRepo(), nil, nil, store)

		_, err := svc.Signup(ctx, user.SignupRequest{Username: "bob", Email: "b@x.com", Password: "pw1234"})
		require.NoError(t, err)

		_, err = svc.Signup(ctx, user.SignupRequest{Username: "bobby", Email: "b@x.com", Password: "pw5678"})
		assert.ErrorIs(t, err, user.ErrEmailExists)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (user.Service, session.Store) {
		t.Helper()
		store := session.NewMemoryStore()
		t.Cleanup(func() { store.Close() })
		svc := newTestService(newFakeUserRepo(), nil, nil, store)
		_, err := svc.Signup(ctx, user.SignupRequest{Username: "bob", Email: "b@x.com", Password: "pw123"})
		require.NoError(t, err)
		return svc, store
	}

	t.Run("SignupThenLoginSucceeds", func(t *testing.T) {
		svc, store := setup(t)

		u, sess, err := svc.Login(ctx, user.LoginRequest{Email: "b@x.com", Password: "pw123"})
		require.NoError(t, err)
		assert.Equal(t, "b@x.com", u.Email)
		assert.Equal(t, user.RoleUser, sess.Role)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), sess.ExpiresAt, time.Minute)

		stored, err := store.Get(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, stored.UserID)
	})

	t.Run("WrongPasswordAndUnknownEmailAreIndistinguishable", func(t *testing.T) {
		svc, _ := setup(t)

		_, _, errWrongPassword := svc.Login(ctx, user.LoginRequest{Email: "b@x.com", Password: "nope"})
		_, _, errUnknownEmail := svc.Login(ctx, user.LoginRequest{Email: "ghost@x.com", Password: "pw123"})

		require.Error(t, errWrongPassword)
		require.Error(t, errUnknownEmail)
		assert.ErrorIs(t, errWrongPassword, user.ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknownEmail, user.ErrInvalidCredentials)
		assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	})

	t.Run("LogoutDestroysSession", func(t *testing.T) {
		svc, store := setup(t)

		_, sess, err := svc.Login(ctx, user.LoginRequest{Email: "b@x.com", Password: "pw123"})
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, sess.Token))

		_, err = store.Get(ctx, sess.Token)
		assert.ErrorIs(t, err, session.ErrNotFound)

		// logging out again is still a success
		assert.NoError(t, svc.Logout(ctx, sess.Token))
	})

	t.Run("RoleSnapshotSurvivesRoleChange", func(t *testing.T) {
		store := session.NewMemoryStore()
		defer store.Close()
		repo := newFakeUserRepo()
		svc := newTestService(repo, nil, nil, store)

		created, err := svc.Signup(ctx, user.SignupRequest{Username: "bob", Email: "b@x.com", Password: "pw123"})
		require.NoError(t, err)

		_, sess, err := svc.Login(ctx, user.LoginRequest{Email: "b@x.com", Password: "pw123"})
		require.NoError(t, err)

		_, err = svc.Update(ctx, created.ID, user.UpdateRequest{Role: user.RoleAdmin})
		require.NoError(t, err)

		stored, err := store.Get(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, user.RoleUser, stored.Role)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyFieldsAreUnchanged", func(t *testing.T) {
		store := session.NewMemoryStore()
		defer store.Close()
		svc := newTestService(newFakeUserRepo(), nil, nil, store)

		created, err := svc.Signup(ctx, user.SignupRequest{Username: "bob", Email: "b@x.com", Password: "pw123"})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, created.ID, user.UpdateRequest{Username: "robert"})
		require.NoError(t, err)
		assert.Equal(t, "robert", updated.Username)
		assert.Equal(t, "b@x.com", updated.Email)
		assert.Equal(t, user.RoleUser, updated.Role)
	})

	t.Run("NotFound", func(t *testing.T) {
		store := session.NewMemoryStore()
		defer store.Close()
		svc := newTestService(newFakeUserRepo(), nil, nil, store)

		_, err := svc.Update(ctx, 999, user.UpdateRequest{Username: "ghost"})
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	store := session.NewMemoryStore()
	defer store.Close()

	repo := newFakeUserRepo()
	apps := &fakeApplicationRepo{}
	contacts := &fakeContactRepo{}
	svc := newTestService(repo, apps, contacts, store)

	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := svc.Signup(ctx, user.SignupRequest{
			Username: email[:1],
			Email:    email,
			Password: "pw123",
		})
		require.NoError(t, err, "signup %d", i)
	}

	for i := 0; i < 7; i++ {
		apps.apps = append(apps.apps, application.Application{ID: int64(i + 1)})
	}
	contacts.contacts = append(contacts.contacts, contact.Contact{ID: 1}, contact.Contact{ID: 2})

	dashboard, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	// counts always match the listings in the same response
	assert.Equal(t, len(dashboard.Users), dashboard.TotalUsers)
	assert.Equal(t, 3, dashboard.TotalUsers)
	assert.Equal(t, 7, dashboard.ApplicationCount)
	assert.Equal(t, 2, dashboard.ContactCount)
	assert.Len(t, dashboard.LatestApplications, 5)
	assert.Len(t, dashboard.LatestContacts, 2)

	// newest user first
	assert.Equal(t, "c@x.com", dashboard.Users[0].Email)
}
