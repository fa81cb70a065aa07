package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admissions-service/internal/application"
	"admissions-service/internal/contact"
	"admissions-service/internal/session"

	"golang.org/x/crypto/bcrypt"
)

const latestLimit = 5

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already exists")
	ErrConflict    = errors.New("username or email already exists")
	ErrSession     = errors.New("session store failure")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so the response never leaks which check failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*User, *session.Session, error)
	Logout(ctx context.Context, token string) error
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*User, error)
	Delete(ctx context.Context, id int64) error
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	repo         Repository
	applications application.Repository
	contacts     contact.Repository
	sessions     session.Store
	sessionTTL   time.Duration
}

func NewService(repo Repository, applications application.Repository, contacts contact.Repository, sessions session.Store, sessionTTL time.Duration) Service {
	return &service{
		repo:         repo,
		applications: applications,
		contacts:     contacts,
		sessions:     sessions,
		sessionTTL:   sessionTTL,
	}
}

// Signup creates an account with a bcrypt-hashed password. Role defaults to
// "user" when unspecified.
func (s *service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role != RoleAdmin {
		role = RoleUser
	}

	return s.repo.Create(ctx, &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	})
}

// Login verifies credentials and creates a session snapshotting the user's
// role at this moment.
func (s *service) Login(ctx context.Context, req LoginRequest) (*User, *session.Session, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess := session.New(u.ID, u.Username, u.Email, u.Role, s.sessionTTL)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSession, err)
	}

	return u, sess, nil
}

// Logout destroys the session. Destroying an already-absent token succeeds.
func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", ErrSession, err)
	}
	return nil
}

func (s *service) GetAll(ctx context.Context) ([]User, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update changes username, email and/or role. Empty fields stay as they are.
func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		u.Username = req.Username
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Role != "" {
		u.Role = req.Role
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Dashboard aggregates the admin view. Counts are taken from the same reads
// as the listings so they always agree within one response.
func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	applicationCount, err := s.applications.Count(ctx)
	if err != nil {
		return nil, err
	}

	contactCount, err := s.contacts.Count(ctx)
	if err != nil {
		return nil, err
	}

	latestApplications, err := s.applications.GetLatest(ctx, latestLimit)
	if err != nil {
		return nil, err
	}

	latestContacts, err := s.contacts.GetLatest(ctx, latestLimit)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Users:              users,
		TotalUsers:         len(users),
		ApplicationCount:   applicationCount,
		ContactCount:       contactCount,
		LatestApplications: latestApplications,
		LatestContacts:     latestContacts,
	}, nil
}
