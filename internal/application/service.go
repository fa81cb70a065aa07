package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"admissions-service/internal/notify"
)

var (
	ErrNotFound  = errors.New("application not found")
	ErrDuplicate = errors.New("application already exists")
)

// ValidationError reports the required submission fields that were absent.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

type Service interface {
	Submit(ctx context.Context, app *Application) (*Application, error)
	GetAll(ctx context.Context) ([]Application, error)
	GetByID(ctx context.Context, id int64) (*Application, error)
	Update(ctx context.Context, id int64, fields map[string]string) (*Application, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}

type service struct {
	repo       Repository
	mailer     notify.Mailer
	publisher  notify.Publisher
	adminEmail string
	logger     *slog.Logger
}

func NewService(repo Repository, mailer notify.Mailer, publisher notify.Publisher, adminEmail string, logger *slog.Logger) Service {
	return &service{
		repo:       repo,
		mailer:     mailer,
		publisher:  publisher,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Submit validates, rejects duplicates on (email, idNumber), dispatches both
// notification emails and only then persists. A notification failure aborts
// the submission before anything is stored.
func (s *service) Submit(ctx context.Context, app *Application) (*Application, error) {
	if err := validateRequired(app); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByDedupKey(ctx, app.Email, app.IDNumber)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicate
	}

	if err := s.mailer.Send(ctx, adminAlert(app, s.adminEmail)); err != nil {
		return nil, err
	}
	if err := s.mailer.Send(ctx, applicantConfirmation(app, s.adminEmail)); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, app)
	if err != nil {
		return nil, err
	}

	// best effort; a broker hiccup never fails the submission
	if s.publisher != nil {
		event := SubmittedEvent{
			ApplicationID: created.ID,
			Name:          created.Name,
			Email:         created.Email,
			Course:        created.Course,
			SubmittedAt:   created.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish application event", "error", err)
		}
	}

	return created, nil
}

func (s *service) GetAll(ctx context.Context) ([]Application, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetByID(ctx context.Context, id int64) (*Application, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces only the fields present in the request body; unknown keys
// are dropped.
func (s *service) Update(ctx context.Context, id int64, fields map[string]string) (*Application, error) {
	columns := make(map[string]string, len(fields))
	for name, value := range fields {
		if col, ok := updatableColumns[name]; ok {
			columns[col] = value
		}
	}
	return s.repo.Update(ctx, id, columns)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) DeleteAll(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}

func validateRequired(app *Application) error {
	var missing []string
	if app.Email == "" {
		missing = append(missing, "email")
	}
	if app.IDNumber == "" {
		missing = append(missing, "idNumber")
	}
	if app.Name == "" {
		missing = append(missing, "name")
	}
	if app.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func adminAlert(app *Application, adminEmail string) notify.Message {
	dump, _ := json.MarshalIndent(app, "", "  ")
	return notify.Message{
		From:    app.Email,
		To:      adminEmail,
		Subject: "New Application Received",
		Body:    fmt.Sprintf("New application from %s\n\n%s", app.Name, dump),
	}
}

func applicantConfirmation(app *Application, adminEmail string) notify.Message {
	return notify.Message{
		From:    adminEmail,
		To:      app.Email,
		Subject: "Application Received ✔️",
		Body:    fmt.Sprintf("Dear %s,\n\nWe have received your application.\n\nBest,\nCalebTech", app.Name),
	}
}
