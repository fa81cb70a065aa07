package contact

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

var ErrInvalidContact = errors.New("email and message are required")

// Contact is a free-form inbound message. Read-only after creation.
type Contact struct {
	bun.BaseModel `bun:"table:contacts,alias:c"`

	ID      int64  `bun:"id,pk,autoincrement" json:"id"`
	Name    string `bun:"name" json:"name"`
	Email   string `bun:"email,notnull" json:"email" validate:"required,email"`
	Message string `bun:"message,notnull" json:"message" validate:"required"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

type Repository interface {
	Create(ctx context.Context, c *Contact) (*Contact, error)
	GetAll(ctx context.Context) ([]Contact, error)
	GetLatest(ctx context.Context, limit int) ([]Contact, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(database *bun.DB) Repository {
	return &repository{db: database}
}

func (r *repository) Create(ctx context.Context, c *Contact) (*Contact, error) {
	_, err := r.db.NewInsert().Model(c).Returning("*").Exec(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Contact, error) {
	contacts := make([]Contact, 0)
	err := r.db.NewSelect().
		Model(&contacts).
		Order("created_at DESC").
		Scan(ctx)
	return contacts, err
}

func (r *repository) GetLatest(ctx context.Context, limit int) ([]Contact, error) {
	contacts := make([]Contact, 0)
	err := r.db.NewSelect().
		Model(&contacts).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	return contacts, err
}

func (r *repository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*Contact)(nil)).Count(ctx)
}
